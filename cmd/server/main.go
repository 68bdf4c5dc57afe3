package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/eventpro/ticketing/internal/config"
	"github.com/eventpro/ticketing/internal/database"
	"github.com/eventpro/ticketing/internal/gateway"
	"github.com/eventpro/ticketing/internal/handler"
	"github.com/eventpro/ticketing/internal/media"
	"github.com/eventpro/ticketing/internal/queue"
	"github.com/eventpro/ticketing/internal/repository"
	"github.com/eventpro/ticketing/internal/router"
	"github.com/eventpro/ticketing/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	eventRepo := repository.NewEventRepo(db)
	typeRepo := repository.NewTicketTypeRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	var publisher service.Publisher
	if cfg.RabbitMQURL != "" {
		publisher = service.NewAMQPPublisher(cfg.RabbitMQURL)
		go func() {
			if err := queue.StartTicketConsumer(cfg.RabbitMQURL); err != nil {
				log.Printf("ticket consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("RABBITMQ_URL not set; event publishing disabled")
	}

	var uploader media.Uploader
	if cfg.ImageKitPrivateKey != "" {
		uploader = media.NewImageKit(cfg.ImageKitPrivateKey, cfg.ImageKitFolder)
	} else {
		log.Printf("IMAGEKIT_PRIVATE_KEY not set; event images disabled")
	}

	booking := service.NewBookingService(eventRepo, typeRepo, ticketRepo, publisher)
	payments := service.NewPaymentService(
		ticketRepo, paymentRepo,
		gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpaySecret),
		booking, publisher,
	)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Handlers{
		Events:      handler.NewEventHandler(eventRepo, uploader),
		TicketTypes: handler.NewTicketTypeHandler(typeRepo, eventRepo),
		Tickets:     handler.NewTicketHandler(booking, payments, ticketRepo),
		Payments:    handler.NewPaymentHandler(payments),
	}, rdb, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
