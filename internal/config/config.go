package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Strings are used for identifiers and
// secrets; values whose absence the server can tolerate are optional.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret string // secret for verifying bearer tokens (optional; empty disables identity extraction)

	RazorpayKeyID  string // public key id passed to checkout clients
	RazorpaySecret string // secret used to sign orders and verify callbacks

	ImageKitPrivateKey string // private API key for poster uploads (optional; empty disables images)
	ImageKitFolder     string // destination folder for uploaded posters

	RabbitMQURL string // broker URL for domain events (optional; empty disables publishing)
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),  // environment (dev/test/prod)
		Port:   must("APP_PORT"), // port to bind the HTTP server
		DBUser: must("DB_USER"),  // database user
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RazorpayKeyID:  must("RAZORPAY_KEY_ID"),
		RazorpaySecret: must("RAZORPAY_KEY_SECRET"),

		ImageKitPrivateKey: os.Getenv("IMAGEKIT_PRIVATE_KEY"),
		ImageKitFolder:     getenv("IMAGEKIT_FOLDER", "/events"),

		RabbitMQURL: getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
