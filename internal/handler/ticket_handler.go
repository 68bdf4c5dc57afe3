package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/eventpro/ticketing/internal/middleware"
	"github.com/eventpro/ticketing/internal/repository"
	"github.com/eventpro/ticketing/internal/service"
)

// TicketHandler exposes the booking workflow: creating bookings,
// listing and fetching them, the payment handoff endpoints and the
// compensating rollback.
type TicketHandler struct {
	Booking  *service.BookingService
	Payments *service.PaymentService
	Tickets  *repository.TicketRepo
}

// NewTicketHandler constructs a TicketHandler. All dependencies must be
// non-nil.
func NewTicketHandler(booking *service.BookingService, payments *service.PaymentService, tickets *repository.TicketRepo) *TicketHandler {
	if booking == nil || payments == nil || tickets == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Booking: booking, Payments: payments, Tickets: tickets}
}

// Create handles POST /api/tickets. The caller's identity comes from the
// bearer token when present, otherwise from the payload's userId. The
// total amount in the payload is advisory; prices are re-read from the
// ticket type records and a mismatching total is rejected.
func (h *TicketHandler) Create(c echo.Context) error {
	var body struct {
		UserID      string                `json:"userId"`
		EventID     uint64                `json:"eventId"`
		Tickets     []service.BookingItem `json:"tickets"`
		TotalAmount decimal.Decimal       `json:"totalAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	userID := middleware.UserID(c)
	if userID == "" {
		userID = body.UserID
	}
	if body.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId is required"})
	}

	ticket, err := h.Booking.CreateBooking(c.Request().Context(), userID, body.EventID, body.Tickets, body.TotalAmount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// List handles GET /api/tickets?userId= and returns a user's bookings,
// newest first. The authenticated identity overrides the query
// parameter so callers cannot read other users' bookings by guessing
// ids.
func (h *TicketHandler) List(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		userID = c.QueryParam("userId")
	}
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId query parameter is required"})
	}
	tickets, err := h.Tickets.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Get handles GET /api/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ticket, err := h.Tickets.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// QRCode handles GET /api/tickets/:id/qr. It renders a PNG QR code
// carrying the ticket id and its seat labels for entry gate scanning.
func (h *TicketHandler) QRCode(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ticket, err := h.Tickets.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	seats := make([]string, 0, ticket.TotalQuantity())
	for _, it := range ticket.Items {
		seats = append(seats, it.SeatLabels...)
	}
	payload := fmt.Sprintf("ticket:%d;event:%d;seats:%s", ticket.ID, ticket.EventID, strings.Join(seats, ","))
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// CreateOrder handles POST /api/tickets/:ticketId/order and registers a
// gateway order for the booking's total.
func (h *TicketHandler) CreateOrder(c echo.Context) error {
	id, ok := pathID(c, "ticketId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	order, err := h.Payments.CreateOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// verifyRequest is the gateway callback payload relayed by the client
// after checkout.
type verifyRequest struct {
	OrderID   string `json:"razorpayOrderId"`
	PaymentID string `json:"razorpayPaymentId"`
	Signature string `json:"razorpaySignature"`
}

// VerifyPayment handles POST /api/tickets/verify. A failed verification
// rolls the booking back and reports 400; replaying a successful
// verification is a no-op.
func (h *TicketHandler) VerifyPayment(c echo.Context) error {
	var body verifyRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.OrderID == "" || body.PaymentID == "" || body.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "razorpayOrderId, razorpayPaymentId and razorpaySignature are required"})
	}
	if err := h.Payments.VerifyPayment(c.Request().Context(), body.OrderID, body.PaymentID, body.Signature); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment verified"})
}

// Rollback handles DELETE /api/tickets/:ticketId/rollback. It restores
// the capacity the booking consumed and deletes the booking; completed
// bookings are refused.
func (h *TicketHandler) Rollback(c echo.Context) error {
	id, ok := pathID(c, "ticketId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Booking.RollbackBooking(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking rolled back"})
}
