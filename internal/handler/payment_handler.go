package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventpro/ticketing/internal/service"
)

// PaymentHandler exposes the payment ledger endpoints. Order creation
// and verification are also reachable through the ticket routes; these
// exist for clients that drive the payment flow separately from the
// booking flow.
type PaymentHandler struct {
	Payments *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	if payments == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments}
}

// Details handles GET /api/payments/:ticketId and returns the booking's
// most recent ledger entry.
func (h *PaymentHandler) Details(c echo.Context) error {
	id, ok := pathID(c, "ticketId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	p, err := h.Payments.Status(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /api/payments/create/:ticketId and registers a
// gateway order for the booking.
func (h *PaymentHandler) Create(c echo.Context) error {
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

// Verify handles POST /api/payments/verify with the same callback
// payload as the ticket verify route.
func (h *PaymentHandler) Verify(c echo.Context) error {
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

// Status handles GET /api/payments/status/:ticketId, a lightweight view
// of the ledger entry for polling clients.
func (h *PaymentHandler) Status(c echo.Context) error {
	id, ok := pathID(c, "ticketId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	p, err := h.Payments.Status(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticketId":   p.TicketID,
		"orderId":    p.OrderID,
		"status":     p.Status,
		"amount":     p.Amount,
		"verifiedAt": p.VerifiedAt,
	})
}
