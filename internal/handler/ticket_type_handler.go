package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/repository"
)

// TicketTypeHandler manages the per-event ticket categories (VIP,
// general and so on). Categories are created in bulk when an event is
// set up and only their display fields can change afterwards; capacity
// moves exclusively through bookings and rollbacks.
type TicketTypeHandler struct {
	Types  *repository.TicketTypeRepo
	Events *repository.EventRepo
}

// NewTicketTypeHandler constructs a TicketTypeHandler. Both repositories
// must be non-nil.
func NewTicketTypeHandler(types *repository.TicketTypeRepo, events *repository.EventRepo) *TicketTypeHandler {
	if types == nil || events == nil {
		panic("nil repository passed to NewTicketTypeHandler")
	}
	return &TicketTypeHandler{Types: types, Events: events}
}

// ticketTypeInput is one category in a bulk create request. maxQuantity
// is the initial capacity of the category.
type ticketTypeInput struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Benefits    []string        `json:"benefits"`
	MaxQuantity int64           `json:"maxQuantity"`
}

// List handles GET /api/tickettypes?eventId= and returns the categories
// of one event.
func (h *TicketTypeHandler) List(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.QueryParam("eventId"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId query parameter is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		return writeError(c, err)
	}
	types, err := h.Types.ListByEvent(ctx, eventID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, types)
}

// CreateBulk handles POST /api/tickettypes. The body carries the owning
// event id and the full list of categories; each is inserted in order
// and a duplicate type code within the event is rejected with 409.
func (h *TicketTypeHandler) CreateBulk(c echo.Context) error {
	var body struct {
		EventID     uint64            `json:"eventId"`
		TicketTypes []ticketTypeInput `json:"ticketTypes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId is required"})
	}
	if len(body.TicketTypes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticketTypes is required"})
	}
	for _, in := range body.TicketTypes {
		if in.Type == "" || in.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every ticket type needs a type code and a name"})
		}
		if in.MaxQuantity < 0 || in.Price.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxQuantity and price must not be negative"})
		}
	}

	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, body.EventID); err != nil {
		return writeError(c, err)
	}

	created := make([]model.TicketType, 0, len(body.TicketTypes))
	for _, in := range body.TicketTypes {
		benefits := in.Benefits
		if benefits == nil {
			benefits = []string{}
		}
		tt := model.TicketType{
			EventID:           body.EventID,
			Type:              in.Type,
			Name:              in.Name,
			Price:             in.Price,
			Benefits:          benefits,
			AvailableQuantity: in.MaxQuantity,
		}
		if err := h.Types.Create(ctx, &tt); err != nil {
			return writeError(c, err)
		}
		created = append(created, tt)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/tickettypes/:id. Only display fields (name,
// price, benefits) can change; capacity is not editable here.
func (h *TicketTypeHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket type id"})
	}
	ctx := c.Request().Context()
	tt, err := h.Types.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	var body struct {
		Name     *string          `json:"name"`
		Price    *decimal.Decimal `json:"price"`
		Benefits []string         `json:"benefits"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil {
		tt.Name = *body.Name
	}
	if body.Price != nil {
		if body.Price.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
		}
		tt.Price = *body.Price
	}
	if body.Benefits != nil {
		tt.Benefits = body.Benefits
	}

	if err := h.Types.Update(ctx, tt); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tt)
}
