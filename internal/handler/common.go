package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eventpro/ticketing/internal/repository"
	"github.com/eventpro/ticketing/internal/service"
)

// writeError maps domain errors to HTTP responses. Every handler funnels
// its failures through here so the status mapping stays in one place:
// not-found sentinels become 404, validation and capacity problems 400,
// signature mismatches 400, rollback of a paid booking 409, gateway
// trouble 502 and everything else a generic 500 that does not leak
// internals.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrTicketTypeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough capacity remaining"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate resource"})
	case errors.Is(err, service.ErrSignatureMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment verification failed"})
	case errors.Is(err, service.ErrRollbackNotAllowed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "completed bookings cannot be rolled back"})
	case errors.Is(err, service.ErrGateway):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses a numeric path parameter, rejecting zero and garbage.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
