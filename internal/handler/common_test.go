package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpro/ticketing/internal/repository"
	"github.com/eventpro/ticketing/internal/service"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"event not found", repository.ErrEventNotFound, http.StatusNotFound},
		{"ticket type not found", repository.ErrTicketTypeNotFound, http.StatusNotFound},
		{"ticket not found", repository.ErrTicketNotFound, http.StatusNotFound},
		{"payment not found", repository.ErrPaymentNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: userId is required", service.ErrValidation), http.StatusBadRequest},
		{"capacity", fmt.Errorf("%w: vip", service.ErrCapacityExceeded), http.StatusBadRequest},
		{"insufficient quantity", repository.ErrInsufficientQuantity, http.StatusBadRequest},
		{"duplicate", repository.ErrDuplicate, http.StatusConflict},
		{"signature mismatch", service.ErrSignatureMismatch, http.StatusBadRequest},
		{"rollback not allowed", service.ErrRollbackNotAllowed, http.StatusConflict},
		{"gateway", fmt.Errorf("%w: timeout", service.ErrGateway), http.StatusBadGateway},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			require.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPathID(t *testing.T) {
	e := echo.New()
	newCtx := func(val string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(val)
		return c
	}

	id, ok := pathID(newCtx("42"), "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	_, ok = pathID(newCtx("0"), "id")
	assert.False(t, ok)

	_, ok = pathID(newCtx("abc"), "id")
	assert.False(t, ok)
}
