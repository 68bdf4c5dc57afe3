package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/eventpro/ticketing/internal/media"
	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/monitoring"
	"github.com/eventpro/ticketing/internal/repository"
)

// maxPosterBytes caps how much of an uploaded poster is read into memory.
const maxPosterBytes = 10 << 20

// EventHandler exposes CRUD for events. Create and Update accept
// multipart forms so a poster image can travel with the fields; the
// image itself is stored on the external media service and only its URL
// and file id are persisted.
type EventHandler struct {
	Events *repository.EventRepo
	Media  media.Uploader // nil disables image handling
}

// NewEventHandler constructs an EventHandler. events must be non-nil.
func NewEventHandler(events *repository.EventRepo, uploader media.Uploader) *EventHandler {
	if events == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Media: uploader}
}

// List handles GET /api/events and returns all events, newest first.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /api/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Create handles POST /api/events. The body is a multipart form with the
// event fields plus an optional "image" file part. availableSeats starts
// at totalSeats; per-type capacity arrives later through the ticket type
// endpoints.
func (h *EventHandler) Create(c echo.Context) error {
	ev, err := h.bindEventForm(c, &model.Event{})
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if ev.Title == "" || ev.Date == "" || ev.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, date and location are required"})
	}
	if ev.AvailableSeats < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "totalSeats must not be negative"})
	}

	ctx := c.Request().Context()
	asset, err := h.uploadPoster(ctx, c, ev.Title)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "image upload failed"})
	}
	if asset != nil {
		ev.Image = asset.URL
		ev.ImageID = asset.FileID
	}

	if err := h.Events.Create(ctx, ev); err != nil {
		// The event row failed; do not leave an orphaned asset behind.
		if asset != nil && h.Media != nil {
			if derr := h.Media.Delete(ctx, asset.FileID); derr != nil {
				log.Printf("event: cleanup of orphaned image %s failed: %v", asset.FileID, derr)
			}
		}
		return writeError(c, err)
	}
	monitoring.SetAvailableSeats(ev.ID, ev.AvailableSeats)
	return c.JSON(http.StatusCreated, ev)
}

// Update handles PUT /api/events/:id. Fields present in the form replace
// the stored values; a new "image" part replaces the poster and deletes
// the previous asset.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	if _, err := h.bindEventForm(c, ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	oldImageID := ev.ImageID
	asset, err := h.uploadPoster(ctx, c, ev.Title)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "image upload failed"})
	}
	if asset != nil {
		ev.Image = asset.URL
		ev.ImageID = asset.FileID
	}

	if err := h.Events.Update(ctx, ev); err != nil {
		return writeError(c, err)
	}
	if asset != nil && oldImageID != "" && h.Media != nil {
		if derr := h.Media.Delete(ctx, oldImageID); derr != nil {
			log.Printf("event: delete of replaced image %s failed: %v", oldImageID, derr)
		}
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /api/events/:id. Ticket types cascade in the
// database; the poster asset is removed from the media service.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Events.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	if ev.ImageID != "" && h.Media != nil {
		if derr := h.Media.Delete(ctx, ev.ImageID); derr != nil {
			log.Printf("event: delete of image %s failed: %v", ev.ImageID, derr)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}

// bindEventForm copies the multipart form fields onto ev. Absent fields
// keep their current values, which makes the same binder serve both
// create (zero-value target) and update (loaded target).
func (h *EventHandler) bindEventForm(c echo.Context, ev *model.Event) (*model.Event, error) {
	set := func(name string, dst *string) {
		if v := c.FormValue(name); v != "" {
			*dst = v
		}
	}
	set("title", &ev.Title)
	set("description", &ev.Description)
	set("date", &ev.Date)
	set("time", &ev.Time)
	set("location", &ev.Location)
	set("category", &ev.Category)

	if v := c.FormValue("price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		ev.Price = p
	}
	if v := c.FormValue("totalSeats"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid totalSeats")
		}
		ev.AvailableSeats = n
	}
	return ev, nil
}

// uploadPoster reads the optional "image" form file and sends it to the
// media service. It returns nil when no file was attached or no media
// client is configured.
func (h *EventHandler) uploadPoster(ctx context.Context, c echo.Context, title string) (*media.Asset, error) {
	if h.Media == nil {
		return nil, nil
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil // no file part
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPosterBytes))
	if err != nil {
		return nil, err
	}
	name := fh.Filename
	if name == "" {
		name = title
	}
	return h.Media.Upload(ctx, data, name, "")
}
