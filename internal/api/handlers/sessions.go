package handlers

import (
	"errors"
	"fmt"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/ranking"
	"github.com/dcimring/pickleball-ratings/internal/session"
	"github.com/dcimring/pickleball-ratings/internal/suggestion"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionStore creates and finds view sessions
type SessionStore interface {
	Create() (string, *session.Controller)
	Get(id string) (*session.Controller, error)
	Close(id string) error
}

// Session event types
const (
	EventNavigate   = "navigate"
	EventSelectMode = "select_mode"
	EventSearch     = "search"
	EventSort       = "sort"
	EventPasteNames = "paste_names"
	EventRunCheck   = "run_check"
	EventSubmit     = "submit"
	EventTypeName   = "type_name"
	EventBlurName   = "blur_name"
	EventSelectName = "select_name"
)

var errUnknownEvent = errors.New("unknown event type")

// SessionEvent is one user interaction. Only the fields relevant to Type
// are read.
type SessionEvent struct {
	Type       string             `json:"type"`
	View       string             `json:"view,omitempty"`
	Mode       string             `json:"mode,omitempty"`
	Text       string             `json:"text,omitempty"`
	Key        string             `json:"key,omitempty"`
	Suggestion suggestion.Request `json:"suggestion"`
}

// SessionResponse wraps a screen with its session id
type SessionResponse struct {
	ID     string         `json:"id"`
	Screen session.Screen `json:"screen"`
}

// SessionsHandler exposes the view state machine over HTTP
type SessionsHandler struct {
	store  SessionStore
	logger *zap.Logger
}

func NewSessionsHandler(store SessionStore, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{
		store:  store,
		logger: logger.Named("sessions_handler"),
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionsHandler) Create(c *fiber.Ctx) error {
	id, ctrl := h.store.Create()
	return h.respond(c, fiber.StatusCreated, id, ctrl)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	ctrl, err := h.store.Get(id)
	if err != nil {
		return sessionNotFound(c, err)
	}
	return h.respond(c, fiber.StatusOK, id, ctrl)
}

// Apply handles POST /api/v1/sessions/:id/events
func (h *SessionsHandler) Apply(c *fiber.Ctx) error {
	id := c.Params("id")
	ctrl, err := h.store.Get(id)
	if err != nil {
		return sessionNotFound(c, err)
	}

	var ev SessionEvent
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	if err := apply(ctrl, ev); err != nil {
		if errors.Is(err, session.ErrClosed) {
			return sessionNotFound(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid event",
			Message: err.Error(),
		})
	}

	return h.respond(c, fiber.StatusOK, id, ctrl)
}

// Delete handles DELETE /api/v1/sessions/:id
func (h *SessionsHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.Close(c.Params("id")); err != nil {
		return sessionNotFound(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionsHandler) respond(c *fiber.Ctx, status int, id string, ctrl *session.Controller) error {
	screen, err := ctrl.Screen(c.UserContext())
	if err != nil {
		if errors.Is(err, session.ErrClosed) {
			return sessionNotFound(c, err)
		}
		return err
	}
	return c.Status(status).JSON(SessionResponse{ID: id, Screen: screen})
}

func sessionNotFound(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error:   "Session not found",
		Message: err.Error(),
	})
}

func apply(ctrl *session.Controller, ev SessionEvent) error {
	switch ev.Type {
	case EventNavigate:
		v, err := session.ParseView(ev.View)
		if err != nil {
			return err
		}
		return ctrl.Navigate(v)
	case EventSelectMode:
		m, err := models.ParseMode(ev.Mode)
		if err != nil {
			return err
		}
		return ctrl.SelectMode(m)
	case EventSearch:
		return ctrl.Search(ev.Text)
	case EventSort:
		k, err := ranking.ParseSortKey(ev.Key)
		if err != nil {
			return err
		}
		return ctrl.SortBy(k)
	case EventPasteNames:
		return ctrl.PasteNames(ev.Text)
	case EventRunCheck:
		return ctrl.RunCheck()
	case EventSubmit:
		return ctrl.Submit(ev.Suggestion)
	case EventTypeName:
		return ctrl.TypeName(ev.Text)
	case EventBlurName:
		return ctrl.BlurName()
	case EventSelectName:
		return ctrl.SelectName(ev.Text)
	}
	return fmt.Errorf("%w: %q", errUnknownEvent, ev.Type)
}
