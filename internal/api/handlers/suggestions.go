package handlers

import (
	"context"
	"errors"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/suggestion"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SuggestionService stores validated feature suggestions
type SuggestionService interface {
	Submit(ctx context.Context, req suggestion.Request) error
}

// SuggestionsHandler handles the feature-request form
type SuggestionsHandler struct {
	service SuggestionService
	logger  *zap.Logger
}

func NewSuggestionsHandler(service SuggestionService, logger *zap.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{
		service: service,
		logger:  logger.Named("suggestions_handler"),
	}
}

// Submit handles POST /api/v1/suggestions
// @Summary Suggest a feature
// @Accept json
// @Produce json
// @Param request body suggestion.Request true "Suggestion"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/suggestions [post]
func (h *SuggestionsHandler) Submit(c *fiber.Ctx) error {
	var req suggestion.Request

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	if err := h.service.Submit(c.UserContext(), req); err != nil {
		var vErr *suggestion.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error:   "Validation failed",
				Message: vErr.Message,
			})
		}

		h.logger.Error("Suggestion submit failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to submit request",
			Message: suggestion.MsgSubmitFailed,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
