package handlers

import (
	"context"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/ranking"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RankingService is the read side used by the rankings endpoints
type RankingService interface {
	Load(ctx context.Context) error
	Snapshot() models.Snapshot
	Standings(mode models.Mode, search string, spec ranking.SortSpec) models.StandingsResponse
	TourneyCheck(raw string) models.TourneyReport
	HealthCheck(ctx context.Context) error
}

// RankingsHandler handles HTTP requests for standings and tourney checks
type RankingsHandler struct {
	service RankingService
	logger  *zap.Logger
}

func NewRankingsHandler(service RankingService, logger *zap.Logger) *RankingsHandler {
	return &RankingsHandler{
		service: service,
		logger:  logger.Named("rankings_handler"),
	}
}

// GetStandings handles GET /api/v1/rankings/:mode
// @Summary Get standings
// @Description Returns one mode's standings, filtered by name and sorted
// @Produce json
// @Param mode path string true "singles or doubles"
// @Param search query string false "Case-insensitive name substring"
// @Param sort query string false "rank_position, player_name, rounds_played or rating" default(rank_position)
// @Param dir query string false "asc or desc" default(asc)
// @Success 200 {object} models.StandingsResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/rankings/{mode} [get]
func (h *RankingsHandler) GetStandings(c *fiber.Ctx) error {
	mode, err := models.ParseMode(c.Params("mode"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid mode",
			Message: err.Error(),
		})
	}

	spec, err := parseSortSpec(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid sort",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(h.service.Standings(mode, c.Query("search"), spec))
}

func parseSortSpec(c *fiber.Ctx) (ranking.SortSpec, error) {
	spec := ranking.DefaultSort()

	if raw := c.Query("sort"); raw != "" {
		key, err := ranking.ParseSortKey(raw)
		if err != nil {
			return spec, err
		}
		spec = ranking.SortSpec{Key: key, Direction: ranking.Asc}
	}
	if raw := c.Query("dir"); raw != "" {
		dir, err := ranking.ParseDirection(raw)
		if err != nil {
			return spec, err
		}
		spec.Direction = dir
	}
	return spec, nil
}

// TourneyCheck handles POST /api/v1/tourney-check
// @Summary Check tournament entrants
// @Description Resolves pasted names (one per line) against both modes
// @Accept json
// @Produce json
// @Param request body models.TourneyCheckRequest true "Pasted names"
// @Success 200 {object} models.TourneyReport
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/tourney-check [post]
func (h *RankingsHandler) TourneyCheck(c *fiber.Ctx) error {
	var req models.TourneyCheckRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(h.service.TourneyCheck(req.Names))
}

// Refresh handles POST /api/v1/refresh
// @Summary Reload rankings
// @Description Refetches both modes from the ranking source
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/refresh [post]
func (h *RankingsHandler) Refresh(c *fiber.Ctx) error {
	err := h.service.Load(c.UserContext())
	snap := h.service.Snapshot()

	if err != nil {
		h.logger.Warn("Refresh degraded", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error:   "Refresh failed",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Rankings reloaded",
		"singles":   len(snap.Singles),
		"doubles":   len(snap.Doubles),
		"loaded_at": snap.LoadedAt,
		"version":   snap.Version,
	})
}

// HealthCheck handles GET /api/v1/health
// @Summary Health check
// @Description Checks the health of the service and its dependencies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/health [get]
func (h *RankingsHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.service.HealthCheck(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Health check failed",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"message": "All systems operational",
	})
}
