package handlers

import "github.com/gofiber/fiber/v2"

// SetupRoutes mounts the REST endpoints on api, normally the /api/v1 group
func SetupRoutes(api fiber.Router, rankings *RankingsHandler, suggestions *SuggestionsHandler, sessions *SessionsHandler) {
	api.Get("/health", rankings.HealthCheck)
	api.Get("/rankings/:mode", rankings.GetStandings)
	api.Post("/tourney-check", rankings.TourneyCheck)
	api.Post("/refresh", rankings.Refresh)

	api.Post("/suggestions", suggestions.Submit)

	api.Post("/sessions", sessions.Create)
	api.Get("/sessions/:id", sessions.Get)
	api.Post("/sessions/:id/events", sessions.Apply)
	api.Delete("/sessions/:id", sessions.Delete)
}
