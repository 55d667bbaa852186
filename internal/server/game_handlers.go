// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"inschoolz/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitGameScore handles POST /api/games/:type/scores
// @Summary Submit a mini-game score
// @Description Record a score. A qualifying score earns XP against the daily game limit.
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Game type (reaction, tile, flappy)"
// @Param request body object{score=int} true "Score"
// @Success 200 {object} service.SubmitScoreResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /games/{type}/scores [post]
func (s *Server) SubmitGameScore(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if !s.featureFlags.Enabled(flagGames, userID) {
		return respondServiceError(c, models.NewFeatureDisabledError("Mini-games"))
	}
	game := models.GameType(c.Params("type"))

	var req struct {
		Score int `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.gameService.SubmitScore(c.Context(), userID, game, req.Score)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetLeaderboard handles GET /api/games/:type/leaderboard
// @Summary Get a mini-game leaderboard
// @Tags games
// @Produce json
// @Param type path string true "Game type (reaction, tile, flappy)"
// @Param limit query int false "Max rows (default 10)"
// @Success 200 {object} object{leaderboard=[]repository.LeaderboardEntry}
// @Failure 400 {object} models.ErrorResponse
// @Router /games/{type}/leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	game := models.GameType(c.Params("type"))
	p := parsePagination(c, 10)

	entries, err := s.gameService.Leaderboard(c.Context(), game, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"leaderboard": entries})
}

// GetMyGameStats handles GET /api/games/:type/me
// @Summary Get my stats for a mini game
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param type path string true "Game type (reaction, tile, flappy)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} models.ErrorResponse
// @Router /games/{type}/me [get]
func (s *Server) GetMyGameStats(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	game := models.GameType(c.Params("type"))

	stats, err := s.gameService.MyStats(c.Context(), userID, game)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(stats)
}
