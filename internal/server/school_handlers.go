// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"strings"

	"inschoolz/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchSchools handles GET /api/schools/search
// @Summary Search schools by name prefix
// @Tags schools
// @Produce json
// @Param q query string true "Name prefix (2+ characters)"
// @Param limit query int false "Max rows (default 20)"
// @Success 200 {object} object{schools=[]models.School}
// @Failure 400 {object} models.ErrorResponse
// @Router /schools/search [get]
func (s *Server) SearchSchools(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < 2 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query must be at least 2 characters"))
	}
	p := parsePagination(c, 20)

	schools, err := s.schoolRepo.Search(c.Context(), q, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"schools": schools})
}

// GetSchools handles GET /api/schools
// @Summary List schools by region
// @Tags schools
// @Produce json
// @Param sido query string false "Province"
// @Param sigungu query string false "District"
// @Param limit query int false "Max rows (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{schools=[]models.School}
// @Router /schools [get]
func (s *Server) GetSchools(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	schools, err := s.schoolRepo.ListByRegion(c.Context(),
		c.Query("sido"), c.Query("sigungu"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"schools": schools})
}

// GetSchool handles GET /api/schools/:id
// @Summary Get a school
// @Tags schools
// @Produce json
// @Param id path int true "School ID"
// @Success 200 {object} models.School
// @Failure 404 {object} models.ErrorResponse
// @Router /schools/{id} [get]
func (s *Server) GetSchool(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	school, err := s.schoolRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(school)
}

// GetBoards handles GET /api/boards
// @Summary List active boards
// @Tags boards
// @Produce json
// @Success 200 {object} object{boards=[]models.Board}
// @Router /boards [get]
func (s *Server) GetBoards(c *fiber.Ctx) error {
	boards, err := s.boardRepo.ListActive(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"boards": boards})
}
