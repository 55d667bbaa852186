// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"inschoolz/internal/bulkops"
	"inschoolz/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminSubmitBulkOperation handles POST /api/admin/bulk-operations
// @Summary Start a bulk operation
// @Description Spawn a background worker for bot/content generation or cleanup.
// @Description Only one operation of a given type may be in flight; a second
// @Description submission returns 409 with the running operation in details.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{type=string,params=bulkops.Params} true "Operation"
// @Success 200 {object} models.BulkOperation
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /admin/bulk-operations [post]
func (s *Server) AdminSubmitBulkOperation(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(flagBulkOperations, c.Locals("userID").(uint)) {
		return respondServiceError(c, models.NewFeatureDisabledError("Bulk operations"))
	}

	var req struct {
		Type   string         `json:"type"`
		Params bulkops.Params `json:"params"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	op, err := s.orchestrator.Submit(c.Context(), models.BulkOperationType(req.Type), req.Params)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(op)
}

// AdminGetBulkOperation handles GET /api/admin/bulk-operations/:opId
// @Summary Get a bulk operation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param opId path string true "Operation ID"
// @Success 200 {object} models.BulkOperation
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/bulk-operations/{opId} [get]
func (s *Server) AdminGetBulkOperation(c *fiber.Ctx) error {
	opID := c.Params("opId")
	if opID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid operation ID"))
	}

	op, err := s.orchestrator.Get(c.Context(), opID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(op)
}

// AdminRecentBulkOperations handles GET /api/admin/bulk-operations
// @Summary List recent bulk operations
// @Description Returns the most recently submitted operations, newest first.
// @Description Also served at /admin/bulk-operations/recent.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=[]models.BulkOperation,total=int}
// @Router /admin/bulk-operations [get]
func (s *Server) AdminRecentBulkOperations(c *fiber.Ctx) error {
	ops, err := s.orchestrator.Recent(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    ops,
		"total":   len(ops),
	})
}
