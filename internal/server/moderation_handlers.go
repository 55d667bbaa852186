// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"inschoolz/internal/models"
	"inschoolz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FileReport handles POST /api/reports
// @Summary Report a post, comment, or user
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{target_type=string,target_id=int,reason=string,detail=string} true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) FileReport(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		TargetType string `json:"target_type"`
		TargetID   uint   `json:"target_id"`
		Reason     string `json:"reason"`
		Detail     string `json:"detail"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationSvc.FileReport(c.Context(), service.FileReportInput{
		ReporterID: userID,
		TargetType: models.ReportTargetType(req.TargetType),
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Detail:     req.Detail,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// AdminListReports handles GET /api/admin/reports
// @Summary List reports by status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (default pending)"
// @Param limit query int false "Max rows (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{reports=[]models.Report,total=int}
// @Router /admin/reports [get]
func (s *Server) AdminListReports(c *fiber.Ctx) error {
	status := models.ReportStatus(c.Query("status", string(models.ReportStatusPending)))
	p := parsePagination(c, 20)

	reports, total, err := s.moderationSvc.ListReports(c.Context(), status, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
	})
}

// AdminResolveReport handles POST /api/admin/reports/:id/resolve
// @Summary Resolve a report
// @Description Accept or reject a pending report. Accepting can remove content or suspend the user.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body object{accept=bool,resolution=string,suspend_target=bool} true "Decision"
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/reports/{id}/resolve [post]
func (s *Server) AdminResolveReport(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Accept        bool   `json:"accept"`
		Resolution    string `json:"resolution"`
		SuspendTarget bool   `json:"suspend_target"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationSvc.ResolveReport(c.Context(), service.ResolveReportInput{
		ReportID:      id,
		ResolverID:    userID,
		Accept:        req.Accept,
		Resolution:    req.Resolution,
		SuspendTarget: req.SuspendTarget,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(report)
}
