// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// AttendanceCheckIn handles POST /api/attendance/check-in
// @Summary Daily attendance check-in
// @Description Check in once per calendar day. Consecutive days grow a streak bonus.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.CheckInResult
// @Failure 429 {object} models.ErrorResponse
// @Router /attendance/check-in [post]
func (s *Server) AttendanceCheckIn(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	result, err := s.attendanceSvc.CheckIn(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// AttendanceStatus handles GET /api/attendance/status
// @Summary Get my attendance status
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /attendance/status [get]
func (s *Server) AttendanceStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := s.attendanceSvc.Status(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(status)
}
