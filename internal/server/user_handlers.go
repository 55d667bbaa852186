// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"inschoolz/internal/models"
	"inschoolz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update my profile
// @Description Update real name, school, or region. Changing school moves member counts.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{real_name=string,school_id=int,sido=string,sigungu=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		RealName *string `json:"real_name"`
		SchoolID *uint   `json:"school_id"`
		Sido     *string `json:"sido"`
		Sigungu  *string `json:"sigungu"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), userID, service.UpdateProfileInput{
		RealName: req.RealName,
		SchoolID: req.SchoolID,
		Sido:     req.Sido,
		Sigungu:  req.Sigungu,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetMyExperienceStatus handles GET /api/users/me/experience
// @Summary Get my daily experience status
// @Description Per-action counters against today's limits, in the site's timezone
// @Tags experience
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]service.LimitStatus
// @Router /users/me/experience [get]
func (s *Server) GetMyExperienceStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := s.expService.DailyStatus(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(status)
}

// RedeemReferral handles POST /api/referral
// @Summary Redeem a referral code
// @Description Register another user as my referrer. Both sides earn experience.
// @Tags referral
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{code=string} true "Referral code (the referrer's username)"
// @Success 200 {object} service.RedeemResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /referral [post]
func (s *Server) RedeemReferral(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if !s.featureFlags.Enabled(flagReferrals, userID) {
		return respondServiceError(c, models.NewFeatureDisabledError("Referral redemption"))
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.referralService.RedeemReferral(c.Context(), userID, req.Code)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetMyReferrals handles GET /api/users/me/referrals
// @Summary List users I referred
// @Tags referral
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 20)"
// @Success 200 {object} object{referrals=[]models.Referral,total=int}
// @Router /users/me/referrals [get]
func (s *Server) GetMyReferrals(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	referrals, total, err := s.referralService.MyReferrals(c.Context(), userID, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"referrals": referrals,
		"total":     total,
	})
}
