// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"inschoolz/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var adminValidate = validator.New()

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Inspect feature flag configuration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{flags=map[string]string}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.Raw()})
}

// --- Boards ---

type boardRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=40"`
	Name        string `json:"name" validate:"required,min=1,max=80"`
	Description string `json:"description" validate:"max=2000"`
	Scope       string `json:"scope" validate:"required,oneof=national regional school"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order" validate:"min=0"`
}

// AdminListBoards handles GET /api/admin/boards
// @Summary List all boards, inactive included
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{boards=[]models.Board}
// @Router /admin/boards [get]
func (s *Server) AdminListBoards(c *fiber.Ctx) error {
	boards, err := s.boardRepo.List(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"boards": boards})
}

// AdminCreateBoard handles POST /api/admin/boards
// @Summary Create a board
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body boardRequest true "Board"
// @Success 201 {object} models.Board
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/boards [post]
func (s *Server) AdminCreateBoard(c *fiber.Ctx) error {
	var req boardRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	board := &models.Board{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Scope:       models.BoardScope(req.Scope),
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		board.IsActive = *req.IsActive
	}

	if err := s.boardRepo.Create(c.Context(), board); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(board)
}

// AdminUpdateBoard handles PUT /api/admin/boards/:id
// @Summary Update a board
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param request body boardRequest true "Board"
// @Success 200 {object} models.Board
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/boards/{id} [put]
func (s *Server) AdminUpdateBoard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req boardRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	board, err := s.boardRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	board.Code = req.Code
	board.Name = req.Name
	board.Description = req.Description
	board.Scope = models.BoardScope(req.Scope)
	board.SortOrder = req.SortOrder
	if req.IsActive != nil {
		board.IsActive = *req.IsActive
	}

	if err := s.boardRepo.Update(c.Context(), board); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(board)
}

// AdminDeleteBoard handles DELETE /api/admin/boards/:id
// @Summary Delete a board
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/boards/{id} [delete]
func (s *Server) AdminDeleteBoard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.boardRepo.Delete(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Board deleted"})
}

// --- Schools ---

type schoolRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=120"`
	Type    string `json:"type" validate:"required,oneof=elementary middle high university"`
	Sido    string `json:"sido" validate:"required,max=40"`
	Sigungu string `json:"sigungu" validate:"required,max=40"`
	Address string `json:"address" validate:"max=200"`
}

// AdminCreateSchool handles POST /api/admin/schools
// @Summary Create a school
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body schoolRequest true "School"
// @Success 201 {object} models.School
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/schools [post]
func (s *Server) AdminCreateSchool(c *fiber.Ctx) error {
	var req schoolRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	school := &models.School{
		Name:    req.Name,
		Type:    models.SchoolType(req.Type),
		Sido:    req.Sido,
		Sigungu: req.Sigungu,
		Address: req.Address,
	}
	if err := s.schoolRepo.Create(c.Context(), school); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(school)
}

// AdminUpdateSchool handles PUT /api/admin/schools/:id
// @Summary Update a school
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "School ID"
// @Param request body schoolRequest true "School"
// @Success 200 {object} models.School
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/schools/{id} [put]
func (s *Server) AdminUpdateSchool(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req schoolRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	school, err := s.schoolRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	school.Name = req.Name
	school.Type = models.SchoolType(req.Type)
	school.Sido = req.Sido
	school.Sigungu = req.Sigungu
	school.Address = req.Address

	if err := s.schoolRepo.Update(c.Context(), school); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(school)
}

// AdminDeleteSchool handles DELETE /api/admin/schools/:id
// @Summary Delete a school
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "School ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/schools/{id} [delete]
func (s *Server) AdminDeleteSchool(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.schoolRepo.Delete(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "School deleted"})
}

// --- Users ---

// AdminSetUserRole handles PUT /api/admin/users/:id/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{role=string} true "Role (student, teacher, admin)"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [put]
func (s *Server) AdminSetUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role string `json:"role" validate:"required,oneof=student teacher admin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userService.SetRole(c.Context(), id, models.UserRole(req.Role))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// AdminSetUserStatus handles PUT /api/admin/users/:id/status
// @Summary Change a user's moderation status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{status=string} true "Status (active, suspended, banned)"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/status [put]
func (s *Server) AdminSetUserStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=active suspended banned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userService.SetStatus(c.Context(), id, models.UserStatus(req.Status))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// --- Settings ---

// AdminGetSettings handles GET /api/admin/settings
// @Summary List reward and limit settings
// @Description Unset knobs show their default value.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{settings=map[string]int}
// @Router /admin/settings [get]
func (s *Server) AdminGetSettings(c *fiber.Ctx) error {
	settings, err := s.settingsRepo.All(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// AdminUpdateSetting handles PUT /api/admin/settings/:name
// @Summary Update a reward or limit setting
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Setting name"
// @Param request body object{value=int} true "New value"
// @Success 200 {object} object{name=string,value=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/settings/{name} [put]
func (s *Server) AdminUpdateSetting(c *fiber.Ctx) error {
	name := c.Params("name")
	if _, known := models.DefaultSettings[name]; !known {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown setting: "+name))
	}

	var req struct {
		Value int `json:"value" validate:"min=0,max=1000000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := adminValidate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if err := s.settingsRepo.Set(c.Context(), name, req.Value); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"name":  name,
		"value": req.Value,
	})
}
