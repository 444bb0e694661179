package server

import (
	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Accepts profile fields
// and, when both currentPassword and newPassword are given, a password
// change in the same request.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	if req.NewPassword != "" {
		if err := s.userService.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			return models.Respond(c, err)
		}
	}

	user, err := s.userService.UpdateProfile(c.Context(), userID, req.Name, req.Email)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.Context(), currentUserID(c)); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminGetUsers handles GET /api/admin/users
func (s *Server) AdminGetUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	users, err := s.userService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// AdminGetUser handles GET /api/admin/users/:id
func (s *Server) AdminGetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.Get(c.Context(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// AdminUpdateUser handles PUT /api/admin/users/:id. Updates profile
// fields and/or the role.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), id, req.Name, req.Email)
	if err != nil {
		return models.Respond(c, err)
	}
	if req.Role != "" {
		user, err = s.userService.SetRole(c.Context(), id, models.Role(req.Role))
		if err != nil {
			return models.Respond(c, err)
		}
	}
	return c.JSON(user)
}

// AdminDeleteUser handles DELETE /api/admin/users/:id with the same
// compensating fan-out as self-deletion.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteAccount(c.Context(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
