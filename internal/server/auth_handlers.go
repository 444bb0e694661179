package server

import (
	"fmt"
	"strconv"
	"time"

	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return models.Respond(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.Respond(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// CheckRole handles GET /api/auth/check-role. The role is read from
// storage, not from the token, so a stale token never reports a role
// the account no longer holds.
func (s *Server) CheckRole(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"role":  user.Role,
		"admin": user.IsAdmin(),
	})
}

// generateToken creates a JWT token for the given user
func (s *Server) generateToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10), // Subject (user ID as string)
		"role": string(user.Role),                       // Role (cached in token, re-checked for admin surfaces)
		"iss":  "missnotes-api",                         // Issuer
		"aud":  "missnotes-client",                      // Audience
		"exp":  now.Add(time.Hour * 24 * 7).Unix(),      // Expiration (7 days)
		"iat":  now.Unix(),                              // Issued at
		"nbf":  now.Unix(),                              // Not before
		"jti":  s.generateJTI(),                         // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to support revocation
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
