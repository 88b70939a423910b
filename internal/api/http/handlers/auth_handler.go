package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// AuthHandler exposes agent sign-up, login and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	payload, err := decodePayload(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Register(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLoginResponse(user, token))
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out"})
}

// CheckAuth handles GET /api/check_auth.
func (h *AuthHandler) CheckAuth(c *fiber.Ctx) error {
	agent, err := auth.CurrentAgent(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCheckAuthResponse(agent))
}
