package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/api/dto"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/gate"
	"github.com/spec-kit/ticketapp/internal/service"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// UsersHandler exposes session and account endpoints.
type UsersHandler struct {
	auth   *service.AuthService
	tokens *auth.TokenManager
	gate   *gate.Gate
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, tokens *auth.TokenManager, g *gate.Gate) *UsersHandler {
	return &UsersHandler{auth: authService, tokens: tokens, gate: g}
}

// Signup handles POST /auth/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Signup(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	if !result.Success {
		if errors.Is(result.Reason, service.ErrDuplicateEmail) {
			return apperrors.NewDuplicateEmail(req.Email)
		}
		return apperrors.NewInternalError(result.Reason)
	}

	resp, err := h.sessionResult(c, gate.DashboardPath)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ok, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewInvalidCredentials()
	}

	resp, err := h.sessionResult(c, h.gate.ReturnPath(req.From))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Logout handles POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Session handles GET /auth/session.
func (h *UsersHandler) Session(c *fiber.Ctx) error {
	session, err := h.auth.LoadSession(c.UserContext())
	if err != nil {
		return err
	}
	if session == nil {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(*session)})
}

// ReturnPath handles GET /auth/return-path.
func (h *UsersHandler) ReturnPath(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"path": h.gate.ReturnPath(c.Query("from"))}})
}

func (h *UsersHandler) sessionResult(c *fiber.Ctx, redirect string) (*dto.SessionResult, error) {
	session, err := h.auth.LoadSession(c.UserContext())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewInternalError(errors.New("session missing after login"))
	}

	token, exp, err := h.tokens.GenerateToken(domain.Session{Name: session.Name, Email: session.Email})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &dto.SessionResult{
		Session:  dto.NewSessionResponse(*session),
		Auth:     dto.AuthResponse{Token: token, ExpiresAt: exp},
		Redirect: redirect,
	}, nil
}
