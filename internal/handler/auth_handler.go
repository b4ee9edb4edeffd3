package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// CredentialsRequest represents the login and register request body
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Sign in
// @Description Sign in against the finance API and open a dashboard session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	session, err := h.authService.Login(c.Request().Context(), domain.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondAuthError(c, MsgLoginFailed, NewUnauthorizedError, err)
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Register godoc
// @Summary Create an account
// @Description Register with the finance API and open a dashboard session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	session, err := h.authService.Register(c.Request().Context(), domain.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondAuthError(c, MsgRegisterFailed, rejectedRegistration, err)
	}

	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

func rejectedRegistration(c echo.Context, message string) error {
	return NewValidationError(c, message, nil)
}

// Logout godoc
// @Summary Sign out
// @Description Close the current dashboard session
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.authService.Logout(c.Request().Context(), session.ID); err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("Failed to close session")
		return NewInternalError(c, "Failed to sign out")
	}

	return c.NoContent(http.StatusNoContent)
}
