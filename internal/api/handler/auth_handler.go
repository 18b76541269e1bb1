package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autostack/access-service/internal/api/metrics"
	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a principal and returns a bearer token for it.
//
// @Summary      Register a new principal
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.SignUpsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignUpsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, err := h.authService.SignUp(c.Request().Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		metrics.SignUpsTotal.WithLabelValues(signUpResult(err)).Inc()
		return err
	}

	metrics.SignUpsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// Login authenticates a principal and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, err := h.authService.SignIn(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues(signInResult(err)).Inc()
		return err
	}

	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Profile returns the principal resolved by the guard.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.Principal
// @Failure      401   {object}  errorResponse
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principal)
}

// Admin is reachable only by ADMIN principals.
//
// @Summary      Admin page
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/admin [get]
func (h *AuthHandler) Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Admin page"})
}

func signUpResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrPasswordTooLong):
		return "invalid"
	default:
		return "error"
	}
}

func signInResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "too_many_attempts"
	default:
		return "error"
	}
}
