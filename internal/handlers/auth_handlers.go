package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/auth"
	"supportdesk/internal/common"
	"supportdesk/internal/services"
)

// AuthHandlers handles signup, login, logout, and organization switching.
type AuthHandlers struct {
	authService services.AuthService
	tokens      *auth.TokenManager
}

func NewAuthHandlers(authService services.AuthService, tokens *auth.TokenManager) *AuthHandlers {
	return &AuthHandlers{authService: authService, tokens: tokens}
}

// Signup handles user registration
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and returns an access token
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    result.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, result)
}

// Logout revokes the session behind the presented token
func (h *AuthHandlers) Logout(c echo.Context) error {
	claims, err := h.sessionClaims(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), claims.SessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SwitchOrganizationRequest selects the session's active organization
type SwitchOrganizationRequest struct {
	OrganizationID string `json:"organization_id" validate:"required"`
}

// SwitchOrganization records the active organization selection used by
// subsequent tenant-scoped requests.
func (h *AuthHandlers) SwitchOrganization(c echo.Context) error {
	claims, err := h.sessionClaims(c)
	if err != nil {
		return err
	}

	var req SwitchOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	organizationID, err := common.ValidateUUID(req.OrganizationID, "organization_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, err := common.ValidateUUID(claims.Subject, "subject")
	if err != nil {
		return common.Unauthorized("Unauthorized")
	}

	if err := h.authService.SwitchOrganization(c.Request().Context(), claims.SessionID, userID, organizationID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated identity triple
func (h *AuthHandlers) Me(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"organization_id": tc.OrganizationID,
		"user_id":         tc.UserID,
		"role":            tc.Role,
	})
}

func (h *AuthHandlers) sessionClaims(c echo.Context) (*auth.SessionClaims, error) {
	cred := auth.ResolveCredential(c.Request().Header)
	if cred.Type != auth.CredentialSession {
		return nil, common.Unauthorized("Unauthorized")
	}

	claims, err := h.tokens.Verify(cred.SessionToken)
	if err != nil {
		return nil, common.Unauthorized("Unauthorized")
	}
	return claims, nil
}
