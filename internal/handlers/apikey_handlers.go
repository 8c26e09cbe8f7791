package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/common"
	"supportdesk/internal/services"
)

// APIKeyHandlers handles API key management
type APIKeyHandlers struct {
	apiKeyService services.APIKeyService
}

func NewAPIKeyHandlers(apiKeyService services.APIKeyService) *APIKeyHandlers {
	return &APIKeyHandlers{apiKeyService: apiKeyService}
}

// CreateAPIKeyRequest represents a request to mint a new API key
type CreateAPIKeyRequest struct {
	Name           string `json:"name" validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
	ExpiresInDays  *int   `json:"expires_in_days"`
}

// CreateAPIKey handles minting a new API key. The plaintext key appears in
// this response only; it is never retrievable again.
func (h *APIKeyHandlers) CreateAPIKey(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	orgID, err := common.ValidateUUID(req.OrganizationID, "organization_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var ttl *time.Duration
	if req.ExpiresInDays != nil {
		if *req.ExpiresInDays <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "expires_in_days must be positive")
		}
		d := time.Duration(*req.ExpiresInDays) * 24 * time.Hour
		ttl = &d
	}

	created, err := h.apiKeyService.Create(c.Request().Context(), userID, orgID, req.Name, ttl)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// ListAPIKeys handles listing the caller's API keys (metadata only)
func (h *APIKeyHandlers) ListAPIKeys(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	keys, err := h.apiKeyService.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"api_keys": keys})
}

// DeleteAPIKey handles revoking one of the caller's API keys
func (h *APIKeyHandlers) DeleteAPIKey(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.apiKeyService.Delete(c.Request().Context(), id, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
