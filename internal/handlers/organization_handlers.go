package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/services"
)

// OrganizationHandlers handles organization and membership management
type OrganizationHandlers struct {
	orgService services.OrganizationService
}

func NewOrganizationHandlers(orgService services.OrganizationService) *OrganizationHandlers {
	return &OrganizationHandlers{orgService: orgService}
}

// CreateOrganization handles creating an organization; the caller becomes
// its owner
func (h *OrganizationHandlers) CreateOrganization(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req services.CreateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	org, err := h.orgService.Create(c.Request().Context(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, org)
}

// GetOrganization handles fetching the caller's active organization
func (h *OrganizationHandlers) GetOrganization(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	org, err := h.orgService.Get(c.Request().Context(), tc.OrganizationID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, org)
}

// DeleteOrganization handles deleting the caller's active organization.
// Only owners may do this; dependent data cascades.
func (h *OrganizationHandlers) DeleteOrganization(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}
	if tc.Role != models.RoleOwner {
		return common.Unauthorized("Unauthorized")
	}

	if err := h.orgService.Delete(c.Request().Context(), tc.OrganizationID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyOrganizations handles listing the caller's memberships
func (h *OrganizationHandlers) ListMyOrganizations(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	memberships, err := h.orgService.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"memberships": memberships})
}

// AddMemberRequest represents a request to add a member to an organization
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// AddMember handles adding a user to the caller's active organization
func (h *OrganizationHandlers) AddMember(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}
	if tc.Role != models.RoleOwner && tc.Role != models.RoleAdmin {
		return common.Unauthorized("Unauthorized")
	}

	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member, err := h.orgService.AddMember(c.Request().Context(), tc.OrganizationID, userID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

// RemoveMember handles removing a user from the caller's active organization
func (h *OrganizationHandlers) RemoveMember(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}
	if tc.Role != models.RoleOwner && tc.Role != models.RoleAdmin {
		return common.Unauthorized("Unauthorized")
	}

	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.orgService.RemoveMember(c.Request().Context(), tc.OrganizationID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
