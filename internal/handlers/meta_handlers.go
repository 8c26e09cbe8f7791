package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/common"
	"supportdesk/internal/services"
)

// MetaHandlers handles ticket status and priority management
type MetaHandlers struct {
	metaService services.MetaService
}

func NewMetaHandlers(metaService services.MetaService) *MetaHandlers {
	return &MetaHandlers{metaService: metaService}
}

// ListStatuses handles listing the organization's ticket statuses
func (h *MetaHandlers) ListStatuses(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	statuses, err := h.metaService.ListStatuses(c.Request().Context(), tc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"statuses": statuses})
}

// CreateStatus handles creating a ticket status
func (h *MetaHandlers) CreateStatus(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req services.MetaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	status, err := h.metaService.CreateStatus(c.Request().Context(), tc, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, status)
}

// UpdateStatus handles renaming or restyling a ticket status
func (h *MetaHandlers) UpdateStatus(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.MetaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	status, err := h.metaService.UpdateStatus(c.Request().Context(), tc, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// DeleteStatus handles deleting a ticket status
func (h *MetaHandlers) DeleteStatus(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.metaService.DeleteStatus(c.Request().Context(), tc, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPriorities handles listing the organization's ticket priorities
func (h *MetaHandlers) ListPriorities(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	priorities, err := h.metaService.ListPriorities(c.Request().Context(), tc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"priorities": priorities})
}

// CreatePriority handles creating a ticket priority
func (h *MetaHandlers) CreatePriority(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req services.MetaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	priority, err := h.metaService.CreatePriority(c.Request().Context(), tc, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, priority)
}

// UpdatePriority handles renaming or restyling a ticket priority
func (h *MetaHandlers) UpdatePriority(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.MetaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	priority, err := h.metaService.UpdatePriority(c.Request().Context(), tc, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, priority)
}

// DeletePriority handles deleting a ticket priority
func (h *MetaHandlers) DeletePriority(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.metaService.DeletePriority(c.Request().Context(), tc, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
