package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/common"
	"supportdesk/internal/services"
)

// TicketHandlers handles ticket-related HTTP requests
type TicketHandlers struct {
	ticketService services.TicketService
}

func NewTicketHandlers(ticketService services.TicketService) *TicketHandlers {
	return &TicketHandlers{ticketService: ticketService}
}

// ListTicketsRequest represents query parameters for listing tickets
type ListTicketsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListTickets handles listing the organization's tickets
func (h *TicketHandlers) ListTickets(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req ListTicketsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ClampPage(req.Limit, req.Offset)

	tickets, err := h.ticketService.List(c.Request().Context(), tc, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"limit":   limit,
		"offset":  offset,
	})
}

// CreateTicket handles creating a new ticket
func (h *TicketHandlers) CreateTicket(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req services.CreateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	ticket, err := h.ticketService.Create(c.Request().Context(), tc, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ticket)
}

// GetTicket handles fetching a single ticket
func (h *TicketHandlers) GetTicket(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ticket, err := h.ticketService.Get(c.Request().Context(), tc, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticket)
}

// UpdateTicket handles updating a ticket
func (h *TicketHandlers) UpdateTicket(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	ticket, err := h.ticketService.Update(c.Request().Context(), tc, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticket)
}

// DeleteTicket handles deleting a ticket
func (h *TicketHandlers) DeleteTicket(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.ticketService.Delete(c.Request().Context(), tc, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTicketAudits handles listing a ticket's audit trail
func (h *TicketHandlers) ListTicketAudits(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req ListTicketsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ClampPage(req.Limit, req.Offset)

	audits, err := h.ticketService.Audits(c.Request().Context(), tc, id, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"audits": audits,
		"limit":  limit,
		"offset": offset,
	})
}
