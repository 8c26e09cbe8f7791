package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/common"
	"supportdesk/internal/services"
)

// CustomerHandlers handles customer-related HTTP requests
type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// ListCustomersRequest represents query parameters for listing customers
type ListCustomersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListCustomers handles listing the organization's customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req ListCustomersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ClampPage(req.Limit, req.Offset)

	customers, err := h.customerService.List(c.Request().Context(), tc, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// CreateCustomer handles creating a new customer
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	var req services.CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	customer, err := h.customerService.Create(c.Request().Context(), tc, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles fetching a single customer
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	customer, err := h.customerService.Get(c.Request().Context(), tc, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles updating a customer
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	customer, err := h.customerService.Update(c.Request().Context(), tc, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles deleting a customer
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	tc, ok := common.GetTenantContext(c.Request().Context())
	if !ok {
		return common.Unauthorized("Unauthorized")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.customerService.Delete(c.Request().Context(), tc, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
