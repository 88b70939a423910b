package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
)

// CustomersHandler exposes customer endpoints. Customers are addressed by
// their full name.
type CustomersHandler struct {
	customers *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customers *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

// List handles GET /api/view_customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	customers, err := h.customers.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerList(customers))
}

// Create handles POST /api/add_customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	payload, err := decodePayload(c)
	if err != nil {
		return err
	}
	res, err := h.customers.Create(c.UserContext(), actorID(c), payload)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCustomerCreateResponse(res))
}

// Get handles GET /api/get_customers/:name.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.customers.GetByName(c.UserContext(), pathName(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerResponse(customer))
}

// Update handles PUT /api/update_customers/:name.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	payload, err := decodePayload(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.UpdateByName(c.UserContext(), actorID(c), pathName(c), payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Customer updated successfully",
		"customer": dto.NewCustomerResponse(customer),
	})
}

// Delete handles DELETE /api/delete_customers/:name.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	if err := h.customers.DeleteByName(c.UserContext(), actorID(c), pathName(c)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Customer deleted"})
}

func actorID(c *fiber.Ctx) int64 {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.User.ID
	}
	return 0
}
