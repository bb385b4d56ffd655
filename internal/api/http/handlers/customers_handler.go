package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/repository"
	"github.com/spec-kit/bookstore-service/internal/service"
)

// CustomersHandler exposes customer endpoints. Route guards enforce access
// before these run.
type CustomersHandler struct {
	service  *service.CustomerService
	validate *validator.Validate
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService, validate *validator.Validate) *CustomersHandler {
	return &CustomersHandler{service: customerService, validate: validate}
}

// Register POST /customers.
func (h *CustomersHandler) Register(c *fiber.Ctx) error {
	var req dto.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(h.validate, req); err != nil {
		return err
	}

	customer, err := h.service.Register(c.UserContext(), service.CustomerInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCustomerResponse(customer))
}

// List GET /customers?name=.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	customers, err := h.service.List(c.UserContext(), repository.CustomerFilter{
		NameContains: c.Query("name"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerList(customers))
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerResponse(customer))
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(h.validate, req); err != nil {
		return err
	}

	customer, err := h.service.Update(c.UserContext(), id, service.CustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerResponse(customer))
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
