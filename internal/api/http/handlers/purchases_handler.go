package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/service"
)

// PurchasesHandler exposes purchase endpoints.
type PurchasesHandler struct {
	service  *service.PurchaseService
	validate *validator.Validate
}

// NewPurchasesHandler constructs handler.
func NewPurchasesHandler(purchaseService *service.PurchaseService, validate *validator.Validate) *PurchasesHandler {
	return &PurchasesHandler{service: purchaseService, validate: validate}
}

// Create POST /purchases.
func (h *PurchasesHandler) Create(c *fiber.Ctx) error {
	var req dto.PurchaseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := auth.AuthorizeOwner(c, req.CustomerID); err != nil {
		return err
	}
	if err := dto.Validate(h.validate, req); err != nil {
		return err
	}

	purchase, err := h.service.Purchase(c.UserContext(), req.CustomerID, req.BookIDs)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewPurchaseResponse(purchase))
}
