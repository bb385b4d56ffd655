package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/repository"
	"github.com/spec-kit/bookstore-service/internal/service"
)

// BooksHandler exposes book endpoints.
type BooksHandler struct {
	service  *service.BookService
	validate *validator.Validate
}

// NewBooksHandler constructs handler.
func NewBooksHandler(bookService *service.BookService, validate *validator.Validate) *BooksHandler {
	return &BooksHandler{service: bookService, validate: validate}
}

// Create POST /books. The listing owner comes from the body, so ownership
// is checked here rather than by a route guard, before the body is validated.
func (h *BooksHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBookRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := auth.AuthorizeOwner(c, req.CustomerID); err != nil {
		return err
	}
	if err := dto.Validate(h.validate, req); err != nil {
		return err
	}

	book, err := h.service.Create(c.UserContext(), service.BookInput{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewBookResponse(book))
}

// List GET /books?status=&customer_id=.
func (h *BooksHandler) List(c *fiber.Ctx) error {
	query := parseBookQuery(c)
	books, err := h.service.List(c.UserContext(), repository.BookFilter{
		Statuses:   query.Statuses,
		CustomerID: query.CustomerID,
		Limit:      query.PageSize,
		Offset:     (query.Page - 1) * query.PageSize,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBookList(books))
}

// ListActive GET /books/active.
func (h *BooksHandler) ListActive(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	books, err := h.service.ListActive(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBookList(books))
}

// Get GET /books/:id.
func (h *BooksHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBookResponse(book))
}

// Update PUT /books/:id.
func (h *BooksHandler) Update(c *fiber.Ctx) error {
	book, err := h.ownedBook(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBookRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(h.validate, req); err != nil {
		return err
	}

	updated, err := h.service.Update(c.UserContext(), book, req.Name, req.PriceCents)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBookResponse(updated))
}

// Delete DELETE /books/:id.
func (h *BooksHandler) Delete(c *fiber.Ctx) error {
	book, err := h.ownedBook(c)
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.UserContext(), book); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ownedBook loads the book named by the path and checks the caller may act
// for its owner.
func (h *BooksHandler) ownedBook(c *fiber.Ctx) (*domain.Book, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	book, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwner(c, book.CustomerID); err != nil {
		return nil, err
	}
	return book, nil
}

func parseBookQuery(c *fiber.Ctx) dto.BookListQuery {
	query := dto.BookListQuery{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 20),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			query.Statuses = append(query.Statuses, domain.BookStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if owner := parseInt(c.Query("customer_id"), 0); owner > 0 {
		query.CustomerID = &owner
	}
	return query
}
