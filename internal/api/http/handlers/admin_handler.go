package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/service"
)

// AdminHandler serves administrator-only endpoints.
type AdminHandler struct {
	reports *service.ReportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(reports *service.ReportService) *AdminHandler {
	return &AdminHandler{reports: reports}
}

// Report GET /admin/reports.
func (h *AdminHandler) Report(c *fiber.Ctx) error {
	report, err := h.reports.Build(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.ReportResponse{
		BooksByStatus: report.BooksByStatus,
		AuthOutcomes:  report.AuthOutcomes,
		Errors:        report.Errors,
	})
}
