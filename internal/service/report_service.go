package service

import (
	"context"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/observability"
	"github.com/spec-kit/bookstore-service/internal/repository"
)

// Report is the administrator overview.
type Report struct {
	BooksByStatus map[domain.BookStatus]int64
	AuthOutcomes  map[string]int64
	Errors        map[string]int64
}

// ReportService assembles administrative reports.
type ReportService struct {
	books   repository.BookRepository
	metrics *observability.Metrics
}

// NewReportService constructs the service.
func NewReportService(books repository.BookRepository, metrics *observability.Metrics) *ReportService {
	return &ReportService{books: books, metrics: metrics}
}

// Build collects catalogue totals and gateway counters.
func (s *ReportService) Build(ctx context.Context) (*Report, error) {
	counts, err := s.books.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{
		BooksByStatus: counts,
		AuthOutcomes:  s.metrics.AuthOutcomes(),
		Errors:        s.metrics.Errors(),
	}, nil
}
