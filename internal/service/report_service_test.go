package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/observability"
	"github.com/spec-kit/bookstore-service/internal/repository/memory"
)

func TestReportService_Build(t *testing.T) {
	books := memory.NewStore().Books()
	ctx := context.Background()
	for _, status := range []domain.BookStatus{domain.BookStatusActive, domain.BookStatusActive, domain.BookStatusSold} {
		require.NoError(t, books.Create(ctx, &domain.Book{Name: "b", PriceCents: 1, CustomerID: 1, Status: status}))
	}

	metrics := observability.NewMetrics()
	metrics.RecordAuthOutcome("authorization", "token_expired")

	report, err := NewReportService(books, metrics).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.BookStatus]int64{domain.BookStatusActive: 2, domain.BookStatusSold: 1}, report.BooksByStatus)
	assert.NotEmpty(t, report.AuthOutcomes)
}
