package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/observability"
	"github.com/spec-kit/bookstore-service/internal/repository/memory"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T, redis handlers.Pinger) *testServer {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	validate := dto.NewValidator()

	codec, err := auth.NewTokenCodec([]byte("router-test-signing-key-0123456789"), time.Hour)
	require.NoError(t, err)
	decoy, err := auth.DecoyHash(bcrypt.MinCost)
	require.NoError(t, err)

	verifier := auth.NewCredentialVerifier(store.Customers(), auth.MatchPassword, decoy)
	service.NewFulfillmentService(dispatcher, store.Purchases(), logger).RegisterHandlers()

	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		LoginPath:      "/login",
		Health:         handlers.NewHealthHandler("bookstore-service", "test", pinger{}, redis),
		Login:          auth.NewAuthenticationStage(verifier, codec, validate, logger, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(codec, store.Customers(), "/login", logger, metrics),
		Customers:      handlers.NewCustomersHandler(service.NewCustomerService(store.Customers(), store.Books(), dispatcher, bcrypt.MinCost), validate),
		Books:          handlers.NewBooksHandler(service.NewBookService(store.Books(), store.Customers(), dispatcher), validate),
		Purchases: handlers.NewPurchasesHandler(service.NewPurchaseService(service.PurchaseDependencies{
			PurchaseRepo: store.Purchases(),
			BookRepo:     store.Books(),
			CustomerRepo: store.Customers(),
			Dispatcher:   dispatcher,
		}), validate),
		Admin: handlers.NewAdminHandler(service.NewReportService(store.Books(), metrics)),
	})
	app.Get("/panic", func(*fiber.Ctx) error { panic("boom") })

	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// register creates a customer through the public endpoint and logs in.
func (s *testServer) register(t *testing.T, name string) (int, string) {
	t.Helper()
	email := strings.ToLower(name) + "@books.test"
	resp, raw := s.do(t, http.MethodPost, "/customers", "", `{"name":"`+name+`","email":"`+email+`","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created dto.CustomerResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	return created.ID, s.login(t, email, "secret1")
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, raw := s.do(t, http.MethodPost, "/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	header := resp.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(header, auth.BearerPrefix))
	return header
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("admin-pass", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.store.Customers().Create(context.Background(), &domain.Customer{
		Name:         "Admin",
		Email:        "admin@books.test",
		PasswordHash: hash,
		Status:       domain.CustomerStatusActive,
		Roles:        []domain.Role{domain.RoleAdmin},
	}))
	return s.login(t, "admin@books.test", "admin-pass")
}

func decodeError(t *testing.T, raw []byte) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}

func createBook(t *testing.T, s *testServer, token string, ownerID int, name string, price int) int {
	t.Helper()
	resp, raw := s.do(t, http.MethodPost, "/books", token,
		`{"name":"`+name+`","price_cents":`+strconv.Itoa(price)+`,"customer_id":`+strconv.Itoa(ownerID)+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var book dto.BookResponse
	require.NoError(t, json.Unmarshal(raw, &book))
	return book.ID
}

func TestRouter_AnonymousAccess(t *testing.T) {
	s := newTestServer(t, pinger{})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/customers", ""},
		{http.MethodGet, "/customers/1", ""},
		{http.MethodDelete, "/customers/1", ""},
		{http.MethodGet, "/books", ""},
		{http.MethodGet, "/books/active", ""},
		{http.MethodPost, "/books", `{"name":"x","price_cents":1,"customer_id":1}`},
		{http.MethodPost, "/purchases", `{"customer_id":1,"book_ids":[1]}`},
		{http.MethodGet, "/admin/reports", ""},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, raw := s.do(t, tc.method, tc.path, "", tc.body)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, apperrors.ErrorResponse{
				HTTPCode:     http.StatusUnauthorized,
				Message:      "Access Denied",
				InternalCode: "ML-0001",
			}, decodeError(t, raw))
		})
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, _ := s.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/health/ready", "Bearer garbage", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	id, token := s.register(t, "Ana")
	assert.NotZero(t, id)
	assert.NotEmpty(t, token)

	resp, raw := s.do(t, http.MethodPost, "/customers", "", `{"name":"Ana","email":"ana@books.test","password":"secret1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeError(t, raw)
	assert.Equal(t, "ML-0002", body.InternalCode)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "email", body.Errors[0].Field)
}

func TestRouter_ReadinessReportsFailingDependency(t *testing.T) {
	s := newTestServer(t, pinger{err: errors.New("connection refused")})

	resp, raw := s.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(raw), "connection refused")
}

func TestRouter_UnknownRouteAndPanic(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, raw := s.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ML-0004", decodeError(t, raw).InternalCode)

	resp, raw = s.do(t, http.MethodGet, "/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, apperrors.ErrorResponse{
		HTTPCode:     http.StatusInternalServerError,
		Message:      "Internal Server Error",
		InternalCode: "ML-0003",
	}, decodeError(t, raw))
}

func TestRouter_CustomerOwnership(t *testing.T) {
	s := newTestServer(t, pinger{})
	anaID, ana := s.register(t, "Ana")
	bobID, bob := s.register(t, "Bob")
	admin := s.admin(t)

	anaPath := "/customers/" + strconv.Itoa(anaID)

	resp, _ := s.do(t, http.MethodGet, anaPath, ana, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := s.do(t, http.MethodGet, anaPath, bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.ErrorResponse{HTTPCode: http.StatusForbidden, Message: "Access Denied", InternalCode: "ML-0001"}, decodeError(t, raw))

	resp, _ = s.do(t, http.MethodGet, anaPath, admin, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, "/customers/"+strconv.Itoa(bobID), ana, `{"name":"x","email":"x@books.test","password":"secret1"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = s.do(t, http.MethodPut, anaPath, ana, `{"name":"Ana Maria","email":"ana@books.test","password":"secret2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "Ana Maria")
	assert.NotContains(t, string(raw), "password")

	resp, raw = s.do(t, http.MethodGet, "/customers/abc", ana, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "ML-0002", decodeError(t, raw).InternalCode)

	resp, raw = s.do(t, http.MethodGet, "/customers/999", admin, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Customer [999] not exists", decodeError(t, raw).Message)

	resp, raw = s.do(t, http.MethodGet, "/customers?name=an", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []dto.CustomerResponse
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, anaID, listed[0].ID)
}

func TestRouter_DeletedCustomerTokenStopsWorking(t *testing.T) {
	s := newTestServer(t, pinger{})
	anaID, ana := s.register(t, "Ana")
	bookID := createBook(t, s, ana, anaID, "Dune", 1990)

	resp, _ := s.do(t, http.MethodDelete, "/customers/"+strconv.Itoa(anaID), ana, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/books", ana, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	book, err := s.store.Books().GetByID(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookStatusCancelled, book.Status)

	resp, _ = s.do(t, http.MethodPost, "/login", "", `{"email":"ana@books.test","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_BookOwnership(t *testing.T) {
	s := newTestServer(t, pinger{})
	anaID, ana := s.register(t, "Ana")
	_, bob := s.register(t, "Bob")
	admin := s.admin(t)

	resp, _ := s.do(t, http.MethodPost, "/books", bob, `{"name":"Dune","price_cents":1990,"customer_id":`+strconv.Itoa(anaID)+`}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, raw := s.do(t, http.MethodPost, "/books", bob, `{"name":"","price_cents":0,"customer_id":`+strconv.Itoa(anaID)+`}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ML-0001", decodeError(t, raw).InternalCode)

	bookID := createBook(t, s, ana, anaID, "Dune", 1990)
	bookPath := "/books/" + strconv.Itoa(bookID)

	resp, _ = s.do(t, http.MethodGet, bookPath, bob, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, bookPath, bob, `{"name":"Mine","price_cents":1}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodDelete, bookPath, bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = s.do(t, http.MethodPut, bookPath, ana, `{"name":"Dune Messiah","price_cents":2490}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "Dune Messiah")

	resp, _ = s.do(t, http.MethodDelete, bookPath, admin, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = s.do(t, http.MethodPut, bookPath, ana, `{"name":"Again","price_cents":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot update book with status [DELETED]", decodeError(t, raw).Message)

	resp, raw = s.do(t, http.MethodGet, "/books/404", ana, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ML-1001", decodeError(t, raw).InternalCode)

	resp, raw = s.do(t, http.MethodPost, "/books", ana, `{"name":"","price_cents":0,"customer_id":`+strconv.Itoa(anaID)+`}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, decodeError(t, raw).Errors, 2)
}

func TestRouter_PurchaseFlow(t *testing.T) {
	s := newTestServer(t, pinger{})
	anaID, ana := s.register(t, "Ana")
	bobID, bob := s.register(t, "Bob")
	dune := createBook(t, s, ana, anaID, "Dune", 1990)
	emma := createBook(t, s, ana, anaID, "Emma", 1010)

	body := `{"customer_id":` + strconv.Itoa(bobID) + `,"book_ids":[` + strconv.Itoa(dune) + `,` + strconv.Itoa(emma) + `]}`

	resp, _ := s.do(t, http.MethodPost, "/purchases", ana, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := s.do(t, http.MethodPost, "/purchases", ana, `{"customer_id":`+strconv.Itoa(bobID)+`,"book_ids":[0,-1]}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ML-0001", decodeError(t, raw).InternalCode)

	resp, raw = s.do(t, http.MethodPost, "/purchases", bob, `{"customer_id":`+strconv.Itoa(bobID)+`,"book_ids":[0]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, raw = s.do(t, http.MethodPost, "/purchases", bob, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var purchase dto.PurchaseResponse
	require.NoError(t, json.Unmarshal(raw, &purchase))
	assert.EqualValues(t, 3000, purchase.PriceCents)

	stored, ok := s.store.Purchase(purchase.ID)
	require.True(t, ok)
	assert.NotNil(t, stored.NFe)

	resp, raw = s.do(t, http.MethodPost, "/purchases", bob, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ML-3002", decodeError(t, raw).InternalCode)

	resp, raw = s.do(t, http.MethodPost, "/purchases", bob, `{"customer_id":`+strconv.Itoa(bobID)+`,"book_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ML-3001", decodeError(t, raw).InternalCode)

	resp, raw = s.do(t, http.MethodGet, "/books/active", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRouter_AdminReport(t *testing.T) {
	s := newTestServer(t, pinger{})
	anaID, ana := s.register(t, "Ana")
	createBook(t, s, ana, anaID, "Dune", 1990)
	admin := s.admin(t)

	resp, _ := s.do(t, http.MethodGet, "/admin/reports", ana, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := s.do(t, http.MethodGet, "/admin/reports", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var report dto.ReportResponse
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.EqualValues(t, 1, report.BooksByStatus[domain.BookStatusActive])
	assert.NotEmpty(t, report.AuthOutcomes)
	var denied int64
	for key, n := range report.Errors {
		if strings.HasSuffix(key, "|GET|ML-0001") {
			denied += n
		}
	}
	assert.EqualValues(t, 1, denied)
}
