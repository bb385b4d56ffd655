package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	httptransport "github.com/spec-kit/bookstore-service/internal/api/http"
	"github.com/spec-kit/bookstore-service/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/observability"
	"github.com/spec-kit/bookstore-service/internal/persistence"
	"github.com/spec-kit/bookstore-service/internal/repository"
	"github.com/spec-kit/bookstore-service/internal/repository/memory"
	"github.com/spec-kit/bookstore-service/internal/service"
	"github.com/spec-kit/bookstore-service/internal/worker"
)

type repositories struct {
	customers repository.CustomerRepository
	books     repository.BookRepository
	purchases repository.PurchaseRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTokenTTL())
	if err != nil {
		logger.Fatal("unusable token signing key", zap.Error(err))
	}
	decoyHash, err := auth.DecoyHash(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to prepare password hashing", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := newRepositories(pg, logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	validate := dto.NewValidator()

	customerService := service.NewCustomerService(repos.customers, repos.books, dispatcher, cfg.Auth.BcryptCost)
	bookService := service.NewBookService(repos.books, repos.customers, dispatcher)
	purchaseService := service.NewPurchaseService(service.PurchaseDependencies{
		PurchaseRepo: repos.purchases,
		BookRepo:     repos.books,
		CustomerRepo: repos.customers,
		Dispatcher:   dispatcher,
	})
	reportService := service.NewReportService(repos.books, metrics)
	worker.StartFulfillmentWorker(service.NewFulfillmentService(dispatcher, repos.purchases, logger))

	verifier := auth.NewCredentialVerifier(repos.customers, auth.MatchPassword, decoyHash)
	loginStage := auth.NewAuthenticationStage(verifier, tokens, validate, logger, metrics)
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.customers, cfg.Auth.LoginPath, logger, metrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.NewErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		LoginPath:      cfg.Auth.LoginPath,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Login:          loginStage,
		AuthMiddleware: authMiddleware,
		Customers:      handlers.NewCustomersHandler(customerService, validate),
		Books:          handlers.NewBooksHandler(bookService, validate),
		Purchases:      handlers.NewPurchasesHandler(purchaseService, validate),
		Admin:          handlers.NewAdminHandler(reportService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// newRepositories falls back to process-local storage when no database is
// configured, so the service can run for local development.
func newRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("using in-memory repositories; data is lost on restart")
		store := memory.NewStore()
		return repositories{
			customers: store.Customers(),
			books:     store.Books(),
			purchases: store.Purchases(),
		}
	}
	return repositories{
		customers: repository.NewCustomerRepository(pool),
		books:     repository.NewBookRepository(pool),
		purchases: repository.NewPurchaseRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
