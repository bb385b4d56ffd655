package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
)

// FulfillmentService reacts to purchase and catalogue events. Fiscal
// documents are issued by an external system; this service only records a
// placeholder document key so the purchase can be traced.
type FulfillmentService struct {
	dispatcher events.Dispatcher
	purchases  repository.PurchaseRepository
	logger     *zap.Logger
}

// NewFulfillmentService creates the service.
func NewFulfillmentService(dispatcher events.Dispatcher, purchases repository.PurchaseRepository, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		dispatcher: dispatcher,
		purchases:  purchases,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (f *FulfillmentService) RegisterHandlers() {
	if f.dispatcher == nil {
		return
	}
	f.dispatcher.Subscribe(events.EventPurchaseMade, f.handlePurchaseMade)
	f.dispatcher.Subscribe(events.EventCustomerRemoved, f.logEvent)
	f.dispatcher.Subscribe(events.EventBookStatusChanged, f.logEvent)
}

func (f *FulfillmentService) handlePurchaseMade(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PurchaseMadePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	nfe := uuid.NewString()
	if err := f.purchases.SetNFe(ctx, payload.PurchaseID, nfe); err != nil {
		f.logger.Error("PurchaseMade fulfillment failed",
			zap.String("event_id", event.ID),
			zap.Int("purchase_id", payload.PurchaseID),
			zap.Error(err))
		return err
	}

	f.logger.Info("PurchaseMade",
		zap.String("event_id", event.ID),
		zap.Int("customer_id", event.CustomerID),
		zap.Int("purchase_id", payload.PurchaseID),
		zap.Ints("book_ids", payload.BookIDs),
		zap.Int64("price_cents", payload.PriceCents),
		zap.String("nfe", nfe))
	return nil
}

func (f *FulfillmentService) logEvent(_ context.Context, event events.Event) error {
	f.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int("customer_id", event.CustomerID),
		zap.Any("payload", event.Payload))
	return nil
}
