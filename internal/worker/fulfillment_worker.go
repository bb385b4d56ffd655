package worker

import (
	"github.com/spec-kit/bookstore-service/internal/service"
)

// StartFulfillmentWorker registers purchase fulfillment handlers.
func StartFulfillmentWorker(fulfillment *service.FulfillmentService) {
	if fulfillment == nil {
		return
	}
	fulfillment.RegisterHandlers()
}
