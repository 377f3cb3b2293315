package installment

import (
	"context"
	"encoding/json"

	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditTrailHandler writes every installment domain event to the structured
// audit log. Jewelry shops reconcile gold balances against this trail, so the
// full event payload is recorded, not just the type.
type AuditTrailHandler struct {
	logger *zap.Logger
}

// NewAuditTrailHandler creates a new AuditTrailHandler
func NewAuditTrailHandler(logger *zap.Logger) *AuditTrailHandler {
	return &AuditTrailHandler{
		logger: logger.Named("audit"),
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditTrailHandler) EventTypes() []string {
	return []string{
		installment.EventTypeContractCreated,
		installment.EventTypePaymentRecorded,
		installment.EventTypeProtectionApplied,
		installment.EventTypeEarlyDiscountApplied,
		installment.EventTypeContractCompleted,
		installment.EventTypeBalanceAdjusted,
		installment.EventTypeBalanceTypeFlipped,
	}
}

// Handle records one domain event in the audit log
func (h *AuditTrailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to serialize event for audit trail",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}

	h.logger.Info("installment event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload))

	return nil
}
