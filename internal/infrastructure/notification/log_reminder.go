package notification

import (
	"context"

	"github.com/zarnegar/backend/internal/domain/installment"
	"go.uber.org/zap"
)

// LogReminderSender implements installment.ReminderSender by logging the
// reminder instead of delivering it. It stands in for the SMS gateway when
// notifications are disabled, so reminder sweeps still report per-contract
// outcomes.
type LogReminderSender struct {
	logger *zap.Logger
}

// NewLogReminderSender creates a reminder sender that only logs
func NewLogReminderSender(logger *zap.Logger) *LogReminderSender {
	return &LogReminderSender{logger: logger.Named("reminder")}
}

// SendReminder records the reminder in the log
func (s *LogReminderSender) SendReminder(_ context.Context, contract *installment.Contract) error {
	s.logger.Info("overdue reminder (sms disabled, not delivered)",
		zap.String("contract_number", contract.ContractNumber),
		zap.String("customer_phone", contract.CustomerPhone),
		zap.String("remaining_grams", contract.RemainingGoldWeight.StringFixed()),
	)
	return nil
}

var _ installment.ReminderSender = (*LogReminderSender)(nil)
