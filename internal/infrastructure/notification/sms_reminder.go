package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/zarnegar/backend/internal/domain/installment"
	"go.uber.org/zap"
)

const smsSendPath = "/sms/send.json"

// Errors returned by the SMS reminder sender
var (
	ErrNoRecipient   = errors.New("notification: contract has no phone number on file")
	ErrGatewayStatus = errors.New("notification: SMS gateway rejected the message")
)

// SMSReminderSender implements installment.ReminderSender against a
// Kavenegar-style REST SMS gateway. One message per overdue contract; the
// sweep isolates failures, so errors here only mark that contract's delivery
// as failed.
type SMSReminderSender struct {
	config     *SMSConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSMSReminderSender creates a new SMS reminder sender
func NewSMSReminderSender(config *SMSConfig, logger *zap.Logger) (*SMSReminderSender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SMSReminderSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// sendResponse is the gateway's response envelope
type sendResponse struct {
	Return struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"return"`
}

// SendReminder delivers one overdue-installment reminder
func (s *SMSReminderSender) SendReminder(ctx context.Context, contract *installment.Contract) error {
	if contract.CustomerPhone == "" {
		return ErrNoRecipient
	}

	message := fmt.Sprintf("%s, installment for contract %s is past due. Remaining balance: %s gold.",
		contract.CustomerName, contract.ContractNumber, contract.RemainingGoldWeight.String())

	form := url.Values{}
	form.Set("receptor", contract.CustomerPhone)
	form.Set("message", message)
	if s.config.Sender != "" {
		form.Set("sender", s.config.Sender)
	}

	endpoint := fmt.Sprintf("%s/v1/%s%s", s.config.BaseURL, s.config.APIKey, smsSendPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notification: failed to build request: %w", err)
	}
	req.URL.RawQuery = form.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrGatewayStatus, resp.StatusCode, string(body))
	}

	var envelope sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("notification: failed to decode response: %w", err)
	}
	if envelope.Return.Status != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrGatewayStatus, envelope.Return.Message)
	}

	s.logger.Debug("reminder sent",
		zap.String("contract_number", contract.ContractNumber))

	return nil
}

// Ensure SMSReminderSender implements ReminderSender
var _ installment.ReminderSender = (*SMSReminderSender)(nil)
