package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/webhook"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// defaultWebhookProvider names the payment gateway deliveries come from.
const defaultWebhookProvider = "payos"

// WebhookServiceImpl implements the WebhookService interface.
type WebhookServiceImpl struct {
	inboxRepo secondary.WebhookInboxRepository
	provider  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewWebhookService creates a new WebhookService with injected dependencies.
func NewWebhookService(inboxRepo secondary.WebhookInboxRepository, logger *zap.Logger) *WebhookServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookServiceImpl{
		inboxRepo: inboxRepo,
		provider:  defaultWebhookProvider,
		logger:    logger,
		now:       utcNow,
	}
}

// Receive stores a delivery. A redelivery of the same payload returns the
// existing entry with Duplicate set.
func (s *WebhookServiceImpl) Receive(ctx context.Context, orderCode int64, payload []byte, signature string) (*primary.WebhookEntry, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("webhook payload is empty")
	}
	record := &secondary.WebhookRecord{
		OrderCode:   orderCode,
		Provider:    s.provider,
		Payload:     string(payload),
		PayloadHash: webhook.PayloadHash(payload),
		Signature:   signature,
		Status:      string(webhook.StatusReceived),
		ReceivedAt:  s.now(),
	}
	id, created, err := s.inboxRepo.Receive(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to store webhook: %w", err)
	}

	stored, err := s.inboxRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := recordToWebhookEntry(stored)
	entry.Duplicate = !created
	if entry.Duplicate {
		s.logger.Info("duplicate webhook delivery", zap.Int64("webhook_id", id), zap.Int64("order_code", orderCode))
	}
	return entry, nil
}

// ListPending retrieves received and failed entries.
func (s *WebhookServiceImpl) ListPending(ctx context.Context, limit int) ([]*primary.WebhookEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	records, err := s.inboxRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending webhooks: %w", err)
	}
	return recordsToWebhookEntries(records), nil
}

// ListByOrderCode retrieves the entries of a gateway order code.
func (s *WebhookServiceImpl) ListByOrderCode(ctx context.Context, orderCode int64) ([]*primary.WebhookEntry, error) {
	records, err := s.inboxRepo.ListByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return recordsToWebhookEntries(records), nil
}

// MarkProcessed marks an entry processed.
func (s *WebhookServiceImpl) MarkProcessed(ctx context.Context, id int64) error {
	record, err := s.inboxRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := webhook.CanMarkProcessed(id, webhook.Status(record.Status)); !result.Allowed {
		return result.Error()
	}
	return s.inboxRepo.MarkProcessed(ctx, id, s.now())
}

// RecordFailure records a failed processing attempt.
func (s *WebhookServiceImpl) RecordFailure(ctx context.Context, id int64, cause string) (*primary.WebhookEntry, error) {
	record, err := s.inboxRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result := webhook.CanMarkProcessed(id, webhook.Status(record.Status)); !result.Allowed {
		return nil, result.Error()
	}

	failure := webhook.RecordFailure(record.Attempts, cause)
	attempts, err := s.inboxRepo.RecordFailure(ctx, id, failure.LastError)
	if err != nil {
		return nil, fmt.Errorf("failed to record webhook failure: %w", err)
	}
	// Concurrent failures each count; the store's total wins over the read.
	failure.Attempts = attempts
	s.logger.Warn("webhook processing failed",
		zap.Int64("webhook_id", id),
		zap.Int("attempts", failure.Attempts),
		zap.String("error", failure.LastError),
	)

	record.Status = string(failure.Status)
	record.Attempts = failure.Attempts
	record.LastError = failure.LastError
	return recordToWebhookEntry(record), nil
}

func recordsToWebhookEntries(records []*secondary.WebhookRecord) []*primary.WebhookEntry {
	out := make([]*primary.WebhookEntry, len(records))
	for i, r := range records {
		out[i] = recordToWebhookEntry(r)
	}
	return out
}

func recordToWebhookEntry(r *secondary.WebhookRecord) *primary.WebhookEntry {
	return &primary.WebhookEntry{
		ID:          r.ID,
		OrderCode:   r.OrderCode,
		Provider:    r.Provider,
		PayloadHash: r.PayloadHash,
		Status:      r.Status,
		Attempts:    r.Attempts,
		LastError:   r.LastError,
		ReceivedAt:  r.ReceivedAt,
		ProcessedAt: r.ProcessedAt,
	}
}

// Ensure WebhookServiceImpl implements the interface.
var _ primary.WebhookService = (*WebhookServiceImpl)(nil)
