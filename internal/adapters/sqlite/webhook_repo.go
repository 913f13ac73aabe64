package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// WebhookInboxRepository implements secondary.WebhookInboxRepository with SQLite.
type WebhookInboxRepository struct {
	db *sql.DB
}

// NewWebhookInboxRepository creates a new SQLite webhook inbox repository.
func NewWebhookInboxRepository(db *sql.DB) *WebhookInboxRepository {
	return &WebhookInboxRepository{db: db}
}

const webhookColumns = "id, order_code, provider, payload, payload_hash, signature, status, attempts, last_error, received_at, processed_at"

// Receive stores a delivery unless one with the same payload hash exists.
// Redeliveries return the stored entry's ID with created=false.
func (r *WebhookInboxRepository) Receive(ctx context.Context, entry *secondary.WebhookRecord) (int64, bool, error) {
	provider := entry.Provider
	if provider == "" {
		provider = "payos"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO webhook_inbox (order_code, provider, payload, payload_hash, signature, received_at)
		 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(payload_hash) DO NOTHING`,
		entry.OrderCode, provider, entry.Payload, entry.PayloadHash, nullString(entry.Signature), now(),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to store webhook: %w", translate(err, "webhook_inbox"))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to store webhook: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, "SELECT id FROM webhook_inbox WHERE payload_hash = ?", entry.PayloadHash).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load webhook id: %w", err)
	}
	return id, n > 0, nil
}

// GetByID retrieves an entry by ID.
func (r *WebhookInboxRepository) GetByID(ctx context.Context, id int64) (*secondary.WebhookRecord, error) {
	w, err := scanWebhook(r.db.QueryRowContext(ctx, "SELECT "+webhookColumns+" FROM webhook_inbox WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("webhook", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}
	return w, nil
}

// ListPending retrieves received and failed entries, oldest first.
func (r *WebhookInboxRepository) ListPending(ctx context.Context, limit int) ([]*secondary.WebhookRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(ctx, "SELECT "+webhookColumns+" FROM webhook_inbox WHERE status IN ('received', 'failed') ORDER BY id LIMIT ?", limit)
}

// ListByOrderCode retrieves the entries of a gateway order code.
func (r *WebhookInboxRepository) ListByOrderCode(ctx context.Context, orderCode int64) ([]*secondary.WebhookRecord, error) {
	return r.list(ctx, "SELECT "+webhookColumns+" FROM webhook_inbox WHERE order_code = ? ORDER BY id", orderCode)
}

func (r *WebhookInboxRepository) list(ctx context.Context, query string, args ...any) ([]*secondary.WebhookRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer rows.Close()

	var out []*secondary.WebhookRecord
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// MarkProcessed marks an entry processed.
func (r *WebhookInboxRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE webhook_inbox SET status = 'processed', processed_at = ?, last_error = NULL WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook processed: %w", err)
	}
	return requireAffected(res, "webhook", strconv.FormatInt(id, 10))
}

// RecordFailure stores a failed attempt and returns the attempt count after it.
func (r *WebhookInboxRepository) RecordFailure(ctx context.Context, id int64, lastError string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx,
		"UPDATE webhook_inbox SET status = 'failed', attempts = attempts + 1, last_error = ? WHERE id = ? RETURNING attempts",
		nullString(lastError), id).Scan(&attempts)
	if err == sql.ErrNoRows {
		return 0, notFound("webhook", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return 0, fmt.Errorf("failed to record webhook failure: %w", err)
	}
	return attempts, nil
}

func scanWebhook(s rowScanner) (*secondary.WebhookRecord, error) {
	var (
		w                       secondary.WebhookRecord
		signature, lastError    sql.NullString
		receivedAt, processedAt sql.NullTime
	)
	err := s.Scan(&w.ID, &w.OrderCode, &w.Provider, &w.Payload, &w.PayloadHash, &signature, &w.Status,
		&w.Attempts, &lastError, &receivedAt, &processedAt)
	if err != nil {
		return nil, err
	}
	w.Signature = signature.String
	w.LastError = lastError.String
	w.ReceivedAt = receivedAt.Time
	w.ProcessedAt = timePtr(processedAt)
	return &w, nil
}

var _ secondary.WebhookInboxRepository = (*WebhookInboxRepository)(nil)
