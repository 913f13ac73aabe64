package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// FeedbackRepository implements secondary.FeedbackRepository with SQLite.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new SQLite feedback repository.
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create persists feedback. An order holds at most one feedback row.
func (r *FeedbackRepository) Create(ctx context.Context, f *secondary.FeedbackRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO feedbacks (id, repair_order_id, user_id, rating, comment) VALUES (?, ?, ?, ?, ?)",
		f.ID, f.RepairOrderID, f.UserID, f.Rating, nullString(f.Comment),
	)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", translate(err, "feedbacks"))
	}
	return nil
}

// GetByOrder retrieves the feedback of a repair order.
func (r *FeedbackRepository) GetByOrder(ctx context.Context, orderID string) (*secondary.FeedbackRecord, error) {
	var (
		f       secondary.FeedbackRecord
		comment sql.NullString
		created sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, repair_order_id, user_id, rating, comment, created_at FROM feedbacks WHERE repair_order_id = ?", orderID,
	).Scan(&f.ID, &f.RepairOrderID, &f.UserID, &f.Rating, &comment, &created)
	if err == sql.ErrNoRows {
		return nil, notFound("feedback for order", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	f.Comment = comment.String
	f.CreatedAt = created.Time
	return &f, nil
}

var _ secondary.FeedbackRepository = (*FeedbackRepository)(nil)

// NotificationRepository implements secondary.NotificationRepository with SQLite.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *secondary.NotificationRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (id, user_id, title, content, type, target_url) VALUES (?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.Title, nullString(n.Content), nullString(n.Type), nullString(n.TargetURL),
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", translate(err, "notifications"))
	}
	return nil
}

// ListForUser retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*secondary.NotificationRecord, error) {
	query := `SELECT id, user_id, title, content, type, target_url, is_read, read_at, created_at
		FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*secondary.NotificationRecord
	for rows.Next() {
		var (
			n                 secondary.NotificationRecord
			content, typ, url sql.NullString
			readAt, createdAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &content, &typ, &url, &n.IsRead, &readAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Content = content.String
		n.Type = typ.String
		n.TargetURL = url.String
		n.ReadAt = timePtr(readAt)
		n.CreatedAt = createdAt.Time
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead marks a notification read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1, read_at = COALESCE(read_at, ?) WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(res, "notification", id)
}

var _ secondary.NotificationRepository = (*NotificationRepository)(nil)

// AuditRepository implements secondary.AuditRepository with SQLite.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new SQLite audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSystemLog(ctx context.Context, ex execer, e *secondary.SystemLogRecord) (int64, error) {
	level := e.Level
	if level == "" {
		level = "info"
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	res, err := ex.ExecContext(ctx,
		`INSERT INTO system_logs (user_id, level, source, message, details, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(e.UserID), level, nullString(e.Source), e.Message, nullString(e.Details),
		nullString(e.IPAddress), nullString(e.UserAgent), createdAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append system log: %w", translate(err, "system_logs"))
	}
	return res.LastInsertId()
}

// AppendSystemLog persists a system log entry and returns its ID.
func (r *AuditRepository) AppendSystemLog(ctx context.Context, entry *secondary.SystemLogRecord) (int64, error) {
	return insertSystemLog(ctx, r.db, entry)
}

// AppendSecurityLog persists the supertype and subtype rows in one transaction.
func (r *AuditRepository) AppendSecurityLog(ctx context.Context, entry *secondary.SystemLogRecord, sec *secondary.SecurityLogRecord) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertSystemLog(ctx, tx, entry)
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO security_logs (id, action, resource, outcome, threat_level) VALUES (?, ?, ?, ?, ?)",
		id, sec.Action, nullString(sec.Resource), sec.Outcome, nullString(sec.ThreatLevel),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append security log: %w", translate(err, "security_logs"))
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit security log: %w", err)
	}
	return id, nil
}

// ListRecent retrieves the newest entries, security details attached when present.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*secondary.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.level, l.source, l.message, l.details, l.ip_address, l.user_agent, l.created_at,
		        s.id, s.action, s.resource, s.outcome, s.threat_level
		 FROM system_logs l LEFT JOIN security_logs s ON s.id = l.id
		 ORDER BY l.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*secondary.AuditEntry
	for rows.Next() {
		var (
			e                                  secondary.AuditEntry
			userID, source, details, ip, agent sql.NullString
			createdAt                          sql.NullTime
			secID                              sql.NullInt64
			action, resource, outcome, threat  sql.NullString
		)
		err := rows.Scan(&e.ID, &userID, &e.Level, &source, &e.Message, &details, &ip, &agent, &createdAt,
			&secID, &action, &resource, &outcome, &threat)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.UserID = userID.String
		e.Source = source.String
		e.Details = details.String
		e.IPAddress = ip.String
		e.UserAgent = agent.String
		e.CreatedAt = createdAt.Time
		if secID.Valid {
			e.Security = &secondary.SecurityLogRecord{
				Action:      action.String,
				Resource:    resource.String,
				Outcome:     outcome.String,
				ThreatLevel: threat.String,
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

var _ secondary.AuditRepository = (*AuditRepository)(nil)

// ChatRepository implements secondary.ChatRepository with SQLite.
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new SQLite chat repository.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// StartConversation persists a new conversation.
func (r *ChatRepository) StartConversation(ctx context.Context, c *secondary.ConversationRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO ai_conversations (id, user_id, vehicle_id, branch_id, title) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.UserID, nullString(c.VehicleID), nullString(c.BranchID), nullString(c.Title),
	)
	if err != nil {
		return fmt.Errorf("failed to start conversation: %w", translate(err, "ai_conversations"))
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
func (r *ChatRepository) GetConversation(ctx context.Context, id string) (*secondary.ConversationRecord, error) {
	var (
		c                      secondary.ConversationRecord
		vehicle, branch, title sql.NullString
		createdAt              sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, vehicle_id, branch_id, title, status, created_at FROM ai_conversations WHERE id = ?", id,
	).Scan(&c.ID, &c.UserID, &vehicle, &branch, &title, &c.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, notFound("conversation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	c.VehicleID = vehicle.String
	c.BranchID = branch.String
	c.Title = title.String
	c.CreatedAt = createdAt.Time
	return &c, nil
}

// CloseConversation marks a conversation closed.
func (r *ChatRepository) CloseConversation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE ai_conversations SET status = 'closed', updated_at = ? WHERE id = ?", now(), id)
	if err != nil {
		return fmt.Errorf("failed to close conversation: %w", err)
	}
	return requireAffected(res, "conversation", id)
}

// AppendMessage persists a message and returns its ID.
func (r *ChatRepository) AppendMessage(ctx context.Context, m *secondary.ChatMessageRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ai_messages (conversation_id, role, content, suggested_service_id) VALUES (?, ?, ?, ?)",
		m.ConversationID, m.Role, m.Content, nullString(m.SuggestedServiceID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append message: %w", translate(err, "ai_messages"))
	}
	return res.LastInsertId()
}

// ListMessages retrieves the messages of a conversation in order.
func (r *ChatRepository) ListMessages(ctx context.Context, conversationID string) ([]*secondary.ChatMessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, suggested_service_id, created_at
		 FROM ai_messages WHERE conversation_id = ? ORDER BY id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []*secondary.ChatMessageRecord
	for rows.Next() {
		var (
			m         secondary.ChatMessageRecord
			suggested sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &suggested, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.SuggestedServiceID = suggested.String
		m.CreatedAt = createdAt.Time
		out = append(out, &m)
	}
	return out, rows.Err()
}

var _ secondary.ChatRepository = (*ChatRepository)(nil)
