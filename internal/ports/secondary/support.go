package secondary

import (
	"context"
	"time"
)

// FeedbackRepository defines the secondary port for order feedback.
type FeedbackRepository interface {
	// Create persists feedback.
	Create(ctx context.Context, f *FeedbackRecord) error

	// GetByOrder retrieves the feedback of a repair order.
	GetByOrder(ctx context.Context, orderID string) (*FeedbackRecord, error)
}

// FeedbackRecord represents customer feedback on an order.
type FeedbackRecord struct {
	ID            string
	RepairOrderID string
	UserID        string
	Rating        int
	Comment       string
	CreatedAt     time.Time
}

// NotificationRepository defines the secondary port for user notifications.
type NotificationRepository interface {
	// Create persists a notification.
	Create(ctx context.Context, n *NotificationRecord) error

	// ListForUser retrieves a user's notifications, newest first.
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*NotificationRecord, error)

	// MarkRead marks a notification read.
	MarkRead(ctx context.Context, id string, at time.Time) error
}

// NotificationRecord represents a notification as stored in persistence.
type NotificationRecord struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Type      string
	TargetURL string
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// AuditRepository defines the secondary port for system and security logs.
type AuditRepository interface {
	// AppendSystemLog persists a system log entry and returns its ID.
	AppendSystemLog(ctx context.Context, entry *SystemLogRecord) (int64, error)

	// AppendSecurityLog persists the system log supertype row and the security
	// subtype row in one transaction and returns the shared ID.
	AppendSecurityLog(ctx context.Context, entry *SystemLogRecord, sec *SecurityLogRecord) (int64, error)

	// ListRecent retrieves the newest entries, security details attached when present.
	ListRecent(ctx context.Context, limit int) ([]*AuditEntry, error)
}

// SystemLogRecord represents a system log row.
type SystemLogRecord struct {
	ID        int64
	UserID    string
	Level     string
	Source    string
	Message   string
	Details   string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// SecurityLogRecord represents the security subtype row of a log.
type SecurityLogRecord struct {
	Action      string
	Resource    string
	Outcome     string
	ThreatLevel string
}

// AuditEntry is a system log with its optional security details.
type AuditEntry struct {
	SystemLogRecord
	Security *SecurityLogRecord
}

// ChatRepository defines the secondary port for AI chat storage.
type ChatRepository interface {
	// StartConversation persists a new conversation.
	StartConversation(ctx context.Context, c *ConversationRecord) error

	// GetConversation retrieves a conversation by ID.
	GetConversation(ctx context.Context, id string) (*ConversationRecord, error)

	// CloseConversation marks a conversation closed.
	CloseConversation(ctx context.Context, id string) error

	// AppendMessage persists a message and returns its ID.
	AppendMessage(ctx context.Context, m *ChatMessageRecord) (int64, error)

	// ListMessages retrieves the messages of a conversation in order.
	ListMessages(ctx context.Context, conversationID string) ([]*ChatMessageRecord, error)
}

// ConversationRecord represents an AI conversation.
type ConversationRecord struct {
	ID        string
	UserID    string
	VehicleID string
	BranchID  string
	Title     string
	Status    string
	CreatedAt time.Time
}

// ChatMessageRecord represents one message of a conversation.
type ChatMessageRecord struct {
	ID                 int64
	ConversationID     string
	Role               string
	Content            string
	SuggestedServiceID string
	CreatedAt          time.Time
}

// WebhookInboxRepository defines the secondary port for the payment webhook inbox.
type WebhookInboxRepository interface {
	// Receive stores a delivery unless one with the same payload hash exists.
	// It returns the entry ID and whether a new row was created.
	Receive(ctx context.Context, entry *WebhookRecord) (int64, bool, error)

	// GetByID retrieves an entry by ID.
	GetByID(ctx context.Context, id int64) (*WebhookRecord, error)

	// ListPending retrieves received and failed entries, oldest first.
	ListPending(ctx context.Context, limit int) ([]*WebhookRecord, error)

	// ListByOrderCode retrieves the entries of a gateway order code.
	ListByOrderCode(ctx context.Context, orderCode int64) ([]*WebhookRecord, error)

	// MarkProcessed marks an entry processed.
	MarkProcessed(ctx context.Context, id int64, at time.Time) error

	// RecordFailure stores a failed attempt and returns the stored attempt
	// count, which the store increments itself.
	RecordFailure(ctx context.Context, id int64, lastError string) (int, error)
}

// WebhookRecord represents a webhook inbox entry.
type WebhookRecord struct {
	ID          int64
	OrderCode   int64
	Provider    string
	Payload     string
	PayloadHash string
	Signature   string
	Status      string
	Attempts    int
	LastError   string
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}
