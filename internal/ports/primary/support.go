package primary

import (
	"context"
	"time"
)

// NotificationService defines the primary port for user notifications.
type NotificationService interface {
	// Notify stores a notification for a user.
	Notify(ctx context.Context, userID, title, content, kind string) (*Notification, error)

	// ListNotifications retrieves a user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)

	// MarkRead marks a notification read.
	MarkRead(ctx context.Context, id string) error
}

// Notification represents a notification at the port boundary.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}

// AuditService defines the primary port for system and security logs.
type AuditService interface {
	// LogSystem appends a system log entry.
	LogSystem(ctx context.Context, level, source, message string) error

	// LogSecurity appends a security log entry.
	LogSecurity(ctx context.Context, req SecurityEventRequest) error

	// Recent retrieves the newest entries.
	Recent(ctx context.Context, limit int) ([]*AuditEntry, error)
}

// SecurityEventRequest contains parameters for a security log entry.
type SecurityEventRequest struct {
	Message     string
	Action      string
	Resource    string
	Outcome     string // "success" or "failure"
	ThreatLevel string
	IPAddress   string
}

// AuditEntry is one log entry; security fields are empty for plain system logs.
type AuditEntry struct {
	ID          int64
	UserID      string
	Level       string
	Source      string
	Message     string
	Security    bool
	Action      string
	Outcome     string
	ThreatLevel string
	CreatedAt   time.Time
}

// ChatService defines the primary port for AI chat storage.
type ChatService interface {
	// StartConversation opens a conversation for a user.
	StartConversation(ctx context.Context, userID, vehicleID, title string) (*Conversation, error)

	// AppendMessage stores a message in an active conversation.
	AppendMessage(ctx context.Context, conversationID, role, content, suggestedServiceID string) (int64, error)

	// ListMessages retrieves the messages of a conversation in order.
	ListMessages(ctx context.Context, conversationID string) ([]*ChatMessage, error)

	// CloseConversation closes a conversation.
	CloseConversation(ctx context.Context, conversationID string) error
}

// Conversation represents an AI conversation at the port boundary.
type Conversation struct {
	ID        string
	UserID    string
	VehicleID string
	Title     string
	Status    string
}

// ChatMessage represents a chat message at the port boundary.
type ChatMessage struct {
	ID                 int64
	Role               string
	Content            string
	SuggestedServiceID string
	CreatedAt          time.Time
}

// WebhookService defines the primary port for the payment webhook inbox.
type WebhookService interface {
	// Receive stores a delivery. A redelivery of the same payload returns the
	// existing entry with Duplicate set.
	Receive(ctx context.Context, orderCode int64, payload []byte, signature string) (*WebhookEntry, error)

	// ListPending retrieves received and failed entries.
	ListPending(ctx context.Context, limit int) ([]*WebhookEntry, error)

	// ListByOrderCode retrieves the entries of a gateway order code.
	ListByOrderCode(ctx context.Context, orderCode int64) ([]*WebhookEntry, error)

	// MarkProcessed marks an entry processed.
	MarkProcessed(ctx context.Context, id int64) error

	// RecordFailure records a failed processing attempt.
	RecordFailure(ctx context.Context, id int64, cause string) (*WebhookEntry, error)
}

// WebhookEntry represents a webhook inbox entry at the port boundary.
type WebhookEntry struct {
	ID          int64
	OrderCode   int64
	Provider    string
	PayloadHash string
	Status      string
	Attempts    int
	LastError   string
	Duplicate   bool
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}
