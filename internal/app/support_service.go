package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/garage/internal/ctxutil"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	notificationRepo secondary.NotificationRepository
	newID            func() string
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService with injected dependencies.
func NewNotificationService(notificationRepo secondary.NotificationRepository) *NotificationServiceImpl {
	return &NotificationServiceImpl{notificationRepo: notificationRepo, newID: newID, now: utcNow}
}

// Notify stores a notification for a user.
func (s *NotificationServiceImpl) Notify(ctx context.Context, userID, title, content, kind string) (*primary.Notification, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	record := &secondary.NotificationRecord{
		ID:      s.newID(),
		UserID:  userID,
		Title:   title,
		Content: content,
		Type:    kind,
	}
	if err := s.notificationRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to notify user: %w", err)
	}
	record.CreatedAt = s.now()
	return recordToNotification(record), nil
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *NotificationServiceImpl) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*primary.Notification, error) {
	records, err := s.notificationRepo.ListForUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]*primary.Notification, len(records))
	for i, r := range records {
		out[i] = recordToNotification(r)
	}
	return out, nil
}

// MarkRead marks a notification read.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id string) error {
	return s.notificationRepo.MarkRead(ctx, id, s.now())
}

func recordToNotification(r *secondary.NotificationRecord) *primary.Notification {
	return &primary.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		Type:      r.Type,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	auditRepo secondary.AuditRepository
}

// NewAuditService creates a new AuditService with injected dependencies.
func NewAuditService(auditRepo secondary.AuditRepository) *AuditServiceImpl {
	return &AuditServiceImpl{auditRepo: auditRepo}
}

// LogSystem appends a system log entry attributed to the context's actor.
func (s *AuditServiceImpl) LogSystem(ctx context.Context, level, source, message string) error {
	_, err := s.auditRepo.AppendSystemLog(ctx, &secondary.SystemLogRecord{
		UserID:  ctxutil.ActorFromContext(ctx),
		Level:   level,
		Source:  source,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("failed to append system log: %w", err)
	}
	return nil
}

// LogSecurity appends a security log entry. Failures are logged at warn level.
func (s *AuditServiceImpl) LogSecurity(ctx context.Context, req primary.SecurityEventRequest) error {
	level := "info"
	if req.Outcome == "failure" {
		level = "warn"
	}
	entry := &secondary.SystemLogRecord{
		UserID:    ctxutil.ActorFromContext(ctx),
		Level:     level,
		Source:    "security",
		Message:   req.Message,
		IPAddress: req.IPAddress,
	}
	sec := &secondary.SecurityLogRecord{
		Action:      req.Action,
		Resource:    req.Resource,
		Outcome:     req.Outcome,
		ThreatLevel: req.ThreatLevel,
	}
	if _, err := s.auditRepo.AppendSecurityLog(ctx, entry, sec); err != nil {
		return fmt.Errorf("failed to append security log: %w", err)
	}
	return nil
}

// Recent retrieves the newest entries.
func (s *AuditServiceImpl) Recent(ctx context.Context, limit int) ([]*primary.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	out := make([]*primary.AuditEntry, len(entries))
	for i, e := range entries {
		a := &primary.AuditEntry{
			ID:        e.ID,
			UserID:    e.UserID,
			Level:     e.Level,
			Source:    e.Source,
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		}
		if e.Security != nil {
			a.Security = true
			a.Action = e.Security.Action
			a.Outcome = e.Security.Outcome
			a.ThreatLevel = e.Security.ThreatLevel
		}
		out[i] = a
	}
	return out, nil
}

// ChatServiceImpl implements the ChatService interface.
type ChatServiceImpl struct {
	chatRepo secondary.ChatRepository
	newID    func() string
}

// NewChatService creates a new ChatService with injected dependencies.
func NewChatService(chatRepo secondary.ChatRepository) *ChatServiceImpl {
	return &ChatServiceImpl{chatRepo: chatRepo, newID: newID}
}

// StartConversation opens a conversation for a user.
func (s *ChatServiceImpl) StartConversation(ctx context.Context, userID, vehicleID, title string) (*primary.Conversation, error) {
	record := &secondary.ConversationRecord{
		ID:        s.newID(),
		UserID:    userID,
		VehicleID: vehicleID,
		Title:     title,
		Status:    "active",
	}
	if err := s.chatRepo.StartConversation(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to start conversation: %w", err)
	}
	return &primary.Conversation{
		ID:        record.ID,
		UserID:    record.UserID,
		VehicleID: record.VehicleID,
		Title:     record.Title,
		Status:    record.Status,
	}, nil
}

// AppendMessage stores a message in an active conversation.
func (s *ChatServiceImpl) AppendMessage(ctx context.Context, conversationID, role, content, suggestedServiceID string) (int64, error) {
	conv, err := s.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if conv.Status != "active" {
		return 0, fmt.Errorf("conversation %s is %s", conversationID, conv.Status)
	}
	return s.chatRepo.AppendMessage(ctx, &secondary.ChatMessageRecord{
		ConversationID:     conversationID,
		Role:               role,
		Content:            content,
		SuggestedServiceID: suggestedServiceID,
	})
}

// ListMessages retrieves the messages of a conversation in order.
func (s *ChatServiceImpl) ListMessages(ctx context.Context, conversationID string) ([]*primary.ChatMessage, error) {
	records, err := s.chatRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]*primary.ChatMessage, len(records))
	for i, r := range records {
		out[i] = &primary.ChatMessage{
			ID:                 r.ID,
			Role:               r.Role,
			Content:            r.Content,
			SuggestedServiceID: r.SuggestedServiceID,
			CreatedAt:          r.CreatedAt,
		}
	}
	return out, nil
}

// CloseConversation closes a conversation.
func (s *ChatServiceImpl) CloseConversation(ctx context.Context, conversationID string) error {
	return s.chatRepo.CloseConversation(ctx, conversationID)
}

// Ensure the support services implement their interfaces.
var (
	_ primary.NotificationService = (*NotificationServiceImpl)(nil)
	_ primary.AuditService        = (*AuditServiceImpl)(nil)
	_ primary.ChatService         = (*ChatServiceImpl)(nil)
)
