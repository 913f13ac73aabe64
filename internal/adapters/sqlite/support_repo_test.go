package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/garage/internal/adapters/sqlite"
	"github.com/example/garage/internal/ports/secondary"
)

func TestFeedbackRepository_OnePerOrder(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	repo := sqlite.NewFeedbackRepository(database)
	ctx := context.Background()

	if err := repo.Create(ctx, &secondary.FeedbackRecord{ID: "FB-1", RepairOrderID: w.OrderID, UserID: w.CustomerID, Rating: 5}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, &secondary.FeedbackRecord{ID: "FB-2", RepairOrderID: w.OrderID, UserID: w.CustomerID, Rating: 4})
	cv, ok := secondary.AsConstraintViolation(err, secondary.ConstraintUnique)
	if !ok || cv.Constraint != "IX_FeedBacks_RepairOrderId" {
		t.Fatalf("second feedback = %v", err)
	}

	got, err := repo.GetByOrder(ctx, w.OrderID)
	if err != nil || got.ID != "FB-1" || got.Rating != 5 {
		t.Errorf("GetByOrder = %+v, %v", got, err)
	}
}

func TestFeedbackRepository_RatingRange(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		database := setupTestDB(t)
		w := seedWorkshop(t, database)
		repo := sqlite.NewFeedbackRepository(database)

		err := repo.Create(context.Background(), &secondary.FeedbackRecord{ID: "FB-1", RepairOrderID: w.OrderID, UserID: w.CustomerID, Rating: rating})
		if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintCheck); !ok {
			t.Errorf("rating %d = %v, want check violation", rating, err)
		}
	}
}

func TestNotificationRepository(t *testing.T) {
	database := setupTestDB(t)
	user := seedUser(t, database, "USR-1", "")
	repo := sqlite.NewNotificationRepository(database)
	ctx := context.Background()

	for _, id := range []string{"N-1", "N-2"} {
		if err := repo.Create(ctx, &secondary.NotificationRecord{ID: id, UserID: user, Title: "Order ready"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.MarkRead(ctx, "N-1", time.Now()); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	unread, err := repo.ListForUser(ctx, user, true)
	if err != nil || len(unread) != 1 || unread[0].ID != "N-2" {
		t.Errorf("unread = %v, %v", unread, err)
	}
	all, _ := repo.ListForUser(ctx, user, false)
	if len(all) != 2 {
		t.Errorf("all = %d", len(all))
	}
	if err := repo.MarkRead(ctx, "N-404", time.Now()); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("MarkRead(N-404) = %v", err)
	}
}

func TestAuditRepository_ListRecent(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "USR-1", "")
	repo := sqlite.NewAuditRepository(database)
	ctx := context.Background()

	if _, err := repo.AppendSystemLog(ctx, &secondary.SystemLogRecord{Message: "startup", Source: "daemon"}); err != nil {
		t.Fatalf("AppendSystemLog failed: %v", err)
	}
	secID, err := repo.AppendSecurityLog(ctx,
		&secondary.SystemLogRecord{UserID: "USR-1", Level: "warn", Message: "locked out"},
		&secondary.SecurityLogRecord{Action: "login", Outcome: "failure", ThreatLevel: "high"})
	if err != nil {
		t.Fatalf("AppendSecurityLog failed: %v", err)
	}

	// A rejected subtype row leaves no supertype behind.
	_, err = repo.AppendSecurityLog(ctx,
		&secondary.SystemLogRecord{Message: "bad"},
		&secondary.SecurityLogRecord{Action: "login", Outcome: "maybe"})
	if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintCheck); !ok {
		t.Fatalf("expected check violation, got %v", err)
	}

	entries, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListRecent = %d entries, want 2", len(entries))
	}
	if entries[0].ID != secID || entries[0].Security == nil || entries[0].Security.ThreatLevel != "high" {
		t.Errorf("newest entry = %+v", entries[0])
	}
	if entries[1].Security != nil {
		t.Errorf("plain system log has security details: %+v", entries[1].Security)
	}

	// Deleting the user keeps the log and clears its author.
	exec(t, database, "DELETE FROM users WHERE id = 'USR-1'")
	entries, _ = repo.ListRecent(ctx, 10)
	if entries[0].UserID != "" {
		t.Errorf("UserID = %q after user delete", entries[0].UserID)
	}
}

func TestChatRepository(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	repo := sqlite.NewChatRepository(database)
	ctx := context.Background()

	conv := &secondary.ConversationRecord{ID: "AIC-1", UserID: w.CustomerID, VehicleID: w.VehicleID, Title: "Squeaky brakes"}
	if err := repo.StartConversation(ctx, conv); err != nil {
		t.Fatalf("StartConversation failed: %v", err)
	}
	for _, m := range []*secondary.ChatMessageRecord{
		{ConversationID: "AIC-1", Role: "user", Content: "My brakes squeak"},
		{ConversationID: "AIC-1", Role: "assistant", Content: "Book a brake check", SuggestedServiceID: w.ServiceID},
	} {
		if _, err := repo.AppendMessage(ctx, m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}
	_, err := repo.AppendMessage(ctx, &secondary.ChatMessageRecord{ConversationID: "AIC-1", Role: "robot", Content: "x"})
	if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintCheck); !ok {
		t.Errorf("unknown role = %v", err)
	}

	msgs, err := repo.ListMessages(ctx, "AIC-1")
	if err != nil || len(msgs) != 2 || msgs[1].SuggestedServiceID != w.ServiceID {
		t.Fatalf("ListMessages = %+v, %v", msgs, err)
	}
	if err := repo.CloseConversation(ctx, "AIC-1"); err != nil {
		t.Fatalf("CloseConversation failed: %v", err)
	}
	got, _ := repo.GetConversation(ctx, "AIC-1")
	if got.Status != "closed" {
		t.Errorf("Status = %q", got.Status)
	}
}

func TestWebhookInboxRepository_Idempotent(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWebhookInboxRepository(database)
	ctx := context.Background()

	entry := &secondary.WebhookRecord{OrderCode: 1001, Payload: `{"orderCode":1001}`, PayloadHash: "abc123"}
	id, created, err := repo.Receive(ctx, entry)
	if err != nil || !created {
		t.Fatalf("first Receive = %d, %v, %v", id, created, err)
	}
	again, created, err := repo.Receive(ctx, entry)
	if err != nil {
		t.Fatalf("second Receive failed: %v", err)
	}
	if created || again != id {
		t.Errorf("redelivery created=%v id=%d, want existing id %d", created, again, id)
	}
	if count(t, database, "webhook_inbox", "") != 1 {
		t.Error("redelivery stored a second row")
	}

	if attempts, err := repo.RecordFailure(ctx, id, "payment not found"); err != nil || attempts != 1 {
		t.Fatalf("RecordFailure = %d, %v", attempts, err)
	}
	if attempts, err := repo.RecordFailure(ctx, id, "payment not found"); err != nil || attempts != 2 {
		t.Fatalf("second RecordFailure = %d, %v", attempts, err)
	}
	if _, err := repo.RecordFailure(ctx, id+1, "gone"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("RecordFailure on a missing entry = %v", err)
	}
	pending, _ := repo.ListPending(ctx, 10)
	if len(pending) != 1 || pending[0].Status != "failed" || pending[0].LastError != "payment not found" {
		t.Errorf("pending = %+v", pending)
	}

	if err := repo.MarkProcessed(ctx, id, time.Now()); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, id)
	if got.Status != "processed" || got.ProcessedAt == nil || got.Attempts != 2 || got.Provider != "payos" {
		t.Errorf("entry = %+v", got)
	}
	pending, _ = repo.ListPending(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("processed entry still pending")
	}
	byCode, _ := repo.ListByOrderCode(ctx, 1001)
	if len(byCode) != 1 {
		t.Errorf("ListByOrderCode = %d", len(byCode))
	}
}
