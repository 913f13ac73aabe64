package repairorder

import (
	"testing"
	"time"
)

func TestCanArchive(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StateContext
		wantAllowed bool
	}{
		{"completed active order", StateContext{"RO-1", LifecycleActive, OrderStatusCompleted}, true},
		{"in progress order", StateContext{"RO-1", LifecycleActive, OrderStatusInProgress}, false},
		{"already archived", StateContext{"RO-1", LifecycleArchived, OrderStatusCompleted}, false},
		{"cancelled order", StateContext{"RO-1", LifecycleCancelled, OrderStatusPending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanArchive(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("CanArchive() allowed = %v, want %v (reason %q)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StateContext
		wantAllowed bool
	}{
		{"pending order", StateContext{"RO-1", LifecycleActive, OrderStatusPending}, true},
		{"in progress order", StateContext{"RO-1", LifecycleActive, OrderStatusInProgress}, true},
		{"completed order", StateContext{"RO-1", LifecycleActive, OrderStatusCompleted}, false},
		{"archived order", StateContext{"RO-1", LifecycleArchived, OrderStatusCompleted}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCancel(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("CanCancel() allowed = %v, want %v (reason %q)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}

func TestCanChangeStatus(t *testing.T) {
	known := []int{OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted}
	active := StateContext{"RO-1", LifecycleActive, OrderStatusInProgress}

	tests := []struct {
		name        string
		ctx         StatusChangeContext
		wantAllowed bool
	}{
		{"start work", StatusChangeContext{StateContext: active, NewStatusID: OrderStatusInProgress, KnownStatuses: known}, true},
		{"complete with no open jobs", StatusChangeContext{StateContext: active, NewStatusID: OrderStatusCompleted, KnownStatuses: known}, true},
		{"complete with open jobs", StatusChangeContext{StateContext: active, NewStatusID: OrderStatusCompleted, OpenJobCount: 2, KnownStatuses: known}, false},
		{"unknown status", StatusChangeContext{StateContext: active, NewStatusID: 99, KnownStatuses: known}, false},
		{"archived order", StatusChangeContext{StateContext: StateContext{"RO-1", LifecycleArchived, OrderStatusCompleted}, NewStatusID: OrderStatusPending, KnownStatuses: known}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanChangeStatus(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("CanChangeStatus() allowed = %v, want %v (reason %q)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}

func TestLifecycleTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := Archive(now)
	if a.Lifecycle != LifecycleArchived || a.ArchivedAt == nil || a.CancelledAt != nil {
		t.Errorf("Archive() = %+v", a)
	}
	c := Cancel(now)
	if c.Lifecycle != LifecycleCancelled || c.CancelledAt == nil || c.ArchivedAt != nil {
		t.Errorf("Cancel() = %+v", c)
	}
}

func TestComputePaidStatus(t *testing.T) {
	tests := []struct {
		paid, cost int64
		want       PaidStatus
	}{
		{0, 1000, PaidStatusUnpaid},
		{400, 1000, PaidStatusPartial},
		{1000, 1000, PaidStatusPaid},
		{1200, 1000, PaidStatusPaid},
	}
	for _, tt := range tests {
		if got := ComputePaidStatus(tt.paid, tt.cost); got != tt.want {
			t.Errorf("ComputePaidStatus(%d, %d) = %s, want %s", tt.paid, tt.cost, got, tt.want)
		}
	}
}
