package emergency

import (
	"slices"
	"testing"
	"time"
)

var now = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

func deadline(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestResponseDeadline(t *testing.T) {
	if got := ResponseDeadline(now, 30*time.Minute); !got.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("ResponseDeadline() = %v", got)
	}
	if got := ResponseDeadline(now, 0); !got.Equal(now.Add(DefaultResponseSLA)) {
		t.Errorf("ResponseDeadline() with zero SLA = %v", got)
	}
}

func TestSelectExpired(t *testing.T) {
	items := []Snapshot{
		{ID: "E-1", Status: StatusPending, ResponseDeadline: deadline(-time.Minute)},
		{ID: "E-2", Status: StatusPending, ResponseDeadline: deadline(time.Minute)},
		{ID: "E-3", Status: StatusAccepted, ResponseDeadline: deadline(-time.Hour)},
		{ID: "E-4", Status: StatusPending, ResponseDeadline: deadline(0)},
		{ID: "E-5", Status: StatusPending},
	}
	got := SelectExpired(items, now)
	if !slices.Equal(got, []string{"E-1", "E-4"}) {
		t.Errorf("SelectExpired() = %v", got)
	}
}

func TestCanRespond(t *testing.T) {
	pending := Snapshot{ID: "E-1", Status: StatusPending, ResponseDeadline: deadline(10 * time.Minute)}

	tests := []struct {
		name        string
		ctx         RespondContext
		wantAllowed bool
	}{
		{"available technician", RespondContext{Emergency: pending, TechnicianID: "T-1", TechnicianAvailable: true, Now: now}, true},
		{"no technician", RespondContext{Emergency: pending, Now: now}, false},
		{"busy technician", RespondContext{Emergency: pending, TechnicianID: "T-1", Now: now}, false},
		{"past deadline", RespondContext{Emergency: pending, TechnicianID: "T-1", TechnicianAvailable: true, Now: now.Add(time.Hour)}, false},
		{"already accepted", RespondContext{Emergency: Snapshot{ID: "E-1", Status: StatusAccepted}, TechnicianID: "T-1", TechnicianAvailable: true, Now: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRespond(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("CanRespond() allowed = %v, want %v (reason %q)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}

func TestLifecycleGuards(t *testing.T) {
	tests := []struct {
		status                        Status
		start, complete, cancellation bool
	}{
		{StatusPending, false, false, true},
		{StatusAccepted, true, true, true},
		{StatusInProgress, false, true, true},
		{StatusCompleted, false, false, false},
		{StatusCanceled, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := Snapshot{ID: "E-1", Status: tt.status}
			if got := CanStart(e).Allowed; got != tt.start {
				t.Errorf("CanStart() = %v, want %v", got, tt.start)
			}
			if got := CanComplete(e).Allowed; got != tt.complete {
				t.Errorf("CanComplete() = %v, want %v", got, tt.complete)
			}
			if got := CanCancel(e).Allowed; got != tt.cancellation {
				t.Errorf("CanCancel() = %v, want %v", got, tt.cancellation)
			}
		})
	}
}

func TestCanLinkRequest(t *testing.T) {
	if r := CanLinkRequest(Snapshot{ID: "E-1", Status: StatusAccepted}, "RR-1"); !r.Allowed {
		t.Errorf("expected link allowed: %s", r.Reason)
	}
	if r := CanLinkRequest(Snapshot{ID: "E-1", Status: StatusAccepted, RepairRequestID: "RR-1"}, "RR-1"); !r.Allowed {
		t.Error("relinking the same request should be allowed")
	}
	if r := CanLinkRequest(Snapshot{ID: "E-1", Status: StatusAccepted, RepairRequestID: "RR-1"}, "RR-2"); r.Allowed {
		t.Error("expected second request to be rejected")
	}
	if r := CanLinkRequest(Snapshot{ID: "E-1", Status: StatusCanceled}, "RR-1"); r.Allowed {
		t.Error("expected canceled emergency to be rejected")
	}
}
