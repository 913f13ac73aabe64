// Package emergency contains the pure business logic for roadside emergency requests.
// This is part of the Functional Core - no I/O, only pure functions.
package emergency

import (
	"fmt"
	"time"
)

// Status is the state of an emergency request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// DefaultResponseSLA is used when no SLA is configured.
const DefaultResponseSLA = 15 * time.Minute

// IsTerminal reports whether no further change is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ResponseDeadline returns when a pending request is auto-cancelled.
func ResponseDeadline(requestedAt time.Time, sla time.Duration) time.Time {
	if sla <= 0 {
		sla = DefaultResponseSLA
	}
	return requestedAt.Add(sla)
}

// Snapshot is the emergency state guards need.
type Snapshot struct {
	ID               string
	Status           Status
	ResponseDeadline *time.Time
	RepairRequestID  string
	TechnicianID     string
}

// IsExpired reports whether a pending request passed its deadline at now.
func IsExpired(e Snapshot, now time.Time) bool {
	return e.Status == StatusPending && e.ResponseDeadline != nil && !now.Before(*e.ResponseDeadline)
}

// SelectExpired returns the ids of requests the sweeper should cancel.
func SelectExpired(items []Snapshot, now time.Time) []string {
	var ids []string
	for _, e := range items {
		if IsExpired(e, now) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// RespondContext provides context for accepting an emergency.
type RespondContext struct {
	Emergency           Snapshot
	TechnicianID        string
	TechnicianAvailable bool
	Now                 time.Time
}

// CanRespond evaluates whether a technician can accept the emergency.
// Rules: the request is pending, not past its deadline, and the technician is available.
func CanRespond(ctx RespondContext) GuardResult {
	e := ctx.Emergency
	if e.Status != StatusPending {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("emergency %s is %s, not pending", e.ID, e.Status)}
	}
	if IsExpired(e, ctx.Now) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("emergency %s passed its response deadline", e.ID)}
	}
	if ctx.TechnicianID == "" {
		return GuardResult{Allowed: false, Reason: "a technician is required to respond"}
	}
	if !ctx.TechnicianAvailable {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("technician %s is not available", ctx.TechnicianID)}
	}
	return GuardResult{Allowed: true}
}

// CanStart evaluates whether an accepted emergency can move to in progress.
func CanStart(e Snapshot) GuardResult {
	if e.Status != StatusAccepted {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("emergency %s is %s, not accepted", e.ID, e.Status)}
	}
	return GuardResult{Allowed: true}
}

// CanComplete evaluates whether the emergency can be completed.
func CanComplete(e Snapshot) GuardResult {
	if e.Status != StatusAccepted && e.Status != StatusInProgress {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("emergency %s is %s and cannot be completed", e.ID, e.Status)}
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether the emergency can be cancelled.
func CanCancel(e Snapshot) GuardResult {
	if e.Status.IsTerminal() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("emergency %s is already %s", e.ID, e.Status)}
	}
	return GuardResult{Allowed: true}
}

// CanLinkRequest evaluates whether a repair request can be linked.
// Rule: a live emergency links to one repair request.
func CanLinkRequest(e Snapshot, requestID string) GuardResult {
	if e.Status == StatusCanceled {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("emergency %s is canceled", e.ID)}
	}
	if e.RepairRequestID != "" && e.RepairRequestID != requestID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("emergency %s is already linked to repair request %s", e.ID, e.RepairRequestID),
		}
	}
	return GuardResult{Allowed: true}
}
