// Package repairrequest contains the pure business logic for customer repair requests.
// This is part of the Functional Core - no I/O, only pure functions.
package repairrequest

import (
	"fmt"
	"strings"
)

// Status is the stored integer status of a repair request.
// 0..2 are active; at most one active request may exist per vehicle and
// request date. 3..5 are terminal.
type Status int

const (
	StatusPending    Status = 0
	StatusInProgress Status = 1
	StatusAccepted   Status = 2
	StatusCompleted  Status = 3
	StatusCancelled  Status = 4
	StatusRejected   Status = 5
)

var statusNames = map[Status]string{
	StatusPending:    "Pending",
	StatusInProgress: "InProgress",
	StatusAccepted:   "Accepted",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
	StatusRejected:   "Rejected",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsActive reports whether s counts toward the one-active-request rule.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusAccepted
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s.Valid() && !s.IsActive()
}

// ParseStatus accepts a status name (case-insensitive) or its number.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if strings.EqualFold(s, name) || s == fmt.Sprint(int(st)) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown repair request status %q", s)
}

// InitialStatus returns the status of a newly submitted request.
func InitialStatus() Status {
	return StatusPending
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusInProgress, StatusCancelled, StatusRejected},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
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

// TransitionContext provides context for a status change.
type TransitionContext struct {
	RequestID string
	From      Status
	To        Status
}

// CanTransition evaluates whether a request may move from one status to another.
// Rules: terminal requests never change; only listed transitions are allowed.
func CanTransition(ctx TransitionContext) GuardResult {
	if !ctx.To.Valid() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown status %d", int(ctx.To))}
	}
	if ctx.From.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair request %s is %s and can no longer change", ctx.RequestID, ctx.From),
		}
	}
	for _, next := range transitions[ctx.From] {
		if next == ctx.To {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("repair request %s cannot move from %s to %s", ctx.RequestID, ctx.From, ctx.To),
	}
}

// ConvertContext provides context for turning a request into a repair order.
type ConvertContext struct {
	RequestID       string
	Status          Status
	ExistingOrderID string // order already created from this request, if any
}

// CanConvertToOrder evaluates whether a repair order may be created from the request.
// Rules: the request must be active and not already converted.
func CanConvertToOrder(ctx ConvertContext) GuardResult {
	if ctx.ExistingOrderID != "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair request %s was already converted to order %s", ctx.RequestID, ctx.ExistingOrderID),
		}
	}
	if !ctx.Status.IsActive() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair request %s is %s; only active requests can become orders", ctx.RequestID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// StatusAfterConversion is the request status once an order exists for it.
func StatusAfterConversion() Status {
	return StatusInProgress
}
