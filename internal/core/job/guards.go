// Package job contains the pure business logic for jobs and their revision chains.
// This is part of the Functional Core - no I/O, only pure functions.
package job

import "fmt"

// Status is the state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusOnHold, StatusCancelled},
	StatusInProgress: {StatusOnHold, StatusCompleted, StatusCancelled},
	StatusOnHold:     {StatusInProgress, StatusCancelled},
}

// IsOpen reports whether the job still needs work.
func (s Status) IsOpen() bool {
	return s != StatusCompleted && s != StatusCancelled
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

// CanTransition evaluates a job status change.
func CanTransition(jobID string, from, to Status) GuardResult {
	for _, next := range transitions[from] {
		if next == to {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("job %s cannot move from %s to %s", jobID, from, to),
	}
}

// ReviseContext provides context for creating a new version of a job.
type ReviseContext struct {
	JobID         string
	Status        Status
	RevisionCount int
	SupersededBy  string // id of an existing revision of this job, if any
	OrderActive   bool
}

// CanRevise evaluates whether a new version of the job may be created.
// Rules: only the latest version of a chain is revised, cancelled jobs are
// not revised, and the order must still be active.
func CanRevise(ctx ReviseContext) GuardResult {
	if !ctx.OrderActive {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("job %s belongs to an order that is no longer active", ctx.JobID)}
	}
	if ctx.SupersededBy != "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("job %s was already revised by %s; revise the latest version instead", ctx.JobID, ctx.SupersededBy),
		}
	}
	if ctx.Status == StatusCancelled {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("job %s is cancelled and cannot be revised", ctx.JobID)}
	}
	return GuardResult{Allowed: true}
}

// Revision describes the new version created by a revise.
type Revision struct {
	OriginalJobID string
	RevisionCount int
	Status        Status
}

// NextRevision returns the link fields of the version that follows ctx.
func NextRevision(ctx ReviseContext) Revision {
	return Revision{
		OriginalJobID: ctx.JobID,
		RevisionCount: ctx.RevisionCount + 1,
		Status:        StatusPending,
	}
}

// AssignContext provides context for assigning a technician.
type AssignContext struct {
	JobID               string
	Status              Status
	TechnicianID        string
	TechnicianAvailable bool
	AlreadyAssigned     bool
}

// CanAssignTechnician evaluates a technician assignment.
func CanAssignTechnician(ctx AssignContext) GuardResult {
	if !ctx.Status.IsOpen() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("job %s is %s", ctx.JobID, ctx.Status)}
	}
	if ctx.AlreadyAssigned {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("technician %s is already assigned to job %s", ctx.TechnicianID, ctx.JobID)}
	}
	if !ctx.TechnicianAvailable {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("technician %s is not available", ctx.TechnicianID)}
	}
	return GuardResult{Allowed: true}
}
