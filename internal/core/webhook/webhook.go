// Package webhook contains the pure logic for the payment webhook inbox.
// This is part of the Functional Core - no I/O, only pure functions.
package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Status is the processing state of an inbox entry.
type Status string

const (
	StatusReceived  Status = "received"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// maxErrorLen bounds the stored failure message.
const maxErrorLen = 1000

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

// PayloadHash returns the hex SHA-256 of the raw payload.
// Identical deliveries share a hash, which the inbox keeps unique.
func PayloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// CanMarkProcessed evaluates whether an entry can be marked processed.
func CanMarkProcessed(id int64, status Status) GuardResult {
	if status == StatusProcessed {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("webhook %d is already processed", id)}
	}
	return GuardResult{Allowed: true}
}

// Failure is the state recorded after a failed processing attempt.
type Failure struct {
	Status    Status
	Attempts  int
	LastError string
}

// RecordFailure returns the state after one more failed attempt.
func RecordFailure(attempts int, cause string) Failure {
	if len(cause) > maxErrorLen {
		cause = cause[:maxErrorLen]
	}
	return Failure{Status: StatusFailed, Attempts: attempts + 1, LastError: cause}
}
