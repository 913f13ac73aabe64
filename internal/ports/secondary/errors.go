package secondary

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row addressed by key does not exist.
var ErrNotFound = errors.New("not found")

// ErrConcurrencyConflict is returned when a row changed since it was read.
var ErrConcurrencyConflict = errors.New("concurrency conflict: the row was modified by another writer")

// ConstraintKind classifies a rejected write.
type ConstraintKind string

const (
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
)

// ConstraintViolation is returned when the store rejects a write.
// Constraint holds the relation or index name when it can be determined.
type ConstraintViolation struct {
	Kind       ConstraintKind
	Constraint string
	Table      string
	Detail     string
}

func (e *ConstraintViolation) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s constraint %s violated: %s", e.Kind, e.Constraint, e.Detail)
	}
	return fmt.Sprintf("%s constraint violated: %s", e.Kind, e.Detail)
}

// AsConstraintViolation unwraps err to a ConstraintViolation of the given kind.
func AsConstraintViolation(err error, kind ConstraintKind) (*ConstraintViolation, bool) {
	var cv *ConstraintViolation
	if errors.As(err, &cv) && cv.Kind == kind {
		return cv, true
	}
	return nil, false
}
