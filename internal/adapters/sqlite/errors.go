// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/example/garage/internal/core/integrity"
	"github.com/example/garage/internal/ports/secondary"
)

// translate converts a driver constraint error into a secondary.ConstraintViolation.
// Other errors are returned unchanged.
func translate(err error, table string) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}

	msg := se.Error()
	cv := &secondary.ConstraintViolation{Table: table, Detail: msg}

	switch se.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		cv.Kind = secondary.ConstraintForeignKey
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		cv.Kind = secondary.ConstraintUnique
		if t, cols := failedColumns(msg); t != "" {
			cv.Table = t
			if u, ok := integrity.UniqueByColumns(t, cols); ok {
				cv.Constraint = u.Name
			} else {
				cv.Constraint = "PK_" + t
			}
		}
	case sqlite3.ErrConstraintCheck:
		cv.Kind = secondary.ConstraintCheck
	case sqlite3.ErrConstraintNotNull:
		cv.Kind = secondary.ConstraintNotNull
		if t, _ := failedColumns(msg); t != "" {
			cv.Table = t
		}
	default:
		cv.Kind = secondary.ConstraintCheck
	}
	return cv
}

// failedColumns parses "UNIQUE constraint failed: t.a, t.b" into t and [a b].
func failedColumns(msg string) (string, []string) {
	_, list, ok := strings.Cut(msg, "failed: ")
	if !ok {
		return "", nil
	}
	var table string
	var cols []string
	for _, part := range strings.Split(list, ", ") {
		t, c, ok := strings.Cut(strings.TrimSpace(part), ".")
		if !ok {
			return "", nil
		}
		table = t
		cols = append(cols, c)
	}
	return table, cols
}

// notFound wraps secondary.ErrNotFound with the entity and key.
func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, secondary.ErrNotFound)
}

// requireAffected returns a not-found error when an UPDATE or DELETE touched no row.
func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

// deleteByID deletes one row keyed by id. When a RESTRICT relation blocks the
// delete, the violation names that relation.
func deleteByID(ctx context.Context, db *sql.DB, table, entity, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		err = translate(err, table)
		if cv, ok := secondary.AsConstraintViolation(err, secondary.ConstraintForeignKey); ok {
			if name := blockingRelation(ctx, db, table, id); name != "" {
				cv.Constraint = name
				cv.Detail = fmt.Sprintf("%s %s is still referenced through %s", entity, id, name)
			}
		}
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	return requireAffected(res, entity, id)
}

// blockingRelation returns the first relation that blocks deleting
// the row, following cascades the way the store does.
func blockingRelation(ctx context.Context, db *sql.DB, table, id string) string {
	root, err := resolveRow(ctx, db, table, id)
	if err != nil {
		return ""
	}
	plan, err := integrity.BuildDeletePlan(integrity.DeletePlanInput{
		Root: root,
		Dependents: func(rel integrity.Relation, parent integrity.RowRef) ([]integrity.RowRef, error) {
			return dependents(ctx, db, rel, parent)
		},
	})
	if err != nil || plan.Allowed() {
		return ""
	}
	return plan.Blockers[0].Relation.Name
}
