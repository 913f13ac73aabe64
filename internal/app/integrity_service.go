package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/integrity"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// IntegrityServiceImpl implements the IntegrityService interface.
type IntegrityServiceImpl struct {
	integrityRepo secondary.IntegrityRepository
	auditRepo     secondary.AuditRepository
	logger        *zap.Logger
}

// NewIntegrityService creates a new IntegrityService with injected dependencies.
// auditRepo may be nil, in which case deletes are not audited.
func NewIntegrityService(integrityRepo secondary.IntegrityRepository, auditRepo secondary.AuditRepository, logger *zap.Logger) *IntegrityServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrityServiceImpl{
		integrityRepo: integrityRepo,
		auditRepo:     auditRepo,
		logger:        logger,
	}
}

// DeleteImpact reports what deleting a row would cascade, clear or be blocked by.
func (s *IntegrityServiceImpl) DeleteImpact(ctx context.Context, table, id string) (*primary.DeleteImpact, error) {
	plan, err := s.plan(ctx, table, id)
	if err != nil {
		return nil, err
	}
	return planToImpact(plan), nil
}

// Delete removes a row after checking no RESTRICT relation blocks it. The
// store performs the cascades and clears in the same statement.
func (s *IntegrityServiceImpl) Delete(ctx context.Context, table, id string) (*primary.DeleteImpact, error) {
	plan, err := s.plan(ctx, table, id)
	if err != nil {
		return nil, err
	}
	impact := planToImpact(plan)

	// Guard: restrict relations with live dependents
	if result := integrity.CanDelete(plan); !result.Allowed {
		b := plan.Blockers[0]
		return impact, &secondary.ConstraintViolation{
			Kind:       secondary.ConstraintForeignKey,
			Constraint: b.Relation.Name,
			Table:      table,
			Detail:     result.Reason,
		}
	}

	if err := s.integrityRepo.DeleteRow(ctx, plan.Root); err != nil {
		return impact, fmt.Errorf("failed to delete %s: %w", plan.Root, err)
	}

	s.logger.Info("row deleted",
		zap.String("row", plan.Root.String()),
		zap.Int("cascaded", len(plan.Deleted)),
		zap.Int("nulled", len(plan.Nulled)),
	)
	s.audit(ctx, fmt.Sprintf("deleted %s (%d cascaded, %d cleared)", plan.Root, len(plan.Deleted), len(plan.Nulled)))
	return impact, nil
}

// Verify compares the registry with the live schema in both directions.
func (s *IntegrityServiceImpl) Verify(ctx context.Context) (*primary.SchemaReport, error) {
	fks, err := s.integrityRepo.ForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys: %w", err)
	}
	indexes, err := s.integrityRepo.UniqueIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read unique indexes: %w", err)
	}

	relations := integrity.Relations()
	uniques := integrity.UniqueConstraints()
	report := &primary.SchemaReport{Relations: len(relations), UniqueIndexes: len(uniques)}
	report.Problems = append(report.Problems, compareRelations(relations, fks)...)
	report.Problems = append(report.Problems, compareUniques(uniques, indexes)...)

	if !report.OK() {
		s.logger.Warn("schema drift detected", zap.Int("problems", len(report.Problems)))
	}
	return report, nil
}

func (s *IntegrityServiceImpl) plan(ctx context.Context, table, id string) (integrity.DeletePlan, error) {
	if !knownTable(table) {
		return integrity.DeletePlan{}, fmt.Errorf("unknown table %q", table)
	}
	root, err := s.integrityRepo.Resolve(ctx, table, id)
	if err != nil {
		return integrity.DeletePlan{}, err
	}
	plan, err := integrity.BuildDeletePlan(integrity.DeletePlanInput{
		Root: root,
		Dependents: func(rel integrity.Relation, parent integrity.RowRef) ([]integrity.RowRef, error) {
			return s.integrityRepo.Dependents(ctx, rel, parent)
		},
	})
	if err != nil {
		return integrity.DeletePlan{}, fmt.Errorf("failed to plan delete of %s: %w", root, err)
	}
	return plan, nil
}

func (s *IntegrityServiceImpl) audit(ctx context.Context, message string) {
	if s.auditRepo == nil {
		return
	}
	entry := &secondary.SystemLogRecord{Level: "info", Source: "integrity", Message: message}
	if _, err := s.auditRepo.AppendSystemLog(ctx, entry); err != nil {
		s.logger.Warn("failed to audit delete", zap.Error(err))
	}
}

// Helper methods

func knownTable(table string) bool {
	for _, t := range integrity.Tables() {
		if t == table {
			return true
		}
	}
	return false
}

func planToImpact(plan integrity.DeletePlan) *primary.DeleteImpact {
	impact := &primary.DeleteImpact{
		Root:    plan.Root.String(),
		Allowed: plan.Allowed(),
		Deleted: plan.DeletedCounts(),
		Nulled:  plan.NulledCounts(),
		Summary: plan.Describe(),
	}
	if result := integrity.CanDelete(plan); !result.Allowed {
		impact.Reason = result.Reason
	}
	for _, b := range plan.Blockers {
		impact.Blocking = append(impact.Blocking, primary.BlockingRelation{
			Relation: b.Relation.Name,
			Child:    b.Relation.Child,
			Parent:   b.Parent.String(),
			Count:    b.Count,
			Sample:   b.Sample,
		})
	}
	return impact
}

func relationKey(child string, columns []string, parent string, parentColumns []string) string {
	return child + "(" + strings.Join(columns, ",") + ")->" + parent + "(" + strings.Join(parentColumns, ",") + ")"
}

func compareRelations(relations []integrity.Relation, live []secondary.LiveForeignKey) []string {
	liveByKey := make(map[string]secondary.LiveForeignKey, len(live))
	for _, fk := range live {
		liveByKey[relationKey(fk.Child, fk.Columns, fk.Parent, fk.ParentColumns)] = fk
	}

	var problems []string
	seen := map[string]bool{}
	for _, rel := range relations {
		key := relationKey(rel.Child, rel.Columns, rel.Parent, rel.ParentColumns)
		seen[key] = true
		fk, ok := liveByKey[key]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: missing from schema", rel.Name))
			continue
		}
		if !strings.EqualFold(fk.OnDelete, string(rel.OnDelete)) {
			problems = append(problems, fmt.Sprintf("%s: ON DELETE %s in schema, %s in registry", rel.Name, fk.OnDelete, rel.OnDelete))
		}
	}
	for key := range liveByKey {
		if !seen[key] {
			problems = append(problems, fmt.Sprintf("foreign key %s: not registered", key))
		}
	}
	sort.Strings(problems)
	return problems
}

func compareUniques(uniques []integrity.UniqueConstraint, live []secondary.LiveUniqueIndex) []string {
	liveByName := make(map[string]secondary.LiveUniqueIndex, len(live))
	for _, idx := range live {
		liveByName[idx.Name] = idx
	}

	var problems []string
	for _, u := range uniques {
		idx, ok := liveByName[u.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: missing from schema", u.Name))
			continue
		}
		if idx.Table != u.Table || strings.Join(idx.Columns, ",") != strings.Join(u.Columns, ",") {
			problems = append(problems, fmt.Sprintf("%s: covers %s(%s) in schema, %s(%s) in registry",
				u.Name, idx.Table, strings.Join(idx.Columns, ","), u.Table, strings.Join(u.Columns, ",")))
		}
		if idx.Predicate != u.Predicate {
			problems = append(problems, fmt.Sprintf("%s: filter %q in schema, %q in registry", u.Name, idx.Predicate, u.Predicate))
		}
	}
	sort.Strings(problems)
	return problems
}

// Ensure IntegrityServiceImpl implements the interface.
var _ primary.IntegrityService = (*IntegrityServiceImpl)(nil)
