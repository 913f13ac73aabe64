package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// JobRepository implements secondary.JobRepository with SQLite.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new SQLite job repository.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, repair_order_id, service_id, original_job_id, name, note, status, total_amount_cents,
	revision_count, revision_reason, deadline, created_at`

// Create persists a new job or job revision.
func (r *JobRepository) Create(ctx context.Context, j *secondary.JobRecord) error {
	status := j.Status
	if status == "" {
		status = "pending"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, repair_order_id, service_id, original_job_id, name, note, status, total_amount_cents,
		 revision_count, revision_reason, deadline) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.RepairOrderID, j.ServiceID, nullString(j.OriginalJobID), j.Name, nullString(j.Note), status,
		j.TotalAmountCents, j.RevisionCount, nullString(j.RevisionReason), nullTime(j.Deadline),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", translate(err, "jobs"))
	}
	return nil
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*secondary.JobRecord, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("job", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListByOrder retrieves the jobs of an order.
func (r *JobRepository) ListByOrder(ctx context.Context, orderID string) ([]*secondary.JobRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE repair_order_id = ? ORDER BY created_at, rowid", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var out []*secondary.JobRecord
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status of a job.
func (r *JobRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?", status, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", translate(err, "jobs"))
	}
	return requireAffected(res, "job", id)
}

// GetRevisionOf returns the ID of the job that revises jobID, or "" if none.
func (r *JobRepository) GetRevisionOf(ctx context.Context, jobID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, "SELECT id FROM jobs WHERE original_job_id = ?", jobID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find revision: %w", err)
	}
	return id, nil
}

// OriginalLinks returns original_job_id for every revised job of an order.
func (r *JobRepository) OriginalLinks(ctx context.Context, orderID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, original_job_id FROM jobs WHERE repair_order_id = ? AND original_job_id IS NOT NULL", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision links: %w", err)
	}
	defer rows.Close()

	links := map[string]string{}
	for rows.Next() {
		var id, original string
		if err := rows.Scan(&id, &original); err != nil {
			return nil, fmt.Errorf("failed to scan revision link: %w", err)
		}
		links[id] = original
	}
	return links, rows.Err()
}

// AssignTechnician links a technician to a job.
func (r *JobRepository) AssignTechnician(ctx context.Context, jobID, technicianID string) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO job_technicians (job_id, technician_id) VALUES (?, ?)", jobID, technicianID)
	if err != nil {
		return fmt.Errorf("failed to assign technician: %w", translate(err, "job_technicians"))
	}
	return nil
}

// IsAssigned reports whether a technician is linked to a job.
func (r *JobRepository) IsAssigned(ctx context.Context, jobID, technicianID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM job_technicians WHERE job_id = ? AND technician_id = ?", jobID, technicianID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return n > 0, nil
}

// ListTechnicianIDs retrieves the technicians of a job.
func (r *JobRepository) ListTechnicianIDs(ctx context.Context, jobID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT technician_id FROM job_technicians WHERE job_id = ? ORDER BY assigned_at, technician_id", jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job technicians: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan job technician: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddPart adds a part line and adds its amount to the job total.
func (r *JobRepository) AddPart(ctx context.Context, p *secondary.JobPartRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO job_parts (id, job_id, part_id, quantity, unit_price_cents) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.JobID, p.PartID, p.Quantity, p.UnitPriceCents,
	)
	if err != nil {
		return fmt.Errorf("failed to add job part: %w", translate(err, "job_parts"))
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE jobs SET total_amount_cents = total_amount_cents + ?, updated_at = ? WHERE id = ?",
		p.UnitPriceCents*int64(p.Quantity), now(), p.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job total: %w", err)
	}
	if err := requireAffected(res, "job", p.JobID); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordRepair persists a repair record for a job.
func (r *JobRepository) RecordRepair(ctx context.Context, rep *secondary.RepairRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO repairs (id, job_id, technician_id, description, notes, started_at, completed_at, actual_minutes, estimated_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.JobID, nullString(rep.TechnicianID), nullString(rep.Description), nullString(rep.Notes),
		nullTime(rep.StartedAt), nullTime(rep.CompletedAt), nullInt64(int64(rep.ActualMinutes)), nullInt64(int64(rep.EstimatedMinutes)),
	)
	if err != nil {
		return fmt.Errorf("failed to record repair: %w", translate(err, "repairs"))
	}
	return nil
}

// Delete removes a job. A revision referencing it blocks the delete.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "jobs", "job", id)
}

func scanJob(s rowScanner) (*secondary.JobRecord, error) {
	var (
		j                      secondary.JobRecord
		original, note, reason sql.NullString
		deadline, createdAt    sql.NullTime
	)
	err := s.Scan(&j.ID, &j.RepairOrderID, &j.ServiceID, &original, &j.Name, &note, &j.Status,
		&j.TotalAmountCents, &j.RevisionCount, &reason, &deadline, &createdAt)
	if err != nil {
		return nil, err
	}
	j.OriginalJobID = original.String
	j.Note = note.String
	j.RevisionReason = reason.String
	j.Deadline = timePtr(deadline)
	j.CreatedAt = createdAt.Time
	return &j, nil
}

var _ secondary.JobRepository = (*JobRepository)(nil)

// InspectionRepository implements secondary.InspectionRepository with SQLite.
type InspectionRepository struct {
	db *sql.DB
}

// NewInspectionRepository creates a new SQLite inspection repository.
func NewInspectionRepository(db *sql.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

const inspectionColumns = "id, repair_order_id, technician_id, status, customer_concern, finding, note, started_at, completed_at"

// Create persists a new inspection.
func (r *InspectionRepository) Create(ctx context.Context, in *secondary.InspectionRecord) error {
	status := in.Status
	if status == "" {
		status = "new"
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO inspections (id, repair_order_id, technician_id, status, customer_concern, note) VALUES (?, ?, ?, ?, ?, ?)",
		in.ID, in.RepairOrderID, nullString(in.TechnicianID), status, nullString(in.CustomerConcern), nullString(in.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to create inspection: %w", translate(err, "inspections"))
	}
	return nil
}

// GetByID retrieves an inspection by ID.
func (r *InspectionRepository) GetByID(ctx context.Context, id string) (*secondary.InspectionRecord, error) {
	in, err := scanInspection(r.db.QueryRowContext(ctx, "SELECT "+inspectionColumns+" FROM inspections WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("inspection", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inspection: %w", err)
	}
	return in, nil
}

// ListByOrder retrieves the inspections of an order.
func (r *InspectionRepository) ListByOrder(ctx context.Context, orderID string) ([]*secondary.InspectionRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+inspectionColumns+" FROM inspections WHERE repair_order_id = ? ORDER BY created_at, rowid", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var out []*secondary.InspectionRecord
	for rows.Next() {
		in, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// AssignTechnician sets the inspecting technician and starts the inspection.
func (r *InspectionRepository) AssignTechnician(ctx context.Context, id, technicianID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inspections SET technician_id = ?, status = 'in_progress', started_at = COALESCE(started_at, ?), updated_at = ?
		 WHERE id = ? AND status <> 'completed'`,
		technicianID, at.UTC(), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to assign inspector: %w", translate(err, "inspections"))
	}
	return requireAffected(res, "open inspection", id)
}

// AddPartFinding records the condition of a part.
func (r *InspectionRepository) AddPartFinding(ctx context.Context, f *secondary.PartInspectionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO part_inspections (id, inspection_id, part_id, condition, description) VALUES (?, ?, ?, ?, ?)",
		f.ID, f.InspectionID, f.PartID, f.Condition, nullString(f.Description),
	)
	if err != nil {
		return fmt.Errorf("failed to add part finding: %w", translate(err, "part_inspections"))
	}
	return nil
}

// AddServiceFinding records a recommended service.
func (r *InspectionRepository) AddServiceFinding(ctx context.Context, f *secondary.ServiceInspectionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO service_inspections (id, inspection_id, service_id, note) VALUES (?, ?, ?, ?)",
		f.ID, f.InspectionID, f.ServiceID, nullString(f.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to add service finding: %w", translate(err, "service_inspections"))
	}
	return nil
}

// Complete stores the finding and completes the inspection.
func (r *InspectionRepository) Complete(ctx context.Context, id, finding string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inspections SET status = 'completed', finding = ?, completed_at = ?, updated_at = ?
		 WHERE id = ? AND status <> 'completed'`,
		nullString(finding), at.UTC(), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete inspection: %w", err)
	}
	return requireAffected(res, "open inspection", id)
}

func scanInspection(s rowScanner) (*secondary.InspectionRecord, error) {
	var (
		in                           secondary.InspectionRecord
		tech, concern, finding, note sql.NullString
		startedAt, completedAt       sql.NullTime
	)
	err := s.Scan(&in.ID, &in.RepairOrderID, &tech, &in.Status, &concern, &finding, &note, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	in.TechnicianID = tech.String
	in.CustomerConcern = concern.String
	in.Finding = finding.String
	in.Note = note.String
	in.StartedAt = timePtr(startedAt)
	in.CompletedAt = timePtr(completedAt)
	return &in, nil
}

var _ secondary.InspectionRepository = (*InspectionRepository)(nil)
