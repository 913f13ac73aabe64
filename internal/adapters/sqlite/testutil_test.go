// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/example/garage/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
// db.Open enables foreign keys, so referential actions run exactly as in production.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Use the authoritative schema rendered from the migration list
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// exec runs a seed statement and fails the test on error.
func exec(t *testing.T, database *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := database.Exec(query, args...); err != nil {
		t.Fatalf("seed failed: %v\n%s", err, query)
	}
}

// count returns the number of rows of table matching where.
func count(t *testing.T, database *sql.DB, table, where string, args ...any) int {
	t.Helper()
	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := database.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// seedBranch inserts a test branch and returns its ID.
func seedBranch(t *testing.T, database *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "BR-001"
	}
	if name == "" {
		name = "Central Garage"
	}
	exec(t, database, "INSERT INTO branches (id, name, city) VALUES (?, ?, 'Hanoi')", id, name)
	return id
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, database *sql.DB, id, branchID string) string {
	t.Helper()
	if id == "" {
		id = "USR-001"
	}
	exec(t, database,
		"INSERT INTO users (id, user_name, normalized_user_name, branch_id) VALUES (?, ?, UPPER(?), ?)",
		id, id, id, nullable(branchID))
	return id
}

// seedTechnician inserts a user with a technician profile and returns the technician ID.
func seedTechnician(t *testing.T, database *sql.DB, id, branchID string) string {
	t.Helper()
	if id == "" {
		id = "TECH-001"
	}
	userID := seedUser(t, database, "USR-"+id, branchID)
	exec(t, database, "INSERT INTO technicians (id, user_id, specialty) VALUES (?, ?, 'engine')", id, userID)
	return id
}

// seedVehicleCatalog inserts brand BRAND-001, model MODEL-001 and colour
// COLOR-001 with the model/colour link.
func seedVehicleCatalog(t *testing.T, database *sql.DB) {
	t.Helper()
	exec(t, database, "INSERT INTO vehicle_brands (id, name) VALUES ('BRAND-001', 'Toyota')")
	exec(t, database, "INSERT INTO vehicle_models (id, brand_id, name) VALUES ('MODEL-001', 'BRAND-001', 'Vios')")
	exec(t, database, "INSERT INTO vehicle_colors (id, name) VALUES ('COLOR-001', 'Silver')")
	exec(t, database, "INSERT INTO model_colors (model_id, color_id) VALUES ('MODEL-001', 'COLOR-001')")
}

// seedVehicle inserts a vehicle of the seeded catalog and returns its ID.
func seedVehicle(t *testing.T, database *sql.DB, id, ownerID, plate string) string {
	t.Helper()
	if id == "" {
		id = "VEH-001"
	}
	if plate == "" {
		plate = "30A-" + id
	}
	exec(t, database,
		`INSERT INTO vehicles (id, owner_id, brand_id, model_id, color_id, license_plate)
		 VALUES (?, ?, 'BRAND-001', 'MODEL-001', 'COLOR-001', ?)`,
		id, ownerID, plate)
	return id
}

// seedService inserts category SCAT-001 if missing plus a service, and returns the service ID.
func seedService(t *testing.T, database *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "SVC-001"
	}
	exec(t, database, "INSERT OR IGNORE INTO service_categories (id, name) VALUES ('SCAT-001', 'Maintenance')")
	exec(t, database,
		"INSERT INTO services (id, service_category_id, name, price_cents) VALUES (?, 'SCAT-001', ?, 500000)", id, "Service "+id)
	return id
}

// seedPart inserts part category PCAT-001 if missing plus a part, and returns the part ID.
func seedPart(t *testing.T, database *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "PART-001"
	}
	exec(t, database,
		"INSERT OR IGNORE INTO part_categories (id, model_id, category_name) VALUES ('PCAT-001', 'MODEL-001', 'Brakes')")
	exec(t, database,
		"INSERT INTO parts (id, part_category_id, name, price_cents) VALUES (?, 'PCAT-001', ?, 120000)", id, "Part "+id)
	return id
}

// seedRepairRequest inserts a repair request and returns its ID.
func seedRepairRequest(t *testing.T, database *sql.DB, id, vehicleID, customerID, branchID, date string, status int) string {
	t.Helper()
	exec(t, database,
		`INSERT INTO repair_requests (id, vehicle_id, customer_id, branch_id, request_date, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, vehicleID, customerID, branchID, date, status)
	return id
}

// seedRepairOrder inserts an active, pending repair order and returns its ID.
func seedRepairOrder(t *testing.T, database *sql.DB, id, branchID, vehicleID, customerID, requestID string) string {
	t.Helper()
	exec(t, database,
		`INSERT INTO repair_orders (id, branch_id, vehicle_id, customer_id, order_status_id, repair_request_id, receive_date)
		 VALUES (?, ?, ?, ?, 1, ?, CURRENT_TIMESTAMP)`,
		id, branchID, vehicleID, customerID, nullable(requestID))
	return id
}

// seedJob inserts a job. A non-empty originalID makes it a revision.
func seedJob(t *testing.T, database *sql.DB, id, orderID, serviceID, originalID string) string {
	t.Helper()
	revisions := 0
	if originalID != "" {
		revisions = 1
	}
	exec(t, database,
		`INSERT INTO jobs (id, repair_order_id, service_id, original_job_id, name, revision_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, orderID, serviceID, nullable(originalID), "Job "+id, revisions)
	return id
}

// seedInspection inserts an inspection of an order and returns its ID.
func seedInspection(t *testing.T, database *sql.DB, id, orderID string) string {
	t.Helper()
	exec(t, database, "INSERT INTO inspections (id, repair_order_id) VALUES (?, ?)", id, orderID)
	return id
}

// workshop is the common fixture: one branch with a customer, a vehicle,
// a service, a part, a technician and one repair order.
type workshop struct {
	BranchID     string
	CustomerID   string
	VehicleID    string
	ServiceID    string
	PartID       string
	TechnicianID string
	OrderID      string
}

// seedWorkshop inserts the common fixture.
func seedWorkshop(t *testing.T, database *sql.DB) workshop {
	t.Helper()
	w := workshop{}
	w.BranchID = seedBranch(t, database, "", "")
	w.CustomerID = seedUser(t, database, "CUST-001", "")
	seedVehicleCatalog(t, database)
	w.VehicleID = seedVehicle(t, database, "VEH-001", w.CustomerID, "")
	w.ServiceID = seedService(t, database, "")
	w.PartID = seedPart(t, database, "")
	w.TechnicianID = seedTechnician(t, database, "", w.BranchID)
	w.OrderID = seedRepairOrder(t, database, "RO-001", w.BranchID, w.VehicleID, w.CustomerID, "")
	return w
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// worldSQL populates at least one dependent row for every registered relation.
//
// Rows are inserted so the first dependent of each CASCADE or SET NULL
// relation points at a parent nothing RESTRICTs (BR-2, USR-3, MODEL-2, SVC-2,
// VEH-2, PART-2, TECH-2, RR-2, RO-1 and what it owns). RESTRICT relations
// point at the shared master rows.
var worldSQL = []string{
	// Branches and identity
	`INSERT INTO branches (id, name) VALUES ('BR-2', 'Satellite'), ('BR-1', 'Main')`,
	`INSERT INTO operating_hours (id, branch_id, day_of_week, open_time, close_time) VALUES ('OH-1', 'BR-2', 1, '08:00', '17:00'), ('OH-2', 'BR-1', 1, '07:00', '18:00')`,
	`INSERT INTO users (id, user_name, normalized_user_name, branch_id) VALUES ('USR-3', 'staff', 'STAFF', 'BR-2')`,
	`INSERT INTO users (id, user_name, normalized_user_name) VALUES ('USR-1', 'tech', 'TECH'), ('USR-2', 'customer', 'CUSTOMER'), ('USR-4', 'tech2', 'TECH2')`,
	`INSERT INTO roles (id, name, normalized_name) VALUES ('ROLE-1', 'Staff', 'STAFF')`,
	`INSERT INTO permissions (id, code, name) VALUES ('PERM-1', 'orders.read', 'Read orders')`,
	`INSERT INTO user_roles (user_id, role_id) VALUES ('USR-3', 'ROLE-1')`,
	`INSERT INTO user_claims (user_id, claim_type, claim_value) VALUES ('USR-3', 'scope', 'branch')`,
	`INSERT INTO role_claims (role_id, claim_type, claim_value) VALUES ('ROLE-1', 'scope', 'branch')`,
	`INSERT INTO role_permissions (role_id, permission_id, granted_by) VALUES ('ROLE-1', 'PERM-1', 'USR-3')`,
	`INSERT INTO security_policies (updated_by) VALUES ('USR-3')`,

	// Catalog
	`INSERT INTO vehicle_brands (id, name) VALUES ('BRAND-1', 'Toyota')`,
	`INSERT INTO vehicle_models (id, brand_id, name) VALUES ('MODEL-2', 'BRAND-1', 'Yaris'), ('MODEL-1', 'BRAND-1', 'Vios')`,
	`INSERT INTO vehicle_colors (id, name) VALUES ('COLOR-2', 'Red'), ('COLOR-1', 'Silver')`,
	`INSERT INTO model_colors (model_id, color_id) VALUES ('MODEL-2', 'COLOR-2'), ('MODEL-1', 'COLOR-1')`,
	`INSERT INTO service_categories (id, name) VALUES ('SCAT-1', 'Maintenance')`,
	`INSERT INTO service_categories (id, name, parent_service_category_id) VALUES ('SCAT-2', 'Oil', 'SCAT-1')`,
	`INSERT INTO services (id, service_category_id, branch_id, name) VALUES ('SVC-1', 'SCAT-2', 'BR-1', 'Oil change')`,
	`INSERT INTO services (id, service_category_id, name) VALUES ('SVC-2', 'SCAT-2', 'Filter check')`,
	`INSERT INTO branch_services (branch_id, service_id) VALUES ('BR-2', 'SVC-2'), ('BR-1', 'SVC-1')`,
	`INSERT INTO part_categories (id, model_id, category_name) VALUES ('PCAT-1', 'MODEL-1', 'Filters')`,
	`INSERT INTO parts (id, part_category_id, branch_id, name) VALUES ('PART-1', 'PCAT-1', 'BR-1', 'Oil filter')`,
	`INSERT INTO parts (id, part_category_id, name) VALUES ('PART-2', 'PCAT-1', 'Air filter')`,
	`INSERT INTO vehicles (id, owner_id, brand_id, model_id, color_id, license_plate) VALUES
		('VEH-1', 'USR-2', 'BRAND-1', 'MODEL-1', 'COLOR-1', '30A-00001'),
		('VEH-2', 'USR-2', 'BRAND-1', 'MODEL-1', 'COLOR-1', '30A-00002')`,

	// Inventory and technicians
	`INSERT INTO part_inventories (id, part_id, branch_id, stock) VALUES ('INV-2', 'PART-2', 'BR-1', 5), ('INV-1', 'PART-1', 'BR-1', 5)`,
	`INSERT INTO technicians (id, user_id) VALUES ('TECH-1', 'USR-1'), ('TECH-2', 'USR-4')`,

	// Intake
	`INSERT INTO labels (name) VALUES ('VIP')`,
	`INSERT INTO repair_requests (id, vehicle_id, customer_id, branch_id, request_date, status) VALUES
		('RR-2', 'VEH-1', 'USR-2', 'BR-1', '2026-01-09', 0),
		('RR-1', 'VEH-1', 'USR-2', 'BR-1', '2026-01-10', 3)`,
	`INSERT INTO request_services (id, repair_request_id, service_id) VALUES ('RS-1', 'RR-2', 'SVC-1')`,
	`INSERT INTO request_parts (id, repair_request_id, part_id) VALUES ('RP-1', 'RR-2', 'PART-1')`,
	`INSERT INTO request_emergencies (id, customer_id, branch_id, vehicle_id, technician_id, repair_request_id,
		issue_description, latitude, longitude, requested_at) VALUES
		('EM-1', 'USR-2', 'BR-1', 'VEH-1', 'TECH-2', 'RR-2', 'Flat tyre', 21.02, 105.84, '2026-01-09 08:00:00')`,

	// Work order
	`INSERT INTO repair_orders (id, branch_id, vehicle_id, customer_id, order_status_id, label_id, repair_request_id,
		receive_date, lifecycle, archived_at, archived_by) VALUES
		('RO-1', 'BR-1', 'VEH-1', 'USR-2', 1, 1, 'RR-1', '2026-01-10 09:00:00', 'archived', '2026-02-01 09:00:00', 'USR-3')`,
	`INSERT INTO repair_orders (id, branch_id, vehicle_id, customer_id, order_status_id, receive_date) VALUES
		('RO-2', 'BR-1', 'VEH-1', 'USR-2', 1, '2026-01-11 09:00:00')`,
	`INSERT INTO repair_order_services (id, repair_order_id, service_id) VALUES ('ROS-1', 'RO-1', 'SVC-1')`,
	`INSERT INTO repair_order_parts (id, repair_order_id, part_id) VALUES ('ROP-1', 'RO-1', 'PART-1')`,
	`INSERT INTO jobs (id, repair_order_id, service_id, name) VALUES ('JOB-1', 'RO-1', 'SVC-1', 'Change oil')`,
	`INSERT INTO jobs (id, repair_order_id, service_id, name) VALUES ('JOB-10', 'RO-2', 'SVC-1', 'Brake pads')`,
	`INSERT INTO jobs (id, repair_order_id, service_id, original_job_id, name, revision_count) VALUES
		('JOB-11', 'RO-2', 'SVC-1', 'JOB-10', 'Brake pads and discs', 1)`,
	`INSERT INTO job_parts (id, job_id, part_id) VALUES ('JP-1', 'JOB-1', 'PART-1')`,
	`INSERT INTO job_technicians (job_id, technician_id) VALUES ('JOB-1', 'TECH-1')`,
	`INSERT INTO repairs (id, job_id, technician_id) VALUES ('REP-1', 'JOB-1', 'TECH-1')`,
	`INSERT INTO inspections (id, repair_order_id, technician_id) VALUES ('INS-1', 'RO-1', 'TECH-1')`,
	`INSERT INTO part_inspections (id, inspection_id, part_id) VALUES ('PI-1', 'INS-1', 'PART-1')`,
	`INSERT INTO service_inspections (id, inspection_id, service_id) VALUES ('SI-1', 'INS-1', 'SVC-1')`,

	// Commercial
	`INSERT INTO promotions (id, code, name, discount_type, discount_percent, starts_at) VALUES
		('PROMO-1', 'TET2026', 'Tet', 'percentage', 10, '2026-01-01 00:00:00')`,
	`INSERT INTO quotations (id, inspection_id, repair_order_id, repair_request_id, customer_id, applied_promotion_id) VALUES
		('QUO-1', 'INS-1', 'RO-1', 'RR-2', 'USR-2', 'PROMO-1')`,
	`INSERT INTO quotation_services (id, quotation_id, service_id) VALUES ('QS-1', 'QUO-1', 'SVC-1')`,
	`INSERT INTO quotation_service_parts (id, quotation_service_id, part_id) VALUES ('QSP-1', 'QS-1', 'PART-1')`,
	`INSERT INTO payments (id, repair_order_id, user_id, amount_cents, method) VALUES ('PAY-1', 'RO-1', 'USR-2', 100000, 'cash')`,
	`INSERT INTO voucher_usages (promotion_id, customer_id, quotation_id) VALUES ('PROMO-1', 'USR-2', 'QUO-1')`,

	// Support
	`INSERT INTO notifications (id, user_id, title) VALUES ('NOTE-1', 'USR-3', 'Order archived')`,
	`INSERT INTO feedbacks (id, repair_order_id, user_id, rating) VALUES ('FB-1', 'RO-1', 'USR-2', 5)`,
	`INSERT INTO system_logs (user_id, message) VALUES ('USR-3', 'login')`,
	`INSERT INTO security_logs (id, action, outcome) VALUES (1, 'login', 'success')`,
	`INSERT INTO ai_conversations (id, user_id, vehicle_id, branch_id) VALUES ('AIC-1', 'USR-3', 'VEH-2', 'BR-2')`,
	`INSERT INTO ai_messages (conversation_id, role, content, suggested_service_id) VALUES ('AIC-1', 'assistant', 'Try a filter check', 'SVC-2')`,
}

// seedWorld inserts worldSQL.
func seedWorld(t *testing.T, database *sql.DB) {
	t.Helper()
	for _, stmt := range worldSQL {
		exec(t, database, stmt)
	}
}
