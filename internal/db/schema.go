package db

import (
	"github.com/example/garage/internal/core/migration"
)

// Schema Drift Protection
//
// The migration list in migrations.go is the SINGLE SOURCE OF TRUTH for the
// database schema. There is no separately maintained CREATE script: fresh
// installs replay every migration, and tests build their databases from
// GetSchemaSQL(), which renders the same operations. A column that repository
// code references but no migration creates fails the tests with
// "no such column" immediately.
//
// When changing the schema:
//  1. Append a new migration to the list (never edit an applied one)
//  2. Add the relation or unique constraint to internal/core/integrity
//  3. Run `make test` - TestRegistryMatchesSchema catches drift

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return migration.Render(Migrations())
}

func createTable(name, ddl string) migration.Op {
	return migration.CreateTable{Name: name, DDL: ddl}
}

func createIndex(name, ddl string) migration.Op {
	return migration.CreateIndex{Name: name, DDL: ddl}
}

// branchAndIdentityOps creates branches and the identity/access tables.
func branchAndIdentityOps() []migration.Op {
	return []migration.Op{
		createTable("branches", `
CREATE TABLE branches (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone_number TEXT,
	email TEXT,
	street TEXT,
	district TEXT,
	city TEXT,
	description TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME
)`),
		createIndex("IX_Branches_Name", `CREATE UNIQUE INDEX IX_Branches_Name ON branches(name)`),

		createTable("operating_hours", `
CREATE TABLE operating_hours (
	id TEXT PRIMARY KEY,
	branch_id TEXT NOT NULL,
	day_of_week INTEGER NOT NULL CHECK(day_of_week BETWEEN 0 AND 6),
	is_open INTEGER NOT NULL DEFAULT 1,
	open_time TEXT,
	close_time TEXT,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE CASCADE
)`),
		createIndex("IX_OperatingHours_BranchId_DayOfWeek", `CREATE UNIQUE INDEX IX_OperatingHours_BranchId_DayOfWeek ON operating_hours(branch_id, day_of_week)`),

		createTable("roles", `
CREATE TABLE roles (
	id TEXT PRIMARY KEY,
	name TEXT,
	normalized_name TEXT,
	description TEXT,
	concurrency_stamp TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`),
		createIndex("RoleNameIndex", `CREATE UNIQUE INDEX RoleNameIndex ON roles(normalized_name) WHERE normalized_name IS NOT NULL`),

		createTable("users", `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	user_name TEXT,
	normalized_user_name TEXT,
	email TEXT,
	normalized_email TEXT,
	phone_number TEXT,
	password_hash TEXT,
	security_stamp TEXT,
	first_name TEXT,
	last_name TEXT,
	branch_id TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	access_failed_count INTEGER NOT NULL DEFAULT 0,
	lockout_end DATETIME,
	last_login_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE SET NULL
)`),
		createIndex("UserNameIndex", `CREATE UNIQUE INDEX UserNameIndex ON users(normalized_user_name) WHERE normalized_user_name IS NOT NULL`),
		createIndex("EmailIndex", `CREATE INDEX EmailIndex ON users(normalized_email)`),
		createIndex("IX_Users_BranchId", `CREATE INDEX IX_Users_BranchId ON users(branch_id)`),

		createTable("user_roles", `
CREATE TABLE user_roles (
	user_id TEXT NOT NULL,
	role_id TEXT NOT NULL,
	PRIMARY KEY (user_id, role_id),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
)`),
		createIndex("IX_UserRoles_RoleId", `CREATE INDEX IX_UserRoles_RoleId ON user_roles(role_id)`),

		createTable("user_claims", `
CREATE TABLE user_claims (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	claim_type TEXT,
	claim_value TEXT,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`),
		createIndex("IX_UserClaims_UserId", `CREATE INDEX IX_UserClaims_UserId ON user_claims(user_id)`),

		createTable("role_claims", `
CREATE TABLE role_claims (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role_id TEXT NOT NULL,
	claim_type TEXT,
	claim_value TEXT,
	FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
)`),
		createIndex("IX_RoleClaims_RoleId", `CREATE INDEX IX_RoleClaims_RoleId ON role_claims(role_id)`),

		createTable("permissions", `
CREATE TABLE permissions (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	group_name TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`),
		createIndex("IX_Permissions_Code", `CREATE UNIQUE INDEX IX_Permissions_Code ON permissions(code)`),

		createTable("role_permissions", `
CREATE TABLE role_permissions (
	role_id TEXT NOT NULL,
	permission_id TEXT NOT NULL,
	granted_by TEXT,
	granted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (role_id, permission_id),
	FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE,
	FOREIGN KEY (permission_id) REFERENCES permissions(id) ON DELETE CASCADE,
	FOREIGN KEY (granted_by) REFERENCES users(id) ON DELETE SET NULL
)`),
		createIndex("IX_RolePermissions_PermissionId", `CREATE INDEX IX_RolePermissions_PermissionId ON role_permissions(permission_id)`),

		createTable("security_policies", `
CREATE TABLE security_policies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	max_login_attempts INTEGER NOT NULL DEFAULT 5,
	lockout_minutes INTEGER NOT NULL DEFAULT 15,
	password_min_length INTEGER NOT NULL DEFAULT 8,
	session_timeout_minutes INTEGER NOT NULL DEFAULT 60,
	mfa_required INTEGER NOT NULL DEFAULT 0,
	updated_by TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (updated_by) REFERENCES users(id) ON DELETE SET NULL
)`),
	}
}

// catalogOps creates the vehicle, service and part catalogs plus vehicles.
//
// vehicles references (model_id, brand_id) and (model_id, color_id) as
// composite keys so the Brand -> Model -> Color hierarchy is enforced by the
// store, not only by the service layer.
func catalogOps() []migration.Op {
	return []migration.Op{
		createTable("vehicle_brands", `
CREATE TABLE vehicle_brands (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	country TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`),
		createIndex("IX_VehicleBrands_Name", `CREATE UNIQUE INDEX IX_VehicleBrands_Name ON vehicle_brands(name)`),

		createTable("vehicle_models", `
CREATE TABLE vehicle_models (
	id TEXT PRIMARY KEY,
	brand_id TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (brand_id) REFERENCES vehicle_brands(id) ON DELETE RESTRICT
)`),
		createIndex("IX_VehicleModels_BrandId_Name", `CREATE UNIQUE INDEX IX_VehicleModels_BrandId_Name ON vehicle_models(brand_id, name)`),
		createIndex("IX_VehicleModels_Id_BrandId", `CREATE UNIQUE INDEX IX_VehicleModels_Id_BrandId ON vehicle_models(id, brand_id)`),

		createTable("vehicle_colors", `
CREATE TABLE vehicle_colors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	hex_code TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`),
		createIndex("IX_VehicleColors_Name", `CREATE UNIQUE INDEX IX_VehicleColors_Name ON vehicle_colors(name)`),

		createTable("model_colors", `
CREATE TABLE model_colors (
	model_id TEXT NOT NULL,
	color_id TEXT NOT NULL,
	PRIMARY KEY (model_id, color_id),
	FOREIGN KEY (model_id) REFERENCES vehicle_models(id) ON DELETE CASCADE,
	FOREIGN KEY (color_id) REFERENCES vehicle_colors(id) ON DELETE CASCADE
)`),
		createIndex("IX_ModelColors_ColorId", `CREATE INDEX IX_ModelColors_ColorId ON model_colors(color_id)`),

		createTable("service_categories", "CREATE TABLE service_categories ("+serviceCategoriesBodyV2+")"),
		createIndex("IX_ServiceCategories_ParentServiceCategoryId", serviceCategoryIndexes[0]),

		createTable("services", `
CREATE TABLE services (
	id TEXT PRIMARY KEY,
	service_category_id TEXT NOT NULL,
	branch_id TEXT,
	name TEXT NOT NULL,
	description TEXT,
	price_cents INTEGER NOT NULL DEFAULT 0 CHECK(price_cents >= 0),
	estimated_minutes INTEGER NOT NULL DEFAULT 0,
	is_advanced INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (service_category_id) REFERENCES service_categories(id) ON DELETE RESTRICT,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE RESTRICT
)`),
		createIndex("IX_Services_ServiceCategoryId", `CREATE INDEX IX_Services_ServiceCategoryId ON services(service_category_id)`),
		createIndex("IX_Services_BranchId", `CREATE INDEX IX_Services_BranchId ON services(branch_id)`),

		createTable("branch_services", `
CREATE TABLE branch_services (
	branch_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	is_available INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (branch_id, service_id),
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE CASCADE
)`),
		createIndex("IX_BranchServices_ServiceId", `CREATE INDEX IX_BranchServices_ServiceId ON branch_services(service_id)`),

		createTable("part_categories", `
CREATE TABLE part_categories (
	id TEXT PRIMARY KEY,
	model_id TEXT NOT NULL,
	category_name TEXT NOT NULL,
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (model_id) REFERENCES vehicle_models(id) ON DELETE RESTRICT
)`),
		createIndex("UX_PartCategory_ModelId_CategoryName", `CREATE UNIQUE INDEX UX_PartCategory_ModelId_CategoryName ON part_categories(model_id, category_name)`),

		createTable("parts", `
CREATE TABLE parts (
	id TEXT PRIMARY KEY,
	part_category_id TEXT NOT NULL,
	branch_id TEXT,
	name TEXT NOT NULL,
	part_number TEXT,
	price_cents INTEGER NOT NULL DEFAULT 0 CHECK(price_cents >= 0),
	warranty_months INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (part_category_id) REFERENCES part_categories(id) ON DELETE RESTRICT,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE RESTRICT
)`),
		createIndex("IX_Parts_PartCategoryId", `CREATE INDEX IX_Parts_PartCategoryId ON parts(part_category_id)`),
		createIndex("IX_Parts_BranchId", `CREATE INDEX IX_Parts_BranchId ON parts(branch_id)`),

		createTable("vehicles", `
CREATE TABLE vehicles (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	brand_id TEXT NOT NULL,
	model_id TEXT NOT NULL,
	color_id TEXT NOT NULL,
	license_plate TEXT NOT NULL,
	vin TEXT,
	year INTEGER,
	odometer INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE RESTRICT,
	FOREIGN KEY (brand_id) REFERENCES vehicle_brands(id) ON DELETE RESTRICT,
	FOREIGN KEY (model_id, brand_id) REFERENCES vehicle_models(id, brand_id) ON DELETE RESTRICT,
	FOREIGN KEY (model_id, color_id) REFERENCES model_colors(model_id, color_id) ON DELETE RESTRICT
)`),
		createIndex("IX_Vehicles_LicensePlate", `CREATE UNIQUE INDEX IX_Vehicles_LicensePlate ON vehicles(license_plate)`),
		createIndex("IX_Vehicles_OwnerId", `CREATE INDEX IX_Vehicles_OwnerId ON vehicles(owner_id)`),
		createIndex("IX_Vehicles_BrandId", `CREATE INDEX IX_Vehicles_BrandId ON vehicles(brand_id)`),
		createIndex("IX_Vehicles_ModelId_BrandId", `CREATE INDEX IX_Vehicles_ModelId_BrandId ON vehicles(model_id, brand_id)`),
		createIndex("IX_Vehicles_ModelId_ColorId", `CREATE INDEX IX_Vehicles_ModelId_ColorId ON vehicles(model_id, color_id)`),
	}
}

// inventoryAndTechnicianOps creates per-branch stock and technician profiles.
func inventoryAndTechnicianOps() []migration.Op {
	return []migration.Op{
		createTable("part_inventories", `
CREATE TABLE part_inventories (
	id TEXT PRIMARY KEY,
	part_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0 CHECK(stock >= 0),
	min_stock INTEGER NOT NULL DEFAULT 0 CHECK(min_stock >= 0),
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE CASCADE,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE RESTRICT
)`),
		createIndex("IX_PartInventories_PartId_BranchId", `CREATE UNIQUE INDEX IX_PartInventories_PartId_BranchId ON part_inventories(part_id, branch_id)`),
		createIndex("IX_PartInventories_BranchId", `CREATE INDEX IX_PartInventories_BranchId ON part_inventories(branch_id)`),

		createTable("technicians", `
CREATE TABLE technicians (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	specialty TEXT,
	experience_years INTEGER NOT NULL DEFAULT 0,
	is_available INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
)`),
		createIndex("IX_Technicians_UserId", `CREATE UNIQUE INDEX IX_Technicians_UserId ON technicians(user_id)`),
	}
}

// intakeOps creates customer intake: requests, their lines, emergencies.
func intakeOps() []migration.Op {
	return []migration.Op{
		createTable("order_statuses", `
CREATE TABLE order_statuses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT
)`),
		createIndex("IX_OrderStatuses_Name", `CREATE UNIQUE INDEX IX_OrderStatuses_Name ON order_statuses(name)`),

		createTable("labels", `
CREATE TABLE labels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	color_hex TEXT,
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`),

		createTable("repair_requests", `
CREATE TABLE repair_requests (
	id TEXT PRIMARY KEY,
	vehicle_id TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	description TEXT,
	request_date DATE NOT NULL,
	arrival_window_start DATETIME,
	status INTEGER NOT NULL DEFAULT 0 CHECK(status BETWEEN 0 AND 5),
	estimated_cost_cents INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT,
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE RESTRICT
)`),
		createIndex("IX_RepairRequests_VehicleId", `CREATE INDEX IX_RepairRequests_VehicleId ON repair_requests(vehicle_id)`),
		createIndex("IX_RepairRequests_CustomerId", `CREATE INDEX IX_RepairRequests_CustomerId ON repair_requests(customer_id)`),
		createIndex("IX_RepairRequests_BranchId", `CREATE INDEX IX_RepairRequests_BranchId ON repair_requests(branch_id)`),

		createTable("request_services", `
CREATE TABLE request_services (
	id TEXT PRIMARY KEY,
	repair_request_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	service_fee_cents INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (repair_request_id) REFERENCES repair_requests(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE RESTRICT
)`),
		createIndex("IX_RequestServices_RepairRequestId", `CREATE INDEX IX_RequestServices_RepairRequestId ON request_services(repair_request_id)`),
		createIndex("IX_RequestServices_ServiceId", `CREATE INDEX IX_RequestServices_ServiceId ON request_services(service_id)`),

		createTable("request_parts", `
CREATE TABLE request_parts (
	id TEXT PRIMARY KEY,
	repair_request_id TEXT NOT NULL,
	part_id TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity > 0),
	unit_price_cents INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (repair_request_id) REFERENCES repair_requests(id) ON DELETE CASCADE,
	FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE RESTRICT
)`),
		createIndex("IX_RequestParts_RepairRequestId", `CREATE INDEX IX_RequestParts_RepairRequestId ON request_parts(repair_request_id)`),
		createIndex("IX_RequestParts_PartId", `CREATE INDEX IX_RequestParts_PartId ON request_parts(part_id)`),

		createTable("request_emergencies", `
CREATE TABLE request_emergencies (
	id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	vehicle_id TEXT NOT NULL,
	technician_id TEXT,
	repair_request_id TEXT,
	issue_description TEXT NOT NULL,
	latitude REAL NOT NULL CHECK(latitude BETWEEN -90 AND 90),
	longitude REAL NOT NULL CHECK(longitude BETWEEN -180 AND 180),
	address TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'accepted', 'in_progress', 'completed', 'canceled')) DEFAULT 'pending',
	requested_at DATETIME NOT NULL,
	response_deadline DATETIME,
	responded_at DATETIME,
	auto_canceled_at DATETIME,
	cancel_reason TEXT,
	distance_km REAL,
	emergency_fee_cents INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE RESTRICT,
	FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT,
	FOREIGN KEY (technician_id) REFERENCES technicians(id) ON DELETE SET NULL,
	FOREIGN KEY (repair_request_id) REFERENCES repair_requests(id) ON DELETE SET NULL
)`),
		createIndex("IX_RequestEmergencies_RepairRequestId", `CREATE UNIQUE INDEX IX_RequestEmergencies_RepairRequestId ON request_emergencies(repair_request_id) WHERE repair_request_id IS NOT NULL`),
		createIndex("IX_RequestEmergencies_CustomerId", `CREATE INDEX IX_RequestEmergencies_CustomerId ON request_emergencies(customer_id)`),
		createIndex("IX_RequestEmergencies_BranchId", `CREATE INDEX IX_RequestEmergencies_BranchId ON request_emergencies(branch_id)`),
		createIndex("IX_RequestEmergencies_VehicleId", `CREATE INDEX IX_RequestEmergencies_VehicleId ON request_emergencies(vehicle_id)`),
		createIndex("IX_RequestEmergencies_TechnicianId", `CREATE INDEX IX_RequestEmergencies_TechnicianId ON request_emergencies(technician_id)`),
		createIndex("IX_RequestEmergencies_Status", `CREATE INDEX IX_RequestEmergencies_Status ON request_emergencies(status)`),
	}
}

// workOrderOps creates the repair-order aggregate and everything it owns.
func workOrderOps() []migration.Op {
	return []migration.Op{
		createTable("repair_orders", `
CREATE TABLE repair_orders (
	id TEXT PRIMARY KEY,
	branch_id TEXT NOT NULL,
	vehicle_id TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	order_status_id INTEGER NOT NULL,
	label_id INTEGER,
	repair_request_id TEXT,
	receive_date DATETIME NOT NULL,
	estimated_completion_date DATETIME,
	completion_date DATETIME,
	estimated_amount_cents INTEGER NOT NULL DEFAULT 0,
	cost_cents INTEGER NOT NULL DEFAULT 0,
	paid_amount_cents INTEGER NOT NULL DEFAULT 0,
	paid_status TEXT NOT NULL CHECK(paid_status IN ('unpaid', 'partial', 'paid')) DEFAULT 'unpaid',
	odometer INTEGER,
	note TEXT,
	lifecycle TEXT NOT NULL CHECK(lifecycle IN ('active', 'archived', 'cancelled')) DEFAULT 'active',
	archived_at DATETIME,
	archived_by TEXT,
	cancelled_at DATETIME,
	cancel_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE RESTRICT,
	FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT,
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT,
	FOREIGN KEY (order_status_id) REFERENCES order_statuses(id) ON DELETE RESTRICT,
	FOREIGN KEY (label_id) REFERENCES labels(id) ON DELETE SET NULL,
	FOREIGN KEY (repair_request_id) REFERENCES repair_requests(id) ON DELETE RESTRICT,
	FOREIGN KEY (archived_by) REFERENCES users(id) ON DELETE SET NULL,
	CHECK ((lifecycle = 'archived') = (archived_at IS NOT NULL)),
	CHECK ((lifecycle = 'cancelled') = (cancelled_at IS NOT NULL))
)`),
		createIndex("IX_RepairOrders_RepairRequestId", `CREATE UNIQUE INDEX IX_RepairOrders_RepairRequestId ON repair_orders(repair_request_id) WHERE repair_request_id IS NOT NULL`),
		createIndex("IX_RepairOrders_BranchId", `CREATE INDEX IX_RepairOrders_BranchId ON repair_orders(branch_id)`),
		createIndex("IX_RepairOrders_VehicleId", `CREATE INDEX IX_RepairOrders_VehicleId ON repair_orders(vehicle_id)`),
		createIndex("IX_RepairOrders_CustomerId", `CREATE INDEX IX_RepairOrders_CustomerId ON repair_orders(customer_id)`),
		createIndex("IX_RepairOrders_OrderStatusId", `CREATE INDEX IX_RepairOrders_OrderStatusId ON repair_orders(order_status_id)`),
		createIndex("IX_RepairOrders_LabelId", `CREATE INDEX IX_RepairOrders_LabelId ON repair_orders(label_id)`),

		createTable("repair_order_services", `
CREATE TABLE repair_order_services (
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	price_cents INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE RESTRICT
)`),
		createIndex("IX_RepairOrderServices_RepairOrderId", `CREATE INDEX IX_RepairOrderServices_RepairOrderId ON repair_order_services(repair_order_id)`),
		createIndex("IX_RepairOrderServices_ServiceId", `CREATE INDEX IX_RepairOrderServices_ServiceId ON repair_order_services(service_id)`),

		createTable("repair_order_parts", `
CREATE TABLE repair_order_parts (
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	part_id TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity > 0),
	unit_price_cents INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE RESTRICT
)`),
		createIndex("IX_RepairOrderParts_RepairOrderId", `CREATE INDEX IX_RepairOrderParts_RepairOrderId ON repair_order_parts(repair_order_id)`),
		createIndex("IX_RepairOrderParts_PartId", `CREATE INDEX IX_RepairOrderParts_PartId ON repair_order_parts(part_id)`),

		createTable("jobs", "CREATE TABLE jobs ("+jobsBodyV5+")"),
		createIndex("IX_Jobs_RepairOrderId", jobIndexes[0]),
		createIndex("IX_Jobs_ServiceId", jobIndexes[1]),
		createIndex("UX_Jobs_OriginalJobId", jobIndexes[2]),

		createTable("job_parts", `
CREATE TABLE job_parts (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	part_id TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity > 0),
	unit_price_cents INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
	FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE RESTRICT
)`),
		createIndex("IX_JobParts_JobId", `CREATE INDEX IX_JobParts_JobId ON job_parts(job_id)`),
		createIndex("IX_JobParts_PartId", `CREATE INDEX IX_JobParts_PartId ON job_parts(part_id)`),

		createTable("job_technicians", `
CREATE TABLE job_technicians (
	job_id TEXT NOT NULL,
	technician_id TEXT NOT NULL,
	assigned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (job_id, technician_id),
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
	FOREIGN KEY (technician_id) REFERENCES technicians(id) ON DELETE RESTRICT
)`),
		createIndex("IX_JobTechnicians_TechnicianId", `CREATE INDEX IX_JobTechnicians_TechnicianId ON job_technicians(technician_id)`),

		createTable("repairs", `
CREATE TABLE repairs (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	technician_id TEXT,
	description TEXT,
	notes TEXT,
	started_at DATETIME,
	completed_at DATETIME,
	actual_minutes INTEGER,
	estimated_minutes INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
	FOREIGN KEY (technician_id) REFERENCES technicians(id) ON DELETE RESTRICT
)`),
		createIndex("IX_Repairs_JobId", `CREATE INDEX IX_Repairs_JobId ON repairs(job_id)`),
		createIndex("IX_Repairs_TechnicianId", `CREATE INDEX IX_Repairs_TechnicianId ON repairs(technician_id)`),

		createTable("inspections", `
CREATE TABLE inspections (
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	technician_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('new', 'in_progress', 'completed')) DEFAULT 'new',
	customer_concern TEXT,
	finding TEXT,
	note TEXT,
	started_at DATETIME,
	completed_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (technician_id) REFERENCES technicians(id) ON DELETE RESTRICT
)`),
		createIndex("IX_Inspections_RepairOrderId", `CREATE INDEX IX_Inspections_RepairOrderId ON inspections(repair_order_id)`),
		createIndex("IX_Inspections_TechnicianId", `CREATE INDEX IX_Inspections_TechnicianId ON inspections(technician_id)`),

		createTable("part_inspections", `
CREATE TABLE part_inspections (
	id TEXT PRIMARY KEY,
	inspection_id TEXT NOT NULL,
	part_id TEXT NOT NULL,
	condition TEXT NOT NULL CHECK(condition IN ('good', 'repair', 'replace')) DEFAULT 'good',
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (inspection_id) REFERENCES inspections(id) ON DELETE CASCADE,
	FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE RESTRICT
)`),
		createIndex("IX_PartInspections_InspectionId", `CREATE INDEX IX_PartInspections_InspectionId ON part_inspections(inspection_id)`),
		createIndex("IX_PartInspections_PartId", `CREATE INDEX IX_PartInspections_PartId ON part_inspections(part_id)`),

		createTable("service_inspections", `
CREATE TABLE service_inspections (
	id TEXT PRIMARY KEY,
	inspection_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	note TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (inspection_id) REFERENCES inspections(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE RESTRICT
)`),
		createIndex("IX_ServiceInspections_InspectionId", `CREATE INDEX IX_ServiceInspections_InspectionId ON service_inspections(inspection_id)`),
		createIndex("IX_ServiceInspections_ServiceId", `CREATE INDEX IX_ServiceInspections_ServiceId ON service_inspections(service_id)`),
	}
}

// commercialOps creates promotions, quotations and payments.
func commercialOps() []migration.Op {
	return []migration.Op{
		createTable("promotions", `
CREATE TABLE promotions (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	discount_type TEXT NOT NULL CHECK(discount_type IN ('percentage', 'fixed')),
	discount_percent INTEGER CHECK(discount_percent IS NULL OR discount_percent BETWEEN 1 AND 100),
	discount_amount_cents INTEGER CHECK(discount_amount_cents IS NULL OR discount_amount_cents > 0),
	max_discount_cents INTEGER,
	min_order_cents INTEGER NOT NULL DEFAULT 0,
	starts_at DATETIME NOT NULL,
	ends_at DATETIME,
	usage_limit INTEGER,
	used_count INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	CHECK ((discount_type = 'percentage' AND discount_percent IS NOT NULL) OR (discount_type = 'fixed' AND discount_amount_cents IS NOT NULL)),
	CHECK (usage_limit IS NULL OR used_count <= usage_limit)
)`),
		createIndex("IX_Promotions_Code", `CREATE UNIQUE INDEX IX_Promotions_Code ON promotions(code)`),

		createTable("quotations", `
CREATE TABLE quotations (
	id TEXT PRIMARY KEY,
	inspection_id TEXT,
	repair_order_id TEXT,
	repair_request_id TEXT,
	customer_id TEXT NOT NULL,
	applied_promotion_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'sent', 'approved', 'rejected', 'expired')) DEFAULT 'pending',
	subtotal_cents INTEGER NOT NULL DEFAULT 0,
	discount_cents INTEGER NOT NULL DEFAULT 0,
	total_cents INTEGER NOT NULL DEFAULT 0,
	note TEXT,
	customer_note TEXT,
	valid_until DATETIME,
	sent_to_customer_at DATETIME,
	customer_response_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (inspection_id) REFERENCES inspections(id) ON DELETE SET NULL,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (repair_request_id) REFERENCES repair_requests(id) ON DELETE SET NULL,
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT,
	FOREIGN KEY (applied_promotion_id) REFERENCES promotions(id) ON DELETE RESTRICT,
	CHECK (total_cents = subtotal_cents - discount_cents)
)`),
		createIndex("IX_Quotations_InspectionId", `CREATE INDEX IX_Quotations_InspectionId ON quotations(inspection_id)`),
		createIndex("IX_Quotations_RepairOrderId", `CREATE INDEX IX_Quotations_RepairOrderId ON quotations(repair_order_id)`),
		createIndex("IX_Quotations_RepairRequestId", `CREATE INDEX IX_Quotations_RepairRequestId ON quotations(repair_request_id)`),
		createIndex("IX_Quotations_CustomerId", `CREATE INDEX IX_Quotations_CustomerId ON quotations(customer_id)`),
		createIndex("IX_Quotations_AppliedPromotionId", `CREATE INDEX IX_Quotations_AppliedPromotionId ON quotations(applied_promotion_id)`),

		createTable("quotation_services", `
CREATE TABLE quotation_services (
	id TEXT PRIMARY KEY,
	quotation_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	price_cents INTEGER NOT NULL DEFAULT 0,
	is_selected INTEGER NOT NULL DEFAULT 0,
	is_required INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE RESTRICT
)`),
		createIndex("IX_QuotationServices_QuotationId", `CREATE INDEX IX_QuotationServices_QuotationId ON quotation_services(quotation_id)`),
		createIndex("IX_QuotationServices_ServiceId", `CREATE INDEX IX_QuotationServices_ServiceId ON quotation_services(service_id)`),

		createTable("quotation_service_parts", `
CREATE TABLE quotation_service_parts (
	id TEXT PRIMARY KEY,
	quotation_service_id TEXT NOT NULL,
	part_id TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity > 0),
	unit_price_cents INTEGER NOT NULL DEFAULT 0,
	is_selected INTEGER NOT NULL DEFAULT 0,
	recommended_by_technician INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (quotation_service_id) REFERENCES quotation_services(id) ON DELETE CASCADE,
	FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE RESTRICT
)`),
		createIndex("IX_QuotationServiceParts_QuotationServiceId", `CREATE INDEX IX_QuotationServiceParts_QuotationServiceId ON quotation_service_parts(quotation_service_id)`),
		createIndex("IX_QuotationServiceParts_PartId", `CREATE INDEX IX_QuotationServiceParts_PartId ON quotation_service_parts(part_id)`),

		createTable("payments", `
CREATE TABLE payments (
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	amount_cents INTEGER NOT NULL CHECK(amount_cents > 0),
	method TEXT NOT NULL CHECK(method IN ('cash', 'card', 'bank_transfer', 'payos')),
	status TEXT NOT NULL CHECK(status IN ('pending', 'paid', 'failed', 'cancelled', 'refunded')) DEFAULT 'pending',
	order_code INTEGER,
	provider_reference TEXT,
	paid_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
)`),
		createIndex("IX_Payments_RepairOrderId", `CREATE INDEX IX_Payments_RepairOrderId ON payments(repair_order_id)`),
		createIndex("IX_Payments_UserId", `CREATE INDEX IX_Payments_UserId ON payments(user_id)`),
		createIndex("IX_Payments_OrderCode", `CREATE UNIQUE INDEX IX_Payments_OrderCode ON payments(order_code) WHERE order_code IS NOT NULL`),

		createTable("voucher_usages", `
CREATE TABLE voucher_usages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	promotion_id TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	quotation_id TEXT,
	discount_cents INTEGER NOT NULL DEFAULT 0,
	used_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (promotion_id) REFERENCES promotions(id) ON DELETE RESTRICT,
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT,
	FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE SET NULL
)`),
		createIndex("IX_VoucherUsages_PromotionId_QuotationId", `CREATE UNIQUE INDEX IX_VoucherUsages_PromotionId_QuotationId ON voucher_usages(promotion_id, quotation_id) WHERE quotation_id IS NOT NULL`),
		createIndex("IX_VoucherUsages_CustomerId", `CREATE INDEX IX_VoucherUsages_CustomerId ON voucher_usages(customer_id)`),
	}
}

// feedbacksBodyV7 is the feedbacks definition as first shipped.
// Migration 11 rebuilds the table from it, so it must never change.
const feedbacksBodyV7 = `
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	comment TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
`

const feedbacksBodyV11 = `
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	rating INTEGER NOT NULL CHECK(rating BETWEEN 1 AND 5),
	comment TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
`

var feedbackIndexes = []string{
	`CREATE UNIQUE INDEX IX_FeedBacks_RepairOrderId ON feedbacks(repair_order_id)`,
	`CREATE INDEX IX_FeedBacks_UserId ON feedbacks(user_id)`,
}

// supportOps creates notifications, feedback, audit logs, AI chat and the
// payment webhook inbox.
func supportOps() []migration.Op {
	return []migration.Op{
		createTable("notifications", `
CREATE TABLE notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT,
	type TEXT,
	target_url TEXT,
	is_read INTEGER NOT NULL DEFAULT 0,
	read_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`),
		createIndex("IX_Notifications_UserId", `CREATE INDEX IX_Notifications_UserId ON notifications(user_id)`),

		createTable("feedbacks", "CREATE TABLE feedbacks ("+feedbacksBodyV7+")"),
		createIndex("IX_FeedBacks_RepairOrderId", feedbackIndexes[0]),
		createIndex("IX_FeedBacks_UserId", feedbackIndexes[1]),

		createTable("system_logs", `
CREATE TABLE system_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT,
	level TEXT NOT NULL CHECK(level IN ('debug', 'info', 'warn', 'error')) DEFAULT 'info',
	source TEXT,
	message TEXT NOT NULL,
	details TEXT,
	ip_address TEXT,
	user_agent TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
)`),
		createIndex("IX_SystemLogs_UserId", `CREATE INDEX IX_SystemLogs_UserId ON system_logs(user_id)`),
		createIndex("IX_SystemLogs_CreatedAt", `CREATE INDEX IX_SystemLogs_CreatedAt ON system_logs(created_at)`),

		createTable("security_logs", `
CREATE TABLE security_logs (
	id INTEGER PRIMARY KEY,
	action TEXT NOT NULL,
	resource TEXT,
	outcome TEXT NOT NULL CHECK(outcome IN ('success', 'failure')),
	threat_level TEXT CHECK(threat_level IS NULL OR threat_level IN ('low', 'medium', 'high')),
	FOREIGN KEY (id) REFERENCES system_logs(id) ON DELETE CASCADE
)`),

		createTable("ai_conversations", `
CREATE TABLE ai_conversations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	vehicle_id TEXT,
	branch_id TEXT,
	title TEXT,
	status TEXT NOT NULL CHECK(status IN ('active', 'closed')) DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL,
	FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE SET NULL
)`),
		createIndex("IX_AiConversations_UserId", `CREATE INDEX IX_AiConversations_UserId ON ai_conversations(user_id)`),
		createIndex("IX_AiConversations_VehicleId", `CREATE INDEX IX_AiConversations_VehicleId ON ai_conversations(vehicle_id)`),
		createIndex("IX_AiConversations_BranchId", `CREATE INDEX IX_AiConversations_BranchId ON ai_conversations(branch_id)`),

		createTable("ai_messages", `
CREATE TABLE ai_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('user', 'assistant', 'system')),
	content TEXT NOT NULL,
	suggested_service_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (conversation_id) REFERENCES ai_conversations(id) ON DELETE CASCADE,
	FOREIGN KEY (suggested_service_id) REFERENCES services(id) ON DELETE SET NULL
)`),
		createIndex("IX_AiMessages_ConversationId", `CREATE INDEX IX_AiMessages_ConversationId ON ai_messages(conversation_id)`),
		createIndex("IX_AiMessages_SuggestedServiceId", `CREATE INDEX IX_AiMessages_SuggestedServiceId ON ai_messages(suggested_service_id)`),

		createTable("webhook_inbox", `
CREATE TABLE webhook_inbox (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_code INTEGER NOT NULL,
	provider TEXT NOT NULL DEFAULT 'payos',
	payload TEXT NOT NULL,
	payload_hash TEXT NOT NULL,
	signature TEXT,
	status TEXT NOT NULL CHECK(status IN ('received', 'processed', 'failed')) DEFAULT 'received',
	attempts INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	received_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	processed_at DATETIME
)`),
		createIndex("IX_WebhookInbox_PayloadHash", `CREATE UNIQUE INDEX IX_WebhookInbox_PayloadHash ON webhook_inbox(payload_hash)`),
		createIndex("IX_WebhookInbox_OrderCode", `CREATE INDEX IX_WebhookInbox_OrderCode ON webhook_inbox(order_code)`),
		createIndex("IX_WebhookInbox_Status", `CREATE INDEX IX_WebhookInbox_Status ON webhook_inbox(status)`),
	}
}

// Hierarchy tables as first shipped. Migration 13 rebuilds both from these
// bodies, so they must never change.
const serviceCategoriesBodyV2 = `
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	parent_service_category_id TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (parent_service_category_id) REFERENCES service_categories(id) ON DELETE RESTRICT,
	CHECK (parent_service_category_id IS NULL OR parent_service_category_id <> id)
`

const jobsBodyV5 = `
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	original_job_id TEXT,
	name TEXT NOT NULL,
	note TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'on_hold', 'completed', 'cancelled')) DEFAULT 'pending',
	total_amount_cents INTEGER NOT NULL DEFAULT 0,
	revision_count INTEGER NOT NULL DEFAULT 0 CHECK(revision_count >= 0),
	revision_reason TEXT,
	deadline DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE RESTRICT,
	FOREIGN KEY (original_job_id) REFERENCES jobs(id) ON DELETE RESTRICT,
	CHECK (original_job_id IS NULL OR original_job_id <> id),
	CHECK ((original_job_id IS NULL) = (revision_count = 0))
`

// Migration 13 moves both self-references to NO ACTION, which SQLite checks
// at the end of the statement: deleting an order removes its whole revision
// chain, and deleting a job that a revision still points at fails.
const serviceCategoriesBodyV13 = `
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	parent_service_category_id TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (parent_service_category_id) REFERENCES service_categories(id) ON DELETE NO ACTION,
	CHECK (parent_service_category_id IS NULL OR parent_service_category_id <> id)
`

const jobsBodyV13 = `
	id TEXT PRIMARY KEY,
	repair_order_id TEXT NOT NULL,
	service_id TEXT NOT NULL,
	original_job_id TEXT,
	name TEXT NOT NULL,
	note TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'on_hold', 'completed', 'cancelled')) DEFAULT 'pending',
	total_amount_cents INTEGER NOT NULL DEFAULT 0,
	revision_count INTEGER NOT NULL DEFAULT 0 CHECK(revision_count >= 0),
	revision_reason TEXT,
	deadline DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE RESTRICT,
	FOREIGN KEY (original_job_id) REFERENCES jobs(id) ON DELETE NO ACTION,
	CHECK (original_job_id IS NULL OR original_job_id <> id),
	CHECK ((original_job_id IS NULL) = (revision_count = 0))
`

var serviceCategoryIndexes = []string{
	`CREATE INDEX IX_ServiceCategories_ParentServiceCategoryId ON service_categories(parent_service_category_id)`,
}

var jobIndexes = []string{
	`CREATE INDEX IX_Jobs_RepairOrderId ON jobs(repair_order_id)`,
	`CREATE INDEX IX_Jobs_ServiceId ON jobs(service_id)`,
	`CREATE UNIQUE INDEX UX_Jobs_OriginalJobId ON jobs(original_job_id) WHERE original_job_id IS NOT NULL`,
}
