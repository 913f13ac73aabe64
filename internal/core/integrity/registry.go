// Package integrity contains the pure model of the garage's referential rules.
// This is part of the Functional Core - no I/O, only pure functions.
//
// The registry mirrors the foreign keys and unique indexes created by the
// migrations in internal/db. A test compares it against a live schema, so an
// entry here that disagrees with the database fails the build.
package integrity

import (
	"slices"
	"strings"
)

// Policy is the action taken on dependent rows when a parent row is deleted.
// Values match the on_delete column of PRAGMA foreign_key_list.
type Policy string

const (
	Cascade  Policy = "CASCADE"
	Restrict Policy = "RESTRICT"
	SetNull  Policy = "SET NULL"
	// NoAction refuses the delete like Restrict, but only for dependents
	// that are still present when the statement ends.
	NoAction Policy = "NO ACTION"
)

// Shape classifies why a relation exists.
type Shape string

const (
	// Composition: the child is part of the parent and dies with it.
	Composition Shape = "composition"
	// Reference: the child points at catalog or master data that must outlive it.
	Reference Shape = "reference"
	// SoftLink: an optional pointer that is cleared when the target goes away.
	SoftLink Shape = "soft_link"
	// Hierarchy: a self-reference forming a tree or a revision chain.
	Hierarchy Shape = "hierarchy"
	// Subtype: the child shares the parent's primary key.
	Subtype Shape = "subtype"
)

// Relation is one foreign key between two tables.
type Relation struct {
	Name          string
	Child         string
	Columns       []string
	Parent        string
	ParentColumns []string
	OnDelete      Policy
	Shape         Shape
}

// Composite reports whether the key spans more than one column.
func (r Relation) Composite() bool {
	return len(r.Columns) > 1
}

// SelfReferencing reports whether child and parent are the same table.
func (r Relation) SelfReferencing() bool {
	return r.Child == r.Parent
}

func relation(child string, columns []string, parent string, parentColumns []string, policy Policy, shape Shape) Relation {
	return Relation{
		Name:          relationName(child, parent, columns),
		Child:         child,
		Columns:       columns,
		Parent:        parent,
		ParentColumns: parentColumns,
		OnDelete:      policy,
		Shape:         shape,
	}
}

// owned is a composition edge: ON DELETE CASCADE.
func owned(child, column, parent string) Relation {
	return relation(child, []string{column}, parent, []string{"id"}, Cascade, Composition)
}

// ref is a reference edge: ON DELETE RESTRICT.
func ref(child, column, parent string) Relation {
	return relation(child, []string{column}, parent, []string{"id"}, Restrict, Reference)
}

// link is a soft link: ON DELETE SET NULL.
func link(child, column, parent string) Relation {
	return relation(child, []string{column}, parent, []string{"id"}, SetNull, SoftLink)
}

// hierarchy is a self-reference: ON DELETE NO ACTION, so a cascade may take
// a whole chain.
func hierarchy(table, column string) Relation {
	return relation(table, []string{column}, table, []string{"id"}, NoAction, Hierarchy)
}

// relationName builds FK_<Child>_<Parent>_<Columns> in PascalCase,
// e.g. FK_Jobs_Jobs_OriginalJobId.
func relationName(child, parent string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = pascal(c)
	}
	return "FK_" + pascal(child) + "_" + pascal(parent) + "_" + strings.Join(cols, "_")
}

func pascal(snake string) string {
	parts := strings.Split(snake, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

var relations = []Relation{
	// Branch & identity
	owned("operating_hours", "branch_id", "branches"),
	link("users", "branch_id", "branches"),
	owned("user_roles", "user_id", "users"),
	owned("user_roles", "role_id", "roles"),
	owned("user_claims", "user_id", "users"),
	owned("role_claims", "role_id", "roles"),
	owned("role_permissions", "role_id", "roles"),
	owned("role_permissions", "permission_id", "permissions"),
	link("role_permissions", "granted_by", "users"),
	link("security_policies", "updated_by", "users"),

	// Catalog
	ref("vehicle_models", "brand_id", "vehicle_brands"),
	owned("model_colors", "model_id", "vehicle_models"),
	owned("model_colors", "color_id", "vehicle_colors"),
	hierarchy("service_categories", "parent_service_category_id"),
	ref("services", "service_category_id", "service_categories"),
	ref("services", "branch_id", "branches"),
	owned("branch_services", "branch_id", "branches"),
	owned("branch_services", "service_id", "services"),
	ref("part_categories", "model_id", "vehicle_models"),
	ref("parts", "part_category_id", "part_categories"),
	ref("parts", "branch_id", "branches"),
	ref("vehicles", "owner_id", "users"),
	ref("vehicles", "brand_id", "vehicle_brands"),
	relation("vehicles", []string{"model_id", "brand_id"}, "vehicle_models", []string{"id", "brand_id"}, Restrict, Reference),
	relation("vehicles", []string{"model_id", "color_id"}, "model_colors", []string{"model_id", "color_id"}, Restrict, Reference),

	// Inventory & technicians
	owned("part_inventories", "part_id", "parts"),
	ref("part_inventories", "branch_id", "branches"),
	ref("technicians", "user_id", "users"),

	// Intake
	ref("repair_requests", "vehicle_id", "vehicles"),
	ref("repair_requests", "customer_id", "users"),
	ref("repair_requests", "branch_id", "branches"),
	owned("request_services", "repair_request_id", "repair_requests"),
	ref("request_services", "service_id", "services"),
	owned("request_parts", "repair_request_id", "repair_requests"),
	ref("request_parts", "part_id", "parts"),
	ref("request_emergencies", "customer_id", "users"),
	ref("request_emergencies", "branch_id", "branches"),
	ref("request_emergencies", "vehicle_id", "vehicles"),
	link("request_emergencies", "technician_id", "technicians"),
	link("request_emergencies", "repair_request_id", "repair_requests"),

	// Work order
	ref("repair_orders", "branch_id", "branches"),
	ref("repair_orders", "vehicle_id", "vehicles"),
	ref("repair_orders", "customer_id", "users"),
	ref("repair_orders", "order_status_id", "order_statuses"),
	link("repair_orders", "label_id", "labels"),
	ref("repair_orders", "repair_request_id", "repair_requests"),
	link("repair_orders", "archived_by", "users"),
	owned("repair_order_services", "repair_order_id", "repair_orders"),
	ref("repair_order_services", "service_id", "services"),
	owned("repair_order_parts", "repair_order_id", "repair_orders"),
	ref("repair_order_parts", "part_id", "parts"),
	owned("jobs", "repair_order_id", "repair_orders"),
	ref("jobs", "service_id", "services"),
	hierarchy("jobs", "original_job_id"),
	owned("job_parts", "job_id", "jobs"),
	ref("job_parts", "part_id", "parts"),
	owned("job_technicians", "job_id", "jobs"),
	ref("job_technicians", "technician_id", "technicians"),
	owned("repairs", "job_id", "jobs"),
	ref("repairs", "technician_id", "technicians"),
	owned("inspections", "repair_order_id", "repair_orders"),
	ref("inspections", "technician_id", "technicians"),
	owned("part_inspections", "inspection_id", "inspections"),
	ref("part_inspections", "part_id", "parts"),
	owned("service_inspections", "inspection_id", "inspections"),
	ref("service_inspections", "service_id", "services"),

	// Commercial
	link("quotations", "inspection_id", "inspections"),
	owned("quotations", "repair_order_id", "repair_orders"),
	link("quotations", "repair_request_id", "repair_requests"),
	ref("quotations", "customer_id", "users"),
	ref("quotations", "applied_promotion_id", "promotions"),
	owned("quotation_services", "quotation_id", "quotations"),
	ref("quotation_services", "service_id", "services"),
	owned("quotation_service_parts", "quotation_service_id", "quotation_services"),
	ref("quotation_service_parts", "part_id", "parts"),
	owned("payments", "repair_order_id", "repair_orders"),
	ref("payments", "user_id", "users"),
	ref("voucher_usages", "promotion_id", "promotions"),
	ref("voucher_usages", "customer_id", "users"),
	link("voucher_usages", "quotation_id", "quotations"),

	// Support
	owned("notifications", "user_id", "users"),
	owned("feedbacks", "repair_order_id", "repair_orders"),
	ref("feedbacks", "user_id", "users"),
	link("system_logs", "user_id", "users"),
	relation("security_logs", []string{"id"}, "system_logs", []string{"id"}, Cascade, Subtype),
	owned("ai_conversations", "user_id", "users"),
	link("ai_conversations", "vehicle_id", "vehicles"),
	link("ai_conversations", "branch_id", "branches"),
	owned("ai_messages", "conversation_id", "ai_conversations"),
	link("ai_messages", "suggested_service_id", "services"),
}

// Relations returns every registered foreign key.
func Relations() []Relation {
	out := make([]Relation, len(relations))
	copy(out, relations)
	return out
}

// ReferencedBy returns the relations whose parent is table.
func ReferencedBy(table string) []Relation {
	var out []Relation
	for _, r := range relations {
		if r.Parent == table {
			out = append(out, r)
		}
	}
	return out
}

// IsParent reports whether any relation points at table.
func IsParent(table string) bool {
	for _, r := range relations {
		if r.Parent == table {
			return true
		}
	}
	return false
}

// RelationByName looks up a relation by its FK_ name.
func RelationByName(name string) (Relation, bool) {
	for _, r := range relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// FindRelation returns the relation from child.columns to parent.
func FindRelation(child string, columns []string, parent string) (Relation, bool) {
	for _, r := range relations {
		if r.Child == child && r.Parent == parent && slices.Equal(r.Columns, columns) {
			return r, true
		}
	}
	return Relation{}, false
}

// Tables returns every table that takes part in a relation, sorted.
func Tables() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range relations {
		for _, t := range []string{r.Child, r.Parent} {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}

// UniqueConstraint is a named unique index, optionally partial.
type UniqueConstraint struct {
	Name      string
	Table     string
	Columns   []string
	Predicate string // empty for a full index
}

// Partial reports whether the constraint only covers rows matching Predicate.
func (u UniqueConstraint) Partial() bool {
	return u.Predicate != ""
}

var uniqueConstraints = []UniqueConstraint{
	{Name: "IX_Branches_Name", Table: "branches", Columns: []string{"name"}},
	{Name: "IX_OperatingHours_BranchId_DayOfWeek", Table: "operating_hours", Columns: []string{"branch_id", "day_of_week"}},
	{Name: "RoleNameIndex", Table: "roles", Columns: []string{"normalized_name"}, Predicate: "normalized_name IS NOT NULL"},
	{Name: "UserNameIndex", Table: "users", Columns: []string{"normalized_user_name"}, Predicate: "normalized_user_name IS NOT NULL"},
	{Name: "IX_Permissions_Code", Table: "permissions", Columns: []string{"code"}},
	{Name: "IX_VehicleBrands_Name", Table: "vehicle_brands", Columns: []string{"name"}},
	{Name: "IX_VehicleModels_BrandId_Name", Table: "vehicle_models", Columns: []string{"brand_id", "name"}},
	{Name: "IX_VehicleModels_Id_BrandId", Table: "vehicle_models", Columns: []string{"id", "brand_id"}},
	{Name: "IX_VehicleColors_Name", Table: "vehicle_colors", Columns: []string{"name"}},
	{Name: "UX_PartCategory_ModelId_CategoryName", Table: "part_categories", Columns: []string{"model_id", "category_name"}},
	{Name: "IX_Vehicles_LicensePlate", Table: "vehicles", Columns: []string{"license_plate"}},
	{Name: "IX_PartInventories_PartId_BranchId", Table: "part_inventories", Columns: []string{"part_id", "branch_id"}},
	{Name: "IX_Technicians_UserId", Table: "technicians", Columns: []string{"user_id"}},
	{Name: "IX_OrderStatuses_Name", Table: "order_statuses", Columns: []string{"name"}},
	{Name: "UX_RepairRequests_VehicleRequestDate_Active", Table: "repair_requests", Columns: []string{"vehicle_id", "request_date"}, Predicate: "status IN (0, 1, 2)"},
	{Name: "IX_RequestEmergencies_RepairRequestId", Table: "request_emergencies", Columns: []string{"repair_request_id"}, Predicate: "repair_request_id IS NOT NULL"},
	{Name: "IX_RepairOrders_RepairRequestId", Table: "repair_orders", Columns: []string{"repair_request_id"}, Predicate: "repair_request_id IS NOT NULL"},
	{Name: "UX_Jobs_OriginalJobId", Table: "jobs", Columns: []string{"original_job_id"}, Predicate: "original_job_id IS NOT NULL"},
	{Name: "IX_Promotions_Code", Table: "promotions", Columns: []string{"code"}},
	{Name: "IX_Payments_OrderCode", Table: "payments", Columns: []string{"order_code"}, Predicate: "order_code IS NOT NULL"},
	{Name: "IX_VoucherUsages_PromotionId_QuotationId", Table: "voucher_usages", Columns: []string{"promotion_id", "quotation_id"}, Predicate: "quotation_id IS NOT NULL"},
	{Name: "IX_FeedBacks_RepairOrderId", Table: "feedbacks", Columns: []string{"repair_order_id"}},
	{Name: "IX_WebhookInbox_PayloadHash", Table: "webhook_inbox", Columns: []string{"payload_hash"}},
}

// UniqueConstraints returns every registered unique index.
func UniqueConstraints() []UniqueConstraint {
	out := make([]UniqueConstraint, len(uniqueConstraints))
	copy(out, uniqueConstraints)
	return out
}

// UniqueByColumns finds the unique constraint covering exactly these columns.
func UniqueByColumns(table string, columns []string) (UniqueConstraint, bool) {
	for _, u := range uniqueConstraints {
		if u.Table == table && slices.Equal(u.Columns, columns) {
			return u, true
		}
	}
	return UniqueConstraint{}, false
}
