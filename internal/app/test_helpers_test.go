package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/garage/internal/core/integrity"
	"github.com/example/garage/internal/ports/secondary"
)

// ============================================================================
// Shared mock repositories
// ============================================================================

func mockNotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, secondary.ErrNotFound)
}

// sequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mockServiceCatalogRepository implements secondary.ServiceCatalogRepository for testing.
type mockServiceCatalogRepository struct {
	categories map[string]*secondary.ServiceCategoryRecord
	services   map[string]*secondary.ServiceRecord
	offerings  map[string]bool
}

func newMockServiceCatalogRepository() *mockServiceCatalogRepository {
	return &mockServiceCatalogRepository{
		categories: make(map[string]*secondary.ServiceCategoryRecord),
		services:   make(map[string]*secondary.ServiceRecord),
		offerings:  make(map[string]bool),
	}
}

func (m *mockServiceCatalogRepository) CreateCategory(ctx context.Context, c *secondary.ServiceCategoryRecord) error {
	m.categories[c.ID] = c
	return nil
}

func (m *mockServiceCatalogRepository) GetCategory(ctx context.Context, id string) (*secondary.ServiceCategoryRecord, error) {
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, mockNotFound("service category", id)
}

func (m *mockServiceCatalogRepository) ListCategories(ctx context.Context) ([]*secondary.ServiceCategoryRecord, error) {
	var out []*secondary.ServiceCategoryRecord
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockServiceCatalogRepository) SetCategoryParent(ctx context.Context, id, parentID string) error {
	c, ok := m.categories[id]
	if !ok {
		return mockNotFound("service category", id)
	}
	c.ParentID = parentID
	return nil
}

func (m *mockServiceCatalogRepository) CategoryParents(ctx context.Context) (map[string]string, error) {
	parents := map[string]string{}
	for id, c := range m.categories {
		if c.ParentID != "" {
			parents[id] = c.ParentID
		}
	}
	return parents, nil
}

func (m *mockServiceCatalogRepository) CreateService(ctx context.Context, s *secondary.ServiceRecord) error {
	m.services[s.ID] = s
	return nil
}

func (m *mockServiceCatalogRepository) GetService(ctx context.Context, id string) (*secondary.ServiceRecord, error) {
	if s, ok := m.services[id]; ok {
		return s, nil
	}
	return nil, mockNotFound("service", id)
}

func (m *mockServiceCatalogRepository) ListServices(ctx context.Context, filters secondary.ServiceFilters) ([]*secondary.ServiceRecord, error) {
	var out []*secondary.ServiceRecord
	for _, s := range m.services {
		if filters.CategoryID != "" && s.CategoryID != filters.CategoryID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockServiceCatalogRepository) SetBranchOffering(ctx context.Context, branchID, serviceID string, available bool) error {
	m.offerings[branchID+"/"+serviceID] = available
	return nil
}

// mockPartRepository implements secondary.PartRepository for testing.
type mockPartRepository struct {
	parts       map[string]*secondary.PartRecord
	inventories map[string]*secondary.InventoryRecord // partID/branchID
}

func newMockPartRepository() *mockPartRepository {
	return &mockPartRepository{
		parts:       make(map[string]*secondary.PartRecord),
		inventories: make(map[string]*secondary.InventoryRecord),
	}
}

func (m *mockPartRepository) CreateCategory(ctx context.Context, c *secondary.PartCategoryRecord) error {
	return nil
}

func (m *mockPartRepository) CreatePart(ctx context.Context, p *secondary.PartRecord) error {
	m.parts[p.ID] = p
	return nil
}

func (m *mockPartRepository) GetPart(ctx context.Context, id string) (*secondary.PartRecord, error) {
	if p, ok := m.parts[id]; ok {
		return p, nil
	}
	return nil, mockNotFound("part", id)
}

func (m *mockPartRepository) ListParts(ctx context.Context, categoryID string) ([]*secondary.PartRecord, error) {
	var out []*secondary.PartRecord
	for _, p := range m.parts {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPartRepository) SetInventory(ctx context.Context, inv *secondary.InventoryRecord) error {
	m.inventories[inv.PartID+"/"+inv.BranchID] = inv
	return nil
}

func (m *mockPartRepository) GetInventory(ctx context.Context, partID, branchID string) (*secondary.InventoryRecord, error) {
	if inv, ok := m.inventories[partID+"/"+branchID]; ok {
		return inv, nil
	}
	return nil, mockNotFound("inventory", partID+"/"+branchID)
}

func (m *mockPartRepository) AdjustStock(ctx context.Context, partID, branchID string, delta int) error {
	inv, ok := m.inventories[partID+"/"+branchID]
	if !ok {
		return mockNotFound("inventory", partID+"/"+branchID)
	}
	inv.Stock += delta
	return nil
}

func (m *mockPartRepository) ListInventory(ctx context.Context, filters secondary.InventoryFilters) ([]*secondary.InventoryRecord, error) {
	var out []*secondary.InventoryRecord
	for _, inv := range m.inventories {
		if filters.PartID != "" && inv.PartID != filters.PartID {
			continue
		}
		if filters.BranchID != "" && inv.BranchID != filters.BranchID {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// mockTechnicianRepository implements secondary.TechnicianRepository for testing.
type mockTechnicianRepository struct {
	technicians map[string]*secondary.TechnicianRecord
}

func newMockTechnicianRepository() *mockTechnicianRepository {
	return &mockTechnicianRepository{technicians: make(map[string]*secondary.TechnicianRecord)}
}

func (m *mockTechnicianRepository) Create(ctx context.Context, tech *secondary.TechnicianRecord) error {
	m.technicians[tech.ID] = tech
	return nil
}

func (m *mockTechnicianRepository) GetByID(ctx context.Context, id string) (*secondary.TechnicianRecord, error) {
	if t, ok := m.technicians[id]; ok {
		return t, nil
	}
	return nil, mockNotFound("technician", id)
}

func (m *mockTechnicianRepository) GetByUserID(ctx context.Context, userID string) (*secondary.TechnicianRecord, error) {
	for _, t := range m.technicians {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, mockNotFound("technician for user", userID)
}

func (m *mockTechnicianRepository) SetAvailable(ctx context.Context, id string, available bool) error {
	t, ok := m.technicians[id]
	if !ok {
		return mockNotFound("technician", id)
	}
	t.IsAvailable = available
	return nil
}

// mockRepairRequestRepository implements secondary.RepairRequestRepository for testing.
type mockRepairRequestRepository struct {
	requests  map[string]*secondary.RepairRequestRecord
	services  map[string][]*secondary.RequestServiceRecord
	parts     map[string][]*secondary.RequestPartRecord
	createErr error
}

func newMockRepairRequestRepository() *mockRepairRequestRepository {
	return &mockRepairRequestRepository{
		requests: make(map[string]*secondary.RepairRequestRecord),
		services: make(map[string][]*secondary.RequestServiceRecord),
		parts:    make(map[string][]*secondary.RequestPartRecord),
	}
}

func (m *mockRepairRequestRepository) Create(ctx context.Context, req *secondary.RepairRequestRecord, services []*secondary.RequestServiceRecord, parts []*secondary.RequestPartRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	req.RowVersion = 1
	m.requests[req.ID] = req
	m.services[req.ID] = services
	m.parts[req.ID] = parts
	return nil
}

func (m *mockRepairRequestRepository) GetByID(ctx context.Context, id string) (*secondary.RepairRequestRecord, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, mockNotFound("repair request", id)
}

func (m *mockRepairRequestRepository) List(ctx context.Context, filters secondary.RepairRequestFilters) ([]*secondary.RepairRequestRecord, error) {
	var out []*secondary.RepairRequestRecord
	for _, r := range m.requests {
		if filters.VehicleID != "" && r.VehicleID != filters.VehicleID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepairRequestRepository) ListServices(ctx context.Context, requestID string) ([]*secondary.RequestServiceRecord, error) {
	return m.services[requestID], nil
}

func (m *mockRepairRequestRepository) ListParts(ctx context.Context, requestID string) ([]*secondary.RequestPartRecord, error) {
	return m.parts[requestID], nil
}

func (m *mockRepairRequestRepository) UpdateStatus(ctx context.Context, id string, status int, expectedVersion int64) (int64, error) {
	r, ok := m.requests[id]
	if !ok {
		return 0, mockNotFound("repair request", id)
	}
	if r.RowVersion != expectedVersion {
		return 0, secondary.ErrConcurrencyConflict
	}
	r.Status = status
	r.RowVersion++
	return r.RowVersion, nil
}

func (m *mockRepairRequestRepository) Delete(ctx context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

// mockRepairOrderRepository implements secondary.RepairOrderRepository for testing.
type mockRepairOrderRepository struct {
	orders    map[string]*secondary.RepairOrderRecord
	services  map[string][]*secondary.RepairOrderServiceRecord
	parts     map[string][]*secondary.RepairOrderPartRecord
	openJobs  map[string]int
	createErr error

	// Shared with the request and part mocks so composite writes see the
	// same state the services read.
	requests *mockRepairRequestRepository
	stock    *mockPartRepository
}

func newMockRepairOrderRepository() *mockRepairOrderRepository {
	return &mockRepairOrderRepository{
		orders:   make(map[string]*secondary.RepairOrderRecord),
		services: make(map[string][]*secondary.RepairOrderServiceRecord),
		parts:    make(map[string][]*secondary.RepairOrderPartRecord),
		openJobs: make(map[string]int),
	}
}

func (m *mockRepairOrderRepository) Create(ctx context.Context, o *secondary.RepairOrderRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if o.RepairRequestID != "" {
		for _, existing := range m.orders {
			if existing.RepairRequestID == o.RepairRequestID {
				return &secondary.ConstraintViolation{Kind: secondary.ConstraintUnique, Constraint: "IX_RepairOrders_RepairRequestId"}
			}
		}
	}
	o.Lifecycle = "active"
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepairOrderRepository) CreateFromRequest(ctx context.Context, o *secondary.RepairOrderRecord, requestStatus int, expectedVersion int64) error {
	r, ok := m.requests.requests[o.RepairRequestID]
	if !ok {
		return mockNotFound("repair request", o.RepairRequestID)
	}
	if r.RowVersion != expectedVersion {
		return secondary.ErrConcurrencyConflict
	}
	if err := m.Create(ctx, o); err != nil {
		return err
	}
	r.Status = requestStatus
	r.RowVersion++
	return nil
}

func (m *mockRepairOrderRepository) GetByID(ctx context.Context, id string) (*secondary.RepairOrderRecord, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, mockNotFound("repair order", id)
}

func (m *mockRepairOrderRepository) GetByRequestID(ctx context.Context, requestID string) (*secondary.RepairOrderRecord, error) {
	for _, o := range m.orders {
		if o.RepairRequestID == requestID {
			return o, nil
		}
	}
	return nil, mockNotFound("repair order for request", requestID)
}

func (m *mockRepairOrderRepository) List(ctx context.Context, filters secondary.RepairOrderFilters) ([]*secondary.RepairOrderRecord, error) {
	var out []*secondary.RepairOrderRecord
	for _, o := range m.orders {
		if filters.Lifecycle != "" && o.Lifecycle != filters.Lifecycle {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepairOrderRepository) UpdateStatus(ctx context.Context, id string, statusID int, completedAt *time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return mockNotFound("repair order", id)
	}
	o.OrderStatusID = statusID
	if completedAt != nil {
		o.CompletionDate = completedAt
	}
	return nil
}

func (m *mockRepairOrderRepository) Archive(ctx context.Context, id, archivedBy string, at time.Time) error {
	o, ok := m.orders[id]
	if !ok || o.Lifecycle != "active" {
		return mockNotFound("active repair order", id)
	}
	o.Lifecycle = "archived"
	o.ArchivedAt = &at
	o.ArchivedBy = archivedBy
	return nil
}

func (m *mockRepairOrderRepository) Cancel(ctx context.Context, id, reason string, at time.Time) error {
	o, ok := m.orders[id]
	if !ok || o.Lifecycle != "active" {
		return mockNotFound("active repair order", id)
	}
	o.Lifecycle = "cancelled"
	o.CancelledAt = &at
	o.CancelReason = reason
	return nil
}

func (m *mockRepairOrderRepository) UpdatePayment(ctx context.Context, id string, paidCents int64, paidStatus string) error {
	o, ok := m.orders[id]
	if !ok {
		return mockNotFound("repair order", id)
	}
	o.PaidAmountCents = paidCents
	o.PaidStatus = paidStatus
	return nil
}

func (m *mockRepairOrderRepository) AddService(ctx context.Context, line *secondary.RepairOrderServiceRecord) error {
	o, ok := m.orders[line.RepairOrderID]
	if !ok {
		return mockNotFound("repair order", line.RepairOrderID)
	}
	m.services[line.RepairOrderID] = append(m.services[line.RepairOrderID], line)
	o.CostCents += line.PriceCents
	return nil
}

func (m *mockRepairOrderRepository) AddPart(ctx context.Context, line *secondary.RepairOrderPartRecord, stockBranchID string) error {
	o, ok := m.orders[line.RepairOrderID]
	if !ok {
		return mockNotFound("repair order", line.RepairOrderID)
	}
	if stockBranchID != "" {
		inv, ok := m.stock.inventories[line.PartID+"/"+stockBranchID]
		if !ok {
			return mockNotFound("inventory", line.PartID+"/"+stockBranchID)
		}
		if inv.Stock < line.Quantity {
			return &secondary.ConstraintViolation{Kind: secondary.ConstraintCheck, Table: "part_inventories"}
		}
		inv.Stock -= line.Quantity
	}
	m.parts[line.RepairOrderID] = append(m.parts[line.RepairOrderID], line)
	o.CostCents += line.UnitPriceCents * int64(line.Quantity)
	return nil
}

func (m *mockRepairOrderRepository) ListServices(ctx context.Context, orderID string) ([]*secondary.RepairOrderServiceRecord, error) {
	return m.services[orderID], nil
}

func (m *mockRepairOrderRepository) ListParts(ctx context.Context, orderID string) ([]*secondary.RepairOrderPartRecord, error) {
	return m.parts[orderID], nil
}

func (m *mockRepairOrderRepository) OrderStatusIDs(ctx context.Context) ([]int, error) {
	return []int{1, 2, 3}, nil
}

func (m *mockRepairOrderRepository) CountOpenJobs(ctx context.Context, orderID string) (int, error) {
	return m.openJobs[orderID], nil
}

func (m *mockRepairOrderRepository) Delete(ctx context.Context, id string) error {
	delete(m.orders, id)
	return nil
}

// mockJobRepository implements secondary.JobRepository for testing.
type mockJobRepository struct {
	jobs        map[string]*secondary.JobRecord
	technicians map[string][]string
	parts       []*secondary.JobPartRecord
	repairs     []*secondary.RepairRecord
}

func newMockJobRepository() *mockJobRepository {
	return &mockJobRepository{
		jobs:        make(map[string]*secondary.JobRecord),
		technicians: make(map[string][]string),
	}
}

func (m *mockJobRepository) Create(ctx context.Context, j *secondary.JobRecord) error {
	if j.OriginalJobID != "" {
		for _, existing := range m.jobs {
			if existing.OriginalJobID == j.OriginalJobID {
				return &secondary.ConstraintViolation{Kind: secondary.ConstraintUnique, Constraint: "UX_Jobs_OriginalJobId"}
			}
		}
	}
	m.jobs[j.ID] = j
	return nil
}

func (m *mockJobRepository) GetByID(ctx context.Context, id string) (*secondary.JobRecord, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, mockNotFound("job", id)
}

func (m *mockJobRepository) ListByOrder(ctx context.Context, orderID string) ([]*secondary.JobRecord, error) {
	var out []*secondary.JobRecord
	for _, j := range m.jobs {
		if j.RepairOrderID == orderID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *mockJobRepository) UpdateStatus(ctx context.Context, id, status string) error {
	j, ok := m.jobs[id]
	if !ok {
		return mockNotFound("job", id)
	}
	j.Status = status
	return nil
}

func (m *mockJobRepository) GetRevisionOf(ctx context.Context, jobID string) (string, error) {
	for _, j := range m.jobs {
		if j.OriginalJobID == jobID {
			return j.ID, nil
		}
	}
	return "", nil
}

func (m *mockJobRepository) OriginalLinks(ctx context.Context, orderID string) (map[string]string, error) {
	links := map[string]string{}
	for _, j := range m.jobs {
		if j.RepairOrderID == orderID && j.OriginalJobID != "" {
			links[j.ID] = j.OriginalJobID
		}
	}
	return links, nil
}

func (m *mockJobRepository) AssignTechnician(ctx context.Context, jobID, technicianID string) error {
	m.technicians[jobID] = append(m.technicians[jobID], technicianID)
	return nil
}

func (m *mockJobRepository) IsAssigned(ctx context.Context, jobID, technicianID string) (bool, error) {
	for _, id := range m.technicians[jobID] {
		if id == technicianID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockJobRepository) ListTechnicianIDs(ctx context.Context, jobID string) ([]string, error) {
	return m.technicians[jobID], nil
}

func (m *mockJobRepository) AddPart(ctx context.Context, p *secondary.JobPartRecord) error {
	j, ok := m.jobs[p.JobID]
	if !ok {
		return mockNotFound("job", p.JobID)
	}
	m.parts = append(m.parts, p)
	j.TotalAmountCents += p.UnitPriceCents * int64(p.Quantity)
	return nil
}

func (m *mockJobRepository) RecordRepair(ctx context.Context, r *secondary.RepairRecord) error {
	m.repairs = append(m.repairs, r)
	return nil
}

func (m *mockJobRepository) Delete(ctx context.Context, id string) error {
	if rev, _ := m.GetRevisionOf(ctx, id); rev != "" {
		return &secondary.ConstraintViolation{Kind: secondary.ConstraintForeignKey, Constraint: "FK_Jobs_Jobs_OriginalJobId"}
	}
	delete(m.jobs, id)
	return nil
}

// mockEmergencyRepository implements secondary.EmergencyRepository for testing.
type mockEmergencyRepository struct {
	emergencies map[string]*secondary.EmergencyRecord
	cancelErr   map[string]error
}

func newMockEmergencyRepository() *mockEmergencyRepository {
	return &mockEmergencyRepository{
		emergencies: make(map[string]*secondary.EmergencyRecord),
		cancelErr:   make(map[string]error),
	}
}

func (m *mockEmergencyRepository) Create(ctx context.Context, e *secondary.EmergencyRecord) error {
	m.emergencies[e.ID] = e
	return nil
}

func (m *mockEmergencyRepository) GetByID(ctx context.Context, id string) (*secondary.EmergencyRecord, error) {
	if e, ok := m.emergencies[id]; ok {
		return e, nil
	}
	return nil, mockNotFound("emergency", id)
}

func (m *mockEmergencyRepository) List(ctx context.Context, filters secondary.EmergencyFilters) ([]*secondary.EmergencyRecord, error) {
	var out []*secondary.EmergencyRecord
	for _, e := range m.emergencies {
		if filters.Status != "" && e.Status != filters.Status {
			continue
		}
		if filters.BranchID != "" && e.BranchID != filters.BranchID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEmergencyRepository) Respond(ctx context.Context, id, technicianID string, respondedAt time.Time) error {
	e, ok := m.emergencies[id]
	if !ok || e.Status != "pending" {
		return mockNotFound("pending emergency", id)
	}
	e.Status = "accepted"
	e.TechnicianID = technicianID
	e.RespondedAt = &respondedAt
	return nil
}

func (m *mockEmergencyRepository) LinkRequest(ctx context.Context, id, requestID string) error {
	e, ok := m.emergencies[id]
	if !ok {
		return mockNotFound("emergency", id)
	}
	e.RepairRequestID = requestID
	return nil
}

func (m *mockEmergencyRepository) UpdateStatus(ctx context.Context, id, status string) error {
	e, ok := m.emergencies[id]
	if !ok {
		return mockNotFound("emergency", id)
	}
	e.Status = status
	return nil
}

func (m *mockEmergencyRepository) Cancel(ctx context.Context, id, reason string, at time.Time, auto bool) error {
	if err := m.cancelErr[id]; err != nil {
		return err
	}
	e, ok := m.emergencies[id]
	if !ok || e.Status == "completed" || e.Status == "canceled" {
		return mockNotFound("open emergency", id)
	}
	e.Status = "canceled"
	e.CancelReason = reason
	if auto {
		e.AutoCanceledAt = &at
	}
	return nil
}

// mockQuotationRepository implements secondary.QuotationRepository for testing.
type mockQuotationRepository struct {
	quotations map[string]*secondary.QuotationRecord
	lines      map[string][]*secondary.QuotationServiceRecord
	promotions *mockPromotionRepository
}

func newMockQuotationRepository() *mockQuotationRepository {
	return &mockQuotationRepository{
		quotations: make(map[string]*secondary.QuotationRecord),
		lines:      make(map[string][]*secondary.QuotationServiceRecord),
	}
}

func (m *mockQuotationRepository) Create(ctx context.Context, q *secondary.QuotationRecord, lines []*secondary.QuotationServiceRecord, usage *secondary.VoucherUsageRecord) error {
	if usage != nil {
		usage.QuotationID = q.ID
		if err := m.promotions.RecordUsage(ctx, usage); err != nil {
			return err
		}
	}
	m.quotations[q.ID] = q
	m.lines[q.ID] = lines
	return nil
}

func (m *mockQuotationRepository) GetByID(ctx context.Context, id string) (*secondary.QuotationRecord, error) {
	if q, ok := m.quotations[id]; ok {
		return q, nil
	}
	return nil, mockNotFound("quotation", id)
}

func (m *mockQuotationRepository) List(ctx context.Context, filters secondary.QuotationFilters) ([]*secondary.QuotationRecord, error) {
	var out []*secondary.QuotationRecord
	for _, q := range m.quotations {
		if filters.CustomerID != "" && q.CustomerID != filters.CustomerID {
			continue
		}
		if filters.Status != "" && q.Status != filters.Status {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *mockQuotationRepository) ListLines(ctx context.Context, quotationID string) ([]*secondary.QuotationServiceRecord, error) {
	return m.lines[quotationID], nil
}

func (m *mockQuotationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	q, ok := m.quotations[id]
	if !ok {
		return mockNotFound("quotation", id)
	}
	q.Status = "sent"
	q.SentToCustomerAt = &at
	return nil
}

func (m *mockQuotationRepository) RecordResponse(ctx context.Context, id, status, customerNote string, at time.Time) error {
	q, ok := m.quotations[id]
	if !ok {
		return mockNotFound("quotation", id)
	}
	q.Status = status
	q.CustomerNote = customerNote
	q.CustomerResponseAt = &at
	return nil
}

func (m *mockQuotationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	q, ok := m.quotations[id]
	if !ok {
		return mockNotFound("quotation", id)
	}
	q.Status = status
	return nil
}

// mockPromotionRepository implements secondary.PromotionRepository for testing.
type mockPromotionRepository struct {
	promotions map[string]*secondary.PromotionRecord
	usages     []*secondary.VoucherUsageRecord
}

func newMockPromotionRepository() *mockPromotionRepository {
	return &mockPromotionRepository{promotions: make(map[string]*secondary.PromotionRecord)}
}

func (m *mockPromotionRepository) Create(ctx context.Context, p *secondary.PromotionRecord) error {
	m.promotions[p.ID] = p
	return nil
}

func (m *mockPromotionRepository) GetByID(ctx context.Context, id string) (*secondary.PromotionRecord, error) {
	if p, ok := m.promotions[id]; ok {
		return p, nil
	}
	return nil, mockNotFound("promotion", id)
}

func (m *mockPromotionRepository) GetByCode(ctx context.Context, code string) (*secondary.PromotionRecord, error) {
	for _, p := range m.promotions {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, mockNotFound("promotion", code)
}

func (m *mockPromotionRepository) RecordUsage(ctx context.Context, u *secondary.VoucherUsageRecord) error {
	p, ok := m.promotions[u.PromotionID]
	if !ok {
		return mockNotFound("promotion", u.PromotionID)
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return &secondary.ConstraintViolation{Kind: secondary.ConstraintCheck, Table: "promotions"}
	}
	p.UsedCount++
	u.ID = int64(len(m.usages) + 1)
	m.usages = append(m.usages, u)
	return nil
}

func (m *mockPromotionRepository) ListUsages(ctx context.Context, promotionID string) ([]*secondary.VoucherUsageRecord, error) {
	var out []*secondary.VoucherUsageRecord
	for _, u := range m.usages {
		if u.PromotionID == promotionID {
			out = append(out, u)
		}
	}
	return out, nil
}

// mockPaymentRepository implements secondary.PaymentRepository for testing.
type mockPaymentRepository struct {
	payments map[string]*secondary.PaymentRecord
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[string]*secondary.PaymentRecord)}
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *secondary.PaymentRecord) error {
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepository) GetByID(ctx context.Context, id string) (*secondary.PaymentRecord, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, mockNotFound("payment", id)
}

func (m *mockPaymentRepository) GetByOrderCode(ctx context.Context, orderCode int64) (*secondary.PaymentRecord, error) {
	for _, p := range m.payments {
		if p.OrderCode == orderCode {
			return p, nil
		}
	}
	return nil, mockNotFound("payment", fmt.Sprint(orderCode))
}

func (m *mockPaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]*secondary.PaymentRecord, error) {
	var out []*secondary.PaymentRecord
	for _, p := range m.payments {
		if p.RepairOrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) error {
	p, ok := m.payments[id]
	if !ok {
		return mockNotFound("payment", id)
	}
	p.Status = status
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	return nil
}

func (m *mockPaymentRepository) SumPaid(ctx context.Context, orderID string) (int64, error) {
	var total int64
	for _, p := range m.payments {
		if p.RepairOrderID == orderID && p.Status == "paid" {
			total += p.AmountCents
		}
	}
	return total, nil
}

// mockFeedbackRepository implements secondary.FeedbackRepository for testing.
type mockFeedbackRepository struct {
	byOrder map[string]*secondary.FeedbackRecord
}

func newMockFeedbackRepository() *mockFeedbackRepository {
	return &mockFeedbackRepository{byOrder: make(map[string]*secondary.FeedbackRecord)}
}

func (m *mockFeedbackRepository) Create(ctx context.Context, f *secondary.FeedbackRecord) error {
	if _, ok := m.byOrder[f.RepairOrderID]; ok {
		return &secondary.ConstraintViolation{Kind: secondary.ConstraintUnique, Constraint: "IX_FeedBacks_RepairOrderId"}
	}
	m.byOrder[f.RepairOrderID] = f
	return nil
}

func (m *mockFeedbackRepository) GetByOrder(ctx context.Context, orderID string) (*secondary.FeedbackRecord, error) {
	if f, ok := m.byOrder[orderID]; ok {
		return f, nil
	}
	return nil, mockNotFound("feedback for order", orderID)
}

// mockWebhookInboxRepository implements secondary.WebhookInboxRepository for testing.
type mockWebhookInboxRepository struct {
	entries map[int64]*secondary.WebhookRecord
	nextID  int64
}

func newMockWebhookInboxRepository() *mockWebhookInboxRepository {
	return &mockWebhookInboxRepository{entries: make(map[int64]*secondary.WebhookRecord)}
}

func (m *mockWebhookInboxRepository) Receive(ctx context.Context, e *secondary.WebhookRecord) (int64, bool, error) {
	for id, existing := range m.entries {
		if existing.PayloadHash == e.PayloadHash {
			return id, false, nil
		}
	}
	m.nextID++
	e.ID = m.nextID
	m.entries[e.ID] = e
	return e.ID, true, nil
}

func (m *mockWebhookInboxRepository) GetByID(ctx context.Context, id int64) (*secondary.WebhookRecord, error) {
	if e, ok := m.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, mockNotFound("webhook", fmt.Sprint(id))
}

func (m *mockWebhookInboxRepository) ListPending(ctx context.Context, limit int) ([]*secondary.WebhookRecord, error) {
	var out []*secondary.WebhookRecord
	for _, e := range m.entries {
		if e.Status != "processed" {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockWebhookInboxRepository) ListByOrderCode(ctx context.Context, orderCode int64) ([]*secondary.WebhookRecord, error) {
	var out []*secondary.WebhookRecord
	for _, e := range m.entries {
		if e.OrderCode == orderCode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockWebhookInboxRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	e, ok := m.entries[id]
	if !ok {
		return mockNotFound("webhook", fmt.Sprint(id))
	}
	e.Status = "processed"
	e.ProcessedAt = &at
	return nil
}

func (m *mockWebhookInboxRepository) RecordFailure(ctx context.Context, id int64, lastError string) (int, error) {
	e, ok := m.entries[id]
	if !ok {
		return 0, mockNotFound("webhook", fmt.Sprint(id))
	}
	e.Status = "failed"
	e.Attempts++
	e.LastError = lastError
	return e.Attempts, nil
}

// mockIntegrityRepository implements secondary.IntegrityRepository for testing.
// dependents is keyed by relation name and parent key.
type mockIntegrityRepository struct {
	rows       map[string]integrity.RowRef // table/id
	dependents map[string][]integrity.RowRef
	deleted    []integrity.RowRef
	fks        []secondary.LiveForeignKey
	indexes    []secondary.LiveUniqueIndex
}

func newMockIntegrityRepository() *mockIntegrityRepository {
	return &mockIntegrityRepository{
		rows:       make(map[string]integrity.RowRef),
		dependents: make(map[string][]integrity.RowRef),
	}
}

func (m *mockIntegrityRepository) addRow(table, id string) integrity.RowRef {
	ref := integrity.RowRef{Table: table, RowID: int64(len(m.rows) + 1), Key: id}
	m.rows[table+"/"+id] = ref
	return ref
}

func (m *mockIntegrityRepository) addDependent(relation string, parent, child integrity.RowRef) {
	key := relation + "|" + parent.String()
	m.dependents[key] = append(m.dependents[key], child)
}

func (m *mockIntegrityRepository) Resolve(ctx context.Context, table, id string) (integrity.RowRef, error) {
	if ref, ok := m.rows[table+"/"+id]; ok {
		return ref, nil
	}
	return integrity.RowRef{}, mockNotFound(table, id)
}

func (m *mockIntegrityRepository) Dependents(ctx context.Context, rel integrity.Relation, parent integrity.RowRef) ([]integrity.RowRef, error) {
	return m.dependents[rel.Name+"|"+parent.String()], nil
}

func (m *mockIntegrityRepository) DeleteRow(ctx context.Context, row integrity.RowRef) error {
	m.deleted = append(m.deleted, row)
	return nil
}

func (m *mockIntegrityRepository) ForeignKeys(ctx context.Context) ([]secondary.LiveForeignKey, error) {
	return m.fks, nil
}

func (m *mockIntegrityRepository) UniqueIndexes(ctx context.Context) ([]secondary.LiveUniqueIndex, error) {
	return m.indexes, nil
}

// Ensure mocks implement their interfaces.
var (
	_ secondary.ServiceCatalogRepository = (*mockServiceCatalogRepository)(nil)
	_ secondary.PartRepository           = (*mockPartRepository)(nil)
	_ secondary.TechnicianRepository     = (*mockTechnicianRepository)(nil)
	_ secondary.RepairRequestRepository  = (*mockRepairRequestRepository)(nil)
	_ secondary.RepairOrderRepository    = (*mockRepairOrderRepository)(nil)
	_ secondary.JobRepository            = (*mockJobRepository)(nil)
	_ secondary.EmergencyRepository      = (*mockEmergencyRepository)(nil)
	_ secondary.QuotationRepository      = (*mockQuotationRepository)(nil)
	_ secondary.PromotionRepository      = (*mockPromotionRepository)(nil)
	_ secondary.PaymentRepository        = (*mockPaymentRepository)(nil)
	_ secondary.FeedbackRepository       = (*mockFeedbackRepository)(nil)
	_ secondary.WebhookInboxRepository   = (*mockWebhookInboxRepository)(nil)
	_ secondary.IntegrityRepository      = (*mockIntegrityRepository)(nil)
)

func availableTechnician(id string, available bool) *secondary.TechnicianRecord {
	return &secondary.TechnicianRecord{ID: id, UserID: "USR-" + id, IsAvailable: available}
}
