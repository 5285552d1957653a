package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// ── In-memory SessionRepository ──────────────────────────────────────────────

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*model.CashSession
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.CashSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) FindOpenByRegister(_ context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.RegisterID == registerID &&
			(s.Status == model.SessionOpen || s.Status == model.SessionSuspended) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) List(_ context.Context, q dto.SessionListQuery) ([]model.CashSession, int64, error) {
	var out []model.CashSession
	for _, s := range r.sessions {
		if q.RegisterID != nil && s.RegisterID != *q.RegisterID {
			continue
		}
		if q.Status != "" && string(s.Status) != q.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) ListByDay(_ context.Context, day time.Time) ([]model.CashSession, error) {
	var out []model.CashSession
	for _, s := range r.sessions {
		if s.OpenedAt.Format("2006-01-02") == day.Format("2006-01-02") {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *model.CashSession) error {
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) LockByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) SaveTx(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) DB() *gorm.DB { return nil }

// ── In-memory RegisterRepository ─────────────────────────────────────────────

type fakeRegisterRepo struct {
	registers    map[uuid.UUID]*model.Register
	sessionCount map[uuid.UUID]int64
}

var _ repository.RegisterRepository = (*fakeRegisterRepo)(nil)

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{
		registers:    make(map[uuid.UUID]*model.Register),
		sessionCount: make(map[uuid.UUID]int64),
	}
}

func (r *fakeRegisterRepo) Create(_ context.Context, reg *model.Register) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	cp := *reg
	r.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Register, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeRegisterRepo) FindByCode(_ context.Context, code string) (*model.Register, error) {
	for _, reg := range r.registers {
		if reg.Code == code {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRegisterRepo) FindMain(_ context.Context) (*model.Register, error) {
	for _, reg := range r.registers {
		if reg.IsMain {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRegisterRepo) List(_ context.Context, includeInactive bool) ([]model.Register, error) {
	var out []model.Register
	for _, reg := range r.registers {
		if !includeInactive && !reg.IsActive {
			continue
		}
		out = append(out, *reg)
	}
	return out, nil
}

func (r *fakeRegisterRepo) Update(_ context.Context, reg *model.Register) error {
	cp := *reg
	r.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) ClearMainExcept(_ context.Context, id uuid.UUID) error {
	for _, reg := range r.registers {
		if reg.ID != id {
			reg.IsMain = false
		}
	}
	return nil
}

func (r *fakeRegisterRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.registers, id)
	return nil
}

func (r *fakeRegisterRepo) CountSessions(_ context.Context, registerID uuid.UUID) (int64, error) {
	return r.sessionCount[registerID], nil
}

func (r *fakeRegisterRepo) DB() *gorm.DB { return nil }

// ── In-memory ProductRepository ──────────────────────────────────────────────

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
	variants map[uuid.UUID]*model.ProductVariant
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		variants: make(map[uuid.UUID]*model.ProductVariant),
	}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindVariantByID(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *fakeProductRepo) UpdateVariantStock(_ context.Context, id uuid.UUID, stock int) error {
	v, ok := r.variants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Stock = stock
	return nil
}

func (r *fakeProductRepo) LockByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) LockVariantByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeProductRepo) DecrementStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) DecrementVariantStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, qty int) error {
	v, ok := r.variants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Stock -= qty
	return nil
}

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

// ── In-memory OrderRepository ────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) List(_ context.Context, q dto.OrderListQuery) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) CreateTx(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *model.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) CountByDayTx(_ context.Context, _ *gorm.DB, day time.Time) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.CreatedAt.Format("2006-01-02") == day.Format("2006-01-02") {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) DB() *gorm.DB { return nil }

// ── In-memory InvoiceRepository ──────────────────────────────────────────────

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

var _ repository.InvoiceRepository = (*fakeInvoiceRepo)(nil)

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.OrderID == orderID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepo) CountByMonth(_ context.Context, year int, month time.Month) (int64, error) {
	var n int64
	for _, inv := range r.invoices {
		if inv.CreatedAt.Year() == year && inv.CreatedAt.Month() == month {
			n++
		}
	}
	return n, nil
}

func (r *fakeInvoiceRepo) List(_ context.Context, q dto.InvoiceListQuery) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if q.Status != "" && string(inv.Status) != q.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *fakeInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) FindOverdueCandidates(_ context.Context, now time.Time) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.Status == model.InvoiceIssued && inv.DueDate != nil && inv.DueDate.Before(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Stats(_ context.Context) (*dto.InvoiceStats, error) {
	stats := &dto.InvoiceStats{ByStatus: map[string]int64{}}
	for _, inv := range r.invoices {
		stats.ByStatus[string(inv.Status)]++
		stats.TotalCount++
		stats.TotalAmount = stats.TotalAmount.Add(inv.Total)
		switch inv.Status {
		case model.InvoicePaid:
			stats.PaidCount++
			stats.PaidAmount = stats.PaidAmount.Add(inv.Total)
		case model.InvoiceOverdue:
			stats.OverdueCount++
		}
	}
	return stats, nil
}

func (r *fakeInvoiceRepo) DB() *gorm.DB { return nil }

// ── In-memory CustomerRepository ─────────────────────────────────────────────

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) AddLoyaltyPoints(_ context.Context, id uuid.UUID, points int) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.LoyaltyPoints += points
	return nil
}

func (r *fakeCustomerRepo) DB() *gorm.DB { return nil }

// ── Recording email queue ────────────────────────────────────────────────────

type recordingEmailQueue struct {
	payloads []any
	err      error
}

var _ EmailQueue = (*recordingEmailQueue)(nil)

func (q *recordingEmailQueue) EnqueueEmail(_ context.Context, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

// ── Recording audit sink ─────────────────────────────────────────────────────

type recordingAudit struct {
	entries []AuditEntry
}

var _ AuditService = (*recordingAudit)(nil)

func (a *recordingAudit) Record(_ context.Context, entry AuditEntry) {
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) List(_ context.Context, _ dto.AuditListQuery) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}
