package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
	CountByMonth(ctx context.Context, year int, month time.Month) (int64, error)
	List(ctx context.Context, q dto.InvoiceListQuery) ([]model.Invoice, int64, error)
	Update(ctx context.Context, inv *model.Invoice) error
	FindOverdueCandidates(ctx context.Context, now time.Time) ([]model.Invoice, error)
	Stats(ctx context.Context) (*dto.InvoiceStats, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&inv).Error
	return &inv, err
}

// CountByMonth counts invoices numbered in the given calendar month, used to
// derive the next per-month sequence of the invoice number.
func (r *invoiceRepo) CountByMonth(ctx context.Context, year int, month time.Month) (int64, error) {
	var n int64
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 1, 0)).
		Count(&n).Error
	return n, err
}

func (r *invoiceRepo) List(ctx context.Context, q dto.InvoiceListQuery) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Invoice{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.DateFrom != nil {
		db = db.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("created_at < ?", q.DateTo.AddDate(0, 0, 1))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset(q.Offset()).Limit(q.Limit()).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *invoiceRepo) FindOverdueCandidates(ctx context.Context, now time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", model.InvoiceIssued, now).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) Stats(ctx context.Context) (*dto.InvoiceStats, error) {
	stats := &dto.InvoiceStats{ByStatus: map[string]int64{}}

	type row struct {
		Status string
		Count  int64
		Amount string
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total), 0) as amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		stats.ByStatus[rw.Status] = rw.Count
		amt, err := parseAmount(rw.Amount)
		if err != nil {
			return nil, err
		}
		stats.TotalCount += rw.Count
		stats.TotalAmount = stats.TotalAmount.Add(amt)
		switch model.InvoiceStatus(rw.Status) {
		case model.InvoicePaid:
			stats.PaidCount = rw.Count
			stats.PaidAmount = amt
		case model.InvoiceOverdue:
			stats.OverdueCount = rw.Count
		}
	}
	return stats, nil
}
