package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, q dto.OrderListQuery) ([]model.Order, int64, error)
	Update(ctx context.Context, o *model.Order) error

	// Used inside settlement transactions — callers must pass the tx instance.
	CreateTx(ctx context.Context, tx *gorm.DB, o *model.Order) error
	CountByDayTx(ctx context.Context, tx *gorm.DB, day time.Time) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, q dto.OrderListQuery) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})
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

	err := db.Preload("Items").
		Order("created_at DESC").
		Offset(q.Offset()).Limit(q.Limit()).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) Update(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(o).Error
}

// CreateTx persists the order and its items in one insert chain.
func (r *orderRepo) CreateTx(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

// CountByDayTx counts orders created on the given day, used to derive the
// next per-day sequence of the order number.
func (r *orderRepo) CountByDayTx(ctx context.Context, tx *gorm.DB, day time.Time) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("DATE(created_at) = ?", day.Format("2006-01-02")).
		Count(&n).Error
	return n, err
}
