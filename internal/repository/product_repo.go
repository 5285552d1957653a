package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retailpos/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	UpdateVariantStock(ctx context.Context, id uuid.UUID, stock int) error

	// Used inside settlement transactions — callers must pass the tx instance.
	// Lock methods take FOR UPDATE row locks; callers are responsible for
	// acquiring them in a deterministic order.
	LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	LockVariantByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error)
	DecrementStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
	DecrementVariantStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *productRepo) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).Update("stock", stock).Error
}

func (r *productRepo) UpdateVariantStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ?", id).Update("stock", stock).Error
}

func (r *productRepo) LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) LockVariantByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *productRepo) DecrementStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}

func (r *productRepo) DecrementVariantStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.WithContext(ctx).Model(&model.ProductVariant{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}
