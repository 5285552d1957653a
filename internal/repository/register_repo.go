package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/model"
)

// RegisterRepository defines the data access contract for registers.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via fakes.
type RegisterRepository interface {
	Create(ctx context.Context, r *model.Register) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Register, error)
	FindByCode(ctx context.Context, code string) (*model.Register, error)
	FindMain(ctx context.Context) (*model.Register, error)
	List(ctx context.Context, includeInactive bool) ([]model.Register, error)
	Update(ctx context.Context, r *model.Register) error
	ClearMainExcept(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountSessions(ctx context.Context, registerID uuid.UUID) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) DB() *gorm.DB { return r.db }

func (r *registerRepo) Create(ctx context.Context, reg *model.Register) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Register, error) {
	var reg model.Register
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *registerRepo) FindByCode(ctx context.Context, code string) (*model.Register, error) {
	var reg model.Register
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&reg).Error
	return &reg, err
}

func (r *registerRepo) FindMain(ctx context.Context) (*model.Register, error) {
	var reg model.Register
	err := r.db.WithContext(ctx).Where("is_main = true").First(&reg).Error
	return &reg, err
}

func (r *registerRepo) List(ctx context.Context, includeInactive bool) ([]model.Register, error) {
	var regs []model.Register
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	err := q.Order("code ASC").Find(&regs).Error
	return regs, err
}

func (r *registerRepo) Update(ctx context.Context, reg *model.Register) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

// ClearMainExcept demotes every other register so at most one main exists.
func (r *registerRepo) ClearMainExcept(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Register{}).
		Where("id <> ? AND is_main = true", id).
		Update("is_main", false).Error
}

func (r *registerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Register{}, "id = ?", id).Error
}

func (r *registerRepo) CountSessions(ctx context.Context, registerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("register_id = ?", registerID).Count(&n).Error
	return n, err
}
