package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	List(ctx context.Context, q dto.SessionListQuery) ([]model.CashSession, int64, error)
	ListByDay(ctx context.Context, day time.Time) ([]model.CashSession, error)
	Update(ctx context.Context, s *model.CashSession) error

	// Used inside settlement transactions — callers must pass the tx instance.
	LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	SaveTx(ctx context.Context, tx *gorm.DB, s *model.CashSession) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) DB() *gorm.DB { return r.db }

func (r *sessionRepo) Create(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

// FindOpenByRegister returns the OPEN or SUSPENDED session on a register.
func (r *sessionRepo) FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("register_id = ? AND status IN ?", registerID,
			[]model.SessionStatus{model.SessionOpen, model.SessionSuspended}).
		First(&s).Error
	return &s, err
}

func (r *sessionRepo) List(ctx context.Context, q dto.SessionListQuery) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CashSession{})
	if q.RegisterID != nil {
		db = db.Where("register_id = ?", *q.RegisterID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("opened_at DESC").
		Offset(q.Offset()).Limit(q.Limit()).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *sessionRepo) ListByDay(ctx context.Context, day time.Time) ([]model.CashSession, error) {
	var sessions []model.CashSession
	err := r.db.WithContext(ctx).
		Where("DATE(opened_at) = ?", day.Format("2006-01-02")).
		Order("opened_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) Update(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) LockByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sessionRepo) SaveTx(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	return tx.WithContext(ctx).Save(s).Error
}
