package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

type SessionService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*model.CashSession, error)
	Close(ctx context.Context, id, userID uuid.UUID, req dto.CloseSessionRequest) (*model.CashSession, error)
	Suspend(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	Resume(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	RecordCashIn(ctx context.Context, id, userID uuid.UUID, req dto.CashMovementRequest) (*model.CashSession, error)
	RecordCashOut(ctx context.Context, id, userID uuid.UUID, req dto.CashMovementRequest) (*model.CashSession, error)
	Get(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	Summary(ctx context.Context, id uuid.UUID) (*dto.SessionSummary, error)
	DailySummary(ctx context.Context, day time.Time) (*dto.DailySummary, error)
	List(ctx context.Context, q dto.SessionListQuery) ([]model.CashSession, int64, error)

	// RecordSaleTx applies a settled sale to the locked session row.
	// Callers hold the row lock and own the enclosing transaction.
	RecordSaleTx(ctx context.Context, tx *gorm.DB, session *model.CashSession, total decimal.Decimal, method model.PaymentMethod) error

	// FindActiveByRegister satisfies SessionLookup for the registers module.
	FindActiveByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
}

type sessionService struct {
	repo         repository.SessionRepository
	registerRepo repository.RegisterRepository
	audit        AuditService
}

func NewSessionService(repo repository.SessionRepository, registerRepo repository.RegisterRepository, audit AuditService) SessionService {
	return &sessionService{repo: repo, registerRepo: registerRepo, audit: audit}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *sessionService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*model.CashSession, error) {
	if req.OpeningAmount.IsNegative() {
		return nil, errs.Validation("opening amount cannot be negative")
	}
	if !req.OpeningAmount.IsInteger() {
		return nil, errs.Validation("opening amount must be a whole currency amount")
	}

	reg, err := s.registerRepo.FindByID(ctx, req.RegisterID)
	if err != nil {
		return nil, errs.NotFound("register %s not found", req.RegisterID)
	}
	if !reg.IsActive {
		return nil, errs.InvalidState("register %s is inactive", reg.Code)
	}

	// At most one OPEN/SUSPENDED session per register.
	if _, err := s.repo.FindOpenByRegister(ctx, req.RegisterID); err == nil {
		return nil, errs.Conflict("register %s already has an active session", reg.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.CashSession{
		RegisterID:    req.RegisterID,
		OpenedByID:    userID,
		Status:        model.SessionOpen,
		OpeningAmount: req.OpeningAmount,
		CashIn:        decimal.Zero,
		CashOut:       decimal.Zero,
		SalesTotal:    decimal.Zero,
		Payments:      model.PaymentBreakdown{},
		Notes:         req.Notes,
		OpenedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditSessionOpen,
		Resource:   "cash_session",
		ResourceID: session.ID.String(),
		NewData:    model.JSONMap{"register_id": reg.ID.String(), "opening_amount": req.OpeningAmount.String()},
	})
	return session, nil
}

func (s *sessionService) Close(ctx context.Context, id, userID uuid.UUID, req dto.CloseSessionRequest) (*model.CashSession, error) {
	if !req.ClosingAmount.IsInteger() || req.ClosingAmount.IsNegative() {
		return nil, errs.Validation("closing amount must be a non-negative whole currency amount")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	if session.Status != model.SessionOpen {
		return nil, errs.InvalidState("session is %s, only OPEN sessions can be closed", session.Status)
	}

	expected := session.AvailableCash()
	diff := req.ClosingAmount.Sub(expected)
	now := time.Now().UTC()

	session.Status = model.SessionClosed
	session.ClosingAmount = &req.ClosingAmount
	session.ExpectedAmount = &expected
	session.Difference = &diff
	session.ClosedByID = &userID
	session.ClosedAt = &now
	if req.Notes != "" {
		session.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditSessionClose,
		Resource:   "cash_session",
		ResourceID: session.ID.String(),
		NewData: model.JSONMap{
			"closing_amount":  req.ClosingAmount.String(),
			"expected_amount": expected.String(),
			"difference":      diff.String(),
		},
	})
	return session, nil
}

func (s *sessionService) Suspend(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	if session.Status != model.SessionOpen {
		return nil, errs.InvalidState("session is %s, only OPEN sessions can be suspended", session.Status)
	}
	session.Status = model.SessionSuspended
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Resume(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	if session.Status != model.SessionSuspended {
		return nil, errs.InvalidState("session is %s, only SUSPENDED sessions can be resumed", session.Status)
	}
	session.Status = model.SessionOpen
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) RecordCashIn(ctx context.Context, id, userID uuid.UUID, req dto.CashMovementRequest) (*model.CashSession, error) {
	if !req.Amount.IsPositive() || !req.Amount.IsInteger() {
		return nil, errs.Validation("amount must be a positive whole currency amount")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	if session.Status != model.SessionOpen {
		return nil, errs.InvalidState("session is %s, cash movements require an OPEN session", session.Status)
	}

	session.CashIn = session.CashIn.Add(req.Amount)
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditCashMove,
		Resource:   "cash_session",
		ResourceID: session.ID.String(),
		Details:    req.Reason,
		NewData:    model.JSONMap{"direction": "in", "amount": req.Amount.String()},
	})
	return session, nil
}

func (s *sessionService) RecordCashOut(ctx context.Context, id, userID uuid.UUID, req dto.CashMovementRequest) (*model.CashSession, error) {
	if !req.Amount.IsPositive() || !req.Amount.IsInteger() {
		return nil, errs.Validation("amount must be a positive whole currency amount")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	if session.Status != model.SessionOpen {
		return nil, errs.InvalidState("session is %s, cash movements require an OPEN session", session.Status)
	}

	// Cannot take out more cash than the till holds.
	if req.Amount.GreaterThan(session.AvailableCash()) {
		return nil, errs.Insufficient("cash out %s exceeds available cash %s",
			req.Amount.String(), session.AvailableCash().String())
	}

	session.CashOut = session.CashOut.Add(req.Amount)
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditCashMove,
		Resource:   "cash_session",
		ResourceID: session.ID.String(),
		Details:    req.Reason,
		NewData:    model.JSONMap{"direction": "out", "amount": req.Amount.String()},
	})
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	return session, nil
}

func (s *sessionService) Summary(ctx context.Context, id uuid.UUID) (*dto.SessionSummary, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("session %s not found", id)
	}
	return &dto.SessionSummary{
		SessionID:     session.ID,
		RegisterID:    session.RegisterID,
		Status:        session.Status,
		OpeningAmount: session.OpeningAmount,
		CashIn:        session.CashIn,
		CashOut:       session.CashOut,
		ExpectedCash:  session.AvailableCash(),
		SalesCount:    session.SalesCount,
		SalesTotal:    session.SalesTotal,
		Payments:      session.Payments,
		OpenedAt:      session.OpenedAt,
	}, nil
}

func (s *sessionService) DailySummary(ctx context.Context, day time.Time) (*dto.DailySummary, error) {
	sessions, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	summary := &dto.DailySummary{
		Date:       day.Format("2006-01-02"),
		SalesTotal: decimal.Zero,
		CashIn:     decimal.Zero,
		CashOut:    decimal.Zero,
		TotalDiff:  decimal.Zero,
	}
	for i := range sessions {
		sess := &sessions[i]
		summary.SessionCount++
		if sess.Status == model.SessionOpen || sess.Status == model.SessionSuspended {
			summary.OpenCount++
		}
		summary.SalesCount += sess.SalesCount
		summary.SalesTotal = summary.SalesTotal.Add(sess.SalesTotal)
		summary.CashIn = summary.CashIn.Add(sess.CashIn)
		summary.CashOut = summary.CashOut.Add(sess.CashOut)
		if sess.Difference != nil {
			summary.TotalDiff = summary.TotalDiff.Add(*sess.Difference)
		}
	}
	return summary, nil
}

func (s *sessionService) List(ctx context.Context, q dto.SessionListQuery) ([]model.CashSession, int64, error) {
	return s.repo.List(ctx, q)
}

// RecordSaleTx mutates the already-locked session in place and persists it
// through the caller's transaction: sales counters, cash-in for CASH tenders,
// and the per-method payment breakdown (first entry matching the method wins).
func (s *sessionService) RecordSaleTx(ctx context.Context, tx *gorm.DB, session *model.CashSession, total decimal.Decimal, method model.PaymentMethod) error {
	session.SalesCount++
	session.SalesTotal = session.SalesTotal.Add(total)
	if method == model.PayCash {
		session.CashIn = session.CashIn.Add(total)
	}
	session.Payments = session.Payments.Upsert(string(method), total)
	return s.repo.SaveTx(ctx, tx, session)
}

func (s *sessionService) FindActiveByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindOpenByRegister(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}
