package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// SessionLookup is the narrow slice of the session module the registers
// module needs. Implemented by SessionService; keeps the dependency one-way.
type SessionLookup interface {
	FindActiveByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
}

type RegisterService interface {
	Create(ctx context.Context, req dto.CreateRegisterRequest) (*model.Register, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Register, error)
	List(ctx context.Context, includeInactive bool) ([]dto.RegisterWithSession, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateRegisterRequest) (*model.Register, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type registerService struct {
	repo     repository.RegisterRepository
	sessions SessionLookup
}

func NewRegisterService(repo repository.RegisterRepository, sessions SessionLookup) RegisterService {
	return &registerService{repo: repo, sessions: sessions}
}

func (s *registerService) Create(ctx context.Context, req dto.CreateRegisterRequest) (*model.Register, error) {
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, errs.Conflict("register code %q is already in use", req.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reg := &model.Register{
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
		IsMain:   req.IsMain,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	// At most one main register.
	if reg.IsMain {
		if err := s.repo.ClearMainExcept(ctx, reg.ID); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (s *registerService) Get(ctx context.Context, id uuid.UUID) (*model.Register, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("register %s not found", id)
	}
	return reg, nil
}

func (s *registerService) List(ctx context.Context, includeInactive bool) ([]dto.RegisterWithSession, error) {
	regs, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RegisterWithSession, 0, len(regs))
	for _, reg := range regs {
		item := dto.RegisterWithSession{Register: reg}
		if s.sessions != nil {
			active, err := s.sessions.FindActiveByRegister(ctx, reg.ID)
			if err != nil {
				return nil, err
			}
			item.ActiveSession = active
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *registerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateRegisterRequest) (*model.Register, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("register %s not found", id)
	}

	if req.Name != nil {
		reg.Name = *req.Name
	}
	if req.Location != nil {
		reg.Location = *req.Location
	}
	if req.IsActive != nil {
		// The main register stays active.
		if reg.IsMain && !*req.IsActive {
			return nil, errs.InvalidState("the main register cannot be deactivated")
		}
		reg.IsActive = *req.IsActive
	}
	if req.IsMain != nil {
		if reg.IsMain && !*req.IsMain {
			return nil, errs.InvalidState("demote the main register by promoting another one")
		}
		reg.IsMain = *req.IsMain
	}

	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}
	if req.IsMain != nil && *req.IsMain {
		if err := s.repo.ClearMainExcept(ctx, reg.ID); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (s *registerService) Delete(ctx context.Context, id uuid.UUID) error {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errs.NotFound("register %s not found", id)
	}
	if reg.IsMain {
		return errs.InvalidState("the main register cannot be deleted")
	}
	n, err := s.repo.CountSessions(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.Conflict("register %s has %d sessions and cannot be deleted", reg.Code, n)
	}
	return s.repo.Delete(ctx, id)
}
