package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

type CustomerService interface {
	FindOrCreate(ctx context.Context, req dto.FindOrCreateCustomerRequest) (*model.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	AdjustLoyalty(ctx context.Context, id uuid.UUID, req dto.LoyaltyAdjustRequest) (*model.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

// FindOrCreate looks a customer up by email, creating the record on first
// contact. Lookup is case-insensitive on the email.
func (s *customerService) FindOrCreate(ctx context.Context, req dto.FindOrCreateCustomerRequest) (*model.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &model.Customer{
		Email: email,
		Name:  req.Name,
		Phone: req.Phone,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("customer %s not found", id)
	}
	return c, nil
}

func (s *customerService) AdjustLoyalty(ctx context.Context, id uuid.UUID, req dto.LoyaltyAdjustRequest) (*model.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("customer %s not found", id)
	}
	if c.LoyaltyPoints+req.Points < 0 {
		return nil, errs.Insufficient("loyalty balance cannot go negative: have %d, adjust %d",
			c.LoyaltyPoints, req.Points)
	}
	if err := s.repo.AddLoyaltyPoints(ctx, id, req.Points); err != nil {
		return nil, err
	}
	c.LoyaltyPoints += req.Points
	return c, nil
}
