package service

import (
	"context"

	"github.com/google/uuid"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// StockService is the stock ledger: absolute sets and relative adjustments
// on product or variant stock, never allowing a negative result.
type StockService interface {
	AdjustProduct(ctx context.Context, userID, productID uuid.UUID, req dto.StockAdjustRequest) (*dto.StockResponse, error)
	AdjustVariant(ctx context.Context, userID, variantID uuid.UUID, req dto.StockAdjustRequest) (*dto.StockResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type stockService struct {
	repo  repository.ProductRepository
	audit AuditService
}

func NewStockService(repo repository.ProductRepository, audit AuditService) StockService {
	return &stockService{repo: repo, audit: audit}
}

// applyOp computes the new stock level, rejecting negative outcomes.
func applyOp(current int, op string, qty int) (int, error) {
	if qty < 0 {
		return 0, errs.Validation("quantity cannot be negative")
	}
	var next int
	switch op {
	case "set":
		next = qty
	case "add":
		next = current + qty
	case "remove":
		next = current - qty
	default:
		return 0, errs.Validation("unknown stock operation %q", op)
	}
	if next < 0 {
		return 0, errs.Insufficient("stock cannot go negative: have %d, remove %d", current, qty)
	}
	return next, nil
}

func (s *stockService) AdjustProduct(ctx context.Context, userID, productID uuid.UUID, req dto.StockAdjustRequest) (*dto.StockResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, errs.NotFound("product %s not found", productID)
	}
	next, err := applyOp(p.Stock, req.Op, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStock(ctx, productID, next); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditStockAdjust,
		Resource:   "product",
		ResourceID: productID.String(),
		Details:    req.Reason,
		OldData:    model.JSONMap{"stock": p.Stock},
		NewData:    model.JSONMap{"stock": next, "op": req.Op, "quantity": req.Quantity},
	})
	return &dto.StockResponse{ID: p.ID.String(), SKU: p.SKU, Stock: next}, nil
}

func (s *stockService) AdjustVariant(ctx context.Context, userID, variantID uuid.UUID, req dto.StockAdjustRequest) (*dto.StockResponse, error) {
	v, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, errs.NotFound("variant %s not found", variantID)
	}
	next, err := applyOp(v.Stock, req.Op, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVariantStock(ctx, variantID, next); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditStockAdjust,
		Resource:   "product_variant",
		ResourceID: variantID.String(),
		Details:    req.Reason,
		OldData:    model.JSONMap{"stock": v.Stock},
		NewData:    model.JSONMap{"stock": next, "op": req.Op, "quantity": req.Quantity},
	})
	return &dto.StockResponse{ID: v.ID.String(), SKU: v.SKU, Stock: next}, nil
}

func (s *stockService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("product %s not found", id)
	}
	return p, nil
}
