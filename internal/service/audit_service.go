package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
	"retailpos/internal/worker"
)

// AuditEntry is the enqueue payload for one audit record.
type AuditEntry struct {
	ActorID    *uuid.UUID        `json:"actor_id,omitempty"`
	Action     model.AuditAction `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id"`
	Details    string            `json:"details,omitempty"`
	OldData    model.JSONMap     `json:"old_data,omitempty"`
	NewData    model.JSONMap     `json:"new_data,omitempty"`
}

// AuditService is a fire-and-forget sink. Record never returns an error:
// audit loss is logged, never allowed to fail the business operation.
type AuditService interface {
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, q dto.AuditListQuery) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo       repository.AuditRepository
	dispatcher *worker.Dispatcher
}

func NewAuditService(repo repository.AuditRepository, dispatcher *worker.Dispatcher) AuditService {
	return &auditService{repo: repo, dispatcher: dispatcher}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	if s.dispatcher == nil {
		return
	}
	payload := map[string]any{
		"action":      string(entry.Action),
		"resource":    entry.Resource,
		"resource_id": entry.ResourceID,
	}
	if entry.ActorID != nil {
		payload["actor_id"] = entry.ActorID.String()
	}
	if entry.Details != "" {
		payload["details"] = entry.Details
	}
	if entry.OldData != nil {
		payload["old_data"] = entry.OldData
	}
	if entry.NewData != nil {
		payload["new_data"] = entry.NewData
	}
	if err := s.dispatcher.EnqueueAudit(ctx, payload); err != nil {
		log.Warn().Err(err).
			Str("action", string(entry.Action)).
			Str("resource", entry.Resource).
			Msg("audit enqueue failed, entry dropped")
	}
}

func (s *auditService) List(ctx context.Context, q dto.AuditListQuery) ([]model.AuditLog, int64, error) {
	return s.repo.List(ctx, q)
}
