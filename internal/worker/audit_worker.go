package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// auditPayload mirrors the enqueue shape used by the audit sink.
type auditPayload struct {
	ActorID    string        `json:"actor_id"`
	Action     string        `json:"action"`
	Resource   string        `json:"resource"`
	ResourceID string        `json:"resource_id"`
	Details    string        `json:"details"`
	OldData    model.JSONMap `json:"old_data"`
	NewData    model.JSONMap `json:"new_data"`
}

// NewAuditHandler persists queued audit entries. A malformed payload is
// dropped with a log line rather than retried forever.
func NewAuditHandler(repo repository.AuditRepository) Handler {
	return func(ctx context.Context, job Job) error {
		var p auditPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			log.Error().Err(err).Msg("audit worker: malformed payload, dropping")
			return nil
		}

		entry := &model.AuditLog{
			Action:     model.AuditAction(p.Action),
			Resource:   p.Resource,
			ResourceID: p.ResourceID,
			Details:    p.Details,
			OldData:    p.OldData,
			NewData:    p.NewData,
			CreatedAt:  time.Now().UTC(),
		}
		if p.ActorID != "" {
			if id, err := uuid.Parse(p.ActorID); err == nil {
				entry.ActorID = &id
			}
		}
		return repo.Create(ctx, entry)
	}
}
