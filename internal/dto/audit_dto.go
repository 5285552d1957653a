package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuditListQuery struct {
	ListQuery
	ActorID  *uuid.UUID `form:"actor_id"`
	Action   string     `form:"action"`
	Resource string     `form:"resource"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}
