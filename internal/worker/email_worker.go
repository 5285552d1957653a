package worker

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"retailpos/internal/infra"
)

// emailPayload carries everything the mailer needs; the enqueuer resolves
// recipient and attachment ahead of time so the worker stays stateless.
type emailPayload struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
}

// NewEmailHandler sends queued mail (invoice PDFs, overdue reminders)
// through the SMTP mailer.
func NewEmailHandler(mailer *infra.Mailer) Handler {
	return func(ctx context.Context, job Job) error {
		var p emailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			log.Error().Err(err).Msg("email worker: malformed payload, dropping")
			return nil
		}
		if p.To == "" {
			log.Warn().Msg("email worker: payload without recipient, dropping")
			return nil
		}
		return mailer.Send(p.To, p.Subject, p.Body, p.Attachment)
	}
}
