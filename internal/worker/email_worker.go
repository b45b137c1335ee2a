package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Sends restock alerts and forecast reports via SMTP.

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"pricecast/internal/infra"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	AttachPath string `json:"attach_path,omitempty"`
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends the email, attaching a file when one is referenced.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	if err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.AttachPath); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
}
