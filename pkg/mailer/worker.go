package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
)

// Handler returns the queue handler used by cmd/email_worker.
// Failed jobs are dropped, send failures included; mail is never retried.
func Handler(s Sender) helpers.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var job EmailJob
		if err := json.Unmarshal(body, &job); err != nil {
			return fmt.Errorf("%w: decode email job: %v", helpers.ErrDropMessage, err)
		}
		subject, text, html, err := Prepare(job)
		if err != nil {
			return fmt.Errorf("%w: %v", helpers.ErrDropMessage, err)
		}
		if err := s.Send(ctx, job.To, subject, text, html); err != nil {
			return fmt.Errorf("%w: send email: %w", helpers.ErrDropMessage, err)
		}
		return nil
	}
}
