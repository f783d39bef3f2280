package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
)

// Handler returns the queue handler used by cmd/sms_worker.
// Every failure drops the message: malformed jobs and delivery errors alike.
// OTP delivery is never retried.
func Handler(s Sender) helpers.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var job Job
		if err := json.Unmarshal(body, &job); err != nil {
			return fmt.Errorf("%w: decode sms job: %v", helpers.ErrDropMessage, err)
		}
		if err := job.Validate(); err != nil {
			return fmt.Errorf("%w: %v", helpers.ErrDropMessage, err)
		}
		if err := s.Send(ctx, job.To, job.Body); err != nil {
			return fmt.Errorf("%w: send sms: %w", helpers.ErrDropMessage, err)
		}
		return nil
	}
}
