package mailer

import (
	"context"
	"errors"
	"fmt"

	mailtpl "github.com/oksasatya/tourism-booking-api/pkg/mailer/templates"
)

// Dispatcher hands an e-mail job to whatever delivers it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job EmailJob) error
}

// Sender delivers a fully rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

var ErrEmptyJob = errors.New("email job has no recipient or content")

// Prepare renders the job template, if any, and returns the final message parts.
func Prepare(job EmailJob) (subject, text, html string, err error) {
	if job.To == "" {
		return "", "", "", ErrEmptyJob
	}
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", ErrEmptyJob
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
	}
	return subject, text, html, nil
}

// QueueDispatcher publishes jobs for cmd/email_worker.
type QueueDispatcher struct {
	Pub JSONPublisher
}

func (d QueueDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	if job.To == "" {
		return ErrEmptyJob
	}
	return d.Pub.PublishJSON(ctx, job)
}

// DirectDispatcher renders and sends in-process.
type DirectDispatcher struct {
	Sender Sender
}

func (d DirectDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	subject, text, html, err := Prepare(job)
	if err != nil {
		return err
	}
	return d.Sender.Send(ctx, job.To, subject, text, html)
}
