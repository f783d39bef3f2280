// Package sms delivers text messages, either directly through Twilio or via a RabbitMQ queue.
package sms

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sender delivers body to a phone number in E.164 form.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Job is the queue payload consumed by cmd/sms_worker.
type Job struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

var ErrInvalidJob = errors.New("sms job needs recipient and body")

func (j Job) Validate() error {
	if strings.TrimSpace(j.To) == "" || strings.TrimSpace(j.Body) == "" {
		return ErrInvalidJob
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used in development.
type LogSender struct {
	Logger logrus.FieldLogger
}

func (s LogSender) Send(_ context.Context, to, body string) error {
	if s.Logger != nil {
		s.Logger.WithField("to", to).Info("sms (log transport): " + body)
	}
	return nil
}

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender enqueues a Job. Delivery happens in the worker.
type QueueSender struct {
	Pub JSONPublisher
}

func (s QueueSender) Send(ctx context.Context, to, body string) error {
	job := Job{To: to, Body: body}
	if err := job.Validate(); err != nil {
		return err
	}
	return s.Pub.PublishJSON(ctx, job)
}
