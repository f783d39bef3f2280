package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func TestRabbitConsumer_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		redelivered bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "ack on success", wantAck: true},
		{name: "drop", err: fmt.Errorf("%w: bad json", ErrDropMessage)},
		{name: "requeue", err: errors.New("smtp down"), wantRequeue: true},
		{name: "second failure is dropped", err: errors.New("smtp down"), redelivered: true},
		{name: "redelivered success is acked", redelivered: true, wantAck: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ackRecorder{}
			c := &RabbitConsumer{Queue: "q", Logger: NewDiscardLogger()}
			c.dispatch(context.Background(), amqp.Delivery{Acknowledger: rec, DeliveryTag: 1, Redelivered: tt.redelivered},
				func(context.Context, []byte) error { return tt.err })

			assert.Equal(t, tt.wantAck, rec.acked)
			assert.Equal(t, !tt.wantAck, rec.nacked)
			assert.Equal(t, tt.wantRequeue, rec.requeue)
		})
	}
}
