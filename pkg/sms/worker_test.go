package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
)

type fakeSender struct {
	to, body string
	err      error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.to, f.body = to, body
	return f.err
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		sendErr  error
		wantDrop bool
		wantErr  bool
	}{
		{name: "delivers", payload: `{"to":"+919876543210","body":"code 123456"}`},
		{name: "bad json is dropped", payload: `{`, wantDrop: true, wantErr: true},
		{name: "missing recipient is dropped", payload: `{"body":"x"}`, wantDrop: true, wantErr: true},
		{name: "transport failure is dropped", payload: `{"to":"+919876543210","body":"x"}`, sendErr: errors.New("503"), wantDrop: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSender{err: tt.sendErr}
			err := Handler(s)(context.Background(), []byte(tt.payload))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "+919876543210", s.to)
				assert.Equal(t, "code 123456", s.body)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantDrop, errors.Is(err, helpers.ErrDropMessage))
		})
	}
}

type permanentFailure struct{ calls int }

func (p *permanentFailure) Send(context.Context, string, string) error {
	p.calls++
	return errors.New("twilio: 21211 invalid 'To' phone number")
}

func TestHandler_RejectedNumberIsNeverRequeued(t *testing.T) {
	s := &permanentFailure{}
	h := Handler(s)
	for i := 0; i < 3; i++ {
		err := h(context.Background(), []byte(`{"to":"+910000000000","body":"code 123456"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, helpers.ErrDropMessage)
		assert.Contains(t, err.Error(), "21211")
	}
	assert.Equal(t, 3, s.calls)
}
