package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brand = Brand{AppName: "Tourist Guide", CompanyName: "Uttarakhand Tourist Guide", SupportURL: "https://help.example"}

func TestRender_BookingConfirmation(t *testing.T) {
	at := time.Date(2026, 12, 1, 9, 30, 0, 0, time.UTC)
	data := NewBookingConfirmationData(brand, "Asha Rawat", "asha@example.com",
		WithBooking("hotel", "bk-1", "Himalayan Retreat", at, map[string]string{"rooms": "2"}))

	subject, text, html, err := Render(BookingConfirmation, data)
	require.NoError(t, err)
	assert.Equal(t, "Tourist Guide: your hotel booking is confirmed", subject)
	assert.Contains(t, text, "Hello Asha Rawat")
	assert.Contains(t, text, `"Himalayan Retreat"`)
	assert.Contains(t, text, "Reference: bk-1")
	assert.Contains(t, text, "Rooms: 2")
	assert.Contains(t, text, "01 December 2026, 09:30 UTC")
	assert.Contains(t, text, "https://help.example")
	assert.Contains(t, html, "Himalayan Retreat")
}

func TestRender_WelcomeDefaults(t *testing.T) {
	subject, text, _, err := Render(Welcome, NewWelcomeData(Brand{}, "", "new@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Tourist Guide", subject)
	assert.Contains(t, text, "Hello traveller")
	assert.Contains(t, text, "new@example.com")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("password_reset", map[string]any{})
	assert.Error(t, err)
}

func TestRender_EscapesHTML(t *testing.T) {
	data := NewBookingConfirmationData(brand, "<script>x</script>", "a@example.com",
		WithBooking("taxi", "bk-2", "A & B", time.Now(), nil))
	_, _, html, err := Render(BookingConfirmation, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>x</script>")
}
