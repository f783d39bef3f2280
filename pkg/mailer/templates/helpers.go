package templates

import (
	"time"
)

// Brand carries the sender identity shown in every e-mail.
type Brand struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

// WithBooking fills the booking summary block.
func WithBooking(kind, id, title string, at time.Time, details map[string]string) Option {
	return func(d *EmailData) {
		d.BookingKind = kind
		d.BookingID = id
		d.BookingTitle = title
		d.BookingDate = at.UTC().Format("02 January 2006, 15:04 MST")
		d.BookingDetails = details
	}
}

func NewBaseEmailData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewBookingConfirmationData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, BookingConfirmation, name, email, opts...))
}

func NewWelcomeData(b Brand, name, email string) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, email))
}
