package router

import (
	"github.com/oksasatya/tourism-booking-api/internal/application"
	"github.com/oksasatya/tourism-booking-api/internal/container"
	handlers "github.com/oksasatya/tourism-booking-api/internal/interface/http"
	"github.com/oksasatya/tourism-booking-api/internal/router/modules"
	mailtpl "github.com/oksasatya/tourism-booking-api/pkg/mailer/templates"
)

// Services bundles the application services the HTTP modules depend on.
type Services struct {
	Auth    *application.AuthService
	Booking *application.BookingService
}

func brand() mailtpl.Brand {
	c := container.GetConfig()
	if c == nil {
		return mailtpl.Brand{}
	}
	return mailtpl.Brand{AppName: c.AppName, CompanyName: c.CompanyName, SupportURL: c.SupportURL}
}

// BuildServices constructs the services from the container singletons.
func BuildServices() Services {
	logger := container.GetLogger()
	users := container.GetUserRepo()
	m := container.GetMetrics()

	auth := application.NewAuthService(users, container.GetJWT(), container.GetSMS(), logger)
	auth.Mail = container.GetMail()
	auth.Brand = brand()
	if m != nil {
		auth.Metrics = m
	}
	if c := container.GetConfig(); c != nil {
		auth.OTPTTL = c.OTPTTL
		auth.CountryCode = c.SMSCountryCode
		auth.ExposeOTP = c.IsDevelopment()
	}

	booking := application.NewBookingService(users, logger)
	booking.Index = container.GetBookingIndex()
	booking.Mail = container.GetMail()
	booking.Brand = brand()
	if m != nil {
		booking.Metrics = m
	}
	return Services{Auth: auth, Booking: booking}
}

// InitModules wires all application modules and registers them with the router registry.
// This function should be called once during application startup.
func InitModules(r *Registry) {
	RegisterServices(r, BuildServices())
	if c := container.GetConfig(); c != nil && c.DebugMetricsEnabled && container.GetMetrics() != nil {
		r.AddRoot(modules.NewDebugModule(container.GetMetrics().Handler()))
	}
}

// RegisterServices adds the HTTP modules for svc to r.
func RegisterServices(r *Registry, svc Services) {
	logger := container.GetLogger()
	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, logger), svc.Auth))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Auth, logger), svc.Auth))
	r.Add(modules.NewBookingModule(handlers.NewBookingHandler(svc.Booking, logger), svc.Auth))
}
