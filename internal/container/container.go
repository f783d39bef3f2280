package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/config"
	"github.com/oksasatya/tourism-booking-api/internal/application"
	repo "github.com/oksasatya/tourism-booking-api/internal/domain/repository"
	"github.com/oksasatya/tourism-booking-api/internal/infrastructure/metrics"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
	"github.com/oksasatya/tourism-booking-api/pkg/mailer"
)

// app-level container to share constructed components across packages.
// main sets the singletons once; the router wires modules from them.

var (
	cfg    *config.Config
	logger *logrus.Logger

	userRepo   repo.UserRepository
	jwtManager *helpers.JWTManager

	smsSender    application.SMSSender
	mail         mailer.Dispatcher
	bookingIndex application.BookingIndex
	appMetrics   *metrics.Metrics
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		return helpers.NewDiscardLogger()
	}
	return logger
}

func SetUserRepo(r repo.UserRepository) { userRepo = r }
func GetUserRepo() repo.UserRepository  { return userRepo }
func SetJWT(m *helpers.JWTManager)      { jwtManager = m }
func GetJWT() *helpers.JWTManager       { return jwtManager }

func SetSMS(s application.SMSSender) { smsSender = s }
func GetSMS() application.SMSSender  { return smsSender }

// SetMail sets the e-mail dispatcher. A nil dispatcher disables e-mail.
func SetMail(d mailer.Dispatcher) { mail = d }
func GetMail() mailer.Dispatcher  { return mail }

// SetBookingIndex sets the search index. A nil index disables search.
func SetBookingIndex(i application.BookingIndex) { bookingIndex = i }
func GetBookingIndex() application.BookingIndex  { return bookingIndex }

func SetMetrics(m *metrics.Metrics) { appMetrics = m }
func GetMetrics() *metrics.Metrics  { return appMetrics }
