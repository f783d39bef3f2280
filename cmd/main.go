package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/config"
	"github.com/oksasatya/tourism-booking-api/internal/application"
	"github.com/oksasatya/tourism-booking-api/internal/container"
	repo "github.com/oksasatya/tourism-booking-api/internal/domain/repository"
	"github.com/oksasatya/tourism-booking-api/internal/infrastructure/cache"
	"github.com/oksasatya/tourism-booking-api/internal/infrastructure/memory"
	"github.com/oksasatya/tourism-booking-api/internal/infrastructure/metrics"
	mongoinfra "github.com/oksasatya/tourism-booking-api/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/tourism-booking-api/internal/infrastructure/postgres"
	"github.com/oksasatya/tourism-booking-api/internal/infrastructure/search"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
	"github.com/oksasatya/tourism-booking-api/internal/router"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
	"github.com/oksasatya/tourism-booking-api/pkg/mailer"
	"github.com/oksasatya/tourism-booking-api/pkg/sms"
	"github.com/oksasatya/tourism-booking-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			Release:     cfg.AppName,
		}); err != nil {
			logger.WithError(err).Warn("sentry init failed")
		} else {
			closers = append(closers, func() { sentry.Flush(2 * time.Second) })
		}
	}

	users, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.DBDriver, err)
	}
	closers = append(closers, closeStore)

	if cfg.CacheEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; cache reads will fall through")
		}
		users = cache.NewUserRepository(users, rdb, cfg.CacheTTL, logger)
	}

	m := metrics.New("tourism")

	smsSender, closeSMS, err := openSMS(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init sms transport: %v", err)
	}
	closers = append(closers, closeSMS)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepo(users)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTRememberTTL, cfg.JWTOTPTTL))
	container.SetSMS(smsSender)
	container.SetMetrics(m)

	if d, closeMail := openMail(cfg, logger); d != nil {
		container.SetMail(d)
		closers = append(closers, closeMail)
	}
	if idx := openSearch(ctx, cfg, logger); idx != nil {
		container.SetBookingIndex(idx)
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.Metrics(m))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// openStore builds the user repository selected by DB_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.UserRepository, func(), error) {
	switch cfg.DBDriver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	case "mongo":
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return mongoinfra.NewUserRepository(db), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
			AppName:     "tourism-api",
		})
		if err != nil {
			return nil, nil, err
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil
	}
}

func openSMS(cfg *config.Config, logger *logrus.Logger) (application.SMSSender, func(), error) {
	switch cfg.SMSTransport {
	case "twilio":
		s, err := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "queue":
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQSMSQueue)
		if err != nil {
			return nil, nil, err
		}
		return sms.QueueSender{Pub: pub}, pub.Close, nil
	default:
		return sms.LogSender{Logger: logger}, func() {}, nil
	}
}

// openMail returns nil when sending is disabled. With RabbitMQ configured jobs go to
// the e-mail worker, otherwise they are sent inline through Mailgun.
func openMail(cfg *config.Config, logger *logrus.Logger) (mailer.Dispatcher, func()) {
	if !cfg.MailSendEnabled {
		return nil, nil
	}
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("email queue unavailable; e-mail disabled")
			return nil, nil
		}
		return mailer.QueueDispatcher{Pub: pub}, pub.Close
	}
	if !mailer.Configured(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender) {
		logger.Warn("MAIL_SEND_ENABLED without Mailgun credentials; e-mail disabled")
		return nil, nil
	}
	return mailer.DirectDispatcher{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)}, func() {}
}

// openSearch returns nil when Elasticsearch is not configured or unreachable.
func openSearch(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *search.BookingIndex {
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; booking search disabled")
		return nil
	}
	if es == nil {
		return nil
	}
	if err := helpers.PingES(ctx, es); err != nil {
		logger.WithError(err).Warn("elasticsearch unreachable; booking search disabled")
		return nil
	}
	idx := search.NewBookingIndex(es, cfg.ESBookingsIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		logger.WithError(err).Warn("ensure bookings index failed")
	}
	return idx
}
