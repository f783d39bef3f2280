package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/oksasatya/tourism-booking-api/config"
	"github.com/oksasatya/tourism-booking-api/internal/application"
	repo "github.com/oksasatya/tourism-booking-api/internal/domain/repository"
	mongoinfra "github.com/oksasatya/tourism-booking-api/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/tourism-booking-api/internal/infrastructure/postgres"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
)

// seed creates a demo account and books one hotel for it, exercising the same
// service path as the HTTP API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var users repo.UserRepository
	switch cfg.DBDriver {
	case "mongo":
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatalf("mongo: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		db := client.Database(cfg.MongoDB)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			logger.Fatalf("indexes: %v", err)
		}
		users = mongoinfra.NewUserRepository(db)
	case "postgres":
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, MinConns: 1, MaxConnLife: cfg.DBMaxConnLife, AppName: "tourism-seed"})
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		users = pginfra.NewUserRepository(pool)
	default:
		logger.Fatalf("seed needs a persistent store, DB_DRIVER=%s", cfg.DBDriver)
	}

	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTRememberTTL, cfg.JWTOTPTTL)
	auth := application.NewAuthService(users, jwt, nil, logger)
	booking := application.NewBookingService(users, logger)

	email := "demo@tourist.guide"
	password := "password123"

	res, err := auth.Register(ctx, application.RegisterInput{
		FirstName: "Demo",
		LastName:  "Traveller",
		Email:     email,
		Password:  password,
	})
	var userID string
	switch {
	case err == nil:
		userID = res.User.ID
	case application.IsKind(err, application.KindConflict):
		u, gErr := users.GetByEmail(ctx, email)
		if gErr != nil {
			logger.Fatalf("lookup existing demo user: %v", gErr)
		}
		userID = u.ID
	default:
		logger.Fatalf("register: %v", err)
	}

	rec, err := booking.BookHotel(ctx, userID, application.HotelInput{
		HotelName: "Himalayan Retreat, Mussoorie",
		CheckIn:   "2026-12-20",
		CheckOut:  "2026-12-23",
		Rooms:     helpers.NumericOf("1"),
		Guests:    helpers.NumericOf("2"),
		Price:     helpers.NumericOf("8500"),
	})
	if err != nil {
		var ae *application.Error
		if errors.As(err, &ae) {
			logger.Fatalf("book hotel: %s %v", ae.Kind, ae.Fields)
		}
		logger.Fatalf("book hotel: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)
	fmt.Printf("seeded hotel booking: id=%s hotel=%s status=%s\n", rec.ID, rec.HotelName, rec.Status)
}
