package postgres

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/domain/repository"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
)

func setupRepo(t *testing.T) *UserRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dir, err := filepath.Abs("../../../db/migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(dsn, dir, helpers.NewDiscardLogger()))

	pool, err := NewPool(ctx, dsn, PoolOptions{MaxConns: 4, MinConns: 1, MaxConnLife: time.Hour})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewUserRepository(pool)
}

func newUser(email, phone string) *entity.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.User{
		ID:           uuid.NewString(),
		FirstName:    "Asha",
		LastName:     "Rawat",
		Email:        email,
		Phone:        phone,
		PasswordHash: "$2a$10$hash",
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	u := newUser("asha@example.com", "9876543210")
	require.NoError(t, r.Create(ctx, u))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, "9876543210", got.Phone)
	assert.Empty(t, got.OTP)
	assert.Nil(t, got.OTPExpiry)
	assert.Empty(t, got.HotelBookings)

	byEmail, err := r.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byPhone, err := r.GetByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byPhone.ID)

	_, err = r.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_UniqueEmailAndSparsePhone(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("a@example.com", "")))
	require.NoError(t, r.Create(ctx, newUser("b@example.com", "")), "users without phone must not collide")

	err := r.Create(ctx, newUser("a@example.com", ""))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, r.Create(ctx, newUser("c@example.com", "9000000001")))
	err = r.Create(ctx, newUser("d@example.com", "9000000001"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	other, err := r.GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	_, err = r.UpdateProfile(ctx, other.ID, entity.ProfileUpdate{Phone: "9000000001"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_OTPLifecycle(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	u := newUser("otp@example.com", "9123456789")
	require.NoError(t, r.Create(ctx, u))

	exp := time.Now().Add(10 * time.Minute).UTC()
	require.NoError(t, r.SetOTP(ctx, u.ID, "123456", exp))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456", got.OTP)
	require.NotNil(t, got.OTPExpiry)

	assert.ErrorIs(t, r.ConsumeOTP(ctx, u.ID, "000000"), repository.ErrOTPMismatch)
	require.NoError(t, r.ConsumeOTP(ctx, u.ID, "123456"))
	assert.ErrorIs(t, r.ConsumeOTP(ctx, u.ID, "123456"), repository.ErrOTPMismatch)

	got, err = r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.PhoneVerified)
	assert.Empty(t, got.OTP)
	assert.Nil(t, got.OTPExpiry)

	require.NoError(t, r.SetOTP(ctx, u.ID, "654321", exp))
	require.NoError(t, r.ClearOTP(ctx, u.ID))
	got, err = r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.OTP)
}

func TestUserRepository_FavoritesAreASet(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	u := newUser("fav@example.com", "")
	require.NoError(t, r.Create(ctx, u))

	favs, err := r.AddFavorite(ctx, u.ID, "nainital")
	require.NoError(t, err)
	favs, err = r.AddFavorite(ctx, u.ID, "nainital")
	require.NoError(t, err)
	assert.Equal(t, []string{"nainital"}, favs)

	favs, err = r.RemoveFavorite(ctx, u.ID, "nainital")
	require.NoError(t, err)
	assert.Empty(t, favs)

	_, err = r.AddFavorite(ctx, uuid.NewString(), "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ConcurrentAppendsAreNotLost(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	u := newUser("book@example.com", "")
	require.NoError(t, r.Create(ctx, u))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := entity.HotelBooking{
				BookingMeta: entity.BookingMeta{ID: uuid.NewString(), BookingDate: time.Now().UTC(), Status: entity.StatusConfirmed},
				HotelName:   "Mall Road Inn",
				Rooms:       1,
				Guests:      2,
			}
			assert.NoError(t, r.AppendBooking(ctx, u.ID, entity.KindHotel, rec))
		}()
	}
	wg.Wait()

	taxi := entity.TaxiBooking{
		BookingMeta:    entity.BookingMeta{ID: uuid.NewString(), BookingDate: time.Now().UTC(), Status: entity.StatusConfirmed},
		PickupLocation: "Dehradun",
		DropLocation:   "Mussoorie",
		VehicleType:    "sedan",
	}
	require.NoError(t, r.AppendBooking(ctx, u.ID, entity.KindTaxi, taxi))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.HotelBookings, n)
	require.Len(t, got.TaxiBookings, 1)
	assert.Equal(t, taxi.ID, got.TaxiBookings[0].ID)
	assert.Nil(t, got.TaxiBookings[0].EstimatedPrice)

	assert.ErrorIs(t, r.AppendBooking(ctx, uuid.NewString(), entity.KindTaxi, taxi), repository.ErrNotFound)
}
