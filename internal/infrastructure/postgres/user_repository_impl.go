package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id::text, first_name, last_name, email, COALESCE(phone, ''), phone_verified,
	COALESCE(password_hash, ''), COALESCE(otp, ''), otp_expiry, favorites,
	hotel_bookings, restaurant_reservations, taxi_bookings, created_at, updated_at`

// bookingColumns maps a booking kind to its JSONB column.
var bookingColumns = map[entity.BookingKind]string{
	entity.KindHotel:      "hotel_bookings",
	entity.KindRestaurant: "restaurant_reservations",
	entity.KindTaxi:       "taxi_bookings",
}

type UserRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, now: time.Now}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var hotels, restaurants, taxis []byte
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PhoneVerified,
		&u.PasswordHash, &u.OTP, &u.OTPExpiry, &u.Favorites,
		&hotels, &restaurants, &taxis, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(hotels, &u.HotelBookings); err != nil {
		return nil, fmt.Errorf("decode hotel_bookings: %w", err)
	}
	if err := json.Unmarshal(restaurants, &u.RestaurantReservations); err != nil {
		return nil, fmt.Errorf("decode restaurant_reservations: %w", err)
	}
	if err := json.Unmarshal(taxis, &u.TaxiBookings); err != nil {
		return nil, fmt.Errorf("decode taxi_bookings: %w", err)
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone, phone_verified,
			password_hash, otp, otp_expiry, favorites, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12)
	`, u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.PhoneVerified,
		u.PasswordHash, u.OTP, u.OTPExpiry, nonNilStrings(u.Favorites), u.CreatedAt, u.UpdatedAt)
	return mapErr(err)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	if phone == "" {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET
			first_name = COALESCE(NULLIF($2, ''), first_name),
			last_name  = COALESCE(NULLIF($3, ''), last_name),
			phone      = COALESCE(NULLIF($4, ''), phone),
			updated_at = $5
		WHERE id = $1
		RETURNING `+userColumns,
		id, upd.FirstName, upd.LastName, upd.Phone, r.now().UTC()))
}

// exec runs a single-row update and reports ErrNotFound when nothing matched.
func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return r.exec(ctx, `UPDATE users SET otp = $2, otp_expiry = $3 WHERE id = $1`, id, code, expiry)
}

func (r *UserRepository) ConsumeOTP(ctx context.Context, id, code string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	err := r.exec(ctx, `
		UPDATE users SET otp = NULL, otp_expiry = NULL, phone_verified = TRUE, updated_at = $3
		WHERE id = $1 AND otp = $2
	`, id, code, r.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrOTPMismatch
	}
	return err
}

func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return r.exec(ctx, `UPDATE users SET otp = NULL, otp_expiry = NULL WHERE id = $1`, id)
}

func (r *UserRepository) favorites(ctx context.Context, sql, id, placeID string) ([]string, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	var favs []string
	if err := r.pool.QueryRow(ctx, sql, id, placeID).Scan(&favs); err != nil {
		return nil, mapErr(err)
	}
	return nonNilStrings(favs), nil
}

func (r *UserRepository) AddFavorite(ctx context.Context, id, placeID string) ([]string, error) {
	return r.favorites(ctx, `
		UPDATE users SET favorites = CASE
			WHEN $2::text = ANY(favorites) THEN favorites
			ELSE array_append(favorites, $2::text)
		END
		WHERE id = $1
		RETURNING favorites
	`, id, placeID)
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, id, placeID string) ([]string, error) {
	return r.favorites(ctx, `
		UPDATE users SET favorites = array_remove(favorites, $2::text)
		WHERE id = $1
		RETURNING favorites
	`, id, placeID)
}

// AppendBooking concatenates the record onto the JSONB array in one statement,
// so concurrent appends for the same user never overwrite each other.
func (r *UserRepository) AppendBooking(ctx context.Context, userID string, kind entity.BookingKind, record any) error {
	col, ok := bookingColumns[kind]
	if !ok {
		return fmt.Errorf("unknown booking kind %q", kind)
	}
	if !validID(userID) {
		return repository.ErrNotFound
	}
	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode booking: %w", err)
	}
	return r.exec(ctx, `UPDATE users SET `+col+` = `+col+` || jsonb_build_array($2::jsonb) WHERE id = $1`, userID, string(b))
}
