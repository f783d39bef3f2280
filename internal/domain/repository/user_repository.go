package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a unique key (email or phone) is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrOTPMismatch is returned by ConsumeOTP when the stored code is no longer the given one.
	ErrOTPMismatch = errors.New("otp no longer pending")
)

// UserRepository defines the persistence operations on user documents.
// Booking records are embedded in the user and can only be appended.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByPhone(ctx context.Context, phone string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error)

	// SetOTP overwrites any pending code.
	SetOTP(ctx context.Context, id, code string, expiry time.Time) error
	// ConsumeOTP clears the code and marks the phone verified only if code is still pending.
	ConsumeOTP(ctx context.Context, id, code string) error
	ClearOTP(ctx context.Context, id string) error

	AddFavorite(ctx context.Context, id, placeID string) ([]string, error)
	RemoveFavorite(ctx context.Context, id, placeID string) ([]string, error)

	// AppendBooking atomically pushes record onto the collection named by kind.
	// record is one of entity.HotelBooking, entity.RestaurantReservation or entity.TaxiBooking.
	AppendBooking(ctx context.Context, userID string, kind entity.BookingKind, record any) error
}
