// Package memory is an in-process user store for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*entity.User{}, now: time.Now}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func clone(u *entity.User) *entity.User {
	c := *u
	c.Favorites = slices.Clone(u.Favorites)
	c.HotelBookings = slices.Clone(u.HotelBookings)
	c.RestaurantReservations = slices.Clone(u.RestaurantReservations)
	c.TaxiBookings = slices.Clone(u.TaxiBookings)
	if u.OTPExpiry != nil {
		exp := *u.OTPExpiry
		c.OTPExpiry = &exp
	}
	return &c
}

// conflicts reports whether email or phone is used by a user other than id. Caller holds the lock.
func (r *UserRepository) conflicts(id, email, phone string) bool {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			return true
		}
		if phone != "" && u.Phone == phone {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok || r.conflicts(u.ID, u.Email, u.Phone) {
		return repository.ErrDuplicate
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByPhone(_ context.Context, phone string) (*entity.User, error) {
	if phone == "" {
		return nil, repository.ErrNotFound
	}
	return r.find(func(u *entity.User) bool { return u.Phone == phone })
}

// mutate applies fn to the stored user under the write lock.
func (r *UserRepository) mutate(id string, fn func(u *entity.User) error) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	return clone(u), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	return r.mutate(id, func(u *entity.User) error {
		if upd.Phone != "" && upd.Phone != u.Phone && r.conflicts(id, "", upd.Phone) {
			return repository.ErrDuplicate
		}
		if upd.FirstName != "" {
			u.FirstName = upd.FirstName
		}
		if upd.LastName != "" {
			u.LastName = upd.LastName
		}
		if upd.Phone != "" {
			u.Phone = upd.Phone
		}
		u.UpdatedAt = r.now().UTC()
		return nil
	})
}

func (r *UserRepository) SetOTP(_ context.Context, id, code string, expiry time.Time) error {
	_, err := r.mutate(id, func(u *entity.User) error {
		u.OTP = code
		u.OTPExpiry = &expiry
		return nil
	})
	return err
}

func (r *UserRepository) ConsumeOTP(_ context.Context, id, code string) error {
	_, err := r.mutate(id, func(u *entity.User) error {
		if u.OTP == "" || u.OTP != code {
			return repository.ErrOTPMismatch
		}
		u.OTP = ""
		u.OTPExpiry = nil
		u.PhoneVerified = true
		return nil
	})
	return err
}

func (r *UserRepository) ClearOTP(_ context.Context, id string) error {
	_, err := r.mutate(id, func(u *entity.User) error {
		u.OTP = ""
		u.OTPExpiry = nil
		return nil
	})
	return err
}

func (r *UserRepository) AddFavorite(_ context.Context, id, placeID string) ([]string, error) {
	u, err := r.mutate(id, func(u *entity.User) error {
		if !slices.Contains(u.Favorites, placeID) {
			u.Favorites = append(u.Favorites, placeID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

func (r *UserRepository) RemoveFavorite(_ context.Context, id, placeID string) ([]string, error) {
	u, err := r.mutate(id, func(u *entity.User) error {
		u.Favorites = slices.DeleteFunc(u.Favorites, func(f string) bool { return f == placeID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

func (r *UserRepository) AppendBooking(_ context.Context, userID string, kind entity.BookingKind, record any) error {
	_, err := r.mutate(userID, func(u *entity.User) error {
		switch rec := record.(type) {
		case entity.HotelBooking:
			u.HotelBookings = append(u.HotelBookings, rec)
		case entity.RestaurantReservation:
			u.RestaurantReservations = append(u.RestaurantReservations, rec)
		case entity.TaxiBooking:
			u.TaxiBookings = append(u.TaxiBookings, rec)
		default:
			return fmt.Errorf("unsupported booking record %T for kind %s", record, kind)
		}
		return nil
	})
	return err
}
