// Package cache decorates a user repository with a Redis read-through cache.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/domain/repository"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
)

const DefaultTTL = 5 * time.Minute

func userKey(id string) string {
	return "user:doc:" + id
}

// genKey counts writes per user. A fill only lands if no write happened since the read began.
func genKey(id string) string {
	return "user:gen:" + id
}

var errStaleFill = errors.New("user changed during read")

// UserRepository caches GetByID and drops the entry on every write for that user.
// Redis failures degrade to the underlying store.
type UserRepository struct {
	repository.UserRepository
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewUserRepository(next repository.UserRepository, rdb redis.UniversalClient, ttl time.Duration, logger logrus.FieldLogger) *UserRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserRepository{UserRepository: next, rdb: rdb, ttl: ttl, logger: logger}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, userKey(id), &u)
	if err != nil {
		r.warn("cache read failed", err, id)
	}
	if hit {
		return &u, nil
	}
	gen, genErr := r.generation(ctx, r.rdb, id)
	got, err := r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		r.warn("cache generation read failed", genErr, id)
		return got, nil
	}
	if err := r.fill(ctx, id, gen, got); err != nil && !errors.Is(err, errStaleFill) && !errors.Is(err, redis.TxFailedErr) {
		r.warn("cache write failed", err, id)
	}
	return got, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *UserRepository) generation(ctx context.Context, rdb stringGetter, id string) (string, error) {
	gen, err := rdb.Get(ctx, genKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// fill stores u unless a writer bumped the generation after gen was read.
func (r *UserRepository) fill(ctx context.Context, id, gen string, u *entity.User) error {
	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := r.generation(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			return helpers.RedisSetJSON(ctx, p, userKey(id), u, r.ttl)
		})
		return err
	}, genKey(id))
}

// invalidate bumps the write generation and drops the cached document.
func (r *UserRepository) invalidate(ctx context.Context, id string) {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey(id))
		p.Expire(ctx, genKey(id), 2*r.ttl)
		return helpers.RedisDel(ctx, p, userKey(id))
	})
	if err != nil {
		r.warn("cache invalidate failed", err, id)
	}
}

func (r *UserRepository) warn(msg string, err error, id string) {
	if r.logger != nil {
		r.logger.WithError(err).WithField("user_id", id).Warn(msg)
	}
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	defer r.invalidate(ctx, id)
	return r.UserRepository.UpdateProfile(ctx, id, upd)
}

func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.SetOTP(ctx, id, code, expiry)
}

func (r *UserRepository) ConsumeOTP(ctx context.Context, id, code string) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.ConsumeOTP(ctx, id, code)
}

func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.ClearOTP(ctx, id)
}

func (r *UserRepository) AddFavorite(ctx context.Context, id, placeID string) ([]string, error) {
	defer r.invalidate(ctx, id)
	return r.UserRepository.AddFavorite(ctx, id, placeID)
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, id, placeID string) ([]string, error) {
	defer r.invalidate(ctx, id)
	return r.UserRepository.RemoveFavorite(ctx, id, placeID)
}

func (r *UserRepository) AppendBooking(ctx context.Context, userID string, kind entity.BookingKind, record any) error {
	defer r.invalidate(ctx, userID)
	return r.UserRepository.AppendBooking(ctx, userID, kind, record)
}
