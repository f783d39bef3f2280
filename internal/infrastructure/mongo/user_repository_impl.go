package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/domain/repository"
)

// bookingFields maps a booking kind to its embedded array.
var bookingFields = map[entity.BookingKind]string{
	entity.KindHotel:      "hotelBookings",
	entity.KindRestaurant: "restaurantReservations",
	entity.KindTaxi:       "taxiBookings",
}

type UserRepository struct {
	c   *mongo.Collection
	now func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{c: db.Collection(usersCollection), now: time.Now}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case isDuplicateKeyErr(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

func normalize(u *entity.User) *entity.User {
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	if u.HotelBookings == nil {
		u.HotelBookings = []entity.HotelBooking{}
	}
	if u.RestaurantReservations == nil {
		u.RestaurantReservations = []entity.RestaurantReservation{}
	}
	if u.TaxiBookings == nil {
		u.TaxiBookings = []entity.TaxiBooking{}
	}
	return u
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	doc := *normalize(u)
	_, err := r.c.InsertOne(ctx, doc)
	return mapErr(err)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var u entity.User
	if err := r.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return normalize(&u), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	if phone == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"phone": phone})
}

// findAndUpdate applies update and returns the document after modification.
func (r *UserRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (*entity.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u entity.User
	if err := r.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return normalize(&u), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	set := bson.M{"updatedAt": r.now().UTC()}
	if upd.FirstName != "" {
		set["firstName"] = upd.FirstName
	}
	if upd.LastName != "" {
		set["lastName"] = upd.LastName
	}
	if upd.Phone != "" {
		set["phone"] = upd.Phone
	}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *UserRepository) updateOne(ctx context.Context, filter, update bson.M) (*mongo.UpdateResult, error) {
	res, err := r.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, mapErr(err)
	}
	return res, nil
}

func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	res, err := r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"otp": code, "otpExpiry": expiry}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeOTP matches on the code so that only one caller can clear it.
func (r *UserRepository) ConsumeOTP(ctx context.Context, id, code string) error {
	res, err := r.updateOne(ctx,
		bson.M{"_id": id, "otp": code},
		bson.M{
			"$set":   bson.M{"phoneVerified": true, "updatedAt": r.now().UTC()},
			"$unset": bson.M{"otp": "", "otpExpiry": ""},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrOTPMismatch
	}
	return nil
}

func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	res, err := r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{"otp": "", "otpExpiry": ""}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddFavorite(ctx context.Context, id, placeID string) ([]string, error) {
	u, err := r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"favorites": placeID}})
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, id, placeID string) ([]string, error) {
	u, err := r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"favorites": placeID}})
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

func (r *UserRepository) AppendBooking(ctx context.Context, userID string, kind entity.BookingKind, record any) error {
	field, ok := bookingFields[kind]
	if !ok {
		return fmt.Errorf("unknown booking kind %q", kind)
	}
	res, err := r.updateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{field: record}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
