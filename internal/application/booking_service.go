package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	repo "github.com/oksasatya/tourism-booking-api/internal/domain/repository"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
	"github.com/oksasatya/tourism-booking-api/pkg/mailer"
	mailtpl "github.com/oksasatya/tourism-booking-api/pkg/mailer/templates"
)

// BookingIndex is the optional full-text index of booking records.
type BookingIndex interface {
	IndexBooking(ctx context.Context, doc entity.BookingDocument) error
	SearchBookings(ctx context.Context, userID, q string, size int) ([]entity.BookingDocument, error)
}

// BookingMetrics counts appended bookings. *metrics.Metrics satisfies it.
type BookingMetrics interface {
	BookingCreated(kind string)
}

type BookingService struct {
	Repo    repo.UserRepository
	Index   BookingIndex
	Mail    mailer.Dispatcher
	Brand   mailtpl.Brand
	Metrics BookingMetrics
	Logger  logrus.FieldLogger

	Now func() time.Time
}

func NewBookingService(r repo.UserRepository, logger logrus.FieldLogger) *BookingService {
	return &BookingService{Repo: r, Logger: logger, Now: time.Now}
}

type HotelInput struct {
	HotelName string
	CheckIn   string
	CheckOut  string
	Rooms     helpers.Numeric
	Guests    helpers.Numeric
	Price     helpers.Numeric
}

type RestaurantInput struct {
	RestaurantName string
	Date           string
	Time           string
	Guests         helpers.Numeric
	Cuisine        string
}

type TaxiInput struct {
	PickupLocation string
	DropLocation   string
	Date           string
	Time           string
	VehicleType    string
	Distance       string
	EstimatedPrice helpers.Numeric
}

// bookingKind describes one booking collection: which inputs are required,
// how a record is built, and how it is summarised for search and e-mail.
type bookingKind[In any, Rec any] struct {
	kind    entity.BookingKind
	missing func(In) []string
	build   func(In, entity.BookingMeta) (Rec, error)
	doc     func(Rec) entity.BookingDocument
}

var hotelKind = bookingKind[HotelInput, entity.HotelBooking]{
	kind: entity.KindHotel,
	missing: func(in HotelInput) []string {
		return missing(
			field{"hotelName", in.HotelName == ""},
			field{"checkIn", in.CheckIn == ""},
			field{"checkOut", in.CheckOut == ""},
			field{"rooms", in.Rooms.Empty()},
			field{"guests", in.Guests.Empty()},
			field{"price", in.Price.Empty()},
		)
	},
	build: func(in HotelInput, meta entity.BookingMeta) (entity.HotelBooking, error) {
		rec := entity.HotelBooking{BookingMeta: meta, HotelName: in.HotelName}
		var err error
		if rec.CheckIn, err = parseDate("checkIn", in.CheckIn); err != nil {
			return rec, err
		}
		if rec.CheckOut, err = parseDate("checkOut", in.CheckOut); err != nil {
			return rec, err
		}
		if rec.Rooms, err = positiveInt("rooms", in.Rooms); err != nil {
			return rec, err
		}
		if rec.Guests, err = positiveInt("guests", in.Guests); err != nil {
			return rec, err
		}
		if rec.Price, err = nonNegativeFloat("price", in.Price); err != nil {
			return rec, err
		}
		return rec, nil
	},
	doc: func(r entity.HotelBooking) entity.BookingDocument {
		return entity.BookingDocument{
			ID: r.ID, Kind: entity.KindHotel, Title: r.HotelName, Status: r.Status,
			BookingDate: r.BookingDate, Date: r.CheckIn,
			Details: map[string]string{
				"checkIn":  r.CheckIn.Format(helpers.DateLayout),
				"checkOut": r.CheckOut.Format(helpers.DateLayout),
				"rooms":    strconv.Itoa(r.Rooms),
				"guests":   strconv.Itoa(r.Guests),
				"price":    formatFloat(r.Price),
			},
		}
	},
}

var restaurantKind = bookingKind[RestaurantInput, entity.RestaurantReservation]{
	kind: entity.KindRestaurant,
	missing: func(in RestaurantInput) []string {
		return missing(
			field{"restaurantName", in.RestaurantName == ""},
			field{"date", in.Date == ""},
			field{"time", in.Time == ""},
			field{"guests", in.Guests.Empty()},
		)
	},
	build: func(in RestaurantInput, meta entity.BookingMeta) (entity.RestaurantReservation, error) {
		rec := entity.RestaurantReservation{
			BookingMeta:    meta,
			RestaurantName: in.RestaurantName,
			Time:           in.Time,
			Cuisine:        in.Cuisine,
		}
		var err error
		if rec.Date, err = parseDate("date", in.Date); err != nil {
			return rec, err
		}
		if rec.Guests, err = positiveInt("guests", in.Guests); err != nil {
			return rec, err
		}
		return rec, nil
	},
	doc: func(r entity.RestaurantReservation) entity.BookingDocument {
		details := map[string]string{
			"date":   r.Date.Format(helpers.DateLayout),
			"time":   r.Time,
			"guests": strconv.Itoa(r.Guests),
		}
		if r.Cuisine != "" {
			details["cuisine"] = r.Cuisine
		}
		return entity.BookingDocument{
			ID: r.ID, Kind: entity.KindRestaurant, Title: r.RestaurantName, Status: r.Status,
			BookingDate: r.BookingDate, Date: r.Date, Details: details,
		}
	},
}

var taxiKind = bookingKind[TaxiInput, entity.TaxiBooking]{
	kind: entity.KindTaxi,
	missing: func(in TaxiInput) []string {
		return missing(
			field{"pickupLocation", in.PickupLocation == ""},
			field{"dropLocation", in.DropLocation == ""},
			field{"date", in.Date == ""},
			field{"time", in.Time == ""},
			field{"vehicleType", in.VehicleType == ""},
		)
	},
	build: func(in TaxiInput, meta entity.BookingMeta) (entity.TaxiBooking, error) {
		rec := entity.TaxiBooking{
			BookingMeta:    meta,
			PickupLocation: in.PickupLocation,
			DropLocation:   in.DropLocation,
			Time:           in.Time,
			VehicleType:    in.VehicleType,
			Distance:       in.Distance,
		}
		var err error
		if rec.Date, err = parseDate("date", in.Date); err != nil {
			return rec, err
		}
		if !in.EstimatedPrice.Empty() {
			p, err := nonNegativeFloat("estimatedPrice", in.EstimatedPrice)
			if err != nil {
				return rec, err
			}
			rec.EstimatedPrice = &p
		}
		return rec, nil
	},
	doc: func(r entity.TaxiBooking) entity.BookingDocument {
		details := map[string]string{
			"date":        r.Date.Format(helpers.DateLayout),
			"time":        r.Time,
			"vehicleType": r.VehicleType,
		}
		if r.Distance != "" {
			details["distance"] = r.Distance
		}
		if r.EstimatedPrice != nil {
			details["estimatedPrice"] = formatFloat(*r.EstimatedPrice)
		}
		return entity.BookingDocument{
			ID: r.ID, Kind: entity.KindTaxi, Title: r.PickupLocation + " to " + r.DropLocation,
			Status: r.Status, BookingDate: r.BookingDate, Date: r.Date, Details: details,
		}
	},
}

func (s *BookingService) BookHotel(ctx context.Context, userID string, in HotelInput) (*entity.HotelBooking, error) {
	in.HotelName = strings.TrimSpace(in.HotelName)
	return appendBooking(ctx, s, hotelKind, userID, in)
}

func (s *BookingService) BookRestaurant(ctx context.Context, userID string, in RestaurantInput) (*entity.RestaurantReservation, error) {
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	in.Time = strings.TrimSpace(in.Time)
	in.Cuisine = strings.TrimSpace(in.Cuisine)
	return appendBooking(ctx, s, restaurantKind, userID, in)
}

func (s *BookingService) BookTaxi(ctx context.Context, userID string, in TaxiInput) (*entity.TaxiBooking, error) {
	in.PickupLocation = strings.TrimSpace(in.PickupLocation)
	in.DropLocation = strings.TrimSpace(in.DropLocation)
	in.Time = strings.TrimSpace(in.Time)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	in.Distance = strings.TrimSpace(in.Distance)
	return appendBooking(ctx, s, taxiKind, userID, in)
}

// appendBooking is the single write path shared by every booking kind.
func appendBooking[In any, Rec any](ctx context.Context, s *BookingService, d bookingKind[In, Rec], userID string, in In) (*Rec, error) {
	if m := d.missing(in); len(m) > 0 {
		return nil, MissingFields(m...)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	meta := entity.BookingMeta{
		ID:          uuid.NewString(),
		BookingDate: now().UTC(),
		Status:      entity.StatusConfirmed,
	}
	rec, err := d.build(in, meta)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AppendBooking(ctx, userID, d.kind, rec); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("append booking", err)
	}

	doc := d.doc(rec)
	doc.UserID = userID
	s.afterBooking(ctx, doc)
	return &rec, nil
}

// afterBooking runs the side effects of a stored booking. None of them can fail the request.
func (s *BookingService) afterBooking(ctx context.Context, doc entity.BookingDocument) {
	fields := logrus.Fields{"user_id": doc.UserID, "booking_id": doc.ID, "kind": doc.Kind}
	if s.Metrics != nil {
		s.Metrics.BookingCreated(string(doc.Kind))
	}
	if s.Index != nil {
		if err := s.Index.IndexBooking(ctx, doc); err != nil {
			helpers.LogError(s.Logger, "booking index failed", err, fields)
		}
	}
	if s.Mail != nil {
		u, err := s.Repo.GetByID(ctx, doc.UserID)
		if err != nil {
			helpers.LogError(s.Logger, "load user for confirmation failed", err, fields)
			return
		}
		if !u.HasDeliverableEmail() {
			return
		}
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailtpl.BookingConfirmation,
			Data: mailtpl.NewBookingConfirmationData(s.Brand, u.FullName(), u.Email,
				mailtpl.WithBooking(string(doc.Kind), doc.ID, doc.Title, doc.BookingDate, doc.Details)),
		}
		if err := s.Mail.Dispatch(ctx, job); err != nil {
			helpers.LogError(s.Logger, "booking confirmation dispatch failed", err, fields)
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(fields).Info("booking created")
	}
}

func (s *BookingService) loadUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("load user", err)
	}
	return u, nil
}

func (s *BookingService) ListHotelBookings(ctx context.Context, userID string) ([]entity.HotelBooking, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(u.HotelBookings), nil
}

func (s *BookingService) ListRestaurantBookings(ctx context.Context, userID string) ([]entity.RestaurantReservation, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(u.RestaurantReservations), nil
}

func (s *BookingService) ListTaxiBookings(ctx context.Context, userID string) ([]entity.TaxiBooking, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(u.TaxiBookings), nil
}

func (s *BookingService) ListAllBookings(ctx context.Context, userID string) (*entity.Bookings, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entity.Bookings{
		Hotels:      nonNil(u.HotelBookings),
		Restaurants: nonNil(u.RestaurantReservations),
		Taxis:       nonNil(u.TaxiBookings),
	}, nil
}

// SearchBookings queries the caller's own bookings. It returns nothing when no index is configured.
func (s *BookingService) SearchBookings(ctx context.Context, userID, q string, size int) ([]entity.BookingDocument, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, MissingFields("q")
	}
	if s.Index == nil {
		return []entity.BookingDocument{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	docs, err := s.Index.SearchBookings(ctx, userID, q, size)
	if err != nil {
		return nil, InternalError("search bookings", err)
	}
	return nonNil(docs), nil
}

type field struct {
	name    string
	missing bool
}

func missing(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if f.missing {
			out = append(out, f.name)
		}
	}
	return out
}

func parseDate(name, v string) (time.Time, error) {
	t, err := helpers.ParseDate(v)
	if err != nil {
		return time.Time{}, InvalidField(name, "must be a date (YYYY-MM-DD)")
	}
	return t, nil
}

func positiveInt(name string, n helpers.Numeric) (int, error) {
	v, err := n.Int()
	if err != nil {
		return 0, InvalidField(name, "must be a whole number")
	}
	if v < 1 {
		return 0, InvalidField(name, "must be at least 1")
	}
	return v, nil
}

func nonNegativeFloat(name string, n helpers.Numeric) (float64, error) {
	v, err := n.Float()
	if err != nil {
		return 0, InvalidField(name, "must be a number")
	}
	if v < 0 {
		return 0, InvalidField(name, "must not be negative")
	}
	return v, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
