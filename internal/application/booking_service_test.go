package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/infrastructure/memory"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
	mailtpl "github.com/oksasatya/tourism-booking-api/pkg/mailer/templates"
)

type fakeIndex struct {
	mu      sync.Mutex
	docs    []entity.BookingDocument
	err     error
	lastQ   string
	lastUID string
	size    int
}

func (f *fakeIndex) IndexBooking(_ context.Context, doc entity.BookingDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeIndex) SearchBookings(_ context.Context, userID, q string, size int) ([]entity.BookingDocument, error) {
	f.lastUID, f.lastQ, f.size = userID, q, size
	return f.docs, f.err
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) BookingCreated(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[kind]++
}

type bookingFixture struct {
	svc     *BookingService
	repo    *memory.UserRepository
	index   *fakeIndex
	mail    *fakeMail
	metrics *countingMetrics
	userID  string
	now     time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := memory.NewUserRepository()
	ctx := context.Background()
	u := &entity.User{ID: "user-1", FirstName: "Asha", LastName: "Rawat", Email: "asha@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.Create(ctx, u))

	svc := NewBookingService(r, helpers.NewDiscardLogger())
	f := &bookingFixture{svc: svc, repo: r, index: &fakeIndex{}, mail: &fakeMail{}, metrics: &countingMetrics{}, userID: u.ID, now: now}
	svc.Index = f.index
	svc.Mail = f.mail
	svc.Metrics = f.metrics
	svc.Brand = mailtpl.Brand{AppName: "Guide"}
	svc.Now = func() time.Time { return f.now }
	return f
}

func hotelInput() HotelInput {
	return HotelInput{
		HotelName: "Himalayan Retreat",
		CheckIn:   "2026-12-20",
		CheckOut:  "2026-12-23",
		Rooms:     helpers.NumericOf("2"),
		Guests:    helpers.NumericOf("4"),
		Price:     helpers.NumericOf("8500.50"),
	}
}

func TestBookHotel_AppendsConfirmedRecord(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	first, err := f.svc.BookHotel(ctx, f.userID, hotelInput())
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	in := hotelInput()
	in.HotelName = "  Lakeview Nainital "
	rec, err := f.svc.BookHotel(ctx, f.userID, in)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.NotEqual(t, first.ID, rec.ID)
	assert.Equal(t, entity.StatusConfirmed, rec.Status)
	assert.Equal(t, f.now, rec.BookingDate)
	assert.Equal(t, "Lakeview Nainital", rec.HotelName)
	assert.Equal(t, 2, rec.Rooms)
	assert.Equal(t, 4, rec.Guests)
	assert.InDelta(t, 8500.5, rec.Price, 1e-9)
	assert.Equal(t, time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), rec.CheckIn)

	list, err := f.svc.ListHotelBookings(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, *rec, list[len(list)-1])

	assert.Len(t, f.index.docs, 2)
	assert.Equal(t, f.userID, f.index.docs[1].UserID)
	assert.Equal(t, entity.KindHotel, f.index.docs[1].Kind)
	assert.Equal(t, 2, f.metrics.counts["hotel"])
	require.Len(t, f.mail.jobs, 2)
	assert.Equal(t, mailtpl.BookingConfirmation, f.mail.jobs[1].Template)
}

func TestBookHotel_Validation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*HotelInput)
		field  string
	}{
		{"missing name", func(in *HotelInput) { in.HotelName = " " }, "hotelName"},
		{"missing rooms", func(in *HotelInput) { in.Rooms = helpers.Numeric{} }, "rooms"},
		{"missing price", func(in *HotelInput) { in.Price = helpers.Numeric{} }, "price"},
		{"non numeric guests", func(in *HotelInput) { in.Guests = helpers.NumericOf("four") }, "guests"},
		{"fractional rooms", func(in *HotelInput) { in.Rooms = helpers.NumericOf("1.5") }, "rooms"},
		{"zero rooms", func(in *HotelInput) { in.Rooms = helpers.NumericOf("0") }, "rooms"},
		{"negative price", func(in *HotelInput) { in.Price = helpers.NumericOf("-1") }, "price"},
		{"bad date", func(in *HotelInput) { in.CheckIn = "20/12/2026" }, "checkIn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := hotelInput()
			tt.mutate(&in)
			_, err := f.svc.BookHotel(ctx, f.userID, in)
			var ae *Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, KindValidation, ae.Kind)
			assert.Contains(t, ae.Fields, tt.field)
		})
	}

	list, err := f.svc.ListHotelBookings(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected bookings are never stored")
	assert.Empty(t, f.index.docs)
}

func TestBookHotel_ReportsAllMissingFields(t *testing.T) {
	f := newBookingFixture(t)
	_, err := f.svc.BookHotel(context.Background(), f.userID, HotelInput{})
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Len(t, ae.Fields, 6)
}

func TestBookHotel_UnknownUser(t *testing.T) {
	f := newBookingFixture(t)
	_, err := f.svc.BookHotel(context.Background(), "ghost", hotelInput())
	assert.True(t, IsKind(err, KindNotFound))
}

func TestBookRestaurant(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	rec, err := f.svc.BookRestaurant(ctx, f.userID, RestaurantInput{
		RestaurantName: "Chotiwala",
		Date:           "2026-12-21T00:00:00Z",
		Time:           "19:30",
		Guests:         helpers.NumericOf("3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Guests)
	assert.Empty(t, rec.Cuisine)

	_, err = f.svc.BookRestaurant(ctx, f.userID, RestaurantInput{RestaurantName: "X"})
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.ElementsMatch(t, []string{"date", "time", "guests"}, keys(ae.Fields))

	list, err := f.svc.ListRestaurantBookings(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Chotiwala", list[0].RestaurantName)
}

func TestBookTaxi_OptionalFields(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	base := TaxiInput{
		PickupLocation: "Dehradun",
		DropLocation:   "Mussoorie",
		Date:           "2026-12-20",
		Time:           "08:00",
		VehicleType:    "SUV",
	}

	rec, err := f.svc.BookTaxi(ctx, f.userID, base)
	require.NoError(t, err)
	assert.Nil(t, rec.EstimatedPrice)
	assert.Empty(t, rec.Distance)

	withExtras := base
	withExtras.Distance = "35 km"
	withExtras.EstimatedPrice = helpers.NumericOf("1200")
	rec, err = f.svc.BookTaxi(ctx, f.userID, withExtras)
	require.NoError(t, err)
	require.NotNil(t, rec.EstimatedPrice)
	assert.InDelta(t, 1200.0, *rec.EstimatedPrice, 1e-9)
	assert.Equal(t, "35 km", rec.Distance)

	bad := base
	bad.EstimatedPrice = helpers.NumericOf("cheap")
	_, err = f.svc.BookTaxi(ctx, f.userID, bad)
	assert.True(t, IsKind(err, KindValidation))

	list, err := f.svc.ListTaxiBookings(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListAllBookings(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	all, err := f.svc.ListAllBookings(ctx, f.userID)
	require.NoError(t, err)
	assert.NotNil(t, all.Hotels)
	assert.NotNil(t, all.Restaurants)
	assert.NotNil(t, all.Taxis)

	_, err = f.svc.BookHotel(ctx, f.userID, hotelInput())
	require.NoError(t, err)
	all, err = f.svc.ListAllBookings(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, all.Hotels, 1)
	assert.Empty(t, all.Taxis)

	_, err = f.svc.ListAllBookings(ctx, "ghost")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestBooking_SideEffectFailuresDoNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.index.err = errors.New("es down")

	_, err := f.svc.BookHotel(context.Background(), f.userID, hotelInput())
	require.NoError(t, err)
	list, err := f.svc.ListHotelBookings(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBooking_NoMailForPlaceholderEmail(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	phoneUser := &entity.User{ID: "user-2", FirstName: "User", LastName: "3210", Email: "9876543210" + entity.PlaceholderEmailDomain, Phone: "9876543210"}
	require.NoError(t, f.repo.Create(ctx, phoneUser))

	_, err := f.svc.BookHotel(ctx, phoneUser.ID, hotelInput())
	require.NoError(t, err)
	assert.Empty(t, f.mail.jobs)
}

func TestBooking_ConcurrentAppendsAreAllKept(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.BookHotel(ctx, f.userID, hotelInput())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := f.svc.ListHotelBookings(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestSearchBookings(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.SearchBookings(ctx, f.userID, " ", 0)
	assert.True(t, IsKind(err, KindValidation))

	f.index.docs = []entity.BookingDocument{{ID: "b1", Title: "Himalayan Retreat"}}
	docs, err := f.svc.SearchBookings(ctx, f.userID, "himalayan", 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, f.userID, f.index.lastUID)
	assert.Equal(t, 10, f.index.size)

	f.svc.Index = nil
	docs, err = f.svc.SearchBookings(ctx, f.userID, "himalayan", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NotNil(t, docs)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
