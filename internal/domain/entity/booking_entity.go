package entity

import "time"

// BookingKind names one of the embedded booking collections on a user.
type BookingKind string

const (
	KindHotel      BookingKind = "hotel"
	KindRestaurant BookingKind = "restaurant"
	KindTaxi       BookingKind = "taxi"
)

// StatusConfirmed is the only status a booking ever has.
const StatusConfirmed = "confirmed"

// BookingMeta holds the server-assigned part of every booking record.
type BookingMeta struct {
	ID          string    `json:"id" bson:"_id"`
	BookingDate time.Time `json:"bookingDate" bson:"bookingDate"`
	Status      string    `json:"status" bson:"status"`
}

type HotelBooking struct {
	BookingMeta `bson:",inline"`
	HotelName   string    `json:"hotelName" bson:"hotelName"`
	CheckIn     time.Time `json:"checkIn" bson:"checkIn"`
	CheckOut    time.Time `json:"checkOut" bson:"checkOut"`
	Rooms       int       `json:"rooms" bson:"rooms"`
	Guests      int       `json:"guests" bson:"guests"`
	Price       float64   `json:"price" bson:"price"`
}

type RestaurantReservation struct {
	BookingMeta    `bson:",inline"`
	RestaurantName string    `json:"restaurantName" bson:"restaurantName"`
	Date           time.Time `json:"date" bson:"date"`
	Time           string    `json:"time" bson:"time"`
	Guests         int       `json:"guests" bson:"guests"`
	Cuisine        string    `json:"cuisine,omitempty" bson:"cuisine,omitempty"`
}

type TaxiBooking struct {
	BookingMeta    `bson:",inline"`
	PickupLocation string    `json:"pickupLocation" bson:"pickupLocation"`
	DropLocation   string    `json:"dropLocation" bson:"dropLocation"`
	Date           time.Time `json:"date" bson:"date"`
	Time           string    `json:"time" bson:"time"`
	VehicleType    string    `json:"vehicleType" bson:"vehicleType"`
	Distance       string    `json:"distance,omitempty" bson:"distance,omitempty"`
	EstimatedPrice *float64  `json:"estimatedPrice,omitempty" bson:"estimatedPrice,omitempty"`
}

// Bookings groups every booking collection of one user.
type Bookings struct {
	Hotels      []HotelBooking          `json:"hotels"`
	Restaurants []RestaurantReservation `json:"restaurants"`
	Taxis       []TaxiBooking           `json:"taxis"`
}

// BookingDocument is the flattened form of a booking used for search and notifications.
type BookingDocument struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Kind        BookingKind       `json:"kind"`
	Title       string            `json:"title"`
	Status      string            `json:"status"`
	BookingDate time.Time         `json:"booking_date"`
	Date        time.Time         `json:"date"`
	Details     map[string]string `json:"details,omitempty"`
}
