package entity

import (
	"strings"
	"time"
)

// PlaceholderEmailDomain marks e-mail addresses generated for phone-only accounts.
const PlaceholderEmailDomain = "@phone.login"

// User is the aggregate root for the user domain. Bookings live inside it as
// append-only embedded records.
//
// PasswordHash is a bcrypt hash and is empty for accounts created through OTP login.
type User struct {
	ID            string     `json:"id" bson:"_id"`
	FirstName     string     `json:"first_name" bson:"firstName"`
	LastName      string     `json:"last_name" bson:"lastName"`
	Email         string     `json:"email" bson:"email"`
	Phone         string     `json:"phone,omitempty" bson:"phone,omitempty"`
	PhoneVerified bool       `json:"phone_verified" bson:"phoneVerified"`
	PasswordHash  string     `json:"password_hash,omitempty" bson:"password,omitempty"`
	OTP           string     `json:"otp,omitempty" bson:"otp,omitempty"`
	OTPExpiry     *time.Time `json:"otp_expiry,omitempty" bson:"otpExpiry,omitempty"`
	Favorites     []string   `json:"favorites" bson:"favorites"`

	HotelBookings          []HotelBooking          `json:"hotel_bookings" bson:"hotelBookings"`
	RestaurantReservations []RestaurantReservation `json:"restaurant_reservations" bson:"restaurantReservations"`
	TaxiBookings           []TaxiBooking           `json:"taxi_bookings" bson:"taxiBookings"`

	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// HasPassword reports whether the account can log in with email and password.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// HasDeliverableEmail is false for the placeholder addresses of phone-only accounts.
func (u *User) HasDeliverableEmail() bool {
	return u.Email != "" && !strings.HasSuffix(u.Email, PlaceholderEmailDomain)
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ProfileUpdate carries the mutable profile fields. Empty values are left untouched.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
}
