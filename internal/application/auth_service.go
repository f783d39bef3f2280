package application

import (
	"context"
	"errors"
	"fmt"
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

const (
	DefaultOTPTTL      = 10 * time.Minute
	DefaultCountryCode = "+91"
)

// SMSSender delivers text messages. A failed delivery never fails an OTP request.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// OTPMetrics records issued codes. *metrics.Metrics satisfies it.
type OTPMetrics interface {
	OTPIssued(delivered bool)
}

type AuthService struct {
	Repo    repo.UserRepository
	JWT     *helpers.JWTManager
	SMS     SMSSender
	Mail    mailer.Dispatcher
	Brand   mailtpl.Brand
	Metrics OTPMetrics
	Logger  logrus.FieldLogger

	OTPTTL      time.Duration
	CountryCode string
	// ExposeOTP echoes the generated code in the response. Development only.
	ExposeOTP bool

	Now    func() time.Time
	GenOTP func() (string, error)
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, sms SMSSender, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		Repo:        r,
		JWT:         jwt,
		SMS:         sms,
		Logger:      logger,
		OTPTTL:      DefaultOTPTTL,
		CountryCode: DefaultCountryCode,
		Now:         time.Now,
		GenOTP:      helpers.GenOTPCode,
	}
}

// PublicUser is the user view returned by register and login.
type PublicUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// PhoneUser is the user view returned by OTP login.
type PhoneUser struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	PhoneVerified bool   `json:"phoneVerified"`
}

// Profile is the full user view without the password hash and the pending OTP.
type Profile struct {
	ID                     string                         `json:"id"`
	FirstName              string                         `json:"firstName"`
	LastName               string                         `json:"lastName"`
	Email                  string                         `json:"email"`
	Phone                  string                         `json:"phone,omitempty"`
	PhoneVerified          bool                           `json:"phoneVerified"`
	Favorites              []string                       `json:"favorites"`
	HotelBookings          []entity.HotelBooking          `json:"hotelBookings"`
	RestaurantReservations []entity.RestaurantReservation `json:"restaurantReservations"`
	TaxiBookings           []entity.TaxiBooking           `json:"taxiBookings"`
	CreatedAt              time.Time                      `json:"createdAt"`
	UpdatedAt              time.Time                      `json:"updatedAt"`
}

func toPublic(u *entity.User) PublicUser {
	return PublicUser{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func toProfile(u *entity.User) *Profile {
	return &Profile{
		ID:                     u.ID,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Email:                  u.Email,
		Phone:                  u.Phone,
		PhoneVerified:          u.PhoneVerified,
		Favorites:              nonNil(u.Favorites),
		HotelBookings:          nonNil(u.HotelBookings),
		RestaurantReservations: nonNil(u.RestaurantReservations),
		TaxiBookings:           nonNil(u.TaxiBookings),
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// AuthResult carries a freshly issued token and the user view.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      PublicUser
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	var missing []string
	if in.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if in.LastName == "" {
		missing = append(missing, "lastName")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, MissingFields(missing...)
	}
	if strings.HasSuffix(in.Email, entity.PlaceholderEmailDomain) {
		return nil, InvalidField("email", "this domain is reserved for phone sign-in")
	}

	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ConflictError("Email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, InternalError("lookup email", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, InternalError("hash password", err)
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ConflictError("Email or phone already registered")
		}
		return nil, InternalError("create user", err)
	}

	token, exp, err := s.JWT.Generate(u.ID, s.JWT.TTL)
	if err != nil {
		return nil, InternalError("sign token", err)
	}
	s.sendWelcome(ctx, u)
	return &AuthResult{Token: token, ExpiresAt: exp, User: toPublic(u)}, nil
}

func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil || !u.HasDeliverableEmail() {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.Brand, u.FullName(), u.Email),
	}
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		helpers.LogError(s.Logger, "welcome email dispatch failed", err, logrus.Fields{"user_id": u.ID})
	}
}

const invalidCredentials = "Invalid email or password"

// Login answers unknown email, password-less account and wrong password identically.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ValidationError("Please provide email and password")
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, AuthError(invalidCredentials)
		}
		return nil, InternalError("lookup email", err)
	}
	if !u.HasPassword() || !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, AuthError(invalidCredentials)
	}
	ttl := s.JWT.TTL
	if remember {
		ttl = s.JWT.RememberTTL
	}
	token, exp, err := s.JWT.Generate(u.ID, ttl)
	if err != nil {
		return nil, InternalError("sign token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: toPublic(u)}, nil
}

// OTPResult is returned by RequestOTP and ResendOTP.
type OTPResult struct {
	Message   string `json:"message"`
	ExpiresIn string `json:"expiresIn"`
	OTP       string `json:"otp,omitempty"`
}

func otpMessage(code, validFor string) string {
	return fmt.Sprintf("Your Uttarakhand Tourist Guide OTP is: %s. Valid for %s. Do not share this code.", code, validFor)
}

// describeTTL renders d in the largest whole unit, e.g. "10 minutes" or "1 hour".
func describeTTL(d time.Duration) string {
	n, unit := int64(d/time.Second), "second"
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		n, unit = int64(d/time.Hour), "hour"
	case d >= time.Minute && d%time.Minute == 0:
		n, unit = int64(d/time.Minute), "minute"
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// RequestOTP issues a code for phone, creating a phone-only account on first use.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) (*OTPResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ValidationError("Phone number is required")
	}
	if !helpers.ValidMobile(phone) {
		return nil, InvalidField("phone", "must be a 10-digit Indian mobile number")
	}

	code, expiry, err := s.newCode()
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if err := s.Repo.SetOTP(ctx, u.ID, code, expiry); err != nil {
			return nil, InternalError("store otp", err)
		}
	case errors.Is(err, repo.ErrNotFound):
		if err := s.createPhoneUser(ctx, phone, code, expiry); err != nil {
			return nil, err
		}
	default:
		return nil, InternalError("lookup phone", err)
	}

	delivered := s.deliver(ctx, phone, code)
	msg := "OTP sent successfully"
	if delivered {
		msg = "OTP sent to your phone"
	}
	return s.otpResult(msg, code), nil
}

// ResendOTP overwrites the pending code of an existing phone account.
func (s *AuthService) ResendOTP(ctx context.Context, phone string) (*OTPResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ValidationError("Phone number is required")
	}
	u, err := s.Repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("lookup phone", err)
	}
	code, expiry, err := s.newCode()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetOTP(ctx, u.ID, code, expiry); err != nil {
		return nil, InternalError("store otp", err)
	}
	delivered := s.deliver(ctx, phone, code)
	msg := "OTP resent successfully"
	if delivered {
		msg = "OTP resent to your phone"
	}
	return s.otpResult(msg, code), nil
}

func (s *AuthService) newCode() (string, time.Time, error) {
	gen := s.GenOTP
	if gen == nil {
		gen = helpers.GenOTPCode
	}
	code, err := gen()
	if err != nil {
		return "", time.Time{}, InternalError("generate otp", err)
	}
	return code, s.now().UTC().Add(s.otpTTL()), nil
}

func (s *AuthService) otpTTL() time.Duration {
	if s.OTPTTL <= 0 {
		return DefaultOTPTTL
	}
	return s.OTPTTL
}

func (s *AuthService) createPhoneUser(ctx context.Context, phone, code string, expiry time.Time) error {
	now := s.now().UTC()
	u := &entity.User{
		ID:        uuid.NewString(),
		FirstName: "User",
		LastName:  phone[len(phone)-4:],
		Email:     phone + entity.PlaceholderEmailDomain,
		Phone:     phone,
		OTP:       code,
		OTPExpiry: &expiry,
		Favorites: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.Repo.Create(ctx, u)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrDuplicate) {
		return InternalError("create phone user", err)
	}
	// A concurrent request created the account first.
	existing, gErr := s.Repo.GetByPhone(ctx, phone)
	if errors.Is(gErr, repo.ErrNotFound) {
		// the placeholder e-mail belongs to an account with another phone
		return ConflictError("Phone sign-in address already registered")
	}
	if gErr != nil {
		return InternalError("lookup phone", gErr)
	}
	if err := s.Repo.SetOTP(ctx, existing.ID, code, expiry); err != nil {
		return InternalError("store otp", err)
	}
	return nil
}

func (s *AuthService) deliver(ctx context.Context, phone, code string) bool {
	delivered := false
	if s.SMS != nil {
		err := s.SMS.Send(ctx, s.countryCode()+phone, otpMessage(code, describeTTL(s.otpTTL())))
		if err != nil {
			helpers.LogError(s.Logger, "sms delivery failed", err, logrus.Fields{"phone": phone})
		} else {
			delivered = true
		}
	}
	if s.Metrics != nil {
		s.Metrics.OTPIssued(delivered)
	}
	return delivered
}

func (s *AuthService) countryCode() string {
	if s.CountryCode == "" {
		return DefaultCountryCode
	}
	return s.CountryCode
}

func (s *AuthService) otpResult(msg, code string) *OTPResult {
	res := &OTPResult{Message: msg, ExpiresIn: describeTTL(s.otpTTL())}
	if s.ExposeOTP {
		res.OTP = code
	}
	return res
}

// OTPLogin is the result of a successful OTP verification.
type OTPLogin struct {
	Token     string
	ExpiresAt time.Time
	User      PhoneUser
}

// VerifyOTP consumes the pending code. The stored code is cleared on success and on expiry.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, otp string) (*OTPLogin, error) {
	phone = strings.TrimSpace(phone)
	otp = strings.TrimSpace(otp)
	if phone == "" || otp == "" {
		return nil, ValidationError("Phone number and OTP are required")
	}
	u, err := s.Repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("lookup phone", err)
	}
	if u.OTP == "" || u.OTPExpiry == nil {
		return nil, ValidationError("No OTP found. Please request a new OTP")
	}
	if s.now().After(*u.OTPExpiry) {
		if err := s.Repo.ClearOTP(ctx, u.ID); err != nil {
			helpers.LogError(s.Logger, "clear expired otp failed", err, logrus.Fields{"user_id": u.ID})
		}
		return nil, ExpiredError("OTP expired. Please request a new OTP")
	}
	if u.OTP != otp {
		return nil, AuthError("Invalid OTP")
	}
	if err := s.Repo.ConsumeOTP(ctx, u.ID, otp); err != nil {
		if errors.Is(err, repo.ErrOTPMismatch) {
			// Lost the race with a concurrent verification or resend.
			return nil, ValidationError("No OTP found. Please request a new OTP")
		}
		return nil, InternalError("consume otp", err)
	}

	token, exp, err := s.JWT.Generate(u.ID, s.JWT.OTPTTL)
	if err != nil {
		return nil, InternalError("sign token", err)
	}
	return &OTPLogin{
		Token:     token,
		ExpiresAt: exp,
		User: PhoneUser{
			ID:            u.ID,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			Phone:         u.Phone,
			PhoneVerified: true,
		},
	}, nil
}

// VerifyToken returns the user id embedded in a valid token.
func (s *AuthService) VerifyToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", AuthError("No token provided")
	}
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return "", AuthError("Invalid token")
	}
	return claims.UserID, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("load user", err)
	}
	return toProfile(u), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd entity.ProfileUpdate) (*Profile, error) {
	upd.FirstName = strings.TrimSpace(upd.FirstName)
	upd.LastName = strings.TrimSpace(upd.LastName)
	upd.Phone = strings.TrimSpace(upd.Phone)
	if upd.Phone != "" && !helpers.ValidMobile(upd.Phone) {
		return nil, InvalidField("phone", "must be a 10-digit Indian mobile number")
	}

	u, err := s.Repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, NotFoundError("User not found")
		case errors.Is(err, repo.ErrDuplicate):
			return nil, ConflictError("Phone number already in use")
		}
		return nil, InternalError("update profile", err)
	}
	return toProfile(u), nil
}

func (s *AuthService) AddFavorite(ctx context.Context, userID, placeID string) ([]string, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, MissingFields("placeId")
	}
	favs, err := s.Repo.AddFavorite(ctx, userID, placeID)
	return favoritesResult(favs, err)
}

func (s *AuthService) RemoveFavorite(ctx context.Context, userID, placeID string) ([]string, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, MissingFields("placeId")
	}
	favs, err := s.Repo.RemoveFavorite(ctx, userID, placeID)
	return favoritesResult(favs, err)
}

func favoritesResult(favs []string, err error) ([]string, error) {
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, InternalError("update favorites", err)
	}
	return nonNil(favs), nil
}
