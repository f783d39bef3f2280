package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager handles generation and validation of bearer tokens.
// Tokens carry only the user id and an expiry and are never revoked before they expire.
type JWTManager struct {
	Secret      []byte
	TTL         time.Duration
	RememberTTL time.Duration
	OTPTTL      time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, ttl, rememberTTL, otpTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:      []byte(secret),
		TTL:         ttl,
		RememberTTL: rememberTTL,
		OTPTTL:      otpTTL,
		now:         time.Now,
	}
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// Generate signs a token for userID valid for ttl.
func (m *JWTManager) Generate(userID string, ttl time.Duration) (string, time.Time, error) {
	exp := m.clock().Add(ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse validates signature and expiry and returns the claims.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.clock))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
