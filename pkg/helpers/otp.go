package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"regexp"
)

var mobileRe = regexp.MustCompile(`^[6-9]\d{9}$`)

// ValidMobile reports whether phone is a ten digit Indian mobile number.
func ValidMobile(phone string) bool {
	return mobileRe.MatchString(phone)
}

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b)
	return fmt.Sprintf("%06d", n%1000000), nil
}
