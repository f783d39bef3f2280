package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidMobile(t *testing.T) {
	tests := map[string]bool{
		"9876543210":    true,
		"6000000000":    true,
		"5876543210":    false,
		"987654321":     false,
		"98765432101":   false,
		"+919876543210": false,
		"98765 43210":   false,
		"":              false,
	}
	for phone, want := range tests {
		assert.Equal(t, want, ValidMobile(phone), phone)
	}
}

func TestGenOTPCode(t *testing.T) {
	six := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		require.Regexp(t, six, code)
	}
}
