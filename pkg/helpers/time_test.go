package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-12-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2026-12-20T10:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 20, 5, 0, 0, 0, time.UTC), got)

	got, err = ParseDate(" 2026-12-20T10:30:00.123Z ")
	require.NoError(t, err)
	assert.Equal(t, 123*time.Millisecond, time.Duration(got.Nanosecond()))

	for _, bad := range []string{"", "20/12/2026", "2026-13-01", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}
