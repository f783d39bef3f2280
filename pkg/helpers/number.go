package helpers

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrNotNumeric = errors.New("not a number")

// Numeric is a request field that accepts either a JSON number or a string holding one.
// Conversion is deferred so callers can report which field was malformed.
type Numeric struct {
	Raw string
	Set bool
}

// NumericOf builds a Numeric from a literal value, mainly for tests and seeding.
func NumericOf(s string) Numeric { return Numeric{Raw: s, Set: true} }

func (n *Numeric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Numeric{}
		return nil
	}
	n.Set = true
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.Raw = strings.TrimSpace(s)
		return nil
	}
	n.Raw = string(b)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}

// Empty reports whether the field was absent, null or blank.
func (n Numeric) Empty() bool { return !n.Set || n.Raw == "" }

func (n Numeric) Float() (float64, error) {
	f, err := strconv.ParseFloat(n.Raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotNumeric
	}
	return f, nil
}

// Int accepts integral values only; "2" and 2.0 are fine, "2.5" is not.
func (n Numeric) Int() (int, error) {
	if i, err := strconv.Atoi(n.Raw); err == nil {
		return i, nil
	}
	f, err := n.Float()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, ErrNotNumeric
	}
	return int(f), nil
}

// FlexString is a free-text field that also accepts a bare JSON number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}
