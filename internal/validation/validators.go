package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// ten digits, national trunk prefix 0 first
var phonePattern = regexp.MustCompile(`^0[0-9]{9}$`)

// ±YYYYYY-MM-DD, the ISO 8601 expanded form for years outside 0000-9999
var extendedDatePattern = regexp.MustCompile(`^([+-])([0-9]{6})-([0-9]{2}-[0-9]{2})$`)

var ErrInvalidDate = errors.New("invalid calendar date")

// MaxDateForAge returns today's local calendar date minus ageLimit years as YYYY-MM-DD.
// A date-of-birth on or before this date belongs to someone at least ageLimit years old.
func MaxDateForAge(ageLimit int) string {
	return MaxDateForAgeAt(time.Now(), ageLimit)
}

// MaxDateForAgeAt is MaxDateForAge with an explicit reference instant.
// No bounds checking: negative or huge limits follow ordinary date arithmetic.
// Years outside 0000-9999 use the expanded form, e.g. "+010026-10-19" or "-000974-10-19".
func MaxDateForAgeAt(now time.Time, ageLimit int) string {
	return FormatDate(now.AddDate(-ageLimit, 0, 0))
}

// FormatDate writes t's calendar date as YYYY-MM-DD, or ±YYYYYY-MM-DD when the year needs it.
func FormatDate(t time.Time) string {
	y := t.Year()
	if y >= 0 && y <= 9999 {
		return t.Format(DateLayout)
	}

	sign := '+'
	if y < 0 {
		sign = '-'
		y = -y
	}

	return fmt.Sprintf("%c%06d-%02d-%02d", sign, y, int(t.Month()), t.Day())
}

// ParseDate reads either form FormatDate writes, in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	m := extendedDatePattern.FindStringSubmatch(s)
	if m == nil {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		return t, nil
	}

	year, _ := strconv.Atoi(m[2])
	if m[1] == "-" {
		year = -year
	}

	// year 2000 is a leap year, so Feb 29 passes here and is rechecked below
	md, err := time.ParseInLocation(DateLayout, "2000-"+m[3], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	t := time.Date(year, md.Month(), md.Day(), 0, 0, 0, 0, loc)
	if t.Day() != md.Day() {
		return time.Time{}, fmt.Errorf("%w: %q has no such day", ErrInvalidDate, s)
	}

	return t, nil
}

// IsValidPhoneNumber reports whether phone is exactly ten digits starting with 0.
// The match is on the raw string; spaces, dashes or country codes are not stripped.
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}
