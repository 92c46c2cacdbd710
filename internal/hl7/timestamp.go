package hl7

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// The storage guideline writes timestamps in a variable-precision grammar,
// YYYYMMDD[HH[MM[SS[.S...]]]]. Internally every timestamp is normalized to
// the 20-digit full-precision base form YYYYMMDDHHMMSS followed by six
// fractional-second digits, and re-rendered at the precision each field
// requires.

// BaseLen is the length of the full-precision base form.
const BaseLen = 20

// MessageTimeLen is the longest precision the guideline requires in
// message headers and file names; longer renderings are truncated to it.
const MessageTimeLen = 17

// Precision selects how many digits a rendered timestamp carries.
type Precision int

const (
	// PrecisionDay renders YYYYMMDD.
	PrecisionDay Precision = iota
	// PrecisionHour renders YYYYMMDDHH.
	PrecisionHour
	// PrecisionMinute renders YYYYMMDDHHMM.
	PrecisionMinute
	// PrecisionSecond renders YYYYMMDDHHMMSS.
	PrecisionSecond
	// PrecisionMessageTime renders YYYYMMDDHHMMSSFFF, the 17-digit form
	// used for message times and file names.
	PrecisionMessageTime
	// PrecisionFull renders the 20-digit internal base form.
	PrecisionFull
)

func (p Precision) length() int {
	switch p {
	case PrecisionDay:
		return 8
	case PrecisionHour:
		return 10
	case PrecisionMinute:
		return 12
	case PrecisionSecond:
		return 14
	case PrecisionMessageTime:
		return MessageTimeLen
	}
	return BaseLen
}

// cleanTimestamp strips the separator characters tolerated on input.
func cleanTimestamp(s string) string {
	r := strings.NewReplacer("/", "", " ", "", ":", "", ".", "", "-", "")
	return r.Replace(s)
}

// ParseTimestamp converts any timestamp string accepted by the storage
// format into a time.Time. Separators are stripped, the digit string is
// right-padded with zeros to the full-precision base form, and the result
// is parsed strictly (an out-of-range month or day is an error).
func ParseTimestamp(s string) (time.Time, error) {
	digits := cleanTimestamp(s)
	if len(digits) > BaseLen {
		digits = digits[:BaseLen]
	} else {
		digits += strings.Repeat("0", BaseLen-len(digits))
	}
	t, err := time.Parse("20060102150405", digits[:14])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	micros, err := strconv.Atoi(digits[14:])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: fractional seconds: %w", s, err)
	}
	return t.Add(time.Duration(micros) * time.Microsecond), nil
}

// FormatTimestamp renders t at the requested precision.
func FormatTimestamp(t time.Time, p Precision) string {
	base := t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
	return base[:p.length()]
}

// ReformatTimestamp parses a timestamp of any supported input shape and
// re-renders it at the requested precision. The empty string passes
// through, matching optional-field semantics.
func ReformatTimestamp(s string, p Precision) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t, p), nil
}

// DetectPrecision reports the precision level a digit string carries.
// Fractional digits beyond seconds map onto PrecisionMessageTime or
// PrecisionFull depending on length.
func DetectPrecision(s string) (Precision, error) {
	digits := cleanTimestamp(s)
	switch n := len(digits); {
	case n == 8:
		return PrecisionDay, nil
	case n == 10:
		return PrecisionHour, nil
	case n == 12:
		return PrecisionMinute, nil
	case n == 14:
		return PrecisionSecond, nil
	case n > 14 && n <= MessageTimeLen:
		return PrecisionMessageTime, nil
	case n > MessageTimeLen && n <= BaseLen:
		return PrecisionFull, nil
	}
	return 0, fmt.Errorf("timestamp %q: unsupported precision (%d digits)", s, len(digits))
}

// ValidateTimestamp strictly checks that s is a well-formed timestamp at
// one of the supported precision levels: the digit count must match a
// precision and parsing then re-rendering must reproduce the digits.
func ValidateTimestamp(s string) error {
	if s == "" {
		return fmt.Errorf("timestamp is empty")
	}
	p, err := DetectPrecision(s)
	if err != nil {
		return err
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	digits := cleanTimestamp(s)
	rendered := FormatTimestamp(t, p)[:len(digits)]
	if rendered != digits {
		return fmt.Errorf("timestamp %q: not canonical (reads back as %q)", s, rendered)
	}
	return nil
}

// RandomDelta draws a uniformly random duration between the given minute
// bounds, at millisecond granularity.
func RandomDelta(rng *rand.Rand, minMinutes, maxMinutes int) time.Duration {
	lo := int64(minMinutes) * 60 * 1000
	hi := int64(maxMinutes) * 60 * 1000
	ms := lo + rng.Int63n(hi-lo)
	return time.Duration(ms) * time.Millisecond
}
