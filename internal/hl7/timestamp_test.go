package hl7

import (
	"math/rand"
	"testing"
	"time"
)

func TestParseTimestamp_StripsSeparators(t *testing.T) {
	got, err := ParseTimestamp("2020-01-02 03:04:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := FormatTimestamp(got, PrecisionSecond); s != "20200102030405" {
		t.Errorf("expected 20200102030405, got %q", s)
	}
}

func TestParseTimestamp_PadsShortInput(t *testing.T) {
	got, err := ParseTimestamp("20200102")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := FormatTimestamp(got, PrecisionFull); s != "20200102000000000000" {
		t.Errorf("expected day padded to midnight, got %q", s)
	}
}

func TestParseTimestamp_RejectsBadDate(t *testing.T) {
	if _, err := ParseTimestamp("20201340"); err == nil {
		t.Error("expected error for month 13")
	}
	if _, err := ParseTimestamp("2020010x"); err == nil {
		t.Error("expected error for non-digit input")
	}
}

func TestReformatTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		p    Precision
		want string
	}{
		{"20200102030405123456", PrecisionMessageTime, "20200102030405123"},
		{"20200102030405123456", PrecisionSecond, "20200102030405"},
		{"20200102030405", PrecisionMinute, "202001020304"},
		{"20200102", PrecisionDay, "20200102"},
		{"", PrecisionSecond, ""},
	}
	for _, c := range cases {
		got, err := ReformatTimestamp(c.in, c.p)
		if err != nil {
			t.Errorf("ReformatTimestamp(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ReformatTimestamp(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDetectPrecision(t *testing.T) {
	cases := []struct {
		in   string
		want Precision
	}{
		{"20200102", PrecisionDay},
		{"2020010203", PrecisionHour},
		{"202001020304", PrecisionMinute},
		{"20200102030405", PrecisionSecond},
		{"20200102030405123", PrecisionMessageTime},
		{"20200102030405123456", PrecisionFull},
	}
	for _, c := range cases {
		got, err := DetectPrecision(c.in)
		if err != nil {
			t.Errorf("DetectPrecision(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("DetectPrecision(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := DetectPrecision("202001"); err == nil {
		t.Error("expected error for 6-digit input")
	}
}

func TestValidateTimestamp(t *testing.T) {
	if err := ValidateTimestamp("20200102030405123456"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTimestamp(""); err == nil {
		t.Error("expected error for empty timestamp")
	}
	if err := ValidateTimestamp("20201340"); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestRandomDelta_StaysInWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		d := RandomDelta(rng, 5, 10)
		if d < 5*time.Minute || d > 10*time.Minute {
			t.Fatalf("delta %v outside [5m, 10m]", d)
		}
	}
}
