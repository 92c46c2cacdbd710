// Package hl7 provides the low-level building blocks for HL7 v2 message
// text: tri-state field values, delimiter-aware joining with trailing-field
// trimming, reserved-character escaping, and the variable-precision
// timestamp grammar used throughout SS-MIX2 storage.
package hl7

// InapplicableToken is the two-character quote token HL7 reserves for
// fields whose value is legitimately not definable (e.g. the dose unit of
// a topical ointment). It is a visible `""`, never an empty string.
const InapplicableToken = `""`

type valueKind int

const (
	kindAbsent valueKind = iota
	kindPresent
	kindInapplicable
)

// Value is a tri-state HL7 field value. The zero Value is Absent.
// Distinguishing Absent (field not collected) from Inapplicable (field
// explicitly has no sensible value) matters because the wire encodings
// differ: Absent renders as an empty slot, Inapplicable as `""`.
type Value struct {
	kind valueKind
	s    string
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// Present returns a populated value. Present("") is still Present; use
// FromRaw when empty input should mean Absent.
func Present(s string) Value { return Value{kind: kindPresent, s: s} }

// Inapplicable returns the explicit not-applicable value.
func Inapplicable() Value { return Value{kind: kindInapplicable} }

// FromRaw maps a raw string onto the tri-state: "" becomes Absent, the
// `""` token becomes Inapplicable, anything else is Present.
func FromRaw(s string) Value {
	switch s {
	case "":
		return Absent()
	case InapplicableToken:
		return Inapplicable()
	}
	return Present(s)
}

// IsAbsent reports whether the value is absent.
func (v Value) IsAbsent() bool { return v.kind == kindAbsent }

// IsPresent reports whether the value carries data.
func (v Value) IsPresent() bool { return v.kind == kindPresent }

// IsInapplicable reports whether the value is the explicit `""` token.
func (v Value) IsInapplicable() bool { return v.kind == kindInapplicable }

// String renders the value for the wire: Absent as the empty slot,
// Inapplicable as the verbatim `""` token.
func (v Value) String() string {
	switch v.kind {
	case kindPresent:
		return v.s
	case kindInapplicable:
		return InapplicableToken
	}
	return ""
}
