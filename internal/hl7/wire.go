package hl7

import "strings"

// HL7 v2 delimiters. Fixed for every message this system emits; they are
// also advertised in MSH-1/MSH-2.
const (
	FieldSep     = "|"
	ComponentSep = "^"
	RepeatSep    = "~"
	EscapeChar   = `\`
	SubCompSep   = "&"

	// EncodingChars is the MSH-2 literal.
	EncodingChars = `^~\&`
)

// SegmentSep joins segments into one message body. SS-MIX2 files use a
// bare LF between segment lines.
const SegmentSep = "\n"

// JoinFields renders one segment line from ordinally positioned values.
// Every slot keeps its position, then trailing empty slots are trimmed
// from the end of the line. fields[0] is the segment kind code and is
// never trimmed.
func JoinFields(fields []Value) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	line := strings.Join(parts, FieldSep)
	line = strings.TrimRight(line, FieldSep)
	return line
}

// Component joins sub-parts with the component separator, but collapses to
// the empty string when every sub-part is empty. Trailing empty sub-parts
// are preserved because component position is meaningful (e.g. XCN name
// type codes sit at fixed component ordinals).
func Component(parts ...string) string {
	all := true
	for _, p := range parts {
		if p != "" {
			all = false
			break
		}
	}
	if all {
		return ""
	}
	return strings.Join(parts, ComponentSep)
}

// Subcomponent joins sub-parts with the subcomponent separator, collapsing
// to empty when all parts are empty.
func Subcomponent(parts ...string) string {
	all := true
	for _, p := range parts {
		if p != "" {
			all = false
			break
		}
	}
	if all {
		return ""
	}
	return strings.Join(parts, SubCompSep)
}

// Repeat joins non-empty repetitions with the repetition separator.
func Repeat(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, RepeatSep)
}

// CodedElement builds the common code^text^system triple, empty when all
// three parts are empty.
func CodedElement(code, text, system string) string {
	return Component(code, text, system)
}

// ZeroFill left-pads a digit string with zeros to width n. Strings already
// at least n long are returned unchanged.
func ZeroFill(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

// Escape replaces HL7 reserved characters in free text with their escape
// sequences. Applied to fabricated names and addresses before they enter a
// segment; coded fields are built from closed vocabularies and bypass it.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\E\`)
		case '|':
			b.WriteString(`\F\`)
		case '^':
			b.WriteString(`\S\`)
		case '~':
			b.WriteString(`\R\`)
		case '&':
			b.WriteString(`\T\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
