// Package clinical holds the immutable, self-validating value objects a
// message is rendered from: patient and physician identities, the open
// admission, and the per-category clinical payloads (problems, drug
// orders, lab specimens). Construction performs total validation against
// the injected code tables; no partially valid instance can exist.
package clinical

import "fmt"

// ValidationError reports a field that violated a construction rule. It
// carries enough context to locate the offending input.
type ValidationError struct {
	Object string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Object, e.Field, e.Reason)
}

func invalidf(object, field, format string, args ...any) error {
	return &ValidationError{Object: object, Field: field, Reason: fmt.Sprintf(format, args...)}
}
