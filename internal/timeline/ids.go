package timeline

import (
	"strconv"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
)

// Sequences issues the per-patient identifier streams. Both streams
// start from the reversed patient id so identifiers from different
// patients in the same sharded subtree cannot collide, then count up.
type Sequences struct {
	prefix  string
	message int
	order   int
}

// NewSequences builds the identifier streams for one patient.
func NewSequences(patientID string) *Sequences {
	return &Sequences{prefix: reverse(patientID)}
}

// MessageID returns the next MSH-10 value, at most 20 characters.
func (s *Sequences) MessageID() string {
	id := s.prefix + strconv.Itoa(s.message)
	s.message++
	return id
}

// OrderNumber returns the next ORC-2 value, zero-filled to the fixed
// order number width.
func (s *Sequences) OrderNumber() string {
	n := hl7.ZeroFill(s.prefix+strconv.Itoa(s.order), clinical.OrderNumberWidth)
	s.order++
	return n
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
