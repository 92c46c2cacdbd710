package messages

import (
	"fmt"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/segments"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// ProblemListParams carries one PPR^ZD1 problem report.
type ProblemListParams struct {
	MessageTime string
	MessageID   string
	Patient     *clinical.Patient
	Hospital    *clinical.Hospital
	Problems    []*clinical.Problem
}

// ProblemList assembles the PPR^ZD1 message: MSH PID then one PRB/ORC
// pair per problem. Every problem of one report carries the same
// requester order number, so the file is addressable by a single ORC-2.
func ProblemList(tab *tables.Tables, p ProblemListParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryProblem)
	if err != nil {
		return "", err
	}
	if len(p.Problems) == 0 {
		return "", fmt.Errorf("problem list message requires at least one problem")
	}
	headers := make([]clinical.OrderHeader, 0, len(p.Problems))
	for _, prob := range p.Problems {
		headers = append(headers, prob.Order)
	}
	if err := sharedOrderNumbers("problem list", headers); err != nil {
		return "", err
	}
	msh, err := segments.MSH(mt, p.MessageTime, p.MessageID)
	if err != nil {
		return "", err
	}
	pid, err := segments.PID(mt, "", p.Patient)
	if err != nil {
		return "", err
	}
	segs := []string{msh, pid}
	for _, prob := range p.Problems {
		prb, err := segments.PRB(tab, prob)
		if err != nil {
			return "", err
		}
		orc, err := segments.ORC(tab, prob.Order, "", p.Hospital)
		if err != nil {
			return "", err
		}
		segs = append(segs, prb, orc)
	}
	return join(segs), nil
}
