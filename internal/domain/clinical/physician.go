package clinical

import (
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// Physician identifies one clinician. Rendered as an XCN composite in
// ORC, PV1 and OBR segments.
type Physician struct {
	ID            string
	FirstName     string
	FirstNameKana string
	LastName      string
	LastNameKana  string
	Department    string
}

// NewPhysician validates and builds a Physician. The department code may
// be empty; when present it must belong to the department table.
func NewPhysician(tab *tables.Tables, id, firstName, firstNameKana, lastName, lastNameKana, department string) (*Physician, error) {
	if id == "" {
		return nil, invalidf("physician", "id", "must not be empty")
	}
	if firstName == "" {
		return nil, invalidf("physician", "first name", "must not be empty")
	}
	if lastName == "" {
		return nil, invalidf("physician", "last name", "must not be empty")
	}
	if department != "" && !tab.Department.Has(department) {
		return nil, invalidf("physician", "department", "code %q is not in table 0069", department)
	}
	if len(id)+len(firstName)+len(lastName)+len(firstNameKana)+len(lastNameKana) >= 230 {
		return nil, invalidf("physician", "name", "combined identity exceeds 230 characters")
	}
	return &Physician{
		ID:            id,
		FirstName:     firstName,
		FirstNameKana: firstNameKana,
		LastName:      lastName,
		LastNameKana:  lastNameKana,
		Department:    department,
	}, nil
}
