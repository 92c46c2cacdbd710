package hl7

import "fmt"

// GuidelineVersion is the single SS-MIX2 guideline revision this system
// targets. It is stamped into MSH-21.
const GuidelineVersion = "h"

// Version is the HL7 version advertised in MSH-12.
const Version = "2.5"

// Category is the short SS-MIX2 data-type code that names a storage
// directory level and selects the message type, e.g. "ADT-22".
type Category string

// Storage categories emitted by this system. The guideline defines more
// (transfer, cancellation, imaging); only the ones the timeline replay can
// produce are listed in EmittedCategories, but CategoryType resolves the
// full table.
const (
	CategoryDemographics Category = "ADT-00"
	CategoryVisit        Category = "ADT-12"
	CategoryAdmission    Category = "ADT-22"
	CategoryDischarge    Category = "ADT-52"
	CategoryProblem      Category = "PPR-01"
	CategoryPrescription Category = "OMP-01"
	CategoryInjection    Category = "OMP-02"
	CategoryLabResult    Category = "OML-11"
)

// MessageType is the (message code, trigger event, message structure)
// triple that identifies an HL7 message shape.
type MessageType struct {
	Code      string
	Trigger   string
	Structure string
}

// MSH9 renders the MSH-9 composite.
func (m MessageType) MSH9() string {
	return Component(m.Code, m.Trigger, m.Structure)
}

func (m MessageType) String() string {
	return m.Code + "^" + m.Trigger
}

// categoryTypes maps every storage category of the guideline onto its
// message type. Cancellation messages are not included.
var categoryTypes = map[Category]MessageType{
	"ADT-00": {"ADT", "A08", "ADT_A01"},
	"ADT-01": {"ADT", "A54", "ADT_A54"},
	"ADT-12": {"ADT", "A04", "ADT_A01"},
	"ADT-21": {"ADT", "A14", "ADT_A05"},
	"ADT-22": {"ADT", "A01", "ADT_A01"},
	"ADT-31": {"ADT", "A21", "ADT_A21"},
	"ADT-32": {"ADT", "A22", "ADT_A21"},
	"ADT-41": {"ADT", "A15", "ADT_A15"},
	"ADT-42": {"ADT", "A02", "ADT_A02"},
	"ADT-51": {"ADT", "A16", "ADT_A16"},
	"ADT-52": {"ADT", "A03", "ADT_A03"},
	"ADT-61": {"ADT", "A60", "ADT_A60"},
	"PPR-01": {"PPR", "ZD1", "PPR_ZD1"},
	"OMD":    {"OMD", "O03", "OMD_O03"},
	"OMP-01": {"RDE", "O11", "RDE_O11"},
	"OMP-11": {"RAS", "O17", "RAS_O17"},
	"OMP-02": {"RDE", "O11", "RDE_O11"},
	"OMP-12": {"RAS", "O17", "RAS_O17"},
	"OML-01": {"OML", "O33", "OML_O33"},
	"OML-11": {"OUL", "R22", "OUL_R22"},
	"OMG-01": {"OMG", "O19", "OMG_O19"},
	"OMG-11": {"OMI", "Z23", "OMI_Z23"},
	"OMG-02": {"OMG", "O19", "OMG_O19"},
	"OMG-12": {"OMI", "Z23", "OMI_Z23"},
	"OMG-03": {"OMG", "O19", "OMG_O19"},
	"OMG-13": {"ORU", "R01", "ORU_R01"},
}

// CategoryType resolves a storage category to its message type.
func CategoryType(c Category) (MessageType, error) {
	mt, ok := categoryTypes[c]
	if !ok {
		return MessageType{}, fmt.Errorf("unknown storage category %q", c)
	}
	return mt, nil
}

// KnownCategory reports whether c is a defined storage category.
func KnownCategory(c Category) bool {
	_, ok := categoryTypes[c]
	return ok
}
