package clinical

import (
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// LabResult is a single observation of a specimen: one OBX row.
type LabResult struct {
	ValueType         string // table 0125
	ObservationCode   string
	ObservationName   string
	ObservationSystem string
	SubID             string
	Value             string
	ValueCode         string
	ValueCodeSystem   string
	Unit              string
	UnitCode          string
	UnitCodeSystem    string
	Status            string // table 0085
}

// NewLabResult validates and builds a LabResult.
func NewLabResult(tab *tables.Tables, r LabResult) (*LabResult, error) {
	if !tab.ValueType.Has(r.ValueType) {
		return nil, invalidf("lab result", "value type", "code %q is not in table 0125", r.ValueType)
	}
	if r.ObservationCode == "" || r.ObservationSystem == "" {
		return nil, invalidf("lab result", "observation", "code and code system must not be empty")
	}
	if len(r.ObservationCode)+len(r.ObservationName)+len(r.ObservationSystem) >= 240 {
		return nil, invalidf("lab result", "observation", "code, name and system combined exceed 240 characters")
	}
	if len(r.SubID) > 20 {
		return nil, invalidf("lab result", "sub id", "must be at most 20 characters, got %q", r.SubID)
	}
	if r.Value == "" {
		return nil, invalidf("lab result", "value", "must not be empty")
	}
	if len(r.Value)+len(r.ValueCode)+len(r.ValueCodeSystem) >= 65536 {
		return nil, invalidf("lab result", "value", "value, code and system combined exceed 65536 characters")
	}
	if len(r.Unit)+len(r.UnitCode)+len(r.UnitCodeSystem) >= 240 {
		return nil, invalidf("lab result", "unit", "unit, code and system combined exceed 240 characters")
	}
	if !tab.ResultStatus.Has(r.Status) {
		return nil, invalidf("lab result", "status", "code %q is not in table 0085", r.Status)
	}
	out := r
	return &out, nil
}

// LabSpecimen is one sampled specimen and its observations: the
// SPM/OBR/ORC/OBX group of a result message. Lab results carry no
// free-standing order control; it is always a status change.
type LabSpecimen struct {
	SpecimenID     string
	SpecimenCode   string
	SpecimenName   string
	SpecimenSystem string
	SampledTime    string
	FinishedTime   string
	ReportedTime   string
	TestTypeCode   string
	TestTypeName   string
	TestTypeSystem string
	ParentResult   string // OBR-26
	Results        []*LabResult
	Order          OrderHeader
}

// LabSpecimenSpec carries the raw fields handed to NewLabSpecimen.
type LabSpecimenSpec struct {
	SpecimenID     string
	SpecimenCode   string
	SpecimenName   string
	SpecimenSystem string
	SampledTime    string
	FinishedTime   string
	ReportedTime   string
	TestTypeCode   string
	TestTypeName   string
	TestTypeSystem string
	ParentResult   string
	Results        []*LabResult
	Order          OrderHeader
}

// NewLabSpecimen validates and builds a LabSpecimen. The order control
// is pinned to SC and the status is required.
func NewLabSpecimen(tab *tables.Tables, spec LabSpecimenSpec) (*LabSpecimen, error) {
	if spec.SpecimenID == "" || len(spec.SpecimenID) > 80 {
		return nil, invalidf("lab specimen", "specimen id", "must be 1-80 characters, got %q", spec.SpecimenID)
	}
	if spec.SpecimenCode == "" || spec.SpecimenName == "" || spec.SpecimenSystem == "" {
		return nil, invalidf("lab specimen", "specimen", "code, name and code system must not be empty")
	}
	if len(spec.SpecimenCode)+len(spec.SpecimenName)+len(spec.SpecimenSystem) >= 240 {
		return nil, invalidf("lab specimen", "specimen", "code, name and system combined exceed 240 characters")
	}
	if spec.TestTypeCode == "" || spec.TestTypeName == "" || spec.TestTypeSystem == "" {
		return nil, invalidf("lab specimen", "test type", "code, name and code system must not be empty")
	}
	if len(spec.TestTypeCode)+len(spec.TestTypeName)+len(spec.TestTypeSystem) >= 240 {
		return nil, invalidf("lab specimen", "test type", "code, name and system combined exceed 240 characters")
	}
	if len(spec.ParentResult) >= 400 {
		return nil, invalidf("lab specimen", "parent result", "must be less than 400 characters")
	}
	if len(spec.Results) == 0 {
		return nil, invalidf("lab specimen", "results", "must not be empty")
	}

	spec.Order.Control = "SC"
	if spec.Order.Status == "" {
		return nil, invalidf("lab specimen", "order status", "must not be empty")
	}
	order, err := newOrderHeader(tab, "lab specimen", spec.Order)
	if err != nil {
		return nil, err
	}

	sampled, err := hl7.ReformatTimestamp(spec.SampledTime, hl7.PrecisionMinute)
	if err != nil {
		return nil, invalidf("lab specimen", "sampled time", "%v", err)
	}
	finished, err := hl7.ReformatTimestamp(spec.FinishedTime, hl7.PrecisionMinute)
	if err != nil {
		return nil, invalidf("lab specimen", "sampling finished time", "%v", err)
	}
	reported, err := hl7.ReformatTimestamp(spec.ReportedTime, hl7.PrecisionSecond)
	if err != nil {
		return nil, invalidf("lab specimen", "reported time", "%v", err)
	}

	return &LabSpecimen{
		SpecimenID:     spec.SpecimenID,
		SpecimenCode:   spec.SpecimenCode,
		SpecimenName:   spec.SpecimenName,
		SpecimenSystem: spec.SpecimenSystem,
		SampledTime:    sampled,
		FinishedTime:   finished,
		ReportedTime:   reported,
		TestTypeCode:   spec.TestTypeCode,
		TestTypeName:   spec.TestTypeName,
		TestTypeSystem: spec.TestTypeSystem,
		ParentResult:   spec.ParentResult,
		Results:        spec.Results,
		Order:          order,
	}, nil
}
