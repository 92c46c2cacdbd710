package clinical

import (
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

var problemActionCodes = map[string]bool{
	"AD": true, "CD": true, "DE": true, "LI": true,
	"UC": true, "UN": true, "UP": true,
}

// Problem is one diagnosis entry of a problem-list message: the PRB and Z
// segments plus the ORC header it shares with its siblings in one file.
type Problem struct {
	ActionCode         string
	ActionTime         string
	DxCode             string
	DxName             string
	DxCodeSystem       string
	InstanceID         string
	DateOfDiagnosis    string
	ExpectedTimeSolved string
	TimeSolved         string
	ICD10Code          string
	ICD10Name          string
	DiagnosisType      string // table JHSD0004
	Provisional        string // "1" or ""
	TimeOfOnset        string

	Order OrderHeader
}

// ProblemSpec carries the raw fields handed to NewProblem.
type ProblemSpec struct {
	ActionCode         string
	ActionTime         string
	DxCode             string
	DxName             string
	DxCodeSystem       string
	InstanceID         string
	DateOfDiagnosis    string
	ExpectedTimeSolved string
	TimeSolved         string
	ICD10Code          string
	ICD10Name          string
	DiagnosisType      string
	Provisional        string
	TimeOfOnset        string
	Order              OrderHeader
}

// NewProblem validates and builds a Problem.
func NewProblem(tab *tables.Tables, spec ProblemSpec) (*Problem, error) {
	if !problemActionCodes[spec.ActionCode] {
		return nil, invalidf("problem", "action code", "%q is not a valid problem action", spec.ActionCode)
	}
	if spec.DxCode == "" || spec.DxCodeSystem == "" {
		return nil, invalidf("problem", "diagnosis", "code and code system must not be empty")
	}
	if len(spec.DxCode)+len(spec.DxName)+len(spec.DxCodeSystem) >= 230 {
		return nil, invalidf("problem", "diagnosis", "code, name and system combined exceed 230 characters")
	}
	if spec.ICD10Code != "" && len(spec.ICD10Code) > 10 {
		return nil, invalidf("problem", "icd10 code", "%q is too long", spec.ICD10Code)
	}
	if len(spec.ICD10Code)+len(spec.ICD10Name)+len(spec.DiagnosisType) >= 220 {
		return nil, invalidf("problem", "classification", "icd10 code, name and diagnosis type combined exceed 220 characters")
	}
	if spec.InstanceID == "" || len(spec.InstanceID) > 60 {
		return nil, invalidf("problem", "instance id", "must be 1-60 characters, got %q", spec.InstanceID)
	}
	if spec.DiagnosisType != "" && !tab.DiagnosisType.Has(spec.DiagnosisType) {
		return nil, invalidf("problem", "diagnosis type", "code %q is not in table JHSD0004", spec.DiagnosisType)
	}
	if spec.Provisional != "" && spec.Provisional != "1" {
		return nil, invalidf("problem", "provisional", "must be \"1\" or empty, got %q", spec.Provisional)
	}
	order, err := newOrderHeader(tab, "problem", spec.Order)
	if err != nil {
		return nil, err
	}

	actionTime, err := hl7.ReformatTimestamp(spec.ActionTime, hl7.PrecisionSecond)
	if err != nil || actionTime == "" {
		return nil, invalidf("problem", "action time", "must be a valid timestamp, got %q", spec.ActionTime)
	}
	reformat := func(field, raw string) (string, error) {
		s, err := hl7.ReformatTimestamp(raw, hl7.PrecisionSecond)
		if err != nil {
			return "", invalidf("problem", field, "%v", err)
		}
		return s, nil
	}
	dateOfDiagnosis, err := reformat("date of diagnosis", spec.DateOfDiagnosis)
	if err != nil {
		return nil, err
	}
	expectedTimeSolved, err := reformat("expected time solved", spec.ExpectedTimeSolved)
	if err != nil {
		return nil, err
	}
	timeSolved, err := reformat("time solved", spec.TimeSolved)
	if err != nil {
		return nil, err
	}
	timeOfOnset, err := reformat("time of onset", spec.TimeOfOnset)
	if err != nil {
		return nil, err
	}

	return &Problem{
		ActionCode:         spec.ActionCode,
		ActionTime:         actionTime,
		DxCode:             spec.DxCode,
		DxName:             spec.DxName,
		DxCodeSystem:       spec.DxCodeSystem,
		InstanceID:         spec.InstanceID,
		DateOfDiagnosis:    dateOfDiagnosis,
		ExpectedTimeSolved: expectedTimeSolved,
		TimeSolved:         timeSolved,
		ICD10Code:          spec.ICD10Code,
		ICD10Name:          spec.ICD10Name,
		DiagnosisType:      spec.DiagnosisType,
		Provisional:        spec.Provisional,
		TimeOfOnset:        timeOfOnset,
		Order:              order,
	}, nil
}
