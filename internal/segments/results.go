package segments

import (
	"fmt"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// PRB renders one problem detail segment. PRB-10 packs the ICD-10 class
// and the diagnosis qualifier into one six-component value.
func PRB(tab *tables.Tables, pr *clinical.Problem) (string, error) {
	if pr == nil {
		return "", fmt.Errorf("PRB: problem must not be nil")
	}
	typeName := ""
	typeSystem := ""
	if pr.DiagnosisType != "" {
		name, err := tab.DiagnosisType.Require("JHSD0004", pr.DiagnosisType)
		if err != nil {
			return "", fmt.Errorf("PRB-10: %w", err)
		}
		typeName = name
		typeSystem = "JHSD0004"
	}
	class := fmt.Sprintf("%s^%s^I10^%s^%s^%s", pr.ICD10Code, pr.ICD10Name, pr.DiagnosisType, typeName, typeSystem)
	fields := slate("PRB", 25)
	set(fields, 1, pr.ActionCode)
	set(fields, 2, pr.ActionTime)
	set(fields, 3, fmt.Sprintf("%s^%s^%s", pr.DxCode, pr.DxName, pr.DxCodeSystem))
	set(fields, 4, pr.InstanceID)
	set(fields, 7, pr.DateOfDiagnosis)
	set(fields, 8, pr.ExpectedTimeSolved)
	set(fields, 9, pr.TimeSolved)
	set(fields, 10, class)
	set(fields, 13, pr.Provisional)
	set(fields, 16, pr.TimeOfOnset)
	return render(fields), nil
}

// SPM renders one specimen segment.
func SPM(sequenceNo string, sp *clinical.LabSpecimen) (string, error) {
	if sequenceNo == "" || !isDigits(sequenceNo) || len(sequenceNo) > 4 {
		return "", fmt.Errorf("SPM-1: sequence number must be 1-4 digits, got %q", sequenceNo)
	}
	sampledTime, err := hl7.ReformatTimestamp(sp.SampledTime, hl7.PrecisionMinute)
	if err != nil {
		return "", fmt.Errorf("SPM-17: %w", err)
	}
	fields := slate("SPM", 29)
	set(fields, 1, sequenceNo)
	set(fields, 2, sp.SpecimenID)
	set(fields, 4, fmt.Sprintf("%s^%s^%s", sp.SpecimenCode, sp.SpecimenName, sp.SpecimenSystem))
	set(fields, 17, sampledTime)
	return render(fields), nil
}

// OBR renders the observation request for one specimen group. OUL
// results carry one order per specimen, so the sequence number is
// pinned by the caller.
func OBR(sequenceNo string, sp *clinical.LabSpecimen) (string, error) {
	if sequenceNo == "" || !isDigits(sequenceNo) {
		return "", fmt.Errorf("OBR-1: sequence number must be a number, got %q", sequenceNo)
	}
	sampledTime, err := hl7.ReformatTimestamp(sp.SampledTime, hl7.PrecisionMinute)
	if err != nil {
		return "", fmt.Errorf("OBR-7: %w", err)
	}
	finishedTime, err := hl7.ReformatTimestamp(sp.FinishedTime, hl7.PrecisionMinute)
	if err != nil {
		return "", fmt.Errorf("OBR-8: %w", err)
	}
	reportedTime, err := hl7.ReformatTimestamp(sp.ReportedTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("OBR-22: %w", err)
	}
	requester := ""
	if sp.Order.Requester != nil {
		r := sp.Order.Requester
		requester = fmt.Sprintf("%s^%s^%s", r.ID, r.LastName, r.FirstName)
	}
	fields := slate("OBR", 49)
	set(fields, 1, sequenceNo)
	set(fields, 2, sp.Order.RequesterOrderNumber)
	set(fields, 3, sp.Order.FillerOrderNumber)
	set(fields, 4, fmt.Sprintf("%s^%s^%s", sp.TestTypeCode, sp.TestTypeName, sp.TestTypeSystem))
	set(fields, 7, sampledTime)
	set(fields, 8, finishedTime)
	set(fields, 16, requester)
	set(fields, 22, reportedTime)
	set(fields, 26, sp.ParentResult)
	return render(fields), nil
}
