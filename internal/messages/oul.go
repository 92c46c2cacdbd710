package messages

import (
	"fmt"
	"strconv"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/segments"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// LabResultsParams carries one OUL^R22 result report.
type LabResultsParams struct {
	MessageTime          string
	MessageID            string
	Patient              *clinical.Patient
	Hospital             *clinical.Hospital
	OutpatientDepartment string
	Admission            *clinical.Admission
	PrimaryPhysician     *clinical.Physician
	Specimens            []*clinical.LabSpecimen
}

// LabResults assembles the OUL^R22 message: MSH PID PV1 then one
// SPM/OBR/ORC group per specimen with its OBX rows. Observation set ids
// restart at 1 inside every specimen group; the OBR sequence is pinned
// to 1 because each specimen carries exactly one request.
func LabResults(tab *tables.Tables, p LabResultsParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryLabResult)
	if err != nil {
		return "", err
	}
	if len(p.Specimens) == 0 {
		return "", fmt.Errorf("lab result message requires at least one specimen")
	}
	headers := make([]clinical.OrderHeader, 0, len(p.Specimens))
	for _, sp := range p.Specimens {
		headers = append(headers, sp.Order)
	}
	if err := sharedOrderNumbers("lab result", headers); err != nil {
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
	pv1, err := segments.PV1(mt, tab, segments.PV1Params{
		SetID:                "0001",
		OutpatientDepartment: p.OutpatientDepartment,
		PrimaryPhysician:     p.PrimaryPhysician,
		Admission:            p.Admission,
	})
	if err != nil {
		return "", err
	}
	segs := []string{msh, pid, pv1}
	for i, sp := range p.Specimens {
		spm, err := segments.SPM(strconv.Itoa(i+1), sp)
		if err != nil {
			return "", err
		}
		orc, err := segments.ORC(tab, sp.Order, "", p.Hospital)
		if err != nil {
			return "", err
		}
		obr, err := segments.OBR("1", sp)
		if err != nil {
			return "", err
		}
		segs = append(segs, spm, obr, orc)
		for j, r := range sp.Results {
			obx, err := segments.OBX(tab, segments.OBXParams{
				SequenceNo:      strconv.Itoa(j + 1),
				ValueType:       r.ValueType,
				Code:            r.ObservationCode,
				Name:            r.ObservationName,
				CodeSystem:      r.ObservationSystem,
				SubID:           r.SubID,
				Value:           r.Value,
				ValueCode:       r.ValueCode,
				ValueCodeSystem: r.ValueCodeSystem,
				Unit:            r.Unit,
				UnitCode:        r.UnitCode,
				UnitCodeSystem:  r.UnitCodeSystem,
				Status:          r.Status,
			})
			if err != nil {
				return "", err
			}
			segs = append(segs, obx)
		}
	}
	return join(segs), nil
}
