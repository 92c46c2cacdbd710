package messages

import (
	"fmt"
	"strconv"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/segments"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// rdeBase assembles the MSH PID PV1 AL1* spine shared by prescription
// and injection messages.
func rdeBase(tab *tables.Tables, mt hl7.MessageType, messageTime, messageID string, patient *clinical.Patient, outpatientDepartment string, admission *clinical.Admission, primary *clinical.Physician) ([]string, error) {
	msh, err := segments.MSH(mt, messageTime, messageID)
	if err != nil {
		return nil, err
	}
	pid, err := segments.PID(mt, "", patient)
	if err != nil {
		return nil, err
	}
	pv1, err := segments.PV1(mt, tab, segments.PV1Params{
		SetID:                "0001",
		OutpatientDepartment: outpatientDepartment,
		PrimaryPhysician:     primary,
		Admission:            admission,
	})
	if err != nil {
		return nil, err
	}
	segs := []string{msh, pid, pv1}
	for i, al := range patient.Allergies {
		al1, err := segments.AL1(tab, strconv.Itoa(i+1), al)
		if err != nil {
			return nil, err
		}
		segs = append(segs, al1)
	}
	return segs, nil
}

// PrescriptionsParams carries one RDE^O11 prescription message.
type PrescriptionsParams struct {
	MessageTime          string
	MessageID            string
	Patient              *clinical.Patient
	Hospital             *clinical.Hospital
	OutpatientDepartment string
	Admission            *clinical.Admission
	PrimaryPhysician     *clinical.Physician
	Orders               []*clinical.PrescriptionOrder
}

// Prescriptions assembles an RDE^O11 message with one
// ORC/RXE/TQ1/RXR group per prescription order.
func Prescriptions(tab *tables.Tables, p PrescriptionsParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryPrescription)
	if err != nil {
		return "", err
	}
	if len(p.Orders) == 0 {
		return "", fmt.Errorf("prescription message requires at least one order")
	}
	headers := make([]clinical.OrderHeader, 0, len(p.Orders))
	for _, o := range p.Orders {
		headers = append(headers, o.Order)
	}
	if err := sharedOrderNumbers("prescription", headers); err != nil {
		return "", err
	}
	segs, err := rdeBase(tab, mt, p.MessageTime, p.MessageID, p.Patient, p.OutpatientDepartment, p.Admission, p.PrimaryPhysician)
	if err != nil {
		return "", err
	}
	for _, o := range p.Orders {
		orc, err := segments.ORC(tab, o.Order, o.GroupNo, p.Hospital)
		if err != nil {
			return "", err
		}
		rxep := segments.RXEParams{
			DrugCode:             o.DrugCode,
			DrugName:             o.DrugName,
			DrugCodeSystem:       o.DrugCodeSystem,
			MinimumDose:          o.MinimumDose,
			DoseUnitCode:         o.DoseUnitCode,
			DispenseAmount:       o.DispenseAmount,
			DispenseUnitCode:     o.DispenseUnitCode,
			DispenseUnitName:     tab.DoseUnit.Name(o.DispenseUnitCode),
			DispenseUnitSystem:   "MR9P",
			DosageFormCode:       o.DosageFormCode,
			PrescriptionNo:       o.PrescriptionNo,
			OutpatientDepartment: p.OutpatientDepartment,
			Admission:            p.Admission,
		}
		if o.DoseUnitCode != hl7.InapplicableToken {
			rxep.DoseUnitName = tab.DoseUnit.Name(o.DoseUnitCode)
			rxep.DoseUnitCodeSystem = "MR9P"
		}
		rxe, err := segments.RXE(tab, rxep)
		if err != nil {
			return "", err
		}
		tq1, err := segments.TQ1(segments.TQ1Params{
			SequenceNo:       "1",
			RepeatCode:       o.RepeatCode,
			RepeatName:       o.RepeatName,
			RepeatCodeSystem: o.RepeatCodeSystem,
			DurationDays:     o.DurationDays,
			StartTime:        o.StartTime,
			EndTime:          o.EndTime,
			TotalOccurrences: o.TotalOccurrences,
		})
		if err != nil {
			return "", err
		}
		rxr, err := segments.RXR(tab, o.RouteCode, "")
		if err != nil {
			return "", err
		}
		segs = append(segs, orc, rxe, tq1, rxr)
	}
	return join(segs), nil
}

// InjectionsParams carries one RDE^O11 injection message.
type InjectionsParams struct {
	MessageTime          string
	MessageID            string
	Patient              *clinical.Patient
	Hospital             *clinical.Hospital
	OutpatientDepartment string
	Admission            *clinical.Admission
	PrimaryPhysician     *clinical.Physician
	Orders               []*clinical.InjectionOrder
}

// Injections assembles an RDE^O11 message with one
// ORC/RXE/TQ1/RXR/RXC* group per injection order. The RXE drug slot
// names the injection class; the mixture components follow as RXC rows.
func Injections(tab *tables.Tables, p InjectionsParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryInjection)
	if err != nil {
		return "", err
	}
	if len(p.Orders) == 0 {
		return "", fmt.Errorf("injection message requires at least one order")
	}
	headers := make([]clinical.OrderHeader, 0, len(p.Orders))
	for _, o := range p.Orders {
		headers = append(headers, o.Order)
	}
	if err := sharedOrderNumbers("injection", headers); err != nil {
		return "", err
	}
	segs, err := rdeBase(tab, mt, p.MessageTime, p.MessageID, p.Patient, p.OutpatientDepartment, p.Admission, p.PrimaryPhysician)
	if err != nil {
		return "", err
	}
	for _, o := range p.Orders {
		orc, err := segments.ORC(tab, o.Order, o.GroupNo, p.Hospital)
		if err != nil {
			return "", err
		}
		rxe, err := segments.RXE(tab, segments.RXEParams{
			DrugCode:             o.TypeCode,
			DrugName:             o.TypeName,
			DrugCodeSystem:       o.TypeCodeSystem,
			MinimumDose:          o.MinimumDose,
			DoseUnitCode:         o.DoseUnitCode,
			DoseUnitName:         o.DoseUnitName,
			DoseUnitCodeSystem:   o.DoseUnitCodeSystem,
			DosageFormCode:       "INJ",
			DispenseAmount:       o.DispenseAmount,
			DispenseUnitCode:     o.DispenseUnitCode,
			DispenseUnitName:     o.DispenseUnitName,
			DispenseUnitSystem:   o.DispenseUnitSystem,
			PrescriptionNo:       o.PrescriptionNo,
			OutpatientDepartment: p.OutpatientDepartment,
			Admission:            p.Admission,
		})
		if err != nil {
			return "", err
		}
		tq1, err := segments.TQ1(segments.TQ1Params{
			SequenceNo:       "1",
			RepeatCode:       o.RepeatCode,
			RepeatName:       o.RepeatName,
			RepeatCodeSystem: o.RepeatCodeSystem,
			StartTime:        o.StartTime,
			EndTime:          o.EndTime,
			TotalOccurrences: o.TotalOccurrences,
		})
		if err != nil {
			return "", err
		}
		rxr, err := segments.RXR(tab, o.RouteCode, o.RouteDeviceCode)
		if err != nil {
			return "", err
		}
		segs = append(segs, orc, rxe, tq1, rxr)
		for _, c := range o.Components {
			rxc, err := segments.RXC(c)
			if err != nil {
				return "", err
			}
			segs = append(segs, rxc)
		}
	}
	return join(segs), nil
}
