package segments

import (
	"fmt"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// ORC renders the common order segment. ORC-21 through ORC-23 carry the
// ordering facility, ORC-29 the inpatient or outpatient order class.
func ORC(tab *tables.Tables, h clinical.OrderHeader, groupNumber string, hospital *clinical.Hospital) (string, error) {
	dept := ""
	if h.Requester != nil && h.Requester.Department != "" {
		name, err := tab.Department.Require("0069", h.Requester.Department)
		if err != nil {
			return "", fmt.Errorf("ORC-17: %w", err)
		}
		dept = fmt.Sprintf("%s^%s^HL70069", h.Requester.Department, name)
	}
	orderType := ""
	if h.OrderType != "" {
		name, err := tab.OrderType.Require("0482", h.OrderType)
		if err != nil {
			return "", fmt.Errorf("ORC-29: %w", err)
		}
		orderType = fmt.Sprintf("%s^%s^HL70482", h.OrderType, name)
	}
	fields := slate("ORC", 30)
	set(fields, 1, h.Control)
	set(fields, 2, h.RequesterOrderNumber)
	set(fields, 3, h.FillerOrderNumber)
	set(fields, 4, groupNumber)
	set(fields, 5, h.Status)
	set(fields, 9, h.TransactionTime)
	set(fields, 10, xcn(h.Enterer))
	set(fields, 12, xcn(h.Requester))
	set(fields, 15, h.EffectiveTime)
	set(fields, 17, dept)
	if hospital != nil {
		set(fields, 21, hospital.Name)
		set(fields, 22, fmt.Sprintf("^^^^%s^JPN^^%s", hospital.PostalCode, hospital.Address))
		set(fields, 23, hospital.Phone)
	}
	set(fields, 29, orderType)
	return render(fields), nil
}

// RXEParams carries the pharmacy encoding for one order group. The drug
// slot holds the injection class code for injection orders; RXE-42 names
// the ward location for inpatients and the department for outpatients.
type RXEParams struct {
	DrugCode             string
	DrugName             string
	DrugCodeSystem       string
	MinimumDose          string
	DoseUnitCode         string
	DoseUnitName         string
	DoseUnitCodeSystem   string
	DosageFormCode       string
	DispenseAmount       string
	DispenseUnitCode     string
	DispenseUnitName     string
	DispenseUnitSystem   string
	PrescriptionNo       string
	TotalDailyDose       string
	OutpatientDepartment string
	Admission            *clinical.Admission
}

// RXE renders the pharmacy encoded order segment. The dose unit keeps
// the explicit `""` token when the minimum dose has no definable unit.
func RXE(tab *tables.Tables, p RXEParams) (string, error) {
	doseUnit := ""
	if p.DoseUnitCode == hl7.InapplicableToken {
		doseUnit = hl7.InapplicableToken
	} else if p.DoseUnitCode != "" || p.DoseUnitName != "" || p.DoseUnitCodeSystem != "" {
		doseUnit = fmt.Sprintf("%s^%s^%s", p.DoseUnitCode, p.DoseUnitName, p.DoseUnitCodeSystem)
	}
	dispenseUnit := ""
	if p.DispenseUnitCode == hl7.InapplicableToken {
		dispenseUnit = hl7.InapplicableToken
	} else if p.DispenseUnitCode != "" || p.DispenseUnitName != "" || p.DispenseUnitSystem != "" {
		dispenseUnit = fmt.Sprintf("%s^%s^%s", p.DispenseUnitCode, p.DispenseUnitName, p.DispenseUnitSystem)
	}
	dosageForm := ""
	if p.DosageFormCode != "" {
		name, err := tab.DosageForm.Require("MR9P", p.DosageFormCode)
		if err != nil {
			return "", fmt.Errorf("RXE-6: %w", err)
		}
		dosageForm = fmt.Sprintf("%s^%s^MR9P", p.DosageFormCode, name)
	}
	totalDaily := ""
	if p.TotalDailyDose != "" {
		totalDaily = fmt.Sprintf("%s^%s&%s&%s", p.TotalDailyDose, p.DispenseUnitCode, p.DispenseUnitName, p.DispenseUnitSystem)
	}
	deliveryPlace := ""
	if p.Admission != nil {
		deliveryPlace = fmt.Sprintf("%s^%s^%s^^^N", p.Admission.Ward, p.Admission.Room, p.Admission.Bed)
	} else if p.OutpatientDepartment != "" {
		deliveryPlace = fmt.Sprintf("%s^^^^^C", p.OutpatientDepartment)
	}
	fields := slate("RXE", 44)
	set(fields, 2, fmt.Sprintf("%s^%s^%s", p.DrugCode, p.DrugName, p.DrugCodeSystem))
	set(fields, 3, p.MinimumDose)
	set(fields, 5, doseUnit)
	set(fields, 6, dosageForm)
	set(fields, 10, p.DispenseAmount)
	set(fields, 11, dispenseUnit)
	set(fields, 15, p.PrescriptionNo)
	set(fields, 19, totalDaily)
	set(fields, 42, deliveryPlace)
	return render(fields), nil
}

// TQ1Params carries the timing and quantity of one order group.
type TQ1Params struct {
	SequenceNo       string
	Amount           string
	RepeatCode       string
	RepeatName       string
	RepeatCodeSystem string
	DurationDays     string
	StartTime        string
	EndTime          string
	TotalOccurrences string
}

// TQ1 renders the timing segment. The repeat pattern is a single coded
// value whose parts join on the subcomponent separator.
func TQ1(p TQ1Params) (string, error) {
	startTime, err := hl7.ReformatTimestamp(p.StartTime, hl7.PrecisionMinute)
	if err != nil {
		return "", fmt.Errorf("TQ1-7: %w", err)
	}
	endTime, err := hl7.ReformatTimestamp(p.EndTime, hl7.PrecisionMinute)
	if err != nil {
		return "", fmt.Errorf("TQ1-8: %w", err)
	}
	duration := ""
	if p.DurationDays != "" {
		if !isDigits(p.DurationDays) {
			return "", fmt.Errorf("TQ1-6: duration must be a number of days, got %q", p.DurationDays)
		}
		duration = p.DurationDays + "^d"
	}
	fields := slate("TQ1", 14)
	set(fields, 1, p.SequenceNo)
	set(fields, 2, p.Amount)
	set(fields, 3, fmt.Sprintf("%s&%s&%s", p.RepeatCode, p.RepeatName, p.RepeatCodeSystem))
	set(fields, 6, duration)
	set(fields, 7, startTime)
	set(fields, 8, endTime)
	set(fields, 14, p.TotalOccurrences)
	return render(fields), nil
}

// RXR renders the administration route. The device slot is optional and
// only injections use it.
func RXR(tab *tables.Tables, routeCode, deviceCode string) (string, error) {
	route := ""
	if routeCode != "" {
		name, err := tab.Route.Require("0162", routeCode)
		if err != nil {
			return "", fmt.Errorf("RXR-1: %w", err)
		}
		route = fmt.Sprintf("%s^%s^HL70162", routeCode, name)
	}
	device := ""
	if deviceCode != "" {
		name, err := tab.RouteDevice.Require("0164", deviceCode)
		if err != nil {
			return "", fmt.Errorf("RXR-3: %w", err)
		}
		device = fmt.Sprintf("%s^%s^HL70164", deviceCode, name)
	}
	fields := slate("RXR", 6)
	set(fields, 1, route)
	set(fields, 3, device)
	return render(fields), nil
}

// RXC renders one injection mixture component.
func RXC(c *clinical.InjectionComponent) (string, error) {
	if c == nil {
		return "", fmt.Errorf("RXC: component must not be nil")
	}
	fields := slate("RXC", 9)
	set(fields, 1, c.Type)
	set(fields, 2, fmt.Sprintf("%s^%s^%s", c.Code, c.Name, c.CodeSystem))
	set(fields, 3, c.Quantity)
	set(fields, 4, fmt.Sprintf("%s^%s^%s", c.UnitCode, c.UnitName, c.UnitCodeSystem))
	return render(fields), nil
}
