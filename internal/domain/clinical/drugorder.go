package clinical

import (
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// PrescriptionOrder is one drug row of a prescription message: the
// ORC/RXE/TQ1/RXR group it renders into.
//
// MinimumDose and its unit admit the `""` inapplicable token for drugs
// whose dose cannot be counted (ointments and the like); the token must
// then be used for both fields.
type PrescriptionOrder struct {
	DrugCode         string
	DrugName         string
	DrugCodeSystem   string
	DoseUnitCode     string // MERIT-9 unit, or the inapplicable token
	DosageFormCode   string // MERIT-9 dosage form, optional
	MinimumDose      string
	DispenseAmount   string
	DispenseUnitCode string
	PrescriptionNo   string
	RepeatCode       string
	RepeatName       string
	RepeatCodeSystem string
	DurationDays     string
	StartTime        string // TQ1-7
	EndTime          string // TQ1-8
	TotalOccurrences string
	RouteCode        string // table 0162

	RecipeNo string // 2 digits
	AdminNo  string // 3 digits
	GroupNo  string // ORC-4, derived
	Order    OrderHeader
}

// PrescriptionOrderSpec carries the raw fields handed to
// NewPrescriptionOrder.
type PrescriptionOrderSpec struct {
	DrugCode         string
	DrugName         string
	DrugCodeSystem   string
	DoseUnitCode     string
	DosageFormCode   string
	MinimumDose      string
	DispenseAmount   string
	DispenseUnitCode string
	PrescriptionNo   string
	RepeatCode       string
	RepeatName       string
	RepeatCodeSystem string
	DurationDays     string
	StartTime        string
	EndTime          string
	TotalOccurrences string
	RouteCode        string
	RecipeNo         string
	AdminNo          string
	Order            OrderHeader
}

// NewPrescriptionOrder validates and builds a PrescriptionOrder.
func NewPrescriptionOrder(tab *tables.Tables, spec PrescriptionOrderSpec) (*PrescriptionOrder, error) {
	if spec.DrugCode == "" || spec.DrugCodeSystem == "" {
		return nil, invalidf("prescription", "drug", "code and code system must not be empty")
	}
	if len(spec.DrugCode)+len(spec.DrugName)+len(spec.DrugCodeSystem) >= 230 {
		return nil, invalidf("prescription", "drug", "code, name and system combined exceed 230 characters")
	}
	if spec.MinimumDose == hl7.InapplicableToken {
		if spec.DoseUnitCode != hl7.InapplicableToken {
			return nil, invalidf("prescription", "dose unit", "must be the inapplicable token when the minimum dose is inapplicable")
		}
	} else {
		if !validDigitsUpTo(spec.MinimumDose, 20) {
			return nil, invalidf("prescription", "minimum dose", "must be a number of at most 20 digits, got %q", spec.MinimumDose)
		}
		if !tab.DoseUnit.Has(spec.DoseUnitCode) {
			return nil, invalidf("prescription", "dose unit", "code %q is not a MERIT-9 unit", spec.DoseUnitCode)
		}
	}
	if spec.DosageFormCode != "" && !tab.DosageForm.Has(spec.DosageFormCode) {
		return nil, invalidf("prescription", "dosage form", "code %q is not a MERIT-9 dosage form", spec.DosageFormCode)
	}
	if !validDigitsUpTo(spec.DispenseAmount, 20) {
		return nil, invalidf("prescription", "dispense amount", "must be a number of at most 20 digits, got %q", spec.DispenseAmount)
	}
	if !tab.DoseUnit.Has(spec.DispenseUnitCode) {
		return nil, invalidf("prescription", "dispense unit", "code %q is not a MERIT-9 unit", spec.DispenseUnitCode)
	}
	if spec.PrescriptionNo == "" || len(spec.PrescriptionNo) > 20 {
		return nil, invalidf("prescription", "prescription number", "must be 1-20 characters, got %q", spec.PrescriptionNo)
	}
	if len(spec.RepeatCode)+len(spec.RepeatName)+len(spec.RepeatCodeSystem) >= 520 {
		return nil, invalidf("prescription", "repeat pattern", "code, name and system combined exceed 520 characters")
	}
	if spec.DurationDays != "" && !validDigitsUpTo(spec.DurationDays, 18) {
		return nil, invalidf("prescription", "duration", "must be a number of at most 18 digits, got %q", spec.DurationDays)
	}
	if spec.TotalOccurrences != "" && !validDigitsUpTo(spec.TotalOccurrences, 10) {
		return nil, invalidf("prescription", "total occurrences", "must be a number of at most 10 digits, got %q", spec.TotalOccurrences)
	}
	if !tab.Route.Has(spec.RouteCode) {
		return nil, invalidf("prescription", "route", "code %q is not in table 0162", spec.RouteCode)
	}

	order, err := newOrderHeader(tab, "prescription", spec.Order)
	if err != nil {
		return nil, err
	}
	groupNo, err := medicationGroupNumber("prescription", order.RequesterOrderNumber, spec.RecipeNo, spec.AdminNo)
	if err != nil {
		return nil, err
	}
	startTime, err := hl7.ReformatTimestamp(spec.StartTime, hl7.PrecisionMinute)
	if err != nil {
		return nil, invalidf("prescription", "start time", "%v", err)
	}
	endTime, err := hl7.ReformatTimestamp(spec.EndTime, hl7.PrecisionMinute)
	if err != nil {
		return nil, invalidf("prescription", "end time", "%v", err)
	}

	return &PrescriptionOrder{
		DrugCode:         spec.DrugCode,
		DrugName:         spec.DrugName,
		DrugCodeSystem:   spec.DrugCodeSystem,
		DoseUnitCode:     spec.DoseUnitCode,
		DosageFormCode:   spec.DosageFormCode,
		MinimumDose:      spec.MinimumDose,
		DispenseAmount:   spec.DispenseAmount,
		DispenseUnitCode: spec.DispenseUnitCode,
		PrescriptionNo:   spec.PrescriptionNo,
		RepeatCode:       spec.RepeatCode,
		RepeatName:       spec.RepeatName,
		RepeatCodeSystem: spec.RepeatCodeSystem,
		DurationDays:     spec.DurationDays,
		StartTime:        startTime,
		EndTime:          endTime,
		TotalOccurrences: spec.TotalOccurrences,
		RouteCode:        spec.RouteCode,
		RecipeNo:         spec.RecipeNo,
		AdminNo:          spec.AdminNo,
		GroupNo:          groupNo,
		Order:            order,
	}, nil
}

// InjectionComponent is one RXC row of an injection order: a base
// solution (type B) or an additive (type A).
type InjectionComponent struct {
	Type           string // A or B
	Code           string
	Name           string
	CodeSystem     string
	Quantity       string
	UnitCode       string
	UnitName       string
	UnitCodeSystem string
}

// NewInjectionComponent validates and builds an InjectionComponent.
func NewInjectionComponent(typ, code, name, codeSystem, quantity, unitCode, unitName, unitCodeSystem string) (*InjectionComponent, error) {
	if typ != "A" && typ != "B" {
		return nil, invalidf("injection component", "type", "must be A or B, got %q", typ)
	}
	if code == "" || codeSystem == "" {
		return nil, invalidf("injection component", "code", "code and code system must not be empty")
	}
	if len(code)+len(name)+len(codeSystem) >= 240 {
		return nil, invalidf("injection component", "code", "code, name and system combined exceed 240 characters")
	}
	if !validDigitsUpTo(quantity, 19) {
		return nil, invalidf("injection component", "quantity", "must be a number of at most 19 digits, got %q", quantity)
	}
	if unitCode == "" || unitName == "" || unitCodeSystem == "" {
		return nil, invalidf("injection component", "unit", "code, name and system must not be empty")
	}
	return &InjectionComponent{
		Type:           typ,
		Code:           code,
		Name:           name,
		CodeSystem:     codeSystem,
		Quantity:       quantity,
		UnitCode:       unitCode,
		UnitName:       unitName,
		UnitCodeSystem: unitCodeSystem,
	}, nil
}

// InjectionOrder is one ORC/RXE/TQ1/RXR/RXC group of an injection
// message. The RXE drug slot carries the injection type class, not a
// drug; the actual drugs are the components.
type InjectionOrder struct {
	TypeCode       string // table JHSI0002
	TypeName       string // derived
	TypeCodeSystem string // fixed 99I02

	DoseUnitCode       string
	DoseUnitName       string
	DoseUnitCodeSystem string
	MinimumDose        string // water volume per dose
	DispenseAmount     string
	DispenseUnitCode   string
	DispenseUnitName   string
	DispenseUnitSystem string
	PrescriptionNo     string
	RepeatCode         string
	RepeatName         string
	RepeatCodeSystem   string
	StartTime          string
	EndTime            string
	TotalOccurrences   string
	RouteCode          string // table 0162
	RouteDeviceCode    string // table 0164, optional
	Components         []*InjectionComponent

	RecipeNo string
	AdminNo  string
	GroupNo  string
	Order    OrderHeader
}

// InjectionOrderSpec carries the raw fields handed to NewInjectionOrder.
type InjectionOrderSpec struct {
	TypeCode           string
	DoseUnitCode       string
	DoseUnitName       string
	DoseUnitCodeSystem string
	MinimumDose        string
	DispenseAmount     string
	DispenseUnitCode   string
	DispenseUnitName   string
	DispenseUnitSystem string
	PrescriptionNo     string
	RepeatCode         string
	RepeatName         string
	RepeatCodeSystem   string
	StartTime          string
	EndTime            string
	TotalOccurrences   string
	RouteCode          string
	RouteDeviceCode    string
	Components         []*InjectionComponent
	RecipeNo           string
	AdminNo            string
	Order              OrderHeader
}

// NewInjectionOrder validates and builds an InjectionOrder. Dose units
// outside the MERIT-9 table (e.g. ISO+ ml) are accepted when the name and
// code system are supplied; MERIT-9 codes have both derived from the
// table.
func NewInjectionOrder(tab *tables.Tables, spec InjectionOrderSpec) (*InjectionOrder, error) {
	typeName, ok := tab.InjectionType[spec.TypeCode]
	if !ok {
		return nil, invalidf("injection", "type", "code %q is not in table JHSI0002", spec.TypeCode)
	}
	if !validDigitsUpTo(spec.MinimumDose, 20) {
		return nil, invalidf("injection", "minimum dose", "must be a number of at most 20 digits, got %q", spec.MinimumDose)
	}
	if spec.DoseUnitCode == "" {
		return nil, invalidf("injection", "dose unit", "must not be empty")
	}
	if tab.DoseUnit.Has(spec.DoseUnitCode) {
		spec.DoseUnitName = tab.DoseUnit.Name(spec.DoseUnitCode)
		spec.DoseUnitCodeSystem = "MR9P"
	} else if spec.DoseUnitName == "" || spec.DoseUnitCodeSystem == "" {
		return nil, invalidf("injection", "dose unit", "name and code system are required for non-MERIT-9 unit %q", spec.DoseUnitCode)
	}
	if spec.DispenseAmount != "" {
		if !validDigitsUpTo(spec.DispenseAmount, 20) {
			return nil, invalidf("injection", "dispense amount", "must be a number of at most 20 digits, got %q", spec.DispenseAmount)
		}
		if spec.DispenseUnitCode != "" {
			if tab.DoseUnit.Has(spec.DispenseUnitCode) {
				spec.DispenseUnitName = tab.DoseUnit.Name(spec.DispenseUnitCode)
				spec.DispenseUnitSystem = "MR9P"
			} else if spec.DispenseUnitName == "" || spec.DispenseUnitSystem == "" {
				return nil, invalidf("injection", "dispense unit", "name and code system are required for non-MERIT-9 unit %q", spec.DispenseUnitCode)
			}
		}
	} else if spec.DispenseUnitCode != "" || spec.DispenseUnitName != "" || spec.DispenseUnitSystem != "" {
		return nil, invalidf("injection", "dispense unit", "must be empty when no dispense amount is given")
	}
	if spec.PrescriptionNo == "" || len(spec.PrescriptionNo) > 20 {
		return nil, invalidf("injection", "prescription number", "must be 1-20 characters, got %q", spec.PrescriptionNo)
	}
	if len(spec.RepeatCode)+len(spec.RepeatName)+len(spec.RepeatCodeSystem) >= 520 {
		return nil, invalidf("injection", "repeat pattern", "code, name and system combined exceed 520 characters")
	}
	if spec.TotalOccurrences != "" && !validDigitsUpTo(spec.TotalOccurrences, 10) {
		return nil, invalidf("injection", "total occurrences", "must be a number of at most 10 digits, got %q", spec.TotalOccurrences)
	}
	if !tab.Route.Has(spec.RouteCode) {
		return nil, invalidf("injection", "route", "code %q is not in table 0162", spec.RouteCode)
	}
	if spec.RouteDeviceCode != "" && !tab.RouteDevice.Has(spec.RouteDeviceCode) {
		return nil, invalidf("injection", "route device", "code %q is not in table 0164", spec.RouteDeviceCode)
	}
	if len(spec.Components) == 0 {
		return nil, invalidf("injection", "components", "must not be empty")
	}

	order, err := newOrderHeader(tab, "injection", spec.Order)
	if err != nil {
		return nil, err
	}
	groupNo, err := medicationGroupNumber("injection", order.RequesterOrderNumber, spec.RecipeNo, spec.AdminNo)
	if err != nil {
		return nil, err
	}
	startTime, err := hl7.ReformatTimestamp(spec.StartTime, hl7.PrecisionMinute)
	if err != nil {
		return nil, invalidf("injection", "start time", "%v", err)
	}
	endTime, err := hl7.ReformatTimestamp(spec.EndTime, hl7.PrecisionMinute)
	if err != nil {
		return nil, invalidf("injection", "end time", "%v", err)
	}

	return &InjectionOrder{
		TypeCode:           spec.TypeCode,
		TypeName:           typeName,
		TypeCodeSystem:     "99I02",
		DoseUnitCode:       spec.DoseUnitCode,
		DoseUnitName:       spec.DoseUnitName,
		DoseUnitCodeSystem: spec.DoseUnitCodeSystem,
		MinimumDose:        spec.MinimumDose,
		DispenseAmount:     spec.DispenseAmount,
		DispenseUnitCode:   spec.DispenseUnitCode,
		DispenseUnitName:   spec.DispenseUnitName,
		DispenseUnitSystem: spec.DispenseUnitSystem,
		PrescriptionNo:     spec.PrescriptionNo,
		RepeatCode:         spec.RepeatCode,
		RepeatName:         spec.RepeatName,
		RepeatCodeSystem:   spec.RepeatCodeSystem,
		StartTime:          startTime,
		EndTime:            endTime,
		TotalOccurrences:   spec.TotalOccurrences,
		RouteCode:          spec.RouteCode,
		RouteDeviceCode:    spec.RouteDeviceCode,
		Components:         spec.Components,
		RecipeNo:           spec.RecipeNo,
		AdminNo:            spec.AdminNo,
		GroupNo:            groupNo,
		Order:              order,
	}, nil
}
