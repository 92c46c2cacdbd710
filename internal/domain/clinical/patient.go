package clinical

import (
	"regexp"
	"strconv"

	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

var patientIDPattern = regexp.MustCompile(`^\w{6,250}$`)

// Allergy is one AL1 entry of the demographics message.
type Allergy struct {
	TypeCode       string
	AllergenCode   string
	AllergenName   string
	AllergenSystem string
}

// NewAllergy validates and builds an Allergy.
func NewAllergy(tab *tables.Tables, typeCode, code, name, system string) (*Allergy, error) {
	if !tab.AllergyType.Has(typeCode) {
		return nil, invalidf("allergy", "type", "code %q is not in table 0127", typeCode)
	}
	if code == "" {
		return nil, invalidf("allergy", "allergen code", "must not be empty")
	}
	if name == "" {
		return nil, invalidf("allergy", "allergen name", "must not be empty")
	}
	if system == "" {
		return nil, invalidf("allergy", "allergen code system", "must not be empty")
	}
	return &Allergy{TypeCode: typeCode, AllergenCode: code, AllergenName: name, AllergenSystem: system}, nil
}

// Insurance is one IN1 entry of the demographics message. Plan codes come
// from the JHSD0001 extract; the national health insurance plan (C0)
// carries a 6-digit insurer number while every other plan embeds its
// 2-digit statutory prefix for an 8-digit number.
type Insurance struct {
	PlanCode       string
	Number         string
	EffectiveDate  string
	ExpirationDate string
	PlanType       string
	Relationship   string
	CompanyName    string

	Classification string
	ClassName      string
}

// NewInsurance validates and builds an Insurance.
func NewInsurance(tab *tables.Tables, planCode, number, effectiveDate, expirationDate, planType, relationship, companyName string) (*Insurance, error) {
	plan, ok := tab.InsurancePlan[planCode]
	if !ok {
		return nil, invalidf("insurance", "plan code", "code %q is not in table JHSD0001", planCode)
	}
	if planCode == "C0" {
		if len(number) != 6 {
			return nil, invalidf("insurance", "number", "must be 6 digits for national health insurance, got %q", number)
		}
	} else if len(number) != 8 {
		return nil, invalidf("insurance", "number", "must be 8 digits for plan %q, got %q", planCode, number)
	}
	if plan.Classification == "PE" {
		if planType == "" || !tab.PublicExpenseType.Has(planType) {
			return nil, invalidf("insurance", "plan type", "required for public expense plans and must be in table JHSD0002, got %q", planType)
		}
	}
	switch plan.Classification {
	case "MI", "PE", "TI", "PS", "PI", "OE", "OT":
		if companyName == "" {
			return nil, invalidf("insurance", "company name", "must not be empty for classification %s", plan.Classification)
		}
	}
	if relationship != "" && !tab.Relationship.Has(relationship) {
		return nil, invalidf("insurance", "relationship", "code %q is not in table 0063", relationship)
	}
	effectiveDate, err := hl7.ReformatTimestamp(effectiveDate, hl7.PrecisionDay)
	if err != nil {
		return nil, invalidf("insurance", "effective date", "%v", err)
	}
	expirationDate, err = hl7.ReformatTimestamp(expirationDate, hl7.PrecisionDay)
	if err != nil {
		return nil, invalidf("insurance", "expiration date", "%v", err)
	}
	return &Insurance{
		PlanCode:       planCode,
		Number:         number,
		EffectiveDate:  effectiveDate,
		ExpirationDate: expirationDate,
		PlanType:       planType,
		Relationship:   relationship,
		CompanyName:    companyName,
		Classification: plan.Classification,
		ClassName:      plan.Name,
	}, nil
}

// Patient is the immutable identity and demographics of the person a
// timeline belongs to.
type Patient struct {
	ID            string
	DOB           string // YYYYMMDD
	Sex           string
	FirstName     string
	FirstNameKana string
	LastName      string
	LastNameKana  string
	PostalCode    string
	Address       string
	HomePhone     string
	WorkPlace     string
	WorkPhone     string
	ABOBloodType  string // A, B, AB, O or empty
	RhBloodType   string // +, - or empty
	Height        string // cm
	Weight        string // kg
	Allergies     []*Allergy
	Insurances    []*Insurance
}

// PatientSpec carries the raw demographics handed to NewPatient.
type PatientSpec struct {
	ID            string
	DOB           string
	Sex           string
	FirstName     string
	FirstNameKana string
	LastName      string
	LastNameKana  string
	PostalCode    string
	Address       string
	HomePhone     string
	WorkPlace     string
	WorkPhone     string
	ABOBloodType  string
	RhBloodType   string
	Height        string
	Weight        string
	Allergies     []*Allergy
	Insurances    []*Insurance
}

// NewPatient validates and builds a Patient.
func NewPatient(tab *tables.Tables, spec PatientSpec) (*Patient, error) {
	if !patientIDPattern.MatchString(spec.ID) {
		return nil, invalidf("patient", "id", "must be alphanumeric and 6-250 characters, got %q", spec.ID)
	}
	if !tab.Sex.Has(spec.Sex) {
		return nil, invalidf("patient", "sex", "code %q is not in table 0001", spec.Sex)
	}
	if len(spec.FirstName)+len(spec.LastName)+len(spec.FirstNameKana)+len(spec.LastNameKana) >= 230 {
		return nil, invalidf("patient", "name", "combined name exceeds 230 characters")
	}
	postal, ok := NormalizePostalCode(spec.PostalCode)
	if !ok {
		return nil, invalidf("patient", "postal code", "%q is not a valid postal code", spec.PostalCode)
	}
	if len(spec.Address) > 235 {
		return nil, invalidf("patient", "address", "must be 235 characters or less")
	}
	if len(spec.HomePhone) > 250 || len(spec.WorkPhone) > 250 || len(spec.WorkPlace) > 250 {
		return nil, invalidf("patient", "contact", "phone and work place fields must be 250 characters or less")
	}
	switch spec.ABOBloodType {
	case "", "A", "B", "AB", "O":
	default:
		return nil, invalidf("patient", "ABO blood type", "must be A, B, AB, O or empty, got %q", spec.ABOBloodType)
	}
	switch spec.RhBloodType {
	case "", "+", "-":
	default:
		return nil, invalidf("patient", "Rh blood type", "must be +, - or empty, got %q", spec.RhBloodType)
	}
	if spec.Height != "" {
		h, err := strconv.ParseFloat(spec.Height, 64)
		if err != nil || h < 0 || h > 300 {
			return nil, invalidf("patient", "height", "must be a number between 0 and 300 cm, got %q", spec.Height)
		}
	}
	if spec.Weight != "" {
		w, err := strconv.ParseFloat(spec.Weight, 64)
		if err != nil || w < 0 || w > 500 {
			return nil, invalidf("patient", "weight", "must be a number between 0 and 500 kg, got %q", spec.Weight)
		}
	}
	dob, err := hl7.ReformatTimestamp(spec.DOB, hl7.PrecisionDay)
	if err != nil || dob == "" {
		return nil, invalidf("patient", "date of birth", "must be a valid date, got %q", spec.DOB)
	}
	return &Patient{
		ID:            spec.ID,
		DOB:           dob,
		Sex:           spec.Sex,
		FirstName:     spec.FirstName,
		FirstNameKana: spec.FirstNameKana,
		LastName:      spec.LastName,
		LastNameKana:  spec.LastNameKana,
		PostalCode:    postal,
		Address:       spec.Address,
		HomePhone:     spec.HomePhone,
		WorkPlace:     spec.WorkPlace,
		WorkPhone:     spec.WorkPhone,
		ABOBloodType:  spec.ABOBloodType,
		RhBloodType:   spec.RhBloodType,
		Height:        spec.Height,
		Weight:        spec.Weight,
		Allergies:     spec.Allergies,
		Insurances:    spec.Insurances,
	}, nil
}
