// Package segments renders individual HL7 v2.5 segments as pipe-delimited
// strings. Each renderer fills an ordinal field slate and drops trailing
// empty fields on output. Field gates that depend on the message type are
// data driven: the gate tables below name the (message code, trigger
// event) pairs a field is allowed or required for.
package segments

import (
	"fmt"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

func gate(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Field gates keyed by "CODE^TRIGGER" (or bare trigger where noted).
var (
	// EVN-3 is only meaningful for planned admission, discharge and
	// leave events.
	evnPlannedEventTypes = gate(
		"ADT^A14", "ADT^A27", "ADT^A16", "ADT^A25",
		"ADT^A21", "ADT^A22", "ADT^A52", "ADT^A53",
	)
	// EVN-6 carries the occurred time for transfer and leave events.
	evnEventTimeTypes = gate(
		"ADT^A15", "ADT^A26", "ADT^A02", "ADT^A12",
		"ADT^A21", "ADT^A22", "ADT^A52", "ADT^A53",
	)
	// PID-33 is required for the demographics snapshot.
	pid33RequiredTypes = gate("ADT^A08")
	// PV1-10 (servicing department), keyed by bare trigger event.
	pv1DepartmentTriggers = gate("A01", "A02", "A04", "A14", "A15")
	// PV2 gates.
	pv2PriorPendingTypes    = gate("ADT^A27", "ADT^A26")
	pv2NoExpectedAdmitTypes = gate("ADT^A14", "ADT^A27")
	pv2NoExpectedDischarge  = gate("ADT^A16", "ADT^A25")
	pv2LOAReturnTypes       = gate("ADT^A21", "ADT^A22", "ADT^A52", "ADT^A53")
)

func typeKey(mt hl7.MessageType) string {
	return mt.Code + "^" + mt.Trigger
}

func slate(name string, n int) []hl7.Value {
	fields := make([]hl7.Value, n+1)
	fields[0] = hl7.Present(name)
	return fields
}

func render(fields []hl7.Value) string {
	return hl7.JoinFields(fields)
}

func set(fields []hl7.Value, i int, s string) {
	fields[i] = hl7.FromRaw(s)
}

// xcn renders a physician as the extended composite ID used in PV1 and
// ORC.
func xcn(p *clinical.Physician) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s^%s^%s^^^^^^^L^^^^^I", p.ID, p.LastName, p.FirstName)
}

// xpn renders a patient name pair: ideographic repeat then phonetic.
func xpn(lastName, firstName, lastKana, firstKana string) string {
	return fmt.Sprintf("%s^%s^^^^L^I~%s^%s^^^^^L^P", lastName, firstName, lastKana, firstKana)
}

// xadHome renders a home address with its postal code.
func xadHome(postalCode, address string) string {
	return fmt.Sprintf("^^^^%s^JPN^H^%s", postalCode, address)
}

// MSH renders the message header. Sending and receiving identifiers are
// fixed site placeholders; MSH-18 and MSH-21 pin the character set and
// profile the archive expects.
func MSH(mt hl7.MessageType, messageTime, messageID string) (string, error) {
	messageTime, err := hl7.ReformatTimestamp(messageTime, hl7.PrecisionMessageTime)
	if err != nil {
		return "", fmt.Errorf("MSH-7: %w", err)
	}
	if messageTime == "" {
		return "", fmt.Errorf("MSH-7: message time must not be empty")
	}
	if len(messageID) == 0 || len(messageID) > 20 {
		return "", fmt.Errorf("MSH-10: message id must be 1-20 characters, got %q", messageID)
	}
	fields := slate("MSH", 21)
	// The separator after the segment name doubles as MSH-1, so the
	// encoding characters sit at the next slot.
	set(fields, 1, hl7.EncodingChars)
	set(fields, 2, "HIS123")
	set(fields, 3, "SEND")
	set(fields, 4, "GW")
	set(fields, 5, "RCV")
	set(fields, 6, messageTime)
	set(fields, 8, mt.MSH9())
	set(fields, 9, messageID)
	set(fields, 10, "P")
	set(fields, 11, hl7.Version)
	set(fields, 17, "~ISO IR87")
	set(fields, 19, "ISO 2022-1994")
	set(fields, 20, fmt.Sprintf("SS-MIX2_1.20_%s^SS-MIX2^1.2.392.200250.2.1.100.1.2.120^ISO", hl7.GuidelineVersion))
	return render(fields), nil
}

// EVN renders the event type segment.
func EVN(mt hl7.MessageType, tab *tables.Tables, transactionTime, plannedEventTime, reasonCode, controllerID, eventTime string) (string, error) {
	transactionTime, err := hl7.ReformatTimestamp(transactionTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("EVN-2: %w", err)
	}
	if transactionTime == "" {
		return "", fmt.Errorf("EVN-2: transaction time must not be empty")
	}
	plannedEventTime, err = hl7.ReformatTimestamp(plannedEventTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("EVN-3: %w", err)
	}
	eventTime, err = hl7.ReformatTimestamp(eventTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("EVN-6: %w", err)
	}
	if plannedEventTime != "" && !evnPlannedEventTypes[typeKey(mt)] {
		return "", fmt.Errorf("EVN-3: planned event time is not allowed for %s", typeKey(mt))
	}
	if reasonCode != "" && !tab.EventReason.Has(reasonCode) {
		return "", fmt.Errorf("EVN-4: reason code %q is not in table 0062", reasonCode)
	}
	if eventTime != "" && !evnEventTimeTypes[typeKey(mt)] {
		return "", fmt.Errorf("EVN-6: event occurred time is not allowed for %s", typeKey(mt))
	}
	fields := slate("EVN", 7)
	set(fields, 2, transactionTime)
	set(fields, 3, plannedEventTime)
	set(fields, 4, reasonCode)
	set(fields, 5, controllerID)
	set(fields, 6, eventTime)
	set(fields, 7, "SEND001")
	return render(fields), nil
}

// PID renders the patient identification segment. PID-33 carries the
// last demographics update and is mandatory for the snapshot message.
func PID(mt hl7.MessageType, lastUpdated string, p *clinical.Patient) (string, error) {
	lastUpdated, err := hl7.ReformatTimestamp(lastUpdated, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("PID-33: %w", err)
	}
	if lastUpdated == "" && pid33RequiredTypes[typeKey(mt)] {
		return "", fmt.Errorf("PID-33: last updated time is required for %s", typeKey(mt))
	}
	fields := slate("PID", 39)
	set(fields, 1, "0001")
	set(fields, 3, p.ID)
	set(fields, 5, xpn(p.LastName, p.FirstName, p.LastNameKana, p.FirstNameKana))
	set(fields, 7, p.DOB)
	set(fields, 8, p.Sex)
	set(fields, 11, xadHome(p.PostalCode, p.Address))
	set(fields, 13, fmt.Sprintf("^PRN^PH^^^^^^^^^%s", p.HomePhone))
	set(fields, 14, fmt.Sprintf("^WPN^PH^^^^^^^^^%s", p.WorkPhone))
	set(fields, 33, lastUpdated)
	return render(fields), nil
}

// NK1 renders a next-of-kin entry. Only the patient themselves is
// emitted as a contact.
func NK1(tab *tables.Tables, sequenceNo, relationship string, p *clinical.Patient) (string, error) {
	if relationship != "" && !tab.Relationship.Has(relationship) {
		return "", fmt.Errorf("NK1-3: relationship %q is not in table 0063", relationship)
	}
	fields := slate("NK1", 39)
	set(fields, 1, sequenceNo)
	set(fields, 2, xpn(p.LastName, p.FirstName, p.LastNameKana, p.FirstNameKana))
	set(fields, 3, relationship)
	set(fields, 4, xadHome(p.PostalCode, p.Address))
	set(fields, 5, p.HomePhone)
	set(fields, 6, p.WorkPhone)
	set(fields, 13, p.WorkPlace)
	return render(fields), nil
}

// PV1Params carries the visit context for one PV1 rendering. Admission
// nil means an outpatient encounter.
type PV1Params struct {
	SetID                string // "0001" unless the structure omits it
	OutpatientDepartment string
	DischargeTime        string
	DischargeDisposition string
	AdmissionOrVisitTime string
	PrimaryPhysician     *clinical.Physician
	Admission            *clinical.Admission
}

// PV1 renders the patient visit segment.
func PV1(mt hl7.MessageType, tab *tables.Tables, p PV1Params) (string, error) {
	if p.OutpatientDepartment != "" && !tab.Department.Has(p.OutpatientDepartment) {
		return "", fmt.Errorf("PV1-3: department %q is not in table 0069", p.OutpatientDepartment)
	}
	if p.DischargeDisposition != "" && !tab.DischargeDisposition.Has(p.DischargeDisposition) {
		return "", fmt.Errorf("PV1-36: disposition %q is not in table 0112", p.DischargeDisposition)
	}
	if p.SetID != "" && p.SetID != "0001" {
		return "", fmt.Errorf("PV1-1: set id must be 0001, got %q", p.SetID)
	}
	visitTime, err := hl7.ReformatTimestamp(p.AdmissionOrVisitTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("PV1-44: %w", err)
	}
	dischargeTime, err := hl7.ReformatTimestamp(p.DischargeTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("PV1-45: %w", err)
	}

	patientClass := "O"
	location := ""
	attending := ""
	if p.Admission != nil {
		patientClass = "I"
		location = fmt.Sprintf("%s^%s^%s^^^N", p.Admission.Ward, p.Admission.Room, p.Admission.Bed)
		attending = xcn(p.Admission.Physician)
	} else if p.OutpatientDepartment != "" {
		location = fmt.Sprintf("%s^^^^^C", p.OutpatientDepartment)
	}

	fields := slate("PV1", 52)
	set(fields, 1, p.SetID)
	set(fields, 2, patientClass)
	set(fields, 3, location)
	set(fields, 7, xcn(p.PrimaryPhysician))
	if pv1DepartmentTriggers[mt.Trigger] {
		set(fields, 10, p.OutpatientDepartment)
	}
	set(fields, 17, attending)
	set(fields, 36, p.DischargeDisposition)
	set(fields, 44, visitTime)
	set(fields, 45, dischargeTime)
	return render(fields), nil
}

// PV2Params carries the planned visit context for one PV2 rendering.
type PV2Params struct {
	Admission             *clinical.Admission
	ExpectedAdmitTime     string
	ExpectedDischargeTime string
	ExpectedLOAReturnTime string
}

// PV2 renders the additional visit segment for planned admission,
// discharge and leave events.
func PV2(mt hl7.MessageType, p PV2Params) (string, error) {
	admit, err := hl7.ReformatTimestamp(p.ExpectedAdmitTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("PV2-8: %w", err)
	}
	discharge, err := hl7.ReformatTimestamp(p.ExpectedDischargeTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("PV2-9: %w", err)
	}
	loaReturn, err := hl7.ReformatTimestamp(p.ExpectedLOAReturnTime, hl7.PrecisionSecond)
	if err != nil {
		return "", fmt.Errorf("PV2-47: %w", err)
	}
	key := typeKey(mt)
	if pv2NoExpectedAdmitTypes[key] && admit != "" {
		return "", fmt.Errorf("PV2-8: expected admit time is not allowed for %s", key)
	}
	if pv2NoExpectedDischarge[key] && discharge != "" {
		return "", fmt.Errorf("PV2-9: expected discharge time is not allowed for %s", key)
	}
	if loaReturn != "" && !pv2LOAReturnTypes[key] {
		return "", fmt.Errorf("PV2-47: leave return time is not allowed for %s", key)
	}
	pending := ""
	if pv2PriorPendingTypes[key] && p.Admission != nil {
		pending = fmt.Sprintf("%s^%s^%s^^^N", p.Admission.Ward, p.Admission.Room, p.Admission.Bed)
	}
	fields := slate("PV2", 49)
	set(fields, 1, pending)
	set(fields, 8, admit)
	set(fields, 9, discharge)
	set(fields, 47, loaReturn)
	return render(fields), nil
}

// DB1 renders a disability record.
func DB1(tab *tables.Tables, sequenceNo, personCode, present string) (string, error) {
	if !tab.DisabilityType.Has(personCode) {
		return "", fmt.Errorf("DB1-2: person code %q is not in table 0334", personCode)
	}
	if present != "Y" && present != "N" {
		return "", fmt.Errorf("DB1-4: disability present must be Y or N, got %q", present)
	}
	fields := slate("DB1", 8)
	set(fields, 1, sequenceNo)
	set(fields, 2, personCode)
	set(fields, 4, present)
	return render(fields), nil
}

// OBXParams carries one observation row.
type OBXParams struct {
	SequenceNo      string
	ValueType       string
	Code            string
	Name            string
	CodeSystem      string
	SubID           string
	Value           string
	ValueCode       string
	ValueCodeSystem string
	Unit            string
	UnitCode        string
	UnitCodeSystem  string
	Status          string
	ObservationTime string // OUL results carry the sampled time here
}

// OBX renders an observation. Coded values render the code first, plain
// values stand alone.
func OBX(tab *tables.Tables, p OBXParams) (string, error) {
	if p.ValueType != "" && !tab.ValueType.Has(p.ValueType) {
		return "", fmt.Errorf("OBX-2: value type %q is not in table 0125", p.ValueType)
	}
	if p.Status != "" && !tab.ResultStatus.Has(p.Status) {
		return "", fmt.Errorf("OBX-11: status %q is not in table 0085", p.Status)
	}
	value := p.Value
	if p.ValueCode != "" || p.ValueCodeSystem != "" {
		value = fmt.Sprintf("%s^%s^%s", p.ValueCode, p.Value, p.ValueCodeSystem)
	}
	unit := ""
	if p.Unit != "" {
		unit = p.Unit
		if p.UnitCode != "" || p.UnitCodeSystem != "" {
			unit = fmt.Sprintf("%s^%s^%s", p.UnitCode, p.Unit, p.UnitCodeSystem)
		}
	}
	observationTime, err := hl7.ReformatTimestamp(p.ObservationTime, hl7.PrecisionMinute)
	if err != nil {
		return "", fmt.Errorf("OBX-14: %w", err)
	}
	fields := slate("OBX", 19)
	set(fields, 1, p.SequenceNo)
	set(fields, 2, p.ValueType)
	set(fields, 3, fmt.Sprintf("%s^%s^%s", p.Code, p.Name, p.CodeSystem))
	set(fields, 4, p.SubID)
	set(fields, 5, value)
	set(fields, 6, unit)
	set(fields, 11, p.Status)
	set(fields, 14, observationTime)
	return render(fields), nil
}

// AL1 renders one allergy entry.
func AL1(tab *tables.Tables, sequenceNo string, a *clinical.Allergy) (string, error) {
	if sequenceNo == "" || sequenceNo == "0" || !isDigits(sequenceNo) {
		return "", fmt.Errorf("AL1-1: sequence number must be a positive integer, got %q", sequenceNo)
	}
	typeName, err := tab.AllergyType.Require("0127", a.TypeCode)
	if err != nil {
		return "", fmt.Errorf("AL1-2: %w", err)
	}
	fields := slate("AL1", 6)
	set(fields, 1, sequenceNo)
	set(fields, 2, fmt.Sprintf("%s^%s^HL70127", a.TypeCode, typeName))
	set(fields, 3, fmt.Sprintf("%s^%s^%s", a.AllergenCode, a.AllergenName, a.AllergenSystem))
	return render(fields), nil
}

// IN1 renders one insurance entry. The insurer group slot carries a
// fixed placeholder for the plans that require it.
func IN1(tab *tables.Tables, sequenceNo string, ins *clinical.Insurance) (string, error) {
	if sequenceNo == "" || sequenceNo == "0" || !isDigits(sequenceNo) {
		return "", fmt.Errorf("IN1-1: sequence number must be a positive integer, got %q", sequenceNo)
	}
	groupEmpID := ""
	switch ins.Classification {
	case "MI", "PI":
		groupEmpID = "123~1234567~01"
	}
	relationship := ""
	if ins.Relationship != "" {
		relName, err := tab.Relationship.Require("0063", ins.Relationship)
		if err != nil {
			return "", fmt.Errorf("IN1-17: %w", err)
		}
		relationship = fmt.Sprintf("%s^%s^HL70063", ins.Relationship, relName)
	}
	fields := slate("IN1", 53)
	set(fields, 1, sequenceNo)
	set(fields, 2, fmt.Sprintf("%s^%s^JHSD0001", ins.PlanCode, ins.ClassName))
	set(fields, 3, ins.Number)
	set(fields, 4, ins.CompanyName)
	set(fields, 10, groupEmpID)
	set(fields, 11, "被保険者グループ雇用者名")
	set(fields, 12, ins.EffectiveDate)
	set(fields, 13, ins.ExpirationDate)
	set(fields, 15, ins.PlanType)
	set(fields, 17, relationship)
	return render(fields), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
