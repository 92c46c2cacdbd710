// Package tables holds the closed code vocabularies the generator
// validates against: HL7 user-defined and HL7-defined tables, the JAHIS
// and MERIT-9 master extracts, and the JLAC10-derived lab vocabularies.
// Tables are immutable after construction and are injected by reference
// into value-object constructors so validation is testable in isolation.
package tables

import "fmt"

// Table is a read-only code-to-display-text mapping.
type Table map[string]string

// Has reports whether code is a member of the table.
func (t Table) Has(code string) bool {
	_, ok := t[code]
	return ok
}

// Name returns the display text for code, or "" when absent.
func (t Table) Name(code string) string {
	return t[code]
}

// Require returns the display text for code or an error naming the table.
func (t Table) Require(table, code string) (string, error) {
	name, ok := t[code]
	if !ok {
		return "", fmt.Errorf("code %q is not in table %s", code, table)
	}
	return name, nil
}

// Codes returns the member codes in unspecified order.
func (t Table) Codes() []string {
	out := make([]string, 0, len(t))
	for c := range t {
		out = append(out, c)
	}
	return out
}

// Tables bundles every vocabulary the generator consults. Construct with
// Default for the production set, or build a reduced instance in tests.
// InsurancePlan is one JHSD0001 entry: display name plus the broad
// classification (MI medical insurance, PE public expense, OE self-pay,
// and so on) that drives conditional field requirements.
type InsurancePlan struct {
	Name           string
	Classification string
}

// PlanTable maps insurance plan codes onto their JHSD0001 entries.
type PlanTable map[string]InsurancePlan

// Has reports whether code is a member of the table.
func (t PlanTable) Has(code string) bool {
	_, ok := t[code]
	return ok
}

// Tables bundles every vocabulary the generator consults.
type Tables struct {
	Sex                  Table     // HL7 table 0001
	EventType            Table     // HL7 table 0003
	OrderStatus          Table     // HL7 table 0038
	EventReason          Table     // HL7 table 0062
	Relationship         Table     // HL7 table 0063
	Department           Table     // HL7 table 0069 (JAHIS department codes)
	MessageCode          Table     // HL7 table 0076
	ResultStatus         Table     // HL7 table 0085
	DischargeDisposition Table     // HL7 table 0112 (JHSD profile values)
	OrderControl         Table     // HL7 table 0119
	ValueType            Table     // HL7 table 0125
	AllergyType          Table     // HL7 table 0127
	Route                Table     // HL7 table 0162
	RouteDevice          Table     // HL7 table 0164
	MessageStructure     Table     // HL7 table 0354
	DisabilityType       Table     // HL7 table 0334
	OrderType            Table     // HL7 table 0482
	DosageForm           Table     // MERIT-9 dosage forms (MR9P)
	DoseUnit             Table     // MERIT-9 dose units (MR9P)
	InjectionType        Table     // JHSI0002 injection order classes
	InsurancePlan        PlanTable // JHSD0001 insurance plans
	PublicExpenseType    Table     // JHSD0002 public expense categories
	DiagnosisType        Table     // JHSD0004 diagnosis qualifiers
	SpecimenType         Table     // JLAC10 specimen codes
	LabTestType          Table     // JLAC10 test type grouping
}

// ValidateMessageType checks a (code, trigger, structure) triple against
// the HL7 vocabulary tables.
func (t *Tables) ValidateMessageType(code, trigger, structure string) error {
	if !t.MessageCode.Has(code) {
		return fmt.Errorf("message code %q is not in table 0076", code)
	}
	if !t.EventType.Has(trigger) {
		return fmt.Errorf("trigger event %q is not in table 0003", trigger)
	}
	if !t.MessageStructure.Has(structure) {
		return fmt.Errorf("message structure %q is not in table 0354", structure)
	}
	return nil
}
