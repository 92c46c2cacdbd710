// Package ssmix implements the SS-MIX2 standardized storage layout:
// deterministic sharded directory paths, the seven-part file name, and
// encoded file writing.
package ssmix

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// NoValue is the placeholder for file name parts that do not apply:
// the date of patient-scoped categories and the department of
// department-less messages.
const NoValue = "-"

// DemographicsOrderNumber fills the order slot of categories that carry
// no order.
var DemographicsOrderNumber = strings.Repeat("9", clinical.OrderNumberWidth)

// Entry names one stored message: every variable part of its path.
type Entry struct {
	PatientID   string
	Date        string // YYYYMMDD, or NoValue for patient-scoped data
	DataType    hl7.Category
	OrderNumber string // zero-filled to OrderNumberWidth
	MessageTime string // 17-digit message time
	Department  string // table 0069 code, or NoValue
	Flag        string // condition flag: 0 deleted, 1 active, 2 draft
}

// Validate checks every file name invariant. The patient id must be
// long enough to shard, the date either a full day or the placeholder,
// and the department a known code or the placeholder.
func (e Entry) Validate(tab *tables.Tables) error {
	if len(e.PatientID) <= 6 {
		return fmt.Errorf("patient id must be longer than 6 characters, got %q", e.PatientID)
	}
	if e.Date != NoValue {
		if len(e.Date) != 8 || !allDigits(e.Date) {
			return fmt.Errorf("date must be YYYYMMDD or %q, got %q", NoValue, e.Date)
		}
	}
	if !hl7.KnownCategory(e.DataType) {
		return fmt.Errorf("unknown data type %q", e.DataType)
	}
	if len(e.OrderNumber) != clinical.OrderNumberWidth || !allDigits(e.OrderNumber) {
		return fmt.Errorf("order number must be %d digits, got %q", clinical.OrderNumberWidth, e.OrderNumber)
	}
	if len(e.MessageTime) != 17 || !allDigits(e.MessageTime) {
		return fmt.Errorf("message time must be 17 digits, got %q", e.MessageTime)
	}
	if e.Department != NoValue && !tab.Department.Has(e.Department) {
		return fmt.Errorf("department %q is not in table 0069", e.Department)
	}
	switch e.Flag {
	case "0", "1", "2":
	default:
		return fmt.Errorf("condition flag must be 0, 1 or 2, got %q", e.Flag)
	}
	return nil
}

// FileName renders the seven-part underscore-joined file name.
func (e Entry) FileName() string {
	return strings.Join([]string{
		e.PatientID,
		e.Date,
		string(e.DataType),
		e.OrderNumber,
		e.MessageTime,
		e.Department,
		e.Flag,
	}, "_")
}

// Path renders the full file path under root. The first two levels
// shard on the patient id prefix so no directory grows unbounded.
func (e Entry) Path(root string) string {
	return filepath.Join(
		root,
		e.PatientID[:3],
		e.PatientID[3:6],
		e.PatientID,
		e.Date,
		string(e.DataType),
		e.FileName(),
	)
}

func allDigits(s string) bool {
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
