// Package timeline turns one patient's chronological event table into
// standardized storage files: it ingests and validates the source CSV,
// replays the events through an explicit visit state machine, and hands
// each resulting message to the storage layer.
package timeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// EventType orders simultaneous events: admissions sort before
// discharges, movements before clinical records.
type EventType int

const (
	EventAdmission EventType = iota
	EventDischarge
	EventDiagnosis
	EventPrescription
	EventInjection
	EventLabResult
)

func (t EventType) valid() bool {
	return t >= EventAdmission && t <= EventLabResult
}

// Event is one row of a patient source table.
type Event struct {
	Timestamp            string // up to 20 digits, variable precision
	Type                 EventType
	Text                 string
	ICD10                string
	MDCDX2               string
	Provisional          string
	HOT                  string
	JLAC10               string
	LabValue             string
	Unit                 string
	DischargeDisposition string

	sortKey string // 20-digit normal form of Timestamp
}

// Source is one patient's complete event table plus the demographics
// encoded in its file name.
type Source struct {
	Path     string
	StartAge int
	Sex      string
	Events   []Event
}

// Source file names encode the start age (0-120) and the sex.
var sourceNameRE = regexp.MustCompile(`^(?:[0-9]|[1-9][0-9]|1[01][0-9]|120)_[MFOUN]_[a-zA-Z0-9\-]+\.csv$`)

var sourceColumns = []string{
	"timestamp", "type", "text", "icd10", "mdcdx2", "provisional",
	"hot", "jlac10", "lab_value", "unit", "discharge_disposition",
}

// LoadSource reads one patient CSV, parses the file name and sorts the
// events by timestamp then type. Validation is separate so callers can
// collect every problem of a batch before generating anything.
func LoadSource(path string) (*Source, error) {
	name := filepath.Base(path)
	if !sourceNameRE.MatchString(name) {
		return nil, fmt.Errorf("%s: file name must be <age>_<sex>_<label>.csv with age 0-120 and sex one of M, F, O, U, N", name)
	}
	parts := strings.SplitN(strings.TrimSuffix(name, ".csv"), "_", 3)
	age, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%s: start age: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, want := range sourceColumns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, want)
		}
	}
	field := func(row []string, key string) string {
		i := col[key]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	src := &Source{Path: path, StartAge: age, Sex: parts[1]}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line++
		typ, err := strconv.Atoi(field(row, "type"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: type must be an integer: %w", name, line, err)
		}
		src.Events = append(src.Events, Event{
			Timestamp:            field(row, "timestamp"),
			Type:                 EventType(typ),
			Text:                 field(row, "text"),
			ICD10:                field(row, "icd10"),
			MDCDX2:               field(row, "mdcdx2"),
			Provisional:          field(row, "provisional"),
			HOT:                  field(row, "hot"),
			JLAC10:               field(row, "jlac10"),
			LabValue:             field(row, "lab_value"),
			Unit:                 field(row, "unit"),
			DischargeDisposition: field(row, "discharge_disposition"),
		})
	}
	for i := range src.Events {
		key, err := hl7.ReformatTimestamp(src.Events[i].Timestamp, hl7.PrecisionFull)
		if err == nil {
			src.Events[i].sortKey = key
		}
		// Unparseable timestamps keep an empty key; Validate reports them.
	}
	sort.SliceStable(src.Events, func(i, j int) bool {
		a, b := src.Events[i], src.Events[j]
		if a.sortKey != b.sortKey {
			return a.sortKey < b.sortKey
		}
		return a.Type < b.Type
	})
	return src, nil
}

// Validate checks every row invariant plus the cross-row admission and
// discharge alternation. All problems are returned joined so a batch
// report names everything at once.
func (s *Source) Validate(tab *tables.Tables) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if len(s.Events) == 0 {
		addf("table has no rows")
	}
	admitted := false
	for i, e := range s.Events {
		row := i + 1
		if e.Timestamp == "" {
			addf("row %d: timestamp is empty", row)
		} else if err := hl7.ValidateTimestamp(e.Timestamp); err != nil {
			addf("row %d: %v", row, err)
		}
		if !e.Type.valid() {
			addf("row %d: type %d is not 0-5", row, e.Type)
			continue
		}
		switch e.Type {
		case EventAdmission:
			if admitted {
				addf("row %d: admission while already admitted", row)
			}
			admitted = true
		case EventDischarge:
			if !admitted {
				addf("row %d: discharge without admission", row)
			}
			admitted = false
			if e.DischargeDisposition == "" {
				addf("row %d: discharge disposition is empty", row)
			} else if !tab.DischargeDisposition.Has(e.DischargeDisposition) {
				addf("row %d: discharge disposition %q is not in table 0112", row, e.DischargeDisposition)
			}
		case EventDiagnosis:
			if e.Provisional != "" && e.Provisional != "1" {
				addf("row %d: provisional must be 1 or empty, got %q", row, e.Provisional)
			}
		case EventLabResult:
			if e.JLAC10 == "" {
				addf("row %d: jlac10 code is empty", row)
			} else if len(e.JLAC10) != 17 {
				addf("row %d: jlac10 code must be 17 characters without hyphens, got %q", row, e.JLAC10)
			}
			if e.LabValue == "" {
				addf("row %d: lab value is empty", row)
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %s", filepath.Base(s.Path), strings.Join(problems, "; "))
	}
	return nil
}
