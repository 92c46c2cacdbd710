package ssmix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

func validEntry() Entry {
	return Entry{
		PatientID:   "0123456789",
		Date:        "20200102",
		DataType:    hl7.CategoryAdmission,
		OrderNumber: "000000000000042",
		MessageTime: "20200102030405678",
		Department:  "01",
		Flag:        "1",
	}
}

func TestFileName(t *testing.T) {
	got := validEntry().FileName()
	want := "0123456789_20200102_ADT-22_000000000000042_20200102030405678_01_1"
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestPathShardsOnPatientID(t *testing.T) {
	e := validEntry()
	got := e.Path("root")
	want := filepath.Join("root", "012", "345", "0123456789", "20200102", "ADT-22", e.FileName())
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestPatientScopedEntry(t *testing.T) {
	e := Entry{
		PatientID:   "0123456789",
		Date:        NoValue,
		DataType:    hl7.CategoryDemographics,
		OrderNumber: DemographicsOrderNumber,
		MessageTime: "20200102030405678",
		Department:  NoValue,
		Flag:        "1",
	}
	if err := e.Validate(tables.Default()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := "0123456789_-_ADT-00_999999999999999_20200102030405678_-_1"
	if got := e.FileName(); got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestEntryValidate(t *testing.T) {
	tab := tables.Default()
	if err := validEntry().Validate(tab); err != nil {
		t.Fatalf("Validate(valid): %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"short patient id", func(e *Entry) { e.PatientID = "123456" }},
		{"bad date", func(e *Entry) { e.Date = "2020010" }},
		{"unknown data type", func(e *Entry) { e.DataType = "ADT-99" }},
		{"short order number", func(e *Entry) { e.OrderNumber = "42" }},
		{"short message time", func(e *Entry) { e.MessageTime = "20200102030405" }},
		{"unknown department", func(e *Entry) { e.Department = "ZZ" }},
		{"bad flag", func(e *Entry) { e.Flag = "9" }},
	}
	for _, c := range cases {
		e := validEntry()
		c.mutate(&e)
		if err := e.Validate(tab); err == nil {
			t.Errorf("%s: Validate should fail for %+v", c.name, e)
		}
	}
}

func TestParseEncoding(t *testing.T) {
	if _, err := ParseEncoding("iso-2022-jp"); err != nil {
		t.Errorf("ParseEncoding(iso-2022-jp): %v", err)
	}
	if _, err := ParseEncoding("utf-8"); err != nil {
		t.Errorf("ParseEncoding(utf-8): %v", err)
	}
	if _, err := ParseEncoding("shift_jis"); err == nil {
		t.Error("ParseEncoding(shift_jis) should fail")
	}
}

func TestStoreWrite(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, EncodingUTF8, tables.Default())
	e := validEntry()
	msg := "MSH|^~\\&|HIS123|SEND\nEVN||20200102030405"

	path, err := store.Write(e, msg)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != e.Path(root) {
		t.Errorf("Write returned %q, want %q", path, e.Path(root))
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(body) != msg {
		t.Errorf("stored body = %q, want %q", body, msg)
	}
}

func TestStoreWriteISO2022JPKeepsASCII(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, EncodingISO2022JP, tables.Default())
	e := validEntry()
	msg := "MSH|^~\\&|HIS123|SEND|GW|RCV"

	path, err := store.Write(e, msg)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(body) != msg {
		t.Errorf("ASCII text should encode byte for byte, got %q", body)
	}
}

func TestStoreWriteRejectsInvalidEntry(t *testing.T) {
	store := NewStore(t.TempDir(), EncodingUTF8, tables.Default())
	e := validEntry()
	e.Flag = "9"
	if _, err := store.Write(e, "MSH|"); err == nil {
		t.Error("invalid entry should be rejected before writing")
	}
}
