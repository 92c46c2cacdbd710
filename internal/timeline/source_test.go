package timeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

const sourceHeader = "timestamp,type,text,icd10,mdcdx2,provisional,hot,jlac10,lab_value,unit,discharge_disposition\n"

func writeSource(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(sourceHeader+body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSourceParsesFileName(t *testing.T) {
	path := writeSource(t, "40_F_case-001.csv",
		"20200102100000,2,急性気管支炎,J20.9,8843210,,,,,,\n")
	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if src.StartAge != 40 {
		t.Errorf("StartAge = %d, want 40", src.StartAge)
	}
	if src.Sex != "F" {
		t.Errorf("Sex = %q, want F", src.Sex)
	}
	if len(src.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(src.Events))
	}
	if src.Events[0].Type != EventDiagnosis {
		t.Errorf("Type = %d, want diagnosis", src.Events[0].Type)
	}
}

func TestLoadSourceRejectsBadNames(t *testing.T) {
	for _, name := range []string{
		"121_M_case.csv", // age out of range
		"40_X_case.csv",  // unknown sex
		"40_case.csv",    // missing sex part
		"40_M_case.txt",  // wrong extension
	} {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(sourceHeader), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadSource(path); err == nil {
			t.Errorf("LoadSource(%s) should fail", name)
		}
	}
}

func TestLoadSourceRejectsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "40_M_case.csv")
	if err := os.WriteFile(path, []byte("timestamp,type\n20200102,0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadSource(path); err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Errorf("LoadSource should name the missing column, got %v", err)
	}
}

func TestLoadSourceSortsByTimestampThenType(t *testing.T) {
	path := writeSource(t, "40_M_case.csv",
		"20200103090000,1,,,,,,,,,01\n"+
			"20200102100000,3,ロキソニン錠,,,,108904431,,,,\n"+
			"20200102100000,2,急性気管支炎,J20.9,8843210,,,,,,\n"+
			"20200101080000,0,,,,,,,,,\n")
	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	var got []EventType
	for _, e := range src.Events {
		got = append(got, e.Type)
	}
	want := []EventType{EventAdmission, EventDiagnosis, EventPrescription, EventDischarge}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted types = %v, want %v", got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tab := tables.Default()
	cases := []struct {
		name string
		rows string
		want string
	}{
		{"empty table", "", "no rows"},
		{"bad timestamp", "2020013x,2,dx,,,,,,,,\n", "timestamp"},
		{"double admission", "20200101,0,,,,,,,,,\n20200102,0,,,,,,,,,\n", "already admitted"},
		{"discharge without admission", "20200101,1,,,,,,,,,01\n", "without admission"},
		{"bad disposition", "20200101,0,,,,,,,,,\n20200102,1,,,,,,,,,XX\n", "table 0112"},
		{"bad type", "20200101,9,,,,,,,,,\n", "not 0-5"},
		{"short jlac10", "20200101,5,WBC,,,,,123,4.5,mg/dL,\n", "17 characters"},
		{"missing lab value", "20200101,5,WBC,,,,,3B035000002327201,,mg/dL,\n", "lab value"},
	}
	for _, c := range cases {
		src, err := LoadSource(writeSource(t, "40_M_case.csv", c.rows))
		if err != nil {
			t.Fatalf("%s: LoadSource: %v", c.name, err)
		}
		err = src.Validate(tab)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: Validate = %v, want mention of %q", c.name, err, c.want)
		}
	}
}

func TestValidateAcceptsCleanTable(t *testing.T) {
	src, err := LoadSource(writeSource(t, "40_M_case.csv",
		"20200101090000,0,,,,,,,,,\n"+
			"20200101100000,2,急性気管支炎,J20.9,8843210,,,,,,\n"+
			"20200101110000,5,白血球数,,,,,2A990000001930102,4.5,mg/dL,\n"+
			"20200102090000,1,,,,,,,,,01\n"))
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := src.Validate(tables.Default()); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
