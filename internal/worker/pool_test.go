package worker

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/ssmix"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
	"github.com/ssmixtwins/ssmixtwins/internal/timeline"
)

const sourceHeader = "timestamp,type,text,icd10,mdcdx2,provisional,hot,jlac10,lab_value,unit,discharge_disposition\n"

func writeSourceDir(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, rows := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(sourceHeader+rows), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func newTestRunner(t *testing.T, opts Options) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	tab := tables.Default()
	store := ssmix.NewStore(root, ssmix.EncodingUTF8, tab)
	if opts.Policy == (timeline.Policy{}) {
		opts.Policy = timeline.DefaultPolicy()
	}
	return NewRunner(tab, store, nil, opts, zerolog.Nop()), root
}

func TestPatientIDPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := patientIDPool(rng, 30)
	if len(ids) != 30 {
		t.Fatalf("got %d ids, want 30", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if len(id) != 10 {
			t.Errorf("id %q is not 10 digits", id)
		}
		for _, r := range id {
			if r < '0' || r > '9' {
				t.Fatalf("id %q contains a non-digit", id)
			}
		}
		if seen[id] {
			t.Errorf("id %q minted twice", id)
		}
		seen[id] = true
	}
}

func TestPatientIDPoolSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := patientIDPool(rng, 1)
	if len(ids) != 1 || len(ids[0]) != 10 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestRunReplaysEveryPatient(t *testing.T) {
	_, paths := writeSourceDir(t, map[string]string{
		"40_M_one.csv": "20200102100000,2,急性気管支炎,J20.9,8843210,,,,,,\n",
		"62_F_two.csv": "20200304090000,3,ロキソニン錠６０ｍｇ,,,,108904431,,,,\n",
	})
	runner, root := newTestRunner(t, Options{Workers: 2, Seed: 1})

	report, err := runner.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Patients != 2 || report.Failed != 0 {
		t.Fatalf("Patients = %d, Failed = %d", report.Patients, report.Failed)
	}
	// Each source yields a visit, its clinical record and the snapshot.
	if report.ByType[hl7.CategoryVisit] != 2 {
		t.Errorf("ByType[ADT-12] = %d, want 2", report.ByType[hl7.CategoryVisit])
	}
	if report.ByType[hl7.CategoryDemographics] != 2 {
		t.Errorf("ByType[ADT-00] = %d, want 2", report.ByType[hl7.CategoryDemographics])
	}
	if report.Files != 6 {
		t.Errorf("Files = %d, want 6", report.Files)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("storage root is empty")
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	_, paths := writeSourceDir(t, map[string]string{
		"40_M_good.csv": "20200102100000,2,急性気管支炎,J20.9,8843210,,,,,,\n",
		"40_M_bad.csv":  "20200102100000,1,,,,,,,,,01\n", // discharge without admission
	})
	runner, _ := newTestRunner(t, Options{Workers: 1, Seed: 1})

	report, err := runner.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Patients != 1 || report.Failed != 1 {
		t.Fatalf("Patients = %d, Failed = %d", report.Patients, report.Failed)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %v", report.Failures)
	}
	if !strings.Contains(report.Failures[0].Source, "40_M_bad.csv") {
		t.Errorf("failure names %q, want the bad source", report.Failures[0].Source)
	}
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	runner, _ := newTestRunner(t, Options{Workers: 1, Seed: 1})
	if _, err := runner.Run(context.Background(), nil); err == nil {
		t.Error("empty batch should be rejected")
	}
}

func TestValidateAggregatesProblems(t *testing.T) {
	_, paths := writeSourceDir(t, map[string]string{
		"40_M_good.csv": "20200102100000,2,急性気管支炎,J20.9,8843210,,,,,,\n",
		"40_M_one.csv":  "20200102100000,1,,,,,,,,,01\n",
		"40_M_two.csv":  "20200102100000,5,WBC,,,,,123,4.5,mg/dL,\n",
	})
	runner, _ := newTestRunner(t, Options{Workers: 1, Seed: 1})

	err := runner.Validate(paths)
	if err == nil {
		t.Fatal("Validate should report the invalid sources")
	}
	if !strings.Contains(err.Error(), "2 of 3 source files are invalid") {
		t.Errorf("error = %v, want a 2-of-3 summary", err)
	}
	if !strings.Contains(err.Error(), "40_M_one.csv") || !strings.Contains(err.Error(), "40_M_two.csv") {
		t.Errorf("error should name both invalid sources, got %v", err)
	}
}
