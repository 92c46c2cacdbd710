package messages

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

type fixture struct {
	tab      *tables.Tables
	fab      *clinical.Fabricator
	patient  *clinical.Patient
	primary  *clinical.Physician
	hospital *clinical.Hospital
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tab := tables.Default()
	fab := clinical.NewFabricator(rand.New(rand.NewSource(1)), tab, nil)
	patient, err := fab.Patient("0001234567", "19600102", "M", 60, "20200102")
	if err != nil {
		t.Fatalf("Patient: %v", err)
	}
	primary, err := fab.Physician()
	if err != nil {
		t.Fatalf("Physician: %v", err)
	}
	hospital, err := fab.Hospital()
	if err != nil {
		t.Fatalf("Hospital: %v", err)
	}
	return &fixture{tab: tab, fab: fab, patient: patient, primary: primary, hospital: hospital}
}

func segmentNames(msg string) []string {
	lines := strings.Split(msg, "\n")
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = strings.SplitN(l, "|", 2)[0]
	}
	return names
}

func (f *fixture) orderHeader(t *testing.T, orderNo string) clinical.OrderHeader {
	t.Helper()
	return clinical.OrderHeader{
		RequesterOrderNumber: orderNo,
		TransactionTime:      "20200102030405",
		EffectiveTime:        "20200102030405",
		Enterer:              f.primary,
		Requester:            f.primary,
	}
}

func TestDemographicsSegmentOrder(t *testing.T) {
	f := newFixture(t)
	msg, err := Demographics(f.tab, DemographicsParams{
		MessageTime:      "20200102030405678",
		MessageID:        "1234567890",
		TransactionTime:  "20200102030405",
		LastUpdated:      "20200102030405",
		Patient:          f.patient,
		PrimaryPhysician: f.primary,
	})
	if err != nil {
		t.Fatalf("Demographics: %v", err)
	}
	want := []string{"MSH", "EVN", "PID", "NK1", "PV1", "DB1", "OBX", "OBX", "OBX", "OBX"}
	for i := 0; i < len(f.patient.Allergies); i++ {
		want = append(want, "AL1")
	}
	want = append(want, "IN1")
	got := segmentNames(msg)
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("segment order = %v, want %v", got, want)
	}
}

func TestVisitSegmentOrder(t *testing.T) {
	f := newFixture(t)
	msg, err := Visit(f.tab, VisitParams{
		MessageTime:      "20200102030405678",
		MessageID:        "1234567890",
		TransactionTime:  "20200102030405",
		VisitTime:        "20200102020000",
		Department:       f.primary.Department,
		Patient:          f.patient,
		PrimaryPhysician: f.primary,
	})
	if err != nil {
		t.Fatalf("Visit: %v", err)
	}
	got := segmentNames(msg)
	want := []string{"MSH", "EVN", "PID", "PV1"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("segment order = %v, want %v", got, want)
	}
	if !strings.Contains(msg, "ADT^A04^ADT_A01") {
		t.Error("visit message should be typed ADT^A04^ADT_A01")
	}
}

func TestAdmissionRequiresAdmission(t *testing.T) {
	f := newFixture(t)
	_, err := Admission(f.tab, AdmissionParams{
		MessageTime:      "20200102030405678",
		MessageID:        "1234567890",
		TransactionTime:  "20200102030405",
		AdmissionTime:    "20200102020000",
		Patient:          f.patient,
		PrimaryPhysician: f.primary,
	})
	if err == nil {
		t.Fatal("admission message without a ward placement should be rejected")
	}
}

func TestDischargeKeepsWardLocation(t *testing.T) {
	f := newFixture(t)
	adm, err := f.fab.Admission(f.primary)
	if err != nil {
		t.Fatalf("Admission: %v", err)
	}
	msg, err := Discharge(f.tab, DischargeParams{
		MessageTime:          "20200102030405678",
		MessageID:            "1234567890",
		TransactionTime:      "20200102030405",
		DischargeTime:        "20200102030000",
		DischargeDisposition: "01",
		Patient:              f.patient,
		PrimaryPhysician:     f.primary,
		Admission:            adm,
	})
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	if !strings.Contains(msg, "ADT^A03^ADT_A03") {
		t.Error("discharge message should be typed ADT^A03^ADT_A03")
	}
	if !strings.Contains(msg, adm.Ward+"^"+adm.Room+"^"+adm.Bed+"^^^N") {
		t.Error("PV1-3 should still name the ward the patient leaves")
	}
}

func TestPrescriptionsSegmentOrder(t *testing.T) {
	f := newFixture(t)
	var orders []*clinical.PrescriptionOrder
	for i, name := range []string{"ロキソニン錠６０ｍｇ", "ムコダイン錠２５０ｍｇ"} {
		ord, err := f.fab.PrescriptionOrder("611170694", name, "HOT9", false, clinical.PrescriptionOrderSpec{
			PrescriptionNo: "1",
			RecipeNo:       "01",
			AdminNo:        "001",
			StartTime:      "20200102030405",
			Order:          f.orderHeader(t, "42"),
		})
		if err != nil {
			t.Fatalf("PrescriptionOrder %d: %v", i, err)
		}
		orders = append(orders, ord)
	}
	msg, err := Prescriptions(f.tab, PrescriptionsParams{
		MessageTime:          "20200102030405678",
		MessageID:            "1234567890",
		Patient:              f.patient,
		Hospital:             f.hospital,
		OutpatientDepartment: f.primary.Department,
		PrimaryPhysician:     f.primary,
		Orders:               orders,
	})
	if err != nil {
		t.Fatalf("Prescriptions: %v", err)
	}
	want := []string{"MSH", "PID", "PV1"}
	for i := 0; i < len(f.patient.Allergies); i++ {
		want = append(want, "AL1")
	}
	want = append(want, "ORC", "RXE", "TQ1", "RXR", "ORC", "RXE", "TQ1", "RXR")
	got := segmentNames(msg)
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("segment order = %v, want %v", got, want)
	}
	if !strings.Contains(msg, "RDE^O11^RDE_O11") {
		t.Error("prescription message should be typed RDE^O11^RDE_O11")
	}
	var orderNos []string
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(line, "ORC|") {
			orderNos = append(orderNos, strings.Split(line, "|")[2])
		}
	}
	if len(orderNos) != 2 || orderNos[0] != orderNos[1] {
		t.Errorf("ORC-2 values %v should be one shared order number", orderNos)
	}
	if orderNos[0] != "000000000000042" {
		t.Errorf("ORC-2 = %q, want zero-filled 42", orderNos[0])
	}
}

func TestPrescriptionsRejectMixedOrderNumbers(t *testing.T) {
	f := newFixture(t)
	var orders []*clinical.PrescriptionOrder
	for i, orderNo := range []string{"42", "43"} {
		ord, err := f.fab.PrescriptionOrder("611170694", "ロキソニン錠６０ｍｇ", "HOT9", false, clinical.PrescriptionOrderSpec{
			PrescriptionNo: "1",
			RecipeNo:       fmt.Sprintf("%02d", i+1),
			AdminNo:        "001",
			StartTime:      "20200102030405",
			Order:          f.orderHeader(t, orderNo),
		})
		if err != nil {
			t.Fatalf("PrescriptionOrder %d: %v", i, err)
		}
		orders = append(orders, ord)
	}
	_, err := Prescriptions(f.tab, PrescriptionsParams{
		MessageTime:          "20200102030405678",
		MessageID:            "1234567890",
		Patient:              f.patient,
		Hospital:             f.hospital,
		OutpatientDepartment: f.primary.Department,
		PrimaryPhysician:     f.primary,
		Orders:               orders,
	})
	if err == nil {
		t.Fatal("orders with differing order numbers should be rejected")
	}
	if !strings.Contains(err.Error(), "requester order number") {
		t.Errorf("error = %v, want requester order number mismatch", err)
	}
}

func TestLabResultsRejectMixedOrderNumbers(t *testing.T) {
	f := newFixture(t)
	var specimens []*clinical.LabSpecimen
	for _, orderNo := range []string{"45", "46"} {
		r, err := f.fab.LabResult("", "2A990000001930102", "赤血球数", "JC10", "452", "mg/dL")
		if err != nil {
			t.Fatalf("LabResult: %v", err)
		}
		sp, err := f.fab.LabSpecimen(false, []*clinical.LabResult{r}, clinical.LabSpecimenSpec{
			SpecimenID:   orderNo,
			SpecimenCode: "023",
			SampledTime:  "20200102030405",
			Order:        f.orderHeader(t, orderNo),
		})
		if err != nil {
			t.Fatalf("LabSpecimen: %v", err)
		}
		specimens = append(specimens, sp)
	}
	_, err := LabResults(f.tab, LabResultsParams{
		MessageTime:          "20200102030405678",
		MessageID:            "1234567890",
		Patient:              f.patient,
		Hospital:             f.hospital,
		OutpatientDepartment: f.primary.Department,
		PrimaryPhysician:     f.primary,
		Specimens:            specimens,
	})
	if err == nil {
		t.Fatal("specimens with differing order numbers should be rejected")
	}
}

func TestInjectionsCarryComponents(t *testing.T) {
	f := newFixture(t)
	base, err := f.fab.InjectionComponent("620007322", "生食注１００ｍＬ", "HOT9")
	if err != nil {
		t.Fatalf("InjectionComponent: %v", err)
	}
	additive, err := f.fab.InjectionComponent("620004814", "セファゾリン注射用１ｇ", "HOT9")
	if err != nil {
		t.Fatalf("InjectionComponent: %v", err)
	}
	ord, err := f.fab.InjectionOrder([]*clinical.InjectionComponent{base, additive}, false, clinical.InjectionOrderSpec{
		PrescriptionNo: "1",
		RecipeNo:       "01",
		AdminNo:        "001",
		StartTime:      "20200102030405",
		Order:          f.orderHeader(t, "43"),
	})
	if err != nil {
		t.Fatalf("InjectionOrder: %v", err)
	}
	msg, err := Injections(f.tab, InjectionsParams{
		MessageTime:          "20200102030405678",
		MessageID:            "1234567890",
		Patient:              f.patient,
		Hospital:             f.hospital,
		OutpatientDepartment: f.primary.Department,
		PrimaryPhysician:     f.primary,
		Orders:               []*clinical.InjectionOrder{ord},
	})
	if err != nil {
		t.Fatalf("Injections: %v", err)
	}
	names := segmentNames(msg)
	rxc := 0
	for _, n := range names {
		if n == "RXC" {
			rxc++
		}
	}
	if rxc != 2 {
		t.Errorf("got %d RXC rows, want 2", rxc)
	}
	tail := strings.Join(names[len(names)-6:], " ")
	if tail != "ORC RXE TQ1 RXR RXC RXC" {
		t.Errorf("order group tail = %q", tail)
	}
}

func TestProblemListPairsPRBWithORC(t *testing.T) {
	f := newFixture(t)
	var problems []*clinical.Problem
	for i, dx := range []string{"8843210", "8836401"} {
		h := f.orderHeader(t, "44")
		prob, err := f.fab.Problem(false, clinical.ProblemSpec{
			ActionTime:   "20200102030405",
			DxCode:       dx,
			DxName:       "診断名",
			DxCodeSystem: "MDCDX2",
			InstanceID:   fmt.Sprintf("00000000000004%d", 5+i),
			Order:        h,
		})
		if err != nil {
			t.Fatalf("Problem %d: %v", i, err)
		}
		problems = append(problems, prob)
	}
	msg, err := ProblemList(f.tab, ProblemListParams{
		MessageTime: "20200102030405678",
		MessageID:   "1234567890",
		Patient:     f.patient,
		Hospital:    f.hospital,
		Problems:    problems,
	})
	if err != nil {
		t.Fatalf("ProblemList: %v", err)
	}
	got := segmentNames(msg)
	want := []string{"MSH", "PID", "PRB", "ORC", "PRB", "ORC"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("segment order = %v, want %v", got, want)
	}
}

func TestLabResultsSetIDsRestartPerSpecimen(t *testing.T) {
	f := newFixture(t)
	makeSpecimen := func(specimenID string, values []string) *clinical.LabSpecimen {
		t.Helper()
		var results []*clinical.LabResult
		for _, v := range values {
			r, err := f.fab.LabResult("", "2A990000001930102", "赤血球数", "JC10", v, "mg/dL")
			if err != nil {
				t.Fatalf("LabResult: %v", err)
			}
			results = append(results, r)
		}
		sp, err := f.fab.LabSpecimen(false, results, clinical.LabSpecimenSpec{
			SpecimenID:   specimenID,
			SpecimenCode: "023",
			SampledTime:  "20200102030405",
			Order:        f.orderHeader(t, "45"),
		})
		if err != nil {
			t.Fatalf("LabSpecimen: %v", err)
		}
		return sp
	}
	msg, err := LabResults(f.tab, LabResultsParams{
		MessageTime:          "20200102030405678",
		MessageID:            "1234567890",
		Patient:              f.patient,
		Hospital:             f.hospital,
		OutpatientDepartment: f.primary.Department,
		PrimaryPhysician:     f.primary,
		Specimens: []*clinical.LabSpecimen{
			makeSpecimen("45", []string{"452", "460"}),
			makeSpecimen("46", []string{"455"}),
		},
	})
	if err != nil {
		t.Fatalf("LabResults: %v", err)
	}
	got := segmentNames(msg)
	want := []string{"MSH", "PID", "PV1", "SPM", "OBR", "ORC", "OBX", "OBX", "SPM", "OBR", "ORC", "OBX"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("segment order = %v, want %v", got, want)
	}
	var setIDs []string
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(line, "OBX|") {
			setIDs = append(setIDs, strings.Split(line, "|")[1])
		}
	}
	if strings.Join(setIDs, " ") != "1 2 1" {
		t.Errorf("OBX set ids = %v, want restart per specimen", setIDs)
	}
}
