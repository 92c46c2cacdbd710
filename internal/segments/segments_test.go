package segments

import (
	"strings"
	"testing"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

func mustType(t *testing.T, c hl7.Category) hl7.MessageType {
	t.Helper()
	mt, err := hl7.CategoryType(c)
	if err != nil {
		t.Fatalf("CategoryType(%s): %v", c, err)
	}
	return mt
}

func testPhysician(t *testing.T) *clinical.Physician {
	t.Helper()
	p, err := clinical.NewPhysician(tables.Default(),
		"1234567890", "太郎", "タロウ", "仮山田", "カリヤマダ", "01")
	if err != nil {
		t.Fatalf("NewPhysician: %v", err)
	}
	return p
}

func TestMSH(t *testing.T) {
	mt := mustType(t, hl7.CategoryDemographics)
	seg, err := MSH(mt, "20200102030405678", "12345678900")
	if err != nil {
		t.Fatalf("MSH: %v", err)
	}
	want := `MSH|^~\&|HIS123|SEND|GW|RCV|20200102030405678||ADT^A08^ADT_A01|12345678900|P|2.5||||||~ISO IR87||ISO 2022-1994|SS-MIX2_1.20_h^SS-MIX2^1.2.392.200250.2.1.100.1.2.120^ISO`
	if seg != want {
		t.Errorf("MSH =\n%s\nwant\n%s", seg, want)
	}
}

func TestMSHRejectsLongMessageID(t *testing.T) {
	mt := mustType(t, hl7.CategoryDemographics)
	if _, err := MSH(mt, "20200102030405678", strings.Repeat("9", 21)); err == nil {
		t.Error("21-character message id should be rejected")
	}
	if _, err := MSH(mt, "", "12345678900"); err == nil {
		t.Error("empty message time should be rejected")
	}
}

func TestEVNGates(t *testing.T) {
	tab := tables.Default()
	snapshot := mustType(t, hl7.CategoryDemographics)
	seg, err := EVN(snapshot, tab, "20200102030405", "", "", "", "")
	if err != nil {
		t.Fatalf("EVN: %v", err)
	}
	if !strings.HasPrefix(seg, "EVN||20200102030405") {
		t.Errorf("EVN = %q", seg)
	}
	if _, err := EVN(snapshot, tab, "20200102030405", "20200103000000", "", "", ""); err == nil {
		t.Error("planned event time should be rejected for ADT^A08")
	}
	if _, err := EVN(snapshot, tab, "20200102030405", "", "", "", "20200102030405"); err == nil {
		t.Error("event occurred time should be rejected for ADT^A08")
	}
	if _, err := EVN(snapshot, tab, "20200102030405", "", "XX", "", ""); err == nil {
		t.Error("reason code outside table 0062 should be rejected")
	}
}

func TestPIDRequiresLastUpdatedForSnapshot(t *testing.T) {
	patient := &clinical.Patient{
		ID: "0001234567", DOB: "19600102", Sex: "F",
		FirstName: "花子", LastName: "仮山田",
		FirstNameKana: "ハナコ", LastNameKana: "カリヤマダ",
	}
	snapshot := mustType(t, hl7.CategoryDemographics)
	if _, err := PID(snapshot, "", patient); err == nil {
		t.Error("missing PID-33 should be rejected for ADT^A08")
	}
	seg, err := PID(snapshot, "20200102030405", patient)
	if err != nil {
		t.Fatalf("PID: %v", err)
	}
	if !strings.HasPrefix(seg, "PID|0001||0001234567") {
		t.Errorf("PID = %q", seg)
	}
	admission := mustType(t, hl7.CategoryAdmission)
	if _, err := PID(admission, "", patient); err != nil {
		t.Errorf("PID-33 should be optional for ADT^A01: %v", err)
	}
}

func TestPV1DepartmentGate(t *testing.T) {
	tab := tables.Default()
	primary := testPhysician(t)
	params := PV1Params{
		SetID:                "0001",
		OutpatientDepartment: "01",
		AdmissionOrVisitTime: "20200102030405",
		PrimaryPhysician:     primary,
	}
	visit := mustType(t, hl7.CategoryVisit)
	seg, err := PV1(visit, tab, params)
	if err != nil {
		t.Fatalf("PV1: %v", err)
	}
	if !strings.Contains(seg, "|01|") {
		t.Errorf("PV1-10 should carry the department for A04: %q", seg)
	}
	discharge := mustType(t, hl7.CategoryDischarge)
	params.DischargeTime = "20200103040506"
	params.DischargeDisposition = "01"
	seg, err = PV1(discharge, tab, params)
	if err != nil {
		t.Fatalf("PV1: %v", err)
	}
	fieldTen := strings.Split(seg, "|")[10]
	if fieldTen != "" {
		t.Errorf("PV1-10 should be empty for A03, got %q", fieldTen)
	}

	params.DischargeDisposition = "XX"
	if _, err := PV1(discharge, tab, params); err == nil {
		t.Error("disposition outside table 0112 should be rejected")
	}
	params.DischargeDisposition = "01"
	params.SetID = "0002"
	if _, err := PV1(discharge, tab, params); err == nil {
		t.Error("set id other than 0001 should be rejected")
	}
}

func TestPV1InpatientLocation(t *testing.T) {
	tab := tables.Default()
	attending := testPhysician(t)
	adm, err := clinical.NewAdmission("03", "302", "01", attending)
	if err != nil {
		t.Fatalf("NewAdmission: %v", err)
	}
	seg, err := PV1(mustType(t, hl7.CategoryAdmission), tab, PV1Params{
		SetID:                "0001",
		AdmissionOrVisitTime: "20200102030405",
		PrimaryPhysician:     attending,
		Admission:            adm,
	})
	if err != nil {
		t.Fatalf("PV1: %v", err)
	}
	parts := strings.Split(seg, "|")
	if parts[2] != "I" {
		t.Errorf("PV1-2 = %q, want I", parts[2])
	}
	if parts[3] != "03^302^01^^^N" {
		t.Errorf("PV1-3 = %q", parts[3])
	}
}

func TestOBXCodedValue(t *testing.T) {
	tab := tables.Default()
	seg, err := OBX(tab, OBXParams{
		SequenceNo: "1", ValueType: "CWE",
		Code: "5H010000001999911", Name: "白血球数", CodeSystem: "JC10",
		Value: "高い", ValueCode: "H", ValueCodeSystem: "99XYZ",
		Status: "F",
	})
	if err != nil {
		t.Fatalf("OBX: %v", err)
	}
	parts := strings.Split(seg, "|")
	if parts[5] != "H^高い^99XYZ" {
		t.Errorf("OBX-5 = %q, want code first", parts[5])
	}
}

func TestOBXPlainValueAndUnit(t *testing.T) {
	tab := tables.Default()
	seg, err := OBX(tab, OBXParams{
		SequenceNo: "2", ValueType: "NM",
		Code: "2A990000001930102", Name: "赤血球数", CodeSystem: "JC10",
		Value: "4.52", Unit: "10^6/uL", UnitCode: "10^6/uL", UnitCodeSystem: "99XYZ",
		Status: "F", ObservationTime: "20200102030405",
	})
	if err != nil {
		t.Fatalf("OBX: %v", err)
	}
	parts := strings.Split(seg, "|")
	if parts[5] != "4.52" {
		t.Errorf("OBX-5 = %q", parts[5])
	}
	if parts[14] != "202001020304" {
		t.Errorf("OBX-14 = %q, want minute precision", parts[14])
	}
	if _, err := OBX(tab, OBXParams{ValueType: "ZZ"}); err == nil {
		t.Error("value type outside table 0125 should be rejected")
	}
}

func TestORCDepartment(t *testing.T) {
	tab := tables.Default()
	requester := testPhysician(t)
	h := clinical.OrderHeader{
		Control:              "NW",
		RequesterOrderNumber: "000000000000042",
		TransactionTime:      "20200102030405",
		EffectiveTime:        "20200102030405",
		OrderType:            "O",
		Enterer:              requester,
		Requester:            requester,
	}
	seg, err := ORC(tab, h, "", nil)
	if err != nil {
		t.Fatalf("ORC: %v", err)
	}
	parts := strings.Split(seg, "|")
	if parts[2] != "000000000000042" {
		t.Errorf("ORC-2 = %q", parts[2])
	}
	if !strings.HasPrefix(parts[17], "01^") || !strings.HasSuffix(parts[17], "^HL70069") {
		t.Errorf("ORC-17 = %q, want the requester department coded against 0069", parts[17])
	}
	if !strings.HasPrefix(parts[29], "O^") {
		t.Errorf("ORC-29 = %q, want order class O", parts[29])
	}
}

func TestAL1RejectsBadSequence(t *testing.T) {
	tab := tables.Default()
	allergy, err := clinical.NewAllergy(tab, "DA", "1149019", "アスピリン", "HOT7")
	if err != nil {
		t.Fatalf("NewAllergy: %v", err)
	}
	if _, err := AL1(tab, "0", allergy); err == nil {
		t.Error("sequence number 0 should be rejected")
	}
	seg, err := AL1(tab, "1", allergy)
	if err != nil {
		t.Fatalf("AL1: %v", err)
	}
	if !strings.HasPrefix(seg, "AL1|1|DA^") {
		t.Errorf("AL1 = %q", seg)
	}
}
