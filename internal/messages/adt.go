// Package messages assembles complete HL7 v2.5 messages from rendered
// segments. Each assembler returns the full message text with segments
// joined by LF, in the group order the SS-MIX2 guideline prescribes for
// the message structure.
package messages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/segments"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

func join(segs []string) string {
	return strings.Join(segs, hl7.SegmentSep)
}

// sharedOrderNumbers rejects a group whose rows disagree on the order
// numbers minted for it. One stored file is addressed by a single ORC-2,
// so mismatched rows would scatter the group across storage keys.
func sharedOrderNumbers(object string, headers []clinical.OrderHeader) error {
	if len(headers) == 0 {
		return nil
	}
	first := headers[0]
	for _, h := range headers[1:] {
		if h.RequesterOrderNumber != first.RequesterOrderNumber {
			return fmt.Errorf("%s rows must share one requester order number, got %s and %s",
				object, first.RequesterOrderNumber, h.RequesterOrderNumber)
		}
		if h.FillerOrderNumber != first.FillerOrderNumber {
			return fmt.Errorf("%s rows must share one filler order number, got %s and %s",
				object, first.FillerOrderNumber, h.FillerOrderNumber)
		}
	}
	return nil
}

// DemographicsParams carries everything the patient snapshot message
// needs beyond the patient record itself.
type DemographicsParams struct {
	MessageTime      string
	MessageID        string
	TransactionTime  string
	LastUpdated      string
	Patient          *clinical.Patient
	PrimaryPhysician *clinical.Physician
	Admission        *clinical.Admission
}

// Demographics assembles the ADT^A08 snapshot: identity, kin, visit
// context, disability, vitals, allergies and insurances.
func Demographics(tab *tables.Tables, p DemographicsParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryDemographics)
	if err != nil {
		return "", err
	}
	msh, err := segments.MSH(mt, p.MessageTime, p.MessageID)
	if err != nil {
		return "", err
	}
	evn, err := segments.EVN(mt, tab, p.TransactionTime, "", "", "", "")
	if err != nil {
		return "", err
	}
	pid, err := segments.PID(mt, p.LastUpdated, p.Patient)
	if err != nil {
		return "", err
	}
	nk1, err := segments.NK1(tab, "1", "SEL", p.Patient)
	if err != nil {
		return "", err
	}
	dept := ""
	if p.PrimaryPhysician != nil {
		dept = p.PrimaryPhysician.Department
	}
	pv1, err := segments.PV1(mt, tab, segments.PV1Params{
		SetID:                "0001",
		OutpatientDepartment: dept,
		PrimaryPhysician:     p.PrimaryPhysician,
		Admission:            p.Admission,
	})
	if err != nil {
		return "", err
	}
	db1, err := segments.DB1(tab, "1", "PT", "Y")
	if err != nil {
		return "", err
	}
	segs := []string{msh, evn, pid, nk1, pv1, db1}

	obxRows := vitalsRows(p.Patient)
	for i, row := range obxRows {
		row.SequenceNo = strconv.Itoa(i + 1)
		obx, err := segments.OBX(tab, row)
		if err != nil {
			return "", err
		}
		segs = append(segs, obx)
	}
	for i, al := range p.Patient.Allergies {
		al1, err := segments.AL1(tab, strconv.Itoa(i+1), al)
		if err != nil {
			return "", err
		}
		segs = append(segs, al1)
	}
	for i, ins := range p.Patient.Insurances {
		in1, err := segments.IN1(tab, strconv.Itoa(i+1), ins)
		if err != nil {
			return "", err
		}
		segs = append(segs, in1)
	}
	return join(segs), nil
}

// vitalsRows builds the OBX rows of the demographics message from
// whichever measurements the patient record carries. JLAC10 codes name
// height, weight and the two blood type axes.
func vitalsRows(p *clinical.Patient) []segments.OBXParams {
	var rows []segments.OBXParams
	if p.Height != "" {
		rows = append(rows, segments.OBXParams{
			ValueType: "NM", Code: "9N001000000000001", Name: "身長", CodeSystem: "JC10",
			Value: p.Height, Unit: "cm", UnitCode: "cm", UnitCodeSystem: "ISO+", Status: "F",
		})
	}
	if p.Weight != "" {
		rows = append(rows, segments.OBXParams{
			ValueType: "NM", Code: "9N006000000000001", Name: "体重", CodeSystem: "JC10",
			Value: p.Weight, Unit: "kg", UnitCode: "kg", UnitCodeSystem: "ISO+", Status: "F",
		})
	}
	if p.ABOBloodType != "" {
		rows = append(rows, segments.OBXParams{
			ValueType: "CWE", Code: "5H010000001999911", Name: "血液型-ABO式", CodeSystem: "JC10",
			Value: p.ABOBloodType, ValueCode: p.ABOBloodType, ValueCodeSystem: "JSHR002", Status: "F",
		})
	}
	if p.RhBloodType != "" {
		rows = append(rows, segments.OBXParams{
			ValueType: "CWE", Code: "5H020000001999911", Name: "血液型-Rh式", CodeSystem: "JC10",
			Value: p.RhBloodType, ValueCode: "Rh" + p.RhBloodType, ValueCodeSystem: "JSHR002", Status: "F",
		})
	}
	return rows
}

// AdmissionParams carries an inpatient admission event.
type AdmissionParams struct {
	MessageTime      string
	MessageID        string
	TransactionTime  string
	AdmissionTime    string
	Patient          *clinical.Patient
	PrimaryPhysician *clinical.Physician
	Admission        *clinical.Admission
}

// Admission assembles the ADT^A01 admission message.
func Admission(tab *tables.Tables, p AdmissionParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryAdmission)
	if err != nil {
		return "", err
	}
	if p.Admission == nil {
		return "", fmt.Errorf("admission message requires an admission")
	}
	return adtCore(tab, mt, p.MessageTime, p.MessageID, p.TransactionTime, p.Patient, segments.PV1Params{
		SetID:                "0001",
		AdmissionOrVisitTime: p.AdmissionTime,
		PrimaryPhysician:     p.PrimaryPhysician,
		Admission:            p.Admission,
	})
}

// DischargeParams carries an inpatient discharge event.
type DischargeParams struct {
	MessageTime          string
	MessageID            string
	TransactionTime      string
	DischargeTime        string
	DischargeDisposition string
	Patient              *clinical.Patient
	PrimaryPhysician     *clinical.Physician
	Admission            *clinical.Admission
}

// Discharge assembles the ADT^A03 discharge message. The admission is
// kept so PV1-3 still names the ward the patient leaves.
func Discharge(tab *tables.Tables, p DischargeParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryDischarge)
	if err != nil {
		return "", err
	}
	return adtCore(tab, mt, p.MessageTime, p.MessageID, p.TransactionTime, p.Patient, segments.PV1Params{
		SetID:                "0001",
		DischargeTime:        p.DischargeTime,
		DischargeDisposition: p.DischargeDisposition,
		PrimaryPhysician:     p.PrimaryPhysician,
		Admission:            p.Admission,
	})
}

// VisitParams carries an outpatient visit event.
type VisitParams struct {
	MessageTime      string
	MessageID        string
	TransactionTime  string
	VisitTime        string
	Department       string
	Patient          *clinical.Patient
	PrimaryPhysician *clinical.Physician
}

// Visit assembles the ADT^A04 outpatient registration message.
func Visit(tab *tables.Tables, p VisitParams) (string, error) {
	mt, err := hl7.CategoryType(hl7.CategoryVisit)
	if err != nil {
		return "", err
	}
	return adtCore(tab, mt, p.MessageTime, p.MessageID, p.TransactionTime, p.Patient, segments.PV1Params{
		SetID:                "0001",
		OutpatientDepartment: p.Department,
		AdmissionOrVisitTime: p.VisitTime,
		PrimaryPhysician:     p.PrimaryPhysician,
	})
}

// adtCore assembles the MSH EVN PID PV1 spine shared by the movement
// messages.
func adtCore(tab *tables.Tables, mt hl7.MessageType, messageTime, messageID, transactionTime string, patient *clinical.Patient, pv1p segments.PV1Params) (string, error) {
	msh, err := segments.MSH(mt, messageTime, messageID)
	if err != nil {
		return "", err
	}
	evn, err := segments.EVN(mt, tab, transactionTime, "", "", "", "")
	if err != nil {
		return "", err
	}
	pid, err := segments.PID(mt, "", patient)
	if err != nil {
		return "", err
	}
	pv1, err := segments.PV1(mt, tab, pv1p)
	if err != nil {
		return "", err
	}
	return join([]string{msh, evn, pid, pv1}), nil
}
