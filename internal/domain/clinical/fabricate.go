package clinical

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// Fabricator draws synthetic demographics, staff and order details
// from a seeded random source. Two fabricators built with the same
// seed, tables and pools produce identical sequences.
//
// Fabricated person names carry a 仮/カリ surname prefix so nobody
// mistakes the output for real patient data.
type Fabricator struct {
	rng   *rand.Rand
	tab   *tables.Tables
	pools *Pools
}

// NewFabricator builds a Fabricator on the given random source.
func NewFabricator(rng *rand.Rand, tab *tables.Tables, pools *Pools) *Fabricator {
	if pools == nil {
		pools = DefaultPools()
	}
	return &Fabricator{rng: rng, tab: tab, pools: pools}
}

func (f *Fabricator) pick(list []string) string {
	return list[f.rng.Intn(len(list))]
}

func (f *Fabricator) pickName(list []NameEntry) NameEntry {
	return list[f.rng.Intn(len(list))]
}

// Physician fabricates a physician with a random 10-digit id and a
// department from the pool. Id collisions are not checked.
func (f *Fabricator) Physician() (*Physician, error) {
	last := f.pickName(f.pools.LastNames)
	first := f.pickName(f.pools.FirstNamesMale)
	if f.rng.Intn(2) == 0 {
		first = f.pickName(f.pools.FirstNamesFemale)
	}
	id := strconv.Itoa(1000000000 + f.rng.Intn(9000000000))
	return NewPhysician(f.tab,
		id,
		first.Kanji, first.Kana,
		"仮"+last.Kanji, "カリ"+last.Kana,
		f.pick(f.pools.Departments),
	)
}

// PhysicianPool fabricates n distinct physicians.
func (f *Fabricator) PhysicianPool(n int) ([]*Physician, error) {
	out := make([]*Physician, 0, n)
	for i := 0; i < n; i++ {
		p, err := f.Physician()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Hospital fabricates the sending facility. The name is fixed so every
// message of a run agrees on it.
func (f *Fabricator) Hospital() (*Hospital, error) {
	prefecture := "東京都"
	if f.rng.Intn(2) == 0 {
		prefecture = "埼玉県"
	}
	address := fmt.Sprintf("%s%s%s%d丁目%d番%d号",
		prefecture, f.pick(f.pools.Cities), f.pick(f.pools.Towns),
		1+f.rng.Intn(30), 1+f.rng.Intn(30), 1+f.rng.Intn(20))
	postal := fmt.Sprintf("%03d-%04d", 100+f.rng.Intn(900), f.rng.Intn(10000))
	phone := fmt.Sprintf("03-%04d-%04d", 1000+f.rng.Intn(9000), f.rng.Intn(10000))
	return NewHospital("日本医療情報推進病院", postal, address, phone)
}

var aboWeights = []struct {
	code   string
	weight float64
}{
	{"A", 0.4},
	{"B", 0.3},
	{"AB", 0.1},
	{"O", 0.2},
}

func (f *Fabricator) aboBloodType() string {
	r := f.rng.Float64()
	for _, w := range aboWeights {
		if r < w.weight {
			return w.code
		}
		r -= w.weight
	}
	return "O"
}

var allergyCountWeights = []struct {
	n      int
	weight float64
}{
	{0, 0.5},
	{1, 0.2},
	{2, 0.2},
	{3, 0.05},
	{4, 0.05},
}

// Allergies fabricates a patient's allergy list. Half of all patients
// get none.
func (f *Fabricator) Allergies() ([]*Allergy, error) {
	n := 0
	r := f.rng.Float64()
	for _, w := range allergyCountWeights {
		if r < w.weight {
			n = w.n
			break
		}
		r -= w.weight
	}
	out := make([]*Allergy, 0, n)
	for i := 0; i < n; i++ {
		a := f.pools.Allergens[f.rng.Intn(len(f.pools.Allergens))]
		allergy, err := NewAllergy(f.tab, a.TypeCode, a.Code, a.Name, a.CodeSystem)
		if err != nil {
			return nil, err
		}
		out = append(out, allergy)
	}
	return out, nil
}

// Insurance fabricates one insurance plan effective from currentDate
// for one year. Half of all plans are national health insurance.
func (f *Fabricator) Insurance(currentDate string) (*Insurance, error) {
	planCode := "C0"
	if f.rng.Intn(2) == 1 {
		codes := make([]string, 0, len(f.tab.InsurancePlan))
		for code := range f.tab.InsurancePlan {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		planCode = codes[f.rng.Intn(len(codes))]
	}
	lastSix := strconv.Itoa(100000 + f.rng.Intn(900000))
	number := lastSix
	if planCode != "C0" {
		number = planCode + lastSix
	}
	plan := f.tab.InsurancePlan[planCode]
	planType := ""
	if plan.Classification == "PE" {
		types := f.tab.PublicExpenseType.Codes()
		planType = types[f.rng.Intn(len(types))]
	}
	company := ""
	switch plan.Classification {
	case "MI", "PE", "TI", "PS", "PI", "OE", "OT":
		company = "保険者の名称(仮)"
	}
	start, err := hl7.ParseTimestamp(currentDate)
	if err != nil {
		return nil, invalidf("insurance", "effective date", "%v", err)
	}
	return NewInsurance(f.tab, planCode, number,
		hl7.FormatTimestamp(start, hl7.PrecisionDay),
		hl7.FormatTimestamp(start.AddDate(1, 0, 0), hl7.PrecisionDay),
		planType, "SEL", company)
}

// Patient fabricates a full patient record around the fixed identity
// fields taken from the source file name.
func (f *Fabricator) Patient(patientID, dob, sex string, age int, latestDate string) (*Patient, error) {
	last := f.pickName(f.pools.LastNames)
	var first NameEntry
	if sex == "F" {
		first = f.pickName(f.pools.FirstNamesFemale)
	} else {
		first = f.pickName(f.pools.FirstNamesMale)
	}

	prefecture := "東京都"
	if f.rng.Intn(2) == 1 {
		if f.rng.Intn(2) == 0 {
			prefecture = f.pick(f.pools.Prefectures)
		}
	}
	address := fmt.Sprintf("%s%s%s%d丁目%d番%d号",
		prefecture, f.pick(f.pools.Cities), f.pick(f.pools.Towns),
		1+f.rng.Intn(30), 1+f.rng.Intn(30), 1+f.rng.Intn(20))
	postal := fmt.Sprintf("%03d-%04d", 100+f.rng.Intn(900), f.rng.Intn(10000))
	homePhone := fmt.Sprintf("099-%04d-%04d", 1000+f.rng.Intn(9000), f.rng.Intn(10000))

	working := false
	switch {
	case age < 16:
	case age < 24:
		working = f.rng.Float64() < 0.5
	case age < 65:
		working = f.rng.Float64() < 0.8
	default:
		working = f.rng.Float64() < 0.4
	}
	workPlace, workPhone := "", ""
	if working {
		workPlace = f.pick(f.pools.Companies)
		workPhone = fmt.Sprintf("099-%04d-%04d", 1000+f.rng.Intn(9000), f.rng.Intn(10000))
	}

	rh := "+"
	if f.rng.Float64() >= 0.995 {
		rh = "-"
	}
	height := fmt.Sprintf("%.1f", f.rng.NormFloat64()*6+172)
	weight := fmt.Sprintf("%.1f", f.rng.NormFloat64()*10+60)

	allergies, err := f.Allergies()
	if err != nil {
		return nil, err
	}
	insurance, err := f.Insurance(latestDate)
	if err != nil {
		return nil, err
	}

	return NewPatient(f.tab, PatientSpec{
		ID:            patientID,
		DOB:           dob,
		Sex:           sex,
		FirstName:     first.Kanji,
		FirstNameKana: first.Kana,
		LastName:      "仮" + last.Kanji,
		LastNameKana:  "カリ" + last.Kana,
		PostalCode:    postal,
		Address:       address,
		HomePhone:     homePhone,
		WorkPlace:     workPlace,
		WorkPhone:     workPhone,
		ABOBloodType:  f.aboBloodType(),
		RhBloodType:   rh,
		Height:        height,
		Weight:        weight,
		Allergies:     allergies,
		Insurances:    []*Insurance{insurance},
	})
}

// Admission fabricates a ward placement under the given attending.
func (f *Fabricator) Admission(attending *Physician) (*Admission, error) {
	return NewAdmission(
		f.pick(f.pools.Wards),
		f.pick(f.pools.Rooms),
		f.pick(f.pools.Beds),
		attending,
	)
}

// Keyword tables mapping drug names to MERIT-9 units, dosage forms and
// routes. Lookup order matters; the first match wins.
var prescriptionUnits = []struct {
	code     string
	keywords []string
}{
	{"TAB", []string{"錠"}},
	{"CAP", []string{"カプセル", "cap", "Cap"}},
	{"PCK", []string{"原末", "粉末", "顆粒", "散"}},
	{"HON", []string{"クリーム", "点眼", "点耳", "点鼻", "うがい液", "噴霧"}},
}

var dosageForms = []struct {
	form             string
	doseUnitCode     string
	dispenseUnitCode string
	keywords         []string
}{
	{"TAB", "TAB", "TAB", []string{"錠"}},
	{"CAP", "CAP", "CAP", []string{"カプセル", "Cap", "cap"}},
	{"PWD", "PAC", "PAC", []string{"散", "原末", "粉末", "顆粒"}},
	{"SYR", "DOSE", "DOSE", []string{"シロップ"}},
	{"SUP", "KO", "KO", []string{"坐"}},
	{"OIT", hl7.InapplicableToken, "HON", []string{"膏"}},
	{"CRM", hl7.InapplicableToken, "HON", []string{"クリーム"}},
	{"TPE", "SHT", "SHT", []string{"テープ", "貼付", "パッチ"}},
	{"LQD", hl7.InapplicableToken, "HON", []string{"うがい液"}},
	{"INJ", hl7.InapplicableToken, "HON", []string{"注"}},
}

var prescriptionRoutes = []struct {
	code     string
	keywords []string
}{
	{"AP", []string{"膏", "クリーム"}},
	{"PR", []string{"坐"}},
	{"OP", []string{"眼"}},
	{"OT", []string{"耳"}},
	{"IH", []string{"吸入", "噴霧"}},
	{"SC", []string{"皮下"}},
	{"SL", []string{"舌下"}},
	{"VG", []string{"膣"}},
	{"PO", []string{"錠", "カプセル", "cap", "Cap", "原末", "粉末", "顆粒", "散", "シロップ", "内服", "内用"}},
}

func matchKeyword(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// PrescriptionOrder fabricates the drug-specific fields of a
// prescription around the shared order identity.
func (f *Fabricator) PrescriptionOrder(drugCode, drugName, drugCodeSystem string, admitted bool, spec PrescriptionOrderSpec) (*PrescriptionOrder, error) {
	doseUnit := "DOSE"
	for _, u := range prescriptionUnits {
		if matchKeyword(drugName, u.keywords) {
			doseUnit = u.code
			break
		}
	}
	dosageForm := ""
	for _, d := range dosageForms {
		if matchKeyword(drugName, d.keywords) {
			dosageForm = d.form
			break
		}
	}
	dispenseAmount := strconv.Itoa(1 + f.rng.Intn(20))
	duration := strconv.Itoa(1 + f.rng.Intn(7))
	if admitted {
		duration = f.pick([]string{"7", "30", "60", "90"})
	}
	totalOccurrences := ""
	if doseUnit == "DOSE" {
		totalOccurrences = dispenseAmount
	}
	route := "OTH"
	for _, r := range prescriptionRoutes {
		if matchKeyword(drugName, r.keywords) {
			route = r.code
			break
		}
	}
	repeatCode, repeatName := "1012040400000000", "内服・経口・１日２回朝夕食後"
	if f.rng.Float64() <= 0.5 {
		repeatCode, repeatName = "1013044400000000", "内服・経口・１日３回朝昼夕食後"
	}

	spec.DrugCode = drugCode
	spec.DrugName = drugName
	spec.DrugCodeSystem = drugCodeSystem
	spec.DoseUnitCode = doseUnit
	spec.DosageFormCode = dosageForm
	spec.MinimumDose = "1"
	spec.DispenseAmount = dispenseAmount
	spec.DispenseUnitCode = doseUnit
	spec.RepeatCode = repeatCode
	spec.RepeatName = repeatName
	spec.RepeatCodeSystem = "JAMISDP01"
	spec.DurationDays = duration
	spec.TotalOccurrences = totalOccurrences
	spec.RouteCode = route
	spec.Order.Control = "NW"
	spec.Order.OrderType = orderType(admitted)
	return NewPrescriptionOrder(f.tab, spec)
}

// Keywords deciding whether an injection component is a base solution.
var injectionBaseKeywords = []string{
	"生食", "生理食塩", "ブドウ糖液", "ブドウ糖注射液", "ブドウ糖注",
	"注射用水", "蒸留水", "ソリタ", "ラクトリンゲル", "ソリューゲン",
	"ビカネイト", "リプラス", "NK", "EL", "マルトス", "キリット",
	"糖液", "糖注", "リンゲル", "ハルトマン", "ニソリ", "ヴィーン",
	"アクメイン", "ペロール", "ビカーボン", "ボルベン", "デキストラン",
	"デノサリン", "ソルデム", "ラクテック", "ソルアセト", "ソルラクト",
	"フィジオ", "ビーフリード", "エルネオパ", "ハイカリック",
}

// InjectionComponent fabricates the quantity and unit of one injection
// component, classifying it as base or additive from its name.
func (f *Fabricator) InjectionComponent(code, name, codeSystem string) (*InjectionComponent, error) {
	typ := "A"
	if matchKeyword(name, injectionBaseKeywords) {
		typ = "B"
	}
	quantity := f.pick([]string{"10", "120", "240", "360"})
	unit := "mg"
	if typ == "B" {
		quantity = f.pick([]string{"100", "500", "1000", "1500", "2000"})
		unit = "ml"
	}
	return NewInjectionComponent(typ, code, name, codeSystem, quantity, unit, unit, "ISO+")
}

// InjectionOrder fabricates an intravenous drip order over the given
// components.
func (f *Fabricator) InjectionOrder(components []*InjectionComponent, admitted bool, spec InjectionOrderSpec) (*InjectionOrder, error) {
	start, err := hl7.ParseTimestamp(spec.StartTime)
	if err != nil {
		return nil, invalidf("injection", "start time", "%v", err)
	}
	spec.TypeCode = "01"
	spec.MinimumDose = "120"
	spec.DoseUnitCode = "ml"
	spec.DoseUnitName = "ml"
	spec.DoseUnitCodeSystem = "ISO+"
	if f.rng.Float64() < 0.8 {
		spec.DispenseAmount = ""
		spec.DispenseUnitCode = ""
		spec.DispenseUnitName = ""
		spec.DispenseUnitSystem = ""
	} else {
		spec.DispenseAmount = f.pick([]string{"120", "240", "360"})
		spec.DispenseUnitCode = "ml"
		spec.DispenseUnitName = "ml"
		spec.DispenseUnitSystem = "ISO+"
	}
	spec.EndTime = hl7.FormatTimestamp(start.AddDate(0, 0, 1), hl7.PrecisionSecond)
	spec.RouteCode = "IV"
	spec.RouteDeviceCode = "IVP"
	spec.Components = components
	spec.Order.Control = "NW"
	spec.Order.OrderType = orderType(admitted)
	return NewInjectionOrder(f.tab, spec)
}

// Problem fabricates the timing fields of a diagnosis around its
// action time. Inpatient problems are typed 入院時 or 最終, outpatient
// ones 外来時 or 最終.
func (f *Fabricator) Problem(admitted bool, spec ProblemSpec) (*Problem, error) {
	action, err := hl7.ParseTimestamp(spec.ActionTime)
	if err != nil {
		return nil, invalidf("problem", "action time", "%v", err)
	}
	if admitted {
		spec.DiagnosisType = f.pick([]string{"H", "F"})
	} else {
		spec.DiagnosisType = f.pick([]string{"O", "F"})
	}
	spec.ActionCode = "AD"
	spec.DateOfDiagnosis = hl7.FormatTimestamp(
		action.Add(-hl7.RandomDelta(f.rng, 0, 1440)), hl7.PrecisionSecond)
	spec.TimeOfOnset = hl7.FormatTimestamp(
		action.Add(-hl7.RandomDelta(f.rng, 0, 1440*30)), hl7.PrecisionSecond)
	spec.ExpectedTimeSolved = hl7.FormatTimestamp(
		action.Add(hl7.RandomDelta(f.rng, 0, 1440*30)), hl7.PrecisionSecond)
	spec.Order.Control = "NW"
	spec.Order.OrderType = orderType(admitted)
	spec.Order.TransactionTime = spec.ActionTime
	spec.Order.EffectiveTime = spec.ActionTime
	return NewProblem(f.tab, spec)
}

// LabResult fabricates one observation, typing the value numeric or
// string from its content.
func (f *Fabricator) LabResult(subID, code, name, codeSystem, value, unit string) (*LabResult, error) {
	valueType := "ST"
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		valueType = "NM"
	}
	unitSystem := ""
	if unit != "" {
		unitSystem = "99XYZ"
	}
	return NewLabResult(f.tab, LabResult{
		ValueType:         valueType,
		ObservationCode:   code,
		ObservationName:   name,
		ObservationSystem: codeSystem,
		SubID:             subID,
		Value:             value,
		Unit:              unit,
		UnitCode:          unit,
		UnitCodeSystem:    unitSystem,
		Status:            "F",
	})
}

// LabSpecimen fabricates a specimen around its observations. The test
// type is inferred from the most common leading JLAC10 digit of the
// result codes, the specimen name from the specimen code.
func (f *Fabricator) LabSpecimen(admitted bool, results []*LabResult, spec LabSpecimenSpec) (*LabSpecimen, error) {
	sampled, err := hl7.ParseTimestamp(spec.SampledTime)
	if err != nil {
		return nil, invalidf("lab specimen", "sampled time", "%v", err)
	}
	counts := map[byte]int{}
	for _, r := range results {
		if r.ObservationCode != "" {
			counts[r.ObservationCode[0]]++
		}
	}
	best, bestN := byte(0), -1
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	testType := string(best)
	if !f.tab.LabTestType.Has(testType) {
		testType = "8"
	}
	spec.TestTypeCode = testType
	spec.TestTypeName = f.tab.LabTestType.Name(testType)
	spec.TestTypeSystem = "JC10"

	if f.tab.SpecimenType.Has(spec.SpecimenCode) {
		spec.SpecimenName = f.tab.SpecimenType.Name(spec.SpecimenCode)
		spec.SpecimenSystem = "JC10"
	} else {
		spec.SpecimenName = "不明な検体"
		spec.SpecimenSystem = "99XYZ"
	}

	spec.FinishedTime = spec.SampledTime
	reported := sampled.Add(hl7.RandomDelta(f.rng, 30, 180))
	spec.ReportedTime = hl7.FormatTimestamp(reported, hl7.PrecisionSecond)
	spec.Order.TransactionTime = spec.ReportedTime
	spec.Order.EffectiveTime = hl7.FormatTimestamp(
		sampled.Add(-hl7.RandomDelta(f.rng, 10, 1440)), hl7.PrecisionSecond)
	spec.Order.Status = "CM"
	spec.Order.OrderType = orderType(admitted)
	spec.Results = results
	return NewLabSpecimen(f.tab, spec)
}

func orderType(admitted bool) string {
	if admitted {
		return "I"
	}
	return "O"
}
