package timeline

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/messages"
	"github.com/ssmixtwins/ssmixtwins/internal/ssmix"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// Placeholder codes for source rows missing their standard code or name.
const (
	placeholderDxCode   = "99999999"
	placeholderDrugCode = "999999"
	placeholderName     = "名称未設定"
	localCodeSystem     = "99XYZ"
)

// Context is the visit state carried across one patient's replay: who
// the patient is, who currently treats them, and whether a stay is open.
type Context struct {
	Patient   *clinical.Patient
	Primary   *clinical.Physician
	Admission *clinical.Admission // nil while the patient is outpatient
	Seq       *Sequences
	Date      string // YYYYMMDD of the group being replayed
}

func (c *Context) admitted() bool { return c.Admission != nil }

// department resolves the file name department slot: the open stay's
// department when admitted, else the outpatient department.
func (c *Context) department() string {
	if c.Admission != nil {
		return c.Admission.Department()
	}
	return c.Primary.Department
}

// Report summarizes one patient's replay.
type Report struct {
	PatientID string
	Source    string
	Files     int
	ByType    map[hl7.Category]int
}

// Replayer drives one patient table through the visit state machine and
// stores every resulting message. A replayer is not safe for concurrent
// use; the worker pool builds one per patient around a seeded source.
type Replayer struct {
	tab        *tables.Tables
	fab        *clinical.Fabricator
	store      *ssmix.Store
	hospital   *clinical.Hospital
	physicians []*clinical.Physician
	policy     Policy
	rng        *rand.Rand
	log        zerolog.Logger
}

// NewReplayer builds a Replayer over a shared physician pool and
// hospital identity.
func NewReplayer(rng *rand.Rand, tab *tables.Tables, fab *clinical.Fabricator, store *ssmix.Store, hospital *clinical.Hospital, physicians []*clinical.Physician, policy Policy, log zerolog.Logger) (*Replayer, error) {
	if len(physicians) == 0 {
		return nil, fmt.Errorf("replayer: physician pool is empty")
	}
	return &Replayer{
		tab:        tab,
		fab:        fab,
		store:      store,
		hospital:   hospital,
		physicians: physicians,
		policy:     policy,
		rng:        rng,
		log:        log,
	}, nil
}

// Replay walks a validated source oldest to newest and emits one file
// per event group, closing with the demographics snapshot. The source
// must have passed Validate; replay fails fast on anything it rejects.
func (r *Replayer) Replay(src *Source, patientID string) (*Report, error) {
	if len(src.Events) == 0 {
		return nil, fmt.Errorf("%s: table has no rows", src.Path)
	}

	oldestDay, err := time.Parse("20060102", src.Events[0].sortKey[:8])
	if err != nil {
		return nil, fmt.Errorf("%s: first timestamp: %w", src.Path, err)
	}
	latestDay, err := time.Parse("20060102", src.Events[len(src.Events)-1].sortKey[:8])
	if err != nil {
		return nil, fmt.Errorf("%s: last timestamp: %w", src.Path, err)
	}
	// Date of birth so the patient is StartAge at the oldest event.
	dob := oldestDay.AddDate(0, 0, -int(float64(src.StartAge)*365.25))
	latestAge := int(latestDay.Sub(dob).Hours() / 24 / 365.25)

	patient, err := r.fab.Patient(patientID, dob.Format("20060102"), src.Sex, latestAge, latestDay.Format("20060102"))
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		Patient: patient,
		Primary: r.pickPhysician(),
		Seq:     NewSequences(patientID),
	}
	rep := &Report{
		PatientID: patientID,
		Source:    src.Path,
		ByType:    map[hl7.Category]int{},
	}

	var lastTimestamp string
	for i := 0; i < len(src.Events); {
		j := i
		for j < len(src.Events) && src.Events[j].sortKey == src.Events[i].sortKey && src.Events[j].Type == src.Events[i].Type {
			j++
		}
		group := src.Events[i:j]
		i = j

		day := group[0].sortKey[:8]
		if ctx.Date != day {
			ctx.Date = day
			if !ctx.admitted() {
				if err := r.emitVisit(ctx, rep, group[0].Timestamp); err != nil {
					return nil, err
				}
			}
		}

		switch group[0].Type {
		case EventAdmission:
			err = r.emitAdmission(ctx, rep, group[0].Timestamp)
		case EventDischarge:
			err = r.emitDischarge(ctx, rep, group[0])
		case EventDiagnosis:
			err = r.emitProblems(ctx, rep, group)
		case EventPrescription:
			err = r.emitPrescriptions(ctx, rep, group)
		case EventInjection:
			err = r.emitInjections(ctx, rep, group)
		case EventLabResult:
			err = r.emitLabResults(ctx, rep, group)
		default:
			err = fmt.Errorf("event type %d is not 0-5", group[0].Type)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
		lastTimestamp = group[0].Timestamp
	}

	// The snapshot goes last so it reflects the final admission state.
	if err := r.emitDemographics(ctx, rep, lastTimestamp); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return rep, nil
}

func (r *Replayer) pickPhysician() *clinical.Physician {
	return r.physicians[r.rng.Intn(len(r.physicians))]
}

// drawRequester picks the ordering physician for one event group. The
// primary physician wins outright with the configured bias; otherwise
// an admitted patient's orders lean toward the attending.
func (r *Replayer) drawRequester(ctx *Context) *clinical.Physician {
	if r.rng.Float64() < r.policy.PrimaryRequesterBias {
		return ctx.Primary
	}
	if ctx.admitted() {
		if r.rng.Float64() < 0.5 {
			return ctx.Admission.Physician
		}
		if r.rng.Float64() < 0.5 {
			return ctx.Primary
		}
		return r.pickPhysician()
	}
	if r.rng.Float64() < 0.5 {
		return ctx.Primary
	}
	return r.pickPhysician()
}

// adtTimes derives the EVN transaction time and the MSH message time
// from the event time: entry 1-5 minutes later, transmission 5-10.
func (r *Replayer) adtTimes(base time.Time) (transaction, message string) {
	transaction = hl7.FormatTimestamp(base.Add(hl7.RandomDelta(r.rng, 1, 5)), hl7.PrecisionSecond)
	message = hl7.FormatTimestamp(base.Add(hl7.RandomDelta(r.rng, 5, 10)), hl7.PrecisionMessageTime)
	return transaction, message
}

func (r *Replayer) write(rep *Report, e ssmix.Entry, message string) error {
	path, err := r.store.Write(e, message)
	if err != nil {
		return err
	}
	rep.Files++
	rep.ByType[e.DataType]++
	r.log.Debug().
		Str("data_type", string(e.DataType)).
		Str("path", path).
		Msg("stored message")
	return nil
}

// emitVisit registers the implicit outpatient visit that opens a new
// calendar day, 30-180 minutes (per policy) before the day's first
// event. The primary physician occasionally changes first.
func (r *Replayer) emitVisit(ctx *Context, rep *Report, rawTime string) error {
	if r.rng.Float64() < r.policy.VisitReassignChance {
		ctx.Primary = r.pickPhysician()
	}
	base, err := hl7.ParseTimestamp(rawTime)
	if err != nil {
		return err
	}
	visit := base.Add(-hl7.RandomDelta(r.rng, r.policy.VisitLeadMinMinutes, r.policy.VisitLeadMaxMinutes))
	visitTime := hl7.FormatTimestamp(visit, hl7.PrecisionSecond)
	transaction, message := r.adtTimes(visit)

	msg, err := messages.Visit(r.tab, messages.VisitParams{
		MessageTime:      message,
		MessageID:        ctx.Seq.MessageID(),
		TransactionTime:  transaction,
		VisitTime:        visitTime,
		Department:       ctx.Primary.Department,
		Patient:          ctx.Patient,
		PrimaryPhysician: ctx.Primary,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        visitTime[:8],
		DataType:    hl7.CategoryVisit,
		OrderNumber: ctx.Seq.OrderNumber(),
		MessageTime: message,
		Department:  ctx.Primary.Department,
		Flag:        "1",
	}, msg)
}

func (r *Replayer) emitAdmission(ctx *Context, rep *Report, rawTime string) error {
	admission, err := r.fab.Admission(r.pickPhysician())
	if err != nil {
		return err
	}
	ctx.Admission = admission
	if r.rng.Float64() < r.policy.AdmissionReassignChance {
		ctx.Primary = r.pickPhysician()
	}
	base, err := hl7.ParseTimestamp(rawTime)
	if err != nil {
		return err
	}
	admissionTime := hl7.FormatTimestamp(base, hl7.PrecisionSecond)
	transaction, message := r.adtTimes(base)

	msg, err := messages.Admission(r.tab, messages.AdmissionParams{
		MessageTime:      message,
		MessageID:        ctx.Seq.MessageID(),
		TransactionTime:  transaction,
		AdmissionTime:    admissionTime,
		Patient:          ctx.Patient,
		PrimaryPhysician: ctx.Primary,
		Admission:        admission,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        admissionTime[:8],
		DataType:    hl7.CategoryAdmission,
		OrderNumber: ctx.Seq.OrderNumber(),
		MessageTime: message,
		Department:  admission.Department(),
		Flag:        "1",
	}, msg)
}

func (r *Replayer) emitDischarge(ctx *Context, rep *Report, e Event) error {
	if ctx.Admission == nil {
		return fmt.Errorf("discharge without an open admission")
	}
	base, err := hl7.ParseTimestamp(e.Timestamp)
	if err != nil {
		return err
	}
	dischargeTime := hl7.FormatTimestamp(base, hl7.PrecisionSecond)
	transaction, message := r.adtTimes(base)

	msg, err := messages.Discharge(r.tab, messages.DischargeParams{
		MessageTime:          message,
		MessageID:            ctx.Seq.MessageID(),
		TransactionTime:      transaction,
		DischargeTime:        dischargeTime,
		DischargeDisposition: e.DischargeDisposition,
		Patient:              ctx.Patient,
		PrimaryPhysician:     ctx.Primary,
		Admission:            ctx.Admission,
	})
	if err != nil {
		return err
	}
	err = r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        dischargeTime[:8],
		DataType:    hl7.CategoryDischarge,
		OrderNumber: ctx.Seq.OrderNumber(),
		MessageTime: message,
		Department:  ctx.Admission.Department(),
		Flag:        "1",
	}, msg)
	if err != nil {
		return err
	}
	// The stay closes only after its discharge message names its ward.
	ctx.Admission = nil
	return nil
}

func (r *Replayer) emitProblems(ctx *Context, rep *Report, group []Event) error {
	requester := r.drawRequester(ctx)
	orderNumber := ctx.Seq.OrderNumber()
	fillerNumber := ctx.Seq.OrderNumber()

	problems := make([]*clinical.Problem, 0, len(group))
	for _, e := range group {
		dxCode, dxSystem := e.MDCDX2, localCodeSystem
		if dxCode == "" {
			dxCode = placeholderDxCode
		} else if len(dxCode) == 8 {
			dxSystem = "MDCDX2"
		}
		dxName := e.Text
		if dxName == "" {
			dxName = placeholderName
		}
		problem, err := r.fab.Problem(ctx.admitted(), clinical.ProblemSpec{
			ActionTime:   e.Timestamp,
			DxCode:       dxCode,
			DxName:       dxName,
			DxCodeSystem: dxSystem,
			InstanceID:   ctx.Seq.OrderNumber(),
			ICD10Code:    e.ICD10,
			Provisional:  e.Provisional,
			Order: clinical.OrderHeader{
				RequesterOrderNumber: orderNumber,
				FillerOrderNumber:    fillerNumber,
				Enterer:              requester,
				Requester:            requester,
			},
		})
		if err != nil {
			return err
		}
		problems = append(problems, problem)
	}

	// The problems of one group share an action time, so the latest
	// action time is the message time.
	message, err := hl7.ReformatTimestamp(group[0].Timestamp, hl7.PrecisionMessageTime)
	if err != nil {
		return err
	}
	msg, err := messages.ProblemList(r.tab, messages.ProblemListParams{
		MessageTime: message,
		MessageID:   ctx.Seq.MessageID(),
		Patient:     ctx.Patient,
		Hospital:    r.hospital,
		Problems:    problems,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        ssmix.NoValue,
		DataType:    hl7.CategoryProblem,
		OrderNumber: orderNumber,
		MessageTime: message,
		Department:  ssmix.NoValue,
		Flag:        "1",
	}, msg)
}

func (r *Replayer) emitPrescriptions(ctx *Context, rep *Report, group []Event) error {
	requester := r.drawRequester(ctx)
	orderNumber := ctx.Seq.OrderNumber()
	fillerNumber := ctx.Seq.OrderNumber()

	base, err := hl7.ParseTimestamp(group[0].Timestamp)
	if err != nil {
		return err
	}
	start := hl7.FormatTimestamp(base, hl7.PrecisionSecond)

	orders := make([]*clinical.PrescriptionOrder, 0, len(group))
	for i, e := range group {
		code, name, system := drugCoding(e)
		order, err := r.fab.PrescriptionOrder(code, name, system, ctx.admitted(), clinical.PrescriptionOrderSpec{
			PrescriptionNo: orderNumber,
			StartTime:      start,
			RecipeNo:       fmt.Sprintf("%02d", i+1),
			AdminNo:        "001",
			Order: clinical.OrderHeader{
				RequesterOrderNumber: orderNumber,
				FillerOrderNumber:    fillerNumber,
				TransactionTime:      start,
				EffectiveTime:        start,
				Enterer:              requester,
				Requester:            requester,
			},
		})
		if err != nil {
			return err
		}
		orders = append(orders, order)
	}

	message := hl7.FormatTimestamp(base, hl7.PrecisionMessageTime)
	msg, err := messages.Prescriptions(r.tab, messages.PrescriptionsParams{
		MessageTime:          message,
		MessageID:            ctx.Seq.MessageID(),
		Patient:              ctx.Patient,
		Hospital:             r.hospital,
		OutpatientDepartment: ctx.Primary.Department,
		Admission:            ctx.Admission,
		PrimaryPhysician:     ctx.Primary,
		Orders:               orders,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        start[:8],
		DataType:    hl7.CategoryPrescription,
		OrderNumber: orderNumber,
		MessageTime: message,
		Department:  ctx.department(),
		Flag:        "1",
	}, msg)
}

// fragment shuffles the component rows and splits them into
// administration groups. A mixture below the policy minimum stays whole;
// a larger one is cut into runs of at most len/FragmentDivisor rows, so
// every file still holds the complete mixture across its ORC groups.
func (r *Replayer) fragment(group []Event) [][]Event {
	shuffled := make([]Event, len(group))
	for i, p := range r.rng.Perm(len(group)) {
		shuffled[i] = group[p]
	}
	n := len(shuffled)
	maxPick := 0
	if r.policy.FragmentDivisor > 0 {
		maxPick = n / r.policy.FragmentDivisor
	}
	if n < r.policy.FragmentMinComponents || maxPick < 1 {
		return [][]Event{shuffled}
	}
	var chunks [][]Event
	for idx := 0; idx < n; {
		pick := 1 + r.rng.Intn(min(n-idx, maxPick))
		chunks = append(chunks, shuffled[idx:idx+pick])
		idx += pick
	}
	return chunks
}

func (r *Replayer) emitInjections(ctx *Context, rep *Report, group []Event) error {
	requester := r.drawRequester(ctx)
	orderNumber := ctx.Seq.OrderNumber()
	fillerNumber := ctx.Seq.OrderNumber()

	base, err := hl7.ParseTimestamp(group[0].Timestamp)
	if err != nil {
		return err
	}
	start := hl7.FormatTimestamp(base, hl7.PrecisionSecond)

	chunks := r.fragment(group)
	orders := make([]*clinical.InjectionOrder, 0, len(chunks))
	for chunkNo, chunk := range chunks {
		components := make([]*clinical.InjectionComponent, 0, len(chunk))
		for _, e := range chunk {
			code, name, system := drugCoding(e)
			component, err := r.fab.InjectionComponent(code, name, system)
			if err != nil {
				return err
			}
			components = append(components, component)
		}
		order, err := r.fab.InjectionOrder(components, ctx.admitted(), clinical.InjectionOrderSpec{
			PrescriptionNo: orderNumber,
			StartTime:      start,
			RecipeNo:       "01",
			AdminNo:        fmt.Sprintf("%03d", chunkNo+1),
			Order: clinical.OrderHeader{
				RequesterOrderNumber: orderNumber,
				FillerOrderNumber:    fillerNumber,
				TransactionTime:      start,
				EffectiveTime:        start,
				Enterer:              requester,
				Requester:            requester,
			},
		})
		if err != nil {
			return err
		}
		orders = append(orders, order)
	}

	message := hl7.FormatTimestamp(base, hl7.PrecisionMessageTime)
	msg, err := messages.Injections(r.tab, messages.InjectionsParams{
		MessageTime:          message,
		MessageID:            ctx.Seq.MessageID(),
		Patient:              ctx.Patient,
		Hospital:             r.hospital,
		OutpatientDepartment: ctx.Primary.Department,
		Admission:            ctx.Admission,
		PrimaryPhysician:     ctx.Primary,
		Orders:               orders,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        start[:8],
		DataType:    hl7.CategoryInjection,
		OrderNumber: orderNumber,
		MessageTime: message,
		Department:  ctx.department(),
		Flag:        "1",
	}, msg)
}

func (r *Replayer) emitLabResults(ctx *Context, rep *Report, group []Event) error {
	requester := r.drawRequester(ctx)
	orderNumber := ctx.Seq.OrderNumber()
	fillerNumber := ctx.Seq.OrderNumber()

	base, err := hl7.ParseTimestamp(group[0].Timestamp)
	if err != nil {
		return err
	}
	sampled := hl7.FormatTimestamp(base, hl7.PrecisionSecond)

	// Results are grouped by the specimen digits of their JLAC10 code;
	// anything malformed lands in the 990 (other specimen) bucket.
	bySpecimen := map[string][]*clinical.LabResult{}
	for _, e := range group {
		specimenCode, system := "990", localCodeSystem
		if len(e.JLAC10) == 17 {
			specimenCode = e.JLAC10[9:12]
			system = "JC10"
		}
		result, err := r.fab.LabResult("", e.JLAC10, e.Text, system, e.LabValue, e.Unit)
		if err != nil {
			return err
		}
		bySpecimen[specimenCode] = append(bySpecimen[specimenCode], result)
	}
	specimenCodes := make([]string, 0, len(bySpecimen))
	for code := range bySpecimen {
		specimenCodes = append(specimenCodes, code)
	}
	sort.Strings(specimenCodes)

	specimens := make([]*clinical.LabSpecimen, 0, len(specimenCodes))
	latestReported := ""
	for _, code := range specimenCodes {
		specimen, err := r.fab.LabSpecimen(ctx.admitted(), bySpecimen[code], clinical.LabSpecimenSpec{
			SpecimenID:   ctx.Seq.OrderNumber(),
			SpecimenCode: code,
			SampledTime:  sampled,
			Order: clinical.OrderHeader{
				RequesterOrderNumber: orderNumber,
				FillerOrderNumber:    fillerNumber,
				Enterer:              requester,
				Requester:            requester,
			},
		})
		if err != nil {
			return err
		}
		if specimen.ReportedTime > latestReported {
			latestReported = specimen.ReportedTime
		}
		specimens = append(specimens, specimen)
	}

	message, err := hl7.ReformatTimestamp(latestReported, hl7.PrecisionMessageTime)
	if err != nil {
		return err
	}
	msg, err := messages.LabResults(r.tab, messages.LabResultsParams{
		MessageTime:          message,
		MessageID:            ctx.Seq.MessageID(),
		Patient:              ctx.Patient,
		Hospital:             r.hospital,
		OutpatientDepartment: ctx.Primary.Department,
		Admission:            ctx.Admission,
		PrimaryPhysician:     ctx.Primary,
		Specimens:            specimens,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        sampled[:8],
		DataType:    hl7.CategoryLabResult,
		OrderNumber: orderNumber,
		MessageTime: message,
		Department:  ctx.department(),
		Flag:        "1",
	}, msg)
}

// emitDemographics closes the replay with the patient snapshot, dated
// by the final event so PID-33 reflects the end of the table.
func (r *Replayer) emitDemographics(ctx *Context, rep *Report, rawTime string) error {
	base, err := hl7.ParseTimestamp(rawTime)
	if err != nil {
		return err
	}
	lastUpdated := hl7.FormatTimestamp(base, hl7.PrecisionSecond)
	transaction, message := r.adtTimes(base)

	msg, err := messages.Demographics(r.tab, messages.DemographicsParams{
		MessageTime:      message,
		MessageID:        ctx.Seq.MessageID(),
		TransactionTime:  transaction,
		LastUpdated:      lastUpdated,
		Patient:          ctx.Patient,
		PrimaryPhysician: ctx.Primary,
		Admission:        ctx.Admission,
	})
	if err != nil {
		return err
	}
	return r.write(rep, ssmix.Entry{
		PatientID:   ctx.Patient.ID,
		Date:        ssmix.NoValue,
		DataType:    hl7.CategoryDemographics,
		OrderNumber: ssmix.DemographicsOrderNumber,
		MessageTime: message,
		Department:  ssmix.NoValue,
		Flag:        "1",
	}, msg)
}

// drugCoding resolves the HOT code, display name and code system of a
// medication row, substituting placeholders for missing values.
func drugCoding(e Event) (code, name, system string) {
	code, name = e.HOT, e.Text
	if code == "" {
		code, system = placeholderDrugCode, localCodeSystem
	} else {
		system = fmt.Sprintf("HOT%d", len(code))
	}
	if name == "" {
		name = placeholderName
	}
	return code, name, system
}
