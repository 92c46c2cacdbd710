package clinical

// Admission is the currently open inpatient stay. The attending physician
// determines the admission's department.
type Admission struct {
	Ward      string
	Room      string
	Bed       string
	Physician *Physician
}

// NewAdmission validates and builds an Admission.
func NewAdmission(ward, room, bed string, physician *Physician) (*Admission, error) {
	if physician == nil {
		return nil, invalidf("admission", "physician", "must not be nil")
	}
	if ward == "" {
		return nil, invalidf("admission", "ward", "must not be empty")
	}
	if room == "" {
		return nil, invalidf("admission", "room", "must not be empty")
	}
	if bed == "" {
		return nil, invalidf("admission", "bed", "must not be empty")
	}
	if len(ward)+len(room)+len(bed) >= 70 {
		return nil, invalidf("admission", "location", "ward, room and bed combined exceed 70 characters")
	}
	return &Admission{Ward: ward, Room: room, Bed: bed, Physician: physician}, nil
}

// Department is the department code of the attending physician.
func (a *Admission) Department() string {
	return a.Physician.Department
}
