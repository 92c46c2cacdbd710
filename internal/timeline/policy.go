package timeline

// Policy bundles the tunable replay behaviors. The defaults reproduce
// clinically plausible churn; tests pin them to force branches.
type Policy struct {
	// VisitReassignChance is the probability an outpatient's primary
	// physician changes when a new calendar day starts.
	VisitReassignChance float64
	// AdmissionReassignChance is the probability the primary physician
	// changes at admission.
	AdmissionReassignChance float64
	// PrimaryRequesterBias is the probability an order is requested by
	// the primary physician outright, before the wider draw.
	PrimaryRequesterBias float64
	// VisitLeadMinMinutes and VisitLeadMaxMinutes bound how long before
	// the day's first event the implicit visit registration happens.
	VisitLeadMinMinutes int
	VisitLeadMaxMinutes int
	// FragmentMinComponents is the smallest injection mixture that gets
	// split into multiple administration groups.
	FragmentMinComponents int
	// FragmentDivisor caps each fragment at len/FragmentDivisor
	// components.
	FragmentDivisor int
}

// DefaultPolicy returns the standard replay behavior.
func DefaultPolicy() Policy {
	return Policy{
		VisitReassignChance:     0.1,
		AdmissionReassignChance: 0.5,
		PrimaryRequesterBias:    0.7,
		VisitLeadMinMinutes:     30,
		VisitLeadMaxMinutes:     180,
		FragmentMinComponents:   3,
		FragmentDivisor:         3,
	}
}
