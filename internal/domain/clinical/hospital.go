package clinical

// Hospital is the facility every message of one run is attributed to.
type Hospital struct {
	Name       string
	PostalCode string
	Address    string
	Phone      string
}

// NewHospital validates and builds a Hospital.
func NewHospital(name, postalCode, address, phone string) (*Hospital, error) {
	if len(name) >= 250 {
		return nil, invalidf("hospital", "name", "must be shorter than 250 characters, got %d", len(name))
	}
	if postalCode != "" {
		normalized, ok := NormalizePostalCode(postalCode)
		if !ok {
			return nil, invalidf("hospital", "postal code", "%q is not a valid postal code", postalCode)
		}
		postalCode = normalized
	}
	if len(address)+len(postalCode) >= 230 {
		return nil, invalidf("hospital", "address", "address and postal code combined exceed 230 characters")
	}
	if len(phone) >= 230 {
		return nil, invalidf("hospital", "phone", "must be shorter than 230 characters, got %d", len(phone))
	}
	return &Hospital{Name: name, PostalCode: postalCode, Address: address, Phone: phone}, nil
}
