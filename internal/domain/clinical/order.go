package clinical

import (
	"strconv"

	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// OrderNumberWidth is the fixed width order numbers are zero-filled to,
// both inside ORC segments and in output file names.
const OrderNumberWidth = 15

// OrderHeader carries the ORC fields every clinical order renders. The
// requester order number is shared by all rows folded into one file; the
// timeline replay mints it once per event group and the assembler rejects
// groups whose rows disagree.
type OrderHeader struct {
	Control              string // table 0119
	Status               string // table 0038, empty unless the category requires it
	RequesterOrderNumber string // zero-filled to OrderNumberWidth
	FillerOrderNumber    string // zero-filled when present
	TransactionTime      string // YYYYMMDDHHMMSS
	EffectiveTime        string
	OrderType            string // I inpatient, O outpatient
	Enterer              *Physician
	Requester            *Physician
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func newOrderHeader(tab *tables.Tables, object string, h OrderHeader) (OrderHeader, error) {
	if !tab.OrderControl.Has(h.Control) {
		return h, invalidf(object, "order control", "code %q is not in table 0119", h.Control)
	}
	if h.Status != "" && !tab.OrderStatus.Has(h.Status) {
		return h, invalidf(object, "order status", "code %q is not in table 0038", h.Status)
	}
	if h.OrderType != "I" && h.OrderType != "O" {
		return h, invalidf(object, "order type", "must be I or O, got %q", h.OrderType)
	}
	if !isDigits(h.RequesterOrderNumber) || len(h.RequesterOrderNumber) > OrderNumberWidth {
		return h, invalidf(object, "requester order number", "must be a number of at most %d digits, got %q", OrderNumberWidth, h.RequesterOrderNumber)
	}
	h.RequesterOrderNumber = hl7.ZeroFill(h.RequesterOrderNumber, OrderNumberWidth)
	if h.FillerOrderNumber != "" {
		if !isDigits(h.FillerOrderNumber) || len(h.FillerOrderNumber) > OrderNumberWidth {
			return h, invalidf(object, "filler order number", "must be a number of at most %d digits, got %q", OrderNumberWidth, h.FillerOrderNumber)
		}
		h.FillerOrderNumber = hl7.ZeroFill(h.FillerOrderNumber, OrderNumberWidth)
	}
	if h.Enterer == nil {
		return h, invalidf(object, "enterer", "must not be nil")
	}
	if h.Requester == nil {
		return h, invalidf(object, "requester", "must not be nil")
	}
	var err error
	h.TransactionTime, err = hl7.ReformatTimestamp(h.TransactionTime, hl7.PrecisionSecond)
	if err != nil {
		return h, invalidf(object, "transaction time", "%v", err)
	}
	h.EffectiveTime, err = hl7.ReformatTimestamp(h.EffectiveTime, hl7.PrecisionSecond)
	if err != nil {
		return h, invalidf(object, "effective time", "%v", err)
	}
	return h, nil
}

// GroupNumber is the ORC-4 requester group number of a medication order:
// the shared order number joined with the 2-digit recipe number and the
// 3-digit administration number.
func medicationGroupNumber(object, orderNumber, recipeNo, adminNo string) (string, error) {
	if !isDigits(recipeNo) || len(recipeNo) != 2 {
		return "", invalidf(object, "recipe number", "must be a 2-digit number, got %q", recipeNo)
	}
	if !isDigits(adminNo) || len(adminNo) != 3 {
		return "", invalidf(object, "admin number", "must be a 3-digit number, got %q", adminNo)
	}
	return orderNumber + "_" + recipeNo + "_" + adminNo, nil
}

func validDigitsUpTo(s string, max int) bool {
	return isDigits(s) && len(s) <= max
}

func parseNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
