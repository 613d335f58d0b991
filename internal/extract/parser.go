package extract

import (
	"strings"

	"github.com/joshdeansavv/booking-tracker/constants"
)

// street-suffix tokens that mark a trailer line as an address candidate,
// matched case-sensitively as printed on the report
var streetTokens = []string{"RD", "ST", "AVE", "DR"}

// holdMarkers flag a federal custody hold when found together with "HOLD".
var holdMarkers = []string{"FEDERAL", "US MARSHAL", "U.S. MARSHAL", "FBI"}

// ParseRecords walks the page's lines and returns its booking records in
// document order. Each record's trailer span, the lines strictly between its
// own row and the next record row (or end of page), yields at most one
// address plus the charge and custody-hold lines; everything else on the
// report (column headers, page numbers) is ignored.
func ParseRecords(lines []Line) []Record {
	var records []Record

	for i, line := range lines {
		rec, ok := matchRecordRow(line.Text)
		if !ok {
			continue
		}
		rec.Top = line.Top

		first := true
		for j := i + 1; j < len(lines) && !isRecordRow(lines[j].Text); j++ {
			ln := strings.TrimSpace(lines[j].Text)
			if first {
				first = false
				if isAddressLine(ln) {
					rec.Address = ln
				}
			}
			if ln == "" {
				continue
			}
			switch {
			case strings.HasPrefix(ln, "State "):
				rec.Charges = append(rec.Charges, ln)
			case isCustodyHold(ln):
				rec.Charges = append(rec.Charges, constants.MarshalHold)
			}
		}

		records = append(records, rec)
	}
	return records
}

// isAddressLine accepts the first trailer line as an address when it is not a
// charge header, not a charge line, not itself a record row, and carries a
// comma or a street-suffix token.
func isAddressLine(ln string) bool {
	if ln == "" ||
		strings.HasPrefix(ln, "Charge") ||
		strings.HasPrefix(ln, "State") ||
		isRecordRow(ln) {
		return false
	}
	if strings.Contains(ln, ",") {
		return true
	}
	for _, tok := range streetTokens {
		if strings.Contains(ln, tok) {
			return true
		}
	}
	return false
}

// isCustodyHold detects marshal/federal hold annotations, normalized to one
// synthetic charge token by the caller.
func isCustodyHold(ln string) bool {
	up := strings.ToUpper(ln)
	if strings.Contains(up, "MARSHAL HOLD") || strings.Contains(up, "MARSHALL HOLD") {
		return true
	}
	if !strings.Contains(up, "HOLD") {
		return false
	}
	for _, m := range holdMarkers {
		if strings.Contains(up, m) {
			return true
		}
	}
	return false
}
