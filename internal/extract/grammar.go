package extract

import (
	"regexp"

	"github.com/joshdeansavv/booking-tracker/constants"
)

// Record is one booking row as parsed from a single text line, plus the
// trailer data harvested from the lines below it.
type Record struct {
	Name      string
	BookedAt  string // M/D/YYYY H:MM:SS AM|PM, parsed later by the ingestor
	DOB       string
	Gender    string
	BroughtBy string
	Charges   []string
	Address   string
	Top       float64 // source line's top coordinate, used for image matching
}

// rowPattern pairs a record-row regexp with its capture-to-record mapper.
// Patterns are tried in order; adding a new row shape means adding an entry
// here without touching the trailer scan or the matcher.
type rowPattern struct {
	re  *regexp.Regexp
	fit func(m []string) Record
}

var rowPatterns = []rowPattern{
	{
		// NAME  BOOKED  DOB  GENDER  AGENCY. Gender is an enumerated token
		// rather than a character class so an agency name can never be
		// mistaken for it on reports that omit the column.
		re: regexp.MustCompile(`^([A-Z ,'\-]+)\s+(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}:\d{2}\s+[AP]M)\s+(\d{1,2}/\d{1,2}/\d{4})\s+(MALE|FEMALE)\s+(.+)$`),
		fit: func(m []string) Record {
			return Record{Name: m[1], BookedAt: m[2], DOB: m[3], Gender: m[4], BroughtBy: m[5]}
		},
	},
	{
		// NAME  BOOKED  DOB  AGENCY, no gender column on older reports
		re: regexp.MustCompile(`^([A-Z ,'\-]+)\s+(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}:\d{2}\s+[AP]M)\s+(\d{1,2}/\d{1,2}/\d{4})\s+(.+)$`),
		fit: func(m []string) Record {
			return Record{Name: m[1], BookedAt: m[2], DOB: m[3], Gender: constants.GenderUnknown, BroughtBy: m[4]}
		},
	},
}

// matchRecordRow tries the row patterns in order and maps the first hit.
func matchRecordRow(text string) (Record, bool) {
	for _, p := range rowPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return p.fit(m), true
		}
	}
	return Record{}, false
}

// isRecordRow reports whether a line starts a record (used as the exclusive
// upper bound of the previous record's trailer span).
func isRecordRow(text string) bool {
	for _, p := range rowPatterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}
