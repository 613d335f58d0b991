package ingest

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joshdeansavv/booking-tracker/constants"
)

var fileDateRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// ReportDate extracts the embedded YYYY-MM-DD report date from a source
// filename. Its absence is tolerated, never fatal.
func ReportDate(filename string) (time.Time, bool) {
	m := fileDateRe.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortByReportDate orders filenames ascending by embedded report date so
// downstream consumers discover bookings chronologically. Files without a
// parseable date sort first.
func SortByReportDate(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		di, _ := ReportDate(files[i])
		dj, _ := ReportDate(files[j])
		return di.Before(dj)
	})
}

// IsPDF reports whether the path carries an accepted extension.
func IsPDF(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
