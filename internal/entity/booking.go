package entity

import (
	"strings"
	"time"
)

// BookingRow is the normalized, storage-facing booking record. Rows are never
// mutated after insert; duplicates are removed only by the maintenance sweep.
type BookingRow struct {
	ID          int64
	RawName     string
	FirstName   string
	MiddleName  string
	LastName    string
	Address     string
	BookingDate *time.Time // nil when the booked-at string failed to parse
	BookingTime *time.Time // time-of-day on the zero date; nil with BookingDate
	DateOfBirth string
	Gender      string
	RawArrestor string
	Charges     string
	SourcePDF   string
	ImagePath   *string
	CreatedAt   time.Time
}

// DedupKey identifies a unique booking for insert-if-absent semantics:
// (raw_name, booking_date, booking_time, source_pdf).
func (r *BookingRow) DedupKey() string {
	return strings.Join([]string{
		r.RawName,
		FormatDate(r.BookingDate),
		FormatTime(r.BookingTime),
		r.SourcePDF,
	}, "\x1f")
}

// FormatDate renders a nullable booking date as YYYY-MM-DD, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatTime renders a nullable booking time as HH:MM:SS, or "" for nil.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04:05")
}
