package entity

// BookingStats summarizes the stored data for the status report.
type BookingStats struct {
	TotalRecords      int64
	RecordsWithImages int64
	UniquePDFs        int64
	MinBookingDate    *string
	MaxBookingDate    *string
	RecentRecords     int64 // created in the last 7 days
}
