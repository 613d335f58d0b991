package repository

import (
	"context"
	"log/slog"
)

// bookingsDDL bootstraps the bookings table. Index creation mirrors the
// queries the system actually runs: the four-column dedup check, per-PDF
// lookups, and name searches from the website.
var bookingsDDL = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id            BIGSERIAL PRIMARY KEY,
		raw_name      TEXT NOT NULL,
		first_name    TEXT NOT NULL DEFAULT '',
		middle_name   TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		booking_date  DATE,
		booking_time  TIME,
		date_of_birth TEXT NOT NULL DEFAULT '',
		gender        TEXT NOT NULL DEFAULT '',
		raw_arrestor  TEXT NOT NULL DEFAULT '',
		charges       TEXT NOT NULL DEFAULT '',
		source_pdf    TEXT NOT NULL,
		image_path    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_dedup
		ON bookings (raw_name, booking_date, booking_time, source_pdf)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_source_pdf ON bookings (source_pdf)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booking_date ON bookings (booking_date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_last_name ON bookings (last_name)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_first_name ON bookings (first_name)`,
}

// EnsureSchema creates the bookings table and its indexes if absent.
func EnsureSchema(ctx context.Context, src ConnSource, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	q, err := src.Acquire(ctx)
	if err != nil {
		return err
	}
	for _, stmt := range bookingsDDL {
		if _, err := q.Exec(ctx, stmt); err != nil {
			src.Invalidate(ctx)
			return err
		}
	}
	logger.Debug("bookings schema ensured")
	return nil
}
