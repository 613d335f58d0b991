package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshdeansavv/booking-tracker/constants"
	"github.com/joshdeansavv/booking-tracker/internal/entity"
)

// BookingRepository is the storage behavior the ingestor and the maintenance
// pass depend on.
type BookingRepository interface {
	// Existing checks the whole batch's dedup keys in one round trip and
	// returns the set of keys already stored.
	Existing(ctx context.Context, rows []*entity.BookingRow) (map[string]struct{}, error)
	// InsertBatch stores all rows in a single statement (one atomic commit
	// per document) and fills in their generated IDs.
	InsertBatch(ctx context.Context, rows []*entity.BookingRow) error
	// ImagePaths lists every non-empty image path currently referenced.
	ImagePaths(ctx context.Context) ([]string, error)
	// Stats summarizes the stored data for the status report.
	Stats(ctx context.Context) (*entity.BookingStats, error)
	// SweepDuplicates removes exact dedup-key duplicates, preferring to keep
	// the row that carries real charges. Returns rows deleted.
	SweepDuplicates(ctx context.Context) (int, error)
}

type bookingRepository struct {
	src    ConnSource
	logger *slog.Logger
}

func NewBookingRepository(src ConnSource, logger *slog.Logger) BookingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookingRepository{src: src, logger: logger}
}

const insertColumns = `raw_name, first_name, middle_name, last_name, address,
	booking_date, booking_time, date_of_birth, gender, raw_arrestor,
	charges, source_pdf, image_path`

func (r *bookingRepository) Existing(ctx context.Context, rows []*entity.BookingRow) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(rows) == 0 {
		return existing, nil
	}

	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	// one predicate group per row; IS NOT DISTINCT FROM keeps rows with a
	// NULL booking date/time comparable
	var sb strings.Builder
	sb.WriteString(`SELECT raw_name, booking_date::text, booking_time::text, source_pdf FROM bookings WHERE `)
	args := make([]any, 0, len(rows)*4)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		n := i * 4
		fmt.Fprintf(&sb,
			"(raw_name = $%d AND booking_date IS NOT DISTINCT FROM $%d::date AND booking_time IS NOT DISTINCT FROM $%d::time AND source_pdf = $%d)",
			n+1, n+2, n+3, n+4)
		args = append(args, row.RawName, nullableDate(row.BookingDate), nullableTime(row.BookingTime), row.SourcePDF)
	}

	pgRows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		r.src.Invalidate(ctx)
		return nil, fmt.Errorf("existence check: %w", err)
	}
	defer pgRows.Close()

	for pgRows.Next() {
		var rawName, sourcePDF string
		var date, clock *string
		if err := pgRows.Scan(&rawName, &date, &clock, &sourcePDF); err != nil {
			r.src.Invalidate(ctx)
			return nil, fmt.Errorf("existence scan: %w", err)
		}
		existing[joinKey(rawName, date, clock, sourcePDF)] = struct{}{}
	}
	if err := pgRows.Err(); err != nil {
		r.src.Invalidate(ctx)
		return nil, fmt.Errorf("existence rows: %w", err)
	}
	return existing, nil
}

func (r *bookingRepository) InsertBatch(ctx context.Context, rows []*entity.BookingRow) error {
	if len(rows) == 0 {
		return nil
	}

	q, err := r.src.Acquire(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO bookings (" + insertColumns + ") VALUES ")
	args := make([]any, 0, len(rows)*13)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 13
		sb.WriteString("(")
		for c := 1; c <= 13; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", n+c)
		}
		sb.WriteString(")")
		args = append(args,
			row.RawName, row.FirstName, row.MiddleName, row.LastName, row.Address,
			nullableDate(row.BookingDate), nullableTime(row.BookingTime),
			row.DateOfBirth, row.Gender, row.RawArrestor,
			row.Charges, row.SourcePDF, row.ImagePath,
		)
	}

	sb.WriteString(" RETURNING id")

	pgRows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		r.src.Invalidate(ctx)
		return fmt.Errorf("insert batch: %w", err)
	}
	defer pgRows.Close()

	i := 0
	for pgRows.Next() {
		var id int64
		if err := pgRows.Scan(&id); err != nil {
			r.src.Invalidate(ctx)
			return fmt.Errorf("insert returning: %w", err)
		}
		if i < len(rows) {
			rows[i].ID = id
		}
		i++
	}
	if err := pgRows.Err(); err != nil {
		r.src.Invalidate(ctx)
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *bookingRepository) ImagePaths(ctx context.Context) ([]string, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	pgRows, err := q.Query(ctx,
		`SELECT image_path FROM bookings WHERE image_path IS NOT NULL AND image_path <> ''`)
	if err != nil {
		r.src.Invalidate(ctx)
		return nil, fmt.Errorf("list image paths: %w", err)
	}
	defer pgRows.Close()

	var paths []string
	for pgRows.Next() {
		var p string
		if err := pgRows.Scan(&p); err != nil {
			r.src.Invalidate(ctx)
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := pgRows.Err(); err != nil {
		r.src.Invalidate(ctx)
		return nil, err
	}
	return paths, nil
}

func (r *bookingRepository) Stats(ctx context.Context) (*entity.BookingStats, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var s entity.BookingStats
	err = q.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE image_path IS NOT NULL AND image_path <> ''),
		       count(DISTINCT source_pdf),
		       min(booking_date)::text,
		       max(booking_date)::text,
		       count(*) FILTER (WHERE created_at >= now() - interval '7 days')
		FROM bookings`).
		Scan(&s.TotalRecords, &s.RecordsWithImages, &s.UniquePDFs, &s.MinBookingDate, &s.MaxBookingDate, &s.RecentRecords)
	if err != nil {
		r.src.Invalidate(ctx)
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &s, nil
}

func (r *bookingRepository) SweepDuplicates(ctx context.Context) (int, error) {
	q, err := r.src.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	pgRows, err := q.Query(ctx, `
		SELECT array_agg(id ORDER BY id), array_agg(charges ORDER BY id)
		FROM bookings
		GROUP BY raw_name, booking_date, booking_time, source_pdf
		HAVING count(*) > 1`)
	if err != nil {
		r.src.Invalidate(ctx)
		return 0, fmt.Errorf("duplicate scan: %w", err)
	}

	var doomed []int64
	for pgRows.Next() {
		var ids []int64
		var charges []string
		if err := pgRows.Scan(&ids, &charges); err != nil {
			pgRows.Close()
			r.src.Invalidate(ctx)
			return 0, err
		}
		keep := pickKeeper(ids, charges)
		for _, id := range ids {
			if id != keep {
				doomed = append(doomed, id)
			}
		}
	}
	err = pgRows.Err()
	pgRows.Close()
	if err != nil {
		r.src.Invalidate(ctx)
		return 0, err
	}

	if len(doomed) == 0 {
		return 0, nil
	}
	tag, err := q.Exec(ctx, `DELETE FROM bookings WHERE id = ANY($1)`, doomed)
	if err != nil {
		r.src.Invalidate(ctx)
		return 0, fmt.Errorf("duplicate delete: %w", err)
	}
	r.logger.Info("duplicate sweep complete", "deleted", tag.RowsAffected())
	return int(tag.RowsAffected()), nil
}

// pickKeeper keeps the first row of a duplicate group that carries real
// charges, defaulting to the oldest row.
func pickKeeper(ids []int64, charges []string) int64 {
	keep := ids[0]
	for i, c := range charges {
		if strings.TrimSpace(c) != "" && c != constants.NoCharges {
			keep = ids[i]
			break
		}
	}
	return keep
}

func joinKey(rawName string, date, clock *string, sourcePDF string) string {
	return strings.Join([]string{rawName, deref(date), deref(clock), sourcePDF}, "\x1f")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullableDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func nullableTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("15:04:05")
	return &s
}
