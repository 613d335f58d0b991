// Package ingest normalizes matched pairs into booking rows and commits them
// exactly once per (person, booking timestamp, source document).
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joshdeansavv/booking-tracker/constants"
	"github.com/joshdeansavv/booking-tracker/internal/entity"
	"github.com/joshdeansavv/booking-tracker/internal/extract"
	"github.com/joshdeansavv/booking-tracker/internal/repository"
)

// Result is the per-document ingest outcome.
type Result struct {
	SourcePDF string
	Extracted int
	Saved     int
	Skipped   int // duplicates
	SavedRows []*entity.BookingRow
}

// Ingestor normalizes and persists one document's matched pairs.
type Ingestor struct {
	repo   repository.BookingRepository
	images *ImageStore
	logger *slog.Logger

	// Mugshot files are not written for reports dated before the cutoff;
	// those documents carried placeholder graphics.
	ImageCutoff time.Time
}

func NewIngestor(repo repository.BookingRepository, images *ImageStore, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{repo: repo, images: images, logger: logger}
}

// Ingest converts pairs to rows, persists mugshot files, batch-checks the
// dedup keys in one round trip, and bulk-inserts only the absent rows.
// Running it twice over the same document inserts nothing on the second run.
func (ing *Ingestor) Ingest(ctx context.Context, pairs []extract.MatchedPair, pdfFilename string) (Result, error) {
	res := Result{SourcePDF: pdfFilename, Extracted: len(pairs)}
	if len(pairs) == 0 {
		return res, nil
	}

	skipImages := ing.skipImagesFor(pdfFilename)
	rows := make([]*entity.BookingRow, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, ing.buildRow(pair, pdfFilename, skipImages))
	}

	existing, err := ing.repo.Existing(ctx, rows)
	if err != nil {
		return res, err
	}

	// a key can also repeat within the batch itself; only its first row wins
	fresh := rows[:0]
	for _, row := range rows {
		if _, dup := existing[row.DedupKey()]; dup {
			res.Skipped++
			continue
		}
		existing[row.DedupKey()] = struct{}{}
		fresh = append(fresh, row)
	}

	if err := ing.repo.InsertBatch(ctx, fresh); err != nil {
		return res, err
	}
	res.Saved = len(fresh)
	res.SavedRows = fresh

	ing.logger.Info("document ingested",
		"source_pdf", pdfFilename,
		"saved", res.Saved,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (ing *Ingestor) buildRow(pair extract.MatchedPair, pdfFilename string, skipImages bool) *entity.BookingRow {
	rec := pair.Record

	rawName := strings.TrimSpace(rec.Name)
	first, middle, last := SplitName(rawName)

	bookingDate, bookingTime, ok := ParseBookedAt(rec.BookedAt)
	if !ok {
		ing.logger.Warn("could not parse booking datetime",
			"raw", rec.BookedAt,
			"name", rawName,
			"source_pdf", pdfFilename,
		)
	}

	charges := constants.NoCharges
	if len(rec.Charges) > 0 {
		charges = strings.Join(rec.Charges, constants.ChargeSeparator)
	}

	var imagePath *string
	if !skipImages && len(pair.Image) > 0 {
		if p := ing.images.Save(pair.Image, rec.Name, pdfFilename, bookingDate); p != "" {
			imagePath = &p
		}
	}

	return &entity.BookingRow{
		RawName:     rawName,
		FirstName:   first,
		MiddleName:  middle,
		LastName:    last,
		Address:     strings.TrimSpace(rec.Address),
		BookingDate: bookingDate,
		BookingTime: bookingTime,
		DateOfBirth: strings.TrimSpace(rec.DOB),
		Gender:      strings.TrimSpace(rec.Gender),
		RawArrestor: strings.TrimSpace(rec.BroughtBy),
		Charges:     charges,
		SourcePDF:   pdfFilename,
		ImagePath:   imagePath,
	}
}

func (ing *Ingestor) skipImagesFor(pdfFilename string) bool {
	if ing.ImageCutoff.IsZero() {
		return false
	}
	reportDate, ok := ReportDate(pdfFilename)
	return ok && reportDate.Before(ing.ImageCutoff)
}
