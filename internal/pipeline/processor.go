// Package pipeline drives whole documents through extraction, ingestion,
// notification, and archiving.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joshdeansavv/booking-tracker/internal/archive"
	"github.com/joshdeansavv/booking-tracker/internal/entity"
	"github.com/joshdeansavv/booking-tracker/internal/extract"
	"github.com/joshdeansavv/booking-tracker/internal/ingest"
	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
)

// Notifier posts newly stored rows to the outside world. Implementations must
// tolerate being called with zero rows.
type Notifier interface {
	NotifyBookings(ctx context.Context, rows []*entity.BookingRow)
}

// NopNotifier is used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyBookings(context.Context, []*entity.BookingRow) {}

// Processor processes report PDFs one at a time, in report-date order.
// Documents are parsed and ingested strictly sequentially; a failed document
// is logged and archived, never allowed to halt the batch.
type Processor struct {
	pdfCfg   pdfio.Config
	ingestor *ingest.Ingestor
	archiver *archive.Archiver
	notifier Notifier
	logger   *slog.Logger
}

func NewProcessor(pdfCfg pdfio.Config, ingestor *ingest.Ingestor, archiver *archive.Archiver, notifier Notifier, logger *slog.Logger) *Processor {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		pdfCfg:   pdfCfg,
		ingestor: ingestor,
		archiver: archiver,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessDirectory runs every PDF in the drop directory, oldest report first.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if ingest.IsPDF(path) && !ingest.IsHidden(path) {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		p.logger.Info("no PDFs to process", "dir", dir)
		return nil
	}

	ingest.SortByReportDate(files)
	p.logger.Info("processing PDFs oldest first", "count", len(files))

	for _, path := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.ProcessFile(ctx, path)
	}
	return nil
}

// ProcessFile runs one document end to end. The file is archived whether
// processing succeeded or failed, so a structurally broken document is never
// picked up again.
func (p *Processor) ProcessFile(ctx context.Context, path string) {
	filename := filepath.Base(path)
	log := p.logger.With("run_id", uuid.NewString(), "file", filename)
	log.Info("processing document")

	res, err := p.runDocument(ctx, path, log)
	if err != nil {
		log.Error("document processing failed", "error", err)
	} else if res.Saved > 0 {
		p.notifier.NotifyBookings(ctx, res.SavedRows)
	}

	if err := p.archiver.Archive(path); err != nil {
		log.Error("archive move failed", "error", err)
	}
}

func (p *Processor) runDocument(ctx context.Context, path string, log *slog.Logger) (ingest.Result, error) {
	doc, err := pdfio.Open(path, p.pdfCfg, log)
	if err != nil {
		return ingest.Result{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.Warn("close document", "error", cerr)
		}
	}()

	extractor := extract.NewExtractor(log)
	pairs, err := extractor.ExtractDocument(ctx, doc)
	if err != nil {
		return ingest.Result{}, err
	}
	log.Info("extracted records", "records", len(pairs))

	return p.ingestor.Ingest(ctx, pairs, filepath.Base(path))
}
