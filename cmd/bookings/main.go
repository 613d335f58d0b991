// Command bookings is the one-shot CLI: gather new report PDFs, process the
// drop directory, report status, and run the maintenance passes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joshdeansavv/booking-tracker/internal/archive"
	"github.com/joshdeansavv/booking-tracker/internal/common"
	"github.com/joshdeansavv/booking-tracker/internal/fetch"
	"github.com/joshdeansavv/booking-tracker/internal/ingest"
	"github.com/joshdeansavv/booking-tracker/internal/maintenance"
	"github.com/joshdeansavv/booking-tracker/internal/notify"
	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
	"github.com/joshdeansavv/booking-tracker/internal/pipeline"
	"github.com/joshdeansavv/booking-tracker/internal/repository"
)

type app struct {
	cfg    *common.Config
	logger *slog.Logger
	conn   *repository.SharedConn
	repo   repository.BookingRepository
}

func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.Dirs.Source, cfg.Dirs.Archive, cfg.Dirs.Images} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	conn := repository.NewSharedConn(cfg.Database.DSN, cfg.Database.DialTimeout, logger)
	if err := repository.EnsureSchema(ctx, conn, logger); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		repo:   repository.NewBookingRepository(conn, logger),
	}, nil
}

func (a *app) close(ctx context.Context) {
	a.conn.Close(ctx)
}

func (a *app) processor() *pipeline.Processor {
	images := ingest.NewImageStore(a.cfg.Dirs.Images, a.logger)
	ingestor := ingest.NewIngestor(a.repo, images, a.logger)
	ingestor.ImageCutoff = a.cfg.PDF.ImageCutoff

	var notifier pipeline.Notifier = pipeline.NopNotifier{}
	if a.cfg.Notify.WebhookURL != "" {
		notifier = notify.NewDiscord(notify.Config{
			WebhookURL:        a.cfg.Notify.WebhookURL,
			LedgerPath:        a.cfg.Notify.LedgerPath,
			MessagesPerMinute: a.cfg.Notify.MessagesPerMinute,
		}, nil, a.logger)
	}

	pdfCfg := pdfio.Config{
		Pdftohtml: a.cfg.PDF.Pdftohtml,
		Pdftoppm:  a.cfg.PDF.Pdftoppm,
		Pdfimages: a.cfg.PDF.Pdfimages,
		RenderDPI: a.cfg.PDF.RenderDPI,
	}

	archiver := archive.NewArchiver(a.cfg.Dirs.Archive, a.logger)
	return pipeline.NewProcessor(pdfCfg, ingestor, archiver, notifier, a.logger)
}

func (a *app) fetcher() *fetch.Fetcher {
	return fetch.NewFetcher(fetch.Config{
		BaseURL:           a.cfg.Fetch.BaseURL,
		UserAgent:         a.cfg.Fetch.UserAgent,
		SourceDir:         a.cfg.Dirs.Source,
		ArchiveDir:        a.cfg.Dirs.Archive,
		RequestsPerSecond: a.cfg.Fetch.RequestsPerSecond,
	}, nil, a.logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := &cobra.Command{
		Use:           "bookings",
		Short:         "Jail booking report ingestion pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		gatherCmd(ctx),
		processCmd(ctx),
		runCmd(ctx),
		statusCmd(ctx),
		cleanupCmd(ctx),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func gatherCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "gather",
		Short: "Download new report PDFs from the county site",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			_, err = a.fetcher().Gather(ctx)
			return err
		},
	}
}

func processCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Process all PDFs waiting in the drop directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			return a.processor().ProcessDirectory(ctx, a.cfg.Dirs.Source)
		},
	}
}

func runCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Gather, process, and clean up in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if _, err := a.fetcher().Gather(ctx); err != nil {
				a.logger.Error("gather failed; processing local PDFs anyway", "error", err)
			}
			if err := a.processor().ProcessDirectory(ctx, a.cfg.Dirs.Source); err != nil {
				return err
			}

			cleaner := maintenance.NewCleaner(a.repo, a.cfg.Dirs.Images, a.logger)
			if _, err := cleaner.RemoveOrphanedImages(ctx); err != nil {
				a.logger.Error("orphaned image cleanup failed", "error", err)
			}
			if _, err := cleaner.RemoveDuplicates(ctx); err != nil {
				a.logger.Error("duplicate sweep failed", "error", err)
			}
			return nil
		},
	}
}

func statusCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print database and filesystem statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			stats, err := a.repo.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Total records:       %d\n", stats.TotalRecords)
			fmt.Printf("Records with images: %d\n", stats.RecordsWithImages)
			if stats.TotalRecords > 0 {
				pct := float64(stats.RecordsWithImages) / float64(stats.TotalRecords) * 100
				fmt.Printf("Image coverage:      %.1f%%\n", pct)
			}
			fmt.Printf("Unique PDFs:         %d\n", stats.UniquePDFs)
			if stats.MinBookingDate != nil && stats.MaxBookingDate != nil {
				fmt.Printf("Date range:          %s to %s\n", *stats.MinBookingDate, *stats.MaxBookingDate)
			}
			fmt.Printf("Recent (7 days):     %d\n", stats.RecentRecords)

			pending := countPDFs(a.cfg.Dirs.Source)
			archived := countPDFs(a.cfg.Dirs.Archive)
			fmt.Printf("Pending PDFs:        %d\n", pending)
			fmt.Printf("Archived PDFs:       %d\n", archived)
			return nil
		},
	}
}

func cleanupCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove orphaned image files and exact duplicate rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			cleaner := maintenance.NewCleaner(a.repo, a.cfg.Dirs.Images, a.logger)
			removed, err := cleaner.RemoveOrphanedImages(ctx)
			if err != nil {
				return err
			}
			deleted, err := cleaner.RemoveDuplicates(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d orphaned images, %d duplicate rows\n", removed, deleted)
			return nil
		},
	}
}

func countPDFs(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && ingest.IsPDF(e.Name()) {
			n++
		}
	}
	return n
}
