// Command bookingsd is the long-running daemon. It watches the drop directory
// for new report PDFs, processes each one as it lands, and runs the gather
// and maintenance cycle on a cron schedule.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/joshdeansavv/booking-tracker/internal/archive"
	"github.com/joshdeansavv/booking-tracker/internal/common"
	"github.com/joshdeansavv/booking-tracker/internal/fetch"
	"github.com/joshdeansavv/booking-tracker/internal/ingest"
	"github.com/joshdeansavv/booking-tracker/internal/maintenance"
	"github.com/joshdeansavv/booking-tracker/internal/notify"
	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
	"github.com/joshdeansavv/booking-tracker/internal/pipeline"
	"github.com/joshdeansavv/booking-tracker/internal/repository"
	"github.com/joshdeansavv/booking-tracker/pkg/cron"
)

func main() {
	// Logger
	zl, _ := zap.NewProduction()
	defer zl.Sync()
	log := zl.Sugar()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	for _, dir := range []string{cfg.Dirs.Source, cfg.Dirs.Archive, cfg.Dirs.Images} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("creating directory %s: %v", dir, err)
		}
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := repository.NewSharedConn(cfg.Database.DSN, cfg.Database.DialTimeout, logger)
	defer conn.Close(context.Background())

	if err := conn.HealthCheck(ctx); err != nil {
		log.Fatalf("DB health failed: %v", err)
	}
	log.Infow("DB health OK")

	if err := repository.EnsureSchema(ctx, conn, logger); err != nil {
		log.Fatalf("ensuring schema: %v", err)
	}

	repo := repository.NewBookingRepository(conn, logger)
	images := ingest.NewImageStore(cfg.Dirs.Images, logger)
	ingestor := ingest.NewIngestor(repo, images, logger)
	ingestor.ImageCutoff = cfg.PDF.ImageCutoff

	var notifier pipeline.Notifier = pipeline.NopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewDiscord(notify.Config{
			WebhookURL:        cfg.Notify.WebhookURL,
			LedgerPath:        cfg.Notify.LedgerPath,
			MessagesPerMinute: cfg.Notify.MessagesPerMinute,
		}, nil, logger)
		log.Infow("Discord notifications enabled")
	}

	pdfCfg := pdfio.Config{
		Pdftohtml: cfg.PDF.Pdftohtml,
		Pdftoppm:  cfg.PDF.Pdftoppm,
		Pdfimages: cfg.PDF.Pdfimages,
		RenderDPI: cfg.PDF.RenderDPI,
	}
	archiver := archive.NewArchiver(cfg.Dirs.Archive, logger)
	processor := pipeline.NewProcessor(pdfCfg, ingestor, archiver, notifier, logger)

	fetcher := fetch.NewFetcher(fetch.Config{
		BaseURL:           cfg.Fetch.BaseURL,
		UserAgent:         cfg.Fetch.UserAgent,
		SourceDir:         cfg.Dirs.Source,
		ArchiveDir:        cfg.Dirs.Archive,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	}, nil, logger)
	cleaner := maintenance.NewCleaner(repo, cfg.Dirs.Images, logger)

	// Filesystem watcher, with an initial scan so PDFs already waiting in
	// the drop directory get processed on startup.
	files, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        cfg.Dirs.Source,
		InitialScan: true,
	}, logger)
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}

	sched := cron.NewScheduler(logger)
	if err := sched.AddJob(cfg.Schedule.GatherSpec, "gather", func() {
		if _, err := fetcher.Gather(ctx); err != nil {
			logger.Error("scheduled gather failed", "error", err)
		}
		if _, err := cleaner.RemoveDuplicates(ctx); err != nil {
			logger.Error("scheduled duplicate sweep failed", "error", err)
		}
	}); err != nil {
		log.Fatalf("scheduling gather: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Infof("watching %s", cfg.Dirs.Source)

	for {
		select {
		case <-ctx.Done():
			log.Infow("shutting down...")
			return
		case path, ok := <-files:
			if !ok {
				return
			}
			processor.ProcessFile(ctx, path)
		case werr, ok := <-watchErrs:
			if !ok {
				continue
			}
			logger.Error("watcher error", "error", werr)
		}
	}
}
