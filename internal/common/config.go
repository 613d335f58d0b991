package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Dirs     DirConfig
	Fetch    FetchConfig
	Notify   NotifyConfig
	PDF      PDFConfig
	Schedule ScheduleConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// DirConfig holds the working directories of the pipeline.
type DirConfig struct {
	Source  string // incoming PDFs waiting to be processed
	Archive string // processed PDFs
	Images  string // persisted mugshot files
}

// FetchConfig holds report-site download configuration
type FetchConfig struct {
	BaseURL           string
	UserAgent         string
	IndexTimeout      time.Duration
	DownloadTimeout   time.Duration
	RequestsPerSecond float64
}

// NotifyConfig holds Discord webhook configuration
type NotifyConfig struct {
	WebhookURL        string
	LedgerPath        string
	MessagesPerMinute float64
	Timeout           time.Duration
}

// PDFConfig holds poppler tool paths and render settings.
type PDFConfig struct {
	Pdftohtml string
	Pdftoppm  string
	Pdfimages string
	RenderDPI int // 144 renders at 2x the 72dpi page scale

	// Mugshot files are not written for reports dated before this;
	// earlier reports carried placeholder graphics instead of mugshots.
	ImageCutoff time.Time
}

// ScheduleConfig holds the cron schedule for the daemon's gather cycle.
type ScheduleConfig struct {
	GatherSpec string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", ""),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Dirs: DirConfig{
			Source:  getEnv("SOURCE_DIR", "new"),
			Archive: getEnv("ARCHIVE_DIR", "archive"),
			Images:  getEnv("IMAGES_DIR", "images"),
		},
		Fetch: FetchConfig{
			BaseURL:           getEnv("REPORT_BASE_URL", "https://apps.mesacounty.us/so-blotter-reports/"),
			UserAgent:         getEnv("REPORT_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			IndexTimeout:      getEnvAsDuration("FETCH_INDEX_TIMEOUT", 30*time.Second),
			DownloadTimeout:   getEnvAsDuration("FETCH_DOWNLOAD_TIMEOUT", 60*time.Second),
			RequestsPerSecond: getEnvAsFloat64("FETCH_RPS", 1.0),
		},
		Notify: NotifyConfig{
			WebhookURL:        getEnv("DISCORD_WEBHOOK_URL", ""),
			LedgerPath:        getEnv("DISCORD_LEDGER_PATH", "discord_sent_records.txt"),
			MessagesPerMinute: getEnvAsFloat64("DISCORD_MSGS_PER_MINUTE", 30),
			Timeout:           getEnvAsDuration("DISCORD_TIMEOUT", 15*time.Second),
		},
		PDF: PDFConfig{
			Pdftohtml:   getEnv("PDFTOHTML", "pdftohtml"),
			Pdftoppm:    getEnv("PDFTOPPM", "pdftoppm"),
			Pdfimages:   getEnv("PDFIMAGES", "pdfimages"),
			RenderDPI:   getEnvAsInt("PDF_RENDER_DPI", 144),
			ImageCutoff: getEnvAsDate("IMAGE_CUTOFF_DATE", time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)),
		},
		Schedule: ScheduleConfig{
			GatherSpec: getEnv("GATHER_CRON", "*/30 * * * *"),
		},
	}
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Dirs.Source == "" || c.Dirs.Archive == "" || c.Dirs.Images == "" {
		return NewAppError("CONFIG_ERROR", "working directories are required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	if value := os.Getenv(key); value != "" {
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t
		}
	}
	return defaultValue
}
