package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	nonWordRe  = regexp.MustCompile(`[^\w\s-]`)
	squeezeRe  = regexp.MustCompile(`[-\s]+`)
	minImgSize = 100
)

// ImageStore persists mugshot bytes under deterministic names so
// re-processing a document recomputes the same path instead of writing a
// second file.
type ImageStore struct {
	Dir    string
	logger *slog.Logger
}

func NewImageStore(dir string, logger *slog.Logger) *ImageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageStore{Dir: dir, logger: logger}
}

// Save writes the image and returns its path. The name derives from the
// sanitized record name, the booking date (or "unknown"), and the source
// PDF's base name; an existing file at that path is left untouched. Returns
// "" when the bytes are unusable or the write fails.
func (s *ImageStore) Save(imageBytes []byte, recordName, pdfFilename string, bookingDate *time.Time) string {
	if len(imageBytes) < minImgSize {
		return ""
	}

	path := s.PathFor(recordName, pdfFilename, bookingDate)
	if _, err := os.Stat(path); err == nil {
		return path
	}

	if err := os.WriteFile(path, imageBytes, 0o644); err != nil {
		s.logger.Warn("failed to write mugshot file", "path", path, "error", err)
		return ""
	}
	return path
}

// PathFor computes the deterministic file path for a record's mugshot.
func (s *ImageStore) PathFor(recordName, pdfFilename string, bookingDate *time.Time) string {
	clean := strings.TrimSpace(nonWordRe.ReplaceAllString(recordName, ""))
	clean = squeezeRe.ReplaceAllString(clean, "_")

	dateStr := "unknown"
	if bookingDate != nil {
		dateStr = bookingDate.Format("20060102")
	}

	pdfBase := strings.TrimSuffix(filepath.Base(pdfFilename), filepath.Ext(pdfFilename))
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%s_%s.png", clean, dateStr, pdfBase))
}
