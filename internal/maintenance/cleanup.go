// Package maintenance holds the out-of-band cleanup passes: orphaned mugshot
// files and exact duplicate rows.
package maintenance

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshdeansavv/booking-tracker/internal/repository"
)

// Cleaner runs the maintenance passes against the store and the images dir.
type Cleaner struct {
	repo      repository.BookingRepository
	imagesDir string
	logger    *slog.Logger
}

func NewCleaner(repo repository.BookingRepository, imagesDir string, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{repo: repo, imagesDir: imagesDir, logger: logger}
}

// RemoveOrphanedImages deletes mugshot files no stored row references.
// Returns the number of files removed.
func (c *Cleaner) RemoveOrphanedImages(ctx context.Context) (int, error) {
	paths, err := c.repo.ImagePaths(ctx)
	if err != nil {
		return 0, err
	}
	valid := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		valid[p] = struct{}{}
	}

	entries, err := os.ReadDir(c.imagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("no images directory found", "dir", c.imagesDir)
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		path := filepath.Join(c.imagesDir, e.Name())
		if _, ok := valid[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			c.logger.Warn("failed to remove orphaned image", "path", path, "error", err)
			continue
		}
		removed++
	}

	c.logger.Info("orphaned image cleanup complete", "removed", removed)
	return removed, nil
}

// RemoveDuplicates deletes exact dedup-key duplicates, keeping the row that
// carries real charges. Multiple arrests of the same person on different
// timestamps are untouched.
func (c *Cleaner) RemoveDuplicates(ctx context.Context) (int, error) {
	return c.repo.SweepDuplicates(ctx)
}
