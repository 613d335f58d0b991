// Package archive moves processed report PDFs out of the drop directory.
package archive

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Archiver relocates processed files into the archive directory.
type Archiver struct {
	Dir    string
	logger *slog.Logger
}

func NewArchiver(dir string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{Dir: dir, logger: logger}
}

// Archive moves path into the archive directory, falling back to copy+remove
// when rename crosses filesystems.
func (a *Archiver) Archive(path string) error {
	dst := filepath.Join(a.Dir, filepath.Base(path))

	if err := os.Rename(path, dst); err == nil {
		a.logger.Info("archived", "file", filepath.Base(path))
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive open: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			a.logger.Warn("archive source close", "error", cerr)
		}
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("archive create: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("archive copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("archive close: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("archive remove source: %w", err)
	}
	a.logger.Info("archived", "file", filepath.Base(path))
	return nil
}
