// Package fetch downloads new booking-report PDFs from the county site.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/joshdeansavv/booking-tracker/internal/ingest"
)

var (
	hrefRe     = regexp.MustCompile(`(?i)href=["']([^"']*\.pdf[^"']*)["']`)
	unsafeRe   = regexp.MustCompile(`[<>:"/\\|?*]`)
	reportKeys = []string{"booking", "jail", "records"}
)

// Config controls the fetcher's endpoint and pacing.
type Config struct {
	BaseURL           string
	UserAgent         string
	SourceDir         string // where downloads land
	ArchiveDir        string // checked for already-processed reports
	RequestsPerSecond float64
}

// Fetcher scrapes the report index page and downloads booking PDFs that are
// not yet present locally, throttled to stay polite to the county server.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewFetcher(cfg Config, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Fetcher{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Link is one downloadable report.
type Link struct {
	URL      string
	Filename string
}

// Gather fetches the index page and downloads every new booking report.
// Returns the number of PDFs downloaded.
func (f *Fetcher) Gather(ctx context.Context) (int, error) {
	body, err := f.get(ctx, f.cfg.BaseURL)
	if err != nil {
		return 0, fmt.Errorf("fetch index: %w", err)
	}

	links := ExtractLinks(f.cfg.BaseURL, string(body))
	if len(links) == 0 {
		f.logger.Warn("no report links found on index page")
		return 0, nil
	}
	f.logger.Info("found report links", "count", len(links))

	existingFiles, existingDates := f.localInventory()

	downloaded := 0
	for _, link := range links {
		if _, ok := existingFiles[link.Filename]; ok {
			continue
		}
		// one report per date; a re-issued file with a different sequence
		// number is the same report
		if d, ok := reportDateToken(link.Filename); ok {
			if _, seen := existingDates[d]; seen {
				continue
			}
		}

		if err := f.download(ctx, link); err != nil {
			f.logger.Error("download failed", "file", link.Filename, "error", err)
			continue
		}
		downloaded++
		if d, ok := reportDateToken(link.Filename); ok {
			existingDates[d] = struct{}{}
		}
	}

	f.logger.Info("gather complete", "downloaded", downloaded)
	return downloaded, nil
}

// ExtractLinks pulls booking-report PDF links out of the index page HTML,
// skipping daily-resume documents, and resolves them against the base URL.
func ExtractLinks(baseURL, html string) []Link {
	var links []Link
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		href := m[1]
		lower := strings.ToLower(href)
		if strings.Contains(lower, "resume") {
			continue
		}
		keyword := false
		for _, k := range reportKeys {
			if strings.Contains(lower, k) {
				keyword = true
				break
			}
		}
		if !keyword {
			continue
		}

		links = append(links, Link{
			URL:      resolveURL(baseURL, href),
			Filename: SafeFilename(href),
		})
	}
	return links
}

// SafeFilename derives a local filename from a link target: base name before
// any query string, unsafe characters replaced, .pdf suffix guaranteed.
func SafeFilename(href string) string {
	name := path.Base(strings.SplitN(href, "?", 2)[0])
	name = unsafeRe.ReplaceAllString(name, "_")
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func resolveURL(baseURL, href string) string {
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return baseURL + href
	}
}

// localInventory scans the source and archive directories so already-held
// reports are not fetched again.
func (f *Fetcher) localInventory() (files, dates map[string]struct{}) {
	files = make(map[string]struct{})
	dates = make(map[string]struct{})
	for _, dir := range []string{f.cfg.SourceDir, f.cfg.ArchiveDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !ingest.IsPDF(e.Name()) {
				continue
			}
			files[e.Name()] = struct{}{}
			if d, ok := reportDateToken(e.Name()); ok {
				dates[d] = struct{}{}
			}
		}
	}
	return files, dates
}

func reportDateToken(filename string) (string, bool) {
	t, ok := ingest.ReportDate(filename)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func (f *Fetcher) download(ctx context.Context, link Link) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := f.get(ctx, link.URL)
	if err != nil {
		return err
	}

	dst := filepath.Join(f.cfg.SourceDir, link.Filename)
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", link.Filename, err)
	}
	f.logger.Info("downloaded report", "file", link.Filename, "bytes", len(body))
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Warn("response body close", "error", cerr)
		}
	}()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
