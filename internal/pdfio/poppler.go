package pdfio

import (
	"context"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Config holds the poppler tool paths and render settings.
type Config struct {
	Pdftohtml string
	Pdftoppm  string
	Pdfimages string
	RenderDPI int
}

// DefaultConfig returns tool names resolved from PATH and a 2x render scale.
func DefaultConfig() Config {
	return Config{
		Pdftohtml: "pdftohtml",
		Pdftoppm:  "pdftoppm",
		Pdfimages: "pdfimages",
		RenderDPI: 144,
	}
}

// PopplerDocument implements Document on top of the poppler CLI tools and a
// ledongthuc reader for the plain-text fallback.
type PopplerDocument struct {
	path   string
	cfg    Config
	runner Runner
	logger *slog.Logger

	file   *os.File
	reader *pdf.Reader
}

// Open opens a PDF for page-by-page extraction.
func Open(path string, cfg Config, logger *slog.Logger) (*PopplerDocument, error) {
	return open(path, cfg, execRunner{}, logger)
}

func open(path string, cfg Config, runner Runner, logger *slog.Logger) (*PopplerDocument, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	return &PopplerDocument{
		path:   path,
		cfg:    cfg,
		runner: runner,
		logger: logger,
		file:   f,
		reader: r,
	}, nil
}

func (d *PopplerDocument) Close() error {
	return d.file.Close()
}

func (d *PopplerDocument) PageCount() int {
	return d.reader.NumPage()
}

// pdftohtml -xml output shapes.
type xmlRoot struct {
	Pages []xmlPage `xml:"page"`
}

type xmlPage struct {
	Number int       `xml:"number,attr"`
	Width  float64   `xml:"width,attr"`
	Height float64   `xml:"height,attr"`
	Texts  []xmlText `xml:"text"`
	Images []xmlImg  `xml:"image"`
}

type xmlText struct {
	Top   float64 `xml:"top,attr"`
	Left  float64 `xml:"left,attr"`
	Inner string  `xml:",innerxml"`
}

type xmlImg struct {
	Top    float64 `xml:"top,attr"`
	Left   float64 `xml:"left,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

// text chunks may carry <b>/<i> markup inside the element
var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Page extracts positioned words and image boxes for page n via pdftohtml.
// When the page yields no positioned text at all, PlainLines carries the
// ledongthuc plain-text extraction instead.
func (d *PopplerDocument) Page(ctx context.Context, n int) (*Page, error) {
	tmpDir, err := os.MkdirTemp("", "bt-xml-*")
	if err != nil {
		return nil, err
	}
	defer cleanupTemp(tmpDir)

	base := filepath.Join(tmpDir, "page")
	pn := fmt.Sprintf("%d", n)
	// pdftohtml -xml -zoom 1 keeps coordinates in page points
	_, _, err = d.runner.Run(ctx, d.cfg.Pdftohtml,
		"-xml", "-zoom", "1", "-f", pn, "-l", pn, "-q", d.path, base)
	if err != nil {
		return nil, fmt.Errorf("pdftohtml page %d: %w", n, err)
	}

	raw, err := os.ReadFile(base + ".xml")
	if err != nil {
		return nil, fmt.Errorf("read pdftohtml output: %w", err)
	}

	page, err := parsePageXML(raw, n)
	if err != nil {
		return nil, err
	}

	if len(page.Words) == 0 {
		page.PlainLines = d.plainLines(n)
	}
	return page, nil
}

// parsePageXML converts one page's pdftohtml -xml output into a Page.
func parsePageXML(raw []byte, n int) (*Page, error) {
	var root xmlRoot
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse pdftohtml xml: %w", err)
	}

	page := &Page{Number: n}
	for _, xp := range root.Pages {
		if xp.Number != n && len(root.Pages) > 1 {
			continue
		}
		page.Width = xp.Width
		page.Height = xp.Height
		for _, t := range xp.Texts {
			text := strings.TrimSpace(xmlTagRe.ReplaceAllString(t.Inner, ""))
			if text == "" {
				continue
			}
			page.Words = append(page.Words, Word{Text: unescape(text), Left: t.Left, Top: t.Top})
		}
		for _, im := range xp.Images {
			page.ImageBoxes = append(page.ImageBoxes, Box{
				X0:     im.Left,
				Top:    im.Top,
				X1:     im.Left + im.Width,
				Bottom: im.Top + im.Height,
			})
		}
	}
	return page, nil
}

// plainLines is the no-layout fallback: each raw text line stands alone.
func (d *PopplerDocument) plainLines(n int) []string {
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		d.logger.Warn("plain text fallback failed", "page", n, "error", err)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func unescape(s string) string {
	r := strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&amp;", "&")
	return r.Replace(s)
}

// RenderPage rasterizes page n with pdftoppm at the configured DPI. Render
// failures are reported as errors; callers degrade to the embedded-image
// fallback rather than aborting the page.
func (d *PopplerDocument) RenderPage(ctx context.Context, n int) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "bt-ppm-*")
	if err != nil {
		return nil, err
	}
	defer cleanupTemp(tmpDir)

	prefix := filepath.Join(tmpDir, "render")
	pn := fmt.Sprintf("%d", n)
	_, _, err = d.runner.Run(ctx, d.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", d.cfg.RenderDPI), "-png", "-f", pn, "-l", pn, d.path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w", n, err)
	}

	matches, _ := filepath.Glob(prefix + "*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no render for page %d", n)
	}
	sort.Strings(matches)

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			d.logger.Warn("close render file", "error", cerr)
		}
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode render for page %d: %w", n, err)
	}
	return img, nil
}

// EmbeddedImages pulls the page's embedded bitmaps with pdfimages. The -png
// flag re-encodes non-RGB color spaces on the way out.
func (d *PopplerDocument) EmbeddedImages(ctx context.Context, n int) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "bt-img-*")
	if err != nil {
		return nil, err
	}
	defer cleanupTemp(tmpDir)

	prefix := filepath.Join(tmpDir, "embedded")
	pn := fmt.Sprintf("%d", n)
	_, _, err = d.runner.Run(ctx, d.cfg.Pdfimages,
		"-png", "-f", pn, "-l", pn, d.path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdfimages page %d: %w", n, err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)

	var out [][]byte
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			d.logger.Warn("read embedded image", "path", m, "error", err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func cleanupTemp(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("failed to remove temp dir", "dir", dir, "error", err)
	}
}
