package notify

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Ledger is an append-only file of row IDs already posted to the webhook.
type Ledger struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	sent   map[int64]struct{}
}

func NewLedger(path string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{path: path, logger: logger, sent: make(map[int64]struct{})}
}

// Sent reports whether the row ID was already posted.
func (l *Ledger) Sent(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.load()
	_, ok := l.sent[id]
	return ok
}

// Record appends the row ID to the ledger file.
func (l *Ledger) Record(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.load()
	if _, ok := l.sent[id]; ok {
		return
	}
	l.sent[id] = struct{}{}

	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Warn("ledger open failed", "path", l.path, "error", err)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.Warn("ledger close failed", "error", cerr)
		}
	}()
	if _, err := fmt.Fprintf(f, "%d\n", id); err != nil {
		l.logger.Warn("ledger append failed", "error", err)
	}
}

// load reads the ledger file once, lazily. Lines that are not integers are
// skipped.
func (l *Ledger) load() {
	if l.loaded {
		return
	}
	l.loaded = true
	if l.path == "" {
		return
	}

	f, err := os.Open(l.path)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.Warn("ledger close failed", "error", cerr)
		}
	}()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if id, err := strconv.ParseInt(line, 10, 64); err == nil {
			l.sent[id] = struct{}{}
		}
	}
}
