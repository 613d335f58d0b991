package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdeansavv/booking-tracker/internal/entity"
)

func testRow(id int64, name string) *entity.BookingRow {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	clock := time.Date(0, 1, 1, 10, 30, 45, 0, time.UTC)
	return &entity.BookingRow{
		ID:          id,
		RawName:     name,
		BookingDate: &date,
		BookingTime: &clock,
		DateOfBirth: "3/2/1990",
		Gender:      "MALE",
		RawArrestor: "MESA COUNTY SHERIFF",
		Charges:     "State 18-3-204 Assault",
		SourcePDF:   "report-2025-06-15.pdf",
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "JOHN ROBERT SMITH", DisplayName("SMITH, JOHN ROBERT"))
	assert.Equal(t, "MADONNA", DisplayName("MADONNA"))
	assert.Equal(t, "SMITH", DisplayName("SMITH,"))
}

func TestNotifyBookingsPostsOncePerRow(t *testing.T) {
	var payloads []webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p webhookPayload
		require.NoError(t, json.Unmarshal(body, &p))
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(Config{
		WebhookURL:        srv.URL,
		LedgerPath:        filepath.Join(t.TempDir(), "sent.txt"),
		MessagesPerMinute: 60000,
	}, srv.Client(), nil)

	rows := []*entity.BookingRow{testRow(1, "SMITH, JOHN"), testRow(2, "DOE, JANE")}
	d.NotifyBookings(context.Background(), rows)
	require.Len(t, payloads, 2)

	e := payloads[0].Embeds[0]
	assert.Equal(t, "JOHN SMITH", e.Title)
	assert.Equal(t, "report-2025-06-15.pdf", e.Footer.Text)
	require.Len(t, e.Fields, 5)
	assert.Equal(t, "2025-06-15 10:30:45", e.Fields[0].Value)

	// ledger suppresses reposts
	d.NotifyBookings(context.Background(), rows)
	assert.Len(t, payloads, 2)
}

func TestNotifyBookingsLedgerSurvivesRestart(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "sent.txt")
	var posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := Config{WebhookURL: srv.URL, LedgerPath: ledgerPath, MessagesPerMinute: 60000}
	rows := []*entity.BookingRow{testRow(7, "SMITH, JOHN")}

	NewDiscord(cfg, srv.Client(), nil).NotifyBookings(context.Background(), rows)
	assert.Equal(t, 1, posts)

	// a fresh instance reads the ledger file
	NewDiscord(cfg, srv.Client(), nil).NotifyBookings(context.Background(), rows)
	assert.Equal(t, 1, posts)
}

func TestNotifyBookingsFailedPostNotRecorded(t *testing.T) {
	var posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		if posts == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(Config{
		WebhookURL:        srv.URL,
		LedgerPath:        filepath.Join(t.TempDir(), "sent.txt"),
		MessagesPerMinute: 60000,
	}, srv.Client(), nil)

	rows := []*entity.BookingRow{testRow(1, "SMITH, JOHN")}
	d.NotifyBookings(context.Background(), rows)
	d.NotifyBookings(context.Background(), rows)
	assert.Equal(t, 2, posts, "a failed post is retried on the next batch")
}

func TestNotifyBookingsNoWebhookConfigured(t *testing.T) {
	d := NewDiscord(Config{}, nil, nil)
	d.NotifyBookings(context.Background(), []*entity.BookingRow{testRow(1, "SMITH, JOHN")})
}
