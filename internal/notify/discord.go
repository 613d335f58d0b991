// Package notify posts newly stored bookings to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/joshdeansavv/booking-tracker/internal/entity"
)

const embedColor = 0x1f1f1f

// Config controls the webhook endpoint and pacing.
type Config struct {
	WebhookURL        string
	LedgerPath        string  // file tracking already-posted row IDs
	MessagesPerMinute float64 // Discord allows 30 webhook messages per minute
}

// Discord posts one embed per new booking, throttled under the webhook rate
// limit, and records posted row IDs in a ledger file so restarts do not
// repost.
type Discord struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	ledger  *Ledger
	logger  *slog.Logger
}

func NewDiscord(cfg Config, client *http.Client, logger *slog.Logger) *Discord {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	mpm := cfg.MessagesPerMinute
	if mpm <= 0 {
		mpm = 30
	}
	return &Discord{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(mpm/60.0), 1),
		ledger:  NewLedger(cfg.LedgerPath, logger),
		logger:  logger,
	}
}

type embed struct {
	Title  string  `json:"title"`
	Color  int     `json:"color"`
	Fields []field `json:"fields"`
	Footer *footer `json:"footer,omitempty"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footer struct {
	Text string `json:"text"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// NotifyBookings posts each row once. Errors cost only the notification;
// ingestion has already committed.
func (d *Discord) NotifyBookings(ctx context.Context, rows []*entity.BookingRow) {
	if d.cfg.WebhookURL == "" {
		return
	}
	for _, row := range rows {
		if d.ledger.Sent(row.ID) {
			continue
		}
		if err := d.PostBooking(ctx, row); err != nil {
			d.logger.Error("discord post failed", "raw_name", row.RawName, "error", err)
			continue
		}
		d.ledger.Record(row.ID)
	}
}

// PostBooking sends a single booking embed through the webhook.
func (d *Discord) PostBooking(ctx context.Context, row *entity.BookingRow) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	payload := webhookPayload{Embeds: []embed{bookingEmbed(row)}}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode embed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			d.logger.Warn("response body close", "error", cerr)
		}
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

// bookingEmbed formats a row. The stored name is "LAST, FIRST MIDDLE";
// the title flips it to reading order.
func bookingEmbed(row *entity.BookingRow) embed {
	e := embed{
		Title: DisplayName(row.RawName),
		Color: embedColor,
		Fields: []field{
			{Name: "Booked", Value: bookedAt(row), Inline: true},
			{Name: "Date of Birth", Value: orDash(row.DateOfBirth), Inline: true},
			{Name: "Gender", Value: orDash(row.Gender), Inline: true},
			{Name: "Brought By", Value: orDash(row.RawArrestor), Inline: false},
			{Name: "Charges", Value: orDash(row.Charges), Inline: false},
		},
		Footer: &footer{Text: row.SourcePDF},
	}
	return e
}

// DisplayName converts "LAST, FIRST MIDDLE" to "FIRST MIDDLE LAST".
func DisplayName(rawName string) string {
	before, after, found := strings.Cut(rawName, ",")
	if !found {
		return strings.TrimSpace(rawName)
	}
	return strings.TrimSpace(strings.TrimSpace(after) + " " + strings.TrimSpace(before))
}

func bookedAt(row *entity.BookingRow) string {
	date := entity.FormatDate(row.BookingDate)
	clock := entity.FormatTime(row.BookingTime)
	if date == "" {
		return "—"
	}
	return strings.TrimSpace(date + " " + clock)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
