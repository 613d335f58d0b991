package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "new", cfg.Dirs.Source)
	assert.Equal(t, "archive", cfg.Dirs.Archive)
	assert.Equal(t, "images", cfg.Dirs.Images)
	assert.Equal(t, 144, cfg.PDF.RenderDPI)
	assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), cfg.PDF.ImageCutoff)
	assert.Equal(t, "*/30 * * * *", cfg.Schedule.GatherSpec)
	assert.Equal(t, 30.0, cfg.Notify.MessagesPerMinute)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/bookings")
	t.Setenv("SOURCE_DIR", "/srv/incoming")
	t.Setenv("PDF_RENDER_DPI", "300")
	t.Setenv("IMAGE_CUTOFF_DATE", "2024-01-15")
	t.Setenv("FETCH_RPS", "0.5")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://localhost/bookings", cfg.Database.DSN)
	assert.Equal(t, "/srv/incoming", cfg.Dirs.Source)
	assert.Equal(t, 300, cfg.PDF.RenderDPI)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), cfg.PDF.ImageCutoff)
	assert.Equal(t, 0.5, cfg.Fetch.RequestsPerSecond)
}

func TestLoadConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("PDF_RENDER_DPI", "not-a-number")
	t.Setenv("IMAGE_CUTOFF_DATE", "junk")

	cfg := LoadConfig()
	assert.Equal(t, 144, cfg.PDF.RenderDPI)
	assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), cfg.PDF.ImageCutoff)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Database.DSN = "postgres://localhost/bookings"
	require.NoError(t, cfg.Validate())

	cfg.Database.DSN = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg.Database.DSN = "postgres://localhost/bookings"
	cfg.Dirs.Images = ""
	assert.Error(t, cfg.Validate())
}
