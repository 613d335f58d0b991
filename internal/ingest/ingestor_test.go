package ingest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdeansavv/booking-tracker/constants"
	"github.com/joshdeansavv/booking-tracker/internal/entity"
	"github.com/joshdeansavv/booking-tracker/internal/extract"
)

// memRepo stores rows in memory, keyed the same way the SQL layer keys its
// duplicate check.
type memRepo struct {
	rows   map[string]*entity.BookingRow
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string]*entity.BookingRow)}
}

func (m *memRepo) Existing(_ context.Context, rows []*entity.BookingRow) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	for _, row := range rows {
		if _, ok := m.rows[row.DedupKey()]; ok {
			existing[row.DedupKey()] = struct{}{}
		}
	}
	return existing, nil
}

func (m *memRepo) InsertBatch(_ context.Context, rows []*entity.BookingRow) error {
	for _, row := range rows {
		m.nextID++
		row.ID = m.nextID
		m.rows[row.DedupKey()] = row
	}
	return nil
}

func (m *memRepo) ImagePaths(context.Context) ([]string, error) { return nil, nil }

func (m *memRepo) Stats(context.Context) (*entity.BookingStats, error) {
	return &entity.BookingStats{TotalRecords: int64(len(m.rows))}, nil
}

func (m *memRepo) SweepDuplicates(context.Context) (int, error) { return 0, nil }

func pairFor(name, bookedAt string) extract.MatchedPair {
	return extract.MatchedPair{
		Record: extract.Record{
			Name:      name,
			BookedAt:  bookedAt,
			DOB:       "3/2/1990",
			Gender:    "MALE",
			BroughtBy: "MESA COUNTY SHERIFF",
			Charges:   []string{"State 18-3-204 Assault"},
		},
		Image: bytes.Repeat([]byte{0xAB}, 256),
	}
}

func newTestIngestor(t *testing.T, repo *memRepo) *Ingestor {
	t.Helper()
	return NewIngestor(repo, NewImageStore(t.TempDir(), nil), nil)
}

func TestIngestIdempotent(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	pairs := []extract.MatchedPair{
		pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM"),
		pairFor("DOE, JANE", "6/15/2025 11:00:00 AM"),
	}

	res, err := ing.Ingest(context.Background(), pairs, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Extracted)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, 0, res.Skipped)
	assert.Len(t, res.SavedRows, 2)
	assert.Len(t, repo.rows, 2)

	// same document again: nothing new
	res, err = ing.Ingest(context.Background(), pairs, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Saved)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.SavedRows)
	assert.Len(t, repo.rows, 2)
}

func TestIngestSamePersonDifferentDocument(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	pairs := []extract.MatchedPair{pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM")}

	_, err := ing.Ingest(context.Background(), pairs, "report-2025-06-15.pdf")
	require.NoError(t, err)

	res, err := ing.Ingest(context.Background(), pairs, "report-2025-06-16.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved, "the source document is part of the identity")
	assert.Len(t, repo.rows, 2)
}

func TestIngestIntraBatchDuplicate(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	a := pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM")
	b := pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM")
	b.Record.Charges = []string{"State 42-4-1301 DUI"}

	res, err := ing.Ingest(context.Background(), []extract.MatchedPair{a, b}, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.SavedRows, 1)
	assert.Equal(t, "State 18-3-204 Assault", res.SavedRows[0].Charges, "the first occurrence wins")
}

func TestIngestRowShape(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	pair := pairFor("SMITH, JOHN ROBERT", "6/15/2025 10:30:45 AM")
	pair.Record.Address = "742 EVERGREEN TERRACE, GRAND JUNCTION"

	res, err := ing.Ingest(context.Background(), []extract.MatchedPair{pair}, "report-2025-06-15.pdf")
	require.NoError(t, err)
	require.Len(t, res.SavedRows, 1)

	row := res.SavedRows[0]
	assert.Equal(t, "SMITH, JOHN ROBERT", row.RawName)
	assert.Equal(t, "JOHN", row.FirstName)
	assert.Equal(t, "ROBERT", row.MiddleName)
	assert.Equal(t, "SMITH", row.LastName)
	assert.Equal(t, "742 EVERGREEN TERRACE, GRAND JUNCTION", row.Address)
	require.NotNil(t, row.BookingDate)
	assert.Equal(t, "2025-06-15", entity.FormatDate(row.BookingDate))
	assert.Equal(t, "10:30:45", entity.FormatTime(row.BookingTime))
	assert.Equal(t, "State 18-3-204 Assault", row.Charges)
	assert.NotZero(t, row.ID, "inserted rows carry their generated ID")
	require.NotNil(t, row.ImagePath)
}

func TestIngestBadTimestampStillStored(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	pair := pairFor("SMITH, JOHN", "garbled")

	res, err := ing.Ingest(context.Background(), []extract.MatchedPair{pair}, "report-2025-06-15.pdf")
	require.NoError(t, err)
	require.Len(t, res.SavedRows, 1)

	row := res.SavedRows[0]
	assert.Nil(t, row.BookingDate)
	assert.Nil(t, row.BookingTime)
	assert.Equal(t, "", entity.FormatDate(row.BookingDate))
}

func TestIngestNoCharges(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	pair := pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM")
	pair.Record.Charges = nil

	res, err := ing.Ingest(context.Background(), []extract.MatchedPair{pair}, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.NoCharges, res.SavedRows[0].Charges)
}

func TestIngestChargeJoin(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	pair := pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM")
	pair.Record.Charges = []string{"State A", "State B"}

	res, err := ing.Ingest(context.Background(), []extract.MatchedPair{pair}, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Equal(t, "State A; State B", res.SavedRows[0].Charges)
}

func TestIngestImageCutoff(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)
	ing.ImageCutoff = time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)

	pair := pairFor("SMITH, JOHN", "6/15/2025 10:30:45 AM")

	res, err := ing.Ingest(context.Background(), []extract.MatchedPair{pair}, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Nil(t, res.SavedRows[0].ImagePath, "reports before the cutoff carry placeholder graphics")

	res, err = ing.Ingest(context.Background(), []extract.MatchedPair{pair}, "report-2025-06-27.pdf")
	require.NoError(t, err)
	require.NotNil(t, res.SavedRows[0].ImagePath)
}

func TestIngestEmpty(t *testing.T) {
	repo := newMemRepo()
	ing := newTestIngestor(t, repo)

	res, err := ing.Ingest(context.Background(), nil, "report-2025-06-15.pdf")
	require.NoError(t, err)
	assert.Zero(t, res.Extracted)
	assert.Zero(t, res.Saved)
	assert.Len(t, repo.rows, 0)
}
