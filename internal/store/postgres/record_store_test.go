package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/ganbold/unegui-scraper/internal/scraper"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func TestSaveRecordsInsertsRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Unix(1700000000, 0).UTC()
	recordStore, err := NewRecordStoreWithPool(mock, "listings", fixedClock{now: now})
	require.NoError(t, err)

	var chars scraper.Characteristics
	chars.Set("Talbai", "50 m2")

	rec := scraper.Record{
		Title:           "2 tasalgaatai oron suuts",
		Price:           "250000000",
		AdID:            "5001",
		Location:        "Bayangol",
		Date:            "2024-05-01 14:30",
		URL:             "https://www.unegui.mn/adv/5001",
		Characteristics: chars,
	}

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			"job-1",
			"apartments",
			rec.Title,
			rec.Price,
			rec.AdID,
			rec.Location,
			rec.Date,
			rec.URL,
			[]byte(`{"Talbai":"50 m2"}`),
			now,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = recordStore.SaveRecords(context.Background(), "job-1", "apartments", []scraper.Record{rec})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecordsRequiresURL(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	recordStore, err := NewRecordStoreWithPool(mock, "listings", fixedClock{now: time.Now()})
	require.NoError(t, err)

	err = recordStore.SaveRecords(context.Background(), "job-1", "apartments", []scraper.Record{{Title: "no url"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRecordStoreWithPoolRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewRecordStoreWithPool(mock, "listings; DROP TABLE listings", fixedClock{now: time.Now()})
	require.Error(t, err)
}
