package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganbold/unegui-scraper/internal/scraper"
)

func TestWriteCSVUnionsCharacteristicColumns(t *testing.T) {
	t.Parallel()

	var first scraper.Characteristics
	first.Set("Talbai", "50 m2")
	first.Set("Tsonkh", "3")

	var second scraper.Characteristics
	second.Set("Shal", "parquet")
	second.Set("Talbai", "72 m2")

	records := []scraper.Record{
		{
			Title:           "2 rooms",
			Price:           "250000000",
			AdID:            "5001",
			Location:        "Bayangol",
			Date:            "2024-05-01 14:30",
			URL:             "https://www.unegui.mn/adv/5001",
			Characteristics: first,
		},
		{
			Title:           "3 rooms",
			URL:             "https://www.unegui.mn/adv/5002",
			Characteristics: second,
		},
	}

	path := filepath.Join(t.TempDir(), "out", "listings.csv")
	require.NoError(t, WriteCSV(path, records))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	wantHeader := []string{"title", "price", "ad_id", "location", "date", "url", "Talbai", "Tsonkh", "Shal"}
	require.Equal(t, wantHeader, rows[0])

	require.Equal(t, []string{
		"2 rooms", "250000000", "5001", "Bayangol", "2024-05-01 14:30",
		"https://www.unegui.mn/adv/5001", "50 m2", "3", "",
	}, rows[1])
	require.Equal(t, []string{
		"3 rooms", "", "", "", "",
		"https://www.unegui.mn/adv/5002", "72 m2", "", "parquet",
	}, rows[2])
}

func TestWriteCSVEmptyRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(path, nil))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, fixedColumns, rows[0])
}

func TestFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{name: "no filter", want: "unegui_apartments_all_20240501_143022.csv"},
		{
			name: "both bounds",
			from: "2024-04-01",
			to:   "2024-04-30",
			want: "unegui_apartments_2024-04-01_2024-04-30_20240501_143022.csv",
		},
		{
			name: "from only",
			from: "2024-04-01",
			want: "unegui_apartments_from_2024-04-01_20240501_143022.csv",
		},
		{
			name: "to only",
			to:   "2024-04-30",
			want: "unegui_apartments_to_2024-04-30_20240501_143022.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Filename("apartments", tt.from, tt.to, now))
		})
	}
}
