// Package export writes scraped records to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ganbold/unegui-scraper/internal/scraper"
)

// fixedColumns lead every export; characteristic keys follow in the order
// they first appear across the records.
var fixedColumns = []string{"title", "price", "ad_id", "location", "date", "url"}

// Write streams records as CSV to w. csv.Writer handles quoting, commas
// inside fields, and line endings.
func Write(w io.Writer, records []scraper.Record) error {
	writer := csv.NewWriter(w)
	if err := writeRows(writer, records); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}

// WriteCSV writes records to path, creating parent directories as needed.
func WriteCSV(path string, records []scraper.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if err := Write(file, records); err != nil {
		return err
	}
	return file.Close()
}

func writeRows(writer *csv.Writer, records []scraper.Record) error {
	charColumns := characteristicColumns(records)
	header := make([]string, 0, len(fixedColumns)+len(charColumns))
	header = append(header, fixedColumns...)
	header = append(header, charColumns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, record := range records {
		row := make([]string, 0, len(header))
		row = append(row, record.Title, record.Price, record.AdID, record.Location, record.Date, record.URL)
		for _, key := range charColumns {
			value, _ := record.Characteristics.Get(key)
			row = append(row, value)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

// characteristicColumns returns the union of characteristic keys across all
// records, in the order each key is first seen.
func characteristicColumns(records []scraper.Record) []string {
	var columns []string
	seen := make(map[string]struct{})
	for _, record := range records {
		for _, key := range record.Characteristics.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return columns
}

// Filename builds the timestamped output name for a category export,
// for example unegui_apartments_all_20240501_143022.csv.
func Filename(categoryKey, from, to string, now time.Time) string {
	suffix := "all"
	switch {
	case from != "" && to != "":
		suffix = from + "_" + to
	case from != "":
		suffix = "from_" + from
	case to != "":
		suffix = "to_" + to
	}
	return fmt.Sprintf("unegui_%s_%s_%s.csv", categoryKey, suffix, now.Format("20060102_150405"))
}
