// Package export writes report tables to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"RetentionSentinel/internal/report"
)

// WriteCSV writes the table with a header row. Parent folders are created.
func WriteCSV(filename string, t *report.Table) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return file.Close()
}

// WriteJSON writes data as indented JSON. Tables are written as a list of
// column-keyed records.
func WriteJSON(filename string, data any) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if t, ok := data.(*report.Table); ok {
		data = t.Records()
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return file.Close()
}

// TimestampedFilename builds dir/name_YYYYMMDD_HHMMSS.ext.
func TimestampedFilename(dir, name, ext string, at time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), ext))
}

// Tables writes every table as CSV into dir with a shared timestamp and
// returns the written paths.
func Tables(dir string, at time.Time, tables ...*report.Table) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := TimestampedFilename(dir, t.Name, "csv", at)
		if err := WriteCSV(path, t); err != nil {
			return paths, fmt.Errorf("export %s: %w", t.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
