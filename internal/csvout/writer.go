// Package csvout writes record collections as Initializer-loadable CSV
// files, preserving the column order the query produced.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/PIH/iniz-exporters/internal/record"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

// VoidRetireColumn is the Initializer column that marks a row for removal.
const VoidRetireColumn = "Void/Retire"

// Write emits a header row followed by one row per record. A column missing
// from a record is written as empty.
func Write(w io.Writer, columns []string, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	row := make([]string, len(columns))
	for _, r := range records {
		for i, col := range columns {
			row[i] = r[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the records to path, creating or truncating it. The file
// is only created once the pipeline has fully succeeded, so a failed export
// never leaves partial output behind.
func WriteFile(path string, columns []string, records []record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := Write(f, columns, records); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	logging.Info("Writer", "Wrote %d records to %s", len(records), path)
	return nil
}
