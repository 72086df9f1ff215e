// Package setcsv derives an Initializer concept_sets CSV from a previously
// exported concepts CSV. The first data row of the input defines the set;
// every following row becomes a member of it, with sort weights following
// the input order. Rows flagged Void/Retire are carried through so the
// loader removes them from the set.
package setcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PIH/iniz-exporters/pkg/logging"
)

const (
	uuidColumn       = "uuid"
	voidRetireColumn = "Void/Retire"
	memberType       = "CONCEPT-SET"
	namePrefix       = "Fully specified name:"
	// commentPrefix marks columns the Initializer ignores; the names are
	// carried only to keep the file reviewable.
	commentPrefix = "#"
)

// Options configures one conversion.
type Options struct {
	Infile  string
	Outfile string
}

// Create reads the concepts CSV at Infile and writes the concept_sets CSV to
// Outfile.
func Create(opts Options) error {
	in, err := os.Open(opts.Infile)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(opts.Outfile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := Convert(in, out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	logging.Info("Writer", "Wrote concept set CSV to %s", opts.Outfile)
	return nil
}

// Convert performs the conversion between an input concepts CSV stream and
// an output concept_sets CSV stream.
func Convert(r io.Reader, w io.Writer) error {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("reading concepts CSV: %w", err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("concepts CSV needs a header and at least the set-defining row")
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	uuidIdx, ok := col[uuidColumn]
	if !ok {
		return fmt.Errorf("concepts CSV has no %q column", uuidColumn)
	}

	// Name columns in input order; they become comment columns.
	var nameColumns []string
	for _, name := range header {
		if strings.HasPrefix(name, namePrefix) {
			nameColumns = append(nameColumns, name)
		}
	}

	setUUID := rows[1][uuidIdx]
	members := rows[2:]

	outHeader := []string{"Concept", "Member"}
	for _, name := range nameColumns {
		outHeader = append(outHeader, commentPrefix+name)
	}
	outHeader = append(outHeader, "Member Type", "Sort Weight", voidRetireColumn)

	cw := csv.NewWriter(w)
	if err := cw.Write(outHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range members {
		outRow := []string{setUUID, row[uuidIdx]}
		for _, name := range nameColumns {
			outRow = append(outRow, row[col[name]])
		}
		voidRetire := ""
		if idx, ok := col[voidRetireColumn]; ok {
			voidRetire = row[idx]
		}
		outRow = append(outRow, memberType, strconv.Itoa(i+1), voidRetire)
		if err := cw.Write(outRow); err != nil {
			return fmt.Errorf("writing member row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
