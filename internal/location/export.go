// Package location exports the locations domain: one row per location with
// its parent reference, and tags and attributes spread into per-value
// columns the Initializer understands.
package location

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/PIH/iniz-exporters/internal/csvout"
	"github.com/PIH/iniz-exporters/internal/dependency"
	"github.com/PIH/iniz-exporters/internal/mysql"
	"github.com/PIH/iniz-exporters/internal/record"
	"github.com/PIH/iniz-exporters/internal/sqlgen"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

// Column names in the locations query result.
const (
	ColumnName       = "Name"
	ColumnParent     = "Parent"
	ColumnTags       = "Tags"
	ColumnAttributes = "Attributes"

	// TagPrefix and AttributePrefix mark the spread columns.
	TagPrefix       = "Tag|"
	AttributePrefix = "Attribute|"
)

// baseColumns lead the output file, before the sorted attribute and tag
// columns.
var baseColumns = []string{"UUID", "Void/Retire", ColumnName, "Description", ColumnParent}

// QueryRunner is the database boundary; *mysql.Session satisfies it.
type QueryRunner interface {
	Run(ctx context.Context, sql string) (string, error)
}

// Options configures one locations export run.
type Options struct {
	// Outfile is the CSV path to write.
	Outfile string
	// Quiet suppresses the progress spinner.
	Quiet bool
}

// Export queries all locations and writes them as a CSV, parents ordered
// before their children so the Initializer can resolve the Parent column
// against rows it has already loaded.
func Export(ctx context.Context, db QueryRunner, opts Options) error {
	var s *spinner.Spinner
	if !opts.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Querying locations..."
		s.Start()
	}
	raw, err := db.Run(ctx, sqlgen.Locations)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("querying locations: %w", err)
	}

	logging.Info("Query", "Parsing results...")
	records, _, err := mysql.ParseTabbed(raw)
	if err != nil {
		return err
	}
	logging.Info("Query", "There are %d locations", len(records))
	if len(records) == 0 {
		return fmt.Errorf("the database returned no locations")
	}

	spreadTags(records)
	spreadAttributes(records)

	ordered, err := orderByParent(records)
	if err != nil {
		return err
	}

	normalizeRetired(ordered)
	return csvout.WriteFile(opts.Outfile, Columns(ordered), ordered)
}

// normalizeRetired maps the numeric l.retired flag onto the Void/Retire
// convention the Initializer reads: TRUE retires the row, blank leaves it
// alone. Retired locations stay retired on load.
func normalizeRetired(records []record.Record) {
	for _, r := range records {
		if r[csvout.VoidRetireColumn] == "1" {
			r[csvout.VoidRetireColumn] = "TRUE"
		} else {
			r[csvout.VoidRetireColumn] = ""
		}
	}
}

// spreadTags replaces the comma-concatenated Tags column with one
// "Tag|<name>" column per tag, valued TRUE.
func spreadTags(records []record.Record) {
	for _, r := range records {
		for _, tag := range strings.Split(r[ColumnTags], ",") {
			if tag != "" {
				r[TagPrefix+tag] = "TRUE"
			}
		}
		delete(r, ColumnTags)
	}
}

// spreadAttributes replaces the Attributes column ("type:value" pairs joined
// by commas) with one "Attribute|<type>" column per attribute.
func spreadAttributes(records []record.Record) {
	for _, r := range records {
		for _, attr := range strings.Split(r[ColumnAttributes], ",") {
			if attr == "" {
				continue
			}
			parts := strings.SplitN(attr, ":", 2)
			if len(parts) != 2 {
				logging.Warn("Query", "Skipping malformed attribute %q", attr)
				continue
			}
			r[AttributePrefix+parts[0]] = parts[1]
		}
		delete(r, ColumnAttributes)
	}
}

// orderByParent applies the dependency orderer to the parent relation by
// writing each location's Parent into the referent column the orderer reads,
// then stripping it again. Locations with no parent are roots.
func orderByParent(records []record.Record) ([]record.Record, error) {
	for _, r := range records {
		r[record.FieldMembers] = r[ColumnParent]
	}
	ordered, err := dependency.Order(records, ColumnName)
	for _, r := range records {
		delete(r, record.FieldMembers)
	}
	if err != nil {
		return nil, fmt.Errorf("ordering locations by parent: %w", err)
	}
	return ordered, nil
}

// Columns derives the output column order: the fixed base columns, then
// attribute columns, then tag columns, both sorted for a stable layout
// across exports.
func Columns(records []record.Record) []string {
	tags := map[string]bool{}
	attributes := map[string]bool{}
	for _, r := range records {
		for col := range r {
			switch {
			case strings.HasPrefix(col, TagPrefix):
				tags[col] = true
			case strings.HasPrefix(col, AttributePrefix):
				attributes[col] = true
			}
		}
	}
	columns := append([]string{}, baseColumns...)
	columns = append(columns, sortedKeys(attributes)...)
	columns = append(columns, sortedKeys(tags)...)
	return columns
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
