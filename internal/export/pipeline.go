// Package export orchestrates the concepts export pipeline: preflight scan,
// query, parse, optional subtree narrowing, cycle check, dependency
// ordering, optional exclusion, CSV write. Any fatal error aborts the run
// before the output file is touched.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"

	"github.com/PIH/iniz-exporters/internal/csvout"
	"github.com/PIH/iniz-exporters/internal/dependency"
	"github.com/PIH/iniz-exporters/internal/mysql"
	"github.com/PIH/iniz-exporters/internal/record"
	"github.com/PIH/iniz-exporters/internal/sqlgen"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

// QueryRunner is the database boundary. *mysql.Session satisfies it; tests
// substitute a canned implementation.
type QueryRunner interface {
	Run(ctx context.Context, sql string) (string, error)
}

// Options configures one concepts export run.
type Options struct {
	// Locales and NameTypes select the name columns to export.
	Locales   []string
	NameTypes []string
	// Key is the column that uniquely identifies a concept and that the
	// Members/Answers columns refer to. Either the en fully specified
	// name or the uuid column.
	Key string
	// SetName narrows the export to the subtree reachable from this
	// concept, when non-empty.
	SetName string
	// ExcludeSets removes the subtree reachable from each named concept
	// from the final output.
	ExcludeSets []string
	// ExcludeKeys removes individual concepts by key.
	ExcludeKeys []string
	// Where is an extra SQL predicate ANDed onto the concept filter.
	Where string
	// Outfile is the CSV path to write.
	Outfile string
	// Limit caps the query row count. Debugging aid.
	Limit int
	// Quiet suppresses the progress spinner.
	Quiet bool
	// DumpRaw saves the raw query output to a temp file for inspection.
	DumpRaw bool
}

// Pipeline runs concepts exports against one database session.
type Pipeline struct {
	db   QueryRunner
	opts Options
}

// New builds a pipeline. Options are fixed for the pipeline's lifetime.
func New(db QueryRunner, opts Options) *Pipeline {
	if opts.Key == "" {
		opts.Key = record.KeyFullySpecifiedNameEN
	}
	return &Pipeline{db: db, opts: opts}
}

// Run executes the full export. On success the ordered CSV exists at
// opts.Outfile; on any error no file is written.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := Preflight(ctx, p.db, os.Stderr); err != nil {
		return fmt.Errorf("preflight scan: %w", err)
	}

	records, columns, err := p.queryConcepts(ctx)
	if err != nil {
		return err
	}
	logging.Info("Query", "There are %d total concepts", len(records))
	if len(records) == 0 {
		return fmt.Errorf("the database returned no concepts")
	}
	if err := p.checkKeyColumn(columns); err != nil {
		return err
	}

	if p.opts.SetName != "" {
		records, err = dependency.ReachableFrom(records, p.opts.SetName, p.opts.Key)
		if err != nil {
			return fmt.Errorf("extracting subtree of %q: %w", p.opts.SetName, err)
		}
		logging.Info("Subtree", "%d concepts reachable from %q", len(records), p.opts.SetName)
	}

	cycles, err := dependency.DetectCycles(records, p.opts.Key)
	if err != nil {
		return err
	}
	if len(cycles) > 0 {
		return &dependency.CycleError{Cycles: cycles}
	}

	logging.Info("Order", "Reordering...")
	ordered, err := dependency.Order(records, p.opts.Key)
	if err != nil {
		return err
	}

	excluded, err := p.excludedKeys(records)
	if err != nil {
		return err
	}
	if len(excluded) > 0 {
		before := len(ordered)
		ordered = dependency.Exclude(ordered, excluded, p.opts.Key)
		logging.Info("Exclude", "Excluded %d of %d concepts", before-len(ordered), before)
	}

	return csvout.WriteFile(p.opts.Outfile, columns, ordered)
}

// queryConcepts renders the export statement, runs it with a progress
// spinner, and parses the result into records.
func (p *Pipeline) queryConcepts(ctx context.Context) ([]record.Record, []string, error) {
	sql, err := sqlgen.Concepts(sqlgen.ConceptQuery{
		Locales:   p.opts.Locales,
		NameTypes: p.opts.NameTypes,
		Key:       p.opts.Key,
		Where:     p.opts.Where,
		Limit:     p.opts.Limit,
	})
	if err != nil {
		return nil, nil, err
	}
	logging.Debug("Query", "Concepts statement:\n%s", sql)

	var s *spinner.Spinner
	if !p.opts.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Querying concepts..."
		s.Start()
	}
	raw, err := p.db.Run(ctx, sql)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying concepts: %w", err)
	}

	if p.opts.DumpRaw {
		p.dumpRaw(raw)
	}

	logging.Info("Query", "Parsing results...")
	return mysql.ParseTabbed(raw)
}

// dumpRaw spools the raw tab-separated query output to a uniquely named temp
// file so a surprising export can be inspected after the fact.
func (p *Pipeline) dumpRaw(raw string) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("inizexport-%s.tsv", uuid.NewString()))
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		logging.Warn("Query", "Could not spool raw output: %v", err)
		return
	}
	logging.Info("Query", "Raw query output spooled to %s", path)
}

// checkKeyColumn verifies the configured key column came back from the
// query; a key selector that names a missing column would otherwise surface
// as confusing empty-key errors downstream.
func (p *Pipeline) checkKeyColumn(columns []string) error {
	for _, col := range columns {
		if col == p.opts.Key {
			return nil
		}
	}
	return fmt.Errorf("key column %q not present in query result", p.opts.Key)
}

// excludedKeys expands the exclusion options into a flat key set: each
// exclude-set contributes its whole reachable subtree, computed against the
// same collection that was ordered.
func (p *Pipeline) excludedKeys(records []record.Record) ([]string, error) {
	keys := append([]string{}, p.opts.ExcludeKeys...)
	for _, setName := range p.opts.ExcludeSets {
		subtree, err := dependency.ReachableFrom(records, setName, p.opts.Key)
		if err != nil {
			return nil, fmt.Errorf("resolving exclude-set %q: %w", setName, err)
		}
		keys = append(keys, record.Keys(subtree, p.opts.Key)...)
	}
	return keys, nil
}
