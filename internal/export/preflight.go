package export

import (
	"context"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/sync/errgroup"

	"github.com/PIH/iniz-exporters/internal/mysql"
	"github.com/PIH/iniz-exporters/internal/record"
	"github.com/PIH/iniz-exporters/internal/sqlgen"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

// preflightScan is one stop-character check: a statement plus the warning to
// print when it matches anything.
type preflightScan struct {
	name    string
	sql     string
	warning string
}

var preflightScans = []preflightScan{
	{
		name: "reference terms",
		sql:  sqlgen.StopCharacterTermScan,
		warning: "The following concept reference terms contain the Initializer " +
			"stop character ';' (semicolon). This will break things.",
	},
	{
		name: "concept names",
		sql:  sqlgen.StopCharacterNameScan,
		warning: "The following concept's fully specified English names contain " +
			"the Initializer stop character ';' (semicolon). This will break things.",
	},
}

// Preflight scans the database for the ';' stop character in reference term
// codes and fully specified English names. Hits are printed as warnings, not
// errors: the operator decides whether the affected concepts matter for this
// export. The two scans are independent reads and run concurrently.
func Preflight(ctx context.Context, db QueryRunner, out io.Writer) error {
	results := make([][]record.Record, len(preflightScans))
	columns := make([][]string, len(preflightScans))

	g, ctx := errgroup.WithContext(ctx)
	for i, scan := range preflightScans {
		i, scan := i, scan
		g.Go(func() error {
			raw, err := db.Run(ctx, scan.sql)
			if err != nil {
				return err
			}
			records, cols, err := mysql.ParseTabbed(raw)
			if err != nil {
				return err
			}
			results[i] = records
			columns[i] = cols
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, scan := range preflightScans {
		if len(results[i]) == 0 {
			logging.Debug("Preflight", "No stop characters found in %s", scan.name)
			continue
		}
		logging.Warn("Preflight", "%d %s contain the stop character", len(results[i]), scan.name)
		io.WriteString(out, text.FgYellow.Sprint("WARNING: "+scan.warning)+"\n")
		renderWarningTable(out, columns[i], results[i])
	}
	return nil
}

func renderWarningTable(out io.Writer, columns []string, records []record.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, r := range records {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = r[col]
		}
		t.AppendRow(row)
	}
	t.Render()
}
