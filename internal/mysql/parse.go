package mysql

import (
	"strings"

	"github.com/PIH/iniz-exporters/internal/record"
)

// ParseTabbed converts the mysql CLI's batch output into records. Batch mode
// emits a header line and one tab-separated line per row, with tabs,
// newlines, and backslashes inside values escaped as \t, \n, and \\, and SQL
// NULL printed as the literal word NULL. Column order is returned alongside
// the records so the CSV writer can reproduce it.
//
// Empty output (a statement that matched no rows prints nothing at all)
// yields no records and no columns.
func ParseTabbed(out string) ([]record.Record, []string, error) {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil, nil, nil
	}

	lines := strings.Split(out, "\n")
	columns := splitFields(lines[0])

	records := make([]record.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line)
		r := make(record.Record, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				r[col] = fields[i]
			} else {
				r[col] = ""
			}
		}
		records = append(records, r)
	}
	return records, columns, nil
}

// splitFields splits one batch-mode line on raw tabs and unescapes each
// value. NULL becomes the empty string; the Initializer treats blank and
// absent identically.
func splitFields(line string) []string {
	raw := strings.Split(line, "\t")
	fields := make([]string, len(raw))
	for i, f := range raw {
		if f == "NULL" {
			fields[i] = ""
			continue
		}
		fields[i] = unescape(f)
	}
	return fields
}

// unescape reverses mysql batch-mode escaping. A backslash escapes the next
// character: n, t, and 0 map to newline, tab, and NUL; anything else is kept
// literally.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '0':
			sb.WriteByte(0)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
