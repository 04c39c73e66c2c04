package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
)

// RowsHeader is the column order of exported rows.
var RowsHeader = []string{"year", "scope", "entity", "metric", "value", "members_or_lives", "contracts", "codes"}

// SerializeRows renders rows as CSV text with a header line. Lines are joined
// with "\n" and there is no trailing newline. Fields containing a comma,
// quote or newline are quoted with inner quotes doubled.
func SerializeRows(rows []schema.TableRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCSVFields(RowsHeader))
	for _, r := range rows {
		lines = append(lines, joinCSVFields(rowRecord(r)))
	}
	return strings.Join(lines, "\n")
}

// escapeCSVField quotes s only when it contains a comma, quote or newline.
func escapeCSVField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinCSVFields(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escapeCSVField(f)
	}
	return strings.Join(escaped, ",")
}

// rowRecord converts a row to CSV fields. Numbers use the shortest
// representation that round-trips and absent numbers are empty.
func rowRecord(r schema.TableRow) []string {
	return []string{
		strconv.Itoa(r.Year),
		r.Scope,
		r.Entity,
		r.Metric,
		strconv.FormatFloat(r.Value, 'f', -1, 64),
		r.MembersOrLives.String(),
		r.Contracts.String(),
		r.Codes,
	}
}

// writeRowsTable renders rows with the configured precision.
func writeRowsTable(w io.Writer, rows []schema.TableRow, cfg *contract.Config) error {
	fmtValue := createFormatter(cfg.Precision)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			strconv.Itoa(r.Year),
			r.Scope,
			r.Entity,
			fmtValue(schema.Float(r.Value)),
			fmtValue(r.MembersOrLives),
			fmtValue(r.Contracts),
			r.Codes,
		})
	}
	return writeTable(w, []string{"Year", "Scope", "Entity", "Value", "Members/Lives", "Contracts", "Codes"}, data)
}

// WriteRows writes rows to w in the configured output format.
func WriteRows(w io.Writer, rows []schema.TableRow, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if rows == nil {
			rows = []schema.TableRow{}
		}
		return writeJSON(w, rows)
	case schema.CSVOut:
		_, err := io.WriteString(w, SerializeRows(rows))
		return err
	default:
		return writeRowsTable(w, rows, cfg)
	}
}

// PrintRows writes rows to the configured output file or stdout.
func PrintRows(rows []schema.TableRow, cfg *contract.Config) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRows(w, rows, cfg)
	}, fmt.Sprintf("Wrote %d rows", len(rows))); err != nil {
		return fmt.Errorf("error writing rows output: %w", err)
	}
	return nil
}
