package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
)

// PrintView outputs one render pass, dispatching based on the output format configured.
func PrintView(view schema.View, cfg *contract.Config, duration time.Duration) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteView(w, view, cfg, duration)
	}, "Wrote series view"); err != nil {
		return fmt.Errorf("error writing series output: %w", err)
	}
	return nil
}

// WriteView writes one render pass to w in the configured output format.
// CSV output is the exported rows only.
func WriteView(w io.Writer, view schema.View, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, view)
	case schema.CSVOut:
		_, err := io.WriteString(w, SerializeRows(view.Rows))
		return err
	default:
		return writeViewText(w, view, cfg, duration)
	}
}

// writeViewText prints the title, the series table, the scale and the rows.
func writeViewText(w io.Writer, view schema.View, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "%s\n", view.Title); err != nil {
		return err
	}
	if err := writeSeriesTable(w, view, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scale: %s\n", formatScale(view.Scale, cfg.Precision)); err != nil {
		return err
	}
	if len(view.Rows) > 0 {
		if err := writeRowsTable(w, view.Rows, cfg); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s\n", view.Meta); err != nil {
		return err
	}
	if view.Message != "" {
		msg := view.Message
		if cfg.UseColors {
			msg = contract.WarnColor.Sprint(msg)
		}
		if _, err := fmt.Fprintf(w, "%s\n", msg); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Series view completed in %v with %d workers. Export file: %s\n", duration, cfg.Workers, view.Filename)
	return err
}

// writeSeriesTable prints one row per selected series and one column per year.
// Hidden series stay listed so they can be toggled back on.
func writeSeriesTable(w io.Writer, view schema.View, cfg *contract.Config) error {
	var years []int
	if len(view.Series) > 0 {
		for _, p := range view.Series[0].Points {
			years = append(years, p.Year)
		}
	}

	visible := make(map[string]struct{}, len(view.Visible))
	for _, s := range view.Visible {
		visible[s.ID] = struct{}{}
	}

	header := []string{"Scope", "Series", "Color"}
	for _, y := range years {
		header = append(header, strconv.Itoa(y))
	}

	fmtValue := createFormatter(cfg.Precision)
	labelWidth := GetMaxTableLabelWidth(cfg, len(years))
	data := make([][]string, 0, len(view.Series))
	for _, s := range view.Series {
		label := contract.TruncateLabel(s.Label, labelWidth)
		if _, ok := visible[s.ID]; !ok {
			label += " (hidden)"
		}
		row := []string{scopeTag(s.Scope, cfg), label, s.Color}
		for _, p := range s.Points {
			row = append(row, fmtValue(p.Value))
		}
		data = append(data, row)
	}
	return writeTable(w, header, data)
}

// formatScale renders the domain and ticks of a scale.
func formatScale(scale schema.Scale, precision int) string {
	fmtValue := createFormatter(precision)
	ticks := make([]string, len(scale.Ticks))
	for i, t := range scale.Ticks {
		ticks[i] = fmtValue(schema.Float(t))
	}
	return fmt.Sprintf("[%s, %s] ticks: %s",
		fmtValue(schema.Float(scale.Min)), fmtValue(schema.Float(scale.Max)), strings.Join(ticks, " "))
}
