// Package core has core logic for loading, comparing and exporting Star Ratings series.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/starsview/core/agg"
	"github.com/huangsam/starsview/core/norm"
	"github.com/huangsam/starsview/core/selection"
	"github.com/huangsam/starsview/core/series"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/internal/outwriter"
	"github.com/huangsam/starsview/internal/parquet"
	"github.com/huangsam/starsview/schema"
)

// ErrUnknownMeasure is returned when the configured measure is not in the catalog.
var ErrUnknownMeasure = errors.New("unknown measure")

// ExecutorFunc defines the function signature for commands that run against a loaded dataset.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, src contract.DataSource) error

// PrepareDataset canonicalizes parent names and derives the parent tables.
// Supplied parent tables are only used when useSupplied is set and the source
// actually carries them. Market tables are kept as loaded.
func PrepareDataset(raw *schema.Dataset, n *norm.Normalizer, useSupplied bool) *schema.Dataset {
	records, totals := n.Records(raw.ContractRecords, raw.ContractYearTotals)
	contract.LogMessage(duplicateRecordsMessage(records))
	ds := &schema.Dataset{
		ContractRecords:    records,
		ContractYearTotals: totals,
		MarketAggregates:   raw.MarketAggregates,
		MarketYearTotals:   raw.MarketYearTotals,
		Metadata:           raw.Metadata,
	}

	if useSupplied && (len(raw.ParentAggregates) > 0 || len(raw.ParentYearTotals) > 0) {
		ds.ParentAggregates = make([]schema.ParentAggregate, len(raw.ParentAggregates))
		for i, r := range raw.ParentAggregates {
			r.ParentOrganization = n.Organization(r.ParentOrganization)
			ds.ParentAggregates[i] = r
		}
		ds.ParentYearTotals = make([]schema.ParentYearTotal, len(raw.ParentYearTotals))
		for i, r := range raw.ParentYearTotals {
			r.ParentOrganization = n.Organization(r.ParentOrganization)
			ds.ParentYearTotals[i] = r
		}
		return ds
	}

	ds.ParentAggregates, ds.ParentYearTotals = agg.Aggregate(records, totals)
	return ds
}

// duplicateRecordsMessage reports contract rows sharing a (contract, year,
// measure) key, or "" when every key is unique.
func duplicateRecordsMessage(records []schema.ContractRecord) string {
	n := agg.DuplicateRecords(records)
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Found %d duplicate contract rows for the same contract, year and measure; the last row wins.", n)
}

// LoadDataset loads the configured window from src and prepares it.
func LoadDataset(ctx context.Context, cfg *contract.Config, src contract.DataSource) (*schema.Dataset, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	raw, err := src.Load(ctx, cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("cannot load data from %s: %w", src.Describe(), err)
	}
	return PrepareDataset(raw, norm.New(cfg.Aliases), cfg.UseSuppliedParents), nil
}

// SessionFromConfig builds the session described by the command line.
// Without explicit selections the start-up defaults apply. Running out of
// capacity is not an error; the session keeps the capacity message.
func SessionFromConfig(ds *schema.Dataset, measures []schema.Measure, cfg *contract.Config) (Session, error) {
	sess := EmptySession(measures).
		WithMetric(cfg.Metric).
		WithScope(cfg.Scope).
		WithSearch(cfg.Search)

	if cfg.MeasureKey != "" {
		if len(measures) > 0 && !hasMeasure(measures, cfg.MeasureKey) {
			return sess, fmt.Errorf("%w: %q", ErrUnknownMeasure, cfg.MeasureKey)
		}
		sess = sess.WithMeasure(cfg.MeasureKey)
	}

	if !cfg.HasExplicitSelection() {
		sess = sess.WithDefaultSelections(ds)
	}

	var err error
	for _, ref := range cfg.Selects {
		sess, err = sess.Add(ref.Scope, ref.EntityKey)
		if err != nil && !errors.Is(err, selection.ErrCapacityExceeded) {
			return sess, err
		}
	}
	for _, name := range cfg.Quick {
		if _, ok := QuickTargets[name]; !ok {
			return sess, fmt.Errorf("%w: %q", ErrUnknownQuickTarget, name)
		}
		if sess.QuickActive(name) {
			continue
		}
		sess, err = sess.ToggleQuick(name)
		if err != nil && !errors.Is(err, selection.ErrCapacityExceeded) {
			return sess, err
		}
	}

	for _, ref := range cfg.Hides {
		if sess.Selections.Contains(ref.ID()) && !sess.Selections.IsHidden(ref.ID()) {
			sess = sess.ToggleHidden(ref.ID())
		}
	}
	return sess, nil
}

func hasMeasure(measures []schema.Measure, key string) bool {
	for _, m := range measures {
		if m.Key == key {
			return true
		}
	}
	return false
}

// buildConfiguredView loads the dataset and derives the view for the configured session.
func buildConfiguredView(ctx context.Context, cfg *contract.Config, src contract.DataSource) (schema.View, error) {
	ds, err := LoadDataset(ctx, cfg, src)
	if err != nil {
		return schema.View{}, err
	}
	measures := series.Measures(ds)
	sess, err := SessionFromConfig(ds, measures, cfg)
	if err != nil {
		return schema.View{}, err
	}
	return BuildView(ds, measures, sess, cfg.Window), nil
}

// ExecuteSeries prints the series view for the configured selections.
// It serves as the main entry point for the 'series' command.
func ExecuteSeries(ctx context.Context, cfg *contract.Config, src contract.DataSource) error {
	start := time.Now()
	view, err := buildConfiguredView(ctx, cfg, src)
	if err != nil {
		return err
	}
	if cfg.Output != schema.TextOut {
		contract.LogMessage(view.Message)
	}
	return outwriter.PrintView(view, cfg, time.Since(start))
}

// ExecuteExport writes the projected rows of the configured view.
// CSV output defaults to the derived export file name and Parquet output to
// the same name with a .parquet extension.
func ExecuteExport(ctx context.Context, cfg *contract.Config, src contract.DataSource) error {
	view, err := buildConfiguredView(ctx, cfg, src)
	if err != nil {
		return err
	}
	contract.LogMessage(view.Message)

	switch cfg.Output {
	case schema.ParquetOut:
		path := cfg.OutputFile
		if path == "" {
			path = strings.TrimSuffix(view.Filename, ".csv") + ".parquet"
		}
		if err := parquet.WriteTableRowsParquet(parquet.ConvertTableRows(view.Rows), path); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d rows to %s\n", len(view.Rows), path)
		return nil
	case schema.CSVOut:
		if cfg.OutputFile == "" {
			exportCfg := cfg.Clone()
			exportCfg.OutputFile = view.Filename
			return outwriter.PrintRows(view.Rows, exportCfg)
		}
	}
	return outwriter.PrintRows(view.Rows, cfg)
}

// ExecuteMeasures prints the measure catalog.
func ExecuteMeasures(ctx context.Context, cfg *contract.Config, src contract.DataSource) error {
	ds, err := LoadDataset(ctx, cfg, src)
	if err != nil {
		return err
	}
	return outwriter.PrintMeasures(series.Measures(ds), cfg)
}

// ExecuteEntities prints the entity options of the configured scope that
// match the search text.
func ExecuteEntities(ctx context.Context, cfg *contract.Config, src contract.DataSource) error {
	start := time.Now()
	ds, err := LoadDataset(ctx, cfg, src)
	if err != nil {
		return err
	}
	measures := series.Measures(ds)
	sess := EmptySession(measures).WithMetric(cfg.Metric).WithScope(cfg.Scope).WithSearch(cfg.Search)
	if cfg.MeasureKey != "" {
		sess = sess.WithMeasure(cfg.MeasureKey)
	}
	return outwriter.PrintEntities(sess.Entities(ds), sess.ActiveScope, cfg, time.Since(start))
}
