// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteView prints one series view using the configured output format.
func (ow *OutWriter) WriteView(view schema.View, cfg *contract.Config, duration time.Duration) error {
	return PrintView(view, cfg, duration)
}

// WriteRows prints projected rows using the configured output format.
func (ow *OutWriter) WriteRows(rows []schema.TableRow, cfg *contract.Config) error {
	return PrintRows(rows, cfg)
}

// WriteMeasures prints the measure catalog using the configured output format.
func (ow *OutWriter) WriteMeasures(measures []schema.Measure, cfg *contract.Config) error {
	return PrintMeasures(measures, cfg)
}

// WriteEntities prints entity options using the configured output format.
func (ow *OutWriter) WriteEntities(options []schema.EntityOption, scope schema.Scope, cfg *contract.Config, duration time.Duration) error {
	return PrintEntities(options, scope, cfg, duration)
}

// WriteSnapshotStatus prints snapshot store status to the configured output.
func (ow *OutWriter) WriteSnapshotStatus(status schema.SnapshotStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSnapshotStatus(w, status, cfg)
	}, "Wrote snapshot status")
}

// WriteSnapshotList prints snapshot metadata to the configured output.
func (ow *OutWriter) WriteSnapshotList(records []schema.SnapshotRecord, cfg *contract.Config) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSnapshotList(w, records, cfg)
	}, fmt.Sprintf("Wrote %d snapshots", len(records))); err != nil {
		return fmt.Errorf("error writing snapshot list: %w", err)
	}
	return nil
}
