package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
)

// PrintMeasures outputs the measure catalog.
func PrintMeasures(measures []schema.Measure, cfg *contract.Config) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMeasures(w, measures, cfg)
	}, "Wrote measure catalog"); err != nil {
		return fmt.Errorf("error writing measures output: %w", err)
	}
	return nil
}

// WriteMeasures writes the measure catalog to w in the configured output format.
func WriteMeasures(w io.Writer, measures []schema.Measure, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if measures == nil {
			measures = []schema.Measure{}
		}
		return writeJSON(w, measures)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"key", "name"}, func(cw *csv.Writer) error {
			for _, m := range measures {
				if err := cw.Write([]string{m.Key, m.Name}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		data := make([][]string, 0, len(measures))
		for i, m := range measures {
			data = append(data, []string{strconv.Itoa(i + 1), m.Key, m.Name})
		}
		if err := writeTable(w, []string{"#", "Key", "Name"}, data); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%d measures available.\n", len(measures))
		return err
	}
}

// PrintEntities outputs the entity options of one scope.
func PrintEntities(options []schema.EntityOption, scope schema.Scope, cfg *contract.Config, duration time.Duration) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteEntities(w, options, scope, cfg, duration)
	}, "Wrote entity options"); err != nil {
		return fmt.Errorf("error writing entities output: %w", err)
	}
	return nil
}

// WriteEntities writes entity options to w in the configured output format.
func WriteEntities(w io.Writer, options []schema.EntityOption, scope schema.Scope, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if options == nil {
			options = []schema.EntityOption{}
		}
		return writeJSON(w, options)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"scope", "value", "label"}, func(cw *csv.Writer) error {
			for _, o := range options {
				if err := cw.Write([]string{string(scope), o.Value, o.Label}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		data := make([][]string, 0, len(options))
		for _, o := range options {
			data = append(data, []string{scopeTag(scope, cfg), o.Value, o.Label})
		}
		if err := writeTable(w, []string{"Scope", "Value", "Label"}, data); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Found %d %s options in %v.\n", len(options), scope.Title(), duration)
		return err
	}
}
