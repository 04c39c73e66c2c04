//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noSnapshots = []string{"STARSVIEW_SNAPSHOT_BACKEND=none"}

func windowArgs(bundle string, args ...string) []string {
	return append(args, "--data", bundle, "--year-min", "2020", "--year-max", "2021")
}

// TestSeriesJSON runs the series command against a bundle and checks the view rows.
func TestSeriesJSON(t *testing.T) {
	bundle := writeBundle(t)
	outFile := filepath.Join(t.TempDir(), "series.json")

	_, err := runStarsview(t, noSnapshots, windowArgs(bundle,
		"series", "--metric", "measure_stars", "--select", "parent:Humana Inc.",
		"--output", "json", "--output-file", outFile)...)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, string(data), "Humana Inc.")
}

// TestExportCSV checks that aliases fold Aetna into CVS in exported rows.
func TestExportCSV(t *testing.T) {
	bundle := writeBundle(t)
	outFile := filepath.Join(t.TempDir(), "rows.csv")

	_, err := runStarsview(t, noSnapshots, windowArgs(bundle,
		"export", "--metric", "raw_measure_data", "--select", "parent:CVS Health Corporation",
		"--output", "csv", "--output-file", outFile)...)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, "year,scope,entity,metric,value,members_or_lives,contracts,codes", lines[0])
	assert.Contains(t, string(data), "CVS Health Corporation")
	assert.NotContains(t, string(data), "Aetna Inc.")
}

// TestMeasuresCSV lists the measure catalog.
func TestMeasuresCSV(t *testing.T) {
	bundle := writeBundle(t)

	out, err := runStarsview(t, noSnapshots, windowArgs(bundle, "measures", "--output", "csv")...)
	require.NoError(t, err)
	assert.Contains(t, out, "breast_cancer_screening")
}

// TestUnknownQuickTarget fails fast on an unknown quick target.
func TestUnknownQuickTarget(t *testing.T) {
	bundle := writeBundle(t)

	_, err := runStarsview(t, noSnapshots, windowArgs(bundle, "series", "--quick", "nobody")...)
	assert.Error(t, err)
}
