package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shardJSON returns a shard with one contract record and one market total for year.
func shardJSON(year int) string {
	return fmt.Sprintf(`{
  "contract_records": [
    {"contract_id": "H%d", "rating_year": %d, "measure_name_canonical_key": "c01",
     "measure_name_canonical": "Screening", "measure_stars": "4", "enrollment_lives": 100,
     "parent_organization": "Aetna Inc.", "measure_code_observed": "C01"}
  ],
  "contract_year_totals": [],
  "all_ma_year_totals": [
    {"rating_year": "%d", "parent_organization": "All MA", "weighted_total_raw_stars_score": 3.9}
  ],
  "metadata": {"generated_at_utc": "%d-01-01T00:00:00Z"}
}`, year, year, year, year)
}

func writeShards(t *testing.T, years ...int) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "years"), 0o755))
	for _, y := range years {
		path := filepath.Join(dir, "years", fmt.Sprintf("%d.json", y))
		require.NoError(t, os.WriteFile(path, []byte(shardJSON(y)), 0o644))
	}
	return dir
}

func TestDirSource_Load(t *testing.T) {
	dir := writeShards(t, 2019, 2020, 2021)
	src := NewDirSource(dir, 2)

	ds, err := src.Load(context.Background(), schema.YearWindow{Min: 2019, Max: 2021})
	require.NoError(t, err)

	require.Len(t, ds.ContractRecords, 3)
	for i, year := range []schema.Year{2019, 2020, 2021} {
		assert.Equal(t, year, ds.ContractRecords[i].RatingYear, "shards merge in ascending year order")
	}
	assert.Equal(t, "Aetna Inc.", ds.ContractRecords[0].ParentOrganization, "loading does not normalize")
	assert.Equal(t, schema.Float(4), ds.ContractRecords[0].MeasureStars)
	require.Len(t, ds.MarketYearTotals, 3)
	assert.Equal(t, schema.Year(2020), ds.MarketYearTotals[1].RatingYear)
	assert.Equal(t, "2021-01-01T00:00:00Z", ds.GeneratedAt())
	assert.Equal(t, dir, src.Describe())
}

func TestDirSource_MissingShard(t *testing.T) {
	dir := writeShards(t, 2019, 2021)

	ds, err := NewDirSource(dir, 4).Load(context.Background(), schema.YearWindow{Min: 2019, Max: 2021})
	require.Error(t, err)
	assert.Nil(t, ds, "no partial dataset")
	assert.ErrorIs(t, err, ErrShardLoad)
	assert.Contains(t, err.Error(), "2020")
}

func TestDirSource_InvalidJSON(t *testing.T) {
	dir := writeShards(t, 2019)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "years", "2019.json"), []byte("{not json"), 0o644))

	_, err := NewDirSource(dir, 1).Load(context.Background(), schema.YearWindow{Min: 2019, Max: 2019})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShardLoad)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDirSource_Cancelled(t *testing.T) {
	dir := writeShards(t, 2019)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirSource(dir, 1).Load(ctx, schema.YearWindow{Min: 2019, Max: 2019})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource_Load(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		var year int
		if _, err := fmt.Sscanf(r.URL.Path, "/years/%d.json", &year); err != nil {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(shardJSON(year)))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/", 3, server.Client())
	ds, err := src.Load(context.Background(), schema.YearWindow{Min: 2017, Max: 2026})
	require.NoError(t, err)
	assert.Equal(t, int32(10), requests.Load())
	require.Len(t, ds.ContractRecords, 10)
	assert.Equal(t, "H2017", ds.ContractRecords[0].ContractID)
	assert.Equal(t, "H2026", ds.ContractRecords[9].ContractID)
	assert.Equal(t, server.URL, src.Describe())
}

func TestHTTPSource_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/2018.json") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, 2, server.Client()).Load(context.Background(), schema.YearWindow{Min: 2017, Max: 2019})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShardLoad)
	assert.Contains(t, err.Error(), "2018")
	assert.Contains(t, err.Error(), "500")
}

func TestBundleSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	bundle := `{
  "contract_records": [
    {"contract_id": "H1", "rating_year": 2016, "measure_name_canonical_key": "c01"},
    {"contract_id": "H2", "rating_year": 2018, "measure_name_canonical_key": "c01"},
    {"contract_id": "H3", "rating_year": "bad", "measure_name_canonical_key": "c01"}
  ],
  "parent_aggregates": [
    {"rating_year": 2027, "parent_organization": "Humana Inc."}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o644))

	ds, err := NewBundleSource(path).Load(context.Background(), schema.YearWindow{Min: 2017, Max: 2026})
	require.NoError(t, err)
	require.Len(t, ds.ContractRecords, 1, "out-of-window and unparseable years are dropped")
	assert.Equal(t, "H2", ds.ContractRecords[0].ContractID)
	assert.Empty(t, ds.ParentAggregates)
	assert.Equal(t, "unknown", ds.GeneratedAt())
}

func TestBundleSource_Missing(t *testing.T) {
	_, err := NewBundleSource(filepath.Join(t.TempDir(), "none.json")).Load(context.Background(), schema.YearWindow{Min: 2017, Max: 2026})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read bundle")
}

func TestNew(t *testing.T) {
	cfg := &contract.Config{Workers: 2}

	tests := []struct {
		name     string
		location string
		check    func(t *testing.T, src contract.DataSource)
	}{
		{
			name:     "http url",
			location: "https://example.org/data",
			check: func(t *testing.T, src contract.DataSource) {
				assert.IsType(t, &ShardSource{}, src)
				assert.Equal(t, "https://example.org/data", src.Describe())
			},
		},
		{
			name:     "bundle file",
			location: "stars.JSON",
			check: func(t *testing.T, src contract.DataSource) {
				assert.IsType(t, &BundleSource{}, src)
			},
		},
		{
			name:     "directory",
			location: "data",
			check: func(t *testing.T, src contract.DataSource) {
				assert.IsType(t, &ShardSource{}, src)
				assert.Equal(t, "data", src.Describe())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, New(tt.location, cfg))
		})
	}
}
