// Package loader fetches Star Ratings data and merges it into one dataset.
// Data is either split into one JSON shard per rating year, served from a
// directory or an HTTP base URL, or kept in a single bundle file.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
	"golang.org/x/sync/errgroup"
)

// ErrShardLoad marks a year shard that could not be fetched or parsed.
var ErrShardLoad = errors.New("failed to load data shard")

// fetchFunc returns the raw bytes of the shard for one year.
type fetchFunc func(ctx context.Context, year int) ([]byte, error)

// ShardSource loads one JSON shard per year of the window concurrently.
type ShardSource struct {
	location string
	workers  int
	fetch    fetchFunc
}

// NewDirSource reads shards from <dir>/years/<year>.json.
func NewDirSource(dir string, workers int) *ShardSource {
	return &ShardSource{
		location: dir,
		workers:  workers,
		fetch: func(ctx context.Context, year int) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return os.ReadFile(filepath.Join(dir, "years", fmt.Sprintf("%d.json", year)))
		},
	}
}

// NewHTTPSource fetches shards from <baseURL>/years/<year>.json.
func NewHTTPSource(baseURL string, workers int, client *http.Client) *ShardSource {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &ShardSource{
		location: baseURL,
		workers:  workers,
		fetch: func(ctx context.Context, year int) ([]byte, error) {
			url := fmt.Sprintf("%s/years/%d.json", baseURL, year)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Cache-Control", "no-cache")
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
			return io.ReadAll(resp.Body)
		},
	}
}

// Describe returns the shard location.
func (s *ShardSource) Describe() string {
	return s.location
}

// Load fetches every shard of the window and merges them in ascending year
// order. Any failure aborts the load; a partial dataset is never returned.
func (s *ShardSource) Load(ctx context.Context, window schema.YearWindow) (*schema.Dataset, error) {
	years := window.Years()
	shards := make([]schema.Dataset, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))
	for i, year := range years {
		g.Go(func() error {
			data, err := s.fetch(gctx, year)
			if err != nil {
				return fmt.Errorf("%w for %d: %w", ErrShardLoad, year, err)
			}
			if err := json.Unmarshal(data, &shards[i]); err != nil {
				return fmt.Errorf("%w for %d: invalid JSON: %w", ErrShardLoad, year, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &schema.Dataset{}
	for _, shard := range shards {
		ds.Append(shard)
	}
	return clipWindow(ds, window), nil
}

// BundleSource reads every collection from a single JSON file.
type BundleSource struct {
	path string
}

// NewBundleSource returns a source for a bundle file.
func NewBundleSource(path string) *BundleSource {
	return &BundleSource{path: path}
}

// Describe returns the bundle path.
func (b *BundleSource) Describe() string {
	return b.path
}

// Load parses the bundle and drops rows outside the window.
func (b *BundleSource) Load(ctx context.Context, window schema.YearWindow) (*schema.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	ds := &schema.Dataset{}
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return clipWindow(ds, window), nil
}

// New picks a source for location: http(s) URLs are shard servers, files
// ending in .json are bundles and anything else is a shard directory.
func New(location string, cfg *contract.Config) contract.DataSource {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = contract.DefaultTimeout
		}
		return NewHTTPSource(location, cfg.Workers, &http.Client{Timeout: timeout})
	case strings.EqualFold(filepath.Ext(location), ".json"):
		return NewBundleSource(location)
	default:
		return NewDirSource(location, cfg.Workers)
	}
}

// clipWindow drops every row whose rating year falls outside window.
func clipWindow(ds *schema.Dataset, window schema.YearWindow) *schema.Dataset {
	ds.ContractRecords = keepYears(ds.ContractRecords, window, func(r schema.ContractRecord) schema.Year { return r.RatingYear })
	ds.ContractYearTotals = keepYears(ds.ContractYearTotals, window, func(r schema.ContractYearTotal) schema.Year { return r.RatingYear })
	ds.ParentAggregates = keepYears(ds.ParentAggregates, window, aggregateYear)
	ds.ParentYearTotals = keepYears(ds.ParentYearTotals, window, yearTotalYear)
	ds.MarketAggregates = keepYears(ds.MarketAggregates, window, aggregateYear)
	ds.MarketYearTotals = keepYears(ds.MarketYearTotals, window, yearTotalYear)
	return ds
}

func aggregateYear(r schema.ParentAggregate) schema.Year { return r.RatingYear }

func yearTotalYear(r schema.ParentYearTotal) schema.Year { return r.RatingYear }

func keepYears[T any](rows []T, window schema.YearWindow, year func(T) schema.Year) []T {
	out := rows[:0]
	for _, r := range rows {
		if window.Contains(year(r)) {
			out = append(out, r)
		}
	}
	return out
}
