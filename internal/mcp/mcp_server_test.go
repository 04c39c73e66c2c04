package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/huangsam/starsview/internal/contract"
	mcp_internal "github.com/huangsam/starsview/internal/mcp"
	"github.com/huangsam/starsview/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySource serves a fixed dataset and counts loads.
type memorySource struct {
	loads atomic.Int32
	err   error
}

func (m *memorySource) Load(_ context.Context, _ schema.YearWindow) (*schema.Dataset, error) {
	m.loads.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Dataset{
		ContractRecords: []schema.ContractRecord{
			{ContractID: "H1001", RatingYear: 2021, MeasureKey: "c01", MeasureName: "Breast Cancer Screening", MeasureStars: schema.Float(4), EnrollmentLives: schema.Float(100), ParentOrganization: "Humana Inc."},
			{ContractID: "H2002", RatingYear: 2021, MeasureKey: "c01", MeasureName: "Breast Cancer Screening", MeasureStars: schema.Float(3), EnrollmentLives: schema.Float(100), ParentOrganization: "UnitedHealth Group, Inc."},
			{ContractID: "H2002", RatingYear: 2021, MeasureKey: "c02", MeasureName: "Colorectal Cancer Screening", MeasureStars: schema.Float(2), EnrollmentLives: schema.Float(100), ParentOrganization: "UnitedHealth Group, Inc."},
		},
	}, nil
}

func (m *memorySource) Describe() string { return "memory" }

func newServer(src contract.DataSource) *server.MCPServer {
	return mcp_internal.NewMCPServer(&contract.Config{
		Window: schema.YearWindow{Min: 2020, Max: 2021},
		Metric: schema.RawMeasureData,
		Scope:  schema.ContractScope,
	}, src)
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServer_ListTools(t *testing.T) {
	s := newServer(&memorySource{})
	for _, name := range []string{"list_measures", "list_entities", "get_series", "get_scale", "export_rows"} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestMCPServer_ListMeasures(t *testing.T) {
	src := &memorySource{}
	s := newServer(src)

	res := call(t, s, "list_measures", nil)
	require.False(t, res.IsError)
	var measures []schema.Measure
	require.NoError(t, json.Unmarshal([]byte(text(res)), &measures))
	assert.Equal(t, []schema.Measure{
		{Key: "c01", Name: "Breast Cancer Screening"},
		{Key: "c02", Name: "Colorectal Cancer Screening"},
	}, measures)

	call(t, s, "list_measures", nil)
	assert.Equal(t, int32(1), src.loads.Load(), "dataset is loaded once")
}

func TestMCPServer_ListEntities(t *testing.T) {
	s := newServer(&memorySource{})

	res := call(t, s, "list_entities", map[string]any{"scope": "parent", "measure": "c01", "search": "united"})
	require.False(t, res.IsError)
	var options []schema.EntityOption
	require.NoError(t, json.Unmarshal([]byte(text(res)), &options))
	assert.Equal(t, []schema.EntityOption{{Value: "UnitedHealth Group, Inc.", Label: "UnitedHealth Group, Inc."}}, options)

	res = call(t, s, "list_entities", map[string]any{"scope": "galaxy"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "invalid parameters")
}

func TestMCPServer_GetSeries(t *testing.T) {
	s := newServer(&memorySource{})

	res := call(t, s, "get_series", map[string]any{
		"metric":  "measure_stars",
		"measure": "c01",
		"select":  "parent:UnitedHealth Group, Inc.,contract:H1001",
		"hide":    "contract:H1001",
	})
	require.False(t, res.IsError, text(res))

	var view struct {
		Title  string `json:"title"`
		Series []struct {
			ID     string `json:"id"`
			Points []struct {
				Year  int      `json:"year"`
				Value *float64 `json:"value"`
			} `json:"points"`
		} `json:"series"`
		Scale schema.Scale `json:"scale"`
		Rows  []struct {
			Entity string  `json:"entity"`
			Value  float64 `json:"value"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &view))
	assert.Equal(t, "Measure Stars | Breast Cancer Screening", view.Title)
	require.Len(t, view.Series, 2)
	assert.Equal(t, "parent:UnitedHealth Group, Inc.", view.Series[0].ID)
	require.Len(t, view.Series[0].Points, 2)
	assert.Nil(t, view.Series[0].Points[0].Value, "2020 is a gap")
	require.NotNil(t, view.Series[0].Points[1].Value)
	assert.Equal(t, 3.0, *view.Series[0].Points[1].Value)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, view.Scale.Ticks)
	require.Len(t, view.Rows, 1, "hidden series produce no rows")
	assert.Equal(t, "UnitedHealth Group, Inc.", view.Rows[0].Entity)
}

func TestMCPServer_GetScaleAndExport(t *testing.T) {
	s := newServer(&memorySource{})
	args := map[string]any{"measure": "c01", "quick": "humana, unh"}

	res := call(t, s, "get_scale", args)
	require.False(t, res.IsError)
	var scale schema.Scale
	require.NoError(t, json.Unmarshal([]byte(text(res)), &scale))
	assert.Equal(t, schema.Scale{Min: 0, Max: 1, Ticks: []float64{0, 0.25, 0.5, 0.75, 1}}, scale, "raw data is absent")

	res = call(t, s, "export_rows", map[string]any{"metric": "measure_stars", "measure": "c01", "quick": "humana,unh"})
	require.False(t, res.IsError)
	lines := strings.Split(text(res), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "year,scope,entity,metric,value,members_or_lives,contracts,codes", lines[0])
	assert.Equal(t, "2021,Parent,Humana Inc.,Measure Stars,4,100,1,", lines[1])
	assert.Equal(t, `2021,Parent,"UnitedHealth Group, Inc.",Measure Stars,3,100,1,`, lines[2])
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newServer(&memorySource{})

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"bad metric", "get_series", map[string]any{"metric": "vibes"}, "invalid parameters"},
		{"bad select", "get_series", map[string]any{"select": "H1001"}, "invalid select"},
		{"unknown measure", "get_scale", map[string]any{"measure": "c99"}, "unknown measure"},
		{"unknown quick", "export_rows", map[string]any{"quick": "acme"}, "unknown quick target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.want)
		})
	}
}

func TestMCPServer_LoadFailure(t *testing.T) {
	src := &memorySource{err: errors.New("offline")}
	s := newServer(src)

	res := call(t, s, "list_measures", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "offline")

	call(t, s, "get_series", nil)
	assert.Equal(t, int32(2), src.loads.Load(), "failed loads are retried")
}
