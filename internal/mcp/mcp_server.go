// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var (
	metricEnum = mcp.Enum("raw_measure_data", "measure_stars", "star_weight", "calculated_raw_stars_score", "total_raw_stars_score")
	scopeEnum  = mcp.Enum("contract", "parent", "all_ma")
)

// NewMCPServer initializes and configures the starsview MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, src contract.DataSource) *server.MCPServer {
	s := server.NewMCPServer(
		"Starsview Series Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		src:     src,
	}

	// --- 1. Tool: list_measures ---
	s.AddTool(mcp.NewTool("list_measures",
		mcp.WithDescription("List the Star Ratings measures available in the loaded data, sorted by name."),
	), h.handleListMeasures)

	// --- 2. Tool: list_entities ---
	s.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("List selectable contracts, parent organizations or the market for a metric and measure."),
		mcp.WithString("scope", mcp.Description("Entity scope. Defaults to 'contract'."), scopeEnum),
		mcp.WithString("metric", mcp.Description("Compared metric. Defaults to the configured metric."), metricEnum),
		mcp.WithString("measure", mcp.Description("Measure key. Defaults to the first measure in the catalog.")),
		mcp.WithString("search", mcp.Description("Case-insensitive substring filter on entity labels.")),
	), h.handleListEntities)

	// --- 3. Tool: get_series ---
	s.AddTool(mcp.NewTool("get_series",
		mcp.WithDescription("Compare a metric across up to 8 series over the year window. Returns dense series, scale and rows."),
		mcp.WithString("metric", mcp.Description("Compared metric."), metricEnum),
		mcp.WithString("measure", mcp.Description("Measure key for measure-scoped metrics.")),
		mcp.WithString("select", mcp.Description("Comma-separated scope:entity series, e.g. 'parent:Humana Inc.,contract:H1234'.")),
		mcp.WithString("quick", mcp.Description("Comma-separated quick targets (humana, cvs, unh, all_ma).")),
		mcp.WithString("hide", mcp.Description("Comma-separated scope:entity series to hide.")),
	), h.handleGetSeries)

	// --- 4. Tool: get_scale ---
	s.AddTool(mcp.NewTool("get_scale",
		mcp.WithDescription("Return the y-axis domain and ticks for the visible series of a comparison."),
		mcp.WithString("metric", mcp.Description("Compared metric."), metricEnum),
		mcp.WithString("measure", mcp.Description("Measure key for measure-scoped metrics.")),
		mcp.WithString("select", mcp.Description("Comma-separated scope:entity series.")),
		mcp.WithString("quick", mcp.Description("Comma-separated quick targets.")),
		mcp.WithString("hide", mcp.Description("Comma-separated scope:entity series to hide.")),
	), h.handleGetScale)

	// --- 5. Tool: export_rows ---
	s.AddTool(mcp.NewTool("export_rows",
		mcp.WithDescription("Export the visible rows of a comparison as CSV."),
		mcp.WithString("metric", mcp.Description("Compared metric."), metricEnum),
		mcp.WithString("measure", mcp.Description("Measure key for measure-scoped metrics.")),
		mcp.WithString("select", mcp.Description("Comma-separated scope:entity series.")),
		mcp.WithString("quick", mcp.Description("Comma-separated quick targets.")),
		mcp.WithString("hide", mcp.Description("Comma-separated scope:entity series to hide.")),
	), h.handleExportRows)

	return s
}

// StartMCPServer starts the starsview MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, src contract.DataSource) error {
	s := NewMCPServer(baseCfg, src)
	return server.ServeStdio(s)
}
