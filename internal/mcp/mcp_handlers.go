package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/huangsam/starsview/core"
	"github.com/huangsam/starsview/core/series"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/internal/outwriter"
	"github.com/huangsam/starsview/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	src     contract.DataSource

	mu sync.Mutex
	ds *schema.Dataset // loaded on first successful call
}

// dataset loads and prepares the dataset once. Failed loads are retried on
// the next call.
func (h *toolHandler) dataset(ctx context.Context) (*schema.Dataset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ds != nil {
		return h.ds, nil
	}
	ds, err := core.LoadDataset(ctx, h.baseCfg, h.src)
	if err != nil {
		return nil, err
	}
	h.ds = ds
	return ds, nil
}

// requestConfig overlays the tool arguments on the base config.
func requestConfig(base *contract.Config, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := base.Clone()
	if m := request.GetString("metric", ""); m != "" {
		metric, err := schema.ParseMetric(m)
		if err != nil {
			return nil, err
		}
		cfg.Metric = metric
	}
	if s := request.GetString("scope", ""); s != "" {
		scope, err := schema.ParseScope(s)
		if err != nil {
			return nil, err
		}
		cfg.Scope = scope
	}
	if m := request.GetString("measure", ""); m != "" {
		cfg.MeasureKey = strings.TrimSpace(m)
	}
	cfg.Search = request.GetString("search", cfg.Search)

	if raw := request.GetString("select", ""); raw != "" {
		refs, err := parseRefs(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid select: %w", err)
		}
		cfg.Selects = refs
	}
	if raw := request.GetString("hide", ""); raw != "" {
		refs, err := parseRefs(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid hide: %w", err)
		}
		cfg.Hides = refs
	}
	if raw := request.GetString("quick", ""); raw != "" {
		cfg.Quick = nil
		for q := range strings.SplitSeq(raw, ",") {
			if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
				cfg.Quick = append(cfg.Quick, q)
			}
		}
	}
	return cfg, nil
}

// parseRefs splits on commas that start a new scope:entity pair, so entity
// names such as "UnitedHealth Group, Inc." survive.
func parseRefs(raw string) ([]contract.SeriesRef, error) {
	var refs []contract.SeriesRef
	var current string
	for part := range strings.SplitSeq(raw, ",") {
		if current != "" && !startsRef(part) {
			current += "," + part
			continue
		}
		if current != "" {
			ref, err := contract.ParseSeriesRef(current)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		current = part
	}
	if strings.TrimSpace(current) != "" {
		ref, err := contract.ParseSeriesRef(current)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func startsRef(part string) bool {
	scope, _, found := strings.Cut(strings.TrimSpace(part), ":")
	if !found {
		_, err := schema.ParseScope(part)
		return err == nil
	}
	_, err := schema.ParseScope(scope)
	return err == nil
}

// view builds the comparison described by the request.
func (h *toolHandler) view(ctx context.Context, request mcp.CallToolRequest) (schema.View, *mcp.CallToolResult) {
	cfg, err := requestConfig(h.baseCfg, request)
	if err != nil {
		return schema.View{}, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}
	ds, err := h.dataset(ctx)
	if err != nil {
		return schema.View{}, mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err))
	}
	measures := series.Measures(ds)
	sess, err := core.SessionFromConfig(ds, measures, cfg)
	if err != nil {
		return schema.View{}, mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err))
	}
	return core.BuildView(ds, measures, sess, cfg.Window), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListMeasures(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := h.dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	measures := series.Measures(ds)
	if measures == nil {
		measures = []schema.Measure{}
	}
	return jsonResult(measures), nil
}

func (h *toolHandler) handleListEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := requestConfig(h.baseCfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	ds, err := h.dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	sess := core.EmptySession(series.Measures(ds)).WithMetric(cfg.Metric).WithScope(cfg.Scope).WithSearch(cfg.Search)
	if cfg.MeasureKey != "" {
		sess = sess.WithMeasure(cfg.MeasureKey)
	}
	options := sess.Entities(ds)
	if options == nil {
		options = []schema.EntityOption{}
	}
	return jsonResult(options), nil
}

func (h *toolHandler) handleGetSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, errResult := h.view(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(view), nil
}

func (h *toolHandler) handleGetScale(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, errResult := h.view(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(view.Scale), nil
}

func (h *toolHandler) handleExportRows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, errResult := h.view(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(outwriter.SerializeRows(view.Rows)), nil
}
