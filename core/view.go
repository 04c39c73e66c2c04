package core

import (
	"fmt"

	"github.com/huangsam/starsview/core/algo"
	"github.com/huangsam/starsview/core/series"
	"github.com/huangsam/starsview/schema"
)

// BuildView derives everything one render pass needs from the loaded tables
// and the session. It does not change the session.
func BuildView(ds *schema.Dataset, measures []schema.Measure, sess Session, window schema.YearWindow) schema.View {
	selections := sess.Selections.Selections()
	all := make([]schema.DenseSeries, 0, len(selections))
	visible := make([]schema.DenseSeries, 0, len(selections))
	var values []schema.NullFloat
	for _, sel := range selections {
		s := series.Extract(ds, sel, sess.Metric, sess.MeasureKey, window)
		all = append(all, s)
		if sess.Selections.IsHidden(sel.ID) {
			continue
		}
		visible = append(visible, s)
		values = append(values, s.Values()...)
	}

	view := schema.View{
		Title:    viewTitle(measures, sess),
		Meta:     fmt.Sprintf("Selected series: %d | Visible: %d | Generated UTC: %s", len(all), len(visible), ds.GeneratedAt()),
		Metric:   sess.Metric,
		Series:   all,
		Visible:  visible,
		Scale:    algo.ComputeScale(values, sess.Metric),
		Rows:     ProjectRows(all, sess.Selections.Hidden(), sess.Metric),
		Filename: ExportFilename(sess.Metric, sess.MeasureKey),
		Message:  sess.Selections.Message(),
	}
	if !sess.Metric.IsTotal() {
		view.Measure = series.MeasureName(measures, sess.MeasureKey)
	}
	return view
}

// viewTitle is the metric label, followed by the measure name for
// measure-scoped metrics.
func viewTitle(measures []schema.Measure, sess Session) string {
	label := sess.Metric.Label()
	if sess.Metric.IsTotal() {
		return label
	}
	return label + " | " + series.MeasureName(measures, sess.MeasureKey)
}
