package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// chartColors maps the plain labels to the PNG palette; merged labels use
// the merged color.
var chartColors = map[submovement.MovementType]string{
	submovement.Rapid: "#d62728",
	submovement.Slow:  "#1f77b4",
}

const mergedChartColor = "#9467bd"

// RenderTrialChart writes a standalone HTML page with the trial's speed
// profile and one series per segment type. Samples outside segments of a
// type are left as gaps in that type's series.
func RenderTrialChart(w io.Writer, trialID string, trace []submovement.KinematicSample, segs []submovement.Segment) error {
	speed := make([]opts.LineData, len(trace))
	for i, k := range trace {
		speed[i] = opts.LineData{Value: []interface{}{k.T, k.V}}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trial " + trialID, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trial " + trialID, Subtitle: fmt.Sprintf("samples=%d segments=%d", len(trace), len(segs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "speed (px/ms)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.AddSeries("speed", speed,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#5a5a5a"}),
	)

	for _, typ := range segmentTypes(segs) {
		data, err := typeSeries(trace, segs, typ)
		if err != nil {
			return err
		}
		color, ok := chartColors[typ]
		if !ok {
			color = mergedChartColor
		}
		line.AddSeries(string(typ), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), ConnectNulls: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 3}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// segmentTypes returns the distinct segment labels in first-seen order.
func segmentTypes(segs []submovement.Segment) []submovement.MovementType {
	var types []submovement.MovementType
	seen := make(map[submovement.MovementType]bool)
	for _, seg := range segs {
		if !seen[seg.Type] {
			seen[seg.Type] = true
			types = append(types, seg.Type)
		}
	}
	return types
}

// typeSeries returns the speed samples inside segments of type typ, with a
// null point after each segment so the line breaks between them.
func typeSeries(trace []submovement.KinematicSample, segs []submovement.Segment, typ submovement.MovementType) ([]opts.LineData, error) {
	var data []opts.LineData
	for _, seg := range segs {
		if seg.Type != typ {
			continue
		}
		if err := checkBounds(trace, seg); err != nil {
			return nil, err
		}
		for i := seg.StartIdx; i <= seg.EndIdx; i++ {
			data = append(data, opts.LineData{Value: []interface{}{trace[i].T, trace[i].V}})
		}
		data = append(data, opts.LineData{Value: []interface{}{seg.TEnd, "-"}})
	}
	return data, nil
}
