// Package report renders analysed trials as PNG speed profiles, interactive
// HTML charts and a flat CSV of segments.
package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// Plot size in inches.
const (
	plotWidth  = 10
	plotHeight = 4
)

var (
	speedColor  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	rapidColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	slowColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	mergedColor = color.RGBA{R: 148, G: 103, B: 189, A: 255}
)

// typeColor returns the plot color for a segment label. Merged labels get
// their own color.
func typeColor(t submovement.MovementType) color.Color {
	switch t {
	case submovement.Rapid:
		return rapidColor
	case submovement.Slow:
		return slowColor
	default:
		return mergedColor
	}
}

// PlotTrial writes a PNG of speed against time. Each segment is overdrawn in
// its type's color with a marker at its peak.
func PlotTrial(w io.Writer, trialID string, trace []submovement.KinematicSample, segs []submovement.Segment) error {
	if len(trace) == 0 {
		return fmt.Errorf("trial %s has no samples to plot", trialID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trial %s (%d segments)", trialID, len(segs))
	p.X.Label.Text = "t (ms)"
	p.Y.Label.Text = "speed (px/ms)"
	p.Add(plotter.NewGrid())

	speed, err := plotter.NewLine(speedXYs(trace, 0, len(trace)-1))
	if err != nil {
		return fmt.Errorf("failed to create speed line: %w", err)
	}
	speed.Color = speedColor
	speed.Width = vg.Points(1)
	p.Add(speed)
	p.Legend.Add("speed", speed)

	peaks := make(plotter.XYs, 0, len(segs))
	seen := make(map[submovement.MovementType]bool)
	for _, seg := range segs {
		if err := checkBounds(trace, seg); err != nil {
			return err
		}
		line, err := plotter.NewLine(speedXYs(trace, seg.StartIdx, seg.EndIdx))
		if err != nil {
			return fmt.Errorf("failed to create segment line: %w", err)
		}
		line.Color = typeColor(seg.Type)
		line.Width = vg.Points(3)
		p.Add(line)
		if !seen[seg.Type] {
			p.Legend.Add(string(seg.Type), line)
			seen[seg.Type] = true
		}
		peaks = append(peaks, plotter.XY{X: trace[peakIndex(trace, seg)].T, Y: seg.VPeak})
	}

	if len(peaks) > 0 {
		markers, err := plotter.NewScatter(peaks)
		if err != nil {
			return fmt.Errorf("failed to create peak markers: %w", err)
		}
		markers.GlyphStyle.Radius = vg.Points(3)
		p.Add(markers)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(plotWidth*vg.Inch, plotHeight*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

func speedXYs(trace []submovement.KinematicSample, from, to int) plotter.XYs {
	pts := make(plotter.XYs, 0, to-from+1)
	for i := from; i <= to; i++ {
		pts = append(pts, plotter.XY{X: trace[i].T, Y: trace[i].V})
	}
	return pts
}

// peakIndex returns the index of the fastest sample in seg.
func peakIndex(trace []submovement.KinematicSample, seg submovement.Segment) int {
	best := seg.StartIdx
	for i := seg.StartIdx + 1; i <= seg.EndIdx; i++ {
		if trace[i].V > trace[best].V {
			best = i
		}
	}
	return best
}

func checkBounds(trace []submovement.KinematicSample, seg submovement.Segment) error {
	if seg.StartIdx < 0 || seg.StartIdx > seg.EndIdx || seg.EndIdx >= len(trace) {
		return fmt.Errorf("segment [%d, %d] outside trace of %d samples", seg.StartIdx, seg.EndIdx, len(trace))
	}
	return nil
}
