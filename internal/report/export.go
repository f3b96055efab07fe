package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/lakfel/fittsStudy/internal/batch"
	"github.com/lakfel/fittsStudy/internal/fsutil"
	"github.com/lakfel/fittsStudy/internal/monitoring"
	"github.com/lakfel/fittsStudy/internal/security"
)

// SegmentsFile is the name of the segment table inside the output directory.
const SegmentsFile = "submovements.csv"

// Exporter writes batch outputs into a directory.
type Exporter struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewExporter returns an exporter writing to dir on the local filesystem.
func NewExporter(dir string) *Exporter {
	return &Exporter{FS: fsutil.OSFileSystem{}, Dir: dir}
}

// WriteSegments writes the segment table and returns its path.
func (e *Exporter) WriteSegments(results []batch.TrialResult) (string, error) {
	path := filepath.Join(e.Dir, SegmentsFile)
	return path, e.create(path, func(w io.Writer) error {
		return WriteSegmentsCSV(w, results)
	})
}

// WritePlot writes a PNG speed profile for one trial and returns its path.
func (e *Exporter) WritePlot(tr batch.TrialResult) (string, error) {
	path := e.trialPath(tr.TrialID, ".png")
	return path, e.create(path, func(w io.Writer) error {
		return PlotTrial(w, tr.TrialID, tr.Analysis.Kinematics, tr.Analysis.Segments)
	})
}

// WriteChart writes an HTML chart for one trial and returns its path.
func (e *Exporter) WriteChart(tr batch.TrialResult) (string, error) {
	path := e.trialPath(tr.TrialID, ".html")
	return path, e.create(path, func(w io.Writer) error {
		return RenderTrialChart(w, tr.TrialID, tr.Analysis.Kinematics, tr.Analysis.Segments)
	})
}

// WriteTrialFigures writes a PNG, and an HTML chart when html is set, for
// each trial in ids. Unknown or empty trials are logged and skipped.
func (e *Exporter) WriteTrialFigures(res *batch.Result, ids []string, html bool) ([]string, error) {
	byID := make(map[string]batch.TrialResult, len(res.Trials))
	for _, tr := range res.Trials {
		byID[tr.TrialID] = tr
	}

	var written []string
	for _, id := range ids {
		tr, ok := byID[id]
		if !ok {
			monitoring.Logf("[report] trial %s not found, skipping plot", id)
			continue
		}
		if len(tr.Analysis.Kinematics) == 0 {
			monitoring.Logf("[report] trial %s has no samples, skipping plot", id)
			continue
		}
		path, err := e.WritePlot(tr)
		if err != nil {
			return written, err
		}
		written = append(written, path)
		if html {
			path, err := e.WriteChart(tr)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// trialPath builds a per-trial file name. Trial ids are sanitised so they
// cannot leave the output directory.
func (e *Exporter) trialPath(trialID, ext string) string {
	return filepath.Join(e.Dir, "trial_"+security.SanitizeFilename(trialID)+ext)
}

func (e *Exporter) create(path string, write func(io.Writer) error) error {
	if err := e.FS.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := e.FS.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
