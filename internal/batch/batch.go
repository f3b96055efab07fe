// Package batch runs submovement analysis over many trials in parallel and
// summarises the results.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lakfel/fittsStudy/internal/monitoring"
	"github.com/lakfel/fittsStudy/internal/positions"
	"github.com/lakfel/fittsStudy/internal/submovement"
)

// Options controls a batch run.
type Options struct {
	// Workers bounds concurrent trials; 0 uses runtime.NumCPU().
	Workers int
}

// TrialResult is the analysis of one trial.
type TrialResult struct {
	TrialID       string                `json:"trial_id"`
	ParticipantID string                `json:"participant_id,omitempty"`
	Analysis      *submovement.Analysis `json:"analysis"`
}

// Result holds every trial's analysis in trial-id order plus a summary.
type Result struct {
	Trials  []TrialResult `json:"trials"`
	Summary Summary       `json:"summary"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// SegmentCount returns the number of segments across all trials.
func (r *Result) SegmentCount() int {
	n := 0
	for _, tr := range r.Trials {
		n += len(tr.Analysis.Segments)
	}
	return n
}

// Run analyses every trial with the same configuration. Trials are
// independent, so they run on a bounded worker pool; results keep the input
// order. Configuration is validated once up front. Cancelling ctx stops
// scheduling further trials and returns ctx.Err().
func Run(ctx context.Context, trials []positions.Trial, rc submovement.ResampleConfig, thr submovement.Thresholds, opts Options) (*Result, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if err := thr.Validate(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	results := make([]TrialResult, len(trials))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, trial := range trials {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := submovement.Analyze(trial.Samples, rc, thr)
			if err != nil {
				return fmt.Errorf("trial %s: %w", trial.ID, err)
			}
			if len(a.Segments) == 0 {
				monitoring.Debugf("[batch] trial %s: no segments (%d samples)", trial.ID, len(trial.Samples))
			}
			results[i] = TrialResult{TrialID: trial.ID, ParticipantID: trial.ParticipantID, Analysis: a}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Trials:  results,
		Summary: Summarize(results),
		Elapsed: time.Since(start),
	}
	monitoring.Logf("[batch] analysed %d trials (%d segments) with %d workers in %s",
		len(trials), res.SegmentCount(), workers, res.Elapsed.Round(time.Millisecond))
	return res, nil
}
