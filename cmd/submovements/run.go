package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lakfel/fittsStudy/internal/batch"
	"github.com/lakfel/fittsStudy/internal/config"
	"github.com/lakfel/fittsStudy/internal/db"
	"github.com/lakfel/fittsStudy/internal/monitoring"
	"github.com/lakfel/fittsStudy/internal/positions"
	"github.com/lakfel/fittsStudy/internal/report"
	"github.com/lakfel/fittsStudy/internal/submovement"
	"github.com/lakfel/fittsStudy/internal/units"
)

type options struct {
	positions string
	dbPath    string
	outDir    string
	plotIDs   []string
	html      bool
	verbose   bool

	showVersion bool

	// cfg is the tuning file with command-line overrides applied.
	cfg *config.TuningConfig
}

// parseFlags reads the command line. Tuning flags override the -config file
// only when given explicitly.
func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("submovements", flag.ContinueOnError)
	positionsPath := fs.String("positions", "", "Cursor positions file (.csv, or .json trial documents)")
	configPath := fs.String("config", "", "Tuning config JSON; built-in defaults when empty")
	dbPath := fs.String("db", "", "Results database (sqlite); the run is not recorded when empty")
	outDir := fs.String("outdir", ".", "Directory for "+report.SegmentsFile+" and plots")
	workers := fs.Int("workers", 0, "Trials analysed concurrently (0 = one per CPU)")
	dtMs := fs.Float64("dt-ms", 0, "Resampling step in ms")
	slowSpeed := fs.Float64("slow-speed", 0, "Minimum speed of a slow submovement, in -speed-unit")
	slowMs := fs.Float64("slow-ms", 0, "Minimum duration of a slow submovement in ms")
	fastSpeed := fs.Float64("fast-speed", 0, "Minimum speed of a rapid submovement, in -speed-unit")
	fastMs := fs.Float64("fast-ms", 0, "Minimum duration of a rapid submovement in ms")
	speedUnit := fs.String("speed-unit", units.PxPerMs, "Unit of the speed flags: "+units.GetValidUnitsString())
	plot := fs.String("plot", "", "Comma-separated trial ids to plot")
	html := fs.Bool("html", false, "Also write an interactive HTML chart for each plotted trial")
	verbose := fs.Bool("verbose", false, "Log per-trial progress")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts := &options{
		positions:   *positionsPath,
		dbPath:      *dbPath,
		outDir:      *outDir,
		plotIDs:     splitIDs(*plot),
		html:        *html,
		verbose:     *verbose,
		showVersion: *showVersion,
	}
	if opts.showVersion {
		return opts, nil
	}
	if opts.positions == "" {
		return nil, errors.New("-positions is required")
	}
	if !units.IsValid(*speedUnit) {
		return nil, fmt.Errorf("-speed-unit must be one of %s, got %q", units.GetValidUnitsString(), *speedUnit)
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			return nil, err
		}
	}

	// Speed flags are given in -speed-unit but stored in the file's unit.
	speed := func(v float64) *float64 {
		s := units.ConvertSpeed(units.ToPxPerMs(v, *speedUnit), cfg.GetSpeedUnit())
		return &s
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = workers
		case "dt-ms":
			cfg.DtMs = dtMs
		case "slow-speed":
			cfg.SlowSpeedMin = speed(*slowSpeed)
		case "slow-ms":
			cfg.SlowMinDurationMs = slowMs
		case "fast-speed":
			cfg.FastSpeedMin = speed(*fastSpeed)
		case "fast-ms":
			cfg.FastMinDurationMs = fastMs
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.cfg = cfg
	return opts, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// readPositions loads a positions file; .json files hold trial documents and
// anything else is read as CSV.
func readPositions(path string) ([]positions.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open positions: %w", err)
	}
	defer f.Close()

	var read func(io.Reader) ([]positions.Row, error) = positions.ReadCSV
	if strings.EqualFold(filepath.Ext(path), ".json") {
		read = positions.FlattenTrials
	}
	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// runParams is what gets stored as a run's params_json.
type runParams struct {
	Resample   submovement.ResampleConfig `json:"resample"`
	Thresholds submovement.Thresholds     `json:"thresholds"`
	Workers    int                        `json:"workers"`
}

func run(ctx context.Context, opts *options) error {
	rows, err := readPositions(opts.positions)
	if err != nil {
		return err
	}
	trials := positions.GroupByTrial(rows)
	rc, thr := opts.cfg.ResampleConfig(), opts.cfg.Thresholds()
	log.Printf("[batch] analysing %d trials (%d samples) from %s", len(trials), len(rows), opts.positions)

	// The run is recorded before the analysis so a failed batch is still
	// visible in the database.
	var database *db.DB
	var dbRun *db.AnalysisRun
	if opts.dbPath != "" {
		if database, err = db.NewDB(opts.dbPath); err != nil {
			return err
		}
		defer database.Close()

		params, err := json.Marshal(runParams{Resample: rc, Thresholds: thr, Workers: opts.cfg.GetWorkers()})
		if err != nil {
			return fmt.Errorf("failed to encode run params: %w", err)
		}
		dbRun = &db.AnalysisRun{Source: filepath.Base(opts.positions), ParamsJSON: params}
		if err := database.Runs().InsertRun(dbRun); err != nil {
			return err
		}
		monitoring.Debugf("[db] recording run %s in %s", dbRun.RunID, opts.dbPath)
	}

	res, err := batch.Run(ctx, trials, rc, thr, batch.Options{Workers: opts.cfg.GetWorkers()})
	if err != nil {
		if dbRun != nil {
			if cerr := database.Runs().CompleteRun(dbRun.RunID, 0, 0, err); cerr != nil {
				log.Printf("[db] failed to mark run %s failed: %v", dbRun.RunID, cerr)
			}
		}
		return err
	}
	if res.SegmentCount() == 0 {
		log.Print("No segments detected.")
	}

	exp := report.NewExporter(opts.outDir)
	path, err := exp.WriteSegments(res.Trials)
	if err != nil {
		return err
	}
	log.Printf("[report] wrote %d segments to %s", res.SegmentCount(), path)

	if len(opts.plotIDs) > 0 {
		written, err := exp.WriteTrialFigures(res, opts.plotIDs, opts.html)
		if err != nil {
			return err
		}
		for _, p := range written {
			log.Printf("[report] wrote %s", p)
		}
	}

	if dbRun != nil {
		if err := database.SaveBatch(dbRun.RunID, res); err != nil {
			return err
		}
		log.Printf("[db] run %s saved to %s", dbRun.RunID, opts.dbPath)
	}

	logSummary(res)
	return nil
}

func logSummary(res *batch.Result) {
	s := res.Summary
	log.Printf("[batch] %d trials, %d with segments, %d unfiltered, %d segments in %v",
		s.Trials, s.TrialsWithSegments, s.UnfilteredTrials, s.Segments, res.Elapsed)
	for _, t := range []submovement.MovementType{submovement.Rapid, submovement.Slow} {
		log.Printf("[batch]   %-5s %d", t, s.ByType[t])
	}
	if s.Segments > 0 {
		log.Printf("[batch] segments/trial %.2f ± %.2f, peak %.3f ± %.3f px/ms, mean duration %.1f ms",
			s.SegmentsPerTrialMean, s.SegmentsPerTrialStdDev, s.PeakSpeedMean, s.PeakSpeedStdDev, s.DurationMeanMs)
	}
}
