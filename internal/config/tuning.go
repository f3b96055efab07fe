package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lakfel/fittsStudy/internal/submovement"
	"github.com/lakfel/fittsStudy/internal/units"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the analysis parameters as stored on disk. Every
// field is optional; Get* methods fall back to the built-in defaults, so a
// file only needs to list what it changes.
type TuningConfig struct {
	// Resampling and filtering
	DtMs         *float64 `json:"dt_ms,omitempty"`
	SmoothWindow *int     `json:"smooth_window,omitempty"`
	GapMs        *float64 `json:"gap_ms,omitempty"`
	FilterOrder  *int     `json:"filter_order,omitempty"`
	CutoffHz     *float64 `json:"cutoff_hz,omitempty"` // <= 0 disables the filter

	// Detection. Speeds are in SpeedUnit.
	SpeedUnit         *string  `json:"speed_unit,omitempty"` // "px_ms" (default) or "px_s"
	SlowSpeedMin      *float64 `json:"slow_speed_min,omitempty"`
	SlowMinDurationMs *float64 `json:"slow_min_duration_ms,omitempty"`
	FastSpeedMin      *float64 `json:"fast_speed_min,omitempty"`
	FastMinDurationMs *float64 `json:"fast_min_duration_ms,omitempty"`
	EpsilonSpeed      *float64 `json:"epsilon_speed,omitempty"`
	AccelSignFlipEnd  *int     `json:"accel_sign_flip_end,omitempty"`

	// Merge heuristic
	MergeMidpointRatio *float64 `json:"merge_midpoint_ratio,omitempty"`
	MergeMaxGapMs      *float64 `json:"merge_max_gap_ms,omitempty"`

	// Batch
	Workers *int `json:"workers,omitempty"` // 0 uses every CPU
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the analysis defaults.
func DefaultTuningConfig() *TuningConfig {
	rc := submovement.DefaultResampleConfig()
	thr := submovement.DefaultThresholds()
	return &TuningConfig{
		DtMs:               ptrFloat64(rc.DtMs),
		SmoothWindow:       ptrInt(rc.SmoothWindow),
		GapMs:              ptrFloat64(rc.GapMs),
		FilterOrder:        ptrInt(rc.FilterOrder),
		CutoffHz:           ptrFloat64(rc.CutoffHz),
		SpeedUnit:          ptrString(units.PxPerMs),
		SlowSpeedMin:       ptrFloat64(thr.SlowSpeedMin),
		SlowMinDurationMs:  ptrFloat64(thr.SlowMinDurationMs),
		FastSpeedMin:       ptrFloat64(thr.FastSpeedMin),
		FastMinDurationMs:  ptrFloat64(thr.FastMinDurationMs),
		EpsilonSpeed:       ptrFloat64(thr.EpsilonSpeed),
		AccelSignFlipEnd:   ptrInt(thr.AccelSignFlipEnd),
		MergeMidpointRatio: ptrFloat64(thr.MergeMidpointRatio),
		MergeMaxGapMs:      ptrFloat64(thr.MergeMaxGapMs),
		Workers:            ptrInt(0),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ subpackages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SpeedUnit != nil && !units.IsValid(*c.SpeedUnit) {
		return fmt.Errorf("speed_unit must be one of %s, got %q", units.GetValidUnitsString(), *c.SpeedUnit)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if err := c.ResampleConfig().Validate(); err != nil {
		return err
	}
	return c.Thresholds().Validate()
}

// ResampleConfig converts the file values into the analysis resample settings.
func (c *TuningConfig) ResampleConfig() submovement.ResampleConfig {
	return submovement.ResampleConfig{
		DtMs:         c.GetDtMs(),
		SmoothWindow: c.GetSmoothWindow(),
		GapMs:        c.GetGapMs(),
		FilterOrder:  c.GetFilterOrder(),
		CutoffHz:     c.GetCutoffHz(),
	}
}

// Thresholds converts the file values into detection thresholds, with speeds
// normalised to px/ms.
func (c *TuningConfig) Thresholds() submovement.Thresholds {
	unit := c.GetSpeedUnit()
	return submovement.Thresholds{
		SlowSpeedMin:       units.ToPxPerMs(c.GetSlowSpeedMin(), unit),
		SlowMinDurationMs:  c.GetSlowMinDurationMs(),
		FastSpeedMin:       units.ToPxPerMs(c.GetFastSpeedMin(), unit),
		FastMinDurationMs:  c.GetFastMinDurationMs(),
		EpsilonSpeed:       units.ToPxPerMs(c.GetEpsilonSpeed(), unit),
		AccelSignFlipEnd:   c.GetAccelSignFlipEnd(),
		MergeMidpointRatio: c.GetMergeMidpointRatio(),
		MergeMaxGapMs:      c.GetMergeMaxGapMs(),
	}
}

// GetDtMs returns the dt_ms value or the default.
func (c *TuningConfig) GetDtMs() float64 {
	if c.DtMs == nil {
		return 10
	}
	return *c.DtMs
}

// GetSmoothWindow returns the smooth_window value or the default.
func (c *TuningConfig) GetSmoothWindow() int {
	if c.SmoothWindow == nil {
		return 5
	}
	return *c.SmoothWindow
}

// GetGapMs returns the gap_ms value or the default.
func (c *TuningConfig) GetGapMs() float64 {
	if c.GapMs == nil {
		return 60
	}
	return *c.GapMs
}

// GetFilterOrder returns the filter_order value or the default.
func (c *TuningConfig) GetFilterOrder() int {
	if c.FilterOrder == nil {
		return 4
	}
	return *c.FilterOrder
}

// GetCutoffHz returns the cutoff_hz value or the default.
func (c *TuningConfig) GetCutoffHz() float64 {
	if c.CutoffHz == nil {
		return 10
	}
	return *c.CutoffHz
}

// GetSpeedUnit returns the speed_unit value or the default.
func (c *TuningConfig) GetSpeedUnit() string {
	if c.SpeedUnit == nil || *c.SpeedUnit == "" {
		return units.PxPerMs
	}
	return *c.SpeedUnit
}

// GetSlowSpeedMin returns the slow_speed_min value (in SpeedUnit) or the default.
func (c *TuningConfig) GetSlowSpeedMin() float64 {
	if c.SlowSpeedMin == nil {
		return units.ConvertSpeed(0.05, c.GetSpeedUnit())
	}
	return *c.SlowSpeedMin
}

// GetSlowMinDurationMs returns the slow_min_duration_ms value or the default.
func (c *TuningConfig) GetSlowMinDurationMs() float64 {
	if c.SlowMinDurationMs == nil {
		return 60
	}
	return *c.SlowMinDurationMs
}

// GetFastSpeedMin returns the fast_speed_min value (in SpeedUnit) or the default.
func (c *TuningConfig) GetFastSpeedMin() float64 {
	if c.FastSpeedMin == nil {
		return units.ConvertSpeed(0.35, c.GetSpeedUnit())
	}
	return *c.FastSpeedMin
}

// GetFastMinDurationMs returns the fast_min_duration_ms value or the default.
func (c *TuningConfig) GetFastMinDurationMs() float64 {
	if c.FastMinDurationMs == nil {
		return 20
	}
	return *c.FastMinDurationMs
}

// GetEpsilonSpeed returns the epsilon_speed value (in SpeedUnit) or the default.
func (c *TuningConfig) GetEpsilonSpeed() float64 {
	if c.EpsilonSpeed == nil {
		return units.ConvertSpeed(1e-6, c.GetSpeedUnit())
	}
	return *c.EpsilonSpeed
}

// GetAccelSignFlipEnd returns the accel_sign_flip_end value or the default.
func (c *TuningConfig) GetAccelSignFlipEnd() int {
	if c.AccelSignFlipEnd == nil {
		return 2
	}
	return *c.AccelSignFlipEnd
}

// GetMergeMidpointRatio returns the merge_midpoint_ratio value or the default.
func (c *TuningConfig) GetMergeMidpointRatio() float64 {
	if c.MergeMidpointRatio == nil {
		return 0.90
	}
	return *c.MergeMidpointRatio
}

// GetMergeMaxGapMs returns the merge_max_gap_ms value or the default.
func (c *TuningConfig) GetMergeMaxGapMs() float64 {
	if c.MergeMaxGapMs == nil {
		return 40
	}
	return *c.MergeMaxGapMs
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}
