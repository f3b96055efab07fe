package units

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		units    string
		expected float64
	}{
		{"fast threshold to px/s", 0.35, PxPerSec, 350},
		{"slow threshold to px/s", 0.05, PxPerSec, 50},
		{"px/ms is identity", 0.35, PxPerMs, 0.35},
		{"unknown units default to px/ms", 1.2, "unknown", 1.2},
		{"zero", 0, PxPerSec, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speed, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speed, tt.units, result, tt.expected)
			}
		})
	}
}

func TestToPxPerMs_RoundTrip(t *testing.T) {
	for _, u := range ValidSpeedUnits {
		got := ToPxPerMs(ConvertSpeed(0.42, u), u)
		if math.Abs(got-0.42) > 1e-12 {
			t.Errorf("round trip through %s = %f, want 0.42", u, got)
		}
	}
	if got := ToPxPerMs(350, PxPerSec); math.Abs(got-0.35) > 1e-12 {
		t.Errorf("ToPxPerMs(350, px_s) = %f, want 0.35", got)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid px_ms", PxPerMs, true},
		{"valid px_s", PxPerSec, true},
		{"acceleration is not a speed unit", PxPerMs2, false},
		{"invalid unit", "mph", false},
		{"empty string", "", false},
		{"case sensitive", "PX_S", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "px_ms, px_s" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}

func TestSampleRateHz(t *testing.T) {
	if got := SampleRateHz(10); got != 100 {
		t.Errorf("SampleRateHz(10) = %f, want 100", got)
	}
	if got := SampleRateHz(0); got != 0 {
		t.Errorf("SampleRateHz(0) = %f, want 0", got)
	}
}
