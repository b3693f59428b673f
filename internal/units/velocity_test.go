package units

import (
	"testing"

	"github.com/riverbend-data/riverflow/internal/testutil"
)

func TestIsValidVelocity(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid fps", FPS, true},
		{"invalid unit", "kts", false},
		{"empty unit", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidVelocity(tt.unit); got != tt.expected {
				t.Errorf("IsValidVelocity(%s) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestVelocityUnitsString(t *testing.T) {
	if got := VelocityUnitsString(); got != "mps, fps" {
		t.Errorf("VelocityUnitsString() = %s, want mps, fps", got)
	}
}

func TestConvertVelocity(t *testing.T) {
	tests := []struct {
		name     string
		vMPS     float64
		unit     string
		expected float64
	}{
		{"0 m/s to mps", 0.0, MPS, 0.0},
		{"1 m/s to mps", 1.0, MPS, 1.0},
		{"1 m/s to fps", 1.0, FPS, 3.280839895013123},
		{"2.5 m/s to fps", 2.5, FPS, 8.202099737532808},
		{"unknown unit falls back to m/s", 1.5, "mph", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertInDelta(t, ConvertVelocity(tt.vMPS, tt.unit), tt.expected, 1e-12)
		})
	}
}
