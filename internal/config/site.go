// Package config loads the site configuration and the input files the
// discharge pipeline consumes: the surveyed cross-section and the
// velocimetry sample series.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/riverbend-data/riverflow/internal/units"
)

// SiteConfig represents the per-site processing configuration. Fields are
// pointers so a partial JSON file only overrides what it names; anything
// omitted keeps its default. The gauge references (z_0, h_ref) come from the
// site's camera calibration; h_a is the water level observed at acquisition
// time.
type SiteConfig struct {
	// Site identification
	Site *string `json:"site,omitempty"`

	// Gauge references
	Z0   *float64 `json:"z_0,omitempty"`
	HRef *float64 `json:"h_ref,omitempty"`
	HA   *float64 `json:"h_a,omitempty"`

	// Pipeline params
	VCorr     *float64  `json:"v_corr,omitempty"`
	Quantiles []float64 `json:"quantiles,omitempty"`
	AngleMode *string   `json:"angle_mode,omitempty"` // "global" or "local"

	// Input files
	CrossSectionFile *string `json:"cross_section_file,omitempty"`
	VelocityFile     *string `json:"velocity_file,omitempty"`

	// Output params
	Units         *string `json:"units,omitempty"`          // discharge units for presentation
	VelocityUnits *string `json:"velocity_units,omitempty"` // velocity units for presentation
	Database      *string `json:"database,omitempty"`
	ReportFile    *string `json:"report_file,omitempty"`
	PlotFile      *string `json:"plot_file,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// DefaultSiteConfig returns a SiteConfig with defaults filled in: metric
// units, global angle mode, the standard surface-to-depth-average
// correction, and the default quantile set left to the pipeline.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		Site:          ptrString("unnamed"),
		Z0:            ptrFloat64(0),
		HRef:          ptrFloat64(0),
		HA:            ptrFloat64(0),
		VCorr:         ptrFloat64(0.9),
		AngleMode:     ptrString("global"),
		Units:         ptrString(units.CMS),
		VelocityUnits: ptrString(units.MPS),
	}
}

// LoadSiteConfig loads a SiteConfig from a JSON file and merges it over the
// defaults. The file is validated to ensure it has a .json extension and is
// under the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

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

	cfg := DefaultSiteConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations. It does not require the input
// files to exist; that is checked when they are read.
func (c *SiteConfig) Validate() error {
	if c.VCorr != nil && (*c.VCorr <= 0 || *c.VCorr > 1.5) {
		return fmt.Errorf("v_corr %v outside plausible range (0, 1.5]", *c.VCorr)
	}
	for _, q := range c.Quantiles {
		if q < 0 || q > 1 {
			return fmt.Errorf("quantile %v outside [0, 1]", q)
		}
	}
	if c.AngleMode != nil && *c.AngleMode != "global" && *c.AngleMode != "local" {
		return fmt.Errorf("angle_mode must be \"global\" or \"local\", got %q", *c.AngleMode)
	}
	if c.Units != nil && !units.IsValidDischarge(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.DischargeUnitsString(), *c.Units)
	}
	if c.VelocityUnits != nil && !units.IsValidVelocity(*c.VelocityUnits) {
		return fmt.Errorf("velocity_units must be one of %s, got %q", units.VelocityUnitsString(), *c.VelocityUnits)
	}
	return nil
}
