// Command riverflow computes river discharge from camera-derived surface
// velocity samples along a cross-section.
//
// It reads the surveyed section and the velocimetry series from CSV, runs
// the transect pipeline (projection, quantile reduction, log-profile gap
// fill, depth and width integration) and prints the per-quantile discharge.
// Results can optionally be persisted to a SQLite store and rendered as an
// HTML report and a PNG profile plot.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/riverbend-data/riverflow/internal/config"
	"github.com/riverbend-data/riverflow/internal/db"
	"github.com/riverbend-data/riverflow/internal/report"
	"github.com/riverbend-data/riverflow/internal/transect"
	"github.com/riverbend-data/riverflow/internal/units"
	"github.com/riverbend-data/riverflow/internal/version"
)

func main() {
	var (
		configPath   = flag.String("config", "", "site configuration JSON (flags override its values)")
		sectionPath  = flag.String("cross-section", "", "cross-section CSV with x,y,z[,s] columns")
		velocityPath = flag.String("velocity", "", "velocity samples CSV with time,point,v_x,v_y columns")
		site         = flag.String("site", "", "site name recorded with results")
		quantileList = flag.String("quantiles", "", "comma-separated quantiles in [0,1] (default 0.05,0.25,0.5,0.75,0.95)")
		vCorr        = flag.Float64("v-corr", math.NaN(), "surface-to-depth-average velocity correction (default 0.9)")
		z0           = flag.Float64("z0", math.NaN(), "datum elevation of the gauge (m)")
		hRef         = flag.Float64("h-ref", math.NaN(), "reference gauge height of the bed survey (m)")
		hA           = flag.Float64("h-a", math.NaN(), "water level at acquisition time (m)")
		angleMode    = flag.String("angle-mode", "", "cross-section angle mode: global or local")
		unitsFlag    = flag.String("units", "", "discharge output units: "+units.DischargeUnitsString())
		velUnitsFlag = flag.String("velocity-units", "", "velocity presentation units in the report: "+units.VelocityUnitsString())
		dbPath       = flag.String("db", "", "SQLite results database (omit to skip persistence)")
		reportPath   = flag.String("report", "", "HTML report output path (omit to skip)")
		plotPath     = flag.String("plot", "", "PNG profile plot output path (omit to skip)")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := resolveConfig(*configPath, flagsSet())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	applyFlagOverrides(cfg, flagsSet(), flagValues{
		site: *site, quantiles: *quantileList, vCorr: *vCorr,
		z0: *z0, hRef: *hRef, hA: *hA, angleMode: *angleMode,
		units: *unitsFlag, velocityUnits: *velUnitsFlag,
		section: *sectionPath, velocity: *velocityPath,
		db: *dbPath, report: *reportPath, plot: *plotPath,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.CrossSectionFile == nil || *cfg.CrossSectionFile == "" {
		log.Fatal("no cross-section file given (use -cross-section or the config file)")
	}
	if cfg.VelocityFile == nil || *cfg.VelocityFile == "" {
		log.Fatal("no velocity file given (use -velocity or the config file)")
	}

	ds, red, refs, mode, err := run(cfg)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	printDischarges(os.Stdout, red, *cfg.Units)

	if cfg.Database != nil && *cfg.Database != "" {
		if err := persist(cfg, ds, red, mode); err != nil {
			log.Fatalf("persist: %v", err)
		}
	}
	if cfg.ReportFile != nil && *cfg.ReportFile != "" {
		if err := report.WriteHTML(*cfg.ReportFile, red, refs, *cfg.Site, *cfg.Units, *cfg.VelocityUnits); err != nil {
			log.Fatalf("report: %v", err)
		}
		log.Printf("report written to %s", *cfg.ReportFile)
	}
	if cfg.PlotFile != nil && *cfg.PlotFile != "" {
		if err := report.SaveProfilePlot(*cfg.PlotFile, red, refs, *cfg.Site); err != nil {
			log.Fatalf("plot: %v", err)
		}
		log.Printf("profile plot written to %s", *cfg.PlotFile)
	}
}

// run executes the full pipeline for the resolved configuration, returning
// the time-resolved dataset, the quantile-reduced result, the gauge
// references and the angle mode used.
func run(cfg *config.SiteConfig) (*transect.Dataset, *transect.Dataset, transect.GaugeRefs, transect.AngleMode, error) {
	refs := transect.GaugeRefs{Z0: *cfg.Z0, HRef: *cfg.HRef}

	mode, err := transect.ParseAngleMode(*cfg.AngleMode)
	if err != nil {
		return nil, nil, refs, mode, err
	}

	cs, err := config.ReadCrossSection(*cfg.CrossSectionFile)
	if err != nil {
		return nil, nil, refs, mode, err
	}
	log.Printf("cross-section read from %s (%d points)", *cfg.CrossSectionFile, len(cs.X))

	vs, err := config.ReadVelocitySeries(*cfg.VelocityFile, len(cs.X))
	if err != nil {
		return nil, nil, refs, mode, err
	}
	log.Printf("velocity series read from %s (%d time steps)", *cfg.VelocityFile, vs.NumTime)

	ds, err := transect.New(cs.X, cs.Y, cs.Z, cs.S, vs.NumTime, *cfg.HA)
	if err != nil {
		return nil, nil, refs, mode, err
	}
	if err := ds.SetVelocity(vs.U, vs.V); err != nil {
		return nil, nil, refs, mode, err
	}
	if err := transect.VectorToScalar(ds, mode); err != nil {
		return nil, nil, refs, mode, err
	}
	log.Printf("effective velocity derived (%s angle mode)", mode)

	red, err := transect.GetQ(ds, refs, *cfg.VCorr, cfg.Quantiles, nil)
	if err != nil {
		return nil, nil, refs, mode, err
	}
	if err := transect.GetRiverFlow(red); err != nil {
		return nil, nil, refs, mode, err
	}
	log.Printf("discharge integrated over %d quantiles", len(red.Quantiles))
	return ds, red, refs, mode, nil
}

// persist writes the run, per-quantile discharges and per-point flux rows to
// the results database.
func persist(cfg *config.SiteConfig, ds, red *transect.Dataset, mode transect.AngleMode) error {
	store, err := db.NewDB(*cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	// Bring the store up to the current schema before writing.
	if err := store.MigrateUp(); err != nil {
		return err
	}

	runID := uuid.NewString()
	if err := store.RecordRun(&db.DischargeRun{
		RunID:        runID,
		Site:         *cfg.Site,
		AngleMode:    mode.String(),
		HA:           *cfg.HA,
		VCorr:        *cfg.VCorr,
		NumPoints:    ds.NumPoints(),
		NumTimesteps: ds.NumTime(),
	}); err != nil {
		return err
	}
	if err := store.RecordDischarges(collectDischarges(red, runID)); err != nil {
		return err
	}
	if err := store.RecordPointFlux(collectPointFlux(red, runID)); err != nil {
		return err
	}
	log.Printf("results stored in %s as run %s", *cfg.Database, runID)
	return nil
}

// collectDischarges flattens the discharge variables into store rows.
func collectDischarges(red *transect.Dataset, runID string) []db.Discharge {
	flow := red.Var("river_flow")
	noFill := red.Var("river_flow_nofill")
	out := make([]db.Discharge, 0, len(red.Quantiles))
	for qi, p := range red.Quantiles {
		d := db.Discharge{RunID: runID, Quantile: p, Flow: flow.Data[qi], FlowNoFill: math.NaN()}
		if noFill != nil {
			d.FlowNoFill = noFill.Data[qi]
		}
		out = append(out, d)
	}
	return out
}

// collectPointFlux flattens the per-point variables into store rows.
func collectPointFlux(red *transect.Dataset, runID string) []db.PointFlux {
	vEff := red.Var("v_eff")
	q := red.Var("q")
	qn := red.Var("q_nofill")
	out := make([]db.PointFlux, 0, len(red.Quantiles)*red.NumPoints())
	for qi, p := range red.Quantiles {
		for pi := 0; pi < red.NumPoints(); pi++ {
			out = append(out, db.PointFlux{
				RunID:    runID,
				Quantile: p,
				PointIdx: pi,
				S:        red.S[pi],
				VEff:     vEff.At(qi, pi),
				Q:        q.At(qi, pi),
				QNoFill:  qn.At(qi, pi),
			})
		}
	}
	return out
}

// printDischarges renders the per-quantile discharge table in the requested
// units, with the unfilled total alongside for traceability.
func printDischarges(w *os.File, red *transect.Dataset, unit string) {
	flow := red.Var("river_flow")
	noFillVar := red.Var("river_flow_nofill")
	label := units.DischargeLabel(unit)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "quantile\tQ [%s]\tQ_nofill [%s]\n", label, label)
	for qi, p := range red.Quantiles {
		noFill := math.NaN()
		if noFillVar != nil {
			noFill = noFillVar.Data[qi]
		}
		fmt.Fprintf(tw, "%.2f\t%.3f\t%.3f\n",
			p,
			units.ConvertDischarge(flow.Data[qi], unit),
			units.ConvertDischarge(noFill, unit))
	}
	tw.Flush()
}

// flagValues carries the raw flag values into the override step.
type flagValues struct {
	site, quantiles, angleMode          string
	units, velocityUnits                string
	section, velocity, db, report, plot string
	vCorr, z0, hRef, hA                 float64
}

// flagsSet returns the names of flags the user set explicitly.
func flagsSet() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// resolveConfig loads the config file when given, defaults otherwise.
func resolveConfig(path string, _ map[string]bool) (*config.SiteConfig, error) {
	if path == "" {
		return config.DefaultSiteConfig(), nil
	}
	return config.LoadSiteConfig(path)
}

// applyFlagOverrides copies explicitly-set flags over the configuration so
// the precedence is flags > config file > defaults.
func applyFlagOverrides(cfg *config.SiteConfig, set map[string]bool, v flagValues) {
	strPtr := func(s string) *string { return &s }
	floatPtr := func(f float64) *float64 { return &f }

	if set["site"] {
		cfg.Site = strPtr(v.site)
	}
	if set["quantiles"] {
		if qs, err := parseCSVFloatSlice(v.quantiles); err == nil {
			cfg.Quantiles = qs
		} else {
			log.Fatalf("invalid -quantiles: %v", err)
		}
	}
	if set["v-corr"] {
		cfg.VCorr = floatPtr(v.vCorr)
	}
	if set["z0"] {
		cfg.Z0 = floatPtr(v.z0)
	}
	if set["h-ref"] {
		cfg.HRef = floatPtr(v.hRef)
	}
	if set["h-a"] {
		cfg.HA = floatPtr(v.hA)
	}
	if set["angle-mode"] {
		cfg.AngleMode = strPtr(v.angleMode)
	}
	if set["units"] {
		cfg.Units = strPtr(v.units)
	}
	if set["velocity-units"] {
		cfg.VelocityUnits = strPtr(v.velocityUnits)
	}
	if set["cross-section"] {
		cfg.CrossSectionFile = strPtr(v.section)
	}
	if set["velocity"] {
		cfg.VelocityFile = strPtr(v.velocity)
	}
	if set["db"] {
		cfg.Database = strPtr(v.db)
	}
	if set["report"] {
		cfg.ReportFile = strPtr(v.report)
	}
	if set["plot"] {
		cfg.PlotFile = strPtr(v.plot)
	}
}

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
