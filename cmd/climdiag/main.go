// Package main provides the climdiag command-line tool for computing
// climate model diagnostics from NetCDF files.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/cache"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/ncio"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regions"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regrid"
	"github.com/harel-coffee/ClimWIP-auto/internal/config"
	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
	"github.com/harel-coffee/ClimWIP-auto/internal/usecase"
)

func main() {
	// Command line flags
	inPath := flag.String("in", "", "Path to input NetCDF file (required)")
	diagnostic := flag.String("diagnostic", "", "Diagnostic name, e.g. tas or rnet (required)")
	constituents := flag.String("constituents", "", "Comma-separated constituent variables for derived diagnostics")
	period := flag.String("period", "", "Time period as start:end, e.g. 1995:2014")
	season := flag.String("season", "ANN", "Season: ANN, DJF, MAM, JJA, or SON")
	agg := flag.String("agg", "CLIM", "Aggregation: CLIM, STD, TREND, CYC, or CORR")
	region := flag.String("region", "GLOBAL", "Region: GLOBAL, comma-separated abbreviations, or a corner-file name")
	maskOcean := flag.Bool("mask-ocean", false, "Mask ocean grid cells using the land/sea mask")
	overwrite := flag.Bool("overwrite", false, "Recompute even if a cached result exists")
	regridFlag := flag.Bool("regrid", false, "Remap the input onto the fixed 2.5 degree grid")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *inPath == "" || *diagnostic == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger, runArgs{
		inPath:       *inPath,
		diagnostic:   *diagnostic,
		constituents: *constituents,
		period:       *period,
		season:       *season,
		agg:          *agg,
		region:       *region,
		maskOcean:    *maskOcean,
		overwrite:    *overwrite,
		regrid:       *regridFlag,
	}); err != nil {
		logger.Error("diagnostic failed", "error", err)
		os.Exit(1)
	}
}

type runArgs struct {
	inPath       string
	diagnostic   string
	constituents string
	period       string
	season       string
	agg          string
	region       string
	maskOcean    bool
	overwrite    bool
	regrid       bool
}

func run(cfg *config.Config, logger *slog.Logger, args runArgs) error {
	seasonVal, err := domain.ParseSeason(args.season)
	if err != nil {
		return err
	}
	aggVal, err := domain.ParseAggregation(args.agg)
	if err != nil {
		return err
	}
	window, err := parsePeriod(args.period)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	grids := ncio.NewStore()
	catalog := regions.DefaultCatalog()
	store := cache.NewStore(cfg.OutputDir)
	land := regions.NewLandMask(grids, cfg.LandMaskPath, cfg.LandMaskVar)
	pipeline := usecase.NewPipeline(grids, regrid.NewRemapper(), catalog, land, store, nil, logger)

	regionVal, err := usecase.ResolveRegionTokens(catalog, cfg.RegionDir, splitList(args.region))
	if err != nil {
		return err
	}

	spec := usecase.DiagnosticSpec{
		Name:         args.diagnostic,
		Constituents: splitList(args.constituents),
	}
	req := usecase.BasicRequest{
		InputPath:   args.inPath,
		Window:      window,
		Season:      seasonVal,
		Aggregation: aggVal,
		Region:      regionVal,
		MaskOcean:   args.maskOcean,
		Overwrite:   args.overwrite,
		Regrid:      args.regrid,
	}

	f, err := pipeline.Compute(spec, req)
	if err != nil {
		return err
	}

	logger.Info("diagnostic computed",
		"name", f.Name,
		"units", f.Units,
		"shape", fmt.Sprint(f.Data.Shape))
	return nil
}

// parsePeriod splits "start:end" into a time window. Empty means the full
// record.
func parsePeriod(s string) (*domain.TimeWindow, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid period %q: expected start:end", s)
	}
	return &domain.TimeWindow{Start: parts[0], End: parts[1]}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
