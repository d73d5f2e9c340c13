// Package usecase orchestrates diagnostic computation: the basic pipeline
// (validate, standardize units, select, reduce, persist) and the derived
// dispatcher on top of it.
package usecase

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/cache"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regions"
	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// GridStore reads and writes labeled fields, preserving attributes and the
// encoding bag.
type GridStore interface {
	Read(path, varn string) (*domain.Field, error)
	Write(f *domain.Field, path string) error
}

// Regridder remaps a field onto the fixed global grid in float64 precision.
type Regridder interface {
	Remap(f *domain.Field) (*domain.Field, error)
}

// RegionCatalog resolves named regions to per-cell masks.
type RegionCatalog interface {
	Has(name string) bool
	UnionMask(lat, lon []float64, names []string) ([]bool, error)
}

// LandMasker resolves the land/sea mask for a field.
type LandMasker interface {
	Land(f *domain.Field) ([]bool, error)
}

// BasicRequest carries the parameters of one basic diagnostic computation.
type BasicRequest struct {
	InputPath   string
	Variable    string
	Window      *domain.TimeWindow
	Season      domain.Season
	Aggregation domain.Aggregation
	Region      domain.Region
	MaskOcean   bool
	Overwrite   bool
	Regrid      bool
}

func (r BasicRequest) cacheKey() cache.Key {
	return cache.Key{
		Input:       cache.InputIdentity(r.InputPath),
		Window:      r.Window,
		Season:      r.Season,
		Aggregation: r.Aggregation,
		Region:      r.Region,
		MaskOcean:   r.MaskOcean,
	}
}

// Pipeline computes diagnostics. It is fail-fast: any component error
// propagates to the caller unhandled, because a partial diagnostic is
// scientifically worse than none.
type Pipeline struct {
	grids   GridStore
	regrid  Regridder
	catalog RegionCatalog
	land    LandMasker
	store   *cache.Store
	resolve CompanionPathResolver
	logger  *slog.Logger
}

// NewPipeline wires a pipeline from its collaborators. A nil resolver
// selects the default substitution strategy.
func NewPipeline(grids GridStore, regrid Regridder, catalog RegionCatalog,
	land LandMasker, store *cache.Store, resolve CompanionPathResolver,
	logger *slog.Logger) *Pipeline {
	if resolve == nil {
		resolve = SubstitutionResolver
	}
	return &Pipeline{
		grids:   grids,
		regrid:  regrid,
		catalog: catalog,
		land:    land,
		store:   store,
		resolve: resolve,
		logger:  logger,
	}
}

// Store exposes the diagnostic store, for callers that need output paths.
func (p *Pipeline) Store() *cache.Store { return p.store }

// ComputeBasic runs the basic diagnostic pipeline for one variable. An
// existing result for the same key is returned as-is unless Overwrite is
// set; the key encodes every result-affecting parameter.
func (p *Pipeline) ComputeBasic(req BasicRequest) (*domain.Field, error) {
	key := req.cacheKey()
	outPath := p.store.Path(key)
	if !req.Overwrite && p.store.Exists(key) {
		p.logger.Debug("diagnostic already exists, skipping", "path", outPath)
		return p.grids.Read(outPath, req.Variable)
	}

	f, err := p.grids.Read(req.InputPath, req.Variable)
	if err != nil {
		return nil, err
	}
	if req.Regrid {
		if f, err = p.regrid.Remap(f); err != nil {
			return nil, err
		}
	}
	if err := domain.ValidateGrid(f); err != nil {
		return nil, err
	}
	if err := domain.StandardizeUnits(f, req.Variable, p.logger); err != nil {
		return nil, err
	}
	if f, err = p.sel(f, req); err != nil {
		return nil, err
	}
	g, err := domain.Aggregate(f, req.Aggregation)
	if err != nil {
		return nil, err
	}
	g.Name = req.Variable

	if err := p.store.Write(outPath, func(tmp string) error {
		return p.grids.Write(g, tmp)
	}); err != nil {
		return nil, err
	}
	return g, nil
}

// sel applies the selection stages in fixed order: time window, season,
// region, ocean mask.
func (p *Pipeline) sel(f *domain.Field, req BasicRequest) (*domain.Field, error) {
	f, err := domain.SelectTimeWindow(f, req.Window)
	if err != nil {
		return nil, err
	}
	f, err = domain.SelectSeason(f, req.Season)
	if err != nil {
		return nil, err
	}

	switch req.Region.Kind {
	case domain.RegionGlobal:
	case domain.RegionNamed:
		keep, err := p.catalog.UnionMask(f.Lat, f.Lon, req.Region.Names)
		if err != nil {
			return nil, err
		}
		if f, err = domain.MaskCells(f, keep); err != nil {
			return nil, err
		}
	case domain.RegionCustomBox:
		box, err := regions.LoadCorners(req.Region.CornerFile)
		if err != nil {
			return nil, err
		}
		if f, err = domain.CropToBox(f, box.LonMin, box.LatMin, box.LonMax, box.LatMax, 1); err != nil {
			return nil, err
		}
	}
	if req.Region.Kind != domain.RegionGlobal && domain.FirstSliceAllMissing(f) {
		p.logger.Error("all grid points masked, wrong masking settings?",
			"region", req.Region.Key())
		return nil, fmt.Errorf("%w: region %s", domain.ErrEmptyRegion, req.Region.Key())
	}

	if req.MaskOcean {
		keep, err := p.land.Land(f)
		if err != nil {
			return nil, err
		}
		if f, err = domain.MaskCells(f, keep); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ResolveRegionTokens maps request region tokens onto a Region variant the
// way requests spell them: "GLOBAL" (or nothing) selects the whole grid;
// tokens that are all catalog abbreviations select a named union; a single
// unknown token names a corner file in regionDir.
func ResolveRegionTokens(catalog RegionCatalog, regionDir string, tokens []string) (domain.Region, error) {
	if len(tokens) == 0 || (len(tokens) == 1 && tokens[0] == "GLOBAL") {
		return domain.GlobalRegion(), nil
	}
	allNamed := true
	for _, tok := range tokens {
		if !catalog.Has(tok) {
			allNamed = false
		}
	}
	if allNamed {
		return domain.NamedRegions(tokens...), nil
	}
	if len(tokens) == 1 {
		return domain.CustomBoxRegion(filepath.Join(regionDir, tokens[0]+".txt")), nil
	}
	return domain.Region{}, fmt.Errorf("%w: %s mixes catalog regions with unknown names",
		domain.ErrUnknownRegionFile, strings.Join(tokens, ","))
}
