// Package regions resolves spatial selections: the fixed SREX named-region
// catalog, custom corner files, and the land/sea mask.
package regions

import (
	"fmt"
	"sort"

	"github.com/ctessum/geom"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// NamedRegion is one entry of the SREX catalog: an integer code, the
// abbreviation used in requests and filenames, and the region outline in
// lon/lat degrees.
type NamedRegion struct {
	Code    int
	Abbrev  string
	Name    string
	Outline geom.Polygon
}

// Catalog is the fixed named-region database. It is immutable after
// construction and safe to share across concurrent calls.
type Catalog struct {
	regions  []NamedRegion
	byAbbrev map[string]int
}

// NewCatalog builds a catalog from region definitions.
func NewCatalog(regions []NamedRegion) *Catalog {
	c := &Catalog{regions: regions, byAbbrev: make(map[string]int, len(regions))}
	for i, r := range regions {
		c.byAbbrev[r.Abbrev] = i
	}
	return c
}

// DefaultCatalog returns the SREX climate-region catalog (Seneviratne et
// al. 2012, Appendix 3.A corner coordinates).
func DefaultCatalog() *Catalog { return NewCatalog(srexRegions) }

// Has reports whether abbrev names a catalog region.
func (c *Catalog) Has(abbrev string) bool {
	_, ok := c.byAbbrev[abbrev]
	return ok
}

// Abbrevs lists the catalog abbreviations, sorted.
func (c *Catalog) Abbrevs() []string {
	out := make([]string, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r.Abbrev)
	}
	sort.Strings(out)
	return out
}

// Regions returns the catalog entries in code order.
func (c *Catalog) Regions() []NamedRegion { return c.regions }

// Codes resolves the requested region names to their integer codes.
func (c *Catalog) Codes(names []string) ([]int, error) {
	codes := make([]int, len(names))
	for i, name := range names {
		idx, ok := c.byAbbrev[name]
		if !ok {
			return nil, fmt.Errorf("%q is not a catalog region", name)
		}
		codes[i] = c.regions[idx].Code
	}
	return codes, nil
}

// UnionMask resolves the requested regions to a per-cell keep mask on the
// given grid. A cell is kept iff it is covered by exactly one of the
// requested regions, which prevents double counting along shared region
// boundaries.
func (c *Catalog) UnionMask(lat, lon []float64, names []string) ([]bool, error) {
	idxs := make([]int, len(names))
	for i, name := range names {
		idx, ok := c.byAbbrev[name]
		if !ok {
			return nil, fmt.Errorf("%q is not a catalog region", name)
		}
		idxs[i] = idx
	}
	keep := make([]bool, len(lat)*len(lon))
	for j, y := range lat {
		for i, x := range lon {
			pt := geom.Point{X: x, Y: y}
			covered := 0
			for _, idx := range idxs {
				if pt.Within(c.regions[idx].Outline) != geom.Outside {
					covered++
				}
			}
			keep[j*len(lon)+i] = covered == 1
		}
	}
	return keep, nil
}

// CodeGrid rasterizes the whole catalog onto the fixed diagnostic grid:
// one integer code per cell, 0 where no region covers the cell. Cells on a
// shared boundary get the lowest covering code.
func (c *Catalog) CodeGrid() []int {
	lat, lon := domain.FixedLats(), domain.FixedLons()
	out := make([]int, len(lat)*len(lon))
	for j, y := range lat {
		for i, x := range lon {
			pt := geom.Point{X: x, Y: y}
			for _, r := range c.regions {
				if pt.Within(r.Outline) != geom.Outside {
					out[j*len(lon)+i] = r.Code
					break
				}
			}
		}
	}
	return out
}

func poly(pts ...[2]float64) geom.Polygon {
	path := make([]geom.Point, len(pts))
	for i, p := range pts {
		path[i] = geom.Point{X: p[0], Y: p[1]}
	}
	return geom.Polygon{path}
}

// srexRegions lists the 26 SREX regions with corner coordinates in
// lon/lat degrees, numbered in report order.
var srexRegions = []NamedRegion{
	{1, "ALA", "Alaska/N.W. Canada", poly([2]float64{-105, 60}, [2]float64{-168, 60}, [2]float64{-168, 72.6}, [2]float64{-105, 72.6})},
	{2, "CGI", "Canada/Greenland/Iceland", poly([2]float64{-10, 50}, [2]float64{-105, 50}, [2]float64{-105, 85}, [2]float64{-10, 85})},
	{3, "WNA", "W. North America", poly([2]float64{-105, 28.6}, [2]float64{-130, 28.6}, [2]float64{-130, 60}, [2]float64{-105, 60})},
	{4, "CNA", "C. North America", poly([2]float64{-85, 50}, [2]float64{-85, 28.6}, [2]float64{-105, 28.6}, [2]float64{-105, 50})},
	{5, "ENA", "E. North America", poly([2]float64{-60, 25}, [2]float64{-85, 25}, [2]float64{-85, 50}, [2]float64{-60, 50})},
	{6, "CAM", "Central America/Mexico", poly([2]float64{-68.8, 11.4}, [2]float64{-79.7, -1.2}, [2]float64{-118.3, 28.6}, [2]float64{-90.3, 28.6})},
	{7, "AMZ", "Amazon", poly([2]float64{-66.4, -20}, [2]float64{-79.7, -1.2}, [2]float64{-68.8, 11.4}, [2]float64{-50, 11.4}, [2]float64{-50, -20})},
	{8, "NEB", "N.E. Brazil", poly([2]float64{-34, -20}, [2]float64{-50, -20}, [2]float64{-50, 0}, [2]float64{-34, 0})},
	{9, "WSA", "W. Coast South America", poly([2]float64{-82.2, -1.2}, [2]float64{-66.4, -20}, [2]float64{-72.1, -50}, [2]float64{-67.3, -56.7}, [2]float64{-82.2, -56.7})},
	{10, "SSA", "S.E. South America", poly([2]float64{-39.4, -20}, [2]float64{-66.4, -20}, [2]float64{-72.1, -50}, [2]float64{-67.3, -56.7}, [2]float64{-39.4, -56.7})},
	{11, "NEU", "N. Europe", poly([2]float64{-10, 48}, [2]float64{-10, 75}, [2]float64{40, 75}, [2]float64{40, 61.3})},
	{12, "CEU", "C. Europe", poly([2]float64{-10, 45}, [2]float64{-10, 48}, [2]float64{40, 61.3}, [2]float64{40, 45})},
	{13, "MED", "S. Europe/Mediterranean", poly([2]float64{-10, 30}, [2]float64{-10, 45}, [2]float64{40, 45}, [2]float64{40, 30})},
	{14, "SAH", "Sahara", poly([2]float64{-20, 15}, [2]float64{-20, 30}, [2]float64{40, 30}, [2]float64{40, 15})},
	{15, "WAF", "W. Africa", poly([2]float64{-20, -11.4}, [2]float64{-20, 15}, [2]float64{25, 15}, [2]float64{25, -11.4})},
	{16, "EAF", "E. Africa", poly([2]float64{25, -11.4}, [2]float64{25, 15}, [2]float64{51.8, 15}, [2]float64{51.8, -11.4})},
	{17, "SAF", "Southern Africa", poly([2]float64{-10, -35}, [2]float64{-10, -11.4}, [2]float64{51.8, -11.4}, [2]float64{51.8, -35})},
	{18, "NAS", "N. Asia", poly([2]float64{40, 50}, [2]float64{40, 70}, [2]float64{180, 70}, [2]float64{180, 50})},
	{19, "WAS", "W. Asia", poly([2]float64{40, 15}, [2]float64{40, 50}, [2]float64{60, 50}, [2]float64{60, 15})},
	{20, "CAS", "C. Asia", poly([2]float64{60, 30}, [2]float64{60, 50}, [2]float64{75, 50}, [2]float64{75, 30})},
	{21, "TIB", "Tibetan Plateau", poly([2]float64{75, 30}, [2]float64{75, 50}, [2]float64{100, 50}, [2]float64{100, 30})},
	{22, "EAS", "E. Asia", poly([2]float64{100, 20}, [2]float64{100, 50}, [2]float64{145, 50}, [2]float64{145, 20})},
	{23, "SAS", "S. Asia", poly([2]float64{60, 5}, [2]float64{60, 30}, [2]float64{100, 30}, [2]float64{100, 20}, [2]float64{95, 20}, [2]float64{95, 5})},
	{24, "SEA", "S.E. Asia", poly([2]float64{95, -10}, [2]float64{95, 20}, [2]float64{155, 20}, [2]float64{155, -10})},
	{25, "NAU", "N. Australia", poly([2]float64{110, -30}, [2]float64{110, -10}, [2]float64{155, -10}, [2]float64{155, -30})},
	{26, "SAU", "S. Australia/New Zealand", poly([2]float64{110, -50}, [2]float64{110, -30}, [2]float64{180, -30}, [2]float64{180, -50})},
}
