package domain

import (
	"path/filepath"
	"strings"
)

// RegionKind distinguishes the three region selection variants. Named
// regions keep the global grid extent with missing fill; custom corner boxes
// crop the extent to the box plus a one-cell margin. The two variants have
// deliberately different post-conditions and are never unified silently.
type RegionKind int

const (
	// RegionGlobal applies no spatial selection.
	RegionGlobal RegionKind = iota
	// RegionNamed selects the union of catalog regions; a cell is kept iff
	// it is covered by exactly one of the requested regions.
	RegionNamed
	// RegionCustomBox selects the axis-aligned bounding box of four corner
	// points read from a side file, cropping the grid extent.
	RegionCustomBox
)

// Region is the spatial selection of a diagnostic request.
type Region struct {
	Kind       RegionKind
	Names      []string // RegionNamed
	CornerFile string   // RegionCustomBox
}

// GlobalRegion selects the whole grid.
func GlobalRegion() Region { return Region{Kind: RegionGlobal} }

// NamedRegions selects the union of catalog regions.
func NamedRegions(names ...string) Region {
	return Region{Kind: RegionNamed, Names: names}
}

// CustomBoxRegion selects the bounding box described by a corner file.
func CustomBoxRegion(path string) Region {
	return Region{Kind: RegionCustomBox, CornerFile: path}
}

// Key renders the region for output file naming: "GLOBAL", the joined
// region abbreviations, or the corner file base name.
func (r Region) Key() string {
	switch r.Kind {
	case RegionNamed:
		return strings.Join(r.Names, "-")
	case RegionCustomBox:
		base := filepath.Base(r.CornerFile)
		return strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return "GLOBAL"
	}
}
