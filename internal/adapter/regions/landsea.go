package regions

import (
	"fmt"
	"sync"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// LandCode is the mask value marking land cells in the land/sea mask file.
const LandCode = 1

// maskReader loads the mask variable from the mask file.
type maskReader interface {
	Read(path, varn string) (*domain.Field, error)
}

// LandMask answers land/sea lookups from a mask file on the fixed grid.
// The mask is loaded once and shared.
type LandMask struct {
	path   string
	varn   string
	reader maskReader

	once sync.Once
	keep []bool
	err  error
}

// NewLandMask creates a land mask backed by the given mask file and
// variable.
func NewLandMask(reader maskReader, path, varn string) *LandMask {
	return &LandMask{path: path, varn: varn, reader: reader}
}

// Land returns the per-cell land mask for a field whose coordinates lie on
// the fixed grid (possibly cropped to a sub-extent): true where the mask
// value equals the land code.
func (m *LandMask) Land(f *domain.Field) ([]bool, error) {
	m.once.Do(m.load)
	if m.err != nil {
		return nil, m.err
	}
	keep := make([]bool, len(f.Lat)*len(f.Lon))
	for j, lat := range f.Lat {
		gj, err := fixedIndex(lat, domain.LatStart, domain.NLat)
		if err != nil {
			return nil, fmt.Errorf("land mask: %w", err)
		}
		for i, lon := range f.Lon {
			gi, err := fixedIndex(lon, domain.LonStart, domain.NLon)
			if err != nil {
				return nil, fmt.Errorf("land mask: %w", err)
			}
			keep[j*len(f.Lon)+i] = m.keep[gj*domain.NLon+gi]
		}
	}
	return keep, nil
}

// fixedIndex locates a coordinate on the fixed grid axis.
func fixedIndex(coord, start float64, n int) (int, error) {
	i := int((coord-start)/domain.GridStep + 0.5)
	if i < 0 || i >= n {
		return 0, fmt.Errorf("coordinate %g is not on the fixed grid", coord)
	}
	return i, nil
}

func (m *LandMask) load() {
	f, err := m.reader.Read(m.path, m.varn)
	if err != nil {
		m.err = fmt.Errorf("failed to load land/sea mask: %w", err)
		return
	}
	if err := domain.ValidateGrid(f); err != nil {
		m.err = fmt.Errorf("land/sea mask: %w", err)
		return
	}
	nLat, nLon := len(f.Lat), len(f.Lon)
	m.keep = make([]bool, nLat*nLon)
	for j := 0; j < nLat; j++ {
		for i := 0; i < nLon; i++ {
			m.keep[j*nLon+i] = f.Data.Get(j, i) == LandCode
		}
	}
}
