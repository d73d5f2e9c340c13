package regions

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// Box is the axis-aligned bounding box of a custom region.
type Box struct {
	LonMin, LatMin float64
	LonMax, LatMax float64
}

// LoadCorners reads a custom region file of exactly four lines, each a
// "lon, lat" corner, and returns its bounding box. Corners must lie within
// [-180, 180] longitude and [-90, 90] latitude.
func LoadCorners(path string) (Box, error) {
	file, err := os.Open(path)
	if err != nil {
		return Box{}, fmt.Errorf("%w: %s", domain.ErrUnknownRegionFile, path)
	}
	defer file.Close()

	var lons, lats []float64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitCorner(line)
		if len(fields) != 2 {
			return Box{}, fmt.Errorf("%w: %s must contain four lines with corners like: lon, lat",
				domain.ErrInvalidRegionGeometry, path)
		}
		lon, err1 := strconv.ParseFloat(fields[0], 64)
		lat, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			return Box{}, fmt.Errorf("%w: %s has a non-numeric corner %q",
				domain.ErrInvalidRegionGeometry, path, line)
		}
		lons = append(lons, lon)
		lats = append(lats, lat)
	}
	if err := scanner.Err(); err != nil {
		return Box{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(lons) != 4 {
		return Box{}, fmt.Errorf("%w: %s has %d corners, want 4",
			domain.ErrInvalidRegionGeometry, path, len(lons))
	}

	b := Box{
		LonMin: minOf(lons), LatMin: minOf(lats),
		LonMax: maxOf(lons), LatMax: maxOf(lats),
	}
	if b.LonMin < -180 || b.LonMax > 180 || b.LatMin < -90 || b.LatMax > 90 {
		return Box{}, fmt.Errorf("%w: corner out of range in %s",
			domain.ErrInvalidRegionGeometry, path)
	}
	return b, nil
}

func splitCorner(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func minOf(vals []float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		m = math.Max(m, v)
	}
	return m
}
