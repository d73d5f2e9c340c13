// Package ncio reads and writes diagnostic Fields as NetCDF files,
// preserving coordinate metadata and the per-field attribute bag.
package ncio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	"github.com/fhs/go-netcdf/netcdf"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// Attribute names handled structurally rather than through the opaque
// encoding bag.
var structuralAttrs = map[string]bool{
	"units":         true,
	"long_name":     true,
	"standard_name": true,
	"_FillValue":    true,
	"missing_value": true,
}

// epoch is the reference for written time coordinates.
var epoch = time.Date(1850, time.January, 1, 0, 0, 0, 0, time.UTC)

// Store reads and writes Fields on the local filesystem.
type Store struct{}

// NewStore creates a NetCDF grid store.
func NewStore() *Store { return &Store{} }

// Read loads one variable from a NetCDF file as a Field. The variable may
// be [time, lat, lon] or [lat, lon]; dimension names latitude/longitude are
// accepted as aliases. Fill values are mapped to NaN.
func (s *Store) Read(path, varn string) (*domain.Field, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	lat, err := readCoord(nc, "lat", "latitude", "y")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lon, err := readCoord(nc, "lon", "longitude", "x")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	v, err := nc.Var(varn)
	if err != nil {
		return nil, fmt.Errorf("variable %q not found in %s: %w", varn, path, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %q: %w", varn, err)
	}

	var tax []time.Time
	var shape []int
	switch len(dims) {
	case 2:
		shape = []int{len(lat), len(lon)}
	case 3:
		// Monthly-cycle outputs carry a "month" leading dimension with no
		// time coordinate; everything else is [time, lat, lon].
		name, err := dims[0].Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimensions of %q: %w", varn, err)
		}
		if name == "time" {
			tax, err = readTimeAxis(nc)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			shape = []int{len(tax), len(lat), len(lon)}
		} else {
			n, err := dims[0].Len()
			if err != nil {
				return nil, fmt.Errorf("failed to get dimensions of %q: %w", varn, err)
			}
			shape = []int{int(n), len(lat), len(lon)}
		}
	default:
		return nil, fmt.Errorf("variable %q is %dD, want 2D or 3D", varn, len(dims))
	}

	flat, err := readFloat64s(v, numElements(shape))
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", varn, err)
	}

	f := &domain.Field{
		Name:      varn,
		Time:      tax,
		Lat:       lat,
		Lon:       lon,
		FillValue: domain.DefaultFillValue,
		Encoding:  map[string]string{},
	}
	f.Data = sparse.ZerosDense(shape...)
	copy(f.Data.Elements, flat)

	if fv, ok := fillValue(v); ok {
		f.FillValue = fv
		for i, val := range f.Data.Elements {
			if val == fv {
				f.Data.Elements[i] = math.NaN()
			}
		}
	}
	readAttrs(v, f)
	return f, nil
}

// Write persists a Field, restoring fill values and the encoding bag.
func (s *Store) Write(f *domain.Field, path string) error {
	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	latDim, err := nc.AddDim("lat", uint64(len(f.Lat)))
	if err != nil {
		return err
	}
	lonDim, err := nc.AddDim("lon", uint64(len(f.Lon)))
	if err != nil {
		return err
	}

	varDims := []netcdf.Dim{latDim, lonDim}
	switch {
	case f.HasTime():
		timeDim, err := nc.AddDim("time", uint64(len(f.Time)))
		if err != nil {
			return err
		}
		timeVar, err := nc.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
		if err != nil {
			return err
		}
		if err := writeStringAttr(timeVar, "units", "days since 1850-01-01 00:00:00"); err != nil {
			return err
		}
		if err := writeStringAttr(timeVar, "calendar", "proleptic_gregorian"); err != nil {
			return err
		}
		days := make([]float64, len(f.Time))
		for i, t := range f.Time {
			days[i] = t.Sub(epoch).Hours() / 24
		}
		if err := timeVar.WriteFloat64s(days); err != nil {
			return err
		}
		varDims = []netcdf.Dim{timeDim, latDim, lonDim}
	case len(f.Data.Shape) == 3:
		// Monthly cycle output: leading dimension is calendar month.
		monthDim, err := nc.AddDim("month", uint64(f.Data.Shape[0]))
		if err != nil {
			return err
		}
		varDims = []netcdf.Dim{monthDim, latDim, lonDim}
	}

	latVar, err := nc.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	lonVar, err := nc.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	dataVar, err := nc.AddVar(f.Name, netcdf.DOUBLE, varDims)
	if err != nil {
		return err
	}
	if err := writeAttrs(dataVar, f); err != nil {
		return err
	}

	if err := latVar.WriteFloat64s(f.Lat); err != nil {
		return err
	}
	if err := lonVar.WriteFloat64s(f.Lon); err != nil {
		return err
	}
	out := make([]float64, len(f.Data.Elements))
	for i, v := range f.Data.Elements {
		if math.IsNaN(v) {
			out[i] = f.FillValue
		} else {
			out[i] = v
		}
	}
	return dataVar.WriteFloat64s(out)
}

func readAttrs(v netcdf.Var, f *domain.Field) {
	f.Units, _ = stringAttr(v, "units")
	f.LongName, _ = stringAttr(v, "long_name")
	f.StandardName, _ = stringAttr(v, "standard_name")

	n, err := v.NAttrs()
	if err != nil {
		return
	}
	for i := 0; i < int(n); i++ {
		a, err := v.AttrN(i)
		if err != nil {
			continue
		}
		name := a.Name()
		if structuralAttrs[name] {
			continue
		}
		if s, ok := stringAttr(v, name); ok {
			f.Encoding[name] = s
		}
	}
}

func writeAttrs(v netcdf.Var, f *domain.Field) error {
	if f.Units != "" {
		if err := writeStringAttr(v, "units", f.Units); err != nil {
			return err
		}
	}
	if f.LongName != "" {
		if err := writeStringAttr(v, "long_name", f.LongName); err != nil {
			return err
		}
	}
	if f.StandardName != "" {
		if err := writeStringAttr(v, "standard_name", f.StandardName); err != nil {
			return err
		}
	}
	if err := v.Attr("_FillValue").WriteFloat64s([]float64{f.FillValue}); err != nil {
		return err
	}
	for name, val := range f.Encoding {
		if err := writeStringAttr(v, name, val); err != nil {
			return err
		}
	}
	return nil
}

func writeStringAttr(v netcdf.Var, name, val string) error {
	return v.Attr(name).WriteBytes([]byte(val))
}

func stringAttr(v netcdf.Var, name string) (string, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}

// fillValue returns the _FillValue or missing_value attribute if present.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
	}
	return 0, false
}

// readCoord reads a 1D coordinate variable under any of the given names.
func readCoord(nc netcdf.Dataset, names ...string) ([]float64, error) {
	for _, name := range names {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil || len(dims) != 1 {
			continue
		}
		length, err := dims[0].Len()
		if err != nil {
			continue
		}
		return readFloat64s(v, int(length))
	}
	return nil, fmt.Errorf("coordinate variable not found (tried: %v)", names)
}

// readTimeAxis decodes a CF "units since reference" time coordinate.
func readTimeAxis(nc netcdf.Dataset) ([]time.Time, error) {
	v, err := nc.Var("time")
	if err != nil {
		return nil, fmt.Errorf("time variable not found: %w", err)
	}
	dims, err := v.Dims()
	if err != nil || len(dims) != 1 {
		return nil, fmt.Errorf("time variable must be 1D")
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	vals, err := readFloat64s(v, int(length))
	if err != nil {
		return nil, err
	}
	units, ok := stringAttr(v, "units")
	if !ok {
		return nil, fmt.Errorf("time variable has no units attribute")
	}
	step, ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	tax := make([]time.Time, len(vals))
	for i, val := range vals {
		tax[i] = ref.Add(time.Duration(val * float64(step)))
	}
	return tax, nil
}

// parseTimeUnits handles "days|hours|minutes|seconds since <reference>".
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}
	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "days", "day":
		step = 24 * time.Hour
	case "hours", "hour":
		step = time.Hour
	case "minutes", "minute":
		step = time.Minute
	case "seconds", "second":
		step = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}
	refStr := strings.TrimSpace(parts[1])
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if ref, err := time.Parse(layout, refStr); err == nil {
			return step, ref, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported time reference %q", refStr)
}

func numElements(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// readFloat64s reads a variable of any numeric type as float64.
func readFloat64s(v netcdf.Var, total int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, total)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}
