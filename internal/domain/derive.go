package domain

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// NetRadiation combines the four surface flux fields into downwelling net
// radiation, (rlds - rlus) + (rsds - rsus), pointwise. All four fields must
// share one shape; missing values propagate.
func NetRadiation(rlds, rlus, rsds, rsus *Field) (*Field, error) {
	for _, f := range []*Field{rlus, rsds, rsus} {
		if !sameShape(rlds.Data.Shape, f.Data.Shape) {
			return nil, fmt.Errorf("%w: net radiation constituents have mismatched shapes",
				ErrInvalidDerivation)
		}
	}
	out := sparse.ZerosDense(rlds.Data.Shape...)
	for i := range out.Elements {
		out.Elements[i] = (rlds.Data.Elements[i] - rlus.Data.Elements[i]) +
			(rsds.Data.Elements[i] - rsus.Data.Elements[i])
	}
	g := rlds.withData(out, rlds.Time)
	g.Name = "rnet"
	g.LongName = "Surface Downwelling Net Radiation"
	g.StandardName = "surface_downwelling_net_flux_in_air"
	return g, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
