package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// DiagnosticSpec names the requested diagnostic. A bare variable name is a
// basic diagnostic; a name with constituents is a derived one.
type DiagnosticSpec struct {
	Name         string
	Constituents []string
}

// BasicSpec requests a basic diagnostic.
func BasicSpec(varn string) DiagnosticSpec { return DiagnosticSpec{Name: varn} }

// DerivedSpec requests a derived diagnostic built from basic constituents.
func DerivedSpec(name string, constituents ...string) DiagnosticSpec {
	return DiagnosticSpec{Name: name, Constituents: constituents}
}

// netRadiationConstituents is the fixed constituent order of rnet.
var netRadiationConstituents = [4]string{"rlds", "rlus", "rsds", "rsus"}

// Compute resolves a diagnostic spec and runs the matching derivation. A
// basic spec delegates straight to ComputeBasic; "rnet" combines the four
// flux constituents upstream of the standard pipeline; two distinct
// constituents under CORR correlate two basic diagnostics. Anything else is
// a hard ErrInvalidDerivation: unknown derivations must not silently
// degrade.
func (p *Pipeline) Compute(spec DiagnosticSpec, req BasicRequest) (*domain.Field, error) {
	if len(spec.Constituents) == 0 {
		req.Variable = spec.Name
		return p.ComputeBasic(req)
	}
	if spec.Name == "rnet" {
		return p.computeNetRadiation(spec, req)
	}
	if req.Aggregation == domain.AggCorr {
		return p.computeCorrelation(spec, req)
	}
	return nil, fmt.Errorf("%w: no derivation for %q with aggregation %q",
		domain.ErrInvalidDerivation, spec.Name, req.Aggregation.Key())
}

// computeNetRadiation derives rnet once, upstream of all region/season/
// aggregation logic, persists it as a temporary basic input, and then runs
// the standard pipeline on it like any other variable.
func (p *Pipeline) computeNetRadiation(spec DiagnosticSpec, req BasicRequest) (*domain.Field, error) {
	if len(spec.Constituents) != len(netRadiationConstituents) {
		return nil, fmt.Errorf("%w: rnet needs constituents %v, got %v",
			domain.ErrInvalidDerivation, netRadiationConstituents, spec.Constituents)
	}
	for i, want := range netRadiationConstituents {
		if spec.Constituents[i] != want {
			return nil, fmt.Errorf("%w: rnet needs constituents %v, got %v",
				domain.ErrInvalidDerivation, netRadiationConstituents, spec.Constituents)
		}
	}

	fields := make([]*domain.Field, len(spec.Constituents))
	for i, varn := range spec.Constituents {
		path := req.InputPath
		if i > 0 {
			var err error
			if path, err = p.resolve(req.InputPath, spec.Constituents[0], varn); err != nil {
				return nil, err
			}
		}
		f, err := p.grids.Read(path, varn)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	rnet, err := domain.NetRadiation(fields[0], fields[1], fields[2], fields[3])
	if err != nil {
		return nil, err
	}

	tmpName := strings.Replace(filepath.Base(req.InputPath), spec.Constituents[0], spec.Name, 1)
	tmpPath := p.store.PathFor(tmpName)
	if err := p.store.Write(tmpPath, func(tmp string) error {
		return p.grids.Write(rnet, tmp)
	}); err != nil {
		return nil, err
	}

	req.InputPath = tmpPath
	req.Variable = spec.Name
	return p.ComputeBasic(req)
}

// computeCorrelation runs the basic pipeline for both constituents and
// correlates the two still time-resolved results per cell.
func (p *Pipeline) computeCorrelation(spec DiagnosticSpec, req BasicRequest) (*domain.Field, error) {
	if len(spec.Constituents) != 2 {
		return nil, fmt.Errorf("%w: can only correlate two variables, got %d",
			domain.ErrInvalidDerivation, len(spec.Constituents))
	}
	if spec.Constituents[0] == spec.Constituents[1] {
		return nil, fmt.Errorf("%w: can not correlate %q with itself",
			domain.ErrInvalidDerivation, spec.Constituents[0])
	}

	req1 := req
	req1.Variable = spec.Constituents[0]
	f1, err := p.ComputeBasic(req1)
	if err != nil {
		return nil, err
	}

	infile2, err := p.resolve(req.InputPath, spec.Constituents[0], spec.Constituents[1])
	if err != nil {
		return nil, err
	}
	req2 := req
	req2.InputPath = infile2
	req2.Variable = spec.Constituents[1]
	f2, err := p.ComputeBasic(req2)
	if err != nil {
		return nil, err
	}

	corr, err := domain.Correlate(f1, f2)
	if err != nil {
		return nil, err
	}
	corr.Name = spec.Name
	corr.LongName = fmt.Sprintf("correlation of %s and %s", spec.Constituents[0], spec.Constituents[1])

	// Reuse the first constituent's name template with the diagnostic name
	// substituted in.
	outName := strings.Replace(req1.cacheKey().Filename(),
		spec.Constituents[0]+"_", spec.Name+"_", 1)
	outPath := p.store.PathFor(outName)
	if err := p.store.Write(outPath, func(tmp string) error {
		return p.grids.Write(corr, tmp)
	}); err != nil {
		return nil, err
	}
	return corr, nil
}
