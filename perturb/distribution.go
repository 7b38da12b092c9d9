// SPDX-License-Identifier: MIT

package perturb

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution kinds as they appear in configuration and output file names.
const (
	KindNormal  = "normal"
	KindUniform = "uniform"
)

// Distribution is a multiplicative noise law.
type Distribution interface {
	// Kind is "normal" or "uniform".
	Kind() string
	// Validate rejects non-finite or inverted parameters with ErrInvalidDistribution.
	Validate() error
	// Sampler binds the law to a random source.
	Sampler(src rand.Source) distuv.Rander
}

// Normal is Normal(Mean, StdDev) noise.
type Normal struct {
	Mean, StdDev float64
}

// Uniform is Uniform(Low, High) noise.
type Uniform struct {
	Low, High float64
}

// Defaults center the jitter on 1.0.
var (
	DefaultNormal  = Normal{Mean: 1, StdDev: 0.1}
	DefaultUniform = Uniform{Low: 0.9, High: 1.1}
)

func (Normal) Kind() string { return KindNormal }

func (d Normal) Validate() error {
	if !finite(d.Mean) || !finite(d.StdDev) || d.StdDev < 0 {
		return fmt.Errorf("%w: normal(mean=%g, stddev=%g)", ErrInvalidDistribution, d.Mean, d.StdDev)
	}
	return nil
}

func (d Normal) Sampler(src rand.Source) distuv.Rander {
	return distuv.Normal{Mu: d.Mean, Sigma: d.StdDev, Src: src}
}

func (d Normal) String() string { return fmt.Sprintf("normal(%g, %g)", d.Mean, d.StdDev) }

func (Uniform) Kind() string { return KindUniform }

func (d Uniform) Validate() error {
	if !finite(d.Low) || !finite(d.High) || d.Low > d.High {
		return fmt.Errorf("%w: uniform(low=%g, high=%g)", ErrInvalidDistribution, d.Low, d.High)
	}
	return nil
}

func (d Uniform) Sampler(src rand.Source) distuv.Rander {
	return distuv.Uniform{Min: d.Low, Max: d.High, Src: src}
}

func (d Uniform) String() string { return fmt.Sprintf("uniform(%g, %g)", d.Low, d.High) }

// ParseDistribution builds a distribution from its kind and two parameters:
// (mean, stddev) for normal, (low, high) for uniform.
func ParseDistribution(kind string, a, b float64) (Distribution, error) {
	var d Distribution
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindNormal:
		d = Normal{Mean: a, StdDev: b}
	case KindUniform:
		d = Uniform{Low: a, High: b}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidDistribution, kind)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
