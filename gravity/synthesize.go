// SPDX-License-Identifier: MIT

package gravity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/matrix"
	"github.com/katalvlaran/odsynth/tntp"
)

const (
	// DefaultMaxIterations caps the number of matrix evaluations.
	DefaultMaxIterations = 1000
	// DefaultTolerance is the absolute column-sum tolerance.
	DefaultTolerance = 1e-8
)

// Result is the outcome of Synthesize. A run that hits the cap is not an
// error: Converged is false and Residual tells how far off the columns are.
type Result struct {
	Matrix     *tntp.DemandMatrix
	Factors    []float64 // balancing factors after the last update
	Iterations int       // matrix evaluations performed, ≤ MaxIterations
	Residual   float64   // max_j |colsum(M)_j − E_j| of the returned matrix
	Converged  bool
}

// Option configures Synthesize.
type Option func(*config)

type config struct {
	maxIter int
	tol     float64
	log     logging.Logger
}

// WithMaxIterations sets the evaluation cap; values < 1 keep the default.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.maxIter = n
		}
	}
}

// WithTolerance sets the absolute column-sum tolerance; negative or NaN values keep the default.
func WithTolerance(atol float64) Option {
	return func(c *config) {
		if atol >= 0 && !math.IsInf(atol, 0) {
			c.tol = atol
		}
	}
}

// WithLogger sets the logger for progress and exhaustion reports.
func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Synthesize builds the friction matrix from params and balances
// M = A·outer(S,E)⊙LInv⊙F by IPF.
//
// Each evaluation: scale column j of S⊗E⊙LInv⊙F by A[j], divide row i by
// D[i] = Σ_j A[j]·E[j]·LInv[i][j]·F[i][j] (rows with D[i] = 0 stay zero),
// then A[j] *= E[j]/colsum[j] (zero columns keep their factor). The loop
// stops once every |colsum[j] − E[j]| ≤ tolerance or after MaxIterations
// evaluations.
//
// Errors: ErrParamCount / ErrNonPositiveParam / ErrShape / ErrNegativeInput,
// all wrapping ErrInputValidation, before any matrix is built.
func Synthesize(p Parameters, params []float64, opts ...Option) (*Result, error) {
	cfg := config{maxIter: DefaultMaxIterations, tol: DefaultTolerance}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.log == nil {
		cfg.log = logging.Default().Named("gravity")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := p.N()
	if err := ValidateParams(n, params); err != nil {
		return nil, err
	}
	friction, err := UnpackFriction(n, params)
	if err != nil {
		return nil, err
	}

	// w = LInv ⊙ F, base = outer(S, E) ⊙ w.
	wd, err := matrix.Hadamard(p.LInv, friction)
	if err != nil {
		return nil, fmt.Errorf("gravity: impedance term: %w", err)
	}
	bd := wd.Copy()
	if err = matrix.ScaleRowsInPlace(bd, p.S); err != nil {
		return nil, fmt.Errorf("gravity: productions: %w", err)
	}
	if err = matrix.ScaleColsInPlace(bd, p.E); err != nil {
		return nil, fmt.Errorf("gravity: attractions: %w", err)
	}
	w, err := matrix.ToGonum(wd)
	if err != nil {
		return nil, err
	}
	base, err := matrix.ToGonum(bd)
	if err != nil {
		return nil, err
	}

	var (
		factors = make([]float64, n)
		ae      = mat.NewVecDense(n, nil)
		denom   = mat.NewVecDense(n, nil)
		m       = mat.NewDense(n, n, nil)
		colsum  = make([]float64, n)
		diff    = make([]float64, n)
		res     = &Result{}
	)
	floats.AddConst(1, factors)

	for it := 1; it <= cfg.maxIter; it++ {
		evaluate(m, base, w, factors, p.E, ae, denom, colsum)
		res.Iterations = it

		floats.SubTo(diff, colsum, p.E)
		res.Residual = floats.Norm(diff, math.Inf(1))
		res.Converged, _ = matrix.VecAllClose(colsum, p.E, 0, cfg.tol)

		for j := range factors {
			if colsum[j] > 0 {
				factors[j] *= p.E[j] / colsum[j]
			}
		}
		if res.Converged {
			break
		}
	}

	dense, err := matrix.FromGonum(m)
	if err != nil {
		return nil, fmt.Errorf("gravity: collect matrix: %w", err)
	}
	if _, err = matrix.ClampMinInPlace(dense, 0); err != nil {
		return nil, err
	}
	res.Matrix, err = tntp.DemandFromDense(dense)
	if err != nil {
		return nil, err
	}
	res.Matrix.Metadata.Tags[tntp.TagNumberOfZones] = fmt.Sprint(n)
	res.Matrix.Metadata.Tags[tntp.TagTotalODFlow] = tntp.FormatValue(res.Matrix.Total(), tntp.DefaultPrecision)
	res.Factors = factors

	fields := []logging.Field{
		logging.Int("zones", n),
		logging.Int("iterations", res.Iterations),
		logging.Float64("residual", res.Residual),
	}
	if res.Converged {
		cfg.log.Info("gravity model converged", fields...)
	} else {
		cfg.log.Warn("gravity model hit the iteration cap", append(fields, logging.Int("cap", cfg.maxIter))...)
	}
	return res, nil
}

// evaluate writes one IPF matrix into m and its column sums into colsum.
func evaluate(m, base, w *mat.Dense, factors, e []float64, ae, denom *mat.VecDense, colsum []float64) {
	n := len(factors)
	for j := 0; j < n; j++ {
		ae.SetVec(j, factors[j]*e[j])
	}
	denom.MulVec(w, ae) // D_i = Σ_j w_ij·A_j·E_j

	for j := range colsum {
		colsum[j] = 0
	}
	for i := 0; i < n; i++ {
		row := m.RawRowView(i)
		d := denom.AtVec(i)
		if d <= 0 {
			for j := range row {
				row[j] = 0
			}
			continue
		}
		floats.MulTo(row, base.RawRowView(i), factors)
		floats.Scale(1/d, row)
		floats.Add(colsum, row)
	}
}
