// SPDX-License-Identifier: MIT

package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// ToGonum returns a gonum *mat.Dense holding a copy of d.
func ToGonum(d *Dense) (*mat.Dense, error) {
	if err := ValidateNotNil(d); err != nil {
		return nil, matrixErrorf("ToGonum", err)
	}
	buf := make([]float64, len(d.data))
	copy(buf, d.data)

	return mat.NewDense(d.r, d.c, buf), nil
}

// FromGonum copies any gonum matrix into a new Dense under the default
// finite-only policy.
func FromGonum(g mat.Matrix) (*Dense, error) {
	if g == nil {
		return nil, matrixErrorf("FromGonum", ErrNilMatrix)
	}
	r, c := g.Dims()
	buf := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			buf[i*c+j] = g.At(i, j)
		}
	}

	return NewDenseFrom(r, c, buf)
}
