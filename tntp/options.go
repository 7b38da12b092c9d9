// SPDX-License-Identifier: MIT

package tntp

import (
	"github.com/katalvlaran/odsynth/internal/logging"
)

// DefaultPrecision writes the shortest decimal that parses back to the same float64.
const DefaultPrecision = -1

// Option configures readers and writers.
type Option func(*options)

type options struct {
	log       logging.Logger
	precision int
}

func newOptions(opts []Option) options {
	o := options{precision: DefaultPrecision}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = logging.Default().Named("tntp")
	}
	return o
}

// WithLogger routes warnings (missing tags, total mismatches, ignored lines) to l.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPrecision sets the number of decimal places used by the writers.
// A negative value selects DefaultPrecision.
func WithPrecision(p int) Option {
	return func(o *options) {
		if p < 0 {
			p = DefaultPrecision
		}
		o.precision = p
	}
}
