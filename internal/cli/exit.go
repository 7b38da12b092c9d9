// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/odsynth/geo"
	"github.com/katalvlaran/odsynth/gravity"
	"github.com/katalvlaran/odsynth/perturb"
	"github.com/katalvlaran/odsynth/tntp"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitGeneric = 1
	ExitInput   = 2 // bad flags, config or parameters
	ExitIO      = 3
	ExitFormat  = 4
)

// ErrUsage marks errors caused by how the command was invoked.
var ErrUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

var inputErrors = []error{
	ErrUsage,
	gravity.ErrInputValidation,
	perturb.ErrInvalidDistribution,
	perturb.ErrUnknownNode,
	perturb.ErrNoGeography,
	geo.ErrBadProportion,
	geo.ErrBadRegion,
	geo.ErrUnknownMode,
	geo.ErrEmptyTable,
}

// ExitCode maps an error to its exit code. Format violations are checked
// before I/O failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, tntp.ErrFormatViolation):
		return ExitFormat
	case errors.Is(err, tntp.ErrIO):
		return ExitIO
	}
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return ExitInput
		}
	}
	return ExitGeneric
}
