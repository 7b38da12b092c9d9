// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/katalvlaran/odsynth/internal/logging"
)

const (
	// DefaultLogFile is the name the solver gives its link log.
	DefaultLogFile = "full_log.txt"
	// DefaultTimeout bounds a single solver run.
	DefaultTimeout = 10 * time.Minute

	maxLoggedOutput = 4096
)

// Runner launches the solver binary. The zero value is not usable; Binary
// must be set.
type Runner struct {
	Binary  string        // path or name looked up in PATH
	Dir     string        // working directory; "" is the current one
	LogFile string        // link log written by the solver, relative to Dir
	Timeout time.Duration // ≤ 0 means DefaultTimeout
	Log     logging.Logger
}

// LogPath is where Run expects the link log to appear.
func (r *Runner) LogPath() string {
	name := r.LogFile
	if name == "" {
		name = DefaultLogFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.Dir, name)
}

// Run executes `<Binary> <networkFile> <demandFile>` and returns the path of
// the link log. Solver output is kept out of the way: it is logged at debug
// level only. Any failure, including ctx expiry, wraps ErrSolverFailed.
func (r *Runner) Run(ctx context.Context, networkFile, demandFile string) (string, error) {
	if r.Binary == "" {
		return "", fmt.Errorf("%w: no solver binary configured", ErrSolverFailed)
	}
	log := r.Log
	if log == nil {
		log = logging.Default().Named("solver")
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := r.Binary
	if r.Dir != "" {
		// The child resolves relative paths against Dir, not our cwd.
		var err error
		if networkFile, err = filepath.Abs(networkFile); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSolverFailed, err)
		}
		if demandFile, err = filepath.Abs(demandFile); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSolverFailed, err)
		}
		if strings.ContainsRune(bin, filepath.Separator) {
			if bin, err = filepath.Abs(bin); err != nil {
				return "", fmt.Errorf("%w: %v", ErrSolverFailed, err)
			}
		}
	}
	cmd := exec.CommandContext(ctx, bin, networkFile, demandFile)
	cmd.Dir = r.Dir

	start := time.Now()
	out, err := cmd.CombinedOutput()
	elapsed := time.Since(start)
	if len(out) > 0 {
		s := string(out)
		if len(s) > maxLoggedOutput {
			s = s[len(s)-maxLoggedOutput:]
		}
		log.Debug("solver output", logging.String("output", strings.TrimSpace(s)))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		log.Error("solver failed",
			logging.String("binary", r.Binary),
			logging.Duration("elapsed", elapsed),
			logging.Err(err))
		return "", fmt.Errorf("%w: %s: %v", ErrSolverFailed, r.Binary, err)
	}

	log.Info("solver finished",
		logging.String("network", networkFile),
		logging.String("demand", demandFile),
		logging.Duration("elapsed", elapsed))
	return r.LogPath(), nil
}
