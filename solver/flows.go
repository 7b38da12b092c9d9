// SPDX-License-Identifier: MIT

// Package solver drives an external traffic-assignment program over TNTP
// inputs and reads back its per-link flow log.
//
// The solver itself is a black box: it is invoked as `<binary> <network>
// <demand>` in a working directory and leaves a whitespace-separated link
// log there (two header rows, then `ID (i,j) flow cost derivative`).
package solver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/odsynth/tntp"
)

// HeaderRows is the number of leading log lines that never hold link data.
const HeaderRows = 2

var (
	// ErrSolverFailed marks a solver process that could not start, exited
	// non-zero or ran past its timeout.
	ErrSolverFailed = errors.New("solver: run failed")

	// ErrNoCapacity is returned by WeightedVC when no link in the log has a
	// positive capacity.
	ErrNoCapacity = errors.New("solver: no link capacities")
)

// LinkFlow is one row of the solver log.
type LinkFlow struct {
	ID         int
	Init, Term int
	Flow       float64
	Cost       float64
	Derivative float64
}

// Key is the "(i,j)" identifier shared with tntp.Network.Capacities.
func (l LinkFlow) Key() string { return tntp.LinkKey(l.Init, l.Term) }

// ReadLinkFlows parses a solver link log. Blank lines are skipped; any data
// row without five fields, or with an unparsable field, is a
// *tntp.FormatError.
func ReadLinkFlows(r io.Reader) ([]LinkFlow, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		out  []LinkFlow
		line int
	)
	for sc.Scan() {
		line++
		raw := sc.Text()
		if line <= HeaderRows {
			continue
		}
		f := strings.Fields(raw)
		if len(f) == 0 {
			continue
		}
		lf, reason := parseFlowRow(f)
		if reason != "" {
			return nil, &tntp.FormatError{Line: line, Content: raw, Reason: reason}
		}
		out = append(out, lf)
	}
	if err := sc.Err(); err != nil {
		return nil, &tntp.IOError{Op: "read", Err: err}
	}
	return out, nil
}

func parseFlowRow(f []string) (LinkFlow, string) {
	if len(f) != 5 {
		return LinkFlow{}, fmt.Sprintf("expected 5 columns, got %d", len(f))
	}
	var (
		lf  LinkFlow
		err error
	)
	if lf.ID, err = strconv.Atoi(f[0]); err != nil {
		return LinkFlow{}, fmt.Sprintf("invalid link id %q", f[0])
	}
	if lf.Init, lf.Term, err = parseLinkKey(f[1]); err != nil {
		return LinkFlow{}, err.Error()
	}
	vals := [3]*float64{&lf.Flow, &lf.Cost, &lf.Derivative}
	for k, p := range vals {
		v, err := strconv.ParseFloat(f[2+k], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return LinkFlow{}, fmt.Sprintf("invalid number %q in column %d", f[2+k], 3+k)
		}
		*p = v
	}
	return lf, ""
}

func parseLinkKey(s string) (int, int, error) {
	body, ok := strings.CutPrefix(s, "(")
	if ok {
		body, ok = strings.CutSuffix(body, ")")
	}
	a, b, comma := strings.Cut(body, ",")
	if !ok || !comma {
		return 0, 0, fmt.Errorf("invalid link key %q", s)
	}
	i, err1 := strconv.Atoi(strings.TrimSpace(a))
	j, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("invalid link key %q", s)
	}
	return i, j, nil
}

// ReadLinkFlowsFile opens path and delegates to ReadLinkFlows.
func ReadLinkFlowsFile(path string) ([]LinkFlow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &tntp.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	flows, err := ReadLinkFlows(f)
	if err != nil {
		var fe *tntp.FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		var ie *tntp.IOError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return nil, err
	}
	return flows, nil
}

// TSTT is the total system travel time Σ flow·cost.
func TSTT(flows []LinkFlow) float64 {
	var s float64
	for _, l := range flows {
		s += l.Flow * l.Cost
	}
	return s
}

// TotalFlow is Σ flow over all links.
func TotalFlow(flows []LinkFlow) float64 {
	var s float64
	for _, l := range flows {
		s += l.Flow
	}
	return s
}

// WeightedVC is the mean over links of flow² / (capacity · Σflow).
// Links without a positive capacity in caps are left out of the mean.
// A network with no flow at all scores 0.
func WeightedVC(flows []LinkFlow, caps map[string]float64) (float64, error) {
	total := TotalFlow(flows)
	var (
		sum float64
		n   int
	)
	for _, l := range flows {
		c, ok := caps[l.Key()]
		if !ok || !(c > 0) {
			continue
		}
		n++
		if total > 0 {
			sum += l.Flow * l.Flow / (c * total)
		}
	}
	if n == 0 {
		return 0, ErrNoCapacity
	}
	return sum / float64(n), nil
}
