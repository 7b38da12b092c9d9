// SPDX-License-Identifier: MIT

package tntp

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/odsynth/internal/logging"
)

// demandState is the position of the demand scanner inside the file.
type demandState int

const (
	stateMetadata demandState = iota
	stateAwaitOrigin
	stateDestinations
)

func (s demandState) String() string {
	switch s {
	case stateMetadata:
		return "metadata"
	case stateAwaitOrigin:
		return "await-origin"
	case stateDestinations:
		return "destinations"
	default:
		return fmt.Sprintf("demandState(%d)", int(s))
	}
}

const (
	originKeyword = "Origin"
	colon         = ":"
	semicolon     = ";"
	tokensPerItem = 4 // dest ':' value ';'
	totalRelTol   = 1e-6
)

type odEntry struct {
	orig, dest int
	v          float64
}

type demandScanner struct {
	state    demandState
	md       Metadata
	numZones int // 0 while unknown
	origin   int
	maxID    int
	entries  []odEntry
	log      logging.Logger
}

// ReadDemand parses a TNTP demand matrix from r.
//
// Errors: *FormatError (ErrFormatViolation) on the first malformed line,
// *IOError (ErrIO) when r fails. No partial matrix is returned.
// Warnings (missing tags, total mismatch, no END OF METADATA) are logged and
// stored in DemandMatrix.Warnings.
func ReadDemand(r io.Reader, opts ...Option) (*DemandMatrix, error) {
	o := newOptions(opts)
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	sc := &demandScanner{
		state: stateMetadata,
		md:    Metadata{Tags: make(map[string]string), EndLine: -1},
		log:   o.log,
	}
	for idx, raw := range lines {
		if err = sc.step(idx, raw); err != nil {
			return nil, err
		}
	}

	return sc.finish(len(lines))
}

// ReadDemandFile opens path and delegates to ReadDemand.
func ReadDemandFile(path string, opts ...Option) (*DemandMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	o := newOptions(opts)
	m, err := ReadDemand(f, append(opts, WithLogger(o.log.With(logging.String("file", path))))...)
	if err != nil {
		return nil, withPath(err, path)
	}
	return m, nil
}

// step advances the state machine by one physical line (0-based idx).
func (s *demandScanner) step(idx int, raw string) error {
	if s.state == stateMetadata {
		tag, end := s.md.consume(idx, raw, s.log)
		if tag == TagNumberOfZones && !end {
			n, err := strconv.Atoi(s.md.Tags[tag])
			if err != nil || n <= 0 {
				return formatErrorf(idx+1, raw, "invalid %s", TagNumberOfZones)
			}
			s.numZones = n
		}
		if end {
			s.state = stateAwaitOrigin
		}
		return nil
	}

	line := stripComment(raw)
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)

	if fields[0] == originKeyword {
		if len(fields) != 2 {
			return formatErrorf(idx+1, raw, "origin header must be %q followed by one id", originKeyword)
		}
		id, err := s.parseID(fields[1])
		if err != nil {
			return formatErrorf(idx+1, raw, "origin %v", err)
		}
		s.origin = id
		s.state = stateDestinations
		return nil
	}
	if s.state == stateAwaitOrigin {
		return formatErrorf(idx+1, raw, "destination entries before any %s header", originKeyword)
	}

	return s.destinations(idx, raw, fields)
}

// destinations parses one line of "dest : value;" items. The ';' may be
// attached to the value or stand alone.
func (s *demandScanner) destinations(idx int, raw string, fields []string) error {
	tokens := make([]string, 0, len(fields)+len(fields)/3)
	for _, f := range fields {
		if f != semicolon && strings.HasSuffix(f, semicolon) {
			tokens = append(tokens, strings.TrimSuffix(f, semicolon), semicolon)
			continue
		}
		tokens = append(tokens, f)
	}
	if len(tokens)%tokensPerItem != 0 {
		return formatErrorf(idx+1, raw, "malformed item count (%d tokens)", len(tokens))
	}

	for k := 0; k < len(tokens); k += tokensPerItem {
		dest, err := s.parseID(tokens[k])
		if err != nil {
			return formatErrorf(idx+1, raw, "destination %v", err)
		}
		if tokens[k+1] != colon {
			return formatErrorf(idx+1, raw, "missing ':' after destination %d", dest)
		}
		v, err := strconv.ParseFloat(tokens[k+2], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return formatErrorf(idx+1, raw, "invalid demand value %q", tokens[k+2])
		}
		if v < 0 {
			return formatErrorf(idx+1, raw, "negative demand %g for destination %d", v, dest)
		}
		if tokens[k+3] != semicolon {
			return formatErrorf(idx+1, raw, "missing ';' after demand for destination %d", dest)
		}
		s.entries = append(s.entries, odEntry{orig: s.origin, dest: dest, v: v})
	}

	return nil
}

// parseID accepts 1..numZones, or any positive id while the zone count is unknown.
func (s *demandScanner) parseID(tok string) (int, error) {
	id, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("id %q is not an integer", tok)
	}
	if id < 1 || (s.numZones > 0 && id > s.numZones) {
		return 0, fmt.Errorf("id %d outside 1..%d", id, s.numZones)
	}
	if id > s.maxID {
		s.maxID = id
	}
	return id, nil
}

func (s *demandScanner) warn(warnings *[]string, msg string, fields ...logging.Field) {
	s.log.Warn(msg, fields...)
	*warnings = append(*warnings, msg)
}

// finish builds the matrix and runs the advisory consistency checks.
func (s *demandScanner) finish(nLines int) (*DemandMatrix, error) {
	var warnings []string
	if !s.md.HasEnd {
		s.warn(&warnings, "END OF METADATA not found, treating the whole input as metadata")
	}

	declared, hasTotal, err := s.md.Float(TagTotalODFlow)
	if err != nil {
		s.warn(&warnings, "unparsable TOTAL OD FLOW, ignoring it", logging.String("value", s.md.Tags[TagTotalODFlow]))
		hasTotal = false
	}
	if !hasTotal || s.numZones == 0 {
		s.warn(&warnings, "not all metadata present, consistency checking will be limited")
	}

	n := s.numZones
	if n == 0 {
		n = s.maxID
	}
	if n == 0 {
		return nil, formatErrorf(nLines, "", "cannot determine the number of zones")
	}

	m, err := NewDemandMatrix(n)
	if err != nil {
		return nil, err
	}
	m.Metadata = s.md
	for _, e := range s.entries {
		if err = m.Set(e.orig, e.dest, e.v); err != nil {
			return nil, fmt.Errorf("tntp: store entry: %w", err)
		}
	}

	if hasTotal {
		total := m.Total()
		tol := totalRelTol * math.Max(1, math.Abs(declared))
		if math.Abs(total-declared) > tol {
			s.warn(&warnings, "total demand differs from TOTAL OD FLOW",
				logging.Float64("computed", total), logging.Float64("declared", declared))
		}
	}
	m.Warnings = warnings
	s.log.Debug("demand read",
		logging.Int("zones", n), logging.Int("entries", len(s.entries)), logging.String("state", s.state.String()))

	return m, nil
}
