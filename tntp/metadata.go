// SPDX-License-Identifier: MIT

package tntp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/odsynth/internal/logging"
)

// Well-known metadata tags.
const (
	TagNumberOfZones  = "NUMBER OF ZONES"
	TagTotalODFlow    = "TOTAL OD FLOW"
	TagNumberOfNodes  = "NUMBER OF NODES"
	TagNumberOfLinks  = "NUMBER OF LINKS"
	TagFirstThruNode  = "FIRST THRU NODE"
	TagEndOfMetadata  = "END OF METADATA"
	commentMarker     = "~"
	maxLineBytes      = 16 << 20
	initialLineBuffer = 64 << 10
)

// Metadata is the tag block at the top of a TNTP file.
type Metadata struct {
	// Tags maps tag names (without angle brackets) to trimmed raw values.
	Tags map[string]string
	// EndLine is the 0-based index of the first line after <END OF METADATA>,
	// or -1 when the marker is missing.
	EndLine int
	// HasEnd reports whether <END OF METADATA> was found.
	HasEnd bool
}

// Get returns the raw value of tag.
func (m Metadata) Get(tag string) (string, bool) {
	v, ok := m.Tags[tag]
	return v, ok
}

// Int parses tag as a base-10 integer. ok is false when the tag is absent.
func (m Metadata) Int(tag string) (v int, ok bool, err error) {
	raw, ok := m.Tags[tag]
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.Atoi(raw)
	return v, true, err
}

// Float parses tag as a float64. ok is false when the tag is absent.
func (m Metadata) Float(tag string) (v float64, ok bool, err error) {
	raw, ok := m.Tags[tag]
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	return v, true, err
}

// stripComment drops everything from the first '~' and trims whitespace.
func stripComment(line string) string {
	line, _, _ = strings.Cut(line, commentMarker)
	return strings.TrimSpace(line)
}

// splitTag parses "<TAG> value". ok is false when the angle brackets are
// missing or out of order.
func splitTag(line string) (tag, value string, ok bool) {
	start := strings.IndexByte(line, '<')
	end := strings.IndexByte(line, '>')
	if start < 0 || end < 0 || start >= end {
		return "", "", false
	}
	return strings.TrimSpace(line[start+1 : end]), strings.TrimSpace(line[end+1:]), true
}

// ReadMetadata scans lines top to bottom and returns the metadata block.
// Lines without a <tag> are logged and ignored. A missing
// <END OF METADATA> is logged and the whole input is treated as metadata.
func ReadMetadata(lines []string, log logging.Logger) Metadata {
	if log == nil {
		log = logging.Default().Named("tntp")
	}
	md := Metadata{Tags: make(map[string]string), EndLine: -1}
	for idx, raw := range lines {
		if _, end := md.consume(idx, raw, log); end {
			return md
		}
	}
	log.Warn("END OF METADATA not found, treating the whole input as metadata")
	return md
}

// consume feeds one physical line (0-based idx) into the metadata block. It
// returns the tag stored (empty for skipped lines) and whether
// <END OF METADATA> was reached.
func (m *Metadata) consume(idx int, raw string, log logging.Logger) (tag string, end bool) {
	line := stripComment(raw)
	if line == "" {
		return "", false
	}
	tag, value, ok := splitTag(line)
	if !ok {
		log.Warn("ignoring metadata line without <tag>",
			logging.Int("line", idx+1), logging.String("content", raw))
		return "", false
	}
	if tag == TagEndOfMetadata {
		m.EndLine = idx + 1
		m.HasEnd = true
		return tag, true
	}
	m.Tags[tag] = value
	return tag, false
}

// readLines slurps r into physical lines. Read failures are *IOError.
func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialLineBuffer), maxLineBytes)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	return lines, nil
}
