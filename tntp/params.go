// SPDX-License-Identifier: MIT

package tntp

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadParameters parses a flat vector of numbers separated by whitespace,
// ',' or ';'. '~' comments and blank lines are ignored. Range checks belong
// to the consumer.
func ReadParameters(r io.Reader) ([]float64, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	isSep := func(c rune) bool {
		return c == ',' || c == ';' || c == ' ' || c == '\t'
	}
	var out []float64
	for idx, raw := range lines {
		line := stripComment(raw)
		if line == "" {
			continue
		}
		for _, tok := range strings.FieldsFunc(line, isSep) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || !finite(v) {
				return nil, formatErrorf(idx+1, raw, "invalid parameter %q", tok)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// ReadParametersFile opens path and delegates to ReadParameters.
func ReadParametersFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	v, err := ReadParameters(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return v, nil
}
