// SPDX-License-Identifier: MIT

package tntp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/odsynth/internal/logging"
)

// EntriesPerLine is the number of "dest : value;" items per physical line.
const EntriesPerLine = 5

// ErrNilDemand is returned when a nil matrix is passed to a writer.
var ErrNilDemand = errors.New("tntp: nil demand matrix")

// FormatValue renders v at precision decimal places; a negative precision
// gives the shortest exact representation, always with a decimal point.
func FormatValue(v float64, precision int) string {
	if precision >= 0 {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// WriteDemand serializes m: the three metadata lines, two blank lines, then
// one "Origin  <id>" block per row with EntriesPerLine items per line.
// Entry values use the configured precision.
func WriteDemand(w io.Writer, m *DemandMatrix, opts ...Option) error {
	if m == nil {
		return ErrNilDemand
	}
	o := newOptions(opts)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "<%s> %d\n", TagNumberOfZones, m.NumZones)
	// The total is advisory; keep it exact so a re-read never warns.
	fmt.Fprintf(bw, "<%s> %s\n", TagTotalODFlow, FormatValue(m.Total(), DefaultPrecision))
	fmt.Fprintf(bw, "<%s>\n\n\n", TagEndOfMetadata)

	var line strings.Builder
	for i := 0; i < m.NumZones; i++ {
		fmt.Fprintf(bw, "%s  %d\n", originKeyword, i+1)
		line.Reset()
		row := m.data.RawRow(i)
		for j, v := range row {
			fmt.Fprintf(&line, "%9d : %15s; ", j+1, FormatValue(v, o.precision))
			if (j+1)%EntriesPerLine == 0 {
				line.WriteByte('\n')
			}
		}
		line.WriteByte('\n')
		if _, err := bw.WriteString(line.String()); err != nil {
			return &IOError{Op: "write", Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Err: err}
	}

	o.log.Debug("demand written", logging.Int("zones", m.NumZones), logging.Int("precision", o.precision))
	return nil
}

// WriteDemandFile creates (or truncates) path and writes m to it.
func WriteDemandFile(path string, m *DemandMatrix, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	if err = WriteDemand(f, m, opts...); err != nil {
		return withPath(err, path)
	}
	return nil
}
