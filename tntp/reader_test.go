package tntp_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/tntp"
)

const sampleDemand = `<NUMBER OF ZONES> 3
<TOTAL OD FLOW> 66.5
~ comment before the end marker
<END OF METADATA>


Origin  1
    1 :   0.0;    2 :  10.0;
    3 :  20.0;           ~ wrapped line
Origin  2
    1 : 5.0 ;    2 : 0.0 ;    3 : 30.0 ;
Origin 3
    1 : 1.5;
`

func observed() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestReadDemand_Sample(t *testing.T) {
	log, logs := observed()
	m, err := tntp.ReadDemand(strings.NewReader(sampleDemand), tntp.WithLogger(log))
	require.NoError(t, err)

	require.Equal(t, 3, m.NumZones)
	require.True(t, m.Metadata.HasEnd)
	require.Equal(t, 4, m.Metadata.EndLine)
	require.Equal(t, "66.5", m.Metadata.Tags[tntp.TagTotalODFlow])

	want := [][]float64{{0, 10, 20}, {5, 0, 30}, {1.5, 0, 0}}
	for i, row := range want {
		for j, v := range row {
			got, err := m.At(i+1, j+1)
			require.NoError(t, err)
			assert.Equal(t, v, got, "entry (%d,%d)", i+1, j+1)
		}
	}
	assert.Equal(t, 66.5, m.Total())
	assert.Empty(t, m.Warnings)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestReadDemand_TotalMismatchWarns(t *testing.T) {
	src := strings.Replace(sampleDemand, "66.5", "70", 1)
	log, logs := observed()

	m, err := tntp.ReadDemand(strings.NewReader(src), tntp.WithLogger(log))
	require.NoError(t, err) // advisory only
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "TOTAL OD FLOW")

	warns := logs.FilterMessage("total demand differs from TOTAL OD FLOW").All()
	require.Len(t, warns, 1)
	assert.Equal(t, 70.0, warns[0].ContextMap()["declared"])
	assert.Equal(t, 66.5, warns[0].ContextMap()["computed"])
}

func TestReadDemand_TotalWithinTolerance(t *testing.T) {
	src := strings.Replace(sampleDemand, "66.5", "66.50000001", 1)
	m, err := tntp.ReadDemand(strings.NewReader(src), tntp.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Empty(t, m.Warnings)
}

func TestReadDemand_MissingTagsLimitedChecking(t *testing.T) {
	src := `<END OF METADATA>
Origin 1
  2 : 4.0;
Origin 2
  1 : 3.0;
`
	m, err := tntp.ReadDemand(strings.NewReader(src), tntp.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumZones) // inferred from the largest id
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "limited")
}

func TestReadDemand_MissingEndMarker(t *testing.T) {
	src := "<NUMBER OF ZONES> 2\n<TOTAL OD FLOW> 0\nOrigin 1\n"
	log, logs := observed()
	m, err := tntp.ReadDemand(strings.NewReader(src), tntp.WithLogger(log))
	require.NoError(t, err)
	assert.False(t, m.Metadata.HasEnd)
	assert.Equal(t, 0.0, m.Total())
	assert.Equal(t, 1, logs.FilterMessage("ignoring metadata line without <tag>").Len())
	assert.Contains(t, m.Warnings, "END OF METADATA not found, treating the whole input as metadata")
}

func TestReadDemand_FormatViolations(t *testing.T) {
	header := "<NUMBER OF ZONES> 3\n<TOTAL OD FLOW> 15\n<END OF METADATA>\nOrigin 1\n"
	cases := []struct {
		name string
		body string
		line int
	}{
		{"missing second colon", "2 : 5.0 3 ; 10.0\n", 5},
		{"colon replaced", "2 = 5.0;\n", 5},
		{"missing semicolon", "2 : 5.0 x\n", 5},
		{"bad value", "2 : abc;\n", 5},
		{"negative value", "2 : -1.0;\n", 5},
		{"id out of range", "\n4 : 1.0;\n", 6},
		{"origin without id", "Origin\n", 5},
		{"origin out of range", "Origin 9\n", 5},
		{"nan value", "2 : NaN;\n", 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tntp.ReadDemand(strings.NewReader(header+tc.body), tntp.WithLogger(logging.NewNopLogger()))
			require.ErrorIs(t, err, tntp.ErrFormatViolation)
			require.False(t, errors.Is(err, tntp.ErrIO))

			var fe *tntp.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.line, fe.Line)
			assert.Equal(t, strings.TrimSuffix(strings.TrimPrefix(tc.body, "\n"), "\n"), fe.Content)
		})
	}
}

func TestReadDemand_ItemCountCountsSplitSemicolons(t *testing.T) {
	// Six fields, seven tokens once the glued ';' is split off.
	src := "<NUMBER OF ZONES> 3\n<END OF METADATA>\nOrigin 1\n2 : 5.0; 3 : 1.0\n"
	_, err := tntp.ReadDemand(strings.NewReader(src), tntp.WithLogger(logging.NewNopLogger()))
	var fe *tntp.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 4, fe.Line)
	assert.Contains(t, fe.Reason, "(7 tokens)")
}

func TestReadDemand_EntriesBeforeOrigin(t *testing.T) {
	src := "<END OF METADATA>\n 1 : 2.0;\n"
	_, err := tntp.ReadDemand(strings.NewReader(src), tntp.WithLogger(logging.NewNopLogger()))
	var fe *tntp.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Line)
	assert.Contains(t, fe.Reason, "Origin")
}

func TestReadDemand_InvalidZoneCount(t *testing.T) {
	_, err := tntp.ReadDemand(strings.NewReader("<NUMBER OF ZONES> many\n<END OF METADATA>\n"),
		tntp.WithLogger(logging.NewNopLogger()))
	require.ErrorIs(t, err, tntp.ErrFormatViolation)
}

func TestReadDemandFile_Errors(t *testing.T) {
	_, err := tntp.ReadDemandFile(filepath.Join(t.TempDir(), "absent.tntp"))
	require.ErrorIs(t, err, tntp.ErrIO)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.False(t, errors.Is(err, tntp.ErrFormatViolation))

	path := writeFile(t, "bad.tntp", "<END OF METADATA>\nOrigin 1\n1 ; 2.0:\n")
	_, err = tntp.ReadDemandFile(path, tntp.WithLogger(logging.NewNopLogger()))
	var fe *tntp.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
	assert.Equal(t, 3, fe.Line)
	assert.Contains(t, err.Error(), path)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadDemand_ReaderFailure(t *testing.T) {
	_, err := tntp.ReadDemand(failingReader{})
	require.ErrorIs(t, err, tntp.ErrIO)
	var ie *tntp.IOError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "read", ie.Op)
}
