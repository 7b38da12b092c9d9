package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/odsynth/gravity"
	"github.com/katalvlaran/odsynth/internal/cli"
	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/tntp"
)

const demand3 = `<NUMBER OF ZONES> 3
<TOTAL OD FLOW> 120.0
<END OF METADATA>


Origin  1
    2 :  10.0;    3 :  20.0;
Origin  2
    1 :  10.0;    3 :  30.0;
Origin  3
    1 :  20.0;    2 :  30.0;
`

const network3 = `<NUMBER OF ZONES> 3
<NUMBER OF NODES> 3
<FIRST THRU NODE> 1
<NUMBER OF LINKS> 6
<END OF METADATA>

	1	2	100	1	1	0.15	4	0	0	1	;
	2	1	100	1	1	0.15	4	0	0	1	;
	2	3	100	1	1	0.15	4	0	0	1	;
	3	2	100	1	1	0.15	4	0	0	1	;
	1	3	100	1	2	0.15	4	0	0	1	;
	3	1	100	1	2	0.15	4	0	0	1	;
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

// run executes the CLI quietly and returns exit code, stdout and stderr.
func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--log-level", "error"}, args...)
	code := cli.Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	require.Equal(t, cli.ExitOK, code)
	assert.Contains(t, out, "odsynth dev")
}

func TestPerturb_IdentityNoise(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "trips.tntp", demand3)
	prom := filepath.Join(dir, "odsynth.prom")
	t.Setenv("ODSYNTH_METRICS_TEXTFILE", prom)

	code, out, errOut := run(t, "perturb", "--demand", in, "--kind", "uniform", "--low", "1", "--high", "1", "--always", "2")
	require.Equal(t, cli.ExitOK, code, errOut)
	want := filepath.Join(dir, "trips_perturbed_uniform.tntp")
	assert.Contains(t, out, want)
	assert.Contains(t, out, "5 of 9 entries perturbed")

	before, err := tntp.ReadDemandFile(in, tntp.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	after, err := tntp.ReadDemandFile(want, tntp.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.True(t, before.Equal(after, 0))

	body, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(body), `odsynth_matrices_written_total{source="perturb"} 1`)
	assert.Contains(t, string(body), "odsynth_perturbed_entries_total 5")
}

func TestPerturb_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	bad := write(t, dir, "bad.tntp", "<NUMBER OF ZONES> 3\n<END OF METADATA>\nOrigin 1\n2 : 5.0 3 ; 10.0\n")

	code, _, errOut := run(t, "perturb")
	assert.Equal(t, cli.ExitInput, code, errOut)

	code, _, errOut = run(t, "perturb", "--demand", bad)
	assert.Equal(t, cli.ExitFormat, code, errOut)
	assert.Contains(t, errOut, ":4:")

	code, _, _ = run(t, "perturb", "--demand", filepath.Join(dir, "missing.tntp"))
	assert.Equal(t, cli.ExitIO, code)

	good := write(t, dir, "trips.tntp", demand3)
	code, _, _ = run(t, "perturb", "--demand", good, "--always", "9")
	assert.Equal(t, cli.ExitInput, code)

	code, _, _ = run(t, "perturb", "--demand", good, "--kind", "cauchy")
	assert.Equal(t, cli.ExitInput, code)

	code, _, _ = run(t, "perturb", "--no-such-flag")
	assert.Equal(t, cli.ExitInput, code)
}

func TestGravity(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "trips.tntp", demand3)
	net := write(t, dir, "net.tntp", network3)
	params := write(t, dir, "params.txt", "1 1 1\n")
	out := filepath.Join(dir, "synth.tntp")

	code, stdout, errOut := run(t, "gravity", "--params", params, "--demand", in, "--network", net, "--out", out)
	require.Equal(t, cli.ExitOK, code, errOut)
	assert.Contains(t, stdout, "converged")

	m, err := tntp.ReadDemandFile(out, tntp.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumZones)
	assert.InDelta(t, 120.0, m.Total(), 1e-6)
	assert.Empty(t, m.Warnings)

	short := write(t, dir, "short.txt", "1 1\n")
	code, _, _ = run(t, "gravity", "--params", short, "--demand", in, "--network", net, "--out", out)
	assert.Equal(t, cli.ExitInput, code)
}

func TestCentralNodes(t *testing.T) {
	var b strings.Builder
	b.WriteString("Node X Y ;\n")
	id := 1
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			fmt.Fprintf(&b, "%d %d %d ;\n", id, x, y)
			id++
		}
	}
	nodes := write(t, t.TempDir(), "node.tntp", b.String())

	code, out, errOut := run(t, "central-nodes", "--nodes", nodes, "--proportion", "0.4", "--mode", "centroid")
	require.Equal(t, cli.ExitOK, code, errOut)
	assert.Equal(t, strings.Count(strings.TrimSpace(out), ",")+1, 10)

	code, _, _ = run(t, "central-nodes", "--nodes", nodes, "--proportion", "0.7")
	assert.Equal(t, cli.ExitInput, code)
}

func TestTrialAndStats(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script solver")
	}
	dir := t.TempDir()
	in := write(t, dir, "trips.tntp", demand3)
	net := write(t, dir, "net.tntp", network3)
	canned := write(t, dir, "canned.txt", "h\nh\n1 (1,2) 10 2 0\n2 (2,3) 30 1 0\n")
	bin := write(t, dir, "tap", "#!/bin/sh\ncp "+canned+" full_log.txt\n")
	work := t.TempDir()
	db := filepath.Join(dir, "trials.db")
	t.Setenv("ODSYNTH_SOLVER_DIR", work)

	code, out, errOut := run(t, "trial", "--network", net, "--demand", in, "--solver", bin,
		"--ledger", db, "--count", "2", "--seed", "5")
	require.Equal(t, cli.ExitOK, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "tstt=50")
	assert.Contains(t, lines[1], "trips_perturbed_normal_2.tntp")

	code, out, errOut = run(t, "stats", "--ledger", db)
	require.Equal(t, cli.ExitOK, code, errOut)
	assert.Contains(t, out, "2 trials, mean TSTT 50")

	code, _, _ = run(t, "stats")
	assert.Equal(t, cli.ExitInput, code)

	failing := write(t, dir, "fail", "#!/bin/sh\nexit 1\n")
	code, _, _ = run(t, "trial", "--network", net, "--demand", in, "--solver", failing)
	assert.Equal(t, cli.ExitGeneric, code)
}

func TestTrial_RelativeInputsWithSolverDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script solver")
	}
	dir := t.TempDir()
	write(t, dir, "trips.tntp", demand3)
	write(t, dir, "net.tntp", network3)
	canned := write(t, dir, "canned.txt", "h\nh\n1 (1,2) 10 2 0\n")
	bin := write(t, dir, "tap", "#!/bin/sh\ntest -f \"$1\" && test -f \"$2\" || exit 7\ncp "+canned+" full_log.txt\n")
	t.Chdir(dir)
	t.Setenv("ODSYNTH_SOLVER_DIR", t.TempDir())

	code, out, errOut := run(t, "trial", "--network", "net.tntp", "--demand", "trips.tntp", "--solver", bin)
	require.Equal(t, cli.ExitOK, code, errOut)
	assert.Contains(t, out, "tstt=20")
}

func TestTrial_FailedRunStillExportsMetrics(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script solver")
	}
	dir := t.TempDir()
	in := write(t, dir, "trips.tntp", demand3)
	net := write(t, dir, "net.tntp", network3)
	failing := write(t, dir, "fail", "#!/bin/sh\nexit 1\n")
	prom := filepath.Join(dir, "m.prom")
	t.Setenv("ODSYNTH_METRICS_TEXTFILE", prom)
	t.Setenv("ODSYNTH_SOLVER_DIR", t.TempDir())

	code, _, _ := run(t, "trial", "--network", net, "--demand", in, "--solver", failing)
	require.Equal(t, cli.ExitGeneric, code)

	body, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(body), `odsynth_trials_total{outcome="failed"} 1`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, cli.ExitOK, cli.ExitCode(nil))
	assert.Equal(t, cli.ExitGeneric, cli.ExitCode(errors.New("boom")))
	assert.Equal(t, cli.ExitInput, cli.ExitCode(fmt.Errorf("wrap: %w", gravity.ErrParamCount)))
	assert.Equal(t, cli.ExitIO, cli.ExitCode(&tntp.IOError{Op: "open", Path: "x", Err: os.ErrNotExist}))
	assert.Equal(t, cli.ExitFormat, cli.ExitCode(&tntp.FormatError{Line: 1}))
}
