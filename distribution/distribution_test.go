package distribution

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ntppool.org/namepick/entropy"
	"go.ntppool.org/namepick/selector"
	"go.ntppool.org/namepick/testutil"
)

type scriptedResult struct {
	name string
	err  error
}

type scriptedRunner struct {
	results []scriptedResult
	calls   int
}

func (r *scriptedRunner) Run(ctx context.Context, path string) (string, error) {
	res := r.results[r.calls%len(r.results)]
	r.calls++
	return res.name, res.err
}

func TestTesterRun(t *testing.T) {
	runner := &scriptedRunner{results: []scriptedResult{
		{name: "Ann"},
		{err: ErrTimeout},
		{name: "Bob"},
		{err: &RunError{Stderr: "boom\n", Err: errors.New("exit status 1")}},
		{name: "Ann"},
	}}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	var out bytes.Buffer
	tester := NewTester(runner, &out, 0, testutil.NewTestLogger(t), metrics)

	tally, err := tester.Run(context.Background(), "names.txt", 5)
	require.NoError(t, err)

	assert.Equal(t, 5, runner.calls)
	assert.Equal(t, Tally{"Ann": 2, "Bob": 1}, tally)
	assert.Equal(t, 3, tally.Total())

	assert.Equal(t, strings.Join([]string{
		"Testing random name selector with 5 runs...",
		"",
		"Run 1/5: Ann",
		"Run 2 timed out",
		"Run 3/5: Bob",
		"Error on run 4: boom\n",
		"Run 5/5: Ann",
		"",
	}, "\n"), out.String())

	assert.Equal(t, 3.0, promtestutil.ToFloat64(metrics.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Runs.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Runs.WithLabelValues("error")))
}

func TestTesterInvalidRuns(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		runner := &scriptedRunner{results: []scriptedResult{{name: "Ann"}}}
		var out bytes.Buffer
		tester := NewTester(runner, &out, 0, testutil.NewTestLogger(t), nil)

		tally, err := tester.Run(context.Background(), "names.txt", n)
		assert.ErrorIs(t, err, ErrInvalidRuns)
		assert.Nil(t, tally)
		assert.Zero(t, runner.calls)
		assert.Empty(t, out.String())
	}
}

func TestTesterCancelled(t *testing.T) {
	runner := &scriptedRunner{results: []scriptedResult{{name: "Ann"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	tester := NewTester(runner, &out, 0, testutil.NewTestLogger(t), nil)
	tally, err := tester.Run(ctx, "names.txt", 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tally.Total())
	assert.Zero(t, runner.calls)
}

func TestTesterRunTimeout(t *testing.T) {
	path := testutil.WriteNamesFile(t, "A\nB\nC")
	runner := &InProcessRunner{
		Selector: selector.NewSelector(blockingSource{}, testutil.NewTestLogger(t), nil),
	}

	var out bytes.Buffer
	tester := NewTester(runner, &out, 20*time.Millisecond, testutil.NewTestLogger(t), nil)
	tally, err := tester.Run(context.Background(), path, 2)
	require.NoError(t, err)
	assert.Zero(t, tally.Total())
	assert.Contains(t, out.String(), "Run 1 timed out\n")
	assert.Contains(t, out.String(), "Run 2 timed out\n")
}

func TestInProcessDistribution(t *testing.T) {
	path := testutil.WriteNamesFile(t, "A\nB\nC")

	draws := make([]int, 100)
	for i := range draws {
		draws[i] = i + 1
	}
	runner := &InProcessRunner{
		Selector: selector.NewSelector(entropy.NewSequence(draws...), testutil.NewTestLogger(t), nil),
	}

	var out bytes.Buffer
	tester := NewTester(runner, &out, 0, testutil.NewTestLogger(t), nil)
	tally, err := tester.Run(context.Background(), path, 100)
	require.NoError(t, err)

	assert.Equal(t, Tally{"A": 50, "B": 50}, tally)
	assert.NotContains(t, tally, "C")
	assert.LessOrEqual(t, tally.Total(), 100)

	out.Reset()
	require.NoError(t, WriteReport(&out, tally, 100))
	assert.Contains(t, out.String(), "Successful runs: 100\n")
	assert.Contains(t, out.String(), "Expected percentage per name (equal distribution): 50.00%\n")
}

func TestTrailingEmptyObservation(t *testing.T) {
	// "A\n\n" splits into ["A", "", ""]; odd draws land on the middle ""
	path := testutil.WriteNamesFile(t, "A\n\n")
	runner := &InProcessRunner{
		Selector: selector.NewSelector(entropy.NewSequence(1, 2), testutil.NewTestLogger(t), nil),
	}

	var out bytes.Buffer
	tester := NewTester(runner, &out, 0, testutil.NewTestLogger(t), nil)
	tally, err := tester.Run(context.Background(), path, 4)
	require.NoError(t, err)
	assert.Equal(t, Tally{"": 2, "A": 2}, tally)
}

func TestProcessDistribution(t *testing.T) {
	var out bytes.Buffer
	tester := NewTester(helperRunner(), &out, time.Second, testutil.NewTestLogger(t), nil)

	tally, err := tester.Run(context.Background(), "ok", 3)
	require.NoError(t, err)
	assert.Equal(t, Tally{"Ann": 3}, tally)

	tally, err = tester.Run(context.Background(), "fail", 2)
	require.NoError(t, err)
	assert.Zero(t, tally.Total())
	assert.Contains(t, out.String(), "Error on run 1: file not found\n")
}
