package selector

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ntppool.org/namepick/entropy"
	"go.ntppool.org/namepick/names"
	"go.ntppool.org/namepick/testutil"
)

type failingSource struct{}

func (failingSource) Intn(ctx context.Context, min, max int) (int, error) {
	return 0, errors.New("service unavailable")
}

type rangeSource struct {
	min, max int
}

func (r *rangeSource) Intn(ctx context.Context, min, max int) (int, error) {
	r.min, r.max = min, max
	return min, nil
}

func TestPickMockedDraws(t *testing.T) {
	path := testutil.WriteNamesFile(t, "Ann\nBob\nCarol\nDave")
	draws := []int{1, 2, 3, 4, 50, 99, 100}

	sl := NewSelector(entropy.NewSequence(draws...), testutil.NewTestLogger(t), nil)
	list := []string{"Ann", "Bob", "Carol", "Dave"}

	for _, d := range draws {
		res, err := sl.Pick(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, d, res.Draw)
		assert.Equal(t, d%3, res.Index, "draw %d", d)
		assert.Equal(t, list[d%3], res.Name)
		assert.Equal(t, 4, res.Count)
	}
}

func TestPickRequestsRange(t *testing.T) {
	path := testutil.WriteNamesFile(t, "A\nB\nC")
	src := &rangeSource{}

	_, err := NewSelector(src, nil, nil).Pick(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, DrawMin, src.min)
	assert.Equal(t, DrawMax, src.max)
}

func TestPickNeverLastLine(t *testing.T) {
	path := testutil.WriteNamesFile(t, "A\nB\nC")
	seed := uint64(1)
	sl := NewSelector(entropy.NewLocal(&seed), testutil.NewTestLogger(t), nil)

	for i := 0; i < 200; i++ {
		res, err := sl.Pick(context.Background(), path)
		require.NoError(t, err)
		assert.Contains(t, []string{"A", "B"}, res.Name)
	}
}

func TestPickSingleName(t *testing.T) {
	path := testutil.WriteNamesFile(t, "Solo")
	sl := NewSelector(entropy.NewSequence(17), testutil.NewTestLogger(t), nil)

	_, err := sl.Pick(context.Background(), path)
	assert.ErrorIs(t, err, names.ErrDivisionByZero)
}

func TestPickMissingFile(t *testing.T) {
	src := entropy.NewSequence(1)
	sl := NewSelector(src, testutil.NewTestLogger(t), nil)

	_, err := sl.Pick(context.Background(), "/nonexistent/names.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	// the file is read before any draw is requested
	assert.Zero(t, src.Calls())
}

func TestPickEntropyError(t *testing.T) {
	path := testutil.WriteNamesFile(t, "A\nB\nC")
	sl := NewSelector(failingSource{}, testutil.NewTestLogger(t), nil)

	_, err := sl.Pick(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "random draw")
}

func TestPickVerbatim(t *testing.T) {
	path := testutil.WriteNamesFile(t, "  padded  \nB\nC")
	sl := NewSelector(entropy.NewSequence(2), testutil.NewTestLogger(t), nil)

	res, err := sl.Pick(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", res.Name)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	path := testutil.WriteNamesFile(t, "A\nB\nC")
	sl := NewSelector(entropy.NewSequence(1, 2, 3), testutil.NewTestLogger(t), m)

	for i := 0; i < 3; i++ {
		_, err := sl.Pick(context.Background(), path)
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, promtestutil.ToFloat64(m.Draws.WithLabelValues("ok")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.Picks.WithLabelValues("1")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Picks.WithLabelValues("0")))

	_, err := sl.Pick(context.Background(), "/nonexistent/names.txt")
	require.Error(t, err)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Errors.WithLabelValues("file")))
}

func TestCmdRun(t *testing.T) {
	path := testutil.WriteNamesFile(t, "Ann\nBob\nCarol\n")
	seed := uint64(3)

	var out bytes.Buffer
	cmd := &Cmd{
		File:        path,
		SourceFlags: SourceFlags{Source: entropy.SourceLocal, IPVersion: "any", Seed: &seed},
		out:         &out,
	}

	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, []string{"Ann\n", "Bob\n", "Carol\n"}, out.String())
}

func TestSourceFlagsConfig(t *testing.T) {
	f := SourceFlags{Source: "randomorg", IPVersion: "6", Retries: 2}
	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, "randomorg", cfg.Name)
	assert.EqualValues(t, 2, cfg.Retries)

	f.IPVersion = "7"
	_, err = f.Config()
	assert.Error(t, err)
}

func TestSourceFlagsArgs(t *testing.T) {
	assert.Empty(t, SourceFlags{Source: "randomorg", IPVersion: "any"}.Args())

	seed := uint64(9)
	f := SourceFlags{
		Source:    "local",
		URL:       "http://localhost:8080/integers/",
		Timeout:   5 * time.Second,
		Retries:   2,
		IPVersion: "4",
		Seed:      &seed,
	}
	assert.Equal(t, []string{
		"--source=local",
		"--url=http://localhost:8080/integers/",
		"--timeout=5s",
		"--retries=2",
		"--ip-version=4",
	}, f.Args())
	assert.NotContains(t, strings.Join(f.Args(), " "), "--seed")
}
