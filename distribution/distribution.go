// Package distribution runs the name selector repeatedly and reports how
// its picks are distributed.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// RunTimeout bounds each selector run.
const RunTimeout = 10 * time.Second

// ErrInvalidRuns is returned for a run count below one.
var ErrInvalidRuns = errors.New("number of runs must be positive")

// ErrRunsNotInteger is returned for a run count that isn't a number.
var ErrRunsNotInteger = errors.New("number of runs must be an integer")

// Tester runs the selector sequentially and tallies the results.
type Tester struct {
	runner  Runner
	out     io.Writer
	timeout time.Duration
	log     *slog.Logger
	metrics *Metrics
}

// NewTester returns a Tester printing progress to out. A timeout of
// zero uses RunTimeout; log and metrics may be nil.
func NewTester(runner Runner, out io.Writer, timeout time.Duration, log *slog.Logger, metrics *Metrics) *Tester {
	if timeout <= 0 {
		timeout = RunTimeout
	}
	if log == nil {
		log = logger.Setup()
	}
	return &Tester{
		runner:  runner,
		out:     out,
		timeout: timeout,
		log:     log,
		metrics: metrics,
	}
}

// Run invokes the runner numRuns times, one after the other. Failed
// and timed out runs are reported and left out of the tally. If ctx is
// cancelled the runs so far are returned with the context error.
func (t *Tester) Run(ctx context.Context, path string, numRuns int) (Tally, error) {
	if numRuns <= 0 {
		return nil, ErrInvalidRuns
	}

	ctx, span := tracing.Start(ctx, "distribution.run")
	defer span.End()
	span.SetAttributes(attribute.Int("runs", numRuns))

	fmt.Fprintf(t.out, "Testing random name selector with %d runs...\n\n", numRuns)

	tally := Tally{}

	for i := 1; i <= numRuns; i++ {
		if err := ctx.Err(); err != nil {
			t.log.WarnContext(ctx, "stopping early", "completed", i-1, "err", err)
			return tally, err
		}

		name, err := t.runOnce(ctx, path)
		switch {
		case err == nil:
			tally.Add(name)
			t.metrics.trackRun(resultOK)
			fmt.Fprintf(t.out, "Run %d/%d: %s\n", i, numRuns, name)
		case errors.Is(err, ErrTimeout):
			t.metrics.trackRun(resultTimeout)
			fmt.Fprintf(t.out, "Run %d timed out\n", i)
		default:
			if ctx.Err() != nil {
				// interrupted, not a selector failure
				continue
			}
			t.metrics.trackRun(resultError)
			t.log.DebugContext(ctx, "run failed", "run", i, "err", err)
			fmt.Fprintf(t.out, "Error on run %d: %s\n", i, err)
		}
	}

	span.SetAttributes(attribute.Int("successful", tally.Total()))

	return tally, nil
}

func (t *Tester) runOnce(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.runner.Run(ctx, path)
}
