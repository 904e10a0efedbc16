package distribution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/metricsserver"
	"go.ntppool.org/common/version"
	"golang.org/x/sync/errgroup"

	"go.ntppool.org/namepick/selector"
	"go.ntppool.org/namepick/ulid"
)

const (
	ModeProcess   = "process"
	ModeInProcess = "inprocess"
)

// Cmd is the command line for the distribution tester.
type Cmd struct {
	File string `arg:"" name:"filename" help:"File with one name per line"`
	Runs string `arg:"" name:"num_runs" help:"Number of times to run the selector"`

	Mode        string        `default:"process" enum:"process,inprocess" env:"NAMEPICK_MODE" help:"Run the selector as a child process or in this process (${enum})"`
	SelectorBin string        `name:"selector-bin" default:"namepick" env:"NAMEPICK_SELECTOR_BIN" help:"Selector executable for process mode"`
	RunTimeout  time.Duration `name:"run-timeout" default:"10s" env:"NAMEPICK_RUN_TIMEOUT" help:"Timeout for each selector run"`
	MetricsPort int           `name:"metrics-port" default:"0" env:"NAMEPICK_METRICS_PORT" help:"Serve prometheus metrics on this port (0 disables)"`

	selector.SourceFlags `embed:""`

	Debug   bool             `env:"NAMEPICK_DEBUG" help:"Enable debug logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	out io.Writer
}

func (cmd *Cmd) Validate() error {
	_, err := cmd.runCount()
	return err
}

func (cmd *Cmd) runCount() (int, error) {
	n, err := strconv.Atoi(cmd.Runs)
	if err != nil {
		return 0, ErrRunsNotInteger
	}
	if n <= 0 {
		return 0, ErrInvalidRuns
	}
	return n, nil
}

// NormalizeArgs moves a negative number argument behind "--" so it is
// parsed as the run count instead of a short flag.
func (cmd *Cmd) NormalizeArgs(args []string) []string {
	if slices.Contains(args, "--") {
		return args
	}
	idx := slices.IndexFunc(args, isNegativeNumber)
	if idx < 0 {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[:idx]...)
	out = append(out, args[idx+1:]...)
	return append(out, "--", args[idx])
}

func isNegativeNumber(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func (cmd *Cmd) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	numRuns, err := cmd.runCount()
	if err != nil {
		return err
	}

	if cmd.Debug {
		debugHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		log = slog.New(debugHandler)
	}

	sessionID, err := ulid.MakeULID(time.Now())
	if err != nil {
		return fmt.Errorf("could not make session ID: %w", err)
	}
	log = log.With("session", sessionID.String())
	ctx = logger.NewContext(ctx, log)

	out := cmd.out
	if out == nil {
		out = os.Stdout
	}

	var (
		metrics      *Metrics
		selMetrics   *selector.Metrics
		serveMetrics func(context.Context) error
	)

	if cmd.MetricsPort > 0 {
		metricssrv := metricsserver.New()
		version.RegisterMetric("namepick", metricssrv.Registry())
		metrics = NewMetrics(metricssrv.Registry())
		if cmd.Mode == ModeInProcess {
			selMetrics = selector.NewMetrics(metricssrv.Registry())
		}
		serveMetrics = func(ctx context.Context) error {
			return metricssrv.ListenAndServe(ctx, cmd.MetricsPort)
		}
	}

	runner, err := cmd.runner(log, selMetrics)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if serveMetrics != nil {
		g.Go(func() error {
			err := serveMetrics(ctx)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.ErrorContext(ctx, "metrics server error", "err", err)
				return err
			}
			return nil
		})
	}

	log.DebugContext(ctx, "starting distribution test",
		"file", cmd.File,
		"runs", numRuns,
		"mode", cmd.Mode,
	)

	g.Go(func() error {
		// stops the metrics server
		defer cancel()

		tester := NewTester(runner, out, cmd.RunTimeout, log, metrics)
		tally, err := tester.Run(ctx, cmd.File, numRuns)
		if tally == nil {
			return err
		}
		if rerr := WriteReport(out, tally, numRuns); rerr != nil {
			return rerr
		}
		return err
	})

	return g.Wait()
}

func (cmd *Cmd) runner(log *slog.Logger, metrics *selector.Metrics) (Runner, error) {
	if cmd.Mode == ModeInProcess {
		src, err := cmd.NewSource()
		if err != nil {
			return nil, err
		}
		return &InProcessRunner{
			Selector: selector.NewSelector(src, log, metrics),
		}, nil
	}

	bin, err := findSelector(cmd.SelectorBin)
	if err != nil {
		// each run reports the exec error
		log.Warn("selector not found", "err", err)
		bin = cmd.SelectorBin
	} else {
		log.Debug("using selector", "bin", bin)
	}

	return &ProcessRunner{
		Bin:  bin,
		Args: cmd.SourceFlags.Args(),
	}, nil
}

// findSelector resolves bin through PATH, falling back to a file of
// that name next to the running executable.
func findSelector(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err == nil {
		return path, nil
	}
	if strings.ContainsRune(bin, os.PathSeparator) {
		return "", fmt.Errorf("selector %q: %w", bin, err)
	}

	exe, exeErr := os.Executable()
	if exeErr != nil {
		return "", fmt.Errorf("selector %q: %w", bin, err)
	}
	sibling := filepath.Join(filepath.Dir(exe), bin)
	if path, serr := exec.LookPath(sibling); serr == nil {
		return path, nil
	}

	return "", fmt.Errorf("selector %q: %w", bin, err)
}
