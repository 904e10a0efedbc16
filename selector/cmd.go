package selector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"go.ntppool.org/common/logger"

	"go.ntppool.org/namepick/entropy"
	"go.ntppool.org/namepick/httpclient"
)

// SourceFlags configure the entropy source; shared with the
// distribution tester's in-process mode.
type SourceFlags struct {
	Source    string        `default:"randomorg" enum:"randomorg,local" env:"NAMEPICK_SOURCE" help:"Entropy source (${enum})"`
	URL       string        `name:"url" env:"NAMEPICK_URL" help:"random.org integer generator URL" placeholder:"URL"`
	Timeout   time.Duration `default:"0s" env:"NAMEPICK_TIMEOUT" help:"Timeout for the random.org request (0 waits forever)"`
	Retries   uint          `default:"0" env:"NAMEPICK_RETRIES" help:"Retries for failed random.org requests"`
	IPVersion string        `name:"ip-version" default:"any" enum:"any,4,6" env:"NAMEPICK_IP_VERSION" help:"IP version for random.org requests (${enum})"`
	Seed      *uint64       `env:"NAMEPICK_SEED" help:"Seed for the local source (not passed on to selector processes)"`
}

// Config returns the entropy configuration for the flags.
func (f SourceFlags) Config() (entropy.Config, error) {
	ipVersion, err := httpclient.ParseIPVersion(f.IPVersion)
	if err != nil {
		return entropy.Config{}, err
	}
	return entropy.Config{
		Name:      f.Source,
		URL:       f.URL,
		Timeout:   f.Timeout,
		Retries:   f.Retries,
		IPVersion: ipVersion,
		Seed:      f.Seed,
	}, nil
}

// Args returns the command line flags reproducing the non-default
// settings, for passing on to a selector child process. The seed is
// left out; every child would make the same draw.
func (f SourceFlags) Args() []string {
	var args []string
	if len(f.Source) > 0 && f.Source != entropy.SourceRandomOrg {
		args = append(args, "--source="+f.Source)
	}
	if len(f.URL) > 0 {
		args = append(args, "--url="+f.URL)
	}
	if f.Timeout > 0 {
		args = append(args, "--timeout="+f.Timeout.String())
	}
	if f.Retries > 0 {
		args = append(args, "--retries="+strconv.FormatUint(uint64(f.Retries), 10))
	}
	if len(f.IPVersion) > 0 && f.IPVersion != "any" {
		args = append(args, "--ip-version="+f.IPVersion)
	}
	return args
}

// NewSource builds the configured entropy source.
func (f SourceFlags) NewSource() (entropy.Source, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}
	return entropy.New(cfg)
}

// Cmd is the command line for the selector.
type Cmd struct {
	File string `arg:"" name:"filename" help:"File with one name per line"`

	SourceFlags `embed:""`

	Debug   bool             `env:"NAMEPICK_DEBUG" help:"Enable debug logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	out io.Writer
}

func (cmd *Cmd) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if cmd.Debug {
		debugHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		log = slog.New(debugHandler)
		ctx = logger.NewContext(ctx, log)
	}

	src, err := cmd.NewSource()
	if err != nil {
		return err
	}

	sl := NewSelector(src, log, nil)

	res, err := sl.Pick(ctx, cmd.File)
	if err != nil {
		return err
	}

	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, res.Name)
	return err
}
