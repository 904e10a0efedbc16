package rootcmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/version"
)

func init() {
	logger.ConfigPrefix = "NAMEPICK"
}

// argsNormalizer is implemented by commands that rewrite their
// arguments before kong scans them.
type argsNormalizer interface {
	NormalizeArgs(args []string) []string
}

// Run parses the command line into cmd and runs it. Errors are printed
// and exit the process with status 1.
func Run(cmd any, name, description string) {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	ctx = logger.NewContext(ctx, logger.Setup())

	parser, err := kong.New(cmd,
		kong.Name(name),
		kong.Description(description),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Vars{"version": name + " " + version.Version()},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.UsageOnError(),
	)
	if err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}

	args := os.Args[1:]
	if n, ok := cmd.(argsNormalizer); ok {
		args = n.NormalizeArgs(args)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	shutdown, err := InitTracing(ctx, name)
	if err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "could not setup tracing", "err", err)
	}

	err = kctx.Run()

	if shutdown != nil {
		if serr := shutdown(context.Background()); serr != nil {
			logger.FromContext(ctx).DebugContext(ctx, "trace shutdown", "err", serr)
		}
	}

	parser.FatalIfErrorf(err)
}
