package rootcmd

import (
	"context"
	"os"
	"time"

	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/tracing"
)

// InitTracing sets up the trace exporter when OTEL_EXPORTER_OTLP_ENDPOINT
// is configured. Without it spans are discarded and the returned
// shutdown function is nil.
func InitTracing(ctx context.Context, serviceName string) (tracing.TpShutdownFunc, error) {
	if len(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) == 0 {
		return nil, nil
	}

	tpShutdownFn, err := tracing.InitTracer(ctx,
		&tracing.TracerConfig{
			ServiceName: serviceName,
		},
	)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		log := logger.Setup()
		log.Debug("shutting down trace provider")
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tpShutdownFn(shutdownCtx)
	}, nil
}
