package selector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"go.ntppool.org/namepick/entropy"
	"go.ntppool.org/namepick/names"
)

// Range requested from the entropy source for each pick.
const (
	DrawMin = 1
	DrawMax = 100
)

// Result describes one pick.
type Result struct {
	Name  string
	Index int
	Draw  int
	Count int
}

type Selector struct {
	source  entropy.Source
	log     *slog.Logger
	metrics *Metrics
}

// NewSelector returns a Selector drawing from source. log and metrics
// may be nil.
func NewSelector(source entropy.Source, log *slog.Logger, metrics *Metrics) *Selector {
	if log == nil {
		log = logger.Setup()
	}
	return &Selector{
		source:  source,
		log:     log,
		metrics: metrics,
	}
}

// Pick reads the name file at path and selects one entry.
func (sl *Selector) Pick(ctx context.Context, path string) (Result, error) {
	ctx, span := tracing.Start(ctx, "selector.pick")
	defer span.End()

	list, err := names.ReadFile(path)
	if err != nil {
		sl.metrics.trackError(errorKindFile)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	res, err := sl.PickFrom(ctx, list)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("draw", res.Draw),
		attribute.Int("index", res.Index),
		attribute.Int("count", res.Count),
	)

	return res, nil
}

// PickFrom selects one entry from an already parsed list.
func (sl *Selector) PickFrom(ctx context.Context, list names.List) (Result, error) {
	start := time.Now()
	draw, err := sl.source.Intn(ctx, DrawMin, DrawMax)
	sl.metrics.trackDraw(time.Since(start), err)
	if err != nil {
		sl.metrics.trackError(errorKindEntropy)
		return Result{}, fmt.Errorf("random draw: %w", err)
	}

	idx, err := list.Index(draw)
	if err != nil {
		sl.metrics.trackError(errorKindIndex)
		return Result{}, err
	}
	sl.metrics.trackPick(idx)

	sl.log.DebugContext(ctx, "picked name",
		"draw", draw,
		"index", idx,
		"count", len(list),
	)

	return Result{
		Name:  list[idx],
		Index: idx,
		Draw:  draw,
		Count: len(list),
	}, nil
}
