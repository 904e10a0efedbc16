package entropy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/tracing"
	"go.ntppool.org/common/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultRandomOrgURL is the integer generator endpoint; the query
// string is filled in per request.
const DefaultRandomOrgURL = "https://www.random.org/integers/"

// limit how much of an unexpected response we read
const maxBodySize = 4096

// RandomOrg fetches integers from the random.org plain text API.
type RandomOrg struct {
	client  *http.Client
	baseURL string
	retries uint
	log     *slog.Logger
}

// NewRandomOrg returns a source using client against baseURL (or
// DefaultRandomOrgURL when empty). With retries set to zero each draw
// is a single request.
func NewRandomOrg(client *http.Client, baseURL string, retries uint) *RandomOrg {
	if client == nil {
		client = http.DefaultClient
	}
	if len(baseURL) == 0 {
		baseURL = DefaultRandomOrgURL
	}
	return &RandomOrg{
		client:  client,
		baseURL: baseURL,
		retries: retries,
		log:     logger.Setup().WithGroup("randomorg"),
	}
}

// URL returns the request URL for one integer in [min, max].
func (r *RandomOrg) URL(min, max int) (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid random.org url: %w", err)
	}
	q := u.Query()
	q.Set("num", "1")
	q.Set("min", strconv.Itoa(min))
	q.Set("max", strconv.Itoa(max))
	q.Set("col", "1")
	q.Set("base", "10")
	q.Set("format", "plain")
	q.Set("rnd", "new")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *RandomOrg) Intn(ctx context.Context, min, max int) (int, error) {
	ctx, span := tracing.Start(ctx, "entropy.randomorg")
	defer span.End()

	reqURL, err := r.URL(min, max)
	if err != nil {
		return 0, err
	}

	expback := backoff.NewExponentialBackOff()
	expback.InitialInterval = 500 * time.Millisecond
	expback.MaxInterval = 5 * time.Second

	n, err := backoff.Retry(ctx,
		func() (int, error) {
			return r.fetch(ctx, reqURL)
		},
		backoff.WithBackOff(expback),
		backoff.WithMaxTries(r.retries+1),
		backoff.WithNotify(func(err error, d time.Duration) {
			r.log.WarnContext(ctx, "random.org request failed, retrying", "err", err, "wait", d)
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("draw", n))
	return n, nil
}

func (r *RandomOrg) fetch(ctx context.Context, reqURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", "namepick/"+version.Version())

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("random.org request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("random.org response: %w", err)
	}
	body := strings.TrimSpace(string(b))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("random.org returned %s: %s", resp.Status, body)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return 0, err
		}
		return 0, backoff.Permanent(err)
	}

	n, err := strconv.Atoi(body)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("invalid random.org response %q: %w", body, err))
	}

	r.log.DebugContext(ctx, "draw", "n", n)

	return n, nil
}
