// Package entropy supplies random integers in a bounded range. The
// default source asks random.org; deterministic and local sources can be
// substituted for tests and offline use.
package entropy

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.ntppool.org/namepick/httpclient"
)

// Source supplies one integer in the inclusive range [min, max].
type Source interface {
	Intn(ctx context.Context, min, max int) (int, error)
}

const (
	SourceRandomOrg = "randomorg"
	SourceLocal     = "local"
)

// Config selects and configures a Source.
type Config struct {
	Name string

	// random.org options
	URL       string
	Timeout   time.Duration
	Retries   uint
	IPVersion httpclient.IPVersion

	// local source; nil seeds from the runtime
	Seed *uint64
}

// New returns the source named in cfg.
func New(cfg Config) (Source, error) {
	switch cfg.Name {
	case "", SourceRandomOrg:
		cl := httpclient.New(httpclient.Options{
			Timeout:   cfg.Timeout,
			IPVersion: cfg.IPVersion,
		})
		return NewRandomOrg(cl, cfg.URL, cfg.Retries), nil
	case SourceLocal:
		return NewLocal(cfg.Seed), nil
	}
	return nil, fmt.Errorf("unknown entropy source %q", cfg.Name)
}

// ErrNoDraws is returned by an empty Sequence.
var ErrNoDraws = errors.New("entropy: sequence has no draws")

// Sequence replays a fixed list of draws, starting over when it runs
// out. The range arguments are ignored.
type Sequence struct {
	mu    sync.Mutex
	draws []int
	next  int
	calls int
}

func NewSequence(draws ...int) *Sequence {
	return &Sequence{draws: draws}
}

func (s *Sequence) Intn(ctx context.Context, min, max int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.draws) == 0 {
		return 0, ErrNoDraws
	}
	d := s.draws[s.next]
	s.next = (s.next + 1) % len(s.draws)
	s.calls++
	return d, nil
}

// Calls returns how many draws have been handed out.
func (s *Sequence) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Local draws from a PCG generator in this process.
type Local struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLocal(seed *uint64) *Local {
	var src *rand.PCG
	if seed != nil {
		src = rand.NewPCG(*seed, *seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Local{r: rand.New(src)}
}

func (l *Local) Intn(ctx context.Context, min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("entropy: invalid range [%d, %d]", min, max)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return min + l.r.IntN(max-min+1), nil
}
