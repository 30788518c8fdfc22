package rpc

import (
	"context"
	"io"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxParallelProbes bounds concurrent pings per selection.
const maxParallelProbes = 8

// Pinger measures one endpoint. *chain.EVMClient satisfies it.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, uint64, error)
}

// Selector benchmarks a chain's endpoints and returns the one to use.
type Selector struct {
	algo    Algorithm
	timeout time.Duration
	dial    func(url string) Pinger
	log     logrus.FieldLogger
}

// Option configures a Selector.
type Option func(*Selector)

// WithTimeout bounds the whole benchmark.
func WithTimeout(d time.Duration) Option {
	return func(s *Selector) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Selector) { s.log = l }
}

// WithDialer replaces how endpoints are reached.
func WithDialer(fn func(url string) Pinger) Option {
	return func(s *Selector) { s.dial = fn }
}

// NewSelector creates a Selector for algo.
func NewSelector(algo Algorithm, opts ...Option) *Selector {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := &Selector{
		algo:    algo,
		timeout: 10 * time.Second,
		dial:    func(url string) Pinger { return chain.NewEVMClient(url) },
		log:     l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Benchmark pings every url concurrently. Results keep the input order.
func (s *Selector) Benchmark(ctx context.Context, urls []string) []Probe {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	probes := make([]Probe, len(urls))
	var g errgroup.Group
	g.SetLimit(maxParallelProbes)
	for i, url := range urls {
		g.Go(func() error {
			latency, block, err := s.dial(url).Ping(ctx)
			probes[i] = Probe{URL: url, Latency: latency, Block: block, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return probes
}

// Best returns the url to use. A single url is returned without probing.
func (s *Selector) Best(ctx context.Context, urls []string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	probes := s.Benchmark(ctx, urls)
	for _, p := range probes {
		entry := s.log.WithFields(logrus.Fields{"url": p.URL, "latency": p.Latency, "block": p.Block})
		if p.Err != nil {
			entry.WithError(p.Err).Debug("rpc probe failed")
			continue
		}
		entry.Debug("rpc probe")
	}

	winner, err := Pick(probes, s.algo)
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"url": winner.URL, "algorithm": s.algo}).Debug("rpc selected")
	return winner.URL, nil
}
