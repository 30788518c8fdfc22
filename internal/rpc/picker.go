// Package rpc chooses which JSON-RPC endpoint of a chain to talk to.
package rpc

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoHealthyRPC is returned when no endpoint answered.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm is the endpoint selection strategy.
type Algorithm string

const (
	// AlgorithmFastest picks the lowest-latency endpoint that is not stale.
	AlgorithmFastest Algorithm = "fastest"
	// AlgorithmFailover picks the first endpoint in list order that answered.
	AlgorithmFailover Algorithm = "failover"

	// Endpoints more than this many blocks behind the best are discarded.
	staleBlockThreshold = 3
)

// ParseAlgorithm accepts the config spelling. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AlgorithmFastest:
		return AlgorithmFastest, nil
	case AlgorithmFailover:
		return AlgorithmFailover, nil
	}
	return "", fmt.Errorf("unknown rpc algorithm %q (want fastest or failover)", s)
}

// Probe is one measured endpoint.
type Probe struct {
	URL     string
	Latency time.Duration
	Block   uint64
	Err     error
}

// Healthy reports whether the endpoint answered.
func (p Probe) Healthy() bool { return p.Err == nil }

// Pick chooses among probes, which must be in configured order.
func Pick(probes []Probe, algo Algorithm) (Probe, error) {
	var best uint64
	for _, p := range probes {
		if p.Healthy() && p.Block > best {
			best = p.Block
		}
	}

	var winner *Probe
	for i := range probes {
		p := &probes[i]
		if !p.Healthy() || best-p.Block > staleBlockThreshold {
			continue
		}
		if algo == AlgorithmFailover {
			return *p, nil
		}
		if winner == nil || p.Latency < winner.Latency {
			winner = p
		}
	}
	if winner == nil {
		return Probe{}, ErrNoHealthyRPC
	}
	return *winner, nil
}
