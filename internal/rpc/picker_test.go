package rpc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(url string, latency time.Duration, block uint64) rpc.Probe {
	return rpc.Probe{URL: url, Latency: latency, Block: block}
}

func dead(url string) rpc.Probe {
	return rpc.Probe{URL: url, Err: errors.New("connection refused")}
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]rpc.Algorithm{
		"":         rpc.AlgorithmFastest,
		"fastest":  rpc.AlgorithmFastest,
		"failover": rpc.AlgorithmFailover,
	} {
		got, err := rpc.ParseAlgorithm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := rpc.ParseAlgorithm("round-robin")
	assert.Error(t, err)
}

func TestPickFastest(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Probe{
		probe("http://slow.rpc", 200*time.Millisecond, 100),
		probe("http://fast.rpc", 30*time.Millisecond, 100),
		probe("http://medium.rpc", 80*time.Millisecond, 100),
	}, rpc.AlgorithmFastest)

	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickDiscardsStaleNodes(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Probe{
		probe("http://fresh.rpc", 50*time.Millisecond, 1000),
		probe("http://stale.rpc", 10*time.Millisecond, 990),
	}, rpc.AlgorithmFastest)

	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickSkipsDeadNodes(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Probe{
		dead("http://down.rpc"),
		probe("http://up.rpc", 90*time.Millisecond, 5),
	}, rpc.AlgorithmFastest)

	require.NoError(t, err)
	assert.Equal(t, "http://up.rpc", winner.URL)
}

func TestPickFailoverKeepsOrder(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Probe{
		dead("http://primary.rpc"),
		probe("http://secondary.rpc", 300*time.Millisecond, 100),
		probe("http://tertiary.rpc", 10*time.Millisecond, 100),
	}, rpc.AlgorithmFailover)

	require.NoError(t, err)
	assert.Equal(t, "http://secondary.rpc", winner.URL)
}

func TestPickAllDead(t *testing.T) {
	_, err := rpc.Pick([]rpc.Probe{dead("a"), dead("b")}, rpc.AlgorithmFastest)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)

	_, err = rpc.Pick(nil, rpc.AlgorithmFailover)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}
