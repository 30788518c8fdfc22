package rpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockServer answers eth_blockNumber with block after sleeping delay.
func blockServer(t *testing.T, block string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": block})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestSelectorSingleURLSkipsProbe(t *testing.T) {
	s := rpc.NewSelector(rpc.AlgorithmFastest)
	url, err := s.Best(context.Background(), []string{"http://never.dialed"})
	require.NoError(t, err)
	assert.Equal(t, "http://never.dialed", url)
}

func TestSelectorEmpty(t *testing.T) {
	_, err := rpc.NewSelector(rpc.AlgorithmFastest).Best(context.Background(), nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestSelectorPicksFastestLiveEndpoint(t *testing.T) {
	slow := blockServer(t, "0x64", 150*time.Millisecond)
	fast := blockServer(t, "0x64", 0)

	s := rpc.NewSelector(rpc.AlgorithmFastest, rpc.WithTimeout(2*time.Second))
	url, err := s.Best(context.Background(), []string{deadURL(t), slow.URL, fast.URL})
	require.NoError(t, err)
	assert.Equal(t, fast.URL, url)
}

func TestSelectorBenchmarkKeepsOrder(t *testing.T) {
	a := blockServer(t, "0x1", 0)
	b := blockServer(t, "0x2", 0)

	probes := rpc.NewSelector(rpc.AlgorithmFastest).Benchmark(context.Background(), []string{a.URL, b.URL})
	require.Len(t, probes, 2)
	assert.Equal(t, a.URL, probes[0].URL)
	assert.Equal(t, uint64(1), probes[0].Block)
	assert.Equal(t, uint64(2), probes[1].Block)
}

func TestSelectorTimeoutMarksUnhealthy(t *testing.T) {
	slow := blockServer(t, "0x64", 300*time.Millisecond)

	s := rpc.NewSelector(rpc.AlgorithmFastest, rpc.WithTimeout(50*time.Millisecond))
	_, err := s.Best(context.Background(), []string{slow.URL, deadURL(t)})
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

type fixedPinger struct {
	latency time.Duration
	block   uint64
}

func (p fixedPinger) Ping(context.Context) (time.Duration, uint64, error) {
	return p.latency, p.block, nil
}

func TestSelectorWithDialer(t *testing.T) {
	pingers := map[string]rpc.Pinger{
		"a": fixedPinger{latency: 40 * time.Millisecond, block: 10},
		"b": fixedPinger{latency: 20 * time.Millisecond, block: 10},
	}
	s := rpc.NewSelector(rpc.AlgorithmFastest, rpc.WithDialer(func(url string) rpc.Pinger { return pingers[url] }))

	url, err := s.Best(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", url)
}
