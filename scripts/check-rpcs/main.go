// check-rpcs: probes every built-in RPC in the chain registry in parallel and
// reports latency, head block and whether the endpoint serves the chain ID
// the registry expects.
//
// Run from the module root:
//
//	go run ./scripts/check-rpcs
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/chain"
)

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	chain   string
	url     string
	latency string
	block   string
	note    string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	reg := chain.NewRegistry()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, c := range reg.All() {
		for _, url := range c.RPCs {
			wg.Add(1)
			go func(c chain.Chain, url string) {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
				defer cancel()

				client := chain.NewEVMClient(url)
				r := result{chain: c.Name, url: url, latency: "-", block: "-"}

				latency, block, err := client.Ping(ctx)
				switch {
				case err != nil:
					r.note = "unreachable: " + shortErr(err)
				default:
					r.latency = fmt.Sprintf("%dms", latency.Milliseconds())
					r.block = fmt.Sprintf("%d", block)
					id, err := client.ChainID(ctx)
					if err != nil {
						r.note = "chain id: " + shortErr(err)
					} else if id != c.ChainID {
						r.note = fmt.Sprintf("WRONG CHAIN %d", id)
					}
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(c, url)
		}
	}

	wg.Wait()

	printTable(results)
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.chain != b.chain {
			return a.chain < b.chain
		}
		return a.url < b.url
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "CHAIN\tRPC\tLATENCY\tBLOCK\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 36)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 12))

	lastChain := ""
	for _, r := range results {
		if r.chain != lastChain {
			if lastChain != "" {
				fmt.Fprintln(w, "\t\t\t\t")
			}
			lastChain = r.chain
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.chain, r.url, r.latency, r.block, r.note)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
