package chain

import (
	"errors"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds all metadata for a single EVM chain.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
	// Distributor is the TSender contract deployed on this chain; empty when
	// the chain has no deployment.
	Distributor string `json:"distributor,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates the registry of every chain tsender knows about.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry, ordered by chain ID.
func (r *Registry) All() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// GetByName finds a chain by its slug name (e.g. "base", "ethereum").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// Distributor returns the TSender address registered for chainID.
func (r *Registry) Distributor(chainID int64) (common.Address, bool) {
	c, ok := r.byID[chainID]
	if !ok || c.Distributor == "" || !common.IsHexAddress(c.Distributor) {
		return common.Address{}, false
	}
	return common.HexToAddress(c.Distributor), true
}

// OverrideDistributors replaces distributor addresses from a chain-name keyed
// map, typically the "distributors" section of config.json. Unknown chain
// names are returned so the caller can warn about them.
func (r *Registry) OverrideDistributors(overrides map[string]string) (unknown []string) {
	for name, addr := range overrides {
		c, ok := r.byName[strings.ToLower(name)]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		c.Distributor = addr
	}
	sort.Strings(unknown)
	return unknown
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer:       "https://etherscan.io",
			Distributor:    "0x3aD9F29AB266E4828450B33df7a9B9D7355Cd821",
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			Explorer:       "https://optimistic.etherscan.io",
			Distributor:    "0xAaf523DF9455cC7B6ca5637D01624BC00a5e9fAa",
		},
		{
			Name: "zksync", DisplayName: "zkSync Era", ChainID: 324,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.era.zksync.io", "https://zksync-era-rpc.publicnode.com"},
			Explorer:       "https://explorer.zksync.io",
			Distributor:    "0x7e645Ea4386deb2E9e510D805461aA12db83fb5E",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			Explorer:       "https://basescan.org",
			Distributor:    "0x31801c3e09708549c1b2c9E1CFbF001399a1B9fa",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", ChainID: 42161,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			Explorer:       "https://arbiscan.io",
			Distributor:    "0xA2b5aEDF7EEF6469AB9cBD99DE24a6881702Eb19",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://sepolia.gateway.tenderly.co"},
			Explorer:       "https://sepolia.etherscan.io",
			Distributor:    "0xa27c5C77DA713f410F9b15d4B0c52CAe597a973a",
		},
		{
			Name: "anvil", DisplayName: "Anvil (local)", ChainID: 31337,
			NativeCurrency: "ETH",
			RPCs:           []string{"http://127.0.0.1:8545"},
			// First contract deployed by the default anvil deployer key.
			Distributor: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137,
			NativeCurrency: "POL",
			RPCs:           []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			Explorer:       "https://polygonscan.com",
		},
	}
}
