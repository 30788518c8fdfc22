package config

// Config holds all tsender configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network"`
	DefaultWallet  string              `json:"default_wallet"`
	RPCAlgorithm   string              `json:"rpc_algorithm"` // "fastest" | "failover"
	DebounceMS     int                 `json:"debounce_ms"`
	CustomRPCs     map[string][]string `json:"custom_rpcs"`
	// Distributors overrides the built-in TSender address per chain name.
	Distributors map[string]string `json:"distributors,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}
