package config

import "time"

// GasBufferPercent pads node gas estimates before signing.
const GasBufferPercent = uint64(120)

// Timeouts used across cmd and the submission pipeline.
const (
	RPCSelectTimeout    = 10 * time.Second // fastest-endpoint benchmark
	TokenReadTimeout    = 15 * time.Second // decimals/symbol/balance/allowance reads
	TxConfirmTimeout    = 3 * time.Minute  // receipt wait per transaction
	ReceiptPollInterval = 2 * time.Second

	// LocalReceiptPollInterval is used against dev nodes that mine instantly.
	LocalReceiptPollInterval = 250 * time.Millisecond
)

// LocalChainID is the chain ID of anvil and hardhat dev nodes.
const LocalChainID = int64(31337)

// DefaultDebounce is the quiet period after the last keystroke before a
// field is validated or resolved.
const DefaultDebounce = 450 * time.Millisecond
