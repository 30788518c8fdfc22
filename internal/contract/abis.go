package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// erc20ABIJSON covers the subset of ERC-20 the airdrop flow touches.
const erc20ABIJSON = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// tsenderABIJSON is the distributor's single entry point.
const tsenderABIJSON = `[
	{"type":"function","name":"airdropERC20","stateMutability":"nonpayable","inputs":[
		{"name":"tokenAddress","type":"address"},
		{"name":"recipients","type":"address[]"},
		{"name":"amounts","type":"uint256[]"},
		{"name":"totalAmount","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"areListsValid","stateMutability":"pure","inputs":[
		{"name":"recipients","type":"address[]"},
		{"name":"amounts","type":"uint256[]"}
	],"outputs":[{"name":"","type":"bool"}]}
]`

// Method names used in calldata and confirmation prompts.
const (
	MethodApprove      = "approve"
	MethodAirdropERC20 = "airdropERC20"
)

var (
	// ERC20ABI is the parsed ERC-20 interface.
	ERC20ABI = mustParse(erc20ABIJSON)
	// TSenderABI is the parsed TSender distributor interface.
	TSenderABI = mustParse(tsenderABIJSON)
)

func mustParse(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("contract: bad embedded ABI: " + err.Error())
	}
	return parsed
}
