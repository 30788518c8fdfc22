package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/rpc"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/Mohsinsiddi/tsender/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// newWalletManager creates a Manager backed by the config-dir JSON store
// and the OS keyring, falling back to encrypted files under the config dir.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyDir(filepath.Join(cfg.Dir(), "keys")),
	)
}

// activeChain returns the chain selected with --network or the config default.
func activeChain() (*chain.Chain, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := registry.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q, see `tsender chains`", name)
	}
	return c, nil
}

// chainRPCs lists custom RPCs first, then the built-in ones.
func chainRPCs(c *chain.Chain) []string {
	urls := append([]string{}, cfg.GetRPCs(c.Name)...)
	return append(urls, c.RPCs...)
}

// pickBestRPC selects the RPC for a chain with the configured algorithm.
func pickBestRPC(ctx context.Context, c *chain.Chain) (string, error) {
	urls := chainRPCs(c)
	if len(urls) == 0 {
		return "", fmt.Errorf("no RPCs configured for %s, add one with `tsender rpc add %s <url>`", c.Name, c.Name)
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}
	sel := rpc.NewSelector(algo, rpc.WithTimeout(config.RPCSelectTimeout), rpc.WithLogger(log))
	return sel.Best(ctx, urls)
}

// connect picks an RPC for c and checks it really serves that chain.
func connect(ctx context.Context, c *chain.Chain) (*chain.EVMClient, error) {
	url, err := pickBestRPC(ctx, c)
	if err != nil {
		return nil, err
	}
	client := chain.NewEVMClient(url)

	idCtx, cancel := context.WithTimeout(ctx, config.TokenReadTimeout)
	defer cancel()
	id, err := client.ChainID(idCtx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id from %s: %w", url, err)
	}
	if id != c.ChainID {
		served := fmt.Sprintf("%d", id)
		if other, err := registry.GetByChainID(id); err == nil {
			served = other.Name
		}
		return nil, fmt.Errorf("RPC %s serves %s, expected %s (%d)", url, served, c.Name, c.ChainID)
	}
	log.WithFields(logrus.Fields{"chain": c.Name, "rpc": url}).Debug("connected")
	return client, nil
}

// resolveAccount turns a --wallet value (name or address) into the
// connected account. An empty value uses the default wallet; with no
// default the account is nil, which is a valid "not connected" state.
func resolveAccount(walletFlag string) (*common.Address, *wallet.Wallet, error) {
	mgr := newWalletManager()

	if walletFlag == "" {
		w := mgr.Default()
		if w == nil && cfg.DefaultWallet != "" {
			w, _ = mgr.Get(cfg.DefaultWallet)
		}
		if w == nil {
			return nil, nil, nil
		}
		addr := w.Account()
		return &addr, w, nil
	}

	if validate.IsAddress(walletFlag) {
		addr := common.HexToAddress(walletFlag)
		return &addr, nil, nil
	}

	w, err := mgr.Get(walletFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet %q not found, run `tsender wallet list` or pass an address", walletFlag)
	}
	addr := w.Account()
	return &addr, w, nil
}

// loadSigningWallet resolves the wallet that will sign and unlocks its key.
func loadSigningWallet(walletFlag string) (*wallet.Wallet, *wallet.Signer, error) {
	_, w, err := resolveAccount(walletFlag)
	if err != nil {
		return nil, nil, err
	}
	if w == nil {
		return nil, nil, fmt.Errorf("no signing wallet: pass --wallet <name> or add one with `tsender wallet add <name> --key <private-key>`")
	}
	if !w.CanSign() {
		return nil, nil, fmt.Errorf("wallet %q is watch-only and cannot sign\n  To add a signing wallet: tsender wallet add <name> --key <private-key>", w.Name)
	}

	signer, err := newWalletManager().Signer(w.Name)
	if err != nil {
		return nil, nil, err
	}
	if err := signer.Unlock(); err != nil {
		return nil, nil, fmt.Errorf("unlocking wallet %q: %w", w.Name, err)
	}
	return w, signer, nil
}

// parseAddress accepts a hex address or a wallet name.
func parseAddress(s string) (common.Address, error) {
	if validate.IsAddress(s) {
		return common.HexToAddress(s), nil
	}
	addr, _, err := resolveAccount(s)
	if err != nil {
		return common.Address{}, err
	}
	if addr == nil {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return *addr, nil
}
