package cmd

import (
	"context"

	"github.com/Mohsinsiddi/tsender/internal/airdrop"
	"github.com/Mohsinsiddi/tsender/internal/allowance"
	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/Mohsinsiddi/tsender/internal/wallet"
)

// pipeline holds the per-chain read side shared by every command.
type pipeline struct {
	chain      *chain.Chain
	client     *chain.EVMClient
	resolver   *token.Resolver
	allowances *allowance.Reconciler
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	c, err := activeChain()
	if err != nil {
		return nil, err
	}
	client, err := connect(ctx, c)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		chain:      c,
		client:     client,
		resolver:   token.NewResolver(client, c.ChainID, log.WithField("chain", c.Name)),
		allowances: allowance.NewReconciler(allowance.NewChainReader(client), registry),
	}, nil
}

// orchestrator wires the write side for signer. confirm may be nil.
func (p *pipeline) orchestrator(signer *wallet.Signer, confirm func(contract.Call) bool, observe func(airdrop.State)) *airdrop.Orchestrator {
	opts := []contract.SenderOption{contract.WithLogger(log)}
	if p.chain.ChainID == config.LocalChainID {
		opts = append(opts, contract.WithPollInterval(config.LocalReceiptPollInterval))
	}
	if txWait > 0 {
		opts = append(opts, contract.WithConfirmTimeout(txWait))
	}
	if confirm != nil {
		opts = append(opts, contract.WithConfirm(confirm))
	}
	sender := contract.NewSender(p.client, signer, p.chain.ChainID, opts...)

	orchOpts := []airdrop.Option{airdrop.WithLogger(log.WithField("chain", p.chain.Name))}
	if observe != nil {
		orchOpts = append(orchOpts, airdrop.WithObserver(observe))
	}
	return airdrop.New(p.resolver, p.allowances, sender, orchOpts...)
}
