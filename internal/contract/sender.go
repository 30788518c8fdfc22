package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// ErrRejected is returned when the confirmation hook declines a transaction.
var ErrRejected = errors.New("transaction rejected by user")

// Call is one contract write the wallet is asked to sign.
type Call struct {
	Method  string
	To      common.Address
	Data    []byte
	Summary string // one line shown when asking for confirmation
}

// Backend is the node surface a Sender needs. *chain.EVMClient satisfies it.
type Backend interface {
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPriorityFee(ctx context.Context) (*big.Int, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error)
}

// TxSigner signs transactions for a single account. *wallet.Signer satisfies it.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Sender signs, broadcasts and waits for contract writes.
type Sender struct {
	backend  Backend
	signer   TxSigner
	chainID  *big.Int
	confirm  func(Call) bool
	interval time.Duration
	timeout  time.Duration
	log      logrus.FieldLogger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithConfirm installs a hook asked before each signature. Returning false
// aborts the call with ErrRejected.
func WithConfirm(fn func(Call) bool) SenderOption {
	return func(s *Sender) { s.confirm = fn }
}

// WithPollInterval sets how often receipts are polled.
func WithPollInterval(d time.Duration) SenderOption {
	return func(s *Sender) { s.interval = d }
}

// WithConfirmTimeout bounds the wait for a receipt.
func WithConfirmTimeout(d time.Duration) SenderOption {
	return func(s *Sender) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) SenderOption {
	return func(s *Sender) { s.log = l }
}

// NewSender creates a Sender for chainID.
func NewSender(backend Backend, signer TxSigner, chainID int64, opts ...SenderOption) *Sender {
	s := &Sender{
		backend:  backend,
		signer:   signer,
		chainID:  big.NewInt(chainID),
		interval: config.ReceiptPollInterval,
		timeout:  config.TxConfirmTimeout,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute signs and broadcasts call, then blocks until it is mined.
// A simulation revert is returned before anything is signed; a mined
// revert comes back wrapping chain.ErrReverted.
func (s *Sender) Execute(ctx context.Context, call Call) (*chain.TxReceipt, error) {
	from := s.signer.Address()
	log := s.log.WithFields(logrus.Fields{"method": call.Method, "to": call.To.Hex(), "from": from.Hex()})

	gas, err := s.backend.EstimateGas(ctx, from, call.To, call.Data)
	if err != nil {
		return nil, fmt.Errorf("estimating gas for %s: %w", call.Method, err)
	}
	gas = gas * config.GasBufferPercent / 100

	gasPrice, err := s.backend.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err := s.backend.MaxPriorityFee(ctx)
	if err != nil {
		log.WithError(err).Debug("eth_maxPriorityFeePerGas unavailable, using gas price as tip")
		tip = new(big.Int).Set(gasPrice)
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(gasPrice, big.NewInt(2)), tip)

	nonce, err := s.backend.PendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	if s.confirm != nil && !s.confirm(call) {
		log.Info("transaction declined")
		return nil, ErrRejected
	}

	to := call.To
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      call.Data,
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}
	log = log.WithField("tx", hash.Hex())
	log.WithFields(logrus.Fields{"nonce": nonce, "gas": gas}).Info("transaction sent")

	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	receipt, err := s.backend.WaitForReceipt(wctx, hash, s.interval)
	if err != nil {
		return receipt, err
	}
	log.WithFields(logrus.Fields{"block": receipt.BlockNumber, "gas_used": receipt.GasUsed}).Info("transaction mined")
	return receipt, nil
}
