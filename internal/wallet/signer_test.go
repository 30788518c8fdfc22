package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known anvil test account #0; never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func dynamicTx() *types.Transaction {
	to := common.Address{1}
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     0,
		GasTipCap: big.NewInt(1e8),
		GasFeeCap: big.NewInt(2e9),
		Gas:       60_000,
		To:        &to,
		Value:     big.NewInt(0),
	})
}

// ---------------------------------------------------------------------------
// Signer.Address
// ---------------------------------------------------------------------------

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, nullKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

// ---------------------------------------------------------------------------
// Signer.SignTx: error paths
// ---------------------------------------------------------------------------

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, nullKeystore()).SignTx(dynamicTx(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestSignTxKeystoreNotAvailable(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "tsender.w"}

	_, err := NewSigner(w, nullKeystore()).SignTx(dynamicTx(), big.NewInt(1))
	assert.ErrorContains(t, err, "retrieving key")
}

func TestSignTxKeyForDifferentAccount(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("mismatch", testPrivKeyHex)
	w := &Wallet{Name: "mismatch", Address: "0x0000000000000000000000000000000000000001", Type: TypeSigning, KeyRef: ref}

	_, err := NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(1))
	assert.ErrorContains(t, err, "belongs to")
}

// ---------------------------------------------------------------------------
// Signer.SignTx: success paths
// ---------------------------------------------------------------------------

func TestSignTxRecoversSender(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("testwal", "0x"+testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "testwal", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	raw, err := NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(1))
	require.NoError(t, err)

	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))
	from, err := types.Sender(types.NewLondonSigner(big.NewInt(1)), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

func TestSignTxFileKeystore(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := testKeystore(t)
	ref, err := ks.Store("filewal", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "filewal", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	raw, err := NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(1))
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestSignTxDifferentChainIDs(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("testwal2", testPrivKeyHex)
	s := NewSigner(&Wallet{Name: "testwal2", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}, ks)

	mainnet := types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(1), Gas: 21_000, GasFeeCap: big.NewInt(1), GasTipCap: big.NewInt(1), To: &common.Address{1}})
	base := types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(8453), Gas: 21_000, GasFeeCap: big.NewInt(1), GasTipCap: big.NewInt(1), To: &common.Address{1}})

	rawMainnet, err := s.SignTx(mainnet, big.NewInt(1))
	require.NoError(t, err)
	rawBase, err := s.SignTx(base, big.NewInt(8453))
	require.NoError(t, err)

	assert.NotEqual(t, rawMainnet, rawBase, "same tx signed on different chains must differ")
}

// ---------------------------------------------------------------------------
// Signer.Unlock
// ---------------------------------------------------------------------------

func TestUnlockCachesKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("cached", testPrivKeyHex)
	require.NoError(t, err)
	w := &Wallet{Name: "cached", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}

	s := NewSigner(w, ks)
	require.NoError(t, s.Unlock())

	// The key is gone from the store but signing still works.
	require.NoError(t, ks.Delete(ref))
	_, err = s.SignTx(dynamicTx(), big.NewInt(1))
	assert.NoError(t, err)
}

func TestUnlockReportsMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("other", testPrivKeyHex)
	w := &Wallet{Name: "other", Address: "0x0000000000000000000000000000000000000002", Type: TypeSigning, KeyRef: ref}

	assert.ErrorContains(t, NewSigner(w, ks).Unlock(), "belongs to")
}
