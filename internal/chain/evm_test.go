package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC error.
func rpcErrorServer(t *testing.T, code int, msg string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": code, "message": msg},
		})
	}))
}

// rpcBadJSON creates a server that returns malformed JSON.
func rpcBadJSON(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
}

var ctx = context.Background()

// ---------------------------------------------------------------------------
// simple reads
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0x7a69"})
	defer srv.Close()

	id, err := NewEVMClient(srv.URL).ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id)
}

func TestBlockNumber(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x10"})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
}

func TestGasPrice(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x77359400"})
	defer srv.Close()

	gp, err := NewEVMClient(srv.URL).GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2_000_000_000), gp)
}

func TestPendingNonce(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionCount": "0x5"})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).PendingNonce(ctx, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
}

func TestEstimateGas(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_estimateGas": "0xea60"})
	defer srv.Close()

	gas, err := NewEVMClient(srv.URL).EstimateGas(ctx, common.Address{1}, common.Address{2}, []byte{0xab})
	require.NoError(t, err)
	assert.Equal(t, uint64(60_000), gas)
}

func TestCallContractReturnsBytes(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0x0012"})
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(ctx, common.Address{1}, []byte{0x31, 0x3c, 0xe5, 0x67})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x12}, out)
}

func TestCallContractEmptyResult(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(ctx, common.Address{1}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCallContractSendsChecksummedAddress(t *testing.T) {
	var gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int               `json:"id"`
			Params []json.RawMessage `json:"params"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		var call struct {
			To string `json:"to"`
		}
		json.Unmarshal(req.Params[0], &call) //nolint:errcheck
		gotTo = call.To
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": "0x"}) //nolint:errcheck
	}))
	defer srv.Close()

	addr := common.HexToAddress("0x1f9840a85d5af5bf1d1762f925bdaddc4201f984")
	_, err := NewEVMClient(srv.URL).CallContract(ctx, addr, nil)
	require.NoError(t, err)
	assert.Equal(t, "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", gotTo)
}

func TestSendRawTransaction(t *testing.T) {
	hash := common.HexToHash("0xab").Hex()
	srv := rpcMock(t, map[string]interface{}{"eth_sendRawTransaction": hash})
	defer srv.Close()

	got, err := NewEVMClient(srv.URL).SendRawTransaction(ctx, []byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(hash), got)
}

// ---------------------------------------------------------------------------
// errors
// ---------------------------------------------------------------------------

func TestRPCErrorIsTyped(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "header not found")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).BlockNumber(ctx)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "header not found", rpcErr.Message)
	assert.False(t, IsRevert(err))
}

func TestIsRevertExecutionReverted(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).CallContract(ctx, common.Address{1}, nil)
	assert.True(t, IsRevert(err))
}

func TestIsRevertMessageOnly(t *testing.T) {
	assert.True(t, IsRevert(&RPCError{Code: -32000, Message: "VM Exception while processing transaction: revert"}))
	assert.True(t, IsRevert(ErrReverted))
	assert.False(t, IsRevert(errors.New("dial tcp: connection refused")))
	assert.False(t, IsRevert(nil))
}

func TestIsRevertIgnoresNodeTimeout(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "execution aborted (timeout = 5s)")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).CallContract(ctx, common.Address{1}, nil)
	require.Error(t, err)
	assert.False(t, IsRevert(err))
}

func TestBadJSONResponse(t *testing.T) {
	srv := rpcBadJSON(t)
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).ChainID(ctx)
	assert.Error(t, err)
	assert.False(t, IsRevert(err))
}

func TestConnectionRefused(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:19991").ChainID(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC request failed")
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestTransactionReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0x100",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	hash := common.HexToHash("0x01")
	receipt, err := NewEVMClient(srv.URL).TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, uint64(256), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, hash, receipt.Hash)
}

func TestTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).TransactionReceipt(ctx, common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Nil(t, receipt, "pending tx should return nil receipt")
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x0",
			"blockNumber": "0x200",
			"gasUsed":     "0x7530",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, common.HexToHash("0x02"), 10*time.Millisecond)
	require.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(0), receipt.Status)
}

func TestWaitForReceiptTimesOut(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err := NewEVMClient(srv.URL).WaitForReceipt(tctx, common.HexToHash("0x03"), 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x2a"})
	defer srv.Close()

	latency, block, err := NewEVMClient(srv.URL).Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
	assert.Greater(t, latency, time.Duration(0))
}
