package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memoio/vana-wallet/lib/address"
)

type rpcReq struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcServer answers eth_getBalance from balances (lower case address to hex
// wei) and eth_chainId with 14800.
func rpcServer(t *testing.T, balances map[string]string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var result string
		switch req.Method {
		case "eth_chainId":
			result = "0x39d0"
		case "eth_getBalance":
			var a string
			_ = json.Unmarshal(req.Params[0], &a)
			result = "0x0"
			if b, ok := balances[strings.ToLower(a)]; ok {
				result = b
			}
		default:
			t.Errorf("unexpected method %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	a1, err := address.NewFromString("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.NoError(t, err)
	a2, err := address.NewFromString("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)

	srv := rpcServer(t, map[string]string{
		strings.ToLower(a1.String()): "0xde0b6b3a7640000",
	})
	c := NewClient(srv.URL)
	ctx := context.Background()

	bal, err := c.Balance(ctx, a1)
	require.NoError(t, err)
	require.Equal(t, "1.000000", FormatEther(bal))

	bals, err := c.Balances(ctx, []address.Address{a2, a1})
	require.NoError(t, err)
	require.Len(t, bals, 2)
	require.Equal(t, 0, bals[0].Sign())
	require.Zero(t, bals[1].Cmp(big.NewInt(1e18)))

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 14800, id.Int64())
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient(srv.URL).Balance(context.Background(), address.Undef)
	require.Error(t, err)
}
