// Copyright © 2025 Fair Grade Forests
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ethclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forestABIJSON = `[
	{"type":"function","name":"getRecordsCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"records","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
		{"name":"timestamp","type":"uint256"},
		{"name":"tribeName","type":"string"},
		{"name":"familyName","type":"string"},
		{"name":"coffeeTreeCount","type":"uint256"},
		{"name":"photoReference","type":"string"},
		{"name":"latitude","type":"int256"},
		{"name":"longitude","type":"int256"}
	]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"LogRecordAdded","inputs":[{"name":"index","type":"uint256","indexed":false}]}
]`

const contractAddr = "0x9d0b2d4a4bc4e4bd1a0b0bf4a5c4bd1a3fa25e41"

type rpcHandler func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError)

func newTestRPCServer(t *testing.T, handlers map[string]rpcHandler) string {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		res := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if h := handlers[req.Method]; h == nil {
			res["error"] = &rpcbackend.RPCError{Code: -32601, Message: "method not found"}
		} else if result, rpcErr := h(req.Params); rpcErr != nil {
			res["error"] = rpcErr
		} else {
			res["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func newHTTPTestClient(t *testing.T, handlers map[string]rpcHandler) *ethClient {
	url := newTestRPCServer(t, handlers)
	l, err := NewLedgerClient(context.Background(), &config.EthClientConfig{
		HTTP: config.HTTPClientConfig{URL: url},
	})
	require.NoError(t, err)
	return l.(*ethClient)
}

func testBinding(t *testing.T) *types.ContractBinding {
	var a abi.ABI
	require.NoError(t, json.Unmarshal([]byte(forestABIJSON), &a))
	return &types.ContractBinding{
		NetworkID: 1337,
		Address:   *ethtypes.MustNewAddress(contractAddr),
		ABI:       a,
	}
}

func ethCallReturning(t *testing.T, fn *abi.Entry, args, outputs string) rpcHandler {
	expectedData, err := fn.EncodeCallDataJSON([]byte(args))
	require.NoError(t, err)
	resData, err := fn.Outputs.EncodeABIDataJSON([]byte(outputs))
	require.NoError(t, err)
	return func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
		var tx ethsigner.Transaction
		assert.NoError(t, json.Unmarshal(params[0], &tx))
		assert.Equal(t, contractAddr, tx.To.String())
		assert.Equal(t, ethtypes.HexBytes0xPrefix(expectedData).String(), tx.Data.String())
		assert.JSONEq(t, `"latest"`, string(params[1]))
		return ethtypes.HexBytes0xPrefix(resData), nil
	}
}

func TestNewLedgerClientNoConnection(t *testing.T) {
	_, err := NewLedgerClient(context.Background(), &config.EthClientConfig{})
	assert.Regexp(t, "FS010102", err)
}

func TestNewLedgerClientBadHTTPURL(t *testing.T) {
	_, err := NewLedgerClient(context.Background(), &config.EthClientConfig{
		HTTP: config.HTTPClientConfig{URL: "ftp://localhost:8545"},
	})
	assert.Regexp(t, "FS010100", err)
}

func TestNewLedgerClientBadWSURL(t *testing.T) {
	_, err := NewLedgerClient(context.Background(), &config.EthClientConfig{
		WS: config.WSClientConfig{HTTPClientConfig: config.HTTPClientConfig{URL: "http://localhost:8546"}},
	})
	assert.Regexp(t, "FS010101", err)
}

func TestNewLedgerClientDerivesWebSocket(t *testing.T) {
	l, err := NewLedgerClient(context.Background(), &config.EthClientConfig{
		HTTP: config.HTTPClientConfig{URL: "https://localhost:8545"},
	})
	require.NoError(t, err)
	ec := l.(*ethClient)
	assert.NotNil(t, ec.rpc)
	assert.NotNil(t, ec.ws)
	assert.NotEqual(t, ec.rpc, ec.ws)
}

func TestNewLedgerClientWebSocketOnly(t *testing.T) {
	l, err := NewLedgerClient(context.Background(), &config.EthClientConfig{
		WS: config.WSClientConfig{HTTPClientConfig: config.HTTPClientConfig{URL: "ws://localhost:8546"}},
	})
	require.NoError(t, err)
	ec := l.(*ethClient)
	assert.Equal(t, ec.ws, ec.rpc)
}

func TestWSURLFromHTTP(t *testing.T) {
	assert.Equal(t, "ws://localhost:8545", wsURLFromHTTP("http://localhost:8545"))
	assert.Equal(t, "wss://node.example.com/rpc", wsURLFromHTTP("https://node.example.com/rpc"))
	assert.Equal(t, "", wsURLFromHTTP(""))
}

func TestParseWSConfigDefaults(t *testing.T) {
	wsc, err := parseWSConfig(context.Background(), &config.WSClientConfig{
		HTTPClientConfig: config.HTTPClientConfig{URL: "ws://localhost:8546"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8546", wsc.WebSocketURL)
	assert.Equal(t, 16*1024, wsc.ReadBufferSize)
	assert.Equal(t, "15s", wsc.HeartbeatInterval.String())
}

func TestNetworkID(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"net_version": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
			return "1337", nil
		},
	})
	id, err := ec.NetworkID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), id)
}

func TestNetworkIDInvalid(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"net_version": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
			return "not a number", nil
		},
	})
	_, err := ec.NetworkID(context.Background())
	assert.Regexp(t, "FS010104", err)
}

func TestNetworkIDFailed(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{})
	_, err := ec.NetworkID(context.Background())
	assert.Regexp(t, "FS010103", err)
}

func TestNetworkClass(t *testing.T) {
	for hash, expected := range map[string]types.NetworkClass{
		"0xd4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3": types.NetworkClassProduction,
		"0x25a5cc106eea7138acab33231d7160d69cb777ee0c2c553fcddf5138993e6dd9": types.NetworkClassTest,
		"0x0102030405060708091011121314151617181920212223242526272829303132": types.NetworkClassPrivate,
	} {
		genesisHash := hash
		ec := newHTTPTestClient(t, map[string]rpcHandler{
			"eth_getBlockByNumber": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
				assert.JSONEq(t, `"0x0"`, string(params[0]))
				return map[string]interface{}{"number": "0x0", "hash": genesisHash}, nil
			},
		})
		class, err := ec.NetworkClass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, expected, class, genesisHash)
	}
}

func TestNetworkClassFailed(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{})
	_, err := ec.NetworkClass(context.Background())
	assert.Regexp(t, "FS010105", err)
}

func TestAccounts(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_accounts": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
			return []string{"0xfb075bb99f2aa4c49955bf703509a227d7a12248"}, nil
		},
	})
	accounts, err := ec.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xfb075bb99f2aa4c49955bf703509a227d7a12248"}, accounts)
}

func TestAccountsFailed(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_accounts": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
			return nil, &rpcbackend.RPCError{Code: -32000, Message: "pop"}
		},
	})
	_, err := ec.Accounts(context.Background())
	assert.Regexp(t, "FS010106.*pop", err)
}

func TestCallRecord(t *testing.T) {
	binding := testBinding(t)
	fn := binding.ABI.Functions()["records"]
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_call": ethCallReturning(t, fn, `["3"]`,
			`["1546300800","Arhuaco","Torres","250","QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG","1087654321","-7312345678"]`),
	})
	ctx := context.Background()
	values, err := ec.Call(ctx, binding, "records", "3")
	require.NoError(t, err)
	require.Len(t, values, 7)

	ts, err := values.Uint64(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1546300800), ts)
	tribe, err := values.String(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Arhuaco", tribe)
	lon, err := values.BigInt(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(-7312345678), lon.Int64())
}

func TestCallNoArgs(t *testing.T) {
	binding := testBinding(t)
	fn := binding.ABI.Functions()["getRecordsCount"]
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_call": ethCallReturning(t, fn, `[]`, `["12"]`),
	})
	values, err := ec.Call(context.Background(), binding, "getRecordsCount")
	require.NoError(t, err)
	count, err := values.Uint64(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), count)
}

func TestCallOwnerAddress(t *testing.T) {
	binding := testBinding(t)
	fn := binding.ABI.Functions()["owner"]
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_call": ethCallReturning(t, fn, `[]`, `["0xfb075bb99f2aa4c49955bf703509a227d7a12248"]`),
	})
	values, err := ec.Call(context.Background(), binding, "owner")
	require.NoError(t, err)
	owner, err := values.Address(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "0xfb075bb99f2aa4c49955bf703509a227d7a12248", owner.String())
}

func TestCallFunctionNotFound(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{})
	_, err := ec.Call(context.Background(), testBinding(t), "missing")
	assert.Regexp(t, "FS010107", err)
}

func TestCallBadArgs(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{})
	_, err := ec.Call(context.Background(), testBinding(t), "records", "not a number")
	assert.Regexp(t, "FS010109", err)
}

func TestCallRPCFailure(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_call": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
			return nil, &rpcbackend.RPCError{Code: -32000, Message: "execution reverted"}
		},
	})
	_, err := ec.Call(context.Background(), testBinding(t), "getRecordsCount")
	assert.Regexp(t, "FS010109.*execution reverted", err)
}

func TestCallDecodeFailure(t *testing.T) {
	ec := newHTTPTestClient(t, map[string]rpcHandler{
		"eth_call": func(params []json.RawMessage) (interface{}, *rpcbackend.RPCError) {
			return "0x01", nil
		},
	})
	_, err := ec.Call(context.Background(), testBinding(t), "getRecordsCount")
	assert.Regexp(t, "FS010110", err)
}

func TestValuesAccessorErrors(t *testing.T) {
	ctx := context.Background()
	values := Values{
		json.RawMessage(`"abc"`),
		json.RawMessage(`12`),
		json.RawMessage(`"-1"`),
		json.RawMessage(`"0x1234"`),
		json.RawMessage(fmt.Sprintf(`"%s"`, "18446744073709551616")),
	}

	_, err := values.String(ctx, 5)
	assert.Regexp(t, "FS010114", err)
	_, err = values.String(ctx, -1)
	assert.Regexp(t, "FS010114", err)
	_, err = values.String(ctx, 1)
	assert.Regexp(t, "FS010115", err)
	_, err = values.BigInt(ctx, 0)
	assert.Regexp(t, "FS010115.*integer", err)
	_, err = values.Uint64(ctx, 2)
	assert.Regexp(t, "FS010115.*uint64", err)
	_, err = values.Uint64(ctx, 4)
	assert.Regexp(t, "FS010115.*uint64", err)
	_, err = values.Address(ctx, 3)
	assert.Regexp(t, "FS010115.*address", err)
	_, err = values.Address(ctx, 1)
	assert.Regexp(t, "FS010115", err)
	_, err = values.BigInt(ctx, 7)
	assert.Regexp(t, "FS010114", err)
}
