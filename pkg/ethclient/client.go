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
	"strconv"

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

// Genesis block hashes of the public networks. Anything else is a private network.
var knownGenesis = map[string]types.NetworkClass{
	"0xd4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3": types.NetworkClassProduction, // mainnet
	"0x41941023680923e0fe4d74a34bdac8141f2540e3ae90623718e47d66d1ca4a2d": types.NetworkClassTest,       // ropsten
	"0x6341fd3daf94b748c72ced5a5b26028f2474f5f00d824504e4fa37a75767e177": types.NetworkClassTest,       // rinkeby
	"0xbf7e331f7f7c1dd2e05159666b3bf8bc7a8a3a9eb1d518969eab529dd9b88c1a": types.NetworkClassTest,       // goerli
	"0xa3c565fc15c7478862d50ccd6561e3c06b24cc509bf388941c25ea985ce32cb9": types.NetworkClassTest,       // kovan
	"0x25a5cc106eea7138acab33231d7160d69cb777ee0c2c553fcddf5138993e6dd9": types.NetworkClassTest,       // sepolia
	"0xb5f7f912443c940f21fd611f12828d75b534364ed9e95ca4e307729a4661bde4": types.NetworkClassTest,       // holesky
}

type ethClient struct {
	rpc rpcbackend.RPC
	ws  wsConnection
}

// NewLedgerClient builds the client from config without connecting.
// HTTP is used for calls when configured, and the WebSocket (explicit, or
// derived from the HTTP URL) carries event subscriptions.
func NewLedgerClient(ctx context.Context, conf *config.EthClientConfig) (Ledger, error) {
	ec := &ethClient{}
	if conf.HTTP.URL != "" {
		rc, err := parseHTTPConfig(ctx, &conf.HTTP)
		if err != nil {
			return nil, err
		}
		ec.rpc = rpcbackend.NewRPCClient(rc)
	}

	wsConf := conf.WS
	if wsConf.URL == "" {
		wsConf.URL = wsURLFromHTTP(conf.HTTP.URL)
		if wsConf.HTTPHeaders == nil {
			wsConf.HTTPHeaders = conf.HTTP.HTTPHeaders
		}
		if wsConf.Auth.Username == "" {
			wsConf.Auth = conf.HTTP.Auth
		}
	}
	if wsConf.URL != "" {
		wsc, err := parseWSConfig(ctx, &wsConf)
		if err != nil {
			return nil, err
		}
		ec.ws = &wsRPCAdapter{WebSocketRPCClient: rpcbackend.NewWSRPCClient(wsc)}
		if ec.rpc == nil {
			ec.rpc = ec.ws
		}
	}

	if ec.rpc == nil {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientNoConnection)
	}
	return ec, nil
}

func (ec *ethClient) Connect(ctx context.Context) error {
	if ec.ws != nil {
		return ec.ws.Connect(ctx)
	}
	return nil
}

func (ec *ethClient) Close() {
	if ec.ws != nil {
		ec.ws.Close()
	}
}

func (ec *ethClient) NetworkID(ctx context.Context) (uint64, error) {
	var netVersion string
	if rpcErr := ec.rpc.CallRPC(ctx, &netVersion, "net_version"); rpcErr != nil {
		return 0, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientNetworkIDFailed)
	}
	id, err := strconv.ParseUint(netVersion, 10, 64)
	if err != nil {
		return 0, i18n.WrapError(ctx, err, msgs.MsgEthClientNetworkIDInvalid, netVersion)
	}
	return id, nil
}

func (ec *ethClient) NetworkClass(ctx context.Context) (types.NetworkClass, error) {
	var genesis *struct {
		Hash ethtypes.HexBytes0xPrefix `json:"hash"`
	}
	if rpcErr := ec.rpc.CallRPC(ctx, &genesis, "eth_getBlockByNumber", "0x0", false); rpcErr != nil {
		return types.NetworkClassUnknown, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientGenesisFailed)
	}
	if genesis == nil {
		return types.NetworkClassUnknown, nil
	}
	if class, ok := knownGenesis[genesis.Hash.String()]; ok {
		return class, nil
	}
	return types.NetworkClassPrivate, nil
}

func (ec *ethClient) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if rpcErr := ec.rpc.CallRPC(ctx, &accounts, "eth_accounts"); rpcErr != nil {
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientAccountsFailed)
	}
	return accounts, nil
}

func (ec *ethClient) Call(ctx context.Context, contract *types.ContractBinding, method string, args ...string) (Values, error) {
	fn := contract.ABI.Functions()[method]
	if fn == nil {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientFunctionNotFound, method)
	}
	if args == nil {
		args = []string{}
	}
	jsonArgs, err := json.Marshal(args)
	if err == nil {
		var callData []byte
		callData, err = fn.EncodeCallDataJSONCtx(ctx, jsonArgs)
		if err == nil {
			return ec.callEncoded(ctx, contract, fn, callData)
		}
	}
	return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientCallFailed, fn.String())
}

func (ec *ethClient) callEncoded(ctx context.Context, contract *types.ContractBinding, fn *abi.Entry, callData []byte) (Values, error) {
	tx := &ethsigner.Transaction{
		To:   &contract.Address,
		Data: callData,
	}
	var resData ethtypes.HexBytes0xPrefix
	if rpcErr := ec.rpc.CallRPC(ctx, &resData, "eth_call", tx, "latest"); rpcErr != nil {
		log.L(ctx).Debugf("eth_call %s failed: %s", fn.Name, rpcErr.Message)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientCallFailed, fn.String())
	}
	cv, err := fn.Outputs.DecodeABIDataCtx(ctx, resData, 0)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientCallDecodeFailed, fn.String())
	}
	return serializeValues(ctx, cv)
}

func flatABISerializer() *abi.Serializer {
	return abi.NewSerializer().
		SetFormattingMode(abi.FormatAsFlatArrays).
		SetIntSerializer(abi.Base10StringIntSerializer).
		SetByteSerializer(abi.HexByteSerializer0xPrefix)
}

func serializeValues(ctx context.Context, cv *abi.ComponentValue) (Values, error) {
	var values Values
	jsonData, err := flatABISerializer().SerializeJSONCtx(ctx, cv)
	if err == nil {
		err = json.Unmarshal(jsonData, &values)
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}
