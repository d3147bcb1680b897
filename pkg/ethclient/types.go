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
	"math/big"

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// Ledger is the connection to the ledger node that the session engine consumes.
// Contract reads are against the "latest" block.
type Ledger interface {
	// Connect establishes the connection. Nothing else may be called before it succeeds.
	Connect(ctx context.Context) error
	Close()

	NetworkClass(ctx context.Context) (types.NetworkClass, error)
	NetworkID(ctx context.Context) (uint64, error)
	Accounts(ctx context.Context) ([]string, error)

	// Call invokes a read-only contract function. Integer arguments are passed as base 10 strings.
	Call(ctx context.Context, contract *types.ContractBinding, method string, args ...string) (Values, error)
	// Subscribe delivers every event with the given name emitted by the contract, from now on.
	Subscribe(ctx context.Context, contract *types.ContractBinding, eventName string, handler EventHandler) (Subscription, error)
}

// EventHandler receives either a decoded event, or the error that prevented delivery of one
type EventHandler func(ev *Event, err error)

type Subscription interface {
	Unsubscribe(ctx context.Context) error
}

type Event struct {
	Name            string                    `json:"name"`
	Address         ethtypes.Address0xHex     `json:"address"`
	BlockNumber     uint64                    `json:"blockNumber"`
	TransactionHash ethtypes.HexBytes0xPrefix `json:"transactionHash"`
	LogIndex        uint64                    `json:"logIndex"`
	Data            Values                    `json:"data"`
}

// Values holds decoded ABI values in parameter order. Integers are base 10
// strings, addresses and bytes are 0x prefixed hex.
type Values []json.RawMessage

func (v Values) value(ctx context.Context, i int) (json.RawMessage, error) {
	if i < 0 || i >= len(v) {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientOutputIndex, len(v), i)
	}
	return v[i], nil
}

func (v Values) String(ctx context.Context, i int) (string, error) {
	raw, err := v.value(ctx, i)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", i18n.NewError(ctx, msgs.MsgEthClientOutputType, i, "string", raw)
	}
	return s, nil
}

func (v Values) BigInt(ctx context.Context, i int) (*big.Int, error) {
	s, err := v.String(ctx, i)
	if err != nil {
		return nil, err
	}
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientOutputType, i, "integer", s)
	}
	return bi, nil
}

func (v Values) Uint64(ctx context.Context, i int) (uint64, error) {
	bi, err := v.BigInt(ctx, i)
	if err != nil {
		return 0, err
	}
	if !bi.IsUint64() {
		return 0, i18n.NewError(ctx, msgs.MsgEthClientOutputType, i, "uint64", bi.String())
	}
	return bi.Uint64(), nil
}

func (v Values) Address(ctx context.Context, i int) (*ethtypes.Address0xHex, error) {
	s, err := v.String(ctx, i)
	if err != nil {
		return nil, err
	}
	addr, err := ethtypes.NewAddress(s)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientOutputType, i, "address", s)
	}
	return addr, nil
}
