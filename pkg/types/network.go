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

package types

import (
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

type NetworkClass string

const (
	NetworkClassPrivate    NetworkClass = "private"
	NetworkClassTest       NetworkClass = "test"
	NetworkClassProduction NetworkClass = "production"
	NetworkClassUnknown    NetworkClass = "unknown"
)

// NetworkContext is read once per session, during bootstrap
type NetworkContext struct {
	NetworkID    uint64       `json:"networkId"`
	NetworkClass NetworkClass `json:"networkClass"`
}

// Identity is the active account. The zero value means no account is
// available from the node (for example a locked wallet).
type Identity struct {
	Address string `json:"address"`
}

func (id Identity) IsEmpty() bool {
	return id.Address == ""
}

// ContractBinding is the deployed contract for the NetworkID it was bound on
type ContractBinding struct {
	NetworkID uint64                `json:"networkId"`
	Address   ethtypes.Address0xHex `json:"address"`
	ABI       abi.ABI               `json:"-"`
}

type Rights struct {
	IsAdmin bool `json:"isAdmin"`
}
