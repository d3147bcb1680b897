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

package deployments

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// SolidityBuild is the subset of a truffle build artifact that we read
type SolidityBuild struct {
	ContractName string                      `json:"contractName"`
	ABI          abi.ABI                     `json:"abi"`
	Networks     map[string]*ArtifactNetwork `json:"networks"`
}

type ArtifactNetwork struct {
	Address string `json:"address"`
}

// Registry resolves the deployed contract for a network
type Registry interface {
	Bind(ctx context.Context, networkID uint64) (*types.ContractBinding, error)
}

type registry struct {
	contractName string
	abi          abi.ABI
	addresses    map[uint64]ethtypes.Address0xHex
}

func NewRegistry(ctx context.Context, conf *config.DeploymentsConfig) (Registry, error) {
	path := confutil.StringNotEmpty(conf.Artifact, *config.DeploymentsDefaults.Artifact)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, i18n.NewError(ctx, msgs.MsgDeploymentsArtifactMissing, path)
		}
		return nil, i18n.WrapError(ctx, err, msgs.MsgDeploymentsArtifactInvalid, path)
	}
	var build SolidityBuild
	if err := json.Unmarshal(data, &build); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgDeploymentsArtifactInvalid, path)
	}
	return NewRegistryFromBuild(ctx, &build, conf.Networks)
}

// NewRegistryFromBuild merges the networks of the artifact with the configured
// overrides. Overrides win when both name the same network.
func NewRegistryFromBuild(ctx context.Context, build *SolidityBuild, overrides map[string]config.NetworkDeploymentConfig) (Registry, error) {
	if len(build.ABI) == 0 {
		return nil, i18n.NewError(ctx, msgs.MsgDeploymentsNoABI)
	}
	r := &registry{
		contractName: build.ContractName,
		abi:          build.ABI,
		addresses:    make(map[uint64]ethtypes.Address0xHex),
	}
	for networkID, n := range build.Networks {
		if n == nil {
			continue
		}
		if err := r.addNetwork(ctx, networkID, n.Address); err != nil {
			return nil, err
		}
	}
	for networkID, n := range overrides {
		if err := r.addNetwork(ctx, networkID, n.Address); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *registry) addNetwork(ctx context.Context, networkID, address string) error {
	id, err := strconv.ParseUint(networkID, 10, 64)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgDeploymentsNetworkIDInvalid, networkID)
	}
	addr, err := ethtypes.NewAddress(address)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgDeploymentsAddressInvalid, address, networkID)
	}
	r.addresses[id] = *addr
	return nil
}

func (r *registry) Bind(ctx context.Context, networkID uint64) (*types.ContractBinding, error) {
	addr, ok := r.addresses[networkID]
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgDeploymentsNotDeployed, networkID)
	}
	log.L(ctx).Infof("Bound contract %s at %s on network %d", r.contractName, addr, networkID)
	return &types.ContractBinding{
		NetworkID: networkID,
		Address:   addr,
		ABI:       r.abi,
	}, nil
}
