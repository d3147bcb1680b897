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

package session

import (
	"context"
	"strings"

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/ethclient"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// ContractReader is the read-only subset of the ledger a rights policy may use
type ContractReader interface {
	Call(ctx context.Context, contract *types.ContractBinding, method string, args ...string) (ethclient.Values, error)
}

// RightsPolicy derives the rights of an identity from ledger state
type RightsPolicy interface {
	ResolveRights(ctx context.Context, reader ContractReader, contract *types.ContractBinding, identity types.Identity) (types.Rights, error)
}

func NewRightsPolicy(ctx context.Context, name string) (RightsPolicy, error) {
	switch name {
	case config.RightsPolicyOwner:
		return &ownerPolicy{}, nil
	case config.RightsPolicyNone:
		return &nonePolicy{}, nil
	default:
		return nil, i18n.NewError(ctx, msgs.MsgConfigRightsPolicyUnknown, name,
			strings.Join([]string{config.RightsPolicyOwner, config.RightsPolicyNone}, ","))
	}
}

// ownerPolicy makes the contract owner the only admin
type ownerPolicy struct{}

func (p *ownerPolicy) ResolveRights(ctx context.Context, reader ContractReader, contract *types.ContractBinding, identity types.Identity) (types.Rights, error) {
	if identity.IsEmpty() {
		return types.Rights{}, nil
	}
	idAddr, err := ethtypes.NewAddress(identity.Address)
	if err != nil {
		return types.Rights{}, i18n.WrapError(ctx, err, msgs.MsgSessionAccountAddressBad, identity.Address)
	}
	values, err := reader.Call(ctx, contract, "owner")
	if err != nil {
		return types.Rights{}, i18n.WrapError(ctx, err, msgs.MsgSessionOwnerReadFailed)
	}
	owner, err := values.Address(ctx, 0)
	if err != nil {
		return types.Rights{}, i18n.WrapError(ctx, err, msgs.MsgSessionOwnerReadFailed)
	}
	log.L(ctx).Debugf("Contract owner %s, identity %s", owner, idAddr)
	return types.Rights{IsAdmin: *owner == *idAddr}, nil
}

type nonePolicy struct{}

func (p *nonePolicy) ResolveRights(ctx context.Context, reader ContractReader, contract *types.ContractBinding, identity types.Identity) (types.Rights, error) {
	return types.Rights{}, nil
}

func (e *engine) resolveRights(ctx context.Context) {
	identity := e.state.getIdentity()
	contract := e.state.getContract()
	if contract == nil {
		return
	}
	readCtx, cancel := e.withReadTimeout(ctx)
	rights, err := e.rightsPolicy.ResolveRights(readCtx, e.ledger, contract, identity)
	cancel()
	if err != nil {
		log.L(ctx).Warnf("Rights for identity '%s' not updated: %s", identity.Address, err)
		return
	}
	if e.state.setRights(identity, rights) {
		log.L(ctx).Debugf("Rights for identity '%s': admin=%t", identity.Address, rights.IsAdmin)
		e.metrics.RightsResolved(rights.IsAdmin)
	}
}
