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
	"time"

	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/log"
)

func identityFromAccounts(accounts []string) types.Identity {
	if len(accounts) == 0 {
		return types.Identity{}
	}
	return types.Identity{Address: accounts[0]}
}

// identityWatchLoop polls until the engine context is cancelled. The first
// poll is one interval after start, as bootstrap has just read the accounts.
func (e *engine) identityWatchLoop() {
	defer close(e.watcherDone)
	ctx := log.WithLogField(e.bgCtx, "role", "identitywatcher")
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.pollIdentity(ctx)
		case <-ctx.Done():
			log.L(ctx).Debugf("Identity watcher stopped")
			return
		}
	}
}

func (e *engine) pollIdentity(ctx context.Context) {
	readCtx, cancel := e.withReadTimeout(ctx)
	accounts, err := e.ledger.Accounts(readCtx)
	cancel()
	if err != nil {
		log.L(ctx).Warnf("Account poll failed: %s", err)
		return
	}
	identity := identityFromAccounts(accounts)
	if !e.state.setIdentity(identity) {
		log.L(ctx).Tracef("Identity unchanged")
		return
	}
	log.L(ctx).Infof("Active identity changed to '%s'", identity.Address)
	e.metrics.IdentityChanged()
	e.resolveRights(ctx)
}
