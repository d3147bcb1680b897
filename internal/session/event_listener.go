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

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/ethclient"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
)

func (e *engine) subscribeEvents(ctx context.Context, contract *types.ContractBinding) error {
	sub, err := e.ledger.Subscribe(ctx, contract, e.eventName, e.handleEvent)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgSessionSubscribeFailed)
	}
	e.sub = sub
	log.L(ctx).Infof("Subscribed to %s events from %s", e.eventName, contract.Address)
	return nil
}

// handleEvent runs on the subscription's delivery routine. A delivery error
// leaves the subscription in place.
func (e *engine) handleEvent(ev *ethclient.Event, err error) {
	ctx := log.WithLogField(e.bgCtx, "role", "eventlistener")
	if err != nil {
		log.L(ctx).Errorf("Event delivery failed: %s", err)
		e.metrics.EventDeliveryFailed()
		return
	}
	log.L(ctx).Infof("%s event block=%d tx=%s logIndex=%d", ev.Name, ev.BlockNumber, ev.TransactionHash, ev.LogIndex)
	e.metrics.EventReceived()
	_ = e.syncRecords(ctx)
	e.resolveRights(ctx)
}

func (e *engine) OnRecordsUpdated(cb func(*types.Snapshot)) (unsubscribe func()) {
	e.listenersMux.Lock()
	defer e.listenersMux.Unlock()
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = cb
	return func() {
		e.listenersMux.Lock()
		defer e.listenersMux.Unlock()
		delete(e.listeners, id)
	}
}

// notifyRecordsUpdated delivers snapshots in generation order, skipping any
// that a concurrent pass has already superseded
func (e *engine) notifyRecordsUpdated() {
	e.notifyMux.Lock()
	defer e.notifyMux.Unlock()
	snap := e.state.snapshot()
	if snap.RecordsGeneration <= e.lastNotified {
		return
	}
	e.lastNotified = snap.RecordsGeneration

	e.listenersMux.Lock()
	listeners := make([]func(*types.Snapshot), 0, len(e.listeners))
	for _, cb := range e.listeners {
		listeners = append(listeners, cb)
	}
	e.listenersMux.Unlock()

	for _, cb := range listeners {
		cb(snap)
	}
}
