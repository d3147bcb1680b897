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
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/internal/metrics"
	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/deployments"
	"github.com/fairgradeforests/forestsync/pkg/ethclient"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine is one session against a ledger node: bootstrap, then a live
// mirror of the contract's records kept current by polling and events.
//
// OnReady callbacks may call Stop. OnRecordsUpdated callbacks run on the
// sync path (event delivery, identity watcher, or Start itself) and must
// not call Stop.
type Engine interface {
	// Start bootstraps the session. A returned *types.SessionFailure is terminal.
	Start(ctx context.Context) error
	Stop()
	Snapshot() *types.Snapshot
	// OnReady registers the single ready callback, see readyGate
	OnReady(cb func(types.ReadyContext)) bool
	Ready() <-chan struct{}
	OnRecordsUpdated(cb func(*types.Snapshot)) (unsubscribe func())
	// SetInProgress sets the local in-progress marker of a record, by ledger index
	SetInProgress(ctx context.Context, index uint64, inProgress bool) error
	Resync(ctx context.Context) error
}

type Option func(e *engine)

func WithRightsPolicy(p RightsPolicy) Option {
	return func(e *engine) {
		e.rightsPolicy = p
	}
}

func WithMetrics(m metrics.SessionMetrics) Option {
	return func(e *engine) {
		e.metrics = m
	}
}

type engine struct {
	id                     string
	bgCtx                  context.Context
	cancelCtx              context.CancelFunc
	ledger                 ethclient.Ledger
	binder                 deployments.Registry
	rightsPolicy           RightsPolicy
	metrics                metrics.SessionMetrics
	eventName              string
	pollInterval           time.Duration
	readTimeout            time.Duration
	maxConcurrentReads     int
	allowProductionNetwork bool

	state          *sessionState
	gate           *readyGate
	syncGeneration atomic.Uint64

	lifecycleMux sync.Mutex
	started      bool
	stopped      bool
	watcherDone  chan struct{}
	sub          ethclient.Subscription

	listenersMux   sync.Mutex
	listeners      map[uint64]func(*types.Snapshot)
	nextListenerID uint64
	notifyMux      sync.Mutex
	lastNotified   uint64
}

func NewEngine(ctx context.Context, conf *config.SessionConfig, eventName string, ledger ethclient.Ledger, binder deployments.Registry, opts ...Option) (Engine, error) {
	e := &engine{
		id:                     uuid.New().String(),
		ledger:                 ledger,
		binder:                 binder,
		eventName:              eventName,
		pollInterval:           confutil.DurationMin(conf.IdentityPollInterval, 10*time.Millisecond, *config.SessionDefaults.IdentityPollInterval),
		readTimeout:            confutil.DurationMin(conf.ReadTimeout, 1*time.Millisecond, *config.SessionDefaults.ReadTimeout),
		maxConcurrentReads:     confutil.IntMin(conf.MaxConcurrentReads, 1, *config.SessionDefaults.MaxConcurrentReads),
		allowProductionNetwork: confutil.Bool(conf.AllowProductionNetwork, *config.SessionDefaults.AllowProductionNetwork),
		state:                  newSessionState(),
		gate:                   newReadyGate(),
		listeners:              make(map[uint64]func(*types.Snapshot)),
	}
	e.bgCtx, e.cancelCtx = context.WithCancel(log.WithLogField(ctx, "session", e.id))
	for _, o := range opts {
		o(e)
	}
	if e.rightsPolicy == nil {
		p, err := NewRightsPolicy(ctx, confutil.StringNotEmpty(conf.RightsPolicy, *config.SessionDefaults.RightsPolicy))
		if err != nil {
			e.cancelCtx()
			return nil, err
		}
		e.rightsPolicy = p
	}
	if e.metrics == nil {
		e.metrics = metrics.InitMetrics(ctx, prometheus.NewRegistry())
	}
	return e, nil
}

func (e *engine) Start(ctx context.Context) error {
	ctx = log.WithLogField(ctx, "session", e.id)
	if err := e.startLocked(ctx); err != nil {
		return err
	}
	// Outside lifecycleMux, so a ready callback may call Stop
	e.gate.markReady(e.state.readyContext())
	return nil
}

func (e *engine) startLocked(ctx context.Context) error {
	e.lifecycleMux.Lock()
	defer e.lifecycleMux.Unlock()
	if e.started || e.stopped {
		return i18n.NewError(ctx, msgs.MsgSessionAlreadyStarted)
	}
	e.started = true

	if err := e.bootstrap(ctx); err != nil {
		failure := err.(*types.SessionFailure)
		log.L(ctx).Errorf("Session failed (%s): %s", failure.Kind, failure.Err)
		e.state.setStatus(failure.Status(), failure.Error())
		e.release()
		return failure
	}

	e.state.setStatus(types.SessionStatusReady, "")
	log.L(ctx).Infof("Session ready")
	return nil
}

// withReadTimeout bounds a single ledger read by session.readTimeout
func (e *engine) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.readTimeout)
}

func (e *engine) bootstrap(ctx context.Context) error {
	connectivityFailure := func(err error) error {
		return &types.SessionFailure{Kind: types.FailureConnectivity, Err: err}
	}
	configurationFailure := func(err error) error {
		return &types.SessionFailure{Kind: types.FailureConfiguration, Err: err}
	}

	if err := e.ledger.Connect(ctx); err != nil {
		return connectivityFailure(i18n.WrapError(ctx, err, msgs.MsgSessionConnectFailed))
	}

	readCtx, cancel := e.withReadTimeout(ctx)
	class, err := e.ledger.NetworkClass(readCtx)
	cancel()
	if err != nil {
		return connectivityFailure(err)
	}
	readCtx, cancel = e.withReadTimeout(ctx)
	networkID, err := e.ledger.NetworkID(readCtx)
	cancel()
	if err != nil {
		return connectivityFailure(err)
	}
	e.state.setNetwork(types.NetworkContext{NetworkID: networkID, NetworkClass: class})
	log.L(ctx).Infof("Connected to network %d (%s)", networkID, class)
	if class == types.NetworkClassProduction && !e.allowProductionNetwork {
		return configurationFailure(i18n.NewError(ctx, msgs.MsgSessionProductionNetwork, networkID))
	}

	contract, err := e.binder.Bind(ctx, networkID)
	if err != nil {
		return configurationFailure(err)
	}

	readCtx, cancel = e.withReadTimeout(ctx)
	accounts, err := e.ledger.Accounts(readCtx)
	cancel()
	if err != nil {
		return connectivityFailure(err)
	}
	identity := identityFromAccounts(accounts)
	e.state.setIdentity(identity)
	if identity.IsEmpty() {
		log.L(ctx).Warnf("No account available from the ledger node")
	}
	e.state.setContract(contract)

	e.watcherDone = make(chan struct{})
	go e.identityWatchLoop()

	if err := e.syncRecords(ctx); err != nil {
		log.L(ctx).Warnf("Initial record synchronization failed, waiting for the next trigger")
	}
	e.resolveRights(ctx)

	if err := e.subscribeEvents(ctx, contract); err != nil {
		return connectivityFailure(err)
	}
	return nil
}

// release tears down everything bootstrap started. Caller holds lifecycleMux.
func (e *engine) release() {
	e.cancelCtx()
	if e.watcherDone != nil {
		<-e.watcherDone
		e.watcherDone = nil
	}
	if e.sub != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(e.bgCtx), e.readTimeout)
		if err := e.sub.Unsubscribe(ctx); err != nil {
			log.L(ctx).Warnf("Unsubscribe failed: %s", err)
		}
		cancel()
		e.sub = nil
	}
	e.ledger.Close()
}

func (e *engine) Stop() {
	e.lifecycleMux.Lock()
	defer e.lifecycleMux.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	if e.started && e.state.getStatus() == types.SessionStatusReady {
		e.release()
	}
	switch e.state.getStatus() {
	case types.SessionStatusConnectivityFailed, types.SessionStatusConfigurationFailed:
	default:
		e.state.setStatus(types.SessionStatusStopped, "")
	}
	e.cancelCtx()
	log.L(e.bgCtx).Infof("Session stopped")
}

func (e *engine) Snapshot() *types.Snapshot {
	return e.state.snapshot()
}

func (e *engine) OnReady(cb func(types.ReadyContext)) bool {
	return e.gate.register(cb)
}

func (e *engine) Ready() <-chan struct{} {
	return e.gate.done()
}

func (e *engine) SetInProgress(ctx context.Context, index uint64, inProgress bool) error {
	return e.state.setInProgress(ctx, index, inProgress)
}

func (e *engine) Resync(ctx context.Context) error {
	if e.state.getStatus() != types.SessionStatusReady {
		return i18n.NewError(ctx, msgs.MsgSessionNotReady)
	}
	ctx = log.WithLogField(ctx, "session", e.id)
	if err := e.syncRecords(ctx); err != nil {
		return err
	}
	e.resolveRights(ctx)
	return nil
}
