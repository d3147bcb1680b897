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
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/ethclient"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/require"
)

const (
	testAccountA = "0xfb075bb99f2aa4c49955bf703509a227d7a12248"
	testAccountB = "0x1f9090aae28b8a3dceadf281b0f12828e676c326"
	testContract = "0x9d0b2d4a4bc4e4bd1a0b0bf4a5c4bd1a3fa25e41"
)

type fakeRecord struct {
	ts     uint64
	tribe  string
	family string
	trees  uint64
	photo  string
	lat    int64
	lon    int64
}

func (r fakeRecord) values() ethclient.Values {
	return rawValues(
		strconv.FormatUint(r.ts, 10),
		r.tribe,
		r.family,
		strconv.FormatUint(r.trees, 10),
		r.photo,
		strconv.FormatInt(r.lat, 10),
		strconv.FormatInt(r.lon, 10),
	)
}

func rawValues(items ...string) ethclient.Values {
	values := make(ethclient.Values, len(items))
	for i, item := range items {
		values[i], _ = json.Marshal(item)
	}
	return values
}

func plot(ts uint64, family string) fakeRecord {
	return fakeRecord{
		ts:     ts,
		tribe:  "Arhuaco",
		family: family,
		trees:  120,
		photo:  "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		lat:    1087654321,
		lon:    -7312345678,
	}
}

type fakeLedger struct {
	mux          sync.Mutex
	connectErr   error
	classErr     error
	idErr        error
	accountsErr  error
	subscribeErr error
	ownerErr     error
	countErr     error
	class        types.NetworkClass
	networkID    uint64
	accounts     []string
	owner        string
	records      []fakeRecord
	failIndex    map[uint64]error
	hung         map[string]bool
	countHook    func()
	calls        map[string]int
	handler      ethclient.EventHandler
	unsubscribed int
	closed       int
}

func newFakeLedger(records ...fakeRecord) *fakeLedger {
	return &fakeLedger{
		class:     types.NetworkClassPrivate,
		networkID: 5777,
		accounts:  []string{testAccountA},
		owner:     testAccountA,
		records:   records,
		failIndex: map[uint64]error{},
		hung:      map[string]bool{},
		calls:     map[string]int{},
	}
}

func (l *fakeLedger) Connect(ctx context.Context) error {
	return l.connectErr
}

func (l *fakeLedger) Close() {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.closed++
}

// waitIfHung blocks a read marked as hung until its context ends, like a node that never answers
func (l *fakeLedger) waitIfHung(ctx context.Context, method string) error {
	l.mux.Lock()
	hung := l.hung[method]
	if hung {
		l.calls[method]++
	}
	l.mux.Unlock()
	if !hung {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (l *fakeLedger) setHung(method string, hung bool) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.hung[method] = hung
}

func (l *fakeLedger) NetworkClass(ctx context.Context) (types.NetworkClass, error) {
	if err := l.waitIfHung(ctx, "eth_getBlockByNumber"); err != nil {
		return types.NetworkClassUnknown, err
	}
	return l.class, l.classErr
}

func (l *fakeLedger) NetworkID(ctx context.Context) (uint64, error) {
	if err := l.waitIfHung(ctx, "net_version"); err != nil {
		return 0, err
	}
	return l.networkID, l.idErr
}

func (l *fakeLedger) Accounts(ctx context.Context) ([]string, error) {
	if err := l.waitIfHung(ctx, "eth_accounts"); err != nil {
		return nil, err
	}
	l.mux.Lock()
	defer l.mux.Unlock()
	l.calls["eth_accounts"]++
	return l.accounts, l.accountsErr
}

func (l *fakeLedger) setAccounts(accounts ...string) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.accounts = accounts
}

func (l *fakeLedger) setRecords(records ...fakeRecord) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.records = records
}

func (l *fakeLedger) callCount(method string) int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.calls[method]
}

func (l *fakeLedger) Call(ctx context.Context, contract *types.ContractBinding, method string, args ...string) (ethclient.Values, error) {
	if err := l.waitIfHung(ctx, method); err != nil {
		return nil, err
	}
	l.mux.Lock()
	l.calls[method]++
	switch method {
	case "getRecordsCount":
		count := len(l.records)
		hook := l.countHook
		countErr := l.countErr
		l.mux.Unlock()
		if countErr != nil {
			return nil, countErr
		}
		if hook != nil {
			hook()
		}
		return rawValues(strconv.Itoa(count)), nil
	case "records":
		defer l.mux.Unlock()
		index, _ := strconv.ParseUint(args[0], 10, 64)
		if err := l.failIndex[index]; err != nil {
			return nil, err
		}
		if index >= uint64(len(l.records)) {
			return nil, fmt.Errorf("execution reverted")
		}
		return l.records[index].values(), nil
	case "owner":
		defer l.mux.Unlock()
		if l.ownerErr != nil {
			return nil, l.ownerErr
		}
		return rawValues(l.owner), nil
	default:
		l.mux.Unlock()
		return nil, fmt.Errorf("unknown method %s", method)
	}
}

func (l *fakeLedger) Subscribe(ctx context.Context, contract *types.ContractBinding, eventName string, handler ethclient.EventHandler) (ethclient.Subscription, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.subscribeErr != nil {
		return nil, l.subscribeErr
	}
	l.handler = handler
	return l, nil
}

func (l *fakeLedger) Unsubscribe(ctx context.Context) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.unsubscribed++
	return nil
}

// deliver invokes the subscription handler the way the delivery routine would
func (l *fakeLedger) deliver(ev *ethclient.Event, err error) {
	l.mux.Lock()
	handler := l.handler
	l.mux.Unlock()
	handler(ev, err)
}

type fakeBinder struct {
	err error
}

func (b *fakeBinder) Bind(ctx context.Context, networkID uint64) (*types.ContractBinding, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &types.ContractBinding{
		NetworkID: networkID,
		Address:   *ethtypes.MustNewAddress(testContract),
	}, nil
}

func testSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		IdentityPollInterval: confutil.P("10ms"),
		ReadTimeout:          confutil.P("5s"),
		MaxConcurrentReads:   confutil.P(4),
	}
}

func newTestEngine(t *testing.T, ledger *fakeLedger, binder *fakeBinder, opts ...Option) *engine {
	if binder == nil {
		binder = &fakeBinder{}
	}
	e, err := NewEngine(context.Background(), testSessionConfig(), "LogRecordAdded", ledger, binder, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Stop)
	return e.(*engine)
}

// newBoundEngine has a contract bound but nothing started, for driving the
// components directly
func newBoundEngine(t *testing.T, ledger *fakeLedger, opts ...Option) *engine {
	e := newTestEngine(t, ledger, nil, opts...)
	contract, err := e.binder.Bind(context.Background(), ledger.networkID)
	require.NoError(t, err)
	e.state.setContract(contract)
	return e
}

// countingPolicy records every identity it resolves rights for
type countingPolicy struct {
	mux      sync.Mutex
	resolved map[string]int
	admin    string
}

func newCountingPolicy(admin string) *countingPolicy {
	return &countingPolicy{resolved: map[string]int{}, admin: admin}
}

func (p *countingPolicy) ResolveRights(ctx context.Context, reader ContractReader, contract *types.ContractBinding, identity types.Identity) (types.Rights, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.resolved[identity.Address]++
	return types.Rights{IsAdmin: identity.Address == p.admin}, nil
}

func (p *countingPolicy) count(address string) int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.resolved[address]
}
