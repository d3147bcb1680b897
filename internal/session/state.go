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

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// sessionState is the single owner of everything a session knows. Each method
// is one atomic update, and nothing outside this file touches the fields.
type sessionState struct {
	mux        sync.Mutex
	status     types.SessionStatus
	failure    string
	network    *types.NetworkContext
	identity   types.Identity
	contract   *types.ContractBinding
	rights     types.Rights
	records    *types.RecordSet
	inProgress map[uint64]bool
}

func newSessionState() *sessionState {
	return &sessionState{
		status:     types.SessionStatusStarting,
		records:    &types.RecordSet{Records: []types.Record{}},
		inProgress: make(map[uint64]bool),
	}
}

func (s *sessionState) setStatus(status types.SessionStatus, failure string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.status = status
	s.failure = failure
}

func (s *sessionState) getStatus() types.SessionStatus {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.status
}

func (s *sessionState) setNetwork(nc types.NetworkContext) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.network = &nc
}

func (s *sessionState) setContract(cb *types.ContractBinding) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.contract = cb
}

func (s *sessionState) getContract() *types.ContractBinding {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.contract
}

// setIdentity replaces the identity, returning true if it differs from the
// previous one. Rights of the previous identity are dropped until resolved again.
func (s *sessionState) setIdentity(id types.Identity) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.identity == id {
		return false
	}
	s.identity = id
	s.rights = types.Rights{}
	return true
}

func (s *sessionState) getIdentity() types.Identity {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.identity
}

// setRights is discarded if the identity changed while the rights were being resolved
func (s *sessionState) setRights(forIdentity types.Identity, rights types.Rights) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.identity != forIdentity {
		return false
	}
	s.rights = rights
	return true
}

// publishRecordSet replaces the record set only when rs comes from a newer pass
// than the one currently published
func (s *sessionState) publishRecordSet(rs *types.RecordSet) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if rs.Generation <= s.records.Generation {
		return false
	}
	s.records = rs
	return true
}

func (s *sessionState) getRecordSet() *types.RecordSet {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.records
}

func (s *sessionState) setInProgress(ctx context.Context, index uint64, inProgress bool) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if !s.records.Contains(index) {
		return i18n.NewError(ctx, msgs.MsgSessionRecordNotFound, index)
	}
	if inProgress {
		s.inProgress[index] = true
	} else {
		delete(s.inProgress, index)
	}
	return nil
}

func (s *sessionState) readyContext() types.ReadyContext {
	s.mux.Lock()
	defer s.mux.Unlock()
	rc := types.ReadyContext{
		Identity: s.identity,
		Contract: s.contract,
	}
	if s.network != nil {
		rc.Network = *s.network
	}
	return rc
}

func (s *sessionState) snapshot() *types.Snapshot {
	s.mux.Lock()
	defer s.mux.Unlock()
	snap := &types.Snapshot{
		Status:            s.status,
		Failure:           s.failure,
		Identity:          s.identity,
		Contract:          s.contract,
		Rights:            s.rights,
		RecordsGeneration: s.records.Generation,
		Records:           make([]types.Record, len(s.records.Records)),
	}
	if s.network != nil {
		nc := *s.network
		snap.Network = &nc
	}
	copy(snap.Records, s.records.Records)
	for i := range snap.Records {
		snap.Records[i].InProgress = s.inProgress[snap.Records[i].Index]
	}
	return snap
}
