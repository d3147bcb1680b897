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
	"sync"

	"github.com/fairgradeforests/forestsync/pkg/types"
)

// readyGate holds at most one pending callback, and fires at most once.
// The ready channel is closed on readiness so late observers see it as already satisfied.
type readyGate struct {
	mux     sync.Mutex
	ready   chan struct{}
	isReady bool
	fired   bool
	rc      types.ReadyContext
	pending func(types.ReadyContext)
}

func newReadyGate() *readyGate {
	return &readyGate{ready: make(chan struct{})}
}

// register fires cb immediately if the gate is already open, otherwise holds
// it until markReady, replacing any earlier pending callback. Returns false
// if the gate has already fired a callback, in which case cb is dropped.
func (g *readyGate) register(cb func(types.ReadyContext)) bool {
	g.mux.Lock()
	if g.fired {
		g.mux.Unlock()
		return false
	}
	if !g.isReady {
		g.pending = cb
		g.mux.Unlock()
		return true
	}
	g.fired = true
	rc := g.rc
	g.mux.Unlock()
	cb(rc)
	return true
}

func (g *readyGate) markReady(rc types.ReadyContext) {
	g.mux.Lock()
	if g.isReady {
		g.mux.Unlock()
		return
	}
	g.isReady = true
	g.rc = rc
	close(g.ready)
	cb := g.pending
	g.pending = nil
	if cb != nil {
		g.fired = true
	}
	g.mux.Unlock()
	if cb != nil {
		cb(rc)
	}
}

func (g *readyGate) done() <-chan struct{} {
	return g.ready
}
