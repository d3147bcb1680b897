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

package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

type SessionMetrics interface {
	SyncStarted()
	SyncPublished(generation uint64, records int)
	SyncStale()
	SyncFailed()
	IdentityChanged()
	RightsResolved(isAdmin bool)
	EventReceived()
	EventDeliveryFailed()
}

var METRICS_SUBSYSTEM = "session"

const (
	resultPublished = "published"
	resultStale     = "stale"
	resultFailed    = "failed"
	resultReceived  = "received"
)

type sessionMetrics struct {
	syncStarted     prometheus.Counter
	syncResults     *prometheus.CounterVec
	records         prometheus.Gauge
	generation      prometheus.Gauge
	identityChanges prometheus.Counter
	isAdmin         prometheus.Gauge
	events          *prometheus.CounterVec
}

func InitMetrics(ctx context.Context, registry prometheus.Registerer) *sessionMetrics {
	metrics := &sessionMetrics{}

	metrics.syncStarted = prometheus.NewCounter(prometheus.CounterOpts{Name: "sync_started_total",
		Help: "Record synchronization passes started", Subsystem: METRICS_SUBSYSTEM})
	metrics.syncResults = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sync_completed_total",
		Help: "Record synchronization passes completed, by result", Subsystem: METRICS_SUBSYSTEM}, []string{"result"})
	metrics.records = prometheus.NewGauge(prometheus.GaugeOpts{Name: "records",
		Help: "Records in the published record set", Subsystem: METRICS_SUBSYSTEM})
	metrics.generation = prometheus.NewGauge(prometheus.GaugeOpts{Name: "records_generation",
		Help: "Generation of the published record set", Subsystem: METRICS_SUBSYSTEM})
	metrics.identityChanges = prometheus.NewCounter(prometheus.CounterOpts{Name: "identity_changes_total",
		Help: "Changes of the active account", Subsystem: METRICS_SUBSYSTEM})
	metrics.isAdmin = prometheus.NewGauge(prometheus.GaugeOpts{Name: "identity_is_admin",
		Help: "1 when the active account has admin rights", Subsystem: METRICS_SUBSYSTEM})
	metrics.events = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "events_total",
		Help: "Record appended events, by result", Subsystem: METRICS_SUBSYSTEM}, []string{"result"})

	registry.MustRegister(
		metrics.syncStarted,
		metrics.syncResults,
		metrics.records,
		metrics.generation,
		metrics.identityChanges,
		metrics.isAdmin,
		metrics.events,
	)
	return metrics
}

func (sm *sessionMetrics) SyncStarted() {
	sm.syncStarted.Inc()
}

func (sm *sessionMetrics) SyncPublished(generation uint64, records int) {
	sm.syncResults.With(prometheus.Labels{"result": resultPublished}).Inc()
	sm.generation.Set(float64(generation))
	sm.records.Set(float64(records))
}

func (sm *sessionMetrics) SyncStale() {
	sm.syncResults.With(prometheus.Labels{"result": resultStale}).Inc()
}

func (sm *sessionMetrics) SyncFailed() {
	sm.syncResults.With(prometheus.Labels{"result": resultFailed}).Inc()
}

func (sm *sessionMetrics) IdentityChanged() {
	sm.identityChanges.Inc()
}

func (sm *sessionMetrics) RightsResolved(isAdmin bool) {
	if isAdmin {
		sm.isAdmin.Set(1)
	} else {
		sm.isAdmin.Set(0)
	}
}

func (sm *sessionMetrics) EventReceived() {
	sm.events.With(prometheus.Labels{"result": resultReceived}).Inc()
}

func (sm *sessionMetrics) EventDeliveryFailed() {
	sm.events.With(prometheus.Labels{"result": resultFailed}).Inc()
}
