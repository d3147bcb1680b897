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

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/internal/httpserver"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsServer interface {
	Start() error
	Stop()
}

var _ MetricsServer = &metricsServer{}

type metricsServer struct {
	httpServer httpserver.Server
}

// NewMetricsServer serves the registry on /metrics, or does nothing when disabled
func NewMetricsServer(ctx context.Context, registry *prometheus.Registry, conf *config.MetricsConfig) (MetricsServer, error) {
	s := &metricsServer{}
	if !confutil.Bool(conf.Enabled, *config.MetricsDefaults.Enabled) {
		return s, nil
	}
	serverConf := conf.HTTPServerConfig
	if serverConf.Port == nil {
		serverConf.Port = config.MetricsDefaults.Port
	}
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	hs, err := httpserver.NewServer(ctx, "Metrics", &serverConf, r)
	if err != nil {
		return nil, err
	}
	s.httpServer = hs
	return s, nil
}

func (s *metricsServer) Start() error {
	if s.httpServer != nil {
		return s.httpServer.Start()
	}
	return nil
}

func (s *metricsServer) Stop() {
	if s.httpServer != nil {
		s.httpServer.Stop()
	}
}
