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


package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/fairgradeforests/forestsync/internal/api"
	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/internal/logging"
	"github.com/fairgradeforests/forestsync/internal/metrics"
	"github.com/fairgradeforests/forestsync/internal/session"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/deployments"
	"github.com/fairgradeforests/forestsync/pkg/ethclient"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
)

type RC int

const (
	RC_OK   RC = 0
	RC_FAIL RC = 1
)

var ledgerFactory = ethclient.NewLedgerClient

var running atomic.Pointer[instance]

// Run blocks until the process is signalled, or the session fails to start
func Run(configFile string) RC {
	i := newInstance(configFile)
	running.Store(i)
	return i.run()
}

type instance struct {
	configFile string

	ctx       context.Context
	cancelCtx context.CancelFunc
	signals   chan os.Signal
	stopped   atomic.Bool
	done      chan struct{}
}

func newInstance(configFile string) *instance {
	i := &instance{
		configFile: configFile,
		signals:    make(chan os.Signal),
		done:       make(chan struct{}),
	}
	i.ctx, i.cancelCtx = context.WithCancel(log.WithLogField(context.Background(), "pid", strconv.Itoa(os.Getpid())))
	return i
}

func (i *instance) signalHandler() {
	signal.Notify(i.signals, os.Interrupt, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	sig := <-i.signals
	if sig != nil {
		log.L(i.ctx).Infof("Stopping due to signal %s", sig)
		i.stop()
	}
}

func (i *instance) run() RC {
	defer func() {
		close(i.done)
		running.Store(nil)
	}()
	go i.signalHandler()

	var conf config.ForestSyncConfig
	if err := config.ReadAndParseYAMLFile(i.ctx, i.configFile, &conf); err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	logging.InitConfig(&conf.Log)

	registry := prometheus.NewRegistry()
	sessionMetrics := metrics.InitMetrics(i.ctx, registry)

	ledger, err := ledgerFactory(i.ctx, &conf.Blockchain)
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	binder, err := deployments.NewRegistry(i.ctx, &conf.Deployments)
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	eventName := confutil.StringNotEmpty(conf.Deployments.EventName, *config.DeploymentsDefaults.EventName)
	engine, err := session.NewEngine(i.ctx, &conf.Session, eventName, ledger, binder, session.WithMetrics(sessionMetrics))
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	defer engine.Stop()

	metricsServer, err := metrics.NewMetricsServer(i.ctx, registry, &conf.Metrics)
	if err == nil {
		err = metricsServer.Start()
	}
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	defer metricsServer.Stop()

	// The API comes up first, so the session status can be read while it bootstraps
	apiServer, err := api.NewAPIServer(i.ctx, &conf.API, engine)
	if err == nil {
		err = apiServer.Start()
	}
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	defer apiServer.Stop()

	engine.OnReady(func(rc types.ReadyContext) {
		log.L(i.ctx).Infof("Session ready network=%d class=%s account=%s contract=%s",
			rc.Network.NetworkID, rc.Network.NetworkClass, rc.Identity.Address, rc.Contract.Address)
	})
	unsubscribe := engine.OnRecordsUpdated(func(s *types.Snapshot) {
		log.L(i.ctx).Infof("Records updated generation=%d count=%d", s.RecordsGeneration, len(s.Records))
	})
	defer unsubscribe()

	if err := engine.Start(i.ctx); err != nil {
		var failure *types.SessionFailure
		if errors.As(err, &failure) {
			log.L(i.ctx).Errorf("Session %s: %s", failure.Status(), failure.Err)
		} else {
			log.L(i.ctx).Error(err.Error())
		}
		return RC_FAIL
	}

	<-i.ctx.Done()
	return RC_OK
}

func (i *instance) stop() {
	if i.stopped.CompareAndSwap(false, true) {
		i.cancelCtx()
		close(i.signals)
		<-i.done
	}
}
