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

package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
)

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

var _ Server = &httpServer{}

type httpServer struct {
	ctx             context.Context
	cancelCtx       func()
	description     string
	listener        net.Listener
	httpServer      *http.Server
	httpServerDone  chan error
	shutdownTimeout time.Duration
	started         bool
}

// NewServer binds the listener immediately, so Addr is valid before Start
func NewServer(ctx context.Context, description string, conf *config.HTTPServerConfig, handler http.Handler) (_ Server, err error) {
	s := &httpServer{
		description:     description,
		httpServerDone:  make(chan error),
		shutdownTimeout: confutil.DurationMin(conf.ShutdownTimeout, 0, *config.HTTPDefaults.ShutdownTimeout),
	}

	if conf.Port == nil {
		return nil, i18n.NewError(ctx, msgs.MsgAPIServerMissingPort, description)
	}

	listenAddr := fmt.Sprintf("%s:%d", confutil.StringNotEmpty(conf.Address, *config.HTTPDefaults.Address), *conf.Port)
	if s.listener, err = net.Listen("tcp", listenAddr); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgAPIServerStartFailed, listenAddr)
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)
	log.L(ctx).Infof("%s server listening on %s", description, s.listener.Addr())

	maxRequestTimeout := confutil.DurationMin(conf.MaxRequestTimeout, 1*time.Second, *config.HTTPDefaults.MaxRequestTimeout)
	defaultRequestTimeout := confutil.DurationMin(conf.DefaultRequestTimeout, 1*time.Second, *config.HTTPDefaults.DefaultRequestTimeout)
	connTimeout := maxRequestTimeout + 1*time.Second

	handler = s.withLogAndTimeout(handler, defaultRequestTimeout, maxRequestTimeout)
	handler = WrapCorsIfEnabled(ctx, handler, &conf.CORS)

	s.httpServer = &http.Server{
		Handler:           handler,
		WriteTimeout:      connTimeout,
		ReadTimeout:       connTimeout,
		ReadHeaderTimeout: connTimeout,
		ConnContext: func(newCtx context.Context, c net.Conn) context.Context {
			l := log.L(ctx).WithField("req", uuid.New().String()[:8])
			newCtx = log.WithLogger(newCtx, l)
			l.Debugf("New %s connection: remote=%s local=%s", description, c.RemoteAddr().String(), c.LocalAddr().String())
			return newCtx
		},
	}
	return s, nil
}

func (s *httpServer) runAPIServer() {
	err := s.httpServer.Serve(s.listener)
	s.httpServerDone <- err
}

// calcRequestTimeout honours a Request-Timeout header in seconds or as a Go
// duration, capped at the configured maximum
func (s *httpServer) calcRequestTimeout(req *http.Request, defaultTimeout, maxTimeout time.Duration) time.Duration {
	reqTimeout := defaultTimeout
	header := req.Header.Get("Request-Timeout")
	if header == "" {
		return reqTimeout
	}
	var custom time.Duration
	seconds, err := strconv.ParseInt(header, 10, 32)
	if err == nil {
		custom = time.Duration(seconds) * time.Second
	} else {
		custom, err = time.ParseDuration(header)
	}
	if err != nil {
		log.L(req.Context()).Warnf("Invalid Request-Timeout header '%s': %s", header, err)
		return reqTimeout
	}
	if custom > maxTimeout {
		return maxTimeout
	}
	return custom
}

func (s *httpServer) Addr() net.Addr {
	return s.listener.Addr()
}

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (sc *statusCapture) WriteHeader(statusCode int) {
	sc.status = statusCode
	sc.ResponseWriter.WriteHeader(statusCode)
}

func (s *httpServer) withLogAndTimeout(handler http.Handler, defaultRequestTimeout, maxRequestTimeout time.Duration) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		startTime := time.Now()

		ctx, cancel := context.WithTimeout(req.Context(), s.calcRequestTimeout(req, defaultRequestTimeout, maxRequestTimeout))
		defer cancel()
		req = req.WithContext(ctx)

		log.L(ctx).Debugf("--> %s %s (%s)", req.Method, req.URL.Path, s.description)
		sc := &statusCapture{ResponseWriter: res, status: http.StatusOK}
		handler.ServeHTTP(sc, req)

		durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
		log.L(ctx).Debugf("<-- %s %s [%d] (%.2fms)", req.Method, req.URL.Path, sc.status, durationMS)
	})
}

func (s *httpServer) Start() error {
	s.started = true
	go s.runAPIServer()
	return nil
}

func (s *httpServer) Stop() {
	if !s.started {
		_ = s.listener.Close()
		s.cancelCtx()
		return
	}
	log.L(s.ctx).Infof("%s server shutting down", s.description)
	shutdownStarted := time.Now()
	gracefulShutdown := make(chan struct{})
	go func() {
		defer close(gracefulShutdown)
		_ = s.httpServer.Shutdown(s.ctx)
	}()
	select {
	case <-time.After(s.shutdownTimeout):
		log.L(s.ctx).Warnf("%s server terminating after waiting %s for shutdown", s.description, time.Since(shutdownStarted))
		_ = s.httpServer.Close()
	case <-gracefulShutdown:
	}
	s.cancelCtx()
	err := <-s.httpServerDone
	log.L(s.ctx).Infof("%s server ended (err=%v)", s.description, err)
	s.started = false
}
