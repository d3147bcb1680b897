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


package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/fairgradeforests/forestsync/internal/httpserver"
	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
)

// SessionAccess is the part of the session engine exposed over REST
type SessionAccess interface {
	Snapshot() *types.Snapshot
	SetInProgress(ctx context.Context, index uint64, inProgress bool) error
	Resync(ctx context.Context) error
}

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

type apiServer struct {
	session    SessionAccess
	router     *mux.Router
	httpServer httpserver.Server
}

type InProgressRequest struct {
	InProgress *bool `json:"inProgress"`
}

type errorBody struct {
	Error string `json:"error"`
}

func NewAPIServer(ctx context.Context, conf *config.HTTPServerConfig, session SessionAccess) (_ Server, err error) {
	s := &apiServer{
		session: session,
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/api/v1/session", s.getSession).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/records", s.getRecords).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/records/{index}/inprogress", s.putInProgress).Methods(http.MethodPut)
	s.router.HandleFunc("/api/v1/resync", s.postResync).Methods(http.MethodPost)

	serverConf := *conf
	if serverConf.Port == nil {
		serverConf.Port = config.APIDefaults.Port
	}
	s.httpServer, err = httpserver.NewServer(ctx, "API", &serverConf, s.router)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *apiServer) Start() error {
	return s.httpServer.Start()
}

func (s *apiServer) Stop() {
	s.httpServer.Stop()
}

func (s *apiServer) Addr() net.Addr {
	return s.httpServer.Addr()
}

func (s *apiServer) getSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.session.Snapshot())
}

func (s *apiServer) getRecords(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	records := snap.Records
	if records == nil {
		records = []types.Record{}
	}
	s.writeJSON(r.Context(), w, http.StatusOK, records)
}

func (s *apiServer) putInProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	indexStr := mux.Vars(r)["index"]
	index, err := strconv.ParseUint(indexStr, 10, 64)
	if err != nil {
		s.writeError(ctx, w, i18n.NewError(ctx, msgs.MsgAPIInvalidRecordIndex, indexStr))
		return
	}
	var req InProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InProgress == nil {
		s.writeError(ctx, w, i18n.NewError(ctx, msgs.MsgAPIInvalidRequestBody))
		return
	}
	if err := s.session.SetInProgress(ctx, index, *req.InProgress); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, s.session.Snapshot())
}

func (s *apiServer) postResync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.session.Resync(ctx); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, s.session.Snapshot())
}

func (s *apiServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if ffe, ok := err.(i18n.FFError); ok {
		status = ffe.HTTPStatus()
	}
	log.L(ctx).Errorf("Request failed (%d): %s", status, err)
	s.writeJSON(ctx, w, status, &errorBody{Error: err.Error()})
}

func (s *apiServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L(ctx).Warnf("Failed to write response: %s", err)
	}
}
