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
	"net/http"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/rs/cors"
)

// The UI reads snapshots and toggles in-progress markers, so PUT is allowed by default
var DefaultCORS = &config.CORSConfig{
	AllowCredentials: confutil.P(false),
	AllowedMethods:   []string{http.MethodHead, http.MethodGet, http.MethodPost, http.MethodPut},
	AllowedHeaders:   []string{"Content-Type", "Request-Timeout"},
	AllowedOrigins:   []string{"*"},
	MaxAge:           confutil.P("0"),
}

// corsOptions fills every unset field from DefaultCORS
func corsOptions(conf *config.CORSConfig) cors.Options {
	return cors.Options{
		AllowedOrigins:   confutil.StringSlice(conf.AllowedOrigins, DefaultCORS.AllowedOrigins),
		AllowedMethods:   confutil.StringSlice(conf.AllowedMethods, DefaultCORS.AllowedMethods),
		AllowedHeaders:   confutil.StringSlice(conf.AllowedHeaders, DefaultCORS.AllowedHeaders),
		AllowCredentials: confutil.Bool(conf.AllowCredentials, *DefaultCORS.AllowCredentials),
		MaxAge:           confutil.DurationSeconds(conf.MaxAge, 0, *DefaultCORS.MaxAge),
		Debug:            conf.Debug,
	}
}

func WrapCorsIfEnabled(ctx context.Context, chain http.Handler, conf *config.CORSConfig) http.Handler {
	if !conf.Enabled {
		return chain
	}
	opts := corsOptions(conf)
	log.L(ctx).Debugf("CORS enabled for origins %v methods %v", opts.AllowedOrigins, opts.AllowedMethods)
	return cors.New(opts).Handler(chain)
}
