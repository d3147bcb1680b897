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

package config

import "github.com/fairgradeforests/forestsync/internal/confutil"

type HTTPServerConfig struct {
	Address               *string    `json:"address"`
	Port                  *int       `json:"port"`
	ShutdownTimeout       *string    `json:"shutdownTimeout"`
	DefaultRequestTimeout *string    `json:"defaultRequestTimeout"`
	MaxRequestTimeout     *string    `json:"maxRequestTimeout"`
	CORS                  CORSConfig `json:"cors"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	Debug            bool     `json:"debug"`
	AllowCredentials *bool    `json:"credentials"`
	AllowedHeaders   []string `json:"headers"`
	AllowedMethods   []string `json:"methods"`
	AllowedOrigins   []string `json:"origins"`
	MaxAge           *string  `json:"maxAge"`
}

var HTTPDefaults = &HTTPServerConfig{
	Address:               confutil.P("127.0.0.1"),
	ShutdownTimeout:       confutil.P("10s"),
	DefaultRequestTimeout: confutil.P("2m"),
	MaxRequestTimeout:     confutil.P("10m"),
}

var APIDefaults = &HTTPServerConfig{
	Port: confutil.P(8585),
}

type MetricsConfig struct {
	Enabled          *bool `json:"enabled"`
	HTTPServerConfig `json:",inline"`
}

var MetricsDefaults = &MetricsConfig{
	Enabled: confutil.P(false),
	HTTPServerConfig: HTTPServerConfig{
		Port: confutil.P(9585),
	},
}
