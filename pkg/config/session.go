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

type DeploymentsConfig struct {
	// path to the truffle build artifact holding the contract abi and per-network addresses
	Artifact *string `json:"artifact"`
	// additional or overriding deployments, keyed by decimal network id
	Networks map[string]NetworkDeploymentConfig `json:"networks"`
	// name of the event emitted when a record is appended
	EventName *string `json:"eventName"`
}

type NetworkDeploymentConfig struct {
	Address string `json:"address"`
}

var DeploymentsDefaults = &DeploymentsConfig{
	Artifact:  confutil.P("build/contracts/Forest.json"),
	EventName: confutil.P("LogRecordAdded"),
}

const (
	RightsPolicyOwner = "owner"
	RightsPolicyNone  = "none"
)

type SessionConfig struct {
	IdentityPollInterval   *string `json:"identityPollInterval"`
	ReadTimeout            *string `json:"readTimeout"`
	MaxConcurrentReads     *int    `json:"maxConcurrentReads"`
	RightsPolicy           *string `json:"rightsPolicy"`
	AllowProductionNetwork *bool   `json:"allowProductionNetwork"`
}

var SessionDefaults = &SessionConfig{
	IdentityPollInterval:   confutil.P("500ms"),
	ReadTimeout:            confutil.P("30s"),
	MaxConcurrentReads:     confutil.P(25),
	RightsPolicy:           confutil.P(RightsPolicyOwner),
	AllowProductionNetwork: confutil.P(false),
}
