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

package types

type SessionStatus string

const (
	SessionStatusStarting            SessionStatus = "starting"
	SessionStatusReady               SessionStatus = "ready"
	SessionStatusConnectivityFailed  SessionStatus = "connectivity_failed"
	SessionStatusConfigurationFailed SessionStatus = "configuration_failed"
	SessionStatusStopped             SessionStatus = "stopped"
)

type FailureKind string

const (
	// the ledger node could not be reached
	FailureConnectivity FailureKind = "connectivity"
	// the node was reached but this session cannot run against it
	FailureConfiguration FailureKind = "configuration"
)

// SessionFailure is a terminal bootstrap failure
type SessionFailure struct {
	Kind FailureKind
	Err  error
}

func (f *SessionFailure) Error() string {
	return f.Err.Error()
}

func (f *SessionFailure) Unwrap() error {
	return f.Err
}

func (f *SessionFailure) Status() SessionStatus {
	if f.Kind == FailureConfiguration {
		return SessionStatusConfigurationFailed
	}
	return SessionStatusConnectivityFailed
}

// Snapshot is a read-only copy of the session state handed to consumers
type Snapshot struct {
	Status            SessionStatus    `json:"status"`
	Failure           string           `json:"failure,omitempty"`
	Network           *NetworkContext  `json:"network,omitempty"`
	Identity          Identity         `json:"identity"`
	Contract          *ContractBinding `json:"contract,omitempty"`
	Rights            Rights           `json:"rights"`
	RecordsGeneration uint64           `json:"recordsGeneration"`
	Records           []Record         `json:"records"`
}

// ReadyContext is handed to ready callbacks once the connection is live and the contract is bound
type ReadyContext struct {
	Network  NetworkContext   `json:"network"`
	Identity Identity         `json:"identity"`
	Contract *ContractBinding `json:"contract"`
}
