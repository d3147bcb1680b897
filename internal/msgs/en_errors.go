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

package msgs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const forestsyncPrefix = "FS01"

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix(forestsyncPrefix, "Forest Ledger Sync")
	})
	if !strings.HasPrefix(key, forestsyncPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", forestsyncPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config FS0100XX
	MsgConfigFileMissing         = ffe("FS010000", "Config file not found at path: %s")
	MsgConfigFileReadError       = ffe("FS010001", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError      = ffe("FS010002", "Failed to parse config file %s with error: %s")
	MsgConfigRightsPolicyUnknown = ffe("FS010003", "Unknown rights policy '%s' (must be one of %s)")

	// Ledger client FS0101XX
	MsgEthClientHTTPURLInvalid      = ffe("FS010100", "Invalid HTTP JSON/RPC URL: %s")
	MsgEthClientWebSocketURLInvalid = ffe("FS010101", "Invalid WebSocket JSON/RPC URL: %s")
	MsgEthClientNoConnection        = ffe("FS010102", "No JSON/RPC connection is configured (blockchain.http.url or blockchain.ws.url required)")
	MsgEthClientNetworkIDFailed     = ffe("FS010103", "Failed to read the network id from the ledger node")
	MsgEthClientNetworkIDInvalid    = ffe("FS010104", "Ledger node returned an invalid network id '%s'")
	MsgEthClientGenesisFailed       = ffe("FS010105", "Failed to read the genesis block from the ledger node")
	MsgEthClientAccountsFailed      = ffe("FS010106", "Failed to read accounts from the ledger node")
	MsgEthClientFunctionNotFound    = ffe("FS010107", "Function '%s' not found on contract interface")
	MsgEthClientEventNotFound       = ffe("FS010108", "Event '%s' not found on contract interface")
	MsgEthClientCallFailed          = ffe("FS010109", "Contract call %s failed")
	MsgEthClientCallDecodeFailed    = ffe("FS010110", "Failed to decode result of contract call %s")
	MsgEthClientSubscribeNoWS       = ffe("FS010111", "Event subscription requires a WebSocket connection (blockchain.ws.url)")
	MsgEthClientSubscribeFailed     = ffe("FS010112", "Subscription to event %s failed")
	MsgEthClientEventDecodeFailed   = ffe("FS010113", "Failed to decode %s event from log")
	MsgEthClientOutputIndex         = ffe("FS010114", "Contract call returned %d values, value %d requested")
	MsgEthClientOutputType          = ffe("FS010115", "Value %d of contract call result is not a %s: %s")

	// Deployments FS0102XX
	MsgDeploymentsArtifactMissing  = ffe("FS010200", "Contract build artifact not found at path: %s")
	MsgDeploymentsArtifactInvalid  = ffe("FS010201", "Contract build artifact %s is invalid")
	MsgDeploymentsAddressInvalid   = ffe("FS010202", "Invalid contract address '%s' for network %s")
	MsgDeploymentsNetworkIDInvalid = ffe("FS010203", "Invalid network id '%s' in deployment registry")
	MsgDeploymentsNotDeployed      = ffe("FS010204", "Contract is not deployed on network %d")
	MsgDeploymentsNoABI            = ffe("FS010205", "No contract interface is available in the deployment registry")

	// Session FS0103XX
	MsgSessionConnectFailed      = ffe("FS010300", "Unable to connect to the ledger node")
	MsgSessionAlreadyStarted     = ffe("FS010301", "Session already started")
	MsgSessionNotReady           = ffe("FS010302", "Session is not ready", 503)
	MsgSessionRecordNotFound     = ffe("FS010303", "No record at ledger index %d", 404)
	MsgSessionRecordCountInvalid = ffe("FS010304", "Record count returned by the ledger is invalid: %s")
	MsgSessionRecordInvalid      = ffe("FS010305", "Record %d returned by the ledger is invalid: %s")
	MsgSessionProductionNetwork  = ffe("FS010306", "Connected to a production network (id=%d) which is not permitted for this application")
	MsgSessionRecordReadFailed   = ffe("FS010307", "Failed to read record %d")
	MsgSessionRecordCountFailed  = ffe("FS010308", "Failed to read record count")
	MsgSessionOwnerReadFailed    = ffe("FS010309", "Failed to read the contract owner")
	MsgSessionAccountAddressBad  = ffe("FS010310", "Account '%s' is not a valid address")
	MsgSessionRecordFieldRange   = ffe("FS010311", "Record %d field %s value %s is out of range")
	MsgSessionSubscribeFailed    = ffe("FS010312", "Failed to subscribe to record events")

	// API FS0104XX
	MsgAPIServerMissingPort  = ffe("FS010400", "HTTP server port must be specified for '%s'", 500)
	MsgAPIServerStartFailed  = ffe("FS010401", "Failed to start server on '%s'", 500)
	MsgAPIInvalidRecordIndex = ffe("FS010402", "Invalid record index '%s'", 400)
	MsgAPIInvalidRequestBody = ffe("FS010403", "Invalid request body", 400)
)
