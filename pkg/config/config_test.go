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

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndParseYAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "forestsync.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
log:
  level: debug
blockchain:
  http:
    url: http://localhost:8545
    auth:
      username: user
  ws:
    initialConnectAttempts: 3
deployments:
  artifact: ./Forest.json
  networks:
    "1337":
      address: "0x9d0b2d4a4bc4e4bd1a0b0bf4a5c4bd1a3fa25e41"
session:
  rightsPolicy: none
  allowProductionNetwork: true
api:
  port: 9000
  cors:
    enabled: true
metrics:
  enabled: true
  port: 9001
`), 0644))

	var conf ForestSyncConfig
	require.NoError(t, ReadAndParseYAMLFile(context.Background(), configFile, &conf))
	assert.Equal(t, "debug", *conf.Log.Level)
	assert.Equal(t, "http://localhost:8545", conf.Blockchain.HTTP.URL)
	assert.Equal(t, "user", conf.Blockchain.HTTP.Auth.Username)
	assert.Equal(t, 3, *conf.Blockchain.WS.InitialConnectAttempts)
	assert.Equal(t, "./Forest.json", *conf.Deployments.Artifact)
	assert.Equal(t, "0x9d0b2d4a4bc4e4bd1a0b0bf4a5c4bd1a3fa25e41", conf.Deployments.Networks["1337"].Address)
	assert.Equal(t, RightsPolicyNone, *conf.Session.RightsPolicy)
	assert.True(t, *conf.Session.AllowProductionNetwork)
	assert.Equal(t, 9000, *conf.API.Port)
	assert.True(t, conf.API.CORS.Enabled)
	assert.True(t, *conf.Metrics.Enabled)
	assert.Equal(t, 9001, *conf.Metrics.Port)
	assert.Nil(t, conf.Session.ReadTimeout)
}

func TestReadAndParseYAMLFileMissing(t *testing.T) {
	var conf ForestSyncConfig
	err := ReadAndParseYAMLFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), &conf)
	assert.Regexp(t, "FS010000", err)
}

func TestReadAndParseYAMLFileBadYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log: [not: {a map"), 0644))
	var conf ForestSyncConfig
	err := ReadAndParseYAMLFile(context.Background(), configFile, &conf)
	assert.Regexp(t, "FS010002", err)
}

func TestReadAndParseYAMLFileIsDir(t *testing.T) {
	var conf ForestSyncConfig
	err := ReadAndParseYAMLFile(context.Background(), t.TempDir(), &conf)
	assert.Regexp(t, "FS010001", err)
}
