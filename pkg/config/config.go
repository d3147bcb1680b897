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

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"sigs.k8s.io/yaml" // supports json tags, so the structs can be embedded elsewhere
)

type ForestSyncConfig struct {
	Log         LogConfig         `json:"log"`
	Blockchain  EthClientConfig   `json:"blockchain"`
	Deployments DeploymentsConfig `json:"deployments"`
	Session     SessionConfig     `json:"session"`
	API         HTTPServerConfig  `json:"api"`
	Metrics     MetricsConfig     `json:"metrics"`
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		log.L(ctx).Errorf("file not found: %s", filePath)
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.L(ctx).Errorf("failed to read file: %v", err)
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		log.L(ctx).Errorf("failed to parse file: %v", err)
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, filePath, err.Error())
	}

	return nil
}
