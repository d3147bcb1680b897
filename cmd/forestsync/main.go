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


package main

import (
	"fmt"
	"os"

	"github.com/fairgradeforests/forestsync/internal/bootstrap"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "forestsync",
	Short:        "Mirrors the Forest contract's plot records from a ledger node",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rc := bootstrap.Run(configFile); rc != bootstrap.RC_OK {
			return fmt.Errorf("exited with code %d", rc)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "forestsync.yaml", "path to the YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
