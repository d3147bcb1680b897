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

// Package photoref interprets the content-storage identifiers that records
// carry for their photos. The bytes themselves live in the storage network
// and are never fetched here.
package photoref

import (
	"strings"

	"github.com/ipfs/go-cid"
)

// Canonical returns the CIDv1 string form of a photo reference. Legacy
// base58 CIDv0 references ("Qm...") are upgraded to v1 so that equal
// content compares equal regardless of the form submitted to the ledger.
func Canonical(ref string) (string, error) {
	c, err := cid.Decode(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	if c.Version() == 0 {
		c = cid.NewCidV1(c.Type(), c.Hash())
	}
	return c.String(), nil
}
