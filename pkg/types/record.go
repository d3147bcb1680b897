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

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// GPSMultiplier is the fixed point scale used to store coordinates on the ledger
const GPSMultiplier = 100000000

// Coordinate is a latitude or longitude held exactly as the ledger's scaled
// integer. It renders with exactly 8 decimal places.
type Coordinate int64

var (
	minCoordinate = big.NewInt(-180 * GPSMultiplier)
	maxCoordinate = big.NewInt(180 * GPSMultiplier)
)

// CoordinateFromScaled returns false when v cannot be a latitude or longitude
func CoordinateFromScaled(v *big.Int) (Coordinate, bool) {
	if v == nil || v.Cmp(minCoordinate) < 0 || v.Cmp(maxCoordinate) > 0 {
		return 0, false
	}
	return Coordinate(v.Int64()), true
}

func (c Coordinate) Scaled() int64 {
	return int64(c)
}

func (c Coordinate) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%08d", sign, v/GPSMultiplier, v%GPSMultiplier)
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCoordinate(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoordinate parses the fixed 8 decimal rendering produced by String
func ParseCoordinate(s string) (Coordinate, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	scaled := new(big.Rat).Mul(r, big.NewRat(GPSMultiplier, 1))
	if !scaled.IsInt() {
		return 0, fmt.Errorf("coordinate %q has more than 8 decimal places", s)
	}
	c, ok := CoordinateFromScaled(scaled.Num())
	if !ok {
		return 0, fmt.Errorf("coordinate %q out of range", s)
	}
	return c, nil
}

// Record is one plot submission as stored on the ledger, plus the local
// InProgress marker which is never written to the ledger.
type Record struct {
	Index           uint64     `json:"index"`
	Timestamp       uint64     `json:"timestamp"`
	TribeName       string     `json:"tribeName"`
	FamilyName      string     `json:"familyName"`
	CoffeeTreeCount uint64     `json:"coffeeTreeCount"`
	PhotoReference  string     `json:"photoReference"`
	PhotoCID        string     `json:"photoCid,omitempty"`
	Latitude        Coordinate `json:"latitude"`
	Longitude       Coordinate `json:"longitude"`
	InProgress      bool       `json:"inProgress"`
}

// RecordSet is published as a whole and never modified afterwards
type RecordSet struct {
	Generation uint64   `json:"generation"`
	Records    []Record `json:"records"`
}

func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// Contains reports whether a record with the given ledger index is in the set.
// Ledger indexes are dense, so every index below the count is present.
func (rs *RecordSet) Contains(index uint64) bool {
	return index < uint64(rs.Len())
}
