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


package confutil

import (
	"cmp"
	"time"

	"github.com/docker/go-units"
)

// Config fields are pointers so "unset" differs from the zero value. These
// read a field against its default. The log package initializes from config,
// so nothing in here may log.

// atLeast returns def when unset, otherwise the value raised to floor
func atLeast[T cmp.Ordered](v *T, floor, def T) T {
	if v == nil {
		return def
	}
	return max(*v, floor)
}

// parsed applies parse to a string field. An unset or unparsable value falls
// back to def, and the result is raised to floor.
func parsed[T cmp.Ordered](s *string, floor T, def string, parse func(string) (T, error)) T {
	if s != nil {
		if v, err := parse(*s); err == nil {
			return max(v, floor)
		}
	}
	v, _ := parse(def)
	return max(v, floor)
}

func IntMin(iVal *int, min int, def int) int {
	return atLeast(iVal, min, def)
}

func Bool(bVal *bool, def bool) bool {
	if bVal == nil {
		return def
	}
	return *bVal
}

func StringNotEmpty(sVal *string, def string) string {
	if sVal == nil || *sVal == "" {
		return def
	}
	return *sVal
}

// StringSlice keeps an explicitly empty list, only nil takes the default
func StringSlice(sVal []string, def []string) []string {
	if sVal == nil {
		return def
	}
	return sVal
}

func DurationMin(sVal *string, min time.Duration, def string) time.Duration {
	return parsed(sVal, min, def, time.ParseDuration)
}

// DurationSeconds rounds up to whole seconds
func DurationSeconds(sVal *string, min time.Duration, def string) int {
	d := DurationMin(sVal, min, def)
	return int((d + time.Second - 1) / time.Second)
}

// ByteSize accepts human readable sizes such as "16Kb" or "100Mb"
func ByteSize(sVal *string, min int64, def string) int64 {
	return parsed(sVal, min, def, units.RAMInBytes)
}

func P[T any](v T) *T {
	return &v
}
