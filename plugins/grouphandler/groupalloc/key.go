// Copyright (c) 2019 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package groupalloc

import (
	"strings"
)

// Keyword defines the keyword identifying group allocation pools.
const Keyword = "srgroups"

// KeyPrefix return prefix where all group allocation pools are persisted.
func KeyPrefix() string {
	return Keyword + "/"
}

// Key returns the key under which the group pool of the given device
// should be stored in the data-store.
func Key(deviceID string) string {
	return KeyPrefix() + deviceID
}

// ParseKey parses device ID from a key identifying a group pool.
// Returns empty string if the key does not belong to a group pool.
func ParseKey(key string) (deviceID string) {
	if strings.HasPrefix(key, KeyPrefix()) {
		return strings.TrimPrefix(key, KeyPrefix())
	}
	return ""
}
