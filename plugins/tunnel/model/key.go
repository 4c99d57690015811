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

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyword defines the keyword identifying tunnel data.
const Keyword = "srtunnel"

// KeyPrefix returns the prefix under which all tunnels are persisted.
func KeyPrefix() string {
	return Keyword + "/tunnel/"
}

// Key returns the key under which the tunnel with the given ID should be
// stored in the data-store.
func Key(tunnelID string) string {
	return KeyPrefix() + tunnelID
}

// ParseKey parses tunnel ID from a key identifying tunnel data.
// Returns empty string if the key does not belong to a tunnel.
func ParseKey(key string) (tunnelID string) {
	if strings.HasPrefix(key, KeyPrefix()) {
		return strings.TrimPrefix(key, KeyPrefix())
	}
	return ""
}

// LabelStackKey builds a string uniquely identifying the given label stack.
// Two tunnels with the same label stack key are considered value-equal.
func LabelStackKey(labels []uint32) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = strconv.FormatUint(uint64(label), 10)
	}
	return strings.Join(parts, "/")
}

// GroupRefKey builds a string identifying the group with the given ID
// allocated on the given device.
func GroupRefKey(deviceID string, groupID int32) string {
	return fmt.Sprintf("%s@%d", deviceID, groupID)
}
