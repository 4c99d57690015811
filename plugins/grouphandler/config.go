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

package grouphandler

import (
	"github.com/go-errors/errors"
)

const (
	// DefaultClusterLabel is the label under which the members of the cluster
	// share group pools.
	DefaultClusterLabel = "srtunnel"

	defaultMinGroupID = 1
	defaultMaxGroupID = 65535
)

// Config represents configuration of the group allocator.
type Config struct {
	ClusterLabel     string  `json:"clusterLabel"`
	MinGroupID       int32   `json:"minGroupId"`
	MaxGroupID       int32   `json:"maxGroupId"`
	ReservedGroupIDs []int32 `json:"reservedGroupIds,omitempty"`
}

// DefaultConfig returns configuration with the default group ID range.
func DefaultConfig() *Config {
	return &Config{
		ClusterLabel: DefaultClusterLabel,
		MinGroupID:   defaultMinGroupID,
		MaxGroupID:   defaultMaxGroupID,
	}
}

// Validate checks the group ID range.
func (c *Config) Validate() error {
	if c.ClusterLabel == "" {
		return errors.New("cluster label must not be empty")
	}
	if c.MinGroupID < 0 {
		return errors.Errorf("group IDs must not be negative (min: %d)", c.MinGroupID)
	}
	if c.MinGroupID > c.MaxGroupID {
		return errors.Errorf("invalid group ID range %d-%d", c.MinGroupID, c.MaxGroupID)
	}
	return nil
}
