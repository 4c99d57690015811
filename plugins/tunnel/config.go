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

package tunnel

import (
	"github.com/go-errors/errors"

	"github.com/contiv/srtunnel/plugins/tunnel/stitching"
)

const (
	defaultClusterLabel = "srtunnel"
	defaultRESTEnabled  = true
)

// Config represents configuration of the TunnelHandler plugin.
type Config struct {
	// RouteLabelLimit is the maximum number of labels a single forwarding
	// group can push, longer label stacks are stitched.
	RouteLabelLimit int `json:"routeLabelLimit"`

	// ClusterLabel is the label under which the members of the cluster
	// share tunnels in the remote database.
	ClusterLabel string `json:"clusterLabel"`

	// RESTEnabled enables the read-only REST API.
	RESTEnabled bool `json:"restEnabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RouteLabelLimit: stitching.DefaultRouteLabelLimit,
		ClusterLabel:    defaultClusterLabel,
		RESTEnabled:     defaultRESTEnabled,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	// a route segment needs its target label and the edge label
	if c.RouteLabelLimit < 2 {
		return errors.Errorf("route label limit must be at least 2, got %d", c.RouteLabelLimit)
	}
	if c.ClusterLabel == "" {
		return errors.New("cluster label must not be empty")
	}
	return nil
}
