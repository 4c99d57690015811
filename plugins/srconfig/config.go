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

package srconfig

import (
	"fmt"

	"github.com/go-errors/errors"
)

// Config represents configuration of segment-routing capable devices
// and the links between them.
type Config struct {
	Devices []*Device `json:"devices"`
	Links   []*Link   `json:"links"`
}

// Device is a single label-switching device.
type Device struct {
	ID            string          `json:"id"`
	NodeSID       uint32          `json:"nodeSid"`
	AdjacencySIDs []*AdjacencySID `json:"adjacencySids,omitempty"`
}

// AdjacencySID binds an adjacency segment to egress ports of the device.
type AdjacencySID struct {
	SID   uint32   `json:"sid"`
	Ports []uint32 `json:"ports"`
}

// Validate checks that device IDs and node SIDs are unique, that adjacency
// SIDs do not collide with node SIDs and that links connect known devices.
func (c *Config) Validate() error {
	devices := make(map[string]*Device)
	nodeSIDs := make(map[uint32]string)

	for _, device := range c.Devices {
		if device == nil || device.ID == "" {
			return errors.New("device with empty ID")
		}
		if _, duplicate := devices[device.ID]; duplicate {
			return errors.Errorf("duplicate device ID %s", device.ID)
		}
		if owner, duplicate := nodeSIDs[device.NodeSID]; duplicate {
			return errors.Errorf("node SID %d is used by both %s and %s",
				device.NodeSID, owner, device.ID)
		}
		devices[device.ID] = device
		nodeSIDs[device.NodeSID] = device.ID
	}

	for _, device := range c.Devices {
		adjSIDs := make(map[uint32]struct{})
		for _, adj := range device.AdjacencySIDs {
			if adj == nil {
				return errors.Errorf("device %s: empty adjacency SID entry", device.ID)
			}
			if owner, isNodeSID := nodeSIDs[adj.SID]; isNodeSID {
				return errors.Errorf("device %s: adjacency SID %d collides with node SID of %s",
					device.ID, adj.SID, owner)
			}
			if _, duplicate := adjSIDs[adj.SID]; duplicate {
				return errors.Errorf("device %s: duplicate adjacency SID %d", device.ID, adj.SID)
			}
			if len(adj.Ports) == 0 {
				return errors.Errorf("device %s: adjacency SID %d without ports", device.ID, adj.SID)
			}
			adjSIDs[adj.SID] = struct{}{}
		}
	}

	for i, link := range c.Links {
		if link == nil {
			return errors.Errorf("link #%d is empty", i)
		}
		if _, known := devices[link.SrcDevice]; !known {
			return errors.Errorf("link %s: unknown source device", link)
		}
		if _, known := devices[link.DstDevice]; !known {
			return errors.Errorf("link %s: unknown destination device", link)
		}
	}
	return nil
}

// String returns human-readable representation of the link.
func (l *Link) String() string {
	return fmt.Sprintf("%s/%d->%s/%d", l.SrcDevice, l.SrcPort, l.DstDevice, l.DstPort)
}
