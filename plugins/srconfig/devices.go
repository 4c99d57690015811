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
	"sort"
)

// DeviceTable is an immutable lookup table built from Config.
// It implements API.
type DeviceTable struct {
	devices    []*Device
	bySID      map[uint32]string
	adjacency  map[string]map[uint32][]uint32 // device -> adjacency SID -> ports
	egressLink map[string][]Link              // source device -> links
}

// NewDeviceTable validates the configuration and builds the lookup table.
func NewDeviceTable(config *Config) (*DeviceTable, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dt := &DeviceTable{
		bySID:      make(map[uint32]string),
		adjacency:  make(map[string]map[uint32][]uint32),
		egressLink: make(map[string][]Link),
	}
	for _, device := range config.Devices {
		dt.devices = append(dt.devices, device)
		dt.bySID[device.NodeSID] = device.ID
		adjSIDs := make(map[uint32][]uint32)
		for _, adj := range device.AdjacencySIDs {
			adjSIDs[adj.SID] = append([]uint32(nil), adj.Ports...)
		}
		dt.adjacency[device.ID] = adjSIDs
	}
	sort.Slice(dt.devices, func(i, j int) bool {
		return dt.devices[i].ID < dt.devices[j].ID
	})
	for _, link := range config.Links {
		dt.egressLink[link.SrcDevice] = append(dt.egressLink[link.SrcDevice], *link)
	}
	return dt, nil
}

// GetDeviceID returns ID of the device with the given node SID.
func (dt *DeviceTable) GetDeviceID(sid uint32) (deviceID string, found bool) {
	deviceID, found = dt.bySID[sid]
	return deviceID, found
}

// IsAdjacencySID returns true if the SID is an adjacency SID of the device.
func (dt *DeviceTable) IsAdjacencySID(deviceID string, sid uint32) bool {
	_, isAdj := dt.adjacency[deviceID][sid]
	return isAdj
}

// GetPortsForAdjacencySID returns egress ports bound to the adjacency SID.
func (dt *DeviceTable) GetPortsForAdjacencySID(deviceID string, sid uint32) []uint32 {
	ports := dt.adjacency[deviceID][sid]
	if len(ports) == 0 {
		return nil
	}
	return append([]uint32(nil), ports...)
}

// GetDeviceEgressLinks returns all links leaving the device.
func (dt *DeviceTable) GetDeviceEgressLinks(deviceID string) []Link {
	links := dt.egressLink[deviceID]
	if len(links) == 0 {
		return nil
	}
	return append([]Link(nil), links...)
}

// GetDevices returns all configured devices ordered by their ID.
func (dt *DeviceTable) GetDevices() []*Device {
	return append([]*Device(nil), dt.devices...)
}
