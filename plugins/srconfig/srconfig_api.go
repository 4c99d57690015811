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

// DeviceConfig resolves segment IDs of the label-switching devices.
type DeviceConfig interface {
	// GetDeviceID returns ID of the device with the given node SID.
	GetDeviceID(sid uint32) (deviceID string, found bool)

	// IsAdjacencySID returns true if the given SID is an adjacency SID
	// configured on the given device.
	IsAdjacencySID(deviceID string, sid uint32) bool

	// GetPortsForAdjacencySID returns egress ports of the given device bound
	// to the given adjacency SID.
	GetPortsForAdjacencySID(deviceID string, sid uint32) []uint32
}

// LinkService provides the topology links between devices.
type LinkService interface {
	// GetDeviceEgressLinks returns all links leaving the given device.
	GetDeviceEgressLinks(deviceID string) []Link
}

// API combines DeviceConfig and LinkService with the listing of all
// configured devices.
type API interface {
	DeviceConfig
	LinkService

	// GetDevices returns all configured devices ordered by their ID.
	GetDevices() []*Device
}

// Link is a unidirectional link between ports of two devices.
type Link struct {
	SrcDevice string `json:"srcDevice"`
	SrcPort   uint32 `json:"srcPort"`
	DstDevice string `json:"dstDevice"`
	DstPort   uint32 `json:"dstPort"`
}
