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
	"github.com/ligato/cn-infra/infra"
)

// SRConfig plugin loads the configuration of segment-routing devices and
// topology links from the plugin config file and serves it through API.
type SRConfig struct {
	Deps

	config *Config
	table  *DeviceTable
}

// Deps lists dependencies of SRConfig.
type Deps struct {
	infra.PluginDeps
}

// Init loads and validates the device configuration.
func (p *SRConfig) Init() (err error) {
	p.config = &Config{}
	found, err := p.Cfg.LoadValue(p.config)
	if err != nil {
		return err
	}
	if !found {
		p.Log.Warnf("Device configuration file %s not found, no devices are defined",
			p.Cfg.GetConfigName())
	}

	p.table, err = NewDeviceTable(p.config)
	if err != nil {
		return err
	}
	p.Log.Infof("Loaded configuration of %d devices and %d links",
		len(p.config.Devices), len(p.config.Links))
	return nil
}

// Close does nothing.
func (p *SRConfig) Close() error {
	return nil
}

// GetDeviceID returns ID of the device with the given node SID.
func (p *SRConfig) GetDeviceID(sid uint32) (deviceID string, found bool) {
	return p.table.GetDeviceID(sid)
}

// IsAdjacencySID returns true if the SID is an adjacency SID of the device.
func (p *SRConfig) IsAdjacencySID(deviceID string, sid uint32) bool {
	return p.table.IsAdjacencySID(deviceID, sid)
}

// GetPortsForAdjacencySID returns egress ports bound to the adjacency SID.
func (p *SRConfig) GetPortsForAdjacencySID(deviceID string, sid uint32) []uint32 {
	return p.table.GetPortsForAdjacencySID(deviceID, sid)
}

// GetDeviceEgressLinks returns all links leaving the device.
func (p *SRConfig) GetDeviceEgressLinks(deviceID string) []Link {
	return p.table.GetDeviceEgressLinks(deviceID)
}

// GetDevices returns all configured devices.
func (p *SRConfig) GetDevices() []*Device {
	return p.table.GetDevices()
}
