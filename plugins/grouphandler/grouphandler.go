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

//go:generate protoc -I ./groupalloc --gogo_out=plugins=grpc:./groupalloc ./groupalloc/groupalloc.proto

import (
	"fmt"
	"sync"

	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/servicelabel"

	"github.com/contiv/srtunnel/plugins/grouphandler/groupalloc"
	"github.com/contiv/srtunnel/plugins/srconfig"
)

const (
	// maximum attempts to update a group pool before giving up
	maxPoolUpdateAttempts = 10
)

// GroupAllocator plugin allocates forwarding groups on devices in distributed
// manner. Every device has its own pool of group IDs stored in the remote
// database and updated only through compare-and-swap, so that members of the
// cluster never allocate the same group ID twice.
type GroupAllocator struct {
	Deps

	config     *Config
	serializer keyval.SerializerJSON

	dbLock         sync.Mutex
	dbBrokerUnsafe AtomicBroker

	handlers map[string]*deviceGroupHandler // device ID -> handler
}

// Deps lists dependencies of the GroupAllocator plugin.
type Deps struct {
	infra.PluginDeps

	ServiceLabel servicelabel.ReaderAPI
	Devices      srconfig.API
	RemoteDB     ClusterWideDB
}

// Init loads the configuration and creates group handlers for all
// configured devices.
func (a *GroupAllocator) Init() error {
	a.config = DefaultConfig()
	if a.Cfg != nil {
		if _, err := a.Cfg.LoadValue(a.config); err != nil {
			return err
		}
	}
	if err := a.config.Validate(); err != nil {
		return err
	}
	a.Log.Infof("Group allocator configuration: %+v", *a.config)

	a.serializer = keyval.SerializerJSON{}
	a.handlers = make(map[string]*deviceGroupHandler)
	for _, device := range a.Devices.GetDevices() {
		a.handlers[device.ID] = newDeviceGroupHandler(a, device.ID)
	}
	return nil
}

// Close does nothing.
func (a *GroupAllocator) Close() error {
	return nil
}

// GetGroupHandler returns the group handler of the given device.
func (a *GroupAllocator) GetGroupHandler(deviceID string) (handler GroupHandler, found bool) {
	h, found := a.handlers[deviceID]
	if !found {
		return nil, false
	}
	return h, true
}

// poolRange returns the configured range of group IDs.
func (a *GroupAllocator) poolRange() *groupalloc.GroupPool_Range {
	return &groupalloc.GroupPool_Range{
		MinId:    a.config.MinGroupID,
		MaxId:    a.config.MaxGroupID,
		Reserved: a.config.ReservedGroupIDs,
	}
}

// ownerLabel returns the label recorded with allocations made by this member.
func (a *GroupAllocator) ownerLabel() string {
	if a.ServiceLabel == nil {
		return ""
	}
	return a.ServiceLabel.GetAgentLabel()
}

// getDBBroker returns broker for accessing remote database, error if database is not connected.
func (a *GroupAllocator) getDBBroker() (AtomicBroker, error) {
	a.dbLock.Lock()
	defer a.dbLock.Unlock()

	if a.RemoteDB == nil {
		return nil, fmt.Errorf("remote database is not available")
	}

	// return error if the DB is not connected
	dbIsConnected := false
	a.RemoteDB.OnConnect(func() error {
		dbIsConnected = true
		return nil
	})
	if !dbIsConnected {
		return nil, fmt.Errorf("remote database is not connected")
	}
	// return existing broker if possible
	if a.dbBrokerUnsafe == nil {
		prefix := servicelabel.GetDifferentAgentPrefix(a.config.ClusterLabel)
		a.dbBrokerUnsafe = a.RemoteDB.NewAtomicBroker(prefix)
	}
	return a.dbBrokerUnsafe, nil
}
