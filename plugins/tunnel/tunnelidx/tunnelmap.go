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

package tunnelidx

import (
	"sort"
	"sync"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/idxmap"
	"github.com/ligato/cn-infra/idxmap/mem"
	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/srtunnel/plugins/tunnel/model"
)

const labelStackIndex = "labelStackIndex"
const groupRefIndex = "groupRefIndex"

// Broker is the subset of the proto broker used to persist tunnels.
type Broker interface {
	Put(key string, data proto.Message, opts ...datasync.PutOption) error
	Delete(key string, opts ...datasync.DelOption) (existed bool, err error)
	ListValues(keyPrefix string) (keyval.ProtoKeyValIterator, error)
}

// ChangeEvent represents a notification about change in ConfigIndex delivered to subscribers
type ChangeEvent struct {
	idxmap.NamedMappingEvent
	Value *model.Tunnel
}

// ConfigIndex implements a cache for configured tunnels, persisted through
// the broker. Primary index is the tunnel ID, secondary indexes are the label
// stack and the groups referenced by the tunnel.
type ConfigIndex struct {
	logger  logging.Logger
	broker  Broker
	mapping idxmap.NamedMappingRW

	// removed lists tunnels removed by this member whose delete event
	// has not been received from the remote database yet
	removedLock sync.Mutex
	removed     map[string]struct{}
}

// NewConfigIndex creates new instance of ConfigIndex and loads persisted tunnels.
func NewConfigIndex(logger logging.Logger, title string, broker Broker) *ConfigIndex {
	ci := &ConfigIndex{
		mapping: mem.NewNamedMapping(logger, title, IndexFunction),
		broker:  broker,
		logger:  logger,
		removed: make(map[string]struct{}),
	}
	if err := ci.loadPersistedTunnels(); err != nil {
		logger.Errorf("Failed to load persisted tunnels: %v", err)
	}
	return ci
}

// ContainsKey returns true if a tunnel with the given ID exists.
func (ci *ConfigIndex) ContainsKey(tunnelID string) bool {
	_, found := ci.mapping.GetValue(tunnelID)
	return found
}

// ContainsValue returns true if a tunnel value-equal to the given one exists
// (under any ID), i.e. a tunnel with the same label stack.
func (ci *ConfigIndex) ContainsValue(tunnel *model.Tunnel) bool {
	return len(ci.LookupLabelStack(tunnel.GetLabelIds())) > 0
}

// LookupLabelStack returns IDs of tunnels with the given label stack.
func (ci *ConfigIndex) LookupLabelStack(labels []uint32) (tunnelIDs []string) {
	return ci.mapping.ListNames(labelStackIndex, model.LabelStackKey(labels))
}

// Get returns a copy of the tunnel with the given ID.
func (ci *ConfigIndex) Get(tunnelID string) (tunnel *model.Tunnel, found bool) {
	d, found := ci.mapping.GetValue(tunnelID)
	if found {
		if data, ok := d.(*model.Tunnel); ok {
			return proto.Clone(data).(*model.Tunnel), true
		}
	}
	return nil, false
}

// Put persists the tunnel and adds it into the mapping.
// The mapping is not changed if the tunnel could not be persisted.
func (ci *ConfigIndex) Put(tunnel *model.Tunnel) error {
	data := proto.Clone(tunnel).(*model.Tunnel)
	if err := ci.persistTunnel(data); err != nil {
		return err
	}
	ci.setRemoved(data.Id, false)
	ci.replace(data.Id, data)
	return nil
}

// Remove removes the tunnel from the mapping and from the persistent storage.
// The tunnel stays in the mapping if it could not be removed from the storage.
func (ci *ConfigIndex) Remove(tunnelID string) (tunnel *model.Tunnel, found bool, err error) {
	d, found := ci.mapping.Delete(tunnelID)
	if !found {
		return nil, false, nil
	}
	err = ci.removePersistedTunnel(tunnelID)
	if err != nil {
		ci.mapping.Put(tunnelID, d)
		return nil, true, err
	}
	if ci.broker != nil {
		ci.setRemoved(tunnelID, true)
	}
	if data, ok := d.(*model.Tunnel); ok {
		return data, true, nil
	}
	return nil, true, nil
}

// Values returns copies of all tunnels ordered by ID.
func (ci *ConfigIndex) Values() (tunnels []*model.Tunnel) {
	ids := ci.mapping.ListAllNames()
	sort.Strings(ids)
	for _, id := range ids {
		if tunnel, found := ci.Get(id); found {
			tunnels = append(tunnels, tunnel)
		}
	}
	return tunnels
}

// ListAll returns IDs of all tunnels.
func (ci *ConfigIndex) ListAll() (tunnelIDs []string) {
	return ci.mapping.ListAllNames()
}

// TunnelsUsingGroup returns sorted IDs of tunnels referencing the group
// allocated on the given device.
func (ci *ConfigIndex) TunnelsUsingGroup(deviceID string, groupID int32) (tunnelIDs []string) {
	seen := make(map[string]struct{})
	for _, id := range ci.mapping.ListNames(groupRefIndex, model.GroupRefKey(deviceID, groupID)) {
		if _, duplicate := seen[id]; duplicate {
			continue
		}
		seen[id] = struct{}{}
		tunnelIDs = append(tunnelIDs, id)
	}
	sort.Strings(tunnelIDs)
	return tunnelIDs
}

// ApplyChange updates the mapping with a tunnel changed in the remote
// database. Nil value means the tunnel was removed. The change is not
// persisted. Updates of a tunnel removed by this member are ignored until
// its delete event is applied.
func (ci *ConfigIndex) ApplyChange(tunnelID string, tunnel *model.Tunnel) {
	if tunnel == nil {
		ci.setRemoved(tunnelID, false)
		ci.mapping.Delete(tunnelID)
		return
	}
	if ci.isRemoved(tunnelID) {
		ci.logger.Debugf("Ignoring outdated update of removed tunnel %s", tunnelID)
		return
	}
	ci.replace(tunnelID, proto.Clone(tunnel).(*model.Tunnel))
}

// Resync replaces the content of the mapping with the given tunnels.
// The tunnels are not persisted.
func (ci *ConfigIndex) Resync(tunnels []*model.Tunnel) {
	ci.removedLock.Lock()
	ci.removed = make(map[string]struct{})
	ci.removedLock.Unlock()

	current := make(map[string]struct{})
	for _, tunnel := range tunnels {
		current[tunnel.Id] = struct{}{}
	}
	for _, id := range ci.mapping.ListAllNames() {
		if _, keep := current[id]; !keep {
			ci.mapping.Delete(id)
		}
	}
	for _, tunnel := range tunnels {
		ci.replace(tunnel.Id, proto.Clone(tunnel).(*model.Tunnel))
	}
}

func (ci *ConfigIndex) setRemoved(tunnelID string, removed bool) {
	ci.removedLock.Lock()
	defer ci.removedLock.Unlock()
	if removed {
		ci.removed[tunnelID] = struct{}{}
	} else {
		delete(ci.removed, tunnelID)
	}
}

func (ci *ConfigIndex) isRemoved(tunnelID string) bool {
	ci.removedLock.Lock()
	defer ci.removedLock.Unlock()
	_, removed := ci.removed[tunnelID]
	return removed
}

// replace puts the tunnel into the mapping, dropping secondary indexes
// of the previous value.
func (ci *ConfigIndex) replace(tunnelID string, tunnel *model.Tunnel) {
	if _, exists := ci.mapping.GetValue(tunnelID); exists {
		ci.mapping.Delete(tunnelID)
	}
	ci.mapping.Put(tunnelID, tunnel)
}

// Watch subscribe to monitor changes in ConfigIndex
func (ci *ConfigIndex) Watch(subscriber string, callback func(ChangeEvent)) error {
	return ci.mapping.Watch(subscriber, func(ev idxmap.NamedMappingGenericEvent) {
		if tunnel, ok := ev.Value.(*model.Tunnel); ok {
			callback(ChangeEvent{NamedMappingEvent: ev.NamedMappingEvent, Value: tunnel})
		}
	})
}

// IndexFunction creates secondary indexes. The label stack and
// the referenced groups (as device@group) are indexed.
func IndexFunction(data interface{}) map[string][]string {
	res := map[string][]string{}
	if tunnel, ok := data.(*model.Tunnel); ok && tunnel != nil {
		res[labelStackIndex] = []string{model.LabelStackKey(tunnel.LabelIds)}
		for _, group := range tunnel.Groups {
			res[groupRefIndex] = append(res[groupRefIndex], model.GroupRefKey(group.DeviceId, group.GroupId))
		}
	}
	return res
}

// ToChan creates a callback that can be passed to the Watch function
// in order to receive notifications through a channel. If the notification
// can not be delivered until timeout, it is dropped.
func ToChan(ch chan ChangeEvent) func(dto ChangeEvent) {
	return func(dto ChangeEvent) {
		select {
		case ch <- dto:
		case <-time.After(time.Second):
		}
	}
}
