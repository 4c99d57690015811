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
	"sort"
	"sync"

	"github.com/contiv/srtunnel/mock/broker"
	"github.com/contiv/srtunnel/plugins/grouphandler"
)

// MockClusterDB is a mock for the remote database used by the group allocator.
type MockClusterDB struct {
	Broker       *broker.MockAtomicBroker
	Disconnected bool
	Prefixes     []string
}

// NewMockClusterDB returns connected database backed by the given broker.
func NewMockClusterDB(b *broker.MockAtomicBroker) *MockClusterDB {
	return &MockClusterDB{Broker: b}
}

// OnConnect executes the callback immediately unless the DB is disconnected.
func (db *MockClusterDB) OnConnect(callback func() error) {
	if !db.Disconnected {
		callback()
	}
}

// NewAtomicBroker returns the underlying broker.
func (db *MockClusterDB) NewAtomicBroker(keyPrefix string) grouphandler.AtomicBroker {
	db.Prefixes = append(db.Prefixes, keyPrefix)
	return db.Broker
}

// MockGroupHandlers is a mock for the group allocator with in-memory
// per-device group handlers.
type MockGroupHandlers struct {
	Handlers map[string]*MockGroupHandler
}

// NewMockGroupHandlers creates group handlers for the given devices.
func NewMockGroupHandlers(deviceIDs ...string) *MockGroupHandlers {
	mgh := &MockGroupHandlers{Handlers: map[string]*MockGroupHandler{}}
	for _, deviceID := range deviceIDs {
		mgh.Handlers[deviceID] = NewMockGroupHandler(deviceID)
	}
	return mgh
}

// GetGroupHandler returns handler of the given device.
func (mgh *MockGroupHandlers) GetGroupHandler(deviceID string) (handler grouphandler.GroupHandler, found bool) {
	h, found := mgh.Handlers[deviceID]
	if !found {
		return nil, false
	}
	return h, true
}

// GroupCount returns the number of groups existing on all devices.
func (mgh *MockGroupHandlers) GroupCount() (count int) {
	for _, h := range mgh.Handlers {
		count += len(h.GroupIDs())
	}
	return count
}

// MockGroupHandler is an in-memory group handler of a single device.
type MockGroupHandler struct {
	sync.Mutex

	DeviceID string

	// FailAllocation makes GetNextObjectiveID fail for matching neighbor sets.
	FailAllocation func(ns *grouphandler.NeighborSet) bool
	// FailRemoval makes RemoveGroup fail.
	FailRemoval bool

	// RemoveCalls counts calls of RemoveGroup per group ID.
	RemoveCalls map[int32]int

	groups map[string]int32 // neighbor set key -> group ID
	sets   map[int32]*grouphandler.NeighborSet
	nextID int32
}

// NewMockGroupHandler returns handler without any groups.
func NewMockGroupHandler(deviceID string) *MockGroupHandler {
	return &MockGroupHandler{
		DeviceID:    deviceID,
		RemoveCalls: map[int32]int{},
		groups:      map[string]int32{},
		sets:        map[int32]*grouphandler.NeighborSet{},
		nextID:      1,
	}
}

// HasNextObjectiveID returns true if a group for the neighbor set exists.
func (h *MockGroupHandler) HasNextObjectiveID(ns *grouphandler.NeighborSet) bool {
	h.Lock()
	defer h.Unlock()

	_, exists := h.groups[ns.Key()]
	return exists
}

// GetNextObjectiveID returns existing group ID or allocates a new one.
func (h *MockGroupHandler) GetNextObjectiveID(ns *grouphandler.NeighborSet) int32 {
	h.Lock()
	defer h.Unlock()

	if id, exists := h.groups[ns.Key()]; exists {
		return id
	}
	if h.FailAllocation != nil && h.FailAllocation(ns) {
		return -1
	}
	id := h.nextID
	h.nextID++
	h.groups[ns.Key()] = id
	h.sets[id] = ns
	return id
}

// RemoveGroup removes the group, succeeds also for unknown groups.
func (h *MockGroupHandler) RemoveGroup(groupID int32) bool {
	h.Lock()
	defer h.Unlock()

	h.RemoveCalls[groupID]++
	if h.FailRemoval {
		return false
	}
	if ns, exists := h.sets[groupID]; exists {
		delete(h.groups, ns.Key())
		delete(h.sets, groupID)
	}
	return true
}

// GroupIDs returns sorted IDs of existing groups.
func (h *MockGroupHandler) GroupIDs() (ids []int32) {
	h.Lock()
	defer h.Unlock()

	for id := range h.sets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasGroup returns true if the group with the given ID exists.
func (h *MockGroupHandler) HasGroup(groupID int32) bool {
	h.Lock()
	defer h.Unlock()

	_, exists := h.sets[groupID]
	return exists
}

// NeighborSet returns neighbor set of the given group.
func (h *MockGroupHandler) NeighborSet(groupID int32) *grouphandler.NeighborSet {
	h.Lock()
	defer h.Unlock()

	return h.sets[groupID]
}
