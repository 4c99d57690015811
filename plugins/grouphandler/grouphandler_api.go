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
	"fmt"
	"sort"
	"strings"
)

// NoEdgeLabel is used as the edge label of neighbor sets created for
// route segments that carry only a single label.
const NoEdgeLabel int32 = -1

// API defines methods provided by the GroupAllocator plugin for use by other
// plugins to obtain the group handler of a device.
type API interface {
	// GetGroupHandler returns the group handler of the given device.
	// Returns found=false if no handler is available for the device.
	GetGroupHandler(deviceID string) (handler GroupHandler, found bool)
}

// GroupHandler allocates forwarding groups (next objectives) on a single device.
// Calls for identical neighbor sets always return the same group.
type GroupHandler interface {
	// HasNextObjectiveID returns true if a group for the neighbor set
	// already exists on the device.
	HasNextObjectiveID(ns *NeighborSet) bool

	// GetNextObjectiveID returns ID of the group for the given neighbor set,
	// creating the group if it does not exist yet. Negative value is returned
	// when the group could not be created.
	GetNextObjectiveID(ns *NeighborSet) int32

	// RemoveGroup deletes the group with the given ID from the device.
	// Removing a group that does not exist succeeds.
	RemoveGroup(groupID int32) bool
}

// NeighborSet identifies a forwarding group by the set of next-hop devices
// and the label pushed towards them.
type NeighborSet struct {
	DeviceIDs []string
	EdgeLabel int32
}

// NewNeighborSet returns neighbor set with sorted and de-duplicated
// device IDs.
func NewNeighborSet(deviceIDs []string, edgeLabel int32) *NeighborSet {
	ns := &NeighborSet{EdgeLabel: edgeLabel}
	seen := make(map[string]struct{})
	for _, deviceID := range deviceIDs {
		if _, duplicate := seen[deviceID]; duplicate {
			continue
		}
		seen[deviceID] = struct{}{}
		ns.DeviceIDs = append(ns.DeviceIDs, deviceID)
	}
	sort.Strings(ns.DeviceIDs)
	return ns
}

// Key returns string which uniquely identifies the neighbor set.
func (ns *NeighborSet) Key() string {
	return fmt.Sprintf("%s|%d", strings.Join(ns.DeviceIDs, ","), ns.EdgeLabel)
}

// String returns human-readable representation of the neighbor set.
func (ns *NeighborSet) String() string {
	if ns.EdgeLabel == NoEdgeLabel {
		return fmt.Sprintf("<devices: %v, edge-label: none>", ns.DeviceIDs)
	}
	return fmt.Sprintf("<devices: %v, edge-label: %d>", ns.DeviceIDs, ns.EdgeLabel)
}

// AtomicBroker is the subset of a key-value broker with atomic operations
// used to persist group pools.
type AtomicBroker interface {
	GetValue(key string) (data []byte, found bool, revision int64, err error)
	PutIfNotExists(key string, data []byte) (succeeded bool, err error)
	CompareAndSwap(key string, prevData []byte, newData []byte) (succeeded bool, err error)
}

// ClusterWideDB defines API that a DB client must provide for the group
// allocator to share group pools between members of the cluster.
type ClusterWideDB interface {
	// OnConnect registers callback executed once the DB is connected.
	OnConnect(callback func() error)

	// NewAtomicBroker returns broker with atomic operations for the prefix.
	NewAtomicBroker(keyPrefix string) AtomicBroker
}
