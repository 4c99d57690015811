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
	"sync"

	"github.com/gogo/protobuf/proto"

	"github.com/contiv/srtunnel/plugins/grouphandler/groupalloc"
)

// deviceGroupHandler allocates groups from the pool of a single device.
type deviceGroupHandler struct {
	sync.Mutex

	alloc    *GroupAllocator
	deviceID string

	pool     *groupalloc.GroupPool
	poolData []byte // pool exactly as last read from / written into the db
	poolMeta *poolMetadata
}

// poolMetadata contains metadata of a pool used for faster group allocation.
type poolMetadata struct {
	reservedIDs  map[int32]bool
	allocatedIDs map[int32]string // group ID to neighbor set key
}

func newDeviceGroupHandler(alloc *GroupAllocator, deviceID string) *deviceGroupHandler {
	return &deviceGroupHandler{alloc: alloc, deviceID: deviceID}
}

// HasNextObjectiveID returns true if a group for the neighbor set exists.
func (h *deviceGroupHandler) HasNextObjectiveID(ns *NeighborSet) bool {
	h.Lock()
	defer h.Unlock()

	if err := h.refreshPool(); err != nil {
		h.alloc.Log.Warnf("Failed to refresh group pool of device %s, using cached data: %v",
			h.deviceID, err)
	}
	if h.pool == nil {
		return false
	}
	_, exists := h.pool.Groups[ns.Key()]
	return exists
}

// GetNextObjectiveID returns ID of the group for the neighbor set, allocating
// a new group ID if needed. Returns -1 on failure.
func (h *deviceGroupHandler) GetNextObjectiveID(ns *NeighborSet) int32 {
	h.Lock()
	defer h.Unlock()

	nsKey := ns.Key()
	var (
		id        int32
		succeeded bool
		err       error
	)
	for i := 0; i < maxPoolUpdateAttempts; i++ {
		// (re-)read the pool, it may have been changed by another member
		if err = h.refreshPool(); err != nil {
			break
		}
		if err = h.initPool(); err != nil {
			break
		}
		id, succeeded, err = h.tryToAllocateID(nsKey)
		if err != nil || succeeded {
			break
		}
	}
	if err == nil && !succeeded {
		err = fmt.Errorf("group allocation on device %s failed in %d attempts",
			h.deviceID, maxPoolUpdateAttempts)
	}
	if err != nil {
		h.alloc.Log.Errorf("Error by allocating group for %v: %v", ns, err)
		return -1
	}

	h.alloc.Log.Debugf("Group for %v on device %s: %d", ns, h.deviceID, id)
	return id
}

// RemoveGroup removes the group with the given ID from the device pool.
// NOOP if the group does not exist.
func (h *deviceGroupHandler) RemoveGroup(groupID int32) bool {
	h.Lock()
	defer h.Unlock()

	var (
		succeeded bool
		err       error
	)
	for i := 0; i < maxPoolUpdateAttempts; i++ {
		if err = h.refreshPool(); err != nil {
			break
		}
		succeeded, err = h.tryToReleaseID(groupID)
		if err != nil || succeeded {
			break
		}
	}
	if err == nil && !succeeded {
		err = fmt.Errorf("group removal on device %s failed in %d attempts",
			h.deviceID, maxPoolUpdateAttempts)
	}
	if err != nil {
		h.alloc.Log.Errorf("Error by removing group %d: %v", groupID, err)
		return false
	}

	h.alloc.Log.Debugf("Removed group %d from device %s", groupID, h.deviceID)
	return true
}

// initPool makes sure that the pool of the device exists in the db.
// If the pool already exists, its range must match the configured one.
func (h *deviceGroupHandler) initPool() error {
	poolRange := h.alloc.poolRange()

	if h.pool == nil {
		pool := &groupalloc.GroupPool{
			DeviceId: h.deviceID,
			Range:    poolRange,
			Groups:   map[string]*groupalloc.GroupPool_Allocation{},
		}
		encodedPool, err := h.alloc.serializer.Marshal(pool)
		if err != nil {
			return err
		}
		db, err := h.alloc.getDBBroker()
		if err != nil {
			return err
		}
		success, err := db.PutIfNotExists(groupalloc.Key(h.deviceID), encodedPool)
		if err != nil {
			return err
		}
		if success {
			h.setPool(pool, encodedPool)
			h.alloc.Log.Debugf("Initialized group pool of device %s: %v", h.deviceID, pool)
			return nil
		}
		// the pool was created by another member in the meantime
		if err = h.refreshPool(); err != nil {
			return err
		}
		if h.pool == nil {
			return fmt.Errorf("group pool of device %s disappeared during initialization", h.deviceID)
		}
	}

	// the pool already exists, check if the specification matches
	if !proto.Equal(h.pool.Range, poolRange) {
		return fmt.Errorf("group pool of device %s already exists with different range: %v",
			h.deviceID, h.pool.Range)
	}
	return nil
}

// refreshPool re-reads the pool from the db.
func (h *deviceGroupHandler) refreshPool() error {
	db, err := h.alloc.getDBBroker()
	if err != nil {
		return err
	}
	data, found, _, err := db.GetValue(groupalloc.Key(h.deviceID))
	if err != nil {
		return err
	}
	if !found {
		h.pool, h.poolData, h.poolMeta = nil, nil, nil
		return nil
	}
	pool := &groupalloc.GroupPool{}
	if err = h.alloc.serializer.Unmarshal(data, pool); err != nil {
		return err
	}
	if pool.Groups == nil {
		pool.Groups = map[string]*groupalloc.GroupPool_Allocation{}
	}
	h.setPool(pool, data)
	return nil
}

// tryToAllocateID attempts to allocate a group ID for the neighbor set.
func (h *deviceGroupHandler) tryToAllocateID(nsKey string) (id int32, succeeded bool, err error) {

	// step 0, try to get already allocated group
	if alloc, exists := h.pool.Groups[nsKey]; exists {
		return alloc.Id, true, nil
	}

	// step 1, find a free group ID
	found := false
	for id = h.pool.Range.MinId; id <= h.pool.Range.MaxId && id >= 0; id++ {
		if h.poolMeta.reservedIDs[id] {
			continue
		}
		if _, used := h.poolMeta.allocatedIDs[id]; !used {
			found = true
			break
		}
	}
	if !found {
		return 0, false, fmt.Errorf("no more groups left on device %s", h.deviceID)
	}

	// step 2, try to write into db (the cached pool is replaced only on success)
	newPool := clonePool(h.pool)
	newPool.Groups[nsKey] = &groupalloc.GroupPool_Allocation{
		Id:    id,
		Owner: h.alloc.ownerLabel(),
	}
	succeeded, err = h.compareAndSwap(newPool)
	return id, succeeded, err
}

// tryToReleaseID attempts to release the given group ID.
func (h *deviceGroupHandler) tryToReleaseID(groupID int32) (succeeded bool, err error) {
	if h.pool == nil {
		// no pool, no group
		return true, nil
	}
	nsKey, exists := h.poolMeta.allocatedIDs[groupID]
	if !exists {
		// already released
		return true, nil
	}

	newPool := clonePool(h.pool)
	delete(newPool.Groups, nsKey)
	return h.compareAndSwap(newPool)
}

// compareAndSwap writes the new pool into the db if the pool was not changed
// since it was last read.
func (h *deviceGroupHandler) compareAndSwap(newPool *groupalloc.GroupPool) (succeeded bool, err error) {
	newData, err := h.alloc.serializer.Marshal(newPool)
	if err != nil {
		return false, err
	}
	db, err := h.alloc.getDBBroker()
	if err != nil {
		return false, err
	}
	succeeded, err = db.CompareAndSwap(groupalloc.Key(h.deviceID), h.poolData, newData)
	if err == nil && succeeded {
		h.setPool(newPool, newData)
	}
	return succeeded, err
}

// clonePool returns a deep copy of the pool with a non-nil map of groups
// (clone and JSON decoding both drop empty maps).
func clonePool(pool *groupalloc.GroupPool) *groupalloc.GroupPool {
	newPool := proto.Clone(pool).(*groupalloc.GroupPool)
	if newPool.Groups == nil {
		newPool.Groups = map[string]*groupalloc.GroupPool_Allocation{}
	}
	return newPool
}

// setPool updates the cached pool together with its metadata.
func (h *deviceGroupHandler) setPool(pool *groupalloc.GroupPool, data []byte) {
	h.pool = pool
	h.poolData = data
	h.poolMeta = buildPoolMetadata(pool)
}

// buildPoolMetadata builds metadata for the provided pool.
func buildPoolMetadata(pool *groupalloc.GroupPool) *poolMetadata {
	meta := &poolMetadata{
		allocatedIDs: map[int32]string{},
		reservedIDs:  map[int32]bool{},
	}
	for _, id := range pool.GetRange().GetReserved() {
		meta.reservedIDs[id] = true
	}
	for nsKey, alloc := range pool.Groups {
		meta.allocatedIDs[alloc.Id] = nsKey
	}
	return meta
}
