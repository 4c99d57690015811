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
	"github.com/gogo/protobuf/proto"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/contiv/srtunnel/plugins/tunnel/model"
	"github.com/contiv/srtunnel/plugins/tunnel/stitching"
)

// CreateTunnel realizes the label stack of the tunnel as forwarding group(s)
// and stores the tunnel.
//
// The label stack is validated first (WrongPath), then the uniqueness of
// the tunnel ID (IDExists) and of the label stack (TunnelExists). A stack of
// exactly MinLabelStackSize labels is realized by a single group recorded
// as GroupId, longer stacks are stitched and recorded as StitchedGroupIds.
// Groups created during a failed attempt are removed again.
func (h *TunnelHandler) CreateTunnel(tunnel *model.Tunnel) (result Result) {
	defer func() {
		h.metrics.observe(createOperation, result)
	}()

	if tunnel == nil || len(tunnel.LabelIds) < stitching.MinLabelStackSize {
		h.Log.Warnf("Invalid label stack of tunnel %v", tunnel)
		return WrongPath
	}

	unlockTunnel := h.tunnelLocks.lock(tunnel.Id)
	defer unlockTunnel()

	if h.Store.ContainsKey(tunnel.Id) {
		h.Log.Warnf("Tunnel with ID %s already exists", tunnel.Id)
		return IDExists
	}
	if h.Store.ContainsValue(tunnel) {
		h.Log.Warnf("Tunnel with label stack %v already exists", tunnel.LabelIds)
		return TunnelExists
	}

	routes, err := h.planner.Partition(tunnel.LabelIds)
	if err == nil && len(routes) == 0 {
		err = errors.New("no route segments")
	}
	if err != nil {
		h.Log.Errorf("Failed to plan tunnel %s: %v", tunnel.Id, err)
		return InternalError
	}

	unlockDevices := h.deviceLocks.lock(routeDevices(routes)...)
	defer unlockDevices()

	// tunnels with the same label stack share the source device,
	// concurrent creation under another ID is detected here
	if h.Store.ContainsValue(tunnel) {
		h.Log.Warnf("Tunnel with label stack %v already exists", tunnel.LabelIds)
		return TunnelExists
	}

	record := newRecord(tunnel)
	if err = h.realizeRoutes(record, routes); err != nil {
		h.Log.Errorf("Failed to create tunnel %s: %v", tunnel.Id, err)
		h.unwindGroups(record)
		return InternalError
	}

	if err = h.Store.Put(record); err != nil {
		h.Log.Errorf("Failed to store tunnel %s: %v", tunnel.Id, err)
		h.unwindGroups(record)
		return InternalError
	}

	h.Log.Infof("Created tunnel %s: %v", tunnel.Id, record)
	return Success
}

// RemoveTunnel removes the tunnel. Groups referenced by the tunnel are
// removed only if no other tunnel references them and this tunnel is allowed
// to remove them. Removal permission of a group still referenced by other
// tunnels is handed over to one of them. On failure the tunnel remains stored
// so that the removal can be retried.
func (h *TunnelHandler) RemoveTunnel(tunnel *model.Tunnel) (result Result) {
	defer func() {
		h.metrics.observe(removeOperation, result)
	}()

	if tunnel == nil {
		return TunnelNotFound
	}

	unlockTunnel := h.tunnelLocks.lock(tunnel.Id)
	defer unlockTunnel()

	record, found := h.Store.Get(tunnel.Id)
	if !found {
		h.Log.Warnf("Tunnel %s not found", tunnel.Id)
		return TunnelNotFound
	}
	if record.InUseByPolicy || (h.Policies != nil && h.Policies.IsTunnelInUse(record.Id)) {
		h.Log.Warnf("Tunnel %s is used by a policy", record.Id)
		return TunnelInUse
	}

	unlockDevices := h.deviceLocks.lock(groupDevices(record)...)
	defer unlockDevices()

	// removal permissions may have been handed over meanwhile
	if record, found = h.Store.Get(tunnel.Id); !found {
		return TunnelNotFound
	}

	plan := h.planRemoval(record)
	if err := h.executeRemoval(plan); err != nil {
		h.Log.Errorf("Failed to remove tunnel %s: %v", record.Id, err)
		return InternalError
	}
	if _, _, err := h.Store.Remove(record.Id); err != nil {
		h.Log.Errorf("Failed to remove tunnel %s from the store: %v", record.Id, err)
		return InternalError
	}

	h.Log.Infof("Removed tunnel %s", record.Id)
	return Success
}

// GetTunnel returns a copy of the tunnel with the given ID.
func (h *TunnelHandler) GetTunnel(tunnelID string) (tunnel *model.Tunnel, found bool) {
	return h.Store.Get(tunnelID)
}

// GetTunnels returns copies of all tunnels ordered by ID.
func (h *TunnelHandler) GetTunnels() []*model.Tunnel {
	return h.Store.Values()
}

// newRecord returns copy of the tunnel without any group references.
func newRecord(tunnel *model.Tunnel) *model.Tunnel {
	record := proto.Clone(tunnel).(*model.Tunnel)
	record.GroupId = 0
	record.StitchedGroupIds = nil
	record.Groups = nil
	return record
}

// realizeRoutes obtains a group for every route segment and records it
// in the tunnel.
func (h *TunnelHandler) realizeRoutes(record *model.Tunnel, routes []*stitching.RouteInfo) error {
	singleGroup := len(record.LabelIds) == stitching.MinLabelStackSize
	if singleGroup && len(routes) != 1 {
		return errors.Errorf("label stack %v split into %d route segments, expected a single group",
			record.LabelIds, len(routes))
	}
	for i, route := range routes {
		group, err := h.realizeRoute(route)
		if err != nil {
			return errors.Wrapf(err, "route segment #%d %v", i, route)
		}
		route.GroupID = group.GroupId
		record.Groups = append(record.Groups, group)
	}

	if singleGroup {
		record.GroupId = routes[0].GroupID
		return nil
	}
	for _, route := range routes {
		record.StitchedGroupIds = append(record.StitchedGroupIds, route.GroupID)
	}
	return nil
}

// unwindGroups removes groups created for the tunnel during a failed
// creation attempt.
func (h *TunnelHandler) unwindGroups(record *model.Tunnel) {
	var result error
	for _, ref := range uniqueGroups(record) {
		if !ref.allowedToRemove {
			continue
		}
		if holders := h.Store.TunnelsUsingGroup(ref.deviceID, ref.groupID); len(holders) > 0 {
			h.Log.Warnf("Group %d on device %s created for tunnel %s is used by %v, not removing",
				ref.groupID, ref.deviceID, record.Id, holders)
			continue
		}
		if err := h.removeGroup(ref); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		h.metrics.groupUnwinds.Inc()
	}
	if result != nil {
		h.Log.Errorf("Failed to remove groups of tunnel %s: %v", record.Id, result)
	}
}

// executeRemoval removes groups which are not used anymore and hands over
// removal permissions of groups still in use.
func (h *TunnelHandler) executeRemoval(plan *removalPlan) error {
	var result error
	for _, ref := range plan.remove {
		if err := h.removeGroup(ref); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		h.metrics.groupsRemoved.Inc()
	}
	if result != nil {
		return result
	}

	for _, handover := range plan.handovers {
		if err := h.handOver(handover); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// handOver grants removal permission of the group to another tunnel.
func (h *TunnelHandler) handOver(handover groupHandover) error {
	holder, found := h.Store.Get(handover.tunnelID)
	if !found {
		return errors.Errorf("tunnel %s taking over group %d on device %s not found",
			handover.tunnelID, handover.group.groupID, handover.group.deviceID)
	}
	for _, group := range holder.Groups {
		if group.DeviceId == handover.group.deviceID && group.GroupId == handover.group.groupID {
			group.AllowedToRemove = true
			break
		}
	}
	if err := h.Store.Put(holder); err != nil {
		return errors.Wrapf(err, "failed to hand over group %d on device %s to tunnel %s",
			handover.group.groupID, handover.group.deviceID, holder.Id)
	}
	h.Log.Debugf("Removal of group %d on device %s handed over to tunnel %s",
		handover.group.groupID, handover.group.deviceID, holder.Id)
	return nil
}
