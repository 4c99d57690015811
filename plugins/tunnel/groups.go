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
	"github.com/pkg/errors"

	"github.com/contiv/srtunnel/plugins/grouphandler"
	"github.com/contiv/srtunnel/plugins/tunnel/model"
	"github.com/contiv/srtunnel/plugins/tunnel/stitching"
)

// groupRef identifies a group referenced by a tunnel.
type groupRef struct {
	deviceID        string
	groupID         int32
	allowedToRemove bool
}

// removalPlan lists what needs to be done with groups of a removed tunnel.
type removalPlan struct {
	remove    []groupRef
	handovers []groupHandover
}

// groupHandover passes removal permission of a group to another tunnel.
type groupHandover struct {
	group    groupRef
	tunnelID string
}

// realizeRoute obtains the group pushing the labels of the route segment.
// The first route label selects the target devices, either over the links
// bound to an adjacency SID or as the device with the given node SID.
// The second route label (if any) is the edge label of the neighbor set.
func (h *TunnelHandler) realizeRoute(route *stitching.RouteInfo) (*model.Tunnel_Group, error) {
	deviceID := route.ForwardingDeviceID
	handler, found := h.GroupHandlers.GetGroupHandler(deviceID)
	if !found {
		return nil, errors.Errorf("no group handler for device %s", deviceID)
	}

	ns, err := h.neighborSet(deviceID, route.RouteLabels)
	if err != nil {
		return nil, err
	}

	// group which already exists is shared and must not be removed with this tunnel
	exists := handler.HasNextObjectiveID(ns)
	groupID := handler.GetNextObjectiveID(ns)
	if groupID < 0 {
		return nil, errors.Errorf("failed to obtain group for %v on device %s", ns, deviceID)
	}

	h.Log.Debugf("Group %d on device %s for %v (new: %t)", groupID, deviceID, ns, !exists)
	return &model.Tunnel_Group{
		DeviceId:        deviceID,
		GroupId:         groupID,
		AllowedToRemove: !exists,
	}, nil
}

// neighborSet builds the neighbor set for route labels pushed by the given device.
func (h *TunnelHandler) neighborSet(deviceID string, routeLabels []uint32) (*grouphandler.NeighborSet, error) {
	if len(routeLabels) == 0 {
		return nil, errors.New("empty route segment")
	}
	next := routeLabels[0]

	var targets []string
	if h.Devices.IsAdjacencySID(deviceID, next) {
		ports := make(map[uint32]struct{})
		for _, port := range h.Devices.GetPortsForAdjacencySID(deviceID, next) {
			ports[port] = struct{}{}
		}
		for _, link := range h.Links.GetDeviceEgressLinks(deviceID) {
			if _, bound := ports[link.SrcPort]; bound {
				targets = append(targets, link.DstDevice)
			}
		}
		if len(targets) == 0 {
			return nil, errors.Errorf("no egress link of device %s is bound to adjacency SID %d",
				deviceID, next)
		}
	} else {
		target, found := h.Devices.GetDeviceID(next)
		if !found {
			return nil, errors.Errorf("label %d does not resolve to a device", next)
		}
		targets = []string{target}
	}

	edgeLabel := grouphandler.NoEdgeLabel
	if len(routeLabels) > 1 {
		edgeLabel = int32(routeLabels[1])
	}
	return grouphandler.NewNeighborSet(targets, edgeLabel), nil
}

// planRemoval decides what happens with every group referenced by the tunnel.
// The reference count of a group is the number of stored tunnels referencing it.
func (h *TunnelHandler) planRemoval(record *model.Tunnel) *removalPlan {
	plan := &removalPlan{}
	for _, ref := range uniqueGroups(record) {
		var holders []string
		for _, tunnelID := range h.Store.TunnelsUsingGroup(ref.deviceID, ref.groupID) {
			if tunnelID != record.Id {
				holders = append(holders, tunnelID)
			}
		}
		switch {
		case len(holders) == 0 && ref.allowedToRemove:
			plan.remove = append(plan.remove, ref)
		case len(holders) > 0 && ref.allowedToRemove:
			// holders are sorted, the choice is deterministic
			plan.handovers = append(plan.handovers, groupHandover{group: ref, tunnelID: holders[0]})
		}
	}
	return plan
}

// removeGroup removes the group from its device.
func (h *TunnelHandler) removeGroup(ref groupRef) error {
	handler, found := h.GroupHandlers.GetGroupHandler(ref.deviceID)
	if !found {
		return errors.Errorf("no group handler for device %s", ref.deviceID)
	}
	if !handler.RemoveGroup(ref.groupID) {
		return errors.Errorf("failed to remove group %d from device %s", ref.groupID, ref.deviceID)
	}
	h.Log.Debugf("Removed group %d from device %s", ref.groupID, ref.deviceID)
	return nil
}

// uniqueGroups returns groups referenced by the tunnel in order of their first
// reference. A group is removable if any of its references allows removal.
func uniqueGroups(record *model.Tunnel) (refs []groupRef) {
	index := make(map[string]int)
	for _, group := range record.Groups {
		key := model.GroupRefKey(group.DeviceId, group.GroupId)
		if i, seen := index[key]; seen {
			refs[i].allowedToRemove = refs[i].allowedToRemove || group.AllowedToRemove
			continue
		}
		index[key] = len(refs)
		refs = append(refs, groupRef{
			deviceID:        group.DeviceId,
			groupID:         group.GroupId,
			allowedToRemove: group.AllowedToRemove,
		})
	}
	return refs
}

// routeDevices returns forwarding devices of the route segments.
func routeDevices(routes []*stitching.RouteInfo) (devices []string) {
	for _, route := range routes {
		devices = append(devices, route.ForwardingDeviceID)
	}
	return devices
}

// groupDevices returns devices of all groups referenced by the tunnel.
func groupDevices(record *model.Tunnel) (devices []string) {
	for _, group := range record.Groups {
		devices = append(devices, group.DeviceId)
	}
	return devices
}
