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
	"github.com/contiv/srtunnel/plugins/tunnel/model"
)

// API defines methods provided by the TunnelHandler plugin for use by other
// plugins to manage segment-routing tunnels.
type API interface {
	// CreateTunnel realizes the label stack of the tunnel as forwarding
	// group(s) and stores the tunnel.
	CreateTunnel(tunnel *model.Tunnel) Result

	// RemoveTunnel removes the tunnel together with the groups it owns
	// and no other tunnel uses.
	RemoveTunnel(tunnel *model.Tunnel) Result

	// GetTunnel returns a copy of the tunnel with the given ID.
	GetTunnel(tunnelID string) (tunnel *model.Tunnel, found bool)

	// GetTunnels returns copies of all tunnels ordered by ID.
	GetTunnels() []*model.Tunnel
}

// Result is the outcome of a tunnel operation.
type Result int

const (
	// Success means the operation succeeded.
	Success Result = iota

	// WrongPath means the label stack is not usable for a tunnel.
	WrongPath

	// TunnelExists means a tunnel with the same label stack already exists.
	TunnelExists

	// IDExists means a tunnel with the same ID already exists.
	IDExists

	// TunnelNotFound means there is no tunnel with the given ID.
	TunnelNotFound

	// TunnelInUse means the tunnel is referenced by a policy.
	TunnelInUse

	// InternalError means the operation failed on a collaborator
	// (device resolution, group allocation or store).
	InternalError
)

// String returns the name of the result.
func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case WrongPath:
		return "WRONG_PATH"
	case TunnelExists:
		return "TUNNEL_EXISTS"
	case IDExists:
		return "ID_EXISTS"
	case TunnelNotFound:
		return "TUNNEL_NOT_FOUND"
	case TunnelInUse:
		return "TUNNEL_IN_USE"
	case InternalError:
		return "INTERNAL_ERROR"
	}
	return "UNKNOWN"
}

// Store is the replicated map of tunnels. Duplicate detection through
// ContainsKey / ContainsValue is advisory, the store is only eventually
// consistent across the cluster.
type Store interface {
	// ContainsKey returns true if a tunnel with the given ID exists.
	ContainsKey(tunnelID string) bool

	// ContainsValue returns true if a tunnel with the same label stack exists.
	ContainsValue(tunnel *model.Tunnel) bool

	// Get returns a copy of the tunnel with the given ID.
	Get(tunnelID string) (tunnel *model.Tunnel, found bool)

	// Put stores (a copy of) the tunnel.
	Put(tunnel *model.Tunnel) error

	// Remove removes the tunnel with the given ID.
	Remove(tunnelID string) (tunnel *model.Tunnel, found bool, err error)

	// Values returns copies of all tunnels ordered by ID.
	Values() []*model.Tunnel

	// TunnelsUsingGroup returns sorted IDs of tunnels referencing the group.
	TunnelsUsingGroup(deviceID string, groupID int32) []string

	// ApplyChange applies change made by another member of the cluster.
	ApplyChange(tunnelID string, tunnel *model.Tunnel)

	// Resync replaces the content of the store with the given tunnels.
	Resync(tunnels []*model.Tunnel)
}

// PolicyChecker tells if a tunnel is referenced by a policy.
type PolicyChecker interface {
	// IsTunnelInUse returns true if the tunnel is used by any policy.
	IsTunnelInUse(tunnelID string) bool
}
