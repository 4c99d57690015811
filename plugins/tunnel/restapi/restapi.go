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

package restapi

import (
	"github.com/contiv/srtunnel/plugins/tunnel/model"
)

const (
	// RESTPrefix is versioned prefix for REST urls.
	RESTPrefix = "/contiv/v1/"

	// RestURLTunnels is versioned URL for the tunnel list REST endpoint.
	RestURLTunnels = RESTPrefix + "sr/tunnels"

	// TunnelIDVar is the name of the URL variable with the tunnel ID.
	TunnelIDVar = "id"

	// RestURLTunnel is versioned URL for the single tunnel REST endpoint.
	RestURLTunnel = RestURLTunnels + "/{" + TunnelIDVar + "}"
)

// Tunnels is the response of the tunnel list endpoint.
type Tunnels struct {
	Tunnels []*model.Tunnel `json:"tunnels"`
}

// Error is the response sent when a request could not be served.
type Error struct {
	Error string `json:"error"`
}
