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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/unrolled/render"

	"github.com/contiv/srtunnel/plugins/tunnel/model"
	"github.com/contiv/srtunnel/plugins/tunnel/restapi"
)

func (h *TunnelHandler) registerRESTHandlers() {
	if h.HTTPHandlers == nil {
		h.Log.Warnf("No http handler provided, skipping registration of tunnel REST handlers")
		return
	}

	h.HTTPHandlers.RegisterHTTPHandler(restapi.RestURLTunnels, h.tunnelsGetHandler, "GET")
	h.Log.Infof("Tunnel REST handler registered: GET %v", restapi.RestURLTunnels)
	h.HTTPHandlers.RegisterHTTPHandler(restapi.RestURLTunnel, h.tunnelGetHandler, "GET")
	h.Log.Infof("Tunnel REST handler registered: GET %v", restapi.RestURLTunnel)
}

func (h *TunnelHandler) tunnelsGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		h.Log.Debug("Getting tunnels")

		tunnels := restapi.Tunnels{Tunnels: h.GetTunnels()}
		if tunnels.Tunnels == nil {
			tunnels.Tunnels = []*model.Tunnel{}
		}
		formatter.JSON(w, http.StatusOK, tunnels)
	}
}

func (h *TunnelHandler) tunnelGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		tunnelID := mux.Vars(req)[restapi.TunnelIDVar]
		h.Log.Debugf("Getting tunnel %s", tunnelID)

		tunnel, found := h.GetTunnel(tunnelID)
		if !found {
			formatter.JSON(w, http.StatusNotFound, restapi.Error{Error: "tunnel " + tunnelID + " not found"})
			return
		}
		formatter.JSON(w, http.StatusOK, tunnel)
	}
}
