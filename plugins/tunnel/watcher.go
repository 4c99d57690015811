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
	"github.com/ligato/cn-infra/datasync"
	"github.com/pkg/errors"

	"github.com/contiv/srtunnel/plugins/tunnel/model"
)

func tunnelKeyPrefix() string {
	return model.KeyPrefix()
}

// watchEvents applies tunnel changes received from the remote database
// into the store until the plugin is closed.
func (h *TunnelHandler) watchEvents() {
	defer h.wg.Done()

	for {
		select {
		case resyncEv := <-h.resyncChan:
			err := h.applyResync(resyncEv)
			if err != nil {
				h.Log.Error(err)
			}
			resyncEv.Done(err)

		case changeEv := <-h.changeChan:
			err := h.applyChange(changeEv)
			if err != nil {
				h.Log.Error(err)
			}
			changeEv.Done(err)

		case <-h.ctx.Done():
			h.Log.Debug("Stop watching tunnel changes")
			return
		}
	}
}

// applyChange applies tunnel changes into the store.
func (h *TunnelHandler) applyChange(changeEv datasync.ChangeEvent) error {
	for _, change := range changeEv.GetChanges() {
		tunnelID := model.ParseKey(change.GetKey())
		if tunnelID == "" {
			continue
		}
		if change.GetChangeType() == datasync.Delete {
			h.Store.ApplyChange(tunnelID, nil)
			continue
		}
		tunnel := &model.Tunnel{}
		if err := change.GetValue(tunnel); err != nil {
			return errors.Wrapf(err, "failed to decode tunnel %s", tunnelID)
		}
		h.Store.ApplyChange(tunnelID, tunnel)
	}
	return nil
}

// applyResync replaces the content of the store with the tunnels
// from the resync event.
func (h *TunnelHandler) applyResync(resyncEv datasync.ResyncEvent) error {
	var tunnels []*model.Tunnel
	for prefix, it := range resyncEv.GetValues() {
		if prefix != tunnelKeyPrefix() {
			continue
		}
		for {
			kv, stop := it.GetNext()
			if stop {
				break
			}
			tunnelID := model.ParseKey(kv.GetKey())
			if tunnelID == "" {
				continue
			}
			tunnel := &model.Tunnel{}
			if err := kv.GetValue(tunnel); err != nil {
				return errors.Wrapf(err, "failed to decode tunnel %s", tunnelID)
			}
			tunnel.Id = tunnelID
			tunnels = append(tunnels, tunnel)
		}
	}
	h.Store.Resync(tunnels)
	h.Log.Infof("Resynced %d tunnels", len(tunnels))
	return nil
}
