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

//go:generate protoc -I ./model --gogo_out=plugins=grpc:./model ./model/tunnel.proto

import (
	"context"
	"sync"

	"github.com/gorilla/mux"
	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/rpc/rest"
	"github.com/ligato/cn-infra/servicelabel"
	"github.com/ligato/cn-infra/utils/safeclose"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contiv/srtunnel/plugins/grouphandler"
	"github.com/contiv/srtunnel/plugins/srconfig"
	"github.com/contiv/srtunnel/plugins/tunnel/stitching"
	"github.com/contiv/srtunnel/plugins/tunnel/tunnelidx"
)

// TunnelHandler plugin realizes segment-routing tunnels as forwarding groups
// allocated on the label-switching devices. Label stacks longer than
// the route label limit are stitched from multiple route segments.
// Groups shared with other tunnels are never removed together with a tunnel,
// the last tunnel referencing a group created by a tunnel removes it.
type TunnelHandler struct {
	Deps

	config  *Config
	planner *stitching.Planner
	metrics *metrics

	tunnelLocks *keyedMutex // per tunnel ID
	deviceLocks *keyedMutex // per device ID

	resyncChan chan datasync.ResyncEvent
	changeChan chan datasync.ChangeEvent

	watchReg datasync.WatchRegistration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Deps lists dependencies of the TunnelHandler plugin.
type Deps struct {
	infra.PluginDeps

	Devices       srconfig.DeviceConfig
	Links         srconfig.LinkService
	GroupHandlers grouphandler.API

	// Store is created on top of RemoteDB if not injected.
	Store    Store
	RemoteDB KVStore

	Watcher      datasync.KeyValProtoWatcher /* optional, tunnels changed by other members */
	HTTPHandlers HTTPHandlers                /* optional, read-only REST API */
	Prometheus   MetricsRegistry             /* optional */
	Policies     PolicyChecker               /* optional */
}

// KVStore provides broker for persisting tunnels.
type KVStore interface {
	NewBroker(keyPrefix string) keyval.ProtoBroker
}

// HTTPHandlers is the subset of the REST plugin API used to expose tunnels.
type HTTPHandlers interface {
	RegisterHTTPHandler(path string, provider rest.HandlerProvider, methods ...string) *mux.Route
}

// Init loads the configuration and prepares the tunnel store.
func (h *TunnelHandler) Init() error {
	h.config = DefaultConfig()
	if h.Cfg != nil {
		if _, err := h.Cfg.LoadValue(h.config); err != nil {
			return err
		}
	}
	if err := h.config.Validate(); err != nil {
		return err
	}
	h.Log.Infof("Tunnel handler configuration: %+v", *h.config)

	h.planner = stitching.NewPlanner(h.Devices, h.config.RouteLabelLimit)
	h.tunnelLocks = newKeyedMutex()
	h.deviceLocks = newKeyedMutex()

	if h.Store == nil {
		var broker tunnelidx.Broker
		if h.RemoteDB != nil {
			broker = h.RemoteDB.NewBroker(servicelabel.GetDifferentAgentPrefix(h.config.ClusterLabel))
		} else {
			h.Log.Warn("No remote DB provided, tunnels will be kept only in memory")
		}
		h.Store = tunnelidx.NewConfigIndex(h.Log, "srtunnel-tunnels", broker)
	}

	h.metrics = newMetrics(func() float64 {
		return float64(len(h.Store.Values()))
	})
	if h.Prometheus != nil {
		err := h.Prometheus.NewRegistry(prometheusTunnelsPath,
			promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError, ErrorLog: h.Log})
		if err != nil {
			return err
		}
		for _, collector := range h.metrics.collectors() {
			if err = h.Prometheus.Register(prometheusTunnelsPath, collector); err != nil {
				h.Log.Errorf("failed to register tunnel metric: %v", err)
				return err
			}
		}
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())
	return nil
}

// AfterInit subscribes for changes of tunnels made by other members
// and registers REST handlers.
func (h *TunnelHandler) AfterInit() (err error) {
	if h.config.RESTEnabled {
		h.registerRESTHandlers()
	}

	if h.Watcher == nil {
		h.Log.Warn("No watcher provided, tunnels of other members will not be visible")
		return nil
	}
	h.resyncChan = make(chan datasync.ResyncEvent)
	h.changeChan = make(chan datasync.ChangeEvent)

	h.wg.Add(1)
	go h.watchEvents()

	h.watchReg, err = h.Watcher.Watch(string(h.PluginName), h.changeChan, h.resyncChan, tunnelKeyPrefix())
	return err
}

// Close stops watching.
func (h *TunnelHandler) Close() error {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
	if h.watchReg != nil {
		safeclose.CloseAll(h.watchReg, h.resyncChan, h.changeChan)
	}
	return nil
}
