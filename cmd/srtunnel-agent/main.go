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


package main

import (
	"github.com/ligato/cn-infra/agent"
	"github.com/ligato/cn-infra/datasync/kvdbsync"
	"github.com/ligato/cn-infra/datasync/resync"
	"github.com/ligato/cn-infra/db/keyval/etcd"
	"github.com/ligato/cn-infra/health/probe"
	"github.com/ligato/cn-infra/logging/logrus"
	"github.com/ligato/cn-infra/rpc/prometheus"
	"github.com/ligato/cn-infra/rpc/rest"
	"github.com/ligato/cn-infra/servicelabel"

	"github.com/contiv/srtunnel/plugins/grouphandler"
	"github.com/contiv/srtunnel/plugins/srconfig"
	"github.com/contiv/srtunnel/plugins/tunnel"
)

// clusterLabel must match clusterLabel from srtunnel.conf
const clusterLabel = "srtunnel"

// SRTunnelAgent groups the plugins of the agent.
type SRTunnelAgent struct {
	HealthProbe  *probe.Plugin
	Prometheus   *prometheus.Plugin
	DataSyncETCD *kvdbsync.Plugin
	SRConfig     *srconfig.SRConfig
	GroupHandler *grouphandler.GroupAllocator
	Tunnels      *tunnel.TunnelHandler
}

func (a *SRTunnelAgent) String() string {
	return "SRTunnelAgent"
}

// Init does nothing.
func (a *SRTunnelAgent) Init() error {
	return nil
}

// Close does nothing.
func (a *SRTunnelAgent) Close() error {
	return nil
}

func main() {
	// tunnels are watched under the label shared by all members,
	// the agent label of the member identifies its group allocations
	sharedLabel := servicelabel.NewPlugin(servicelabel.UseLabel(clusterLabel))

	etcdDataSync := kvdbsync.NewPlugin(kvdbsync.UseDeps(func(deps *kvdbsync.Deps) {
		deps.KvPlugin = &etcd.DefaultPlugin
		deps.ResyncOrch = &resync.DefaultPlugin
		deps.ServiceLabel = sharedLabel
	}))

	tunnel.DefaultPlugin.RemoteDB = &etcd.DefaultPlugin
	tunnel.DefaultPlugin.Watcher = etcdDataSync
	tunnel.DefaultPlugin.HTTPHandlers = &rest.DefaultPlugin
	tunnel.DefaultPlugin.Prometheus = &prometheus.DefaultPlugin

	srTunnelAgent := &SRTunnelAgent{
		HealthProbe:  &probe.DefaultPlugin,
		Prometheus:   &prometheus.DefaultPlugin,
		DataSyncETCD: etcdDataSync,
		SRConfig:     &srconfig.DefaultPlugin,
		GroupHandler: &grouphandler.DefaultPlugin,
		Tunnels:      &tunnel.DefaultPlugin,
	}

	a := agent.NewAgent(agent.AllPlugins(srTunnelAgent))
	if err := a.Run(); err != nil {
		logrus.DefaultLogger().Fatal(err)
	}
}
