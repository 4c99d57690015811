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
	"github.com/contiv/srtunnel/plugins/grouphandler"
	"github.com/contiv/srtunnel/plugins/srconfig"
)

// DefaultPlugin is a default instance of TunnelHandler.
var DefaultPlugin = *NewPlugin()

// NewPlugin creates a new Plugin with the provided Options.
func NewPlugin(opts ...Option) *TunnelHandler {
	p := &TunnelHandler{}

	p.PluginName = "srtunnel"
	p.Devices = &srconfig.DefaultPlugin
	p.Links = &srconfig.DefaultPlugin
	p.GroupHandlers = &grouphandler.DefaultPlugin

	for _, o := range opts {
		o(p)
	}

	p.PluginDeps.Setup()

	return p
}

// Option is a function that can be used in NewPlugin to customize Plugin.
type Option func(*TunnelHandler)

// UseDeps returns Option that can inject custom dependencies.
func UseDeps(f func(*Deps)) Option {
	return func(p *TunnelHandler) {
		f(&p.Deps)
	}
}
