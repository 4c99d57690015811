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

package tunnelidx

import (
	"github.com/contiv/srtunnel/plugins/tunnel/model"
)

func (ci *ConfigIndex) loadPersistedTunnels() error {
	if ci.broker == nil {
		ci.logger.Info("No broker specified, tunnels will not be loaded from persisted storage")
		return nil
	}
	it, err := ci.broker.ListValues(model.KeyPrefix())
	if err != nil {
		return err
	}
	defer it.Close()

	cnt := 0
	for {
		item := &model.Tunnel{}
		kv, stop := it.GetNext()
		if stop {
			break
		}
		err = kv.GetValue(item)
		if err != nil {
			return err
		}
		if item.Id == "" {
			item.Id = model.ParseKey(kv.GetKey())
		}
		cnt++
		ci.mapping.Put(item.Id, item)
	}
	ci.logger.Infof("%v persisted tunnels were loaded", cnt)
	return nil
}

func (ci *ConfigIndex) persistTunnel(data *model.Tunnel) error {
	if ci.broker == nil {
		ci.logger.Debug("No broker specified, tunnel will not be persisted")
		return nil
	}
	return ci.broker.Put(model.Key(data.Id), data)
}

func (ci *ConfigIndex) removePersistedTunnel(id string) error {
	if ci.broker == nil {
		ci.logger.Debug("No broker specified, removed tunnel will not be persisted")
		return nil
	}
	_, err := ci.broker.Delete(model.Key(id))
	return err
}
