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

package grouphandler

import (
	"github.com/ligato/cn-infra/db/keyval"
)

// KVDBWithAtomic is the part of the etcd plugin API used by the group allocator.
type KVDBWithAtomic interface {
	OnConnect(callback func() error)
	NewBrokerWithAtomic(keyPrefix string) keyval.BytesBrokerWithAtomic
}

type kvdbAdapter struct {
	db KVDBWithAtomic
}

// NewClusterWideDB returns ClusterWideDB backed by a key-value database
// with atomic operations (etcd).
func NewClusterWideDB(db KVDBWithAtomic) ClusterWideDB {
	return &kvdbAdapter{db: db}
}

func (a *kvdbAdapter) OnConnect(callback func() error) {
	a.db.OnConnect(callback)
}

func (a *kvdbAdapter) NewAtomicBroker(keyPrefix string) AtomicBroker {
	return a.db.NewBrokerWithAtomic(keyPrefix)
}
