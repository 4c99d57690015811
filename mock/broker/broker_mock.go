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

package broker

import (
	"sort"
	"strings"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
)

// MockBroker is an in-memory proto broker.
// Errors set in PutErr / DeleteErr are returned by the next operations
// of that kind instead of touching the data.
type MockBroker struct {
	sync.Mutex

	Data map[string]proto.Message

	PutErr    error
	DeleteErr error
	PutCount  int
}

// NewMockBroker returns an empty broker.
func NewMockBroker() *MockBroker {
	return &MockBroker{Data: map[string]proto.Message{}}
}

// Keys returns sorted keys of all stored values.
func (mb *MockBroker) Keys() []string {
	mb.Lock()
	defer mb.Unlock()

	var res []string
	for k := range mb.Data {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Put stores a copy of the value.
func (mb *MockBroker) Put(key string, data proto.Message, opts ...datasync.PutOption) error {
	mb.Lock()
	defer mb.Unlock()

	if mb.PutErr != nil {
		return mb.PutErr
	}
	if mb.Data == nil {
		mb.Data = map[string]proto.Message{}
	}
	mb.Data[key] = proto.Clone(data)
	mb.PutCount++
	return nil
}

// Delete removes the value under the key.
func (mb *MockBroker) Delete(key string, opts ...datasync.DelOption) (found bool, err error) {
	mb.Lock()
	defer mb.Unlock()

	if mb.DeleteErr != nil {
		return false, mb.DeleteErr
	}
	_, found = mb.Data[key]
	delete(mb.Data, key)
	return found, nil
}

// GetValue reads the value under the key into val.
func (mb *MockBroker) GetValue(key string, val proto.Message) (found bool, rev int64, err error) {
	mb.Lock()
	defer mb.Unlock()

	data, found := mb.Data[key]
	if !found {
		return false, 0, nil
	}
	return true, 0, copyValue(data, val)
}

// ListValues returns iterator over all values with the given key prefix.
func (mb *MockBroker) ListValues(key string) (keyval.ProtoKeyValIterator, error) {
	mb.Lock()
	defer mb.Unlock()

	var match []*mockKv
	for k, v := range mb.Data {
		if strings.HasPrefix(k, key) {
			match = append(match, &mockKv{key: k, val: v})
		}
	}
	sort.Slice(match, func(i, j int) bool {
		return match[i].key < match[j].key
	})
	return &mockIt{match: match}, nil
}

type mockIt struct {
	match []*mockKv
	index int
}

func (mi *mockIt) GetNext() (kv keyval.ProtoKeyVal, stop bool) {
	if mi.index >= len(mi.match) {
		return nil, true
	}
	kv = mi.match[mi.index]
	mi.index++
	return kv, false
}

func (mi *mockIt) Close() error {
	return nil
}

type mockKv struct {
	key string
	val proto.Message
}

func (mk *mockKv) GetValue(val proto.Message) error {
	return copyValue(mk.val, val)
}

func (mk *mockKv) GetPrevValue(val proto.Message) (exists bool, err error) {
	return false, nil
}

func (mk *mockKv) GetKey() string {
	return mk.key
}

func (mk *mockKv) GetRevision() int64 {
	return 0
}

func copyValue(from, to proto.Message) error {
	tmp, err := proto.Marshal(from)
	if err != nil {
		return err
	}
	return proto.Unmarshal(tmp, to)
}
