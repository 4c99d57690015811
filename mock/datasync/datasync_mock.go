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


package datasync

import (
	"context"
	"sort"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/ligato/cn-infra/datasync"
)

// MockDataSync keeps an in-memory key-value store and generates datasync
// change and resync events for every modification.
type MockDataSync struct {
	records  map[string]*record
	anyError error
}

type record struct {
	value    proto.Message
	revision int64
}

// NewMockDataSync returns an empty data store.
func NewMockDataSync() *MockDataSync {
	return &MockDataSync{records: make(map[string]*record)}
}

// Put stores the value and returns the corresponding change event.
// Nil value removes the key.
func (mds *MockDataSync) Put(key string, value proto.Message) datasync.ChangeEvent {
	if value == nil {
		return mds.Delete(key)
	}
	ch := &change{op: datasync.Put, kv: keyVal{key: key, value: value}}
	if prev, exists := mds.records[key]; exists {
		ch.prevValue = prev.value
		ch.kv.revision = prev.revision + 1
	}
	mds.records[key] = &record{value: value, revision: ch.kv.revision}
	return &changeEvent{mds: mds, changes: []*change{ch}}
}

// Delete removes the key and returns the corresponding change event.
func (mds *MockDataSync) Delete(key string) datasync.ChangeEvent {
	ch := &change{op: datasync.Delete, kv: keyVal{key: key}}
	if prev, exists := mds.records[key]; exists {
		ch.prevValue = prev.value
		ch.kv.revision = prev.revision + 1
		delete(mds.records, key)
	}
	return &changeEvent{mds: mds, changes: []*change{ch}}
}

// Batch joins changes of the given events into one event, the way
// a transaction is delivered.
func (mds *MockDataSync) Batch(events ...datasync.ChangeEvent) datasync.ChangeEvent {
	batch := &changeEvent{mds: mds}
	for _, event := range events {
		if ev, ok := event.(*changeEvent); ok {
			batch.changes = append(batch.changes, ev.changes...)
		}
	}
	return batch
}

// Resync returns a resync event with a snapshot of keys under the given prefixes.
func (mds *MockDataSync) Resync(keyPrefixes ...string) datasync.ResyncEvent {
	values := make(map[string]datasync.KeyValIterator)
	for _, prefix := range keyPrefixes {
		it := &kvIterator{}
		for key, rec := range mds.records {
			if strings.HasPrefix(key, prefix) {
				it.kvs = append(it.kvs, &keyVal{key: key, value: proto.Clone(rec.value), revision: rec.revision})
			}
		}
		if len(it.kvs) > 0 {
			sort.Slice(it.kvs, func(i, j int) bool { return it.kvs[i].key < it.kvs[j].key })
			values[prefix] = it
		}
	}
	return &resyncEvent{mds: mds, values: values}
}

// AnyError returns the last error any event was finalized with.
func (mds *MockDataSync) AnyError() error {
	return mds.anyError
}

func (mds *MockDataSync) done(err error) {
	if err != nil {
		mds.anyError = err
	}
}

type keyVal struct {
	key      string
	value    proto.Message
	revision int64
}

func (kv *keyVal) GetKey() string {
	return kv.key
}

func (kv *keyVal) GetRevision() int64 {
	return kv.revision
}

func (kv *keyVal) GetValue(value proto.Message) error {
	return copyMessage(kv.value, value)
}

type change struct {
	op        datasync.Op
	kv        keyVal
	prevValue proto.Message
}

func (c *change) GetKey() string {
	return c.kv.key
}

func (c *change) GetRevision() int64 {
	return c.kv.revision
}

func (c *change) GetValue(value proto.Message) error {
	return c.kv.GetValue(value)
}

func (c *change) GetChangeType() datasync.Op {
	return c.op
}

func (c *change) GetPrevValue(prevValue proto.Message) (prevValueExist bool, err error) {
	if c.prevValue == nil {
		return false, nil
	}
	return true, copyMessage(c.prevValue, prevValue)
}

type changeEvent struct {
	mds     *MockDataSync
	changes []*change
}

func (ev *changeEvent) GetChanges() (changes []datasync.ProtoWatchResp) {
	for _, c := range ev.changes {
		changes = append(changes, c)
	}
	return changes
}

func (ev *changeEvent) GetContext() context.Context {
	return context.Background()
}

func (ev *changeEvent) Done(err error) {
	ev.mds.done(err)
}

type resyncEvent struct {
	mds    *MockDataSync
	values map[string]datasync.KeyValIterator
}

func (ev *resyncEvent) GetValues() map[string]datasync.KeyValIterator {
	return ev.values
}

func (ev *resyncEvent) GetContext() context.Context {
	return context.Background()
}

func (ev *resyncEvent) Done(err error) {
	ev.mds.done(err)
}

type kvIterator struct {
	kvs    []*keyVal
	cursor int
}

func (it *kvIterator) GetNext() (kv datasync.KeyVal, allReceived bool) {
	if it.cursor >= len(it.kvs) {
		return nil, true
	}
	kv = it.kvs[it.cursor]
	it.cursor++
	return kv, false
}

// copyMessage decodes a copy of the stored message into the given one,
// as values are delivered by the data store.
func copyMessage(from, to proto.Message) error {
	if from == nil {
		return nil
	}
	data, err := proto.Marshal(from)
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, to)
}
