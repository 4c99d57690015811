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
	"bytes"
	"sync"
)

// MockAtomicBroker is an in-memory bytes broker with atomic operations.
type MockAtomicBroker struct {
	sync.Mutex

	Data map[string][]byte

	// Err is returned by every operation when set.
	Err error
	// CASConflicts is the number of following CompareAndSwap calls which
	// fail as if the value was changed by somebody else.
	CASConflicts int
	// CASCount counts all CompareAndSwap calls.
	CASCount int
}

// NewMockAtomicBroker returns an empty broker.
func NewMockAtomicBroker() *MockAtomicBroker {
	return &MockAtomicBroker{Data: map[string][]byte{}}
}

// GetValue returns data stored under the key.
func (mb *MockAtomicBroker) GetValue(key string) (data []byte, found bool, revision int64, err error) {
	mb.Lock()
	defer mb.Unlock()

	if mb.Err != nil {
		return nil, false, 0, mb.Err
	}
	data, found = mb.Data[key]
	return data, found, 0, nil
}

// PutIfNotExists stores data only if the key is not used yet.
func (mb *MockAtomicBroker) PutIfNotExists(key string, data []byte) (succeeded bool, err error) {
	mb.Lock()
	defer mb.Unlock()

	if mb.Err != nil {
		return false, mb.Err
	}
	if _, exists := mb.Data[key]; exists {
		return false, nil
	}
	mb.data()[key] = data
	return true, nil
}

// CompareAndSwap replaces data under the key only if it equals prevData.
func (mb *MockAtomicBroker) CompareAndSwap(key string, prevData []byte, newData []byte) (succeeded bool, err error) {
	mb.Lock()
	defer mb.Unlock()

	mb.CASCount++
	if mb.Err != nil {
		return false, mb.Err
	}
	if mb.CASConflicts > 0 {
		mb.CASConflicts--
		return false, nil
	}
	if current, exists := mb.Data[key]; !exists || !bytes.Equal(current, prevData) {
		return false, nil
	}
	mb.data()[key] = newData
	return true, nil
}

func (mb *MockAtomicBroker) data() map[string][]byte {
	if mb.Data == nil {
		mb.Data = map[string][]byte{}
	}
	return mb.Data
}
