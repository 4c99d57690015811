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
	"sort"
	"sync"
)

// keyedMutex provides mutual exclusion per string key.
// Entries are dropped once nobody holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// lock acquires locks of all given keys in sorted order and returns function
// releasing them.
func (km *keyedMutex) lock(keys ...string) (unlock func()) {
	keys = sortedUnique(keys)
	held := make([]*keyedLock, 0, len(keys))
	for _, key := range keys {
		l := km.acquire(key)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			km.release(keys[i])
		}
	}
}

func (km *keyedMutex) acquire(key string) *keyedLock {
	km.mu.Lock()
	defer km.mu.Unlock()

	l, exists := km.locks[key]
	if !exists {
		l = &keyedLock{}
		km.locks[key] = l
	}
	l.refs++
	return l
}

func (km *keyedMutex) release(key string) {
	km.mu.Lock()
	defer km.mu.Unlock()

	l := km.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(km.locks, key)
	}
}

// size returns the number of keys currently locked or waited for.
func (km *keyedMutex) size() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}

func sortedUnique(keys []string) []string {
	set := make(map[string]struct{}, len(keys))
	var res []string
	for _, key := range keys {
		if _, duplicate := set[key]; duplicate {
			continue
		}
		set[key] = struct{}{}
		res = append(res, key)
	}
	sort.Strings(res)
	return res
}
