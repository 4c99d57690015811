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
	"errors"
	"testing"

	"github.com/ligato/cn-infra/logging/logrus"
	"github.com/onsi/gomega"

	"github.com/contiv/srtunnel/mock/broker"
	"github.com/contiv/srtunnel/plugins/tunnel/model"
)

func tunnel(id string, labels []uint32, groups ...*model.Tunnel_Group) *model.Tunnel {
	return &model.Tunnel{Id: id, LabelIds: labels, Groups: groups}
}

func group(deviceID string, groupID int32, allowedToRemove bool) *model.Tunnel_Group {
	return &model.Tunnel_Group{DeviceId: deviceID, GroupId: groupID, AllowedToRemove: allowedToRemove}
}

func TestPutGetRemove(t *testing.T) {
	gomega.RegisterTestingT(t)

	idx := NewConfigIndex(logrus.DefaultLogger(), "title", nil)
	gomega.Expect(idx).NotTo(gomega.BeNil())
	gomega.Expect(idx.ListAll()).To(gomega.BeEmpty())

	t1 := tunnel("t1", []uint32{101, 5, 201}, group("dev1", 1, true))
	gomega.Expect(idx.Put(t1)).To(gomega.Succeed())
	gomega.Expect(idx.ContainsKey("t1")).To(gomega.BeTrue())
	gomega.Expect(idx.ContainsKey("t2")).To(gomega.BeFalse())

	stored, found := idx.Get("t1")
	gomega.Expect(found).To(gomega.BeTrue())
	gomega.Expect(stored.LabelIds).To(gomega.Equal(t1.LabelIds))

	// returned values are copies
	stored.LabelIds[0] = 999
	t1.Groups[0].AllowedToRemove = false
	stored, _ = idx.Get("t1")
	gomega.Expect(stored.LabelIds[0]).To(gomega.BeEquivalentTo(101))
	gomega.Expect(stored.Groups[0].AllowedToRemove).To(gomega.BeTrue())

	removed, found, err := idx.Remove("t1")
	gomega.Expect(err).To(gomega.BeNil())
	gomega.Expect(found).To(gomega.BeTrue())
	gomega.Expect(removed.Id).To(gomega.Equal("t1"))
	gomega.Expect(idx.ContainsKey("t1")).To(gomega.BeFalse())

	// removing of non-existing item does nothing
	_, found, err = idx.Remove("t1")
	gomega.Expect(err).To(gomega.BeNil())
	gomega.Expect(found).To(gomega.BeFalse())
}

func TestValueEquality(t *testing.T) {
	gomega.RegisterTestingT(t)

	idx := NewConfigIndex(logrus.DefaultLogger(), "title", nil)
	gomega.Expect(idx.Put(tunnel("t1", []uint32{101, 5, 201}))).To(gomega.Succeed())

	gomega.Expect(idx.ContainsValue(tunnel("other", []uint32{101, 5, 201}))).To(gomega.BeTrue())
	gomega.Expect(idx.ContainsValue(tunnel("other", []uint32{101, 5, 202}))).To(gomega.BeFalse())
	gomega.Expect(idx.ContainsValue(tunnel("other", []uint32{101, 5}))).To(gomega.BeFalse())
	gomega.Expect(idx.LookupLabelStack([]uint32{101, 5, 201})).To(gomega.Equal([]string{"t1"}))
}

func TestGroupReferences(t *testing.T) {
	gomega.RegisterTestingT(t)

	idx := NewConfigIndex(logrus.DefaultLogger(), "title", nil)
	gomega.Expect(idx.Put(tunnel("t2", []uint32{101, 5, 201}, group("dev1", 1, false)))).To(gomega.Succeed())
	gomega.Expect(idx.Put(tunnel("t1", []uint32{101, 5, 201, 6},
		group("dev1", 1, true), group("dev1", 2, true)))).To(gomega.Succeed())
	// the same group referenced twice by one tunnel
	gomega.Expect(idx.Put(tunnel("t3", []uint32{101, 7, 8, 9, 7, 8, 9},
		group("dev1", 3, true), group("dev1", 3, false)))).To(gomega.Succeed())

	gomega.Expect(idx.TunnelsUsingGroup("dev1", 1)).To(gomega.Equal([]string{"t1", "t2"}))
	gomega.Expect(idx.TunnelsUsingGroup("dev1", 2)).To(gomega.Equal([]string{"t1"}))
	gomega.Expect(idx.TunnelsUsingGroup("dev1", 3)).To(gomega.Equal([]string{"t3"}))
	gomega.Expect(idx.TunnelsUsingGroup("dev2", 1)).To(gomega.BeEmpty())

	_, _, err := idx.Remove("t1")
	gomega.Expect(err).To(gomega.BeNil())
	gomega.Expect(idx.TunnelsUsingGroup("dev1", 1)).To(gomega.Equal([]string{"t2"}))
	gomega.Expect(idx.TunnelsUsingGroup("dev1", 2)).To(gomega.BeEmpty())

	values := idx.Values()
	gomega.Expect(values).To(gomega.HaveLen(2))
	gomega.Expect(values[0].Id).To(gomega.Equal("t2"))
	gomega.Expect(values[1].Id).To(gomega.Equal("t3"))
}

func TestPersistingTunnels(t *testing.T) {
	gomega.RegisterTestingT(t)
	broker := broker.NewMockBroker()
	idx := NewConfigIndex(logrus.DefaultLogger(), "title", broker)

	gomega.Expect(idx.Put(tunnel("first", []uint32{1, 2, 3}))).To(gomega.Succeed())
	gomega.Expect(idx.Put(tunnel("second", []uint32{1, 2, 4}))).To(gomega.Succeed())
	gomega.Expect(idx.Put(tunnel("third", []uint32{1, 2, 5}, group("dev1", 7, true)))).To(gomega.Succeed())

	gomega.Expect(broker.Keys()).To(gomega.Equal([]string{
		model.Key("first"), model.Key("second"), model.Key("third")}))

	_, found, err := idx.Remove("second")
	gomega.Expect(err).To(gomega.BeNil())
	gomega.Expect(found).To(gomega.BeTrue())
	gomega.Expect(broker.Keys()).To(gomega.Equal([]string{model.Key("first"), model.Key("third")}))

	// load data by another configIndex instance
	anotherIdx := NewConfigIndex(logrus.DefaultLogger(), "title2", broker)
	gomega.Expect(anotherIdx.ListAll()).To(gomega.ConsistOf("first", "third"))
	gomega.Expect(anotherIdx.ContainsValue(tunnel("x", []uint32{1, 2, 5}))).To(gomega.BeTrue())
	gomega.Expect(anotherIdx.TunnelsUsingGroup("dev1", 7)).To(gomega.Equal([]string{"third"}))
}

func TestBrokerErrors(t *testing.T) {
	gomega.RegisterTestingT(t)
	broker := broker.NewMockBroker()
	idx := NewConfigIndex(logrus.DefaultLogger(), "title", broker)
	gomega.Expect(idx.Put(tunnel("first", []uint32{1, 2, 3}))).To(gomega.Succeed())

	// failed put leaves the cache untouched
	broker.PutErr = errors.New("put failed")
	gomega.Expect(idx.Put(tunnel("second", []uint32{1, 2, 4}))).NotTo(gomega.Succeed())
	gomega.Expect(idx.ContainsKey("second")).To(gomega.BeFalse())

	// failed delete is rolled back
	broker.DeleteErr = errors.New("delete failed")
	_, found, err := idx.Remove("first")
	gomega.Expect(err).NotTo(gomega.BeNil())
	gomega.Expect(found).To(gomega.BeTrue())
	gomega.Expect(idx.ContainsKey("first")).To(gomega.BeTrue())
	gomega.Expect(idx.ContainsValue(tunnel("x", []uint32{1, 2, 3}))).To(gomega.BeTrue())
}

func TestRemoteChanges(t *testing.T) {
	gomega.RegisterTestingT(t)
	broker := broker.NewMockBroker()
	idx := NewConfigIndex(logrus.DefaultLogger(), "title", broker)
	gomega.Expect(idx.Put(tunnel("local", []uint32{1, 2, 3}))).To(gomega.Succeed())

	ch := make(chan ChangeEvent, 10)
	gomega.Expect(idx.Watch("test", ToChan(ch))).To(gomega.Succeed())

	idx.ApplyChange("remote", tunnel("remote", []uint32{4, 5, 6}))
	gomega.Expect(idx.ContainsKey("remote")).To(gomega.BeTrue())
	gomega.Eventually(ch).Should(gomega.Receive())
	// remote changes are not persisted again
	gomega.Expect(broker.Keys()).To(gomega.Equal([]string{model.Key("local")}))

	idx.ApplyChange("remote", nil)
	gomega.Expect(idx.ContainsKey("remote")).To(gomega.BeFalse())

	idx.Resync([]*model.Tunnel{
		tunnel("a", []uint32{7, 8, 9}),
		tunnel("b", []uint32{7, 8, 10}),
	})
	gomega.Expect(idx.ListAll()).To(gomega.ConsistOf("a", "b"))
	gomega.Expect(idx.ContainsValue(tunnel("x", []uint32{1, 2, 3}))).To(gomega.BeFalse())
}

func TestOutdatedChangeOfRemovedTunnel(t *testing.T) {
	gomega.RegisterTestingT(t)
	broker := broker.NewMockBroker()
	idx := NewConfigIndex(logrus.DefaultLogger(), "title", broker)

	gomega.Expect(idx.Put(tunnel("t1", []uint32{1, 2, 3}, group("dev1", 1, true)))).To(gomega.Succeed())
	_, _, err := idx.Remove("t1")
	gomega.Expect(err).To(gomega.BeNil())

	// delayed create event of the removed tunnel
	idx.ApplyChange("t1", tunnel("t1", []uint32{1, 2, 3}, group("dev1", 1, true)))
	gomega.Expect(idx.ContainsKey("t1")).To(gomega.BeFalse())
	gomega.Expect(idx.TunnelsUsingGroup("dev1", 1)).To(gomega.BeEmpty())

	// once the delete event arrives, the ID can be used by others again
	idx.ApplyChange("t1", nil)
	idx.ApplyChange("t1", tunnel("t1", []uint32{1, 2, 4}))
	gomega.Expect(idx.ContainsKey("t1")).To(gomega.BeTrue())

	// local re-creation is applied regardless of pending delete events
	_, _, err = idx.Remove("t1")
	gomega.Expect(err).To(gomega.BeNil())
	gomega.Expect(idx.Put(tunnel("t1", []uint32{1, 2, 5}))).To(gomega.Succeed())
	idx.ApplyChange("t1", tunnel("t1", []uint32{1, 2, 5}))
	gomega.Expect(idx.ContainsValue(tunnel("x", []uint32{1, 2, 5}))).To(gomega.BeTrue())

	// resync is authoritative
	_, _, err = idx.Remove("t1")
	gomega.Expect(err).To(gomega.BeNil())
	idx.Resync(nil)
	idx.ApplyChange("t1", tunnel("t1", []uint32{1, 2, 6}))
	gomega.Expect(idx.ContainsKey("t1")).To(gomega.BeTrue())
}
