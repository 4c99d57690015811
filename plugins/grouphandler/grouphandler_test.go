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

package grouphandler_test

import (
	"testing"

	_ "github.com/ligato/cn-infra/logging/logrus"
	. "github.com/onsi/gomega"

	"github.com/contiv/srtunnel/mock/broker"
	mockgh "github.com/contiv/srtunnel/mock/grouphandler"
	"github.com/contiv/srtunnel/mock/servicelabel"
	"github.com/contiv/srtunnel/plugins/grouphandler"
	"github.com/contiv/srtunnel/plugins/grouphandler/groupalloc"
	"github.com/contiv/srtunnel/plugins/srconfig"
)

const (
	dev1 = "of:0000000000000001"
	dev2 = "of:0000000000000002"
	dev3 = "of:0000000000000003"
)

type fakeConfig struct {
	config *grouphandler.Config
}

func (c *fakeConfig) LoadValue(value interface{}) (found bool, err error) {
	if c.config == nil {
		return false, nil
	}
	*value.(*grouphandler.Config) = *c.config
	return true, nil
}

func (c *fakeConfig) GetConfigName() string {
	return "grouphandler.conf"
}

func devices() srconfig.API {
	table, err := srconfig.NewDeviceTable(&srconfig.Config{
		Devices: []*srconfig.Device{
			{ID: dev1, NodeSID: 101},
			{ID: dev2, NodeSID: 102},
			{ID: dev3, NodeSID: 103},
		},
	})
	Expect(err).To(BeNil())
	return table
}

func newAllocator(db grouphandler.ClusterWideDB, member string, config *grouphandler.Config) *grouphandler.GroupAllocator {
	serviceLabel := servicelabel.NewMockServiceLabel(member)

	allocator := grouphandler.NewPlugin(grouphandler.UseDeps(func(deps *grouphandler.Deps) {
		deps.Cfg = &fakeConfig{config: config}
		deps.ServiceLabel = serviceLabel
		deps.Devices = devices()
		deps.RemoteDB = db
	}))
	Expect(allocator.Init()).To(Succeed())
	return allocator
}

func handler(allocator *grouphandler.GroupAllocator, deviceID string) grouphandler.GroupHandler {
	h, found := allocator.GetGroupHandler(deviceID)
	Expect(found).To(BeTrue())
	return h
}

func TestNeighborSet(t *testing.T) {
	RegisterTestingT(t)

	ns1 := grouphandler.NewNeighborSet([]string{dev2, dev1, dev2}, 5)
	Expect(ns1.DeviceIDs).To(Equal([]string{dev1, dev2}))

	ns2 := grouphandler.NewNeighborSet([]string{dev1, dev2}, 5)
	Expect(ns2.Key()).To(Equal(ns1.Key()))

	ns3 := grouphandler.NewNeighborSet([]string{dev1, dev2}, grouphandler.NoEdgeLabel)
	Expect(ns3.Key()).ToNot(Equal(ns1.Key()))
	Expect(ns3.String()).To(ContainSubstring("none"))
}

func TestAllocationIsIdempotent(t *testing.T) {
	RegisterTestingT(t)

	db := mockgh.NewMockClusterDB(broker.NewMockAtomicBroker())
	allocator := newAllocator(db, "member1", nil)
	h := handler(allocator, dev1)

	ns := grouphandler.NewNeighborSet([]string{dev2}, 5)
	Expect(h.HasNextObjectiveID(ns)).To(BeFalse())

	id := h.GetNextObjectiveID(ns)
	Expect(id).To(BeEquivalentTo(1))
	Expect(h.HasNextObjectiveID(ns)).To(BeTrue())
	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 5))).To(Equal(id))

	// different edge label or neighbors means a different group
	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 6))).To(BeEquivalentTo(2))
	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2, dev3}, 5))).To(BeEquivalentTo(3))

	// pools of different devices are independent
	Expect(handler(allocator, dev2).GetNextObjectiveID(ns)).To(BeEquivalentTo(1))

	Expect(db.Broker.Data).To(HaveKey(groupalloc.Key(dev1)))
	Expect(db.Broker.Data).To(HaveKey(groupalloc.Key(dev2)))
	Expect(db.Prefixes).ToNot(BeEmpty())
	Expect(db.Prefixes[0]).To(HaveSuffix(grouphandler.DefaultClusterLabel + "/"))
}

func TestUnknownDevice(t *testing.T) {
	RegisterTestingT(t)

	allocator := newAllocator(mockgh.NewMockClusterDB(broker.NewMockAtomicBroker()), "member1", nil)
	_, found := allocator.GetGroupHandler("of:unknown")
	Expect(found).To(BeFalse())
}

func TestPoolSharedByMembers(t *testing.T) {
	RegisterTestingT(t)

	sharedBroker := broker.NewMockAtomicBroker()
	member1 := handler(newAllocator(mockgh.NewMockClusterDB(sharedBroker), "member1", nil), dev1)
	member2 := handler(newAllocator(mockgh.NewMockClusterDB(sharedBroker), "member2", nil), dev1)

	ns1 := grouphandler.NewNeighborSet([]string{dev2}, 5)
	ns2 := grouphandler.NewNeighborSet([]string{dev3}, 5)

	Expect(member1.GetNextObjectiveID(ns1)).To(BeEquivalentTo(1))
	Expect(member2.HasNextObjectiveID(ns1)).To(BeTrue())
	Expect(member2.GetNextObjectiveID(ns1)).To(BeEquivalentTo(1))

	// member1 has a stale pool cached, the allocation must not collide
	Expect(member2.GetNextObjectiveID(ns2)).To(BeEquivalentTo(2))
	Expect(member1.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2, dev3}, 5))).
		To(BeEquivalentTo(3))

	// removal by one member is visible to the other one
	Expect(member2.RemoveGroup(1)).To(BeTrue())
	Expect(member1.HasNextObjectiveID(ns1)).To(BeFalse())
}

func TestReservedAndExhaustedRange(t *testing.T) {
	RegisterTestingT(t)

	config := &grouphandler.Config{
		ClusterLabel:     "srtunnel",
		MinGroupID:       10,
		MaxGroupID:       12,
		ReservedGroupIDs: []int32{10, 11},
	}
	h := handler(newAllocator(mockgh.NewMockClusterDB(broker.NewMockAtomicBroker()), "member1", config), dev1)

	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 1))).To(BeEquivalentTo(12))
	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 2))).To(BeNumerically("<", 0))

	// released ID is available again
	Expect(h.RemoveGroup(12)).To(BeTrue())
	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 2))).To(BeEquivalentTo(12))
}

func TestAllocationAfterLastGroupReleased(t *testing.T) {
	RegisterTestingT(t)

	sharedBroker := broker.NewMockAtomicBroker()
	member1 := handler(newAllocator(mockgh.NewMockClusterDB(sharedBroker), "member1", nil), dev1)

	ns := grouphandler.NewNeighborSet([]string{dev2}, 5)
	id := member1.GetNextObjectiveID(ns)
	Expect(id).To(BeEquivalentTo(1))
	Expect(member1.RemoveGroup(id)).To(BeTrue())
	Expect(member1.GetNextObjectiveID(ns)).To(BeEquivalentTo(1))
	Expect(member1.RemoveGroup(id)).To(BeTrue())

	// pool without any group loaded from the database by another member
	member2 := handler(newAllocator(mockgh.NewMockClusterDB(sharedBroker), "member2", nil), dev1)
	Expect(member2.HasNextObjectiveID(ns)).To(BeFalse())
	Expect(member2.GetNextObjectiveID(ns)).To(BeEquivalentTo(1))
	Expect(member1.HasNextObjectiveID(ns)).To(BeTrue())
}

func TestRemoveGroupIsIdempotent(t *testing.T) {
	RegisterTestingT(t)

	db := mockgh.NewMockClusterDB(broker.NewMockAtomicBroker())
	h := handler(newAllocator(db, "member1", nil), dev1)

	// no pool yet
	Expect(h.RemoveGroup(1)).To(BeTrue())

	ns := grouphandler.NewNeighborSet([]string{dev2}, 5)
	id := h.GetNextObjectiveID(ns)
	Expect(h.RemoveGroup(id)).To(BeTrue())
	Expect(h.HasNextObjectiveID(ns)).To(BeFalse())

	casCount := db.Broker.CASCount
	Expect(h.RemoveGroup(id)).To(BeTrue())
	Expect(h.RemoveGroup(42)).To(BeTrue())
	Expect(db.Broker.CASCount).To(Equal(casCount))
}

func TestConcurrentUpdatesAreRetried(t *testing.T) {
	RegisterTestingT(t)

	db := mockgh.NewMockClusterDB(broker.NewMockAtomicBroker())
	h := handler(newAllocator(db, "member1", nil), dev1)

	db.Broker.CASConflicts = 3
	id := h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 5))
	Expect(id).To(BeEquivalentTo(1))
	Expect(db.Broker.CASCount).To(Equal(4))

	db.Broker.CASConflicts = 100
	Expect(h.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev3}, 5))).To(BeNumerically("<", 0))
	Expect(h.RemoveGroup(id)).To(BeFalse())

	db.Broker.CASConflicts = 0
	Expect(h.RemoveGroup(id)).To(BeTrue())
}

func TestDisconnectedDB(t *testing.T) {
	RegisterTestingT(t)

	db := mockgh.NewMockClusterDB(broker.NewMockAtomicBroker())
	db.Disconnected = true
	h := handler(newAllocator(db, "member1", nil), dev1)

	ns := grouphandler.NewNeighborSet([]string{dev2}, 5)
	Expect(h.GetNextObjectiveID(ns)).To(BeNumerically("<", 0))
	Expect(h.HasNextObjectiveID(ns)).To(BeFalse())
	Expect(h.RemoveGroup(1)).To(BeFalse())

	db.Disconnected = false
	Expect(h.GetNextObjectiveID(ns)).To(BeEquivalentTo(1))
}

func TestRangeMismatch(t *testing.T) {
	RegisterTestingT(t)

	sharedBroker := broker.NewMockAtomicBroker()
	member1 := handler(newAllocator(mockgh.NewMockClusterDB(sharedBroker), "member1", nil), dev1)
	Expect(member1.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev2}, 5))).To(BeEquivalentTo(1))

	config := grouphandler.DefaultConfig()
	config.MaxGroupID = 100
	member2 := handler(newAllocator(mockgh.NewMockClusterDB(sharedBroker), "member2", config), dev1)
	Expect(member2.GetNextObjectiveID(grouphandler.NewNeighborSet([]string{dev3}, 5))).To(BeNumerically("<", 0))
}

func TestInvalidConfig(t *testing.T) {
	RegisterTestingT(t)

	config := grouphandler.DefaultConfig()
	Expect(config.Validate()).To(Succeed())

	config.MinGroupID = 10
	config.MaxGroupID = 5
	Expect(config.Validate()).ToNot(Succeed())

	allocator := grouphandler.NewPlugin(grouphandler.UseDeps(func(deps *grouphandler.Deps) {
		deps.Cfg = &fakeConfig{config: config}
		deps.Devices = devices()
	}))
	Expect(allocator.Init()).ToNot(Succeed())
}
