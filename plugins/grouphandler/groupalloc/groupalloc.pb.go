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

// source: groupalloc.proto

package groupalloc

import (
	"github.com/gogo/protobuf/proto"
)

// GroupPool holds forwarding groups allocated on a single device.
// Groups maps neighbor set key to the allocated group.
type GroupPool struct {
	DeviceId string                           `protobuf:"bytes,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Range    *GroupPool_Range                 `protobuf:"bytes,2,opt,name=range,proto3" json:"range,omitempty"`
	Groups   map[string]*GroupPool_Allocation `protobuf:"bytes,3,rep,name=groups,proto3" json:"groups,omitempty" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"bytes,2,opt,name=value,proto3"`
}

func (m *GroupPool) Reset()         { *m = GroupPool{} }
func (m *GroupPool) String() string { return proto.CompactTextString(m) }
func (*GroupPool) ProtoMessage()    {}

func (m *GroupPool) GetDeviceId() string {
	if m != nil {
		return m.DeviceId
	}
	return ""
}

func (m *GroupPool) GetRange() *GroupPool_Range {
	if m != nil {
		return m.Range
	}
	return nil
}

func (m *GroupPool) GetGroups() map[string]*GroupPool_Allocation {
	if m != nil {
		return m.Groups
	}
	return nil
}

// GroupPool_Range is the range of group IDs available on the device.
type GroupPool_Range struct {
	MinId    int32   `protobuf:"varint,1,opt,name=min_id,json=minId,proto3" json:"min_id,omitempty"`
	MaxId    int32   `protobuf:"varint,2,opt,name=max_id,json=maxId,proto3" json:"max_id,omitempty"`
	Reserved []int32 `protobuf:"varint,3,rep,packed,name=reserved,proto3" json:"reserved,omitempty"`
}

func (m *GroupPool_Range) Reset()         { *m = GroupPool_Range{} }
func (m *GroupPool_Range) String() string { return proto.CompactTextString(m) }
func (*GroupPool_Range) ProtoMessage()    {}

func (m *GroupPool_Range) GetMinId() int32 {
	if m != nil {
		return m.MinId
	}
	return 0
}

func (m *GroupPool_Range) GetMaxId() int32 {
	if m != nil {
		return m.MaxId
	}
	return 0
}

func (m *GroupPool_Range) GetReserved() []int32 {
	if m != nil {
		return m.Reserved
	}
	return nil
}

// GroupPool_Allocation is a single allocated group.
type GroupPool_Allocation struct {
	Id    int32  `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Owner string `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
}

func (m *GroupPool_Allocation) Reset()         { *m = GroupPool_Allocation{} }
func (m *GroupPool_Allocation) String() string { return proto.CompactTextString(m) }
func (*GroupPool_Allocation) ProtoMessage()    {}

func (m *GroupPool_Allocation) GetId() int32 {
	if m != nil {
		return m.Id
	}
	return 0
}

func (m *GroupPool_Allocation) GetOwner() string {
	if m != nil {
		return m.Owner
	}
	return ""
}

func init() {
	proto.RegisterType((*GroupPool)(nil), "groupalloc.GroupPool")
	proto.RegisterMapType((map[string]*GroupPool_Allocation)(nil), "groupalloc.GroupPool.GroupsEntry")
	proto.RegisterType((*GroupPool_Range)(nil), "groupalloc.GroupPool.Range")
	proto.RegisterType((*GroupPool_Allocation)(nil), "groupalloc.GroupPool.Allocation")
}
