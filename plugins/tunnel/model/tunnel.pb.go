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

// source: tunnel.proto

package model

import (
	"github.com/gogo/protobuf/proto"
)

// Tunnel is the persisted form of a segment-routing tunnel: an ordered label
// stack together with the forwarding group(s) that realize it.
//
// GroupId is used when the whole stack fits into a single push, otherwise
// StitchedGroupIds lists one group per route segment, in segment order.
// Groups holds exactly one entry per group reference (GroupId or each
// StitchedGroupIds item, in the same order) with the device that owns the
// group and the removal permission of this tunnel.
type Tunnel struct {
	Id               string          `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	LabelIds         []uint32        `protobuf:"varint,2,rep,packed,name=label_ids,json=labelIds,proto3" json:"label_ids,omitempty"`
	GroupId          int32           `protobuf:"varint,3,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	StitchedGroupIds []int32         `protobuf:"varint,4,rep,packed,name=stitched_group_ids,json=stitchedGroupIds,proto3" json:"stitched_group_ids,omitempty"`
	Groups           []*Tunnel_Group `protobuf:"bytes,5,rep,name=groups,proto3" json:"groups,omitempty"`
	InUseByPolicy    bool            `protobuf:"varint,6,opt,name=in_use_by_policy,json=inUseByPolicy,proto3" json:"in_use_by_policy,omitempty"`
}

func (m *Tunnel) Reset()         { *m = Tunnel{} }
func (m *Tunnel) String() string { return proto.CompactTextString(m) }
func (*Tunnel) ProtoMessage()    {}

func (m *Tunnel) GetId() string {
	if m != nil {
		return m.Id
	}
	return ""
}

func (m *Tunnel) GetLabelIds() []uint32 {
	if m != nil {
		return m.LabelIds
	}
	return nil
}

func (m *Tunnel) GetGroupId() int32 {
	if m != nil {
		return m.GroupId
	}
	return 0
}

func (m *Tunnel) GetStitchedGroupIds() []int32 {
	if m != nil {
		return m.StitchedGroupIds
	}
	return nil
}

func (m *Tunnel) GetGroups() []*Tunnel_Group {
	if m != nil {
		return m.Groups
	}
	return nil
}

func (m *Tunnel) GetInUseByPolicy() bool {
	if m != nil {
		return m.InUseByPolicy
	}
	return false
}

// Tunnel_Group references a forwarding group used by the tunnel.
type Tunnel_Group struct {
	DeviceId        string `protobuf:"bytes,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	GroupId         int32  `protobuf:"varint,2,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	AllowedToRemove bool   `protobuf:"varint,3,opt,name=allowed_to_remove,json=allowedToRemove,proto3" json:"allowed_to_remove,omitempty"`
}

func (m *Tunnel_Group) Reset()         { *m = Tunnel_Group{} }
func (m *Tunnel_Group) String() string { return proto.CompactTextString(m) }
func (*Tunnel_Group) ProtoMessage()    {}

func (m *Tunnel_Group) GetDeviceId() string {
	if m != nil {
		return m.DeviceId
	}
	return ""
}

func (m *Tunnel_Group) GetGroupId() int32 {
	if m != nil {
		return m.GroupId
	}
	return 0
}

func (m *Tunnel_Group) GetAllowedToRemove() bool {
	if m != nil {
		return m.AllowedToRemove
	}
	return false
}

func init() {
	proto.RegisterType((*Tunnel)(nil), "srtunnel.Tunnel")
	proto.RegisterType((*Tunnel_Group)(nil), "srtunnel.Tunnel.Group")
}
