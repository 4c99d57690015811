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

// Package tunnel implements the TunnelHandler plugin which turns ordered
// label stacks into segment-routing tunnels.
//
// A label stack [src, next, edge, ...] is realized on the device with node SID
// src. The next label selects the neighbor devices, either directly by their
// node SID or through the egress links bound to an adjacency SID of the source
// device, and the edge label is pushed towards them. The neighbor devices and
// the edge label form a neighbor set which is mapped to a forwarding group
// by the group handler of the device. Stacks longer than the route label
// limit are split into route segments (see package stitching), each realized
// by its own group.
//
// Every group reference of a tunnel carries a removal permission. The tunnel
// that created a group may remove it, but only once no other stored tunnel
// references the group. When the creator is removed first, the permission
// passes to one of the remaining tunnels.
package tunnel
