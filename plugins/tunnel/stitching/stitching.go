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

package stitching

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// DefaultRouteLabelLimit is the number of route labels a single push
	// can carry on top of the source segment ID.
	DefaultRouteLabelLimit = 3

	// MinLabelStackSize is the smallest label stack a tunnel can be built from:
	// source SID, next node or adjacency SID and the edge label.
	MinLabelStackSize = 3
)

var (
	// ErrStackTooShort is returned for label stacks with less than MinLabelStackSize labels.
	ErrStackTooShort = errors.Errorf("label stack must contain at least %d labels", MinLabelStackSize)

	// ErrUnresolvedSource is returned when the source SID does not map to any device.
	ErrUnresolvedSource = errors.New("source SID does not resolve to a device")
)

// DeviceResolver maps node segment IDs to device identifiers.
type DeviceResolver interface {
	// GetDeviceID returns ID of the device with the given node SID.
	GetDeviceID(sid uint32) (deviceID string, found bool)
}

// RouteInfo describes one route segment of a tunnel, i.e. the labels pushed
// by a single forwarding group.
type RouteInfo struct {
	// SourceSID is the segment ID of the device that originates the segment.
	SourceSID uint32
	// ForwardingDeviceID is the device which pushes RouteLabels.
	ForwardingDeviceID string
	// RouteLabels are labels of the segment, at most RouteLabelLimit of them.
	RouteLabels []uint32
	// GroupID is the forwarding group assigned to the segment (-1 until allocated).
	GroupID int32
}

// String returns human-readable representation of the route segment.
func (r *RouteInfo) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("<src-SID: %d, fwd-device: %s, labels: %v, group: %d>",
		r.SourceSID, r.ForwardingDeviceID, r.RouteLabels, r.GroupID)
}

// Planner splits label stacks which exceed the hardware push depth into
// a chain of route segments.
type Planner struct {
	// Resolver is used to find the forwarding device of every segment.
	Resolver DeviceResolver
	// RouteLabelLimit is the maximum number of route labels per segment
	// (DefaultRouteLabelLimit if not set).
	RouteLabelLimit int
}

// NewPlanner returns a planner using the given resolver and route label limit.
func NewPlanner(resolver DeviceResolver, routeLabelLimit int) *Planner {
	return &Planner{Resolver: resolver, RouteLabelLimit: routeLabelLimit}
}

// Partition splits the label stack into route segments.
//
// The first label is the SID of the source device and seeds every segment.
// The remaining labels are appended to the current segment which is closed
// once it holds RouteLabelLimit labels. A non-empty trailing segment is
// included even though it is shorter than the limit. The route labels of the
// returned segments, concatenated in order, are equal to labels[1:].
func (p *Planner) Partition(labels []uint32) ([]*RouteInfo, error) {
	if len(labels) < MinLabelStackSize {
		return nil, ErrStackTooShort
	}

	srcSID := labels[0]
	fwdDevice, resolved := p.resolve(srcSID)
	if !resolved {
		return nil, errors.Wrapf(ErrUnresolvedSource, "SID %d", srcSID)
	}

	limit := p.routeLabelLimit()
	var rules []*RouteInfo
	route := newRouteInfo(srcSID, fwdDevice, limit)
	for _, label := range labels[1:] {
		route.RouteLabels = append(route.RouteLabels, label)
		if len(route.RouteLabels) == limit {
			rules = append(rules, route)
			// next segment starts again from the tunnel source, not from
			// the last hop of the previous segment
			route = newRouteInfo(srcSID, fwdDevice, limit)
		}
	}
	if len(route.RouteLabels) > 0 {
		rules = append(rules, route)
	}
	return rules, nil
}

func (p *Planner) resolve(sid uint32) (string, bool) {
	if p.Resolver == nil {
		return "", false
	}
	deviceID, found := p.Resolver.GetDeviceID(sid)
	return deviceID, found && deviceID != ""
}

func (p *Planner) routeLabelLimit() int {
	if p.RouteLabelLimit <= 0 {
		return DefaultRouteLabelLimit
	}
	return p.RouteLabelLimit
}

func newRouteInfo(srcSID uint32, fwdDevice string, limit int) *RouteInfo {
	return &RouteInfo{
		SourceSID:          srcSID,
		ForwardingDeviceID: fwdDevice,
		RouteLabels:        make([]uint32, 0, limit),
		GroupID:            -1,
	}
}
