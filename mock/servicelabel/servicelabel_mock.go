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

package servicelabel

import (
	"github.com/ligato/cn-infra/servicelabel"
)

// MockServiceLabel is a mock implementation of servicelabel.ReaderAPI
// identifying a single member of the cluster.
type MockServiceLabel struct {
	agentLabel string
}

// NewMockServiceLabel is a constructor for MockServiceLabel of the given member.
func NewMockServiceLabel(member string) *MockServiceLabel {
	return &MockServiceLabel{agentLabel: member}
}

// SetAgentLabel changes the label of the member.
func (msl *MockServiceLabel) SetAgentLabel(label string) {
	msl.agentLabel = label
}

// GetAgentLabel returns the label of the member.
func (msl *MockServiceLabel) GetAgentLabel() string {
	return msl.agentLabel
}

// GetAgentPrefix returns the key prefix of the member.
func (msl *MockServiceLabel) GetAgentPrefix() string {
	return servicelabel.GetDifferentAgentPrefix(msl.agentLabel)
}

// GetDifferentAgentPrefix returns the key prefix of another member or of a
// label shared by the cluster.
func (msl *MockServiceLabel) GetDifferentAgentPrefix(microserviceLabel string) string {
	return servicelabel.GetDifferentAgentPrefix(microserviceLabel)
}

// GetAllAgentsPrefix returns the key prefix shared by all agents.
func (msl *MockServiceLabel) GetAllAgentsPrefix() string {
	return servicelabel.GetAllAgentsPrefix()
}
