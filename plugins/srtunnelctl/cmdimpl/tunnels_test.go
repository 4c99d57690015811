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


package cmdimpl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ghodss/yaml"
	. "github.com/onsi/gomega"

	"github.com/contiv/srtunnel/plugins/srtunnelctl/remote"
	"github.com/contiv/srtunnel/plugins/tunnel/model"
	"github.com/contiv/srtunnel/plugins/tunnel/restapi"
)

var tunnels = []*model.Tunnel{
	{
		Id:       "t1",
		LabelIds: []uint32{101, 102, 7},
		GroupId:  1,
		Groups:   []*model.Tunnel_Group{{DeviceId: "of:1", GroupId: 1, AllowedToRemove: true}},
	},
	{
		Id:               "t2",
		LabelIds:         []uint32{101, 102, 7, 103},
		StitchedGroupIds: []int32{1},
		Groups:           []*model.Tunnel_Group{{DeviceId: "of:1", GroupId: 1}},
		InUseByPolicy:    true,
	},
}

func agent() (server *httptest.Server, client *remote.HTTPClient, host string) {
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var data interface{}
		switch req.URL.Path {
		case restapi.RestURLTunnels:
			data = restapi.Tunnels{Tunnels: tunnels}
		case restapi.RestURLTunnels + "/t1":
			data = tunnels[0]
		default:
			w.WriteHeader(http.StatusNotFound)
			data = restapi.Error{Error: "not found"}
		}
		json.NewEncoder(w).Encode(data)
	}))

	u, err := url.Parse(server.URL)
	Expect(err).To(BeNil())
	client, err = remote.CreateHTTPClient("")
	Expect(err).To(BeNil())
	client.Config.Port = u.Port()
	return server, client, u.Hostname()
}

func TestPrintTunnelsTable(t *testing.T) {
	RegisterTestingT(t)
	server, client, host := agent()
	defer server.Close()

	out := &bytes.Buffer{}
	Expect(PrintTunnels(out, client, host, TableOutput)).To(Succeed())

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	Expect(lines).To(HaveLen(3))
	Expect(string(lines[0])).To(MatchRegexp(`^ID\s+LABELS\s+GROUPS\s+IN-USE$`))
	Expect(string(lines[1])).To(MatchRegexp(`^t1\s+101,102,7\s+of:1/1\*\s+false$`))
	Expect(string(lines[2])).To(MatchRegexp(`^t2\s+101,102,7,103\s+of:1/1\s+true$`))
}

func TestPrintTunnelsStructured(t *testing.T) {
	RegisterTestingT(t)
	server, client, host := agent()
	defer server.Close()

	out := &bytes.Buffer{}
	Expect(PrintTunnels(out, client, host, YamlOutput)).To(Succeed())
	fromYaml := restapi.Tunnels{}
	Expect(yaml.Unmarshal(out.Bytes(), &fromYaml)).To(Succeed())
	Expect(fromYaml.Tunnels).To(HaveLen(2))
	Expect(fromYaml.Tunnels[1].StitchedGroupIds).To(Equal([]int32{1}))

	out.Reset()
	Expect(PrintTunnels(out, client, host, JSONOutput)).To(Succeed())
	fromJSON := restapi.Tunnels{}
	Expect(json.Unmarshal(out.Bytes(), &fromJSON)).To(Succeed())
	Expect(fromJSON.Tunnels[0].Id).To(Equal("t1"))

	Expect(PrintTunnels(out, client, host, "xml")).NotTo(Succeed())
}

func TestPrintTunnel(t *testing.T) {
	RegisterTestingT(t)
	server, client, host := agent()
	defer server.Close()

	out := &bytes.Buffer{}
	Expect(PrintTunnel(out, client, host, "t1", YamlOutput)).To(Succeed())
	Expect(out.String()).To(ContainSubstring("id: t1"))

	err := PrintTunnel(out, client, host, "t9", TableOutput)
	Expect(err).To(HaveOccurred())
	Expect(err.Error()).To(ContainSubstring("t9 not found"))
}
