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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/contiv/srtunnel/plugins/srtunnelctl/remote"
	"github.com/contiv/srtunnel/plugins/tunnel/model"
	"github.com/contiv/srtunnel/plugins/tunnel/restapi"
)

// Output formats.
const (
	TableOutput = "table"
	YamlOutput  = "yaml"
	JSONOutput  = "json"
)

// PrintTunnels prints all tunnels known to the agent on the host.
func PrintTunnels(w io.Writer, client *remote.HTTPClient, host string, format string) error {
	body, _, err := client.Get(host, restapi.RestURLTunnels)
	if err != nil {
		return err
	}
	tunnels := restapi.Tunnels{}
	if err = json.Unmarshal(body, &tunnels); err != nil {
		return errors.Wrap(err, "failed to decode tunnels")
	}

	switch format {
	case TableOutput:
		printTable(w, tunnels.Tunnels)
		return nil
	default:
		return printStructured(w, tunnels, format)
	}
}

// PrintTunnel prints the tunnel with the given ID.
func PrintTunnel(w io.Writer, client *remote.HTTPClient, host string, tunnelID string, format string) error {
	body, status, err := client.Get(host, restapi.RestURLTunnels+"/"+tunnelID)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return errors.Errorf("tunnel %s not found", tunnelID)
	}
	tunnel := &model.Tunnel{}
	if err = json.Unmarshal(body, tunnel); err != nil {
		return errors.Wrap(err, "failed to decode tunnel")
	}

	switch format {
	case TableOutput:
		printTable(w, []*model.Tunnel{tunnel})
		return nil
	default:
		return printStructured(w, tunnel, format)
	}
}

func printTable(out io.Writer, tunnels []*model.Tunnel) {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tLABELS\tGROUPS\tIN-USE\n")
	for _, tunnel := range tunnels {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", tunnel.Id, formatLabels(tunnel.LabelIds),
			formatGroups(tunnel.Groups), tunnel.InUseByPolicy)
	}
	w.Flush()
}

func printStructured(w io.Writer, data interface{}, format string) (err error) {
	var out []byte
	switch format {
	case YamlOutput:
		out, err = yaml.Marshal(data)
	case JSONOutput:
		out, err = json.MarshalIndent(data, "", "  ")
		out = append(out, '\n')
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func formatLabels(labels []uint32) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = fmt.Sprint(label)
	}
	return strings.Join(parts, ",")
}

// formatGroups prints groups as device/id, groups the tunnel may remove
// are marked with *.
func formatGroups(groups []*model.Tunnel_Group) string {
	parts := make([]string, len(groups))
	for i, group := range groups {
		parts[i] = fmt.Sprintf("%s/%d", group.DeviceId, group.GroupId)
		if group.AllowedToRemove {
			parts[i] += "*"
		}
	}
	return strings.Join(parts, ",")
}
