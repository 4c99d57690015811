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


package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contiv/srtunnel/plugins/srtunnelctl/cmdimpl"
	"github.com/contiv/srtunnel/plugins/srtunnelctl/remote"
)

var (
	host       string
	configFile string
	output     string
)

var cmdTunnels = &cobra.Command{
	Use:   "tunnels [tunnel-id]",
	Short: "Shows tunnels of the agent, or a single tunnel",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.CreateHTTPClient(configFile)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return cmdimpl.PrintTunnel(os.Stdout, client, host, args[0], output)
		}
		return cmdimpl.PrintTunnels(os.Stdout, client, host, output)
	},
}

// Execute runs the root command.
func Execute() {
	var rootCmd = &cobra.Command{Use: "srtunnelctl", SilenceUsage: true}
	rootCmd.PersistentFlags().StringVar(&host, "host", "localhost", "host of the srtunnel agent")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "http client configuration file")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", cmdimpl.TableOutput,
		"output format: table, yaml or json")
	rootCmd.AddCommand(cmdTunnels)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
