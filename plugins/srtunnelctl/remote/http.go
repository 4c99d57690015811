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


package remote

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ligato/cn-infra/config"
	"github.com/pkg/errors"
)

const (
	defaultPort    = "9191"
	defaultTimeout = 10 * time.Second
)

// HTTPClient reads from the REST API of srtunnel agents.
type HTTPClient struct {
	// Config for this client
	Config *HTTPClientConfig

	http *http.Client
}

// HTTPClientConfig is the configuration of HTTPClient.
type HTTPClientConfig struct {
	// Port on what agents are listening on
	Port string `json:"port"`
	// Basic authorization for client
	BasicAuth string `json:"basic-auth"`
	// If https or http should be used
	UseHTTPS bool `json:"use-https"`
}

// CreateHTTPClient creates client with configuration loaded from the given
// yaml file, or the file from HTTP_CLIENT_CONFIG.
func CreateHTTPClient(configFile string) (*HTTPClient, error) {
	if configFile == "" {
		configFile = os.Getenv("HTTP_CLIENT_CONFIG")
	}

	cfg := &HTTPClientConfig{Port: defaultPort}
	if configFile != "" {
		if err := config.ParseConfigFromYamlFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	return &HTTPClient{
		Config: cfg,
		http: &http.Client{
			Transport: &http.Transport{},
			Timeout:   defaultTimeout,
		},
	}, nil
}

func (client *HTTPClient) createURL(host string, path string) string {
	scheme := "http://"
	if client.Config.UseHTTPS {
		scheme = "https://"
	}
	return scheme + host + ":" + client.Config.Port + "/" + strings.TrimPrefix(path, "/")
}

// Get reads the resource under the path from the given host. Responses
// other than 200 and 404 are returned as errors.
func (client *HTTPClient) Get(host string, path string) (body []byte, status int, err error) {
	req, err := http.NewRequest("GET", client.createURL(host, path), nil)
	if err != nil {
		return nil, 0, err
	}

	if len(client.Config.BasicAuth) > 0 {
		fields := strings.Split(client.Config.BasicAuth, ":")
		if len(fields) != 2 {
			return nil, 0, fmt.Errorf("invalid format of basic auth entry '%v' expected 'user:pass'", client.Config.BasicAuth)
		}
		req.SetBasicAuth(fields[0], fields[1])
	}

	resp, err := client.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err = ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return body, resp.StatusCode, errors.Errorf("GET %s returned %s", path, resp.Status)
	}
	return body, resp.StatusCode, nil
}
