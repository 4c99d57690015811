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

package tunnel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/ligato/cn-infra/rpc/rest"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/render"

	"github.com/contiv/srtunnel/plugins/tunnel/restapi"
)

type mockHTTPHandlers struct {
	handlers map[string]rest.HandlerProvider
}

func (m *mockHTTPHandlers) RegisterHTTPHandler(path string, provider rest.HandlerProvider,
	methods ...string) *mux.Route {
	if m.handlers == nil {
		m.handlers = map[string]rest.HandlerProvider{}
	}
	m.handlers[path] = provider
	return nil
}

type mockPrometheus struct {
	registries map[string][]prometheus.Collector
}

func (m *mockPrometheus) NewRegistry(path string, opts promhttp.HandlerOpts) error {
	if m.registries == nil {
		m.registries = map[string][]prometheus.Collector{}
	}
	m.registries[path] = nil
	return nil
}

func (m *mockPrometheus) Register(registryPath string, collector prometheus.Collector) error {
	m.registries[registryPath] = append(m.registries[registryPath], collector)
	return nil
}

func serve(handler rest.HandlerProvider, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(render.New()).ServeHTTP(rec, req)
	return rec
}

func TestRESTHandlers(t *testing.T) {
	RegisterTestingT(t)
	f := newFixture(nil)
	handlers := &mockHTTPHandlers{}
	f.handler.HTTPHandlers = handlers

	Expect(f.handler.AfterInit()).To(Succeed())
	Expect(handlers.handlers).To(HaveKey(restapi.RestURLTunnels))
	Expect(handlers.handlers).To(HaveKey(restapi.RestURLTunnel))

	// empty list is not null
	rec := serve(handlers.handlers[restapi.RestURLTunnels], httptest.NewRequest("GET", restapi.RestURLTunnels, nil))
	Expect(rec.Code).To(Equal(http.StatusOK))
	Expect(rec.Body.String()).To(MatchJSON(`{"tunnels": []}`))

	Expect(f.handler.CreateTunnel(newTunnel("t1", sid1, sid2, 7))).To(Equal(Success))
	Expect(f.handler.CreateTunnel(newTunnel("t2", sid1, sid3, 7))).To(Equal(Success))

	rec = serve(handlers.handlers[restapi.RestURLTunnels], httptest.NewRequest("GET", restapi.RestURLTunnels, nil))
	Expect(rec.Code).To(Equal(http.StatusOK))
	list := restapi.Tunnels{}
	Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
	Expect(list.Tunnels).To(HaveLen(2))
	Expect(list.Tunnels[0].Id).To(Equal("t1"))
	Expect(list.Tunnels[1].LabelIds).To(Equal([]uint32{sid1, sid3, 7}))

	req := mux.SetURLVars(httptest.NewRequest("GET", restapi.RESTPrefix+"sr/tunnels/t2", nil),
		map[string]string{restapi.TunnelIDVar: "t2"})
	rec = serve(handlers.handlers[restapi.RestURLTunnel], req)
	Expect(rec.Code).To(Equal(http.StatusOK))
	Expect(rec.Body.String()).To(ContainSubstring(`"id":"t2"`))

	req = mux.SetURLVars(httptest.NewRequest("GET", restapi.RESTPrefix+"sr/tunnels/t3", nil),
		map[string]string{restapi.TunnelIDVar: "t3"})
	rec = serve(handlers.handlers[restapi.RestURLTunnel], req)
	Expect(rec.Code).To(Equal(http.StatusNotFound))
	errResp := restapi.Error{}
	Expect(json.Unmarshal(rec.Body.Bytes(), &errResp)).To(Succeed())
	Expect(errResp.Error).To(ContainSubstring("t3"))
}

func TestRESTDisabled(t *testing.T) {
	RegisterTestingT(t)
	f := newFixture(nil)
	handlers := &mockHTTPHandlers{}
	f.handler.HTTPHandlers = handlers
	f.handler.config.RESTEnabled = false

	Expect(f.handler.AfterInit()).To(Succeed())
	Expect(handlers.handlers).To(BeEmpty())
}

func TestMetricsRegistration(t *testing.T) {
	RegisterTestingT(t)
	prom := &mockPrometheus{}

	handler := NewPlugin(UseDeps(func(deps *Deps) {
		deps.Cfg = &fakeConfig{}
		deps.Devices = deviceTable()
		deps.Prometheus = prom
	}))
	Expect(handler.Init()).To(Succeed())
	Expect(prom.registries).To(HaveKey(prometheusTunnelsPath))
	Expect(prom.registries[prometheusTunnelsPath]).To(HaveLen(4))
}
