// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"encoding/json"
	"net/http"

	v1 "github.com/zintix-labs/simath/server/api/v1"
	"github.com/zintix-labs/simath/server/netsvr"
	"github.com/zintix-labs/simath/server/netsvr/middleware"
	"github.com/zintix-labs/simath/server/svrcfg"
)

// RegisterRoutes 註冊 middleware、主頁與 v1 api。sCfg 需已通過 Valid()。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg)
	registerIndex(svr)
	return registerV1API(svr, sCfg)
}

func registerMiddleware(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	svr.Use(middleware.Compression)
}

// Routes 主頁列出的路由
var Routes = []string{
	"GET /",
	"GET /v1/funcs",
	"GET /v1/jobs",
	"GET /v1/jobs/{name}",
	"GET /v1/sum",
	"POST /v1/sum",
	"POST /v1/batch",
}

func registerIndex(svr netsvr.NetRouter) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "simath",
			"status":  "ok",
			"routes":  Routes,
		})
	})
}

func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/funcs", h.Funcs)
		vOne.Get("/jobs", h.Jobs)
		vOne.Get("/jobs/{name}", h.RunJob)
		vOne.Get("/sum", h.Sum)

		vOne.Post("/sum", h.Sum)
		vOne.Post("/batch", h.Batch)
	})
	return nil
}
