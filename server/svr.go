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


package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/server/api"
	"github.com/zintix-labs/simath/server/app"
	"github.com/zintix-labs/simath/server/netsvr"
	"github.com/zintix-labs/simath/server/svrcfg"
)

// Run 組裝並啟動預設的 HTTP 服務，直到收到 SIGINT/SIGTERM。
//
// 所有依賴都由 SvrCfg 注入；Run 不讀檔也不讀環境變數。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// logger 可能本身就不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunWithSvr(ctx, sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但使用呼叫端注入的 NetSvr，並在 ctx 結束時優雅關閉。
// 適合把 routes 掛到既有的 server，或在測試中控制生命週期。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}

	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return errs.Wrap(err, "register routes")
	}

	a := app.NewWith(sCfg.Log, svr)
	sCfg.Log.Info("[simath] listening",
		slog.String("addr", sCfg.Addr),
		slog.Int("jobs", sCfg.Catalog.Len()),
		slog.Int("workers", sCfg.Workers),
	)
	if err := a.RunContext(ctx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
