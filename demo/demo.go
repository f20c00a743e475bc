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


package demo

import (
	"log/slog"

	"github.com/zintix-labs/simath/demo/demo_jobs"
	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/fn"
	"github.com/zintix-labs/simath/job"
	"github.com/zintix-labs/simath/server/svrcfg"
)

// New 載入內嵌的 demo jobs
func New() (*job.Catalog, error) {
	return job.Load(demo_jobs.FS)
}

// NewServerConfig 以 demo jobs 與內建函數組出可直接啟動的 SvrCfg（已通過 Valid）。
func NewServerConfig(log *slog.Logger, workers int) (*svrcfg.SvrCfg, error) {
	c, err := New()
	if err != nil {
		return nil, errs.Wrap(err, "load demo jobs")
	}
	sCfg := &svrcfg.SvrCfg{
		Log:     log,
		Workers: workers,
		Catalog: c,
		Runner:  job.NewRunner(fn.Builtin, log),
	}
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	return sCfg, nil
}
