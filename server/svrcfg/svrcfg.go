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


package svrcfg

import (
	"log/slog"
	"runtime"

	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/job"
	"github.com/zintix-labs/simath/logger"
	"github.com/zintix-labs/simath/server/netsvr"
)

// MaxBatch 單次 /v1/batch 最多可送出的 job 數
const MaxBatch = 1024

// 每個請求允許的子區間數上限。追蹤模式會把每一段留在記憶體並寫進回應，因此上限較低。
const (
	DefaultMaxSegments      = 1 << 20
	DefaultMaxTraceSegments = 1 << 12
)

type SvrCfg struct {
	Log     *slog.Logger
	Addr    string
	Workers int
	Catalog *job.Catalog
	Runner  *job.Runner

	MaxSegments      int // <= 0 時使用 DefaultMaxSegments
	MaxTraceSegments int // <= 0 時使用 DefaultMaxTraceSegments，且不超過 MaxSegments
}

// Valid 補齊預設值並檢查必要依賴。會修改 sc。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.Addr == "" {
		sc.Addr = netsvr.DefaultAddr
	}

	// 1 <= Workers <= NumCPU
	sc.Workers = max(1, sc.Workers)
	sc.Workers = min(runtime.NumCPU(), sc.Workers)

	if sc.MaxSegments <= 0 {
		sc.MaxSegments = DefaultMaxSegments
	}
	if sc.MaxTraceSegments <= 0 {
		sc.MaxTraceSegments = DefaultMaxTraceSegments
	}
	sc.MaxTraceSegments = min(sc.MaxTraceSegments, sc.MaxSegments)

	if sc.Catalog == nil {
		return errs.NewFatal("job catalog is required")
	}
	if sc.Runner == nil {
		sc.Runner = job.NewRunner(nil, sc.Log)
	}
	return nil
}
