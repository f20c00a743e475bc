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


package job

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/fn"
	"github.com/zintix-labs/simath/riemann"
)

// Result 單一 job 的執行結果。Err 不為 nil 時 Res 無意義。
type Result struct {
	Spec   Spec
	Source riemann.Source
	Res    riemann.Result
	Err    error
	Used   time.Duration
}

// Runner 把 Spec 變成 riemann 計算。本身不持有可變狀態，可併發使用。
type Runner struct {
	reg *fn.Registry
	log *slog.Logger
}

// NewRunner reg 為 nil 時使用 fn.Builtin；log 為 nil 時不寫 log。
func NewRunner(reg *fn.Registry, log *slog.Logger) *Runner {
	if reg == nil {
		reg = fn.Builtin
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{reg: reg, log: log}
}

// Registry 回傳 Runner 使用的函數註冊表
func (r *Runner) Registry() *fn.Registry {
	return r.reg
}

// Run 執行單一 job。opts 會原樣傳給 riemann.Compute（例如注入 tracer）。
func (r *Runner) Run(ctx context.Context, s Spec, opts ...riemann.Option) Result {
	out := Result{Spec: s}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	start := time.Now()
	src, rule, err := s.Build(r.reg)
	if err != nil {
		out.Err = err
		r.log.Warn("job build failed", slog.String("job", s.Name), slog.Any("err", err))
		return out
	}
	out.Source = src
	res, err := riemann.Compute(src, rule, opts...)
	out.Used = time.Since(start)
	if err != nil {
		out.Err = errs.WrapWithExtra(err, "job failed", "job="+s.Name)
		r.log.Warn("job failed", slog.String("job", s.Name), slog.Any("err", err))
		return out
	}
	out.Res = res
	r.log.Debug("job done",
		slog.String("job", s.Name),
		slog.String("rule", res.Rule.String()),
		slog.Int("segments", res.Segments),
		slog.Float64("sum", res.Sum),
		slog.Duration("used", out.Used),
	)
	return out
}

// RunBatch 以 workers 個 goroutine 平行執行 specs，結果順序與輸入一致。
//
// 單一 job 失敗只記錄在該筆 Result.Err，不會中斷整批；
// ctx 取消後不再派發新 job，尚未派發者的 Err 為 ctx.Err()，並回傳該錯誤。
func (r *Runner) RunBatch(ctx context.Context, specs []Spec, workers int, showpb bool) ([]Result, time.Duration, error) {
	if workers < 1 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	results := make([]Result, len(specs))
	if len(specs) == 0 {
		return results, 0, nil
	}
	workers = min(workers, len(specs))

	bar := pb.New(len(specs))
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	jobs := make(chan int, workers)
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.Run(ctx, specs[i])
				bar.Increment()
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range specs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	if dispatched < len(specs) {
		for i := dispatched; i < len(specs); i++ {
			results[i] = Result{Spec: specs[i], Err: ctx.Err()}
		}
		return results, used, ctx.Err()
	}
	return results, used, nil
}
