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


// Package perf 以 runtime/pprof 包住一段執行，供 CLI 的 -p 旗標使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/simath/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Modes 支援的 profiling 模式；空字串表示不做 profiling
var Modes = []string{"", "cpu", "heap", "allocs"}

// Valid 檢查 mode 是否支援
func Valid(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Profiler 把 profile 寫到 Dir 底下，檔名為 <mode>.pprof
type Profiler struct {
	Dir string
}

// RunPProf 以 DefaultDir 執行
func RunPProf(exe func() error, mode string) error {
	return Profiler{Dir: DefaultDir}.Run(exe, mode)
}

// Run 依 mode 執行 exe。exe 的錯誤優先回傳；profile 寫檔失敗為 Fatal。
func (p Profiler) Run(exe func() error, mode string) error {
	switch mode {
	case "":
		return exe()
	case "cpu":
		return p.cpu(exe)
	case "heap", "allocs":
		if err := exe(); err != nil {
			return err
		}
		return p.snapshot(mode)
	default:
		return errs.NewWarn("unknown pprof mode: " + mode)
	}
}

func (p Profiler) create(mode string) (*os.File, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create profiling dir")
	}
	f, err := os.Create(filepath.Join(p.Dir, mode+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "create "+mode+".pprof")
	}
	return f, nil
}

// cpu 可作性能分析，也可以作為 pgo 的 default.pgo
func (p Profiler) cpu(exe func() error) error {
	f, err := p.create("cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 完成後寫出 heap（in-use）或 allocs（累積配置）。
// 寫 heap 前先 GC，讓快照貼近 live objects。
func (p Profiler) snapshot(mode string) error {
	if mode == "heap" {
		runtime.GC()
	}
	f, err := p.create(mode)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.Lookup(mode).WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+mode+" profile")
	}
	return nil
}
