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


package main

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/zintix-labs/simath/demo/demo_jobs"
	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/fn"
	"github.com/zintix-labs/simath/job"
	"github.com/zintix-labs/simath/logger"
	"github.com/zintix-labs/simath/perf"
	"github.com/zintix-labs/simath/report"
	"github.com/zintix-labs/simath/riemann"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	fn        string
	params    string
	lo        float64
	hi        float64
	step      float64
	rule      string
	verbose   bool
	jobs      string
	demo      bool
	worker    int
	format    string
	logMode   string
	pprofmode string
}

func bindVar() {
	flag.StringVar(&cfg.fn, "func", "", "function key, see -func list")
	flag.StringVar(&cfg.params, "params", "", "comma separated function params, e.g. 1,0,3")
	flag.Float64Var(&cfg.lo, "lo", 0, "interval lower bound")
	flag.Float64Var(&cfg.hi, "hi", 1, "interval upper bound")
	flag.Float64Var(&cfg.step, "step", 0.1, "sub-interval width")
	flag.StringVar(&cfg.rule, "rule", "", "left|right|midpoint|trapezoidal (default midpoint)")
	flag.BoolVar(&cfg.verbose, "v", false, "print every segment")
	flag.StringVar(&cfg.jobs, "jobs", "", "directory of job files (.yaml/.yml/.json)")
	flag.BoolVar(&cfg.demo, "demo", false, "run the embedded demo jobs")
	flag.IntVar(&cfg.worker, "worker", runtime.NumCPU(), "number of workers for batch runs")
	flag.StringVar(&cfg.format, "format", "text", "report format: text|json|yaml")
	flag.StringVar(&cfg.logMode, "log-mode", "silence", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

func (cfg *config) valid() error {
	if cfg.worker < 1 {
		return errs.InvalidArg("workers must > 0")
	}
	if !perf.Valid(cfg.pprofmode) {
		return errs.InvalidArg("unknown pprof mode: %q", cfg.pprofmode)
	}
	if cfg.jobs == "" && !cfg.demo && cfg.fn == "" {
		return errs.InsufficientArgs("one of -func, -jobs or -demo is required")
	}
	return nil
}

// execute 依旗標分支：-func list 列出函數、-jobs/-demo 跑批次、否則跑單一積分
func execute() error {
	if err := cfg.valid(); err != nil {
		flag.Usage()
		return err
	}
	if cfg.fn == "list" {
		return listFuncs()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg := logger.NewWriterLogger(logger.ParseMode(cfg.logMode), os.Stderr)
	runner := job.NewRunner(fn.Builtin, lg)

	if cfg.jobs != "" || cfg.demo {
		return runBatch(ctx, runner)
	}
	return runSingle(ctx, runner)
}

func listFuncs() error {
	p := message.NewPrinter(language.English)
	for _, e := range fn.Builtin.Entries() {
		p.Printf("%-10s %-14s %s\n", e.Key, e.Params, e.Doc)
	}
	return nil
}

func runSingle(ctx context.Context, runner *job.Runner) error {
	params, err := fn.ParseParams(cfg.params)
	if err != nil {
		return err
	}
	s := job.Spec{
		Name: cfg.fn,
		Rule: cfg.rule,
		Source: job.SourceSpec{
			Func:     fn.Key(cfg.fn),
			Params:   params,
			Interval: []float64{cfg.lo, cfg.hi},
			Step:     cfg.step,
		},
	}

	var opts []riemann.Option
	if cfg.verbose {
		opts = append(opts, riemann.WithTracer(riemann.NewTextTracer(os.Stdout, !color.NoColor)))
	}
	banner("[FUNC:%s%v] [RULE:%s] [INTERVAL:%v, %v] [STEP:%v]", cfg.fn, params, ruleName(cfg.rule), cfg.lo, cfg.hi, cfg.step)

	res := runner.Run(ctx, s, opts...)
	b := report.NewBatch([]job.Result{res}, res.Used)
	if err := report.ByName(cfg.format).Write(os.Stdout, b); err != nil {
		return errs.Wrap(err, "write report")
	}
	return res.Err
}

func runBatch(ctx context.Context, runner *job.Runner) error {
	var srcs []fs.FS
	if cfg.demo {
		srcs = append(srcs, demo_jobs.FS)
	}
	if cfg.jobs != "" {
		srcs = append(srcs, os.DirFS(cfg.jobs))
	}
	c, err := job.Load(srcs...)
	if err != nil {
		return err
	}
	if c.Len() == 0 {
		return errs.InsufficientArgs("no job files found")
	}

	banner("[WORKERS:%d] [JOBS:%d]", cfg.worker, c.Len())
	if cfg.verbose {
		p := message.NewPrinter(language.English)
		for _, s := range c.Specs() {
			p.Printf("  %s\n", s.String())
		}
	}

	rs, used, runErr := runner.RunBatch(ctx, c.Specs(), cfg.worker, cfg.format == "text")
	b := report.NewBatch(rs, used)
	if err := report.ByName(cfg.format).Write(os.Stdout, b); err != nil {
		return errs.Wrap(err, "write report")
	}
	if runErr != nil {
		return runErr
	}
	if b.Failed > 0 {
		return errs.Warnf("%d of %d jobs failed", b.Failed, b.Jobs)
	}
	return nil
}

func ruleName(s string) string {
	if s == "" {
		return riemann.DefaultRule.String() + "*"
	}
	return s
}

// banner 只在 text 格式輸出，避免污染 json/yaml
func banner(format string, a ...any) {
	if cfg.format != "text" {
		return
	}
	p := message.NewPrinter(language.English)
	color.New(color.FgGreen, color.Bold).Println(p.Sprintf(format, a...))
}

func init() {
	log.SetFlags(0)
}
