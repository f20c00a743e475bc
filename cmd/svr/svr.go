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
	"flag"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/zintix-labs/simath/demo/demo_jobs"
	"github.com/zintix-labs/simath/fn"
	"github.com/zintix-labs/simath/job"
	"github.com/zintix-labs/simath/logger"
	"github.com/zintix-labs/simath/server"
	"github.com/zintix-labs/simath/server/netsvr"
	"github.com/zintix-labs/simath/server/svrcfg"
)

// Riemann-sum HTTP service. The embedded demo jobs are always served;
// -jobs adds a directory of job files on top of them.
func main() {
	cfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = server.Run(cfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr    string
	LogMode string
	Workers int
	Jobs    string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", netsvr.DefaultAddr, "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.IntVar(&cfg.Workers, "worker", runtime.NumCPU(), "number of workers for /v1/batch")
	flag.StringVar(&cfg.Jobs, "jobs", "", "directory of extra job files (.yaml/.yml/.json)")

	flag.Parse()

	srcs := []fs.FS{demo_jobs.FS}
	if cfg.Jobs != "" {
		srcs = append(srcs, os.DirFS(cfg.Jobs))
	}
	c, err := job.Load(srcs...)
	if err != nil {
		return nil, func() {}, err
	}

	log, ah := logger.NewAsync(4096, logger.ParseMode(cfg.LogMode))
	sCfg := &svrcfg.SvrCfg{
		Log:     log,
		Addr:    cfg.Addr,
		Workers: cfg.Workers,
		Catalog: c,
		Runner:  job.NewRunner(fn.Builtin, log),
	}
	return sCfg, ah.Close, nil
}
