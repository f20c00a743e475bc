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


// 開發用任務：go run ./scripts <task>
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).PrintlnFunc()
	red    = color.New(color.FgRed).PrintlnFunc()
	yellow = color.New(color.FgYellow).PrintlnFunc()
)

type task struct {
	doc string
	run func() error
}

var tasks = map[string]task{
	"test":        {"go test ./... (only ok/FAIL lines)", func() error { return goTest(false, "./...", "-cover", "-count=1") }},
	"test-detail": {"go test -v ./... without [no test files] lines", func() error { return goTest(true, "./...", "-v", "-count=1") }},
	"demo":        {"run the embedded demo jobs", func() error { return passthrough("go", "run", "./cmd/rmsum", "-demo") }},
	"profile":     {"cpu profile of the demo jobs into build/profiling", func() error { return passthrough("go", "run", "./cmd/rmsum", "-demo", "-p", "cpu") }},
	"serve":       {"start the HTTP service in dev log mode", func() error { return passthrough("go", "run", "./cmd/svr", "-log-mode", "ModeDev") }},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		yellow(fmt.Sprintf("Unknown task: %s", os.Args[1]))
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		red(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-12s %s\n", n, tasks[n].doc)
	}
}

func passthrough(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}

// goTest 清掉 test cache 後執行 go test，stdout/stderr 合併後逐行上色。
// verbose 為 false 時只保留 ok/FAIL 與建置失敗的行。
func goTest(verbose bool, args ...string) error {
	green("running tests")
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		red(err.Error())
	}

	cmd := exec.Command("go", append([]string{"test"}, args...)...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start go test: %w", err)
	}

	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			green(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			red(line)
		case verbose && !strings.Contains(line, "[no test files]"):
			fmt.Println(line)
		}
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("tests finished with errors: %w", err)
	}
	return nil
}
