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


package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/zintix-labs/simath/logger"
)

func TestParseMode(t *testing.T) {
	cases := map[string]logger.LogMode{
		"ModeProd": logger.ModeProd,
		"silence":  logger.ModeSilence,
		"ModeDev":  logger.ModeDev,
		"whatever": logger.ModeDev,
	}
	for in, want := range cases {
		if got := logger.ParseMode(in); got != want {
			t.Fatalf("ParseMode(%q) = %d want %d", in, got, want)
		}
	}
}

func TestProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriterLogger(logger.ModeProd, &buf)
	log.Debug("hidden")
	log.Info("riemann.sum", slog.Float64("sum", 0.25))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("debug should be filtered in prod, got %d lines", len(lines))
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if m["msg"] != "riemann.sum" || m["sum"] != 0.25 {
		t.Fatalf("unexpected record %v", m)
	}
}

func TestDevIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriterLogger(logger.ModeDev, &buf)
	log.Debug("riemann.term", slog.Int("i", 3))
	if !strings.Contains(buf.String(), "riemann.term") {
		t.Fatalf("dev mode dropped debug: %q", buf.String())
	}
}

type capture struct {
	msgs []string
}

func (c *capture) Enabled(context.Context, slog.Level) bool { return true }
func (c *capture) Handle(_ context.Context, r slog.Record) error {
	c.msgs = append(c.msgs, r.Message)
	return nil
}
func (c *capture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *capture) WithGroup(string) slog.Handler { return c }

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	c := &capture{}
	ah := logger.NewAsyncHandler(c, 16)
	log := slog.New(ah)
	for i := 0; i < 10; i++ {
		log.Info("m")
	}
	ah.Close()
	ah.Close()
	if len(c.msgs)+int(ah.Dropped()) != 10 {
		t.Fatalf("lost records: handled=%d dropped=%d", len(c.msgs), ah.Dropped())
	}
	log.Info("after close")
	if ah.Dropped() == 0 {
		t.Fatalf("records after close must be dropped")
	}
}

func TestAsyncHandlerCloseRaceAccountsEveryRecord(t *testing.T) {
	const writers, per = 8, 200
	c := &capture{}
	ah := logger.NewAsyncHandler(c, 64)
	log := slog.New(ah)

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				log.Info("m")
			}
		}()
	}
	ah.Close()
	wg.Wait()

	if got := len(c.msgs) + int(ah.Dropped()); got != writers*per {
		t.Fatalf("handled=%d dropped=%d, want total %d", len(c.msgs), ah.Dropped(), writers*per)
	}
}
