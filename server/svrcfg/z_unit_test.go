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
	"testing"

	"github.com/zintix-labs/simath/job"
)

func TestValidDefaults(t *testing.T) {
	sc := &SvrCfg{Catalog: &job.Catalog{}}
	if err := sc.Valid(); err != nil {
		t.Fatal(err)
	}
	if sc.Log == nil || sc.Runner == nil || sc.Addr == "" || sc.Workers < 1 {
		t.Fatalf("defaults not filled: %+v", sc)
	}
	if sc.MaxSegments != DefaultMaxSegments || sc.MaxTraceSegments != DefaultMaxTraceSegments {
		t.Fatalf("segment limits: %d %d", sc.MaxSegments, sc.MaxTraceSegments)
	}
}

func TestValidClampsTraceLimit(t *testing.T) {
	sc := &SvrCfg{Catalog: &job.Catalog{}, MaxSegments: 100, MaxTraceSegments: 1000}
	if err := sc.Valid(); err != nil {
		t.Fatal(err)
	}
	if sc.MaxTraceSegments != 100 {
		t.Fatalf("trace limit must not exceed segment limit, got %d", sc.MaxTraceSegments)
	}
}

func TestValidRequiresCatalog(t *testing.T) {
	if err := (&SvrCfg{}).Valid(); err == nil {
		t.Fatal("missing catalog must fail")
	}
}
