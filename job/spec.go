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


// Package job 以設定檔描述一次積分計算（Spec），並負責載入、驗證與批次執行。
package job

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/fn"
	"github.com/zintix-labs/simath/riemann"
	"gopkg.in/yaml.v3"
)

// Spec 一次積分計算的設定
//
//	name: square-left
//	rule: left
//	source:
//	  func: square
//	  interval: [0, 1]
//	  step: 0.25
type Spec struct {
	Name   string     `yaml:"name"   json:"name"`
	Rule   string     `yaml:"rule"   json:"rule,omitempty"`
	Source SourceSpec `yaml:"source" json:"source"`
}

// SourceSpec 資料來源設定：Func 與 Table 擇一。
type SourceSpec struct {
	Func     fn.Key      `yaml:"func,omitempty"     json:"func,omitempty"`
	Params   []float64   `yaml:"params,omitempty"   json:"params,omitempty"`
	Interval []float64   `yaml:"interval,omitempty" json:"interval,omitempty"` // [lo, hi]
	Step     float64     `yaml:"step,omitempty"     json:"step,omitempty"`
	Table    [][]float64 `yaml:"table,omitempty"    json:"table,omitempty"` // [[x, y], ...]
}

func ParseYAML(data []byte) (*Spec, error) {
	s := &Spec{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal yaml")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func ParseJSON(data []byte) (*Spec, error) {
	s := &Spec{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal json")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Mode 設定所描述的來源類別
func (s *Spec) Mode() riemann.Mode {
	if len(s.Source.Table) > 0 {
		return riemann.ModeTable
	}
	return riemann.ModeFunc
}

// Validate 檢查設定形狀。數值上的合法性（step 是否過大等）交給 riemann 判斷。
func (s *Spec) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return errs.InvalidArg("job name required")
	}
	if _, err := riemann.ParseRule(s.Rule); err != nil {
		return errs.WrapWithExtra(err, "invalid rule", "job="+s.Name)
	}
	src := s.Source
	hasFunc := strings.TrimSpace(string(src.Func)) != ""
	hasTable := len(src.Table) > 0
	switch {
	case hasFunc && hasTable:
		return errs.InvalidArg("job %s: source must set either func or table, not both", s.Name)
	case hasFunc:
		if len(src.Interval) != 2 {
			return errs.InvalidArg("job %s: interval must be [lo, hi], got %d values", s.Name, len(src.Interval))
		}
		if src.Step <= 0 {
			return errs.InvalidArg("job %s: step must be > 0", s.Name)
		}
	case hasTable:
		for i, row := range src.Table {
			if len(row) != 2 {
				return errs.InvalidArg("job %s: table row %d must be [x, y]", s.Name, i)
			}
		}
	default:
		return errs.InvalidArg("job %s: source requires func or table", s.Name)
	}
	return nil
}

// Build 依設定建立 riemann 的來源與規則
func (s *Spec) Build(reg *fn.Registry) (riemann.Source, riemann.Rule, error) {
	if err := s.Validate(); err != nil {
		return nil, riemann.Unspecified, err
	}
	rule, _ := riemann.ParseRule(s.Rule)

	if s.Mode() == riemann.ModeTable {
		pts := make([]riemann.Point, len(s.Source.Table))
		for i, row := range s.Source.Table {
			pts[i] = riemann.Point{X: row[0], Y: row[1]}
		}
		tab, err := riemann.NewTableFromPoints(pts)
		if err != nil {
			return nil, rule, errs.WrapWithExtra(err, "build table", "job="+s.Name)
		}
		return tab, rule, nil
	}

	if reg == nil {
		reg = fn.Builtin
	}
	f, err := reg.Build(s.Source.Func, s.Source.Params)
	if err != nil {
		return nil, rule, errs.WrapWithExtra(err, "build func", "job="+s.Name)
	}
	return riemann.Func{
		F:        f,
		Interval: riemann.Interval{Lo: s.Source.Interval[0], Hi: s.Source.Interval[1]},
		Step:     s.Source.Step,
	}, rule, nil
}

// EstimatedSegments 執行前估計的子區間數：函數來源為 floor((hi-lo)/step)，表格為點數減一。
// 設定不完整時回傳 0；端點非有限值時可能為 +Inf 或 NaN。
func (s *Spec) EstimatedSegments() float64 {
	if s.Mode() == riemann.ModeTable {
		return float64(max(len(s.Source.Table)-1, 0))
	}
	if len(s.Source.Interval) != 2 || s.Source.Step <= 0 {
		return 0
	}
	return math.Floor((s.Source.Interval[1] - s.Source.Interval[0]) / s.Source.Step)
}

func (s *Spec) String() string {
	if s.Mode() == riemann.ModeTable {
		return fmt.Sprintf("%s: table(%d points) rule=%s", s.Name, len(s.Source.Table), s.Rule)
	}
	return fmt.Sprintf("%s: %s%v on %v step=%v rule=%s", s.Name, s.Source.Func, s.Source.Params, s.Source.Interval, s.Source.Step, s.Rule)
}
