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


// Package report 把 job 執行結果整理成可輸出的報表，並附上 gonum 計算的參考值。
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/zintix-labs/simath/job"
	"github.com/zintix-labs/simath/riemann"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/integrate/quad"
)

// RefPoints Gauss-Legendre 參考值使用的節點數
const RefPoints int = 64

const (
	RefGaussLegendre = "gauss-legendre"
	RefTrapezoidal   = "table-trapezoidal"
)

// Report 單一 job 的報表
type Report struct {
	Name      string           `json:"name"                yaml:"name"`
	Mode      string           `json:"mode"                yaml:"mode"`
	Rule      string           `json:"rule"                yaml:"rule"`
	Defaulted bool             `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
	Covered   riemann.Interval `json:"covered"             yaml:"covered"`
	Step      float64          `json:"step"                yaml:"step"`
	Segments  int              `json:"segments"            yaml:"segments"`
	Sum       float64          `json:"sum"                 yaml:"sum"`
	Reference *float64         `json:"reference,omitempty" yaml:"reference,omitempty"`
	RefMethod string           `json:"ref_method,omitempty" yaml:"ref_method,omitempty"`
	AbsErr    *float64         `json:"abs_err,omitempty"   yaml:"abs_err,omitempty"`
	UsedUs    int64            `json:"used_us"             yaml:"used_us"`
	Err       string           `json:"error,omitempty"     yaml:"error,omitempty"`
}

// Batch 多個 job 的報表
type Batch struct {
	Reports []*Report `json:"reports" yaml:"reports"`
	Jobs    int       `json:"jobs"    yaml:"jobs"`
	Failed  int       `json:"failed"  yaml:"failed"`
	UsedMs  int64     `json:"used_ms" yaml:"used_ms"`
}

// New 由單一結果建立報表。執行失敗的 job 只保留名稱與錯誤訊息；總和非有限值時仍保留規則與切分資訊。
func New(r job.Result) *Report {
	rep := &Report{
		Name:   r.Spec.Name,
		Mode:   r.Spec.Mode().String(),
		UsedUs: r.Used.Microseconds(),
	}
	if r.Err != nil {
		rep.Err = r.Err.Error()
		return rep
	}
	rep.Rule = r.Res.Rule.String()
	rep.Defaulted = r.Res.Defaulted
	rep.Covered = r.Res.Covered
	rep.Step = r.Res.Step
	rep.Segments = r.Res.Segments
	if math.IsNaN(r.Res.Sum) || math.IsInf(r.Res.Sum, 0) {
		rep.Err = fmt.Sprintf("sum is not finite (%v)", r.Res.Sum)
		return rep
	}
	rep.Sum = r.Res.Sum

	if ref, method, ok := Reference(r.Source, r.Res.Covered); ok && !math.IsNaN(ref) && !math.IsInf(ref, 0) {
		abs := math.Abs(r.Res.Sum - ref)
		rep.Reference = &ref
		rep.RefMethod = method
		rep.AbsErr = &abs
	}
	return rep
}

// NewBatch 依輸入順序建立批次報表
func NewBatch(rs []job.Result, used time.Duration) *Batch {
	b := &Batch{
		Reports: make([]*Report, len(rs)),
		Jobs:    len(rs),
		UsedMs:  used.Milliseconds(),
	}
	for i, r := range rs {
		b.Reports[i] = New(r)
		if b.Reports[i].Err != "" {
			b.Failed++
		}
	}
	return b
}

// Reference 回傳同一範圍上的參考積分值：
//   - 函數來源：gonum quad.Fixed（Gauss-Legendre, RefPoints 個節點）
//   - 表格來源：gonum integrate.Trapezoidal（逐段梯形，與表格本身的資訊量一致）
//
// 範圍為空或來源不支援時 ok 為 false。
func Reference(src riemann.Source, covered riemann.Interval) (ref float64, method string, ok bool) {
	switch s := src.(type) {
	case riemann.Func:
		if s.F == nil || !(covered.Lo < covered.Hi) {
			return 0, "", false
		}
		return quad.Fixed(s.F, covered.Lo, covered.Hi, RefPoints, nil, 0), RefGaussLegendre, true
	case *riemann.Table:
		if s == nil || s.Len() < 2 {
			return 0, "", false
		}
		return integrate.Trapezoidal(s.Xs(), s.Ys()), RefTrapezoidal, true
	default:
		return 0, "", false
	}
}
