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


// Package riemann 以黎曼和近似一維定積分。
//
// 三個純函數構成固定的依賴鏈：
//  1. Average：兩個以上數值的算術平均。
//  2. Partition：把 [lo, hi] 切成固定寬度的連續子區間，不足一個 step 的尾段捨棄。
//  3. Sum：對 Source（函數 Func 或表格 *Table）套用 Left / Right / Midpoint / Trapezoidal 其中一種規則後加總。
//
// 計算過程可以透過 Tracer 觀察（文字、slog、或收集到記憶體），Tracer 不影響結果。
//
//	f := riemann.Func{F: func(x float64) float64 { return x }, Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 0.5}
//	v, _ := riemann.Sum(f, riemann.Left) // 0.25
package riemann

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zintix-labs/simath/errs"
)

// Result Sum 的完整結果
type Result struct {
	Sum       float64  `json:"sum"`
	Rule      Rule     `json:"rule"`      // 實際採用的規則
	Defaulted bool     `json:"defaulted"` // 是否因未指定而採用預設規則
	Mode      Mode     `json:"-"`
	Step      float64  `json:"step"`     // 函數模式為輸入的 step；表格模式為前兩個 key 的差
	Segments  int      `json:"segments"` // 子區間數
	Covered   Interval `json:"covered"`  // 實際被加總的範圍（截斷後）
}

type options struct {
	tracers []Tracer
}

// Option 設定 Sum 的可選行為
type Option func(*options)

// WithTracer 注入 tracer，可多次呼叫。
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracers = append(o.tracers, t)
		}
	}
}

// WithVerbose 每段輸出一行無色文字到 w。
func WithVerbose(w io.Writer) Option {
	return WithTracer(NewTextTracer(w, false))
}

// WithLogger 把計算過程寫到結構化 log。
func WithLogger(log *slog.Logger) Option {
	return WithTracer(NewSlogTracer(log))
}

func (o *options) tracer() Tracer {
	switch len(o.tracers) {
	case 0:
		return nil
	case 1:
		return o.tracers[0]
	default:
		return Tee(o.tracers)
	}
}

// Sum 回傳 src 在規則 rule 下的黎曼和。
//
// rule 為 Unspecified 時採用 Midpoint（並通知 tracer）；其他無法辨識的規則值回傳 errs.ErrInvalidArg。
func Sum(src Source, rule Rule, opts ...Option) (float64, error) {
	res, err := Compute(src, rule, opts...)
	if err != nil {
		return 0, err
	}
	return res.Sum, nil
}

// Compute 與 Sum 相同，但回傳包含切分資訊的 Result。
func Compute(src Source, rule Rule, opts ...Option) (Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	tr := o.tracer()

	resolved, defaulted, err := rule.resolve()
	if err != nil {
		return Result{}, err
	}

	var (
		segs []Segment
		at   func(float64) (float64, error)
		step float64
	)
	switch s := src.(type) {
	case Func:
		if segs, err = s.Segments(); err != nil {
			return Result{}, err
		}
		f := s.F
		at = func(x float64) (float64, error) { return f(x), nil }
		step = s.Step
	case *Table:
		if s == nil || s.Len() < 2 {
			return Result{}, errs.InvalidArg("table source needs at least 2 points")
		}
		segs = s.Segments()
		at = s.At
		step = s.Step()
	default:
		return Result{}, errs.InvalidArg("source is required")
	}

	if defaulted && tr != nil {
		tr.Defaulted(resolved)
	}

	sum := 0.0
	for i, seg := range segs {
		t, err := term(resolved, seg, at)
		if err != nil {
			return Result{}, errs.WrapWithExtra(err, "evaluate segment", segmentExtra(i, seg))
		}
		sum += t.Value * t.Weight
		if tr != nil {
			t.Index = i
			tr.Term(t)
		}
	}
	if tr != nil {
		tr.Total(resolved, sum)
	}

	res := Result{
		Sum:       sum,
		Rule:      resolved,
		Defaulted: defaulted,
		Mode:      src.Mode(),
		Step:      step,
		Segments:  len(segs),
	}
	if len(segs) > 0 {
		res.Covered = Interval{Lo: segs[0].Start, Hi: segs[len(segs)-1].End}
	}
	return res, nil
}

// term 計算單一子區間的代表值與權重
func term(rule Rule, seg Segment, at func(float64) (float64, error)) (Term, error) {
	t := Term{Rule: rule, Segment: seg, Weight: seg.Width()}
	switch rule {
	case Left:
		y, err := at(seg.Start)
		if err != nil {
			return t, err
		}
		t.X, t.FX, t.Value = []float64{seg.Start}, []float64{y}, y
	case Right:
		y, err := at(seg.End)
		if err != nil {
			return t, err
		}
		t.X, t.FX, t.Value = []float64{seg.End}, []float64{y}, y
	case Midpoint:
		mid := mean2(seg.Start, seg.End)
		y, err := at(mid)
		if err != nil {
			return t, err
		}
		t.X, t.FX, t.Value = []float64{mid}, []float64{y}, y
	case Trapezoidal:
		y0, err := at(seg.Start)
		if err != nil {
			return t, err
		}
		y1, err := at(seg.End)
		if err != nil {
			return t, err
		}
		t.X, t.FX, t.Value = []float64{seg.Start, seg.End}, []float64{y0, y1}, mean2(y0, y1)
	default:
		return t, errs.InvalidArg("unknown rule value %d", uint8(rule))
	}
	return t, nil
}

func segmentExtra(i int, seg Segment) string {
	return fmt.Sprintf("segment=%d [%v, %v]", i, seg.Start, seg.End)
}
