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


package riemann

import (
	"context"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Term 單一子區間對總和的貢獻。
//
// X 為取樣點、FX 為對應函數值：Left/Right/Midpoint 各一點，Trapezoidal 兩點（起、終）。
// 該段對總和的貢獻為 Value * Weight。
type Term struct {
	Index   int       `json:"index"`
	Rule    Rule      `json:"rule"`
	Segment Segment   `json:"segment"`
	X       []float64 `json:"x"`
	FX      []float64 `json:"fx"`
	Value   float64   `json:"value"`
	Weight  float64   `json:"weight"`
}

// Tracer 觀察 Sum 的計算過程，不影響回傳值。
type Tracer interface {
	// Defaulted 未指定規則而改用 rule 時呼叫一次
	Defaulted(rule Rule)
	// Term 每個子區間呼叫一次，依序
	Term(t Term)
	// Total 計算完成時呼叫一次
	Total(rule Rule, sum float64)
}

// NopTracer 不做任何事
type NopTracer struct{}

func (NopTracer) Defaulted(Rule) {}
func (NopTracer) Term(Term) {}
func (NopTracer) Total(Rule, float64) {}

// -----------------------------------------------------------------------------
//  slog
// -----------------------------------------------------------------------------

// SlogTracer 把計算過程寫成結構化 log（Debug 等級，總和為 Info）。
type SlogTracer struct {
	log *slog.Logger
}

func NewSlogTracer(log *slog.Logger) *SlogTracer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SlogTracer{log: log}
}

func (st *SlogTracer) Defaulted(rule Rule) {
	st.log.Info("rule not specified", slog.String("default", rule.String()))
}

func (st *SlogTracer) Term(t Term) {
	st.log.LogAttrs(context.Background(), slog.LevelDebug, "riemann.term",
		slog.Int("i", t.Index),
		slog.String("rule", t.Rule.String()),
		slog.Float64("start", t.Segment.Start),
		slog.Float64("end", t.Segment.End),
		slog.Any("x", t.X),
		slog.Any("fx", t.FX),
		slog.Float64("value", t.Value),
		slog.Float64("weight", t.Weight),
	)
}

func (st *SlogTracer) Total(rule Rule, sum float64) {
	st.log.Info("riemann.sum", slog.String("rule", rule.String()), slog.Float64("sum", sum))
}

// -----------------------------------------------------------------------------
//  人類可讀文字
// -----------------------------------------------------------------------------

// TextTracer 每段輸出一行人類可讀的文字，最後輸出總和。
//
// 格式僅供閱讀，不是相容性合約。
type TextTracer struct {
	w     io.Writer
	p     *message.Printer
	hi    *color.Color
	total *color.Color
}

// NewTextTracer 建立文字 tracer；colored 為 false 時不輸出 ANSI 色碼。
func NewTextTracer(w io.Writer, colored bool) *TextTracer {
	hi := color.New(color.FgCyan)
	total := color.New(color.FgGreen, color.Bold)
	if colored {
		hi.EnableColor()
		total.EnableColor()
	} else {
		hi.DisableColor()
		total.DisableColor()
	}
	return &TextTracer{
		w:     w,
		p:     message.NewPrinter(language.English),
		hi:    hi,
		total: total,
	}
}

func (tt *TextTracer) Defaulted(rule Rule) {
	tt.p.Fprintf(tt.w, "rule not specified, defaulting to %s\n", rule)
}

func (tt *TextTracer) Term(t Term) {
	var expr string
	switch t.Rule {
	case Left, Right:
		expr = tt.p.Sprintf("f(%v)", t.X[0])
	case Midpoint:
		expr = tt.p.Sprintf("f(mp(%v, %v))", t.Segment.Start, t.Segment.End)
	case Trapezoidal:
		expr = tt.p.Sprintf("mp(f(%v), f(%v))", t.X[0], t.X[1])
	}
	tt.p.Fprintf(tt.w, "[%d] %s = %s  x %v\n", t.Index, expr, tt.hi.Sprint(tt.p.Sprintf("%v", t.Value)), t.Weight)
}

func (tt *TextTracer) Total(rule Rule, sum float64) {
	tt.p.Fprintf(tt.w, "Riemann Sum (%s): %s\n", rule, tt.total.Sprint(tt.p.Sprintf("%v", sum)))
}

// -----------------------------------------------------------------------------
//  收集
// -----------------------------------------------------------------------------

// Recorder 把所有事件留在記憶體，供 API 回傳或測試檢查。
type Recorder struct {
	WasDefaulted bool
	Terms        []Term
	Rule         Rule
	Sum          float64
}

func (r *Recorder) Defaulted(Rule) { r.WasDefaulted = true }
func (r *Recorder) Term(t Term) { r.Terms = append(r.Terms, t) }
func (r *Recorder) Total(rule Rule, sum float64) {
	r.Rule = rule
	r.Sum = sum
}

// Tee 把事件同時送給多個 tracer
type Tee []Tracer

func (tt Tee) Defaulted(rule Rule) {
	for _, t := range tt {
		t.Defaulted(rule)
	}
}

func (tt Tee) Term(term Term) {
	for _, t := range tt {
		t.Term(term)
	}
}

func (tt Tee) Total(rule Rule, sum float64) {
	for _, t := range tt {
		t.Total(rule, sum)
	}
}
