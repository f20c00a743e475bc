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


package riemann_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/riemann"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/integrate"
)

const tol = 1e-12

func near(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !scalar.EqualWithinAbsOrRel(got, want, tol, tol) {
		t.Fatalf("%s: got %.15g want %.15g", name, got, want)
	}
}

func mustSum(t *testing.T, src riemann.Source, rule riemann.Rule, opts ...riemann.Option) float64 {
	t.Helper()
	v, err := riemann.Sum(src, rule, opts...)
	if err != nil {
		t.Fatalf("sum(%s): %v", rule, err)
	}
	return v
}

func identity(x float64) float64 { return x }

// ============================================================
// ** Average **
// ============================================================

func TestAverage(t *testing.T) {
	v, err := riemann.Average(2, 4)
	if err != nil || v != 3 {
		t.Fatalf("Average(2,4) = %v, %v", v, err)
	}
	v, err = riemann.Average(1, 2, 3, 4)
	if err != nil || v != 2.5 {
		t.Fatalf("Average(1,2,3,4) = %v, %v", v, err)
	}
	for _, in := range [][]float64{nil, {5}} {
		if _, err := riemann.Average(in...); !errors.Is(err, errs.ErrInsufficientArgs) {
			t.Fatalf("Average(%v) expected insufficient args, got %v", in, err)
		}
	}
}

// ============================================================
// ** Partition **
// ============================================================

func TestPartitionEven(t *testing.T) {
	segs, err := riemann.Partition(riemann.Interval{Lo: 0, Hi: 1}, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	want := []riemann.Segment{{Start: 0, End: 0.25}, {Start: 0.25, End: 0.5}, {Start: 0.5, End: 0.75}, {Start: 0.75, End: 1}}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments want %d", len(segs), len(want))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Fatalf("segment %d: got %+v want %+v", i, segs[i], want[i])
		}
	}
}

func TestPartitionTruncatesRemainder(t *testing.T) {
	segs, err := riemann.Partition(riemann.Interval{Lo: 0, Hi: 1}, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments want 3", len(segs))
	}
	near(t, "last end", segs[2].End, 0.9)
	for i, s := range segs {
		near(t, "width", s.Width(), 0.3)
		if i > 0 && s.Start != segs[i-1].End {
			t.Fatalf("segments not contiguous at %d", i)
		}
	}
}

func TestPartitionSingleSegment(t *testing.T) {
	segs, err := riemann.Partition(riemann.Interval{Lo: -2, Hi: 3}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 || segs[0] != (riemann.Segment{Start: -2, End: 3}) {
		t.Fatalf("got %+v", segs)
	}
}

func TestPartitionInvalid(t *testing.T) {
	cases := []struct {
		name string
		iv   riemann.Interval
		step float64
	}{
		{"step too large", riemann.Interval{Lo: 0, Hi: 1}, 2},
		{"zero step", riemann.Interval{Lo: 0, Hi: 1}, 0},
		{"negative step", riemann.Interval{Lo: 0, Hi: 1}, -0.1},
		{"nan step", riemann.Interval{Lo: 0, Hi: 1}, math.NaN()},
		{"reversed", riemann.Interval{Lo: 1, Hi: 0}, 0.1},
		{"inf bound", riemann.Interval{Lo: 0, Hi: math.Inf(1)}, 1},
		{"too many", riemann.Interval{Lo: 0, Hi: 1}, 1e-12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := riemann.Partition(c.iv, c.step); !errors.Is(err, errs.ErrInvalidArg) {
				t.Fatalf("expected invalid arg, got %v", err)
			}
		})
	}
}

// ============================================================
// ** Sum: function mode **
// ============================================================

func TestSumIdentityRules(t *testing.T) {
	src := riemann.Func{F: identity, Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 0.5}
	near(t, "left", mustSum(t, src, riemann.Left), 0.25)
	near(t, "right", mustSum(t, src, riemann.Right), 0.75)
	near(t, "trapezoidal", mustSum(t, src, riemann.Trapezoidal), 0.5)
	near(t, "midpoint", mustSum(t, src, riemann.Midpoint), 0.5)
}

func TestSumConstantExactForEveryRule(t *testing.T) {
	src := riemann.Func{F: func(float64) float64 { return 1 }, Interval: riemann.Interval{Lo: 0, Hi: 10}, Step: 1}
	for _, r := range append(riemann.Rules(), riemann.Unspecified) {
		if got := mustSum(t, src, r); got != 10 {
			t.Fatalf("%s: got %v want 10", r, got)
		}
	}
}

func TestSumConvexOrdering(t *testing.T) {
	iv := riemann.Interval{Lo: 0, Hi: 2}

	// 遞增凸函數：left <= midpoint <= trapezoidal <= right
	inc := riemann.Func{F: func(x float64) float64 { return x * x }, Interval: iv, Step: 0.1}
	l, m, tr, r := mustSum(t, inc, riemann.Left), mustSum(t, inc, riemann.Midpoint), mustSum(t, inc, riemann.Trapezoidal), mustSum(t, inc, riemann.Right)
	if !(l <= m && m <= tr && tr <= r) {
		t.Fatalf("increasing convex ordering broken: %v %v %v %v", l, m, tr, r)
	}

	// 遞減凸函數：順序反過來（right <= midpoint <= trapezoidal <= left）
	dec := riemann.Func{F: func(x float64) float64 { return math.Exp(-x) }, Interval: iv, Step: 0.1}
	l, m, tr, r = mustSum(t, dec, riemann.Left), mustSum(t, dec, riemann.Midpoint), mustSum(t, dec, riemann.Trapezoidal), mustSum(t, dec, riemann.Right)
	if !(r <= m && m <= tr && tr <= l) {
		t.Fatalf("decreasing convex ordering broken: %v %v %v %v", l, m, tr, r)
	}
}

func TestSumDefaultsToMidpoint(t *testing.T) {
	src := riemann.Func{F: math.Sin, Interval: riemann.Interval{Lo: 0, Hi: math.Pi}, Step: math.Pi / 8}
	rec := &riemann.Recorder{}
	got, err := riemann.Compute(src, riemann.Unspecified, riemann.WithTracer(rec))
	if err != nil {
		t.Fatal(err)
	}
	if got.Rule != riemann.Midpoint || !got.Defaulted || !rec.WasDefaulted {
		t.Fatalf("expected defaulted midpoint, got %+v", got)
	}
	near(t, "default == midpoint", got.Sum, mustSum(t, src, riemann.Midpoint))
}

func TestSumInvalidRule(t *testing.T) {
	src := riemann.Func{F: identity, Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 0.5}
	if _, err := riemann.Sum(src, riemann.Rule(42)); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("expected invalid arg, got %v", err)
	}
	if _, err := riemann.Sum(nil, riemann.Left); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("nil source: expected invalid arg, got %v", err)
	}
	if _, err := riemann.Sum(riemann.Func{Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 0.5}, riemann.Left); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("nil func: expected invalid arg, got %v", err)
	}
	if _, err := riemann.Sum(riemann.Func{F: identity, Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 2}, riemann.Left); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("step too large: expected invalid arg, got %v", err)
	}
}

func TestParseRule(t *testing.T) {
	cases := map[string]riemann.Rule{
		"":            riemann.Unspecified,
		"left":        riemann.Left,
		" RIGHT ":     riemann.Right,
		"Midpoint":    riemann.Midpoint,
		"trapezoidal": riemann.Trapezoidal,
	}
	for in, want := range cases {
		got, err := riemann.ParseRule(in)
		if err != nil || got != want {
			t.Fatalf("ParseRule(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := riemann.ParseRule("simpson"); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("expected invalid arg, got %v", err)
	}

	var r riemann.Rule
	if err := r.UnmarshalText([]byte("trapezoidal")); err != nil || r != riemann.Trapezoidal {
		t.Fatalf("UnmarshalText: %v %v", r, err)
	}
	b, err := riemann.Left.MarshalText()
	if err != nil || string(b) != "left" {
		t.Fatalf("MarshalText: %q %v", b, err)
	}
}

// ============================================================
// ** Sum: table mode **
// ============================================================

func TestTableTrapezoidal(t *testing.T) {
	tab, err := riemann.NewTable(map[float64]float64{0: 0, 1: 1, 2: 4})
	if err != nil {
		t.Fatal(err)
	}
	near(t, "trapezoidal", mustSum(t, tab, riemann.Trapezoidal), 3.0)
	near(t, "left", mustSum(t, tab, riemann.Left), 1.0)
	near(t, "right", mustSum(t, tab, riemann.Right), 5.0)
	// 中點落在兩個 key 之間，以線性內插取值
	near(t, "midpoint", mustSum(t, tab, riemann.Midpoint), 3.0)

	near(t, "gonum trapezoidal", mustSum(t, tab, riemann.Trapezoidal), integrate.Trapezoidal(tab.Xs(), tab.Ys()))
}

func TestTableNonUniformStepNotValidated(t *testing.T) {
	tab, err := riemann.NewTableFromPoints([]riemann.Point{{X: 3, Y: 2}, {X: 0, Y: 2}, {X: 1, Y: 2}})
	if err != nil {
		t.Fatal(err)
	}
	// step 只看前兩個 key
	if tab.Step() != 1 {
		t.Fatalf("step got %v want 1", tab.Step())
	}
	// 每段寬度各自計算，常數函數仍然精確
	res, err := riemann.Compute(tab, riemann.Left)
	if err != nil {
		t.Fatal(err)
	}
	if res.Sum != 6 || res.Segments != 2 || res.Step != 1 {
		t.Fatalf("got %+v", res)
	}
	if res.Covered != (riemann.Interval{Lo: 0, Hi: 3}) {
		t.Fatalf("covered got %+v", res.Covered)
	}
}

func TestTableInvalid(t *testing.T) {
	if _, err := riemann.NewTable(map[float64]float64{1: 1}); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("single point: %v", err)
	}
	if _, err := riemann.NewTableFromPoints([]riemann.Point{{X: 1}, {X: 1}}); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("duplicate key: %v", err)
	}
	if _, err := riemann.NewTableFromPoints([]riemann.Point{{X: 0}, {X: math.NaN()}}); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("nan key: %v", err)
	}
	tab, _ := riemann.NewTable(map[float64]float64{0: 0, 1: 1})
	if _, err := tab.At(2); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("out of range: %v", err)
	}
	var nilTab *riemann.Table
	if _, err := riemann.Sum(nilTab, riemann.Left); !errors.Is(err, errs.ErrInvalidArg) {
		t.Fatalf("nil table: %v", err)
	}
}

// ============================================================
// ** Tracer **
// ============================================================

func TestTracerDoesNotChangeResult(t *testing.T) {
	src := riemann.Func{F: func(x float64) float64 { return x * x }, Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 0.25}
	plain := mustSum(t, src, riemann.Trapezoidal)

	rec := &riemann.Recorder{}
	var buf bytes.Buffer
	traced := mustSum(t, src, riemann.Trapezoidal, riemann.WithTracer(rec), riemann.WithVerbose(&buf))
	if plain != traced {
		t.Fatalf("tracing changed result: %v != %v", plain, traced)
	}
	if len(rec.Terms) != 4 || rec.Sum != plain || rec.Rule != riemann.Trapezoidal {
		t.Fatalf("recorder got %d terms sum=%v rule=%s", len(rec.Terms), rec.Sum, rec.Rule)
	}
	acc := 0.0
	for i, term := range rec.Terms {
		if term.Index != i || len(term.X) != 2 || len(term.FX) != 2 {
			t.Fatalf("term %d malformed: %+v", i, term)
		}
		acc += term.Value * term.Weight
	}
	near(t, "terms", acc, plain)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 4 term lines + total, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "mp(f(0), f(0.25))") {
		t.Fatalf("unexpected term line %q", lines[0])
	}
	if !strings.HasPrefix(lines[4], "Riemann Sum (trapezoidal)") {
		t.Fatalf("unexpected total line %q", lines[4])
	}
}

func TestTextTracerDefaultNotice(t *testing.T) {
	var buf bytes.Buffer
	src := riemann.Func{F: identity, Interval: riemann.Interval{Lo: 0, Hi: 1}, Step: 0.5}
	mustSum(t, src, riemann.Unspecified, riemann.WithVerbose(&buf))
	out := buf.String()
	if !strings.HasPrefix(out, "rule not specified, defaulting to midpoint") {
		t.Fatalf("missing default notice:\n%s", out)
	}
	if !strings.Contains(out, "f(mp(0, 0.5))") {
		t.Fatalf("missing midpoint line:\n%s", out)
	}
}
