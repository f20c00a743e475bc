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
	"math"
	"slices"

	"github.com/zintix-labs/simath/errs"
)

// Mode 資料來源類別
type Mode uint8

const (
	ModeFunc Mode = iota + 1
	ModeTable
)

func (m Mode) String() string {
	switch m {
	case ModeFunc:
		return "func"
	case ModeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Source 是被積分的資料來源，只有兩種實作：Func 與 *Table。
//
// 介面帶有未匯出方法，外部套件無法新增實作，Sum 內的 type switch 因此是完整的。
type Source interface {
	Mode() Mode
	sealed()
}

// Func 以函數取樣的來源：在 Interval 上以 Step 切分後於端點/中點取值。
type Func struct {
	F        func(float64) float64
	Interval Interval
	Step     float64
}

func (Func) Mode() Mode { return ModeFunc }
func (Func) sealed() {}

// Segments 回傳此來源的切分結果
func (f Func) Segments() ([]Segment, error) {
	if f.F == nil {
		return nil, errs.InvalidArg("func source requires a non-nil function")
	}
	return Partition(f.Interval, f.Step)
}

// Point 表格中的一筆 (X, Y)
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Table 離散表格來源：依 X 排序的點列。
//
// 相鄰兩點構成一個子區間，各段寬度各自以 End-Start 計算。
// Step 只取前兩個 X 的差，不檢查其餘間距是否等寬。
type Table struct {
	xs []float64
	ys []float64
}

func (*Table) Mode() Mode { return ModeTable }
func (*Table) sealed() {}

// NewTable 由 x -> y 對照表建立 Table，key 會被排序。
func NewTable(m map[float64]float64) (*Table, error) {
	pts := make([]Point, 0, len(m))
	for x, y := range m {
		pts = append(pts, Point{X: x, Y: y})
	}
	return NewTableFromPoints(pts)
}

// NewTableFromPoints 由點列建立 Table。點列不需事先排序，但 X 不可重複。
//
// 至少需要兩個點；X 必須為有限數值。
func NewTableFromPoints(pts []Point) (*Table, error) {
	if len(pts) < 2 {
		return nil, errs.InvalidArg("table needs at least 2 points, got %d", len(pts))
	}
	sorted := slices.Clone(pts)
	slices.SortFunc(sorted, func(a, b Point) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})
	t := &Table{
		xs: make([]float64, len(sorted)),
		ys: make([]float64, len(sorted)),
	}
	for i, p := range sorted {
		if !finite(p.X) {
			return nil, errs.InvalidArg("table key must be finite, got %v", p.X)
		}
		if i > 0 && p.X == sorted[i-1].X {
			return nil, errs.InvalidArg("duplicate table key %v", p.X)
		}
		t.xs[i] = p.X
		t.ys[i] = p.Y
	}
	return t, nil
}

// Len 點數
func (t *Table) Len() int { return len(t.xs) }

// Step 前兩個 key 的差。非等距表格時此值不代表其他段的寬度。
func (t *Table) Step() float64 {
	return t.xs[1] - t.xs[0]
}

// Interval 表格涵蓋範圍 [第一個 key, 最後一個 key]
func (t *Table) Interval() Interval {
	return Interval{Lo: t.xs[0], Hi: t.xs[len(t.xs)-1]}
}

// Points 依 X 排序後的點列副本
func (t *Table) Points() []Point {
	out := make([]Point, len(t.xs))
	for i := range t.xs {
		out[i] = Point{X: t.xs[i], Y: t.ys[i]}
	}
	return out
}

// Xs / Ys 排序後的座標副本
func (t *Table) Xs() []float64 { return slices.Clone(t.xs) }
func (t *Table) Ys() []float64 { return slices.Clone(t.ys) }

// Segments 相鄰 key 兩兩成段
func (t *Table) Segments() []Segment {
	segs := make([]Segment, len(t.xs)-1)
	for i := range segs {
		segs[i] = Segment{Start: t.xs[i], End: t.xs[i+1]}
	}
	return segs
}

// At 取 x 的值：命中 key 直接回傳；落在兩個 key 之間以線性內插；超出範圍回傳 errs.ErrInvalidArg。
func (t *Table) At(x float64) (float64, error) {
	k, found := slices.BinarySearch(t.xs, x)
	if found {
		return t.ys[k], nil
	}
	if k == 0 || k >= len(t.xs) || math.IsNaN(x) {
		return 0, errs.InvalidArg("x=%v outside table range [%v, %v]", x, t.xs[0], t.xs[len(t.xs)-1])
	}
	x0, x1 := t.xs[k-1], t.xs[k]
	y0, y1 := t.ys[k-1], t.ys[k]
	return y0 + (y1-y0)*(x-x0)/(x1-x0), nil
}
