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

	"github.com/zintix-labs/simath/errs"
)

// MaxSegments 單次切分允許的最大子區間數，超過視為參數錯誤（避免一次吃光記憶體）。
const MaxSegments int = 1 << 24

// Interval 閉區間 [Lo, Hi]，由呼叫端建立。
type Interval struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Len 區間長度 Hi - Lo
func (iv Interval) Len() float64 {
	return iv.Hi - iv.Lo
}

// Segment 子區間 [Start, End]
type Segment struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end"   yaml:"end"`
}

// Width 子區間寬度，也就是該段在加總時的權重。
func (s Segment) Width() float64 {
	return s.End - s.Start
}

// Partition 把 [lo, hi] 以固定寬度 step 切成 k = floor((hi-lo)/step) 個連續子區間。
//
// 行為：
//   - 第 i 段為 [lo + i*step, lo + (i+1)*step]，以乘法計算端點，不累加誤差。
//   - 長度不足一個 step 的尾段直接捨棄（截斷，不四捨五入）。
//   - step 恰好等於 hi-lo 時只會有一段。
//   - step > hi-lo、step <= 0、或端點非有限數值時回傳 errs.ErrInvalidArg。
func Partition(iv Interval, step float64) ([]Segment, error) {
	if !finite(iv.Lo) || !finite(iv.Hi) {
		return nil, errs.InvalidArg("interval bounds must be finite: [%v, %v]", iv.Lo, iv.Hi)
	}
	if !finite(step) || step <= 0 {
		return nil, errs.InvalidArg("step must be a positive finite number, got %v", step)
	}
	if step > iv.Len() {
		return nil, errs.InvalidArg("step %v must not exceed interval length %v", step, iv.Len())
	}
	n := math.Floor(iv.Len() / step)
	if n > float64(MaxSegments) {
		return nil, errs.InvalidArg("too many segments: %v > %d", n, MaxSegments)
	}
	k := int(n)
	segs := make([]Segment, k)
	for i := range segs {
		segs[i] = Segment{
			Start: iv.Lo + float64(i)*step,
			End:   iv.Lo + float64(i+1)*step,
		}
	}
	return segs, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
