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
	"github.com/zintix-labs/simath/errs"
	"gonum.org/v1/gonum/floats"
)

// Average 回傳算術平均數（總和 / 個數）。
//
// 至少需要兩個數值，否則回傳 errs.ErrInsufficientArgs 類別的錯誤。
func Average(values ...float64) (float64, error) {
	if len(values) < 2 {
		return 0, errs.InsufficientArgs("average needs at least 2 values, got %d", len(values))
	}
	return floats.Sum(values) / float64(len(values)), nil
}

// mean2 是 Average 的兩數特化版，供 Sum 的熱迴圈使用（不會失敗）。
func mean2(a, b float64) float64 {
	return (a + b) / 2
}
