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
	"strings"

	"github.com/zintix-labs/simath/errs"
)

// Rule 取樣規則：決定每個子區間用哪些點代表其函數值。
type Rule uint8

const (
	Unspecified Rule = iota // 未指定，計算時視為 Midpoint
	Left
	Right
	Midpoint
	Trapezoidal
)

// DefaultRule 未指定規則時採用的規則
const DefaultRule = Midpoint

var ruleNames = map[Rule]string{
	Unspecified: "",
	Left:        "left",
	Right:       "right",
	Midpoint:    "midpoint",
	Trapezoidal: "trapezoidal",
}

// Rules 依固定順序回傳四種實際規則（不含 Unspecified）。
func Rules() []Rule {
	return []Rule{Left, Right, Midpoint, Trapezoidal}
}

// ParseRule 解析規則名稱（大小寫不敏感、忽略前後空白）。
//
// 空字串回傳 Unspecified；無法辨識的名稱回傳 errs.ErrInvalidArg。
func ParseRule(s string) (Rule, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for r, name := range ruleNames {
		if name == key {
			return r, nil
		}
	}
	return Unspecified, errs.InvalidArg("rule must be one of left, right, midpoint, trapezoidal; got %q", s)
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		if r == Unspecified {
			return "unspecified"
		}
		return name
	}
	return "unknown"
}

// Valid 是否為可辨識的規則值（含 Unspecified）
func (r Rule) Valid() bool {
	_, ok := ruleNames[r]
	return ok
}

// resolve 把 Unspecified 換成預設規則，並回報是否有發生替換。
func (r Rule) resolve() (Rule, bool, error) {
	switch r {
	case Unspecified:
		return DefaultRule, true, nil
	case Left, Right, Midpoint, Trapezoidal:
		return r, false, nil
	default:
		return r, false, errs.InvalidArg("unknown rule value %d", uint8(r))
	}
}

func (r Rule) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, errs.InvalidArg("unknown rule value %d", uint8(r))
	}
	return []byte(ruleNames[r]), nil
}

func (r *Rule) UnmarshalText(b []byte) error {
	v, err := ParseRule(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
