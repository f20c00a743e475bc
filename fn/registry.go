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


// Package fn 提供可依名稱建立的被積函數。
//
// CLI 與 HTTP 無法直接傳入 Go 函數，因此以「key + 參數」描述函數，再由 Registry 建出實體。
package fn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zintix-labs/simath/errs"
)

// Key 函數名稱
type Key string

// F 一元實函數
type F func(float64) float64

// Builder 依參數建立函數。參數個數不符時回傳 errs.ErrInvalidArg。
type Builder func(params []float64) (F, error)

// Entry 註冊資訊（供列表/說明使用）
type Entry struct {
	Key    Key    `json:"key"    yaml:"key"`
	Params string `json:"params" yaml:"params"`
	Doc    string `json:"doc"    yaml:"doc"`
}

type item struct {
	entry   Entry
	builder Builder
}

// Registry 函數註冊表
type Registry struct {
	items map[Key]item
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[Key]item, 16)}
}

func normKey(k Key) Key {
	return Key(strings.ToLower(strings.TrimSpace(string(k))))
}

// Register 註冊函數；key 重複時回傳錯誤。
func (r *Registry) Register(e Entry, b Builder) error {
	e.Key = normKey(e.Key)
	if e.Key == "" {
		return errs.NewFatal("function key required")
	}
	if b == nil {
		return errs.NewFatal(fmt.Sprintf("nil builder for function %s", e.Key))
	}
	if _, ok := r.items[e.Key]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate function key %s", e.Key))
	}
	r.items[e.Key] = item{entry: e, builder: b}
	return nil
}

// Build 依 key 與參數建立函數
func (r *Registry) Build(k Key, params []float64) (F, error) {
	it, ok := r.items[normKey(k)]
	if !ok {
		return nil, errs.InvalidArg("unknown function %q", k)
	}
	f, err := it.builder(params)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("build function %s", it.entry.Key))
	}
	return f, nil
}

func (r *Registry) IsExist(k Key) bool {
	_, ok := r.items[normKey(k)]
	return ok
}

// Keys 依字母排序
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Entries 依 Keys 順序回傳註冊資訊
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.items))
	for _, k := range r.Keys() {
		out = append(out, r.items[k].entry)
	}
	return out
}

// Merge 合併多個註冊表；任何重複 key 直接失敗。
func Merge(regs ...*Registry) (*Registry, error) {
	out := NewRegistry()
	origin := make(map[Key]int, 16)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for k, it := range r.items {
			if _, ok := out.items[k]; ok {
				return nil, errs.NewFatal(fmt.Sprintf("duplicate function key %s (registry #%d and #%d)", k, origin[k], i))
			}
			out.items[k] = it
			origin[k] = i
		}
	}
	return out, nil
}

// ParseParams 解析逗號分隔的參數，例如 "1, 0, 3"。空字串為 nil。
func ParseParams(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errs.InvalidArg("params[%d] must be a number: %q", i, p)
		}
		out[i] = f
	}
	return out, nil
}
