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


package job

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/simath/errs"
)

var ErrDupName = errs.NewFatal("duplicate job name")

// Catalog 由一或多個 fs.FS 載入的 job 目錄。
//
// 載入規則：
//  1. 只讀取根目錄下的 .yaml / .yml / .json，子目錄視為錯誤，隱藏檔略過。
//  2. Fail-fast：任一檔案讀取或解析失敗立刻回傳錯誤。
//  3. 原子性：全部成功才寫入 Catalog，不會出現只載入一半的狀態。
//  4. 依檔名排序處理，行為可重現。
//
// Catalog 建立後只讀，可被多個 goroutine 同時查詢。
type Catalog struct {
	byName map[string]Spec
	origin map[string]string // job name -> 檔名
	names  []string
}

// Load 掃描所有來源並建立 Catalog
func Load(srcs ...fs.FS) (*Catalog, error) {
	if len(srcs) == 0 {
		return nil, errs.NewFatal("job sources required")
	}
	c := &Catalog{
		byName: map[string]Spec{},
		origin: map[string]string{},
	}
	for _, src := range srcs {
		if src == nil {
			return nil, errs.NewFatal("nil job source")
		}
		if err := c.scan(src); err != nil {
			return nil, err
		}
	}
	if len(c.names) == 0 {
		return nil, errs.NewFatal("no job files found")
	}
	sort.Strings(c.names)
	return c, nil
}

func (c *Catalog) scan(src fs.FS) error {
	// fs.WalkDir 依字典序走訪
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.Wrap(err, "walk job source")
		}
		if d.IsDir() {
			if path == "." {
				return nil
			}
			return errs.NewFatal(fmt.Sprintf("jobs must be flat (no subdir): %q", path))
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(base))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}

		raw, rerr := fs.ReadFile(src, path)
		if rerr != nil {
			return errs.WrapWithExtra(rerr, "read job failed", base)
		}
		var (
			s    *Spec
			perr error
		)
		if ext == ".json" {
			s, perr = ParseJSON(raw)
		} else {
			s, perr = ParseYAML(raw)
		}
		if perr != nil {
			return errs.WrapWithExtra(perr, "parse job failed", base)
		}

		key := strings.ToLower(s.Name)
		if prev, ok := c.origin[key]; ok {
			return errs.WrapWithExtra(ErrDupName, s.Name, fmt.Sprintf("%s and %s", prev, base))
		}
		c.byName[key] = *s
		c.origin[key] = base
		c.names = append(c.names, key)
		return nil
	})
}

// Get 依名稱（大小寫不敏感）取得 Spec 副本
func (c *Catalog) Get(name string) (Spec, bool) {
	s, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Names 排序後的 job 名稱
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Specs 依 Names 順序回傳全部 Spec
func (c *Catalog) Specs() []Spec {
	out := make([]Spec, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.names) }
