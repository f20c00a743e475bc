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


package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var lang language.Tag = language.English

// Render 定義輸出行為
type Render interface {
	Write(w io.Writer, b *Batch) error
}

// ByName 依格式名稱取得 Render：json / yaml / text（預設 text）
func ByName(name string) Render {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return &JsonRender{}
	case "yaml", "yml":
		return &YAMLRender{}
	default:
		return &TextRender{}
	}
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) Write(w io.Writer, b *Batch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, b *Batch) error {
	return forceReadableList(w, b)
}

// YAML 內層方法：最內層的一維陣列輸出成 flow style [a, b]，外層維度保持展開。
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		nested := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				nested = true
			}
			styleReadableSequences(c)
		}
		if !nested {
			n.Style = yaml.FlowStyle
		}
	}
}

// 文字表格渲染（終端機用）
type TextRender struct{}

var textCols = []string{"Job", "Mode", "Rule", "Segments", "Sum", "Reference", "Abs Err"}

func (tr *TextRender) Write(w io.Writer, b *Batch) error {
	p := message.NewPrinter(lang)
	rows := make([][]string, 0, len(b.Reports))
	for _, r := range b.Reports {
		if r.Err != "" {
			rows = append(rows, []string{r.Name, r.Mode, "-", "-", "ERROR", "-", "-"})
			continue
		}
		rule := r.Rule
		if r.Defaulted {
			rule += "*"
		}
		ref, abs := "-", "-"
		if r.Reference != nil {
			ref = p.Sprintf("%.10g", *r.Reference)
		}
		if r.AbsErr != nil {
			abs = p.Sprintf("%.3e", *r.AbsErr)
		}
		rows = append(rows, []string{r.Name, r.Mode, rule, p.Sprintf("%d", r.Segments), p.Sprintf("%.10g", r.Sum), ref, abs})
	}

	out := fmtGrid(textCols, rows)
	out += p.Sprintf("jobs: %d  failed: %d  used: %d ms\n", b.Jobs, b.Failed, b.UsedMs)
	for _, r := range b.Reports {
		if r.Defaulted {
			out += "* rule not specified, defaulted to midpoint\n"
			break
		}
	}
	for _, r := range b.Reports {
		if r.Err != "" {
			out += p.Sprintf("[%s] %s\n", r.Name, r.Err)
		}
	}
	_, err := io.WriteString(w, out)
	return err
}

// fmtGrid 以 runewidth 計算顯示寬度，確保全形字元也能對齊。
func fmtGrid(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var sb strings.Builder
	divider := func() {
		sb.WriteString("+")
		for _, cw := range widths {
			sb.WriteString(strings.Repeat("-", cw+2))
			sb.WriteString("+")
		}
		sb.WriteString("\n")
	}
	line := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(blank(widths[i] - runewidth.StringWidth(cell)))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	divider()
	line(header)
	divider()
	for _, row := range rows {
		line(row)
	}
	divider()
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
