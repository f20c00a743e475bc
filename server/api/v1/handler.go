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


package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/simath/errs"
	"github.com/zintix-labs/simath/fn"
	"github.com/zintix-labs/simath/job"
	"github.com/zintix-labs/simath/report"
	"github.com/zintix-labs/simath/riemann"
	"github.com/zintix-labs/simath/server/httperr"
	"github.com/zintix-labs/simath/server/svrcfg"
)

// maxBody 請求 body 上限
const maxBody = 1 << 20

type Handler struct {
	cfg *svrcfg.SvrCfg
}

func NewHandler(cfg *svrcfg.SvrCfg) (*Handler, error) {
	if cfg == nil || cfg.Catalog == nil || cfg.Runner == nil || cfg.MaxSegments <= 0 || cfg.MaxTraceSegments <= 0 {
		return nil, errs.NewFatal("v1 handler requires a validated server config")
	}
	return &Handler{cfg: cfg}, nil
}

// SumResponse 單一計算的回應；Trace 只在 trace=true 時出現。
type SumResponse struct {
	Report *report.Report `json:"report"`
	Trace  []string       `json:"trace,omitempty"`
	Terms  []riemann.Term `json:"terms,omitempty"`
}

// writeJSON 先編碼到 buffer，失敗時回 500，不會送出空的 200。
func writeJSON(w http.ResponseWriter, v any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// checkSegments 在執行前以估計的子區間數擋下過大的請求
func (h *Handler) checkSegments(s *job.Spec, trace bool) error {
	limit, what := h.cfg.MaxSegments, "segments"
	if trace {
		limit, what = h.cfg.MaxTraceSegments, "traced segments"
	}
	n := s.EstimatedSegments()
	if n > float64(limit) {
		return errs.InvalidArg("job %s: %v %s exceeds server limit %d", s.Name, n, what, limit)
	}
	return nil
}

// Funcs 列出可用的函數
func (h *Handler) Funcs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cfg.Runner.Registry().Entries())
}

// Jobs 列出 catalog 中的 job 設定
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cfg.Catalog.Specs())
}

// RunJob 執行 catalog 中的單一 job：GET /v1/jobs/{name}?trace=true
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, ok := h.cfg.Catalog.Get(name)
	if !ok {
		httperr.Errs(w, errs.InvalidArg("job not found: %q", name))
		return
	}
	trace, err := boolParam(r, "trace")
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := h.checkSegments(&s, trace); err != nil {
		httperr.Errs(w, err)
		return
	}
	h.run(w, r, s, trace)
}

// Sum 即時計算。
//
// GET  /v1/sum?func=square&params=&lo=0&hi=1&step=0.25&rule=left&trace=true
// POST /v1/sum  body 為 job.Spec 的 JSON；trace 仍由 query 指定
func (h *Handler) Sum(w http.ResponseWriter, r *http.Request) {
	var s *job.Spec
	var err error
	if r.Method == http.MethodPost {
		s, err = decodeSpec(w, r)
	} else {
		s, err = specFromQuery(r)
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	trace, err := boolParam(r, "trace")
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := h.checkSegments(s, trace); err != nil {
		httperr.Errs(w, err)
		return
	}
	h.run(w, r, *s, trace)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, s job.Spec, trace bool) {
	var opts []riemann.Option
	buf := new(bytes.Buffer)
	rec := new(riemann.Recorder)
	if trace {
		opts = append(opts, riemann.WithTracer(riemann.Tee{riemann.NewTextTracer(buf, false), rec}))
	}
	res := h.cfg.Runner.Run(r.Context(), s, opts...)
	if res.Err != nil {
		httperr.Log(h.cfg.Log, "sum failed", res.Err)
		httperr.Errs(w, res.Err)
		return
	}
	resp := SumResponse{Report: report.New(res)}
	// 非有限值無法以 JSON 表示，失敗的報表不附追蹤
	if trace && resp.Report.Err == "" {
		resp.Trace = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		resp.Terms = rec.Terms
	}
	writeJSON(w, resp)
}

// Batch 平行執行多個 job：POST /v1/batch，body 為 job.Spec 的 JSON 陣列。
// 單一 job 的錯誤記錄在各自的報表中，不影響整批的狀態碼。
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var specs []job.Spec
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&specs); err != nil {
		httperr.Errs(w, errs.InvalidArg("invalid json: %v", err))
		return
	}
	if len(specs) == 0 {
		httperr.Errs(w, errs.InsufficientArgs("batch requires at least one job"))
		return
	}
	if len(specs) > svrcfg.MaxBatch {
		httperr.Errs(w, errs.InvalidArg("batch too large: %d > %d", len(specs), svrcfg.MaxBatch))
		return
	}
	for i := range specs {
		if err := h.checkSegments(&specs[i], false); err != nil {
			httperr.Errs(w, errs.WrapWithExtra(err, "batch rejected", fmt.Sprintf("index=%d", i)))
			return
		}
	}
	rs, used, err := h.cfg.Runner.RunBatch(r.Context(), specs, h.cfg.Workers, false)
	if err != nil {
		httperr.Log(h.cfg.Log, "batch aborted", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, report.NewBatch(rs, used))
}

func decodeSpec(w http.ResponseWriter, r *http.Request) (*job.Spec, error) {
	s := &job.Spec{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, errs.InvalidArg("invalid json: %v", err)
	}
	if s.Name == "" {
		s.Name = "adhoc"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func specFromQuery(r *http.Request) (*job.Spec, error) {
	q := r.URL.Query()
	s := &job.Spec{
		Name: q.Get("name"),
		Rule: q.Get("rule"),
	}
	if s.Name == "" {
		s.Name = "adhoc"
	}
	key := q.Get("func")
	if key == "" {
		return nil, errs.InvalidArg("func is required")
	}
	s.Source.Func = fn.Key(key)

	params, err := fn.ParseParams(q.Get("params"))
	if err != nil {
		return nil, err
	}
	s.Source.Params = params

	lo, err := floatParam(q.Get("lo"), "lo")
	if err != nil {
		return nil, err
	}
	hi, err := floatParam(q.Get("hi"), "hi")
	if err != nil {
		return nil, err
	}
	step, err := floatParam(q.Get("step"), "step")
	if err != nil {
		return nil, err
	}
	s.Source.Interval = []float64{lo, hi}
	s.Source.Step = step

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func floatParam(v, name string) (float64, error) {
	if v == "" {
		return 0, errs.InvalidArg("%s is required", name)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, errs.InvalidArg("%s must be a number: %q", name, v)
	}
	return f, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.InvalidArg("%s must be a boolean: %q", name, v)
	}
	return b, nil
}
