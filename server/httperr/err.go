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


package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/simath/errs"
)

// Body 錯誤回應的 JSON 結構
type Body struct {
	Status int    `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則：
//   - ctx timeout/cancel → 504/408
//   - errs.Warn         → 400（請求/參數問題，包含 InvalidArg 與 InsufficientArgs）
//   - errs.Fatal        → 500
//
// 本函數屬於 HTTP 邊界層，核心的 errs 不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	var e *errs.E
	if errors.As(err, &e) && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// kindOf 取錯誤鏈上第一個非 KindNone 的 Kind
func kindOf(err error) errs.Kind {
	for err != nil {
		if e, ok := err.(*errs.E); ok && e.Kind != errs.KindNone {
			return e.Kind
		}
		err = errors.Unwrap(err)
	}
	return errs.KindNone
}

// Errs 依錯誤分級寫回 JSON 錯誤內容
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	b := Body{Status: StatusCode(err), Error: err.Error()}
	if k := kindOf(err); k != errs.KindNone {
		b.Kind = k.String()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(b.Status)
	_ = json.NewEncoder(w).Encode(b)
}

// Log 只記錄伺服端需要關心的錯誤：408/409/429 為 Warn，5xx 為 Error，其他（4xx 輸入錯誤）不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Any("err", err))
	case status >= 500 && status < 600:
		log.Error(msg, slog.Any("err", err))
	}
}
