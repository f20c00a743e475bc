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


package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder gzip.Writer 與 zstd.Encoder 共同的行為
type encoder interface {
	io.Writer
	Reset(w io.Writer)
	Close() error
}

// encoding 一種 Content-Encoding 與它的 writer pool
type encoding struct {
	name string
	pool sync.Pool
}

func (e *encoding) get(w io.Writer) encoder {
	enc := e.pool.Get().(encoder)
	enc.Reset(w)
	return enc
}

// put 關閉後歸還。discard 為 true 時先把底層換成 io.Discard，避免 footer 寫進無 body 的回應。
func (e *encoding) put(enc encoder, discard bool) {
	if discard {
		enc.Reset(io.Discard)
	}
	_ = enc.Close()
	e.pool.Put(enc)
}

// 依偏好順序：zstd 優先於 gzip
var encodings = []*encoding{
	{
		name: "zstd",
		pool: sync.Pool{New: func() any {
			zw, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.SpeedFastest),
				zstd.WithEncoderConcurrency(1),
			)
			if err != nil {
				panic(err)
			}
			return zw
		}},
	},
	{
		name: "gzip",
		pool: sync.Pool{New: func() any {
			gw, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
			return gw
		}},
	},
}

// pickEncoding 依 Accept-Encoding 選出第一個可用的編碼（依 encodings 的偏好順序）。
// q=0 表示明確拒絕；"*" 只在沒被個別點名時生效。
func pickEncoding(accept string) *encoding {
	named, wildcard := parseAcceptEncoding(accept)
	for _, e := range encodings {
		if ok, listed := named[e.name]; listed {
			if ok {
				return e
			}
			continue
		}
		if wildcard {
			return e
		}
	}
	return nil
}

// parseAcceptEncoding 回傳 coding -> 是否接受（q > 0），以及 "*" 是否被接受。
func parseAcceptEncoding(accept string) (map[string]bool, bool) {
	named := map[string]bool{}
	wildcard := false
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(part, ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		ok := qualityAccepted(params)
		if name == "*" {
			wildcard = ok
			continue
		}
		named[name] = ok
	}
	return named, wildcard
}

// qualityAccepted 解析 ";q=0.5" 之類的參數；沒有 q 視為 1，無法解析視為拒絕。
func qualityAccepted(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, found := strings.Cut(strings.TrimSpace(p), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(k), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && q > 0
	}
	return true
}

func noBody(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type compressWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if noBody(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	h := cw.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.disabled {
		if f, ok := cw.enc.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應。
// HEAD、WebSocket upgrade、已經有 Content-Encoding 的回應不處理。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}
		e := pickEncoding(r.Header.Get("Accept-Encoding"))
		if e == nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", e.name)
		w.Header().Add("Vary", "Accept-Encoding")
		cw := &compressWriter{ResponseWriter: w, enc: e.get(w)}
		defer func() { e.put(cw.enc, cw.disabled) }()

		next.ServeHTTP(cw, r)
	})
}
