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
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, strings.Repeat("riemann ", 64))
}

func TestCompressionZstdPreferred(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(hello)).ServeHTTP(rec, r)

	if ce := rec.Header().Get("Content-Encoding"); ce != "zstd" {
		t.Fatalf("content-encoding: %q", ce)
	}
	dec, err := zstd.NewReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != strings.Repeat("riemann ", 64) {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestCompressionGzip(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(hello)).ServeHTTP(rec, r)

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(zr)
	if !strings.HasPrefix(string(got), "riemann riemann") {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestCompressionSkipped(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(hello)).ServeHTTP(rec, r)
	if rec.Header().Get("Content-Encoding") != "" {
		t.Fatal("no Accept-Encoding must not compress")
	}

	r.Header.Set("Accept-Encoding", "gzip")
	rec = httptest.NewRecorder()
	Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, r)
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.Len() != 0 {
		t.Fatal("204 must not carry an encoded body")
	}
}

func TestRecover(t *testing.T) {
	buf := new(bytes.Buffer)
	log := slog.New(slog.NewJSONHandler(buf, nil))
	h := RequestID(Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("bad segment")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "bad segment") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}

func TestAccessLog(t *testing.T) {
	buf := new(bytes.Buffer)
	log := slog.New(slog.NewJSONHandler(buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sum", nil))
	out := buf.String()
	for _, want := range []string{`"msg":"http.access"`, `"level":"WARN"`, `"status":400`, `"path":"/v1/sum"`, `"req_id":"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestPickEncodingHonoursQuality(t *testing.T) {
	cases := []struct {
		accept string
		want   string
	}{
		{"gzip, zstd", "zstd"},
		{"gzip;q=0", ""},
		{"zstd;q=0, gzip", "gzip"},
		{"ZSTD;q=0.0, gzip;q=0.5", "gzip"},
		{"gzip;q=bad", ""},
		{"*", "zstd"},
		{"*;q=0", ""},
		{"zstd;q=0, *", "gzip"},
		{"identity", ""},
		{"", ""},
	}
	for _, c := range cases {
		got := ""
		if e := pickEncoding(c.accept); e != nil {
			got = e.name
		}
		if got != c.want {
			t.Errorf("Accept-Encoding %q: got %q want %q", c.accept, got, c.want)
		}
	}
}

func TestCompressionRejectedByQuality(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip;q=0, zstd;q=0")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(hello)).ServeHTTP(rec, r)
	if rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("q=0 codings must not be used, got %q", rec.Header().Get("Content-Encoding"))
	}
	if !strings.HasPrefix(rec.Body.String(), "riemann") {
		t.Fatalf("body must be plain, got %q", rec.Body.String())
	}
}
