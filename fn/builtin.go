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


package fn

import (
	"math"

	"github.com/zintix-labs/simath/errs"
)

// Builtin 內建函數表，程式啟動時建立一次，之後只讀。
var Builtin *Registry = mustBuiltin()

func mustBuiltin() *Registry {
	r := NewRegistry()
	for _, d := range builtins {
		if err := r.Register(d.entry, d.builder); err != nil {
			panic(err)
		}
	}
	return r
}

var builtins = []item{
	{Entry{"const", "c", "f(x) = c"}, nParams(1, func(p []float64) F {
		c := p[0]
		return func(float64) float64 { return c }
	})},
	{Entry{"identity", "", "f(x) = x"}, fixed(func(x float64) float64 { return x })},
	{Entry{"square", "", "f(x) = x^2"}, fixed(func(x float64) float64 { return x * x })},
	{Entry{"cube", "", "f(x) = x^3"}, fixed(func(x float64) float64 { return x * x * x })},
	{Entry{"sin", "", "f(x) = sin(x)"}, fixed(math.Sin)},
	{Entry{"cos", "", "f(x) = cos(x)"}, fixed(math.Cos)},
	{Entry{"exp", "", "f(x) = e^x"}, fixed(math.Exp)},
	{Entry{"sqrt", "", "f(x) = sqrt(x)"}, fixed(math.Sqrt)},
	{Entry{"recip", "", "f(x) = 1/x"}, fixed(func(x float64) float64 { return 1 / x })},
	{Entry{"pow", "p", "f(x) = x^p"}, nParams(1, func(p []float64) F {
		e := p[0]
		return func(x float64) float64 { return math.Pow(x, e) }
	})},
	{Entry{"poly", "c0 c1 ... cn", "f(x) = c0 + c1*x + ... + cn*x^n"}, poly},
}

func fixed(f F) Builder {
	return nParams(0, func([]float64) F { return f })
}

func nParams(n int, mk func(p []float64) F) Builder {
	return func(params []float64) (F, error) {
		if len(params) != n {
			return nil, errs.InvalidArg("expected %d params, got %d", n, len(params))
		}
		return mk(params), nil
	}
}

// poly 以 Horner 法計算多項式
func poly(params []float64) (F, error) {
	if len(params) == 0 {
		return nil, errs.InvalidArg("poly needs at least 1 coefficient")
	}
	cs := append([]float64(nil), params...)
	return func(x float64) float64 {
		acc := 0.0
		for i := len(cs) - 1; i >= 0; i-- {
			acc = acc*x + cs[i]
		}
		return acc
	}, nil
}
