/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package decomp64

import (
	"context"

	"github.com/cloudwego/decomp64/decompose"
	"github.com/cloudwego/decomp64/internal/opts"
	"github.com/cloudwego/decomp64/ir"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Decompose rewrites every 64-bit integer operation of m into 32-bit
// operations, in place.
//
// Methods the pass cannot handle are reported as errors wrapping one of
// NotImplementedError, InvariantError or TempLimitError. The method is left
// partially decomposed in that case and must be discarded.
func Decompose(ctx context.Context, m *ir.Method, options ...Option) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "decomp64: decompose method", "name", m.Name, "blocks", len(m.Blocks))
	defer tr.Finish("err", &err)
	defer recoverInto(&err, m)

	d := decompose.NewWithOptions(ctx, m, makeOptions(options))
	d.PrepareForDecomposition()
	d.DecomposeMethod()
	return nil
}

// DecomposeRange decomposes a range that was inserted into an already
// decomposed method, weighting new local references with weight.
func DecomposeRange(ctx context.Context, m *ir.Method, weight uint32, rng *ir.Range, options ...Option) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "decomp64: decompose range", "name", m.Name, "weight", weight)
	defer tr.Finish("err", &err)
	defer recoverInto(&err, m)

	d := decompose.NewWithOptions(ctx, m, makeOptions(options))
	d.DecomposeRange(weight, rng)
	return nil
}

func makeOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}

func recoverInto(err *error, m *ir.Method) {
	v := recover()
	if v == nil {
		return
	}

	/* only the errors raised by the pass are turned into return values */
	switch e := v.(type) {
	case *NotImplementedError:
		*err = errors.Wrap(e, "method %v", m.Name)
	case *InvariantError:
		*err = errors.Wrap(e, "method %v", m.Name)
	case *TempLimitError:
		*err = errors.Wrap(e, "method %v", m.Name)
	default:
		panic(v)
	}
}
