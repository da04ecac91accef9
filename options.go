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
	"fmt"

	"github.com/cloudwego/decomp64/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithCheckRange controls whether every range is validated after it has been
// decomposed. A malformed range is reported as an InvariantError.
//
// The default value of this option is "true".
func WithCheckRange(v bool) Option {
	return func(o *opts.Options) { o.CheckRange = v }
}

// WithMaxTemps limits the number of temporaries a single method may allocate
// while being decomposed. Exceeding the limit is reported as a TempLimitError.
//
// Set this option to "0" disables this limit.
//
// The default value of this option is "0".
func WithMaxTemps(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("decomp64: invalid temporary limit: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxTemps = n }
	}
}

// SetCheckRange sets the default range validation for all methods from now on.
//
// This value can also be configured with the `DECOMP64_CHECK_RANGE`
// environment variable.
//
// Returns the old opts.CheckRange value.
func SetCheckRange(v bool) bool {
	v, opts.CheckRange = opts.CheckRange, v
	return v
}

// SetMaxTemps sets the default temporary limit for all methods from now on.
//
// This value can also be configured with the `DECOMP64_MAX_TEMPS`
// environment variable.
//
// Returns the old opts.MaxTemps value.
func SetMaxTemps(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("decomp64: invalid temporary limit: %d", n))
	}
	n, opts.MaxTemps = opts.MaxTemps, n
	return n
}
