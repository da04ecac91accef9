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


package opts

import (
	"os"
	"strconv"
)

const (
	_DefaultCheckRange = 1 // verify every range after it has been rewritten
	_DefaultMaxTemps   = 0 // no limit on temporaries per method
)

var (
	CheckRange = parseOrDefault("DECOMP64_CHECK_RANGE", _DefaultCheckRange, 0, 1) != 0
	MaxTemps   = parseOrDefault("DECOMP64_MAX_TEMPS", _DefaultMaxTemps, 0, 1<<20)
)

func parseOrDefault(key string, def int, min int, max int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("decomp64: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("decomp64: value too small for " + key)
	} else if ret > max {
		panic("decomp64: value too large for " + key)
	} else {
		return ret
	}
}
