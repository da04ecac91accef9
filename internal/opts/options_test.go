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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptions_ParseOrDefault(t *testing.T) {
	t.Setenv("DECOMP64_TEST_OPT", "")
	require.Equal(t, 7, parseOrDefault("DECOMP64_TEST_OPT", 7, 0, 10))
	t.Setenv("DECOMP64_TEST_OPT", "0x8")
	require.Equal(t, 8, parseOrDefault("DECOMP64_TEST_OPT", 7, 0, 10))
	t.Setenv("DECOMP64_TEST_OPT", "11")
	require.Panics(t, func() { parseOrDefault("DECOMP64_TEST_OPT", 7, 0, 10) })
	t.Setenv("DECOMP64_TEST_OPT", "1")
	require.Panics(t, func() { parseOrDefault("DECOMP64_TEST_OPT", 7, 2, 10) })
	t.Setenv("DECOMP64_TEST_OPT", "yes")
	require.Panics(t, func() { parseOrDefault("DECOMP64_TEST_OPT", 7, 0, 10) })
}

func TestOptions_CanGrabTemp(t *testing.T) {
	opts := Options{MaxTemps: 2}
	require.True(t, opts.CanGrabTemp(1))
	require.False(t, opts.CanGrabTemp(2))
	opts.MaxTemps = 0
	require.True(t, opts.CanGrabTemp(1000))
}
