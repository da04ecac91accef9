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


package debug

import (
	"sync/atomic"

	"github.com/cloudwego/decomp64/decompose"
)

// A Stats records statistics about the decomposition pass.
type Stats struct {
	Methods int
	Nodes   int
	Joins   int
	Temps   int
	Helpers int
}

// GetStats returns statistics of the decomposition pass since the process
// started.
func GetStats() Stats {
	return Stats{
		Methods: int(atomic.LoadUint64(&decompose.MethodCount)),
		Nodes:   int(atomic.LoadUint64(&decompose.NodeCount)),
		Joins:   int(atomic.LoadUint64(&decompose.JoinCount)),
		Temps:   int(atomic.LoadUint64(&decompose.TempCount)),
		Helpers: int(atomic.LoadUint64(&decompose.HelperCount)),
	}
}
