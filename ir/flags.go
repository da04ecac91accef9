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


package ir

import (
    `strings`
)

type Flags uint32

const (
    FlagAssign Flags = 1 << iota    // writes a local or memory
    FlagCall                        // contains a call
    FlagExcept                      // may throw
    FlagGlobRef                     // reads or writes global memory
    FlagOverflow                    // checked arithmetic or cast
    FlagUnsigned                    // unsigned operation / unsigned cast source
    FlagVarDef                      // full definition of a local
    FlagMul64Result                 // widening multiply, 32 x 32 -> 64
    FlagUnusedValue                 // value produced but never consumed
    FlagMultiRegRet                 // result returned in a register pair
)

const (
    FlagAllEffect    = FlagAssign | FlagCall | FlagExcept | FlagGlobRef
    FlagLivenessMask = FlagVarDef
)

var _FlagNames = [...]struct {
    f Flags
    s string
} {
    { FlagAssign      , "asg" },
    { FlagCall        , "call" },
    { FlagExcept      , "exc" },
    { FlagGlobRef     , "glob" },
    { FlagOverflow    , "ovf" },
    { FlagUnsigned    , "uns" },
    { FlagVarDef      , "def" },
    { FlagMul64Result , "mul64" },
    { FlagUnusedValue , "unused" },
    { FlagMultiRegRet , "multireg" },
}

func (self Flags) Has(f Flags) bool {
    return self & f != 0
}

func (self Flags) String() string {
    var buf []string
    for _, v := range _FlagNames {
        if self & v.f != 0 {
            buf = append(buf, v.s)
        }
    }
    return strings.Join(buf, ",")
}
