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


package decompose

import (
    `github.com/cloudwego/decomp64/ir`
)

var _LoOps = [...]ir.Oper {
    ir.OpAdd : ir.OpAddLo,
    ir.OpSub : ir.OpSubLo,
    ir.OpAnd : ir.OpAnd,
    ir.OpOr  : ir.OpOr,
    ir.OpXor : ir.OpXor,
}

var _HiOps = [...]ir.Oper {
    ir.OpAdd : ir.OpAddHi,
    ir.OpSub : ir.OpSubHi,
    ir.OpAnd : ir.OpAnd,
    ir.OpOr  : ir.OpOr,
    ir.OpXor : ir.OpXor,
}

func loOper(op ir.Oper) ir.Oper {
    if int(op) >= len(_LoOps) || _LoOps[op] == ir.OpNone {
        invariant(nil, "no low half for %s", op)
    }
    return _LoOps[op]
}

func hiOper(op ir.Oper) ir.Oper {
    if int(op) >= len(_HiOps) || _HiOps[op] == ir.OpNone {
        invariant(nil, "no high half for %s", op)
    }
    return _HiOps[op]
}
