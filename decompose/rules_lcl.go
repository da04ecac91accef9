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

func (self *Decomposer) decomposeLclVar(use *ir.Use) {
    node := use.Def()
    v := self.lvs.Get(node.Lcl)
    self.decRef(node)

    /* load the two halves */
    var hi *ir.Node
    if v.Promoted {
        node.Lcl = v.FieldStart
        node.Type = ir.TypeInt
        hi = self.m.NewLclVar(v.FieldStart + 1, ir.TypeInt)
    } else {
        node.Op = ir.OpLclFld
        node.Offs = 0
        node.Type = ir.TypeInt
        hi = self.m.NewLclFld(v.Num, ir.TypeInt, 4)
    }

    /* one reference for each half */
    self.lvs.IncRefCnts(node, self.weight)
    self.lvs.IncRefCnts(hi, self.weight)
    self.cur.InsertAfter(node, hi)
    self.FinalizeDecomposition(use, node, hi)
}

func (self *Decomposer) decomposeLclFld(use *ir.Use) {
    node := use.Def()

    /* the whole of a promoted local is just the local itself */
    if self.lvs.Get(node.Lcl).Promoted {
        if node.Offs != 0 {
            invariant(node, "64-bit field at offset %d of a promoted local", node.Offs)
        }
        node.Op = ir.OpLclVar
        self.decomposeLclVar(use)
        return
    }

    /* load the high half right after the low half */
    hi := self.m.NewLclFld(node.Lcl, ir.TypeInt, node.Offs + 4)
    node.Type = ir.TypeInt
    self.lvs.IncRefCnts(hi, self.weight)
    self.cur.InsertAfter(node, hi)
    self.FinalizeDecomposition(use, node, hi)
}

func (self *Decomposer) decomposeStoreLclVar(use *ir.Use) {
    node := use.Def()
    rhs := node.X

    /* these are stored by the code generator as they are */
    switch rhs.Op {
        case ir.OpPhi: {
            return
        }
        case ir.OpCall, ir.OpMulLong: {
            assert(self.lvs.Get(node.Lcl).MultiRegRet, node, "register pair stored to a local that cannot hold it")
            return
        }
    }

    /* split the value */
    v := self.lvs.Get(node.Lcl)
    jn := join(node, rhs)
    lo, hi := jn.X, jn.Y
    self.remove(jn)
    self.decRef(node)

    /* the low half reuses the store */
    node.X = lo
    node.Type = ir.TypeInt
    eff := node.Flags & ir.FlagAllEffect

    /* store both halves */
    var st *ir.Node
    if v.Promoted {
        node.Lcl = v.FieldStart
        st = self.m.NewStoreLclVar(v.FieldStart + 1, ir.TypeInt, hi)
    } else {
        node.Op = ir.OpStoreLclFld
        node.Offs = 0
        node.Flags &^= ir.FlagVarDef
        st = self.m.NewStoreLclFld(v.Num, ir.TypeInt, 4, hi)
    }

    /* the high store keeps the side effects of the original */
    st.Flags |= eff
    self.lvs.IncRefCnts(node, self.weight)
    self.lvs.IncRefCnts(st, self.weight)
    self.cur.InsertAfter(node, st)
}
