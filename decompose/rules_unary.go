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

func (self *Decomposer) decomposeCnsLng(use *ir.Use) {
    node := use.Def()
    hi := self.m.NewIconNode(node.Iv >> 32)

    /* the constant itself keeps the low word */
    node.Op = ir.OpCnsInt
    node.Type = ir.TypeInt
    node.Iv = int64(int32(node.Iv))
    self.cur.InsertAfter(node, hi)
    self.FinalizeDecomposition(use, node, hi)
}

func (self *Decomposer) decomposeNot(use *ir.Use) {
    node := use.Def()
    jn := join(node, node.X)
    lo, hi := jn.X, jn.Y
    self.remove(jn)

    /* complement both halves */
    node.X = lo
    node.Type = ir.TypeInt
    hn := self.m.NewOperNode(ir.OpNot, ir.TypeInt, hi, nil)
    self.cur.InsertAfter(node, hn)
    self.FinalizeDecomposition(use, node, hn)
}

// decomposeNeg computes the high word as -(hi + carry), where the carry is
// set by negating a non-zero low word.
func (self *Decomposer) decomposeNeg(use *ir.Use) {
    node := use.Def()
    jn := join(node, node.X)

    /* both halves are evaluated into temporaries */
    lu := self.operandUse(&jn.X, jn)
    self.replaceWithLclVar(&lu)
    hu := self.operandUse(&jn.Y, jn)
    self.replaceWithLclVar(&hu)

    /* negation has no side effects of its own */
    lo, hi := jn.X, jn.Y
    node.Flags &^= ir.FlagAllEffect
    self.remove(jn)

    /* negate the low word */
    node.X = lo
    node.Type = ir.TypeInt

    /* propagate the borrow into the high word */
    zero := self.m.NewIconNode(0)
    adj := self.m.NewOperNode(ir.OpAddHi, ir.TypeInt, hi, zero)
    hn := self.m.NewOperNode(ir.OpNeg, ir.TypeInt, adj, nil)
    hn.Flags = node.Flags
    self.cur.InsertAfter(node, zero, adj, hn)
    self.FinalizeDecomposition(use, node, hn)
}

func (self *Decomposer) decomposeReturn(use *ir.Use) {
    join(use.Def(), use.Def().X)
}
