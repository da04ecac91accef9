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

// spillAddress evaluates the address operand of node once into a temporary
// and returns a fresh load of it, addressing the high word.
func (self *Decomposer) spillAddress(node *ir.Node) *ir.Node {
    vt := node.X.Type
    au := self.operandUse(&node.X, node)
    tmp := self.replaceWithLclVar(&au)

    /* reload the address for the high word */
    base := self.m.NewLclVar(tmp, vt)
    self.lvs.IncRefCnts(base, self.weight)
    return base
}

func (self *Decomposer) decomposeInd(use *ir.Use) {
    node := use.Def()
    base := self.spillAddress(node)

    /* the high word lives 4 bytes above the low word */
    lea := self.m.NewLea(base, 4)
    hi := self.m.NewInd(ir.TypeInt, lea)
    hi.Flags |= node.Flags & ir.FlagAllEffect

    /* the low word reuses the load */
    node.Type = ir.TypeInt
    self.cur.InsertAfter(node, base, lea, hi)
    self.FinalizeDecomposition(use, node, hi)
}

func (self *Decomposer) decomposeStoreInd(use *ir.Use) {
    node := use.Def()
    jn := join(node, node.Y)
    base := self.spillAddress(node)

    /* halves that may change across the low store are evaluated into temporaries */
    if !self.isStableLeaf(jn.X) {
        lu := self.operandUse(&jn.X, jn)
        self.replaceWithLclVar(&lu)
    }
    if !self.isStableLeaf(jn.Y) {
        hu := self.operandUse(&jn.Y, jn)
        self.replaceWithLclVar(&hu)
    }

    /* the high half is moved after the low store */
    lo, hi := jn.X, jn.Y
    self.remove(jn)
    self.remove(hi)

    /* the low word reuses the store */
    node.Y = lo
    node.Type = ir.TypeInt

    /* store the high word 4 bytes above */
    lea := self.m.NewLea(base, 4)
    st := self.m.NewStoreInd(ir.TypeInt, lea, hi)
    st.Flags = node.Flags & (ir.FlagAllEffect | ir.FlagLivenessMask)
    self.cur.InsertAfter(node, hi, base, lea, st)
}

// isStableLeaf reports whether node can be moved after a store to memory.
// Loads of address exposed locals may alias the store and are not.
func (self *Decomposer) isStableLeaf(node *ir.Node) bool {
    if !node.Op.IsLeaf() {
        return false
    } else {
        return !node.Op.IsLocal() || !self.isAddressExposed(node.Lcl)
    }
}
