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

func (self *Decomposer) decomposeCast(use *ir.Use) {
    node := use.Def()

    /* widening multiplies strip the conversions themselves */
    if !use.IsDummyUse() && use.User().Op == ir.OpMul && use.User().Flags.Has(ir.FlagMul64Result) {
        return
    }

    /* dispatch by the width of the source */
    if node.X.Type.IsLong() {
        self.decomposeLongToLong(use)
    } else {
        self.decomposeIntToLong(use)
    }
}

func (self *Decomposer) decomposeLongToLong(use *ir.Use) {
    node := use.Def()
    jn := join(node, node.X)

    /* same signedness never overflows, the conversion is a no-op */
    if !node.Flags.Has(ir.FlagOverflow) || node.Flags.Has(ir.FlagUnsigned) == node.CastTo.IsUnsigned() {
        if use.IsDummyUse() {
            jn.SetUnusedValue()
        } else {
            use.ReplaceWith(jn)
        }
        self.remove(node)
        return
    }

    /* only the sign of the high word needs to be checked, an int -> uint
     * conversion of the high word does exactly that */
    lo, hi := jn.X, jn.Y
    self.remove(jn)
    node.X = hi
    node.Type = ir.TypeInt
    node.CastTo = ir.TypeUInt
    node.Flags &^= ir.FlagUnsigned
    self.FinalizeDecomposition(use, lo, node)
}

func (self *Decomposer) decomposeIntToLong(use *ir.Use) {
    node := use.Def()
    ovf := node.Flags.Has(ir.FlagOverflow)
    uns := node.Flags.Has(ir.FlagUnsigned)

    /* checked signed int -> ulong, only negative values fail */
    if ovf && !uns && node.CastTo.IsUnsigned() {
        zero := self.m.NewIconNode(0)
        node.Type = ir.TypeInt
        node.CastTo = ir.TypeUInt
        self.cur.InsertAfter(node, zero)
        self.FinalizeDecomposition(use, node, zero)
        return
    }

    /* zero extension */
    if uns {
        lo := node.X
        zero := self.m.NewIconNode(0)
        self.cur.InsertAfter(node, zero)
        self.remove(node)
        self.FinalizeDecomposition(use, lo, zero)
        return
    }

    /* sign extension, the high word is the sign of the low word */
    su := self.operandUse(&node.X, node)
    tmp := self.replaceWithLclVar(&su)
    lo := node.X

    /* hi = lo >> 31 */
    cp := self.m.NewLclVar(tmp, ir.TypeInt)
    sh := self.m.NewIconNode(31)
    hi := self.m.NewOperNode(ir.OpRsh, ir.TypeInt, cp, sh)
    self.lvs.IncRefCnts(cp, self.weight)
    self.cur.InsertAfter(node, cp, sh, hi)
    self.remove(node)
    self.FinalizeDecomposition(use, lo, hi)
}

// decomposeNarrowingCast rebinds an unchecked 64 -> 32 bit conversion to the
// low half of its operand. Checked conversions keep the whole value since
// the high word takes part in the range check.
func (self *Decomposer) decomposeNarrowingCast(node *ir.Node) {
    if node.Flags.Has(ir.FlagOverflow) {
        return
    }

    /* only the low word survives */
    jn := node.X
    lo, hi := jn.X, jn.Y
    node.X = lo
    self.remove(jn)

    /* drop the high word when it is free to do so */
    if hi.Op.IsLeaf() {
        self.decRef(hi)
        self.remove(hi)
    } else {
        hi.SetUnusedValue()
    }
}
