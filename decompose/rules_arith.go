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
    `github.com/cloudwego/decomp64/internal/abi`
    `github.com/cloudwego/decomp64/ir`
)

func (self *Decomposer) decomposeArith(use *ir.Use) {
    node := use.Def()
    op := node.Op
    j1 := join(node, node.X)
    j2 := join(node, node.Y)

    /* the joins are no longer needed */
    self.remove(j1)
    self.remove(j2)

    /* the low half reuses the node */
    node.Op = loOper(op)
    node.X = j1.X
    node.Y = j2.X
    node.Type = ir.TypeInt

    /* the high half consumes the carry of the low half */
    hi := self.m.NewOperNode(hiOper(op), ir.TypeInt, j1.Y, j2.Y)
    self.cur.InsertAfter(node, hi)

    /* overflow checking and signedness only matter for the high half */
    if op == ir.OpAdd || op == ir.OpSub {
        if node.Flags.Has(ir.FlagOverflow) {
            hi.Flags |= ir.FlagOverflow | ir.FlagExcept
            node.Flags &^= ir.FlagOverflow | ir.FlagExcept
        }
        if node.Flags.Has(ir.FlagUnsigned) {
            hi.Flags |= ir.FlagUnsigned
            node.Flags &^= ir.FlagUnsigned
        }
    }

    /* join the halves */
    self.FinalizeDecomposition(use, node, hi)
}

func (self *Decomposer) decomposeMul(use *ir.Use) {
    node := use.Def()

    /* general multiply goes through the runtime */
    if !node.Flags.Has(ir.FlagMul64Result) {
        switch ovf, uns := node.Flags.Has(ir.FlagOverflow), node.Flags.Has(ir.FlagUnsigned); {
            case !ovf : self.decomposeHelper(use, abi.HelperLMul)
            case uns  : self.decomposeHelper(use, abi.HelperULMulOvf)
            default   : self.decomposeHelper(use, abi.HelperLMulOvf)
        }
        return
    }

    /* both operands must be extended the same way */
    cx, cy := node.X, node.Y
    for _, cv := range []*ir.Node { cx, cy } {
        if cv.Op != ir.OpCast || cv.X.Type.IsLong() {
            invariant(node, "widening multiply of t%d which is not a widened 32-bit value", cv.Id)
        }
    }
    if uns := cx.Flags.Has(ir.FlagUnsigned); uns != cy.Flags.Has(ir.FlagUnsigned) {
        invariant(node, "widening multiply of a sign and a zero extended value")
    } else if uns {
        node.Flags |= ir.FlagUnsigned
    } else {
        node.Flags &^= ir.FlagUnsigned
    }

    /* strip the conversions, the product is computed on the 32-bit values */
    node.X, node.Y = cx.X, cy.X
    self.remove(cx)
    self.remove(cy)

    /* the result is produced in a register pair */
    node.Op = ir.OpMulLong
    node.Flags &^= ir.FlagOverflow | ir.FlagExcept
    self.storeNodeToVar(use)
}

var _DivModHelpers = map[ir.Oper]abi.Helper {
    ir.OpDiv  : abi.HelperLDiv,
    ir.OpMod  : abi.HelperLMod,
    ir.OpUDiv : abi.HelperULDiv,
    ir.OpUMod : abi.HelperULMod,
}

func (self *Decomposer) decomposeDivMod(use *ir.Use) {
    self.decomposeHelper(use, _DivModHelpers[use.Def().Op])
}

// decomposeShift passes the value pair and the shift count to a runtime
// helper. The count is a 32-bit value.
func (self *Decomposer) decomposeShift(use *ir.Use) {
    switch use.Def().Op {
        case ir.OpLsh : self.decomposeHelper(use, abi.HelperLLsh)
        case ir.OpRsh : self.decomposeHelper(use, abi.HelperLRsh)
        default       : self.decomposeHelper(use, abi.HelperLRsz)
    }
}

// decomposeHelper replaces the node with a call to helper h. Every argument
// is turned into a local load and moved right before the call, the result is
// then decomposed like any other call result.
func (self *Decomposer) decomposeHelper(use *ir.Use, h abi.Helper) {
    var args []*ir.Node
    node := use.Def()

    /* gather the arguments, value pairs are passed low word first */
    for _, e := range node.Operands() {
        if v := *e; v.Op != ir.OpLong {
            args = append(args, self.representAsLocal(e, node, node))
        } else {
            args = append(args, self.representAsLocal(&v.X, v, node), self.representAsLocal(&v.Y, v, node))
            self.remove(v)
        }
    }

    /* check against the helper signature */
    if len(args) != h.Argc() {
        invariant(node, "%d arguments for helper %s", len(args), h)
    }

    /* sequence the arguments right before the call */
    for _, v := range args {
        self.remove(v)
    }

    /* build the call */
    call := self.m.NewHelperCall(h, ir.TypeLong, args...)
    call.Flags |= node.Flags & ir.FlagAllEffect
    count(&HelperCount)

    /* nobody consumes the result */
    if use.IsDummyUse() {
        call.SetUnusedValue()
    }

    /* replace the node, the call gets visited next */
    self.cur.InsertAfter(node, append(args, call)...)
    self.remove(node)
    use.ReplaceWith(call)
}

// representAsLocal makes sure the operand at *edge is a load of a local that
// is not written before end, spilling it into a temporary otherwise.
func (self *Decomposer) representAsLocal(edge **ir.Node, user *ir.Node, end *ir.Node) *ir.Node {
    if v := *edge; v.Op == ir.OpLclVar && !self.isWrittenBetween(v, end) {
        return v
    }

    /* spill it */
    u := self.operandUse(edge, user)
    self.replaceWithLclVar(&u)
    return *edge
}

// isWrittenBetween reports whether the local read by load may be written
// after load and before end. Address exposed locals may also be written
// through memory or by a call.
func (self *Decomposer) isWrittenBetween(load *ir.Node, end *ir.Node) bool {
    exp := self.isAddressExposed(load.Lcl)
    for p := load.Next(); p != nil && p != end; p = p.Next() {
        switch {
            case p.Op.IsLocalStore() && self.aliases(p.Lcl, load.Lcl) : return true
            case exp && (p.Op == ir.OpStoreInd || p.Op == ir.OpCall)  : return true
        }
    }
    return false
}

func (self *Decomposer) isAddressExposed(lcl int) bool {
    v := self.lvs.Get(lcl)
    if v.IsStructField {
        v = self.lvs.Get(v.Parent)
    }
    return v.DoNotEnregister
}

func (self *Decomposer) aliases(a int, b int) bool {
    va := self.lvs.Get(a)
    vb := self.lvs.Get(b)

    /* resolve to the outermost locals */
    if va.IsStructField { a = va.Parent }
    if vb.IsStructField { b = vb.Parent }
    return a == b
}
