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
    `context`

    `github.com/cloudwego/decomp64/internal/opts`
    `github.com/cloudwego/decomp64/ir`
    `github.com/oleiade/lane`
    `tlog.app/go/tlog`
)

// Decomposer rewrites every 64-bit integer operation of a method into pairs
// of 32-bit operations. A Decomposer serves a single method and is not safe
// for concurrent use.
type Decomposer struct {
    m      *ir.Method
    lvs    *ir.LclVarTable
    tr     tlog.Span
    opts   opts.Options
    cur    *ir.Cursor
    weight uint32
    temps  int
}

// New creates a Decomposer for m with the default options. Logs go to the
// span carried by ctx.
func New(ctx context.Context, m *ir.Method) *Decomposer {
    return NewWithOptions(ctx, m, opts.GetDefaultOptions())
}

func NewWithOptions(ctx context.Context, m *ir.Method, o opts.Options) *Decomposer {
    return &Decomposer {
        m    : m,
        lvs  : m.Locals,
        tr   : tlog.SpanFromContext(ctx),
        opts : o,
    }
}

// PrepareForDecomposition promotes every eligible 64-bit local into a pair
// of 32-bit locals. Locals receiving a call result or a widening multiply
// directly keep their two-register form and are not promoted.
func (self *Decomposer) PrepareForDecomposition() {
    self.m.RecomputeRefCounts()

    /* find the locals that receive register pairs */
    for _, bb := range self.m.Blocks {
        for p := bb.Range.FirstNode(); p != nil; p = p.Next() {
            if p.Op == ir.OpStoreLclVar && p.Type.IsLong() && isMultiRegProducer(p.X) {
                self.lvs.Get(p.Lcl).MultiRegRet = true
            }
        }
    }

    /* split the remaining ones */
    self.lvs.PromoteLongVars()
    count(&MethodCount)
}

func isMultiRegProducer(p *ir.Node) bool {
    switch p.Op {
        case ir.OpCall    : return true
        case ir.OpMulLong : return true
        case ir.OpMul     : return p.Flags.Has(ir.FlagMul64Result)
        default           : return false
    }
}

// DecomposeMethod decomposes every block of the method in order.
func (self *Decomposer) DecomposeMethod() {
    q := lane.NewQueue()
    for _, bb := range self.m.Blocks {
        q.Enqueue(bb)
    }
    for !q.Empty() {
        self.DecomposeBlock(q.Dequeue().(*ir.BasicBlock))
    }
}

// DecomposeBlock decomposes the range of bb, weighting new references with
// the execution weight of the block.
func (self *Decomposer) DecomposeBlock(bb *ir.BasicBlock) {
    if self.tr.If("decompose") {
        self.tr.Printw("decompose block", "method", self.m.Name, "block", bb.Id, "weight", bb.Weight)
    }
    self.DecomposeRange(bb.Weight, &bb.Range)
}

// DecomposeRange decomposes a range that was inserted into a method after
// the method itself has been decomposed. The local references of the
// inserted nodes must already be counted with weight.
func DecomposeRange(ctx context.Context, m *ir.Method, weight uint32, rng *ir.Range) {
    New(ctx, m).DecomposeRange(weight, rng)
}

// DecomposeRange decomposes rng alone. New local references are weighted
// with weight.
func (self *Decomposer) DecomposeRange(weight uint32, rng *ir.Range) {
    self.weight = weight
    self.cur = ir.NewCursor(rng, rng.FirstNonPhiNode())

    /* visit every node, including the ones inserted along the way */
    for self.cur.Next() {
        self.decomposeNode(self.cur.Node())
    }

    /* the rewritten range must still be well formed */
    if self.opts.CheckRange {
        if err := rng.Check(); err != nil {
            invariant(nil, "malformed range after decomposition: %v", err)
        }
    }

    /* dump the result */
    if self.tr.If("decompose") {
        self.tr.Printw("decomposed range", "range", rng.String())
    }
}

func (self *Decomposer) decomposeNode(node *ir.Node) {
    if self.isImplicitLowHalf(node) {
        self.redirectLowHalf(node)
        return
    }

    /* narrowing conversions may drop the high half */
    if node.Op == ir.OpCast && !node.Type.IsLong() && node.X.Op == ir.OpLong {
        self.decomposeNarrowingCast(node)
        return
    }

    /* only true 64-bit values are decomposed, joins are already done */
    if !node.Type.IsLong() || node.Op == ir.OpLong {
        return
    }

    /* find out who consumes the value */
    use, ok := self.cur.Range().TryGetUse(node)
    if !ok {
        use = ir.DummyUse(self.cur.Range(), node)
    }

    /* log the node being decomposed */
    if self.tr.If("decompose") {
        self.tr.Printw("decompose node", "node", node.String(), "dummy", use.IsDummyUse())
    }

    /* dispatch by operator */
    count(&NodeCount)
    switch node.Op {
        case ir.OpLclVar                                     : self.decomposeLclVar(&use)
        case ir.OpLclFld                                     : self.decomposeLclFld(&use)
        case ir.OpStoreLclVar                                : self.decomposeStoreLclVar(&use)
        case ir.OpInd                                        : self.decomposeInd(&use)
        case ir.OpStoreInd                                   : self.decomposeStoreInd(&use)
        case ir.OpCnsLng                                     : self.decomposeCnsLng(&use)
        case ir.OpCast                                       : self.decomposeCast(&use)
        case ir.OpAdd, ir.OpSub, ir.OpAnd, ir.OpOr, ir.OpXor : self.decomposeArith(&use)
        case ir.OpMul                                        : self.decomposeMul(&use)
        case ir.OpDiv, ir.OpMod, ir.OpUDiv, ir.OpUMod        : self.decomposeDivMod(&use)
        case ir.OpLsh, ir.OpRsh, ir.OpRsz                    : self.decomposeShift(&use)
        case ir.OpNeg                                        : self.decomposeNeg(&use)
        case ir.OpNot                                        : self.decomposeNot(&use)
        case ir.OpCall, ir.OpMulLong                         : self.storeNodeToVar(&use)
        case ir.OpReturn                                     : self.decomposeReturn(&use)
        case ir.OpPhi, ir.OpPhiArg                           : break
        case ir.OpMulHi                                      : notImplemented(node.Op, "64-bit multiply high")
        case ir.OpRol, ir.OpRor                              : notImplemented(node.Op, "64-bit rotate")
        case ir.OpLockAdd, ir.OpXAdd, ir.OpXchg, ir.OpCmpXchg : notImplemented(node.Op, "64-bit interlocked operation")
        case ir.OpStoreLclFld                                : notImplemented(node.Op, "64-bit store to a field of a local")
        default                                              : invariant(node, "unexpected 64-bit node")
    }
}

// isImplicitLowHalf matches 32-bit accesses to promoted 64-bit locals. Such a
// reference only ever means one of the halves.
func (self *Decomposer) isImplicitLowHalf(node *ir.Node) bool {
    switch {
        case node.Type.IsLong()                              : return false
        case node.Op != ir.OpLclVar && !isLclFldAccess(node) : return false
        default                                              : return self.lvs.Is64(node.Lcl) && self.lvs.Get(node.Lcl).Promoted
    }
}

func isLclFldAccess(node *ir.Node) bool {
    return node.Op == ir.OpLclFld || node.Op == ir.OpStoreLclFld
}

func (self *Decomposer) redirectLowHalf(node *ir.Node) {
    v := self.lvs.Get(node.Lcl)
    self.decRef(node)

    /* pick the half being referenced */
    switch node.Offs {
        case 0  : node.Lcl = v.FieldStart
        case 4  : node.Lcl = v.FieldStart + 1
        default : invariant(node, "field offset %d is not a half of V%02d", node.Offs, v.Num)
    }

    /* field accesses become plain accesses of the half */
    switch node.Op {
        case ir.OpLclFld      : node.Op = ir.OpLclVar
        case ir.OpStoreLclFld : node.Op = ir.OpStoreLclVar
    }

    /* account for the new reference */
    node.Offs = 0
    self.lvs.IncRefCnts(node, self.weight)
}

// decRef drops the reference of node to its local. Ranges handed to the pass
// must already be ref-counted, a reference that was never counted is fatal.
func (self *Decomposer) decRef(node *ir.Node) {
    if node.Op.IsLocal() && self.lvs.Get(node.Lcl).RefCnt <= 0 {
        invariant(node, "reference to V%02d was never counted", node.Lcl)
    }
    self.lvs.DecRefCnts(node, self.weight)
}

// remove unlinks a node from the range being walked.
func (self *Decomposer) remove(node *ir.Node) {
    self.cur.Remove(node)
}

// replaceWithLclVar spills the def of use into a fresh temporary.
func (self *Decomposer) replaceWithLclVar(use *ir.Use) int {
    if !self.opts.CanGrabTemp(self.temps) {
        panic(&TempLimitError { Limit: self.opts.MaxTemps })
    }

    /* grab the temporary */
    self.temps++
    count(&TempCount)
    return use.ReplaceWithLocalVariable(self.m, self.weight)
}

// operandUse describes the operand slot edge of user.
func (self *Decomposer) operandUse(edge **ir.Node, user *ir.Node) ir.Use {
    return ir.NewUse(self.cur.Range(), edge, user)
}

// join returns the join node at *edge, failing if the operand has not been
// decomposed yet.
func join(node *ir.Node, edge *ir.Node) *ir.Node {
    if edge == nil || edge.Op != ir.OpLong {
        invariant(node, "operand is not a decomposed 64-bit value")
    }
    return edge
}
