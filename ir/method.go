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
    `fmt`
    `strings`

    `github.com/cloudwego/decomp64/internal/abi`
)

// UnityWeight is the weight of a block executed once per method invocation.
const UnityWeight = 100

type BasicBlock struct {
    Id     int
    Weight uint32
    Range  Range
}

// Method is the unit of compilation: a symbol table and the blocks of the
// method body, each holding its own range.
type Method struct {
    Name   string
    Locals *LclVarTable
    Blocks []*BasicBlock
    nextId int
}

func NewMethod(name string) *Method {
    return &Method {
        Name   : name,
        Locals : NewLclVarTable(),
        nextId : 1,
    }
}

// NewBlock appends an empty block with the given execution weight.
func (self *Method) NewBlock(weight uint32) *BasicBlock {
    bb := &BasicBlock {
        Id     : len(self.Blocks),
        Weight : weight,
    }
    self.Blocks = append(self.Blocks, bb)
    return bb
}

// RecomputeRefCounts recounts every local reference from scratch.
func (self *Method) RecomputeRefCounts() {
    for i := 0; i < self.Locals.Len(); i++ {
        v := self.Locals.Get(i)
        v.RefCnt, v.RefCntWtd = 0, 0
    }
    for _, bb := range self.Blocks {
        for p := bb.Range.FirstNode(); p != nil; p = p.Next() {
            self.Locals.IncRefCnts(p, bb.Weight)
        }
    }
}

func (self *Method) String() string {
    buf := []string { fmt.Sprintf("method %s:", self.Name) }
    for i := 0; i < self.Locals.Len(); i++ {
        buf = append(buf, "  " + self.Locals.Get(i).String())
    }
    for _, bb := range self.Blocks {
        buf = append(buf, fmt.Sprintf("bb_%d (weight %d):", bb.Id, bb.Weight))
        for p := bb.Range.FirstNode(); p != nil; p = p.Next() {
            buf = append(buf, "    " + p.String())
        }
    }
    return strings.Join(buf, "\n")
}

func (self *Method) newNode(op Oper, vt Type) *Node {
    p := &Node { Id: self.nextId, Op: op, Type: vt }
    self.nextId++
    return p
}

func effects(nodes ...*Node) (f Flags) {
    for _, p := range nodes {
        if p != nil {
            f |= p.Flags & FlagAllEffect
        }
    }
    return
}

func (self *Method) NewLclVar(lcl int, vt Type) *Node {
    p := self.newNode(OpLclVar, vt)
    p.Lcl = lcl
    return p
}

func (self *Method) NewLclFld(lcl int, vt Type, offs int) *Node {
    p := self.newNode(OpLclFld, vt)
    p.Lcl = lcl
    p.Offs = offs
    return p
}

func (self *Method) NewStoreLclVar(lcl int, vt Type, x *Node) *Node {
    p := self.newNode(OpStoreLclVar, vt)
    p.X = x
    p.Lcl = lcl
    p.Flags = FlagAssign | FlagVarDef | effects(x)
    return p
}

func (self *Method) NewStoreLclFld(lcl int, vt Type, offs int, x *Node) *Node {
    p := self.newNode(OpStoreLclFld, vt)
    p.X = x
    p.Lcl = lcl
    p.Offs = offs
    p.Flags = FlagAssign | effects(x)
    return p
}

func (self *Method) NewPhiArg(lcl int, vt Type) *Node {
    p := self.newNode(OpPhiArg, vt)
    p.Lcl = lcl
    return p
}

func (self *Method) NewPhi(vt Type, args ...*Node) *Node {
    p := self.newNode(OpPhi, vt)
    p.Args = args
    return p
}

// NewIconNode creates a 32-bit integer constant; only the low 32 bits of v are kept.
func (self *Method) NewIconNode(v int64) *Node {
    p := self.newNode(OpCnsInt, TypeInt)
    p.Iv = int64(int32(v))
    return p
}

func (self *Method) NewLconNode(v int64) *Node {
    p := self.newNode(OpCnsLng, TypeLong)
    p.Iv = v
    return p
}

// NewOperNode creates a unary (y == nil) or binary operator node.
func (self *Method) NewOperNode(op Oper, vt Type, x *Node, y *Node) *Node {
    p := self.newNode(op, vt)
    p.X = x
    p.Y = y
    p.Flags = effects(x, y)

    /* division may fault */
    switch op {
        case OpDiv, OpMod, OpUDiv, OpUMod: p.Flags |= FlagExcept
    }
    return p
}

// NewCastNode converts x to castTo. unsigned treats the source as unsigned,
// overflow makes the conversion checked.
func (self *Method) NewCastNode(castTo Type, x *Node, unsigned bool, overflow bool) *Node {
    p := self.newNode(OpCast, castTo.Actual())
    p.X = x
    p.CastTo = castTo
    p.Flags = effects(x)

    /* unsigned source */
    if unsigned {
        p.Flags |= FlagUnsigned
    }

    /* checked conversion */
    if overflow {
        p.Flags |= FlagOverflow | FlagExcept
    }
    return p
}

func (self *Method) NewLea(base *Node, offs int) *Node {
    p := self.newNode(OpLea, TypeRef)
    p.X = base
    p.Offs = offs
    p.Flags = effects(base)
    return p
}

func (self *Method) NewInd(vt Type, addr *Node) *Node {
    p := self.newNode(OpInd, vt)
    p.X = addr
    p.Flags = FlagExcept | FlagGlobRef | effects(addr)
    return p
}

func (self *Method) NewStoreInd(vt Type, addr *Node, data *Node) *Node {
    p := self.newNode(OpStoreInd, vt)
    p.X = addr
    p.Y = data
    p.Flags = FlagAssign | FlagExcept | FlagGlobRef | effects(addr, data)
    return p
}

// NewCall creates a call to an ordinary method.
func (self *Method) NewCall(name string, vt Type, args ...*Node) *Node {
    p := self.newCall(&CallTarget { Name: name }, vt, args)
    p.Flags |= FlagGlobRef
    return p
}

// NewHelperCall creates a call to a runtime helper returning vt.
func (self *Method) NewHelperCall(h abi.Helper, vt Type, args ...*Node) *Node {
    p := self.newCall(&CallTarget { Helper: h }, vt, args)

    /* checked helpers may throw */
    if h.Layout().Throws {
        p.Flags |= FlagExcept
    }
    return p
}

func (self *Method) newCall(fn *CallTarget, vt Type, args []*Node) *Node {
    p := self.newNode(OpCall, vt)
    p.Fn = fn
    p.Args = args
    p.Flags = FlagCall | effects(args...)

    /* 64-bit results come back in a register pair */
    if vt.IsLong() {
        p.Flags |= FlagMultiRegRet
    }
    return p
}

// NewReturn creates a return of x, or of nothing when x is nil. The node
// carries the type of the returned value.
func (self *Method) NewReturn(x *Node) *Node {
    vt := TypeVoid
    if x != nil {
        vt = x.Type
    }

    /* create the node */
    p := self.newNode(OpReturn, vt)
    p.X = x
    p.Flags = effects(x)
    return p
}

// NewLong joins the two halves of a decomposed 64-bit value.
func (self *Method) NewLong(lo *Node, hi *Node) *Node {
    p := self.newNode(OpLong, TypeLong)
    p.X = lo
    p.Y = hi
    return p
}
