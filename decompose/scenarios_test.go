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
    `math`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/cloudwego/decomp64/internal/abi`
    `github.com/cloudwego/decomp64/internal/emu`
    `github.com/cloudwego/decomp64/ir`
    `github.com/stretchr/testify/require`
)

func TestDecompose_StoreConstantToLocal(t *testing.T) {
    m := build(func(m *ir.Method, bb *ir.BasicBlock) {
        v := longLocal(m, "v")
        c := m.NewLconNode(0x100000002)
        bb.Range.InsertAtEnd(c, m.NewStoreLclVar(v, ir.TypeLong, c))
    })
    decomposeMethod(t, m)
    nodes := m.Blocks[0].Range.Nodes()
    require.Len(t, nodes, 4, m.String())
    require.Equal(t, ir.OpStoreLclVar, nodes[2].Op)
    require.Equal(t, m.Locals.LoVar(0), nodes[2].Lcl)
    require.Equal(t, ir.OpCnsInt, nodes[2].X.Op)
    require.Equal(t, int64(2), nodes[2].X.Iv)
    require.Equal(t, ir.OpStoreLclVar, nodes[3].Op)
    require.Equal(t, m.Locals.HiVar(0), nodes[3].Lcl)
    require.Equal(t, int64(1), nodes[3].X.Iv)
    require.True(t, nodes[3].Flags.Has(ir.FlagVarDef))
    e, err := execute(m, nil)
    require.NoError(t, err)
    require.Equal(t, uint64(0x100000002), e.Local(0))
}

func TestDecompose_ReturnSum(t *testing.T) {
    m, e := equivalent(t, binary(ir.OpAdd, 0), with(0xffffffff, 1))
    require.Equal(t, uint64(0x100000000), e.Ret)
    rets := findOp(m, ir.OpReturn)
    require.Len(t, rets, 1)
    jn := rets[0].X
    require.Equal(t, ir.OpLong, jn.Op)
    require.Equal(t, ir.OpAddLo, jn.X.Op)
    require.Equal(t, ir.OpAddHi, jn.Y.Op)
    require.Equal(t, jn.Y, jn.X.Next())
    require.Equal(t, ir.TypeInt, jn.X.Type)
    require.Empty(t, findOp(m, ir.OpAdd))
    for _, p := range m.Blocks[0].Range.Nodes() {
        if p.Type.IsLong() {
            require.Contains(t, []ir.Oper { ir.OpLong, ir.OpReturn }, p.Op)
        }
    }
}

func TestDecompose_CheckedNarrowingToUnsigned(t *testing.T) {
    p := func(m *ir.Method, bb *ir.BasicBlock) {
        y := longLocal(m, "y")
        x := intLocal(m, "x")
        ld := m.NewLclVar(y, ir.TypeLong)
        cv := m.NewCastNode(ir.TypeUInt, ld, true, true)
        st := m.NewStoreLclVar(x, ir.TypeInt, cv)
        lx := m.NewLclVar(x, ir.TypeInt)
        bb.Range.InsertAtEnd(ld, cv, st, lx, m.NewReturn(lx))
    }
    for _, v := range []uint64 { 0, 1, math.MaxUint32, math.MaxUint32 + 1, 1 << 63, math.MaxUint64 } {
        m, e := equivalent(t, p, func(e *emu.Emulator) { e.SetLocal(0, v) })
        cv := findOp(m, ir.OpCast)[0]
        require.Equal(t, ir.OpLong, cv.X.Op)
        require.Equal(t, m.Locals.LoVar(0), cv.X.X.Lcl)
        require.Equal(t, m.Locals.HiVar(0), cv.X.Y.Lcl)
        if v <= math.MaxUint32 {
            require.Equal(t, v, e.Ret)
        } else {
            _, err := execute(m, func(e *emu.Emulator) { e.SetLocal(0, v) })
            require.IsType(t, new(emu.Exception), err)
        }
    }
}

func shiftBy(op ir.Oper) program {
    return func(m *ir.Method, bb *ir.BasicBlock) {
        a := longLocal(m, "a")
        n := intLocal(m, "n")
        x := m.NewLclVar(a, ir.TypeLong)
        s := m.NewLclVar(n, ir.TypeInt)
        ret(m, bb, x, s, m.NewOperNode(op, ir.TypeLong, x, s))
    }
}

func TestDecompose_ShiftByVariable(t *testing.T) {
    m, e := equivalent(t, shiftBy(ir.OpLsh), with(0x80000001, 33))
    require.Equal(t, uint64(0x200000000), e.Ret)
    require.Equal(t, 1, e.Calls["LLSH"])
    calls := findOp(m, ir.OpCall)
    require.Len(t, calls, 1)
    call := calls[0]
    require.True(t, call.IsHelperCall(abi.HelperLLsh))
    require.Len(t, call.Args, 3)
    require.Equal(t, call.Args[2], call.Prev())
    require.Equal(t, call.Args[1], call.Args[2].Prev())
    require.Equal(t, call.Args[0], call.Args[1].Prev())
    require.Equal(t, m.Locals.LoVar(0), call.Args[0].Lcl)
    require.Equal(t, m.Locals.HiVar(0), call.Args[1].Lcl)
    require.Equal(t, 1, call.Args[2].Lcl)
    require.Empty(t, findOp(m, ir.OpLsh))

    /* the register pair goes through a temporary */
    st := call.Next()
    require.Equal(t, ir.OpStoreLclVar, st.Op)
    require.Equal(t, call, st.X)
    require.True(t, m.Locals.Get(st.Lcl).MultiRegRet)
    require.True(t, m.Locals.Get(st.Lcl).IsTemp)
}

func widenedProduct(m *ir.Method) (*ir.Node, []*ir.Node) {
    x := intLocal(m, "x")
    y := intLocal(m, "y")
    lx := m.NewLclVar(x, ir.TypeInt)
    cx := m.NewCastNode(ir.TypeLong, lx, false, false)
    ly := m.NewLclVar(y, ir.TypeInt)
    cy := m.NewCastNode(ir.TypeLong, ly, false, false)
    mul := m.NewOperNode(ir.OpMul, ir.TypeLong, cx, cy)
    mul.Flags |= ir.FlagMul64Result
    return mul, []*ir.Node { lx, cx, ly, cy, mul }
}

func TestDecompose_WideningMultiplyStoredToLocal(t *testing.T) {
    p := func(m *ir.Method, bb *ir.BasicBlock) {
        mul, nodes := widenedProduct(m)
        r := longLocal(m, "r")
        ld := m.NewLclVar(r, ir.TypeLong)
        bb.Range.InsertAtEnd(nodes...)
        bb.Range.InsertAtEnd(m.NewStoreLclVar(r, ir.TypeLong, mul), ld, m.NewReturn(ld))
    }
    fk := gofakeit.New(5)
    for i := 0; i < 100; i++ {
        x, y := fk.Int32(), fk.Int32()
        m, e := equivalent(t, p, with(uint64(x), uint64(y)))
        require.Equal(t, uint64(int64(x) * int64(y)), e.Ret)
        r := m.Locals.Get(2)
        require.True(t, r.MultiRegRet)
        require.False(t, r.Promoted)
        require.Zero(t, countTemps(m))
        require.Empty(t, findOp(m, ir.OpCast))
        mul := findOp(m, ir.OpMulLong)
        require.Len(t, mul, 1)
        require.Equal(t, ir.OpLclVar, mul[0].X.Op)
        require.Equal(t, ir.TypeInt, mul[0].X.Type)
        require.Equal(t, ir.OpStoreLclVar, mul[0].Next().Op)
    }
}

func TestDecompose_WideningMultiplyConsumedByAdd(t *testing.T) {
    p := func(m *ir.Method, bb *ir.BasicBlock) {
        mul, nodes := widenedProduct(m)
        b := longLocal(m, "b")
        lb := m.NewLclVar(b, ir.TypeLong)
        bb.Range.InsertAtEnd(nodes...)
        ret(m, bb, lb, m.NewOperNode(ir.OpAdd, ir.TypeLong, mul, lb))
    }
    setup := func(e *emu.Emulator) {
        e.SetLocal(0, uint64(0xfffffff0))
        e.SetLocal(1, 3)
        e.SetLocal(2, 0xffffffff)
    }
    m, e := equivalent(t, p, setup)
    require.Equal(t, uint64(int64(-16) * 3 + 0xffffffff), e.Ret)
    require.Equal(t, 1, countTemps(m))
    mul := findOp(m, ir.OpMulLong)[0]
    st := mul.Next()
    require.Equal(t, ir.OpStoreLclVar, st.Op)
    tmp := m.Locals.Get(st.Lcl)
    require.True(t, tmp.IsTemp)
    require.True(t, tmp.MultiRegRet)
    lo := findOp(m, ir.OpAddLo)[0]
    require.Equal(t, ir.OpLclFld, lo.X.Op)
    require.Equal(t, tmp.Num, lo.X.Lcl)
    require.Equal(t, 0, lo.X.Offs)
    hi := findOp(m, ir.OpAddHi)[0]
    require.Equal(t, tmp.Num, hi.X.Lcl)
    require.Equal(t, 4, hi.X.Offs)
}

func TestDecompose_UnsignedWideningMultiply(t *testing.T) {
    p := func(m *ir.Method, bb *ir.BasicBlock) {
        x := intLocal(m, "x")
        y := intLocal(m, "y")
        lx := m.NewLclVar(x, ir.TypeInt)
        cx := m.NewCastNode(ir.TypeLong, lx, true, false)
        ly := m.NewLclVar(y, ir.TypeInt)
        cy := m.NewCastNode(ir.TypeLong, ly, true, false)
        mul := m.NewOperNode(ir.OpMul, ir.TypeLong, cx, cy)
        mul.Flags |= ir.FlagMul64Result
        ret(m, bb, lx, cx, ly, cy, mul)
    }
    m, e := equivalent(t, p, with(0xffffffff, 2))
    require.Equal(t, uint64(0x1fffffffe), e.Ret)
    mul := findOp(m, ir.OpMulLong)
    require.Len(t, mul, 1)
    require.True(t, mul[0].Flags.Has(ir.FlagUnsigned))
    require.Empty(t, findOp(m, ir.OpCast))

    /* random operands */
    fk := gofakeit.New(9)
    for i := 0; i < 100; i++ {
        x, y := fk.Uint32(), fk.Uint32()
        _, e = equivalent(t, p, with(uint64(x), uint64(y)))
        require.Equal(t, uint64(x) * uint64(y), e.Ret)
    }
}
