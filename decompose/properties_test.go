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
    `github.com/cloudwego/decomp64/internal/emu`
    `github.com/cloudwego/decomp64/ir`
    `github.com/stretchr/testify/require`
)

const _Rounds = 200

var _Edges = []uint64 {
    0,
    1,
    0xffffffff,
    0x100000000,
    math.MaxInt64,
    math.MaxInt64 + 1,
    math.MaxUint64,
    math.MaxUint64 - 1,
}

// pairs yields every combination of the edge values, followed by random
// pairs, half of which force a carry across the word boundary.
func pairs(seed int64, fn func(a uint64, b uint64)) {
    for _, a := range _Edges {
        for _, b := range _Edges {
            fn(a, b)
        }
    }
    fk := gofakeit.New(seed)
    for i := 0; i < _Rounds; i++ {
        a, b := fk.Uint64(), fk.Uint64()
        if i & 1 == 0 {
            a |= 0xffffffff
            b |= 1
        }
        fn(a, b)
    }
}

func TestProperty_ConstantSplit(t *testing.T) {
    vals := []int64 { 0, -1, 0x100000000, math.MinInt64, math.MaxInt64 }
    fk := gofakeit.New(1)
    for i := 0; i < _Rounds; i++ {
        vals = append(vals, fk.Int64())
    }
    for _, c := range vals {
        m := decomposeMethod(t, build(func(m *ir.Method, bb *ir.BasicBlock) {
            ret(m, bb, m.NewLconNode(c))
        }))
        nodes := m.Blocks[0].Range.Nodes()
        lo, hi := nodes[0], nodes[1]
        require.Equal(t, ir.OpCnsInt, lo.Op)
        require.Equal(t, ir.OpCnsInt, hi.Op)
        require.Equal(t, uint64(c), uint64(uint32(hi.Iv)) << 32 | uint64(uint32(lo.Iv)))
        e, err := execute(m, nil)
        require.NoError(t, err)
        require.Equal(t, uint64(c), e.Ret)
    }
}

func TestProperty_AddSubCarry(t *testing.T) {
    pairs(2, func(a uint64, b uint64) {
        _, e := equivalent(t, binary(ir.OpAdd, 0), with(a, b))
        require.Equal(t, a + b, e.Ret)
        _, e = equivalent(t, binary(ir.OpSub, 0), with(a, b))
        require.Equal(t, a - b, e.Ret)
    })
}

func TestProperty_Bitwise(t *testing.T) {
    pairs(3, func(a uint64, b uint64) {
        _, e := equivalent(t, binary(ir.OpAnd, 0), with(a, b))
        require.Equal(t, a & b, e.Ret)
        _, e = equivalent(t, binary(ir.OpOr, 0), with(a, b))
        require.Equal(t, a | b, e.Ret)
        _, e = equivalent(t, binary(ir.OpXor, 0), with(a, b))
        require.Equal(t, a ^ b, e.Ret)
        _, e = equivalent(t, unary(ir.OpNot), set(a))
        require.Equal(t, ^a, e.Ret)
    })
}

func TestProperty_Negate(t *testing.T) {
    pairs(4, func(a uint64, _ uint64) {
        m, e := equivalent(t, unary(ir.OpNeg), set(a))
        require.Equal(t, -a, e.Ret)
        require.Equal(t, 2, countTemps(m))
    })
    _, e := equivalent(t, unary(ir.OpNeg), set(uint64(math.MaxInt64) + 1))
    require.Equal(t, uint64(math.MaxInt64) + 1, e.Ret)
}

func TestProperty_CheckedAddSub(t *testing.T) {
    for _, f := range []ir.Flags { ir.FlagOverflow, ir.FlagOverflow | ir.FlagUnsigned } {
        pairs(5, func(a uint64, b uint64) {
            m, _ := equivalent(t, binary(ir.OpAdd, f), with(a, b))
            hi := findOp(m, ir.OpAddHi)[0]
            lo := findOp(m, ir.OpAddLo)[0]
            require.True(t, hi.Flags.Has(ir.FlagOverflow))
            require.False(t, lo.Flags.Has(ir.FlagOverflow))
            require.Equal(t, f.Has(ir.FlagUnsigned), hi.Flags.Has(ir.FlagUnsigned))
            require.False(t, lo.Flags.Has(ir.FlagUnsigned))
            equivalent(t, binary(ir.OpSub, f), with(a, b))
        })
    }
}

func TestProperty_ShiftHelpers(t *testing.T) {
    fk := gofakeit.New(6)
    for _, op := range []ir.Oper { ir.OpLsh, ir.OpRsh, ir.OpRsz } {
        for i := 0; i < _Rounds; i++ {
            equivalent(t, shiftBy(op), with(fk.Uint64(), uint64(fk.Number(0, 70))))
        }
    }
}

func TestProperty_MultiplyDivideHelpers(t *testing.T) {
    ops := []struct {
        op ir.Oper
        fl ir.Flags
    } {
        { ir.OpMul  , 0 },
        { ir.OpMul  , ir.FlagOverflow },
        { ir.OpMul  , ir.FlagOverflow | ir.FlagUnsigned },
        { ir.OpDiv  , 0 },
        { ir.OpMod  , 0 },
        { ir.OpUDiv , 0 },
        { ir.OpUMod , 0 },
    }
    for _, v := range ops {
        pairs(7, func(a uint64, b uint64) {
            m, _ := equivalent(t, binary(v.op, v.fl), with(a, b >> (a & 63)))
            require.Empty(t, findOp(m, v.op))
            require.Len(t, findOp(m, ir.OpCall), 1)
        })
    }
}

func TestProperty_DivideByZero(t *testing.T) {
    m, _ := equivalent(t, binary(ir.OpDiv, 0), with(1, 0))
    _, err := execute(m, with(1, 0))
    require.IsType(t, new(emu.Exception), err)
}

func conversion(src ir.Type, dst ir.Type, unsigned bool, overflow bool) program {
    return func(m *ir.Method, bb *ir.BasicBlock) {
        a := m.Locals.Add("a", src.Actual()).Num
        x := m.NewLclVar(a, src.Actual())
        ret(m, bb, x, m.NewCastNode(dst, x, unsigned, overflow))
    }
}

func TestProperty_Conversions(t *testing.T) {
    cases := []struct {
        src ir.Type
        dst ir.Type
        uns bool
        ovf bool
    } {
        { ir.TypeInt   , ir.TypeLong  , false , false },
        { ir.TypeInt   , ir.TypeLong  , true  , false },
        { ir.TypeInt   , ir.TypeULong , false , false },
        { ir.TypeInt   , ir.TypeULong , false , true  },
        { ir.TypeInt   , ir.TypeULong , true  , true  },
        { ir.TypeInt   , ir.TypeLong  , true  , true  },
        { ir.TypeLong  , ir.TypeULong , false , true  },
        { ir.TypeULong , ir.TypeLong  , true  , true  },
        { ir.TypeLong  , ir.TypeULong , false , false },
        { ir.TypeLong  , ir.TypeLong  , false , true  },
        { ir.TypeLong  , ir.TypeInt   , false , false },
        { ir.TypeLong  , ir.TypeUInt  , true  , false },
        { ir.TypeLong  , ir.TypeInt   , false , true  },
    }
    for _, c := range cases {
        pairs(8, func(a uint64, _ uint64) {
            m, _ := equivalent(t, conversion(c.src, c.dst, c.uns, c.ovf), set(a))
            if c.dst.IsLong() {
                for _, p := range m.Blocks[0].Range.Nodes() {
                    require.False(t, p.Op == ir.OpCast && p.Type.IsLong(), m.String())
                }
            }
        })
    }
}

func TestProperty_NarrowingDropsHighWord(t *testing.T) {
    m, e := equivalent(t, conversion(ir.TypeLong, ir.TypeInt, false, false), set(0x1234567890))
    require.Equal(t, uint64(0x34567890), e.Ret)
    nodes := m.Blocks[0].Range.Nodes()
    require.Len(t, nodes, 3, m.String())
    require.Equal(t, m.Locals.LoVar(0), nodes[1].X.Lcl)
    require.Zero(t, m.Locals.Get(m.Locals.HiVar(0)).RefCnt)
}
