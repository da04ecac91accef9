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
    `testing`

    `github.com/cloudwego/decomp64/internal/emu`
    `github.com/cloudwego/decomp64/internal/opts`
    `github.com/cloudwego/decomp64/ir`
    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/require`
)

const _MemSize = 64

// program builds the same method over and over, so that it can be run both
// as it is and decomposed.
type program func(m *ir.Method, bb *ir.BasicBlock)

func build(p program) *ir.Method {
    m := ir.NewMethod("test")
    p(m, m.NewBlock(ir.UnityWeight))
    return m
}

func decomposeMethod(t *testing.T, m *ir.Method) *ir.Method {
    return decomposeWithOptions(t, m, opts.Options { CheckRange: true })
}

func decomposeWithOptions(t *testing.T, m *ir.Method, o opts.Options) *ir.Method {
    for _, bb := range m.Blocks {
        require.NoError(t, bb.Range.Check(), "malformed input:\n%s", m)
    }
    d := NewWithOptions(context.Background(), m, o)
    d.PrepareForDecomposition()
    d.DecomposeMethod()
    for _, bb := range m.Blocks {
        require.NoError(t, bb.Range.Check(), m.String())
        require.NoError(t, CheckDecomposed(&bb.Range, m.Locals), m.String())
    }
    return m
}

func execute(m *ir.Method, setup func(e *emu.Emulator)) (*emu.Emulator, error) {
    e := emu.NewEmulator(m, _MemSize)
    if setup != nil {
        setup(e)
    }
    return e, e.Run()
}

// equivalent runs the program before and after decomposition and requires
// both runs to agree on the result, the memory and any exception raised.
func equivalent(t *testing.T, p program, setup func(e *emu.Emulator)) (*ir.Method, *emu.Emulator) {
    e1, err1 := execute(build(p), setup)
    m := decomposeMethod(t, build(p))
    e2, err2 := execute(m, setup)
    if err1 != nil {
        require.Error(t, err2, "no exception after decomposition:\n%s\nexpected %s", m, dump(err1))
        require.IsType(t, err1, err2)
        require.Equal(t, err1.(*emu.Exception).Reason, err2.(*emu.Exception).Reason)
        return m, e2
    }
    require.NoError(t, err2, m.String())
    require.Equal(t, e1.Ret, e2.Ret, "result mismatch:\n%s", m)
    require.Equal(t, e1.Mem, e2.Mem, "memory mismatch:\n%s", m)
    return m, e2
}

func panicOf(fn func()) (err error) {
    defer func() {
        if v := recover(); v != nil {
            err = v.(error)
        }
    }()
    fn()
    return
}

func findOp(m *ir.Method, op ir.Oper) []*ir.Node {
    var ret []*ir.Node
    for _, bb := range m.Blocks {
        for p := bb.Range.FirstNode(); p != nil; p = p.Next() {
            if p.Op == op {
                ret = append(ret, p)
            }
        }
    }
    return ret
}

func countTemps(m *ir.Method) (n int) {
    for i := 0; i < m.Locals.Len(); i++ {
        if m.Locals.Get(i).IsTemp {
            n++
        }
    }
    return
}

func dump(v ...interface{}) string {
    return spew.Sdump(v...)
}

/** Program fragments **/

func ret(m *ir.Method, bb *ir.BasicBlock, nodes ...*ir.Node) {
    bb.Range.InsertAtEnd(nodes...)
    bb.Range.InsertAtEnd(m.NewReturn(nodes[len(nodes) - 1]))
}

func longLocal(m *ir.Method, name string) int {
    return m.Locals.Add(name, ir.TypeLong).Num
}

func intLocal(m *ir.Method, name string) int {
    return m.Locals.Add(name, ir.TypeInt).Num
}

func binary(op ir.Oper, flags ir.Flags) program {
    return func(m *ir.Method, bb *ir.BasicBlock) {
        a := longLocal(m, "a")
        b := longLocal(m, "b")
        x := m.NewLclVar(a, ir.TypeLong)
        y := m.NewLclVar(b, ir.TypeLong)
        z := m.NewOperNode(op, ir.TypeLong, x, y)
        z.Flags |= flags
        ret(m, bb, x, y, z)
    }
}

func unary(op ir.Oper) program {
    return func(m *ir.Method, bb *ir.BasicBlock) {
        a := longLocal(m, "a")
        x := m.NewLclVar(a, ir.TypeLong)
        ret(m, bb, x, m.NewOperNode(op, ir.TypeLong, x, nil))
    }
}

func with(a uint64, b uint64) func(e *emu.Emulator) {
    return func(e *emu.Emulator) {
        e.SetLocal(0, a)
        e.SetLocal(1, b)
    }
}

func set(a uint64) func(e *emu.Emulator) {
    return func(e *emu.Emulator) {
        e.SetLocal(0, a)
    }
}
