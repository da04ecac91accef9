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
    `testing`

    `github.com/stretchr/testify/require`
)

func newTestRange(m *Method) (*Range, []*Node) {
    x := m.NewIconNode(1)
    y := m.NewIconNode(2)
    z := m.NewOperNode(OpAdd, TypeInt, x, y)
    r := m.NewReturn(z)
    bb := m.NewBlock(UnityWeight)
    bb.Range.InsertAtEnd(x, y, z, r)
    return &bb.Range, []*Node { x, y, z, r }
}

func TestRange_InsertRemove(t *testing.T) {
    m := NewMethod("test")
    rng, nodes := newTestRange(m)
    require.Equal(t, nodes, rng.Nodes())
    require.NoError(t, rng.Check())
    c := m.NewIconNode(3)
    rng.InsertAfter(nodes[1], c)
    require.Equal(t, []*Node { nodes[0], nodes[1], c, nodes[2], nodes[3] }, rng.Nodes())
    require.Error(t, rng.Check())
    c.SetUnusedValue()
    require.NoError(t, rng.Check())
    rng.Remove(c)
    require.Nil(t, c.Range())
    require.Nil(t, c.Next())
    require.Equal(t, nodes, rng.Nodes())
    d := m.NewIconNode(4)
    d.SetUnusedValue()
    rng.InsertAfter(nil, d)
    require.Equal(t, d, rng.FirstNode())
    rng.Remove(d)
    rng.InsertBefore(nil, d)
    require.Equal(t, d, rng.LastNode())
    require.Panics(t, func() { rng.InsertAfter(nil, d) })
    require.Panics(t, func() { new(Range).Remove(d) })
}

func TestRange_CheckOrder(t *testing.T) {
    m := NewMethod("test")
    rng, nodes := newTestRange(m)
    rng.Remove(nodes[0])
    rng.InsertAfter(nodes[2], nodes[0])
    require.Error(t, rng.Check())
}

func TestRange_CheckDoubleUse(t *testing.T) {
    m := NewMethod("test")
    x := m.NewIconNode(1)
    z := m.NewOperNode(OpAdd, TypeInt, x, x)
    bb := m.NewBlock(UnityWeight)
    bb.Range.InsertAtEnd(x, z, m.NewReturn(z))
    require.Error(t, bb.Range.Check())
}

func TestRange_TryGetUse(t *testing.T) {
    m := NewMethod("test")
    rng, nodes := newTestRange(m)
    use, ok := rng.TryGetUse(nodes[1])
    require.True(t, ok)
    require.Equal(t, nodes[2], use.User())
    require.False(t, use.IsDummyUse())
    _, ok = rng.TryGetUse(nodes[3])
    require.False(t, ok)
    c := m.NewIconNode(5)
    rng.InsertAfter(nodes[1], c)
    use.ReplaceWith(c)
    require.Equal(t, c, nodes[2].Y)
    nodes[1].SetUnusedValue()
    require.NoError(t, rng.Check())
}

func TestRange_FirstNonPhiNode(t *testing.T) {
    m := NewMethod("test")
    v := m.Locals.Add("v", TypeLong)
    a := m.NewPhiArg(v.Num, TypeLong)
    p := m.NewPhi(TypeLong, a)
    s := m.NewStoreLclVar(v.Num, TypeLong, p)
    c := m.NewIconNode(0)
    bb := m.NewBlock(UnityWeight)
    bb.Range.InsertAtEnd(a, p, s, c, m.NewReturn(c))
    require.Equal(t, c, bb.Range.FirstNonPhiNode())
}

func TestUse_ReplaceWithLocalVariable(t *testing.T) {
    m := NewMethod("test")
    rng, nodes := newTestRange(m)
    use, _ := rng.TryGetUse(nodes[0])
    lcl := use.ReplaceWithLocalVariable(m, 200)
    v := m.Locals.Get(lcl)
    require.True(t, v.IsTemp)
    require.Equal(t, 2, v.RefCnt)
    require.Equal(t, uint64(400), v.RefCntWtd)
    st, ld := nodes[0].Next(), nodes[0].Next().Next()
    require.Equal(t, OpStoreLclVar, st.Op)
    require.Equal(t, nodes[0], st.X)
    require.Equal(t, OpLclVar, ld.Op)
    require.Equal(t, ld, nodes[2].X)
    require.NoError(t, rng.Check())
    dummy := DummyUse(rng, nodes[3])
    require.Panics(t, func() { dummy.ReplaceWithLocalVariable(m, 1) })
}

func TestNode_String(t *testing.T) {
    m := NewMethod("test")
    x := m.NewLconNode(-1)
    c := m.NewCastNode(TypeInt, x, false, true)
    require.Equal(t, "t1 = lconst     long  0xffffffffffffffff", x.String())
    require.Contains(t, c.String(), "-> int t1")
    require.Contains(t, c.String(), "ovf")
    require.NotEmpty(t, c.Dump())
}
