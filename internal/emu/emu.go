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


package emu

import (
    `encoding/binary`
    `fmt`
    `math`

    `github.com/cloudwego/decomp64/internal/abi`
    `github.com/cloudwego/decomp64/internal/rt`
    `github.com/cloudwego/decomp64/ir`
    `tlog.app/go/errors`
)

// Exception is raised by a node that faults at run time, such as a checked
// conversion that overflows or a division by zero.
type Exception struct {
    Node   *ir.Node
    Reason error
}

func (self *Exception) Error() string {
    return fmt.Sprintf("exception at t%d: %v", self.Node.Id, self.Reason)
}

func (self *Exception) Unwrap() error {
    return self.Reason
}

// Func implements a user method called from the emulated code.
type Func func(args []uint64) uint64

// Emulator executes IR ranges, both before and after 64-bit decomposition.
// Locals and memory are byte addressed, promoted halves alias the storage
// of their parent local.
type Emulator struct {
    Mem   []byte
    Ret   uint64
    Calls map[string]int
    m     *ir.Method
    cf    bool
    fns   map[string]Func
    vals  map[*ir.Node]uint64
    lvs   map[int][]byte
}

func NewEmulator(m *ir.Method, memsz int) *Emulator {
    return &Emulator {
        m     : m,
        Mem   : make([]byte, memsz),
        Calls : make(map[string]int),
        fns   : make(map[string]Func),
        vals  : make(map[*ir.Node]uint64),
        lvs   : make(map[int][]byte),
    }
}

// Register makes fn callable by name from emulated code.
func (self *Emulator) Register(name string, fn Func) {
    self.fns[name] = fn
}

// SetLocal initializes a local variable with the low Size() bytes of v.
func (self *Emulator) SetLocal(lcl int, v uint64) {
    self.store(self.slot(lcl, 0), self.m.Locals.Get(lcl).Type.Size(), v)
}

// Local returns the current contents of a local variable.
func (self *Emulator) Local(lcl int) uint64 {
    return self.load(self.slot(lcl, 0), self.m.Locals.Get(lcl).Type.Size())
}

// Value returns the value last computed by node.
func (self *Emulator) Value(node *ir.Node) uint64 {
    return self.vals[node]
}

// Run executes every block of the method in order.
func (self *Emulator) Run() error {
    for _, bb := range self.m.Blocks {
        if err := self.Exec(&bb.Range); err != nil {
            return err
        }
    }
    return nil
}

// Exec executes the nodes of a range in order.
func (self *Emulator) Exec(rng *ir.Range) error {
    for p := rng.FirstNode(); p != nil; p = p.Next() {
        if int(p.Op) >= len(dispatchTab) || dispatchTab[p.Op] == nil {
            return errors.New("emu: cannot execute %s", p)
        } else if err := dispatchTab[p.Op](self, p); err != nil {
            return err
        }
    }
    return nil
}

var dispatchTab = [...]func(e *Emulator, p *ir.Node) error {
    ir.OpLclVar      : (*Emulator).emu_OpLclVar,
    ir.OpLclFld      : (*Emulator).emu_OpLclFld,
    ir.OpStoreLclVar : (*Emulator).emu_OpStoreLclVar,
    ir.OpStoreLclFld : (*Emulator).emu_OpStoreLclFld,
    ir.OpInd         : (*Emulator).emu_OpInd,
    ir.OpStoreInd    : (*Emulator).emu_OpStoreInd,
    ir.OpLea         : (*Emulator).emu_OpLea,
    ir.OpCnsInt      : (*Emulator).emu_OpCnsInt,
    ir.OpCnsLng      : (*Emulator).emu_OpCnsLng,
    ir.OpCast        : (*Emulator).emu_OpCast,
    ir.OpAdd         : (*Emulator).emu_OpAdd,
    ir.OpSub         : (*Emulator).emu_OpSub,
    ir.OpAnd         : (*Emulator).emu_OpAnd,
    ir.OpOr          : (*Emulator).emu_OpOr,
    ir.OpXor         : (*Emulator).emu_OpXor,
    ir.OpAddLo       : (*Emulator).emu_OpAddLo,
    ir.OpAddHi       : (*Emulator).emu_OpAddHi,
    ir.OpSubLo       : (*Emulator).emu_OpSubLo,
    ir.OpSubHi       : (*Emulator).emu_OpSubHi,
    ir.OpMul         : (*Emulator).emu_OpMul,
    ir.OpMulLong     : (*Emulator).emu_OpMulLong,
    ir.OpDiv         : (*Emulator).emu_OpDivMod,
    ir.OpMod         : (*Emulator).emu_OpDivMod,
    ir.OpUDiv        : (*Emulator).emu_OpDivMod,
    ir.OpUMod        : (*Emulator).emu_OpDivMod,
    ir.OpLsh         : (*Emulator).emu_OpShift,
    ir.OpRsh         : (*Emulator).emu_OpShift,
    ir.OpRsz         : (*Emulator).emu_OpShift,
    ir.OpNeg         : (*Emulator).emu_OpNeg,
    ir.OpNot         : (*Emulator).emu_OpNot,
    ir.OpCall        : (*Emulator).emu_OpCall,
    ir.OpReturn      : (*Emulator).emu_OpReturn,
    ir.OpLong        : (*Emulator).emu_OpLong,
}

/** Storage **/

func (self *Emulator) slot(lcl int, offs int) []byte {
    v := self.m.Locals.Get(lcl)

    /* promoted halves live inside their parent */
    if v.IsStructField {
        return self.slot(v.Parent, offs + v.FldOffset)
    }

    /* allocate the storage on first access */
    buf, ok := self.lvs[lcl]
    if !ok {
        buf = make([]byte, 8)
        self.lvs[lcl] = buf
    }
    return buf[offs:]
}

func (self *Emulator) load(buf []byte, size int) uint64 {
    switch size {
        case 1  : return uint64(buf[0])
        case 2  : return uint64(binary.LittleEndian.Uint16(buf))
        case 4  : return uint64(binary.LittleEndian.Uint32(buf))
        case 8  : return binary.LittleEndian.Uint64(buf)
        default : panic(fmt.Sprintf("emu: invalid access size %d", size))
    }
}

func (self *Emulator) store(buf []byte, size int, v uint64) {
    switch size {
        case 1  : buf[0] = byte(v)
        case 2  : binary.LittleEndian.PutUint16(buf, uint16(v))
        case 4  : binary.LittleEndian.PutUint32(buf, uint32(v))
        case 8  : binary.LittleEndian.PutUint64(buf, v)
        default : panic(fmt.Sprintf("emu: invalid access size %d", size))
    }
}

func (self *Emulator) mem(p *ir.Node, addr uint64, size int) ([]byte, error) {
    if addr + uint64(size) > uint64(len(self.Mem)) {
        return nil, &Exception { p, errors.New("access violation at %#x", addr) }
    } else {
        return self.Mem[addr:], nil
    }
}

/** Values **/

func (self *Emulator) set(p *ir.Node, v uint64) {
    if p.Type.IsLong() {
        self.vals[p] = v
    } else {
        self.vals[p] = uint64(uint32(v))
    }
}

func (self *Emulator) x(p *ir.Node) uint64 { return self.vals[p.X] }
func (self *Emulator) y(p *ir.Node) uint64 { return self.vals[p.Y] }

func overflow(p *ir.Node) error {
    return &Exception { p, rt.ErrOverflow }
}

/** Locals **/

func (self *Emulator) emu_OpLclVar(p *ir.Node) error {
    self.set(p, self.load(self.slot(p.Lcl, 0), p.Type.Size()))
    return nil
}

func (self *Emulator) emu_OpLclFld(p *ir.Node) error {
    self.set(p, self.load(self.slot(p.Lcl, p.Offs), p.Type.Size()))
    return nil
}

func (self *Emulator) emu_OpStoreLclVar(p *ir.Node) error {
    self.store(self.slot(p.Lcl, 0), p.Type.Size(), self.x(p))
    return nil
}

func (self *Emulator) emu_OpStoreLclFld(p *ir.Node) error {
    self.store(self.slot(p.Lcl, p.Offs), p.Type.Size(), self.x(p))
    return nil
}

/** Memory **/

func (self *Emulator) emu_OpInd(p *ir.Node) error {
    if buf, err := self.mem(p, self.x(p), p.Type.Size()); err != nil {
        return err
    } else {
        self.set(p, self.load(buf, p.Type.Size()))
        return nil
    }
}

func (self *Emulator) emu_OpStoreInd(p *ir.Node) error {
    if buf, err := self.mem(p, self.x(p), p.Type.Size()); err != nil {
        return err
    } else {
        self.store(buf, p.Type.Size(), self.y(p))
        return nil
    }
}

func (self *Emulator) emu_OpLea(p *ir.Node) error {
    self.set(p, self.x(p) + uint64(p.Offs))
    return nil
}

/** Constants **/

func (self *Emulator) emu_OpCnsInt(p *ir.Node) error {
    self.set(p, uint64(p.Iv))
    return nil
}

func (self *Emulator) emu_OpCnsLng(p *ir.Node) error {
    self.set(p, uint64(p.Iv))
    return nil
}

/** Conversions **/

func widen(v uint64, vt ir.Type, unsigned bool) uint64 {
    if vt.IsLong() || unsigned {
        return v
    } else {
        return uint64(int64(int32(v)))
    }
}

func bounds(vt ir.Type) (int64, uint64) {
    bits := uint(vt.Size() * 8)
    switch {
        case vt.IsUnsigned() && bits == 64 : return 0, math.MaxUint64
        case vt.IsUnsigned()               : return 0, 1 << bits - 1
        default                            : return -1 << (bits - 1), 1 << (bits - 1) - 1
    }
}

func fits(v uint64, signed bool, vt ir.Type) bool {
    min, max := bounds(vt)
    if signed && int64(v) < 0 {
        return int64(v) >= min
    } else {
        return v <= max
    }
}

func narrow(v uint64, vt ir.Type) uint64 {
    switch vt.Size() {
        case 1  : if vt.IsUnsigned() { return uint64(uint8(v))  } else { return uint64(int64(int8(v)))  }
        case 2  : if vt.IsUnsigned() { return uint64(uint16(v)) } else { return uint64(int64(int16(v))) }
        default : return v
    }
}

func (self *Emulator) emu_OpCast(p *ir.Node) error {
    uns := p.Flags.Has(ir.FlagUnsigned)
    val := widen(self.x(p), p.X.Type, uns)

    /* the source is signed unless it is explicitly unsigned */
    if p.Flags.Has(ir.FlagOverflow) && !fits(val, !uns, p.CastTo) {
        return overflow(p)
    }

    /* convert the value */
    self.set(p, narrow(val, p.CastTo))
    return nil
}

/** Arithmetic **/

func (self *Emulator) binop(p *ir.Node, fn func(x uint64, y uint64) uint64) error {
    self.set(p, fn(self.x(p), self.y(p)))
    return nil
}

func checkLong(op ir.Oper, unsigned bool, ux uint64, uy uint64, r uint64) bool {
    x, y := int64(ux), int64(uy)
    switch {
        case op == ir.OpAdd &&  unsigned : return r >= ux
        case op == ir.OpSub &&  unsigned : return ux >= uy
        case op == ir.OpAdd && !unsigned : return !((x >= 0) == (y >= 0) && (int64(r) >= 0) != (x >= 0))
        case op == ir.OpSub && !unsigned : return !((x >= 0) != (y >= 0) && (int64(r) >= 0) != (x >= 0))
        default                          : return true
    }
}

func checkInt(op ir.Oper, unsigned bool, x uint64, y uint64, c uint64) bool {
    var r int64
    var min, max int64

    /* pick the valid range */
    if unsigned {
        min, max = 0, math.MaxUint32
    } else {
        min, max = math.MinInt32, math.MaxInt32
    }

    /* widen the operands and compute the exact result */
    switch op {
        case ir.OpAdd, ir.OpAddHi : r = ext(x, unsigned) + ext(y, unsigned) + int64(c)
        case ir.OpSub, ir.OpSubHi : r = ext(x, unsigned) - ext(y, unsigned) - int64(c)
        case ir.OpMul             : r = ext(x, unsigned) * ext(y, unsigned)
        default                   : return true
    }

    /* check the range */
    return r >= min && r <= max
}

func ext(v uint64, unsigned bool) int64 {
    if unsigned {
        return int64(uint32(v))
    } else {
        return int64(int32(v))
    }
}

func (self *Emulator) arith(p *ir.Node, r uint64) error {
    x, y := self.x(p), self.y(p)
    uns := p.Flags.Has(ir.FlagUnsigned)

    /* check for overflow if required */
    if p.Flags.Has(ir.FlagOverflow) {
        if p.Type.IsLong() && !checkLong(p.Op, uns, x, y, r) {
            return overflow(p)
        } else if !p.Type.IsLong() && !checkInt(p.Op, uns, x, y, 0) {
            return overflow(p)
        }
    }

    /* store the result */
    self.set(p, r)
    return nil
}

func (self *Emulator) emu_OpAdd(p *ir.Node) error { return self.arith(p, self.x(p) + self.y(p)) }
func (self *Emulator) emu_OpSub(p *ir.Node) error { return self.arith(p, self.x(p) - self.y(p)) }
func (self *Emulator) emu_OpAnd(p *ir.Node) error { return self.binop(p, func(x, y uint64) uint64 { return x & y }) }
func (self *Emulator) emu_OpOr(p *ir.Node) error { return self.binop(p, func(x, y uint64) uint64 { return x | y }) }
func (self *Emulator) emu_OpXor(p *ir.Node) error { return self.binop(p, func(x, y uint64) uint64 { return x ^ y }) }

func (self *Emulator) emu_OpAddLo(p *ir.Node) error {
    x, y := uint32(self.x(p)), uint32(self.y(p))
    self.cf = x + y < x
    self.set(p, uint64(x + y))
    return nil
}

func (self *Emulator) emu_OpSubLo(p *ir.Node) error {
    x, y := uint32(self.x(p)), uint32(self.y(p))
    self.cf = x < y
    self.set(p, uint64(x - y))
    return nil
}

func (self *Emulator) carry() uint64 {
    if self.cf {
        return 1
    } else {
        return 0
    }
}

func (self *Emulator) emu_OpAddHi(p *ir.Node) error {
    x, y, c := self.x(p), self.y(p), self.carry()
    if p.Flags.Has(ir.FlagOverflow) && !checkInt(ir.OpAddHi, p.Flags.Has(ir.FlagUnsigned), x, y, c) {
        return overflow(p)
    }
    self.set(p, x + y + c)
    return nil
}

func (self *Emulator) emu_OpSubHi(p *ir.Node) error {
    x, y, c := self.x(p), self.y(p), self.carry()
    if p.Flags.Has(ir.FlagOverflow) && !checkInt(ir.OpSubHi, p.Flags.Has(ir.FlagUnsigned), x, y, c) {
        return overflow(p)
    }
    self.set(p, x - y - c)
    return nil
}

func (self *Emulator) emu_OpMul(p *ir.Node) error {
    x, y := self.x(p), self.y(p)
    ovf := p.Flags.Has(ir.FlagOverflow)

    /* 32-bit multiply */
    if !p.Type.IsLong() {
        if ovf && !checkInt(ir.OpMul, p.Flags.Has(ir.FlagUnsigned), x, y, 0) {
            return overflow(p)
        } else {
            self.set(p, x * y)
            return nil
        }
    }

    /* unchecked 64-bit multiply */
    if !ovf {
        self.set(p, rt.LMul(x, y))
        return nil
    }

    /* checked 64-bit multiply */
    var r uint64
    var err error
    if p.Flags.Has(ir.FlagUnsigned) {
        r, err = rt.ULMulOvf(x, y)
    } else {
        r, err = rt.LMulOvf(x, y)
    }

    /* check for exceptions */
    if err != nil {
        return &Exception { p, err }
    } else {
        self.set(p, r)
        return nil
    }
}

func (self *Emulator) emu_OpMulLong(p *ir.Node) error {
    uns := p.Flags.Has(ir.FlagUnsigned)
    self.set(p, widen(self.x(p), p.X.Type, uns) * widen(self.y(p), p.Y.Type, uns))
    return nil
}

var _LongDivMod = map[ir.Oper]func(uint64, uint64) (uint64, error) {
    ir.OpDiv  : rt.LDiv,
    ir.OpMod  : rt.LMod,
    ir.OpUDiv : rt.ULDiv,
    ir.OpUMod : rt.ULMod,
}

func (self *Emulator) emu_OpDivMod(p *ir.Node) error {
    x, y := self.x(p), self.y(p)

    /* 64-bit division uses the same semantics as the runtime helpers */
    if p.Type.IsLong() {
        if r, err := _LongDivMod[p.Op](x, y); err != nil {
            return &Exception { p, err }
        } else {
            self.set(p, r)
            return nil
        }
    }

    /* 32-bit division */
    a, b := int32(x), int32(y)
    if b == 0 {
        return &Exception { p, rt.ErrDivideByZero }
    }

    /* compute the result */
    switch p.Op {
        case ir.OpUDiv : self.set(p, uint64(uint32(x) / uint32(y)))
        case ir.OpUMod : self.set(p, uint64(uint32(x) % uint32(y)))
        case ir.OpMod  : if b == -1 { self.set(p, 0) } else { self.set(p, uint64(a % b)) }
        default        : if b == -1 && a == math.MinInt32 { return overflow(p) } else { self.set(p, uint64(a / b)) }
    }
    return nil
}

func (self *Emulator) emu_OpShift(p *ir.Node) error {
    x, n := self.x(p), uint32(self.y(p))

    /* 64-bit shifts behave like the runtime helpers */
    if p.Type.IsLong() {
        switch p.Op {
            case ir.OpLsh : self.set(p, rt.LLsh(x, n))
            case ir.OpRsh : self.set(p, rt.LRsh(x, n))
            default       : self.set(p, rt.LRsz(x, n))
        }
        return nil
    }

    /* 32-bit shifts */
    switch n &= 31; p.Op {
        case ir.OpLsh : self.set(p, uint64(uint32(x) << n))
        case ir.OpRsh : self.set(p, uint64(int32(x) >> n))
        default       : self.set(p, uint64(uint32(x) >> n))
    }
    return nil
}

func (self *Emulator) emu_OpNeg(p *ir.Node) error {
    x := self.x(p)
    if !p.Type.IsLong() {
        self.cf = uint32(x) != 0
    }
    self.set(p, -x)
    return nil
}

func (self *Emulator) emu_OpNot(p *ir.Node) error {
    self.set(p, ^self.x(p))
    return nil
}

/** Calls **/

func (self *Emulator) emu_OpCall(p *ir.Node) error {
    args := make([]uint64, len(p.Args))
    for i, v := range p.Args {
        args[i] = self.vals[v]
    }

    /* runtime helpers follow the helper ABI */
    if h := p.Fn.Helper; h != abi.HelperNone {
        return self.callHelper(p, h, args)
    }

    /* user method */
    fn, ok := self.fns[p.Fn.Name]
    if !ok {
        return errors.New("emu: unknown method %q", p.Fn.Name)
    }

    /* invoke the method */
    self.Calls[p.Fn.Name]++
    self.set(p, fn(args))
    return nil
}

func (self *Emulator) callHelper(p *ir.Node, h abi.Helper, args []uint64) error {
    av := make([]uint32, len(args))
    for i, v := range args {
        av[i] = uint32(v)
    }

    /* set up the machine state and run the helper */
    fp := h.Layout().Marshal(av)
    self.Calls[h.String()]++

    /* check for exceptions */
    if err := rt.Invoke(h, fp); err != nil {
        return &Exception { p, err }
    } else {
        self.set(p, fp.Result())
        return nil
    }
}

func (self *Emulator) emu_OpReturn(p *ir.Node) error {
    if p.X != nil {
        self.Ret = self.x(p)
    }
    return nil
}

func (self *Emulator) emu_OpLong(p *ir.Node) error {
    self.set(p, uint64(uint32(self.x(p))) | self.y(p) << 32)
    return nil
}
