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


package abi

import (
    `fmt`
    `strings`

    `github.com/chenzhuoyu/iasm/x86_64`
)

// Helper identifies a runtime helper implementing a 64-bit operation that has
// no inline 32-bit expansion.
type Helper uint8

const (
    HelperNone Helper = iota
    HelperLLsh
    HelperLRsh
    HelperLRsz
    HelperLMul
    HelperLMulOvf
    HelperULMulOvf
    HelperLDiv
    HelperLMod
    HelperULDiv
    HelperULMod
    _HelperCount
)

var _HelperNames = [...]string {
    HelperNone     : "none",
    HelperLLsh     : "LLSH",
    HelperLRsh     : "LRSH",
    HelperLRsz     : "LRSZ",
    HelperLMul     : "LMUL",
    HelperLMulOvf  : "LMUL_OVF",
    HelperULMulOvf : "ULMUL_OVF",
    HelperLDiv     : "LDIV",
    HelperLMod     : "LMOD",
    HelperULDiv    : "ULDIV",
    HelperULMod    : "ULMOD",
}

func (self Helper) String() string {
    if self < _HelperCount {
        return _HelperNames[self]
    } else {
        return fmt.Sprintf("helper(%d)", self)
    }
}

// Parameter is the location of one 32-bit helper argument.
type Parameter struct {
    Mem        uintptr
    Reg        x86_64.Register32
    InRegister bool
}

func mkReg(reg x86_64.Register32) (p Parameter) {
    p.Reg = reg
    p.InRegister = true
    return
}

func mkStack(mem uintptr) (p Parameter) {
    p.Mem = mem
    p.InRegister = false
    return
}

func (self Parameter) String() string {
    if self.InRegister {
        return fmt.Sprintf("%%%s", self.Reg)
    } else {
        return fmt.Sprintf("%d(%%esp)", self.Mem)
    }
}

// FunctionLayout describes how a helper receives its arguments and returns
// its 64-bit result.
type FunctionLayout struct {
    Id     Helper
    Sp     uintptr
    Args   []Parameter
    Rets   []Parameter
    Throws bool
}

func (self *FunctionLayout) String() string {
    return fmt.Sprintf("{%s,$%#x,(%s),(%s)}", self.Id, self.Sp, formatSeq(self.Args), formatSeq(self.Rets))
}

func formatSeq(v []Parameter) string {
    mm := make([]string, len(v))
    for i, p := range v {
        mm[i] = p.String()
    }
    return strings.Join(mm, ",")
}

// ReturnRegs holds the low and high halves of every helper result, EDX:EAX.
var ReturnRegs = [2]x86_64.Register32 {
    x86_64.EAX,
    x86_64.EDX,
}

var _Layouts [_HelperCount]*FunctionLayout

func init() {
    for h := HelperLLsh; h < _HelperCount; h++ {
        _Layouts[h] = layoutHelper(h)
    }
}

func layoutHelper(h Helper) *FunctionLayout {
    ret := []Parameter {
        mkReg(ReturnRegs[0]),
        mkReg(ReturnRegs[1]),
    }

    /* shifts take the value pair and the count in registers */
    if h.IsShift() {
        return &FunctionLayout {
            Id   : h,
            Rets : ret,
            Args : []Parameter { mkReg(x86_64.EAX), mkReg(x86_64.EDX), mkReg(x86_64.ECX) },
        }
    }

    /* arithmetic helpers take both operands on the stack, low word first */
    fn := &FunctionLayout { Id: h, Rets: ret }
    for i := 0; i < 4; i++ {
        fn.Args = append(fn.Args, mkStack(fn.Sp))
        fn.Sp += 4
    }

    /* all except the unchecked multiply may throw */
    fn.Throws = h != HelperLMul
    return fn
}

// Layout returns the calling convention of h.
func (self Helper) Layout() *FunctionLayout {
    if self == HelperNone || self >= _HelperCount {
        panic("abi: no such helper: " + self.String())
    } else {
        return _Layouts[self]
    }
}

func (self Helper) IsShift() bool {
    return self == HelperLLsh || self == HelperLRsh || self == HelperLRsz
}

// Argc is the number of 32-bit arguments the helper takes.
func (self Helper) Argc() int {
    return len(self.Layout().Args)
}
