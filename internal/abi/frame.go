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
    `encoding/binary`

    `github.com/chenzhuoyu/iasm/x86_64`
)

// Frame is the machine state seen by a helper at its entry point: the
// argument registers and the outgoing argument area.
type Frame struct {
    Regs  map[x86_64.Register32]uint32
    Stack []byte
}

// Marshal places args according to the layout of the helper.
func (self *FunctionLayout) Marshal(args []uint32) *Frame {
    if len(args) != len(self.Args) {
        panic("abi: argument count mismatch for " + self.Id.String())
    }

    /* create the frame */
    fp := &Frame {
        Regs  : make(map[x86_64.Register32]uint32),
        Stack : make([]byte, self.Sp),
    }

    /* place every argument */
    for i, p := range self.Args {
        if p.InRegister {
            fp.Regs[p.Reg] = args[i]
        } else {
            binary.LittleEndian.PutUint32(fp.Stack[p.Mem:], args[i])
        }
    }
    return fp
}

// Arg fetches the i-th argument of the helper from the frame.
func (self *Frame) Arg(fn *FunctionLayout, i int) uint32 {
    if p := fn.Args[i]; p.InRegister {
        return self.Regs[p.Reg]
    } else {
        return binary.LittleEndian.Uint32(self.Stack[p.Mem:])
    }
}

// Arg64 fetches the argument pair starting at i as a 64-bit value.
func (self *Frame) Arg64(fn *FunctionLayout, i int) uint64 {
    return uint64(self.Arg(fn, i)) | uint64(self.Arg(fn, i + 1)) << 32
}

// SetResult stores a 64-bit result into EDX:EAX.
func (self *Frame) SetResult(v uint64) {
    self.Regs[ReturnRegs[0]] = uint32(v)
    self.Regs[ReturnRegs[1]] = uint32(v >> 32)
}

// Result reads the 64-bit result from EDX:EAX.
func (self *Frame) Result() uint64 {
    return uint64(self.Regs[ReturnRegs[0]]) | uint64(self.Regs[ReturnRegs[1]]) << 32
}
