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
)

// LclVar describes one local variable of the method being compiled.
type LclVar struct {
    Num       int
    Name      string
    Type      Type
    RefCnt    int
    RefCntWtd uint64

    /* 64-bit promotion: the halves live at FieldStart and FieldStart + 1 */
    Promoted   bool
    FieldStart int
    FieldCnt   int

    /* set on the halves of a promoted local */
    IsStructField bool
    Parent        int
    FldOffset     int

    DoNotEnregister bool    // address exposed, must live on the stack
    MultiRegRet     bool    // may receive a register pair directly
    RegCandidate    bool
    IsParam         bool
    IsTemp          bool
}

func (self *LclVar) String() string {
    return fmt.Sprintf("V%02d %s %s (refs=%d, wtd=%d)", self.Num, self.Name, self.Type, self.RefCnt, self.RefCntWtd)
}

// LclVarTable is the symbol table of a method. It is owned by a single
// compilation and never shared.
type LclVarTable struct {
    vars []*LclVar
}

func NewLclVarTable() *LclVarTable {
    return new(LclVarTable)
}

func (self *LclVarTable) Len() int {
    return len(self.vars)
}

func (self *LclVarTable) Get(num int) *LclVar {
    if num < 0 || num >= len(self.vars) {
        panic(fmt.Sprintf("ir: invalid local number V%02d", num))
    }
    return self.vars[num]
}

// Add declares a new local variable.
func (self *LclVarTable) Add(name string, vt Type) *LclVar {
    v := &LclVar {
        Num          : len(self.vars),
        Name         : name,
        Type         : vt,
        RegCandidate : true,
    }
    self.vars = append(self.vars, v)
    return v
}

// GrabTemp allocates a compiler temporary. 64-bit temporaries are created after
// promotion and are therefore never register candidates.
func (self *LclVarTable) GrabTemp(vt Type, reason string) int {
    v := self.Add(fmt.Sprintf("tmp%d (%s)", len(self.vars), reason), vt)
    v.IsTemp = true
    v.RegCandidate = !vt.IsLong()
    return v.Num
}

// Is64 reports whether the local holds a 64-bit integer.
func (self *LclVarTable) Is64(num int) bool {
    return self.Get(num).Type.IsLong()
}

func (self *LclVarTable) LoVar(num int) int {
    if v := self.Get(num); !v.Promoted {
        panic(fmt.Sprintf("ir: V%02d is not promoted", num))
    } else {
        return v.FieldStart
    }
}

func (self *LclVarTable) HiVar(num int) int {
    return self.LoVar(num) + 1
}

// PromoteLongVars splits every eligible 64-bit local into two 32-bit halves.
// Locals that are address exposed, receive register pairs, are unreferenced or
// are themselves halves stay whole and are kept out of registers.
func (self *LclVarTable) PromoteLongVars() {
    for _, v := range self.vars[:len(self.vars):len(self.vars)] {
        if !v.Type.IsLong() || v.Promoted {
            continue
        }

        /* check for promotion eligibility */
        if v.DoNotEnregister || v.MultiRegRet || v.RefCnt == 0 || v.IsStructField {
            v.RegCandidate = false
            continue
        }

        /* the halves are allocated right after each other */
        v.Promoted = true
        v.FieldCnt = 2
        v.FieldStart = len(self.vars)

        /* add the halves */
        for i, sfx := range [...]string { "lo", "hi" } {
            f := self.Add(v.Name + "." + sfx, TypeInt)
            f.IsStructField = true
            f.Parent = v.Num
            f.FldOffset = i * TypeInt.Size()
            f.IsParam = v.IsParam
        }
    }
}

// IncRefCnts accounts for one more reference to the local read or written by node.
func (self *LclVarTable) IncRefCnts(node *Node, weight uint32) {
    if node.Op.IsLocal() {
        v := self.Get(node.Lcl)
        v.RefCnt++
        v.RefCntWtd += uint64(weight)
    }
}

// DecRefCnts accounts for one less reference to the local read or written by node.
func (self *LclVarTable) DecRefCnts(node *Node, weight uint32) {
    if node.Op.IsLocal() {
        v := self.Get(node.Lcl)
        if v.RefCnt--; v.RefCnt < 0 {
            panic("ir: negative reference count: " + v.String())
        }
        if uint64(weight) > v.RefCntWtd {
            v.RefCntWtd = 0
        } else {
            v.RefCntWtd -= uint64(weight)
        }
    }
}
