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
    `github.com/davecgh/go-spew/spew`
)

// CallTarget names the callee of an OpCall node. Helper is abi.HelperNone
// for ordinary method calls.
type CallTarget struct {
    Name   string
    Helper abi.Helper
}

func (self *CallTarget) String() string {
    if self.Helper != abi.HelperNone {
        return "help:" + self.Helper.String()
    } else {
        return self.Name
    }
}

// Node is one operation of the linear IR. Operands live in X and Y, except
// for calls and phis which keep them in Args.
type Node struct {
    Id     int
    Op     Oper
    Type   Type
    Flags  Flags
    X      *Node
    Y      *Node
    Args   []*Node
    Lcl    int
    Offs   int
    Iv     int64
    CastTo Type
    Fn     *CallTarget
    prev   *Node
    next   *Node
    rng    *Range
}

func (self *Node) Next() *Node { return self.next }
func (self *Node) Prev() *Node { return self.prev }

// Range returns the range holding the node, or nil once it has been removed.
func (self *Node) Range() *Range {
    return self.rng
}

// Precedes reports whether the node comes strictly before other in the same range.
func (self *Node) Precedes(other *Node) bool {
    if self.rng == nil || self.rng != other.rng {
        return false
    }
    for p := self.next; p != nil; p = p.next {
        if p == other {
            return true
        }
    }
    return false
}

// IsValue reports whether the node produces a value that may be consumed.
func (self *Node) IsValue() bool {
    return self.Type != TypeVoid && !self.Op.IsStore() && self.Op != OpReturn
}

func (self *Node) IsUnusedValue() bool {
    return self.Flags & FlagUnusedValue != 0
}

func (self *Node) SetUnusedValue() {
    self.Flags |= FlagUnusedValue
}

func (self *Node) ClearUnusedValue() {
    self.Flags &^= FlagUnusedValue
}

// IsHelperCall reports whether the node calls the given runtime helper.
func (self *Node) IsHelperCall(h abi.Helper) bool {
    return self.Op == OpCall && self.Fn != nil && self.Fn.Helper == h
}

// Operands returns the operand edges of the node in evaluation order. The
// edges point into the node itself and may be written to rebind an operand.
func (self *Node) Operands() (r []**Node) {
    if self.X != nil { r = append(r, &self.X) }
    if self.Y != nil { r = append(r, &self.Y) }
    for i := range self.Args { r = append(r, &self.Args[i]) }
    return
}

func (self *Node) String() string {
    var buf []string
    var val string

    /* operator payload */
    switch self.Op {
        case OpLclVar, OpStoreLclVar, OpPhiArg : buf = append(buf, fmt.Sprintf("V%02d", self.Lcl))
        case OpLclFld, OpStoreLclFld           : buf = append(buf, fmt.Sprintf("V%02d[+%d]", self.Lcl, self.Offs))
        case OpLea                             : buf = append(buf, fmt.Sprintf("+%d", self.Offs))
        case OpCnsInt                          : buf = append(buf, fmt.Sprintf("%#x", uint32(self.Iv)))
        case OpCnsLng                          : buf = append(buf, fmt.Sprintf("%#x", uint64(self.Iv)))
        case OpCast                            : buf = append(buf, "-> " + self.CastTo.String())
        case OpCall                            : buf = append(buf, self.Fn.String())
    }

    /* operands */
    for _, p := range self.Operands() {
        buf = append(buf, fmt.Sprintf("t%d", (*p).Id))
    }

    /* flags */
    if self.Flags != 0 {
        buf = append(buf, "(" + self.Flags.String() + ")")
    }

    /* value-producing nodes are named after their id */
    if self.IsValue() {
        val = fmt.Sprintf("t%d = ", self.Id)
    } else {
        val = "     "
    }

    /* join them together */
    return fmt.Sprintf(
        "%s%-10s %-5s %s",
        val,
        self.Op,
        self.Type,
        strings.Join(buf, " "),
    )
}

var _DumpConfig = spew.ConfigState {
    Indent                  : "    ",
    MaxDepth                : 2,
    DisableMethods          : true,
    DisablePointerAddresses : true,
    DisableCapacities       : true,
}

// Dump returns a detailed dump of the node and its direct operands.
func (self *Node) Dump() string {
    return _DumpConfig.Sdump(self)
}

func (self *Node) unlink() {
    self.prev = nil
    self.next = nil
    self.rng = nil
}
