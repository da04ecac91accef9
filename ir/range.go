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
)

// Range is an execution-ordered, doubly-linked list of nodes. Every operand of
// a node in the range precedes that node.
type Range struct {
    first *Node
    last  *Node
}

func (self *Range) FirstNode() *Node { return self.first }
func (self *Range) LastNode()  *Node { return self.last }
func (self *Range) IsEmpty()   bool  { return self.first == nil }

// FirstNonPhiNode skips the φ definitions at the start of the range.
func (self *Range) FirstNonPhiNode() *Node {
    for p := self.first; p != nil; p = p.next {
        switch p.Op {
            case OpPhi, OpPhiArg : continue
            case OpStoreLclVar   : if p.X != nil && p.X.Op == OpPhi { continue }
        }
        return p
    }
    return nil
}

func (self *Range) Contains(node *Node) bool {
    return node != nil && node.rng == self
}

// InsertAfter links nodes, in order, right after at. A nil at inserts at the
// beginning of the range.
func (self *Range) InsertAfter(at *Node, nodes ...*Node) {
    if at != nil && at.rng != self {
        panic("ir: insertion point is not in range: " + at.String())
    }
    for _, p := range nodes {
        self.link(at, p)
        at = p
    }
}

// InsertBefore links nodes, in order, right before at. A nil at appends to the
// end of the range.
func (self *Range) InsertBefore(at *Node, nodes ...*Node) {
    if at == nil {
        self.InsertAtEnd(nodes...)
    } else {
        self.InsertAfter(at.prev, nodes...)
    }
}

func (self *Range) InsertAtEnd(nodes ...*Node) {
    self.InsertAfter(self.last, nodes...)
}

// Remove unlinks node from the range. Its operands are left untouched.
func (self *Range) Remove(node *Node) {
    if node.rng != self {
        panic("ir: node is not in range: " + node.String())
    }

    /* fix the forward link */
    if node.prev != nil {
        node.prev.next = node.next
    } else {
        self.first = node.next
    }

    /* fix the backward link */
    if node.next != nil {
        node.next.prev = node.prev
    } else {
        self.last = node.prev
    }

    /* detach the node */
    node.unlink()
}

// Nodes returns a snapshot of all nodes in execution order.
func (self *Range) Nodes() (r []*Node) {
    for p := self.first; p != nil; p = p.next {
        r = append(r, p)
    }
    return
}

// TryGetUse finds the node consuming the value of def, if any.
func (self *Range) TryGetUse(def *Node) (Use, bool) {
    if def.rng != self {
        panic("ir: def is not in range: " + def.String())
    }

    /* consumers always follow the definition */
    if def.IsValue() {
        for p := def.next; p != nil; p = p.next {
            for _, e := range p.Operands() {
                if *e == def {
                    return Use { rng: self, def: def, edge: e, user: p }, true
                }
            }
        }
    }

    /* no consumer */
    return Use{}, false
}

func (self *Range) String() string {
    var buf []string
    for p := self.first; p != nil; p = p.next {
        buf = append(buf, "    " + p.String())
    }
    return fmt.Sprintf(
        "Range {\n%s\n}",
        strings.Join(buf, "\n"),
    )
}

func (self *Range) link(at *Node, node *Node) {
    if node.rng != nil {
        panic("ir: node is already in a range: " + node.String())
    }

    /* link with the predecessor */
    if node.rng, node.prev = self, at; at == nil {
        node.next, self.first = self.first, node
    } else {
        node.next, at.next = at.next, node
    }

    /* link with the successor */
    if node.next == nil {
        self.last = node
    } else {
        node.next.prev = node
    }
}
