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

// Cursor walks a range in execution order while the range is being rewritten.
// Nodes inserted after the current node are visited later, and removing the
// current node steps the cursor back to its predecessor.
type Cursor struct {
    rng   *Range
    cur   *Node
    begin bool
    end   bool
}

// NewCursor returns a cursor that visits from first onwards.
func NewCursor(rng *Range, first *Node) *Cursor {
    if first == nil {
        return &Cursor { rng: rng, end: true }
    } else if first.rng != rng {
        panic("ir: cursor start is not in range: " + first.String())
    } else {
        return &Cursor { rng: rng, cur: first.prev, begin: first.prev == nil }
    }
}

func (self *Cursor) Range() *Range {
    return self.rng
}

func (self *Cursor) Node() *Node {
    return self.cur
}

func (self *Cursor) Next() bool {
    switch {
        case self.end   : return false
        case self.begin : self.cur, self.begin = self.rng.first, false
        default         : self.cur = self.cur.next
    }

    /* check for end of range */
    if self.cur == nil {
        self.end = true
    }

    /* still have nodes to visit */
    return !self.end
}

func (self *Cursor) InsertAfter(at *Node, nodes ...*Node) {
    self.rng.InsertAfter(at, nodes...)
}

func (self *Cursor) InsertBefore(at *Node, nodes ...*Node) {
    self.rng.InsertBefore(at, nodes...)
}

// Remove unlinks node from the range, stepping back first if it is the node
// currently visited.
func (self *Cursor) Remove(node *Node) {
    if node == self.cur {
        if self.cur = node.prev; self.cur == nil {
            self.begin = true
        }
    }
    self.rng.Remove(node)
}
