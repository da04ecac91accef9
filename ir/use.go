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

// Use describes the consumer of a value: the node consuming it and the
// operand slot holding it. A dummy use has no consumer.
type Use struct {
    rng  *Range
    def  *Node
    edge **Node
    user *Node
}

// NewUse describes the operand slot edge of user.
func NewUse(rng *Range, edge **Node, user *Node) Use {
    return Use {
        rng  : rng,
        def  : *edge,
        edge : edge,
        user : user,
    }
}

// DummyUse returns a use for a value that nobody consumes.
func DummyUse(rng *Range, def *Node) Use {
    return Use {
        rng : rng,
        def : def,
    }
}

func (self *Use) IsInitialized() bool { return self.rng != nil && self.def != nil }
func (self *Use) IsDummyUse()    bool { return self.user == nil }
func (self *Use) Def()           *Node { return self.def }
func (self *Use) User()          *Node { return self.user }

// ReplaceWith makes the consumer read node instead of the current def.
func (self *Use) ReplaceWith(node *Node) {
    if self.edge != nil {
        *self.edge = node
    }
    self.def = node
}

// ReplaceWithLocalVariable spills the def into a fresh temporary right after
// it is computed and makes the consumer load the temporary instead. Returns
// the number of the temporary.
func (self *Use) ReplaceWithLocalVariable(m *Method, weight uint32) int {
    if self.IsDummyUse() {
        panic("ir: cannot spill a value without a consumer: " + self.def.String())
    }

    /* grab a temporary of the same type */
    node := self.def
    lcl := m.Locals.GrabTemp(node.Type, "ReplaceWithLocalVariable")

    /* store the value, then load it back */
    store := m.NewStoreLclVar(lcl, node.Type, node)
    load := m.NewLclVar(lcl, node.Type)
    self.rng.InsertAfter(node, store, load)

    /* one reference for the definition, one for the use */
    m.Locals.IncRefCnts(store, weight)
    m.Locals.IncRefCnts(load, weight)
    self.ReplaceWith(load)
    return lcl
}
