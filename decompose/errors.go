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
    `fmt`

    `github.com/cloudwego/decomp64/ir`
)

// NotImplementedError reports an operator this pass has no decomposition for.
// Earlier phases must never hand such shapes to the pass.
type NotImplementedError struct {
    Op     ir.Oper
    Reason string
}

func (self *NotImplementedError) Error() string {
    return fmt.Sprintf("decompose: not implemented: %s: %s", self.Op, self.Reason)
}

// InvariantError reports an internal consistency violation. Node may be nil
// when the violation concerns a whole range.
type InvariantError struct {
    Node   *ir.Node
    Reason string
}

func (self *InvariantError) Error() string {
    if self.Node == nil {
        return "decompose: invariant violated: " + self.Reason
    } else {
        return fmt.Sprintf("decompose: invariant violated at t%d (%s): %s", self.Node.Id, self.Node.Op, self.Reason)
    }
}

// TempLimitError is raised once a method needs more temporaries than allowed.
type TempLimitError struct {
    Limit int
}

func (self *TempLimitError) Error() string {
    return fmt.Sprintf("decompose: more than %d temporaries required", self.Limit)
}

func notImplemented(op ir.Oper, reason string) {
    panic(&NotImplementedError { Op: op, Reason: reason })
}

func invariant(node *ir.Node, format string, args ...interface{}) {
    panic(&InvariantError { Node: node, Reason: fmt.Sprintf(format, args...) })
}

func assert(cond bool, node *ir.Node, reason string) {
    if !cond {
        invariant(node, "%s", reason)
    }
}
