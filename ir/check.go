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
    `tlog.app/go/errors`
)

// Check verifies that the range is well formed: links are consistent, every
// operand is defined earlier in the range and consumed exactly once, and every
// value without a consumer is marked as unused.
func (self *Range) Check() error {
    var prev *Node
    pos := make(map[*Node]int)
    users := make(map[*Node]*Node)

    /* walk every node in execution order */
    for p := self.first; p != nil; prev, p = p, p.next {
        if p.rng != self {
            return errors.New("t%d is linked but not owned by the range", p.Id)
        }

        /* backward links must mirror the forward links */
        if p.prev != prev {
            return errors.New("broken backward link at t%d", p.Id)
        }

        /* check every operand */
        for _, e := range p.Operands() {
            v := *e
            if v == nil {
                return errors.New("t%d has a nil operand", p.Id)
            }

            /* definition must precede use */
            if _, ok := pos[v]; !ok {
                return errors.New("operand t%d of t%d is not defined before its use", v.Id, p.Id)
            }

            /* the operand must produce a value that nobody else consumes */
            if !v.IsValue() {
                return errors.New("operand t%d of t%d does not produce a value", v.Id, p.Id)
            } else if v.IsUnusedValue() {
                return errors.New("t%d is marked as unused but consumed by t%d", v.Id, p.Id)
            } else if u, ok := users[v]; ok {
                return errors.New("t%d is consumed by both t%d and t%d", v.Id, u.Id, p.Id)
            }

            /* mark as used */
            users[v] = p
        }

        /* record the position */
        pos[p] = len(pos)
    }

    /* the tail pointer must be the last node visited */
    if prev != self.last {
        return errors.New("broken tail link")
    }

    /* values without any consumer must be marked */
    for p := self.first; p != nil; p = p.next {
        if _, ok := users[p]; !ok && p.IsValue() && !p.IsUnusedValue() {
            return errors.New("value t%d is never consumed", p.Id)
        }
    }

    /* all checks passed */
    return nil
}
