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
    `github.com/cloudwego/decomp64/ir`
)

// FinalizeDecomposition joins the two halves of a decomposed value right
// after hi and hands the join to the consumer of use. For a dummy use the
// join is marked as unused.
func (self *Decomposer) FinalizeDecomposition(use *ir.Use, lo *ir.Node, hi *ir.Node) *ir.Node {
    rng := self.cur.Range()
    assert(rng.Contains(lo) && rng.Contains(hi), use.Def(), "halves are not in the range")
    assert(lo.Precedes(hi), use.Def(), "low half does not precede the high half")

    /* both halves are consumed by the join */
    lo.ClearUnusedValue()
    hi.ClearUnusedValue()

    /* create the join */
    jn := self.m.NewLong(lo, hi)
    self.cur.InsertAfter(hi, jn)
    count(&JoinCount)

    /* hand it to the consumer */
    if use.IsDummyUse() {
        jn.SetUnusedValue()
    } else {
        use.ReplaceWith(jn)
    }
    return jn
}
