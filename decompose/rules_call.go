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

// storeNodeToVar handles nodes producing their result in a register pair.
// A result stored straight into a local that can hold the pair is left as
// it is, any other result goes through a temporary which is then decomposed
// like an ordinary local.
func (self *Decomposer) storeNodeToVar(use *ir.Use) {
    if use.IsDummyUse() {
        return
    }

    /* check for direct stores into a local */
    if user := use.User(); user.Op == ir.OpStoreLclVar {
        v := self.lvs.Get(user.Lcl)

        /* already able to hold the pair */
        if v.MultiRegRet {
            return
        }

        /* unpromoted locals can simply be marked */
        if !v.Promoted {
            v.MultiRegRet = true
            return
        }
    }

    /* force the result into a temporary */
    tmp := self.replaceWithLclVar(use)
    self.lvs.Get(tmp).MultiRegRet = true

    /* then split the load of it */
    self.decomposeLclVar(use)
}
