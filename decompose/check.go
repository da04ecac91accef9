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
    `tlog.app/go/errors`
)

// CheckDecomposed verifies that rng is ready for lowering: the only 64-bit
// nodes left are joins, phis, register pair producers stored straight into a
// local that can hold the pair, such stores, unused register pair results
// and returns of a join.
func CheckDecomposed(rng *ir.Range, lvs *ir.LclVarTable) error {
    for p := rng.FirstNode(); p != nil; p = p.Next() {
        if !p.Type.IsLong() {
            continue
        }

        /* check every kind of survivor */
        switch p.Op {
            case ir.OpLong: {
                if !p.X.Precedes(p.Y) || !p.Y.Precedes(p) {
                    return errors.New("halves of join t%d are out of order", p.Id)
                }
            }
            case ir.OpPhi, ir.OpPhiArg: {
                break
            }
            case ir.OpReturn: {
                if p.X.Op != ir.OpLong {
                    return errors.New("return t%d of an undecomposed value", p.Id)
                }
            }
            case ir.OpStoreLclVar: {
                if !isPairStore(p, lvs) && p.X.Op != ir.OpPhi {
                    return errors.New("undecomposed store t%d", p.Id)
                }
            }
            case ir.OpCall, ir.OpMulLong: {
                if u, ok := rng.TryGetUse(p); ok && !isPairStore(u.User(), lvs) {
                    return errors.New("register pair t%d is consumed by t%d", p.Id, u.User().Id)
                } else if !ok && !p.IsUnusedValue() {
                    return errors.New("register pair t%d is neither stored nor unused", p.Id)
                }
            }
            default: {
                return errors.New("64-bit node survived decomposition: %s", p)
            }
        }
    }
    return nil
}

func isPairStore(p *ir.Node, lvs *ir.LclVarTable) bool {
    switch {
        case p.Op != ir.OpStoreLclVar                          : return false
        case p.X.Op != ir.OpCall && p.X.Op != ir.OpMulLong     : return false
        default                                                : return lvs.Get(p.Lcl).MultiRegRet
    }
}
