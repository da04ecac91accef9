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

type Oper uint8

const (
    OpNone Oper = iota

    /* locals */
    OpLclVar                // load local
    OpLclFld                // load 32-bit field of local at Offs
    OpStoreLclVar           // X -> local
    OpStoreLclFld           // X -> field of local at Offs
    OpPhi                   // φ(Args...)
    OpPhiArg                // local flowing into a φ

    /* memory */
    OpInd                   // *(X)
    OpStoreInd              // Y -> *(X)
    OpLea                   // X + Offs

    /* constants */
    OpCnsInt                // 32-bit constant Iv
    OpCnsLng                // 64-bit constant Iv

    /* conversions */
    OpCast                  // X -> CastTo

    /* arithmetic and bitwise */
    OpAdd
    OpSub
    OpAnd
    OpOr
    OpXor
    OpAddLo                 // low-word add, produces carry
    OpAddHi                 // high-word add, consumes carry
    OpSubLo                 // low-word sub, produces borrow
    OpSubHi                 // high-word sub, consumes borrow
    OpMul
    OpMulLong               // 32 x 32 -> 64, result in a register pair
    OpMulHi
    OpDiv
    OpMod
    OpUDiv
    OpUMod

    /* shifts and rotates */
    OpLsh
    OpRsh
    OpRsz
    OpRol
    OpRor

    /* unary */
    OpNeg
    OpNot

    /* control */
    OpCall
    OpReturn

    /* register pair */
    OpLong

    /* interlocked */
    OpLockAdd
    OpXAdd
    OpXchg
    OpCmpXchg

    _OpCount
)

var _OpNames = [...]string {
    OpNone        : "none",
    OpLclVar      : "lclVar",
    OpLclFld      : "lclFld",
    OpStoreLclVar : "st.lclVar",
    OpStoreLclFld : "st.lclFld",
    OpPhi         : "phi",
    OpPhiArg      : "phiArg",
    OpInd         : "ind",
    OpStoreInd    : "storeIndir",
    OpLea         : "lea",
    OpCnsInt      : "const",
    OpCnsLng      : "lconst",
    OpCast        : "cast",
    OpAdd         : "add",
    OpSub         : "sub",
    OpAnd         : "and",
    OpOr          : "or",
    OpXor         : "xor",
    OpAddLo       : "add_lo",
    OpAddHi       : "add_hi",
    OpSubLo       : "sub_lo",
    OpSubHi       : "sub_hi",
    OpMul         : "mul",
    OpMulLong     : "mul_long",
    OpMulHi       : "mulhi",
    OpDiv         : "div",
    OpMod         : "mod",
    OpUDiv        : "udiv",
    OpUMod        : "umod",
    OpLsh         : "lsh",
    OpRsh         : "rsh",
    OpRsz         : "rsz",
    OpRol         : "rol",
    OpRor         : "ror",
    OpNeg         : "neg",
    OpNot         : "not",
    OpCall        : "call",
    OpReturn      : "return",
    OpLong        : "gt_long",
    OpLockAdd     : "lockadd",
    OpXAdd        : "xadd",
    OpXchg        : "xchg",
    OpCmpXchg     : "cmpxchg",
}

func (self Oper) String() string {
    if self < _OpCount {
        return _OpNames[self]
    } else {
        return "<invalid>"
    }
}

// IsLocal reports whether the operator reads or writes a local variable.
func (self Oper) IsLocal() bool {
    switch self {
        case OpLclVar, OpLclFld, OpStoreLclVar, OpStoreLclFld, OpPhiArg : return true
        default                                                        : return false
    }
}

func (self Oper) IsLocalStore() bool {
    return self == OpStoreLclVar || self == OpStoreLclFld
}

func (self Oper) IsStore() bool {
    return self == OpStoreLclVar || self == OpStoreLclFld || self == OpStoreInd
}

func (self Oper) IsConst() bool {
    return self == OpCnsInt || self == OpCnsLng
}

// IsLeaf reports whether the operator takes no operands and has no side effects,
// so that it can be duplicated or moved freely.
func (self Oper) IsLeaf() bool {
    switch self {
        case OpLclVar, OpLclFld, OpCnsInt, OpCnsLng : return true
        default                                     : return false
    }
}
