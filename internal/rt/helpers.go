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


package rt

import (
    `math`
    `math/bits`

    `github.com/cloudwego/decomp64/internal/abi`
    `tlog.app/go/errors`
)

var (
    ErrOverflow     = errors.New("arithmetic overflow")
    ErrDivideByZero = errors.New("divide by zero")
)

// Shift helpers only honour the low 6 bits of the count.
const _ShiftMask = 63

func LLsh(x uint64, n uint32) uint64 { return x << (n & _ShiftMask) }
func LRsh(x uint64, n uint32) uint64 { return uint64(int64(x) >> (n & _ShiftMask)) }
func LRsz(x uint64, n uint32) uint64 { return x >> (n & _ShiftMask) }

func LMul(x uint64, y uint64) uint64 {
    return x * y
}

func LMulOvf(x uint64, y uint64) (uint64, error) {
    a, b := int64(x), int64(y)
    r := a * b

    /* overflow iff dividing back does not give the operand */
    if a != 0 && (r / a != b || (a == -1 && b == math.MinInt64)) {
        return 0, ErrOverflow
    } else {
        return uint64(r), nil
    }
}

func ULMulOvf(x uint64, y uint64) (uint64, error) {
    if hi, lo := bits.Mul64(x, y); hi != 0 {
        return 0, ErrOverflow
    } else {
        return lo, nil
    }
}

func LDiv(x uint64, y uint64) (uint64, error) {
    switch {
        case y == 0                                       : return 0, ErrDivideByZero
        case int64(y) == -1 && int64(x) == math.MinInt64 : return 0, ErrOverflow
        default                                           : return uint64(int64(x) / int64(y)), nil
    }
}

func LMod(x uint64, y uint64) (uint64, error) {
    switch {
        case y == 0         : return 0, ErrDivideByZero
        case int64(y) == -1 : return 0, nil
        default             : return uint64(int64(x) % int64(y)), nil
    }
}

func ULDiv(x uint64, y uint64) (uint64, error) {
    if y == 0 {
        return 0, ErrDivideByZero
    } else {
        return x / y, nil
    }
}

func ULMod(x uint64, y uint64) (uint64, error) {
    if y == 0 {
        return 0, ErrDivideByZero
    } else {
        return x % y, nil
    }
}

var _Binary = [...]func(uint64, uint64) (uint64, error) {
    abi.HelperLMulOvf  : LMulOvf,
    abi.HelperULMulOvf : ULMulOvf,
    abi.HelperLDiv     : LDiv,
    abi.HelperLMod     : LMod,
    abi.HelperULDiv    : ULDiv,
    abi.HelperULMod    : ULMod,
}

// Invoke runs helper h on the machine state fp, as the compiled code would
// after setting up the arguments. The result is left in EDX:EAX.
func Invoke(h abi.Helper, fp *abi.Frame) error {
    fn := h.Layout()

    /* shift helpers */
    switch h {
        case abi.HelperLLsh : fp.SetResult(LLsh(fp.Arg64(fn, 0), fp.Arg(fn, 2))); return nil
        case abi.HelperLRsh : fp.SetResult(LRsh(fp.Arg64(fn, 0), fp.Arg(fn, 2))); return nil
        case abi.HelperLRsz : fp.SetResult(LRsz(fp.Arg64(fn, 0), fp.Arg(fn, 2))); return nil
        case abi.HelperLMul : fp.SetResult(LMul(fp.Arg64(fn, 0), fp.Arg64(fn, 2))); return nil
    }

    /* the checked binary helpers */
    if r, err := _Binary[h](fp.Arg64(fn, 0), fp.Arg64(fn, 2)); err != nil {
        return err
    } else {
        fp.SetResult(r)
        return nil
    }
}
