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

type Type uint8

const (
    TypeVoid Type = iota
    TypeByte
    TypeUByte
    TypeShort
    TypeUShort
    TypeInt
    TypeUInt
    TypeLong
    TypeULong
    TypeRef
)

var _TypeNames = [...]string {
    TypeVoid   : "void",
    TypeByte   : "byte",
    TypeUByte  : "ubyte",
    TypeShort  : "short",
    TypeUShort : "ushort",
    TypeInt    : "int",
    TypeUInt   : "uint",
    TypeLong   : "long",
    TypeULong  : "ulong",
    TypeRef    : "ref",
}

var _TypeSizes = [...]int {
    TypeVoid   : 0,
    TypeByte   : 1,
    TypeUByte  : 1,
    TypeShort  : 2,
    TypeUShort : 2,
    TypeInt    : 4,
    TypeUInt   : 4,
    TypeLong   : 8,
    TypeULong  : 8,
    TypeRef    : 4,
}

func (self Type) String() string {
    if int(self) < len(_TypeNames) {
        return _TypeNames[self]
    } else {
        return "<invalid>"
    }
}

// Size returns the size of the type in bytes on the 32-bit target.
func (self Type) Size() int {
    return _TypeSizes[self]
}

// IsLong reports whether values of the type need two 32-bit registers.
func (self Type) IsLong() bool {
    return self == TypeLong || self == TypeULong
}

func (self Type) IsUnsigned() bool {
    switch self {
        case TypeUByte, TypeUShort, TypeUInt, TypeULong, TypeRef : return true
        default                                                  : return false
    }
}

func (self Type) IsIntegral() bool {
    return self != TypeVoid
}

// Actual returns the type a node producing a value of this type carries:
// small integers widen to int, unsigned types fold onto their signed twin.
func (self Type) Actual() Type {
    switch self {
        case TypeByte, TypeUByte, TypeShort, TypeUShort, TypeInt, TypeUInt : return TypeInt
        case TypeLong, TypeULong                                          : return TypeLong
        default                                                           : return self
    }
}

// Unsigned returns the unsigned twin of an integer type.
func (self Type) Unsigned() Type {
    switch self {
        case TypeByte  : return TypeUByte
        case TypeShort : return TypeUShort
        case TypeInt   : return TypeUInt
        case TypeLong  : return TypeULong
        default        : return self
    }
}
