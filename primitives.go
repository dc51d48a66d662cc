package bindantic

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

// Kind identifies a field kind. The exported values are the ones accepted in
// record declarations; array, nested-record and union fields are declared
// through ArrayOf, Nested and Union instead of a bare kind.
type Kind uint8

const (
	invalidKind Kind = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
	Char
	String
	Bytes
	Padding

	kindArray
	kindRecord
	kindUnion
)

var kindNames = map[Kind]string{
	U8: "uint8", U16: "uint16", U32: "uint32", U64: "uint64",
	I8: "int8", I16: "int16", I32: "int32", I64: "int64",
	F32: "float32", F64: "float64",
	Bool: "bool", Char: "char",
	String: "string", Bytes: "bytes", Padding: "padding",
	kindArray: "array", kindRecord: "record", kindUnion: "union",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// parseKind resolves the textual kind names accepted in schema files.
// Composite kinds are not resolvable here.
func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name != s {
			continue
		}
		if k.isPrimitive() || k == String || k == Bytes || k == Padding {
			return k, true
		}
	}
	return invalidKind, false
}

func (k Kind) isPrimitive() bool { return k >= U8 && k <= Char }

// primCodec is one entry of the primitive codec table: a fixed width plus an
// encode and a decode step. put assumes a canonical, range-checked value and a
// destination slice of exactly width bytes.
type primCodec struct {
	width int
	put   func(dst []byte, v any, o binary.ByteOrder)
	get   func(src []byte, o binary.ByteOrder) any
}

var primCodecs = map[Kind]primCodec{
	U8: {1,
		func(dst []byte, v any, o binary.ByteOrder) { dst[0] = byte(v.(uint64)) },
		func(src []byte, o binary.ByteOrder) any { return uint64(src[0]) }},
	U16: {2,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint16(dst, uint16(v.(uint64))) },
		func(src []byte, o binary.ByteOrder) any { return uint64(o.Uint16(src)) }},
	U32: {4,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint32(dst, uint32(v.(uint64))) },
		func(src []byte, o binary.ByteOrder) any { return uint64(o.Uint32(src)) }},
	U64: {8,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint64(dst, v.(uint64)) },
		func(src []byte, o binary.ByteOrder) any { return o.Uint64(src) }},
	I8: {1,
		func(dst []byte, v any, o binary.ByteOrder) { dst[0] = byte(v.(int64)) },
		func(src []byte, o binary.ByteOrder) any { return int64(int8(src[0])) }},
	I16: {2,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint16(dst, uint16(v.(int64))) },
		func(src []byte, o binary.ByteOrder) any { return int64(int16(o.Uint16(src))) }},
	I32: {4,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint32(dst, uint32(v.(int64))) },
		func(src []byte, o binary.ByteOrder) any { return int64(int32(o.Uint32(src))) }},
	I64: {8,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint64(dst, uint64(v.(int64))) },
		func(src []byte, o binary.ByteOrder) any { return int64(o.Uint64(src)) }},
	F32: {4,
		func(dst []byte, v any, o binary.ByteOrder) {
			o.PutUint32(dst, math.Float32bits(float32(v.(float64))))
		},
		func(src []byte, o binary.ByteOrder) any {
			return float64(math.Float32frombits(o.Uint32(src)))
		}},
	F64: {8,
		func(dst []byte, v any, o binary.ByteOrder) { o.PutUint64(dst, math.Float64bits(v.(float64))) },
		func(src []byte, o binary.ByteOrder) any { return math.Float64frombits(o.Uint64(src)) }},
	Bool: {1,
		func(dst []byte, v any, o binary.ByteOrder) {
			if v.(bool) {
				dst[0] = 1
			} else {
				dst[0] = 0
			}
		},
		// Any nonzero byte decodes to true.
		func(src []byte, o binary.ByteOrder) any { return src[0] != 0 }},
	// Char carries the raw byte here; the descriptor converts to and from the
	// record's string encoding around this entry.
	Char: {1,
		func(dst []byte, v any, o binary.ByteOrder) { dst[0] = v.(byte) },
		func(src []byte, o binary.ByteOrder) any { return src[0] }},
}

var uintMax = map[Kind]uint64{U8: math.MaxUint8, U16: math.MaxUint16, U32: math.MaxUint32, U64: math.MaxUint64}

var intBounds = map[Kind][2]int64{
	I8:  {math.MinInt8, math.MaxInt8},
	I16: {math.MinInt16, math.MaxInt16},
	I32: {math.MinInt32, math.MaxInt32},
	I64: {math.MinInt64, math.MaxInt64},
}

// rangeError reports an integer that does not fit its declared width. It
// unwraps to ErrIntegerRange so the structural family catches it, and keeps
// the direction so validation can map it to too_small/too_big.
type rangeError struct {
	small bool
	v     any
	k     Kind
}

func (e *rangeError) Error() string {
	dir := "above"
	if e.small {
		dir = "below"
	}
	return fmt.Sprintf("%v: %v is %s the %s range", ErrIntegerRange, e.v, dir, e.k)
}

func (e *rangeError) Unwrap() error { return ErrIntegerRange }

// coercePrimitive converts a caller-supplied value to the canonical runtime
// type of the kind: uint64 for unsigned, int64 for signed, float64 for floats,
// bool, and a one-rune string for char. Integer bounds are enforced here.
func coercePrimitive(k Kind, v any) (any, error) {
	switch k {
	case U8, U16, U32, U64:
		u, neg, ok := asInteger(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants an integer, got %T", ErrValueType, k, v)
		}
		if neg {
			return nil, &rangeError{small: true, v: v, k: k}
		}
		if u > uintMax[k] {
			return nil, &rangeError{v: v, k: k}
		}
		return u, nil

	case I8, I16, I32, I64:
		u, neg, ok := asInteger(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants an integer, got %T", ErrValueType, k, v)
		}
		b := intBounds[k]
		if neg {
			if u == 1<<63 {
				// Magnitude of MinInt64 cannot be negated as int64.
				if k == I64 {
					return int64(math.MinInt64), nil
				}
				return nil, &rangeError{small: true, v: v, k: k}
			}
			i := -int64(u)
			if i < b[0] {
				return nil, &rangeError{small: true, v: v, k: k}
			}
			return i, nil
		}
		if u > uint64(b[1]) {
			return nil, &rangeError{v: v, k: k}
		}
		return int64(u), nil

	case F32, F64:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
		if u, neg, ok := asInteger(v); ok {
			f := float64(u)
			if neg {
				f = -f
			}
			return f, nil
		}
		return nil, fmt.Errorf("%w: %s wants a number, got %T", ErrValueType, k, v)

	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: bool wants a bool, got %T", ErrValueType, v)
		}
		return b, nil

	case Char:
		switch c := v.(type) {
		case string:
			if utf8.RuneCountInString(c) != 1 {
				return nil, fmt.Errorf("%w: char wants exactly one character, got %q", ErrValueType, c)
			}
			return c, nil
		case rune:
			return string(c), nil
		}
		if u, neg, ok := asInteger(v); ok && !neg && u <= 0x10FFFF {
			return string(rune(u)), nil
		}
		return nil, fmt.Errorf("%w: char wants a one-character string, got %T", ErrValueType, v)
	}
	return nil, fmt.Errorf("%w: %s is not a primitive kind", ErrUnknownKind, k)
}

// asInteger normalizes any Go integer type to a magnitude plus sign.
func asInteger(v any) (mag uint64, neg bool, ok bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 {
			// Negating MinInt64 overflows; go through the unsigned magnitude.
			return uint64(-(i + 1)) + 1, true, true
		}
		return uint64(i), false, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), false, true
	}
	return 0, false, false
}
