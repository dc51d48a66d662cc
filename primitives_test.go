package bindantic

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimCodecWidths(t *testing.T) {
	want := map[Kind]int{
		U8: 1, U16: 2, U32: 4, U64: 8,
		I8: 1, I16: 2, I32: 4, I64: 8,
		F32: 4, F64: 8, Bool: 1, Char: 1,
	}
	for k, w := range want {
		assert.Equal(t, w, primCodecs[k].width, k.String())
	}
}

func TestPrimCodecRoundTrip(t *testing.T) {
	cases := map[Kind]any{
		U8:   uint64(0xAB),
		U16:  uint64(0xBBCC),
		U32:  uint64(0xDDEEFF00),
		U64:  uint64(0x0102030405060708),
		I8:   int64(-5),
		I16:  int64(-30000),
		I32:  int64(-2000000000),
		I64:  int64(-9000000000000000000),
		F32:  float64(float32(1.5)),
		F64:  float64(-2.25),
		Bool: true,
		Char: byte('A'),
	}
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		for k, v := range cases {
			pc := primCodecs[k]
			buf := make([]byte, pc.width)
			pc.put(buf, v, order)
			got := pc.get(buf, order)
			if k == Char {
				assert.Equal(t, v, got.(byte), k.String())
				continue
			}
			assert.Equal(t, v, got, k.String())
		}
	}
}

func TestPrimCodecEndianness(t *testing.T) {
	buf := make([]byte, 4)
	primCodecs[U32].put(buf, uint64(0x00000056), binary.BigEndian)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x56}, buf)
	primCodecs[U32].put(buf, uint64(0x00000056), binary.LittleEndian)
	assert.Equal(t, []byte{0x56, 0x00, 0x00, 0x00}, buf)
}

func TestBoolDecodesAnyNonzero(t *testing.T) {
	assert.Equal(t, true, primCodecs[Bool].get([]byte{0x02}, binary.BigEndian))
	assert.Equal(t, false, primCodecs[Bool].get([]byte{0x00}, binary.BigEndian))
}

func TestCoerceUnsignedBounds(t *testing.T) {
	v, err := coercePrimitive(U8, 255)
	require.NoError(t, err)
	assert.Equal(t, uint64(255), v)

	_, err = coercePrimitive(U8, 256)
	assert.ErrorIs(t, err, ErrIntegerRange)

	_, err = coercePrimitive(U8, -1)
	assert.ErrorIs(t, err, ErrIntegerRange)

	var re *rangeError
	require.ErrorAs(t, err, &re)
	assert.True(t, re.small)
}

func TestCoerceSignedBounds(t *testing.T) {
	v, err := coercePrimitive(I8, -128)
	require.NoError(t, err)
	assert.Equal(t, int64(-128), v)

	_, err = coercePrimitive(I8, -129)
	assert.ErrorIs(t, err, ErrIntegerRange)

	_, err = coercePrimitive(I8, 128)
	assert.ErrorIs(t, err, ErrIntegerRange)

	v, err = coercePrimitive(I64, int64(-9223372036854775808))
	require.NoError(t, err)
	assert.Equal(t, int64(-9223372036854775808), v)
}

func TestCoerceAcceptsAllIntegerTypes(t *testing.T) {
	for _, in := range []any{int(7), int8(7), int16(7), int32(7), int64(7), uint(7), uint8(7), uint16(7), uint32(7), uint64(7)} {
		v, err := coercePrimitive(U16, in)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), v)
	}
}

func TestCoerceFloats(t *testing.T) {
	v, err := coercePrimitive(F64, 3)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	v, err = coercePrimitive(F32, float32(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = coercePrimitive(F32, "nope")
	assert.ErrorIs(t, err, ErrValueType)
}

func TestCoerceChar(t *testing.T) {
	v, err := coercePrimitive(Char, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	v, err = coercePrimitive(Char, 'z')
	require.NoError(t, err)
	assert.Equal(t, "z", v)

	_, err = coercePrimitive(Char, "ab")
	assert.ErrorIs(t, err, ErrValueType)

	_, err = coercePrimitive(Char, "")
	assert.ErrorIs(t, err, ErrValueType)
}

func TestCoerceBool(t *testing.T) {
	v, err := coercePrimitive(Bool, true)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = coercePrimitive(Bool, 1)
	assert.ErrorIs(t, err, ErrValueType)
}
