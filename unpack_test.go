package bindantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpackLengthPrecondition(t *testing.T) {
	r := headerRecord(t)
	_, err := r.Unpack(make([]byte, r.Size()-1))
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = r.Unpack(make([]byte, r.Size()+1))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestUnpackRoundTrip(t *testing.T) {
	r := headerRecord(t)
	inst, err := r.Validate(map[string]any{"b": 5, "c": "Hello"})
	require.NoError(t, err)

	b, err := r.Pack(inst)
	require.NoError(t, err)
	back, err := r.Unpack(b)
	require.NoError(t, err)
	assert.Equal(t, inst, back)
}

func TestUnpackStringStopsAtNul(t *testing.T) {
	r := NewRecord("S", BigEndian).
		Field("s", String, Length(6)).
		MustBuild()
	inst, err := r.Unpack([]byte{'h', 'i', 0, 'x', 'x', 'x'})
	require.NoError(t, err)
	assert.Equal(t, "hi", inst.Get("s"))
}

func TestUnpackBytesPreservesZeros(t *testing.T) {
	r := NewRecord("B", BigEndian).
		Field("raw", Bytes, Length(4)).
		MustBuild()
	inst, err := r.Unpack([]byte{0xAA, 0x00, 0xBB, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0x00, 0xBB, 0x00}, inst.Get("raw"))
}

func TestUnpackSkipsPaddingAndOutlets(t *testing.T) {
	r := NewRecord("Msg", BigEndian).
		Field("x", U8).
		Field("pad", Padding, Length(2)).
		Field("sum_outlet", U8).
		Computed("sum", U8, func(i *Instance) any { return i.Get("x") }).
		MustBuild()
	require.Equal(t, 4, r.Size())

	dict, err := r.UnpackDict([]byte{0x09, 0xFF, 0xFF, 0x77})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": uint64(9)}, dict)

	// The outlet bytes are discarded; the provider recomputes from the
	// validated instance.
	inst, err := r.Unpack([]byte{0x09, 0xFF, 0xFF, 0x77})
	require.NoError(t, err)
	b, err := r.Pack(inst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09, 0x00, 0x00, 0x09}, b)
}

func TestUnpackArrayTrimsTrailingFillers(t *testing.T) {
	r := NewRecord("A", BigEndian).
		Field("arr", ArrayOf(U8), Length(5), Filler(0)).
		MustBuild()

	inst, err := r.Unpack([]byte{1, 2, 3, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(2), uint64(3)}, inst.Get("arr"))

	// Interior fillers stay.
	inst, err = r.Unpack([]byte{1, 0, 2, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(0), uint64(2)}, inst.Get("arr"))
}

func TestUnpackArrayKeepFillers(t *testing.T) {
	r := NewRecord("A", BigEndian).
		Field("arr", ArrayOf(U8), Length(3), Filler(0), KeepFillers()).
		MustBuild()
	inst, err := r.Unpack([]byte{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(0), uint64(0)}, inst.Get("arr"))
}

func TestUnpackArrayWithoutFillerKeepsAll(t *testing.T) {
	r := NewRecord("A", BigEndian).
		Field("arr", ArrayOf(U8), Length(3)).
		MustBuild()
	inst, err := r.Unpack([]byte{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(0), uint64(0)}, inst.Get("arr"))
}

func TestUnpackNestedRecord(t *testing.T) {
	inner := NewRecord("Point", BigEndian).
		Field("x", U16).
		Field("y", U16).
		MustBuild()
	outer := NewRecord("Wrap", BigEndian).
		Field("p", Nested(inner)).
		MustBuild()

	inst, err := outer.Unpack([]byte{0, 3, 0, 4})
	require.NoError(t, err)
	p, ok := inst.Get("p").(*Instance)
	require.True(t, ok)
	assert.Equal(t, inner, p.Type())
	assert.Equal(t, uint64(3), p.Get("x"))
	assert.Equal(t, uint64(4), p.Get("y"))
}

func TestUnpackBoolNonzero(t *testing.T) {
	r := NewRecord("F", BigEndian).
		Field("flag", Bool).
		MustBuild()
	inst, err := r.Unpack([]byte{0x5A})
	require.NoError(t, err)
	assert.Equal(t, true, inst.Get("flag"))
}

func TestUnpackValidationErrorsPropagate(t *testing.T) {
	r := NewRecord("E", BigEndian).
		Field("kind", U8, Enum(1, 2, 3)).
		MustBuild()
	_, err := r.Unpack([]byte{0x09})
	require.Error(t, err)
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidEnum, iss[0].Code)
}

func TestRoundTripAllPrimitives(t *testing.T) {
	r := NewRecord("All", LittleEndian).
		Field("a", U8).
		Field("b", U16).
		Field("c", U32).
		Field("d", U64).
		Field("e", I8).
		Field("f", I16).
		Field("g", I32).
		Field("h", I64).
		Field("i", F32).
		Field("j", F64).
		Field("k", Bool).
		Field("l", Char).
		MustBuild()

	inst, err := r.Validate(map[string]any{
		"a": 1, "b": 2, "c": 3, "d": 4,
		"e": -1, "f": -2, "g": -3, "h": -4,
		"i": 1.5, "j": -2.25, "k": true, "l": "x",
	})
	require.NoError(t, err)

	b, err := r.Pack(inst)
	require.NoError(t, err)
	require.Len(t, b, r.Size())

	back, err := r.Unpack(b)
	require.NoError(t, err)
	assert.Equal(t, inst, back)
}
