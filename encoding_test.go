package bindantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatin1StringRoundTrip(t *testing.T) {
	r := NewRecord("S", BigEndian).
		Field("s", String, Length(4), Encoding("ISO-8859-1")).
		MustBuild()

	inst, err := r.Validate(map[string]any{"s": "hél"})
	require.NoError(t, err)

	b, err := r.Pack(inst)
	require.NoError(t, err)
	// é is a single byte (0xE9) in latin-1.
	assert.Equal(t, []byte{'h', 0xE9, 'l', 0x00}, b)

	back, err := r.Unpack(b)
	require.NoError(t, err)
	assert.Equal(t, "hél", back.Get("s"))
}

func TestLatin1CharEncodesToOneByte(t *testing.T) {
	r := NewRecord("C", BigEndian).
		DefaultEncoding("ISO-8859-1").
		Field("c", Char).
		MustBuild()

	inst, err := r.Validate(map[string]any{"c": "é"})
	require.NoError(t, err)
	b, err := r.Pack(inst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE9}, b)

	back, err := r.Unpack(b)
	require.NoError(t, err)
	assert.Equal(t, "é", back.Get("c"))
}

func TestUtf8TruncationMaySplitCodepoint(t *testing.T) {
	// The reservation is in bytes while the value length is in characters;
	// a byte-wise cut can land inside a multi-byte sequence. That is
	// documented behavior, not corrected automatically.
	r := NewRecord("S", BigEndian).
		Field("s", String, Length(3)).
		MustBuild()

	inst, err := r.Validate(map[string]any{"s": "aéz"})
	require.NoError(t, err)
	b, err := r.Pack(inst)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 0xC3, 0xA9}, b)

	// Truncating one byte earlier splits é; the decode then fails.
	short := NewRecord("S2", BigEndian).
		Field("s", String, Length(2)).
		MustBuild()
	inst, err = short.Validate(map[string]any{"s": "aé"})
	require.NoError(t, err)
	b, err = short.Pack(inst)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 0xC3}, b)

	_, err = short.Unpack(b)
	assert.ErrorIs(t, err, ErrStringDecode)
}

func TestNonAsciiCharRejectedInUtf8(t *testing.T) {
	r := NewRecord("C", BigEndian).
		Field("c", Char).
		MustBuild()
	_, err := r.Unpack([]byte{0xFF})
	assert.ErrorIs(t, err, ErrStringDecode)
}

func TestUnknownEncodingIsCompileError(t *testing.T) {
	_, err := NewRecord("S", BigEndian).
		Field("s", String, Length(4), Encoding("no-such-charset")).
		Build()
	assert.Error(t, err)
}

func TestEncodingLookupCache(t *testing.T) {
	e1, err := lookupEncoding("ISO-8859-1")
	require.NoError(t, err)
	e2, err := lookupEncoding("ISO-8859-1")
	require.NoError(t, err)
	assert.Same(t, e1, e2)

	u, err := lookupEncoding("utf-8")
	require.NoError(t, err)
	assert.Nil(t, u)
}
