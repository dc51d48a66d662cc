package bindantic

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StreamTestSuite struct {
	suite.Suite
	rec *Record
}

func (s *StreamTestSuite) SetupSuite() {
	s.rec = NewRecord("Frame", BigEndian).
		Field("seq", U16).
		Field("flag", Bool).
		MustBuild()
}

func (s *StreamTestSuite) TestConstructorsRejectNil() {
	_, err := NewWriter(nil)
	s.Assert().ErrorIs(err, ErrNilIO)
	_, err = NewReader(nil)
	s.Assert().ErrorIs(err, ErrNilIO)
}

func (s *StreamTestSuite) TestRecordRoundTripOverStream() {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	s.Require().NoError(err)

	inst, err := s.rec.Validate(map[string]any{"seq": 7, "flag": true})
	s.Require().NoError(err)

	// A small frame header in front of each record, the way a serial
	// protocol would do it.
	w.WriteUint8(0xA5)
	w.WriteUint16(uint16(s.rec.Size()))
	w.WriteRecord(inst)
	n, err := w.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(1+2+s.rec.Size(), n)

	r, err := NewReader(&buf)
	s.Require().NoError(err)
	var magic uint8
	var size uint16
	r.ReadUint8(&magic)
	r.ReadUint16(&size)
	s.Require().NoError(r.Err())
	s.Assert().Equal(uint8(0xA5), magic)
	s.Assert().EqualValues(s.rec.Size(), size)

	back, err := r.ReadRecord(s.rec)
	s.Require().NoError(err)
	s.Assert().Equal(inst, back)
}

func (s *StreamTestSuite) TestMultipleRecordsBackToBack() {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	for i := 1; i <= 3; i++ {
		inst, err := s.rec.Validate(map[string]any{"seq": i, "flag": i%2 == 1})
		s.Require().NoError(err)
		w.WriteRecord(inst)
	}
	_, err := w.Result()
	s.Require().NoError(err)

	r, _ := NewReader(&buf)
	for i := 1; i <= 3; i++ {
		inst, err := r.ReadRecord(s.rec)
		s.Require().NoError(err)
		s.Assert().Equal(uint64(i), inst.Get("seq"))
	}
}

func (s *StreamTestSuite) TestTruncatedRecord() {
	r, _ := NewReader(bytes.NewReader([]byte{0x00}))
	_, err := r.ReadRecord(s.rec)
	s.Require().Error(err)
	s.Assert().ErrorIs(err, ErrTruncatedData)
}

func (s *StreamTestSuite) TestCleanEOF() {
	r, _ := NewReader(bytes.NewReader(nil))
	_, err := r.ReadRecord(s.rec)
	s.Require().Error(err)
	s.Assert().ErrorIs(err, io.EOF)
	s.Assert().True(r.IsEOF())
}

func (s *StreamTestSuite) TestWriterAlign() {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	w.WriteUint8(0xFF)
	w.Align(4)
	w.WriteUint8(0xEE)
	_, err := w.Result()
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0xFF, 0, 0, 0, 0xEE}, buf.Bytes())
}

func (s *StreamTestSuite) TestReaderAlign() {
	r, _ := NewReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	var v uint8
	r.ReadUint8(&v)
	r.Align(4)
	r.ReadUint8(&v)
	s.Require().NoError(r.Err())
	s.Assert().Equal(uint8(5), v)
}

func (s *StreamTestSuite) TestReaderErrorLatches() {
	r, _ := NewReader(bytes.NewReader([]byte{1, 2}))
	var v32 uint32
	r.ReadUint32(&v32)
	first := r.Err()
	s.Require().Error(first)
	s.Assert().ErrorIs(first, io.ErrUnexpectedEOF)

	var v8 uint8
	r.ReadUint8(&v8)
	s.Assert().Equal(first, r.Err())
	s.Assert().Equal(uint8(0), v8)
}

func TestStream(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func TestBytesWriter(t *testing.T) {
	buf := make([]byte, 5)
	w := NewBytesWriter(buf)

	n, err := w.Write([]byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.WriteZeros(2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, w.WriteByte(9))
	assert.Equal(t, []byte{1, 2, 0, 0, 9}, w.Bytes())
	assert.Equal(t, 0, w.Available())

	_, err = w.Write([]byte{1})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestBytesWriterNext(t *testing.T) {
	w := NewBytesWriter(make([]byte, 4))
	b, err := w.Next(2)
	require.NoError(t, err)
	b[0], b[1] = 0xAA, 0xBB
	_, err = w.Next(3)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, []byte{0xAA, 0xBB}, w.Bytes())
}

func TestBytesReader(t *testing.T) {
	r := NewBytesReader([]byte{1, 2, 3})
	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(1), b)
	assert.Equal(t, 2, r.Available())

	p := make([]byte, 8)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}
