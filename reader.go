package bindantic

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader is a buffered binary reader for streaming records off a transport.
// Like Writer it latches the first error; subsequent reads become no-ops.
type Reader struct {
	r     io.Reader
	br    io.ByteReader
	count int64
	err   error
	order binary.ByteOrder
}

// NewReader creates a new Reader. A *BytesReader is used directly; anything
// else is wrapped in bufio.
func NewReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	if br, ok := r.(*BytesReader); ok {
		return &Reader{r: br, br: br, order: binary.BigEndian}, nil
	}
	b := bufio.NewReader(r)
	return &Reader{r: b, br: b, order: binary.BigEndian}, nil
}

// WithByteOrder sets the byte order used by the primitive read methods and
// returns the reader for chaining. Records always use their own mode.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

// Count returns the total bytes read so far.
func (r *Reader) Count() int64 { return r.count }

// Err returns the latched error state.
func (r *Reader) Err() error { return r.err }

// IsEOF reports whether the stream ended cleanly.
func (r *Reader) IsEOF() bool { return r.err == io.EOF }

func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

// readFull reads exactly n bytes. A partial read latches ErrUnexpectedEOF; a
// clean end-of-stream before the first byte latches io.EOF.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r.r, buf)
	r.count += int64(read)
	if err != nil {
		if err == io.EOF && read > 0 {
			err = io.ErrUnexpectedEOF
		}
		r.setError(err)
		return nil
	}
	return buf
}

// ReadBytes reads n bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	return r.readFull(n)
}

// Align discards bytes until the stream offset is a multiple of n.
func (r *Reader) Align(n int) {
	if n <= 1 || r.err != nil {
		return
	}
	skipped, err := Discard(r.r, Roundup(r.count, int64(n))-r.count)
	r.count += skipped
	r.setError(err)
}

// ReadRecord reads exactly rec.Size() bytes and unpacks them into a
// validated instance. A stream that ends mid-record reports truncation
// instead of a clean EOF.
func (r *Reader) ReadRecord(rec *Record) (*Instance, error) {
	if r.err != nil {
		return nil, r.err
	}
	buf := make([]byte, rec.size)
	read, err := io.ReadFull(r.r, buf)
	r.count += int64(read)
	if err != nil {
		if err == io.ErrUnexpectedEOF || (err == io.EOF && read > 0) {
			err = fmt.Errorf("%w: %s wants %d bytes, stream ended after %d",
				ErrTruncatedData, rec.name, rec.size, read)
		}
		r.setError(err)
		return nil, r.err
	}
	inst, err := rec.Unpack(buf)
	if err != nil {
		r.setError(err)
		return nil, err
	}
	return inst, nil
}

// --- Primitive frame-header reads ---

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.br.ReadByte()
	if err == nil {
		r.count++
	} else {
		r.err = err
	}
	return b, err
}

func (r *Reader) ReadUint8(dest *uint8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = r.order.Uint16(buf)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = r.order.Uint32(buf)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = r.order.Uint64(buf)
	}
}
