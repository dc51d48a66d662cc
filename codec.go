package bindantic

import (
	"encoding"
	"fmt"
	"io"
)

// Sizer is an interface for types that can report their binary size.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}

// Marshaler defines the core methods for encoding an object into a byte
// stream, integrating the standard library interfaces plus an allocation-free
// option.
type Marshaler interface {
	encoding.BinaryMarshaler // MarshalBinary() ([]byte, error)
	io.WriterTo              // WriteTo(w io.Writer) (int64, error)

	// MarshalTo encodes the object into a pre-allocated buffer, returning
	// io.ErrShortWrite if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler defines the core methods for decoding a byte stream into an
// object.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler // UnmarshalBinary(data []byte) error
	io.ReaderFrom              // ReadFrom(r io.Reader) (int64, error)
}

// Codec aggregates all binary serialization and deserialization interfaces.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}

// Instances are complete, self-sizing binary codecs.
var _ Codec = (*Instance)(nil)

// New returns an empty instance bound to the record type, ready for
// UnmarshalBinary or ReadFrom.
func (r *Record) New() *Instance {
	return &Instance{rec: r, values: map[string]any{}}
}

// Size returns the record type's total width.
func (i *Instance) Size() int { return i.rec.size }

// MarshalBinary implements the standard encoding.BinaryMarshaler interface.
func (i *Instance) MarshalBinary() ([]byte, error) {
	return i.rec.Pack(i)
}

// MarshalTo packs the instance into the provided buffer.
func (i *Instance) MarshalTo(buf []byte) (int, error) {
	if len(buf) < i.rec.size {
		return 0, io.ErrShortWrite
	}
	if err := i.rec.packInto(buf[:i.rec.size], i); err != nil {
		return 0, err
	}
	return i.rec.size, nil
}

// WriteTo implements io.WriterTo.
func (i *Instance) WriteTo(w io.Writer) (int64, error) {
	b, err := i.rec.Pack(i)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// UnmarshalBinary implements the standard encoding.BinaryUnmarshaler
// interface, replacing the instance's values with the decoded, validated
// ones.
func (i *Instance) UnmarshalBinary(data []byte) error {
	inst, err := i.rec.Unpack(data)
	if err != nil {
		return err
	}
	i.values = inst.values
	return nil
}

// ReadFrom implements io.ReaderFrom, consuming exactly Size() bytes.
func (i *Instance) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, i.rec.size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("%w: %s wants %d bytes, got %d", ErrTruncatedData, i.rec.name, i.rec.size, n)
		}
		return int64(n), err
	}
	return int64(n), i.UnmarshalBinary(buf)
}
