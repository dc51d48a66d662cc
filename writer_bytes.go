package bindantic

import "io"

// BytesWriter is an io.Writer that writes to a pre-allocated byte slice.
// It will not grow the slice. If a write exceeds the available space, it
// writes as much as it can and returns io.ErrShortWrite.
type BytesWriter struct {
	B []byte // destination slice
	N int    // current write position
}

// NewBytesWriter creates a new BytesWriter over the full capacity of p.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// newExactWriter bounds the writer to exactly len(p); the descriptor schedule
// fills such a buffer completely and must not run past it.
func newExactWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p}
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.N >= len(w.B) {
		return 0, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], p)
	w.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteByte implements the io.ByteWriter interface.
func (w *BytesWriter) WriteByte(c byte) error {
	if w.N >= len(w.B) {
		return io.ErrShortWrite
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// WriteZeros writes n zero bytes, typically padding.
func (w *BytesWriter) WriteZeros(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if w.N+n > len(w.B) {
		avail := len(w.B) - w.N
		if avail < 0 {
			avail = 0
		}
		clear(w.B[w.N : w.N+avail])
		w.N += avail
		return avail, io.ErrShortWrite
	}
	clear(w.B[w.N : w.N+n])
	w.N += n
	return n, nil
}

// Next reserves the next n bytes for in-place encoding and advances the
// position past them.
func (w *BytesWriter) Next(n int) ([]byte, error) {
	if w.N+n > len(w.B) {
		return nil, io.ErrShortWrite
	}
	b := w.B[w.N : w.N+n]
	w.N += n
	return b, nil
}

// Reset allows the underlying byte slice to be reused.
func (w *BytesWriter) Reset() { w.N = 0 }

// Len returns the number of bytes written.
func (w *BytesWriter) Len() int { return w.N }

// Size returns the capacity of the underlying byte slice.
func (w *BytesWriter) Size() int { return len(w.B) }

// Available returns the number of bytes available for writing.
func (w *BytesWriter) Available() int { return len(w.B) - w.N }

// Bytes returns a slice view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
