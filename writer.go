package bindantic

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Writer is a buffered binary writer for streaming records over a transport
// such as a serial link. It tracks the first error that occurs; after an
// error, all subsequent write operations become no-ops so call sites can
// check once at the end.
type Writer struct {
	w     *bufio.Writer
	count int64 // total bytes written
	err   error // first error encountered
	order binary.ByteOrder
}

// NewWriter creates a new Writer. Frame headers written through the primitive
// methods default to network byte order.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	return &Writer{w: bufio.NewWriter(w), order: binary.BigEndian}, nil
}

// WithByteOrder sets the byte order used by the primitive write methods and
// returns the writer for chaining. Records always use their own mode.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

// Count returns the total bytes written so far.
func (w *Writer) Count() int64 { return w.count }

// Err returns the latched error state.
func (w *Writer) Err() error { return w.err }

// setError records the first non-nil error so the root cause of a failure
// chain is preserved.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteBytes writes a byte slice, latching any error.
func (w *Writer) WriteBytes(p []byte) { _, _ = w.Write(p) }

// WriteZeros writes n zero bytes, often for inter-record padding.
func (w *Writer) WriteZeros(n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	for n > 0 {
		chunk := n
		if chunk > bufferSize {
			chunk = bufferSize
		}
		written, err := w.w.Write(empty[:chunk])
		w.count += int64(written)
		if err != nil {
			w.setError(err)
			return
		}
		n -= chunk
	}
}

// Align writes zero bytes until the stream offset is a multiple of n.
func (w *Writer) Align(n int) {
	if n > 1 {
		w.WriteZeros(Roundup(w.count, int64(n)) - w.count)
	}
}

// WriteRecord packs the instance and writes its bytes. The pack buffer is
// pooled, so steady-state record traffic does not allocate a fresh byte
// buffer per record.
func (w *Writer) WriteRecord(inst *Instance) {
	if inst == nil || w.err != nil {
		return
	}
	bufp := packBufPool.Get().(*[]byte)
	defer packBufPool.Put(bufp)

	out, err := inst.rec.AppendPack((*bufp)[:0], inst)
	if err != nil {
		w.setError(err)
		return
	}
	if cap(out) > cap(*bufp) {
		*bufp = out
	}
	w.WriteBytes(out)
}

// --- Primitive frame-header writes ---

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(v)
	if err == nil {
		w.count++
	} else {
		w.err = err
	}
	return err
}

func (w *Writer) WriteUint8(v uint8) { _ = w.WriteByte(v) }

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:])
}
