package bindantic

import (
	"io"

	"golang.org/x/exp/constraints"
)

const bufferSize = 4096

var (
	empty   [bufferSize]byte
	discard [bufferSize]byte
)

// Zero is an io.Reader that reads an infinite stream of zero bytes.
var Zero io.Reader = zero{}

type zero struct{}

func (z zero) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) / align * align }

// Discard reads and drops n bytes from r.
func Discard(r io.Reader, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if n <= bufferSize {
		skip, err := io.ReadFull(r, discard[:n])
		return int64(skip), err
	}
	return io.CopyN(io.Discard, r, n)
}
