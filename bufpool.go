package bindantic

import "sync"

// packBufPool reuses pack scratch buffers for record stream traffic. This
// spares WriteRecord a new byte buffer per record for records up to the
// default capacity.
var packBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, bufferSize)
		return &b
	},
}
