package bindantic

import (
	"fmt"
	"unicode/utf8"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// encCache avoids repeated IANA index lookups; resolved encodings are
// immutable and safe to share across record types.
var encCache = xsync.NewMapOf[string, encoding.Encoding]()

// lookupEncoding resolves a string encoding by IANA name. UTF-8 (the default)
// resolves to nil, meaning Go's native string representation is used directly.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "", "utf-8", "utf8", "UTF-8":
		return nil, nil
	}
	if enc, ok := encCache.Load(name); ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %v", ErrUnknownKind, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: encoding %q has no codec", ErrUnknownKind, name)
	}
	encCache.Store(name, enc)
	return enc, nil
}

// encodeText converts a string to bytes in the given encoding. A nil encoding
// means UTF-8, where the string's own bytes are the wire form.
func encodeText(enc encoding.Encoding, s string) ([]byte, error) {
	if enc == nil {
		return []byte(s), nil
	}
	return enc.NewEncoder().Bytes([]byte(s))
}

// decodeText converts wire bytes back to a string.
func decodeText(enc encoding.Encoding, b []byte) (string, error) {
	if enc == nil {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid utf-8", ErrStringDecode)
		}
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStringDecode, err)
	}
	return string(out), nil
}
