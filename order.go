package bindantic

import (
	"encoding/binary"
	"fmt"
)

// Mode selects the byte-order convention of a record type. It is fixed at
// record construction and applies uniformly to every multi-byte field.
type Mode uint8

const (
	// NativeAligned uses host byte order and inserts host alignment padding
	// between fields. Record widths become host-dependent; exchanging such
	// records between differing hosts is discouraged.
	NativeAligned Mode = iota
	// Native uses host byte order with no implicit padding.
	Native
	// LittleEndian is fixed little-endian with no implicit padding.
	LittleEndian
	// BigEndian is fixed big-endian with no implicit padding.
	BigEndian
	// Network is a synonym for BigEndian.
	Network
)

var modeNames = map[Mode]string{
	NativeAligned: "native-aligned",
	Native:        "native",
	LittleEndian:  "little-endian",
	BigEndian:     "big-endian",
	Network:       "network",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode resolves the textual mode names accepted in schema files.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: byte-order mode %q", ErrUnknownKind, s)
}

// byteOrder returns the binary.ByteOrder used for multi-byte fields.
func (m Mode) byteOrder() binary.ByteOrder {
	switch m {
	case LittleEndian:
		return binary.LittleEndian
	case BigEndian, Network:
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

// aligned reports whether implicit host alignment padding is inserted.
func (m Mode) aligned() bool { return m == NativeAligned }
