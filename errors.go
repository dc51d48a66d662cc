package bindantic

import "errors"

// Structural error family. These are raised by the codec core itself, as
// opposed to Issues which are raised by the value validation layer.
//
// Compile-time errors abort record construction and are never retried.
// Pack and unpack errors propagate to the caller immediately, except inside a
// union trial where they disqualify the member under trial.
var (
	// ErrMissingLength indicates a length-annotated kind (string, bytes,
	// padding, array) was declared without a Length option, or with a
	// non-positive one.
	ErrMissingLength = errors.New("bindantic: length annotation required")

	// ErrUnknownKind indicates a field declaration could not be resolved to
	// exactly one descriptor kind.
	ErrUnknownKind = errors.New("bindantic: unknown field kind")

	// ErrOutletMismatch indicates an outlet field has no matching computed
	// provider, or the provider's declared kind differs from the outlet's.
	ErrOutletMismatch = errors.New("bindantic: outlet has no matching computed provider")

	// ErrDuplicateField indicates two declared fields share a name within one
	// record type.
	ErrDuplicateField = errors.New("bindantic: duplicate field name")

	// ErrBadFiller indicates an array filler cannot be represented for the
	// element kind (e.g. a default-constructed filler for a nested record).
	ErrBadFiller = errors.New("bindantic: filler not representable for element kind")

	// ErrIntegerRange indicates an integer value does not fit the declared
	// field width.
	ErrIntegerRange = errors.New("bindantic: integer out of range for field width")

	// ErrCharEncoding indicates a char value does not encode to exactly one
	// byte in the record's string encoding.
	ErrCharEncoding = errors.New("bindantic: char does not encode to one byte")

	// ErrStringDecode indicates string bytes could not be decoded in the
	// declared encoding.
	ErrStringDecode = errors.New("bindantic: string bytes not decodable")

	// ErrBytesOverflow indicates a bytes (or, in strict mode, string) value is
	// longer than its fixed reservation.
	ErrBytesOverflow = errors.New("bindantic: value exceeds fixed byte reservation")

	// ErrArrayOverflow indicates more elements were supplied than the declared
	// element count.
	ErrArrayOverflow = errors.New("bindantic: too many array elements")

	// ErrArrayUnderflow indicates fewer elements than the declared count were
	// supplied and no filler policy is configured.
	ErrArrayUnderflow = errors.New("bindantic: too few array elements and no filler")

	// ErrLengthMismatch indicates Unpack was handed a byte string whose length
	// differs from the record's total width.
	ErrLengthMismatch = errors.New("bindantic: input length does not match record width")

	// ErrUnionNoMatch indicates no union member accepted the byte string. The
	// per-member failures are attached to the returned error.
	ErrUnionNoMatch = errors.New("bindantic: no union member matched")

	// ErrValueType indicates a dictionary entry has a type the field cannot
	// represent.
	ErrValueType = errors.New("bindantic: value type not representable by field")

	// ErrNilIO indicates NewReader/NewWriter was called with a nil
	// io.Reader/io.Writer.
	ErrNilIO = errors.New("bindantic: NewReader/NewWriter called with nil io.Reader/io.Writer")

	// ErrTruncatedData indicates a stream ended before a full record could be
	// read.
	ErrTruncatedData = errors.New("bindantic: truncated record data")
)
