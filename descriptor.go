package bindantic

import (
	"fmt"
	"reflect"

	textenc "golang.org/x/text/encoding"
)

// fieldDesc is one entry of a record's compiled schedule: a tagged descriptor
// that knows its byte width and how one field's bytes are produced and
// consumed. Descriptors are immutable after compile and shared by all
// instances of the record type.
type fieldDesc interface {
	fieldName() string
	width() int
	// alignment returns the host alignment requirement, used only by the
	// native-aligned mode.
	alignment() int
	// valueKey names the dictionary entry the descriptor consumes on pack.
	// Padding consumes none; outlets read the computed stem.
	valueKey() (string, bool)
	encode(st *packState, v any) error
	// decode returns the decoded value and whether the field contributes an
	// entry to the result dictionary.
	decode(st *unpackState) (any, bool, error)
}

type packState struct {
	w   *BytesWriter
	rec *Record
}

type unpackState struct {
	b   []byte
	off int
	rec *Record
}

func (st *unpackState) take(n int) []byte {
	b := st.b[st.off : st.off+n]
	st.off += n
	return b
}

// ---- Primitive ----

type primDesc struct {
	name string
	kind Kind
	pc   primCodec
}

func (d *primDesc) fieldName() string        { return d.name }
func (d *primDesc) width() int               { return d.pc.width }
func (d *primDesc) alignment() int           { return d.pc.width }
func (d *primDesc) valueKey() (string, bool) { return d.name, true }

func (d *primDesc) encode(st *packState, v any) error {
	cv, err := coercePrimitive(d.kind, v)
	if err != nil {
		return err
	}
	if d.kind == Char {
		b, err := encodeText(st.rec.enc, cv.(string))
		if err != nil || len(b) != 1 {
			return fmt.Errorf("%w: %q in %s", ErrCharEncoding, cv, st.rec.encLabel())
		}
		cv = b[0]
	}
	dst, err := st.w.Next(d.pc.width)
	if err != nil {
		return err
	}
	d.pc.put(dst, cv, st.rec.order)
	return nil
}

func (d *primDesc) decode(st *unpackState) (any, bool, error) {
	v := d.pc.get(st.take(d.pc.width), st.rec.order)
	if d.kind == Char {
		s, err := decodeText(st.rec.enc, []byte{v.(byte)})
		if err != nil {
			return nil, false, err
		}
		v = s
	}
	return v, true, nil
}

// ---- String ----

type strDesc struct {
	name    string
	n       int
	enc     textenc.Encoding
	encName string
}

func (d *strDesc) fieldName() string        { return d.name }
func (d *strDesc) width() int               { return d.n }
func (d *strDesc) alignment() int           { return 1 }
func (d *strDesc) valueKey() (string, bool) { return d.name, true }

func (d *strDesc) encode(st *packState, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: string field wants string, got %T", ErrValueType, v)
	}
	b, err := encodeText(d.enc, s)
	if err != nil {
		return fmt.Errorf("%w: string not representable in %s", ErrValueType, d.encLabel())
	}
	if len(b) > d.n {
		if st.rec.strict {
			return fmt.Errorf("%w: string needs %d bytes, reserved %d", ErrBytesOverflow, len(b), d.n)
		}
		// The silent truncation is byte-wise and may split a multi-byte
		// codepoint; the decoded string then ends in a partial sequence.
		b = b[:d.n]
	}
	if _, err := st.w.Write(b); err != nil {
		return err
	}
	_, err = st.w.WriteZeros(d.n - len(b))
	return err
}

func (d *strDesc) decode(st *unpackState) (any, bool, error) {
	b := st.take(d.n)
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	s, err := decodeText(d.enc, b)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (d *strDesc) encLabel() string {
	if d.encName == "" {
		return "utf-8"
	}
	return d.encName
}

func (r *Record) encLabel() string {
	if r.encName == "" {
		return "utf-8"
	}
	return r.encName
}

// ---- Bytes ----

type bytesDesc struct {
	name string
	n    int
}

func (d *bytesDesc) fieldName() string        { return d.name }
func (d *bytesDesc) width() int               { return d.n }
func (d *bytesDesc) alignment() int           { return 1 }
func (d *bytesDesc) valueKey() (string, bool) { return d.name, true }

func (d *bytesDesc) encode(st *packState, v any) error {
	var b []byte
	switch t := v.(type) {
	case []byte:
		b = t
	case string:
		b = []byte(t)
	default:
		return fmt.Errorf("%w: bytes field wants []byte, got %T", ErrValueType, v)
	}
	if len(b) > d.n {
		return fmt.Errorf("%w: %d bytes into a %d byte field", ErrBytesOverflow, len(b), d.n)
	}
	if _, err := st.w.Write(b); err != nil {
		return err
	}
	_, err := st.w.WriteZeros(d.n - len(b))
	return err
}

func (d *bytesDesc) decode(st *unpackState) (any, bool, error) {
	b := st.take(d.n)
	out := make([]byte, d.n)
	copy(out, b)
	return out, true, nil
}

// ---- Padding ----

type padDesc struct {
	name string // empty for implicit alignment padding
	n    int
}

func (d *padDesc) fieldName() string        { return d.name }
func (d *padDesc) width() int               { return d.n }
func (d *padDesc) alignment() int           { return 1 }
func (d *padDesc) valueKey() (string, bool) { return "", false }

func (d *padDesc) encode(st *packState, _ any) error {
	_, err := st.w.WriteZeros(d.n)
	return err
}

func (d *padDesc) decode(st *unpackState) (any, bool, error) {
	st.take(d.n)
	return nil, false, nil
}

// ---- Array ----

type arrayDesc struct {
	name  string
	elem  fieldDesc
	count int

	fill      fillMode
	fillCanon func() (any, error) // canonical filler value, nil when fill == fillNone
	keepFill  bool
}

func (d *arrayDesc) fieldName() string        { return d.name }
func (d *arrayDesc) width() int               { return d.elem.width() * d.count }
func (d *arrayDesc) alignment() int           { return d.elem.alignment() }
func (d *arrayDesc) valueKey() (string, bool) { return d.name, true }

func (d *arrayDesc) encode(st *packState, v any) error {
	seq, ok := asAnySlice(v)
	if !ok {
		return fmt.Errorf("%w: array field wants a sequence, got %T", ErrValueType, v)
	}
	if len(seq) > d.count {
		return fmt.Errorf("%w: %d elements into a %d element array", ErrArrayOverflow, len(seq), d.count)
	}
	if len(seq) < d.count {
		if d.fill == fillNone {
			return fmt.Errorf("%w: got %d of %d elements", ErrArrayUnderflow, len(seq), d.count)
		}
		for len(seq) < d.count {
			fv, err := d.fillCanon()
			if err != nil {
				return err
			}
			seq = append(seq, fv)
		}
	}
	for _, el := range seq {
		if err := d.elem.encode(st, el); err != nil {
			return err
		}
	}
	return nil
}

func (d *arrayDesc) decode(st *unpackState) (any, bool, error) {
	out := make([]any, 0, d.count)
	for i := 0; i < d.count; i++ {
		v, _, err := d.elem.decode(st)
		if err != nil {
			return nil, false, err
		}
		out = append(out, v)
	}
	if d.fill != fillNone && !d.keepFill {
		fv, err := d.fillCanon()
		if err != nil {
			return nil, false, err
		}
		// Trailing fillers are trimmed; interior fillers are real elements.
		for len(out) > 0 && reflect.DeepEqual(out[len(out)-1], fv) {
			out = out[:len(out)-1]
		}
	}
	return out, true, nil
}

// asAnySlice flattens any slice or array value into []any. A []byte is not a
// sequence here; byte buffers belong to bytes fields.
func asAnySlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return append([]any(nil), s...), true
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ---- Nested record ----

type nestedDesc struct {
	name string
	rec  *Record
}

func (d *nestedDesc) fieldName() string        { return d.name }
func (d *nestedDesc) width() int               { return d.rec.size }
func (d *nestedDesc) alignment() int           { return d.rec.align }
func (d *nestedDesc) valueKey() (string, bool) { return d.name, true }

func (d *nestedDesc) encode(st *packState, v any) error {
	inst, ok := v.(*Instance)
	if !ok || inst.rec != d.rec {
		return fmt.Errorf("%w: nested field wants a %s instance, got %T", ErrValueType, d.rec.name, v)
	}
	b, err := d.rec.Pack(inst)
	if err != nil {
		return err
	}
	_, err = st.w.Write(b)
	return err
}

func (d *nestedDesc) decode(st *unpackState) (any, bool, error) {
	dict, err := d.rec.UnpackDict(st.take(d.rec.size))
	if err != nil {
		return nil, false, err
	}
	return dict, true, nil
}

// ---- Union ----

type unionDesc struct {
	name    string
	members []*Record
	disc    string // empty selects left-to-right discrimination
	w       int    // max member width
}

func (d *unionDesc) fieldName() string        { return d.name }
func (d *unionDesc) width() int               { return d.w }
func (d *unionDesc) valueKey() (string, bool) { return d.name, true }

func (d *unionDesc) alignment() int {
	a := 1
	for _, m := range d.members {
		if m.align > a {
			a = m.align
		}
	}
	return a
}

func (d *unionDesc) encode(st *packState, v any) error {
	inst, ok := v.(*Instance)
	if !ok {
		return fmt.Errorf("%w: union field wants a member instance, got %T", ErrValueType, v)
	}
	var member *Record
	for _, m := range d.members {
		if m == inst.rec {
			member = m
			break
		}
	}
	if member == nil {
		return fmt.Errorf("%w: %s is not a member of union %s", ErrValueType, inst.rec.name, d.name)
	}
	b, err := member.Pack(inst)
	if err != nil {
		return err
	}
	if _, err := st.w.Write(b); err != nil {
		return err
	}
	// Shorter members are right-padded to the union width.
	_, err = st.w.WriteZeros(d.w - member.size)
	return err
}

func (d *unionDesc) decode(st *unpackState) (any, bool, error) {
	inst, err := d.discriminate(st.take(d.w))
	if err != nil {
		return nil, false, err
	}
	return inst, true, nil
}

// ---- Outlet ----

type outletDesc struct {
	name string // declared field name, ends in "_outlet"
	stem string // computed provider name
	kind Kind
	pc   primCodec
}

func (d *outletDesc) fieldName() string        { return d.name }
func (d *outletDesc) width() int               { return d.pc.width }
func (d *outletDesc) alignment() int           { return d.pc.width }
func (d *outletDesc) valueKey() (string, bool) { return d.stem, true }

func (d *outletDesc) encode(st *packState, v any) error {
	cv, err := coercePrimitive(d.kind, v)
	if err != nil {
		return err
	}
	if d.kind == Char {
		b, err := encodeText(st.rec.enc, cv.(string))
		if err != nil || len(b) != 1 {
			return fmt.Errorf("%w: %q in %s", ErrCharEncoding, cv, st.rec.encLabel())
		}
		cv = b[0]
	}
	dst, err := st.w.Next(d.pc.width)
	if err != nil {
		return err
	}
	d.pc.put(dst, cv, st.rec.order)
	return nil
}

func (d *outletDesc) decode(st *unpackState) (any, bool, error) {
	// The provider recomputes after validation; the wire bytes are discarded.
	st.take(d.pc.width)
	return nil, false, nil
}
