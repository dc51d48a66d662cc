package bindantic

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Build compiles the declared field list into a descriptor schedule and total
// width. It runs exactly once per record type; the returned record and its
// descriptors are never mutated afterwards, so instances of the same record
// may be packed and unpacked concurrently without coordination.
func (b *Builder) Build() (*Record, error) {
	r := &Record{
		name:     b.name,
		mode:     b.mode,
		order:    b.mode.byteOrder(),
		encName:  b.encName,
		strict:   b.strict,
		byName:   map[string]*fieldSpec{},
		computed: map[string]*computedSpec{},
		align:    1,
	}

	enc, err := lookupEncoding(b.encName)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", b.name, err)
	}
	r.enc = enc

	// Base fields come first, in base declaration order, then the fields
	// declared on this builder. Computed providers are inherited the same
	// way, with the derived record winning on name clashes.
	for _, base := range b.bases {
		r.fields = append(r.fields, base.fields...)
		for stem, c := range base.computed {
			r.computed[stem] = c
		}
	}
	r.fields = append(r.fields, b.fields...)
	for stem, c := range b.computed {
		r.computed[stem] = c
	}

	for _, f := range r.fields {
		if _, dup := r.byName[f.name]; dup {
			return nil, fmt.Errorf("record %s: %w: %s", b.name, ErrDuplicateField, f.name)
		}
		r.byName[f.name] = f
	}

	for _, f := range r.fields {
		if f.ignored() {
			continue
		}
		d, err := r.resolveField(f)
		if err != nil {
			return nil, fmt.Errorf("record %s, field %s: %w", b.name, f.name, err)
		}
		if r.mode.aligned() {
			if pad := alignPad(r.size, d.alignment()); pad > 0 {
				r.descs = append(r.descs, &padDesc{n: pad})
				r.size += pad
			}
			if a := d.alignment(); a > r.align {
				r.align = a
			}
		}
		r.descs = append(r.descs, d)
		r.size += d.width()
	}
	if r.mode.aligned() {
		// Trailing padding so consecutive records stay aligned, as a C
		// compiler would size the struct.
		if pad := alignPad(r.size, r.align); pad > 0 {
			r.descs = append(r.descs, &padDesc{n: pad})
			r.size += pad
		}
	}

	Logger().Debug("compiled record",
		zap.String("record", r.name),
		zap.Stringer("mode", r.mode),
		zap.Int("size", r.size),
		zap.Int("fields", len(r.descs)))
	return r, nil
}

func alignPad(off, align int) int {
	if align <= 1 {
		return 0
	}
	return Roundup(off, align) - off
}

// resolveField turns one declared field into exactly one descriptor.
func (r *Record) resolveField(f *fieldSpec) (fieldDesc, error) {
	t := f.typ
	switch {
	case t.kind.isPrimitive():
		if strings.HasSuffix(f.name, "_outlet") {
			return r.resolveOutlet(f)
		}
		return &primDesc{name: f.name, kind: t.kind, pc: primCodecs[t.kind]}, nil

	case t.kind == String:
		if !f.hasLength || f.length <= 0 {
			return nil, ErrMissingLength
		}
		enc := r.enc
		encName := r.encName
		if f.encName != "" {
			var err error
			if enc, err = lookupEncoding(f.encName); err != nil {
				return nil, err
			}
			encName = f.encName
		}
		return &strDesc{name: f.name, n: f.length, enc: enc, encName: encName}, nil

	case t.kind == Bytes:
		if !f.hasLength || f.length <= 0 {
			return nil, ErrMissingLength
		}
		return &bytesDesc{name: f.name, n: f.length}, nil

	case t.kind == Padding:
		// Padding(0) would be a zero-width descriptor; the minimum is one byte.
		if !f.hasLength || f.length < 1 {
			return nil, fmt.Errorf("%w: padding width must be at least 1", ErrMissingLength)
		}
		return &padDesc{name: f.name, n: f.length}, nil

	case t.kind == kindArray:
		return r.resolveArray(f)

	case t.kind == kindRecord:
		if t.rec == nil {
			return nil, fmt.Errorf("%w: nested record is nil", ErrUnknownKind)
		}
		return &nestedDesc{name: f.name, rec: t.rec}, nil

	case t.kind == kindUnion:
		return r.resolveUnion(f)
	}
	return nil, ErrUnknownKind
}

func (r *Record) resolveOutlet(f *fieldSpec) (fieldDesc, error) {
	stem := strings.TrimSuffix(f.name, "_outlet")
	c, ok := r.computed[stem]
	if !ok {
		return nil, fmt.Errorf("%w: no provider %q", ErrOutletMismatch, stem)
	}
	if c.kind != f.typ.kind {
		return nil, fmt.Errorf("%w: provider %q yields %s, outlet is %s",
			ErrOutletMismatch, stem, c.kind, f.typ.kind)
	}
	return &outletDesc{name: f.name, stem: stem, kind: f.typ.kind, pc: primCodecs[f.typ.kind]}, nil
}

func (r *Record) resolveArray(f *fieldSpec) (fieldDesc, error) {
	if !f.hasLength || f.length <= 0 {
		return nil, ErrMissingLength
	}
	es := f.typ.elem
	if es == nil {
		return nil, fmt.Errorf("%w: array without element type", ErrUnknownKind)
	}
	if es.typ.kind == Padding {
		return nil, fmt.Errorf("%w: array element cannot be padding", ErrUnknownKind)
	}
	elem, err := r.resolveField(es)
	if err != nil {
		return nil, err
	}
	d := &arrayDesc{name: f.name, elem: elem, count: f.length, fill: f.fill, keepFill: f.keepFill}
	if f.fill != fillNone {
		if d.fillCanon, err = r.fillerCanon(f, es); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// fillerCanon resolves the filler policy to a producer of canonical filler
// values, so pack can synthesize missing elements and unpack can recognize
// trailing ones.
func (r *Record) fillerCanon(f *fieldSpec, es *fieldSpec) (func() (any, error), error) {
	switch f.fill {
	case fillZero:
		zv, err := zeroValueOf(es.typ)
		if err != nil {
			return nil, err
		}
		return func() (any, error) { return zv, nil }, nil

	case fillValue:
		cv, err := canonValue(es.typ, f.fillValue)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFiller, err)
		}
		return func() (any, error) { return cv, nil }, nil

	case fillFunc:
		fn := f.fillFn
		if fn == nil {
			return nil, fmt.Errorf("%w: nil filler function", ErrBadFiller)
		}
		return func() (any, error) {
			cv, err := canonValue(es.typ, fn())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadFiller, err)
			}
			return cv, nil
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown filler mode", ErrBadFiller)
}

// zeroValueOf is the canonical zero of an element kind, used by the Default
// filler policy.
func zeroValueOf(t typeSpec) (any, error) {
	switch {
	case t.kind == Char:
		return "\x00", nil
	case t.kind.isPrimitive():
		switch t.kind {
		case U8, U16, U32, U64:
			return uint64(0), nil
		case I8, I16, I32, I64:
			return int64(0), nil
		case F32, F64:
			return float64(0), nil
		case Bool:
			return false, nil
		}
	case t.kind == String:
		return "", nil
	case t.kind == Bytes:
		return []byte{}, nil
	}
	return nil, fmt.Errorf("%w: no zero value for %s elements", ErrBadFiller, t.kind)
}

// canonValue converts a declared rule or filler value to the canonical
// runtime representation of the element kind.
func canonValue(t typeSpec, v any) (any, error) {
	switch {
	case t.kind.isPrimitive():
		return coercePrimitive(t.kind, v)
	case t.kind == String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want string, got %T", ErrValueType, v)
		}
		return s, nil
	case t.kind == Bytes:
		switch b := v.(type) {
		case []byte:
			return append([]byte(nil), b...), nil
		case string:
			return []byte(b), nil
		}
		return nil, fmt.Errorf("%w: want []byte, got %T", ErrValueType, v)
	case t.kind == kindRecord || t.kind == kindUnion:
		if inst, ok := v.(*Instance); ok {
			return inst, nil
		}
		return nil, fmt.Errorf("%w: want a record instance, got %T", ErrValueType, v)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, t.kind)
}

func (r *Record) resolveUnion(f *fieldSpec) (fieldDesc, error) {
	t := f.typ
	if len(t.members) == 0 {
		return nil, fmt.Errorf("%w: union without members", ErrUnknownKind)
	}
	w := 0
	for _, m := range t.members {
		if m == nil {
			return nil, fmt.Errorf("%w: nil union member", ErrUnknownKind)
		}
		if m.size > w {
			w = m.size
		}
	}
	if f.disc != "" {
		for _, m := range t.members {
			df, ok := m.byName[f.disc]
			if !ok {
				return nil, fmt.Errorf("%w: member %s lacks discriminator field %q",
					ErrUnknownKind, m.name, f.disc)
			}
			if df.typ.kind == Padding || strings.HasSuffix(df.name, "_outlet") {
				return nil, fmt.Errorf("%w: discriminator %q of member %s carries no value",
					ErrUnknownKind, f.disc, m.name)
			}
		}
	}
	return &unionDesc{name: f.name, members: t.members, disc: f.disc, w: w}, nil
}
