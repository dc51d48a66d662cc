package bindantic

import (
	"encoding/binary"

	textenc "golang.org/x/text/encoding"
)

// FieldType describes the declared type of one field. The Kind constants
// cover primitives and the length-annotated kinds; composite fields are
// declared with ArrayOf, Nested and Union.
type FieldType interface {
	spec() typeSpec
}

func (k Kind) spec() typeSpec { return typeSpec{kind: k} }

type typeSpec struct {
	kind    Kind
	elem    *fieldSpec // array element declaration
	rec     *Record    // nested record
	members []*Record  // union members, in declaration order
}

func (t typeSpec) spec() typeSpec { return t }

// ArrayOf declares a fixed-count array of the given element type. The array's
// Length option fixes the element count; elemOpts configure the element
// itself (for example Length and Encoding for string elements).
func ArrayOf(elem FieldType, elemOpts ...FieldOpt) FieldType {
	es := &fieldSpec{typ: elem.spec()}
	for _, o := range elemOpts {
		o(es)
	}
	return typeSpec{kind: kindArray, elem: es}
}

// Nested declares a field holding a complete sub-record.
func Nested(r *Record) FieldType { return typeSpec{kind: kindRecord, rec: r} }

// Union declares a field whose byte range is shared by several member record
// types. Member order is the trial order during unpacking.
func Union(members ...*Record) FieldType {
	return typeSpec{kind: kindUnion, members: members}
}

type fillMode uint8

const (
	fillNone fillMode = iota
	fillZero
	fillValue
	fillFunc
)

// fieldSpec is one declared field before compilation: the declared type plus
// every annotation and value rule attached to it.
type fieldSpec struct {
	name string
	typ  typeSpec

	length    int
	hasLength bool
	encName   string
	fill      fillMode
	fillValue any
	fillFn    func() any
	keepFill  bool
	asSet     bool
	disc      string

	def        any
	hasDefault bool
	literal    any
	hasLiteral bool
	enum       []any
	min, max   *float64
	doc        string
}

// FieldOpt is a field annotation or value rule accepted by Field and ArrayOf.
type FieldOpt func(*fieldSpec)

// Length fixes the byte count of strings, bytes and padding, or the element
// count of arrays. It is required for those kinds.
func Length(n int) FieldOpt {
	return func(f *fieldSpec) { f.length = n; f.hasLength = true }
}

// Encoding overrides the string encoding of a string field by IANA name. The
// default is UTF-8. Char fields always use the record-wide encoding set with
// DefaultEncoding; this option has no effect on them.
func Encoding(name string) FieldOpt {
	return func(f *fieldSpec) { f.encName = name }
}

// Filler configures the array filler policy to a fixed value. Missing
// trailing elements are produced from it on pack, and trailing elements equal
// to it are trimmed on unpack.
func Filler(v any) FieldOpt {
	return func(f *fieldSpec) { f.fill = fillValue; f.fillValue = v }
}

// FillDefault configures the array filler policy to the element's zero value.
func FillDefault() FieldOpt {
	return func(f *fieldSpec) { f.fill = fillZero }
}

// FillWith configures a caller-supplied filler producer.
func FillWith(fn func() any) FieldOpt {
	return func(f *fieldSpec) { f.fill = fillFunc; f.fillFn = fn }
}

// KeepFillers disables trimming of trailing filler elements on unpack.
func KeepFillers() FieldOpt {
	return func(f *fieldSpec) { f.keepFill = true }
}

// AsSet declares the array container as a set: element order is insertion
// order and duplicate elements are a validation error.
func AsSet() FieldOpt {
	return func(f *fieldSpec) { f.asSet = true }
}

// Discriminator selects by-field union discrimination on the named field,
// which must be declared identically in every member.
func Discriminator(field string) FieldOpt {
	return func(f *fieldSpec) { f.disc = field }
}

// Default supplies a value used when the field is absent from the input
// dictionary.
func Default(v any) FieldOpt {
	return func(f *fieldSpec) { f.def = v; f.hasDefault = true }
}

// Literal constrains the field to exactly one admissible value. Union
// by-field discrimination inspects this rule on the discriminator field.
func Literal(v any) FieldOpt {
	return func(f *fieldSpec) { f.literal = v; f.hasLiteral = true }
}

// Enum constrains the field to a fixed value set.
func Enum(vs ...any) FieldOpt {
	return func(f *fieldSpec) { f.enum = vs }
}

// Min constrains numeric fields to values >= v.
func Min(v float64) FieldOpt {
	return func(f *fieldSpec) { f.min = &v }
}

// Max constrains numeric fields to values <= v.
func Max(v float64) FieldOpt {
	return func(f *fieldSpec) { f.max = &v }
}

// Doc attaches a human-readable description shown in layout listings.
func Doc(s string) FieldOpt {
	return func(f *fieldSpec) { f.doc = s }
}

// ignored reports whether the field is private by convention and excluded
// from layout and validation.
func (f *fieldSpec) ignored() bool {
	return len(f.name) > 0 && f.name[0] == '_'
}

type computedSpec struct {
	kind Kind
	fn   func(*Instance) any
}

// Record is a compiled record type: an ordered descriptor schedule, a total
// width and a byte-order mode. Records are built exactly once and are
// immutable afterwards; all instances of a record share its descriptors.
type Record struct {
	name    string
	mode    Mode
	order   binary.ByteOrder
	encName string
	enc     textenc.Encoding
	strict  bool

	fields   []*fieldSpec
	byName   map[string]*fieldSpec
	computed map[string]*computedSpec

	descs []fieldDesc
	size  int
	align int
}

// Name returns the record type's name.
func (r *Record) Name() string { return r.name }

// Size returns the total width in bytes of any packed instance.
func (r *Record) Size() int { return r.size }

// ByteMode returns the record's byte-order mode.
func (r *Record) ByteMode() Mode { return r.mode }

// Builder declares a record type field by field. Build compiles the layout;
// the builder must not be reused afterwards.
type Builder struct {
	name     string
	mode     Mode
	encName  string
	strict   bool
	bases    []*Record
	fields   []*fieldSpec
	computed map[string]*computedSpec
}

// NewRecord starts the declaration of a record type with the given byte-order
// mode.
func NewRecord(name string, mode Mode) *Builder {
	return &Builder{name: name, mode: mode, computed: map[string]*computedSpec{}}
}

// Extend inherits every field of base, placed before the fields declared on
// this builder. Multiple bases flatten in the order Extend is called.
func (b *Builder) Extend(base *Record) *Builder {
	b.bases = append(b.bases, base)
	return b
}

// Field declares the next field in layout order.
func (b *Builder) Field(name string, t FieldType, opts ...FieldOpt) *Builder {
	f := &fieldSpec{name: name, typ: t.spec()}
	for _, o := range opts {
		o(f)
	}
	b.fields = append(b.fields, f)
	return b
}

// Computed registers a computed-value provider. A field named stem+"_outlet"
// reserves the binary position; the provider's declared kind must match the
// outlet's primitive kind.
func (b *Builder) Computed(stem string, k Kind, fn func(*Instance) any) *Builder {
	b.computed[stem] = &computedSpec{kind: k, fn: fn}
	return b
}

// DefaultEncoding sets the record-wide string encoding by IANA name.
func (b *Builder) DefaultEncoding(name string) *Builder {
	b.encName = name
	return b
}

// StrictStrings makes string overflow on pack an error instead of silent
// truncation.
func (b *Builder) StrictStrings() *Builder {
	b.strict = true
	return b
}

// MustBuild is Build that panics on error, for package-level declarations.
func (b *Builder) MustBuild() *Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
