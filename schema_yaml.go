package bindantic

import (
	"fmt"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
	"gopkg.in/yaml.v3"
)

// Schema is a set of record types loaded from a declaration file. Lookups
// are safe from any goroutine; the set is write-once during load.
type Schema struct {
	recs  *xsync.MapOf[string, *Record]
	names []string
}

// Lookup returns a record type by name.
func (s *Schema) Lookup(name string) (*Record, bool) {
	return s.recs.Load(name)
}

// Records returns every record type in declaration order.
func (s *Schema) Records() []*Record {
	out := make([]*Record, 0, len(s.names))
	for _, n := range s.names {
		if r, ok := s.recs.Load(n); ok {
			out = append(out, r)
		}
	}
	return out
}

type schemaDoc struct {
	Records []recordDecl `yaml:"records"`
}

type recordDecl struct {
	Name          string      `yaml:"name"`
	Order         string      `yaml:"order"`
	Extends       []string    `yaml:"extends"`
	Encoding      string      `yaml:"encoding"`
	StrictStrings bool        `yaml:"strict_strings"`
	Fields        []fieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Len      int    `yaml:"len"`
	Encoding string `yaml:"encoding"`

	Of            *fieldDecl `yaml:"of"`      // array element
	Record        string     `yaml:"record"`  // nested record by name
	Members       []string   `yaml:"members"` // union members by name
	Discriminator string     `yaml:"discriminator"`

	Filler      any  `yaml:"filler"`
	FillDefault bool `yaml:"fill_default"`
	KeepFillers bool `yaml:"keep_fillers"`
	Set         bool `yaml:"set"`

	Default any      `yaml:"default"`
	Literal any      `yaml:"literal"`
	Enum    []any    `yaml:"enum"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Doc     string   `yaml:"doc"`
}

// LoadSchema parses a YAML record-declaration document and compiles every
// record in declaration order. Nested and union fields reference records
// declared earlier in the same document. Outlet fields are not expressible
// here because computed providers are code, not data.
func LoadSchema(data []byte) (*Schema, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("bindantic: schema: %w", err)
	}
	s := &Schema{recs: xsync.NewMapOf[string, *Record]()}
	for _, rd := range doc.Records {
		if rd.Name == "" {
			return nil, fmt.Errorf("bindantic: schema: record without a name")
		}
		if _, dup := s.recs.Load(rd.Name); dup {
			return nil, fmt.Errorf("bindantic: schema: record %s declared twice", rd.Name)
		}
		rec, err := s.buildRecord(rd)
		if err != nil {
			return nil, err
		}
		s.recs.Store(rd.Name, rec)
		s.names = append(s.names, rd.Name)
	}
	return s, nil
}

func (s *Schema) buildRecord(rd recordDecl) (*Record, error) {
	mode := Network
	if rd.Order != "" {
		var err error
		if mode, err = ParseMode(rd.Order); err != nil {
			return nil, fmt.Errorf("record %s: %w", rd.Name, err)
		}
	}
	b := NewRecord(rd.Name, mode)
	if rd.Encoding != "" {
		b.DefaultEncoding(rd.Encoding)
	}
	if rd.StrictStrings {
		b.StrictStrings()
	}
	for _, baseName := range rd.Extends {
		base, ok := s.recs.Load(baseName)
		if !ok {
			return nil, fmt.Errorf("record %s: base %s is not declared yet", rd.Name, baseName)
		}
		b.Extend(base)
	}
	for _, fd := range rd.Fields {
		if strings.HasSuffix(fd.Name, "_outlet") {
			return nil, fmt.Errorf("record %s: outlet field %s needs a computed provider, which a schema file cannot declare", rd.Name, fd.Name)
		}
		ft, opts, err := s.resolveDecl(fd)
		if err != nil {
			return nil, fmt.Errorf("record %s, field %s: %w", rd.Name, fd.Name, err)
		}
		b.Field(fd.Name, ft, opts...)
	}
	return b.Build()
}

func (s *Schema) resolveDecl(fd fieldDecl) (FieldType, []FieldOpt, error) {
	var opts []FieldOpt
	if fd.Len != 0 {
		opts = append(opts, Length(fd.Len))
	}
	if fd.Encoding != "" {
		opts = append(opts, Encoding(fd.Encoding))
	}
	if fd.Discriminator != "" {
		opts = append(opts, Discriminator(fd.Discriminator))
	}
	if fd.Filler != nil {
		opts = append(opts, Filler(fd.Filler))
	} else if fd.FillDefault {
		opts = append(opts, FillDefault())
	}
	if fd.KeepFillers {
		opts = append(opts, KeepFillers())
	}
	if fd.Set {
		opts = append(opts, AsSet())
	}
	if fd.Default != nil {
		opts = append(opts, Default(fd.Default))
	}
	if fd.Literal != nil {
		opts = append(opts, Literal(fd.Literal))
	}
	if len(fd.Enum) > 0 {
		opts = append(opts, Enum(fd.Enum...))
	}
	if fd.Min != nil {
		opts = append(opts, Min(*fd.Min))
	}
	if fd.Max != nil {
		opts = append(opts, Max(*fd.Max))
	}
	if fd.Doc != "" {
		opts = append(opts, Doc(fd.Doc))
	}

	switch fd.Kind {
	case "array":
		if fd.Of == nil {
			return nil, nil, fmt.Errorf("%w: array needs an 'of' element", ErrUnknownKind)
		}
		elemFT, elemOpts, err := s.resolveDecl(*fd.Of)
		if err != nil {
			return nil, nil, err
		}
		return ArrayOf(elemFT, elemOpts...), opts, nil

	case "record":
		rec, ok := s.recs.Load(fd.Record)
		if !ok {
			return nil, nil, fmt.Errorf("%w: record %q is not declared yet", ErrUnknownKind, fd.Record)
		}
		return Nested(rec), opts, nil

	case "union":
		members := make([]*Record, 0, len(fd.Members))
		for _, mn := range fd.Members {
			m, ok := s.recs.Load(mn)
			if !ok {
				return nil, nil, fmt.Errorf("%w: union member %q is not declared yet", ErrUnknownKind, mn)
			}
			members = append(members, m)
		}
		return Union(members...), opts, nil
	}

	if k, ok := parseKind(fd.Kind); ok {
		return k, opts, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, fd.Kind)
}
