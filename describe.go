package bindantic

// FieldLayout describes one schedule entry of a compiled record for
// inspection and tooling. Implicit alignment padding shows up with an empty
// name.
type FieldLayout struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Width  int    `json:"width"`

	Count   int      `json:"count,omitempty"`   // arrays
	Elem    string   `json:"elem,omitempty"`    // arrays
	Record  string   `json:"record,omitempty"`  // nested records
	Members []string `json:"members,omitempty"` // unions
	Doc     string   `json:"doc,omitempty"`
}

// Layout is the full binary layout of a compiled record type.
type Layout struct {
	Record string        `json:"record"`
	Mode   string        `json:"mode"`
	Size   int           `json:"size"`
	Fields []FieldLayout `json:"fields"`
}

// Layout reports the compiled descriptor schedule with byte offsets.
func (r *Record) Layout() Layout {
	out := Layout{Record: r.name, Mode: r.mode.String(), Size: r.size}
	off := 0
	for _, d := range r.descs {
		fl := FieldLayout{Name: d.fieldName(), Offset: off, Width: d.width()}
		if f, ok := r.byName[d.fieldName()]; ok {
			fl.Doc = f.doc
		}
		switch t := d.(type) {
		case *primDesc:
			fl.Kind = t.kind.String()
		case *outletDesc:
			fl.Kind = t.kind.String() + " outlet"
		case *strDesc:
			fl.Kind = String.String()
		case *bytesDesc:
			fl.Kind = Bytes.String()
		case *padDesc:
			fl.Kind = Padding.String()
		case *arrayDesc:
			fl.Kind = kindArray.String()
			fl.Count = t.count
			fl.Elem = descKind(t.elem)
		case *nestedDesc:
			fl.Kind = kindRecord.String()
			fl.Record = t.rec.name
		case *unionDesc:
			fl.Kind = kindUnion.String()
			for _, m := range t.members {
				fl.Members = append(fl.Members, m.name)
			}
		}
		out.Fields = append(out.Fields, fl)
		off += d.width()
	}
	return out
}

func descKind(d fieldDesc) string {
	switch t := d.(type) {
	case *primDesc:
		return t.kind.String()
	case *strDesc:
		return String.String()
	case *bytesDesc:
		return Bytes.String()
	case *arrayDesc:
		return kindArray.String()
	case *nestedDesc:
		return t.rec.name
	case *unionDesc:
		return kindUnion.String()
	}
	return "?"
}
