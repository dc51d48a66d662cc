package bindantic

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Instance is a validated value set of one record type. Instances hold no
// reference to the bytes they came from; packing and unpacking the same
// instance from multiple goroutines is safe because neither mutates it.
type Instance struct {
	rec    *Record
	values map[string]any
}

// Type returns the record type this instance belongs to.
func (i *Instance) Type() *Record { return i.rec }

// Get returns the canonical value of a declared field, or nil when the field
// does not exist or carries no value (padding, outlets).
func (i *Instance) Get(name string) any { return i.values[name] }

// Dump returns the value dictionary consumed by the packer: every declared
// field value plus every computed value keyed under its stem name.
func (i *Instance) Dump() map[string]any {
	out := make(map[string]any, len(i.values)+len(i.rec.computed))
	for k, v := range i.values {
		out[k] = v
	}
	for stem, c := range i.rec.computed {
		out[stem] = c.fn(i)
	}
	return out
}

// AsMap returns a plain, display-friendly copy of the instance with nested
// instances flattened to maps.
func (i *Instance) AsMap() map[string]any {
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = flatten(v)
	}
	return out
}

func flatten(v any) any {
	switch t := v.(type) {
	case *Instance:
		return t.AsMap()
	case []any:
		out := make([]any, len(t))
		for j, e := range t {
			out[j] = flatten(e)
		}
		return out
	}
	return v
}

// Validate checks a raw value dictionary against the record's declared fields
// and rules and returns a validated instance. Keys naming padding fields,
// outlet fields or computed stems are ignored; any other undeclared key is an
// error. All issues are collected before returning.
func (r *Record) Validate(values map[string]any) (*Instance, error) {
	var iss Issues
	out := make(map[string]any, len(r.fields))

	for _, f := range r.fields {
		if !f.carriesValue() {
			continue
		}
		path := "/" + f.name
		v, present := values[f.name]
		if !present {
			if f.hasDefault {
				v = f.def
			} else {
				iss = append(iss, Issue{Path: path, Code: CodeRequired,
					Message: "required field missing"})
				continue
			}
		}
		cv, fieldIss := r.validateValue(path, f, v)
		if len(fieldIss) > 0 {
			iss = append(iss, fieldIss...)
			continue
		}
		out[f.name] = cv
	}

	unknown := make([]string, 0)
	for k := range values {
		if !r.knownKey(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		iss = append(iss, Issue{Path: "/" + k, Code: CodeUnknownKey,
			Message: "undeclared field"})
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return &Instance{rec: r, values: out}, nil
}

// carriesValue reports whether the field contributes an entry to the value
// dictionary. Padding and outlets reserve bytes only; underscore names are
// private to the caller.
func (f *fieldSpec) carriesValue() bool {
	if f.ignored() || f.typ.kind == Padding {
		return false
	}
	return !strings.HasSuffix(f.name, "_outlet")
}

func (r *Record) knownKey(k string) bool {
	if _, ok := r.byName[k]; ok {
		return true
	}
	_, ok := r.computed[k]
	return ok
}

// validateValue coerces one value to its canonical form and applies the
// field's rules. Nested failures are re-rooted under the field path.
func (r *Record) validateValue(path string, f *fieldSpec, v any) (any, Issues) {
	t := f.typ
	switch {
	case t.kind.isPrimitive():
		cv, err := coercePrimitive(t.kind, v)
		if err != nil {
			return nil, Issues{coerceIssue(path, err)}
		}
		return cv, f.checkRules(path, cv)

	case t.kind == String:
		s, ok := v.(string)
		if !ok {
			return nil, Issues{{Path: path, Code: CodeInvalidType,
				Message: fmt.Sprintf("want string, got %T", v)}}
		}
		return s, f.checkRules(path, s)

	case t.kind == Bytes:
		cv, err := canonValue(t, v)
		if err != nil {
			return nil, Issues{{Path: path, Code: CodeInvalidType,
				Message: fmt.Sprintf("want []byte, got %T", v)}}
		}
		return cv, nil

	case t.kind == kindArray:
		return r.validateArray(path, f, v)

	case t.kind == kindRecord:
		return validateNested(path, t.rec, v)

	case t.kind == kindUnion:
		inst, ok := v.(*Instance)
		if !ok {
			return nil, Issues{{Path: path, Code: CodeInvalidType,
				Message: fmt.Sprintf("want a union member instance, got %T", v),
				Hint:    "validate the member record first"}}
		}
		for _, m := range t.members {
			if m == inst.rec {
				return inst, nil
			}
		}
		return nil, Issues{{Path: path, Code: CodeWrongVariant,
			Message: fmt.Sprintf("%s is not a union member", inst.rec.name)}}
	}
	return nil, Issues{{Path: path, Code: CodeInvalidType, Message: "unsupported field kind"}}
}

func (r *Record) validateArray(path string, f *fieldSpec, v any) (any, Issues) {
	seq, ok := asAnySlice(v)
	if !ok {
		return nil, Issues{{Path: path, Code: CodeInvalidType,
			Message: fmt.Sprintf("want a sequence, got %T", v)}}
	}
	var iss Issues
	out := make([]any, 0, len(seq))
	for idx, el := range seq {
		cv, elIss := r.validateValue(fmt.Sprintf("%s/%d", path, idx), f.typ.elem, el)
		if len(elIss) > 0 {
			iss = append(iss, elIss...)
			continue
		}
		out = append(out, cv)
	}
	if f.asSet {
		for a := 0; a < len(out); a++ {
			for b := a + 1; b < len(out); b++ {
				if reflect.DeepEqual(out[a], out[b]) {
					iss = append(iss, Issue{Path: fmt.Sprintf("%s/%d", path, b),
						Code: CodeUniqueness, Message: "duplicate element in set"})
				}
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func validateNested(path string, rec *Record, v any) (any, Issues) {
	switch t := v.(type) {
	case *Instance:
		if t.rec != rec {
			return nil, Issues{{Path: path, Code: CodeWrongVariant,
				Message: fmt.Sprintf("want %s, got %s", rec.name, t.rec.name)}}
		}
		return t, nil
	case map[string]any:
		inst, err := rec.Validate(t)
		if err != nil {
			if iss, ok := AsIssues(err); ok {
				return nil, iss.under(path)
			}
			return nil, Issues{{Path: path, Code: CodeInvalidType, Message: err.Error(), Cause: err}}
		}
		return inst, nil
	}
	return nil, Issues{{Path: path, Code: CodeInvalidType,
		Message: fmt.Sprintf("want %s values, got %T", rec.name, v)}}
}

// coerceIssue maps a coercion failure to its issue code; range failures keep
// their direction.
func coerceIssue(path string, err error) Issue {
	var re *rangeError
	if errors.As(err, &re) {
		code := CodeTooBig
		if re.small {
			code = CodeTooSmall
		}
		return Issue{Path: path, Code: code, Message: err.Error(), Cause: err}
	}
	return Issue{Path: path, Code: CodeInvalidType, Message: err.Error(), Cause: err}
}

// checkRules applies literal, enum and min/max rules to a canonical value.
func (f *fieldSpec) checkRules(path string, cv any) Issues {
	var iss Issues
	if f.hasLiteral {
		want, err := canonValue(f.typ, f.literal)
		if err != nil || !reflect.DeepEqual(want, cv) {
			iss = append(iss, Issue{Path: path, Code: CodeLiteral,
				Message: fmt.Sprintf("want %v, got %v", f.literal, cv)})
		}
	}
	if len(f.enum) > 0 {
		found := false
		for _, e := range f.enum {
			want, err := canonValue(f.typ, e)
			if err == nil && reflect.DeepEqual(want, cv) {
				found = true
				break
			}
		}
		if !found {
			iss = append(iss, Issue{Path: path, Code: CodeInvalidEnum,
				Message: fmt.Sprintf("%v is not an admissible value", cv)})
		}
	}
	if f.min != nil || f.max != nil {
		if n, ok := numericValue(cv); ok {
			if f.min != nil && n < *f.min {
				iss = append(iss, Issue{Path: path, Code: CodeTooSmall,
					Message: fmt.Sprintf("%v is below minimum %v", cv, *f.min)})
			}
			if f.max != nil && n > *f.max {
				iss = append(iss, Issue{Path: path, Code: CodeTooBig,
					Message: fmt.Sprintf("%v is above maximum %v", cv, *f.max)})
			}
		}
	}
	return iss
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
