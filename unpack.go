package bindantic

import "fmt"

// Unpack parses a byte string of exactly Size() bytes into a validated
// instance. Structural failures surface as the structural error family;
// validation failures surface unchanged as Issues.
func (r *Record) Unpack(b []byte) (*Instance, error) {
	dict, err := r.UnpackDict(b)
	if err != nil {
		return nil, err
	}
	return r.Validate(dict)
}

// UnpackDict runs the structural stage only: it consumes the bytes descriptor
// by descriptor and returns the raw value dictionary, without validation.
// Padding bytes are skipped and outlet bytes are discarded, so neither
// contributes an entry.
func (r *Record) UnpackDict(b []byte) (map[string]any, error) {
	if len(b) != r.size {
		return nil, fmt.Errorf("%w: %s wants %d bytes, got %d", ErrLengthMismatch, r.name, r.size, len(b))
	}
	st := &unpackState{b: b, rec: r}
	dict := make(map[string]any, len(r.descs))
	for _, d := range r.descs {
		v, ok, err := d.decode(st)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.name, d.fieldName(), err)
		}
		if ok {
			dict[d.fieldName()] = v
		}
	}
	return dict, nil
}
