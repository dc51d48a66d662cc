package bindantic

import "fmt"

// Pack serializes a validated instance into a new byte string of exactly
// Size() bytes.
func (r *Record) Pack(inst *Instance) ([]byte, error) {
	buf := make([]byte, r.size)
	if err := r.packInto(buf, inst); err != nil {
		return nil, err
	}
	return buf, nil
}

// AppendPack packs the instance onto the end of dst and returns the extended
// slice, reusing dst's capacity when possible.
func (r *Record) AppendPack(dst []byte, inst *Instance) ([]byte, error) {
	off := len(dst)
	dst = append(dst, make([]byte, r.size)...)
	if err := r.packInto(dst[off:off+r.size], inst); err != nil {
		return dst[:off], err
	}
	return dst, nil
}

// packInto runs the descriptor schedule over a buffer of exactly r.size
// bytes. The value dictionary comes from Dump, so computed values are always
// recomputed from the instance, never read from stale state.
func (r *Record) packInto(buf []byte, inst *Instance) error {
	if inst == nil || inst.rec != r {
		return fmt.Errorf("%w: instance does not belong to record %s", ErrValueType, r.name)
	}
	dict := inst.Dump()
	st := &packState{w: newExactWriter(buf), rec: r}
	for _, d := range r.descs {
		var v any
		if key, ok := d.valueKey(); ok {
			var present bool
			if v, present = dict[key]; !present {
				return fmt.Errorf("%w: no value for field %s of %s", ErrValueType, key, r.name)
			}
		}
		if err := d.encode(st, v); err != nil {
			return fmt.Errorf("%s.%s: %w", r.name, d.fieldName(), err)
		}
	}
	return nil
}
