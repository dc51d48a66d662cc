package bindantic

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// discriminate selects which member record a union byte region represents and
// returns its validated instance. The region is never mutated, each member is
// structurally unpacked at most once, and bytes beyond a member's own width
// are not inspected for that member.
func (d *unionDesc) discriminate(region []byte) (*Instance, error) {
	if d.disc == "" {
		return d.leftToRight(region)
	}
	return d.byField(region)
}

// leftToRight tries every member in declaration order: structural unpack
// first, then validation. The first member that passes both wins. Errors of
// either family disqualify the trial member instead of propagating.
func (d *unionDesc) leftToRight(region []byte) (*Instance, error) {
	var trials []error
	for _, m := range d.members {
		dict, err := m.UnpackDict(region[:m.size])
		if err != nil {
			trials = append(trials, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		inst, err := m.Validate(dict)
		if err != nil {
			Logger().Debug("union trial rejected",
				zap.String("union", d.name), zap.String("member", m.name), zap.Error(err))
			trials = append(trials, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrUnionNoMatch, d.name, errors.Join(trials...))
}

// byField unpacks each member structurally and inspects the discriminator
// field's raw value against that member's declared constraint. The first
// member whose constraint admits the value is the match; its validation
// result is returned as-is, including failures.
func (d *unionDesc) byField(region []byte) (*Instance, error) {
	var trials []error
	for _, m := range d.members {
		dict, err := m.UnpackDict(region[:m.size])
		if err != nil {
			trials = append(trials, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		raw, ok := dict[d.disc]
		if !ok {
			continue
		}
		if !admits(m.byName[d.disc], raw) {
			continue
		}
		return m.Validate(dict)
	}
	if joined := errors.Join(trials...); joined != nil {
		return nil, fmt.Errorf("%w: %s: no member admits the discriminator value: %w",
			ErrUnionNoMatch, d.name, joined)
	}
	return nil, fmt.Errorf("%w: %s: no member admits the discriminator value", ErrUnionNoMatch, d.name)
}

// admits reports whether a field's declared constraint accepts a raw decoded
// value. A literal admits exactly its value, an enum admits its value set,
// and a field without either constraint admits anything.
func admits(f *fieldSpec, raw any) bool {
	if f == nil {
		return false
	}
	if f.hasLiteral {
		cv, err := canonValue(f.typ, f.literal)
		return err == nil && reflect.DeepEqual(cv, raw)
	}
	if len(f.enum) > 0 {
		for _, e := range f.enum {
			cv, err := canonValue(f.typ, e)
			if err == nil && reflect.DeepEqual(cv, raw) {
				return true
			}
		}
		return false
	}
	return true
}
