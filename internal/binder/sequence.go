package binder

import (
	"github.com/roach88/patchbind/internal/dsp"
	"github.com/roach88/patchbind/internal/param"
)

// OrderReferences scans events in order and assigns each distinct reference
// the index of its first occurrence. Number events are skipped. Any other
// event kind, or a time that is negative or not finite, is reported with the
// offending event index.
func OrderReferences(events []param.Event) (refs []string, order map[string]int, bad int, reason string) {
	order = make(map[string]int)
	for i, e := range events {
		if !isFinite(e.Time) {
			return nil, nil, i, "event time is not finite"
		}
		if e.Time < 0 {
			return nil, nil, i, "event time is negative"
		}
		switch v := e.Value.(type) {
		case param.Number:
			if !isFinite(float64(v)) {
				return nil, nil, i, "event value is not finite"
			}
			continue
		case param.Reference:
			name := string(v)
			if _, seen := order[name]; seen {
				continue
			}
			order[name] = len(refs)
			refs = append(refs, name)
		default:
			return nil, nil, i, "event value must be a number or reference, got " + param.KindOf(e.Value).String()
		}
	}
	return refs, order, -1, ""
}

func bindSequencer(b *binding) (dsp.Node, error) {
	seq, _ := b.params[0].(param.Sequence)
	events := seq.Events()
	refs, order, bad, reason := OrderReferences(events)
	if bad >= 0 {
		return nil, newInvalidSequenceEvent(b.typ, 0, bad, reason)
	}
	b.refs = refs
	b.order = order
	return dsp.NewSequencer(events, order, refs, b.ctx), nil
}
