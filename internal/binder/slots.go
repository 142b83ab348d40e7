package binder

import (
	"github.com/roach88/patchbind/internal/dsp"
	"github.com/roach88/patchbind/internal/param"
)

// SlotKind is the kind a rule expects at one parameter position.
type SlotKind int

const (
	SlotNumber SlotKind = iota
	SlotNumberOrReference
	SlotReference
	SlotSymbol
	SlotSampleSymbol
	SlotSequence
	SlotNumberList
)

var slotKindNames = [...]string{
	SlotNumber:            "number",
	SlotNumberOrReference: "number_or_reference",
	SlotReference:         "reference",
	SlotSymbol:            "symbol",
	SlotSampleSymbol:      "sample_symbol",
	SlotSequence:          "sequence",
	SlotNumberList:        "number_list",
}

func (k SlotKind) String() string {
	if k < 0 || int(k) >= len(slotKindNames) {
		return "unknown"
	}
	return slotKindNames[k]
}

// Accepts reports whether a value of kind v may fill the slot.
func (k SlotKind) Accepts(v param.Kind) bool {
	switch k {
	case SlotNumber:
		return v == param.KindNumber
	case SlotNumberOrReference:
		return v == param.KindNumber || v == param.KindReference
	case SlotReference:
		return v == param.KindReference
	case SlotSymbol:
		return v == param.KindSymbol
	case SlotSampleSymbol:
		return v == param.KindSampleSymbol
	case SlotSequence:
		return v == param.KindSequence
	case SlotNumberList:
		return v == param.KindNumberList
	default:
		return false
	}
}

// binding is the working state of one Bind call. params has already been
// checked against the rule's slots when a build function sees it.
type binding struct {
	typ    NodeType
	params []param.Value
	ctx    dsp.Context
	refs   []string
	order  map[string]int
}

func (b *binding) number(slot int) float64 {
	n, _ := b.params[slot].(param.Number)
	return float64(n)
}

func (b *binding) symbol(slot int) string {
	s, _ := b.params[slot].(param.Symbol)
	return string(s)
}

func (b *binding) reference(slot int) string {
	r, _ := b.params[slot].(param.Reference)
	b.refs = append(b.refs, string(r))
	return string(r)
}

// withDefault resolves a number-or-reference slot and hands the value to
// construct. A reference is appended to the reference list and replaced by
// the node type's entry in Defaults.
func withDefault[N dsp.Node](b *binding, slot int, construct func(v float64) N) N {
	switch v := b.params[slot].(type) {
	case param.Number:
		return construct(float64(v))
	case param.Reference:
		b.refs = append(b.refs, string(v))
	}
	return construct(Defaults[b.typ])
}
