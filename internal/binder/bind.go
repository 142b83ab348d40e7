package binder

import (
	"fmt"
	"math"

	"github.com/roach88/patchbind/internal/dsp"
	"github.com/roach88/patchbind/internal/param"
)

// BoundNode is a constructed node and the upstream names it reads from.
//
// Refs[i] feeds input port i, except for Mix, where every entry sums into
// one port, and Seq, where Order maps each name to its selection index.
// Order is nil for every other node type.
type BoundNode struct {
	Type  NodeType
	Node  dsp.Node
	Refs  []string
	Order map[string]int
}

// Bind validates params against the rule for typeName and constructs the
// node. On error the returned node is nil.
func Bind(typeName string, params []param.Value, ctx dsp.Context) (*BoundNode, error) {
	t, ok := ParseNodeType(typeName)
	if !ok {
		return nil, newUnknownNodeType(typeName)
	}
	return BindType(t, params, ctx)
}

// BindDescriptor binds a parsed descriptor.
func BindDescriptor(d param.Descriptor, ctx dsp.Context) (*BoundNode, error) {
	return Bind(d.Type, d.Params, ctx)
}

// BindType is Bind for an already resolved node type.
func BindType(t NodeType, params []param.Value, ctx dsp.Context) (*BoundNode, error) {
	if !t.Valid() {
		return nil, newUnknownNodeType(t.String())
	}
	r := &rules[t]
	if r.build == nil {
		return nil, newUnknownNodeType(t.String())
	}
	if err := r.check(t, params); err != nil {
		return nil, err
	}

	b := &binding{typ: t, params: params, ctx: ctx}
	node, err := r.build(b)
	if err != nil {
		return nil, err
	}
	return &BoundNode{Type: t, Node: node, Refs: b.refs, Order: b.order}, nil
}

// check validates arity and slot kinds.
func (r *rule) check(t NodeType, params []param.Value) error {
	if r.variadic {
		if len(params) == 0 {
			return newArityMismatch(t, "at least 1", 0)
		}
	} else if len(params) != len(r.slots) {
		return newArityMismatch(t, fmt.Sprintf("%d", len(r.slots)), len(params))
	}
	for i, p := range params {
		slot := r.slots[min(i, len(r.slots)-1)]
		k := param.KindOf(p)
		if !slot.Accepts(k) {
			return newKindMismatch(t, i, slot, k.String())
		}
		if !finite(p) {
			return newKindMismatch(t, i, slot, "non-finite "+k.String())
		}
	}
	return nil
}

// finite reports whether every number carried by v is finite. Sequence
// event values are checked by OrderReferences.
func finite(v param.Value) bool {
	switch val := v.(type) {
	case param.Number:
		return isFinite(float64(val))
	case param.NumberList:
		for i := 0; i < val.Len(); i++ {
			if !isFinite(val.At(i)) {
				return false
			}
		}
	}
	return true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
