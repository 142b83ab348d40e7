package param

import (
	"encoding/json"
	"fmt"
)

// Descriptor is a node type name plus its positional parameters, as produced
// by the parser. Slot position determines the expected kind.
type Descriptor struct {
	Type   string
	Params []Value
}

// NewDescriptor creates a Descriptor, copying params.
func NewDescriptor(typeName string, params ...Value) Descriptor {
	return Descriptor{Type: typeName, Params: append([]Value(nil), params...)}
}

type wireDescriptor struct {
	Type   string            `json:"type"`
	Params []json.RawMessage `json:"params"`
}

// MarshalJSON implements json.Marshaler using the tagged value encoding.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	w := wireDescriptor{Type: d.Type, Params: make([]json.RawMessage, len(d.Params))}
	for i, p := range d.Params {
		b, err := MarshalValue(p)
		if err != nil {
			return nil, fmt.Errorf("descriptor %q param[%d]: %w", d.Type, i, err)
		}
		w.Params[i] = b
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var w wireDescriptor
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	params := make([]Value, len(w.Params))
	for i, raw := range w.Params {
		v, err := UnmarshalValue(raw)
		if err != nil {
			return fmt.Errorf("descriptor %q param[%d]: %w", w.Type, i, err)
		}
		params[i] = v
	}
	d.Type = w.Type
	d.Params = params
	return nil
}
