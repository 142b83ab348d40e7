package param

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// wireValue is the tagged JSON form of a Value:
//
//	{"kind":"number","value":440}
//	{"kind":"reference","value":"lfo"}
//	{"kind":"sequence","value":[{"time":0,"value":{"kind":"number","value":60}}]}
type wireValue struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

type wireEvent struct {
	Time  float64         `json:"time"`
	Value json.RawMessage `json:"value"`
}

// MarshalValue marshals a Value to its tagged JSON form.
// Uses type-switch dispatch to handle all Value types.
func MarshalValue(v Value) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	switch val := v.(type) {
	case Number:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("non-finite number %v cannot be encoded", float64(val))
		}
		payload, err = json.Marshal(float64(val))
	case Reference:
		payload, err = json.Marshal(string(val))
	case Symbol:
		payload, err = json.Marshal(string(val))
	case SampleSymbol:
		payload, err = json.Marshal(string(val))
	case NumberList:
		payload, err = json.Marshal(val.values)
		if val.values == nil {
			payload = []byte("[]")
		}
	case Sequence:
		payload, err = marshalEvents(val.events)
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireValue{Kind: v.Kind().String(), Value: payload})
}

// marshalEvents marshals sequence events in order.
func marshalEvents(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range events {
		if i > 0 {
			buf.WriteByte(',')
		}
		inner, err := MarshalValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("event[%d]: %w", i, err)
		}
		b, err := json.Marshal(wireEvent{Time: e.Time, Value: inner})
		if err != nil {
			return nil, fmt.Errorf("event[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalValue decodes the tagged JSON form of a Value.
// Unknown kinds and malformed payloads are errors.
func UnmarshalValue(data []byte) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if len(w.Value) == 0 {
		return nil, fmt.Errorf("value of kind %q has no payload", w.Kind)
	}

	switch ParseKind(w.Kind) {
	case KindNumber:
		var f float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
			return nil, fmt.Errorf("number: %w", err)
		}
		return Number(f), nil
	case KindReference, KindSymbol, KindSampleSymbol:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", w.Kind, err)
		}
		switch ParseKind(w.Kind) {
		case KindReference:
			return Reference(s), nil
		case KindSymbol:
			return Symbol(s), nil
		default:
			return SampleSymbol(s), nil
		}
	case KindNumberList:
		var fs []float64
		if err := json.Unmarshal(w.Value, &fs); err != nil {
			return nil, fmt.Errorf("number_list: %w", err)
		}
		return NewNumberList(fs...), nil
	case KindSequence:
		var raw []wireEvent
		if err := json.Unmarshal(w.Value, &raw); err != nil {
			return nil, fmt.Errorf("sequence: %w", err)
		}
		events := make([]Event, len(raw))
		for i, re := range raw {
			inner, err := UnmarshalValue(re.Value)
			if err != nil {
				return nil, fmt.Errorf("sequence event[%d]: %w", i, err)
			}
			events[i] = Event{Time: re.Time, Value: inner}
		}
		return Sequence{events: events}, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", w.Kind)
	}
}
