package loader

import (
	"fmt"
	"strings"

	"github.com/roach88/patchbind/internal/param"
)

// toValue converts a decoded scalar or list into a parameter value. Every
// format first lowers its own tree into float64, string, []any and
// map[string]any.
func toValue(raw any) (param.Value, error) {
	switch v := raw.(type) {
	case float64:
		return param.N(v), nil
	case int:
		return param.N(float64(v)), nil
	case int64:
		return param.N(float64(v)), nil
	case string:
		return fromString(v), nil
	case []any:
		return fromList(v)
	case nil:
		return nil, fmt.Errorf("param is null")
	default:
		return nil, fmt.Errorf("unsupported param of type %T", raw)
	}
}

func fromString(s string) param.Value {
	if name, ok := strings.CutPrefix(s, "~"); ok {
		return param.Ref(name)
	}
	if name, ok := strings.CutPrefix(s, `\`); ok {
		return param.SampleSymbol(name)
	}
	return param.Symbol(s)
}

// fromList maps a list of numbers to a NumberList and a list of
// {time, value} objects to a Sequence. An empty list is an empty NumberList.
func fromList(items []any) (param.Value, error) {
	if len(items) == 0 {
		return param.NewNumberList(), nil
	}
	if _, ok := items[0].(map[string]any); ok {
		events := make([]param.Event, len(items))
		for i, item := range items {
			e, err := toEvent(item)
			if err != nil {
				return nil, fmt.Errorf("event[%d]: %w", i, err)
			}
			events[i] = e
		}
		return param.NewSequence(events...), nil
	}

	values := make([]float64, len(items))
	for i, item := range items {
		n, ok := toNumber(item)
		if !ok {
			return nil, fmt.Errorf("list[%d]: number lists may only hold numbers, got %T", i, item)
		}
		values[i] = n
	}
	return param.NewNumberList(values...), nil
}

func toEvent(raw any) (param.Event, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return param.Event{}, fmt.Errorf("expected {time, value}, got %T", raw)
	}
	for k := range m {
		if k != "time" && k != "value" {
			return param.Event{}, fmt.Errorf("unexpected field %q", k)
		}
	}
	t, ok := toNumber(m["time"])
	if !ok {
		return param.Event{}, fmt.Errorf("time must be a number")
	}
	rawValue, ok := m["value"]
	if !ok {
		return param.Event{}, fmt.Errorf("value is required")
	}
	v, err := toValue(rawValue)
	if err != nil {
		return param.Event{}, err
	}
	return param.At(t, v), nil
}

func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// toParams converts a node's raw param list. No params yields nil.
func toParams(raw []any) ([]param.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make([]param.Value, len(raw))
	for i, r := range raw {
		v, err := toValue(r)
		if err != nil {
			return nil, fmt.Errorf("param[%d]: %w", i, err)
		}
		params[i] = v
	}
	return params, nil
}
