package param

import "fmt"

// Value is a sealed interface representing a bound argument to a node.
// Only Number, Reference, Symbol, SampleSymbol, Sequence and NumberList
// implement it.
type Value interface {
	paramValue() // Sealed - only these types implement it
	Kind() Kind
}

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindReference
	KindSymbol
	KindSampleSymbol
	KindSequence
	KindNumberList
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindNumber:       "number",
	KindReference:    "reference",
	KindSymbol:       "symbol",
	KindSampleSymbol: "sample_symbol",
	KindSequence:     "sequence",
	KindNumberList:   "number_list",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String. Returns KindInvalid for unknown names.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s && Kind(k) != KindInvalid {
			return Kind(k)
		}
	}
	return KindInvalid
}

// KindOf returns the kind of v, or KindInvalid for a nil Value.
func KindOf(v Value) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.Kind()
}

// Number is a numeric literal.
type Number float64

func (Number) paramValue() {}
func (Number) Kind() Kind { return KindNumber }

// Reference names another node (chain) whose output feeds this node.
type Reference string

func (Reference) paramValue() {}
func (Reference) Kind() Kind { return KindReference }

// Symbol is an opaque annotation, e.g. metadata code.
type Symbol string

func (Symbol) paramValue() {}
func (Symbol) Kind() Kind { return KindSymbol }

// SampleSymbol is a key into a sample table.
type SampleSymbol string

func (SampleSymbol) paramValue() {}
func (SampleSymbol) Kind() Kind { return KindSampleSymbol }

// NumberList is an ordered list of numbers. The backing slice is private so
// the list cannot change after construction.
type NumberList struct {
	values []float64
}

func (NumberList) paramValue() {}
func (NumberList) Kind() Kind { return KindNumberList }

// NewNumberList copies values into a new NumberList.
func NewNumberList(values ...float64) NumberList {
	return NumberList{values: append([]float64(nil), values...)}
}

// Len returns the number of values in the list.
func (l NumberList) Len() int { return len(l.values) }

// At returns the i-th value.
func (l NumberList) At(i int) float64 { return l.values[i] }

// Values returns a copy of the list.
func (l NumberList) Values() []float64 {
	return append([]float64(nil), l.values...)
}

// Event is a single (time, value) entry of a Sequence. Time is the event's
// position in bars from the start of the pattern.
type Event struct {
	Time  float64
	Value Value
}

// Sequence is an ordered list of events.
type Sequence struct {
	events []Event
}

func (Sequence) paramValue() {}
func (Sequence) Kind() Kind { return KindSequence }

// NewSequence copies events into a new Sequence. Event order is preserved.
func NewSequence(events ...Event) Sequence {
	return Sequence{events: append([]Event(nil), events...)}
}

// Len returns the number of events.
func (s Sequence) Len() int { return len(s.events) }

// At returns the i-th event.
func (s Sequence) At(i int) Event { return s.events[i] }

// Events returns a copy of the events in original order.
func (s Sequence) Events() []Event {
	return append([]Event(nil), s.events...)
}

// N is a shorthand for Number, for ergonomic descriptor construction.
// Example: NewDescriptor("lpf", N(300), N(1.0))
func N(v float64) Number { return Number(v) }

// Ref is a shorthand for Reference.
func Ref(name string) Reference { return Reference(name) }

// At is a shorthand for building an Event.
func At(time float64, v Value) Event { return Event{Time: time, Value: v} }

// String renders a Value the way a patch author would write it.
func String(v Value) string {
	switch val := v.(type) {
	case Number:
		return fmt.Sprintf("%g", float64(val))
	case Reference:
		return "~" + string(val)
	case Symbol:
		return string(val)
	case SampleSymbol:
		return `\` + string(val)
	case NumberList:
		return fmt.Sprintf("%v", val.values)
	case Sequence:
		s := "["
		for i, e := range val.events {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprintf("%g:%s", e.Time, String(e.Value))
		}
		return s + "]"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%v", v)
	}
}
