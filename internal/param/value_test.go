package param

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ Value = Number(1)
	var _ Value = Reference("a")
	var _ Value = Symbol("s")
	var _ Value = SampleSymbol("kick")
	var _ Value = NewSequence()
	var _ Value = NewNumberList()
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		v    Value
		want Kind
	}{
		{N(440), KindNumber},
		{Ref("lfo"), KindReference},
		{Symbol("code"), KindSymbol},
		{SampleSymbol("808"), KindSampleSymbol},
		{NewSequence(At(0, N(60))), KindSequence},
		{NewNumberList(1, 2), KindNumberList},
		{nil, KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.v))
		})
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for k := KindNumber; k <= KindNumberList; k++ {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindInvalid, ParseKind("invalid"))
	assert.Equal(t, KindInvalid, ParseKind("float"))
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestNumberListIsImmutable(t *testing.T) {
	src := []float64{1, 2, 3}
	list := NewNumberList(src...)
	src[0] = 100

	assert.Equal(t, 1.0, list.At(0), "constructor must copy its input")

	out := list.Values()
	out[1] = 200
	assert.Equal(t, 2.0, list.At(1), "Values must return a copy")
	assert.Equal(t, 3, list.Len())
}

func TestSequenceIsImmutable(t *testing.T) {
	events := []Event{At(0, Ref("a")), At(1, N(60))}
	seq := NewSequence(events...)
	events[0] = At(5, Ref("z"))

	assert.Equal(t, Ref("a"), seq.At(0).Value)

	out := seq.Events()
	out[1] = At(9, N(0))
	assert.Equal(t, 1.0, seq.At(1).Time)
}

func TestString(t *testing.T) {
	assert.Equal(t, "440", String(N(440)))
	assert.Equal(t, "~lfo", String(Ref("lfo")))
	assert.Equal(t, `\808`, String(SampleSymbol("808")))
	assert.Equal(t, "[0:60 0.5:~a]", String(NewSequence(At(0, N(60)), At(0.5, Ref("a")))))
	assert.Equal(t, "<nil>", String(nil))
}

func TestValueJSONRoundTrip(t *testing.T) {
	values := []Value{
		N(440),
		N(-0.25),
		Ref("lfo"),
		Symbol("fn process() {}"),
		SampleSymbol("808"),
		NewNumberList(60, 62, 64),
		NewSequence(At(0, N(60)), At(0.5, Ref("a")), At(0.75, Ref("b"))),
	}
	for _, v := range values {
		t.Run(v.Kind().String(), func(t *testing.T) {
			data, err := MarshalValue(v)
			require.NoError(t, err)

			got, err := UnmarshalValue(data)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestMarshalValueTaggedForm(t *testing.T) {
	data, err := MarshalValue(N(440))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"number","value":440}`, string(data))

	data, err = MarshalValue(NewNumberList())
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"number_list","value":[]}`, string(data))
}

func TestUnmarshalValueRejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"kind":"float","value":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown value kind")

	_, err = UnmarshalValue([]byte(`{"kind":"number"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no payload")

	_, err = UnmarshalValue([]byte(`{"kind":"sequence","value":[{"time":0,"value":{"kind":"bogus","value":1}}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event[0]")
}

func TestDescriptorJSON(t *testing.T) {
	d := NewDescriptor("lpf", Ref("cutoff"), N(1.0))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got Descriptor
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, d, got)
}
