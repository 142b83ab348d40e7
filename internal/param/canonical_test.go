package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"float", 0.5, "0.5"},
		{"whole float", 440.0, "440"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"no html escape", "<a&b>", `"<a&b>"`},
		{"number value", N(100), `{"kind":"number","value":100}`},
		{"reference value", Ref("a"), `{"kind":"reference","value":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"zebra": 1, "alpha": 2, "beta": map[string]any{"b": 1, "a": 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, string(got))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	precomposed, err := MarshalCanonical("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, precomposed, decomposed)
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(math.NaN())
	assert.Error(t, err)

	_, err = MarshalCanonical(N(math.Inf(1)))
	assert.Error(t, err)

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err)
}

func TestDescriptorHashStable(t *testing.T) {
	a := NewDescriptor("seq", NewSequence(At(0, Ref("a")), At(1, N(60))))
	b := NewDescriptor("seq", NewSequence(At(0, Ref("a")), At(1, N(60))))
	c := NewDescriptor("seq", NewSequence(At(1, N(60)), At(0, Ref("a"))))

	ha, err := DescriptorHash(a)
	require.NoError(t, err)
	hb, err := DescriptorHash(b)
	require.NoError(t, err)
	hc, err := DescriptorHash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc, "event order is significant")
	assert.Len(t, ha, 64)
}

func TestCompareKeysUTF16(t *testing.T) {
	assert.Less(t, compareKeysUTF16("A", "a"), 0)
	assert.Less(t, compareKeysUTF16("a", "aa"), 0)
	assert.Equal(t, 0, compareKeysUTF16("x", "x"))
	// U+FFFF sorts before U+1F600 in UTF-8 byte order but after it in UTF-16.
	assert.Greater(t, compareKeysUTF16("\uFFFF", "\U0001F600"), 0)
}
