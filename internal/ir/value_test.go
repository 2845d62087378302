package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalValue(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"name":"core","n":3,"ok":true,"tags":["a"]}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, String("core"), obj["name"])
	assert.Equal(t, Int(3), obj["n"])
	assert.Equal(t, Bool(true), obj["ok"])
	assert.Equal(t, Array{String("a")}, obj["tags"])
}

func TestUnmarshalValueRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"float", `{"x":1.5}`, "float"},
		{"exponent", `[1e3]`, "float"},
		{"null", `{"x":null}`, "null"},
		{"overflow", `99999999999999999999`, "range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalValue([]byte(tt.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSortedKeys(t *testing.T) {
	obj := Object{"b": Int(1), "a": Int(2), "aa": Int(3)}
	assert.Equal(t, []string{"a", "aa", "b"}, obj.SortedKeys())
}
