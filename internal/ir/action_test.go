package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToObject(t *testing.T) {
	t.Run("plain map", func(t *testing.T) {
		obj, err := ToObject(map[string]any{"type": "INC"})
		require.NoError(t, err)
		assert.Equal(t, "INC", obj.Type())
	})

	t.Run("IRObject passes through", func(t *testing.T) {
		in := NewAction("INC")
		obj, err := ToObject(in)
		require.NoError(t, err)
		assert.Equal(t, in, obj)
	})

	t.Run("any field values", func(t *testing.T) {
		obj, err := ToObject(map[string]any{
			"type":   "ADD",
			"amount": 1.5,
			"tags":   []string{"a"},
			"meta":   map[string]string{"k": "v"},
		})
		require.NoError(t, err)
		assert.Equal(t, IRObject{
			"type":   IRString("ADD"),
			"amount": IRFloat(1.5),
			"tags":   IRArray{IRString("a")},
			"meta":   IRObject{"k": IRString("v")},
		}, obj)
	})

	t.Run("typed map", func(t *testing.T) {
		obj, err := ToObject(map[string]string{"type": "INC"})
		require.NoError(t, err)
		assert.Equal(t, "INC", obj.Type())
	})

	t.Run("empty object is valid", func(t *testing.T) {
		obj, err := ToObject(map[string]any{})
		require.NoError(t, err)
		assert.Empty(t, obj)
		assert.Equal(t, "", obj.Type())
	})

	for name, in := range map[string]any{
		"int":         1,
		"string":      "INC",
		"nil":         nil,
		"nil map":     map[string]any(nil),
		"slice":       []any{"INC"},
		"struct":      struct{ Type string }{"INC"},
		"func field":  map[string]any{"x": func() {}},
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := ToObject(in)
			assert.ErrorIs(t, err, ErrNotObject)
		})
	}
}

func TestActionAccessors(t *testing.T) {
	a := NewAction("ADD", O("by", IRInt(5)), O("who", IRString("bob")))

	n, ok := a.GetInt("by")
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)

	s, ok := a.GetString("who")
	assert.True(t, ok)
	assert.Equal(t, "bob", s)

	_, ok = a.GetInt("who")
	assert.False(t, ok)

	v, ok := a.Get("by")
	assert.True(t, ok)
	assert.Equal(t, int64(5), v)

	_, ok = a.Get("missing")
	assert.False(t, ok)
}

func TestInitAction(t *testing.T) {
	a := InitAction()
	assert.Equal(t, InitActionType, a.Type())

	a["extra"] = IRBool(true)
	assert.NotContains(t, InitAction(), "extra", "each call returns a fresh object")
}
