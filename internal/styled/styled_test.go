package styled

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompose(t *testing.T) {
	c := NewComposer(zap.NewNop())

	t.Run("valid descriptors keep order", func(t *testing.T) {
		components, err := c.Compose(`[
			{"text": "Welcome to "},
			{"text": "the server!", "color": "gold", "bold": true},
			{"text": " enjoy", "color": "green", "italic": true}
		]`)
		require.NoError(t, err)
		require.Len(t, components, 3)

		assert.Equal(t, "Welcome to ", components[0].Text)
		assert.Empty(t, components[0].Color)
		assert.Nil(t, components[0].Bold)

		assert.Equal(t, "gold", components[1].Color)
		require.NotNil(t, components[1].Bold)
		assert.True(t, *components[1].Bold)

		assert.Equal(t, "green", components[2].Color)
		require.NotNil(t, components[2].Italic)
		assert.True(t, *components[2].Italic)
	})

	t.Run("not a list fails with invalid input", func(t *testing.T) {
		_, err := c.Compose(`{"text": "x"}`)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = c.Compose(`not json`)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-object elements are skipped, not fatal", func(t *testing.T) {
		components, err := c.Compose(`[{"text": "keep"}, "drop me", 7]`)
		require.NoError(t, err)
		require.Len(t, components, 1)
		assert.Equal(t, "keep", components[0].Text)
	})

	t.Run("all elements invalid fails with empty result", func(t *testing.T) {
		_, err := c.Compose(`["a", "b"]`)
		assert.ErrorIs(t, err, ErrEmptyResult)

		_, err = c.Compose(`[]`)
		assert.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("empty objects still count as components", func(t *testing.T) {
		components, err := c.Compose(`[{}, {}]`)
		require.NoError(t, err)
		assert.Len(t, components, 2)
		assert.Empty(t, components[0].Text)
	})

	t.Run("unknown color dropped, component kept", func(t *testing.T) {
		components, err := c.Compose(`[{"text": "x", "color": "ultraviolet"}]`)
		require.NoError(t, err)
		require.Len(t, components, 1)
		assert.Equal(t, "x", components[0].Text)
		assert.Empty(t, components[0].Color)
	})

	t.Run("color names are case-insensitive, normalized to lower", func(t *testing.T) {
		components, err := c.Compose(`[{"text": "x", "color": "Dark_Purple"}]`)
		require.NoError(t, err)
		assert.Equal(t, "dark_purple", components[0].Color)
	})

	t.Run("explicit false is preserved, distinct from unset", func(t *testing.T) {
		components, err := c.Compose(`[{"text": "a", "bold": false}, {"text": "b"}]`)
		require.NoError(t, err)
		require.NotNil(t, components[0].Bold)
		assert.False(t, *components[0].Bold)
		assert.Nil(t, components[1].Bold)
	})

	t.Run("all style flags copied through", func(t *testing.T) {
		components, err := c.Compose(`[{"text": "x", "bold": true, "italic": true, "underlined": true, "strikethrough": true, "obfuscated": true}]`)
		require.NoError(t, err)
		comp := components[0]
		for _, flag := range []*bool{comp.Bold, comp.Italic, comp.Underlined, comp.Strikethrough, comp.Obfuscated} {
			require.NotNil(t, flag)
			assert.True(t, *flag)
		}
	})
}

func TestPlainText(t *testing.T) {
	c := NewComposer(zap.NewNop())

	components, err := c.Compose(`[{"text": "Hello "}, {"text": "World", "color": "red"}, {"text": "!"}]`)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", PlainText(components))

	assert.Empty(t, PlainText(nil))
}

func TestComponentWireFormat(t *testing.T) {
	t.Run("unset attributes omitted", func(t *testing.T) {
		data, err := json.Marshal(Component{Text: "x"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"text": "x"}`, string(data))
	})

	t.Run("wire attribute names match the protocol", func(t *testing.T) {
		f := false
		tr := true
		data, err := json.Marshal(Component{
			Text:          "x",
			Color:         "light_purple",
			Bold:          &tr,
			Italic:        &f,
			Underlined:    &tr,
			Strikethrough: &f,
			Obfuscated:    &tr,
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"text": "x",
			"color": "light_purple",
			"bold": true,
			"italic": false,
			"underlined": true,
			"strikethrough": false,
			"obfuscated": true
		}`, string(data))
	})

	t.Run("root element with extra children", func(t *testing.T) {
		data, err := json.Marshal(Component{Text: "", Extra: []Component{{Text: "a"}, {Text: "b", Color: "green"}}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"text": "", "extra": [{"text": "a"}, {"text": "b", "color": "green"}]}`, string(data))
	})
}

func TestValidColor(t *testing.T) {
	for _, name := range []string{
		"black", "dark_blue", "dark_green", "dark_aqua", "dark_red", "dark_purple",
		"gold", "gray", "dark_gray", "blue", "green", "aqua", "red", "light_purple",
		"yellow", "white",
	} {
		assert.True(t, ValidColor(name), name)
	}
	assert.True(t, ValidColor("GOLD"))
	assert.False(t, ValidColor("ultraviolet"))
	assert.False(t, ValidColor(""))
}
