package styled

import (
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrInvalidInput means the descriptor source did not parse into a
	// JSON list.
	ErrInvalidInput = errors.New("rich text must be a JSON list of segment objects")

	// ErrEmptyResult means no valid component survived validation, so
	// there is nothing to send.
	ErrEmptyResult = errors.New("no valid rich text segments")
)

// colors is the fixed 16-name Minecraft chat palette. The identifiers
// must match the server's wire names exactly.
var colors = map[string]struct{}{
	"black":        {},
	"dark_blue":    {},
	"dark_green":   {},
	"dark_aqua":    {},
	"dark_red":     {},
	"dark_purple":  {},
	"gold":         {},
	"gray":         {},
	"dark_gray":    {},
	"blue":         {},
	"green":        {},
	"aqua":         {},
	"red":          {},
	"light_purple": {},
	"yellow":       {},
	"white":        {},
}

// ValidColor reports whether name is in the palette, case-insensitively.
func ValidColor(name string) bool {
	_, ok := colors[strings.ToLower(name)]
	return ok
}

// Component is a styled text fragment in the server's tellraw wire form.
// Unset booleans mean "inherit", distinct from an explicit false, so they
// are pointers and omitted from JSON when nil.
type Component struct {
	Text          string      `json:"text"`
	Color         string      `json:"color,omitempty"`
	Bold          *bool       `json:"bold,omitempty"`
	Italic        *bool       `json:"italic,omitempty"`
	Underlined    *bool       `json:"underlined,omitempty"`
	Strikethrough *bool       `json:"strikethrough,omitempty"`
	Obfuscated    *bool       `json:"obfuscated,omitempty"`
	Extra         []Component `json:"extra,omitempty"`
}

// styleFlags are the boolean attributes copied through when present.
var styleFlags = []string{"bold", "italic", "underlined", "strikethrough", "obfuscated"}

// Composer validates agent-supplied rich text descriptors into
// protocol-ready components.
type Composer struct {
	log *zap.Logger
}

func NewComposer(log *zap.Logger) *Composer {
	return &Composer{log: log}
}

// Compose parses descriptorJSON, a JSON list of segment objects, into an
// ordered component list. Invalid list elements and unknown colors are
// logged and skipped rather than failing the whole batch; only an
// unparseable source (ErrInvalidInput) or a fully empty result
// (ErrEmptyResult) is fatal. Output order equals input order.
func (c *Composer) Compose(descriptorJSON string) ([]Component, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(descriptorJSON), &elements); err != nil {
		return nil, ErrInvalidInput
	}

	components := make([]Component, 0, len(elements))
	for i, raw := range elements {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			c.log.Warn("rich text element is not an object, skipping",
				zap.Int("index", i))
			continue
		}
		components = append(components, c.build(i, fields))
	}

	if len(components) == 0 {
		return nil, ErrEmptyResult
	}
	return components, nil
}

func (c *Composer) build(index int, fields map[string]json.RawMessage) Component {
	var comp Component

	if raw, ok := fields["text"]; ok {
		if err := json.Unmarshal(raw, &comp.Text); err != nil {
			c.log.Warn("rich text segment has non-string text",
				zap.Int("index", index))
		}
	}

	if raw, ok := fields["color"]; ok {
		var color string
		if err := json.Unmarshal(raw, &color); err != nil || !ValidColor(color) {
			// Fall back to the default color rather than failing.
			c.log.Warn("unknown rich text color, dropping attribute",
				zap.Int("index", index),
				zap.String("color", string(raw)))
		} else {
			comp.Color = strings.ToLower(color)
		}
	}

	for _, flag := range styleFlags {
		raw, ok := fields[flag]
		if !ok {
			continue
		}
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			c.log.Warn("rich text style flag is not a boolean, dropping attribute",
				zap.Int("index", index),
				zap.String("flag", flag))
			continue
		}
		comp.setFlag(flag, v)
	}

	for name := range fields {
		if !knownField(name) {
			c.log.Warn("unknown rich text attribute ignored",
				zap.Int("index", index),
				zap.String("attribute", name))
		}
	}

	return comp
}

func (comp *Component) setFlag(name string, v bool) {
	switch name {
	case "bold":
		comp.Bold = &v
	case "italic":
		comp.Italic = &v
	case "underlined":
		comp.Underlined = &v
	case "strikethrough":
		comp.Strikethrough = &v
	case "obfuscated":
		comp.Obfuscated = &v
	}
}

func knownField(name string) bool {
	if name == "text" || name == "color" {
		return true
	}
	for _, flag := range styleFlags {
		if name == flag {
			return true
		}
	}
	return false
}

// PlainText concatenates the text of each component in order. The
// projection is what gets recorded as the bot's own chat history even
// though the wire send uses the styled form.
func PlainText(components []Component) string {
	var b strings.Builder
	for _, comp := range components {
		b.WriteString(comp.Text)
	}
	return b.String()
}
