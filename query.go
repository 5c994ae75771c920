package fauna

import (
	"errors"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Query is query text with its arguments already inlined.
type Query struct {
	text string
}

// FQL creates a [fauna.Query] from text, replacing every `${name}`
// placeholder with the JSON encoding of args[name]. Several argument maps
// are merged, later ones win. The text itself is passed through unchecked.
func FQL(query string, args ...map[string]any) (*Query, error) {
	parts, err := parseTemplate(query)
	if err != nil {
		return nil, err
	}

	var qArgs map[string]any
	if len(args) == 1 {
		qArgs = args[0]
	} else if len(args) > 1 {
		qArgs = map[string]any{}
		for _, a := range args {
			for k, v := range a {
				qArgs[k] = v
			}
		}
	}

	var rendered strings.Builder
	for _, part := range parts {
		switch part.Category {
		case templateLiteral:
			rendered.WriteString(part.Text)

		case templateVariable:
			if qArgs == nil {
				return nil, errors.New("found template variable, but args is nil")
			}

			arg, ok := qArgs[part.Text]
			if !ok {
				return nil, fmt.Errorf("template variable %s not found in args", part.Text)
			}

			encoded, encodeErr := encodeArgument(arg)
			if encodeErr != nil {
				return nil, fmt.Errorf("template variable %s: %w", part.Text, encodeErr)
			}
			rendered.Write(encoded)
		}
	}

	return &Query{text: rendered.String()}, nil
}

// String returns the rendered query text.
func (q *Query) String() string {
	return q.text
}

func encodeArgument(arg any) ([]byte, error) {
	if q, isQuery := arg.(*Query); isQuery {
		return []byte(q.text), nil
	}

	return gojson.Marshal(arg)
}
