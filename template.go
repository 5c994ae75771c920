package fauna

import (
	"fmt"
	"regexp"
	"strings"
)

type templateCategory string

const (
	templateVariable templateCategory = "variable"
	templateLiteral  templateCategory = "literal"
)

var placeholderPattern = regexp.MustCompile(`\$(?:(?P<escaped>\$)|{(?P<braced>[_a-zA-Z0-9]*)}|(?P<invalid>))`)

var (
	escapedGroup = placeholderPattern.SubexpIndex("escaped")
	bracedGroup  = placeholderPattern.SubexpIndex("braced")
	invalidGroup = placeholderPattern.SubexpIndex("invalid")
)

type templatePart struct {
	Text     string
	Category templateCategory
}

// parseTemplate splits text into literals and `${name}` placeholders. `$$`
// is a literal dollar sign and adjacent literal text is merged.
func parseTemplate(text string) ([]templatePart, error) {
	parts := make([]templatePart, 0)

	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, templatePart{Text: literal.String(), Category: templateLiteral})
			literal.Reset()
		}
	}

	position := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(text, -1) {
		literal.WriteString(text[position:loc[0]])
		position = loc[1]

		switch {
		case loc[2*escapedGroup] >= 0:
			literal.WriteByte('$')

		case loc[2*bracedGroup] >= 0:
			name := text[loc[2*bracedGroup]:loc[2*bracedGroup+1]]
			if name == "" {
				return nil, fmt.Errorf("empty placeholder in template: position %d", loc[0])
			}

			flush()
			parts = append(parts, templatePart{Text: name, Category: templateVariable})

		default:
			return nil, fmt.Errorf("invalid placeholder in template: position %d", loc[2*invalidGroup])
		}
	}

	literal.WriteString(text[position:])
	flush()

	return parts, nil
}
