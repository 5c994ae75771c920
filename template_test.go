package fauna

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_ParseSuccess(t *testing.T) {
	testCases := []struct {
		given string
		wants []templatePart
	}{
		{
			"let x = ${my_var}",
			[]templatePart{
				{"let x = ", templateLiteral},
				{"my_var", templateVariable},
			},
		},
		{
			"let x = ${my_var}\nlet y = ${my_var}\nx * y",
			[]templatePart{
				{"let x = ", templateLiteral},
				{"my_var", templateVariable},
				{"\nlet y = ", templateLiteral},
				{"my_var", templateVariable},
				{"\nx * y", templateLiteral},
			},
		},
		{
			"${my_var} { .name }",
			[]templatePart{
				{"my_var", templateVariable},
				{" { .name }", templateLiteral},
			},
		},
		{
			"let x = '$${not_a_var}'",
			[]templatePart{
				{"let x = '${not_a_var}'", templateLiteral},
			},
		},
		{
			"$${x}",
			[]templatePart{
				{"${x}", templateLiteral},
			},
		},
		{
			"Users.all()",
			[]templatePart{
				{"Users.all()", templateLiteral},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.given, func(t *testing.T) {
			parsed, err := parseTemplate(tc.given)
			require.NoError(t, err)
			assert.Equal(t, tc.wants, parsed)
		})
	}
}

func TestTemplate_ParseFail(t *testing.T) {
	testCases := []struct {
		given string
		error string
	}{
		{"let x = ${かわいい}", "invalid placeholder in template: position 9"},
		{"let x = $y", "invalid placeholder in template: position 9"},
		{"let x = ${}", "empty placeholder in template: position 8"},
	}

	for _, tc := range testCases {
		parsed, err := parseTemplate(tc.given)
		if assert.Error(t, err, "parsed %s into %q", tc.given, parsed) {
			assert.Equal(t, tc.error, err.Error())
		}
	}
}
