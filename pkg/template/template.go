// Package template provides {{variable}} substitution for templated node
// configuration fields.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/watacorp/botflow/pkg/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Substitute replaces every {{ key }} occurrence with the string form of
// context[key]. Whitespace around the key is trimmed. Placeholders whose key
// is absent from the context are left verbatim so unresolved variables
// round-trip unchanged. Substitution is single pass: values containing
// placeholders are not re-expanded.
func Substitute(input string, context map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		key := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])

		value, ok := context[key]
		if !ok {
			return match
		}

		return stringify(value)
	})
}

// SubstituteWithContext renders a template against an execution context's
// accumulated values.
func SubstituteWithContext(input string, executionCtx *models.ExecutionContext) string {
	return Substitute(input, executionCtx.Values)
}

// PlaceholderKey returns the key of an input that consists of exactly one
// placeholder, e.g. "{{ customer_name }}". It reports false for literals and
// for mixed text.
func PlaceholderKey(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)

	match := placeholderPattern.FindStringSubmatch(trimmed)
	if match == nil || match[0] != trimmed {
		return "", false
	}

	return strings.TrimSpace(match[1]), true
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
