package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/watacorp/botflow/pkg/models"
)

func TestSubstitute_NoPlaceholders(t *testing.T) {
	assert.Equal(t, "plain text", Substitute("plain text", map[string]any{"x": "hi"}))
}

func TestSubstitute_ResolvedKey(t *testing.T) {
	assert.Equal(t, "hi", Substitute("{{x}}", map[string]any{"x": "hi"}))
}

func TestSubstitute_MissingKeyRoundTrips(t *testing.T) {
	assert.Equal(t, "{{missing}}", Substitute("{{missing}}", map[string]any{"x": "hi"}))
}

func TestSubstitute_TrimsWhitespaceAroundKey(t *testing.T) {
	context := map[string]any{"customer_name": "Ana"}

	assert.Equal(t, "Hello Ana", Substitute("Hello {{ customer_name }}", context))
}

func TestSubstitute_NonStringValues(t *testing.T) {
	context := map[string]any{"count": 3, "ok": true}

	assert.Equal(t, "3 items, ok=true", Substitute("{{count}} items, ok={{ok}}", context))
}

func TestSubstitute_SinglePass(t *testing.T) {
	// A resolved value containing a placeholder must not be expanded again.
	context := map[string]any{"a": "{{b}}", "b": "nope"}

	assert.Equal(t, "{{b}}", Substitute("{{a}}", context))
}

func TestSubstitute_MixedResolvedAndUnresolved(t *testing.T) {
	context := map[string]any{"name": "Ana"}

	assert.Equal(t, "Ana ordered {{item}}", Substitute("{{name}} ordered {{item}}", context))
}

func TestSubstituteWithContext(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{
		"message": "need help",
	})

	assert.Equal(t, "You said: need help", SubstituteWithContext("You said: {{message}}", executionCtx))
}

func TestPlaceholderKey(t *testing.T) {
	key, ok := PlaceholderKey("{{ customer_name }}")
	assert.True(t, ok)
	assert.Equal(t, "customer_name", key)

	_, ok = PlaceholderKey("Hello {{customer_name}}")
	assert.False(t, ok)

	_, ok = PlaceholderKey("plain text")
	assert.False(t, ok)

	_, ok = PlaceholderKey("")
	assert.False(t, ok)
}
