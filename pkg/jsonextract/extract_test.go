package jsonextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstObject_JSONFenceWins(t *testing.T) {
	text := "Here is a sketch {\"draft\": true}\n```json\n{\"corrected_symptoms\": \"feeling dizzy, heavy head\"}\n```\nDone."

	obj, ok := FirstObject(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"corrected_symptoms": "feeling dizzy, heavy head"}`, obj)
}

func TestFirstObject_PlainFence(t *testing.T) {
	text := "```\nnot json\n```\nthen\n```\n{\"a\": [1, 2]}\n```"

	obj, ok := FirstObject(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": [1, 2]}`, obj)
}

func TestFirstObject_BareObjectWithBracesInStrings(t *testing.T) {
	text := `Analysis: {"note": "use {caution} and \"quotes\"", "n": {"x": 1}} trailing }`

	obj, ok := FirstObject(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"note": "use {caution} and \"quotes\"", "n": {"x": 1}}`, obj)
}

func TestFirstObject_SkipsInvalidCandidate(t *testing.T) {
	obj, ok := FirstObject(`{not valid} then {"ok": true}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"ok": true}`, obj)
}

func TestFirstObject_NoObject(t *testing.T) {
	for _, text := range []string{"", "plain prose only", "{unbalanced", "```json\n[1,2]\n```"} {
		_, ok := FirstObject(text)
		assert.False(t, ok, text)
	}
}

func TestDecode(t *testing.T) {
	var out struct {
		Condition string `json:"condition"`
	}
	require.NoError(t, Decode("prefix ```json {\"condition\":\"Migraine\"} ``` suffix", &out))
	assert.Equal(t, "Migraine", out.Condition)

	assert.ErrorIs(t, Decode("nothing here", &out), ErrNoObject)
}
