package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlainString(t *testing.T) {
	raw, _ := json.Marshal("  hello world  ")
	assert.Equal(t, "hello world", Normalize(raw))
}

func TestNormalizeSegmentList(t *testing.T) {
	raw := []byte(`[{"type":"text","text":"hello"},{"type":"image","text":"ignored"},{"type":"text","text":"world"}]`)
	assert.Equal(t, "hello world", Normalize(raw))
}

func TestNormalizeEquivalence(t *testing.T) {
	// Three renderings of the same utterance, one canonical output.
	fromList := Normalize([]byte(`[{"type":"text","text":"hello"}]`))
	fromString := Normalize([]byte(`"hello"`))
	fromSerialized := Normalize([]byte(`"[{'type': 'text', 'text': 'hello'}]"`))

	assert.Equal(t, "hello", fromList)
	assert.Equal(t, "hello", fromString)
	assert.Equal(t, "hello", fromSerialized)
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"hello",
		"book a hotel in Tokyo",
		"",
		"multi  spaced   input",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "normalizing twice must equal normalizing once for %q", in)
	}
}

func TestNormalizeSerializedListDoubleQuotes(t *testing.T) {
	assert.Equal(t, "hi there", NormalizeText(`[{"type": "text", "text": "hi there"}]`))
}

func TestNormalizeMalformedFallsBack(t *testing.T) {
	// Unparseable input is returned trimmed, never an error.
	assert.Equal(t, `[{"type":}garbled`, NormalizeText(` [{"type": }garbled `))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize([]byte(`""`)))
	assert.Equal(t, "", Normalize(nil))
}
