package logs_ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeProperties(t *testing.T) {
	t.Run("JSON-encoded string is parsed in place", func(t *testing.T) {
		record := RawRecord{"properties": `{"a":1,"b":"two"}`}

		require.NoError(t, deserializeProperties(record))

		properties, ok := record.MapField("properties")
		require.True(t, ok)
		assert.Equal(t, float64(1), properties["a"])
		assert.Equal(t, "two", properties["b"])
	})

	t.Run("nested object is left untouched", func(t *testing.T) {
		original := map[string]any{"a": float64(1)}
		record := RawRecord{"properties": original}

		require.NoError(t, deserializeProperties(record))

		properties, ok := record.MapField("properties")
		require.True(t, ok)
		assert.Equal(t, original, properties)
	})

	t.Run("EventProperties alias is recognized", func(t *testing.T) {
		record := RawRecord{"EventProperties": `{"b":2}`}

		require.NoError(t, deserializeProperties(record))

		properties, ok := record.MapField("properties")
		require.True(t, ok)
		assert.Equal(t, float64(2), properties["b"])
	})

	t.Run("properties alias wins over EventProperties", func(t *testing.T) {
		record := RawRecord{
			"properties":      `{"a":1}`,
			"EventProperties": `{"b":2}`,
		}

		require.NoError(t, deserializeProperties(record))

		properties, ok := record.MapField("properties")
		require.True(t, ok)
		assert.Contains(t, properties, "a")
		assert.NotContains(t, properties, "b")
	})

	t.Run("no alias present is a no-op", func(t *testing.T) {
		record := RawRecord{"category": "x"}

		require.NoError(t, deserializeProperties(record))

		assert.NotContains(t, record, "properties")
	})

	t.Run("empty string is a no-op", func(t *testing.T) {
		record := RawRecord{"properties": ""}

		require.NoError(t, deserializeProperties(record))

		assert.Equal(t, "", record["properties"])
	})

	t.Run("malformed JSON propagates as decode error", func(t *testing.T) {
		record := RawRecord{"properties": `{not json`}

		err := deserializeProperties(record)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})
}
