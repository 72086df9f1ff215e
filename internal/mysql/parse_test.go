package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTabbed(t *testing.T) {
	out := "uuid\tFully specified name:en\tMembers\tAnswers\n" +
		"abc-123\tVitals\tHeight;Weight\tNULL\n" +
		"def-456\tHeight\tNULL\tNULL\n"

	records, columns, err := ParseTabbed(out)
	require.NoError(t, err)

	assert.Equal(t, []string{"uuid", "Fully specified name:en", "Members", "Answers"}, columns)
	require.Len(t, records, 2)

	assert.Equal(t, "abc-123", records[0]["uuid"])
	assert.Equal(t, "Height;Weight", records[0]["Members"])
	assert.Equal(t, "", records[0]["Answers"], "NULL becomes empty")
	assert.Equal(t, []string{"Height", "Weight"}, records[0].Referents())
	assert.Empty(t, records[1].Referents())
}

func TestParseTabbedEmptyOutput(t *testing.T) {
	records, columns, err := ParseTabbed("")
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Nil(t, columns)
}

func TestParseTabbedUnescapesValues(t *testing.T) {
	out := "name\tdescription\n" +
		`Weight\t(kg)` + "\t" + `First line\nsecond line` + "\n"

	records, _, err := ParseTabbed(out)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Weight\t(kg)", records[0]["name"])
	assert.Equal(t, "First line\nsecond line", records[0]["description"])
}

func TestParseTabbedKeepsLiteralNULLInsideValue(t *testing.T) {
	// Only a field that is exactly NULL is a SQL NULL.
	out := "name\nNULLIFY THE FORM\n"

	records, _, err := ParseTabbed(out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "NULLIFY THE FORM", records[0]["name"])
}

func TestParseTabbedShortRow(t *testing.T) {
	out := "a\tb\tc\nonly\n"

	records, columns, err := ParseTabbed(out)
	require.NoError(t, err)
	require.Len(t, columns, 3)
	require.Len(t, records, 1)
	assert.Equal(t, "only", records[0]["a"])
	assert.Equal(t, "", records[0]["b"])
	assert.Equal(t, "", records[0]["c"])
}
