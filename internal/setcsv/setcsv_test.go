package setcsv

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	in := strings.Join([]string{
		"uuid,Fully specified name:en,Fully specified name:es,Void/Retire",
		"set-1,Vitals,Signos vitales,",
		"mem-1,Height,Altura,",
		"mem-2,Old Weight,Peso viejo,TRUE",
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, Convert(strings.NewReader(in), &out))

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Concept", "Member",
		"#Fully specified name:en", "#Fully specified name:es",
		"Member Type", "Sort Weight", "Void/Retire"}, rows[0])

	assert.Equal(t, []string{"set-1", "mem-1", "Height", "Altura", "CONCEPT-SET", "1", ""}, rows[1])
	assert.Equal(t, []string{"set-1", "mem-2", "Old Weight", "Peso viejo", "CONCEPT-SET", "2", "TRUE"}, rows[2])
}

func TestConvertNoMembers(t *testing.T) {
	in := "uuid,Fully specified name:en\nset-1,Vitals\n"

	var out bytes.Buffer
	require.NoError(t, Convert(strings.NewReader(in), &out))

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only when the set has no members")
}

func TestConvertMissingUUIDColumn(t *testing.T) {
	in := "name\nVitals\nHeight\n"

	var out bytes.Buffer
	err := Convert(strings.NewReader(in), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uuid")
}

func TestConvertEmptyInput(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, Convert(strings.NewReader(""), &out))
}
