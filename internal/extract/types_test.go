package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataMarshalSpreadsInfo(t *testing.T) {
	m := Metadata{
		Info: map[string]string{
			"Producer":     "LibreOffice 7.4",
			"Author":       "Jonas Jonaitis",
			"CreationDate": "2023-06-15T14:30:22+02:00",
		},
		PageCount:        2,
		SloppyRedactions: []int{},
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// container entries sit flat next to the derived fields
	assert.Equal(t, "LibreOffice 7.4", decoded["Producer"])
	assert.Equal(t, "Jonas Jonaitis", decoded["Author"])
	assert.Equal(t, "2023-06-15T14:30:22+02:00", decoded["CreationDate"])
	assert.NotContains(t, decoded, "info")

	assert.Equal(t, float64(2), decoded["pageCount"])
	assert.Contains(t, decoded, "links")
	assert.Contains(t, decoded, "emails")
	assert.Contains(t, decoded, "sloppyRedactions")
}

func TestMetadataMarshalInfoCannotShadowDerivedFields(t *testing.T) {
	m := Metadata{
		Info:             map[string]string{"pageCount": "netikras"},
		PageCount:        3,
		SloppyRedactions: []int{},
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(3), decoded["pageCount"])
}

func TestMetadataMarshalWithoutInfo(t *testing.T) {
	m := Metadata{PageCount: 1, SloppyRedactions: []int{}}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "info")
	assert.Equal(t, float64(1), decoded["pageCount"])
}
