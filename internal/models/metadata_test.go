package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func TestMetadataIntShapes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
		ok    bool
	}{
		{"int", 10, 10, true},
		{"int64", int64(10), 10, true},
		{"float64 from json", float64(10), 10, true},
		{"numeric string", "10", 10, true},
		{"garbage string", "ten", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := map[string]interface{}{}
			if tt.value != nil {
				meta["prestashop_id"] = tt.value
			}
			got, ok := metadataInt(meta, "prestashop_id")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := metadataInt(nil, "prestashop_id")
	assert.False(t, ok)
}

func TestPrestashopIDSurvivesJSONRoundTrip(t *testing.T) {
	variant := Variant{Metadata: datatypes.JSONMap{"prestashop_id": 201}}

	raw, err := json.Marshal(variant.Metadata)
	require.NoError(t, err)

	var decoded datatypes.JSONMap
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored := Variant{Metadata: decoded}
	id, ok := restored.PrestashopID()
	require.True(t, ok)
	assert.Equal(t, 201, id)
}
