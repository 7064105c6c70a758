package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONMetadata_AttributeValues(t *testing.T) {
	m, err := DecodeJSONMetadata([]byte(`{
		"name": "Kyogen #1",
		"image": "https://example.com/1.png",
		"attributes": [
			{"trait_type": "Clan", "value": "Ancients"},
			{"trait_type": "Level", "value": 3},
			{"trait_type": "Legendary", "value": true},
			{"trait_type": "Empty", "value": null},
			{"value": "orphan"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, m.Attributes, 5)
	assert.Equal(t, "Ancients", m.Attributes[0].Value)
	assert.Equal(t, "3", m.Attributes[1].Value)
	assert.Equal(t, "true", m.Attributes[2].Value)
	assert.Equal(t, "", m.Attributes[3].Value)

	traits := m.Traits()
	require.Len(t, traits, 3)
	assert.Equal(t, "Legendary", traits[2].TraitType)
}

func TestDecodeJSONMetadata_Invalid(t *testing.T) {
	_, err := DecodeJSONMetadata([]byte(`{"name":`))
	assert.ErrorIs(t, err, ErrMetadataInvalid)
}

func TestDisplayImage(t *testing.T) {
	assert.Equal(t, "img", JSONMetadata{Image: "img"}.DisplayImage())
	assert.Equal(t, "anim", JSONMetadata{Image: "img", AnimationURL: "anim"}.DisplayImage())
	assert.Equal(t, "img", JSONMetadata{Image: "img", AnimationURL: "  "}.DisplayImage())
}

func TestCleanURI(t *testing.T) {
	assert.Equal(t, "https://arweave.net/x", CleanURI("https://arweave.net/x\x00\x00\x00"))
}
