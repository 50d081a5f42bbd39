package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := loadCatalog()
	require.NoError(t, err)

	require.NotEmpty(t, catalog.Captions)
	require.NotEmpty(t, catalog.Photos)

	captionIDs := make(map[int]bool)
	for _, card := range catalog.Captions {
		assert.NotEmpty(t, card.Caption)
		assert.False(t, captionIDs[card.ID], "duplicate caption id %d", card.ID)
		captionIDs[card.ID] = true
	}

	photoIDs := make(map[string]bool)
	for _, card := range catalog.Photos {
		assert.NotEmpty(t, card.Name)
		assert.False(t, photoIDs[card.ID], "duplicate photo id %s", card.ID)
		photoIDs[card.ID] = true
	}
}
