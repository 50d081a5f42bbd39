package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

// CaptionCard is a caption a player can pair with the round's photo.
// Identity is by ID, unique across the caption deck and all hands.
type CaptionCard struct {
	ID      int    `json:"id"`
	Caption string `json:"caption"`
}

// PhotoCard is a photo the judge picks each round, awarded to the winner
// as a trophy. Identity is by ID, unique across the photo deck and all
// trophies.
type PhotoCard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Catalog is the static card pool both decks are built from.
type Catalog struct {
	Captions []CaptionCard `json:"captions"`
	Photos   []PhotoCard   `json:"photos"`
}

//go:embed static/memes.json
var memesJSON []byte

// loadCatalog parses the embedded card catalog and applies basic shape
// checks. A malformed catalog is a startup error, never a runtime one.
func loadCatalog() (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(memesJSON, &catalog); err != nil {
		return nil, fmt.Errorf("parsing card catalog: %w", err)
	}

	if len(catalog.Captions) == 0 {
		return nil, fmt.Errorf("card catalog contains no caption cards")
	}
	if len(catalog.Photos) == 0 {
		return nil, fmt.Errorf("card catalog contains no photo cards")
	}

	captionIDs := make(map[int]bool, len(catalog.Captions))
	for _, card := range catalog.Captions {
		if strings.TrimSpace(card.Caption) == "" {
			return nil, fmt.Errorf("caption card %d has no text", card.ID)
		}
		if captionIDs[card.ID] {
			return nil, fmt.Errorf("duplicate caption card id: %d", card.ID)
		}
		captionIDs[card.ID] = true
	}

	photoIDs := make(map[string]bool, len(catalog.Photos))
	for _, card := range catalog.Photos {
		if card.ID == "" || strings.TrimSpace(card.Name) == "" {
			return nil, fmt.Errorf("photo card %q is missing an id or name", card.ID)
		}
		if photoIDs[card.ID] {
			return nil, fmt.Errorf("duplicate photo card id: %s", card.ID)
		}
		photoIDs[card.ID] = true
	}

	return &catalog, nil
}
