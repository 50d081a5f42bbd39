package main

import "slices"

type PlayerStatus string

const (
	StatusUnready PlayerStatus = "unready"
	StatusReady   PlayerStatus = "ready"
	StatusInRound PlayerStatus = "in-round"
	StatusJudging PlayerStatus = "judging"
)

// Player holds the data we store server-side for one participant. The
// hand and trophies belong to the player alone and are only ever touched
// through lobby operations.
type Player struct {
	ID       string
	Username string
	Avatar   string
	Status   PlayerStatus
	Hand     []CaptionCard
	Trophies []PhotoCard
}

// PlayerSnapshot is the wire shape of a participant, sent as the
// "player" payload and embedded in lobby and round snapshots.
type PlayerSnapshot struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Avatar   string        `json:"avatar"`
	Status   PlayerStatus  `json:"status,omitempty"`
	Hand     []CaptionCard `json:"hand"`
	Trophies []PhotoCard   `json:"trophies"`
}

func newPlayer(id, username, avatar string) *Player {
	return &Player{
		ID:       id,
		Username: username,
		Avatar:   avatar,
		Status:   StatusUnready,
		Hand:     []CaptionCard{},
		Trophies: []PhotoCard{},
	}
}

// draw tops the hand up to size. An exhausted deck leaves the hand
// short; round start is gated on deck sufficiency, so that is the
// exception rather than the rule.
func (p *Player) draw(deck *Deck[CaptionCard], size int) {
	for len(p.Hand) < size {
		card, err := deck.Draw()
		if err != nil {
			return
		}
		p.Hand = append(p.Hand, card)
	}
}

// removeFromHand extracts the card with the given id, reporting whether
// it was held at all.
func (p *Player) removeFromHand(cardID int) (CaptionCard, bool) {
	for i, card := range p.Hand {
		if card.ID == cardID {
			p.Hand = slices.Delete(p.Hand, i, i+1)
			return card, true
		}
	}

	return CaptionCard{}, false
}

// snapshot deep-copies the card slices so serialization can happen
// outside the lobby's critical section.
func (p *Player) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.ID,
		Username: p.Username,
		Avatar:   p.Avatar,
		Status:   p.Status,
		Hand:     slices.Clone(p.Hand),
		Trophies: slices.Clone(p.Trophies),
	}
}
