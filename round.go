package main

import (
	"sort"

	"github.com/samber/lo"
)

type RoundPhase string

const (
	PhaseStart         RoundPhase = "start"
	PhaseSelectPhoto   RoundPhase = "select-photo"
	PhaseSelectCaption RoundPhase = "select-caption"
	PhaseEnd           RoundPhase = "end"
)

// submission pairs a participant with the caption card they played.
type submission struct {
	player *Player
	card   CaptionCard
}

// SubmissionSnapshot is the wire shape of one (player, card) pairing.
type SubmissionSnapshot struct {
	Player PlayerSnapshot `json:"player"`
	Card   CaptionCard    `json:"card"`
}

// Round is one judge/photo/submission/winner cycle. The participant set
// and required submission count are fixed at construction; a mid-round
// leave never changes them. The lobby replaces the whole round when it
// has to restart.
type Round struct {
	id          int
	phase       RoundPhase
	photo       *PhotoCard
	judge       *Player
	players     map[string]*Player
	submissions []submission
	required    int
	winner      *submission
}

// RoundSnapshot is the wire shape of a round, broadcast to the room
// after every round mutation.
type RoundSnapshot struct {
	ID                  int                  `json:"id"`
	Photo               *PhotoCard           `json:"photo,omitempty"`
	Submissions         []SubmissionSnapshot `json:"submissions"`
	SubmissionsRequired int                  `json:"submissionsRequired"`
	Phase               RoundPhase           `json:"phase"`
	Players             []PlayerSnapshot     `json:"players"`
	Judge               PlayerSnapshot       `json:"judge"`
	Winner              *SubmissionSnapshot  `json:"winner,omitempty"`
}

// newRound snapshots the participant set, picks the judge uniformly at
// random, and marks everyone's in-round status. The caller guarantees at
// least two participants.
func newRound(id int, players map[string]*Player) *Round {
	r := &Round{
		id:       id,
		phase:    PhaseStart,
		players:  make(map[string]*Player, len(players)),
		required: len(players) - 1,
	}

	judge := lo.Sample(lo.Values(players))

	for _, p := range players {
		if p.ID == judge.ID {
			p.Status = StatusJudging
		} else {
			p.Status = StatusInRound
		}
		r.players[p.ID] = p
	}

	r.judge = judge

	return r
}

// bindPhoto attaches the judge's chosen photo to the round and removes
// it from the deck. An absent or unrecognized card falls back to a
// uniform random pick from the remaining deck; that is the expected
// path for "select_random_photo", not an error.
func (r *Round) bindPhoto(callerID string, card *PhotoCard, photos *Deck[PhotoCard]) error {
	if r.phase != PhaseSelectPhoto {
		return ErrInvalidState
	}
	if callerID != r.judge.ID {
		return ErrNotAuthorized
	}

	var chosen PhotoCard

	if card != nil {
		if removed := photos.Remove(func(p PhotoCard) bool { return p.ID == card.ID }); len(removed) > 0 {
			chosen = removed[0]
		} else {
			card = nil
		}
	}

	if card == nil {
		random, ok := photos.Sample()
		if !ok {
			return ErrEmptyDeck
		}
		chosen = random
		photos.Remove(func(p PhotoCard) bool { return p.ID == chosen.ID })
	}

	r.photo = &chosen
	r.phase = PhaseSelectCaption

	return nil
}

// addSubmission plays one caption card from a non-judge participant's
// hand. The card physically moves from the hand into the submission
// list, and each participant may appear at most once.
func (r *Round) addSubmission(p *Player, cardID int) error {
	if r.phase != PhaseSelectCaption {
		return ErrInvalidState
	}
	if p.ID == r.judge.ID {
		return ErrNotAuthorized
	}

	for _, s := range r.submissions {
		if s.player.ID == p.ID {
			return ErrInvalidState
		}
	}

	card, ok := p.removeFromHand(cardID)
	if !ok {
		return ErrCardNotFound
	}

	r.submissions = append(r.submissions, submission{player: p, card: card})

	return nil
}

// resolveWinner records the judge's pick among the submitted cards and
// ends the round.
func (r *Round) resolveWinner(callerID string, cardID int) (*submission, error) {
	if r.phase != PhaseSelectCaption {
		return nil, ErrInvalidState
	}
	if callerID != r.judge.ID {
		return nil, ErrNotAuthorized
	}

	for i := range r.submissions {
		if r.submissions[i].card.ID == cardID {
			r.winner = &r.submissions[i]
			r.phase = PhaseEnd

			return r.winner, nil
		}
	}

	return nil, ErrCardNotFound
}

func (r *Round) snapshot() RoundSnapshot {
	subs := make([]SubmissionSnapshot, 0, len(r.submissions))
	for _, s := range r.submissions {
		subs = append(subs, SubmissionSnapshot{Player: s.player.snapshot(), Card: s.card})
	}

	players := make([]PlayerSnapshot, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.snapshot())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	snap := RoundSnapshot{
		ID:                  r.id,
		Photo:               r.photo,
		Submissions:         subs,
		SubmissionsRequired: r.required,
		Phase:               r.phase,
		Players:             players,
		Judge:               r.judge.snapshot(),
	}

	if r.winner != nil {
		snap.Winner = &SubmissionSnapshot{Player: r.winner.player.snapshot(), Card: r.winner.card}
	}

	return snap
}
