package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayers(n int) map[string]*Player {
	players := make(map[string]*Player, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		players[id] = newPlayer(id, fmt.Sprintf("player-%d", i), "")
	}
	return players
}

func photoCards(n int) []PhotoCard {
	cards := make([]PhotoCard, 0, n)
	for i := 1; i <= n; i++ {
		cards = append(cards, PhotoCard{
			ID:   fmt.Sprintf("photo-%d", i),
			Name: fmt.Sprintf("Photo %d", i),
			URL:  fmt.Sprintf("/static/photos/photo-%d.jpg", i),
		})
	}
	return cards
}

func nonJudge(r *Round) *Player {
	for _, p := range r.players {
		if p.ID != r.judge.ID {
			return p
		}
	}
	return nil
}

func TestNewRoundSelectsJudgeAndFixesRequired(t *testing.T) {
	players := testPlayers(4)
	r := newRound(1, players)

	require.NotNil(t, r.judge)
	assert.Contains(t, players, r.judge.ID)
	assert.Equal(t, 3, r.required)
	assert.Equal(t, PhaseStart, r.phase)

	for _, p := range players {
		if p.ID == r.judge.ID {
			assert.Equal(t, StatusJudging, p.Status)
		} else {
			assert.Equal(t, StatusInRound, p.Status)
		}
	}
}

func TestBindPhotoPhaseAndJudgeGuards(t *testing.T) {
	r := newRound(1, testPlayers(3))
	photos := NewDeck(photoCards(3))

	err := r.bindPhoto(r.judge.ID, nil, photos)
	assert.ErrorIs(t, err, ErrInvalidState)

	r.phase = PhaseSelectPhoto

	err = r.bindPhoto(nonJudge(r).ID, nil, photos)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, 3, photos.Count())
}

func TestBindPhotoRemovesChosenCard(t *testing.T) {
	r := newRound(1, testPlayers(3))
	r.phase = PhaseSelectPhoto
	photos := NewDeck(photoCards(3))
	pick := photos.Cards()[0]

	require.NoError(t, r.bindPhoto(r.judge.ID, &pick, photos))

	require.NotNil(t, r.photo)
	assert.Equal(t, pick.ID, r.photo.ID)
	assert.Equal(t, 2, photos.Count())
	assert.Equal(t, PhaseSelectCaption, r.phase)

	for _, remaining := range photos.Cards() {
		assert.NotEqual(t, pick.ID, remaining.ID)
	}
}

func TestBindPhotoFallsBackToRandomPick(t *testing.T) {
	r := newRound(1, testPlayers(3))
	r.phase = PhaseSelectPhoto
	photos := NewDeck(photoCards(3))

	// An unrecognized card is not an error; the engine picks for the judge.
	bogus := &PhotoCard{ID: "not-in-the-deck", Name: "Bogus"}
	require.NoError(t, r.bindPhoto(r.judge.ID, bogus, photos))

	require.NotNil(t, r.photo)
	assert.NotEqual(t, bogus.ID, r.photo.ID)
	assert.Equal(t, 2, photos.Count())
}

func TestBindPhotoEmptyDeck(t *testing.T) {
	r := newRound(1, testPlayers(3))
	r.phase = PhaseSelectPhoto
	photos := NewDeck([]PhotoCard{})

	err := r.bindPhoto(r.judge.ID, nil, photos)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	assert.Equal(t, PhaseSelectPhoto, r.phase)
}

func TestAddSubmissionGuards(t *testing.T) {
	r := newRound(1, testPlayers(3))
	captions := NewDeck(captionCards(21))
	for _, p := range r.players {
		p.draw(captions, 7)
	}

	player := nonJudge(r)

	err := r.addSubmission(player, player.Hand[0].ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	r.phase = PhaseSelectCaption

	err = r.addSubmission(r.judge, r.judge.Hand[0].ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = r.addSubmission(player, 9999)
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.Empty(t, r.submissions)

	played := player.Hand[0]
	require.NoError(t, r.addSubmission(player, played.ID))
	require.Len(t, r.submissions, 1)
	assert.Equal(t, played.ID, r.submissions[0].card.ID)
	assert.Len(t, player.Hand, 6)

	// One submission per participant, even with a different card.
	err = r.addSubmission(player, player.Hand[0].ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Len(t, r.submissions, 1)
}

func TestJudgeNeverAmongSubmissions(t *testing.T) {
	r := newRound(1, testPlayers(4))
	captions := NewDeck(captionCards(28))
	for _, p := range r.players {
		p.draw(captions, 7)
	}
	r.phase = PhaseSelectCaption

	for _, p := range r.players {
		_ = r.addSubmission(p, p.Hand[0].ID)
	}

	require.Len(t, r.submissions, r.required)
	for _, s := range r.submissions {
		assert.NotEqual(t, r.judge.ID, s.player.ID)
	}
}

func TestResolveWinner(t *testing.T) {
	r := newRound(1, testPlayers(3))
	captions := NewDeck(captionCards(21))
	for _, p := range r.players {
		p.draw(captions, 7)
	}
	r.phase = PhaseSelectCaption

	player := nonJudge(r)
	played := player.Hand[0]
	require.NoError(t, r.addSubmission(player, played.ID))

	_, err := r.resolveWinner(player.ID, played.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = r.resolveWinner(r.judge.ID, 9999)
	assert.ErrorIs(t, err, ErrCardNotFound)

	win, err := r.resolveWinner(r.judge.ID, played.ID)
	require.NoError(t, err)
	assert.Equal(t, player.ID, win.player.ID)
	assert.Equal(t, played.ID, win.card.ID)
	assert.Equal(t, PhaseEnd, r.phase)

	snap := r.snapshot()
	require.NotNil(t, snap.Winner)
	assert.Equal(t, player.ID, snap.Winner.Player.ID)
}
