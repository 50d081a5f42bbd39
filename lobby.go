package main

import (
	"sort"
	"sync"
	"time"
)

type LobbyStatus string

const (
	LobbyWaiting  LobbyStatus = "waiting"
	LobbyStarted  LobbyStatus = "started"
	LobbyFinished LobbyStatus = "finished"
)

// minPlayers is the smallest lobby that can start a game: a judge and
// two submitters.
const minPlayers = 3

// Emitter is the outbound half of the transport, implemented by the
// websocket hub. Calls happen while the lobby mutex is held, so
// implementations must not call back into the lobby.
type Emitter interface {
	Broadcast(event string, payload any)
	Send(playerID string, event string, payload any)
	CloseAll()
}

// Lobby coordinates the single shared session: the player set, both
// decks, and the current round. Every mutating operation serializes on
// mu, and broadcasts are emitted only after the mutation is fully
// applied.
type Lobby struct {
	mu sync.Mutex

	cfg     *Config
	emitter Emitter

	id         string
	status     LobbyStatus
	players    map[string]*Player
	captions   *Deck[CaptionCard]
	photos     *Deck[PhotoCard]
	round      *Round
	roundTimer *time.Timer
}

// LobbySnapshot is the wire shape of the lobby, broadcast to the room
// after every lobby mutation.
type LobbySnapshot struct {
	ID       string           `json:"id"`
	Status   LobbyStatus      `json:"status"`
	Round    int              `json:"round"`
	Captions []CaptionCard    `json:"captions"`
	Photos   []PhotoCard      `json:"photos"`
	Players  []PlayerSnapshot `json:"players"`
}

// NewLobby builds a fresh session over shuffled decks dealt from the
// catalog. One lobby exists per process at a time; its status only ever
// moves forward (waiting, started, finished).
func NewLobby(cfg *Config, catalog *Catalog, emitter Emitter) *Lobby {
	return &Lobby{
		cfg:      cfg,
		emitter:  emitter,
		id:       "1",
		status:   LobbyWaiting,
		players:  make(map[string]*Player),
		captions: NewDeck(catalog.Captions),
		photos:   NewDeck(catalog.Photos),
	}
}

// AddPlayer registers a participant under its connection id. Joins are
// only accepted while the lobby is waiting; a rejoin under the same id
// replaces the old profile.
func (l *Lobby) AddPlayer(id, username, avatar string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyWaiting {
		return ErrLobbyStarted
	}

	l.players[id] = newPlayer(id, username, avatar)
	logf(l.cfg, "GAMES: Player %q joined lobby %s", username, l.id)

	l.broadcastLobbyLocked()

	return nil
}

// RemovePlayer unregisters a participant. It is the shared path for
// both an explicit leave and a dropped connection, and calling it twice
// for the same id is a no-op. Losing the judge mid-round discards the
// round and starts a fresh one with the remaining players; losing too
// many players ends the game.
func (l *Lobby) RemovePlayer(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players[id]
	if !ok {
		return
	}

	delete(l.players, id)
	logf(l.cfg, "GAMES: Player %q left lobby %s", p.Username, l.id)

	l.broadcastLobbyLocked()

	if l.status != LobbyStarted {
		return
	}

	l.broadcastRoundLocked()

	if len(l.players) < 2 {
		l.endGameLocked()
		return
	}

	if l.round != nil && l.round.judge.ID == id {
		l.startRoundLocked()
	}
}

// SetReady marks a participant ready. Once at least three players are
// present and every one of them is ready, the game starts and the first
// round is dealt in the same action.
func (l *Lobby) SetReady(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players[id]
	if !ok {
		return ErrUnknownPlayer
	}

	p.Status = StatusReady
	l.broadcastLobbyLocked()

	if l.canStartGameLocked() {
		l.startGameLocked()
	}

	return nil
}

// PhotoPool answers a view-photo-pool request with the cards left in
// the photo deck.
func (l *Lobby) PhotoPool() []PhotoCard {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.photos.Cards()
}

// SelectPhoto binds the judge's photo choice (nil for a server-side
// random pick) to the current round.
func (l *Lobby) SelectPhoto(callerID string, card *PhotoCard) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyStarted || l.round == nil {
		return ErrInvalidState
	}

	if err := l.round.bindPhoto(callerID, card, l.photos); err != nil {
		return err
	}

	l.broadcastRoundLocked()

	return nil
}

// SubmitCaption plays one caption card from the caller's hand into the
// current round. The caller's hand update goes out before the shared
// round snapshot, so no client ever sees a submission referencing a
// hand it has not received.
func (l *Lobby) SubmitCaption(callerID string, cardID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyStarted || l.round == nil {
		return ErrInvalidState
	}

	p, ok := l.players[callerID]
	if !ok {
		return ErrUnknownPlayer
	}

	if err := l.round.addSubmission(p, cardID); err != nil {
		return err
	}

	l.sendPlayerLocked(p)
	l.broadcastRoundLocked()

	return nil
}

// SelectWinner records the judge's winning pick, awards the round's
// photo as a trophy, and either schedules the next round or ends the
// game when the decks can no longer support one.
func (l *Lobby) SelectWinner(callerID string, cardID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyStarted || l.round == nil {
		return ErrInvalidState
	}

	win, err := l.round.resolveWinner(callerID, cardID)
	if err != nil {
		return err
	}

	win.player.Trophies = append(win.player.Trophies, *l.round.photo)
	logf(l.cfg, "GAMES: %q won round %d of lobby %s", win.player.Username, l.round.id, l.id)

	l.sendPlayerLocked(win.player)
	l.broadcastRoundLocked()

	if !l.canStartRoundLocked() {
		l.endGameLocked()
		return nil
	}

	ended := l.round
	l.roundTimer = time.AfterFunc(l.cfg.roundDelay, func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		// The game may have ended, or the round may have been replaced
		// by a judge-loss restart, while the timer was pending.
		if l.status != LobbyStarted || l.round != ended {
			return
		}

		l.startRoundLocked()
	})

	return nil
}

// EndGame forcibly terminates the session and every connection in the
// room.
func (l *Lobby) EndGame() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.endGameLocked()
}

// Snapshot returns the current lobby state, for greeting a fresh
// connection.
func (l *Lobby) Snapshot() LobbySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshotLocked()
}

// Finished reports whether the session has reached its terminal status.
func (l *Lobby) Finished() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.status == LobbyFinished
}

func (l *Lobby) canStartGameLocked() bool {
	if l.status != LobbyWaiting || len(l.players) < minPlayers {
		return false
	}

	for _, p := range l.players {
		if p.Status != StatusReady {
			return false
		}
	}

	return true
}

func (l *Lobby) startGameLocked() {
	l.status = LobbyStarted
	logf(l.cfg, "GAMES: Lobby %s started with %d players", l.id, len(l.players))

	l.broadcastLobbyLocked()
	l.emitter.Broadcast("game_started", nil)

	l.startRoundLocked()
}

func (l *Lobby) canStartRoundLocked() bool {
	return l.captions.Count() >= len(l.players) && l.photos.Count() >= 1
}

// startRoundLocked replaces the current round with a fresh one, deals
// every hand up to the configured size, and reshuffles the photo deck.
// Hand snapshots go out per player before the shared round snapshot.
func (l *Lobby) startRoundLocked() {
	if !l.canStartRoundLocked() {
		logf(l.cfg, "GAMES: Lobby %s cannot continue: %v", l.id, ErrInsufficientCards)
		l.endGameLocked()
		return
	}

	if l.roundTimer != nil {
		l.roundTimer.Stop()
		l.roundTimer = nil
	}

	id := 1
	if l.round != nil {
		id = l.round.id + 1
	}

	l.round = newRound(id, l.players)

	for _, p := range l.sortedPlayersLocked() {
		p.draw(l.captions, l.cfg.handSize)
		l.sendPlayerLocked(p)
	}

	l.photos.Shuffle()
	l.round.phase = PhaseSelectPhoto

	l.broadcastRoundLocked()
	l.broadcastLobbyLocked()
}

func (l *Lobby) endGameLocked() {
	if l.status == LobbyFinished {
		return
	}

	l.status = LobbyFinished

	if l.roundTimer != nil {
		l.roundTimer.Stop()
		l.roundTimer = nil
	}

	logf(l.cfg, "GAMES: Lobby %s finished", l.id)

	l.emitter.CloseAll()
}

func (l *Lobby) sortedPlayersLocked() []*Player {
	players := make([]*Player, 0, len(l.players))
	for _, p := range l.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	return players
}

func (l *Lobby) snapshotLocked() LobbySnapshot {
	players := make([]PlayerSnapshot, 0, len(l.players))
	for _, p := range l.sortedPlayersLocked() {
		players = append(players, p.snapshot())
	}

	round := 0
	if l.round != nil {
		round = l.round.id
	}

	return LobbySnapshot{
		ID:       l.id,
		Status:   l.status,
		Round:    round,
		Captions: l.captions.Cards(),
		Photos:   l.photos.Cards(),
		Players:  players,
	}
}

func (l *Lobby) broadcastLobbyLocked() {
	l.emitter.Broadcast("lobby_updated", l.snapshotLocked())
}

func (l *Lobby) broadcastRoundLocked() {
	if l.round == nil {
		return
	}

	l.emitter.Broadcast("round_updated", l.round.snapshot())
}

func (l *Lobby) sendPlayerLocked(p *Player) {
	l.emitter.Send(p.ID, "player_updated", p.snapshot())
}
