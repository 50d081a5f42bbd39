// Memebox: What Do You Meme, startup edition
//
// Connected players join a shared lobby, ready up, and cycle through
// rounds with a rotating judge: the judge picks (or is dealt) a photo
// card, everyone else plays one caption card from a seven-card hand,
// and the judge crowns a winner, who keeps the photo as a trophy.
//
// Features:
// - Single shared room over a websocket at /meme/ws
// - Players identified by cookie (playerID), stable across reconnects
// - Game starts once at least three players are all ready
// - Judge chosen uniformly at random each round
// - Judge disconnecting mid-round discards the round and deals a new one
// - Game ends when the decks can no longer support another round
// - Ten-second pause between rounds, superseded if the game ends first
// - In-browser QR button to share the session, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	maxUsernameRunes = 32
	maxAvatarBytes   = 16 * 1024
)

// ClientMessage is the single inbound shape; Type selects which of the
// optional fields are meaningful, and anything else is rejected before
// it reaches the lobby.
type ClientMessage struct {
	Type     string       `json:"type"`               // "join", "leave", "ready", "view_photos", "select_photo", "select_random_photo", "submit_caption", "select_caption"
	Username string       `json:"username,omitempty"` // join
	Avatar   string       `json:"avatar,omitempty"`   // join
	Photo    *PhotoCard   `json:"photo,omitempty"`    // select_photo
	Caption  *CaptionCard `json:"caption,omitempty"`  // submit_caption / select_caption
}

// EventMessage wraps every server-to-client payload under a type tag.
type EventMessage struct {
	Type   string          `json:"type"`
	Lobby  *LobbySnapshot  `json:"lobby,omitempty"`  // lobby_updated
	Round  *RoundSnapshot  `json:"round,omitempty"`  // round_updated
	Player *PlayerSnapshot `json:"player,omitempty"` // player_updated
	Photos []PhotoCard     `json:"photos,omitempty"` // photo_pool
}

// AckMessage confirms a client action that completed without error.
type AckMessage struct {
	Type   string `json:"type"` // "ack"
	Action string `json:"action"`
}

// ErrorMessage reports a rejected client action back to its sender.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Action  string `json:"action"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type inbound struct {
	client *Client
	msg    ClientMessage
}

// Hub is the event gateway: it owns the client connections for the one
// shared room, funnels inbound actions into the lobby one at a time,
// and implements the lobby's Emitter for the outbound direction.
type Hub struct {
	cfg     *Config
	catalog *Catalog

	mu      sync.Mutex
	clients map[*Client]bool

	// lobby is only read and replaced by the run loop.
	lobby *Lobby

	register chan *Client
	unreg    chan *Client
	actions  chan inbound
}

func newHub(cfg *Config, catalog *Catalog) *Hub {
	h := &Hub{
		cfg:      cfg,
		catalog:  catalog,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		actions:  make(chan inbound),
	}
	h.lobby = NewLobby(cfg, catalog, h)

	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			// A connection arriving after the previous game finished
			// gets a fresh lobby; a finished lobby never restarts.
			if h.lobby.Finished() {
				h.lobby = NewLobby(h.cfg, h.catalog, h)
				logf(h.cfg, "GAMES: Opened a fresh lobby")
			}

			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

			snap := h.lobby.Snapshot()
			h.deliver(c, EventMessage{Type: "lobby_updated", Lobby: &snap})

		case c := <-h.unreg:
			h.mu.Lock()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

			// Another tab may share the cookie; the player only leaves
			// once its last connection is gone.
			last := true
			for other := range h.clients {
				if other.playerID == c.playerID {
					last = false
					break
				}
			}
			h.mu.Unlock()

			if last {
				h.lobby.RemovePlayer(c.playerID)
			}

		case in := <-h.actions:
			h.handleAction(in.client, in.msg)
		}
	}
}

// handleAction validates one inbound message and applies it to the
// lobby, surfacing the synchronous result to the sender as an ack or an
// error.
func (h *Hub) handleAction(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "join":
		username := strings.TrimSpace(msg.Username)
		switch {
		case username == "":
			h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: "a username is required"})
		case utf8.RuneCountInString(username) > maxUsernameRunes:
			h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: "that username is too long"})
		case len(msg.Avatar) > maxAvatarBytes:
			h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: "that avatar is too large"})
		default:
			h.ack(c, msg.Type, h.lobby.AddPlayer(c.playerID, username, msg.Avatar))
		}

	case "leave":
		h.lobby.RemovePlayer(c.playerID)

	case "ready":
		if err := h.lobby.SetReady(c.playerID); err != nil {
			h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: err.Error()})
		}

	case "view_photos":
		h.deliver(c, EventMessage{Type: "photo_pool", Photos: h.lobby.PhotoPool()})

	case "select_photo":
		h.ack(c, msg.Type, h.lobby.SelectPhoto(c.playerID, msg.Photo))

	case "select_random_photo":
		h.ack(c, msg.Type, h.lobby.SelectPhoto(c.playerID, nil))

	case "submit_caption":
		if msg.Caption == nil {
			h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: "a caption card is required"})
			return
		}
		h.ack(c, msg.Type, h.lobby.SubmitCaption(c.playerID, msg.Caption.ID))

	case "select_caption":
		if msg.Caption == nil {
			h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: "a caption card is required"})
			return
		}
		h.ack(c, msg.Type, h.lobby.SelectWinner(c.playerID, msg.Caption.ID))

	default:
		h.deliver(c, ErrorMessage{Type: "error", Action: msg.Type, Message: "unknown message type"})
	}
}

func (h *Hub) ack(c *Client, action string, err error) {
	if err != nil {
		h.deliver(c, ErrorMessage{Type: "error", Action: action, Message: err.Error()})
		return
	}

	h.deliver(c, AckMessage{Type: "ack", Action: action})
}

// deliver sends one message to one client, dropping the client if its
// outbox is full.
func (h *Hub) deliver(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast implements Emitter for the whole room.
func (h *Hub) Broadcast(event string, payload any) {
	msg := tagged(event, payload)

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Send implements Emitter for one participant; every connection sharing
// the participant's cookie receives the message.
func (h *Hub) Send(playerID string, event string, payload any) {
	msg := tagged(event, payload)

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.playerID != playerID {
			continue
		}

		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// CloseAll implements Emitter: it disconnects every client in the room
// when the game ends.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

func tagged(event string, payload any) any {
	switch p := payload.(type) {
	case LobbySnapshot:
		return EventMessage{Type: event, Lobby: &p}
	case RoundSnapshot:
		return EventMessage{Type: event, Round: &p}
	case PlayerSnapshot:
		return EventMessage{Type: event, Player: &p}
	default:
		return EventMessage{Type: event}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "memebox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		h.register <- client

		go client.writePump()
		client.readPump(h)
	}
}

// readPump forwards every inbound message to the hub. A read error of
// any kind is the disconnect signal and funnels into the same removal
// path as an explicit leave.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.actions <- inbound{client: c, msg: msg}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler generates a PNG QR code for the session URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /meme/qr; strip the trailing "/qr" to get the session URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerMemeGame sets up routes so that:
//   - $path/ws → the shared session websocket
//   - $path/qr → PNG QR code for the session URL
func registerMemeGame(cfg *Config, path string, catalog *Catalog, mux *httprouter.Router) {
	h := newHub(cfg, catalog)
	go h.run()

	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, h))

	mux.GET(cfg.prefix+path+"/qr", qrHandler)
}
