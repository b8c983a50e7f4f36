package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"minesweeper/internal/config"
	"minesweeper/internal/game"
	"minesweeper/internal/host"
	"minesweeper/internal/i18n"
	"minesweeper/internal/leaderboard"
	"minesweeper/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub maintains the set of active clients, one game session each
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	leaderboard *leaderboard.Service
	bridge      host.Bridge
	i18n        *i18n.I18n
	cfg         config.GameConfig

	// Connections admitted, including those not registered yet
	active atomic.Int64

	// Mutex for thread safety
	mutex sync.RWMutex
}

// Client represents a WebSocket client
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Guards send against use after close
	mu     sync.Mutex
	closed bool

	player models.Player
	lang   string

	// Owned by the read loop
	session *game.Session
	gesture *game.Gesture
	pressed models.CellRequest

	// Hub reference
	hub *Hub
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The mini app is embedded by the host on its own origin
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub(svc *leaderboard.Service, bridge host.Bridge, translator *i18n.I18n, cfg config.GameConfig) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		leaderboard: svc,
		bridge:      bridge,
		i18n:        translator,
		cfg:         cfg,
	}
}

// Run starts the hub and returns once ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.WithField("fid", client.player.FID).Info("Client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.active.Add(-1)
				log.WithField("fid", client.player.FID).Info("Client disconnected")
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				client.trySend(message)
			}
			h.mutex.RUnlock()

		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mutex.Unlock()
			return
		}
	}
}

// ActiveGames returns the number of connected players
func (h *Hub) ActiveGames() int {
	return int(h.active.Load())
}

// HandleWebSocket handles WebSocket connections
func (h *Hub) HandleWebSocket(c *gin.Context) {
	lang := i18n.GetLanguage(c)

	player, err := h.bridge.Identify(c)
	if err != nil {
		log.WithError(err).Debug("Rejected websocket without identity")
		c.JSON(http.StatusUnauthorized, gin.H{"error": h.i18n.T(lang, i18n.KeyNoIdentity)})
		return
	}

	if n := h.active.Add(1); h.cfg.MaxConcurrentGames > 0 && n > int64(h.cfg.MaxConcurrentGames) {
		h.active.Add(-1)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": h.i18n.T(lang, i18n.KeyTooManyGames)})
		return
	}

	difficulty, err := models.ParseDifficulty(h.cfg.DefaultDifficulty)
	if err != nil {
		difficulty = models.DifficultyEasy
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.active.Add(-1)
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}
	h.bridge.Ready(c)

	// Create new client
	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		player: player,
		lang:   lang,
		hub:    h,
	}

	if err := client.startSession(models.NewGameRequest{Difficulty: difficulty}); err != nil {
		log.WithError(err).Error("Failed to start initial game")
	}

	// Register client
	select {
	case h.register <- client:
	case <-h.done:
		if client.session != nil {
			client.session.Close()
		}
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// broadcastLeaderboard pushes the current leaderboard of difficulty to all clients
func (h *Hub) broadcastLeaderboard(ctx context.Context, difficulty models.Difficulty) {
	entries, err := h.leaderboard.Top(ctx, difficulty)
	if err != nil {
		log.WithError(err).Warnf("Failed to get %s leaderboard for broadcast", difficulty)
		return
	}

	data, err := json.Marshal(models.WebSocketMessage{
		Type: "leaderboard_update",
		Data: models.LeaderboardResponse{Difficulty: difficulty, Rankings: entries},
	})
	if err != nil {
		log.Printf("Failed to marshal leaderboard update: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-ctx.Done():
	case <-h.done:
	}
}

// sendMessage sends a message to the client
func (c *Client) sendMessage(message models.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	c.trySend(data)
}

// trySend queues data unless the client is gone or too slow
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.WithField("fid", c.player.FID).Warn("Dropping message for slow client")
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		if c.gesture != nil {
			c.gesture.Move()
		}
		if c.session != nil {
			c.session.Close()
		}
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	// Set read deadline and pong handler
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Parse message
		var message models.WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			log.Printf("Error parsing message: %v", err)
			c.sendError(i18n.KeyInvalidMessage)
			continue
		}

		// Handle message
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage handles incoming WebSocket messages
func (c *Client) handleMessage(message models.WebSocketMessage) {
	switch message.Type {
	case "new_game":
		c.handleNewGame(message.Data)
	case "reveal":
		c.handleReveal(message.Data)
	case "flag":
		c.handleFlag(message.Data)
	case "press":
		c.handlePress(message.Data)
	case "release":
		c.handleRelease()
	case "move":
		c.handleMove()
	case "get_leaderboard":
		c.handleGetLeaderboard(message.Data)
	default:
		c.sendError(i18n.KeyUnknownMessage)
	}
}

// sendError sends a localised error message to the client
func (c *Client) sendError(key string) {
	response := models.ErrorResponse{
		Message: c.hub.i18n.T(c.lang, key),
		Code:    key,
	}

	message := models.WebSocketMessage{
		Type: "error",
		Data: response,
	}

	c.sendMessage(message)
}
