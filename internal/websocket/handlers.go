package websocket

import (
	"context"
	"encoding/json"
	"time"

	"minesweeper/internal/game"
	"minesweeper/internal/i18n"
	"minesweeper/pkg/models"

	log "github.com/sirupsen/logrus"
)

// GameStateResponse is a session snapshot with an optional status line
type GameStateResponse struct {
	game.Snapshot
	Message string `json:"message,omitempty"`
}

// Ensure Client implements game.Observer interface
var _ game.Observer = (*Client)(nil)

// StateChanged pushes the new session state to the client. It runs under the
// session lock.
func (c *Client) StateChanged(snap game.Snapshot) {
	response := GameStateResponse{Snapshot: snap}
	switch snap.Phase {
	case game.PhaseWon:
		response.Message = c.hub.i18n.Tf(c.lang, i18n.KeyGameWon, max(snap.Elapsed, 1))
	case game.PhaseLost:
		response.Message = c.hub.i18n.T(c.lang, i18n.KeyGameLost)
	}

	c.sendMessage(models.WebSocketMessage{
		Type: "game_state",
		Data: response,
	})
}

// Tick pushes the running game time
func (c *Client) Tick(elapsed int) {
	c.sendMessage(models.WebSocketMessage{
		Type: "tick",
		Data: models.TickResponse{Elapsed: elapsed},
	})
}

// decodeData converts the loosely typed message payload into v
func decodeData(data interface{}, v interface{}) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(dataBytes, v)
}

// startSession replaces the current session with a new one built from req
func (c *Client) startSession(req models.NewGameRequest) error {
	opts := []game.Option{
		game.WithObserver(c),
		game.WithScoreListener(c.onScore),
	}

	var (
		session *game.Session
		err     error
	)
	if req.Snapshot != "" {
		snapshot, loadErr := game.LoadSnapshot(req.Snapshot)
		if loadErr != nil {
			return loadErr
		}
		session, err = game.NewSessionFromSnapshot(c.player, snapshot, opts...)
	} else {
		session, err = game.NewSession(c.player, req.Difficulty, opts...)
	}
	if err != nil {
		return err
	}

	c.cancelGesture()
	if c.session != nil {
		c.session.Close()
	}
	c.session = session

	log.WithFields(log.Fields{
		"fid":        c.player.FID,
		"session_id": session.ID(),
		"difficulty": session.Difficulty(),
		"replay":     req.Snapshot != "",
	}).Info("Game started")

	c.StateChanged(session.Snapshot())
	return nil
}

// handleNewGame handles new game requests
func (c *Client) handleNewGame(data interface{}) {
	var req models.NewGameRequest
	if err := decodeData(data, &req); err != nil {
		c.sendError(i18n.KeyInvalidMessage)
		return
	}

	if req.Snapshot != "" || c.session == nil {
		if req.Difficulty == "" {
			req.Difficulty = models.DifficultyEasy
		}
		if err := c.startSession(req); err != nil {
			log.WithError(err).WithField("fid", c.player.FID).Warn("Failed to start game")
			c.sendError(i18n.KeyStartGame)
		}
		return
	}

	if req.Difficulty == "" {
		req.Difficulty = c.session.Difficulty()
	}

	c.cancelGesture()
	if err := c.session.Reset(req.Difficulty); err != nil {
		c.sendError(i18n.KeyInvalidDifficulty)
	}
}

// handleReveal handles reveal requests
func (c *Client) handleReveal(data interface{}) {
	var req models.CellRequest
	if err := decodeData(data, &req); err != nil {
		c.sendError(i18n.KeyInvalidMessage)
		return
	}
	c.reveal(req)
}

// handleFlag handles flag toggle requests
func (c *Client) handleFlag(data interface{}) {
	var req models.CellRequest
	if err := decodeData(data, &req); err != nil {
		c.sendError(i18n.KeyInvalidMessage)
		return
	}
	if c.session != nil {
		c.session.ToggleFlag(req.Row, req.Col)
	}
}

// handlePress starts a gesture on a cell. Holding it flags the cell.
func (c *Client) handlePress(data interface{}) {
	var req models.CellRequest
	if err := decodeData(data, &req); err != nil {
		c.sendError(i18n.KeyInvalidMessage)
		return
	}
	if c.session == nil {
		return
	}

	c.cancelGesture()
	session := c.session
	c.pressed = req
	c.gesture = game.NewGesture(time.Duration(c.hub.cfg.LongPressMillis)*time.Millisecond, func() {
		session.ToggleFlag(req.Row, req.Col)
	})
	c.gesture.Press()
}

// handleRelease ends a gesture; a release before the long press is a tap
func (c *Client) handleRelease() {
	if c.gesture == nil {
		return
	}
	if c.gesture.Release() == game.TapAction {
		c.reveal(c.pressed)
	}
	c.gesture = nil
}

// handleMove cancels a pending gesture
func (c *Client) handleMove() {
	c.cancelGesture()
}

func (c *Client) cancelGesture() {
	if c.gesture != nil {
		c.gesture.Move()
		c.gesture = nil
	}
}

// handleGetLeaderboard handles leaderboard requests
func (c *Client) handleGetLeaderboard(data interface{}) {
	var req models.LeaderboardRequest
	if err := decodeData(data, &req); err != nil {
		c.sendError(i18n.KeyInvalidMessage)
		return
	}

	difficulty, err := models.ParseDifficulty(string(req.Difficulty))
	if err != nil {
		c.sendError(i18n.KeyInvalidDifficulty)
		return
	}

	entries, err := c.hub.leaderboard.Top(context.Background(), difficulty)
	if err != nil {
		log.WithError(err).Errorf("Failed to get %s leaderboard", difficulty)
		c.sendError(i18n.KeyFetchScores)
		return
	}

	c.sendMessage(models.WebSocketMessage{
		Type: "leaderboard",
		Data: models.LeaderboardResponse{Difficulty: difficulty, Rankings: entries},
	})
}

func (c *Client) reveal(req models.CellRequest) {
	if c.session == nil {
		return
	}

	wasOver := c.session.Phase().Terminal()
	if err := c.session.Reveal(req.Row, req.Col); err != nil {
		log.WithError(err).WithField("session_id", c.session.ID()).Error("Failed to start game")
		c.sendError(i18n.KeyStartGame)
		return
	}

	if !wasOver && c.session.Phase().Terminal() {
		c.saveSnapshot()
	}
}

// saveSnapshot records a finished board when a snapshot directory is set
func (c *Client) saveSnapshot() {
	if c.hub.cfg.SnapshotDir == "" {
		return
	}

	path, err := c.session.SaveSnapshot(c.hub.cfg.SnapshotDir, time.Now())
	if err != nil {
		log.WithError(err).WithField("session_id", c.session.ID()).Warn("Failed to save board snapshot")
		return
	}
	log.WithField("path", path).Debug("Saved board snapshot")
}

// onScore is called under the session lock when a game is won
func (c *Client) onScore(event game.ScoreEvent) {
	go c.submitScore(event)
}

// submitScore stores a won game and reports the outcome to the client
func (c *Client) submitScore(event game.ScoreEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.hub.cfg.SubmitTimeout)*time.Second)
	defer cancel()

	result, err := c.hub.leaderboard.Submit(ctx, event.Player, event.Difficulty, event.Time)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session_id": event.SessionID,
			"fid":        event.Player.FID,
		}).Error("Failed to submit score")
		c.sendMessage(models.WebSocketMessage{
			Type: "score_error",
			Data: models.ErrorResponse{Message: c.hub.i18n.T(c.lang, i18n.KeySaveScore), Code: i18n.KeySaveScore},
		})
		return
	}

	message := c.hub.i18n.T(c.lang, i18n.KeyScoreSaved)
	if result.IsNewBest {
		message = c.hub.i18n.T(c.lang, i18n.KeyNewBest)
	}

	c.sendMessage(models.WebSocketMessage{
		Type: "score_saved",
		Data: models.ScoreNotice{
			IsNewBest: result.IsNewBest,
			Time:      event.Time,
			Message:   message,
		},
	})

	if result.IsNewBest {
		c.hub.broadcastLeaderboard(ctx, event.Difficulty)
	}
}
