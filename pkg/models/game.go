package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDifficulty is returned when a difficulty name is not one of the presets
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Difficulty represents one of the fixed board presets
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyConfig holds the board dimensions and mine count of a preset
type DifficultyConfig struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

// Difficulties lists every preset in display order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

var difficultyConfigs = map[Difficulty]DifficultyConfig{
	DifficultyEasy:   {Rows: 8, Cols: 8, Mines: 10},
	DifficultyMedium: {Rows: 12, Cols: 12, Mines: 30},
	DifficultyHard:   {Rows: 16, Cols: 16, Mines: 60},
}

// ParseDifficulty validates a difficulty name
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is a known preset
func (d Difficulty) Valid() bool {
	_, ok := difficultyConfigs[d]
	return ok
}

// Config returns the board preset for d
func (d Difficulty) Config() DifficultyConfig {
	return difficultyConfigs[d]
}

// Player is the identity supplied by the hosting platform
type Player struct {
	FID      int64  `json:"fid"`
	Username string `json:"username"`
}

// LeaderboardEntry represents an entry in the leaderboard
type LeaderboardEntry struct {
	UserFID   int64     `json:"user_fid"`
	Username  string    `json:"username"`
	Time      int       `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitResult is the outcome of a score submission
type SubmitResult struct {
	IsNewBest bool `json:"isNewBest"`
}

// SubmitScoreRequest is the body of POST /api/scores
type SubmitScoreRequest struct {
	UserFID    *int64 `json:"userFid" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
	Time       *int   `json:"time" binding:"required"`
}

// SubmitScoreResponse is returned after a score has been stored
type SubmitScoreResponse struct {
	Success   bool   `json:"success"`
	IsNewBest bool   `json:"isNewBest"`
	Message   string `json:"message"`
}

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewGameRequest starts a fresh board. Snapshot, when set, is a YAML board
// snapshot whose layout is replayed.
type NewGameRequest struct {
	Difficulty Difficulty `json:"difficulty"`
	Snapshot   string     `json:"snapshot,omitempty"`
}

// CellRequest addresses a single cell
type CellRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// LeaderboardRequest represents a leaderboard request
type LeaderboardRequest struct {
	Difficulty Difficulty `json:"difficulty"`
}

// LeaderboardResponse represents the leaderboard response
type LeaderboardResponse struct {
	Difficulty Difficulty         `json:"difficulty"`
	Rankings   []LeaderboardEntry `json:"rankings"`
}

// TickResponse carries the elapsed seconds of the running game
type TickResponse struct {
	Elapsed int `json:"elapsed"`
}

// ScoreNotice reports the result of an asynchronous score submission
type ScoreNotice struct {
	IsNewBest bool   `json:"isNewBest"`
	Time      int    `json:"time"`
	Message   string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
