package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"minesweeper/internal/i18n"
	"minesweeper/internal/leaderboard"
	"minesweeper/pkg/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ScoreHandler handles score-related requests
type ScoreHandler struct {
	leaderboard *leaderboard.Service
	i18n        *i18n.I18n
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(svc *leaderboard.Service, translator *i18n.I18n) *ScoreHandler {
	return &ScoreHandler{
		leaderboard: svc,
		i18n:        translator,
	}
}

// Register mounts the score routes on group
func (h *ScoreHandler) Register(group *gin.RouterGroup) {
	group.POST("/scores", h.SubmitScore)
	group.GET("/scores", h.GetTopScores)
	group.GET("/scores/user/:fid", h.GetUserScores)
}

// SubmitScore stores a finished game
func (h *ScoreHandler) SubmitScore(c *gin.Context) {
	lang := i18n.GetLanguage(c)

	var req models.SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		key := i18n.KeyMissingFields
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "time" {
			key = i18n.KeyInvalidTime
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": h.i18n.T(lang, key)})
		return
	}

	// A zero fid or time counts as absent
	if *req.UserFID <= 0 || *req.Time == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.i18n.T(lang, i18n.KeyMissingFields)})
		return
	}

	difficulty, err := models.ParseDifficulty(req.Difficulty)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.i18n.T(lang, i18n.KeyInvalidDifficulty)})
		return
	}

	if *req.Time < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.i18n.T(lang, i18n.KeyInvalidTime)})
		return
	}

	player := models.Player{FID: *req.UserFID, Username: req.Username}
	result, err := h.leaderboard.Submit(c.Request.Context(), player, difficulty, *req.Time)
	if err != nil {
		log.WithError(err).WithField("fid", player.FID).Error("Error saving score")
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.i18n.T(lang, i18n.KeySaveScore)})
		return
	}

	message := h.i18n.T(lang, i18n.KeyScoreSaved)
	if result.IsNewBest {
		message = h.i18n.T(lang, i18n.KeyNewBest)
	}

	c.JSON(http.StatusOK, models.SubmitScoreResponse{
		Success:   true,
		IsNewBest: result.IsNewBest,
		Message:   message,
	})
}

// GetTopScores returns the leaderboard of one difficulty
func (h *ScoreHandler) GetTopScores(c *gin.Context) {
	lang := i18n.GetLanguage(c)

	difficulty, err := models.ParseDifficulty(c.Query("difficulty"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.i18n.T(lang, i18n.KeyInvalidDifficulty)})
		return
	}

	entries, err := h.leaderboard.Top(c.Request.Context(), difficulty)
	if err != nil {
		log.WithError(err).Errorf("Error fetching %s scores", difficulty)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.i18n.T(lang, i18n.KeyFetchScores)})
		return
	}

	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// GetUserScores returns the best time of a user per difficulty
func (h *ScoreHandler) GetUserScores(c *gin.Context) {
	lang := i18n.GetLanguage(c)

	fid, err := strconv.ParseInt(c.Param("fid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.i18n.T(lang, i18n.KeyInvalidFID)})
		return
	}

	scores, err := h.leaderboard.UserBest(c.Request.Context(), fid)
	if err != nil {
		log.WithError(err).WithField("fid", fid).Error("Error fetching user scores")
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.i18n.T(lang, i18n.KeyFetchUserScores)})
		return
	}

	if scores == nil {
		scores = map[models.Difficulty]int{}
	}
	c.JSON(http.StatusOK, scores)
}
