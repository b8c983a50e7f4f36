package handlers

import (
	"net/http"

	"minesweeper/internal/host"
	"minesweeper/internal/i18n"

	"github.com/gin-gonic/gin"
)

// HostHandler exposes the player identity resolved by the host bridge
type HostHandler struct {
	bridge host.Bridge
	i18n   *i18n.I18n
}

// NewHostHandler creates a new host handler
func NewHostHandler(bridge host.Bridge, translator *i18n.I18n) *HostHandler {
	return &HostHandler{
		bridge: bridge,
		i18n:   translator,
	}
}

// Me returns the current player
func (h *HostHandler) Me(c *gin.Context) {
	player, err := h.bridge.Identify(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": h.i18n.T(i18n.GetLanguage(c), i18n.KeyNoIdentity),
		})
		return
	}

	c.JSON(http.StatusOK, player)
}

// Ready acknowledges that the client finished loading
func (h *HostHandler) Ready(c *gin.Context) {
	h.bridge.Ready(c)
	c.Status(http.StatusNoContent)
}
