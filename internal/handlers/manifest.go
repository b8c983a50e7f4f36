package handlers

import (
	"net/http"
	"strings"

	"minesweeper/internal/config"

	"github.com/gin-gonic/gin"
)

// AccountAssociation proves ownership of the app domain
type AccountAssociation struct {
	Header    string `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Frame describes the mini app to the host
type Frame struct {
	Name                  string   `json:"name"`
	Version               string   `json:"version"`
	IconURL               string   `json:"iconUrl"`
	HomeURL               string   `json:"homeUrl"`
	Subtitle              string   `json:"subtitle"`
	PrimaryCategory       string   `json:"primaryCategory"`
	Description           string   `json:"description"`
	SplashBackgroundColor string   `json:"splashBackgroundColor"`
	SplashImageURL        string   `json:"splashImageUrl"`
	Tags                  []string `json:"tags"`
}

// Manifest is served at /.well-known/farcaster.json
type Manifest struct {
	AccountAssociation AccountAssociation `json:"accountAssociation"`
	Frame              Frame              `json:"frame"`
}

// ManifestHandler serves the host manifest and health check
type ManifestHandler struct {
	host   config.HostConfig
	appURL string
}

// NewManifestHandler creates a new manifest handler
func NewManifestHandler(cfg *config.Config) *ManifestHandler {
	return &ManifestHandler{
		host:   cfg.Host,
		appURL: cfg.Server.AppURL,
	}
}

// GetManifest returns the mini app manifest
func (h *ManifestHandler) GetManifest(c *gin.Context) {
	c.JSON(http.StatusOK, h.Build(h.resolveAppURL(c)))
}

// Build assembles the manifest for appURL
func (h *ManifestHandler) Build(appURL string) Manifest {
	base := strings.TrimSuffix(appURL, "/")

	return Manifest{
		AccountAssociation: AccountAssociation{
			Header:    h.host.AccountHeader,
			Payload:   h.host.AccountPayload,
			Signature: h.host.AccountSignature,
		},
		Frame: Frame{
			Name:                  h.host.AppName,
			Version:               "1",
			IconURL:               base + "/icon.png",
			HomeURL:               base + "/",
			Subtitle:              "Minesweeper game",
			PrimaryCategory:       "games",
			Description:           "Classic Minesweeper as a mini app: quick taps, smart flags, timed runs, and rankings across three difficulties.",
			SplashBackgroundColor: "#000000",
			SplashImageURL:        base + "/splash.png",
			Tags:                  []string{"minesweeper", "game", "démineur"},
		},
	}
}

// Health reports that the service is up
func (h *ManifestHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "minesweeper",
	})
}

func (h *ManifestHandler) resolveAppURL(c *gin.Context) string {
	if h.appURL != "" {
		return h.appURL
	}
	return "https://" + c.Request.Host
}
