package handlers

import (
	"net/http"

	"minesweeper/internal/config"
	"minesweeper/internal/host"
	"minesweeper/internal/i18n"
	"minesweeper/internal/leaderboard"
	"minesweeper/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Dependencies are the services behind the HTTP routes. Hub may be nil.
type Dependencies struct {
	Config      *config.Config
	Leaderboard *leaderboard.Service
	Bridge      host.Bridge
	I18n        *i18n.I18n
	Hub         *websocket.Hub
}

// NewRouter wires every route of the server
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.LoggerWithWriter(log.StandardLogger().Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	router.Use(i18n.Middleware(deps.I18n))

	manifestHandler := NewManifestHandler(cfg)
	scoreHandler := NewScoreHandler(deps.Leaderboard, deps.I18n)
	hostHandler := NewHostHandler(deps.Bridge, deps.I18n)

	// Health check endpoint
	if cfg.Server.EnableHealthCheck {
		router.GET("/health", manifestHandler.Health)
	}

	router.GET("/.well-known/farcaster.json", manifestHandler.GetManifest)

	apiRoutes := router.Group("/api")
	{
		scoreHandler.Register(apiRoutes)
		apiRoutes.GET("/me", hostHandler.Me)
		apiRoutes.POST("/ready", hostHandler.Ready)

		// cors only answers preflights that carry an Origin
		apiRoutes.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	// WebSocket endpoint
	if deps.Hub != nil {
		router.GET("/ws", deps.Hub.HandleWebSocket)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type"},
		OptionsResponseStatusCode: http.StatusOK,
	}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}
