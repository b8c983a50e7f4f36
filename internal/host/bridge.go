package host

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"minesweeper/internal/config"
	"minesweeper/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoIdentity is returned when a request carries no usable identity
	ErrNoIdentity = errors.New("no host identity")

	// ErrInvalidToken is returned for a host token that fails verification
	ErrInvalidToken = errors.New("invalid host token")
)

// DemoUsername is the name given to players outside the host
const DemoUsername = "Demo User"

// Bridge is the narrow view of the hosting platform
type Bridge interface {
	// Identify returns the player behind the request
	Identify(c *gin.Context) (models.Player, error)

	// Ready records that the client finished loading
	Ready(c *gin.Context)
}

// TokenBridge identifies players from signed host tokens, plain query
// parameters or, in demo mode, a random identity.
type TokenBridge struct {
	secret []byte
	demo   bool

	mu  sync.Mutex
	rng *rand.Rand
}

// Ensure TokenBridge implements Bridge interface
var _ Bridge = (*TokenBridge)(nil)

// NewTokenBridge creates a bridge from the host configuration
func NewTokenBridge(cfg config.HostConfig) *TokenBridge {
	return &TokenBridge{
		secret: []byte(cfg.TokenSecret),
		demo:   cfg.DemoMode,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Identify resolves the player of a request
func (b *TokenBridge) Identify(c *gin.Context) (models.Player, error) {
	if token := bearerToken(c); token != "" && len(b.secret) > 0 {
		return b.ValidateToken(token)
	}

	if len(b.secret) == 0 {
		if player, ok, err := queryIdentity(c); ok || err != nil {
			return player, err
		}
	}

	if b.demo {
		return b.demoPlayer(), nil
	}

	return models.Player{}, ErrNoIdentity
}

// Ready logs the ready signal of a client
func (b *TokenBridge) Ready(c *gin.Context) {
	log.WithFields(log.Fields{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	}).Debug("Client ready")
}

// IssueToken signs a host token for player
func (b *TokenBridge) IssueToken(player models.Player, ttl time.Duration) (string, error) {
	if len(b.secret) == 0 {
		return "", fmt.Errorf("host token secret is not configured")
	}

	claims := jwt.MapClaims{
		"fid":      player.FID,
		"username": player.Username,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(b.secret)
}

// ValidateToken verifies a host token and returns its player
func (b *TokenBridge) ValidateToken(tokenString string) (models.Player, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		return models.Player{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Player{}, ErrInvalidToken
	}

	// JSON numbers decode as float64
	rawFID, ok := claims["fid"].(float64)
	if !ok || rawFID <= 0 {
		return models.Player{}, fmt.Errorf("%w: fid not found in token", ErrInvalidToken)
	}
	fid := int64(rawFID)

	username, _ := claims["username"].(string)
	return models.Player{FID: fid, Username: displayName(fid, username)}, nil
}

func (b *TokenBridge) demoPlayer() models.Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	return models.Player{
		FID:      b.rng.Int63n(9999) + 1,
		Username: DemoUsername,
	}
}

func bearerToken(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		return token[7:]
	}
	// Browsers cannot set headers on websocket upgrades
	return c.Query("token")
}

func queryIdentity(c *gin.Context) (models.Player, bool, error) {
	rawFID := c.Query("fid")
	if rawFID == "" {
		return models.Player{}, false, nil
	}

	fid, err := strconv.ParseInt(rawFID, 10, 64)
	if err != nil || fid <= 0 {
		return models.Player{}, false, fmt.Errorf("%w: invalid fid %q", ErrNoIdentity, rawFID)
	}

	return models.Player{FID: fid, Username: displayName(fid, c.Query("username"))}, true, nil
}

func displayName(fid int64, username string) string {
	if username == "" {
		return fmt.Sprintf("User %d", fid)
	}
	return username
}
