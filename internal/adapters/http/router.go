package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/adapters/signal"
	"github.com/questhall/questhall/internal/config"
	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	historyTimeout      = 5 * time.Second
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type messageDTO struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"chatRoomId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SetupRouter wires the HTTP API: health plus the room history read path.
// History is served straight from the persisted message log, so it can never
// diverge from what the gateway broadcast.
func SetupRouter(cfg *config.Config, store core.MessageStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("QuesthallSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/rooms/:id/messages", func(c *gin.Context) {
		roomID := c.Param("id")
		limit := defaultHistoryLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), historyTimeout)
		defer cancel()
		msgs, err := store.ListMessages(ctx, domain.RoomID(roomID), limit)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("room", roomID).Msg("history read failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
			return
		}

		out := make([]messageDTO, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, messageDTO{
				ID:        string(m.ID),
				RoomID:    string(m.RoomID),
				UserID:    string(m.SenderID),
				Content:   m.Content,
				Timestamp: m.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	})

	return r
}

// SetupGateway builds the dedicated socket listener, independent of the API
// server.
func SetupGateway(ctx context.Context, cfg *config.Config, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws", func(c *gin.Context) {
		ctl.Handle(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("gateway router setup")
	return r
}
