// Package statushttp exposes a read-only status API: current signals, tracked
// risk states and the journal. No endpoint mutates anything.
package statushttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stoppilot/internal/logger"
	symbolpkg "stoppilot/internal/pkg/symbol"
	"stoppilot/internal/risk"
	"stoppilot/internal/signal"
	"stoppilot/internal/store/journal"

	"github.com/gin-gonic/gin"
)

// Server hosts the status endpoints over gin.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig wires the server's read-side dependencies.
type ServerConfig struct {
	Addr    string
	Signals *signal.Cache
	Tracker *risk.Tracker
	Journal journal.Journal
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Signals == nil || cfg.Tracker == nil {
		return nil, errors.New("status http server requires signal cache and tracker")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9981"
	}
	if cfg.Journal == nil {
		// Nil *Store is a no-op journal; history endpoints return empty sets.
		cfg.Journal = (*journal.Store)(nil)
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/signals", func(c *gin.Context) {
		if sym := symbolpkg.Normalize(c.Query("symbol")); sym != "" {
			sig, ok := cfg.Signals.Get(sym)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no signal for symbol"})
				return
			}
			c.JSON(http.StatusOK, sig)
			return
		}
		c.JSON(http.StatusOK, gin.H{"signals": cfg.Signals.Latest()})
	})
	api.GET("/signals/history", func(c *gin.Context) {
		records, err := cfg.Journal.ListRecentSignals(c.Request.Context(),
			c.Query("symbol"), queryLimit(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"signals": records})
	})
	api.GET("/risk/states", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"states": cfg.Tracker.States()})
	})
	api.GET("/risk/actions", func(c *gin.Context) {
		records, err := cfg.Journal.ListRecentRiskActions(c.Request.Context(),
			strings.TrimSpace(c.Query("ticket")), queryLimit(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"actions": records})
	})

	return &Server{addr: cfg.Addr, router: router}, nil
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || n <= 0 {
		return 50
	}
	return n
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
