package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Answerer produces a user-visible answer for a question. On failure the
// string still carries a message suitable for the end user.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Server exposes the chat API and optionally serves the static frontend.
type Server struct {
	answerer Answerer
	log      *slog.Logger
	router   *gin.Engine
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// New builds the HTTP server. corsOrigins of nil allows all origins;
// staticDir of "" disables frontend serving.
func New(answerer Answerer, corsOrigins []string, staticDir string, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(corsOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	s := &Server{answerer: answerer, log: log, router: router}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.POST("/api/chat", s.handleChat)

	if staticDir != "" {
		router.Static("/static", staticDir)
		router.StaticFile("/", staticDir+"/index.html")
	}

	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	answer, err := s.answerer.Answer(c.Request.Context(), question)
	if err != nil {
		// The answer already carries a user-facing apology.
		c.JSON(http.StatusInternalServerError, chatResponse{Response: answer})
		return
	}
	c.JSON(http.StatusOK, chatResponse{Response: answer})
}
