// Package server exposes the Twitter gateway to the CRM host over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/metrics"
)

type ServerConfig struct {
	Gateway    twitter.Gateway
	Metrics    *metrics.MetricsCollector
	ServerAddr string
}

type Server struct {
	gateway    twitter.Gateway
	metrics    *metrics.MetricsCollector
	serverAddr string
}

func NewServer(config *ServerConfig) *Server {
	collector := config.Metrics
	if collector == nil {
		collector = metrics.NewMetricsCollector()
	}
	return &Server{
		gateway:    config.Gateway,
		metrics:    collector,
		serverAddr: config.ServerAddr,
	}
}

// Router builds the gin engine with every relay route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), flashMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(s.metrics))

	router.GET("/followers/count", s.HandleFollowerCount)
	router.GET("/timeline", s.HandleUserTimeline)
	router.GET("/mentions", s.HandleMentions)
	router.GET("/mentions/newest", s.HandleNewestMention)
	router.GET("/direct-messages", s.HandleDirectMessages)
	router.GET("/direct-messages/newest", s.HandleNewestDirectMessage)
	router.POST("/replies", s.HandleReply)
	router.POST("/tweets", s.HandlePublishTweet)
	router.DELETE("/tweets/:id", s.HandleDeleteTweet)
	router.DELETE("/direct-messages/:id", s.HandleDeleteDirectMessage)
	router.DELETE("/answers/:id", s.HandleDeleteAnswer)
	router.POST("/follows/:account_id", s.HandleToggleFollow)

	return router
}

// Run serves the relay until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.serverAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("relay server listening", "addr", s.serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		return err
	}
	return nil
}

func flashMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := withFlash(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("relay request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
