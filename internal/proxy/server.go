// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/issue-builder/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// shutdownTimeout bounds how long Serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// NewRouter wires the proxy routes:
//
//	POST /invoke     body is a gateway event envelope
//	POST, OPTIONS /  body is the proxy request itself
//	GET  /healthz    liveness
func NewRouter(s *Service, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/invoke", func(c *gin.Context) {
		data, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeResponse(c, s.HandleEvent(c.Request.Context(), data))
	})

	direct := func(c *gin.Context) {
		data, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeResponse(c, s.Handle(c.Request.Context(), Request{
			Origin: c.GetHeader("Origin"),
			Method: c.Request.Method,
			Body:   data,
		}))
	}
	r.POST("/", direct)
	r.OPTIONS("/", direct)
	return r
}

func writeResponse(c *gin.Context, resp Response) {
	contentType := ""
	for k, v := range resp.Header {
		if k == "Content-Type" {
			contentType = v
			continue
		}
		c.Header(k, v)
	}
	if len(resp.Body) == 0 {
		c.Status(resp.Status)
		return
	}
	c.Data(resp.Status, contentType, resp.Body)
}

// requestID tags every request with an ID, keeping one the caller sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"id", c.GetString(requestIDHeader),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("proxy listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("proxy stopped")
	return nil
}
