package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
	"mediawatch/internal/usecase"
)

// Server exposes the moderation front and the on-demand ingestion trigger.
// Authorization is a shared-secret bearer token checked before any storage
// access; a mismatch short-circuits with no side effects.
type Server struct {
	crawler     *usecase.Crawler
	publisher   *usecase.Publisher
	snapshot    ports.SnapshotStore
	submissions ports.SubmissionSource
	adminToken  string
	logger      *slog.Logger
}

// NewServer wires the use cases and adapters into the HTTP surface.
func NewServer(crawler *usecase.Crawler, publisher *usecase.Publisher,
	snapshot ports.SnapshotStore, submissions ports.SubmissionSource,
	adminToken string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		crawler:     crawler,
		publisher:   publisher,
		snapshot:    snapshot,
		submissions: submissions,
		adminToken:  adminToken,
		logger:      logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1", s.authorize)
	{
		v1.POST("/crawl", s.triggerCrawl)
		v1.GET("/crawl/latest", s.latestCrawl)
		v1.GET("/submissions", s.listSubmissions)
		v1.POST("/approve", s.approveSubmission)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) authorize(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if s.adminToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) triggerCrawl(c *gin.Context) {
	result, err := s.crawler.Run(c.Request.Context())
	if err != nil {
		s.logger.Error("aggregation run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     err.Error(),
			"timestamp": timestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         fmt.Sprintf("Found %d media links", result.Count),
		"count":           result.Count,
		"breakdown":       result.Breakdown,
		"executionTimeMs": result.ExecutionTimeMs,
		"links":           result.Items,
		"timestamp":       timestamp(),
	})
}

func (s *Server) latestCrawl(c *gin.Context) {
	if s.snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot store not configured"})
		return
	}

	payload, err := s.snapshot.Latest(c.Request.Context())
	if errors.Is(err, ports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no crawl snapshot yet"})
		return
	}
	if err != nil {
		s.logger.Error("snapshot read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

func (s *Server) listSubmissions(c *gin.Context) {
	if s.submissions == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission source not configured"})
		return
	}

	grouped, total, err := s.submissions.ListPending(c.Request.Context())
	if err != nil {
		s.logger.Error("submission listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": grouped,
		"total":       total,
	})
}

type approveRequest struct {
	Type   string         `json:"type"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

func (s *Server) approveSubmission(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	switch req.Action {
	case "approve":
		// handled below
	case "reject":
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission rejected"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
		return
	}

	err := s.publisher.Publish(c.Request.Context(), domain.SubmissionType(req.Type), req.Data)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission approved"})
	case errors.Is(err, usecase.ErrUnknownSubmissionType):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown submission type %q", req.Type)})
	case errors.Is(err, ports.ErrRevisionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "collection was updated concurrently, retry the approval"})
	case errors.Is(err, ports.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
	default:
		s.logger.Error("publish failed", "type", req.Type, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
