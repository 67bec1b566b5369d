// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"childcare-assistant/internal/chat/responder"
	"childcare-assistant/internal/common/config"
	apperrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/common/observability"
	"childcare-assistant/internal/models"
)

// Classifier resolves one utterance to an Intent.
type Classifier interface {
	Classify(ctx context.Context, utterance string, conv models.ConversationContext) models.Intent
}

// Responder renders an Intent into reply blocks.
type Responder interface {
	Build(ctx context.Context, intent models.Intent, conv models.ConversationContext, userID string) ([]models.Block, error)
}

// ContextStore loads and records per-conversation context.
type ContextStore interface {
	Load(ctx context.Context, conversationID string) models.ConversationContext
	Record(ctx context.Context, conv models.ConversationContext, intent models.Intent, blocks []models.Block) error
}

// ActionEngine resolves staged action intents.
type ActionEngine interface {
	Confirm(ctx context.Context, intentID, requestingUserID string) (*models.ActionResult, error)
	Cancel(ctx context.Context, intentID, requestingUserID string) error
}

// Server is the inbound HTTP surface: one chat turn endpoint plus the
// confirm/cancel endpoints for staged actions. All authorization context
// comes from the X-User-ID header set by the upstream gateway.
type Server struct {
	config    *config.Config
	classify  Classifier
	responder Responder
	contexts  ContextStore
	engine    ActionEngine
	metrics   *observability.Observability
	logger    logger.Logger
	router    *gin.Engine
}

func New(cfg *config.Config, classify Classifier, responder Responder, contexts ContextStore, engine ActionEngine, metrics *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		config:    cfg,
		classify:  classify,
		responder: responder,
		contexts:  contexts,
		engine:    engine,
		metrics:   metrics,
		logger:    log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
	s.router = s.buildRouter()
	return s
}

// Router exposes the handler tree for tests and for the http.Server in main.
func (s *Server) Router() http.Handler {
	return s.router
}

// HTTPServer wraps the router with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Server.Address,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Millisecond,
	}
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(s.requestLogger(), s.recovery())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/v1")
	api.POST("/chat", s.handleChat)
	api.POST("/actions/:id/confirm", s.handleConfirm)
	api.DELETE("/actions/:id", s.handleCancel)
	api.GET("/quick-actions/:id", s.handleQuickAction)

	return router
}

type chatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message" binding:"required"`
}

type chatResponse struct {
	ConversationID string         `json:"conversationId,omitempty"`
	Intent         intentSummary  `json:"intent"`
	Blocks         []models.Block `json:"blocks"`
}

type intentSummary struct {
	Type       models.IntentType `json:"type"`
	Confidence float64           `json:"confidence"`
}

func (s *Server) handleChat(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "MISSING_USER", "message": "X-User-ID header is required"}})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_REQUEST", "message": "message is required"}})
		return
	}

	started := time.Now()
	conv := s.contexts.Load(c.Request.Context(), req.ConversationID)
	intent := s.classify.Classify(c.Request.Context(), req.Message, conv)

	blocks, err := s.responder.Build(c.Request.Context(), intent, conv, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.contexts.Record(c.Request.Context(), conv, intent, blocks); err != nil {
		// Context is advisory; the reply still stands.
		s.logger.Warn("context record failed", map[string]interface{}{
			"conversationId": req.ConversationID,
			"error":          err.Error(),
		})
	}

	if s.metrics != nil {
		s.metrics.RecordTurn(c.Request.Context(), string(intent.Type))
		s.metrics.RecordTurnDuration(c.Request.Context(), time.Since(started), string(intent.Type))
	}

	c.JSON(http.StatusOK, chatResponse{
		ConversationID: req.ConversationID,
		Intent:         intentSummary{Type: intent.Type, Confidence: intent.Confidence},
		Blocks:         blocks,
	})
}

func (s *Server) handleConfirm(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "MISSING_USER", "message": "X-User-ID header is required"}})
		return
	}

	result, err := s.engine.Confirm(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  string(models.StatusExecuted),
		"message": result.Message,
		"data":    result.Data,
	})
}

func (s *Server) handleCancel(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "MISSING_USER", "message": "X-User-ID header is required"}})
		return
	}

	if err := s.engine.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleQuickAction resolves a quick-action identifier so clients render
// buttons from the server-side table instead of hardcoding labels and routes.
func (s *Server) handleQuickAction(c *gin.Context) {
	qa, ok := responder.QuickAction(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "QUICK_ACTION_NOT_FOUND", "message": "unknown quick action"}})
		return
	}
	c.JSON(http.StatusOK, qa)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.config.App.Version})
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	c.JSON(apperrors.HTTPStatus(stdErr.Code), gin.H{
		"error": gin.H{
			"code":    string(stdErr.Code),
			"message": stdErr.Message,
			"details": stdErr.Details,
		},
	})
}
