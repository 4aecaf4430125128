package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelagent/models"
	"travelagent/services/content"
	"travelagent/services/workflow"
	"travelagent/stream"
)

// RunHandler executes workflow runs and streams their events.
type RunHandler struct {
	Engine *workflow.Engine
	Pacing stream.Pacing
	Logger *zap.Logger
}

func NewRunHandler(engine *workflow.Engine, pacing stream.Pacing, logger *zap.Logger) *RunHandler {
	return &RunHandler{Engine: engine, Pacing: pacing, Logger: logger}
}

// inboundMessage leaves content raw: it may be a plain string, a
// segment list, or a stringified segment list. The normalizer sorts
// that out.
type inboundMessage struct {
	Role    string          `json:"role"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type runRequest struct {
	AssistantID string `json:"assistant_id"`
	Input       struct {
		Messages []inboundMessage `json:"messages"`
	} `json:"input"`
}

// StreamRun runs one workflow turn for the thread and answers with the
// run's SSE event stream.
func (h *RunHandler) StreamRun(c *gin.Context) {
	threadID := c.Param("thread_id")

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	incoming := make([]models.Message, 0, len(req.Input.Messages))
	for _, m := range req.Input.Messages {
		role := m.Role
		if role == "" {
			role = m.Type
		}
		incoming = append(incoming, models.NewMessage(role, content.Normalize(m.Content)))
	}

	runID := uuid.New().String()
	h.Logger.Info("run started",
		zap.String("runId", runID),
		zap.String("threadId", threadID),
		zap.Int("incoming", len(incoming)))

	sink, err := stream.NewSSEStreamer(c, h.Pacing, h.Logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported", "details": err.Error()})
		return
	}

	start := time.Now()
	if err := h.Engine.Run(c.Request.Context(), runID, threadID, req.AssistantID, incoming, sink); err != nil {
		// The stream already carried a terminal event; just log.
		h.Logger.Warn("run finished with error",
			zap.String("runId", runID), zap.Error(err))
		return
	}
	h.Logger.Info("run finished",
		zap.String("runId", runID), zap.Duration("took", time.Since(start)))
}
