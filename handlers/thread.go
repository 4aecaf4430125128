package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelagent/models"
	"travelagent/services/content"
	"travelagent/store"
)

// ThreadHandler serves thread lifecycle and history endpoints.
type ThreadHandler struct {
	Store  store.ThreadStore
	Logger *zap.Logger
}

func NewThreadHandler(s store.ThreadStore, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{Store: s, Logger: logger}
}

// CreateThread registers a new empty thread.
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	threadID, err := h.Store.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread", "details": err.Error()})
		return
	}
	h.Logger.Info("thread created", zap.String("threadId", threadID))
	c.JSON(http.StatusOK, gin.H{"thread_id": threadID})
}

// ThreadHistory returns the thread's messages oldest first. Content is
// re-normalized on the way out so the malformed serialized-list form
// never reaches a client, even for messages stored before
// normalization existed. Registered for both GET and POST; client SDK
// builds disagree on the method.
func (h *ThreadHandler) ThreadHistory(c *gin.Context) {
	threadID := c.Param("thread_id")
	t, err := h.Store.Get(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thread", "details": err.Error()})
		return
	}

	out := t.Messages
	if out == nil {
		out = []models.Message{}
	}
	for i := range out {
		out[i].Content = content.NormalizeText(out[i].Content)
	}
	h.Logger.Debug("thread history served",
		zap.String("threadId", threadID), zap.Int("messages", len(out)))
	c.JSON(http.StatusOK, out)
}

// SearchThreads lists all known threads.
func (h *ThreadHandler) SearchThreads(c *gin.Context) {
	ids, err := h.Store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads", "details": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		out = append(out, gin.H{"thread_id": id})
	}
	c.JSON(http.StatusOK, out)
}
