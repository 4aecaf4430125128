// Package stream serializes run events onto an SSE response. Events
// are flushed in the order they are emitted; pacing delays are a
// rendering courtesy and never affect ordering.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelagent/models"
)

// Wire event names. The final message rides under "messages" wrapped in
// a single-element list, matching the chat-SDK consumers this service
// predates.
const (
	wireMetadata = "metadata"
	wirePartial  = "messages/partial"
	wireFinal    = "messages"
	wireEnd      = "end"
)

// Pacing controls the artificial delays between events. Zero values
// disable the corresponding delay.
type Pacing struct {
	// AfterMetadata runs once after the metadata event.
	AfterMetadata time.Duration
	// BetweenPartials runs after each partial flush.
	BetweenPartials time.Duration
	// BeforeEnd gives slow consumers time to render the final
	// message before the connection closes.
	BeforeEnd time.Duration
}

type runEnvelope struct {
	RunID       string `json:"run_id"`
	ThreadID    string `json:"thread_id"`
	AssistantID string `json:"assistant_id,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// SSEStreamer writes a single run's events to one HTTP response. It is
// not safe for concurrent use; a run emits its events sequentially.
type SSEStreamer struct {
	writer  gin.ResponseWriter
	flusher http.Flusher
	pacing  Pacing
	logger  *zap.Logger
	closed  <-chan struct{}
	done    bool
}

// NewSSEStreamer prepares the response for event streaming and returns
// the streamer. It fails if the underlying connection cannot flush.
func NewSSEStreamer(c *gin.Context, pacing Pacing, logger *zap.Logger) (*SSEStreamer, error) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache, no-transform")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEStreamer{
		writer:  c.Writer,
		flusher: flusher,
		pacing:  pacing,
		logger:  logger,
		closed:  c.Request.Context().Done(),
	}, nil
}

// Emit writes one event frame. After a client disconnect it drops
// events silently; state already committed upstream stays committed.
func (s *SSEStreamer) Emit(ev models.Event) error {
	if s.done {
		return nil
	}
	select {
	case <-s.closed:
		s.done = true
		s.logger.Debug("client disconnected mid-stream",
			zap.String("runId", ev.RunID),
			zap.String("threadId", ev.ThreadID))
		return nil
	default:
	}

	name, payload, err := encode(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Kind, err)
	}
	if _, err := fmt.Fprintf(s.writer, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		s.done = true
		return err
	}
	s.flusher.Flush()

	switch ev.Kind {
	case models.EventMetadata:
		s.sleep(s.pacing.AfterMetadata)
	case models.EventPartial:
		s.sleep(s.pacing.BetweenPartials)
	case models.EventFinal:
		s.sleep(s.pacing.BeforeEnd)
	case models.EventEnd:
		s.done = true
	}
	return nil
}

func (s *SSEStreamer) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-s.closed:
		s.done = true
	}
}

func encode(ev models.Event) (string, []byte, error) {
	switch ev.Kind {
	case models.EventMetadata:
		b, err := json.Marshal(runEnvelope{
			RunID:       ev.RunID,
			ThreadID:    ev.ThreadID,
			AssistantID: ev.AssistantID,
			Status:      string(models.StatusRunning),
		})
		return wireMetadata, b, err
	case models.EventPartial:
		b, err := json.Marshal(ev.Message)
		return wirePartial, b, err
	case models.EventFinal:
		b, err := json.Marshal([]*models.Message{ev.Message})
		return wireFinal, b, err
	case models.EventEnd:
		b, err := json.Marshal(runEnvelope{
			RunID:    ev.RunID,
			ThreadID: ev.ThreadID,
			Status:   string(ev.Status),
			Error:    ev.Error,
		})
		return wireEnd, b, err
	default:
		return "", nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
