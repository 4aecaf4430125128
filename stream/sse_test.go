package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travelagent/models"
)

func newTestStreamer(t *testing.T) (*SSEStreamer, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/threads/t1/runs/stream", nil)

	s, err := NewSSEStreamer(c, Pacing{}, zap.NewNop())
	require.NoError(t, err)
	return s, w
}

// frames splits a recorded SSE body into (event, data) pairs.
func frames(t *testing.T, body string) [][2]string {
	t.Helper()
	var out [][2]string
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		lines := strings.SplitN(block, "\n", 2)
		require.Len(t, lines, 2, "malformed frame %q", block)
		out = append(out, [2]string{
			strings.TrimPrefix(lines[0], "event: "),
			strings.TrimPrefix(lines[1], "data: "),
		})
	}
	return out
}

func TestStreamHeaders(t *testing.T) {
	_, w := newTestStreamer(t)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-transform", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}

func TestFullRunFraming(t *testing.T) {
	s, w := newTestStreamer(t)
	msg := models.NewMessage("assistant", "Here are your options")

	events := []models.Event{
		{Kind: models.EventMetadata, RunID: "r1", ThreadID: "t1", AssistantID: "agent", Status: models.StatusRunning},
		{Kind: models.EventPartial, RunID: "r1", ThreadID: "t1", Message: &msg},
		{Kind: models.EventFinal, RunID: "r1", ThreadID: "t1", Message: &msg},
		{Kind: models.EventEnd, RunID: "r1", ThreadID: "t1", Status: models.StatusSuccess},
	}
	for _, ev := range events {
		require.NoError(t, s.Emit(ev))
	}

	got := frames(t, w.Body.String())
	require.Len(t, got, 4)
	assert.Equal(t, "metadata", got[0][0])
	assert.Equal(t, "messages/partial", got[1][0])
	assert.Equal(t, "messages", got[2][0])
	assert.Equal(t, "end", got[3][0])

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(got[0][1]), &meta))
	assert.Equal(t, "r1", meta["run_id"])
	assert.Equal(t, "t1", meta["thread_id"])
	assert.Equal(t, "running", meta["status"])

	// The final message rides inside a single-element list.
	var final []models.Message
	require.NoError(t, json.Unmarshal([]byte(got[2][1]), &final))
	require.Len(t, final, 1)
	assert.Equal(t, "Here are your options", final[0].Content)

	// The partial is the bare message object.
	var partial models.Message
	require.NoError(t, json.Unmarshal([]byte(got[1][1]), &partial))
	assert.Equal(t, msg.ID, partial.ID)
}

func TestEndErrorCarriesReason(t *testing.T) {
	s, w := newTestStreamer(t)

	require.NoError(t, s.Emit(models.Event{
		Kind: models.EventEnd, RunID: "r1", ThreadID: "t1",
		Status: models.StatusError, Error: "hotel search failed",
	}))

	got := frames(t, w.Body.String())
	require.Len(t, got, 1)

	var end map[string]any
	require.NoError(t, json.Unmarshal([]byte(got[0][1]), &end))
	assert.Equal(t, "error", end["status"])
	assert.Equal(t, "hotel search failed", end["error"])
}

func TestNothingEmittedAfterEnd(t *testing.T) {
	s, w := newTestStreamer(t)

	require.NoError(t, s.Emit(models.Event{Kind: models.EventEnd, RunID: "r1", ThreadID: "t1", Status: models.StatusSuccess}))
	before := w.Body.Len()

	msg := models.NewMessage("assistant", "late")
	require.NoError(t, s.Emit(models.Event{Kind: models.EventFinal, RunID: "r1", ThreadID: "t1", Message: &msg}))
	assert.Equal(t, before, w.Body.Len())
}
