package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SSEWriter wraps gin.ResponseWriter for proper SSE streaming
type SSEWriter struct {
	writer  gin.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the SSE response headers and returns a writer for the
// event stream.
func NewSSEWriter(c *gin.Context) *SSEWriter {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	return &SSEWriter{
		writer:  c.Writer,
		flusher: flusher,
	}
}

// WriteEvent writes one named SSE event with a JSON payload and flushes it.
func (w *SSEWriter) WriteEvent(event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if event != "" {
		fmt.Fprintf(w.writer, "event: %s\n", event)
	}
	fmt.Fprintf(w.writer, "data: %s\n\n", jsonData)

	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}
