package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/auth"
	"github.com/drafte-app/drafte-backend/internal/workflow"
)

const (
	keepAliveEvery = 15 * time.Second
	// HeaderRunID carries the project id a chat turn ran against.
	HeaderRunID = "X-Run-Id"
)

type chatReq struct {
	Input string `json:"input"`
	RunID string `json:"runId"`
}

// chat runs one workflow turn and streams its events as SSE. The turn keeps
// running if the client goes away; writes to a closed connection are dropped.
func (h *Handler) chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing input"})
		return
	}
	input := strings.TrimSpace(req.Input)
	userID := auth.UserDBID(c)

	p, err := h.projects.EnsureForChat(c.Request.Context(), userID, strings.TrimSpace(req.RunID), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Header(HeaderRunID, p.ID)
	c.Status(http.StatusOK)
	flusher.Flush()

	gone := c.Request.Context().Done()
	var mu sync.Mutex
	write := func(frame string) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-gone:
			return
		default:
		}
		fmt.Fprint(c.Writer, frame)
		flusher.Flush()
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(keepAliveEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-gone:
				return
			case <-ticker.C:
				write(": keep-alive\n\n")
			}
		}
	}()
	defer close(done)

	emit := workflow.EmitterFunc(func(e workflow.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			h.log.Error("encode event", zap.String("type", e.Type), zap.Error(err))
			return
		}
		write("data: " + string(data) + "\n\n")
	})

	if _, err := h.workflow.Run(c.Request.Context(), workflow.State{ProjectID: p.ID, UserID: userID, Input: input}, emit); err != nil {
		h.log.Warn("chat turn failed",
			zap.String("project_id", p.ID),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
}
