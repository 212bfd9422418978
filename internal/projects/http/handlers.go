package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/auth"
	"github.com/drafte-app/drafte-backend/internal/catalog"
	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/projects/service"
	"github.com/drafte-app/drafte-backend/internal/workflow"
)

// Handler bundles the dependencies for project and chat endpoints.
type Handler struct {
	projects *service.ProjectService
	resolver *service.ResolutionService
	workflow *workflow.Workflow
	log      *zap.Logger
}

func New(projects *service.ProjectService, resolver *service.ResolutionService, wf *workflow.Workflow, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{projects: projects, resolver: resolver, workflow: wf, log: log}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNoDiscovery):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project has no discovery yet"})
	case errors.Is(err, domain.ErrProjectBusy):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

type createReq struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserDBID(c), req.Prompt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), auth.UserDBID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), auth.UserDBID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.UserDBID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type resolveReq struct {
	Selections []domain.Selection `json:"selections"`
}

func (h *Handler) resolve(c *gin.Context) {
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Selections) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserDBID(c)
	id := c.Param("id")
	if _, err := h.projects.Owned(c.Request.Context(), userID, id); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.resolver.ApplySelections(c.Request.Context(), userID, id, req.Selections); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "success": true})
}

func (h *Handler) variations(c *gin.Context) {
	items, err := h.projects.Variations(c.Request.Context(), auth.UserDBID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "components": items})
}

type historyItem struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) history(c *gin.Context) {
	projectID := strings.TrimSpace(c.Query("projectId"))
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing projectId"})
		return
	}

	msgs, err := h.projects.History(c.Request.Context(), auth.UserDBID(c), projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]historyItem, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, historyItem{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt.UTC()})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "components": catalog.All()})
}
