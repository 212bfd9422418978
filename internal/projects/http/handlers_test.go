package http

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafte-app/drafte-backend/internal/auth"
	"github.com/drafte-app/drafte-backend/internal/llm/llmtest"
	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/projects/projectstest"
	"github.com/drafte-app/drafte-backend/internal/projects/service"
	"github.com/drafte-app/drafte-backend/internal/skills/chat"
	"github.com/drafte-app/drafte-backend/internal/skills/content"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery/discoverytest"
	"github.com/drafte-app/drafte-backend/internal/skills/router"
	"github.com/drafte-app/drafte-backend/internal/workflow"
)

type env struct {
	store  *projectstest.Store
	llm    *llmtest.Scripted
	engine *gin.Engine
}

func newEnv(t *testing.T, replies ...string) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := projectstest.New()
	fake := llmtest.Texts(replies...)
	resolver := service.NewResolutionService(store, nil, nil)
	wf := workflow.New(workflow.Deps{
		Projects:  store,
		Messages:  store,
		Resolver:  resolver,
		Router:    router.New(fake, nil),
		Chat:      chat.New(fake),
		Discovery: discovery.New(fake, nil),
		Content:   content.New(fake, store, nil),
		Timeout:   5 * time.Second,
	})

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserDBID, c.GetHeader("X-Test-User"))
		c.Next()
	})
	New(service.NewProjectService(store, store), resolver, wf, nil).Register(api)
	return &env{store: store, llm: fake, engine: r}
}

func (e *env) do(t *testing.T, user, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func sseEvents(t *testing.T, body string) []workflow.Event {
	t.Helper()
	var out []workflow.Event
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var e workflow.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
		out = append(out, e)
	}
	return out
}

func TestProjectsCRUD(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, "user-1", http.MethodPost, "/api/v1/projects", `{"prompt":"  a bakery site  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OK      bool           `json:"ok"`
		Project domain.Project `json:"project"`
	}
	decode(t, w, &created)
	assert.True(t, created.OK)
	assert.Equal(t, "a bakery site", created.Project.Prompt)
	assert.Equal(t, domain.StatusCreated, created.Project.Status)
	id := created.Project.ID

	w = e.do(t, "user-1", http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Projects []domain.Project `json:"projects"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Projects, 1)

	assert.Equal(t, http.StatusOK, e.do(t, "user-1", http.MethodGet, "/api/v1/projects/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, "user-2", http.MethodGet, "/api/v1/projects/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, "user-1", http.MethodGet, "/api/v1/projects/not-a-uuid", "").Code)

	assert.Equal(t, http.StatusNotFound, e.do(t, "user-2", http.MethodDelete, "/api/v1/projects/"+id, "").Code)
	assert.Equal(t, http.StatusOK, e.do(t, "user-1", http.MethodDelete, "/api/v1/projects/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, "user-1", http.MethodGet, "/api/v1/projects/"+id, "").Code)
}

func TestCreateProject_InvalidBody(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(t, "user-1", http.MethodPost, "/api/v1/projects", `{"prompt":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, "user-1", http.MethodPost, "/api/v1/projects", `not json`).Code)
}

func TestChat_DiscoveryThenSelect(t *testing.T) {
	e := newEnv(t, "discovery", discoverytest.PhotographerJSON)

	w := e.do(t, "user-1", http.MethodPost, "/api/v1/chat", `{"input":"Build me a portfolio site for a photographer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	runID := w.Header().Get(HeaderRunID)
	require.NotEmpty(t, runID)

	events := sseEvents(t, w.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, workflow.EventDiscoveryDone, events[0].Type)
	assert.Equal(t, workflow.EventChatDone, events[1].Type)

	w = e.do(t, "user-1", http.MethodGet, "/api/v1/chat/history?projectId="+runID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist []historyItem
	decode(t, w, &hist)
	require.Len(t, hist, 2)
	assert.Equal(t, domain.RoleUser, hist[0].Role)
	assert.Equal(t, domain.RoleAssistant, hist[1].Role)

	w = e.do(t, "user-1", http.MethodGet, "/api/v1/projects/"+runID+"/variations", "")
	require.Equal(t, http.StatusOK, w.Code)
	var vars struct {
		Components []service.ComponentVariations `json:"components"`
	}
	decode(t, w, &vars)
	require.Len(t, vars.Components, 3)
	assert.NotEmpty(t, vars.Components[1].Options)

	sel := `{"selections":[
	  {"key":"navigation","decisions":{"alignment":"center","density":"compact","background":"blur"}},
	  {"key":"hero","decisions":{"alignment":"center","layout":"text-only","density":"compact","cta":"dual","background":"transparent"}},
	  {"key":"footer","decisions":{"alignment":"left","layout":"text","density":"comfortable","showCopyright":false}}
	]}`
	assert.Equal(t, http.StatusNotFound, e.do(t, "user-2", http.MethodPost, "/api/v1/projects/"+runID+"/resolve", sel).Code)
	w = e.do(t, "user-1", http.MethodPost, "/api/v1/projects/"+runID+"/resolve", sel)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, "user-1", http.MethodGet, "/api/v1/projects/"+runID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Project struct {
			Status     domain.Status             `json:"status"`
			Components []domain.ProjectComponent `json:"components"`
		} `json:"project"`
	}
	decode(t, w, &detail)
	assert.Equal(t, domain.StatusContentGenerated, detail.Project.Status)
	require.Len(t, detail.Project.Components, 3)
	assert.Equal(t, "text-only", detail.Project.Components[1].Decisions["layout"])
}

func TestChat_Errors(t *testing.T) {
	e := newEnv(t, "discovery", "not json at all", "still not json", "nope")

	assert.Equal(t, http.StatusBadRequest, e.do(t, "user-1", http.MethodPost, "/api/v1/chat", `{"input":"  "}`).Code)

	p, err := e.store.Create(t.Context(), "", "user-2", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound,
		e.do(t, "user-1", http.MethodPost, "/api/v1/chat", `{"input":"hi","runId":"`+p.ID+`"}`).Code)

	w := e.do(t, "user-1", http.MethodPost, "/api/v1/chat", `{"input":"make me a site"}`)
	require.Equal(t, http.StatusOK, w.Code)
	events := sseEvents(t, w.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, workflow.EventError, events[0].Type)
	assert.Equal(t, workflow.GenericError, events[0].Message)
}

func TestChat_DeletedRunID(t *testing.T) {
	e := newEnv(t)
	p, err := e.store.Create(t.Context(), "", "user-1", "x")
	require.NoError(t, err)
	_, err = e.store.SoftDelete(t.Context(), "user-1", p.ID)
	require.NoError(t, err)

	w := e.do(t, "user-1", http.MethodPost, "/api/v1/chat", `{"input":"hi","runId":"`+p.ID+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, e.llm.Calls())
}

func TestVariations_NoDiscovery(t *testing.T) {
	e := newEnv(t)
	p, err := e.store.Create(t.Context(), "", "user-1", "x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, e.do(t, "user-1", http.MethodGet, "/api/v1/projects/"+p.ID+"/variations", "").Code)
}

func TestHistory(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(t, "user-1", http.MethodGet, "/api/v1/chat/history", "").Code)

	w := e.do(t, "user-1", http.MethodGet, "/api/v1/chat/history?projectId=missing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCatalog(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, "user-1", http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hero"`)
}
