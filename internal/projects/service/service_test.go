package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/projects/projectstest"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery/discoverytest"
)

type recordingPublisher struct {
	statuses []domain.Status
}

func (r *recordingPublisher) StatusChanged(_ context.Context, _ string, status domain.Status) {
	r.statuses = append(r.statuses, status)
}

func photographer(t *testing.T) *discovery.Output {
	t.Helper()
	out, err := discovery.Parse(discoverytest.PhotographerJSON)
	require.NoError(t, err)
	return out
}

func discoveredProject(t *testing.T, store *projectstest.Store, userID string) *domain.Project {
	t.Helper()
	p, err := store.Create(context.Background(), "", userID, "Build me a portfolio site for a photographer")
	require.NoError(t, err)
	_, err = store.SaveIntentSpec(context.Background(), p.ID, photographer(t), "Portfolio", "")
	require.NoError(t, err)
	return p
}

func TestCreateResolutionSpec(t *testing.T) {
	store := projectstest.New()
	pub := &recordingPublisher{}
	svc := NewResolutionService(store, pub, nil)
	p := discoveredProject(t, store, "user-1")

	res, err := svc.CreateResolutionSpec(context.Background(), p.ID, photographer(t))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.ComponentCount)

	got, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContentGenerating, got.Status)
	require.NotNil(t, got.ResolutionSpec)
	assert.Equal(t, "v2", got.ResolutionSpec.Version)
	require.NotNil(t, got.ResolutionSpec.Voice)
	assert.Equal(t, "warm-personal", *got.ResolutionSpec.Voice)

	comps, err := store.ListComponents(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, comps, 3)
	assert.Equal(t, []string{"navigation", "hero", "footer"},
		[]string{comps[0].ComponentKey, comps[1].ComponentKey, comps[2].ComponentKey})
	for i, c := range comps {
		assert.Equal(t, i, c.Position)
		assert.True(t, c.Selected)
	}
	assert.Equal(t, "showcase-work", comps[1].Meta["contentGoal"])
	assert.Equal(t, "view-work", comps[1].Meta["ctaIntent"])
	assert.Nil(t, comps[0].Meta)

	hero := got.ResolutionSpec.Components[1]
	require.NotNil(t, hero.ContentSignals)
	assert.Equal(t, "showcase-work", hero.ContentSignals.ContentGoal)
	assert.Equal(t, []domain.Status{domain.StatusContentGenerating}, pub.statuses)
}

func TestCreateResolutionSpec_Idempotent(t *testing.T) {
	store := projectstest.New()
	svc := NewResolutionService(store, nil, nil)
	p := discoveredProject(t, store, "user-1")

	first, err := svc.CreateResolutionSpec(context.Background(), p.ID, nil)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := svc.CreateResolutionSpec(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, "resolution spec already exists", second.Message)
	assert.Equal(t, 3, second.ComponentCount)

	assert.Equal(t, 1, store.Resolutions)
	comps, _ := store.ListComponents(context.Background(), p.ID)
	assert.Len(t, comps, 3)
}

func TestCreateResolutionSpec_Failures(t *testing.T) {
	store := projectstest.New()
	svc := NewResolutionService(store, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateResolutionSpec(ctx, uuid.NewString(), nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "project not found", res.Message)

	bare, err := store.Create(ctx, "", "user-1", "hi")
	require.NoError(t, err)
	res, err = svc.CreateResolutionSpec(ctx, bare.ID, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no intent spec")

	p := discoveredProject(t, store, "user-1")
	broken := photographer(t)
	broken.Components[2].Proposal = nil
	res, err = svc.CreateResolutionSpec(ctx, p.ID, broken)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Footer: no proposal provided")
	assert.Zero(t, store.Resolutions, "nothing written on validation failure")
	comps, _ := store.ListComponents(ctx, p.ID)
	assert.Empty(t, comps)

	store.FailCreateResolution = errors.New("connection reset")
	_, err = svc.CreateResolutionSpec(ctx, p.ID, nil)
	assert.ErrorContains(t, err, "connection reset")
}

func TestCreateResolutionSpec_FreshKeysPerRun(t *testing.T) {
	store := projectstest.New()
	svc := NewResolutionService(store, nil, nil)

	for range 2 {
		p := discoveredProject(t, store, "user-1")
		_, err := svc.CreateResolutionSpec(context.Background(), p.ID, nil)
		require.NoError(t, err)
		comps, _ := store.ListComponents(context.Background(), p.ID)
		assert.Equal(t, "hero", comps[1].ComponentKey)
	}
}

func TestApplySelections(t *testing.T) {
	store := projectstest.New()
	pub := &recordingPublisher{}
	svc := NewResolutionService(store, pub, nil)
	ctx := context.Background()
	p := discoveredProject(t, store, "user-1")
	_, err := svc.CreateResolutionSpec(ctx, p.ID, nil)
	require.NoError(t, err)

	sels := []domain.Selection{
		{Key: "navigation", Decisions: map[string]any{"alignment": "center", "density": "compact", "background": "blur"}},
		{Key: "hero", Decisions: map[string]any{"alignment": "center", "layout": "text-only", "density": "compact", "cta": "dual", "background": "transparent"}},
		{Key: "footer", Decisions: map[string]any{"alignment": "left", "layout": "text", "density": "comfortable", "showCopyright": false}},
	}
	require.NoError(t, svc.ApplySelections(ctx, "user-1", p.ID, sels))

	got, _ := store.Get(ctx, p.ID)
	assert.Equal(t, domain.StatusContentGenerated, got.Status)
	comps, _ := store.ListComponents(ctx, p.ID)
	require.Len(t, comps, 3)
	assert.Equal(t, "text-only", comps[1].Decisions["layout"])
	assert.Equal(t, "showcase-work", comps[1].Meta["contentGoal"], "content signals survive a selection")
	assert.Equal(t, domain.StatusContentGenerated, pub.statuses[len(pub.statuses)-1])
}

func TestApplySelections_Rejects(t *testing.T) {
	store := projectstest.New()
	svc := NewResolutionService(store, nil, nil)
	ctx := context.Background()
	p := discoveredProject(t, store, "user-1")

	err := svc.ApplySelections(ctx, "user-2", p.ID, []domain.Selection{{Key: "hero"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.ApplySelections(ctx, "user-1", p.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	err = svc.ApplySelections(ctx, "user-1", p.ID, []domain.Selection{
		{Key: "hero", Decisions: map[string]any{"layout": "diagonal"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	err = svc.ApplySelections(ctx, "user-1", p.ID, []domain.Selection{{Key: "sidebar", Decisions: map[string]any{}}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	nav := map[string]any{"alignment": "left", "density": "compact", "background": "solid"}
	err = svc.ApplySelections(ctx, "user-1", p.ID, []domain.Selection{
		{Key: "navigation", Decisions: nav}, {Key: "navigation", Decisions: nav},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	got, _ := store.Get(ctx, p.ID)
	assert.Equal(t, domain.StatusDiscovered, got.Status, "rejected selections leave the project untouched")
}

func TestProjectService_EnsureForChat(t *testing.T) {
	store := projectstest.New()
	svc := NewProjectService(store, store)
	ctx := context.Background()

	fresh, err := svc.EnsureForChat(ctx, "user-1", "", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, domain.StatusCreated, fresh.Status)

	again, err := svc.EnsureForChat(ctx, "user-1", fresh.ID, "next")
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, again.ID)

	runID := uuid.NewString()
	created, err := svc.EnsureForChat(ctx, "user-1", runID, "hello")
	require.NoError(t, err)
	assert.Equal(t, runID, created.ID)

	_, err = svc.EnsureForChat(ctx, "user-2", fresh.ID, "steal")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.EnsureForChat(ctx, "user-1", "not-a-uuid", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_EnsureForChatDeletedRunID(t *testing.T) {
	store := projectstest.New()
	svc := NewProjectService(store, store)
	ctx := context.Background()

	p, err := svc.EnsureForChat(ctx, "user-1", uuid.NewString(), "hello")
	require.NoError(t, err)
	deleted, err := store.SoftDelete(ctx, "user-1", p.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = svc.EnsureForChat(ctx, "user-1", p.ID, "hello again")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// lateStore hides a project from the first Get, as if another request created
// it between the lookup and the insert.
type lateStore struct {
	*projectstest.Store
	hidden bool
}

func (s *lateStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	if !s.hidden {
		s.hidden = true
		return nil, domain.ErrNotFound
	}
	return s.Store.Get(ctx, id)
}

func TestProjectService_EnsureForChatConcurrentCreate(t *testing.T) {
	mem := projectstest.New()
	ctx := context.Background()
	runID := uuid.NewString()
	_, err := mem.Create(ctx, runID, "user-1", "hello")
	require.NoError(t, err)

	svc := NewProjectService(&lateStore{Store: mem}, mem)
	p, err := svc.EnsureForChat(ctx, "user-1", runID, "hello")
	require.NoError(t, err)
	assert.Equal(t, runID, p.ID)

	svc = NewProjectService(&lateStore{Store: mem}, mem)
	_, err = svc.EnsureForChat(ctx, "user-2", runID, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_OwnershipAndHistory(t *testing.T) {
	store := projectstest.New()
	svc := NewProjectService(store, store)
	ctx := context.Background()

	p, err := svc.Create(ctx, "user-1", "  a bakery site ")
	require.NoError(t, err)
	assert.Equal(t, "a bakery site", p.Prompt)

	_, err = store.Append(ctx, p.ID, domain.RoleUser, "hi")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = store.Append(ctx, p.ID, domain.RoleAssistant, "hello")
	require.NoError(t, err)

	msgs, err := svc.History(ctx, "user-1", p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)

	_, err = svc.History(ctx, "user-2", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := svc.History(ctx, "user-1", uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.Get(ctx, "user-2", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctx, "user-2", p.ID), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "user-1", p.ID))
	_, err = svc.Get(ctx, "user-1", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_Variations(t *testing.T) {
	store := projectstest.New()
	svc := NewProjectService(store, store)
	res := NewResolutionService(store, nil, nil)
	ctx := context.Background()

	bare, _ := store.Create(ctx, "", "user-1", "x")
	_, err := svc.Variations(ctx, "user-1", bare.ID)
	assert.ErrorIs(t, err, domain.ErrNoDiscovery)

	p := discoveredProject(t, store, "user-1")
	_, err = res.CreateResolutionSpec(ctx, p.ID, nil)
	require.NoError(t, err)

	vs, err := svc.Variations(ctx, "user-1", p.ID)
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, "navigation", vs[0].ComponentKey)
	for _, v := range vs {
		require.NotEmpty(t, v.Options)
		assert.True(t, v.Options[0].Recommended)
	}
}
