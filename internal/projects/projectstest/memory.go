// Package projectstest provides an in-memory project store for tests.
package projectstest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

// Store mirrors the repository semantics over maps. The zero value is not
// usable; call New.
type Store struct {
	mu         sync.Mutex
	projects   map[string]*domain.Project
	deleted    map[string]bool
	components map[string][]domain.ProjectComponent
	messages   map[string][]domain.ChatMessage

	// counts successful CreateResolution writes
	Resolutions int
	// FailCreateResolution makes the next CreateResolution return this error.
	FailCreateResolution error
}

func New() *Store {
	return &Store{
		projects:   map[string]*domain.Project{},
		deleted:    map[string]bool{},
		components: map[string][]domain.ProjectComponent{},
		messages:   map[string][]domain.ChatMessage{},
	}
}

func clone(p *domain.Project) *domain.Project {
	cp := *p
	return &cp
}

func (s *Store) Create(_ context.Context, id, userID, prompt string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := s.projects[id]; ok {
		return nil, domain.ErrProjectExists
	}
	now := time.Now()
	p := &domain.Project{ID: id, UserID: userID, Prompt: prompt, Status: domain.StatusCreated, CreatedAt: now, UpdatedAt: now}
	s.projects[id] = p
	return clone(p), nil
}

// Put stores p as is, for seeding tests.
func (s *Store) Put(p *domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = clone(p)
}

func (s *Store) get(id string) (*domain.Project, error) {
	p, ok := s.projects[id]
	if !ok || s.deleted[id] {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return clone(p), nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Project
	for id, p := range s.projects {
		if p.UserID == userID && !s.deleted[id] {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListUnresolved(_ context.Context, cutoff time.Time, limit int) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Project
	for id, p := range s.projects {
		if s.deleted[id] || p.Status != domain.StatusDiscovered || p.IntentSpec == nil || p.ResolutionSpec != nil {
			continue
		}
		if p.UpdatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SoftDelete(_ context.Context, userID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil || p.UserID != userID {
		return false, nil
	}
	s.deleted[id] = true
	return true, nil
}

func (s *Store) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil {
		return err
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SaveIntentSpec(_ context.Context, id string, out *discovery.Output, name, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil {
		return false, err
	}
	if p.ResolutionSpec != nil {
		return false, nil
	}
	p.IntentSpec = out
	v := out.Version
	p.IntentSpecVersion = &v
	p.Status = domain.StatusDiscovered
	if p.Name == nil && name != "" {
		p.Name = &name
	}
	if p.Description == nil && description != "" {
		p.Description = &description
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (s *Store) CreateResolution(_ context.Context, id string, spec *domain.ResolutionSpec, comps []domain.ProjectComponent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailCreateResolution; err != nil {
		s.FailCreateResolution = nil
		return false, err
	}
	p, err := s.get(id)
	if err != nil {
		return false, nil
	}
	if p.ResolutionSpec != nil {
		return false, nil
	}
	p.ResolutionSpec = spec
	v := spec.Version
	p.ResolutionSpecVersion = &v
	p.Status = domain.StatusContentGenerating
	p.UpdatedAt = time.Now()
	s.components[id] = withIDs(id, comps)
	s.Resolutions++
	return true, nil
}

func (s *Store) ReplaceComponents(_ context.Context, id string, comps []domain.ProjectComponent, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil {
		return err
	}
	s.components[id] = withIDs(id, comps)
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func withIDs(projectID string, comps []domain.ProjectComponent) []domain.ProjectComponent {
	out := slices.Clone(comps)
	now := time.Now()
	for i := range out {
		out[i].ID = uuid.NewString()
		out[i].ProjectID = projectID
		out[i].CreatedAt, out[i].UpdatedAt = now, now
	}
	return out
}

func (s *Store) ListComponents(_ context.Context, projectID string) ([]domain.ProjectComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.components[projectID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Store) SaveContent(_ context.Context, projectID string, content map[string]map[string]any, hints *domain.StyleHints) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(projectID)
	if err != nil {
		return err
	}
	comps := s.components[projectID]
	for i := range comps {
		if c, ok := content[comps[i].ComponentKey]; ok {
			comps[i].Content = c
		}
	}
	if hints != nil {
		p.StyleHints = hints
	}
	p.Status = domain.StatusContentGenerated
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) Append(_ context.Context, projectID, role, content string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	m := domain.ChatMessage{ID: uuid.NewString(), ProjectID: projectID, Role: role, Content: content, CreatedAt: time.Now()}
	s.messages[projectID] = append(s.messages[projectID], m)
	return &m, nil
}

func (s *Store) List(_ context.Context, projectID string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages[projectID]), nil
}
