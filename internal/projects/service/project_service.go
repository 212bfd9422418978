package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/variations"
)

// ProjectService handles project ownership and the read side of projects.
type ProjectService struct {
	projects ProjectStore
	messages MessageStore
}

func NewProjectService(projects ProjectStore, messages MessageStore) *ProjectService {
	return &ProjectService{projects: projects, messages: messages}
}

// ProjectDetail is a project together with its ordered components.
type ProjectDetail struct {
	*domain.Project
	Components []domain.ProjectComponent `json:"components"`
}

// ComponentVariations lists the alternatives offered for one resolved component.
type ComponentVariations struct {
	ComponentKey string              `json:"componentKey"`
	Options      []variations.Option `json:"options"`
}

func (s *ProjectService) Create(ctx context.Context, userID, prompt string) (*domain.Project, error) {
	return s.projects.Create(ctx, "", userID, strings.TrimSpace(prompt))
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// Owned returns the project when it belongs to userID. Projects of other users
// are reported as not found.
func (s *ProjectService) Owned(ctx context.Context, userID, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*ProjectDetail, error) {
	p, err := s.Owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	comps, err := s.projects.ListComponents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return &ProjectDetail{Project: p, Components: comps}, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	ok, err := s.projects.SoftDelete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// History returns the project's messages oldest first. A project that does
// not exist yet has an empty history.
func (s *ProjectService) History(ctx context.Context, userID, projectID string) ([]domain.ChatMessage, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return []domain.ChatMessage{}, nil
	}
	p, err := s.projects.Get(ctx, projectID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return []domain.ChatMessage{}, nil
	case err != nil:
		return nil, err
	case p.UserID != userID:
		return nil, domain.ErrForbidden
	}
	return s.messages.List(ctx, projectID)
}

// EnsureForChat returns the project a chat turn runs against. An empty runID
// starts a new project; an unknown runID creates the project under that id.
func (s *ProjectService) EnsureForChat(ctx context.Context, userID, runID, input string) (*domain.Project, error) {
	if runID == "" {
		return s.projects.Create(ctx, uuid.NewString(), userID, input)
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, domain.ErrNotFound
	}

	p, err := s.projects.Get(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		p, err = s.projects.Create(ctx, runID, userID, input)
		if errors.Is(err, domain.ErrProjectExists) {
			// created by a concurrent first turn, or soft-deleted
			p, err = s.projects.Get(ctx, runID)
		}
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// Variations derives the alternatives for each of the project's components.
func (s *ProjectService) Variations(ctx context.Context, userID, id string) ([]ComponentVariations, error) {
	p, err := s.Owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !p.HasDiscovery() {
		return nil, domain.ErrNoDiscovery
	}
	comps, err := s.projects.ListComponents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	out := make([]ComponentVariations, 0, len(comps))
	for _, c := range comps {
		opts, err := variations.ForComponent(c.ComponentKey, c.Decisions)
		if err != nil {
			return nil, err
		}
		out = append(out, ComponentVariations{ComponentKey: c.ComponentKey, Options: opts})
	}
	return out, nil
}
