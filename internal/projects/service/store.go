package service

import (
	"context"
	"time"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

// ProjectStore is implemented by repository.ProjectRepository.
type ProjectStore interface {
	Create(ctx context.Context, id, userID, prompt string) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Project, error)
	ListUnresolved(ctx context.Context, cutoff time.Time, limit int) ([]domain.Project, error)
	SoftDelete(ctx context.Context, userID, id string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	SaveIntentSpec(ctx context.Context, id string, out *discovery.Output, name, description string) (bool, error)
	CreateResolution(ctx context.Context, id string, spec *domain.ResolutionSpec, comps []domain.ProjectComponent) (bool, error)
	ReplaceComponents(ctx context.Context, id string, comps []domain.ProjectComponent, status domain.Status) error
	ListComponents(ctx context.Context, projectID string) ([]domain.ProjectComponent, error)
	SaveContent(ctx context.Context, projectID string, content map[string]map[string]any, hints *domain.StyleHints) error
}

// MessageStore is implemented by repository.MessageRepository.
type MessageStore interface {
	Append(ctx context.Context, projectID, role, content string) (*domain.ChatMessage, error)
	List(ctx context.Context, projectID string) ([]domain.ChatMessage, error)
}
