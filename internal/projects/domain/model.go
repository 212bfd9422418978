package domain

import (
	"time"

	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusCreated           Status = "CREATED"
	StatusDiscovered        Status = "DISCOVERED"
	StatusContentGenerating Status = "CONTENT_GENERATING"
	StatusContentGenerated  Status = "CONTENT_GENERATED"
	StatusFailed            Status = "FAILED"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ResolutionSpecVersion tags the persisted resolution spec shape.
const ResolutionSpecVersion = "v2"

// Project is one user's website-build session.
type Project struct {
	ID                    string            `json:"id"`
	UserID                string            `json:"userId"`
	Prompt                string            `json:"prompt"`
	Status                Status            `json:"status"`
	IntentSpec            *discovery.Output `json:"intentSpec,omitempty"`
	IntentSpecVersion     *string           `json:"intentSpecVersion,omitempty"`
	ResolutionSpec        *ResolutionSpec   `json:"resolutionSpec,omitempty"`
	ResolutionSpecVersion *string           `json:"resolutionSpecVersion,omitempty"`
	Name                  *string           `json:"name,omitempty"`
	Description           *string           `json:"description,omitempty"`
	StyleHints            *StyleHints       `json:"styleHints,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// HasDiscovery reports whether an intent spec has been stored.
func (p *Project) HasDiscovery() bool { return p.IntentSpec != nil }

// Resolved reports whether the resolution spec has been written.
func (p *Project) Resolved() bool { return p.ResolutionSpec != nil }

// ChatMessage is one append-only conversation turn.
type ChatMessage struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectComponent is one resolved component instance on a project.
type ProjectComponent struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"projectId"`
	ComponentKey string         `json:"componentKey"`
	Decisions    map[string]any `json:"decisions"`
	Position     int            `json:"position"`
	Selected     bool           `json:"selected"`
	Content      map[string]any `json:"content,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ResolutionSpec is the frozen snapshot written on a project once its
// components are resolved.
type ResolutionSpec struct {
	Version    string              `json:"version"`
	ResolvedAt time.Time           `json:"resolvedAt"`
	Voice      *string             `json:"voice,omitempty"`
	Persona    *string             `json:"persona,omitempty"`
	Components []ResolvedComponent `json:"components"`
}

type ResolvedComponent struct {
	ComponentKey   string          `json:"componentKey"`
	Decisions      map[string]any  `json:"decisions"`
	ContentSignals *ContentSignals `json:"contentSignals,omitempty"`
}

// ContentSignals are the hints discovery leaves for content generation.
type ContentSignals struct {
	ContentGoal string `json:"contentGoal,omitempty"`
	CtaIntent   string `json:"ctaIntent,omitempty"`
}

// Map returns the signals as a component meta map, or nil when empty.
func (s *ContentSignals) Map() map[string]any {
	if s == nil {
		return nil
	}
	m := map[string]any{}
	if s.ContentGoal != "" {
		m["contentGoal"] = s.ContentGoal
	}
	if s.CtaIntent != "" {
		m["ctaIntent"] = s.CtaIntent
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// StyleHints are the global colors proposed during content generation.
type StyleHints struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

// Selection is one user-chosen component configuration.
type Selection struct {
	Key       string         `json:"key"`
	Decisions map[string]any `json:"decisions"`
}
