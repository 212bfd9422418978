package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/catalog"
	"github.com/drafte-app/drafte-backend/internal/decisions"
	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/projects/events"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

// ResolutionResult reports the outcome of turning an intent spec into
// resolved components. Validation failures are results, not errors.
type ResolutionResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ComponentCount int    `json:"componentCount"`
}

// ResolutionService validates discovery proposals and writes the frozen
// resolution spec together with the project's components.
type ResolutionService struct {
	store  ProjectStore
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewResolutionService(store ProjectStore, pub events.Publisher, log *zap.Logger) *ResolutionService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ResolutionService{store: store, events: pub, log: log, now: time.Now}
}

// CreateResolutionSpec resolves out for the project. out may be nil to use the
// stored intent spec. Calling it again on a resolved project is a successful
// no-op.
func (s *ResolutionService) CreateResolutionSpec(ctx context.Context, projectID string, out *discovery.Output) (*ResolutionResult, error) {
	log := s.log.With(zap.String("project_id", projectID))

	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &ResolutionResult{Message: "project not found"}, nil
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if !p.HasDiscovery() {
		return &ResolutionResult{Message: "project has no intent spec"}, nil
	}
	if p.Resolved() {
		log.Info("resolution spec already exists")
		return &ResolutionResult{
			Success:        true,
			Message:        "resolution spec already exists",
			ComponentCount: len(p.ResolutionSpec.Components),
		}, nil
	}
	if out == nil {
		out = p.IntentSpec
	}

	spec, comps, issues := s.resolve(out)
	if len(issues) > 0 {
		log.Warn("resolution validation failed", zap.Strings("issues", issues))
		return &ResolutionResult{Message: "invalid component proposals: " + strings.Join(issues, "; ")}, nil
	}

	created, err := s.store.CreateResolution(ctx, projectID, spec, comps)
	if err != nil {
		return nil, fmt.Errorf("create resolution: %w", err)
	}
	if !created {
		log.Info("resolution spec written concurrently")
		return &ResolutionResult{Success: true, Message: "resolution spec already exists", ComponentCount: len(comps)}, nil
	}

	s.events.StatusChanged(ctx, projectID, domain.StatusContentGenerating)
	log.Info("resolution spec created", zap.Int("components", len(comps)))
	return &ResolutionResult{Success: true, Message: "resolution spec created", ComponentCount: len(comps)}, nil
}

// resolve validates every component before anything is built for writing.
func (s *ResolutionService) resolve(out *discovery.Output) (*domain.ResolutionSpec, []domain.ProjectComponent, []string) {
	v := decisions.New()
	var issues []string

	spec := &domain.ResolutionSpec{
		Version:    domain.ResolutionSpecVersion,
		ResolvedAt: s.now().UTC(),
		Voice:      out.Voice,
		Persona:    out.Persona,
		Components: make([]domain.ResolvedComponent, 0, len(out.Components)),
	}
	comps := make([]domain.ProjectComponent, 0, len(out.Components))

	for i, c := range out.Components {
		res := v.Validate(decisions.ComponentInput{
			Name:        c.Name,
			Type:        c.Type,
			Proposal:    c.Proposal,
			IntentHint:  discovery.Str(c.IntentHint),
			Reasoning:   discovery.Str(c.Reasoning),
			ContentGoal: discovery.Str(c.ContentGoal),
			CtaIntent:   discovery.Str(c.CtaIntent),
		})
		if !res.Valid {
			for _, e := range res.Errors {
				issues = append(issues, fmt.Sprintf("%s: %s", c.Name, e))
			}
			continue
		}

		var signals *domain.ContentSignals
		if c.Type == catalog.TypeHero && (c.ContentGoal != nil || c.CtaIntent != nil) {
			signals = &domain.ContentSignals{
				ContentGoal: discovery.Str(c.ContentGoal),
				CtaIntent:   discovery.Str(c.CtaIntent),
			}
		}
		spec.Components = append(spec.Components, domain.ResolvedComponent{
			ComponentKey:   res.ComponentKey,
			Decisions:      res.Decisions,
			ContentSignals: signals,
		})
		comps = append(comps, domain.ProjectComponent{
			ComponentKey: res.ComponentKey,
			Decisions:    res.Decisions,
			Position:     i,
			Selected:     true,
			Meta:         signals.Map(),
		})
	}
	return spec, comps, issues
}

// ApplySelections replaces the project's components with the user's chosen
// configurations, in the given order.
func (s *ResolutionService) ApplySelections(ctx context.Context, userID, projectID string, selections []domain.Selection) error {
	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return domain.ErrNotFound
	}
	if !p.HasDiscovery() {
		return domain.ErrNoDiscovery
	}
	if len(selections) == 0 {
		return fmt.Errorf("%w: no selections", domain.ErrInvalidSelection)
	}

	current, err := s.store.ListComponents(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list components: %w", err)
	}
	metaByKey := make(map[string]map[string]any, len(current))
	for _, c := range current {
		metaByKey[c.ComponentKey] = c.Meta
	}

	v := decisions.New()
	seen := make(map[string]bool, len(selections))
	comps := make([]domain.ProjectComponent, 0, len(selections))
	for i, sel := range selections {
		if sel.Key == "" {
			return fmt.Errorf("%w: selection %d has no key", domain.ErrInvalidSelection, i)
		}
		if seen[sel.Key] {
			return fmt.Errorf("%w: duplicate key %q", domain.ErrInvalidSelection, sel.Key)
		}
		seen[sel.Key] = true

		res := v.ValidateMap(sel.Key, catalog.BaseType(sel.Key), sel.Decisions)
		if !res.Valid {
			return fmt.Errorf("%w: %s: %s", domain.ErrInvalidSelection, sel.Key, strings.Join(res.Errors, "; "))
		}
		comps = append(comps, domain.ProjectComponent{
			ComponentKey: sel.Key,
			Decisions:    res.Decisions,
			Position:     i,
			Selected:     true,
			Meta:         metaByKey[sel.Key],
		})
	}

	if err := s.store.ReplaceComponents(ctx, projectID, comps, domain.StatusContentGenerated); err != nil {
		return fmt.Errorf("replace components: %w", err)
	}
	s.events.StatusChanged(ctx, projectID, domain.StatusContentGenerated)
	return nil
}
