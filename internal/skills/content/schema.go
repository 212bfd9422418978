package content

import (
	"errors"
	"fmt"

	"github.com/drafte-app/drafte-backend/internal/catalog"
	"github.com/drafte-app/drafte-backend/internal/projects/domain"
)

const Version = "content_v1"

var ErrInvalidContent = errors.New("invalid content output")

type Output struct {
	Version    string             `json:"version"`
	Components []ComponentContent `json:"components"`
	Global     *domain.StyleHints `json:"global,omitempty"`
}

type ComponentContent struct {
	ComponentKey string         `json:"componentKey"`
	Content      map[string]any `json:"content"`
}

// Requirement tells the model which fields to write for one component.
type Requirement struct {
	ComponentKey   string         `json:"componentKey"`
	ActiveFields   []string       `json:"activeFields"`
	Decisions      map[string]any `json:"decisions"`
	ContentSignals map[string]any `json:"contentSignals,omitempty"`
}

func requirementsFor(comps []domain.ProjectComponent) []Requirement {
	reqs := make([]Requirement, 0, len(comps))
	for _, c := range comps {
		reqs = append(reqs, Requirement{
			ComponentKey:   c.ComponentKey,
			ActiveFields:   catalog.ActiveContentFields(c.ComponentKey, c.Decisions),
			Decisions:      c.Decisions,
			ContentSignals: c.Meta,
		})
	}
	return reqs
}

// sanitize checks out against the requirements. Fields outside a component's
// active set are removed and reported in stripped; everything else that does
// not fit is an error wrapping ErrInvalidContent.
func sanitize(out *Output, reqs []Requirement) (stripped []string, err error) {
	if out.Version != Version {
		return nil, fmt.Errorf("%w: version %q, expected %s", ErrInvalidContent, out.Version, Version)
	}
	if len(out.Components) == 0 {
		return nil, fmt.Errorf("%w: no components", ErrInvalidContent)
	}

	byKey := make(map[string]Requirement, len(reqs))
	for _, r := range reqs {
		byKey[r.ComponentKey] = r
	}
	got := make(map[string]bool, len(out.Components))

	for i := range out.Components {
		cc := &out.Components[i]
		req, ok := byKey[cc.ComponentKey]
		if !ok {
			return nil, fmt.Errorf("%w: unknown component %q", ErrInvalidContent, cc.ComponentKey)
		}
		if got[cc.ComponentKey] {
			return nil, fmt.Errorf("%w: component %q listed twice", ErrInvalidContent, cc.ComponentKey)
		}
		got[cc.ComponentKey] = true
		if cc.Content == nil {
			cc.Content = map[string]any{}
		}

		active := make(map[string]bool, len(req.ActiveFields))
		for _, f := range req.ActiveFields {
			active[f] = true
		}
		for name := range cc.Content {
			if !active[name] {
				delete(cc.Content, name)
				stripped = append(stripped, cc.ComponentKey+"."+name)
			}
		}
		if err := checkFields(cc.ComponentKey, req.ActiveFields, cc.Content); err != nil {
			return nil, err
		}
	}

	for _, r := range reqs {
		if got[r.ComponentKey] {
			continue
		}
		if err := checkFields(r.ComponentKey, r.ActiveFields, map[string]any{}); err != nil {
			return nil, err
		}
	}
	return stripped, nil
}

func checkFields(key string, active []string, content map[string]any) error {
	meta, ok := catalog.Lookup(catalog.BaseType(key))
	if !ok {
		return fmt.Errorf("%w: no metadata for %q", ErrInvalidContent, key)
	}
	for _, name := range active {
		f, _ := meta.Field(name)
		v, present := content[name]
		if !present || v == nil {
			if f.Required {
				return fmt.Errorf("%w: %s.%s is required", ErrInvalidContent, key, name)
			}
			continue
		}
		switch f.Kind {
		case catalog.FieldString:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: %s.%s must be a string", ErrInvalidContent, key, name)
			}
		case catalog.FieldArray:
			items, ok := v.([]any)
			if !ok {
				return fmt.Errorf("%w: %s.%s must be an array", ErrInvalidContent, key, name)
			}
			if f.MinItems > 0 && len(items) < f.MinItems {
				return fmt.Errorf("%w: %s.%s needs at least %d items", ErrInvalidContent, key, name, f.MinItems)
			}
			if f.MaxItems > 0 && len(items) > f.MaxItems {
				return fmt.Errorf("%w: %s.%s allows at most %d items", ErrInvalidContent, key, name, f.MaxItems)
			}
		}
	}
	return nil
}
