// Package decisions validates proposed component decisions and assigns each
// component a key that is unique per type within one resolution run.
package decisions

import (
	"errors"
	"fmt"

	"github.com/drafte-app/drafte-backend/internal/catalog"
)

// ComponentInput is one proposed component together with its optional content signals.
type ComponentInput struct {
	Name        string
	Type        catalog.ComponentType
	Proposal    catalog.Decisions
	IntentHint  string
	Reasoning   string
	ContentGoal string
	CtaIntent   string
}

type Result struct {
	Valid        bool
	ComponentKey string
	Decisions    map[string]any
	Errors       []string
}

// Validator is meant to live for exactly one resolution run. The per-type
// counters start empty on New, so keys never collide across projects.
type Validator struct {
	counts map[catalog.ComponentType]int
}

func New() *Validator {
	return &Validator{counts: make(map[catalog.ComponentType]int)}
}

// Reset clears the per-type counters.
func (v *Validator) Reset() {
	clear(v.counts)
}

func (v *Validator) nextKey(t catalog.ComponentType) string {
	n := v.counts[t]
	v.counts[t] = n + 1
	if n == 0 {
		return string(t)
	}
	return fmt.Sprintf("%s_%d", t, n)
}

// Validate checks a typed proposal. The key counter advances even for invalid
// proposals, matching the position the component would have taken.
func (v *Validator) Validate(in ComponentInput) Result {
	if !catalog.IsKnownType(string(in.Type)) {
		return Result{Errors: []string{fmt.Sprintf("unknown component type: %s", in.Type)}}
	}
	key := v.nextKey(in.Type)

	if in.Proposal == nil {
		return Result{Errors: []string{fmt.Sprintf("no proposal provided for %s (%s)", in.Name, in.Type)}}
	}
	if in.Proposal.ComponentType() != in.Type {
		return Result{Errors: []string{fmt.Sprintf("%s proposal supplied for %s (%s)", in.Proposal.ComponentType(), in.Name, in.Type)}}
	}

	decisions := in.Proposal.AsMap()
	if _, err := catalog.ParseDecisions(in.Type, decisions); err != nil {
		return Result{Errors: issues(err)}
	}
	return Result{Valid: true, ComponentKey: key, Decisions: decisions}
}

// ValidateMap checks an untyped decision map, as received from a client
// selection, against the schema of t.
func (v *Validator) ValidateMap(name string, t catalog.ComponentType, raw map[string]any) Result {
	if !catalog.IsKnownType(string(t)) {
		return Result{Errors: []string{fmt.Sprintf("unknown component type: %s", t)}}
	}
	if raw == nil {
		v.nextKey(t)
		return Result{Errors: []string{fmt.Sprintf("no proposal provided for %s (%s)", name, t)}}
	}
	d, err := catalog.ParseDecisions(t, raw)
	if err != nil {
		v.nextKey(t)
		return Result{Errors: issues(err)}
	}
	return v.Validate(ComponentInput{Name: name, Type: t, Proposal: d})
}

func issues(err error) []string {
	var de *catalog.DecisionError
	if errors.As(err, &de) {
		return append([]string(nil), de.Issues...)
	}
	return []string{err.Error()}
}
