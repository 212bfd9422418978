package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/drafte-app/drafte-backend/internal/catalog"
	"github.com/drafte-app/drafte-backend/internal/llm"
)

const (
	Version    = "discovery_v2"
	SinglePage = "single-page"
)

// Output is the intent spec a successful discovery produces. It is persisted
// verbatim on the project.
type Output struct {
	Version    string      `json:"version" validate:"eq=discovery_v2"`
	Intent     string      `json:"intent" validate:"oneof=marketing portfolio product"`
	Theme      string      `json:"theme" validate:"required"`
	Audience   string      `json:"audience" validate:"required"`
	Voice      *string     `json:"voice" validate:"omitempty,oneof=professional-friendly casual-conversational authoritative-expert warm-personal technical-precise"`
	Persona    *string     `json:"persona"`
	Layout     Layout      `json:"layout"`
	Components []Component `json:"components" validate:"dive"`
}

type Layout struct {
	Type string   `json:"type" validate:"eq=single-page"`
	Flow []string `json:"flow" validate:"min=1"`
}

// Component is one proposed UI component. Proposal holds the decision set
// matching Type; decoding dispatches on the "type" key.
type Component struct {
	Type        catalog.ComponentType `json:"type" validate:"oneof=navigation hero footer"`
	Name        string                `json:"name" validate:"required"`
	Purpose     string                `json:"purpose"`
	Required    bool                  `json:"required"`
	Proposal    catalog.Decisions     `json:"proposal" validate:"-"`
	Reasoning   *string               `json:"reasoning"`
	IntentHint  *string               `json:"intentHint"`
	ContentGoal *string               `json:"contentGoal,omitempty" validate:"omitempty,oneof=introduce-developer highlight-product drive-signup build-trust showcase-work"`
	CtaIntent   *string               `json:"ctaIntent,omitempty" validate:"omitempty,oneof=view-work contact hire learn-more get-started"`
}

func (c *Component) UnmarshalJSON(data []byte) error {
	type plain Component
	var aux struct {
		plain
		Proposal json.RawMessage `json:"proposal"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Component(aux.plain)

	if !catalog.IsKnownType(string(c.Type)) {
		return fmt.Errorf("component %q: unknown type %q (expected navigation, hero or footer)", c.Name, c.Type)
	}
	if len(aux.Proposal) == 0 || string(aux.Proposal) == "null" {
		c.Proposal = nil
		return nil
	}
	p, err := catalog.DecodeDecisions(c.Type, aux.Proposal)
	if err != nil {
		return fmt.Errorf("component %q: %w", c.Name, err)
	}
	c.Proposal = p
	return nil
}

// Str returns the value of an optional field, or "" when unset.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode parses raw model output and checks it against the structural schema.
func Decode(raw string) (*Output, error) {
	var out Output
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	if err := validate.Struct(&out); err != nil {
		return nil, schemaError(err)
	}
	return &out, nil
}

func schemaError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var missing, invalid []string
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Output.")
		switch fe.Tag() {
		case "required":
			missing = append(missing, field)
		case "oneof":
			invalid = append(invalid, fmt.Sprintf("%s (got %v, expected one of %s)", field, fe.Value(), fe.Param()))
		case "eq":
			invalid = append(invalid, fmt.Sprintf("%s (got %v, expected %s)", field, fe.Value(), fe.Param()))
		default:
			invalid = append(invalid, fmt.Sprintf("%s (failed %s%s)", field, fe.Tag(), withParam(fe.Param())))
		}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing fields: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "Invalid fields: "+strings.Join(invalid, ", "))
	}
	return errors.New(strings.Join(parts, ". "))
}

func withParam(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
