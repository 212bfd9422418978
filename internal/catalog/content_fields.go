package catalog

import "go.uber.org/zap"

// ActiveContentFields returns the content fields a component renders given its
// decisions, in schema order. Unknown components yield no fields.
func ActiveContentFields(componentKey string, decisions map[string]any) []string {
	t := BaseType(componentKey)
	m, ok := Lookup(t)
	if !ok {
		zap.L().Warn("no metadata for component", zap.String("component_key", componentKey))
		return []string{}
	}

	out := make([]string, 0, len(m.ContentSchema))
	for _, f := range m.ContentSchema {
		if fieldActive(t, f.Name, decisions) {
			out = append(out, f.Name)
		}
	}
	return out
}

func fieldActive(t ComponentType, field string, d map[string]any) bool {
	switch t {
	case TypeHero:
		switch field {
		case "image":
			return d["layout"] == "split" && d["alignment"] != "center"
		case "ctaPrimary":
			return d["cta"] != "none"
		case "ctaSecondary":
			return d["cta"] == "dual"
		}
	case TypeFooter:
		switch field {
		case "links":
			return d["layout"] != "text"
		case "copyright":
			show, isBool := d["showCopyright"].(bool)
			return !isBool || show
		}
	}
	return true
}
