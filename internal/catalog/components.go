package catalog

var alignmentAxis = func(def string, descs map[string]string) Axis {
	return Axis{
		Name:         "alignment",
		Kind:         AxisEnum,
		Options:      []string{"left", "center", "right"},
		Default:      def,
		Label:        "Alignment",
		Descriptions: descs,
	}
}

var densityAxis = Axis{
	Name:    "density",
	Kind:    AxisEnum,
	Options: []string{"compact", "comfortable"},
	Default: "comfortable",
	Label:   "Density",
	Descriptions: map[string]string{
		"compact":     "Tighter spacing",
		"comfortable": "More breathing room",
	},
}

var navigationMeta = Meta{
	ID:          TypeNavigation,
	Name:        "Navigation",
	Category:    "navigation",
	Description: "Primary site navigation with responsive layout and optional CTA",
	Tags:        []string{"navigation", "navbar", "header", "menu", "responsive", "mobile"},
	Intents:     []string{"marketing", "portfolio", "product", "dashboard"},
	UseCases:    []string{"Main site navigation", "Landing page header", "Product or dashboard header"},
	DecisionSchema: []Axis{
		alignmentAxis("left", map[string]string{
			"left":   "Navigation items aligned to the left",
			"center": "Navigation items centered",
			"right":  "Navigation items aligned to the right",
		}),
		densityAxis,
		{
			Name:    "background",
			Kind:    AxisEnum,
			Options: []string{"solid", "transparent", "blur"},
			Default: "solid",
			Label:   "Background",
			Descriptions: map[string]string{
				"solid":       "Solid background with border/shadow",
				"transparent": "Transparent background",
				"blur":        "Glass / backdrop blur",
			},
		},
	},
	ContentSchema: []Field{
		{Name: "primaryLinks", Kind: FieldArray, Required: true, Description: "Primary navigation links", MinItems: 1, MaxItems: 8},
	},
	Version: "2.0.0",
}

var heroMeta = Meta{
	ID:          TypeHero,
	Name:        "Hero",
	Category:    "hero",
	Description: "Primary hero section for landing pages, portfolios, and product pages",
	Tags:        []string{"hero", "landing", "portfolio", "marketing", "header", "introduction", "responsive"},
	Intents:     []string{"portfolio", "marketing", "product"},
	UseCases:    []string{"Portfolio introduction", "Landing page hero", "Product overview section", "Personal brand showcase"},
	DecisionSchema: []Axis{
		alignmentAxis("center", map[string]string{
			"left":   "Text on left, image on right (split layout only)",
			"center": "Centered content (text-only, no image)",
			"right":  "Text on right, image on left (split layout only)",
		}),
		{
			Name:    "layout",
			Kind:    AxisEnum,
			Options: []string{"text-only", "split"},
			Default: "text-only",
			Label:   "Layout",
			Descriptions: map[string]string{
				"text-only": "Text-focused hero without visuals",
				"split":     "Text with image beside it (left/right alignment only)",
			},
		},
		densityAxis,
		{
			Name:    "cta",
			Kind:    AxisEnum,
			Options: []string{"none", "single", "dual"},
			Default: "single",
			Label:   "Call To Action",
			Descriptions: map[string]string{
				"none":   "No call-to-action",
				"single": "Single primary CTA",
				"dual":   "Primary and secondary CTAs",
			},
		},
		{
			Name:    "background",
			Kind:    AxisEnum,
			Options: []string{"solid", "transparent"},
			Default: "solid",
			Label:   "Background",
		},
	},
	ContentSchema: []Field{
		{Name: "title", Kind: FieldString, Required: true, Description: "Primary hero headline"},
		{Name: "subtitle", Kind: FieldString, Description: "Supporting description text"},
		{Name: "image", Kind: FieldString, Description: "Hero image (used in split layout with left/right alignment)"},
		{Name: "ctaPrimary", Kind: FieldString, Description: "Primary call-to-action label"},
		{Name: "ctaSecondary", Kind: FieldString, Description: "Secondary call-to-action label (used when CTA is dual)"},
	},
	Version: "2.1.0",
}

var footerMeta = Meta{
	ID:          TypeFooter,
	Name:        "Footer",
	Category:    "footer",
	Description: "Site footer with optional link list and copyright line",
	Tags:        []string{"footer", "links", "copyright", "responsive"},
	Intents:     []string{"marketing", "portfolio", "product"},
	UseCases:    []string{"Site footer", "Legal and contact links"},
	DecisionSchema: []Axis{
		alignmentAxis("center", nil),
		{
			Name:    "layout",
			Kind:    AxisEnum,
			Options: []string{"text", "links"},
			Default: "links",
			Label:   "Layout",
			Descriptions: map[string]string{
				"text":  "Single line of text",
				"links": "Row of footer links",
			},
		},
		densityAxis,
		{
			Name:    "showCopyright",
			Kind:    AxisBoolean,
			Default: true,
			Label:   "Copyright",
		},
	},
	ContentSchema: []Field{
		{Name: "links", Kind: FieldArray, Description: "Footer links"},
		{Name: "copyright", Kind: FieldString, Description: "Copyright line"},
	},
	Version: "1.0.0",
}
