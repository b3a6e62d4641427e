package search

import (
	"strings"

	"github.com/tair/styleswipe/internal/domain"
)

// BuildQuery joins gender, styles, clothing types, colors and size into one query
func BuildQuery(p *domain.Preference) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(p.Gender)
	for _, s := range p.Styles {
		add(s)
	}
	for _, s := range p.ClothingTypes {
		add(s)
	}
	if p.Colors != nil {
		add(*p.Colors)
	}
	if strings.TrimSpace(p.Size) != "" {
		add("size " + strings.TrimSpace(p.Size))
	}
	return strings.Join(parts, " ")
}
