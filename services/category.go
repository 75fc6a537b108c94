package services

import (
	"strings"

	"golang.org/x/text/cases"

	"projectsync/config"
	"projectsync/standards"
)

// CategoryMapper resolves a free-text BOQ category to an activity. An exact
// match in the configured table wins, then the first keyword rule whose
// keyword appears in the category, then the configured default.
type CategoryMapper struct {
	exact    map[string]standards.Activity
	rules    []config.KeywordRule
	fallback standards.Activity
}

func NewCategoryMapper(cfg config.Config) *CategoryMapper {
	m := &CategoryMapper{
		exact:    make(map[string]standards.Activity, len(cfg.Categories)),
		fallback: cfg.DefaultActivity,
	}
	for name, activity := range cfg.Categories {
		m.exact[normalizeCategory(name)] = activity
	}
	for _, rule := range cfg.KeywordRules {
		folded := config.KeywordRule{Activity: rule.Activity}
		for _, kw := range rule.Keywords {
			if kw = normalizeCategory(kw); kw != "" {
				folded.Keywords = append(folded.Keywords, kw)
			}
		}
		m.rules = append(m.rules, folded)
	}
	return m
}

// Map returns the activity for category. fallback is true when neither the
// table nor a keyword matched.
func (m *CategoryMapper) Map(category string) (activity standards.Activity, fallback bool) {
	key := normalizeCategory(category)
	if key == "" {
		return m.fallback, true
	}
	if a, ok := m.exact[key]; ok {
		return a, false
	}
	if a := standards.Activity(key); a.IsKnown() {
		return a, false
	}
	for _, rule := range m.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(key, kw) {
				return rule.Activity, false
			}
		}
	}
	return m.fallback, true
}

// normalizeCategory case-folds and collapses whitespace. Casers are not safe
// for concurrent use, so one is built per call.
func normalizeCategory(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
