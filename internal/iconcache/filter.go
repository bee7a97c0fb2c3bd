package iconcache

import (
	"strings"
	"unicode"

	"dirdirector/internal/models"
)

// Filter returns the entries of the last snapshot whose display name or
// group name contains query as an ordered subsequence, ignoring case.
// Groups left empty are dropped. A blank query returns the full index.
func (s *Store) Filter(query string) []models.IconGroup {
	return FilterGroups(s.groups, query)
}

// FilterGroups applies the subsequence filter to any group list
func FilterGroups(groups []models.IconGroup, query string) []models.IconGroup {
	if strings.TrimSpace(query) == "" {
		return models.CloneGroups(groups)
	}

	filtered := []models.IconGroup{}
	for _, g := range groups {
		var icons []models.IconEntry
		for _, icon := range g.Icons {
			if Matches(query, icon.Name) || Matches(query, icon.Group) {
				icons = append(icons, icon)
			}
		}
		if len(icons) > 0 {
			filtered = append(filtered, models.IconGroup{Name: g.Name, Icons: icons})
		}
	}
	return filtered
}

// Matches reports whether every rune of query occurs in target in order,
// not necessarily contiguously, ignoring case.
func Matches(query, target string) bool {
	q := []rune(query)
	i := 0
	for _, r := range target {
		if i == len(q) {
			break
		}
		if unicode.ToLower(r) == unicode.ToLower(q[i]) {
			i++
		}
	}
	return i == len(q)
}
