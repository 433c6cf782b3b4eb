package library

import (
	"strings"

	"complib/internal/model"
)

// Filter narrows a component listing. Zero fields match everything.
type Filter struct {
	// Query matches case-insensitively against name, description and tags.
	Query string
	// Status matches exactly; "" and "all" match every status.
	Status model.Status
	Author string
	Tag    string
}

// StatusAll is accepted by Filter.Status to mean "no status filter".
const StatusAll model.Status = "all"

// Match reports whether c passes every filter criterion.
func (f Filter) Match(c *model.GeneratedComponent) bool {
	m := c.Metadata
	if f.Status != "" && f.Status != StatusAll && m.Status != f.Status {
		return false
	}
	if f.Author != "" && m.Author != f.Author {
		return false
	}
	if f.Tag != "" && !containsFold(m.Tags, f.Tag) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Description), q) {
			return true
		}
		for _, tag := range m.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	}
	return true
}

// SearchComponents returns the components matching f, in insertion order.
func (l *Library) SearchComponents(f Filter) ([]*model.GeneratedComponent, error) {
	components, err := l.ListComponents()
	if err != nil {
		return nil, err
	}
	var out []*model.GeneratedComponent
	for _, c := range components {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
