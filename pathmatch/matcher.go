// Package pathmatch compiles OpenAPI path templates into matchers and
// resolves a normalised request path to the most specific matching
// template, per the longest-literal-segment-count-wins rule with a
// lexicographic tiebreak on the original template text.
package pathmatch

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Matcher matches request paths against a single OpenAPI path template,
// e.g. "/pets/{petId}".
type Matcher struct {
	template        string
	regex           *regexp.Regexp
	paramNames      []string
	literalSegments int
}

// New compiles template into a Matcher. It rejects an unclosed "{", an
// empty parameter name, and a duplicate parameter name within the same
// template.
func New(template string) (*Matcher, error) {
	if template == "" {
		return nil, fmt.Errorf("pathmatch: template must not be empty")
	}

	segments := strings.Split(template, "/")
	regexSegments := make([]string, 0, len(segments))
	paramNames := make([]string, 0)
	seen := make(map[string]bool)
	literalSegments := 0

	for _, seg := range segments {
		if strings.HasPrefix(seg, "{") {
			if !strings.HasSuffix(seg, "}") {
				return nil, fmt.Errorf("pathmatch: unclosed path parameter in segment %q of template %q", seg, template)
			}
			name := seg[1 : len(seg)-1]
			if name == "" {
				return nil, fmt.Errorf("pathmatch: empty path parameter name in template %q", template)
			}
			if seen[name] {
				return nil, fmt.Errorf("pathmatch: duplicate path parameter %q in template %q", name, template)
			}
			seen[name] = true
			paramNames = append(paramNames, name)
			regexSegments = append(regexSegments, "([^/]+)")
			continue
		}
		literalSegments++
		regexSegments = append(regexSegments, regexp.QuoteMeta(seg))
	}

	pattern := "^" + strings.Join(regexSegments, "/") + "$"
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("pathmatch: failed to compile template %q: %w", template, err)
	}

	return &Matcher{
		template:        template,
		regex:           regex,
		paramNames:      paramNames,
		literalSegments: literalSegments,
	}, nil
}

// Template returns the original path template text.
func (m *Matcher) Template() string { return m.template }

// ParamNames returns the parameter names in order of appearance.
func (m *Matcher) ParamNames() []string { return m.paramNames }

// Match reports whether path matches this template, returning the
// extracted parameter values by name when it does.
func (m *Matcher) Match(path string) (params map[string]string, ok bool) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}
	params = make(map[string]string, len(m.paramNames))
	for i, name := range m.paramNames {
		params[name] = matches[i+1]
	}
	return params, true
}

// Set holds every path template declared for one HTTP method, ordered by
// matching precedence: most literal segments first, ties broken
// lexicographically by the original template text.
type Set struct {
	matchers []*Matcher
}

// NewSet compiles templates into a Set, sorted by matching precedence.
func NewSet(templates []string) (*Set, error) {
	matchers := make([]*Matcher, 0, len(templates))
	for _, tmpl := range templates {
		m, err := New(tmpl)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	sort.Slice(matchers, func(i, j int) bool {
		if matchers[i].literalSegments != matchers[j].literalSegments {
			return matchers[i].literalSegments > matchers[j].literalSegments
		}
		return matchers[i].template < matchers[j].template
	})

	return &Set{matchers: matchers}, nil
}

// Match returns the highest-precedence template matching path, along with
// its extracted parameters.
func (s *Set) Match(path string) (template string, params map[string]string, ok bool) {
	for _, m := range s.matchers {
		if p, matched := m.Match(path); matched {
			return m.template, p, true
		}
	}
	return "", nil, false
}

// Templates returns every template in the set, in matching precedence
// order.
func (s *Set) Templates() []string {
	out := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		out[i] = m.template
	}
	return out
}
