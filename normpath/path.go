// Package normpath canonicalises request URIs against a configured base
// path, exposing the ordered path segments and parameter-segment detection
// that the path router and request validator key off of.
package normpath

import (
	"errors"
	"strings"
)

// ErrEmptyPath is returned by New when path is empty.
var ErrEmptyPath = errors.New("normpath: path must not be empty")

// Path is an immutable, normalised request path. The zero value is not
// usable; construct one with New.
type Path struct {
	original   string
	normalised string
	parts      []string
}

// New builds a Path from a raw request path and the spec's configured base
// path. A single leading occurrence of basePath is stripped from path when
// basePath is non-empty and path has that prefix; the result is then
// guaranteed a leading "/". path must not be empty.
func New(path, basePath string) (*Path, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	stripped := path
	if basePath != "" && strings.HasPrefix(path, basePath) {
		stripped = strings.TrimPrefix(path, basePath)
	}

	normalised := stripped
	if !strings.HasPrefix(normalised, "/") {
		normalised = "/" + normalised
	}

	return &Path{
		original:   stripped,
		normalised: normalised,
		parts:      strings.Split(normalised, "/"),
	}, nil
}

// Original returns the request path with the base path stripped, before
// the leading-slash guarantee is applied.
func (p *Path) Original() string { return p.original }

// Normalised returns the base-path-stripped, leading-slash-guaranteed path.
func (p *Path) Normalised() string { return p.normalised }

// Parts returns the ordered segments of the normalised path, split on "/".
// Because the normalised path always begins with "/", parts()[0] is the
// empty string; this keeps indices aligned with spec path templates split
// the same way.
func (p *Path) Parts() []string {
	out := make([]string, len(p.parts))
	copy(out, p.parts)
	return out
}

// Len returns the number of segments, equivalent to len(Parts()).
func (p *Path) Len() int { return len(p.parts) }

// Part returns segment i, or "" if i is out of range.
func (p *Path) Part(i int) string {
	if i < 0 || i >= len(p.parts) {
		return ""
	}
	return p.parts[i]
}

// IsParam reports whether segment i is a parameter segment, i.e. of the
// form "{name}".
func (p *Path) IsParam(i int) bool {
	part := p.Part(i)
	return len(part) >= 2 && part[0] == '{' && part[len(part)-1] == '}'
}

// ParamName returns the name enclosed by segment i's braces. It is only
// meaningful when IsParam(i) is true; otherwise it returns "".
func (p *Path) ParamName(i int) string {
	if !p.IsParam(i) {
		return ""
	}
	part := p.Part(i)
	return part[1 : len(part)-1]
}
