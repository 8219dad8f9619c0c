// Package specindex builds a read-only index over a parsed OpenAPI/Swagger
// document: the declared base path, the set of oauth2 security scheme
// names, and a router table for resolving a normalised request path and
// HTTP method to the operation that handles it.
//
// An Index is built once at startup and never mutated afterwards; every
// method on it is safe for concurrent use by any number of goroutines
// handling concurrent requests.
package specindex

import (
	"fmt"
	"strings"

	"github.com/kestrelapi/apigate/oaserrors"
	"github.com/kestrelapi/apigate/pathmatch"
	"github.com/kestrelapi/apigate/specindex/oastypes"
)

// Index is the build-once, read-many view over a spec document that the
// rest of the enforcement pipeline queries per request.
type Index struct {
	parsed        *oastypes.ParseResult
	paths         oastypes.Paths
	basePath      string
	oauth2Schemes map[string]bool
	matcher       *pathmatch.Set
	docSecurity   []oastypes.SecurityRequirement
}

// New builds an Index from a parsed spec document. It resolves the
// declared base path (OAS3: the path component of the first server URL;
// Swagger2: the top-level basePath) and enumerates every oauth2 security
// scheme name so the middleware chain can recognise oauth2 requirements
// without re-walking the document on every request.
func New(parsed *oastypes.ParseResult) (*Index, error) {
	if parsed == nil {
		return nil, fmt.Errorf("specindex: parsed result cannot be nil")
	}

	idx := &Index{parsed: parsed, oauth2Schemes: make(map[string]bool)}

	switch {
	case parsed.IsOAS3():
		doc, ok := parsed.OAS3Document()
		if !ok || doc == nil {
			return nil, fmt.Errorf("specindex: OAS3 document missing from parse result")
		}
		idx.paths = doc.Paths
		idx.docSecurity = doc.Security
		if len(doc.Servers) > 0 {
			idx.basePath = serverPath(doc.Servers[0].URL)
		}
		if doc.Components != nil {
			for name, scheme := range doc.Components.SecuritySchemes {
				if scheme != nil && scheme.Type == "oauth2" {
					idx.oauth2Schemes[name] = true
				}
			}
		}
	case parsed.IsOAS2():
		doc, ok := parsed.OAS2Document()
		if !ok || doc == nil {
			return nil, fmt.Errorf("specindex: OAS2 document missing from parse result")
		}
		idx.paths = doc.Paths
		idx.docSecurity = doc.Security
		idx.basePath = doc.BasePath
		for name, scheme := range doc.SecurityDefinitions {
			if scheme != nil && scheme.Type == "oauth2" {
				idx.oauth2Schemes[name] = true
			}
		}
	default:
		return nil, fmt.Errorf("specindex: parse result is neither OAS2 nor OAS3")
	}

	templates := make([]string, 0, len(idx.paths))
	for template := range idx.paths {
		templates = append(templates, template)
	}
	matcher, err := pathmatch.NewSet(templates)
	if err != nil {
		return nil, fmt.Errorf("specindex: %w", err)
	}
	idx.matcher = matcher

	return idx, nil
}

// serverPath extracts the path component of an OAS3 server URL, e.g.
// "https://api.example.com/v1" -> "/v1". Relative server URLs ("/v1")
// are returned unchanged.
func serverPath(serverURL string) string {
	if idx := strings.Index(serverURL, "://"); idx >= 0 {
		rest := serverURL[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[slash:]
		}
		return ""
	}
	return serverURL
}

// BasePath returns the spec's declared base path, or "" if none.
func (idx *Index) BasePath() string { return idx.basePath }

// IsOAS3 reports whether the indexed document is OpenAPI 3.x.
func (idx *Index) IsOAS3() bool { return idx.parsed.IsOAS3() }

// IsOAS2 reports whether the indexed document is Swagger 2.0.
func (idx *Index) IsOAS2() bool { return idx.parsed.IsOAS2() }

// IsOAuth2Scheme reports whether schemeName names a declared oauth2
// security scheme.
func (idx *Index) IsOAuth2Scheme(schemeName string) bool {
	return idx.oauth2Schemes[schemeName]
}

// OperationHandle identifies a resolved operation: the path template it
// was declared under, the PathItem and Operation objects, and the
// lowercased HTTP method used to reach it.
type OperationHandle struct {
	PathTemplate string
	PathItem     *oastypes.PathItem
	Method       string
	Operation    *oastypes.Operation
	// PathParams holds the {name: value} captures the router extracted
	// from the request path against PathTemplate.
	PathParams map[string]string
}

// Endpoint returns the audit-context endpoint identifier for this
// operation, e.g. "/pets@get".
func (h *OperationHandle) Endpoint() string {
	return h.PathTemplate + "@" + h.Method
}

// Resolve finds the operation that handles method at normalisedPath,
// returning an *oaserrors.StatusError with ERR10007 (invalid request
// path) when no path template matches, or ERR10008 (method not allowed)
// when a path matches but declares no operation for method.
func (idx *Index) Resolve(normalisedPath, method string) (*OperationHandle, error) {
	template, params, found := idx.matcher.Match(normalisedPath)
	if !found {
		return nil, oaserrors.NewStatusError(oaserrors.CodeInvalidRequestPath, normalisedPath)
	}

	pathItem := idx.paths[template]
	lowered := strings.ToLower(method)
	op := operationFor(pathItem, lowered)
	if op == nil {
		return nil, oaserrors.NewStatusError(oaserrors.CodeMethodNotAllowed, method+" "+normalisedPath)
	}

	return &OperationHandle{PathTemplate: template, PathItem: pathItem, Method: lowered, Operation: op, PathParams: params}, nil
}

func operationFor(item *oastypes.PathItem, lowerMethod string) *oastypes.Operation {
	if item == nil {
		return nil
	}
	switch lowerMethod {
	case "get":
		return item.Get
	case "put":
		return item.Put
	case "post":
		return item.Post
	case "delete":
		return item.Delete
	case "options":
		return item.Options
	case "head":
		return item.Head
	case "patch":
		return item.Patch
	case "trace":
		return item.Trace
	default:
		return nil
	}
}

// Parameters returns every parameter in effect for an operation: the
// path-level parameters merged with the operation-level ones, with
// operation-level parameters overriding a path-level parameter that
// shares the same name and location. Path-level parameters come first,
// in declaration order, followed by the operation-level ones.
func (h *OperationHandle) Parameters() []*oastypes.Parameter {
	overridden := make(map[string]bool)
	for _, p := range h.Operation.Parameters {
		if p != nil {
			overridden[p.In+":"+p.Name] = true
		}
	}

	out := make([]*oastypes.Parameter, 0, len(h.PathItem.Parameters)+len(h.Operation.Parameters))
	for _, p := range h.PathItem.Parameters {
		if p != nil && !overridden[p.In+":"+p.Name] {
			out = append(out, p)
		}
	}
	for _, p := range h.Operation.Parameters {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ParametersIn returns Parameters() filtered to a single location
// ("path", "query", "header" or "cookie").
func (h *OperationHandle) ParametersIn(location string) []*oastypes.Parameter {
	all := h.Parameters()
	out := make([]*oastypes.Parameter, 0, len(all))
	for _, p := range all {
		if p.In == location {
			out = append(out, p)
		}
	}
	return out
}

// SecurityRequirements returns the security requirements in effect for
// this operation: the operation's own requirements if it declares any,
// otherwise the document's top-level requirements.
func (idx *Index) SecurityRequirements(h *OperationHandle) []oastypes.SecurityRequirement {
	if len(h.Operation.Security) > 0 {
		return h.Operation.Security
	}
	return idx.docSecurity
}

// FirstOAuth2Scopes returns the scope list from the first security
// requirement that references a declared oauth2 scheme, and true if one
// was found. Per the original handler this index is grounded on, only
// the first matching requirement is consulted — a spec with multiple
// oauth2 requirements on one operation has the rest silently ignored.
func (idx *Index) FirstOAuth2Scopes(h *OperationHandle) ([]string, bool) {
	for _, req := range idx.SecurityRequirements(h) {
		for scheme, scopes := range req {
			if idx.IsOAuth2Scheme(scheme) {
				return scopes, true
			}
		}
	}
	return nil, false
}
