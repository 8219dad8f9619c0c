// Package respvalidate validates an outbound response body against the
// schema an operation declares for the response's status code, following
// a two-tier lookup: the exact status code first, "default" only when the
// status code itself was never declared.
package respvalidate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelapi/apigate/internal/severity"
	"github.com/kestrelapi/apigate/oaserrors"
	"github.com/kestrelapi/apigate/schemacheck"
	"github.com/kestrelapi/apigate/specindex"
	"github.com/kestrelapi/apigate/specindex/oastypes"
)

const (
	jsonMediaType = "application/json"
)

// ValidateContent validates responseContent (already JSON-decoded, or a
// raw string/[]byte the caller wants pre-parsed) against the schema
// declared for statusCode/mediaType on the operation h resolved to.
//
// Lookup policy: if the exact statusCode is declared in the operation's
// responses, its schema is used when present; a declared status with no
// schema passes silently without falling through to "default". Only when
// the status code itself is not declared does "default" get consulted,
// with the same no-schema-declared-passes rule. A response with neither a
// body nor a schema passes. The error cases are a body with no schema to
// validate it against, a schema with no body, and a schema violation.
func ValidateContent(h *specindex.OperationHandle, statusCode int, mediaType string, responseContent any) *oaserrors.StatusError {
	if mediaType == "" {
		mediaType = jsonMediaType
	}

	body := coerceContent(responseContent)

	schema, statusDeclared := contentSchema(h.Operation, statusCode, mediaType)

	switch {
	case schema != nil && body != nil:
		sv := schemacheck.New()
		issues := sv.Validate(body, schema, "response.body")
		for _, iss := range issues {
			if iss.Severity != severity.SeverityError {
				continue
			}
			return &oaserrors.StatusError{Code: oaserrors.CodeResponseContentUnexpected, Message: h.Endpoint(), Cause: fmt.Errorf("%s: %s", iss.Path, iss.Message)}
		}
		return nil

	case schema == nil && statusDeclared:
		// Declared status code with no schema for this media type: pass.
		return nil

	case schema == nil && body == nil:
		// No body to validate, whether or not the status code or
		// "default" was declared at all: nothing to check.
		return nil

	default:
		// Exactly one of (body, schema) is present.
		return oaserrors.NewStatusError(oaserrors.CodeResponseContentUnexpected, h.Endpoint())
	}
}

// coerceContent normalises a raw response body into decoded JSON when the
// caller passed a string or []byte, so callers that only have the raw
// bytes on hand don't need to decode JSON themselves. A non-object,
// non-array string (or one that fails to parse) becomes nil.
func coerceContent(responseContent any) any {
	var s string
	switch v := responseContent.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return responseContent
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	var data any
	switch trimmed[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil
		}
		data = obj
	case '[':
		var arr []any
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil
		}
		data = arr
	default:
		return nil
	}
	return data
}

// contentSchema looks up the schema for statusCode/mediaType, and reports
// whether statusCode itself was declared in the operation's responses
// (as opposed to falling back to "default").
func contentSchema(op *oastypes.Operation, statusCode int, mediaType string) (schema *oastypes.Schema, statusDeclared bool) {
	if op.Responses == nil {
		return nil, false
	}

	key := strconv.Itoa(statusCode)
	if resp, ok := op.Responses.Codes[key]; ok {
		return mediaSchema(resp, mediaType), true
	}

	if op.Responses.Default != nil {
		return mediaSchema(op.Responses.Default, mediaType), false
	}

	return nil, false
}

func mediaSchema(resp *oastypes.Response, mediaType string) *oastypes.Schema {
	if resp == nil {
		return nil
	}
	if resp.Schema != nil {
		// OAS 2.0: schema lives directly on the response.
		return resp.Schema
	}
	if resp.Content == nil {
		return nil
	}
	if media, ok := resp.Content[mediaType]; ok {
		return media.Schema
	}
	for ct, media := range resp.Content {
		if matchMediaType(ct, mediaType) {
			return media.Schema
		}
	}
	return nil
}

func matchMediaType(pattern, mediaType string) bool {
	if pattern == "*/*" {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(mediaType, pattern[:len(pattern)-1])
	}
	return pattern == mediaType
}
