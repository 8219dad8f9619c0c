// Package schemacheck validates a decoded value against an OpenAPI/JSON
// Schema sub-tree. It implements a JSON-Schema-draft-4-compatible subset:
// type, enum, numeric bounds, string length/pattern/format, array and
// object constraints, and allOf/anyOf/oneOf composition.
//
// Two typing modes are supported. Strict mode (typeLoose=false) is used
// for JSON request and response bodies, where the decoder has already
// produced the right Go type. Loose mode (typeLoose=true) is used for
// path, query, header and cookie values, which always arrive from the
// transport as strings; loose mode coerces a string token like "1" or
// "true" to the schema-declared type before the rest of validation runs.
package schemacheck

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kestrelapi/apigate/internal/issues"
	"github.com/kestrelapi/apigate/internal/severity"
	"github.com/kestrelapi/apigate/internal/stringutil"
	"github.com/kestrelapi/apigate/specindex/oastypes"
)

// Issue is one validation failure or warning, aliased to the shared issue
// type used across this module's reporting surfaces.
type Issue = issues.Issue

// maxPatternCacheSize bounds the compiled-regex pattern cache so a spec
// with many unique patterns cannot grow it without limit.
const maxPatternCacheSize = 1000

// Validator validates values against OpenAPI schemas. The zero value is
// ready to use; a *Validator is safe for concurrent use by multiple
// goroutines validating different requests.
type Validator struct {
	patternCache sync.Map
	patternCount atomic.Int32

	// redactValues omits the offending value from messages, for use when
	// validating potentially sensitive data (header and cookie values
	// that might carry credentials).
	redactValues bool
}

// New returns a Validator that includes offending values in error
// messages. Use this for path, query and body validation.
func New() *Validator {
	return &Validator{}
}

// NewRedacting returns a Validator that omits offending values from error
// messages. Use this for header and cookie validation, where a value
// might be a credential that should not be echoed back or logged.
func NewRedacting() *Validator {
	return &Validator{redactValues: true}
}

// Validate validates data against schema at path, in strict mode. It
// returns at most the issues discovered on this call; the caller treats a
// non-empty slice as a validation failure.
func (v *Validator) Validate(data any, schema *oastypes.Schema, path string) []Issue {
	return v.validate(data, schema, path, false)
}

// ValidateLoose validates data against schema at path with type coercion
// enabled: a string data value is first coerced to the schema's declared
// type (number, integer, boolean) before the rest of validation runs.
// Use this for path, query, header and cookie parameter values, which
// are always strings as received from the transport.
func (v *Validator) ValidateLoose(data any, schema *oastypes.Schema, path string) []Issue {
	return v.validate(data, schema, path, true)
}

func (v *Validator) validate(data any, schema *oastypes.Schema, path string, typeLoose bool) []Issue {
	if schema == nil {
		return nil
	}

	if typeLoose {
		if coerced, ok := coerce(data, schema); ok {
			data = coerced
		} else if s, isString := data.(string); isString {
			return []Issue{{
				Path:     path,
				Message:  fmt.Sprintf("value %q could not be parsed as %s", s, strings.Join(getSchemaTypes(schema), " or ")),
				Severity: severity.SeverityError,
			}}
		}
	}

	if data == nil {
		if v.isNullable(schema) {
			return nil
		}
		return []Issue{{Path: path, Message: "value cannot be null", Severity: severity.SeverityError}}
	}

	var out []Issue

	typeErrs := v.validateType(data, schema, path)
	out = append(out, typeErrs...)
	if len(typeErrs) > 0 {
		return out
	}

	switch d := data.(type) {
	case string:
		out = append(out, v.validateString(d, schema, path)...)
	case float64:
		out = append(out, v.validateNumber(d, schema, path)...)
	case int, int64:
		out = append(out, v.validateNumber(toFloat64(d), schema, path)...)
	case bool:
		// no further constraints
	case []any:
		out = append(out, v.validateArray(d, schema, path)...)
	case map[string]any:
		out = append(out, v.validateObject(d, schema, path)...)
	}

	if len(schema.Enum) > 0 {
		out = append(out, v.validateEnum(data, schema, path)...)
	}

	out = append(out, v.validateComposition(data, schema, path)...)

	return out
}

// coerce attempts to convert a string value to the type schema declares,
// for typeLoose validation of URL-embedded parameters. Non-string data,
// and strings against a schema that declares no type, are returned
// unchanged with ok true. ok is false only when data is a string that
// parses as none of the schema's declared types.
func coerce(data any, schema *oastypes.Schema) (any, bool) {
	s, isString := data.(string)
	if !isString {
		return data, true
	}

	types := getSchemaTypes(schema)
	for _, t := range types {
		switch t {
		case "integer":
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return float64(n), true
			}
		case "number":
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return n, true
			}
		case "boolean":
			switch strings.ToLower(s) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		case "string":
			return s, true
		}
	}
	if len(types) == 0 {
		return s, true
	}
	return nil, false
}

func (v *Validator) isNullable(schema *oastypes.Schema) bool {
	if schema.Nullable {
		return true
	}
	for _, t := range getSchemaTypes(schema) {
		if t == "null" {
			return true
		}
	}
	return false
}

func (v *Validator) validateType(data any, schema *oastypes.Schema, path string) []Issue {
	types := getSchemaTypes(schema)
	if len(types) == 0 {
		return nil
	}

	dataType := getDataType(data)
	for _, schemaType := range types {
		if typeMatches(dataType, schemaType) {
			if schemaType == "integer" && dataType == "number" {
				if f, ok := data.(float64); ok && f != float64(int64(f)) {
					msg := "value must be an integer"
					if !v.redactValues {
						msg = fmt.Sprintf("value must be an integer, got %v", f)
					}
					return []Issue{{Path: path, Message: msg, Severity: severity.SeverityError}}
				}
			}
			return nil
		}
	}

	return []Issue{{
		Path:     path,
		Message:  fmt.Sprintf("expected type %s but got %s", strings.Join(types, " or "), dataType),
		Severity: severity.SeverityError,
	}}
}

func (v *Validator) validateString(s string, schema *oastypes.Schema, path string) []Issue {
	var out []Issue

	if schema.MinLength != nil && len(s) < *schema.MinLength {
		out = append(out, Issue{Path: path, Message: fmt.Sprintf("string length %d is less than minimum %d", len(s), *schema.MinLength), Severity: severity.SeverityError})
	}
	if schema.MaxLength != nil && len(s) > *schema.MaxLength {
		out = append(out, Issue{Path: path, Message: fmt.Sprintf("string length %d exceeds maximum %d", len(s), *schema.MaxLength), Severity: severity.SeverityError})
	}
	if schema.Pattern != "" {
		matched, err := v.matchPattern(schema.Pattern, s)
		if err != nil {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("invalid pattern %q: %v", schema.Pattern, err), Severity: severity.SeverityError})
		} else if !matched {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("string does not match pattern %q", schema.Pattern), Severity: severity.SeverityError})
		}
	}
	if schema.Format != "" {
		out = append(out, v.validateFormat(s, schema.Format, path)...)
	}

	return out
}

func (v *Validator) validateNumber(n float64, schema *oastypes.Schema, path string) []Issue {
	var out []Issue

	if schema.Minimum != nil {
		if isExclusiveMinimum(schema) && n <= *schema.Minimum {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("value %v must be greater than %v", n, *schema.Minimum), Severity: severity.SeverityError})
		} else if !isExclusiveMinimum(schema) && n < *schema.Minimum {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("value %v is less than minimum %v", n, *schema.Minimum), Severity: severity.SeverityError})
		}
	}
	if schema.Maximum != nil {
		if isExclusiveMaximum(schema) && n >= *schema.Maximum {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("value %v must be less than %v", n, *schema.Maximum), Severity: severity.SeverityError})
		} else if !isExclusiveMaximum(schema) && n > *schema.Maximum {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("value %v exceeds maximum %v", n, *schema.Maximum), Severity: severity.SeverityError})
		}
	}
	if schema.MultipleOf != nil && *schema.MultipleOf != 0 {
		remainder := n / *schema.MultipleOf
		if remainder != float64(int64(remainder)) {
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("value %v is not a multiple of %v", n, *schema.MultipleOf), Severity: severity.SeverityError})
		}
	}

	return out
}

func (v *Validator) validateArray(arr []any, schema *oastypes.Schema, path string) []Issue {
	var out []Issue

	if schema.MinItems != nil && len(arr) < *schema.MinItems {
		out = append(out, Issue{Path: path, Message: fmt.Sprintf("array has %d items, minimum is %d", len(arr), *schema.MinItems), Severity: severity.SeverityError})
	}
	if schema.MaxItems != nil && len(arr) > *schema.MaxItems {
		out = append(out, Issue{Path: path, Message: fmt.Sprintf("array has %d items, maximum is %d", len(arr), *schema.MaxItems), Severity: severity.SeverityError})
	}
	if schema.UniqueItems && hasDuplicates(arr) {
		out = append(out, Issue{Path: path, Message: "array items must be unique", Severity: severity.SeverityError})
	}
	if itemSchema := getItemsSchema(schema); itemSchema != nil {
		for i, item := range arr {
			out = append(out, v.Validate(item, itemSchema, fmt.Sprintf("%s[%d]", path, i))...)
		}
	}

	return out
}

func (v *Validator) validateObject(obj map[string]any, schema *oastypes.Schema, path string) []Issue {
	var out []Issue

	for _, req := range schema.Required {
		if _, exists := obj[req]; !exists {
			out = append(out, Issue{Path: path + "." + req, Message: fmt.Sprintf("required property %q is missing", req), Severity: severity.SeverityError})
		}
	}
	if schema.MinProperties != nil && len(obj) < *schema.MinProperties {
		out = append(out, Issue{Path: path, Message: fmt.Sprintf("object has %d properties, minimum is %d", len(obj), *schema.MinProperties), Severity: severity.SeverityError})
	}
	if schema.MaxProperties != nil && len(obj) > *schema.MaxProperties {
		out = append(out, Issue{Path: path, Message: fmt.Sprintf("object has %d properties, maximum is %d", len(obj), *schema.MaxProperties), Severity: severity.SeverityError})
	}
	for name, value := range obj {
		if propSchema, ok := schema.Properties[name]; ok {
			out = append(out, v.Validate(value, propSchema, path+"."+name)...)
		}
	}
	if allowed, ok := schema.AdditionalProperties.(bool); ok && !allowed {
		for name := range obj {
			if _, defined := schema.Properties[name]; !defined {
				out = append(out, Issue{Path: path + "." + name, Message: fmt.Sprintf("additional property %q is not allowed", name), Severity: severity.SeverityError})
			}
		}
	}

	return out
}

func (v *Validator) validateEnum(data any, schema *oastypes.Schema, path string) []Issue {
	for _, allowed := range schema.Enum {
		if reflect.DeepEqual(data, allowed) {
			return nil
		}
	}

	msg := "value is not one of the allowed values"
	if !v.redactValues {
		msg = fmt.Sprintf("value %v is not one of the allowed values", data)
	}
	return []Issue{{Path: path, Message: msg, Severity: severity.SeverityError}}
}

func (v *Validator) validateComposition(data any, schema *oastypes.Schema, path string) []Issue {
	var out []Issue

	if len(schema.AllOf) > 0 {
		for i, sub := range schema.AllOf {
			if subErrs := v.Validate(data, sub, path); len(subErrs) > 0 {
				out = append(out, Issue{Path: path, Message: fmt.Sprintf("allOf[%d] validation failed", i), Severity: severity.SeverityError})
				out = append(out, subErrs...)
			}
		}
	}

	if len(schema.AnyOf) > 0 {
		matched := false
		for _, sub := range schema.AnyOf {
			if len(v.Validate(data, sub, path)) == 0 {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, Issue{Path: path, Message: "value does not match any of the anyOf schemas", Severity: severity.SeverityError})
		}
	}

	if len(schema.OneOf) > 0 {
		matchCount := 0
		for _, sub := range schema.OneOf {
			if len(v.Validate(data, sub, path)) == 0 {
				matchCount++
			}
		}
		switch {
		case matchCount == 0:
			out = append(out, Issue{Path: path, Message: "value does not match any of the oneOf schemas", Severity: severity.SeverityError})
		case matchCount > 1:
			out = append(out, Issue{Path: path, Message: fmt.Sprintf("value matches %d oneOf schemas, expected exactly 1", matchCount), Severity: severity.SeverityError})
		}
	}

	return out
}

// validateFormat checks common string formats. Per the JSON Schema spec,
// an unrecognised format is silently ignored rather than treated as a
// failure, and a format mismatch on a recognised format is a warning, not
// an error — it never blocks the request on its own.
func (v *Validator) validateFormat(s, format, path string) []Issue {
	fail := func(msg string) []Issue {
		return []Issue{{Path: path, Message: msg, Severity: severity.SeverityWarning}}
	}

	switch format {
	case "email":
		if !stringutil.IsValidEmail(s) {
			if v.redactValues {
				return fail("value is not a valid email address")
			}
			return fail(fmt.Sprintf("%q is not a valid email address", s))
		}
	case "uri", "uri-reference":
		if !isValidURI(s) {
			if v.redactValues {
				return fail("value is not a valid URI")
			}
			return fail(fmt.Sprintf("%q is not a valid URI", s))
		}
	case "date":
		if !dateRegex.MatchString(s) {
			if v.redactValues {
				return fail("value is not a valid date (expected YYYY-MM-DD)")
			}
			return fail(fmt.Sprintf("%q is not a valid date (expected YYYY-MM-DD)", s))
		}
	case "date-time":
		if !dateTimeRegex.MatchString(s) {
			if v.redactValues {
				return fail("value is not a valid date-time (expected RFC 3339)")
			}
			return fail(fmt.Sprintf("%q is not a valid date-time (expected RFC 3339)", s))
		}
	case "uuid":
		if !uuidRegex.MatchString(s) {
			if v.redactValues {
				return fail("value is not a valid UUID")
			}
			return fail(fmt.Sprintf("%q is not a valid UUID", s))
		}
	}
	return nil
}

func (v *Validator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	// Not atomic with the store below; worst case under a race is an
	// extra recompilation, which is harmless since the cache only exists
	// to amortize regexp.Compile cost.
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re.MatchString(s), nil
}

var (
	uuidRegex     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

func isValidURI(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.Contains(s, "://")
}

func getSchemaTypes(schema *oastypes.Schema) []string {
	if schema.Type == nil {
		return nil
	}
	switch t := schema.Type.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

func getDataType(data any) string {
	if data == nil {
		return "null"
	}
	switch data.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case int, int32, int64, uint, uint32, uint64:
		return "integer"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		rv := reflect.ValueOf(data)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return "array"
		case reflect.Map:
			return "object"
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return "integer"
		case reflect.Float32, reflect.Float64:
			return "number"
		case reflect.String:
			return "string"
		case reflect.Bool:
			return "boolean"
		}
		return "unknown"
	}
}

func typeMatches(dataType, schemaType string) bool {
	if dataType == schemaType {
		return true
	}
	if schemaType == "number" && dataType == "integer" {
		return true
	}
	if schemaType == "integer" && dataType == "number" {
		return true // fractional part is checked separately
	}
	return false
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	}
	return 0
}

func isExclusiveMinimum(schema *oastypes.Schema) bool {
	if schema.ExclusiveMinimum == nil {
		return false
	}
	if b, ok := schema.ExclusiveMinimum.(bool); ok {
		return b
	}
	return false
}

func isExclusiveMaximum(schema *oastypes.Schema) bool {
	if schema.ExclusiveMaximum == nil {
		return false
	}
	if b, ok := schema.ExclusiveMaximum.(bool); ok {
		return b
	}
	return false
}

func hasDuplicates(arr []any) bool {
	seen := make(map[string]bool, len(arr))
	for _, item := range arr {
		key := fmt.Sprintf("%T:%v", item, item)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

func getItemsSchema(schema *oastypes.Schema) *oastypes.Schema {
	if schema.Items == nil {
		return nil
	}
	if s, ok := schema.Items.(*oastypes.Schema); ok {
		return s
	}
	return nil
}
