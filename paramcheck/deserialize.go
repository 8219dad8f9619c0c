// Package paramcheck validates and deserializes path, query, header and
// cookie parameter values against their OpenAPI parameter schemas. Every
// value arrives from the transport as one or more strings; this package is
// responsible for turning those strings into typed Go values according to
// the parameter's serialization style, then validating the result.
package paramcheck

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kestrelapi/apigate/specindex/oastypes"
)

// Deserializer converts raw string parameter values into typed Go values
// per the OpenAPI serialization rules (RFC 6570-flavoured style/explode).
// The zero value is ready to use.
type Deserializer struct{}

// DeserializePath deserializes a path parameter value. Path parameters
// default to style "simple" with explode=false.
func (d *Deserializer) DeserializePath(value string, param *oastypes.Parameter) any {
	style := param.Style
	if style == "" {
		style = "simple"
	}
	explode := explodeOf(param, false)
	schema := param.Schema

	switch style {
	case "label":
		return d.deserializeLabel(value, schema, explode)
	case "matrix":
		return d.deserializeMatrix(value, param.Name, schema, explode)
	default:
		return d.deserializeSimple(value, schema, explode)
	}
}

// DeserializeQuery deserializes query parameter values. Query parameters
// default to style "form" with explode=true.
func (d *Deserializer) DeserializeQuery(values []string, param *oastypes.Parameter) any {
	style := param.Style
	if style == "" {
		style = "form"
	}
	explode := explodeOf(param, true)
	schema := param.Schema

	switch style {
	case "spaceDelimited":
		return d.deserializeDelimited(values, " ", schema)
	case "pipeDelimited":
		return d.deserializeDelimited(values, "|", schema)
	case "deepObject":
		if len(values) == 1 {
			return values[0]
		}
		return values
	default:
		return d.deserializeForm(values, schema, explode)
	}
}

// DeserializeQueryDeepObject extracts a deepObject-style query parameter
// (e.g. filter[status]=active) into a map keyed by property name.
func (d *Deserializer) DeserializeQueryDeepObject(queryValues url.Values, paramName string, schema *oastypes.Schema) map[string]any {
	prefix := paramName + "["
	result := make(map[string]any)

	for key, values := range queryValues {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		propEnd := strings.Index(key[len(prefix):], "]")
		if propEnd == -1 {
			continue
		}
		propName := key[len(prefix) : len(prefix)+propEnd]
		if len(values) == 1 {
			result[propName] = d.coerceValue(values[0], propertySchema(schema, propName))
		} else {
			result[propName] = values
		}
	}

	return result
}

// DeserializeHeader deserializes a header parameter value. Only the
// "simple" style is meaningful for headers.
func (d *Deserializer) DeserializeHeader(value string, param *oastypes.Parameter) any {
	explode := explodeOf(param, false)
	return d.deserializeSimple(value, param.Schema, explode)
}

// DeserializeCookie deserializes a cookie parameter value. Cookie
// parameters default to style "form" with explode=false; since cookies
// deliver one string per name, arrays are read as comma-separated.
func (d *Deserializer) DeserializeCookie(value string, param *oastypes.Parameter) any {
	schema := param.Schema
	if isArraySchema(schema) {
		return d.deserializeSimple(value, schema, false)
	}
	return d.coerceValue(value, schema)
}

func (d *Deserializer) deserializeSimple(value string, schema *oastypes.Schema, explode bool) any {
	if schema == nil {
		return value
	}
	if isArraySchema(schema) {
		return d.coerceArray(strings.Split(value, ","), itemsSchema(schema))
	}
	if isObjectSchema(schema) {
		return d.deserializeDelimitedObject(strings.Split(value, ","), schema, explode, "=")
	}
	return d.coerceValue(value, schema)
}

func (d *Deserializer) deserializeLabel(value string, schema *oastypes.Schema, explode bool) any {
	if !strings.HasPrefix(value, ".") {
		return value
	}
	value = value[1:]
	if schema == nil {
		return value
	}
	if isArraySchema(schema) {
		sep := ","
		if explode {
			sep = "."
		}
		return d.coerceArray(strings.Split(value, sep), itemsSchema(schema))
	}
	if isObjectSchema(schema) {
		if explode {
			return d.deserializeDelimitedObject(strings.Split(value, "."), schema, true, "=")
		}
		return d.deserializeDelimitedObject(strings.Split(value, ","), schema, false, "")
	}
	return d.coerceValue(value, schema)
}

func (d *Deserializer) deserializeMatrix(value, paramName string, schema *oastypes.Schema, explode bool) any {
	if !strings.HasPrefix(value, ";") {
		return value
	}
	value = value[1:]

	if schema == nil {
		if strings.HasPrefix(value, paramName+"=") {
			return value[len(paramName)+1:]
		}
		return value
	}
	if isArraySchema(schema) {
		if explode {
			var vals []string
			prefix := paramName + "="
			for _, part := range strings.Split(value, ";") {
				if strings.HasPrefix(part, prefix) {
					vals = append(vals, part[len(prefix):])
				}
			}
			return d.coerceArray(vals, itemsSchema(schema))
		}
		prefix := paramName + "="
		if strings.HasPrefix(value, prefix) {
			return d.coerceArray(strings.Split(value[len(prefix):], ","), itemsSchema(schema))
		}
		return nil
	}
	if isObjectSchema(schema) {
		if explode {
			return d.deserializeDelimitedObject(strings.Split(value, ";"), schema, true, "=")
		}
		prefix := paramName + "="
		if strings.HasPrefix(value, prefix) {
			return d.deserializeDelimitedObject(strings.Split(value[len(prefix):], ","), schema, false, "")
		}
		return map[string]any{}
	}
	prefix := paramName + "="
	if strings.HasPrefix(value, prefix) {
		return d.coerceValue(value[len(prefix):], schema)
	}
	return d.coerceValue(value, schema)
}

func (d *Deserializer) deserializeForm(values []string, schema *oastypes.Schema, explode bool) any {
	if schema == nil {
		if len(values) == 1 {
			return values[0]
		}
		return values
	}
	if isArraySchema(schema) {
		if explode {
			return d.coerceArray(values, itemsSchema(schema))
		}
		if len(values) == 1 {
			return d.coerceArray(strings.Split(values[0], ","), itemsSchema(schema))
		}
		return d.coerceArray(values, itemsSchema(schema))
	}
	if isObjectSchema(schema) {
		if len(values) == 1 && !explode {
			return d.deserializeDelimitedObject(strings.Split(values[0], ","), schema, false, "")
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	}
	if len(values) == 1 {
		return d.coerceValue(values[0], schema)
	}
	return values
}

func (d *Deserializer) deserializeDelimited(values []string, delimiter string, schema *oastypes.Schema) any {
	parts := strings.Split(strings.Join(values, delimiter), delimiter)
	if isArraySchema(schema) {
		return d.coerceArray(parts, itemsSchema(schema))
	}
	if len(parts) == 1 {
		return d.coerceValue(parts[0], schema)
	}
	return parts
}

// deserializeDelimitedObject handles both key=value,key2=value2 (explode
// true, pairs split on kvSep) and flattened key,value,key2,value2 (explode
// false, kvSep unused) object encodings.
func (d *Deserializer) deserializeDelimitedObject(parts []string, schema *oastypes.Schema, explode bool, kvSep string) map[string]any {
	result := make(map[string]any)
	if explode {
		for _, part := range parts {
			if part == "" {
				continue
			}
			if idx := strings.Index(part, kvSep); idx > 0 {
				key, val := part[:idx], part[idx+len(kvSep):]
				result[key] = d.coerceValue(val, propertySchema(schema, key))
			}
		}
		return result
	}
	for i := 0; i+1 < len(parts); i += 2 {
		result[parts[i]] = d.coerceValue(parts[i+1], propertySchema(schema, parts[i]))
	}
	return result
}

func (d *Deserializer) coerceValue(value string, schema *oastypes.Schema) any {
	switch schemaType(schema) {
	case "integer":
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	case "number":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

func (d *Deserializer) coerceArray(values []string, itemSchema *oastypes.Schema) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = d.coerceValue(v, itemSchema)
	}
	return out
}

func explodeOf(param *oastypes.Parameter, defaultExplode bool) bool {
	if param.Explode != nil {
		return *param.Explode
	}
	return defaultExplode
}

func propertySchema(schema *oastypes.Schema, name string) *oastypes.Schema {
	if schema == nil || schema.Properties == nil {
		return nil
	}
	return schema.Properties[name]
}

func schemaType(schema *oastypes.Schema) string {
	if schema == nil {
		return ""
	}
	switch t := schema.Type.(type) {
	case string:
		return t
	case []string:
		for _, typ := range t {
			if typ != "null" {
				return typ
			}
		}
	case []any:
		for _, typ := range t {
			if s, ok := typ.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}

func isArraySchema(schema *oastypes.Schema) bool  { return schemaType(schema) == "array" }
func isObjectSchema(schema *oastypes.Schema) bool { return schemaType(schema) == "object" }

func itemsSchema(schema *oastypes.Schema) *oastypes.Schema {
	if schema == nil {
		return nil
	}
	if s, ok := schema.Items.(*oastypes.Schema); ok {
		return s
	}
	return nil
}
