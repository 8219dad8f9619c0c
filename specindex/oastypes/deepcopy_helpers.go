package oastypes

// deepCopyJSONValue recursively deep copies any JSON-compatible value. The
// $ref resolver's deep-copy fallback path (triggered when shallow-copying a
// resolved subtree would create a pointer cycle through a circular $ref)
// uses this to copy a resolved value into the map it's splicing into,
// rather than sharing structure with the original parse.
// This handles Default, Example, Const, and other fields that can hold
// arbitrary JSON values.
func deepCopyJSONValue(v any) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case string, bool, float64, int, int64, float32, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return t // Primitives copy by value
	case []any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = deepCopyJSONValue(item)
		}
		return cp
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, item := range t {
			cp[k] = deepCopyJSONValue(item)
		}
		return cp
	default:
		// Unknown type - could be custom types in extensions
		// Return as-is (shallow copy)
		return v
	}
}

