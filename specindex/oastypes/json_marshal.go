package oastypes

import "encoding/json"

// marshalToJSON marshals v to JSON, used by custom MarshalJSON implementations
// throughout this package.
func marshalToJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
