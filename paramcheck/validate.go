package paramcheck

import (
	"strconv"
	"strings"

	"github.com/kestrelapi/apigate/internal/issues"
	"github.com/kestrelapi/apigate/internal/severity"
	"github.com/kestrelapi/apigate/oaserrors"
	"github.com/kestrelapi/apigate/schemacheck"
	"github.com/kestrelapi/apigate/specindex/oastypes"
)

// Issue is one validation failure, aliased to the shared issue type.
type Issue = issues.Issue

// Result carries the outcome of validating a single parameter: a wire
// error to send to the client, or nil when the value is acceptable.
type Result struct {
	Err *oaserrors.StatusError
}

// ok returns a passing Result.
func ok() Result { return Result{} }

func fail(code, message string) Result {
	return Result{Err: oaserrors.NewStatusError(code, message)}
}

// Validator validates a single deserialized parameter value against its
// OpenAPI parameter definition. Every primitive type has its own checks;
// array and object values are delegated to schemacheck once the raw
// string has been split by the Deserializer.
type Validator struct {
	schema *schemacheck.Validator
}

// New returns a Validator that reports offending values in messages.
func New() *Validator {
	return &Validator{schema: schemacheck.New()}
}

// NewRedacting returns a Validator that omits offending values from
// messages, for headers and cookies that may carry credentials.
func NewRedacting() *Validator {
	return &Validator{schema: schemacheck.NewRedacting()}
}

// Validate checks value (already deserialized by Deserializer, or nil/""
// if absent) against param, returning the wire error to use for a missing
// or invalid parameter, or a zero Result when it passes.
//
// present distinguishes "no value was supplied" from "an empty string was
// supplied", since query strings and headers can carry an explicit empty
// value that differs from omission.
func (v *Validator) Validate(paramName string, value any, present bool, param *oastypes.Parameter, missingCode string) Result {
	if !present || value == nil {
		if param.Required {
			return fail(missingCode, paramName)
		}
		return ok()
	}

	schemaType := paramSchemaType(param)
	switch schemaType {
	case "integer":
		if res := v.validateInteger(paramName, value); res.Err != nil {
			return res
		}
		return v.validateComposite(paramName, value, param)
	case "number":
		if res := v.validateNumber(paramName, value); res.Err != nil {
			return res
		}
		return v.validateComposite(paramName, value, param)
	case "boolean":
		return v.validateBoolean(paramName, value)
	case "string", "":
		return v.validateString(paramName, value, param)
	case "array", "object":
		return v.validateComposite(paramName, value, param)
	default:
		return v.validateString(paramName, value, param)
	}
}

func (v *Validator) validateInteger(paramName string, value any) Result {
	f, ok2 := toNumber(value)
	if !ok2 {
		return fail(oaserrors.CodeParameterInvalidFormat, paramName)
	}
	if f != float64(int64(f)) {
		return fail(oaserrors.CodeParameterInvalidFormat, paramName)
	}
	return ok()
}

func (v *Validator) validateNumber(paramName string, value any) Result {
	if _, ok2 := toNumber(value); !ok2 {
		return fail(oaserrors.CodeParameterInvalidFormat, paramName)
	}
	return ok()
}

func (v *Validator) validateBoolean(paramName string, value any) Result {
	switch b := value.(type) {
	case bool:
		return ok()
	case string:
		switch strings.ToLower(b) {
		case "true", "false":
			return ok()
		}
	}
	return fail(oaserrors.CodeParameterInvalidFormat, paramName)
}

func (v *Validator) validateString(paramName string, value any, param *oastypes.Parameter) Result {
	s, isString := value.(string)
	if !isString {
		return fail(oaserrors.CodeParameterInvalidFormat, paramName)
	}
	if param.Schema == nil {
		return ok()
	}
	return v.runSchema(paramName, s, param.Schema)
}

func (v *Validator) validateComposite(paramName string, value any, param *oastypes.Parameter) Result {
	if param.Schema == nil {
		return ok()
	}
	return v.runSchema(paramName, value, param.Schema)
}

func (v *Validator) runSchema(paramName string, value any, schema *oastypes.Schema) Result {
	issues := v.schema.ValidateLoose(value, schema, paramName)
	for _, iss := range issues {
		if iss.Severity != severity.SeverityError {
			continue
		}
		return classify(paramName, iss)
	}
	return ok()
}

// classify maps a schema validation failure to the specific wire code
// for range violations, falling back to the generic invalid-format
// code for everything else (pattern, length, enum, type).
func classify(paramName string, iss Issue) Result {
	switch {
	case strings.HasPrefix(iss.Message, "string length"):
		return fail(oaserrors.CodeParameterInvalidFormat, paramName)
	case strings.Contains(iss.Message, "less than minimum"), strings.Contains(iss.Message, "must be greater than"):
		return fail(oaserrors.CodeParameterBelowMin, paramName)
	case strings.Contains(iss.Message, "exceeds maximum"), strings.Contains(iss.Message, "must be less than"):
		return fail(oaserrors.CodeParameterAboveMax, paramName)
	default:
		return fail(oaserrors.CodeParameterInvalidFormat, paramName)
	}
}

func toNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func paramSchemaType(param *oastypes.Parameter) string {
	if param.Type != "" {
		return param.Type // OAS 2.0
	}
	return schemaType(param.Schema)
}
