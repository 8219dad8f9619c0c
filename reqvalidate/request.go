// Package reqvalidate validates an incoming HTTP request against the
// operation the router resolved it to: path, query and header parameters,
// then the JSON request body. Validation short-circuits at the first
// failure, in that fixed order, and returns a single wire error ready to
// send to the client.
package reqvalidate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kestrelapi/apigate/internal/severity"
	"github.com/kestrelapi/apigate/oaserrors"
	"github.com/kestrelapi/apigate/paramcheck"
	"github.com/kestrelapi/apigate/schemacheck"
	"github.com/kestrelapi/apigate/specindex"
	"github.com/kestrelapi/apigate/specindex/oastypes"
)

// Logger receives informational messages about non-fatal decoding
// fallbacks. Satisfied structurally by *internal/obslog.Adapter.
type Logger interface {
	Info(msg string, kv ...any)
}

// Config controls request-body handling, mirroring the OAS contract
// enforcement layer's own validator configuration.
type Config struct {
	// SkipBodyValidation skips body validation outright when the request
	// carries no body, so an absent required body is not reported. A body
	// that is present is still validated.
	SkipBodyValidation bool
	// BodyParserEnabled reports whether an upstream body-parsing
	// middleware is expected to have already attached the parsed body.
	// When false, a missing-but-required body is a warning, not a
	// failure, since this validator cannot demand a body no parser will
	// ever supply.
	BodyParserEnabled bool
	Logger            Logger
}

// Exchange is the subset of an inbound HTTP request reqvalidate needs.
// Path, in particular, must already have been resolved to the raw
// {name: value} capture map the router produced.
type Exchange struct {
	PathParams  map[string]string
	Query       url.Values
	Header      http.Header
	Body        []byte
	HasBody     bool
	ContentType string
}

// ValidateRequest checks exchange against the operation h resolved to, in
// path -> query -> header -> body order, stopping at the first failure.
// A nil return means the request may proceed.
func ValidateRequest(cfg Config, idx *specindex.Index, h *specindex.OperationHandle, exchange Exchange) *oaserrors.StatusError {
	if err := validatePathParams(cfg, h, exchange); err != nil {
		return err
	}
	if err := validateQueryParams(cfg, h, exchange); err != nil {
		return err
	}
	if err := validateHeaderParams(cfg, h, exchange); err != nil {
		return err
	}
	return validateBody(cfg, idx, h, exchange)
}

func validatePathParams(cfg Config, h *specindex.OperationHandle, exchange Exchange) *oaserrors.StatusError {
	v := paramcheck.New()
	d := &paramcheck.Deserializer{}

	byLowerName := make(map[string]string, len(exchange.PathParams))
	for name, raw := range exchange.PathParams {
		byLowerName[strings.ToLower(name)] = raw
	}

	for _, param := range h.ParametersIn("path") {
		raw, present := byLowerName[strings.ToLower(param.Name)]
		if !present {
			if param.Required {
				return oaserrors.NewStatusError(oaserrors.CodeParameterMissing, param.Name)
			}
			continue
		}

		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Info("path parameter is not valid percent-encoded UTF-8, using raw value", "param", param.Name)
			}
			decoded = raw
		}

		value := d.DeserializePath(decoded, param)
		if res := v.Validate(param.Name, value, true, param, oaserrors.CodeParameterMissing); res.Err != nil {
			return res.Err
		}
	}

	return nil
}

func validateQueryParams(cfg Config, h *specindex.OperationHandle, exchange Exchange) *oaserrors.StatusError {
	v := paramcheck.New()
	d := &paramcheck.Deserializer{}

	for _, param := range h.ParametersIn("query") {
		values, present := exchange.Query[param.Name]
		if !present || len(values) == 0 {
			if param.Style == "deepObject" && param.Schema != nil {
				deep := d.DeserializeQueryDeepObject(exchange.Query, param.Name, param.Schema)
				if len(deep) > 0 {
					if res := v.Validate(param.Name, deep, true, param, oaserrors.CodeQueryParameterMissing); res.Err != nil {
						return res.Err
					}
					continue
				}
			}
			if param.Required {
				return oaserrors.NewStatusError(oaserrors.CodeQueryParameterMissing, param.Name)
			}
			continue
		}

		value := d.DeserializeQuery(values, param)
		if res := v.Validate(param.Name, value, true, param, oaserrors.CodeQueryParameterMissing); res.Err != nil {
			return res.Err
		}
	}

	return nil
}

func validateHeaderParams(cfg Config, h *specindex.OperationHandle, exchange Exchange) *oaserrors.StatusError {
	v := paramcheck.NewRedacting()
	d := &paramcheck.Deserializer{}

	for _, param := range h.ParametersIn("header") {
		canonical := http.CanonicalHeaderKey(param.Name)
		values, present := exchange.Header[canonical]
		if !present || len(values) == 0 {
			if param.Required {
				return oaserrors.NewStatusError(oaserrors.CodeHeaderParameterMissing, param.Name)
			}
			continue
		}

		value := d.DeserializeHeader(values[0], param)
		if res := v.Validate(param.Name, value, true, param, oaserrors.CodeHeaderParameterMissing); res.Err != nil {
			return res.Err
		}
	}

	return nil
}

func validateBody(cfg Config, idx *specindex.Index, h *specindex.OperationHandle, exchange Exchange) *oaserrors.StatusError {
	if cfg.SkipBodyValidation && !exchange.HasBody {
		return nil
	}

	declared, required := requestBodySchema(idx, h, exchange.ContentType)

	switch {
	case exchange.HasBody && declared == nil:
		return oaserrors.NewStatusError(oaserrors.CodeRequestBodyUnexpected, h.Endpoint())

	case declared == nil:
		return nil

	case !exchange.HasBody && required && cfg.BodyParserEnabled:
		return oaserrors.NewStatusError(oaserrors.CodeRequestBodyMissing, h.Endpoint())

	case !exchange.HasBody && required && !cfg.BodyParserEnabled:
		if cfg.Logger != nil {
			cfg.Logger.Info("required request body absent but no body parser is configured, skipping body validation", "endpoint", h.Endpoint())
		}
		return nil

	case !exchange.HasBody:
		return nil
	}

	var data any
	if err := json.Unmarshal(exchange.Body, &data); err != nil {
		return &oaserrors.StatusError{Code: oaserrors.CodeRequestBodyUnexpected, Message: h.Endpoint(), Cause: fmt.Errorf("invalid JSON: %w", err)}
	}

	sv := schemacheck.New()
	issues := sv.Validate(data, declared, "requestBody")
	for _, iss := range issues {
		if iss.Severity != severity.SeverityError {
			continue
		}
		return &oaserrors.StatusError{Code: oaserrors.CodeParameterInvalidFormat, Message: h.Endpoint(), Cause: fmt.Errorf("%s: %s", iss.Path, iss.Message)}
	}

	return nil
}

// requestBodySchema resolves the JSON body schema declared for h, and
// whether a body is required, across both OAS3 requestBody and OAS2 body
// parameter conventions.
func requestBodySchema(idx *specindex.Index, h *specindex.OperationHandle, contentType string) (schema *oastypes.Schema, required bool) {
	if idx.IsOAS3() {
		rb := h.Operation.RequestBody
		if rb == nil {
			return nil, false
		}
		mt := "application/json"
		if contentType != "" {
			mt = contentType
		}
		if media, ok := rb.Content[mt]; ok {
			return media.Schema, rb.Required
		}
		if media, ok := rb.Content["application/json"]; ok {
			return media.Schema, rb.Required
		}
		return nil, rb.Required
	}

	for _, p := range h.Parameters() {
		if p.In == "body" {
			return p.Schema, p.Required
		}
	}
	return nil, false
}
