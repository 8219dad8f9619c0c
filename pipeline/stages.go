package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kestrelapi/apigate/normpath"
	"github.com/kestrelapi/apigate/oaserrors"
	"github.com/kestrelapi/apigate/reqvalidate"
	"github.com/kestrelapi/apigate/respvalidate"
	"github.com/kestrelapi/apigate/specindex"
	"github.com/kestrelapi/apigate/tokenauth"
)

// Logger receives informational and error messages emitted by stages.
// Satisfied structurally by *internal/obslog.Adapter.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger is the default Logger used when none is configured.
var NoopLogger Logger = noopLogger{}

// WriteStatusError writes err's wire body as the JSON response, and
// finalises the exchange (the caller must not call next afterwards).
// The exchange's RequestID is echoed back as X-Request-Id so a client
// can correlate a rejection with server-side log lines.
func WriteStatusError(ex *Exchange, err *oaserrors.StatusError) {
	ex.Writer.Header().Set("Content-Type", "application/json")
	if ex.RequestID != "" {
		ex.Writer.Header().Set("X-Request-Id", ex.RequestID)
	}
	ex.Writer.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(ex.Writer).Encode(err.WireBody())
}

// SpecMatchStage resolves the request path and method to an operation
// through idx, seeding the audit context with the endpoint and operation
// handle (I2: any request forwarded past this stage carries a non-nil
// Operation Handle whose method matches the request's).
func SpecMatchStage(idx *specindex.Index) Stage {
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		path, err := normpath.New(ex.Request.URL.Path, idx.BasePath())
		if err != nil {
			WriteStatusError(ex, oaserrors.NewStatusError(oaserrors.CodeInvalidRequestPath, ex.Request.URL.Path))
			return nil
		}

		h, resolveErr := idx.Resolve(path.Normalised(), ex.Request.Method)
		if resolveErr != nil {
			if statusErr, ok := resolveErr.(*oaserrors.StatusError); ok {
				WriteStatusError(ex, statusErr)
				return nil
			}
			WriteStatusError(ex, oaserrors.NewStatusError(oaserrors.CodeInvalidRequestPath, path.Normalised()))
			return nil
		}

		ex.Audit.SetOperation(h)
		ex.Audit.SetEndpoint(h.Endpoint())
		return next(ctx, ex, nil)
	}
}

// JWTVerifyStage extracts and verifies the bearer token from the
// Authorization header, then records clientId/userId/subjectClaims on
// the audit context. When enabled is false, the stage is a pass-through
// (unauthenticated deployments still run request/response validation).
func JWTVerifyStage(verifier *tokenauth.Verifier, enabled bool, logger Logger) Stage {
	if logger == nil {
		logger = NoopLogger
	}
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		if !enabled {
			return next(ctx, ex, nil)
		}

		token, ok := tokenauth.ExtractBearerToken(ex.Request.Header.Get("Authorization"))
		if !ok {
			WriteStatusError(ex, oaserrors.NewStatusError(oaserrors.CodeMissingAuthToken, ""))
			return nil
		}

		claims, err := verifier.Verify(ctx, token, false)
		if err != nil {
			logger.Error("jwt verification failed", "error", err)
			code := oaserrors.CodeInvalidAuthToken
			if isExpired(err) {
				code = oaserrors.CodeAuthTokenExpired
			}
			WriteStatusError(ex, oaserrors.NewStatusError(code, ""))
			return nil
		}

		ex.Audit.SetClientID(claims.StringClaim("client_id"))
		ex.Audit.SetUserID(claims.StringClaim("user_id"))
		ex.Audit.SetSubjectClaims(claims)
		return next(ctx, ex, nil)
	}
}

func isExpired(err error) bool {
	return errors.Is(err, tokenauth.ErrExpired)
}

// ScopeCheckStage implements the JWT+Scope sequence's scope half: an
// optional secondary X-Scope-Token is verified and preferred over the
// primary token's own scope claim; the spec-required scopes are the
// first oauth2 security requirement's scope list for the resolved
// operation. Only meaningful for OpenAPI 3 documents with scope
// verification enabled — a pass-through otherwise.
func ScopeCheckStage(idx *specindex.Index, verifier *tokenauth.Verifier, enabled bool) Stage {
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		if !enabled || !idx.IsOAS3() {
			return next(ctx, ex, nil)
		}

		h := ex.Audit.Operation()
		specScopes, _ := idx.FirstOAuth2Scopes(h)

		scopeHeader := ex.Request.Header.Get("X-Scope-Token")
		if scopeHeader != "" {
			scopeToken, ok := tokenauth.ExtractBearerToken(scopeHeader)
			if !ok {
				WriteStatusError(ex, oaserrors.NewStatusError(oaserrors.CodeInvalidScopeToken, ""))
				return nil
			}

			scopeClaims, err := verifier.Verify(ctx, scopeToken, false)
			if err != nil {
				code := oaserrors.CodeInvalidScopeToken
				if isExpired(err) {
					code = oaserrors.CodeScopeTokenExpired
				}
				WriteStatusError(ex, oaserrors.NewStatusError(code, ""))
				return nil
			}

			ex.Audit.SetScopeClientID(scopeClaims.StringClaim("client_id"))
			ex.Audit.SetAccessClaims(scopeClaims)

			if !scopesMatch(specScopes, scopeClaims.Scopes()) {
				WriteStatusError(ex, oaserrors.NewStatusError(oaserrors.CodeScopeTokenScopeMismatch, h.Endpoint()))
				return nil
			}
		} else {
			primaryScopes := ex.Audit.SubjectClaims().Scopes()
			if !scopesMatch(specScopes, primaryScopes) {
				WriteStatusError(ex, oaserrors.NewStatusError(oaserrors.CodeAuthTokenScopeMismatch, h.Endpoint()))
				return nil
			}
		}

		return next(ctx, ex, nil)
	}
}

// scopesMatch implements the any-of scope test: an empty or absent
// spec requirement always matches; otherwise at least one required
// scope must appear in the presented scopes.
func scopesMatch(specScopes, presented []string) bool {
	if len(specScopes) == 0 {
		return true
	}
	present := make(map[string]bool, len(presented))
	for _, s := range presented {
		present[s] = true
	}
	for _, want := range specScopes {
		if present[want] {
			return true
		}
	}
	return false
}

// BodyBufferStage reads the request body fully into ex.Body so
// RequestValidateStage can inspect it, then replaces ex.Request.Body
// with a fresh reader over the same bytes so the downstream handler
// still sees an unconsumed body. A read error finalises the exchange
// with a request-body-unexpected response rather than forwarding a
// request whose body can no longer be trusted.
func BodyBufferStage() Stage {
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		if ex.Request.Body == nil || ex.Request.Body == http.NoBody {
			return next(ctx, ex, nil)
		}
		raw, err := io.ReadAll(ex.Request.Body)
		_ = ex.Request.Body.Close()
		if err != nil {
			WriteStatusError(ex, &oaserrors.StatusError{Code: oaserrors.CodeRequestBodyUnexpected, Cause: err})
			return nil
		}
		ex.Body = raw
		ex.HasBody = len(raw) > 0
		ex.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return next(ctx, ex, nil)
	}
}

// RequestValidateStage runs the request validator against the operation
// the spec-match stage resolved.
func RequestValidateStage(cfg reqvalidate.Config, idx *specindex.Index) Stage {
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		h := ex.Audit.Operation()
		exchange := reqvalidate.Exchange{
			PathParams:  h.PathParams,
			Query:       ex.Request.URL.Query(),
			Header:      ex.Request.Header,
			Body:        ex.Body,
			HasBody:     ex.HasBody,
			ContentType: ex.ContentType,
		}
		if err := reqvalidate.ValidateRequest(cfg, idx, h, exchange); err != nil {
			WriteStatusError(ex, err)
			return nil
		}
		return next(ctx, ex, nil)
	}
}

// DownstreamStage invokes ex.Downstream through a response recorder so a
// following response-validate stage can inspect the status/body/content
// type actually written.
func DownstreamStage() Stage {
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		rec := &responseRecorder{ResponseWriter: ex.Writer, status: http.StatusOK}
		if ex.Downstream != nil {
			ex.Downstream.ServeHTTP(rec, ex.Request)
		}
		ex.ResponseStatus = rec.status
		ex.ResponseBody = rec.body
		ex.ResponseContentType = rec.Header().Get("Content-Type")
		return next(ctx, ex, nil)
	}
}

// ResponseValidateStage checks the response the downstream handler
// produced against the operation's declared response schema. It never
// blocks the response already written to the client — a violation is
// logged, not retro-fitted onto an already-sent status line.
func ResponseValidateStage(logger Logger) Stage {
	if logger == nil {
		logger = NoopLogger
	}
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		h := ex.Audit.Operation()
		if err := respvalidate.ValidateContent(h, ex.ResponseStatus, ex.ResponseContentType, ex.ResponseBody); err != nil {
			logger.Error("response failed contract validation", "endpoint", h.Endpoint(), "error", err, "cause", err.Cause)
		}
		return next(ctx, ex, nil)
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}
