// Package enforcer ties the spec index, configuration snapshot and JWT
// key cache into a single Engine value built once at startup, and wires
// them into the ordered middleware chain: spec-match, jwt-verify,
// scope-check, request-validate, the downstream handler, and
// response-validate.
package enforcer

import (
	"net/http"

	"github.com/kestrelapi/apigate/config"
	"github.com/kestrelapi/apigate/pipeline"
	"github.com/kestrelapi/apigate/reqvalidate"
	"github.com/kestrelapi/apigate/specindex"
	"github.com/kestrelapi/apigate/specindex/oastypes"
	"github.com/kestrelapi/apigate/tokenauth"
)

// Engine holds everything the pipeline needs for the life of the
// process: the spec index, the configuration snapshot, and the key
// cache backing JWT verification. It is immutable after New returns.
type Engine struct {
	Index  *specindex.Index
	Config *config.Snapshot
	Keys   *tokenauth.KeyCache
	Logger pipeline.Logger
}

// New builds an Engine from a parsed spec document and a configuration
// snapshot. keys may be nil when JWT verification is disabled.
func New(parsed *oastypes.ParseResult, cfg *config.Snapshot, keys *tokenauth.KeyCache, logger pipeline.Logger) (*Engine, error) {
	idx, err := specindex.New(parsed)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = pipeline.NoopLogger
	}
	return &Engine{Index: idx, Config: cfg, Keys: keys, Logger: logger}, nil
}

// Middleware builds the full enforcement chain as a net/http middleware:
// a func(http.Handler) http.Handler that runs every request through
// spec-match, jwt-verify, scope-check and request-validate before
// calling next, then runs response-validate over what next produced.
func (e *Engine) Middleware() func(http.Handler) http.Handler {
	verifier := &tokenauth.Verifier{
		Keys:      e.Keys,
		ClockSkew: e.Config.Security.JWT.ClockSkewInSeconds,
	}

	stages := []pipeline.Stage{
		pipeline.SpecMatchStage(e.Index),
		pipeline.JWTVerifyStage(verifier, e.Config.Security.EnableVerifyJWT, e.Logger),
		pipeline.ScopeCheckStage(e.Index, verifier, e.Config.Security.EnableVerifyScope),
	}
	if e.Config.Validator.Enabled {
		stages = append(stages,
			pipeline.BodyBufferStage(),
			pipeline.RequestValidateStage(reqvalidate.Config{
				SkipBodyValidation: e.Config.Validator.SkipBodyValidation,
				BodyParserEnabled:  true,
				Logger:             e.Logger,
			}, e.Index),
		)
	}
	stages = append(stages, pipeline.DownstreamStage())
	if e.Config.Validator.Enabled {
		stages = append(stages, pipeline.ResponseValidateStage(e.Logger))
	}
	chain := pipeline.New(stages...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ex := pipeline.NewExchange(w, r)
			ex.Downstream = next
			if r.Body != nil {
				ex.ContentType = r.Header.Get("Content-Type")
			}
			if err := pipeline.Run(r.Context(), chain, ex); err != nil {
				e.Logger.Error("enforcement chain aborted", "error", err)
			}
		})
	}
}
