package pipeline_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kestrelapi/apigate/pipeline"
	"github.com/kestrelapi/apigate/reqvalidate"
	"github.com/kestrelapi/apigate/specindex"
	"github.com/kestrelapi/apigate/specindex/oastypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyLogger struct {
	errors []string
}

func (s *spyLogger) Debug(string, ...any) {}
func (s *spyLogger) Info(string, ...any)  {}
func (s *spyLogger) Warn(string, ...any)  {}
func (s *spyLogger) Error(msg string, kv ...any) {
	s.errors = append(s.errors, msg)
}

func greetIndex(t *testing.T) *specindex.Index {
	t.Helper()
	doc := &oastypes.OAS3Document{
		OpenAPI: "3.0.3",
		Info:    &oastypes.Info{Title: "greet", Version: "1.0.0"},
		Paths: oastypes.Paths{
			"/greet/{name}": &oastypes.PathItem{
				Get: &oastypes.Operation{
					OperationID: "greet",
					Parameters: []*oastypes.Parameter{
						{Name: "name", In: "path", Required: true, Schema: &oastypes.Schema{Type: "string"}},
					},
					Responses: &oastypes.Responses{Codes: map[string]*oastypes.Response{
						"200": {Content: map[string]*oastypes.MediaType{
							"application/json": {Schema: &oastypes.Schema{
								Type:     "object",
								Required: []string{"message"},
								Properties: map[string]*oastypes.Schema{
									"message": {Type: "string"},
								},
							}},
						}},
					}},
				},
			},
		},
	}
	idx, err := specindex.New(&oastypes.ParseResult{OASVersion: oastypes.OASVersion300, Document: doc})
	require.NoError(t, err)
	return idx
}

func buildChain(idx *specindex.Index, logger pipeline.Logger) pipeline.Stage {
	return pipeline.New(
		pipeline.SpecMatchStage(idx),
		pipeline.RequestValidateStage(reqvalidate.Config{}, idx),
		pipeline.DownstreamStage(),
		pipeline.ResponseValidateStage(logger),
	)
}

func TestPipeline_HappyPathServesRequest(t *testing.T) {
	idx := greetIndex(t)
	logger := &spyLogger{}
	chain := buildChain(idx, logger)

	req := httptest.NewRequest(http.MethodGet, "/greet/ada", nil)
	rw := httptest.NewRecorder()
	ex := pipeline.NewExchange(rw, req)
	ex.Downstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"hello ada"}`))
	})

	err := pipeline.Run(context.Background(), chain, ex)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Empty(t, logger.errors)
}

func TestPipeline_UnknownPathIsFinalizedWithoutReachingDownstream(t *testing.T) {
	idx := greetIndex(t)
	logger := &spyLogger{}
	chain := buildChain(idx, logger)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rw := httptest.NewRecorder()
	ex := pipeline.NewExchange(rw, req)
	called := false
	ex.Downstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	err := pipeline.Run(context.Background(), chain, ex)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rw.Code)
	assert.False(t, called)
}

func TestPipeline_InvalidPathParamShortCircuitsBeforeDownstream(t *testing.T) {
	doc := &oastypes.OAS3Document{
		OpenAPI: "3.0.3",
		Info:    &oastypes.Info{Title: "greet", Version: "1.0.0"},
		Paths: oastypes.Paths{
			"/greet/{id}": &oastypes.PathItem{
				Get: &oastypes.Operation{
					OperationID: "greetById",
					Parameters: []*oastypes.Parameter{
						{Name: "id", In: "path", Required: true, Schema: &oastypes.Schema{Type: "integer"}},
					},
					Responses: &oastypes.Responses{Codes: map[string]*oastypes.Response{}},
				},
			},
		},
	}
	idx, err := specindex.New(&oastypes.ParseResult{OASVersion: oastypes.OASVersion300, Document: doc})
	require.NoError(t, err)

	logger := &spyLogger{}
	chain := buildChain(idx, logger)

	req := httptest.NewRequest(http.MethodGet, "/greet/notanumber", nil)
	rw := httptest.NewRecorder()
	ex := pipeline.NewExchange(rw, req)
	called := false
	ex.Downstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	runErr := pipeline.Run(context.Background(), chain, ex)
	require.NoError(t, runErr)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.False(t, called)
}

func TestPipeline_ResponseSchemaViolationIsLoggedNotBlocking(t *testing.T) {
	idx := greetIndex(t)
	logger := &spyLogger{}
	chain := buildChain(idx, logger)

	req := httptest.NewRequest(http.MethodGet, "/greet/ada", nil)
	rw := httptest.NewRecorder()
	ex := pipeline.NewExchange(rw, req)
	ex.Downstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"wrong":"shape"}`))
	})

	err := pipeline.Run(context.Background(), chain, ex)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.NotEmpty(t, logger.errors)
}

func echoIndex(t *testing.T) *specindex.Index {
	t.Helper()
	doc := &oastypes.OAS3Document{
		OpenAPI: "3.0.3",
		Info:    &oastypes.Info{Title: "echo", Version: "1.0.0"},
		Paths: oastypes.Paths{
			"/echo": &oastypes.PathItem{
				Post: &oastypes.Operation{
					OperationID: "echo",
					RequestBody: &oastypes.RequestBody{
						Required: true,
						Content: map[string]*oastypes.MediaType{
							"application/json": {Schema: &oastypes.Schema{
								Type:     "object",
								Required: []string{"name"},
								Properties: map[string]*oastypes.Schema{
									"name": {Type: "string"},
								},
							}},
						},
					},
					Responses: &oastypes.Responses{Codes: map[string]*oastypes.Response{
						"200": {Content: map[string]*oastypes.MediaType{
							"application/json": {Schema: &oastypes.Schema{Type: "object"}},
						}},
					}},
				},
			},
		},
	}
	idx, err := specindex.New(&oastypes.ParseResult{OASVersion: oastypes.OASVersion300, Document: doc})
	require.NoError(t, err)
	return idx
}

func buildChainWithBody(idx *specindex.Index, logger pipeline.Logger) pipeline.Stage {
	return pipeline.New(
		pipeline.SpecMatchStage(idx),
		pipeline.BodyBufferStage(),
		pipeline.RequestValidateStage(reqvalidate.Config{BodyParserEnabled: true}, idx),
		pipeline.DownstreamStage(),
		pipeline.ResponseValidateStage(logger),
	)
}

func TestPipeline_BodyBufferStageLetsDownstreamReadTheBody(t *testing.T) {
	idx := echoIndex(t)
	logger := &spyLogger{}
	chain := buildChainWithBody(idx, logger)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"ada"}`))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	ex := pipeline.NewExchange(rw, req)

	var downstreamSaw []byte
	ex.Downstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downstreamSaw, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(downstreamSaw)
	})

	err := pipeline.Run(context.Background(), chain, ex)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, `{"name":"ada"}`, string(downstreamSaw))
}

func TestPipeline_BodyBufferStageRejectsSchemaViolationBeforeDownstream(t *testing.T) {
	idx := echoIndex(t)
	logger := &spyLogger{}
	chain := buildChainWithBody(idx, logger)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"wrong":"shape"}`))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	ex := pipeline.NewExchange(rw, req)
	called := false
	ex.Downstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	err := pipeline.Run(context.Background(), chain, ex)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.False(t, called)
}

func TestContext_AccessorsRoundTrip(t *testing.T) {
	ctx := pipeline.NewContext()
	ctx.SetEndpoint("/greet/{name}@get")
	ctx.SetClientID("client-1")
	assert.Equal(t, "/greet/{name}@get", ctx.Endpoint())
	assert.Equal(t, "client-1", ctx.ClientID())
	assert.Equal(t, "", ctx.UserID())
}
