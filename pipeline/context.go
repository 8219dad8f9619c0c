package pipeline

import (
	"github.com/kestrelapi/apigate/specindex"
	"github.com/kestrelapi/apigate/tokenauth"
)

// Context is the per-request audit context: a mapping from well-known
// keys to values, populated by upstream stages and read by downstream
// ones. It is never accessed concurrently — stages for one exchange run
// sequentially on the goroutine handling that exchange — so it needs no
// locking of its own.
type Context struct {
	values map[string]any
}

// NewContext returns an empty audit context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

const (
	keyEndpoint      = "endpoint"
	keyOperation     = "operation"
	keyClientID      = "clientId"
	keyUserID        = "userId"
	keySubjectClaims = "subjectClaims"
	keyScopeClientID = "scopeClientId"
	keyAccessClaims  = "accessClaims"
)

func (c *Context) Endpoint() string {
	v, _ := c.values[keyEndpoint].(string)
	return v
}

func (c *Context) SetEndpoint(endpoint string) { c.values[keyEndpoint] = endpoint }

func (c *Context) Operation() *specindex.OperationHandle {
	v, _ := c.values[keyOperation].(*specindex.OperationHandle)
	return v
}

func (c *Context) SetOperation(h *specindex.OperationHandle) { c.values[keyOperation] = h }

func (c *Context) ClientID() string {
	v, _ := c.values[keyClientID].(string)
	return v
}

func (c *Context) SetClientID(id string) { c.values[keyClientID] = id }

func (c *Context) UserID() string {
	v, _ := c.values[keyUserID].(string)
	return v
}

func (c *Context) SetUserID(id string) { c.values[keyUserID] = id }

func (c *Context) SubjectClaims() tokenauth.Claims {
	v, _ := c.values[keySubjectClaims].(tokenauth.Claims)
	return v
}

func (c *Context) SetSubjectClaims(claims tokenauth.Claims) { c.values[keySubjectClaims] = claims }

func (c *Context) ScopeClientID() string {
	v, _ := c.values[keyScopeClientID].(string)
	return v
}

func (c *Context) SetScopeClientID(id string) { c.values[keyScopeClientID] = id }

func (c *Context) AccessClaims() tokenauth.Claims {
	v, _ := c.values[keyAccessClaims].(tokenauth.Claims)
	return v
}

func (c *Context) SetAccessClaims(claims tokenauth.Claims) { c.values[keyAccessClaims] = claims }
