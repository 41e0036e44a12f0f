package middlewares

import "github.com/gin-gonic/gin"

// gin context keys shared by middlewares and handlers
const (
	CtxRequestID   = "request_id"
	ctxIdentityKey = "auth.identity"
)

// Identity is the authenticated caller as asserted by a verified access token.
type Identity struct {
	UserID string
	Role   string
}

// IdentityFrom returns the caller set by RequireAuth, if any.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return Identity{}, false
	}

	id, ok := v.(Identity)
	return id, ok
}
