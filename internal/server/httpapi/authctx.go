package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
)

const principalKey = "tm.principal"

// principal is the caller established by requireAuth for the rest of the handler chain.
type principal struct {
	ID     uuid.UUID
	Claims *claims
}

func setPrincipal(c *gin.Context, id uuid.UUID, cl *claims) {
	c.Set(principalKey, principal{ID: id, Claims: cl})
}

// principalOf returns the authenticated caller, if any.
func principalOf(c *gin.Context) (principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return principal{}, false
	}
	p, ok := v.(principal)
	return p, ok
}

// userID returns the authenticated user id; requireAuth guarantees it is present.
func userID(c *gin.Context) string {
	p, _ := principalOf(c)
	return p.ID.String()
}
