package middleware

import (
	"context"
	"net/http"

	"sanctuary-app/internal/api/respond"
	"sanctuary-app/internal/domain/access"
	"sanctuary-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

const policyKey = "access_policy"

// AccessGate is the entitlement gateway's access check.
type AccessGate interface {
	AccessPolicy(ctx context.Context, id *users.Identity, resourceID string) (access.Policy, error)
}

// RequireEntitlement guards a route behind the gateway's access check. The
// resource id comes from the named path parameter.
func RequireEntitlement(gate AccessGate, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param(param)

		policy, err := gate.AccessPolicy(c.Request.Context(), CurrentIdentity(c), resourceID)
		if err != nil {
			respond.Error(c, err)
			return
		}

		if !policy.Granted() {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":       "Purchase required",
				"resource_id": resourceID,
				"state":       policy.State,
				"session_id":  policy.SessionID,
			})
			return
		}

		c.Set(policyKey, policy)
		c.Next()
	}
}

// PolicyFrom returns the policy RequireEntitlement attached.
func PolicyFrom(c *gin.Context) (access.Policy, bool) {
	v, ok := c.Get(policyKey)
	if !ok {
		return access.Policy{}, false
	}
	p, ok := v.(access.Policy)
	return p, ok
}
