package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"papertrail/internal/authz"
)

// Authorizer decides whether a policy subject may act on an object.
type Authorizer interface {
	Authorize(subject, object, action string) (bool, error)
}

// RequirePermission returns middleware that checks the caller's role against
// the access policy for object and action. It must run after AuthMiddleware.
func RequirePermission(a Authorizer, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := authz.SubjectFromRole(GetRole(c))

		allowed, err := a.Authorize(subject, object, action)
		if err != nil {
			requestID, _ := c.Get("request_id")
			log.Printf("[%s] authz error for %s %s/%s: %v", requestID, subject, object, action, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "AUTHZ_ERROR", "message": "authorization check failed"},
			})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "insufficient permissions"},
			})
			return
		}
		c.Next()
	}
}
