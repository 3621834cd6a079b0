package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
	"github.com/noah-isme/class-record-api/pkg/response"
)

// RequireRoles lets through sessions holding one of the roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[session.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not permitted"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubjectAccessChecker decides whether a session may work with a subject.
type SubjectAccessChecker interface {
	CanAccessSubject(ctx context.Context, session models.Session, subject string) (bool, error)
}

// RequireSubjectAccess guards routes carrying a :subject parameter. Teachers
// reach only the subjects assigned to them.
func RequireSubjectAccess(checker SubjectAccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		subject := c.Param("subject")
		if subject == "" {
			c.Next()
			return
		}
		allowed, err := checker.CanAccessSubject(c.Request.Context(), session, subject)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this teacher"))
			c.Abort()
			return
		}
		c.Next()
	}
}
