package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	auditdomain "github.com/smallbiznis/faktura/internal/audit/domain"
	"github.com/smallbiznis/faktura/internal/auditcontext"
	obscontext "github.com/smallbiznis/faktura/internal/observability/context"
)

// AuthRequired authenticates requests with a bearer token. The user ID
// becomes the tenant account ID scoping every downstream query.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authSvc.VerifyToken(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		ctx = accountcontext.WithAccountID(ctx, user.ID)
		ctx = obscontext.WithAccountID(ctx, user.ID.String())
		ctx = auditcontext.WithActor(ctx, string(auditdomain.ActorTypeUser), user.ID.String())
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Set("account_id", user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}
