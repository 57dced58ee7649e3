package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/csihub/codefest-api/internal/api/handler/v1/response"
	"github.com/csihub/codefest-api/internal/pkg/jwthelper"
)

const bearerPrefix = "Bearer "

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{signingKey: []byte(signingKey)}
}

// VerifyJWT gates admin routes. Websocket clients can't set headers, so
// the token is also accepted as a query parameter.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)
		if tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized())
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized())
			return
		}

		ctx.Set("subject", claims.Subject)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}

	return ctx.Query("token")
}
