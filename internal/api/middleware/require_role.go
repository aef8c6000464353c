package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/dojoportal/internal/guard"
	"github.com/yoockh/dojoportal/internal/session"
	"github.com/yoockh/dojoportal/internal/utils"
)

func RequireAuth() gin.HandlerFunc { return requireGuard(guard.Auth) }

func RequireAdmin() gin.HandlerFunc { return requireGuard(guard.Admin) }

func requireGuard(decide func(session.State) guard.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := decide(SessionFrom(c))
		switch d {
		case guard.Render:
			c.Next()
		case guard.Placeholder:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiError{
				Code:    utils.CodeUnavailable,
				Message: "session is still loading",
			})
		case guard.RedirectSignIn:
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:     utils.CodeUnauthorized,
				Message:  "sign in required",
				Redirect: d.Target(),
			})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:     utils.CodeForbidden,
				Message:  "forbidden",
				Redirect: d.Target(),
			})
		}
	}
}
