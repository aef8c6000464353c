package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/dojoportal/internal/session"
	"github.com/yoockh/dojoportal/internal/utils"
)

const ctxSession = "session"

// Session resolves the request identity into a settled session state.
// Profile failures abort the request; nothing is retried.
func Session(profiles session.ProfileEnsurer, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := session.Resolve(c.Request.Context(), profiles, IdentityFrom(c))
		if err != nil {
			log.WithError(err).WithField("user_id", c.GetString(ctxUserID)).Warn("session resolve failed")
			c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{
				Code:    utils.CodeOf(err),
				Message: utils.UserMessage(err),
			})
			return
		}
		c.Set(ctxSession, st)
		c.Next()
	}
}

// SessionFrom returns the resolved state. Requests that skipped the
// Session middleware read as still loading.
func SessionFrom(c *gin.Context) session.State {
	if v, ok := c.Get(ctxSession); ok {
		if st, ok := v.(session.State); ok {
			return st
		}
	}
	return session.State{Loading: true}
}
