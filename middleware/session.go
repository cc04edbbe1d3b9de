package middleware

import (
	"github.com/gin-gonic/gin"

	"toolboard/utils"
)

const (
	sessionCookie = "toolboard_session"
	// ContextSessionKey stores the visitor session token in the Gin context.
	ContextSessionKey = "session_id"
)

// Session assigns each browser a stable session token used for unique
// visitor detection. The cookie has no expiry so a new browser session
// counts as a new visitor.
func Session() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(sessionCookie)
		if err != nil || token == "" {
			token = utils.NewSessionToken()
			ctx.SetCookie(sessionCookie, token, 0, "/", "", false, true)
		}
		ctx.Set(ContextSessionKey, token)
		ctx.Next()
	}
}
