package oauth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
)

const (
	pageDone   = `<!doctype html><title>wastewatch</title><p>Sign-in complete. You can close this window.</p>`
	pageFailed = `<!doctype html><title>wastewatch</title><p>Sign-in failed. Return to the terminal for details.</p>`
)

func newRouter(results chan<- callbackResult) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/auth/:provider", beginHandler)
	r.GET("/auth/:provider/callback", callbackHandler(results))

	return r
}

// sets provider in query for gothic
func withProvider(c *gin.Context) bool {
	provider := c.Param("provider")
	if provider != providerName {
		c.String(http.StatusBadRequest, "invalid provider")
		return false
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	return true
}

func beginHandler(c *gin.Context) {
	if !withProvider(c) {
		return
	}

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func callbackHandler(results chan<- callbackResult) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !withProvider(c) {
			return
		}

		var res callbackResult

		if reason := c.Query("error"); reason != "" {
			if reason == "access_denied" {
				res.err = autherrors.NewProviderError(autherrors.CodePopupClosedByUser)
			} else {
				res.err = internalError(reason)
			}
		} else {
			res.user, res.err = gothic.CompleteUserAuth(c.Writer, c.Request)
			if res.err != nil {
				res.err = internalError(res.err.Error())
			}
		}

		// first callback wins
		select {
		case results <- res:
		default:
		}

		page := pageDone
		if res.err != nil {
			page = pageFailed
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}
