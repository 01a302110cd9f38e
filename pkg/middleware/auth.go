package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/internal/revocation"
	"github.com/inkpub/micropub/pkg/logger"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

func abortAuth(c *gin.Context, status int, code, description string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "error_description": description})
}

// bearerToken reads the token from the Authorization header, falling back
// to the access_token form field.
func bearerToken(c *gin.Context) (string, bool) {
	if auth := c.GetHeader("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	if token := c.PostForm("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier. Revoked tokens are rejected.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.PostForm("access_token") == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing access token")
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid Authorization header")
			return
		}

		revoked, err := revocation.IsRevoked(c.Request.Context(), token)
		if err != nil {
			logger.Warnf("revocation check failed: %v", err)
		}
		if revoked {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "token has been revoked")
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid token: "+err.Error())
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "failed to parse claims")
			return
		}

		c.Set("claims", claims)
		c.Set("token", token)
		c.Next()
	}
}

// Scopes returns the space separated scope claim of the verified token.
func Scopes(c *gin.Context) []string {
	v, ok := c.Get("claims")
	if !ok {
		return nil
	}
	claims, _ := v.(map[string]interface{})
	switch s := claims["scope"].(type) {
	case string:
		return strings.Fields(s)
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// HasScope reports whether the verified token grants scope. "post" is
// accepted as a legacy alias of create.
func HasScope(c *gin.Context, scope string) bool {
	for _, s := range Scopes(c) {
		if s == scope || (scope == "create" && s == "post") {
			return true
		}
	}
	return false
}

// RequireScope aborts with 403 insufficient_scope when the token lacks scope.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasScope(c, scope) {
			abortAuth(c, http.StatusForbidden, "insufficient_scope", "token does not grant the \""+scope+"\" scope")
			return
		}
		c.Next()
	}
}
