package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/internal/micropub"
	"github.com/inkpub/micropub/internal/revocation"
	"github.com/inkpub/micropub/pkg/logger"
	"github.com/inkpub/micropub/pkg/middleware"
)

// TokenHandler serves the token endpoint used by Micropub clients to
// check and revoke their access tokens. Tokens are minted out of band
// (mpctl token or the OIDC issuer).
type TokenHandler struct {
	Verifier middleware.Verifier
	// DefaultTTL bounds the revocation entry of tokens without an exp
	// claim. Zero keeps such entries forever.
	DefaultTTL time.Duration
}

// RegisterTokenRoutes mounts GET and POST at the root of rg.
func RegisterTokenRoutes(rg gin.IRoutes, h *TokenHandler) {
	rg.GET("", middleware.AuthMiddleware(h.Verifier), h.Verify)
	rg.POST("", h.Revoke)
}

// Verify returns the me, client_id and scope of the bearer token.
func (h *TokenHandler) Verify(c *gin.Context) {
	v, _ := c.Get("claims")
	claims, _ := v.(map[string]interface{})
	me, _ := claims["me"].(string)
	if me == "" {
		me, _ = claims["sub"].(string)
	}
	clientID, _ := claims["client_id"].(string)
	c.JSON(http.StatusOK, gin.H{
		"me":        me,
		"client_id": clientID,
		"scope":     strings.Join(middleware.Scopes(c), " "),
	})
}

// Revoke handles action=revoke. Revoking an unknown or already expired
// token succeeds, as token endpoints must not reveal token validity.
func (h *TokenHandler) Revoke(c *gin.Context) {
	if action := c.PostForm("action"); action != "revoke" {
		writeError(c, micropub.InvalidRequest("unsupported action %q", action))
		return
	}
	token := c.PostForm("token")
	if token == "" {
		writeError(c, micropub.InvalidRequest("token is required"))
		return
	}
	if !revocation.Enabled() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, micropub.ErrorBody{Error: "temporarily_unavailable", ErrorDescription: "token revocation is not configured"})
		return
	}

	ttl := h.DefaultTTL
	if exp, err := tokenExpiry(token); err == nil {
		ttl = time.Until(exp)
		if ttl <= 0 {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
	}
	if err := revocation.Revoke(c.Request.Context(), token, ttl); err != nil {
		logger.Errorf("failed to revoke token: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, micropub.ErrorBody{Error: "server_error", ErrorDescription: "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// tokenExpiry decodes the JWT payload and returns the exp claim. The
// signature is not verified; the result only sizes the revocation entry.
func tokenExpiry(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		// try standard base64 (pad) as a fallback
		b, err = base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return time.Time{}, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), nil
	case nil:
		return time.Time{}, fmt.Errorf("exp claim not present")
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", exp)
	}
}
