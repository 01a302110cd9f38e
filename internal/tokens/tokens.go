// Package tokens mints and verifies the HS256 access tokens accepted by
// the Micropub endpoint.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inkpub/micropub/pkg/middleware"
)

// Generate creates a signed access token for the publisher me with the
// given space separated scope.
func Generate(secret, me, clientID, scope string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"me":    me,
		"sub":   me,
		"scope": strings.Join(strings.Fields(scope), " "),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if clientID != "" {
		claims["client_id"] = clientID
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

type claimsToken jwt.MapClaims

func (t claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HMACVerifier verifies HS256 tokens signed with a shared secret. When Me
// is set, tokens issued for another publisher are rejected.
type HMACVerifier struct {
	Secret string
	Me     string
}

func NewHMACVerifier(secret, me string) *HMACVerifier {
	return &HMACVerifier{Secret: secret, Me: me}
}

func (v *HMACVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return nil, errors.New("token has no expiry")
	}
	if v.Me != "" {
		me, _ := claims["me"].(string)
		if strings.TrimRight(me, "/") != strings.TrimRight(v.Me, "/") {
			return nil, errors.New("token was issued for a different publisher")
		}
	}
	return claimsToken(claims), nil
}
