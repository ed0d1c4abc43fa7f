package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ownerFromRequest extracts and verifies the caller's identity. The token
// travels in the `token` cookie or an Authorization bearer header; its
// `userId` claim is the owner id the pipeline trusts unconditionally.
// Issuing tokens (signup, OTP verification) happens in the auth service,
// not here.
func (s *Server) ownerFromRequest(r *http.Request) (string, error) {
	raw := ""
	if cookie, err := r.Cookie("token"); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		header := r.Header.Get("Authorization")
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			raw = strings.TrimSpace(after)
		}
	}
	if raw == "" {
		return "", fmt.Errorf("no token provided")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected token claims")
	}
	ownerID, ok := claims["userId"].(string)
	if !ok || ownerID == "" {
		return "", fmt.Errorf("token has no userId claim")
	}

	return ownerID, nil
}
