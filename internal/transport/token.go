package transport

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiresWithin reports whether token is a JWT whose exp claim falls inside
// the leeway window. Tokens that do not parse, or carry no exp claim, are
// reported as not expiring so they are attached unchanged and the server
// stays the authority on their validity.
func expiresWithin(token string, leeway time.Duration, now time.Time) bool {
	if token == "" || leeway <= 0 {
		return false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now.Add(leeway))
}
