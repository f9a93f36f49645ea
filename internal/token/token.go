// Package token reads the claims of a bearer token without verifying it.
//
// The client never uses these values to decide whether to send a request;
// the request pipeline reacts to 401 responses instead.  They are for
// display only (who am I logged in as, when does my token lapse).
package token

import (
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// Claims holds the three claims the dashboard cares about.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
	HasExpiry bool
}

var parser = jwt.NewParser()

// Decode parses the middle segment of a three-part token as base64url JSON.
// Any malformed input (wrong segment count, bad base64, bad JSON) yields
// nil, false; Decode never panics.
func Decode(raw string) (*Claims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, false
	}
	c := &Claims{
		Subject: stringClaim(claims["sub"]),
		Role:    stringClaim(claims["role"]),
	}
	if exp, ok := claims["exp"].(float64); ok {
		sec, frac := math.Modf(exp)
		c.ExpiresAt = time.Unix(int64(sec), int64(frac*1e9)).UTC()
		c.HasExpiry = true
	}
	return c, true
}

// stringClaim renders string and numeric claim values alike; issuers
// disagree on whether "sub" is a number or a string.
func stringClaim(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// IsExpired reports whether raw is unreadable or its exp lies before the
// clock's current time.  A token without exp is treated as unexpired.
func IsExpired(raw string, clock clockwork.Clock) bool {
	c, ok := Decode(raw)
	if !ok {
		return true
	}
	if !c.HasExpiry {
		return false
	}
	return c.ExpiresAt.Before(clock.Now())
}

// ExpirationTime returns the exp claim.
func ExpirationTime(raw string) (time.Time, bool) {
	c, ok := Decode(raw)
	if !ok || !c.HasExpiry {
		return time.Time{}, false
	}
	return c.ExpiresAt, true
}

// SubjectOf returns the sub claim.
func SubjectOf(raw string) (string, bool) {
	c, ok := Decode(raw)
	if !ok {
		return "", false
	}
	return c.Subject, true
}

// RoleOf returns the role claim.
func RoleOf(raw string) (string, bool) {
	c, ok := Decode(raw)
	if !ok {
		return "", false
	}
	return c.Role, true
}
