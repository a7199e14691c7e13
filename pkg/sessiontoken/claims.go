package sessiontoken

import "github.com/golang-jwt/jwt/v5"

// Claims identifies one booking session. The session state itself lives in redis.
type Claims struct {
	SessionID   string `json:"sid"`
	ServiceLine string `json:"line"`
	jwt.RegisteredClaims
}
