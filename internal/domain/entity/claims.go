package entity

import "github.com/golang-jwt/jwt/v5"

// Claims carries the authenticated user resolved from an access token.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}
