package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a membership bearer token. Subject, UPN and Email
// all carry the user's email.
type Claims struct {
	jwt.RegisteredClaims

	UPN    string   `json:"upn"`
	Email  string   `json:"email"`
	Groups []string `json:"groups"`
}
