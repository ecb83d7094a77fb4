package zgw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource mints the short-lived HS256 client tokens ZGW services expect.
// The claims (iss, iat, client_id, user_id, user_representation) follow the
// ZGW autorisaties convention; the token is signed with the shared client
// secret and regenerated per request.
type TokenSource struct {
	clientID string
	secret   []byte
}

func NewTokenSource(clientID, clientSecret string) *TokenSource {
	return &TokenSource{clientID: clientID, secret: []byte(clientSecret)}
}

// Token returns a freshly signed bearer token.
func (t *TokenSource) Token() (string, error) {
	claims := jwt.MapClaims{
		"iss":                 t.clientID,
		"iat":                 time.Now().Unix(),
		"client_id":           t.clientID,
		"user_id":             t.clientID,
		"user_representation": t.clientID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign zgw token: %w", err)
	}
	return signed, nil
}
