package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type ctxKey int

// ClaimsKey is where the authentication middleware stores the verified
// claims on the request context.
const ClaimsKey ctxKey = iota

// Claims is the token payload: subject is the user's email; CustomerID is
// only set for role "user" accounts linked to a customer.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Role       string `json:"role"`
	CustomerID int64  `json:"customer_id,omitempty"`
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanAccess is the single ownership rule applied before every customer- or
// order-scoped operation: admins may touch anything, everyone else only the
// resources of the customer their account is linked to.
func CanAccess(c Claims, ownerCustomerID int64) bool {
	return c.IsAdmin() || (c.CustomerID != 0 && c.CustomerID == ownerCustomerID)
}

// Keys signs and verifies bearer tokens with a shared HS256 secret.
type Keys struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewKeys(secret string) (*Keys, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes")
	}
	return &Keys{
		secret: []byte(secret),
		issuer: "backoffice",
		ttl:    time.Hour,
	}, nil
}

func (k *Keys) GenerateToken(email, role string, customerID int64) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    k.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		},
		Email: email,
		Role:  role,
	}
	if role == RoleUser {
		claims.CustomerID = customerID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (k *Keys) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return k.secret, nil
	}, jwt.WithIssuer(k.issuer))
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}
	return claims, nil
}
