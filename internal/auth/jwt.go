// Package auth covers the two local security concerns: signed session
// tokens that carry the acting principal, and the device PIN hash.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/models"
)

// Principal identifies who is performing an operation. Services never read
// an ambient user id; the caller passes a Principal explicitly.
type Principal struct {
	UserID string
	Role   models.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.UserRoleAdmin
}

// Claims is the token payload: registered claims plus the principal fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Role   string
}

func GenerateToken(p Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: p.UserID,
		Role:   string(p.Role),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func PrincipalFromToken(tokenString string, secretKey []byte) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return Principal{}, err
	}

	if !token.Valid {
		return Principal{}, common.ErrInvalidToken
	}

	return Principal{UserID: claims.UserID, Role: models.UserRole(claims.Role)}, nil
}
