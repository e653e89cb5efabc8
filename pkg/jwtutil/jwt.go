package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inventory-service/pkg/config"
)

var conf *config.JWTConfig

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Email       string `json:"email"`
	UserID      uint   `json:"user_id"`
	CompanyID   *uint  `json:"company_id,omitempty"` // Company the user belongs to, if any
	CompanyName string `json:"company_name,omitempty"`
	IsOwner     bool   `json:"is_owner,omitempty"` // Whether the user owns the company
	jwt.RegisteredClaims
}

// Initialize stores the JWT configuration for token operations
func Initialize(c *config.JWTConfig) {
	conf = c
}

// GenerateToken creates a signed JWT carrying user and company information
func GenerateToken(email string, userID uint, companyID *uint, companyName string, isOwner bool) (string, error) {
	if conf == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := UserClaims{
		Email:       email,
		UserID:      userID,
		CompanyID:   companyID,
		CompanyName: companyName,
		IsOwner:     isOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(conf.ExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(conf.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	if conf == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(conf.SigningKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
