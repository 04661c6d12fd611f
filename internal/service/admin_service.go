package service

import (
	"fmt"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminService authenticates the single gateway operator and issues the
// access tokens that protect the stats endpoint.
type AdminService struct {
	passwordHash []byte
	jwtSecret    []byte
	accessTTL    time.Duration
	logger       *zap.Logger
}

// NewAdminService creates a new AdminService. passwordHash is a bcrypt
// hash; an empty hash disables login entirely.
func NewAdminService(passwordHash, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AdminService {
	return &AdminService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		logger:       logger,
	}
}

// JWTClaims represents the custom claims in operator access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Login checks the operator password and returns a signed access token.
func (s *AdminService) Login(password string) (string, error) {
	if len(s.passwordHash) == 0 {
		return "", &domain.ErrUnauthorized{Message: "Acesso administrativo desabilitado"}
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Warn("admin: failed login attempt")
		return "", &domain.ErrUnauthorized{Message: "Senha inválida"}
	}

	now := time.Now()
	claims := JWTClaims{
		Sub:  "operator",
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "checkout-gateway",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateAccessToken parses and verifies an operator token.
func (s *AdminService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	return claims, nil
}
