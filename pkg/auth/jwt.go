package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Fmukanda/travelapp/pkg/middleware"
)

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// claims is the JWT claim set carried in access tokens.
type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and validates HMAC access tokens.
type JWTService struct {
	cfg JWTConfig
}

// NewJWTService creates a token service from the given configuration.
func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.Expiration == 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &JWTService{cfg: cfg}
}

// GenerateToken issues a signed token for the given user.
func (s *JWTService) GenerateToken(userID, email, role string) (string, error) {
	now := time.Now()
	c := &claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(s.cfg.Secret))
}

// ValidateToken parses and verifies a token, returning middleware claims for
// the auth middleware. Only HMAC-signed tokens are accepted.
func (s *JWTService) ValidateToken(tokenString string) (*middleware.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &middleware.Claims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}, nil
}
