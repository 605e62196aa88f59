package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess = "access"
	defaultIssuer   = "ytplatform"
)

// JWTClaims identifies the bot or service calling the API.
type JWTClaims struct {
	jwt.RegisteredClaims
	Client    string `json:"client"`
	TokenType string `json:"token_type"`
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	SecretKey           string
	AccessTokenDuration time.Duration
	Issuer              string
}

// JWTService issues and validates HS256 service tokens
type JWTService struct {
	config    JWTConfig
	secretKey []byte
}

func NewJWTService(config JWTConfig) *JWTService {
	if config.Issuer == "" {
		config.Issuer = defaultIssuer
	}
	if config.AccessTokenDuration <= 0 {
		config.AccessTokenDuration = 24 * time.Hour
	}
	return &JWTService{
		config:    config,
		secretKey: []byte(config.SecretKey),
	}
}

// GenerateToken issues an access token for client.
func (j *JWTService) GenerateToken(client string) (string, error) {
	if client == "" {
		return "", fmt.Errorf("client name is required")
	}

	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   client,
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.AccessTokenDuration)),
			NotBefore: jwt.NewNumericDate(now),
		},
		Client:    client,
		TokenType: tokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates and parses a JWT token
func (j *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.config.Issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// ValidateAccessToken validates an access token specifically
func (j *JWTService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("invalid token type, expected access token")
	}

	return claims, nil
}
