// pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL фиксированный срок жизни access-токена.
const TokenTTL = 5 * 24 * time.Hour

// Ошибки проверки токена. Вызывающий код различает их, чтобы вернуть клиенту
// "Token expired" или "Invalid token".
var (
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// TokenManager предоставляет методы для генерации и валидации JWT токенов.
type TokenManager interface {
	Generate(userID string, isAdmin bool) (string, error)
	Validate(tokenString string) (*Claims, error)
}

// Claims определяет структуру данных, хранимых в JWT.
type Claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// jwtManager реализует TokenManager.
type jwtManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// Option настраивает jwtManager.
type Option func(*jwtManager)

// WithClock подменяет источник времени (нужно для тестов границы истечения).
func WithClock(now func() time.Time) Option {
	return func(m *jwtManager) {
		m.now = now
	}
}

// NewTokenManager создает новый экземпляр jwtManager со сроком жизни TokenTTL.
// Пустой secretKey недопустим: без него сервис не стартует.
func NewTokenManager(secretKey string, opts ...Option) (TokenManager, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	m := &jwtManager{
		secretKey:     []byte(secretKey),
		tokenDuration: TokenTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Generate создает новый JWT токен для указанного userID и флага администратора.
func (m *jwtManager) Generate(userID string, isAdmin bool) (string, error) {
	issuedAt := m.now()
	claims := &Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    "flixxit-service",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate проверяет JWT токен и возвращает извлеченные из него Claims.
// Ошибка всегда одна из ErrTokenMalformed, ErrTokenExpired, ErrInvalidSignature.
func (m *jwtManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
