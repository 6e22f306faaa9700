package security

import (
	"fmt"
	"time"

	"local-chat/services/chat-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

type JWTService struct {
	secretKey         []byte
	expirationAccess  time.Duration
	expirationRefresh time.Duration
	now               func() time.Time
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTService takes lifetimes in hours, matching the auth config section.
func NewJWTService(secretKey string, expirationAccessH, expirationRefreshH int) *JWTService {
	return &JWTService{
		secretKey:         []byte(secretKey),
		expirationAccess:  time.Duration(expirationAccessH) * time.Hour,
		expirationRefresh: time.Duration(expirationRefreshH) * time.Hour,
		now:               time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID, email string) (*domain.Token, error) {
	return j.generate(userID, email, subjectAccess, j.expirationAccess)
}

func (j *JWTService) GenerateRefreshToken(userID, email string) (*domain.Token, error) {
	return j.generate(userID, email, subjectRefresh, j.expirationRefresh)
}

func (j *JWTService) ValidateAccessToken(tokenStr string) (*domain.TokenClaims, error) {
	return j.validate(tokenStr, subjectAccess)
}

func (j *JWTService) ValidateRefreshToken(tokenStr string) (*domain.TokenClaims, error) {
	return j.validate(tokenStr, subjectRefresh)
}

func (j *JWTService) generate(userID, email, subject string, ttl time.Duration) (*domain.Token, error) {
	now := j.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", subject, err)
	}
	return &domain.Token{Token: tokenStr, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// validate rejects tokens of the other kind, so a refresh token never authenticates a request.
func (j *JWTService) validate(tokenStr, subject string) (*domain.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return j.secretKey, nil
		},
		jwt.WithTimeFunc(j.now),
		jwt.WithSubject(subject),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.TokenClaims{UserID: claims.UserID, Email: claims.Email}, nil
}
