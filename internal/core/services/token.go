package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

// TokenService issues and verifies the HS256 bearer tokens used for both the
// websocket handshake and the REST surface.
type TokenService struct {
	secretKey []byte
	issuer    string
	tokenTTL  time.Duration
	resetTTL  time.Duration
}

// TokenClaims is the decoded identity carried by a session token.
type TokenClaims struct {
	UserID uuid.UUID
	Name   string
	Role   domain.Role
}

func NewTokenService(secret string, tokenTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secret),
		issuer:    "design-theeta",
		tokenTTL:  tokenTTL,
		resetTTL:  resetTTL,
	}
}

// IssueToken signs a session token for a user, carrying id, name and role.
func (s *TokenService) IssueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID.String(),
		"name": u.Name,
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
		"iss":  s.issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// IssueResetToken signs a short-lived single-purpose password reset token.
// The jti identifies the token for single-use enforcement.
func (s *TokenService) IssueResetToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"jti": uuid.NewString(),
		"use": "reset",
		"iat": now.Unix(),
		"exp": now.Add(s.resetTTL).Unix(),
		"iss": s.issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// VerifyToken parses and validates a session token.
func (s *TokenService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if !domain.Role(role).Valid() {
		return nil, domain.ErrTokenInvalid
	}
	return &TokenClaims{UserID: userID, Name: name, Role: domain.Role(role)}, nil
}

// VerifyResetToken validates a reset token and returns the subject user and
// the token id used for the single-use guard.
func (s *TokenService) VerifyResetToken(tokenStr string) (userID uuid.UUID, tokenID string, err error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return uuid.Nil, "", err
	}
	if use, _ := claims["use"].(string); use != "reset" {
		return uuid.Nil, "", domain.ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	userID, err = uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", domain.ErrTokenInvalid
	}
	tokenID, _ = claims["jti"].(string)
	if tokenID == "" {
		return uuid.Nil, "", domain.ErrTokenInvalid
	}
	return userID, tokenID, nil
}

func (s *TokenService) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
